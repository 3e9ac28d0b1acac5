package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aromos",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aromos",
			Name:      "reservations_total",
			Help:      "Reservation operations by kind.",
		},
		[]string{"kind"},
	)

	snapshotRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aromos",
			Name:      "snapshot_refreshes_total",
			Help:      "Collection snapshot refreshes by collection.",
		},
		[]string{"collection"},
	)

	sheetsSyncFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "aromos",
			Name:      "sheets_sync_failures_total",
			Help:      "Permanently failed ledger sync tasks.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservations, snapshotRefreshes, sheetsSyncFailures)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncReservation counts a reservation operation: created, canceled, rescheduled.
func IncReservation(kind string) {
	reservations.WithLabelValues(kind).Inc()
}

// IncSnapshotRefresh counts a published collection snapshot.
func IncSnapshotRefresh(collection string) {
	snapshotRefreshes.WithLabelValues(collection).Inc()
}

// IncSheetsSyncFailure counts a sync task moved to the dead letter state.
func IncSheetsSyncFailure() {
	sheetsSyncFailures.Inc()
}
