package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"aromos/internal/config"
	"aromos/internal/domain"
	"aromos/internal/export"
	"aromos/internal/metrics"
	"aromos/internal/service"
	"aromos/internal/snapshot"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPServer exposes the dashboard API: live stats and calendars are served
// from the snapshot view, writes go through the services and trigger a
// fresh snapshot publication.
type HTTPServer struct {
	cfg          config.APIConfig
	view         *snapshot.View
	reservations *service.ReservationService
	units        *service.UnitService
	expenses     *service.ExpenseService
	maintenance  *service.MaintenanceService
	exporter     *export.Exporter
	business     string
	auth         *HTTPAuth
	server       *http.Server
	logger       *zerolog.Logger
}

type Deps struct {
	View         *snapshot.View
	Reservations *service.ReservationService
	Units        *service.UnitService
	Expenses     *service.ExpenseService
	Maintenance  *service.MaintenanceService
	Exporter     *export.Exporter
	Sessions     domain.SessionRepository
	BusinessName string
}

func NewHTTPServer(cfg config.APIConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:          cfg,
		view:         deps.View,
		reservations: deps.Reservations,
		units:        deps.Units,
		expenses:     deps.Expenses,
		maintenance:  deps.Maintenance,
		exporter:     deps.Exporter,
		business:     deps.BusinessName,
		logger:       logger,
	}
	srv.auth = NewHTTPAuth(cfg, deps.Sessions)

	mux.HandleFunc("/api/v1/availability/", srv.handleAvailability)
	mux.HandleFunc("/api/v1/stats", srv.handleStats)
	mux.HandleFunc("/api/v1/agenda", srv.handleAgenda)
	mux.HandleFunc("/api/v1/reservations", srv.handleReservations)
	mux.HandleFunc("/api/v1/reservations/", srv.handleReservationByID)
	mux.HandleFunc("/api/v1/expenses", srv.handleExpenses)
	mux.HandleFunc("/api/v1/expenses/", srv.handleExpenseByID)
	mux.HandleFunc("/api/v1/tasks", srv.handleTasks)
	mux.HandleFunc("/api/v1/tasks/", srv.handleTaskByID)
	mux.HandleFunc("/api/v1/units", srv.handleUnits)
	mux.HandleFunc("/api/v1/units/", srv.handleUnitByID)
	mux.HandleFunc("/api/v1/export/occupancy", srv.handleExportOccupancy)
	mux.HandleFunc("/api/v1/session", srv.handleSession)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler возвращает полный стек обработчиков, используется в тестах.
func (s *HTTPServer) Handler() http.Handler {
	if s.server == nil {
		return nil
	}
	return s.server.Handler
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(endpointLabel(r.URL.Path))
		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// endpointLabel обрезает идентификаторы, чтобы не раздувать кардинальность метрик.
func endpointLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 3 {
		return "/" + strings.Join(parts[:3], "/")
	}
	return path
}

// writeBlocked сообщает дашборду, что валидного снапшота нет. Частичные
// данные в этом состоянии не отдаются.
func writeBlocked(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"error": err.Error(),
		"code":  "blocked",
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
