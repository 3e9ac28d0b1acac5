package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"aromos/internal/models"
	"aromos/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishAll(hub *Hub, units []models.Unit, res []models.Reservation) {
	hub.Publish(Update{Collection: CollectionUnits, Units: units})
	hub.Publish(Update{Collection: CollectionReservations, Reservations: res})
	hub.Publish(Update{Collection: CollectionExpenses})
	hub.Publish(Update{Collection: CollectionMaintenance})
}

func TestViewBlockedUntilAllCollectionsArrive(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	view := NewView(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	view.Attach(ctx, hub)

	_, err := view.Dashboard()
	assert.ErrorIs(t, err, ErrBlocked)

	// трех коллекций из четырех недостаточно
	hub.Publish(Update{Collection: CollectionUnits, Units: models.DefaultUnits()})
	hub.Publish(Update{Collection: CollectionReservations})
	hub.Publish(Update{Collection: CollectionExpenses})

	time.Sleep(50 * time.Millisecond)
	_, err = view.Dashboard()
	assert.ErrorIs(t, err, ErrBlocked)

	hub.Publish(Update{Collection: CollectionMaintenance})

	require.Eventually(t, func() bool {
		_, err := view.Dashboard()
		return err == nil
	}, time.Second, 10*time.Millisecond)

	dash, err := view.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, 12, dash.Free)
}

func TestViewRecomputesOnEachSnapshot(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	view := NewView(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	view.Attach(ctx, hub)

	units := models.DefaultUnits()
	publishAll(hub, units, nil)

	require.Eventually(t, func() bool {
		dash, err := view.Dashboard()
		return err == nil && dash.Free == 12
	}, time.Second, 10*time.Millisecond)

	units[0].Status = models.UnitStatusOccupied
	hub.Publish(Update{Collection: CollectionUnits, Units: units})

	require.Eventually(t, func() bool {
		dash, err := view.Dashboard()
		return err == nil && dash.Occupied == 1 && dash.Free == 11
	}, time.Second, 10*time.Millisecond)
}

func TestViewBlocksOnSubscriptionError(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	view := NewView(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	view.Attach(ctx, hub)

	publishAll(hub, models.DefaultUnits(), nil)
	require.Eventually(t, func() bool {
		_, err := view.Dashboard()
		return err == nil
	}, time.Second, 10*time.Millisecond)

	boom := errors.New("insufficient permissions")
	hub.Publish(Update{Collection: CollectionReservations, Err: boom})

	require.Eventually(t, func() bool {
		_, err := view.Dashboard()
		return errors.Is(err, ErrBlocked) && errors.Is(err, boom)
	}, time.Second, 10*time.Millisecond)

	// частичных данных в blocked нет вообще
	_, err := view.Snapshot()
	assert.ErrorIs(t, err, ErrBlocked)

	// валидный снапшот другой коллекции блокировку не снимает: устаревший
	// список броней наружу не уходит
	hub.Publish(Update{Collection: CollectionExpenses})
	time.Sleep(50 * time.Millisecond)
	_, err = view.Dashboard()
	assert.ErrorIs(t, err, ErrBlocked)
	_, err = view.Snapshot()
	assert.ErrorIs(t, err, ErrBlocked)

	// только свежий снапшот упавшей коллекции возвращает дашборд к жизни
	hub.Publish(Update{Collection: CollectionReservations})
	require.Eventually(t, func() bool {
		_, err := view.Dashboard()
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func TestViewDetachStopsRecompute(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	view := NewView(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	view.Attach(ctx, hub)

	publishAll(hub, models.DefaultUnits(), nil)
	require.Eventually(t, func() bool {
		_, err := view.Dashboard()
		return err == nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	time.Sleep(50 * time.Millisecond)

	units := models.DefaultUnits()
	for i := range units {
		units[i].Status = models.UnitStatusOccupied
	}
	hub.Publish(Update{Collection: CollectionUnits, Units: units})
	time.Sleep(50 * time.Millisecond)

	dash, err := view.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, 0, dash.Occupied)
}

func TestViewSnapshotFeedsAvailability(t *testing.T) {
	hub := NewHub(testLogger())
	defer hub.Close()

	view := NewView(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	view.Attach(ctx, hub)

	res := []models.Reservation{{
		ID:       "r1",
		UnitID:   "3",
		Checkin:  "2026-01-10",
		Checkout: "2026-01-12",
	}}
	publishAll(hub, models.DefaultUnits(), res)

	require.Eventually(t, func() bool {
		snap, err := view.Snapshot()
		return err == nil && len(snap.Reservations) == 1
	}, time.Second, 10*time.Millisecond)

	snap, err := view.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, stats.Snapshot{
		Units:        models.DefaultUnits(),
		Reservations: res,
	}, stats.Snapshot{Units: snap.Units, Reservations: snap.Reservations})
}
