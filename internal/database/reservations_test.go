package database

import (
	"context"
	"testing"

	"aromos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReservation() *models.Reservation {
	return &models.Reservation{
		UnitID:        "1",
		GuestName:     "Ana García",
		Phone:         "+54 9 11 5555-0001",
		GuestID:       "30111222",
		Guests:        2,
		Checkin:       "2024-01-10",
		Checkout:      "2024-01-12",
		TotalAmount:   decimal.RequireFromString("500"),
		Deposit:       decimal.RequireFromString("100"),
		DepositPaid:   true,
		PaymentMethod: models.PaymentCardGateway,
	}
}

func TestCreateAndGetReservation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	r := newTestReservation()
	require.NoError(t, db.CreateReservation(ctx, r))
	require.NotEmpty(t, r.ID)

	got, err := db.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana García", got.GuestName)
	assert.Equal(t, "2024-01-10", got.Checkin)
	assert.True(t, got.Deposit.Equal(decimal.RequireFromString("100")))
	assert.True(t, got.DepositPaid)
	assert.Equal(t, models.PaymentCardGateway, got.PaymentMethod)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateReservationAllowsOverlap(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// двойное бронирование не блокируется на записи
	a := newTestReservation()
	b := newTestReservation()
	require.NoError(t, db.CreateReservation(ctx, a))
	require.NoError(t, db.CreateReservation(ctx, b))

	all, err := db.GetReservations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateReservation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	r := newTestReservation()
	require.NoError(t, db.CreateReservation(ctx, r))

	r.Invoiced = true
	r.Deposit = decimal.RequireFromString("150")
	require.NoError(t, db.UpdateReservation(ctx, r))

	got, err := db.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.Invoiced)
	assert.True(t, got.Deposit.Equal(decimal.RequireFromString("150")))

	missing := newTestReservation()
	missing.ID = "ghost"
	assert.ErrorIs(t, db.UpdateReservation(ctx, missing), ErrNotFound)
}

func TestDeleteReservationWithLog(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	r := newTestReservation()
	require.NoError(t, db.CreateReservation(ctx, r))

	record, err := db.DeleteReservationWithLog(ctx, r.ID, models.ReasonCancellation)
	require.NoError(t, err)

	// бронь исчезла из живого набора
	_, err = db.GetReservation(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// ровно одна запись в журнале с исходными полями
	count, err := db.CountCancellations(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Equal(t, models.ReasonCancellation, record.Reason)
	assert.Equal(t, r.ID, record.Original.ID)
	assert.Equal(t, r.GuestName, record.Original.GuestName)
	assert.Equal(t, r.Checkin, record.Original.Checkin)
	assert.False(t, record.CanceledAt.IsZero())
}

func TestDeleteReservationWithLogValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	r := newTestReservation()
	require.NoError(t, db.CreateReservation(ctx, r))

	_, err := db.DeleteReservationWithLog(ctx, r.ID, "regret")
	assert.ErrorIs(t, err, ErrUnknownReason)

	_, err = db.DeleteReservationWithLog(ctx, "ghost", models.ReasonDateChange)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReservationAmountCoercion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// кривой документ: кладем мусор напрямую, как он мог прийти из импорта
	_, err := db.ExecContext(ctx,
		`INSERT INTO reservations (id, unit_id, guest_name, phone, checkin, checkout, deposit) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"raw-1", "2", "Bruno", "555", "2024-02-01", "2024-02-03", "not-a-number")
	require.NoError(t, err)

	got, err := db.GetReservation(ctx, "raw-1")
	require.NoError(t, err)
	assert.True(t, got.Deposit.IsZero())
}
