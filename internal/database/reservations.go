package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aromos/internal/models"

	"github.com/google/uuid"
)

const reservationColumns = `id, unit_id, guest_name, phone, guest_id, guests, checkin, checkout,
       total_amount, deposit, deposit_paid, payment_method, invoiced, created_at`

// CreateReservation сохраняет бронь. ID генерируется здесь, если пуст.
// Пересечение с другими бронями намеренно не проверяется.
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	query := `INSERT INTO reservations (` + reservationColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.ExecContext(ctx, query,
		r.ID,
		r.UnitID,
		r.GuestName,
		r.Phone,
		r.GuestID,
		r.Guests,
		r.Checkin,
		r.Checkout,
		r.TotalAmount.String(),
		r.Deposit.String(),
		r.DepositPaid,
		r.PaymentMethod,
		r.Invoiced,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

// GetReservation возвращает бронь по ID.
func (db *DB) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`

	r, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return r, nil
}

// GetReservations возвращает все брони, новые сверху.
func (db *DB) GetReservations(ctx context.Context) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservations: %w", err)
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}

// UpdateReservation перезаписывает изменяемые поля брони.
func (db *DB) UpdateReservation(ctx context.Context, r *models.Reservation) error {
	query := `UPDATE reservations SET unit_id = ?, guest_name = ?, phone = ?, guest_id = ?,
              guests = ?, checkin = ?, checkout = ?, total_amount = ?, deposit = ?,
              deposit_paid = ?, payment_method = ?, invoiced = ? WHERE id = ?`

	res, err := db.ExecContext(ctx, query,
		r.UnitID, r.GuestName, r.Phone, r.GuestID,
		r.Guests, r.Checkin, r.Checkout, r.TotalAmount.String(), r.Deposit.String(),
		r.DepositPaid, r.PaymentMethod, r.Invoiced, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReservationWithLog жестко удаляет бронь и в той же транзакции
// дописывает запись в журнал отмен. Журнал append-only и обратно не читается.
func (db *DB) DeleteReservationWithLog(ctx context.Context, id string, reason string) (*models.CancellationRecord, error) {
	if !models.ValidCancellationReason(reason) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReason, reason)
	}

	original, err := db.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	record := &models.CancellationRecord{
		ID:         uuid.NewString(),
		Original:   *original,
		Reason:     reason,
		CanceledAt: time.Now(),
	}

	payload, err := json.Marshal(original)
	if err != nil {
		return nil, fmt.Errorf("failed to encode original reservation: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cancellations (id, reservation_id, reason, original, canceled_at) VALUES (?, ?, ?, ?, ?)`,
		record.ID, id, reason, string(payload), record.CanceledAt,
	); err != nil {
		return nil, fmt.Errorf("failed to append cancellation record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete reservation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	return record, nil
}

// CountCancellations количество записей журнала по брони. Нужен только тестам
// и ручной диагностике: стат-логика журнал не читает.
func (db *DB) CountCancellations(ctx context.Context, reservationID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cancellations WHERE reservation_id = ?`, reservationID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cancellations: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanReservation единственное место, где денежные строки документа
// приводятся к decimal. Кривая сумма становится нулем, строка не отбрасывается.
func scanReservation(row rowScanner) (*models.Reservation, error) {
	var (
		r           models.Reservation
		guestID     sql.NullString
		totalAmount sql.NullString
		deposit     sql.NullString
	)

	err := row.Scan(
		&r.ID,
		&r.UnitID,
		&r.GuestName,
		&r.Phone,
		&guestID,
		&r.Guests,
		&r.Checkin,
		&r.Checkout,
		&totalAmount,
		&deposit,
		&r.DepositPaid,
		&r.PaymentMethod,
		&r.Invoiced,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.GuestID = guestID.String
	r.TotalAmount = models.ParseAmount(totalAmount.String)
	r.Deposit = models.ParseAmount(deposit.String)
	return &r, nil
}
