package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aromos/internal/models"
)

// GetUnits возвращает юниты, упорядоченные по числовому ID.
func (db *DB) GetUnits(ctx context.Context) ([]models.Unit, error) {
	query := `SELECT id, name, status, created_at, updated_at
              FROM units ORDER BY CAST(id AS INTEGER)`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get units: %w", err)
	}
	defer rows.Close()

	var units []models.Unit
	for rows.Next() {
		var u models.Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return units, nil
}

// GetUnit возвращает юнит по ID.
func (db *DB) GetUnit(ctx context.Context, id string) (*models.Unit, error) {
	query := `SELECT id, name, status, created_at, updated_at FROM units WHERE id = ?`

	var u models.Unit
	err := db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return &u, nil
}

// UpdateUnitStatus переводит юнит в одно из операционных состояний.
// Статус — кэш для дашборда: календарная занятость считается по броням
// и от этого поля не зависит.
func (db *DB) UpdateUnitStatus(ctx context.Context, id string, status string) error {
	if !models.ValidUnitStatus(status) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	res, err := db.ExecContext(ctx,
		`UPDATE units SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update unit status: %w", err)
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
