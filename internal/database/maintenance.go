package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aromos/internal/models"

	"github.com/google/uuid"
)

// CreateMaintenanceTask сохраняет задачу обслуживания со статусом pending.
func (db *DB) CreateMaintenanceTask(ctx context.Context, t *models.MaintenanceTask) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = models.TaskPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO maintenance (id, unit_id, task, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.UnitID, t.Task, t.Status, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create maintenance task: %w", err)
	}
	return nil
}

// GetMaintenanceTasks возвращает все задачи обслуживания.
func (db *DB) GetMaintenanceTasks(ctx context.Context) ([]models.MaintenanceTask, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, unit_id, task, status, created_at FROM maintenance ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get maintenance tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.MaintenanceTask
	for rows.Next() {
		var t models.MaintenanceTask
		if err := rows.Scan(&t.ID, &t.UnitID, &t.Task, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan maintenance task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// ToggleMaintenanceTask переключает статус pending <-> done и возвращает новый статус.
func (db *DB) ToggleMaintenanceTask(ctx context.Context, id string) (string, error) {
	var current string
	err := db.QueryRowContext(ctx, `SELECT status FROM maintenance WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get maintenance task: %w", err)
	}

	next := models.TaskPending
	if current == models.TaskPending {
		next = models.TaskDone
	}

	if _, err := db.ExecContext(ctx, `UPDATE maintenance SET status = ? WHERE id = ?`, next, id); err != nil {
		return "", fmt.Errorf("failed to toggle maintenance task: %w", err)
	}
	return next, nil
}

// DeleteMaintenanceTask удаляет задачу по ID.
func (db *DB) DeleteMaintenanceTask(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM maintenance WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete maintenance task: %w", err)
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
