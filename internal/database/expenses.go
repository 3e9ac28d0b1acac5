package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aromos/internal/models"

	"github.com/google/uuid"
)

// CreateExpense сохраняет расход. Расходы не редактируются, только
// создаются и удаляются.
func (db *DB) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount, category, date, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Description, e.Amount.String(), e.Category, e.Date, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetExpenses возвращает все расходы, новые сверху.
func (db *DB) GetExpenses(ctx context.Context) ([]models.Expense, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, description, amount, category, date, created_at FROM expenses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var (
			e      models.Expense
			amount sql.NullString
			date   sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Description, &amount, &e.Category, &date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.Amount = models.ParseAmount(amount.String)
		e.Date = date.String
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return expenses, nil
}

// DeleteExpense удаляет расход по ID.
func (db *DB) DeleteExpense(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
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
