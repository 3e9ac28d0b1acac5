package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"aromos/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrUnknownStatus   = errors.New("unknown status")
	ErrUnknownCategory = errors.New("unknown expense category")
	ErrUnknownReason   = errors.New("unknown cancellation reason")
	ErrEmptyField      = errors.New("required field is empty")
)

type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		// Создаем директорию для БД, если её нет
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("База данных инициализирована")
	return &DB{DB: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Бунгало
		`CREATE TABLE IF NOT EXISTS units (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'free',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		// Брони: даты и деньги хранятся текстом, как пришли из документа
		`CREATE TABLE IF NOT EXISTS reservations (
            id TEXT PRIMARY KEY,
            unit_id TEXT NOT NULL,
            guest_name TEXT NOT NULL,
            phone TEXT NOT NULL,
            guest_id TEXT,
            guests INTEGER NOT NULL DEFAULT 1,
            checkin TEXT NOT NULL,
            checkout TEXT NOT NULL,
            total_amount TEXT,
            deposit TEXT NOT NULL DEFAULT '0',
            deposit_paid BOOLEAN NOT NULL DEFAULT 0,
            payment_method TEXT NOT NULL DEFAULT 'cash',
            invoiced BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		// Расходы
		`CREATE TABLE IF NOT EXISTS expenses (
            id TEXT PRIMARY KEY,
            description TEXT NOT NULL,
            amount TEXT NOT NULL DEFAULT '0',
            category TEXT NOT NULL,
            date TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		// Задачи обслуживания
		`CREATE TABLE IF NOT EXISTS maintenance (
            id TEXT PRIMARY KEY,
            unit_id TEXT NOT NULL,
            task TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		// Журнал отмен: append-only, снимок брони лежит JSON-ом
		`CREATE TABLE IF NOT EXISTS cancellations (
            id TEXT PRIMARY KEY,
            reservation_id TEXT NOT NULL,
            reason TEXT NOT NULL,
            original TEXT NOT NULL,
            canceled_at DATETIME NOT NULL
        )`,
		// Очередь синхронизации с Google Sheets
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            reservation_id TEXT NOT NULL,
            payload TEXT,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_unit_id ON reservations(unit_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_checkin ON reservations(checkin)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_checkout ON reservations(checkout)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_category ON expenses(category)`,
		`CREATE INDEX IF NOT EXISTS idx_maintenance_status ON maintenance(status)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// SeedDefaultUnits создает 12 бунгало по умолчанию, если таблица юнитов пуста.
// Переданный список из конфига имеет приоритет над дефолтным.
func (db *DB) SeedDefaultUnits(ctx context.Context, units []models.Unit) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM units`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count units: %w", err)
	}
	if count > 0 {
		return nil
	}

	if len(units) == 0 {
		units = models.DefaultUnits()
	}

	for _, u := range units {
		status := u.Status
		if status == "" {
			status = models.UnitStatusFree
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO units (id, name, status) VALUES (?, ?, ?)`,
			u.ID, u.Name, status,
		); err != nil {
			return fmt.Errorf("failed to seed unit %s: %w", u.ID, err)
		}
	}

	db.logger.Info().Int("count", len(units)).Msg("Созданы юниты по умолчанию")
	return nil
}
