package domain

import (
	"context"
	"time"

	"aromos/internal/models"
)

// Store контракт хранилища документов для бизнес-сервисов.
type Store interface {
	GetUnits(ctx context.Context) ([]models.Unit, error)
	GetUnit(ctx context.Context, id string) (*models.Unit, error)
	UpdateUnitStatus(ctx context.Context, id string, status string) error

	CreateReservation(ctx context.Context, r *models.Reservation) error
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	GetReservations(ctx context.Context) ([]models.Reservation, error)
	UpdateReservation(ctx context.Context, r *models.Reservation) error
	DeleteReservationWithLog(ctx context.Context, id string, reason string) (*models.CancellationRecord, error)

	CreateExpense(ctx context.Context, e *models.Expense) error
	GetExpenses(ctx context.Context) ([]models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	CreateMaintenanceTask(ctx context.Context, t *models.MaintenanceTask) error
	GetMaintenanceTasks(ctx context.Context) ([]models.MaintenanceTask, error)
	ToggleMaintenanceTask(ctx context.Context, id string) (string, error)
	DeleteMaintenanceTask(ctx context.Context, id string) error
}

// EventPublisher публикация доменных событий.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SyncWorker очередь зеркалирования реестра броней во внешнюю таблицу.
type SyncWorker interface {
	EnqueueUpsert(ctx context.Context, r *models.Reservation) error
	EnqueueDelete(ctx context.Context, reservationID string) error
}

// SessionRepository состояние сессий дашборда и ограничение частоты запросов.
type SessionRepository interface {
	GetSession(ctx context.Context, token string) (*models.Session, error)
	SetSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context, token string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SheetsWriter запись строк реестра в Google Sheets.
type SheetsWriter interface {
	UpsertReservation(ctx context.Context, r *models.Reservation) error
	DeleteReservationRow(ctx context.Context, reservationID string) error
}
