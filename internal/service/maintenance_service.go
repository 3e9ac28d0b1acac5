package service

import (
	"context"

	"aromos/internal/database"
	"aromos/internal/domain"
	"aromos/internal/events"
	"aromos/internal/models"
	"aromos/internal/snapshot"

	"github.com/rs/zerolog"
)

type MaintenanceService struct {
	store     domain.Store
	eventBus  domain.EventPublisher
	refresher Refresher
	logger    *zerolog.Logger
}

func NewMaintenanceService(store domain.Store, eventBus domain.EventPublisher, refresher Refresher, logger *zerolog.Logger) *MaintenanceService {
	return &MaintenanceService{
		store:     store,
		eventBus:  eventBus,
		refresher: refresher,
		logger:    logger,
	}
}

func (s *MaintenanceService) CreateTask(ctx context.Context, t *models.MaintenanceTask) error {
	if t.Task == "" {
		return database.ErrEmptyField
	}
	if t.Status == "" {
		t.Status = models.TaskPending
	}

	if err := s.store.CreateMaintenanceTask(ctx, t); err != nil {
		return err
	}

	if s.refresher != nil {
		s.refresher.Refresh(ctx, snapshot.CollectionMaintenance)
	}
	return nil
}

func (s *MaintenanceService) GetTasks(ctx context.Context) ([]models.MaintenanceTask, error) {
	return s.store.GetMaintenanceTasks(ctx)
}

// ToggleTask переключает задачу pending <-> done и возвращает новый статус.
func (s *MaintenanceService) ToggleTask(ctx context.Context, id string) (string, error) {
	status, err := s.store.ToggleMaintenanceTask(ctx, id)
	if err != nil {
		return "", err
	}

	if s.eventBus != nil {
		payload := map[string]string{"task_id": id, "status": status}
		if err := s.eventBus.PublishJSON(events.EventTaskToggled, payload); err != nil {
			s.logger.Error().Err(err).Str("task_id", id).Msg("publish event error")
		}
	}

	if s.refresher != nil {
		s.refresher.Refresh(ctx, snapshot.CollectionMaintenance)
	}
	return status, nil
}

func (s *MaintenanceService) DeleteTask(ctx context.Context, id string) error {
	if err := s.store.DeleteMaintenanceTask(ctx, id); err != nil {
		return err
	}

	if s.refresher != nil {
		s.refresher.Refresh(ctx, snapshot.CollectionMaintenance)
	}
	return nil
}
