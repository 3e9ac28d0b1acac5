package service

import (
	"context"

	"aromos/internal/domain"
	"aromos/internal/events"
	"aromos/internal/models"
	"aromos/internal/snapshot"

	"github.com/rs/zerolog"
)

type UnitService struct {
	store     domain.Store
	eventBus  domain.EventPublisher
	refresher Refresher
	logger    *zerolog.Logger
}

func NewUnitService(store domain.Store, eventBus domain.EventPublisher, refresher Refresher, logger *zerolog.Logger) *UnitService {
	return &UnitService{
		store:     store,
		eventBus:  eventBus,
		refresher: refresher,
		logger:    logger,
	}
}

func (s *UnitService) GetUnits(ctx context.Context) ([]models.Unit, error) {
	return s.store.GetUnits(ctx)
}

func (s *UnitService) GetUnit(ctx context.Context, id string) (*models.Unit, error) {
	return s.store.GetUnit(ctx, id)
}

// SetUnitStatus меняет отображаемый статус бунгало. Статус живет
// отдельно от календарной занятости и не проверяется против броней.
func (s *UnitService) SetUnitStatus(ctx context.Context, id string, status string) error {
	unit, err := s.store.GetUnit(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.UpdateUnitStatus(ctx, id, status); err != nil {
		return err
	}

	if s.eventBus != nil {
		payload := events.UnitEventPayload{
			UnitID:    id,
			OldStatus: unit.Status,
			NewStatus: status,
		}
		if err := s.eventBus.PublishJSON(events.EventUnitStatusChanged, payload); err != nil {
			s.logger.Error().Err(err).Str("unit_id", id).Msg("publish event error")
		}
	}

	if s.refresher != nil {
		s.refresher.Refresh(ctx, snapshot.CollectionUnits)
	}
	return nil
}
