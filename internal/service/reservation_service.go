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

// Refresher публикует свежие снапшоты коллекций после записи.
type Refresher interface {
	Refresh(ctx context.Context, c snapshot.Collection)
}

type ReservationService struct {
	store        domain.Store
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	refresher    Refresher
	logger       *zerolog.Logger
}

func NewReservationService(store domain.Store, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, refresher Refresher, logger *zerolog.Logger) *ReservationService {
	return &ReservationService{
		store:        store,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		refresher:    refresher,
		logger:       logger,
	}
}

// validateReservation проверяет обязательные поля. Пересечение с другими
// бронями того же бунгало ошибкой не считается: оператор видит занятость
// в календаре и решает сам.
func validateReservation(r *models.Reservation) error {
	if r.UnitID == "" || r.GuestName == "" || r.Checkin == "" || r.Checkout == "" {
		return database.ErrEmptyField
	}
	return nil
}

func (s *ReservationService) CreateReservation(ctx context.Context, r *models.Reservation) error {
	if err := validateReservation(r); err != nil {
		return err
	}

	if err := s.store.CreateReservation(ctx, r); err != nil {
		return err
	}

	// Бунгало сразу помечается занятым; это отображаемый статус,
	// а не источник правды для календаря
	if err := s.store.UpdateUnitStatus(ctx, r.UnitID, models.UnitStatusOccupied); err != nil {
		s.logger.Error().Err(err).Str("unit_id", r.UnitID).Msg("не удалось пометить бунгало занятым")
	}

	s.publishReservationEvent(events.EventReservationCreated, r, "")
	s.enqueueUpsert(ctx, r)
	s.refresh(ctx, snapshot.CollectionReservations, snapshot.CollectionUnits)

	return nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

func (s *ReservationService) GetReservations(ctx context.Context) ([]models.Reservation, error) {
	return s.store.GetReservations(ctx)
}

func (s *ReservationService) UpdateReservation(ctx context.Context, r *models.Reservation) error {
	if err := validateReservation(r); err != nil {
		return err
	}

	if err := s.store.UpdateReservation(ctx, r); err != nil {
		return err
	}

	s.enqueueUpsert(ctx, r)
	s.refresh(ctx, snapshot.CollectionReservations)
	return nil
}

// CancelReservation удаляет бронь и дописывает запись в журнал отмен.
// Журнал append-only: обратно в статистику он не читается.
func (s *ReservationService) CancelReservation(ctx context.Context, id string, reason string) (*models.CancellationRecord, error) {
	record, err := s.store.DeleteReservationWithLog(ctx, id, reason)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateUnitStatus(ctx, record.Original.UnitID, models.UnitStatusFree); err != nil {
		s.logger.Error().Err(err).Str("unit_id", record.Original.UnitID).Msg("не удалось освободить бунгало")
	}

	eventType := events.EventReservationCanceled
	if reason == models.ReasonDateChange {
		eventType = events.EventReservationRescheduled
	}
	s.publishReservationEvent(eventType, &record.Original, reason)
	s.enqueueDelete(ctx, id)
	s.refresh(ctx, snapshot.CollectionReservations, snapshot.CollectionUnits)

	return record, nil
}

// RescheduleReservation оформляет перенос как отмену с причиной
// date_change и создание новой брони с новыми датами. Старая запись
// уходит в журнал отмен, новая получает свой идентификатор.
func (s *ReservationService) RescheduleReservation(ctx context.Context, id string, newCheckin, newCheckout string) (*models.Reservation, error) {
	if newCheckin == "" || newCheckout == "" {
		return nil, database.ErrEmptyField
	}

	record, err := s.store.DeleteReservationWithLog(ctx, id, models.ReasonDateChange)
	if err != nil {
		return nil, err
	}

	replacement := record.Original
	replacement.ID = ""
	replacement.Checkin = newCheckin
	replacement.Checkout = newCheckout

	if err := s.store.CreateReservation(ctx, &replacement); err != nil {
		return nil, err
	}

	s.publishReservationEvent(events.EventReservationRescheduled, &replacement, models.ReasonDateChange)
	s.enqueueDelete(ctx, id)
	s.enqueueUpsert(ctx, &replacement)
	s.refresh(ctx, snapshot.CollectionReservations)

	return &replacement, nil
}

func (s *ReservationService) publishReservationEvent(eventType string, r *models.Reservation, reason string) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: r.ID,
		UnitID:        r.UnitID,
		GuestName:     r.GuestName,
		Checkin:       r.Checkin,
		Checkout:      r.Checkout,
		Deposit:       r.Deposit,
		Reason:        reason,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("reservation_id", r.ID).Msg("publish event error")
	}
}

func (s *ReservationService) enqueueUpsert(ctx context.Context, r *models.Reservation) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueUpsert(ctx, r); err != nil {
		s.logger.Error().Err(err).Str("reservation_id", r.ID).Msg("sheets enqueue error")
	}
}

func (s *ReservationService) enqueueDelete(ctx context.Context, id string) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueDelete(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("reservation_id", id).Msg("sheets enqueue error")
	}
}

func (s *ReservationService) refresh(ctx context.Context, collections ...snapshot.Collection) {
	if s.refresher == nil {
		return
	}
	for _, c := range collections {
		s.refresher.Refresh(ctx, c)
	}
}
