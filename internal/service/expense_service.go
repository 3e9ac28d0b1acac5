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

type ExpenseService struct {
	store     domain.Store
	eventBus  domain.EventPublisher
	refresher Refresher
	logger    *zerolog.Logger
}

func NewExpenseService(store domain.Store, eventBus domain.EventPublisher, refresher Refresher, logger *zerolog.Logger) *ExpenseService {
	return &ExpenseService{
		store:     store,
		eventBus:  eventBus,
		refresher: refresher,
		logger:    logger,
	}
}

func (s *ExpenseService) AddExpense(ctx context.Context, e *models.Expense) error {
	if e.Description == "" || e.Date == "" {
		return database.ErrEmptyField
	}
	if !models.ValidExpenseCategory(e.Category) {
		return database.ErrUnknownCategory
	}

	if err := s.store.CreateExpense(ctx, e); err != nil {
		return err
	}

	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventExpenseAdded, e); err != nil {
			s.logger.Error().Err(err).Str("expense_id", e.ID).Msg("publish event error")
		}
	}

	if s.refresher != nil {
		s.refresher.Refresh(ctx, snapshot.CollectionExpenses)
	}
	return nil
}

func (s *ExpenseService) GetExpenses(ctx context.Context) ([]models.Expense, error) {
	return s.store.GetExpenses(ctx)
}

// DeleteExpense удаляет расход целиком. Правок по месту нет: неверная
// запись удаляется и вводится заново.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}

	if s.refresher != nil {
		s.refresher.Refresh(ctx, snapshot.CollectionExpenses)
	}
	return nil
}
