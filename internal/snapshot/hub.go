// Package snapshot реализует push-модель данных: после каждой записи
// хранилище перечитывает коллекцию целиком и рассылает подписчикам
// неизменяемый снапшот. Подписчики ничего не тянут сами и не ретраят —
// они просто пересчитываются от того снапшота, который держат.
package snapshot

import (
	"context"
	"sync"

	"aromos/internal/metrics"
	"aromos/internal/models"

	"github.com/rs/zerolog"
)

type Collection string

const (
	CollectionUnits        Collection = "units"
	CollectionReservations Collection = "reservations"
	CollectionExpenses     Collection = "expenses"
	CollectionMaintenance  Collection = "maintenance"
)

// Update полный снапшот одной коллекции либо ошибка подписки.
// Err превращает затронутые представления в blocked до ручного перезапуска.
type Update struct {
	Collection   Collection
	Units        []models.Unit
	Reservations []models.Reservation
	Expenses     []models.Expense
	Maintenance  []models.MaintenanceTask
	Err          error
}

// Hub широковещательная рассылка снапшотов по коллекциям.
type Hub struct {
	mu     sync.RWMutex
	subs   map[Collection]map[int64]chan Update
	nextID int64
	closed bool
	logger *zerolog.Logger
}

func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		subs:   make(map[Collection]map[int64]chan Update),
		logger: logger,
	}
}

// Subscribe возвращает канал снапшотов коллекции и функцию отписки.
// Отписка обязана вызываться при закрытии сессии: после нее канал
// закрывается и пересчетов у потребителя больше не будет.
func (h *Hub) Subscribe(c Collection) (<-chan Update, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		ch := make(chan Update)
		close(ch)
		return ch, func() {}
	}

	h.nextID++
	id := h.nextID
	ch := make(chan Update, 8)

	if h.subs[c] == nil {
		h.subs[c] = make(map[int64]chan Update)
	}
	h.subs[c][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[c][id]; ok {
			delete(h.subs[c], id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish рассылает снапшот всем подписчикам коллекции. Медленный
// подписчик теряет самый старый снапшот из буфера, но всегда получает
// свежий: для полного пересостояния история не нужна.
func (h *Hub) Publish(u Update) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for _, ch := range h.subs[u.Collection] {
		select {
		case ch <- u:
		default:
			// буфер полон: вытесняем самый старый снапшот и кладем свежий
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- u:
			default:
			}
		}
	}
}

// Close закрывает все подписки. Используется при остановке сервиса.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for c, subs := range h.subs {
		for id, ch := range subs {
			delete(subs, id)
			close(ch)
		}
		delete(h.subs, c)
	}
}

// Loader перечитывает коллекцию из хранилища и публикует снапшот.
type Loader struct {
	store  Source
	hub    *Hub
	logger *zerolog.Logger
}

// Source минимальный срез хранилища, нужный для перечитывания коллекций.
type Source interface {
	GetUnits(ctx context.Context) ([]models.Unit, error)
	GetReservations(ctx context.Context) ([]models.Reservation, error)
	GetExpenses(ctx context.Context) ([]models.Expense, error)
	GetMaintenanceTasks(ctx context.Context) ([]models.MaintenanceTask, error)
}

func NewLoader(store Source, hub *Hub, logger *zerolog.Logger) *Loader {
	return &Loader{store: store, hub: hub, logger: logger}
}

// Refresh перечитывает коллекцию и рассылает снапшот. Ошибка чтения
// публикуется как Update.Err: представления блокируются, а не показывают
// смесь старых и новых данных.
func (l *Loader) Refresh(ctx context.Context, c Collection) {
	u := Update{Collection: c}

	var err error
	switch c {
	case CollectionUnits:
		u.Units, err = l.store.GetUnits(ctx)
	case CollectionReservations:
		u.Reservations, err = l.store.GetReservations(ctx)
	case CollectionExpenses:
		u.Expenses, err = l.store.GetExpenses(ctx)
	case CollectionMaintenance:
		u.Maintenance, err = l.store.GetMaintenanceTasks(ctx)
	default:
		l.logger.Warn().Str("collection", string(c)).Msg("неизвестная коллекция, снапшот не опубликован")
		return
	}

	if err != nil {
		l.logger.Error().Err(err).Str("collection", string(c)).Msg("ошибка чтения снапшота")
		u.Err = err
	}
	metrics.IncSnapshotRefresh(string(c))
	l.hub.Publish(u)
}

// RefreshAll публикует снапшоты всех четырех коллекций.
func (l *Loader) RefreshAll(ctx context.Context) {
	for _, c := range []Collection{CollectionUnits, CollectionReservations, CollectionExpenses, CollectionMaintenance} {
		l.Refresh(ctx, c)
	}
}
