package snapshot

import (
	"context"
	"errors"
	"sync"
	"time"

	"aromos/internal/stats"

	"github.com/rs/zerolog"
)

// ErrBlocked возвращается, пока представление не получило ни одного
// валидного снапшота либо подписка упала. Частичных данных в этом
// состоянии не бывает: либо целый дашборд, либо ничего.
var ErrBlocked = errors.New("view is blocked: no valid snapshot")

// View живое представление дашборда: держит последний снапшот всех
// четырех коллекций и атомарно подменяет пересчитанную статистику.
type View struct {
	mu       sync.RWMutex
	snap     stats.Snapshot
	dash     stats.Dashboard
	ready    [4]bool
	blocked  error
	failedOn Collection
	now      func() time.Time

	cancels []func()
	logger  *zerolog.Logger
}

func NewView(logger *zerolog.Logger) *View {
	return &View{now: time.Now, logger: logger}
}

// Attach подписывает представление на все коллекции хаба и запускает
// цикл пересчета. Жизнь подписок ограничена ctx: после отмены все
// подписки снимаются и пересчеты прекращаются.
func (v *View) Attach(ctx context.Context, hub *Hub) {
	collections := []Collection{CollectionUnits, CollectionReservations, CollectionExpenses, CollectionMaintenance}

	var chans []<-chan Update
	for _, c := range collections {
		ch, cancel := hub.Subscribe(c)
		chans = append(chans, ch)
		v.cancels = append(v.cancels, cancel)
	}

	for _, ch := range chans {
		go v.consume(ctx, ch)
	}

	go func() {
		<-ctx.Done()
		v.Detach()
	}()
}

// Detach снимает все подписки представления.
func (v *View) Detach() {
	for _, cancel := range v.cancels {
		cancel()
	}
	v.cancels = nil
}

func (v *View) consume(ctx context.Context, ch <-chan Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-ch:
			if !ok {
				return
			}
			v.apply(u)
		}
	}
}

// apply вносит снапшот коллекции и пересчитывает дашборд целиком.
// Ошибка подписки переводит представление в blocked; блокировку снимает
// только валидный снапшот упавшей коллекции, снапшоты остальных коллекций
// принимаются, но дашборд продолжает отвечать ошибкой.
func (v *View) apply(u Update) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if u.Err != nil {
		v.blocked = u.Err
		v.failedOn = u.Collection
		return
	}

	switch u.Collection {
	case CollectionUnits:
		v.snap.Units = u.Units
		v.ready[0] = true
	case CollectionReservations:
		v.snap.Reservations = u.Reservations
		v.ready[1] = true
	case CollectionExpenses:
		v.snap.Expenses = u.Expenses
		v.ready[2] = true
	case CollectionMaintenance:
		v.snap.Maintenance = u.Maintenance
		v.ready[3] = true
	default:
		return
	}

	if v.blocked != nil {
		if u.Collection != v.failedOn {
			return
		}
		v.blocked = nil
	}
	v.dash = stats.Compute(v.snap, v.now())
}

// Dashboard возвращает последнюю атомарно пересчитанную статистику.
func (v *View) Dashboard() (stats.Dashboard, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.blocked != nil {
		return stats.Dashboard{}, errors.Join(ErrBlocked, v.blocked)
	}
	for _, ok := range v.ready {
		if !ok {
			return stats.Dashboard{}, ErrBlocked
		}
	}
	return v.dash, nil
}

// Snapshot возвращает текущий снапшот коллекций для календарных запросов.
func (v *View) Snapshot() (stats.Snapshot, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.blocked != nil {
		return stats.Snapshot{}, errors.Join(ErrBlocked, v.blocked)
	}
	for _, ok := range v.ready {
		if !ok {
			return stats.Snapshot{}, ErrBlocked
		}
	}
	return v.snap, nil
}
