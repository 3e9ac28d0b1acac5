// Package stats считает производные показатели дашборда. Все функции чистые
// и тотальные: пустые и кривые входы дают нули, ошибки не возвращаются.
// Пересчет выполняется целиком на каждом снапшоте, инкрементальных апдейтов нет.
package stats

import (
	"math"
	"sort"
	"time"

	"aromos/internal/models"

	"github.com/shopspring/decimal"
)

// UnitDemand количество броней юнита за все время.
type UnitDemand struct {
	UnitID       string `json:"unit_id"`
	UnitName     string `json:"unit_name"`
	Reservations int    `json:"reservations"`
}

// Client запись рейтинга постоянных гостей.
type Client struct {
	Name    string `json:"name"`
	GuestID string `json:"guest_id,omitempty"`
	Stays   int    `json:"stays"`
}

// CategoryTotal сумма расходов по категории. Порядок категорий — порядок
// первого появления во входном списке.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Agenda заезды и выезды на конкретную дату.
type Agenda struct {
	Checkins  []models.Reservation `json:"checkins"`
	Checkouts []models.Reservation `json:"checkouts"`
}

// Billing прогресс выставления счетов по оплатам через шлюз.
type Billing struct {
	TotalToInvoice decimal.Decimal `json:"total_to_invoice"`
	TotalInvoiced  decimal.Decimal `json:"total_invoiced"`
	PendingCount   int             `json:"pending_count"`
	InvoicedCount  int             `json:"invoiced_count"`
}

// TotalIncome суммирует предоплаты по всем броням. Именно предоплата,
// а не полная стоимость, считается поступившими деньгами.
func TotalIncome(reservations []models.Reservation) decimal.Decimal {
	total := decimal.Zero
	for _, r := range reservations {
		total = total.Add(r.Deposit)
	}
	return total
}

// TotalExpenses суммирует все расходы.
func TotalExpenses(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// NetProfit доход минус расходы.
func NetProfit(reservations []models.Reservation, expenses []models.Expense) decimal.Decimal {
	return TotalIncome(reservations).Sub(TotalExpenses(expenses))
}

// OccupancyRate процент юнитов со статусом occupied, округленный до целого.
// Пустой список юнитов дает 0, деления на ноль нет.
func OccupancyRate(units []models.Unit) int {
	if len(units) == 0 {
		return 0
	}
	occupied := 0
	for _, u := range units {
		if u.Status == models.UnitStatusOccupied {
			occupied++
		}
	}
	return int(math.Round(100 * float64(occupied) / float64(len(units))))
}

// FreeCount количество свободных юнитов.
func FreeCount(units []models.Unit) int {
	return countStatus(units, models.UnitStatusFree)
}

// OccupiedCount количество занятых юнитов.
func OccupiedCount(units []models.Unit) int {
	return countStatus(units, models.UnitStatusOccupied)
}

// CleaningCount количество юнитов на уборке.
func CleaningCount(units []models.Unit) int {
	return countStatus(units, models.UnitStatusCleaning)
}

func countStatus(units []models.Unit, status string) int {
	n := 0
	for _, u := range units {
		if u.Status == status {
			n++
		}
	}
	return n
}

// PendingMaintenanceCount количество незакрытых задач обслуживания.
func PendingMaintenanceCount(tasks []models.MaintenanceTask) int {
	n := 0
	for _, t := range tasks {
		if t.Status == models.TaskPending {
			n++
		}
	}
	return n
}

// DailyAgenda заезды и выезды, чья дата строково равна today ("2006-01-02").
// Сравнение именно строковое: документ в другом формате молча выпадает
// из повестки, это зафиксированное поведение.
func DailyAgenda(reservations []models.Reservation, today string) Agenda {
	agenda := Agenda{}
	for _, r := range reservations {
		if r.Checkin == today {
			agenda.Checkins = append(agenda.Checkins, r)
		}
		if r.Checkout == today {
			agenda.Checkouts = append(agenda.Checkouts, r)
		}
	}
	return agenda
}

// UnitDemandRanking юниты по убыванию количества броней. Сортировка
// стабильная: при равенстве сохраняется исходный порядок юнитов.
func UnitDemandRanking(units []models.Unit, reservations []models.Reservation) []UnitDemand {
	counts := make(map[string]int, len(units))
	for _, r := range reservations {
		if r.UnitID == "" {
			continue
		}
		counts[r.UnitID]++
	}

	ranking := make([]UnitDemand, 0, len(units))
	for _, u := range units {
		ranking = append(ranking, UnitDemand{
			UnitID:       u.ID,
			UnitName:     u.Name,
			Reservations: counts[u.ID],
		})
	}

	// стабильная сортировка: при равном спросе порядок юнитов сохраняется
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Reservations > ranking[j].Reservations
	})
	return ranking
}

// TopClients рейтинг гостей по числу броней. Ключ группировки — номер
// документа, для гостей без документа — имя: два тезки без документа
// склеиваются в одну запись, это осознанное поведение.
func TopClients(reservations []models.Reservation, limit int) []Client {
	if limit <= 0 {
		limit = models.TopClientsLimit
	}

	type entry struct {
		client Client
		order  int
	}
	byKey := make(map[string]*entry)
	var keys []string

	for _, r := range reservations {
		key := r.GuestID
		if key == "" {
			key = r.GuestName
		}
		if key == "" {
			continue
		}
		e, ok := byKey[key]
		if !ok {
			e = &entry{
				client: Client{Name: r.GuestName, GuestID: r.GuestID},
				order:  len(keys),
			}
			byKey[key] = e
			keys = append(keys, key)
		}
		e.client.Stays++
	}

	clients := make([]Client, 0, len(keys))
	for _, k := range keys {
		clients = append(clients, byKey[k].client)
	}
	sort.SliceStable(clients, func(i, j int) bool {
		return clients[i].Stays > clients[j].Stays
	})

	if len(clients) > limit {
		clients = clients[:limit]
	}
	return clients
}

// DemandByMonth количество броней по месяцу заезда, 12 корзин.
// Бронь с нечитаемой датой заезда не попадает ни в одну корзину.
func DemandByMonth(reservations []models.Reservation) [12]int {
	var buckets [12]int
	for _, r := range reservations {
		start, ok := r.CheckinDate()
		if !ok {
			continue
		}
		buckets[int(start.Month())-1]++
	}
	return buckets
}

// BestMonth месяц с максимальным спросом. При равенстве берется более ранний.
func BestMonth(reservations []models.Reservation) time.Month {
	buckets := DemandByMonth(reservations)
	best := 0
	for i, c := range buckets {
		if c > buckets[best] {
			best = i
		}
	}
	return time.Month(best + 1)
}

// ExpenseByCategory суммы расходов по категориям в порядке первого появления.
func ExpenseByCategory(expenses []models.Expense) []CategoryTotal {
	index := make(map[string]int)
	var totals []CategoryTotal

	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			i = len(totals)
			index[e.Category] = i
			totals = append(totals, CategoryTotal{Category: e.Category})
		}
		totals[i].Amount = totals[i].Amount.Add(e.Amount)
	}
	return totals
}

// BillingSummary сводка по броням с оплатой через шлюз: сколько предоплат
// всего к выставлению, сколько уже выставлено и сколько счетов висит.
func BillingSummary(reservations []models.Reservation) Billing {
	b := Billing{TotalToInvoice: decimal.Zero, TotalInvoiced: decimal.Zero}
	for _, r := range reservations {
		if r.PaymentMethod != models.PaymentCardGateway {
			continue
		}
		b.TotalToInvoice = b.TotalToInvoice.Add(r.Deposit)
		if r.Invoiced {
			b.TotalInvoiced = b.TotalInvoiced.Add(r.Deposit)
			b.InvoicedCount++
		} else {
			b.PendingCount++
		}
	}
	return b
}
