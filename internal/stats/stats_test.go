package stats

import (
	"testing"
	"time"

	"aromos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTotalIncome(t *testing.T) {
	reservations := []models.Reservation{
		{Deposit: dec("100"), TotalAmount: dec("500")},
		{Deposit: dec("50.5")},
		{Deposit: decimal.Zero},
	}

	// считаются предоплаты, не полные суммы
	assert.True(t, TotalIncome(reservations).Equal(dec("150.5")))
	assert.True(t, TotalIncome(nil).Equal(decimal.Zero))
}

func TestTotalIncomeOrderInvariant(t *testing.T) {
	a := []models.Reservation{{Deposit: dec("10")}, {Deposit: dec("20")}, {Deposit: dec("30")}}
	b := []models.Reservation{{Deposit: dec("30")}, {Deposit: dec("10")}, {Deposit: dec("20")}}

	assert.True(t, TotalIncome(a).Equal(TotalIncome(b)))
}

func TestTotalExpensesAndNetProfit(t *testing.T) {
	reservations := []models.Reservation{{Deposit: dec("200")}}
	expenses := []models.Expense{
		{Amount: dec("60")},
		{Amount: dec("15")},
	}

	assert.True(t, TotalExpenses(expenses).Equal(dec("75")))
	assert.True(t, TotalExpenses(nil).Equal(decimal.Zero))
	assert.True(t, NetProfit(reservations, expenses).Equal(dec("125")))
}

func TestOccupancyRate(t *testing.T) {
	units := models.DefaultUnits()
	for i := 0; i < 3; i++ {
		units[i].Status = models.UnitStatusOccupied
	}

	// 3 из 12 заняты
	assert.Equal(t, 25, OccupancyRate(units))
	assert.Equal(t, 0, OccupancyRate(nil))
	assert.Equal(t, 0, OccupancyRate([]models.Unit{}))
}

func TestUnitCounts(t *testing.T) {
	units := []models.Unit{
		{ID: "1", Status: models.UnitStatusFree},
		{ID: "2", Status: models.UnitStatusOccupied},
		{ID: "3", Status: models.UnitStatusCleaning},
		{ID: "4", Status: models.UnitStatusFree},
	}

	assert.Equal(t, 2, FreeCount(units))
	assert.Equal(t, 1, OccupiedCount(units))
	assert.Equal(t, 1, CleaningCount(units))
}

func TestPendingMaintenanceCount(t *testing.T) {
	tasks := []models.MaintenanceTask{
		{Status: models.TaskPending},
		{Status: models.TaskDone},
		{Status: models.TaskPending},
	}
	assert.Equal(t, 2, PendingMaintenanceCount(tasks))
	assert.Equal(t, 0, PendingMaintenanceCount(nil))
}

func TestDailyAgenda(t *testing.T) {
	reservations := []models.Reservation{
		{ID: "a", Checkin: "2024-06-01", Checkout: "2024-06-05"},
		{ID: "b", Checkin: "2024-05-28", Checkout: "2024-06-01"},
		{ID: "c", Checkin: "2024-06-01", Checkout: "2024-06-01"},
	}

	agenda := DailyAgenda(reservations, "2024-06-01")
	require.Len(t, agenda.Checkins, 2)
	require.Len(t, agenda.Checkouts, 2)
	assert.Equal(t, "a", agenda.Checkins[0].ID)
	assert.Equal(t, "c", agenda.Checkins[1].ID)
	assert.Equal(t, "b", agenda.Checkouts[0].ID)

	// сравнение строковое: иной формат даты молча выпадает
	off := []models.Reservation{{Checkin: "01/06/2024"}}
	empty := DailyAgenda(off, "2024-06-01")
	assert.Empty(t, empty.Checkins)
	assert.Empty(t, empty.Checkouts)
}

func TestUnitDemandRankingStable(t *testing.T) {
	units := []models.Unit{
		{ID: "1", Name: "Bungalow 01"},
		{ID: "2", Name: "Bungalow 02"},
		{ID: "3", Name: "Bungalow 03"},
		{ID: "4", Name: "Bungalow 04"},
	}
	reservations := []models.Reservation{
		{UnitID: "2"}, {UnitID: "2"},
		{UnitID: "3"},
		{UnitID: "4"},
		{UnitID: ""}, // без юнита в рейтинг не попадает
	}

	ranking := UnitDemandRanking(units, reservations)
	require.Len(t, ranking, 4)

	assert.Equal(t, "2", ranking[0].UnitID)
	assert.Equal(t, 2, ranking[0].Reservations)
	// ничья 3 и 4 по одной брони: исходный порядок юнитов сохранен
	assert.Equal(t, "3", ranking[1].UnitID)
	assert.Equal(t, "4", ranking[2].UnitID)
	// ноль броней в конце
	assert.Equal(t, "1", ranking[3].UnitID)
	assert.Equal(t, 0, ranking[3].Reservations)
}

func TestTopClients(t *testing.T) {
	reservations := []models.Reservation{
		{GuestName: "Ana", GuestID: "111"},
		{GuestName: "Ana", GuestID: "111"},
		{GuestName: "Ana", GuestID: "111"},
		{GuestName: "Bruno"},
		{GuestName: "Bruno"},
		{GuestName: "Carla", GuestID: "333"},
	}

	clients := TopClients(reservations, 5)
	require.Len(t, clients, 3)
	assert.Equal(t, Client{Name: "Ana", GuestID: "111", Stays: 3}, clients[0])
	assert.Equal(t, Client{Name: "Bruno", Stays: 2}, clients[1])
	assert.Equal(t, Client{Name: "Carla", GuestID: "333", Stays: 1}, clients[2])
}

func TestTopClientsNameFallbackMerges(t *testing.T) {
	// два разных гостя без документа и с одним именем склеиваются — документированное поведение
	reservations := []models.Reservation{
		{GuestName: "Luna"},
		{GuestName: "Luna"},
	}

	clients := TopClients(reservations, 5)
	require.Len(t, clients, 1)
	assert.Equal(t, 2, clients[0].Stays)
}

func TestTopClientsLimit(t *testing.T) {
	var reservations []models.Reservation
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		reservations = append(reservations, models.Reservation{GuestName: "g" + id, GuestID: id})
	}

	clients := TopClients(reservations, 5)
	assert.Len(t, clients, 5)
}

func TestDemandByMonth(t *testing.T) {
	reservations := []models.Reservation{
		{Checkin: "2024-01-10"},
		{Checkin: "2024-01-20"},
		{Checkin: "2024-07-01"},
		{Checkin: "bad-date"},
	}

	buckets := DemandByMonth(reservations)
	assert.Equal(t, 2, buckets[0])
	assert.Equal(t, 1, buckets[6])
	assert.Equal(t, time.January, BestMonth(reservations))
}

func TestExpenseByCategoryCoercion(t *testing.T) {
	// кривые суммы приводятся к нулю на границе, категория из группировки не выпадает
	expenses := []models.Expense{
		{Category: models.ExpenseCleaning, Amount: models.ParseAmount("150")},
		{Category: models.ExpenseCleaning, Amount: models.ParseAmount("bad")},
		{Category: models.ExpenseServices, Amount: models.ParseAmount("30")},
	}

	totals := ExpenseByCategory(expenses)
	require.Len(t, totals, 2)
	// порядок первого появления
	assert.Equal(t, models.ExpenseCleaning, totals[0].Category)
	assert.True(t, totals[0].Amount.Equal(dec("150")))
	assert.Equal(t, models.ExpenseServices, totals[1].Category)
	assert.True(t, totals[1].Amount.Equal(dec("30")))
}

func TestBillingSummary(t *testing.T) {
	reservations := []models.Reservation{
		{PaymentMethod: models.PaymentCardGateway, Deposit: dec("100"), Invoiced: true},
		{PaymentMethod: models.PaymentCardGateway, Deposit: dec("200"), Invoiced: false},
		{PaymentMethod: models.PaymentCardGateway, Deposit: dec("300"), Invoiced: false},
		{PaymentMethod: models.PaymentCash, Deposit: dec("999")},
	}

	b := BillingSummary(reservations)
	assert.True(t, b.TotalToInvoice.Equal(dec("600")))
	assert.True(t, b.TotalInvoiced.Equal(dec("100")))
	assert.Equal(t, 2, b.PendingCount)
	assert.Equal(t, 1, b.InvoicedCount)

	// pending + invoiced покрывают все брони со шлюзом
	gateway := 0
	for _, r := range reservations {
		if r.PaymentMethod == models.PaymentCardGateway {
			gateway++
		}
	}
	assert.Equal(t, gateway, b.PendingCount+b.InvoicedCount)
}

func TestComputeDashboard(t *testing.T) {
	units := models.DefaultUnits()
	units[0].Status = models.UnitStatusOccupied

	snap := Snapshot{
		Units: units,
		Reservations: []models.Reservation{
			{UnitID: "1", GuestName: "Ana", Deposit: dec("100"), Checkin: "2024-06-01", Checkout: "2024-06-03"},
		},
		Expenses:    []models.Expense{{Category: models.ExpenseOther, Amount: dec("40")}},
		Maintenance: []models.MaintenanceTask{{Status: models.TaskPending}},
	}

	now := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.Local)
	d := Compute(snap, now)

	assert.Equal(t, 11, d.Free)
	assert.Equal(t, 1, d.Occupied)
	assert.Equal(t, 8, d.OccupancyRate) // round(100/12)
	assert.Equal(t, 1, d.PendingMaintenance)
	assert.True(t, d.TotalIncome.Equal(dec("100")))
	assert.True(t, d.NetProfit.Equal(dec("60")))
	assert.Equal(t, time.June, d.BestMonth)
	require.Len(t, d.Agenda.Checkins, 1)
	assert.Equal(t, "Ana", d.Agenda.Checkins[0].GuestName)
	assert.Equal(t, now, d.ComputedAt)
}
