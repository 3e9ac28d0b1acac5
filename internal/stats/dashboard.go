package stats

import (
	"time"

	"aromos/internal/models"

	"github.com/shopspring/decimal"
)

// Snapshot полный набор коллекций, от которого считается дашборд.
// Журнал отмен сюда не входит намеренно: он append-only и в статистику не читается.
type Snapshot struct {
	Units        []models.Unit
	Reservations []models.Reservation
	Expenses     []models.Expense
	Maintenance  []models.MaintenanceTask
}

// Dashboard все производные показатели, посчитанные из одного снапшота.
type Dashboard struct {
	Free               int             `json:"free"`
	Occupied           int             `json:"occupied"`
	Cleaning           int             `json:"cleaning"`
	OccupancyRate      int             `json:"occupancy_rate"`
	PendingMaintenance int             `json:"pending_maintenance"`
	TotalIncome        decimal.Decimal `json:"total_income"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	NetProfit          decimal.Decimal `json:"net_profit"`
	DemandRanking      []UnitDemand    `json:"demand_ranking"`
	TopClients         []Client        `json:"top_clients"`
	DemandByMonth      [12]int         `json:"demand_by_month"`
	BestMonth          time.Month      `json:"best_month"`
	ExpenseBreakdown   []CategoryTotal `json:"expense_breakdown"`
	Billing            Billing         `json:"billing"`
	Agenda             Agenda          `json:"agenda"`
	ComputedAt         time.Time       `json:"computed_at"`
}

// Compute пересчитывает дашборд целиком из одного снапшота. Смешивания
// старых и новых коллекций не бывает: результат атомарно подменяет предыдущий.
func Compute(snap Snapshot, now time.Time) Dashboard {
	return Dashboard{
		Free:               FreeCount(snap.Units),
		Occupied:           OccupiedCount(snap.Units),
		Cleaning:           CleaningCount(snap.Units),
		OccupancyRate:      OccupancyRate(snap.Units),
		PendingMaintenance: PendingMaintenanceCount(snap.Maintenance),
		TotalIncome:        TotalIncome(snap.Reservations),
		TotalExpenses:      TotalExpenses(snap.Expenses),
		NetProfit:          NetProfit(snap.Reservations, snap.Expenses),
		DemandRanking:      UnitDemandRanking(snap.Units, snap.Reservations),
		TopClients:         TopClients(snap.Reservations, models.TopClientsLimit),
		DemandByMonth:      DemandByMonth(snap.Reservations),
		BestMonth:          BestMonth(snap.Reservations),
		ExpenseBreakdown:   ExpenseByCategory(snap.Expenses),
		Billing:            BillingSummary(snap.Reservations),
		Agenda:             DailyAgenda(snap.Reservations, now.Format(models.DateLayout)),
		ComputedAt:         now,
	}
}
