package models

const (
	UnitStatusFree     = "free"
	UnitStatusOccupied = "occupied"
	UnitStatusCleaning = "cleaning"
)

const (
	TaskPending = "pending"
	TaskDone    = "done"
)

const (
	PaymentCash        = "cash"
	PaymentCardGateway = "card_gateway"
)

const (
	ExpenseServices    = "services"
	ExpenseMaintenance = "maintenance"
	ExpenseCleaning    = "cleaning"
	ExpensePayroll     = "payroll"
	ExpenseOther       = "other"
)

const (
	ReasonCancellation = "cancellation"
	ReasonDateChange   = "date_change"
)

const (
	// DateLayout формат дат заезда/выезда в документах
	DateLayout = "2006-01-02"

	// DefaultUnitCount количество бунгало, создаваемых при первом запуске
	DefaultUnitCount = 12

	// TopClientsLimit размер рейтинга постоянных гостей
	TopClientsLimit = 5

	// WorkerQueueSize размер очереди воркера синхронизации
	WorkerQueueSize = 1000

	// SessionTTL время жизни сессии дашборда в Redis (секунды)
	SessionTTL = 24 * 60 * 60

	// RateLimitRequests количество запросов в окне
	RateLimitRequests = 60

	// RateLimitWindow окно ограничения частоты запросов (секунды)
	RateLimitWindow = 60
)

// ValidUnitStatus проверяет, что статус относится к известным операционным состояниям.
func ValidUnitStatus(s string) bool {
	switch s {
	case UnitStatusFree, UnitStatusOccupied, UnitStatusCleaning:
		return true
	}
	return false
}

// ValidExpenseCategory проверяет категорию расхода.
func ValidExpenseCategory(s string) bool {
	switch s {
	case ExpenseServices, ExpenseMaintenance, ExpenseCleaning, ExpensePayroll, ExpenseOther:
		return true
	}
	return false
}

// ValidCancellationReason проверяет код причины отмены.
func ValidCancellationReason(s string) bool {
	return s == ReasonCancellation || s == ReasonDateChange
}
