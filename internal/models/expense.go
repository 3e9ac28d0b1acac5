package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense создается и удаляется целиком, редактирование не предусмотрено.
type Expense struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"` // services, maintenance, cleaning, payroll, other
	Date        string          `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}
