package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation хранит заезд/выезд как строки "YYYY-MM-DD" в том виде,
// в котором они пришли из документа. Разбор дат выполняется на чтении,
// битая строка трактуется как "не занято", а не как ошибка.
type Reservation struct {
	ID            string          `json:"id"`
	UnitID        string          `json:"unit_id"`
	GuestName     string          `json:"guest_name"`
	Phone         string          `json:"phone"`
	GuestID       string          `json:"guest_id,omitempty"` // номер документа, опционально
	Guests        int             `json:"guests"`
	Checkin       string          `json:"checkin"`
	Checkout      string          `json:"checkout"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Deposit       decimal.Decimal `json:"deposit"`
	DepositPaid   bool            `json:"deposit_paid"`
	PaymentMethod string          `json:"payment_method"` // cash, card_gateway
	Invoiced      bool            `json:"invoiced"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CheckinDate разбирает дату заезда. ok=false для пустой или битой строки.
func (r Reservation) CheckinDate() (time.Time, bool) {
	return parseDay(r.Checkin)
}

// CheckoutDate разбирает дату выезда. ok=false для пустой или битой строки.
func (r Reservation) CheckoutDate() (time.Time, bool) {
	return parseDay(r.Checkout)
}

func parseDay(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
