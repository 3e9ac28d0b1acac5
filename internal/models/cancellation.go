package models

import "time"

// CancellationRecord пишется при удалении брони и больше никогда не читается
// бизнес-логикой: журнал только пополняется (append-only) и не попадает в статистику.
type CancellationRecord struct {
	ID         string      `json:"id"`
	Original   Reservation `json:"original"`
	Reason     string      `json:"reason"` // cancellation, date_change
	CanceledAt time.Time   `json:"canceled_at"`
}
