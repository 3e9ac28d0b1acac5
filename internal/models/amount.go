package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount приводит денежное поле документа к decimal.
// Политика "coerce, never reject": пустая или битая строка дает ноль,
// агрегация никогда не падает из-за кривого документа.
func ParseAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
