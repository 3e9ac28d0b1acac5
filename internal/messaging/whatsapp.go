// Package messaging собирает подтверждения броней для отправки гостю.
package messaging

import (
	"fmt"
	"net/url"
	"strings"

	"aromos/internal/models"
)

// StripPhone оставляет в номере только цифры. wa.me не принимает
// пробелы, дефисы и плюс.
func StripPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ConfirmationText текст подтверждения брони для гостя.
func ConfirmationText(businessName string, r *models.Reservation, unitName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hola %s! Confirmamos tu reserva en %s.\n", r.GuestName, businessName)
	fmt.Fprintf(&b, "%s\n", unitName)
	fmt.Fprintf(&b, "Check-in: %s\n", r.Checkin)
	fmt.Fprintf(&b, "Check-out: %s\n", r.Checkout)
	if !r.Deposit.IsZero() {
		fmt.Fprintf(&b, "Seña: $%s\n", r.Deposit.String())
	}
	b.WriteString("Te esperamos!")
	return b.String()
}

// ConfirmationLink собирает wa.me deep-link с текстом подтверждения.
// Пустой номер дает пустую ссылку: отправлять некуда.
func ConfirmationLink(businessName string, r *models.Reservation, unitName string) string {
	digits := StripPhone(r.Phone)
	if digits == "" {
		return ""
	}
	text := ConfirmationText(businessName, r, unitName)
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, url.QueryEscape(text))
}
