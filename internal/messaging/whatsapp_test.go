package messaging

import (
	"strings"
	"testing"

	"aromos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStripPhone(t *testing.T) {
	assert.Equal(t, "5492262123456", StripPhone("+54 9 2262 12-3456"))
	assert.Equal(t, "123", StripPhone("123"))
	assert.Equal(t, "", StripPhone("sin teléfono"))
}

func TestConfirmationLink(t *testing.T) {
	r := &models.Reservation{
		GuestName: "Marta Quiroga",
		Phone:     "+54 9 2262 123456",
		Checkin:   "2026-02-10",
		Checkout:  "2026-02-14",
		Deposit:   decimal.NewFromInt(40000),
	}

	link := ConfirmationLink("Los Aromos", r, "Bungalow 07")

	assert.True(t, strings.HasPrefix(link, "https://wa.me/5492262123456?text="), link)
	assert.Contains(t, link, "Marta+Quiroga")
	assert.Contains(t, link, "2026-02-10")
	assert.NotContains(t, link, " ")
}

func TestConfirmationLinkEmptyPhone(t *testing.T) {
	r := &models.Reservation{GuestName: "G", Phone: ""}
	assert.Equal(t, "", ConfirmationLink("Los Aromos", r, "Bungalow 01"))
}

func TestConfirmationTextOmitsZeroDeposit(t *testing.T) {
	r := &models.Reservation{GuestName: "G", Checkin: "2026-02-10", Checkout: "2026-02-14"}
	text := ConfirmationText("Los Aromos", r, "Bungalow 01")
	assert.NotContains(t, text, "Seña")
	assert.Contains(t, text, "Check-in: 2026-02-10")
}
