package google

import (
	"testing"
	"time"

	"aromos/internal/models"

	"github.com/shopspring/decimal"
)

func TestReservationRowValues(t *testing.T) {
	createdAt := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)

	r := &models.Reservation{
		ID:            "abc-123",
		UnitID:        "7",
		GuestName:     "Marta Quiroga",
		Phone:         "+54 9 2262 123456",
		Guests:        3,
		Checkin:       "2026-02-10",
		Checkout:      "2026-02-14",
		TotalAmount:   decimal.NewFromInt(120000),
		Deposit:       decimal.NewFromInt(40000),
		PaymentMethod: models.PaymentCash,
		CreatedAt:     createdAt,
	}

	values := reservationRowValues(r)

	expected := []interface{}{
		"abc-123",
		"7",
		"Marta Quiroga",
		"+54 9 2262 123456",
		3,
		"2026-02-10",
		"2026-02-14",
		"120000",
		"40000",
		"cash",
		"2026-01-20 10:00:00",
	}

	if len(values) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(values))
	}

	for i, v := range values {
		if v != expected[i] {
			t.Errorf("At index %d: expected %v, got %v", i, expected[i], v)
		}
	}
}

func TestCacheOperations(t *testing.T) {
	s := &SheetsService{
		rowCache: make(map[string]int),
	}

	s.setCachedRow("r-100", 5)
	row, ok := s.getCachedRow("r-100")
	if !ok || row != 5 {
		t.Errorf("Expected row 5, got %d (ok=%v)", row, ok)
	}

	s.deleteCacheRow("r-100")
	_, ok = s.getCachedRow("r-100")
	if ok {
		t.Errorf("Expected row to be deleted from cache")
	}

	s.setCachedRow("r-200", 10)
	s.ClearCache()
	_, ok = s.getCachedRow("r-200")
	if ok {
		t.Errorf("Expected cache to be cleared")
	}
}
