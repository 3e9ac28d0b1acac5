package availability

import (
	"testing"
	"time"

	"aromos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDateOccupied(t *testing.T) {
	reservations := []models.Reservation{
		{UnitID: "1", Checkin: "2024-01-10", Checkout: "2024-01-12"},
	}

	// внутри интервала
	assert.True(t, IsDateOccupied(reservations, 11, time.January, 2024, "1"))
	// границы включительно: и заезд, и выезд заняты
	assert.True(t, IsDateOccupied(reservations, 10, time.January, 2024, "1"))
	assert.True(t, IsDateOccupied(reservations, 12, time.January, 2024, "1"))
	// за пределами
	assert.False(t, IsDateOccupied(reservations, 9, time.January, 2024, "1"))
	assert.False(t, IsDateOccupied(reservations, 13, time.January, 2024, "1"))
	// другой юнит
	assert.False(t, IsDateOccupied(reservations, 11, time.January, 2024, "2"))
}

func TestIsDateOccupiedMissingUnitID(t *testing.T) {
	reservations := []models.Reservation{
		{UnitID: "", Checkin: "2024-01-01", Checkout: "2024-12-31"},
	}

	for d := 1; d <= 31; d++ {
		assert.False(t, IsDateOccupied(reservations, d, time.January, 2024, "1"))
	}
	// и запрос без юнита тоже пуст
	assert.False(t, IsDateOccupied(reservations, 5, time.January, 2024, ""))
}

func TestIsDateOccupiedMalformedDates(t *testing.T) {
	reservations := []models.Reservation{
		{UnitID: "1", Checkin: "", Checkout: "2024-01-12"},
		{UnitID: "1", Checkin: "2024-01-10", Checkout: "garbage"},
	}

	// битая дата означает "не занято", а не панику
	assert.False(t, IsDateOccupied(reservations, 11, time.January, 2024, "1"))
}

func TestIsDateOccupiedOverlappingReservations(t *testing.T) {
	// две брони на один юнит и те же даты — обе легальны
	reservations := []models.Reservation{
		{UnitID: "3", Checkin: "2024-05-01", Checkout: "2024-05-05"},
		{UnitID: "3", Checkin: "2024-05-03", Checkout: "2024-05-08"},
	}

	assert.True(t, IsDateOccupied(reservations, 4, time.May, 2024, "3"))
	assert.True(t, IsDateOccupied(reservations, 7, time.May, 2024, "3"))
	assert.False(t, IsDateOccupied(reservations, 9, time.May, 2024, "3"))
}

func TestDaysInMonth(t *testing.T) {
	// январь 2024: понедельник, 31 день
	info := DaysInMonth(time.Date(2024, time.January, 15, 12, 0, 0, 0, time.Local))
	assert.Equal(t, 1, info.FirstWeekday)
	assert.Equal(t, 31, info.Days)
	assert.Equal(t, 2024, info.Year)
	assert.Equal(t, time.January, info.Month)

	// февраль 2024 високосный
	info = DaysInMonth(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.Local))
	assert.Equal(t, 29, info.Days)

	// февраль 2023 обычный
	info = DaysInMonth(time.Date(2023, time.February, 28, 0, 0, 0, 0, time.Local))
	assert.Equal(t, 28, info.Days)

	// сентябрь 2024 начинается с воскресенья
	info = DaysInMonth(time.Date(2024, time.September, 10, 0, 0, 0, 0, time.Local))
	assert.Equal(t, 0, info.FirstWeekday)
	assert.Equal(t, 30, info.Days)
}

func TestMonthGrid(t *testing.T) {
	reservations := []models.Reservation{
		{UnitID: "1", Checkin: "2024-01-10", Checkout: "2024-01-12"},
	}

	cells := MonthGrid(reservations, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local), "1")
	// 1 пустая клетка (понедельник) + 31 день
	require.Len(t, cells, 32)

	assert.Equal(t, Cell{}, cells[0])
	assert.Equal(t, Cell{Day: 1, Occupied: false}, cells[1])
	assert.Equal(t, Cell{Day: 10, Occupied: true}, cells[10])
	assert.Equal(t, Cell{Day: 11, Occupied: true}, cells[11])
	assert.Equal(t, Cell{Day: 12, Occupied: true}, cells[12])
	assert.Equal(t, Cell{Day: 13, Occupied: false}, cells[13])
	assert.Equal(t, Cell{Day: 31, Occupied: false}, cells[31])
}

func TestMonthGridRepeatable(t *testing.T) {
	reservations := []models.Reservation{
		{UnitID: "2", Checkin: "2024-03-05", Checkout: "2024-03-06"},
	}
	at := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)

	first := MonthGrid(reservations, at, "2")
	second := MonthGrid(reservations, at, "2")
	assert.Equal(t, first, second)
}
