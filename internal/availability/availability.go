// Package availability отвечает на вопросы занятости по дням поверх плоского
// списка броней. Все функции чистые: состояние держит вызывающая сторона,
// пересчет на каждом новом снапшоте безопасен.
package availability

import (
	"time"

	"aromos/internal/models"
)

// MonthInfo метаданные месяца для раскладки сетки 7xN.
// FirstWeekday по соглашению 0=воскресенье (совпадает с time.Weekday).
type MonthInfo struct {
	FirstWeekday int        `json:"first_weekday"`
	Days         int        `json:"days"`
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
}

// Cell одна клетка календарной сетки. Day=0 — пустая клетка-отступ
// перед первым числом месяца.
type Cell struct {
	Day      int  `json:"day"`
	Occupied bool `json:"occupied"`
}

// IsDateOccupied возвращает true, если хотя бы одна бронь юнита накрывает
// указанный день. Интервал [checkin, checkout] включительный с обеих сторон:
// день выезда считается занятым. Бронь без unit_id и бронь с нечитаемыми
// датами не совпадают никогда. Пересечение броней не проверяется — две брони
// на один день легальны, предикат от этого не меняется.
func IsDateOccupied(reservations []models.Reservation, day int, month time.Month, year int, unitID string) bool {
	if unitID == "" {
		return false
	}
	date := time.Date(year, month, day, 0, 0, 0, 0, time.Local)

	for _, r := range reservations {
		if r.UnitID == "" || r.UnitID != unitID {
			continue
		}
		start, ok := r.CheckinDate()
		if !ok {
			continue
		}
		end, ok := r.CheckoutDate()
		if !ok {
			continue
		}
		if !date.Before(start) && !date.After(end) {
			return true
		}
	}
	return false
}

// DaysInMonth возвращает метаданные месяца, в который попадает t.
func DaysInMonth(t time.Time) MonthInfo {
	year, month, _ := t.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	// нулевой день следующего месяца = последний день текущего
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local)

	return MonthInfo{
		FirstWeekday: int(first.Weekday()),
		Days:         last.Day(),
		Year:         year,
		Month:        month,
	}
}

// MonthGrid строит клетки месячной сетки занятости юнита: сначала пустые
// клетки до первого дня недели, затем по клетке на каждое число месяца.
// Чистая функция от (t, reservations, unitID), можно вызывать на каждый рендер.
func MonthGrid(reservations []models.Reservation, t time.Time, unitID string) []Cell {
	info := DaysInMonth(t)

	cells := make([]Cell, 0, info.FirstWeekday+info.Days)
	for i := 0; i < info.FirstWeekday; i++ {
		cells = append(cells, Cell{})
	}
	for d := 1; d <= info.Days; d++ {
		cells = append(cells, Cell{
			Day:      d,
			Occupied: IsDateOccupied(reservations, d, info.Month, info.Year, unitID),
		})
	}
	return cells
}
