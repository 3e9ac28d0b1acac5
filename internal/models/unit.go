package models

import (
	"fmt"
	"strconv"
	"time"
)

type Unit struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Status    string    `json:"status" yaml:"status"` // free, occupied, cleaning
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// DefaultUnits возвращает стартовый набор из 12 бунгало.
// ID строковые "1".."12", имена "Bungalow 01".."Bungalow 12".
func DefaultUnits() []Unit {
	units := make([]Unit, 0, DefaultUnitCount)
	for i := 1; i <= DefaultUnitCount; i++ {
		units = append(units, Unit{
			ID:     strconv.Itoa(i),
			Name:   fmt.Sprintf("Bungalow %02d", i),
			Status: UnitStatusFree,
		})
	}
	return units
}
