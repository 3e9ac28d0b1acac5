package models

import "time"

type MaintenanceTask struct {
	ID        string    `json:"id"`
	UnitID    string    `json:"unit_id"`
	Task      string    `json:"task"`
	Status    string    `json:"status"` // pending, done
	CreatedAt time.Time `json:"created_at"`
}
