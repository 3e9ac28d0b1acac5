package models

import "time"

// Session авторизованная сессия дашборда. Подписки на снапшоты живут
// пока жива сессия; после разлогина пересчетов быть не должно.
type Session struct {
	Token      string    `json:"token"`
	Principal  string    `json:"principal"`
	LoggedInAt time.Time `json:"logged_in_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}
