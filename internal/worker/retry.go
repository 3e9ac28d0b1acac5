package worker

import (
	"math"
	"time"
)

// RetryPolicy параметры экспоненциального бэкоффа для задач синхронизации
// леджера. Нулевые поля заменяются дефолтами воркера, политику можно
// передавать частично заполненной.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// withDefaults подставляет дефолты воркера вместо нулевых полей.
func (r RetryPolicy) withDefaults() RetryPolicy {
	if r.MaxRetries <= 0 {
		r.MaxRetries = 5
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = 2 * time.Second
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = time.Minute
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}
	return r
}

// NextDelay задержка перед попыткой attempt (нумерация с единицы):
// геометрический рост от InitialDelay с потолком MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	r = r.withDefaults()
	if attempt < 1 {
		attempt = 1
	}

	delay := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	d := time.Duration(delay)
	// переполнение float64->Duration уходит в минус, тоже прижимается к потолку
	if d > r.MaxDelay || d <= 0 {
		d = r.MaxDelay
	}
	return d
}
