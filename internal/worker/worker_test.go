package worker

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"aromos/internal/database"
	"aromos/internal/models"

	"github.com/rs/zerolog"
)

func TestProcessTaskSuccess(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := newTestWorker(db, sheets, RetryPolicy{})

	r := &models.Reservation{
		ID:        "r-1",
		UnitID:    "4",
		GuestName: "tester",
		Checkin:   "2026-02-10",
		Checkout:  "2026-02-12",
	}

	ctx := context.Background()
	if err := worker.EnqueueUpsert(ctx, r); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "done" {
		t.Fatalf("expected status=done, got %s", status)
	}
	if retryCount != 0 {
		t.Fatalf("expected retry_count=0, got %d", retryCount)
	}
	if nextRetry.Valid {
		t.Fatalf("expected next_retry_at NULL on success")
	}
	if sheets.upsertCalls != 1 {
		t.Fatalf("expected upsert call, got %d", sheets.upsertCalls)
	}
}

func TestProcessTaskRetry(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("boom")}
	worker := newTestWorker(db, sheets, RetryPolicy{MaxRetries: 3, InitialDelay: time.Second})

	r := &models.Reservation{ID: "r-2", UnitID: "4", GuestName: "tester", Checkin: "2026-02-10", Checkout: "2026-02-12"}

	ctx := context.Background()
	if err := worker.EnqueueUpsert(ctx, r); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "retry" {
		t.Fatalf("expected status=retry, got %s", status)
	}
	if retryCount != 1 {
		t.Fatalf("expected retry_count=1, got %d", retryCount)
	}
	if !nextRetry.Valid || nextRetry.Time.Before(time.Now()) {
		t.Fatalf("expected next_retry_at in future, got %v", nextRetry)
	}
}

func TestProcessTaskFail(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{err: errors.New("fatal")}
	worker := newTestWorker(db, sheets, RetryPolicy{MaxRetries: 1})

	r := &models.Reservation{ID: "r-3", UnitID: "4", GuestName: "tester", Checkin: "2026-02-10", Checkout: "2026-02-12"}

	ctx := context.Background()
	worker.EnqueueUpsert(ctx, r)
	task, _ := worker.tryLocalQueue()
	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != "failed" {
		t.Fatalf("expected status=failed, got %s", status)
	}
}

func TestSheetsWorker_HandleSheetTask(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := newTestWorker(db, sheets, RetryPolicy{MaxRetries: 3})

	ctx := context.Background()

	t.Run("Upsert", func(t *testing.T) {
		r := &models.Reservation{ID: "r-1", GuestName: "Test"}
		err := worker.handleSheetTask(ctx, TaskUpsert, sheetTaskPayload{ReservationID: r.ID, Reservation: r})
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if sheets.upsertCalls != 1 {
			t.Fatalf("expected 1 upsert call, got %d", sheets.upsertCalls)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		err := worker.handleSheetTask(ctx, TaskDelete, sheetTaskPayload{ReservationID: "r-123"})
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if sheets.deleteCalls != 1 {
			t.Fatalf("expected 1 delete call, got %d", sheets.deleteCalls)
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		err := worker.handleSheetTask(ctx, "resize", sheetTaskPayload{})
		if err == nil {
			t.Fatalf("expected error for unknown task type")
		}
	})
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}
	d1 := policy.NextDelay(1)
	d2 := policy.NextDelay(2)
	d3 := policy.NextDelay(5)

	if d1 != time.Second {
		t.Fatalf("attempt1 expected 1s, got %s", d1)
	}
	if d2 != 2*time.Second {
		t.Fatalf("attempt2 expected 2s, got %s", d2)
	}
	if d3 != 5*time.Second {
		t.Fatalf("attempt5 expected capped 5s, got %s", d3)
	}

	// нулевая политика получает дефолты воркера
	zero := RetryPolicy{}.withDefaults()
	if zero.MaxRetries != 5 || zero.InitialDelay != 2*time.Second || zero.MaxDelay != time.Minute || zero.BackoffFactor != 2 {
		t.Fatalf("unexpected defaults: %+v", zero)
	}
	if d := (RetryPolicy{}).NextDelay(1); d != 2*time.Second {
		t.Fatalf("zero policy attempt1 expected 2s, got %s", d)
	}
}

func TestSheetsWorker_Enqueue(t *testing.T) {
	db := newTestDB(t)
	sheets := &fakeSheets{}
	worker := newTestWorker(db, sheets, RetryPolicy{})

	ctx := context.Background()

	t.Run("ValidUpsert", func(t *testing.T) {
		err := worker.EnqueueUpsert(ctx, &models.Reservation{ID: "r-1", GuestName: "test"})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	})

	t.Run("MissingReservation", func(t *testing.T) {
		err := worker.EnqueueUpsert(ctx, nil)
		if err == nil {
			t.Fatalf("expected error for nil reservation")
		}
	})

	t.Run("MissingID", func(t *testing.T) {
		err := worker.EnqueueDelete(ctx, "")
		if err == nil {
			t.Fatalf("expected error for empty reservation id")
		}
	})
}

// Helpers

type fakeSheets struct {
	err         error
	upsertCalls int
	deleteCalls int
}

func (f *fakeSheets) UpsertReservation(ctx context.Context, r *models.Reservation) error {
	f.upsertCalls++
	return f.err
}

func (f *fakeSheets) DeleteReservationRow(ctx context.Context, id string) error {
	f.deleteCalls++
	return f.err
}

func newTestWorker(db *database.DB, sheets SheetsClient, retry RetryPolicy) *SheetsWorker {
	logger := zerolog.New(io.Discard)
	return NewSheetsWorker(db, sheets, nil, retry, &logger)
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func loadTaskStatus(t *testing.T, db *database.DB, id int64) (status string, retryCount int, nextRetry sql.NullTime) {
	t.Helper()
	row := db.QueryRowContext(context.Background(), `SELECT status, retry_count, next_retry_at FROM sync_queue WHERE id = ?`, id)
	if err := row.Scan(&status, &retryCount, &nextRetry); err != nil {
		t.Fatalf("scan task: %v", err)
	}
	return status, retryCount, nextRetry
}
