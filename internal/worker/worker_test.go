package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/naozine/syncalign/internal/store"
)

func newTestRunRepository(t *testing.T) *store.RunRepository {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewRunRepository(db)
}

func testLogger() *charmlog.Logger {
	return charmlog.NewWithOptions(os.Stderr, charmlog.Options{Level: charmlog.ErrorLevel})
}

func TestWorkerProcessesQueuedRun(t *testing.T) {
	runs := newTestRunRepository(t)
	ctx := context.Background()

	run := &store.Run{AudioPath: "a.wav", TextJSON: "[]", ConfigJSON: "{}"}
	if err := runs.Create(ctx, run); err != nil {
		t.Fatalf("Create: %v", err)
	}

	processed := make(chan string, 1)
	w := New(runs, func(ctx context.Context, r *store.Run) error {
		processed <- r.ID
		return nil
	}, testLogger())
	w.SetInterval(10 * time.Millisecond)

	runCtx, cancel := context.WithCancel(ctx)
	w.Start(runCtx)
	defer func() {
		cancel()
		w.Stop()
	}()

	select {
	case id := <-processed:
		if id != run.ID {
			t.Errorf("expected run %s, got %s", run.ID, id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for worker to process queued run")
	}

	got, err := runs.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != store.StatusCompleted && got.Status != store.StatusRunning {
		t.Errorf("expected run to be running or completed, got %s", got.Status)
	}
}

func TestWorkerRetriesThenFailsAfterMaxRetries(t *testing.T) {
	runs := newTestRunRepository(t)
	ctx := context.Background()

	run := &store.Run{AudioPath: "bad.wav", TextJSON: "[]", ConfigJSON: "{}"}
	if err := runs.Create(ctx, run); err != nil {
		t.Fatalf("Create: %v", err)
	}

	attempts := make(chan struct{}, maxRetries+2)
	w := New(runs, func(ctx context.Context, r *store.Run) error {
		attempts <- struct{}{}
		return context.DeadlineExceeded
	}, testLogger())
	w.SetInterval(5 * time.Millisecond)

	runCtx, cancel := context.WithCancel(ctx)
	w.Start(runCtx)
	defer func() {
		cancel()
		w.Stop()
	}()

	for i := 0; i <= maxRetries; i++ {
		select {
		case <-attempts:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for attempt %d", i)
		}
	}

	deadline := time.After(2 * time.Second)
	for {
		got, err := runs.GetByID(ctx, run.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Status == store.StatusFailed {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("expected run to end up failed, got status %s", got.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
