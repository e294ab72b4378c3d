// Package worker polls internal/store for queued alignment runs and
// drives them through internal/align.Pipeline. It is adapted directly
// from the teacher's internal/worker/worker.go: the same polling-ticker
// plus JobHandler-map shape, generalized from one handler per article job
// type to a single alignment handler, since syncalign only ever queues
// one kind of work.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/naozine/syncalign/internal/store"
)

// Handler executes one queued run to completion.
type Handler func(ctx context.Context, run *store.Run) error

const maxRetries = 3

// Worker polls store for queued runs and executes them with Handler.
type Worker struct {
	runs     *store.RunRepository
	handler  Handler
	interval time.Duration
	logger   *log.Logger
	stop     chan struct{}
	wg       sync.WaitGroup
}

// New constructs a Worker over runs, executing every queued run with
// handler.
func New(runs *store.RunRepository, handler Handler, logger *log.Logger) *Worker {
	return &Worker{
		runs:     runs,
		handler:  handler,
		interval: time.Second,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// SetInterval overrides the default one-second poll interval.
func (w *Worker) SetInterval(d time.Duration) { w.interval = d }

// Start begins polling in a background goroutine.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
	w.logger.Info("worker started")
}

// Stop signals the polling loop to exit and waits for it.
func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
	w.logger.Info("worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.processNext(ctx)
		}
	}
}

func (w *Worker) processNext(ctx context.Context) {
	run, err := w.runs.GetNextQueued(ctx)
	if err != nil {
		w.logger.Error("get next queued run", "err", err)
		return
	}
	if run == nil {
		return
	}

	if err := w.runs.Start(ctx, run.ID); err != nil {
		w.logger.Error("start run", "run_id", run.ID, "err", err)
		return
	}

	w.logger.Info("processing run", "run_id", run.ID)

	if err := w.handler(ctx, run); err != nil {
		w.logger.Error("run failed", "run_id", run.ID, "err", err)
		w.handleFailure(ctx, run, err)
		return
	}

	w.logger.Info("run completed", "run_id", run.ID)
}

func (w *Worker) handleFailure(ctx context.Context, run *store.Run, runErr error) {
	if run.RetryCount < maxRetries {
		if err := w.runs.Retry(ctx, run.ID); err != nil {
			w.logger.Error("retry run", "run_id", run.ID, "err", err)
			return
		}
		w.logger.Warn("run queued for retry", "run_id", run.ID, "attempt", run.RetryCount+1, "max", maxRetries)
		return
	}
	if err := w.runs.Fail(ctx, run.ID, runErr.Error()); err != nil {
		w.logger.Error("mark run failed", "run_id", run.ID, "err", err)
	}
}
