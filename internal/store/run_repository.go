package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Run statuses, mirroring the teacher's JobStatus* constants.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one server-tracked pipeline execution (spec §GLOSSARY "Run").
type Run struct {
	ID           string
	AudioPath    string
	TextJSON     string
	ConfigJSON   string
	Status       string
	Priority     int
	Progress     int
	CurrentStep  string
	RetryCount   int
	Error        string
	ResultJSON   string
	CreatedAt    time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// RunRepository is the data-access layer for alignment_runs, mirroring
// the shape of the teacher's JobRepository (Create/GetByID/
// GetNextQueued/Start/Complete/Fail/Retry).
type RunRepository struct {
	db *DB
}

// NewRunRepository constructs a RunRepository over db.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new queued run, assigning an ID if none is set.
func (r *RunRepository) Create(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Status == "" {
		run.Status = StatusQueued
	}
	run.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alignment_runs
			(id, audio_path, text_json, config_json, status, priority, progress, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.AudioPath, run.TextJSON, run.ConfigJSON, run.Status, run.Priority, run.Progress, run.CreatedAt,
	)
	return err
}

// GetByID returns the run with the given ID, or nil if none exists.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, audio_path, text_json, config_json, status, priority, progress,
		       current_step, retry_count, error, result_json, created_at, started_at, completed_at
		FROM alignment_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// GetNextQueued returns the highest-priority, oldest queued run, or nil
// if the queue is empty.
func (r *RunRepository) GetNextQueued(ctx context.Context) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, audio_path, text_json, config_json, status, priority, progress,
		       current_step, retry_count, error, result_json, created_at, started_at, completed_at
		FROM alignment_runs
		WHERE status = ?
		ORDER BY priority DESC, created_at ASC
		LIMIT 1`, StatusQueued)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// Start marks a run as running.
func (r *RunRepository) Start(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE alignment_runs SET status = ?, started_at = ? WHERE id = ?`,
		StatusRunning, now, id)
	return err
}

// UpdateProgress records the current pipeline step and percent complete.
func (r *RunRepository) UpdateProgress(ctx context.Context, id string, progress int, step string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE alignment_runs SET progress = ?, current_step = ? WHERE id = ?`,
		progress, step, id)
	return err
}

// Complete marks a run as completed, persisting its sync map JSON.
func (r *RunRepository) Complete(ctx context.Context, id string, resultJSON string) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE alignment_runs SET status = ?, progress = 100, result_json = ?, completed_at = ? WHERE id = ?`,
		StatusCompleted, resultJSON, now, id)
	return err
}

// Fail marks a run as permanently failed.
func (r *RunRepository) Fail(ctx context.Context, id, errMsg string) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE alignment_runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		StatusFailed, errMsg, now, id)
	return err
}

// Retry requeues a run and increments its retry count.
func (r *RunRepository) Retry(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE alignment_runs SET status = ?, retry_count = retry_count + 1, started_at = NULL WHERE id = ?`,
		StatusQueued, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var currentStep, errMsg, resultJSON sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&run.ID, &run.AudioPath, &run.TextJSON, &run.ConfigJSON, &run.Status, &run.Priority, &run.Progress,
		&currentStep, &run.RetryCount, &errMsg, &resultJSON, &run.CreatedAt, &startedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	run.CurrentStep = currentStep.String
	run.Error = errMsg.String
	run.ResultJSON = resultJSON.String
	if startedAt.Valid {
		t := startedAt.Time
		run.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return &run, nil
}
