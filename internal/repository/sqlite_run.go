package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/schoolops/rollover/internal/db"
	"github.com/schoolops/rollover/internal/domain"
)

const runColumns = `id, from_year, to_year, plan_json, status, last_completed_step, failed_step, error, started_at, finished_at`

// SQLiteRunRepo implements RunRepo, the journal of transition executions.
type SQLiteRunRepo struct {
	db db.DBTX
}

// NewSQLiteRunRepo creates a new SQLiteRunRepo.
func NewSQLiteRunRepo(conn db.DBTX) *SQLiteRunRepo {
	return &SQLiteRunRepo{db: conn}
}

func (r *SQLiteRunRepo) Create(ctx context.Context, run *domain.TransitionRun) error {
	query := `INSERT INTO transition_runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.FromYear,
		run.ToYear,
		run.PlanJSON,
		string(run.Status),
		run.LastCompletedStep,
		run.FailedStep,
		run.Error,
		formatTime(run.StartedAt),
		nullableTimeToString(run.FinishedAt, time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting transition run: %w", err)
	}
	return nil
}

func (r *SQLiteRunRepo) GetByID(ctx context.Context, id string) (*domain.TransitionRun, error) {
	return r.one(ctx, `SELECT `+runColumns+` FROM transition_runs WHERE id = ?`, id)
}

func (r *SQLiteRunRepo) Latest(ctx context.Context) (*domain.TransitionRun, error) {
	return r.one(ctx, `SELECT `+runColumns+` FROM transition_runs ORDER BY started_at DESC, rowid DESC LIMIT 1`)
}

// MarkStepCompleted advances the last-completed-step marker. The marker
// never moves backwards.
func (r *SQLiteRunRepo) MarkStepCompleted(ctx context.Context, id string, step int) error {
	return r.exec(ctx, "marking step completed",
		`UPDATE transition_runs SET last_completed_step = MAX(last_completed_step, ?) WHERE id = ?`, step, id)
}

func (r *SQLiteRunRepo) MarkRunning(ctx context.Context, id string) error {
	return r.exec(ctx, "marking run running",
		`UPDATE transition_runs SET status = 'running', failed_step = 0, error = '', finished_at = NULL WHERE id = ?`, id)
}

func (r *SQLiteRunRepo) MarkFailed(ctx context.Context, id string, step int, errMsg string, now time.Time) error {
	return r.exec(ctx, "marking run failed",
		`UPDATE transition_runs SET status = 'failed', failed_step = ?, error = ?, finished_at = ? WHERE id = ?`,
		step, errMsg, formatTime(now), id)
}

func (r *SQLiteRunRepo) MarkCompleted(ctx context.Context, id string, now time.Time) error {
	return r.exec(ctx, "marking run completed",
		`UPDATE transition_runs SET status = 'completed', failed_step = 0, error = '', finished_at = ? WHERE id = ?`,
		formatTime(now), id)
}

func (r *SQLiteRunRepo) exec(ctx context.Context, what, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: transition run: %w", what, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRunRepo) one(ctx context.Context, query string, args ...any) (*domain.TransitionRun, error) {
	var run domain.TransitionRun
	var status, startedAt string
	var finishedAt sql.NullString

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&run.ID, &run.FromYear, &run.ToYear, &run.PlanJSON, &status,
		&run.LastCompletedStep, &run.FailedStep, &run.Error, &startedAt, &finishedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("transition run: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning transition run: %w", err)
	}
	run.Status = domain.RunStatus(status)
	if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	run.FinishedAt = parseNullableTime(finishedAt, time.RFC3339)
	return &run, nil
}
