package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRun(startedAt time.Time) *domain.TransitionRun {
	return &domain.TransitionRun{
		ID:        uuid.New().String(),
		FromYear:  "2025/2026",
		ToYear:    "2026/2027",
		PlanJSON:  []byte(`{"from_year":"2025/2026"}`),
		Status:    domain.RunRunning,
		StartedAt: startedAt,
	}
}

func TestRunRepo_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	run := newTestRun(now)
	require.NoError(t, repo.Create(ctx, run))

	require.NoError(t, repo.MarkStepCompleted(ctx, run.ID, 1))
	require.NoError(t, repo.MarkStepCompleted(ctx, run.ID, 2))
	require.NoError(t, repo.MarkStepCompleted(ctx, run.ID, 1))
	require.NoError(t, repo.MarkFailed(ctx, run.ID, 3, "disk full", now))

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunFailed, got.Status)
	assert.Equal(t, 2, got.LastCompletedStep, "marker never moves backwards")
	assert.Equal(t, 3, got.FailedStep)
	assert.Equal(t, "disk full", got.Error)
	assert.Equal(t, run.PlanJSON, got.PlanJSON)
	require.NotNil(t, got.FinishedAt)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)

	require.NoError(t, repo.MarkRunning(ctx, run.ID))
	require.NoError(t, repo.MarkCompleted(ctx, run.ID, now))

	got, err = repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, got.Status)
	assert.Equal(t, 0, got.FailedStep)
	assert.Empty(t, got.Error)
}

func TestRunRepo_Latest(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	_, err := repo.Latest(ctx)
	assert.True(t, errors.Is(err, ErrNotFound))

	older := newTestRun(now.Add(-time.Hour))
	newer := newTestRun(now)
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
}

func TestRunRepo_MarkUnknownRun(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(db)

	err := repo.MarkStepCompleted(context.Background(), "missing", 1)
	assert.True(t, errors.Is(err, ErrNotFound))
}
