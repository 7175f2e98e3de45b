package repository

import (
	"context"
	"testing"
	"time"

	"github.com/schoolops/rollover/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermitRepo_ExclusiveUntilReleased(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePermitRepo(db)
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

	ok, err := repo.TryAcquire(ctx, "transition", "holder-a", now, 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.TryAcquire(ctx, "transition", "holder-b", now.Add(time.Minute), 30*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// Releasing with the wrong holder keeps the lease.
	require.NoError(t, repo.Release(ctx, "transition", "holder-b"))
	ok, err = repo.TryAcquire(ctx, "transition", "holder-b", now.Add(2*time.Minute), 30*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Release(ctx, "transition", "holder-a"))
	ok, err = repo.TryAcquire(ctx, "transition", "holder-b", now.Add(3*time.Minute), 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPermitRepo_ExpiredLeaseCanBeTaken(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLitePermitRepo(db)
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

	ok, err := repo.TryAcquire(ctx, "transition", "crashed", now, 10*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.TryAcquire(ctx, "transition", "fresh", now.Add(11*time.Minute), 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
