package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/schoolops/rollover/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcademicYearRepo_GetUnset(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteAcademicYearRepo(db)

	_, err := repo.Get(context.Background())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAcademicYearRepo_SetBumpsVersion(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteAcademicYearRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	y, err := repo.Set(ctx, "2025/2026", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), y.Version)

	y, err = repo.Set(ctx, "2025/2026", now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), y.Version)

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025/2026", got.Period)
	assert.Equal(t, int64(2), got.Version)

	_, err = repo.Set(ctx, "2025", now)
	assert.Error(t, err)
}

func TestAcademicYearRepo_SetStoresCanonicalPeriod(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteAcademicYearRepo(db)
	ctx := context.Background()

	y, err := repo.Set(ctx, " 2025/2026 ", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, "2025/2026", y.Period)

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025/2026", got.Period)
}

func TestAcademicYearRepo_CompareAndSwap(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteAcademicYearRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	y, err := repo.Set(ctx, "2025/2026", now)
	require.NoError(t, err)

	swapped, err := repo.CompareAndSwap(ctx, y.Version, "2026/2027", now)
	require.NoError(t, err)
	assert.Equal(t, "2026/2027", swapped.Period)
	assert.Equal(t, y.Version+1, swapped.Version)

	_, err = repo.CompareAndSwap(ctx, y.Version, "2027/2028", now)
	assert.True(t, errors.Is(err, ErrVersionConflict))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026/2027", got.Period)
}
