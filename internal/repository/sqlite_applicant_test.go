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

func TestApplicantRepo_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteApplicantRepo(db)
	ctx := context.Background()

	a := testutil.NewTestApplicant("Budi", "2026/2027", testutil.WithCandidateID("NIS-900"))
	require.NoError(t, repo.Create(ctx, a))

	fetched, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Budi", fetched.Name)
	assert.Equal(t, "NIS-900", fetched.CandidateStudentID)
	assert.True(t, fetched.Accepted)
	assert.False(t, fetched.Enrolled)

	_, err = repo.GetByID(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestApplicantRepo_EmptyCandidateIDStoredAsNull(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteApplicantRepo(db)
	ctx := context.Background()

	a := testutil.NewTestApplicant("Citra", "2026/2027", testutil.WithCandidateID(""))
	require.NoError(t, repo.Create(ctx, a))

	var isNull bool
	require.NoError(t, db.QueryRow(`SELECT candidate_student_id IS NULL FROM applicants WHERE id = ?`, a.ID).Scan(&isNull))
	assert.True(t, isNull)

	fetched, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, fetched.EnrollmentID())
}

func TestApplicantRepo_ListEligible(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteApplicantRepo(db)
	ctx := context.Background()

	eligible := testutil.NewTestApplicant("Eligible", "2026/2027")
	require.NoError(t, repo.Create(ctx, eligible))
	require.NoError(t, repo.Create(ctx, testutil.NewTestApplicant("Rejected", "2026/2027", testutil.NotAccepted())))
	require.NoError(t, repo.Create(ctx, testutil.NewTestApplicant("Enrolled", "2026/2027", testutil.AlreadyEnrolled())))
	require.NoError(t, repo.Create(ctx, testutil.NewTestApplicant("Next Year", "2027/2028")))

	list, err := repo.ListEligible(ctx, "2026/2027")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, eligible.ID, list[0].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestApplicantRepo_MarkEnrolledIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteApplicantRepo(db)
	ctx := context.Background()
	now := time.Now().UTC()

	a := testutil.NewTestApplicant("Dewi", "2026/2027")
	require.NoError(t, repo.Create(ctx, a))

	n, err := repo.MarkEnrolled(ctx, []string{a.ID}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.MarkEnrolled(ctx, []string{a.ID}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	list, err := repo.ListEligible(ctx, "2026/2027")
	require.NoError(t, err)
	assert.Empty(t, list)
}
