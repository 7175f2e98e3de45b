package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/schoolops/rollover/internal/db"
	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConcurrentTestDB creates a file-backed SQLite database in a temp directory.
// Unlike :memory:, a file-backed DB shares state across all connections in the
// pool, which is required to test real concurrent access with WAL mode.
func newConcurrentTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "concurrent_test.db")
	database, err := db.OpenDB(dbPath)
	require.NoError(t, err, "failed to create concurrent test database")
	t.Cleanup(func() { database.Close() })
	return database
}

// retry re-runs fn while SQLite reports a busy database.
func retry(fn func() error) error {
	const maxRetries = 10
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt+1) * 5 * time.Millisecond)
	}
	return err
}

func TestConcurrentAccess_ReadDuringWrite(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()
	students := NewSQLiteStudentRepo(database)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, s := range testutil.NewTestGrade(2, 20) {
			if err := students.Create(ctx, s); err != nil {
				t.Errorf("writer: create student %s: %v", s.ID, err)
				return
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				active, err := students.ListActive(ctx)
				if err != nil {
					t.Errorf("reader %d: list active: %v", reader, err)
					return
				}
				for _, s := range active {
					if s.ID == "" || !s.Grade.IsActiveGrade() {
						t.Errorf("reader %d: got half-written student %+v", reader, s)
					}
				}
			}
		}(r)
	}

	wg.Wait()

	counts, err := students.CountActiveByGrade(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, counts[2])
}

func TestConcurrentAccess_PermitHasSingleHolder(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()
	permits := NewSQLitePermitRepo(database)
	now := time.Now().UTC()

	var wg sync.WaitGroup
	var winners atomic.Int32
	const contenders = 10

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var ok bool
			err := retry(func() error {
				var err error
				ok, err = permits.TryAcquire(ctx, "academic-year-transition", fmt.Sprintf("holder-%d", i), now, time.Minute)
				return err
			})
			if err != nil {
				t.Errorf("contender %d: %v", i, err)
				return
			}
			if ok {
				winners.Add(1)
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, int32(1), winners.Load())
}

func TestConcurrentAccess_YearCompareAndSwapHasSingleWinner(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()
	years := NewSQLiteAcademicYearRepo(database)

	start, err := years.Set(ctx, "2025/2026", time.Now().UTC())
	require.NoError(t, err)

	var wg sync.WaitGroup
	var swapped, conflicts atomic.Int32
	const contenders = 8

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := retry(func() error {
				_, err := years.CompareAndSwap(ctx, start.Version, "2026/2027", time.Now().UTC())
				if errors.Is(err, ErrVersionConflict) {
					conflicts.Add(1)
					return nil
				}
				if err == nil {
					swapped.Add(1)
				}
				return err
			})
			if err != nil {
				t.Errorf("contender %d: %v", i, err)
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, int32(1), swapped.Load())
	assert.Equal(t, int32(contenders-1), conflicts.Load())

	y, err := years.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.AcademicYear{Period: "2026/2027", Version: start.Version + 1}, y)
}
