package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolops/rollover/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUoW(t *testing.T) (*db.SQLiteUnitOfWork, db.DBTX) {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database), database
}

// writeStudentAndYear performs two writes that must land together, the way
// an executor step and its journal marker do.
func writeStudentAndYear(ctx context.Context, tx db.DBTX) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO students (id, name, sex, grade, active, class_label, created_at, updated_at)
		 VALUES ('NIS-1', 'Ayu', 'F', '1', 1, '', '2025-07-01T00:00:00Z', '2025-07-01T00:00:00Z')`); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO settings (key, value, version, updated_at) VALUES (?, '2025/2026', 1, '2025-07-01T00:00:00Z')`,
		db.AcademicYearKey)
	return err
}

func rowCounts(t *testing.T, conn db.DBTX) (students, settings int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&students))
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings`).Scan(&settings))
	return students, settings
}

func TestWithinTx_CommitsAllWrites(t *testing.T) {
	uow, conn := newUoW(t)

	require.NoError(t, uow.WithinTx(context.Background(), writeStudentAndYear))

	students, settings := rowCounts(t, conn)
	assert.Equal(t, 1, students)
	assert.Equal(t, 1, settings)
}

func TestWithinTx_ErrorDiscardsAllWrites(t *testing.T) {
	uow, conn := newUoW(t)
	stepErr := errors.New("journal write failed")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := writeStudentAndYear(ctx, tx); err != nil {
			return err
		}
		return stepErr
	})
	require.ErrorIs(t, err, stepErr)

	students, settings := rowCounts(t, conn)
	assert.Zero(t, students)
	assert.Zero(t, settings)
}

func TestWithinTx_PanicDiscardsWritesAndRepanics(t *testing.T) {
	uow, conn := newUoW(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = writeStudentAndYear(ctx, tx)
			panic("boom")
		})
	})

	students, settings := rowCounts(t, conn)
	assert.Zero(t, students)
	assert.Zero(t, settings)
}
