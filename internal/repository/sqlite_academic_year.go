package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/schoolops/rollover/internal/db"
	"github.com/schoolops/rollover/internal/domain"
)

// SQLiteAcademicYearRepo stores the academic-year marker as a versioned row
// of the settings table.
type SQLiteAcademicYearRepo struct {
	db db.DBTX
}

// NewSQLiteAcademicYearRepo creates a new SQLiteAcademicYearRepo.
func NewSQLiteAcademicYearRepo(conn db.DBTX) *SQLiteAcademicYearRepo {
	return &SQLiteAcademicYearRepo{db: conn}
}

func (r *SQLiteAcademicYearRepo) Get(ctx context.Context) (domain.AcademicYear, error) {
	var y domain.AcademicYear
	err := r.db.QueryRowContext(ctx, `SELECT value, version FROM settings WHERE key = ?`, db.AcademicYearKey).
		Scan(&y.Period, &y.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.AcademicYear{}, fmt.Errorf("academic year: %w", ErrNotFound)
		}
		return domain.AcademicYear{}, fmt.Errorf("reading academic year: %w", err)
	}
	return y, nil
}

// Set writes the marker unconditionally, bumping its version.
func (r *SQLiteAcademicYearRepo) Set(ctx context.Context, period string, now time.Time) (domain.AcademicYear, error) {
	start, err := domain.ParseAcademicYear(period)
	if err != nil {
		return domain.AcademicYear{}, err
	}
	period = domain.FormatPeriod(start)
	query := `INSERT INTO settings (key, value, version, updated_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = settings.version + 1, updated_at = excluded.updated_at
		RETURNING value, version`
	var y domain.AcademicYear
	if err := r.db.QueryRowContext(ctx, query, db.AcademicYearKey, period, formatTime(now)).Scan(&y.Period, &y.Version); err != nil {
		return domain.AcademicYear{}, fmt.Errorf("writing academic year: %w", err)
	}
	return y, nil
}

// CompareAndSwap writes period only if the stored version still equals
// expectedVersion. A stale version yields ErrVersionConflict.
func (r *SQLiteAcademicYearRepo) CompareAndSwap(ctx context.Context, expectedVersion int64, period string, now time.Time) (domain.AcademicYear, error) {
	start, err := domain.ParseAcademicYear(period)
	if err != nil {
		return domain.AcademicYear{}, err
	}
	period = domain.FormatPeriod(start)
	query := `UPDATE settings SET value = ?, version = version + 1, updated_at = ?
		WHERE key = ? AND version = ?
		RETURNING value, version`
	var y domain.AcademicYear
	err = r.db.QueryRowContext(ctx, query, period, formatTime(now), db.AcademicYearKey, expectedVersion).Scan(&y.Period, &y.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.AcademicYear{}, fmt.Errorf("academic year at version %d: %w", expectedVersion, ErrVersionConflict)
		}
		return domain.AcademicYear{}, fmt.Errorf("swapping academic year: %w", err)
	}
	return y, nil
}
