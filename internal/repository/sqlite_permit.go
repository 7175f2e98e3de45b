package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/schoolops/rollover/internal/db"
)

// SQLitePermitRepo hands out named, expiring execution permits. At most one
// holder owns a permit until it is released or its lease expires.
type SQLitePermitRepo struct {
	db db.DBTX
}

// NewSQLitePermitRepo creates a new SQLitePermitRepo.
func NewSQLitePermitRepo(conn db.DBTX) *SQLitePermitRepo {
	return &SQLitePermitRepo{db: conn}
}

// TryAcquire takes the permit for holder. It reports false without error
// when another holder owns an unexpired lease.
func (r *SQLitePermitRepo) TryAcquire(ctx context.Context, name, holder string, now time.Time, ttl time.Duration) (bool, error) {
	query := `INSERT INTO execution_permits (name, holder, acquired_at, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			holder = excluded.holder,
			acquired_at = excluded.acquired_at,
			expires_at = excluded.expires_at
		WHERE execution_permits.expires_at <= excluded.acquired_at`
	res, err := r.db.ExecContext(ctx, query, name, holder, formatTime(now), formatTime(now.Add(ttl)))
	if err != nil {
		return false, fmt.Errorf("acquiring permit %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("acquiring permit %s: %w", name, err)
	}
	return n == 1, nil
}

// Release drops the permit if holder still owns it.
func (r *SQLitePermitRepo) Release(ctx context.Context, name, holder string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM execution_permits WHERE name = ? AND holder = ?`, name, holder); err != nil {
		return fmt.Errorf("releasing permit %s: %w", name, err)
	}
	return nil
}
