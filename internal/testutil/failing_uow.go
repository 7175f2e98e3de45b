package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/schoolops/rollover/internal/db"
)

// FailOnNthTxUoW is a test UoW whose Nth transaction fails every
// ExecContext call and is rolled back, so nothing it wrote persists.
// Transactions are counted starting at 1; earlier and later transactions
// commit normally.
//
// The transition executor opens one transaction per step, so FailOn = k
// makes step k fail after steps 1..k-1 have committed.
type FailOnNthTxUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error

	count atomic.Int32
}

func (u *FailOnNthTxUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	n := u.count.Add(1)

	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	var conn db.DBTX = tx
	if n == u.FailOn {
		conn = &failingExec{DBTX: tx, err: u.Err}
	}
	if fnErr := fn(ctx, conn); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

// Calls returns how many transactions have been started.
func (u *FailOnNthTxUoW) Calls() int {
	return int(u.count.Load())
}

// failingExec fails every ExecContext. Reads pass through.
type failingExec struct {
	db.DBTX
	err error
}

func (f *failingExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return nil, f.err
}
