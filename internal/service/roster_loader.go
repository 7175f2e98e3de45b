package service

import (
	"context"
	"errors"
	"time"

	"github.com/schoolops/rollover/internal/db"
	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/repository"
	"github.com/schoolops/rollover/internal/transition"
)

type rosterLoader struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

// NewRosterLoader builds a loader that reads each snapshot inside a single
// transaction, so students, ids and the year marker are mutually consistent.
func NewRosterLoader(uow db.UnitOfWork, observers ...UseCaseObserver) RosterLoader {
	return &rosterLoader{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (l *rosterLoader) LoadRoster(ctx context.Context) (roster *transition.Roster, err error) {
	start := time.Now()
	defer func() {
		fields := map[string]any{}
		if roster != nil {
			fields["active"] = roster.ActiveCount()
			fields["year"] = roster.Year.Period
		}
		observe(ctx, l.observer, "load_roster", start, err, fields)
	}()

	var (
		active []*domain.Student
		ids    []string
		year   domain.AcademicYear
	)
	err = l.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		students := repository.NewSQLiteStudentRepo(tx)
		years := repository.NewSQLiteAcademicYearRepo(tx)

		var err error
		if active, err = students.ListActive(ctx); err != nil {
			return &transition.StorageReadError{Op: "list active students", Err: err}
		}
		if ids, err = students.ListIDs(ctx); err != nil {
			return &transition.StorageReadError{Op: "list student ids", Err: err}
		}
		if year, err = years.Get(ctx); err != nil {
			return &transition.StorageReadError{Op: "read academic year", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, asStorageReadError("load roster", err)
	}

	roster, err = transition.NewRoster(active, ids, year)
	if err != nil {
		return nil, &transition.StorageReadError{Op: "build roster", Err: err}
	}
	return roster, nil
}

func (l *rosterLoader) LoadApplicants(ctx context.Context, targetYear string) (applicants []*domain.Applicant, err error) {
	start := time.Now()
	defer func() {
		observe(ctx, l.observer, "load_applicants", start, err, map[string]any{
			"target_year": targetYear,
			"eligible":    len(applicants),
		})
	}()

	err = l.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		applicants, err = repository.NewSQLiteApplicantRepo(tx).ListEligible(ctx, targetYear)
		return err
	})
	if err != nil {
		return nil, asStorageReadError("list eligible applicants", err)
	}
	return applicants, nil
}

// asStorageReadError keeps an existing StorageReadError and wraps anything
// else, such as a failure to begin the read transaction.
func asStorageReadError(op string, err error) error {
	var readErr *transition.StorageReadError
	if errors.As(err, &readErr) {
		return readErr
	}
	return &transition.StorageReadError{Op: op, Err: err}
}
