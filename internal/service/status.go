package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/repository"
)

// Status is the current state of the school record as seen by the operator.
type Status struct {
	Year             domain.AcademicYear
	YearSet          bool
	NextYear         string
	ActiveByGrade    map[domain.Grade]int
	ActiveTotal      int
	EligibleNextYear int
	LastRun          *domain.TransitionRun
}

type statusService struct {
	students   repository.StudentRepo
	applicants repository.ApplicantRepo
	years      repository.AcademicYearRepo
	runs       repository.RunRepo
}

func NewStatusService(
	students repository.StudentRepo,
	applicants repository.ApplicantRepo,
	years repository.AcademicYearRepo,
	runs repository.RunRepo,
) StatusService {
	return &statusService{students: students, applicants: applicants, years: years, runs: runs}
}

func (s *statusService) GetStatus(ctx context.Context) (*Status, error) {
	st := &Status{}

	year, err := s.years.Get(ctx)
	switch {
	case err == nil:
		st.Year, st.YearSet = year, true
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, fmt.Errorf("loading academic year: %w", err)
	}

	counts, err := s.students.CountActiveByGrade(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading grade counts: %w", err)
	}
	st.ActiveByGrade = counts
	for _, n := range counts {
		st.ActiveTotal += n
	}

	if st.YearSet {
		next, err := domain.NextPeriod(year.Period)
		if err != nil {
			return nil, err
		}
		st.NextYear = next
		eligible, err := s.applicants.ListEligible(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("loading applicants: %w", err)
		}
		st.EligibleNextYear = len(eligible)
	}

	run, err := s.runs.Latest(ctx)
	switch {
	case err == nil:
		st.LastRun = run
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, fmt.Errorf("loading last run: %w", err)
	}
	return st, nil
}
