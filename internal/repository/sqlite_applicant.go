package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/schoolops/rollover/internal/db"
	"github.com/schoolops/rollover/internal/domain"
)

const applicantColumns = `id, candidate_student_id, name, sex, accepted, enrolled, target_year, created_at, updated_at`

// SQLiteApplicantRepo implements ApplicantRepo using a SQLite database.
type SQLiteApplicantRepo struct {
	db db.DBTX
}

// NewSQLiteApplicantRepo creates a new SQLiteApplicantRepo.
func NewSQLiteApplicantRepo(conn db.DBTX) *SQLiteApplicantRepo {
	return &SQLiteApplicantRepo{db: conn}
}

func (r *SQLiteApplicantRepo) Create(ctx context.Context, a *domain.Applicant) error {
	query := `INSERT INTO applicants (` + applicantColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		nullableString(a.CandidateStudentID),
		a.Name,
		string(a.Sex),
		boolToInt(a.Accepted),
		boolToInt(a.Enrolled),
		a.TargetYear,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting applicant: %w", err)
	}
	return nil
}

func (r *SQLiteApplicantRepo) GetByID(ctx context.Context, id string) (*domain.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants WHERE id = ?`
	a, err := scanApplicant(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("applicant %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning applicant: %w", err)
	}
	return a, nil
}

func (r *SQLiteApplicantRepo) List(ctx context.Context) ([]*domain.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants ORDER BY target_year, name, id`
	return r.list(ctx, "listing applicants", query)
}

// ListEligible returns accepted, not yet enrolled applicants for targetYear.
func (r *SQLiteApplicantRepo) ListEligible(ctx context.Context, targetYear string) ([]*domain.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants
		WHERE accepted = 1 AND enrolled = 0 AND target_year = ?
		ORDER BY created_at, id`
	return r.list(ctx, "listing eligible applicants", query, targetYear)
}

// MarkEnrolled sets the already-enrolled flag. Applicants that are already
// flagged are not counted.
func (r *SQLiteApplicantRepo) MarkEnrolled(ctx context.Context, ids []string, now time.Time) (int64, error) {
	query := `UPDATE applicants SET enrolled = 1, updated_at = ? WHERE id = ? AND enrolled = 0`
	var affected int64
	for _, id := range ids {
		res, err := r.db.ExecContext(ctx, query, formatTime(now), id)
		if err != nil {
			return affected, fmt.Errorf("marking applicant %s enrolled: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return affected, fmt.Errorf("marking applicant %s enrolled: %w", id, err)
		}
		affected += n
	}
	return affected, nil
}

func (r *SQLiteApplicantRepo) list(ctx context.Context, what, query string, args ...any) ([]*domain.Applicant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var applicants []*domain.Applicant
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning applicant row: %w", err)
		}
		applicants = append(applicants, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating applicants: %w", err)
	}
	return applicants, nil
}

func scanApplicant(row rowScanner) (*domain.Applicant, error) {
	var a domain.Applicant
	var candidate sql.NullString
	var sex, createdAt, updatedAt string
	var accepted, enrolled int

	err := row.Scan(&a.ID, &candidate, &a.Name, &sex, &accepted, &enrolled, &a.TargetYear, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	a.CandidateStudentID = candidate.String
	a.Sex = domain.Sex(sex)
	a.Accepted = intToBool(accepted)
	a.Enrolled = intToBool(enrolled)

	if a.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if a.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &a, nil
}
