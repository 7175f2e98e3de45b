package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/schoolops/rollover/internal/db"
	"github.com/schoolops/rollover/internal/domain"
)

const studentColumns = `id, name, sex, grade, active, class_label, created_at, updated_at`

// SQLiteStudentRepo implements StudentRepo using a SQLite database.
type SQLiteStudentRepo struct {
	db db.DBTX
}

// NewSQLiteStudentRepo creates a new SQLiteStudentRepo.
func NewSQLiteStudentRepo(conn db.DBTX) *SQLiteStudentRepo {
	return &SQLiteStudentRepo{db: conn}
}

func (r *SQLiteStudentRepo) Create(ctx context.Context, s *domain.Student) error {
	if err := s.Validate(); err != nil {
		return err
	}
	query := `INSERT INTO students (` + studentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.Name,
		string(s.Sex),
		s.Grade.String(),
		boolToInt(s.Active),
		s.ClassLabel,
		formatTime(s.CreatedAt),
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting student %s: %w", s.ID, err)
	}
	return nil
}

func (r *SQLiteStudentRepo) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	s, err := scanStudent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("student %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning student: %w", err)
	}
	return s, nil
}

func (r *SQLiteStudentRepo) ListActive(ctx context.Context) ([]*domain.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE active = 1 ORDER BY grade, id`
	return r.list(ctx, query, "listing active students")
}

func (r *SQLiteStudentRepo) ListAll(ctx context.Context) ([]*domain.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY active DESC, grade, id`
	return r.list(ctx, query, "listing students")
}

// ListIDs returns the external id of every student record, active or not.
func (r *SQLiteStudentRepo) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing student ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning student id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating student ids: %w", err)
	}
	return ids, nil
}

func (r *SQLiteStudentRepo) CountActiveByGrade(ctx context.Context) (map[domain.Grade]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT grade, COUNT(*) FROM students WHERE active = 1 GROUP BY grade`)
	if err != nil {
		return nil, fmt.Errorf("counting active students: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Grade]int)
	for rows.Next() {
		var gradeStr string
		var n int
		if err := rows.Scan(&gradeStr, &n); err != nil {
			return nil, fmt.Errorf("scanning grade count: %w", err)
		}
		g, err := domain.ParseGrade(gradeStr)
		if err != nil {
			return nil, err
		}
		counts[g] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating grade counts: %w", err)
	}
	return counts, nil
}

// Graduate marks each student inactive with the terminal grade. Students
// that are already graduated are left untouched and not counted.
func (r *SQLiteStudentRepo) Graduate(ctx context.Context, ids []string, now time.Time) (int64, error) {
	query := `UPDATE students SET active = 0, grade = 'graduated', updated_at = ?
		WHERE id = ? AND (active != 0 OR grade != 'graduated')`
	var affected int64
	for _, id := range ids {
		res, err := r.db.ExecContext(ctx, query, formatTime(now), id)
		if err != nil {
			return affected, fmt.Errorf("graduating student %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return affected, fmt.Errorf("graduating student %s: %w", id, err)
		}
		affected += n
	}
	return affected, nil
}

// SetGrade moves each active student to grade. The write is absolute, so
// re-applying it to a student already in grade is a no-op.
func (r *SQLiteStudentRepo) SetGrade(ctx context.Context, ids []string, grade domain.Grade, now time.Time) (int64, error) {
	if !grade.IsActiveGrade() {
		return 0, fmt.Errorf("cannot set grade %s on an active student", grade)
	}
	query := `UPDATE students SET grade = ?, updated_at = ?
		WHERE id = ? AND active = 1 AND grade != ?`
	var affected int64
	for _, id := range ids {
		res, err := r.db.ExecContext(ctx, query, grade.String(), formatTime(now), id, grade.String())
		if err != nil {
			return affected, fmt.Errorf("setting grade of student %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return affected, fmt.Errorf("setting grade of student %s: %w", id, err)
		}
		affected += n
	}
	return affected, nil
}

// InsertIfAbsent inserts s unless a student with the same id exists.
// It reports whether a row was inserted.
func (r *SQLiteStudentRepo) InsertIfAbsent(ctx context.Context, s *domain.Student) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	query := `INSERT INTO students (` + studentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.Name,
		string(s.Sex),
		s.Grade.String(),
		boolToInt(s.Active),
		s.ClassLabel,
		formatTime(s.CreatedAt),
		formatTime(s.UpdatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("inserting student %s: %w", s.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting student %s: %w", s.ID, err)
	}
	return n == 1, nil
}

func (r *SQLiteStudentRepo) list(ctx context.Context, query, what string) ([]*domain.Student, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var students []*domain.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning student row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating students: %w", err)
	}
	return students, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (*domain.Student, error) {
	var s domain.Student
	var sex, gradeStr, createdAt, updatedAt string
	var active int

	if err := row.Scan(&s.ID, &s.Name, &sex, &gradeStr, &active, &s.ClassLabel, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	grade, err := domain.ParseGrade(gradeStr)
	if err != nil {
		return nil, fmt.Errorf("student %s: %w", s.ID, err)
	}
	s.Sex = domain.Sex(sex)
	s.Grade = grade
	s.Active = intToBool(active)

	if s.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &s, nil
}
