package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/schoolops/rollover/internal/db"
	"github.com/schoolops/rollover/internal/domain"
)

// SQLiteTeacherRepo implements TeacherRepo using a SQLite database.
type SQLiteTeacherRepo struct {
	db db.DBTX
}

// NewSQLiteTeacherRepo creates a new SQLiteTeacherRepo.
func NewSQLiteTeacherRepo(conn db.DBTX) *SQLiteTeacherRepo {
	return &SQLiteTeacherRepo{db: conn}
}

func (r *SQLiteTeacherRepo) Create(ctx context.Context, t *domain.Teacher) error {
	var grade interface{}
	if t.AssignedGrade != nil {
		grade = t.AssignedGrade.String()
	}
	query := `INSERT INTO teachers (id, name, assigned_grade, assigned_class, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.Name, grade, nullableString(t.AssignedClass), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting teacher: %w", err)
	}
	return nil
}

func (r *SQLiteTeacherRepo) List(ctx context.Context) ([]*domain.Teacher, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, assigned_grade, assigned_class, updated_at FROM teachers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing teachers: %w", err)
	}
	defer rows.Close()

	var teachers []*domain.Teacher
	for rows.Next() {
		var t domain.Teacher
		var grade, class sql.NullString
		var updatedAt string
		if err := rows.Scan(&t.ID, &t.Name, &grade, &class, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning teacher row: %w", err)
		}
		if grade.Valid {
			g, err := domain.ParseGrade(grade.String)
			if err != nil {
				return nil, fmt.Errorf("teacher %s: %w", t.ID, err)
			}
			t.AssignedGrade = &g
		}
		t.AssignedClass = class.String
		if t.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		teachers = append(teachers, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating teachers: %w", err)
	}
	return teachers, nil
}

func (r *SQLiteTeacherRepo) Assign(ctx context.Context, id string, grade domain.Grade, class string, now time.Time) error {
	if !grade.IsActiveGrade() {
		return fmt.Errorf("cannot assign teacher to grade %s", grade)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE teachers SET assigned_grade = ?, assigned_class = ?, updated_at = ? WHERE id = ?`,
		grade.String(), nullableString(class), formatTime(now), id)
	if err != nil {
		return fmt.Errorf("assigning teacher %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("assigning teacher %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("teacher %s: %w", id, ErrNotFound)
	}
	return nil
}

// ResetAssignments clears every class-teaching assignment and returns how
// many teachers were assigned before the reset.
func (r *SQLiteTeacherRepo) ResetAssignments(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE teachers SET assigned_grade = NULL, assigned_class = NULL, updated_at = ?
		WHERE assigned_grade IS NOT NULL OR assigned_class IS NOT NULL`, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("resetting teacher assignments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("resetting teacher assignments: %w", err)
	}
	return n, nil
}
