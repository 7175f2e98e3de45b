package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// AcademicYearKey is the settings key holding the current academic-year marker.
const AcademicYearKey = "academic_year"

// Migrate creates the schema. Every statement is idempotent, so Migrate is
// run on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Re-running an ALTER TABLE ADD COLUMN is expected.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		sex         TEXT NOT NULL CHECK(sex IN ('M','F')),
		grade       TEXT NOT NULL
		            CHECK(grade IN ('1','2','3','4','5','6','graduated')),
		active      INTEGER NOT NULL DEFAULT 1,
		class_label TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		CHECK(active = 0 OR grade != 'graduated'),
		CHECK(grade != 'graduated' OR active = 0)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_students_active_grade ON students(active, grade)`,

	`CREATE TABLE IF NOT EXISTS applicants (
		id                   TEXT PRIMARY KEY,
		candidate_student_id TEXT,
		name                 TEXT NOT NULL,
		sex                  TEXT NOT NULL CHECK(sex IN ('M','F')),
		accepted             INTEGER NOT NULL DEFAULT 0,
		enrolled             INTEGER NOT NULL DEFAULT 0,
		target_year          TEXT NOT NULL,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_applicants_target_year ON applicants(target_year, accepted, enrolled)`,

	`CREATE TABLE IF NOT EXISTS teachers (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		assigned_grade TEXT CHECK(assigned_grade IS NULL OR assigned_grade IN ('1','2','3','4','5','6')),
		assigned_class TEXT,
		updated_at     TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		version    INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS transition_runs (
		id                  TEXT PRIMARY KEY,
		from_year           TEXT NOT NULL,
		to_year             TEXT NOT NULL,
		plan_json           BLOB NOT NULL,
		status              TEXT NOT NULL DEFAULT 'running'
		                    CHECK(status IN ('running','completed','failed')),
		last_completed_step INTEGER NOT NULL DEFAULT 0,
		failed_step         INTEGER NOT NULL DEFAULT 0,
		error               TEXT NOT NULL DEFAULT '',
		started_at          TEXT NOT NULL,
		finished_at         TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_transition_runs_started ON transition_runs(started_at)`,

	`CREATE TABLE IF NOT EXISTS execution_permits (
		name        TEXT PRIMARY KEY,
		holder      TEXT NOT NULL,
		acquired_at TEXT NOT NULL,
		expires_at  TEXT NOT NULL
	)`,
}
