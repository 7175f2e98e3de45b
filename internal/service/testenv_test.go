package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/schoolops/rollover/internal/db"
	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/repository"
	"github.com/schoolops/rollover/internal/testutil"
	"github.com/schoolops/rollover/internal/transition"
	"github.com/stretchr/testify/require"
)

const (
	testFromYear = "2025/2026"
	testNewYear  = "2026/2027"
)

type testEnv struct {
	conn       *sql.DB
	uow        db.UnitOfWork
	students   *repository.SQLiteStudentRepo
	applicants *repository.SQLiteApplicantRepo
	teachers   *repository.SQLiteTeacherRepo
	years      *repository.SQLiteAcademicYearRepo
	runs       *repository.SQLiteRunRepo
	permits    *repository.SQLitePermitRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := testutil.NewTestDB(t)
	env := &testEnv{
		conn:       conn,
		uow:        testutil.NewTestUoW(conn),
		students:   repository.NewSQLiteStudentRepo(conn),
		applicants: repository.NewSQLiteApplicantRepo(conn),
		teachers:   repository.NewSQLiteTeacherRepo(conn),
		years:      repository.NewSQLiteAcademicYearRepo(conn),
		runs:       repository.NewSQLiteRunRepo(conn),
		permits:    repository.NewSQLitePermitRepo(conn),
	}
	_, err := env.years.Set(context.Background(), testFromYear, time.Now().UTC())
	require.NoError(t, err)
	return env
}

// seedSchool stores active students per grade, n eligible applicants for
// the next year and two assigned teachers.
func (e *testEnv) seedSchool(t *testing.T, sizes map[domain.Grade]int, applicants int) {
	t.Helper()
	ctx := context.Background()
	for _, g := range domain.ActiveGrades() {
		for _, s := range testutil.NewTestGrade(g, sizes[g]) {
			require.NoError(t, e.students.Create(ctx, s))
		}
	}
	for _, a := range testutil.NewTestApplicants(testNewYear, applicants) {
		require.NoError(t, e.applicants.Create(ctx, a))
	}
	require.NoError(t, e.teachers.Create(ctx, testutil.NewTestTeacher("Bu Wati", testutil.WithAssignment(1, "1A"))))
	require.NoError(t, e.teachers.Create(ctx, testutil.NewTestTeacher("Pak Joko", testutil.WithAssignment(6, "6B"))))
}

func (e *testEnv) loader() RosterLoader {
	return NewRosterLoader(e.uow)
}

func (e *testEnv) workflow(exec Executor, cfg WorkflowConfig) *Workflow {
	loader := e.loader()
	return NewWorkflow(loader, NewConfirmationGate(loader, ""), exec, e.permits, cfg)
}

// plan computes a plan from the stored data without going through a Workflow.
func (e *testEnv) plan(t *testing.T) *transition.Plan {
	t.Helper()
	ctx := context.Background()
	roster, err := e.loader().LoadRoster(ctx)
	require.NoError(t, err)
	applicants, err := e.loader().LoadApplicants(ctx, testNewYear)
	require.NoError(t, err)
	plan, err := transition.ComputePlan(roster, applicants, roster.Year)
	require.NoError(t, err)
	return plan
}

type studentState struct {
	Grade  domain.Grade
	Active bool
}

// schoolState is the comparable part of the stored records.
type schoolState struct {
	Students      map[string]studentState
	Enrolled      map[string]bool
	AssignedCount int
	Year          domain.AcademicYear
}

func (e *testEnv) snapshot(t *testing.T) schoolState {
	t.Helper()
	ctx := context.Background()
	st := schoolState{Students: map[string]studentState{}, Enrolled: map[string]bool{}}

	students, err := e.students.ListAll(ctx)
	require.NoError(t, err)
	for _, s := range students {
		st.Students[s.ID] = studentState{Grade: s.Grade, Active: s.Active}
	}
	applicants, err := e.applicants.List(ctx)
	require.NoError(t, err)
	for _, a := range applicants {
		st.Enrolled[a.ID] = a.Enrolled
	}
	teachers, err := e.teachers.List(ctx)
	require.NoError(t, err)
	for _, tc := range teachers {
		if tc.IsAssigned() {
			st.AssignedCount++
		}
	}
	st.Year, err = e.years.Get(ctx)
	require.NoError(t, err)
	return st
}

func (e *testEnv) activeByGrade(t *testing.T) map[domain.Grade]int {
	t.Helper()
	counts, err := e.students.CountActiveByGrade(context.Background())
	require.NoError(t, err)
	return counts
}

// recordingPrompter answers like StaticPrompter and records what it was shown.
type recordingPrompter struct {
	StaticPrompter
	summaries []transition.PlanSummary
	tokens    []string
}

func (p *recordingPrompter) Acknowledge(ctx context.Context, s transition.PlanSummary) (bool, error) {
	p.summaries = append(p.summaries, s)
	return p.StaticPrompter.Acknowledge(ctx, s)
}

func (p *recordingPrompter) TypeToken(ctx context.Context, expected string) (string, error) {
	p.tokens = append(p.tokens, expected)
	return p.StaticPrompter.TypeToken(ctx, expected)
}

var confirmAll = StaticPrompter{Acknowledged: true, Token: DefaultConfirmationToken}

var scenarioA = map[domain.Grade]int{1: 20, 2: 25, 3: 18, 4: 30, 5: 22, 6: 15}
