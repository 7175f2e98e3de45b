package service

import (
	"context"
	"testing"
	"time"

	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/repository"
	"github.com/schoolops/rollover/internal/testutil"
	"github.com/schoolops/rollover/internal/transition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm_ScenarioC_LowercaseTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	env.seedSchool(t, map[domain.Grade]int{1: 3, 6: 2}, 2)
	ctx := context.Background()
	wf := env.workflow(NewExecutor(env.runs, env.uow), WorkflowConfig{Policy: transition.DefaultCapacityPolicy()})

	_, err := wf.Plan(ctx)
	require.NoError(t, err)
	before := env.snapshot(t)

	err = wf.Confirm(ctx, StaticPrompter{Acknowledged: true, Token: "execute"})

	var rejected *transition.ConfirmationRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, transition.RejectTokenMismatch, rejected.Reason)
	assert.Equal(t, transition.StatePlanReady, wf.State())
	assert.Equal(t, before, env.snapshot(t))

	_, err = env.runs.Latest(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = wf.Execute(ctx)
	assert.ErrorIs(t, err, transition.ErrInvalidWorkflowState)
	assert.Equal(t, before, env.snapshot(t))
}

func TestConfirm_TokenMustMatchExactly(t *testing.T) {
	env := newTestEnv(t)
	plan := env.plan(t)
	gate := NewConfirmationGate(env.loader(), "")

	for _, typed := range []string{"EXECUTE ", " EXECUTE", "Execute", "EXECUT", ""} {
		err := gate.Confirm(context.Background(), plan, true, StaticPrompter{Acknowledged: true, Token: typed})
		var rejected *transition.ConfirmationRejectedError
		assert.ErrorAs(t, err, &rejected, "%q", typed)
	}
	assert.NoError(t, gate.Confirm(context.Background(), plan, true, confirmAll))
}

func TestConfirm_DeclinedSummarySkipsTokenPrompt(t *testing.T) {
	env := newTestEnv(t)
	gate := NewConfirmationGate(env.loader(), "")
	p := &recordingPrompter{StaticPrompter: StaticPrompter{Acknowledged: false, Token: "EXECUTE"}}

	err := gate.Confirm(context.Background(), env.plan(t), true, p)

	var rejected *transition.ConfirmationRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, transition.RejectDeclined, rejected.Reason)
	assert.Len(t, p.summaries, 1)
	assert.Empty(t, p.tokens)
}

func TestConfirm_AdvisoryWithoutSimulation(t *testing.T) {
	env := newTestEnv(t)
	env.seedSchool(t, map[domain.Grade]int{2: 2}, 1)
	ctx := context.Background()
	wf := env.workflow(NewExecutor(env.runs, env.uow), WorkflowConfig{})

	_, err := wf.Plan(ctx)
	require.NoError(t, err)
	p := &recordingPrompter{StaticPrompter: StaticPrompter{Acknowledged: false}}
	_ = wf.Confirm(ctx, p)

	_, err = wf.Simulate(ctx)
	require.NoError(t, err)
	_ = wf.Confirm(ctx, p)

	require.Len(t, p.summaries, 2)
	assert.Contains(t, p.summaries[0].Advisories, transition.SimulateAdvisory)
	assert.NotContains(t, p.summaries[1].Advisories, transition.SimulateAdvisory)
	assert.Equal(t, transition.NoCancelNotice, p.summaries[1].Notice)
	assert.Equal(t, testFromYear, p.summaries[1].FromYear)
	assert.Equal(t, testNewYear, p.summaries[1].NewYear)
	assert.Equal(t, 1, p.summaries[1].Enrolled)
}

func TestConfirm_StaleRosterRejected(t *testing.T) {
	env := newTestEnv(t)
	env.seedSchool(t, map[domain.Grade]int{3: 2}, 0)
	ctx := context.Background()
	plan := env.plan(t)

	require.NoError(t, env.students.Create(ctx, testutil.NewTestStudent(testutil.NextStudentID(), 4)))

	p := &recordingPrompter{StaticPrompter: confirmAll}
	err := NewConfirmationGate(env.loader(), "").Confirm(ctx, plan, true, p)
	assert.ErrorIs(t, err, transition.ErrStalePlan)
	assert.Empty(t, p.summaries, "no prompt for a stale plan")
}

func TestConfirm_StaleYearRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plan := env.plan(t)

	_, err := env.years.Set(ctx, testFromYear, time.Now().UTC())
	require.NoError(t, err)

	err = NewConfirmationGate(env.loader(), "").Confirm(ctx, plan, true, confirmAll)
	assert.ErrorIs(t, err, transition.ErrStalePlan)
}

func TestConfirm_CustomToken(t *testing.T) {
	env := newTestEnv(t)
	gate := NewConfirmationGate(env.loader(), "ROLLOVER-2026")
	assert.Equal(t, "ROLLOVER-2026", gate.Token())

	err := gate.Confirm(context.Background(), env.plan(t), true, confirmAll)
	var rejected *transition.ConfirmationRejectedError
	assert.ErrorAs(t, err, &rejected)

	err = gate.Confirm(context.Background(), env.plan(t), true, StaticPrompter{Acknowledged: true, Token: "ROLLOVER-2026"})
	assert.NoError(t, err)
}
