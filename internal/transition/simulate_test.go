package transition

import (
	"testing"

	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate_ProjectedSizes(t *testing.T) {
	roster := buildRoster(t, map[domain.Grade]int{1: 20, 2: 25, 3: 18, 4: 30, 5: 22, 6: 15})
	plan, err := ComputePlan(roster, testutil.NewTestApplicants("2026/2027", 20), year2025)
	require.NoError(t, err)

	report := Simulate(plan, roster, DefaultCapacityPolicy())

	require.Len(t, report.Grades, 6)
	projected := make(map[domain.Grade]int)
	for _, row := range report.Grades {
		projected[row.Grade] = row.Projected
	}
	assert.Equal(t, map[domain.Grade]int{1: 20, 2: 20, 3: 25, 4: 18, 5: 30, 6: 22}, projected)

	assert.Equal(t, 130, report.Counters.ActiveBefore)
	assert.Equal(t, 130-15+20, report.Counters.ActiveAfter)
	assert.Equal(t, 15, report.Counters.Graduated)
	assert.Equal(t, 20, report.Counters.Enrolled)
	assert.True(t, report.IsValid)
}

func TestSimulate_CapacityWarningsDoNotInvalidate(t *testing.T) {
	roster := buildRoster(t, map[domain.Grade]int{1: 30, 2: 3})
	plan, err := ComputePlan(roster, nil, year2025)
	require.NoError(t, err)

	report := Simulate(plan, roster, CapacityPolicy{UpperCapacity: 28, LowerCapacity: 5})

	var over, under int
	for _, w := range report.Warnings {
		switch w.Kind {
		case WarnOverCapacity:
			over++
			assert.Equal(t, domain.Grade(2), w.Grade)
			assert.Equal(t, 30, w.Value)
		case WarnUnderCapacity:
			under++
		}
	}
	assert.Equal(t, 1, over)
	// grades 1, 3, 4, 5 and 6 are projected at 0 or 3 students
	assert.Equal(t, 5, under)
	assert.True(t, report.IsValid)
}

func TestSimulate_ConflictsBlockPolicy(t *testing.T) {
	existing := testutil.NewTestStudent("NIS-X", 1)
	roster, err := NewRoster([]*domain.Student{existing}, nil, year2025)
	require.NoError(t, err)
	a := testutil.NewTestApplicant("Clash", "2026/2027", testutil.WithCandidateID("NIS-X"))
	plan, err := ComputePlan(roster, []*domain.Applicant{a}, year2025)
	require.NoError(t, err)

	lenient := Simulate(plan, roster, DefaultCapacityPolicy())
	assert.True(t, lenient.IsValid)

	policy := DefaultCapacityPolicy()
	policy.ConflictsBlock = true
	strict := Simulate(plan, roster, policy)
	assert.False(t, strict.IsValid)
}

func TestSimulate_PureAndRepeatable(t *testing.T) {
	roster := buildRoster(t, map[domain.Grade]int{1: 12, 4: 40, 6: 9})
	plan, err := ComputePlan(roster, testutil.NewTestApplicants("2026/2027", 7), year2025)
	require.NoError(t, err)

	rosterBefore := *roster
	byGradeBefore := make(map[domain.Grade][]domain.Student)
	for g, s := range roster.ByGrade {
		byGradeBefore[g] = append([]domain.Student(nil), s...)
	}
	planBefore, err := plan.MarshalSnapshot()
	require.NoError(t, err)

	first := Simulate(plan, roster, DefaultCapacityPolicy())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Simulate(plan, roster, DefaultCapacityPolicy()))
	}

	assert.Equal(t, rosterBefore.Fingerprint, roster.Fingerprint)
	assert.Equal(t, byGradeBefore, roster.ByGrade)
	planAfter, err := plan.MarshalSnapshot()
	require.NoError(t, err)
	assert.Equal(t, planBefore, planAfter)
}
