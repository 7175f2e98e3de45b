package transition

import (
	"fmt"

	"github.com/schoolops/rollover/internal/domain"
)

// NoCancelNotice is shown before confirmation: once step 1 commits the
// transition cannot be stopped or rolled back.
const NoCancelNotice = "Execution cannot be cancelled once it starts. Steps already applied stay applied; a failed run is resumed, not rolled back."

// SimulateAdvisory is shown when the plan was never simulated.
const SimulateAdvisory = "No simulation has been run for this plan. Running one first is recommended."

// PlanSummary is the itemised summary the operator acknowledges before
// typing the confirmation token.
type PlanSummary struct {
	FromYear        string
	NewYear         string
	Promoted        int
	PromotedByGrade map[domain.Grade]int
	Graduated       int
	Enrolled        int
	Conflicts       int
	Advisories      []string
	Notice          string
}

// Summarize builds the confirmation summary of plan. simulated reports
// whether a simulation has been run against this plan.
func Summarize(plan *Plan, simulated bool) PlanSummary {
	s := PlanSummary{
		FromYear:        plan.FromYear,
		NewYear:         plan.NewYear,
		Promoted:        plan.PromotedCount(),
		PromotedByGrade: make(map[domain.Grade]int, len(plan.Promotions)),
		Graduated:       plan.GraduatedCount(),
		Enrolled:        plan.EnrolledCount(),
		Conflicts:       len(plan.Conflicts),
		Advisories:      []string{},
		Notice:          NoCancelNotice,
	}
	for g, ids := range plan.Promotions {
		s.PromotedByGrade[g] = len(ids)
	}
	if !simulated {
		s.Advisories = append(s.Advisories, SimulateAdvisory)
	}
	if s.Conflicts > 0 {
		s.Advisories = append(s.Advisories,
			fmt.Sprintf("%d applicant(s) excluded because of identifier conflicts.", s.Conflicts))
	}
	return s
}

// Lines renders the summary as itemised text lines.
func (s PlanSummary) Lines() []string {
	lines := []string{
		fmt.Sprintf("Academic year: %s -> %s", s.FromYear, s.NewYear),
		fmt.Sprintf("Promoted:      %d", s.Promoted),
	}
	for _, g := range domain.ActiveGrades() {
		if n, ok := s.PromotedByGrade[g]; ok {
			lines = append(lines, fmt.Sprintf("  into grade %s: %d", g, n))
		}
	}
	lines = append(lines,
		fmt.Sprintf("Graduated:     %d", s.Graduated),
		fmt.Sprintf("Enrolled:      %d", s.Enrolled),
	)
	if s.Conflicts > 0 {
		lines = append(lines, fmt.Sprintf("Conflicts:     %d", s.Conflicts))
	}
	lines = append(lines, "Teacher class assignments will be reset.")
	return lines
}
