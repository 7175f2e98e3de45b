package transition

import (
	"fmt"

	"github.com/schoolops/rollover/internal/domain"
)

// CapacityPolicy holds the class-size thresholds the simulation checks
// projected grades against. ConflictsBlock makes identifier conflicts
// invalidate the plan instead of only being reported.
type CapacityPolicy struct {
	UpperCapacity  int
	LowerCapacity  int
	ConflictsBlock bool
}

// DefaultCapacityPolicy returns the thresholds used when none are configured.
func DefaultCapacityPolicy() CapacityPolicy {
	return CapacityPolicy{UpperCapacity: 28, LowerCapacity: 10}
}

type WarningKind string

const (
	WarnOverCapacity  WarningKind = "over_capacity"
	WarnUnderCapacity WarningKind = "under_capacity"
	WarnConflict      WarningKind = "conflict"
)

// Warning is a non-fatal finding of a simulation.
type Warning struct {
	Kind    WarningKind
	Grade   domain.Grade
	Value   int
	Limit   int
	Message string
}

// GradeProjection is the projected population of one grade after the transition.
type GradeProjection struct {
	Grade      domain.Grade
	Current    int
	PromotedIn int
	Enrolled   int
	Projected  int
	Warning    WarningKind
}

// SimulationCounters summarises the projected population change.
type SimulationCounters struct {
	ActiveBefore int
	ActiveAfter  int
	Promoted     int
	Graduated    int
	Enrolled     int
	Conflicts    int
}

// SimulationReport is the read-only projection of a plan's effect.
type SimulationReport struct {
	FromYear string
	NewYear  string
	Grades   []GradeProjection
	Counters SimulationCounters
	Warnings []Warning
	IsValid  bool
}

// Simulate projects the effect of plan on roster without touching either.
// Equal inputs always produce equal reports.
//
// The projected size of grade g is the number of students promoted into g,
// plus the enrollment set for grade 1. Capacity findings are warnings only;
// validity depends solely on conflicts and policy.ConflictsBlock.
func Simulate(plan *Plan, roster *Roster, policy CapacityPolicy) *SimulationReport {
	report := &SimulationReport{
		FromYear: plan.FromYear,
		NewYear:  plan.NewYear,
		Grades:   make([]GradeProjection, 0, int(domain.FinalGrade)),
		Warnings: []Warning{},
		Counters: SimulationCounters{
			ActiveBefore: roster.ActiveCount(),
			Promoted:     plan.PromotedCount(),
			Graduated:    plan.GraduatedCount(),
			Enrolled:     plan.EnrolledCount(),
			Conflicts:    len(plan.Conflicts),
		},
		IsValid: true,
	}
	report.Counters.ActiveAfter = report.Counters.ActiveBefore - report.Counters.Graduated + report.Counters.Enrolled

	for _, g := range domain.ActiveGrades() {
		row := GradeProjection{
			Grade:      g,
			Current:    roster.Count(g),
			PromotedIn: plan.PromotedInto(g),
		}
		if g == domain.MinGrade {
			row.Enrolled = plan.EnrolledCount()
		}
		row.Projected = row.PromotedIn + row.Enrolled

		switch {
		case policy.UpperCapacity > 0 && row.Projected > policy.UpperCapacity:
			row.Warning = WarnOverCapacity
			report.Warnings = append(report.Warnings, Warning{
				Kind:    WarnOverCapacity,
				Grade:   g,
				Value:   row.Projected,
				Limit:   policy.UpperCapacity,
				Message: fmt.Sprintf("grade %s projected at %d students, above capacity %d", g, row.Projected, policy.UpperCapacity),
			})
		case row.Projected < policy.LowerCapacity:
			row.Warning = WarnUnderCapacity
			report.Warnings = append(report.Warnings, Warning{
				Kind:    WarnUnderCapacity,
				Grade:   g,
				Value:   row.Projected,
				Limit:   policy.LowerCapacity,
				Message: fmt.Sprintf("grade %s projected at %d students, below minimum %d", g, row.Projected, policy.LowerCapacity),
			})
		}
		report.Grades = append(report.Grades, row)
	}

	for _, c := range plan.Conflicts {
		report.Warnings = append(report.Warnings, Warning{
			Kind:    WarnConflict,
			Grade:   domain.MinGrade,
			Message: fmt.Sprintf("applicant %q excluded: id %s %s", c.Name, c.CandidateID, conflictDescription(c.Kind)),
		})
	}

	if policy.ConflictsBlock && plan.HasConflicts() {
		report.IsValid = false
	}
	return report
}

func conflictDescription(kind ConflictKind) string {
	switch kind {
	case ConflictDuplicateApplicant:
		return "is claimed by another applicant"
	default:
		return "already belongs to a student"
	}
}
