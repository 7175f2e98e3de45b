package formatter

import (
	"fmt"
	"strings"

	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/transition"
)

// FormatPlan renders a transition plan: the movement per grade, the
// graduating and enrolling sets and any excluded applicants.
func FormatPlan(plan *transition.Plan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s %s\n\n", Bold(plan.FromYear), Dim("->"), Bold(plan.NewYear))

	headers := []string{"FROM", "TO", "STUDENTS"}
	rows := make([][]string, 0, int(domain.FinalGrade))
	for _, g := range domain.ActiveGrades() {
		var n int
		if g == domain.FinalGrade {
			n = plan.GraduatedCount()
		} else {
			n = plan.PromotedInto(g.Next())
		}
		if n == 0 {
			continue
		}
		rows = append(rows, []string{GradeLabel(g), GradeLabel(g.Next()), Count(n)})
	}
	if plan.EnrolledCount() > 0 {
		rows = append(rows, []string{StyleBlue.Render("Applicants"), GradeLabel(domain.MinGrade), Count(plan.EnrolledCount())})
	}
	if len(rows) == 0 {
		b.WriteString(Dim("Nothing to move: no active students and no eligible applicants.") + "\n")
	} else {
		b.WriteString(RenderTable(headers, rows, 2))
	}

	if len(plan.Enrollment) > 0 {
		b.WriteString("\n" + Header("Enrolling") + "\n")
		for _, e := range plan.Enrollment {
			fmt.Fprintf(&b, "  %s  %s %s\n", e.StudentID, e.Name, Dim("("+string(e.Sex)+")"))
		}
	}

	if len(plan.Conflicts) > 0 {
		b.WriteString("\n" + Header("Excluded applicants") + "\n")
		for _, c := range plan.Conflicts {
			b.WriteString(StyleRed.Render(fmt.Sprintf("  ✖ %s: id %s %s", c.Name, c.CandidateID, conflictText(c.Kind))) + "\n")
		}
	}

	if plan.Ineligible > 0 {
		b.WriteString("\n" + Dim(fmt.Sprintf("%s applicant(s) not eligible for %s were skipped.", Count(plan.Ineligible), plan.NewYear)) + "\n")
	}

	return RenderBox("Transition plan", strings.TrimRight(b.String(), "\n"))
}

func conflictText(kind transition.ConflictKind) string {
	if kind == transition.ConflictDuplicateApplicant {
		return "is claimed by an earlier applicant"
	}
	return "already belongs to a student"
}

// FormatSummary renders the confirmation summary shown before the
// operator types the token.
func FormatSummary(s transition.PlanSummary) string {
	var b strings.Builder
	for _, line := range s.Lines() {
		b.WriteString(line + "\n")
	}
	if len(s.Advisories) > 0 {
		b.WriteString("\n")
		for _, a := range s.Advisories {
			b.WriteString(StyleYellow.Render("! "+a) + "\n")
		}
	}
	b.WriteString("\n" + StyleRed.Render(s.Notice))
	return b.String()
}
