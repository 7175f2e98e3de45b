package formatter

import (
	"fmt"
	"strings"

	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/service"
	"github.com/schoolops/rollover/internal/transition"
)

// FormatStatus renders the school overview: year marker, active students
// per grade, eligible applicants and the most recent transition run.
func FormatStatus(st *service.Status) string {
	var b strings.Builder

	if st.YearSet {
		fmt.Fprintf(&b, "Academic year: %s %s\n", Bold(st.Year.Period), Dim(fmt.Sprintf("(version %d)", st.Year.Version)))
	} else {
		b.WriteString(StyleYellow.Render("Academic year not set. Run: rollover year set 2025/2026") + "\n")
	}
	b.WriteString("\n")

	rows := make([][]string, 0, int(domain.FinalGrade))
	for _, g := range domain.ActiveGrades() {
		rows = append(rows, []string{GradeLabel(g), Count(st.ActiveByGrade[g])})
	}
	b.WriteString(RenderTable([]string{"GRADE", "ACTIVE"}, rows, 1))
	fmt.Fprintf(&b, "%s active students\n", Bold(Count(st.ActiveTotal)))

	if st.YearSet {
		fmt.Fprintf(&b, "%s accepted applicant(s) waiting for %s\n", Count(st.EligibleNextYear), st.NextYear)
	}

	if run := st.LastRun; run != nil {
		b.WriteString("\n" + Header("Last transition") + "\n")
		fmt.Fprintf(&b, "%s -> %s  %s  %s\n", run.FromYear, run.ToYear, RunStatusPill(run.Status), Dim("started "+Ago(run.StartedAt)))
		if run.Status == domain.RunFailed {
			fmt.Fprintf(&b, "%s\n", StyleRed.Render(fmt.Sprintf("Failed at step %s: %s", StepLabel(transition.Step(run.FailedStep)), run.Error)))
			b.WriteString(Dim("Run `rollover resume` to continue.") + "\n")
		}
	}

	return RenderBox("Status", strings.TrimRight(b.String(), "\n"))
}
