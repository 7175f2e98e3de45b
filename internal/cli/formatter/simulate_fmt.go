package formatter

import (
	"fmt"
	"strings"

	"github.com/schoolops/rollover/internal/transition"
)

// FormatSimulation renders a simulation report as a projection table,
// population counters and the list of warnings.
func FormatSimulation(r *transition.SimulationReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s %s\n\n", Bold(r.FromYear), Dim("->"), Bold(r.NewYear))

	headers := []string{"GRADE", "NOW", "PROMOTED IN", "ENROLLED", "PROJECTED", ""}
	rows := make([][]string, 0, len(r.Grades))
	for _, g := range r.Grades {
		projected := Count(g.Projected)
		if g.Warning != "" {
			projected = WarningStyle(g.Warning).Render(projected)
		}
		rows = append(rows, []string{
			GradeLabel(g.Grade),
			Count(g.Current),
			Count(g.PromotedIn),
			Count(g.Enrolled),
			projected,
			WarningBadge(g.Warning),
		})
	}
	b.WriteString(RenderTable(headers, rows, 1, 2, 3, 4))

	c := r.Counters
	b.WriteString("\n")
	fmt.Fprintf(&b, "Active students: %s -> %s\n", Count(c.ActiveBefore), Bold(Count(c.ActiveAfter)))
	fmt.Fprintf(&b, "%s promoted, %s graduated, %s enrolled",
		StyleGreen.Render(Count(c.Promoted)),
		StylePurple.Render(Count(c.Graduated)),
		StyleBlue.Render(Count(c.Enrolled)))
	if c.Conflicts > 0 {
		fmt.Fprintf(&b, ", %s", StyleRed.Render(Count(c.Conflicts)+" conflict(s)"))
	}
	b.WriteString("\n")

	if len(r.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range r.Warnings {
			b.WriteString(WarningStyle(w.Kind).Render("  WARNING: "+w.Message) + "\n")
		}
	}

	b.WriteString("\n")
	if r.IsValid {
		b.WriteString(StyleGreen.Render("✔ Plan is valid"))
	} else {
		b.WriteString(StyleRed.Render("✖ Plan is not valid: identifier conflicts must be resolved first"))
	}

	return RenderBox("Simulation", b.String())
}
