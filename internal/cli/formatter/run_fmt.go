package formatter

import (
	"fmt"
	"strings"

	"github.com/schoolops/rollover/internal/service"
	"github.com/schoolops/rollover/internal/transition"
)

// FormatRunResult renders the per-step outcome of a finished execution.
func FormatRunResult(res *service.RunResult) string {
	var b strings.Builder

	title := "Transition complete"
	if res.Resumed {
		title = "Transition resumed and completed"
	}
	fmt.Fprintf(&b, "%s %s %s  %s\n\n", Bold(res.FromYear), Dim("->"), Bold(res.NewYear), TruncID(res.RunID))

	rows := make([][]string, 0, len(res.Steps))
	for _, s := range res.Steps {
		status := StyleGreen.Render("✔ applied")
		affected := Count(int(s.Affected))
		if s.Skipped {
			status = Dim("↷ already applied")
			affected = Dim("--")
		}
		rows = append(rows, []string{StepLabel(s.Step), affected, status})
	}
	b.WriteString(RenderTable([]string{"STEP", "ROWS", "STATUS"}, rows, 1))

	return RenderBox(title, strings.TrimRight(b.String(), "\n"))
}

// FormatStepFailure explains a failed execution and how to continue it.
func FormatStepFailure(err *transition.StepExecutionError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", StyleRed.Render(fmt.Sprintf("✖ Step %s failed", StepLabel(transition.Step(err.Step)))))
	fmt.Fprintf(&b, "%s\n", err.Err)
	if err.Step > 1 {
		fmt.Fprintf(&b, "\nSteps 1-%d were applied and stay applied.\n", err.Step-1)
	} else {
		b.WriteString("\nNo step was applied.\n")
	}
	b.WriteString("Fix the cause and run " + Bold("rollover resume") + " to continue from step " + fmt.Sprint(err.Step) + ".")
	return RenderBox("Transition failed", b.String())
}
