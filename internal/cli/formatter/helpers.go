package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/transition"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// Count formats n with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Ago renders t relative to now, e.g. "3 hours ago".
func Ago(t time.Time) string {
	return humanize.Time(t)
}

// GradeLabel renders a grade for tables: "Grade 3" or "Graduated".
func GradeLabel(g domain.Grade) string {
	if g == domain.GradeGraduated {
		return "Graduated"
	}
	return "Grade " + g.String()
}

// StepLabel renders "3/6 enroll".
func StepLabel(step transition.Step) string {
	return fmt.Sprintf("%d/%d %s", int(step), transition.StepCount, step)
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// OrDash renders an empty string as a dimmed placeholder.
func OrDash(s string) string {
	if s == "" {
		return StyleDim.Render("--")
	}
	return s
}
