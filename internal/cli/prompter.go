package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/schoolops/rollover/internal/cli/formatter"
	"github.com/schoolops/rollover/internal/service"
	"github.com/schoolops/rollover/internal/transition"
)

// rolloverHuhTheme returns a huh theme using the formatter's Gruvbox palette.
func rolloverHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorRed).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// formPrompter asks both confirmation questions with huh forms. Aborting a
// form (ctrl+c, esc) counts as declining.
type formPrompter struct {
	out io.Writer
}

func newFormPrompter(out io.Writer) *formPrompter {
	return &formPrompter{out: out}
}

func (p *formPrompter) Acknowledge(ctx context.Context, summary transition.PlanSummary) (bool, error) {
	fmt.Fprintln(p.out, formatter.RenderBox("Confirm transition", formatter.FormatSummary(summary)))

	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Apply this transition?").
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(rolloverHuhTheme()).WithShowHelp(false)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func (p *formPrompter) TypeToken(ctx context.Context, expected string) (string, error) {
	var typed string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Type %s to start", expected)).
				Description("Case-sensitive. Anything else cancels.").
				Value(&typed),
		),
	).WithTheme(rolloverHuhTheme()).WithShowHelp(false)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", err
	}
	return typed, nil
}

// summaryPrinter shows the summary before delegating, so unattended runs
// still leave the acknowledged summary in their output.
type summaryPrinter struct {
	out   io.Writer
	inner service.Prompter
}

func (p *summaryPrinter) Acknowledge(ctx context.Context, summary transition.PlanSummary) (bool, error) {
	fmt.Fprintln(p.out, formatter.RenderBox("Confirm transition", formatter.FormatSummary(summary)))
	return p.inner.Acknowledge(ctx, summary)
}

func (p *summaryPrinter) TypeToken(ctx context.Context, expected string) (string, error) {
	return p.inner.TypeToken(ctx, expected)
}
