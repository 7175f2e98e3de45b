package service

import (
	"context"
	"fmt"
	"time"

	"github.com/schoolops/rollover/internal/transition"
)

// DefaultConfirmationToken is the literal the operator must type to execute.
const DefaultConfirmationToken = "EXECUTE"

// ConfirmationGate asks the operator to acknowledge a plan summary and then
// type an exact, case-sensitive token. It never writes to storage.
type ConfirmationGate struct {
	loader   RosterLoader
	token    string
	observer UseCaseObserver
}

func NewConfirmationGate(loader RosterLoader, token string, observers ...UseCaseObserver) *ConfirmationGate {
	if token == "" {
		token = DefaultConfirmationToken
	}
	return &ConfirmationGate{loader: loader, token: token, observer: useCaseObserverOrNoop(observers)}
}

// Token returns the literal the operator has to type.
func (g *ConfirmationGate) Token() string { return g.token }

// Confirm re-reads the roster and year marker, rejects the plan with
// transition.ErrStalePlan if either changed since planning, and then runs
// both prompts. A declined summary or a mismatched token yields
// *transition.ConfirmationRejectedError.
func (g *ConfirmationGate) Confirm(ctx context.Context, plan *transition.Plan, simulated bool, p Prompter) (err error) {
	start := time.Now()
	defer func() {
		observe(ctx, g.observer, "confirm", start, err, map[string]any{
			"simulated": simulated,
			"new_year":  plan.NewYear,
		})
	}()

	if err := g.checkFresh(ctx, plan); err != nil {
		return err
	}
	return g.prompt(ctx, transition.Summarize(plan, simulated), p)
}

// ConfirmResume gates the resumption of a failed run. The roster has
// already been partially rewritten by that run, so it is not re-checked.
func (g *ConfirmationGate) ConfirmResume(ctx context.Context, plan *transition.Plan, lastCompleted int, p Prompter) (err error) {
	start := time.Now()
	defer func() {
		observe(ctx, g.observer, "confirm_resume", start, err, map[string]any{"last_completed_step": lastCompleted})
	}()

	summary := transition.Summarize(plan, true)
	summary.Advisories = append(summary.Advisories,
		fmt.Sprintf("Resuming an unfinished run: steps 1-%d are already applied and will be skipped.", lastCompleted))
	return g.prompt(ctx, summary, p)
}

func (g *ConfirmationGate) checkFresh(ctx context.Context, plan *transition.Plan) error {
	roster, err := g.loader.LoadRoster(ctx)
	if err != nil {
		return err
	}
	if roster.Year.Period != plan.FromYear || roster.Year.Version != plan.YearVersion {
		return fmt.Errorf("%w: academic year is now %s (version %d)", transition.ErrStalePlan, roster.Year.Period, roster.Year.Version)
	}
	if roster.Fingerprint != plan.RosterFingerprint {
		return fmt.Errorf("%w: student roster changed", transition.ErrStalePlan)
	}
	return nil
}

func (g *ConfirmationGate) prompt(ctx context.Context, summary transition.PlanSummary, p Prompter) error {
	ok, err := p.Acknowledge(ctx, summary)
	if err != nil {
		return fmt.Errorf("reading acknowledgement: %w", err)
	}
	if !ok {
		return &transition.ConfirmationRejectedError{Reason: transition.RejectDeclined}
	}

	typed, err := p.TypeToken(ctx, g.token)
	if err != nil {
		return fmt.Errorf("reading confirmation token: %w", err)
	}
	if typed != g.token {
		return &transition.ConfirmationRejectedError{Reason: transition.RejectTokenMismatch}
	}
	return nil
}

// StaticPrompter answers both prompts from preset values. It backs
// non-interactive runs where the operator passes the answers as flags.
type StaticPrompter struct {
	Acknowledged bool
	Token        string
}

func (p StaticPrompter) Acknowledge(context.Context, transition.PlanSummary) (bool, error) {
	return p.Acknowledged, nil
}

func (p StaticPrompter) TypeToken(context.Context, string) (string, error) {
	return p.Token, nil
}
