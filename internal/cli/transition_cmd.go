package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/schoolops/rollover/internal/cli/formatter"
	"github.com/schoolops/rollover/internal/service"
	"github.com/schoolops/rollover/internal/transition"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Compute the transition plan for the next academic year",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := app.Workflow.Plan(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPlan(plan))
			return nil
		},
	}
}

func newSimulateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Project grade sizes and capacity warnings without changing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plan, err := app.Workflow.Plan(ctx)
			if err != nil {
				return err
			}
			report, err := app.Workflow.Simulate(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSimulation(report))
			if !report.IsValid {
				return plan.ConflictErr()
			}
			return nil
		},
	}
}

// confirmFlags are the non-interactive answers to the confirmation gate.
type confirmFlags struct {
	yes   bool
	token string
}

func (f *confirmFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "Acknowledge the plan summary without prompting")
	cmd.Flags().StringVar(&f.token, "confirm", "", "Confirmation token, typed exactly")
}

// prompter picks the answers source: flags when any was given, a form on a
// terminal, and an error otherwise.
func (f *confirmFlags) prompter(cmd *cobra.Command, app *App) (service.Prompter, error) {
	if cmd.Flags().Changed("yes") || cmd.Flags().Changed("confirm") {
		return &summaryPrinter{
			out:   cmd.OutOrStdout(),
			inner: service.StaticPrompter{Acknowledged: f.yes, Token: f.token},
		}, nil
	}
	if !app.interactive() {
		return nil, errors.New("confirmation needs a terminal; pass --yes and --confirm TOKEN to run unattended")
	}
	if app.NewPrompter != nil {
		return app.NewPrompter(cmd), nil
	}
	return newFormPrompter(cmd.OutOrStdout()), nil
}

func newExecuteCmd(app *App) *cobra.Command {
	var flags confirmFlags
	var skipSimulation bool

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Plan, confirm and apply the academic year transition",
		Long: "Computes a fresh plan, simulates it, asks for confirmation and applies it.\n" +
			"Once the first step starts the run cannot be cancelled; a failed run is continued with `rollover resume`.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			prompter, err := flags.prompter(cmd, app)
			if err != nil {
				return err
			}

			plan, err := app.Workflow.Plan(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.FormatPlan(plan))

			if !skipSimulation {
				report, err := app.Workflow.Simulate(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.FormatSimulation(report))
			}

			if err := app.Workflow.Confirm(ctx, prompter); err != nil {
				return err
			}

			res, err := app.Workflow.Execute(context.WithoutCancel(ctx))
			return reportRun(cmd, res, err)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&skipSimulation, "skip-simulation", false, "Do not simulate before confirming")

	return cmd
}

func newResumeCmd(app *App) *cobra.Command {
	var flags confirmFlags

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Continue the last failed transition from the step that failed",
		RunE: func(cmd *cobra.Command, args []string) error {
			prompter, err := flags.prompter(cmd, app)
			if err != nil {
				return err
			}
			res, err := app.Workflow.Resume(context.WithoutCancel(cmd.Context()), prompter)
			return reportRun(cmd, res, err)
		},
	}

	flags.register(cmd)
	return cmd
}

func reportRun(cmd *cobra.Command, res *service.RunResult, err error) error {
	var stepErr *transition.StepExecutionError
	if errors.As(err, &stepErr) {
		fmt.Fprintln(cmd.ErrOrStderr(), formatter.FormatStepFailure(stepErr))
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRunResult(res))
	return nil
}
