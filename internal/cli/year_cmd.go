package cli

import (
	"errors"
	"fmt"

	"github.com/schoolops/rollover/internal/repository"
	"github.com/spf13/cobra"
)

func newYearCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "year",
		Short: "Show or set the current academic year",
	}
	cmd.AddCommand(newYearShowCmd(app), newYearSetCmd(app))
	return cmd
}

func newYearShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current academic year",
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := app.Registry.GetYear(cmd.Context())
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("academic year not set; run `rollover year set 2025/2026`")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), y.Period)
			return nil
		},
	}
}

func newYearSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set PERIOD",
		Short: "Set the current academic year, e.g. 2025/2026",
		Long:  "Sets the academic year marker directly. Normal year changes happen through `rollover execute`.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := app.Registry.SetYear(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Academic year set to %s\n", y.Period)
			return nil
		},
	}
}
