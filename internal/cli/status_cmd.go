package cli

import (
	"fmt"

	"github.com/schoolops/rollover/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the academic year, grade sizes and the last transition run",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Status.GetStatus(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStatus(st))
			return nil
		},
	}
}
