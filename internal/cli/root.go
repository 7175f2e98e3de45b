package cli

import (
	"github.com/schoolops/rollover/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services used by CLI commands.
type App struct {
	Workflow *service.Workflow
	Registry service.RegistryService
	Status   service.StatusService

	// IsInteractive reports whether confirmation prompts can be shown.
	// Nil means never.
	IsInteractive func() bool

	// NewPrompter builds the interactive prompter. Nil uses huh forms.
	NewPrompter func(cmd *cobra.Command) service.Prompter
}

// NewRootCmd creates the top-level "rollover" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "rollover",
		Short:         "Academic year transition for a single school",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newPlanCmd(app),
		newSimulateCmd(app),
		newExecuteCmd(app),
		newResumeCmd(app),
		newStatusCmd(app),
		newStudentCmd(app),
		newApplicantCmd(app),
		newTeacherCmd(app),
		newYearCmd(app),
	)

	return root
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}
