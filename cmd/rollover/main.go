package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schoolops/rollover/internal/cli"
	"github.com/schoolops/rollover/internal/config"
	"github.com/schoolops/rollover/internal/db"
	"github.com/schoolops/rollover/internal/repository"
	"github.com/schoolops/rollover/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Options{})
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if cfg.LogUseCases {
		observer = service.NewLogUseCaseObserver(os.Stderr)
	}

	// Wire repositories
	students := repository.NewSQLiteStudentRepo(database)
	applicants := repository.NewSQLiteApplicantRepo(database)
	teachers := repository.NewSQLiteTeacherRepo(database)
	years := repository.NewSQLiteAcademicYearRepo(database)
	runs := repository.NewSQLiteRunRepo(database)
	permits := repository.NewSQLitePermitRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire services
	loader := service.NewRosterLoader(uow, observer)
	gate := service.NewConfirmationGate(loader, cfg.ConfirmationToken, observer)
	executor := service.NewExecutor(runs, uow, observer)
	workflow := service.NewWorkflow(loader, gate, executor, permits, service.WorkflowConfig{
		Policy:    cfg.Policy(),
		PermitTTL: cfg.PermitTTL,
	}, observer)

	app := &cli.App{
		Workflow: workflow,
		Registry: service.NewRegistryService(students, applicants, teachers, years),
		Status:   service.NewStatusService(students, applicants, years, runs),
	}

	// Prompts need a terminal on both ends.
	app.IsInteractive = func() bool {
		in := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		out := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		return in && out
	}

	return cli.NewRootCmd(app).Execute()
}
