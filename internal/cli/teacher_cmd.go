package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/schoolops/rollover/internal/cli/formatter"
	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/service"
	"github.com/spf13/cobra"
)

// resolveTeacherID accepts a full teacher id or an unambiguous prefix.
func resolveTeacherID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("teacher ID is required")
	}
	teachers, err := app.Registry.ListTeachers(ctx)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, t := range teachers {
		if t.ID == input {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, input) {
			matches = append(matches, t.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("teacher not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("teacher ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func newTeacherCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teacher",
		Short: "Manage teachers and class assignments",
	}
	cmd.AddCommand(newTeacherAddCmd(app), newTeacherAssignCmd(app), newTeacherListCmd(app))
	return cmd
}

func newTeacherAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Register a teacher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Registry.AddTeacher(cmd.Context(), service.TeacherInput{Name: args[0]})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added teacher %s %s\n", t.Name, formatter.Dim(t.ID))
			return nil
		},
	}
}

func newTeacherAssignCmd(app *App) *cobra.Command {
	var grade int
	var class string

	cmd := &cobra.Command{
		Use:   "assign TEACHER_ID",
		Short: "Assign a teacher as class teacher of a grade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTeacherID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Registry.AssignTeacher(ctx, service.AssignmentInput{TeacherID: id, Grade: grade, Class: class}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to %s %s\n", formatter.TruncID(id), formatter.GradeLabel(domain.Grade(grade)), class)
			return nil
		},
	}

	cmd.Flags().IntVar(&grade, "grade", 0, "Grade 1-6")
	cmd.Flags().StringVar(&class, "class", "", "Class label")
	_ = cmd.MarkFlagRequired("grade")

	return cmd
}

func newTeacherListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List teachers",
		RunE: func(cmd *cobra.Command, args []string) error {
			teachers, err := app.Registry.ListTeachers(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTeachers(teachers))
			return nil
		},
	}
}
