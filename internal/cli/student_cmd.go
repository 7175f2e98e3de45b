package cli

import (
	"fmt"
	"strings"

	"github.com/schoolops/rollover/internal/cli/formatter"
	"github.com/schoolops/rollover/internal/service"
	"github.com/spf13/cobra"
)

func newStudentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Manage student records",
	}
	cmd.AddCommand(newStudentAddCmd(app), newStudentListCmd(app))
	return cmd
}

func newStudentAddCmd(app *App) *cobra.Command {
	var in service.StudentInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an active student",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Sex = strings.ToUpper(in.Sex)
			s, err := app.Registry.AddStudent(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added student %s (%s) to %s\n", s.ID, s.Name, formatter.GradeLabel(s.Grade))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.ID, "id", "", "Student id (NIS)")
	cmd.Flags().StringVar(&in.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&in.Sex, "sex", "", "M or F")
	cmd.Flags().IntVar(&in.Grade, "grade", 1, "Grade 1-6")
	cmd.Flags().StringVar(&in.ClassLabel, "class", "", "Class label, e.g. 3B")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("sex")

	return cmd
}

func newStudentListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students",
		RunE: func(cmd *cobra.Command, args []string) error {
			students, err := app.Registry.ListStudents(cmd.Context(), all)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStudents(students))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include graduated and inactive students")
	return cmd
}
