package cli

import (
	"fmt"
	"strings"

	"github.com/schoolops/rollover/internal/cli/formatter"
	"github.com/schoolops/rollover/internal/service"
	"github.com/spf13/cobra"
)

func newApplicantCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applicant",
		Short: "Manage grade-1 applicants",
	}
	cmd.AddCommand(newApplicantAddCmd(app), newApplicantListCmd(app))
	return cmd
}

func newApplicantAddCmd(app *App) *cobra.Command {
	var in service.ApplicantInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an applicant for a target academic year",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Sex = strings.ToUpper(in.Sex)
			a, err := app.Registry.AddApplicant(cmd.Context(), in)
			if err != nil {
				return err
			}
			state := "pending"
			if a.Accepted {
				state = "accepted"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added applicant %s for %s (%s) %s\n", a.Name, a.TargetYear, state, formatter.TruncID(a.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&in.Sex, "sex", "", "M or F")
	cmd.Flags().StringVar(&in.TargetYear, "year", "", "Academic year of entry, e.g. 2026/2027")
	cmd.Flags().StringVar(&in.CandidateStudentID, "student-id", "", "Student id issued on acceptance")
	cmd.Flags().BoolVar(&in.Accepted, "accepted", false, "Applicant has been accepted")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("sex")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}

func newApplicantListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List applicants",
		RunE: func(cmd *cobra.Command, args []string) error {
			applicants, err := app.Registry.ListApplicants(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatApplicants(applicants))
			return nil
		},
	}
}
