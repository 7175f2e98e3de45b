package formatter

import (
	"fmt"
	"strings"

	"github.com/schoolops/rollover/internal/domain"
)

func FormatStudents(students []*domain.Student) string {
	if len(students) == 0 {
		return Dim("No students.") + "\n"
	}
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		state := StyleGreen.Render("active")
		if !s.Active {
			state = Dim("inactive")
		}
		rows = append(rows, []string{s.ID, s.Name, string(s.Sex), GradeLabel(s.Grade), OrDash(s.ClassLabel), state})
	}
	return RenderTable([]string{"ID", "NAME", "SEX", "GRADE", "CLASS", "STATE"}, rows) +
		Dim(fmt.Sprintf("%s student(s)", Count(len(students)))) + "\n"
}

func FormatApplicants(applicants []*domain.Applicant) string {
	if len(applicants) == 0 {
		return Dim("No applicants.") + "\n"
	}
	rows := make([][]string, 0, len(applicants))
	for _, a := range applicants {
		var flags []string
		if a.Accepted {
			flags = append(flags, StyleGreen.Render("accepted"))
		}
		if a.Enrolled {
			flags = append(flags, Dim("enrolled"))
		}
		rows = append(rows, []string{TruncID(a.ID), a.Name, string(a.Sex), OrDash(a.CandidateStudentID), a.TargetYear, OrDash(strings.Join(flags, " "))})
	}
	return RenderTable([]string{"ID", "NAME", "SEX", "STUDENT ID", "YEAR", "STATE"}, rows)
}

// FormatTeachers lists teachers with their class assignment, if any.
func FormatTeachers(teachers []*domain.Teacher) string {
	if len(teachers) == 0 {
		return Dim("No teachers.") + "\n"
	}
	rows := make([][]string, 0, len(teachers))
	for _, t := range teachers {
		assignment := Dim("unassigned")
		if t.IsAssigned() {
			assignment = GradeLabel(*t.AssignedGrade)
			if t.AssignedClass != "" {
				assignment += " " + t.AssignedClass
			}
		}
		rows = append(rows, []string{t.ID, t.Name, assignment})
	}
	return RenderTable([]string{"ID", "NAME", "CLASS"}, rows)
}
