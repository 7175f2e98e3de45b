package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Grade is a class level. Active students are in MinGrade..FinalGrade;
// GradeGraduated is the terminal level assigned on graduation.
type Grade int

const (
	GradeGraduated Grade = 0
	MinGrade       Grade = 1
	FinalGrade     Grade = 6
)

const graduatedLabel = "graduated"

// ActiveGrades lists the grades an active student can be in, lowest first.
func ActiveGrades() []Grade {
	grades := make([]Grade, 0, int(FinalGrade))
	for g := MinGrade; g <= FinalGrade; g++ {
		grades = append(grades, g)
	}
	return grades
}

// IsActiveGrade reports whether g is a grade an active student can hold.
func (g Grade) IsActiveGrade() bool {
	return g >= MinGrade && g <= FinalGrade
}

// Next returns the grade a continuing student is promoted into.
// The final grade promotes to GradeGraduated.
func (g Grade) Next() Grade {
	if g >= FinalGrade || g < MinGrade {
		return GradeGraduated
	}
	return g + 1
}

func (g Grade) String() string {
	if g == GradeGraduated {
		return graduatedLabel
	}
	return strconv.Itoa(int(g))
}

// ParseGrade parses the stored representation of a grade ("1".."6" or "graduated").
func ParseGrade(s string) (Grade, error) {
	if s == graduatedLabel {
		return GradeGraduated, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid grade %q", s)
	}
	g := Grade(n)
	if !g.IsActiveGrade() {
		return 0, fmt.Errorf("grade %d out of range %d-%d", n, MinGrade, FinalGrade)
	}
	return g, nil
}

type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// Student is a school record keyed by its external student identifier.
type Student struct {
	ID         string
	Name       string
	Sex        Sex
	Grade      Grade
	Active     bool
	ClassLabel string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the grade/active invariant: an active student is in an
// active grade, a graduated student is inactive.
func (s *Student) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("student id is required")
	}
	if s.Active && !s.Grade.IsActiveGrade() {
		return fmt.Errorf("student %s: active student must be in grade %d-%d, got %s", s.ID, MinGrade, FinalGrade, s.Grade)
	}
	if s.Grade == GradeGraduated && s.Active {
		return fmt.Errorf("student %s: graduated student cannot be active", s.ID)
	}
	return nil
}

// Graduate marks the student inactive with the terminal grade.
func (s *Student) Graduate(now time.Time) {
	s.Active = false
	s.Grade = GradeGraduated
	s.UpdatedAt = now
}
