package domain

import "time"

// Applicant is a candidate for grade-1 enrollment in a given academic year.
type Applicant struct {
	ID                 string
	CandidateStudentID string
	Name               string
	Sex                Sex
	Accepted           bool
	Enrolled           bool
	TargetYear         string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// EligibleFor reports whether the applicant should be enrolled when year
// becomes the active academic year.
func (a *Applicant) EligibleFor(year string) bool {
	return a.Accepted && !a.Enrolled && a.TargetYear == year
}

// EnrollmentID is the student id the applicant is enrolled under: the
// candidate id when one was issued, otherwise the applicant's own id.
func (a *Applicant) EnrollmentID() string {
	if a.CandidateStudentID != "" {
		return a.CandidateStudentID
	}
	return a.ID
}
