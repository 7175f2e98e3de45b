package transition

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/schoolops/rollover/internal/domain"
)

// Enrollee is an applicant accepted into the enrollment set, with the
// student id the new grade-1 record will use.
type Enrollee struct {
	ApplicantID string     `json:"applicant_id"`
	StudentID   string     `json:"student_id"`
	Name        string     `json:"name"`
	Sex         domain.Sex `json:"sex"`
}

type ConflictKind string

const (
	// ConflictExistingStudent: the candidate id is already used by a
	// student record, active or inactive.
	ConflictExistingStudent ConflictKind = "existing_student"
	// ConflictDuplicateApplicant: an earlier eligible applicant claims the
	// same candidate id.
	ConflictDuplicateApplicant ConflictKind = "duplicate_applicant"
)

// Conflict is an eligible applicant excluded from enrollment because its
// candidate id is already taken.
type Conflict struct {
	ApplicantID string       `json:"applicant_id"`
	CandidateID string       `json:"candidate_id"`
	Name        string       `json:"name"`
	Kind        ConflictKind `json:"kind"`
}

// Plan is the derived, unpersisted description of one academic-year
// transition. Promotions maps a target grade to the ids moving into it.
type Plan struct {
	FromYear          string                    `json:"from_year"`
	NewYear           string                    `json:"new_year"`
	YearVersion       int64                     `json:"year_version"`
	RosterFingerprint uint64                    `json:"roster_fingerprint"`
	Promotions        map[domain.Grade][]string `json:"promotions"`
	Graduation        []string                  `json:"graduation"`
	Enrollment        []Enrollee                `json:"enrollment"`
	Conflicts         []Conflict                `json:"conflicts"`
	Ineligible        int                       `json:"ineligible"`
}

// ComputePlan derives the transition plan from a roster snapshot and the
// applicant list. It is a pure function: equal inputs give equal plans,
// regardless of the order applicants are supplied in.
//
// Grades 1-5 promote into the next grade, grade 6 graduates, and eligible
// applicants (accepted, not enrolled, targeting the new year) enroll into
// grade 1 unless their candidate id is already taken, in which case they
// are reported as conflicts.
func ComputePlan(roster *Roster, applicants []*domain.Applicant, currentYear domain.AcademicYear) (*Plan, error) {
	next, err := currentYear.Next()
	if err != nil {
		return nil, fmt.Errorf("computing next academic year: %w", err)
	}

	p := &Plan{
		FromYear:          currentYear.Period,
		NewYear:           next.Period,
		YearVersion:       currentYear.Version,
		RosterFingerprint: roster.Fingerprint,
		Promotions:        make(map[domain.Grade][]string),
		Graduation:        []string{},
		Enrollment:        []Enrollee{},
		Conflicts:         []Conflict{},
	}

	for _, g := range domain.ActiveGrades() {
		students := roster.Students(g)
		if len(students) == 0 {
			continue
		}
		ids := make([]string, 0, len(students))
		for _, s := range students {
			ids = append(ids, s.ID)
		}
		sort.Strings(ids)

		if g == domain.FinalGrade {
			p.Graduation = append(p.Graduation, ids...)
			continue
		}
		target := g.Next()
		p.Promotions[target] = append(p.Promotions[target], ids...)
	}

	ordered := make([]*domain.Applicant, len(applicants))
	copy(ordered, applicants)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	claimed := make(map[string]bool)
	for _, a := range ordered {
		if !a.EligibleFor(p.NewYear) {
			p.Ineligible++
			continue
		}
		studentID := a.EnrollmentID()
		switch {
		case roster.HasStudentID(studentID):
			p.Conflicts = append(p.Conflicts, Conflict{
				ApplicantID: a.ID, CandidateID: studentID, Name: a.Name, Kind: ConflictExistingStudent,
			})
		case claimed[studentID]:
			p.Conflicts = append(p.Conflicts, Conflict{
				ApplicantID: a.ID, CandidateID: studentID, Name: a.Name, Kind: ConflictDuplicateApplicant,
			})
		default:
			claimed[studentID] = true
			p.Enrollment = append(p.Enrollment, Enrollee{
				ApplicantID: a.ID, StudentID: studentID, Name: a.Name, Sex: a.Sex,
			})
		}
	}

	return p, nil
}

// PromotedCount returns the number of students moving up a grade.
func (p *Plan) PromotedCount() int {
	n := 0
	for _, ids := range p.Promotions {
		n += len(ids)
	}
	return n
}

// PromotedInto returns the number of students promoted into grade g.
func (p *Plan) PromotedInto(g domain.Grade) int {
	return len(p.Promotions[g])
}

func (p *Plan) GraduatedCount() int { return len(p.Graduation) }

func (p *Plan) EnrolledCount() int { return len(p.Enrollment) }

func (p *Plan) HasConflicts() bool { return len(p.Conflicts) > 0 }

// ConflictErr returns the plan's conflicts as a *ConflictError, or nil.
func (p *Plan) ConflictErr() error {
	if !p.HasConflicts() {
		return nil
	}
	return &ConflictError{Conflicts: append([]Conflict(nil), p.Conflicts...)}
}

// TargetGrades returns the grades that receive promoted students, lowest first.
func (p *Plan) TargetGrades() []domain.Grade {
	grades := make([]domain.Grade, 0, len(p.Promotions))
	for g := range p.Promotions {
		grades = append(grades, g)
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i] < grades[j] })
	return grades
}

// ApplicantIDs returns the applicant ids of the enrollment set.
func (p *Plan) ApplicantIDs() []string {
	ids := make([]string, 0, len(p.Enrollment))
	for _, e := range p.Enrollment {
		ids = append(ids, e.ApplicantID)
	}
	return ids
}

// MarshalSnapshot encodes the plan for the run journal, so a failed run can
// be resumed with exactly the plan it started with.
func (p *Plan) MarshalSnapshot() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding plan snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalPlan decodes a plan written by MarshalSnapshot.
func UnmarshalPlan(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding plan snapshot: %w", err)
	}
	if p.Promotions == nil {
		p.Promotions = make(map[domain.Grade][]string)
	}
	return &p, nil
}
