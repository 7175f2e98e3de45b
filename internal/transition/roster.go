package transition

import (
	"fmt"
	"sort"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/schoolops/rollover/internal/domain"
)

// Roster is a point-in-time snapshot of the active student population,
// grouped by grade, together with every known student id and the
// academic-year marker it was read with.
type Roster struct {
	ByGrade     map[domain.Grade][]domain.Student
	KnownIDs    map[string]bool
	Year        domain.AcademicYear
	Fingerprint uint64
}

type fingerprintEntry struct {
	ID     string
	Grade  int
	Active bool
}

// NewRoster groups active students by grade. knownIDs must contain every
// student record id, active or not; active student ids are added to it.
// Students are copied so later changes to the inputs do not leak in.
func NewRoster(active []*domain.Student, knownIDs []string, year domain.AcademicYear) (*Roster, error) {
	r := &Roster{
		ByGrade:  make(map[domain.Grade][]domain.Student),
		KnownIDs: make(map[string]bool, len(knownIDs)),
		Year:     year,
	}
	for _, id := range knownIDs {
		r.KnownIDs[id] = true
	}
	for _, s := range active {
		if !s.Active {
			continue
		}
		if !s.Grade.IsActiveGrade() {
			return nil, fmt.Errorf("student %s is active in grade %s", s.ID, s.Grade)
		}
		r.ByGrade[s.Grade] = append(r.ByGrade[s.Grade], *s)
		r.KnownIDs[s.ID] = true
	}
	for g := range r.ByGrade {
		students := r.ByGrade[g]
		sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	}

	fp, err := rosterFingerprint(r)
	if err != nil {
		return nil, err
	}
	r.Fingerprint = fp
	return r, nil
}

// Students returns the active students of grade g, ordered by id.
func (r *Roster) Students(g domain.Grade) []domain.Student {
	return r.ByGrade[g]
}

// Count returns the number of active students in grade g.
func (r *Roster) Count(g domain.Grade) int {
	return len(r.ByGrade[g])
}

// ActiveCount returns the number of active students across all grades.
func (r *Roster) ActiveCount() int {
	n := 0
	for _, students := range r.ByGrade {
		n += len(students)
	}
	return n
}

// HasStudentID reports whether any student record, active or not, uses id.
func (r *Roster) HasStudentID(id string) bool {
	return r.KnownIDs[id]
}

// rosterFingerprint hashes the roster content that a plan depends on: the
// active students' grades and the full id set.
func rosterFingerprint(r *Roster) (uint64, error) {
	var entries []fingerprintEntry
	for _, g := range domain.ActiveGrades() {
		for _, s := range r.ByGrade[g] {
			entries = append(entries, fingerprintEntry{ID: s.ID, Grade: int(s.Grade), Active: s.Active})
		}
	}
	ids := make([]string, 0, len(r.KnownIDs))
	for id := range r.KnownIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h, err := hashstructure.Hash(struct {
		Students []fingerprintEntry
		IDs      []string
	}{entries, ids}, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, fmt.Errorf("fingerprinting roster: %w", err)
	}
	return h, nil
}
