package domain

import "time"

// Teacher is a staff member who may be assigned as the class teacher of a grade.
type Teacher struct {
	ID            string
	Name          string
	AssignedGrade *Grade
	AssignedClass string
	UpdatedAt     time.Time
}

// IsAssigned reports whether the teacher currently holds a class assignment.
func (t *Teacher) IsAssigned() bool {
	return t.AssignedGrade != nil
}
