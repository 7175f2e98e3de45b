package formatter

import (
	"strings"
	"testing"

	"github.com/schoolops/rollover/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable([]string{"GRADE", "N"}, [][]string{{"Grade 1", "5"}, {"Grade 2", "120"}}, 1)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Grade 1    5", lines[2])
	assert.Equal(t, "Grade 2  120", lines[3])
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, [][]string{{"x"}}))
}

func TestGradeLabel(t *testing.T) {
	assert.Equal(t, "Grade 4", GradeLabel(4))
	assert.Equal(t, "Graduated", GradeLabel(domain.GradeGraduated))
}

func TestFormatTeachers_ShowsAssignment(t *testing.T) {
	g := domain.Grade(3)
	out := FormatTeachers([]*domain.Teacher{
		{ID: "t-1", Name: "Sari", AssignedGrade: &g, AssignedClass: "B"},
		{ID: "t-2", Name: "Joko"},
	})
	assert.Contains(t, out, "Grade 3 B")
	assert.Contains(t, out, "unassigned")
}
