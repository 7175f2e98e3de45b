package formatter

import (
	"testing"
	"time"

	"github.com/schoolops/rollover/internal/domain"
	"github.com/schoolops/rollover/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestFormatStatus_ShowsYearCountsAndFailedRun(t *testing.T) {
	st := &service.Status{
		Year:             domain.AcademicYear{Period: "2025/2026", Version: 4},
		YearSet:          true,
		NextYear:         "2026/2027",
		ActiveByGrade:    map[domain.Grade]int{1: 25, 6: 20},
		ActiveTotal:      45,
		EligibleNextYear: 3,
		LastRun: &domain.TransitionRun{
			FromYear:   "2024/2025",
			ToYear:     "2025/2026",
			Status:     domain.RunFailed,
			FailedStep: 3,
			Error:      "disk I/O error",
			StartedAt:  time.Now().Add(-2 * time.Hour),
		},
	}

	out := FormatStatus(st)
	assert.Contains(t, out, "2025/2026")
	assert.Contains(t, out, "version 4")
	assert.Contains(t, out, "45 active students")
	assert.Contains(t, out, "3 accepted applicant(s) waiting for 2026/2027")
	assert.Contains(t, out, "Failed")
	assert.Contains(t, out, "3/6 enroll")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "rollover resume")
}

func TestFormatStatus_NoYear(t *testing.T) {
	out := FormatStatus(&service.Status{ActiveByGrade: map[domain.Grade]int{}})
	assert.Contains(t, out, "Academic year not set")
	assert.NotContains(t, out, "LAST TRANSITION")
}
