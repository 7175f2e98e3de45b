package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// AcademicYear is the versioned academic-year marker. Version increases on
// every write and is used for compare-and-swap updates.
type AcademicYear struct {
	Period  string
	Version int64
}

// ParseAcademicYear validates a "Y/Y+1" period token and returns its leading year.
func ParseAcademicYear(period string) (int, error) {
	parts := strings.Split(strings.TrimSpace(period), "/")
	if len(parts) != 2 {
		return 0, fmt.Errorf("academic year %q must look like 2025/2026", period)
	}
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("academic year %q: invalid start year", period)
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("academic year %q: invalid end year", period)
	}
	if end != start+1 {
		return 0, fmt.Errorf("academic year %q: end year must follow start year", period)
	}
	return start, nil
}

// NextPeriod returns the period following the given one, e.g.
// "2025/2026" -> "2026/2027".
func NextPeriod(period string) (string, error) {
	start, err := ParseAcademicYear(period)
	if err != nil {
		return "", err
	}
	return FormatPeriod(start + 1), nil
}

// FormatPeriod builds the period token starting at the given year.
func FormatPeriod(start int) string {
	return fmt.Sprintf("%d/%d", start, start+1)
}

// Next returns the following period. The version is carried over unchanged;
// only the store assigns versions.
func (y AcademicYear) Next() (AcademicYear, error) {
	p, err := NextPeriod(y.Period)
	if err != nil {
		return AcademicYear{}, err
	}
	return AcademicYear{Period: p, Version: y.Version}, nil
}
