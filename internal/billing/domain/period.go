package domain

import (
	"regexp"
	"strconv"
	"time"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Period is a calendar month billing window. End is the last instant
// of the month; it doubles as the default charge date.
type Period struct {
	Key   string
	Start time.Time
	End   time.Time
}

// ParsePeriod validates a "YYYY-MM" key and derives the UTC bounds.
func ParsePeriod(raw string) (Period, error) {
	if !periodPattern.MatchString(raw) {
		return Period{}, ErrInvalidPeriod
	}

	year, _ := strconv.Atoi(raw[:4])
	month, _ := strconv.Atoi(raw[5:])

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)

	return Period{Key: raw, Start: start, End: end}, nil
}
