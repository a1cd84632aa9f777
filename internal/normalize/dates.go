package normalize

import (
	"strings"
	"time"
)

// Date formats seen across the claims and encounter feeds.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
}

// ParseDate attempts to parse a feed date string in the known formats,
// truncated to a UTC calendar date. Returns nil if the input is empty
// or unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, f := range dateFormats {
		if t, err := time.Parse(f, s); err == nil {
			d := Day(t.Year(), t.Month(), t.Day())
			return &d
		}
	}
	return nil
}

// Day builds a UTC calendar date.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
