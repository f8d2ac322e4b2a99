package service

import (
	"strings"
	"time"
)

// Report periods.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// PeriodRange returns the calendar period containing now as [start, end).
// Weeks start on Monday. Unknown periods fall back to month.
func PeriodRange(period string, now time.Time) (string, time.Time, time.Time) {
	y, m, d := now.Date()
	loc := now.Location()

	switch strings.ToLower(period) {
	case PeriodYear:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return PeriodYear, start, start.AddDate(1, 0, 0)
	case PeriodWeek:
		back := (int(now.Weekday()) + 6) % 7
		start := time.Date(y, m, d-back, 0, 0, 0, 0, loc)
		return PeriodWeek, start, start.AddDate(0, 0, 7)
	default:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return PeriodMonth, start, start.AddDate(0, 1, 0)
	}
}

// startOfDay truncates t to midnight in its location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
