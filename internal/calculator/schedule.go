// Package calculator holds the pure money and date arithmetic behind the
// dashboard: contribution due dates, savings shares and loan defaults.
package calculator

import (
	"time"

	"github.com/Veraticus/kitty/internal/model"
)

// daysPerWeek is the weekly contribution interval in calendar days.
const daysPerWeek = 7

// NextDueDate returns when the next contribution is due after now. Weekly
// groups are due seven calendar days later; monthly groups one calendar month
// later, clamped to the last day of a shorter month. Any frequency other
// than weekly is treated as monthly.
func NextDueDate(freq model.Frequency, now time.Time) time.Time {
	if freq == model.FrequencyWeekly {
		return now.AddDate(0, 0, daysPerWeek)
	}
	return AddMonths(now, 1)
}

// AddMonths advances t by n calendar months keeping the day of month when the
// target month has it and using the target month's last day otherwise
// (Jan 31 + 1 month is Feb 29 in a leap year). Unlike time.AddDate it never
// spills into the following month.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	firstOfTarget := time.Date(year, month+time.Month(n), 1, hour, minute, sec, t.Nanosecond(), t.Location())
	if last := daysIn(firstOfTarget.Year(), firstOfTarget.Month(), t.Location()); day > last {
		day = last
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// Day 0 of the next month normalises to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
