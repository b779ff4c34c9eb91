package domain

import "time"

// Clock is the only source of "now" for the ledger. Services never read the wall clock directly.
type Clock interface {
	Now() time.Time
}

type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	now := time.Now()
	if c.Location != nil {
		return now.In(c.Location)
	}
	return now
}

// MonthStart returns midnight of the first day of t's calendar month in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func YearStart(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// InMonth reports whether t falls inside the calendar month containing ref, evaluated in ref's location.
func InMonth(t time.Time, ref time.Time) bool {
	start := MonthStart(ref)
	end := start.AddDate(0, 1, 0)
	local := t.In(ref.Location())
	return !local.Before(start) && local.Before(end)
}
