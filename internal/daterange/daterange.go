// Package daterange turns calendar dates and named periods into inclusive UTC instants.
package daterange

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the accepted date format
const Layout = "2006-01-02"

// Range is an inclusive [From, To] interval in UTC.
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t lies inside r, both ends included
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

func (r Range) String() string {
	return fmt.Sprintf("%s -> %s", r.From.Format(time.RFC3339Nano), r.To.Format(time.RFC3339Nano))
}

// DayBounds maps from and to (YYYY-MM-DD) onto 00:00:00.000000 of from and
// 23:59:59.999999 of to in loc, converted to UTC. An empty date means today.
func DayBounds(from, to string, loc *time.Location) (Range, error) {
	return dayBounds(from, to, loc, time.Now())
}

func dayBounds(from, to string, loc *time.Location, now time.Time) (Range, error) {
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc).Format(Layout)
	if strings.TrimSpace(from) == "" {
		from = today
	}
	if strings.TrimSpace(to) == "" {
		to = today
	}

	start, err := time.ParseInLocation(Layout, strings.TrimSpace(from), loc)
	if err != nil {
		return Range{}, fmt.Errorf("invalid from date %q (want YYYY-MM-DD): %w", from, err)
	}
	last, err := time.ParseInLocation(Layout, strings.TrimSpace(to), loc)
	if err != nil {
		return Range{}, fmt.Errorf("invalid to date %q (want YYYY-MM-DD): %w", to, err)
	}
	if last.Before(start) {
		return Range{}, fmt.Errorf("from date %s is after to date %s", from, to)
	}

	return Range{
		From: start.UTC(),
		To:   endOfDay(last).UTC(),
	}, nil
}

// Periods lists the names accepted by Period.
func Periods() []string {
	return []string{"today", "yesterday", "this-week", "last-week", "this-month", "last-month", "all-time"}
}

// Period resolves a named period relative to now, in now's location.
// Weeks start on Monday.
func Period(name string, now time.Time) (Range, error) {
	today := midnight(now)

	var start, next time.Time
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "today":
		start = today
		next = today.AddDate(0, 0, 1)
	case "yesterday":
		start = today.AddDate(0, 0, -1)
		next = today
	case "this-week", "thisweek":
		start = today.AddDate(0, 0, -daysSinceMonday(now))
		next = start.AddDate(0, 0, 7)
	case "last-week", "lastweek":
		next = today.AddDate(0, 0, -daysSinceMonday(now))
		start = next.AddDate(0, 0, -7)
	case "this-month", "thismonth":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		next = start.AddDate(0, 1, 0)
	case "last-month", "lastmonth":
		next = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		start = next.AddDate(0, -1, 0)
	case "all-time", "alltime":
		return Range{From: time.Time{}, To: endOfDay(today).UTC()}, nil
	default:
		return Range{}, fmt.Errorf("unknown period %q (valid: %s)", name, strings.Join(Periods(), ", "))
	}

	return Range{
		From: start.UTC(),
		To:   next.Add(-time.Microsecond).UTC(),
	}, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(day time.Time) time.Time {
	return midnight(day).AddDate(0, 0, 1).Add(-time.Microsecond)
}

func daysSinceMonday(t time.Time) int {
	d := int(t.Weekday() - time.Monday)
	if d < 0 {
		d += 7
	}
	return d
}
