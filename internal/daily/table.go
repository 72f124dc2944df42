// Package daily folds step records into per-calendar-day totals.
package daily

import (
	"sort"
	"time"
)

// Day is the step total for one calendar date. Date is midnight UTC carrying
// that calendar date.
type Day struct {
	Date  time.Time
	Steps int
}

// Table is an ascending, duplicate-free sequence of days. Dates with no
// records are absent, never zero-filled. The zero Table is empty.
type Table struct {
	days []Day
}

// DateOf returns midnight UTC of t's calendar date as seen in t's own offset.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FromDays builds a table from arbitrary days, normalizing dates with DateOf,
// summing duplicates and sorting.
func FromDays(days []Day) Table {
	totals := make(map[time.Time]int, len(days))
	for _, d := range days {
		totals[DateOf(d.Date)] += d.Steps
	}
	return fromTotals(totals)
}

func fromTotals(totals map[time.Time]int) Table {
	out := make([]Day, 0, len(totals))
	for date, steps := range totals {
		out = append(out, Day{Date: date, Steps: steps})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return Table{days: out}
}

// Days returns a copy of the days in ascending order.
func (t Table) Days() []Day {
	out := make([]Day, len(t.days))
	copy(out, t.days)
	return out
}

func (t Table) Len() int { return len(t.days) }

// Total is the sum of steps over every day.
func (t Table) Total() int {
	total := 0
	for _, d := range t.days {
		total += d.Steps
	}
	return total
}

// Steps looks up a single date.
func (t Table) Steps(date time.Time) (int, bool) {
	date = DateOf(date)
	i := sort.Search(len(t.days), func(i int) bool { return !t.days[i].Date.Before(date) })
	if i < len(t.days) && t.days[i].Date.Equal(date) {
		return t.days[i].Steps, true
	}
	return 0, false
}

// First returns the earliest day.
func (t Table) First() (Day, bool) {
	if len(t.days) == 0 {
		return Day{}, false
	}
	return t.days[0], true
}

// Last returns the latest day.
func (t Table) Last() (Day, bool) {
	if len(t.days) == 0 {
		return Day{}, false
	}
	return t.days[len(t.days)-1], true
}

// Filter returns the days within [from, to]. A nil bound is open. Bounds are
// compared by calendar date.
func (t Table) Filter(from, to *time.Time) Table {
	lo, hi := 0, len(t.days)
	if from != nil {
		f := DateOf(*from)
		lo = sort.Search(len(t.days), func(i int) bool { return !t.days[i].Date.Before(f) })
	}
	if to != nil {
		e := DateOf(*to)
		hi = sort.Search(len(t.days), func(i int) bool { return t.days[i].Date.After(e) })
	}
	if lo >= hi {
		return Table{}
	}
	out := make([]Day, hi-lo)
	copy(out, t.days[lo:hi])
	return Table{days: out}
}
