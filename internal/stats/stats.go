// Package stats derives summary statistics from a daily step table.
//
// Every function that needs at least one day returns ErrNoData for an empty
// table.
package stats

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fyrsmithlabs/stepwrap/internal/daily"
)

// ErrNoData is returned when the (filtered) table has no days.
var ErrNoData = errors.New("no data for selected period")

// Settings carries the thresholds used by the statistics. Zero values are
// rejected by Validate.
type Settings struct {
	Goal            int
	StreakThreshold int
	StepsPerMile    float64
}

func (s Settings) Validate() error {
	if s.Goal <= 0 {
		return fmt.Errorf("goal must be positive, got %d", s.Goal)
	}
	if s.StreakThreshold <= 0 {
		return fmt.Errorf("streak threshold must be positive, got %d", s.StreakThreshold)
	}
	if s.StepsPerMile <= 0 {
		return fmt.Errorf("steps per mile must be positive, got %g", s.StepsPerMile)
	}
	return nil
}

// Range is an inclusive date window. Either bound may be nil.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// Apply filters t to the range.
func (r Range) Apply(t daily.Table) daily.Table {
	return t.Filter(r.Start, r.End)
}

// IsOpen reports whether neither bound is set.
func (r Range) IsOpen() bool {
	return r.Start == nil && r.End == nil
}

// String renders "2024-01-01 to 2024-01-31" with "..." for a missing bound,
// or "" when the range is open.
func (r Range) String() string {
	if r.IsOpen() {
		return ""
	}
	bound := func(t *time.Time) string {
		if t == nil {
			return "..."
		}
		return t.Format(time.DateOnly)
	}
	return bound(r.Start) + " to " + bound(r.End)
}

// weekOrder is Monday first.
var weekOrder = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeekOrder returns the weekdays Monday through Sunday.
func WeekOrder() []time.Weekday {
	return weekOrder[:]
}

// WeekdayAverage is the mean daily steps for one weekday.
type WeekdayAverage struct {
	Weekday time.Weekday
	Name    string
	Average float64
	Days    int
}

// DayOfWeekSummary is ordered by descending average. Weekdays without any
// day in the table are omitted.
type DayOfWeekSummary []WeekdayAverage

// Lookup returns the entry for wd.
func (s DayOfWeekSummary) Lookup(wd time.Weekday) (WeekdayAverage, bool) {
	for _, a := range s {
		if a.Weekday == wd {
			return a, true
		}
	}
	return WeekdayAverage{}, false
}

// DayOfWeek averages steps per weekday. Ties keep Monday..Sunday order.
func DayOfWeek(t daily.Table) DayOfWeekSummary {
	var sums, counts [7]int
	for _, d := range t.Days() {
		wd := d.Date.Weekday()
		sums[wd] += d.Steps
		counts[wd]++
	}

	out := make(DayOfWeekSummary, 0, 7)
	for _, wd := range weekOrder {
		if counts[wd] == 0 {
			continue
		}
		out = append(out, WeekdayAverage{
			Weekday: wd,
			Name:    wd.String(),
			Average: float64(sums[wd]) / float64(counts[wd]),
			Days:    counts[wd],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Average > out[j].Average })
	return out
}

// Streak is a run of consecutive calendar days at or above a threshold.
// Start and End are zero when Length is 0.
type Streak struct {
	Length int
	Start  time.Time
	End    time.Time
}

// LongestStreak scans days chronologically. A day below threshold or a
// missing calendar day ends the current run. The first run of maximal length
// wins.
func LongestStreak(t daily.Table, threshold int) Streak {
	var best, cur Streak
	var prev time.Time

	for _, d := range t.Days() {
		if d.Steps < threshold {
			cur = Streak{}
			continue
		}
		if cur.Length > 0 && d.Date.Equal(prev.AddDate(0, 0, 1)) {
			cur.Length++
			cur.End = d.Date
		} else {
			cur = Streak{Length: 1, Start: d.Date, End: d.Date}
		}
		prev = d.Date
		if cur.Length > best.Length {
			best = cur
		}
	}
	return best
}

// GoalHitRate is the percentage (0-100) of days with steps >= goal.
func GoalHitRate(t daily.Table, goal int) (float64, error) {
	if t.Len() == 0 {
		return 0, ErrNoData
	}
	hits := 0
	for _, d := range t.Days() {
		if d.Steps >= goal {
			hits++
		}
	}
	return float64(hits) / float64(t.Len()) * 100, nil
}

// BestDay returns the day with the most steps; the earliest wins ties.
func BestDay(t daily.Table) (daily.Day, error) {
	days := t.Days()
	if len(days) == 0 {
		return daily.Day{}, ErrNoData
	}
	best := days[0]
	for _, d := range days[1:] {
		if d.Steps > best.Steps {
			best = d
		}
	}
	return best, nil
}

// MonthAverage is the mean daily steps over the days present in a month.
// Month is the first of that month, UTC.
type MonthAverage struct {
	Month   time.Time
	Average float64
}

// PeakMonth returns the month with the highest mean; the earliest wins ties.
func PeakMonth(t daily.Table) (MonthAverage, error) {
	days := t.Days()
	if len(days) == 0 {
		return MonthAverage{}, ErrNoData
	}

	var best MonthAverage
	found := false
	flush := func(month time.Time, sum, n int) {
		avg := float64(sum) / float64(n)
		if !found || avg > best.Average {
			best = MonthAverage{Month: month, Average: avg}
			found = true
		}
	}

	// Days are ascending, so each month is one contiguous block.
	month := monthOf(days[0].Date)
	sum, n := 0, 0
	for _, d := range days {
		if m := monthOf(d.Date); !m.Equal(month) {
			flush(month, sum, n)
			month, sum, n = m, 0, 0
		}
		sum += d.Steps
		n++
	}
	flush(month, sum, n)
	return best, nil
}

func monthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Summary bundles every statistic the wrapped report needs.
type Summary struct {
	Total        int
	Days         int
	Average      float64
	Miles        float64
	Best         daily.Day
	Champion     WeekdayAverage
	Streak       Streak
	GoalRate     float64
	Peak         MonthAverage
	Goal         int
	StreakTarget int
}

// Summarize computes the Summary for t.
func Summarize(t daily.Table, s Settings) (Summary, error) {
	if err := s.Validate(); err != nil {
		return Summary{}, err
	}
	if t.Len() == 0 {
		return Summary{}, ErrNoData
	}

	best, err := BestDay(t)
	if err != nil {
		return Summary{}, err
	}
	rate, err := GoalHitRate(t, s.Goal)
	if err != nil {
		return Summary{}, err
	}
	peak, err := PeakMonth(t)
	if err != nil {
		return Summary{}, err
	}

	total := t.Total()
	return Summary{
		Total:        total,
		Days:         t.Len(),
		Average:      float64(total) / float64(t.Len()),
		Miles:        float64(total) / s.StepsPerMile,
		Best:         best,
		Champion:     DayOfWeek(t)[0],
		Streak:       LongestStreak(t, s.StreakThreshold),
		GoalRate:     rate,
		Peak:         peak,
		Goal:         s.Goal,
		StreakTarget: s.StreakThreshold,
	}, nil
}
