// Package wrapped formats the seven highlight lines of a step report.
package wrapped

import (
	"errors"
	"math"

	"github.com/fyrsmithlabs/stepwrap/internal/daily"
	"github.com/fyrsmithlabs/stepwrap/internal/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NoData is the only line produced for an empty period.
const NoData = "No data for selected period."

// Generate filters t to r and returns the seven facts, in order: total and
// miles, daily average, best day, weekday champion, longest streak, goal hit
// rate, peak month. An empty period yields []string{NoData}.
func Generate(t daily.Table, r stats.Range, s stats.Settings) ([]string, error) {
	sum, err := stats.Summarize(r.Apply(t), s)
	if errors.Is(err, stats.ErrNoData) {
		return []string{NoData}, nil
	}
	if err != nil {
		return nil, err
	}
	return Facts(sum), nil
}

// Facts renders a computed summary.
func Facts(s stats.Summary) []string {
	p := message.NewPrinter(language.English)

	streak := p.Sprintf("🔥 No streaks yet above %d steps, new goals await!", s.StreakTarget)
	if s.Streak.Length > 0 {
		streak = p.Sprintf("🔥 Longest %d+ streak: %d days (%s → %s).",
			s.StreakTarget,
			s.Streak.Length,
			s.Streak.Start.Format("2006-01-02"),
			s.Streak.End.Format("2006-01-02"),
		)
	}

	return []string{
		p.Sprintf("🦶 You took %d steps (~%.1f miles)!", s.Total, s.Miles),
		p.Sprintf("📈 Averaged %d steps per day over %d days.", truncate(s.Average), s.Days),
		p.Sprintf("🏆 Best day: %s with %d steps.", s.Best.Date.Format("2006-01-02"), s.Best.Steps),
		p.Sprintf("📅 You walk most on %ss (avg %d steps).", s.Champion.Name, truncate(s.Champion.Average)),
		streak,
		p.Sprintf("🎯 Hit %d+ steps on %.1f%% of days.", s.Goal, s.GoalRate),
		p.Sprintf("🌙 Peak month: %s (avg %d/day).", s.Peak.Month.Format("January 2006"), truncate(s.Peak.Average)),
	}
}

func truncate(f float64) int {
	return int(math.Trunc(f))
}
