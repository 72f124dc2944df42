package wrapped

import (
	"testing"
	"time"

	"github.com/fyrsmithlabs/stepwrap/internal/daily"
	"github.com/fyrsmithlabs/stepwrap/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = stats.Settings{Goal: 10000, StreakThreshold: 8000, StepsPerMile: 2000}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func scenario() daily.Table {
	return daily.FromDays([]daily.Day{
		{Date: date(2024, 1, 1), Steps: 12000},
		{Date: date(2024, 1, 2), Steps: 5000},
		{Date: date(2024, 1, 8), Steps: 11000},
	})
}

func TestGenerate_Scenario(t *testing.T) {
	facts, err := Generate(scenario(), stats.Range{}, defaults)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"🦶 You took 28,000 steps (~14.0 miles)!",
		"📈 Averaged 9,333 steps per day over 3 days.",
		"🏆 Best day: 2024-01-01 with 12,000 steps.",
		"📅 You walk most on Mondays (avg 11,500 steps).",
		"🔥 Longest 8,000+ streak: 1 days (2024-01-01 → 2024-01-01).",
		"🎯 Hit 10,000+ steps on 66.7% of days.",
		"🌙 Peak month: January 2024 (avg 9,333/day).",
	}, facts)
}

func TestGenerate_NoStreak(t *testing.T) {
	table := daily.FromDays([]daily.Day{
		{Date: date(2024, 3, 1), Steps: 100},
		{Date: date(2024, 3, 2), Steps: 200},
	})

	facts, err := Generate(table, stats.Range{}, defaults)
	require.NoError(t, err)
	require.Len(t, facts, 7)
	assert.Equal(t, "🔥 No streaks yet above 8,000 steps, new goals await!", facts[4])
	assert.Equal(t, "🎯 Hit 10,000+ steps on 0.0% of days.", facts[5])
}

func TestGenerate_EmptyRange(t *testing.T) {
	from, to := date(2025, 1, 1), date(2025, 12, 31)

	facts, err := Generate(scenario(), stats.Range{Start: &from, End: &to}, defaults)
	require.NoError(t, err)
	assert.Equal(t, []string{NoData}, facts)

	facts, err = Generate(daily.Table{}, stats.Range{}, defaults)
	require.NoError(t, err)
	assert.Equal(t, []string{NoData}, facts)
}

func TestGenerate_RangeApplied(t *testing.T) {
	from := date(2024, 1, 2)

	facts, err := Generate(scenario(), stats.Range{Start: &from}, defaults)
	require.NoError(t, err)
	assert.Equal(t, "🦶 You took 16,000 steps (~8.0 miles)!", facts[0])
	assert.Equal(t, "📈 Averaged 8,000 steps per day over 2 days.", facts[1])
	assert.Equal(t, "🏆 Best day: 2024-01-08 with 11,000 steps.", facts[2])
}

func TestGenerate_CustomSettings(t *testing.T) {
	s := stats.Settings{Goal: 5000, StreakThreshold: 4000, StepsPerMile: 2500}

	facts, err := Generate(scenario(), stats.Range{}, s)
	require.NoError(t, err)
	assert.Equal(t, "🦶 You took 28,000 steps (~11.2 miles)!", facts[0])
	assert.Equal(t, "🔥 Longest 4,000+ streak: 2 days (2024-01-01 → 2024-01-02).", facts[4])
	assert.Equal(t, "🎯 Hit 5,000+ steps on 100.0% of days.", facts[5])
}

func TestGenerate_InvalidSettings(t *testing.T) {
	_, err := Generate(scenario(), stats.Range{}, stats.Settings{})
	assert.Error(t, err)
}
