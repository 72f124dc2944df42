// Package chart renders day-of-week results as a table and a bar chart.
package chart

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fyrsmithlabs/stepwrap/internal/stats"
)

// Heading precedes the table in dow output.
const Heading = "Average steps per day of week:"

var printer = message.NewPrinter(language.English)

// FormatAverage renders an average with grouping and one decimal.
func FormatAverage(v float64) string {
	return printer.Sprintf("%.1f", v)
}

// RenderTable lays out the summary as weekday / average rows in summary
// order (descending average).
func RenderTable(s stats.DayOfWeekSummary) string {
	rows := make([][]string, 0, len(s))
	for _, a := range s {
		rows = append(rows, []string{a.Name, FormatAverage(a.Average), printer.Sprintf("%d", a.Days)})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Weekday", "Average", "Days").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col > 0 {
				return cellStyle.Align(lipgloss.Right)
			}
			return cellStyle
		}).
		Render()
}
