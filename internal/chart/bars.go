package chart

import (
	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/sparkline"

	"github.com/fyrsmithlabs/stepwrap/internal/stats"
)

const (
	defaultWidth  = 64
	defaultHeight = 14
	minWidth      = 28
	minHeight     = 6

	sparklineHeight = 3
)

// Title is the chart heading, with the analysed range appended when bounded.
func Title(r stats.Range) string {
	const base = "Average Steps by Day of Week"
	if r.IsOpen() {
		return base
	}
	return base + " (" + r.String() + ")"
}

// weekBars lays the summary out Monday through Sunday. A weekday with no
// data gets a zero bar so the axis always has seven slots.
func weekBars(s stats.DayOfWeekSummary) []barchart.BarData {
	top := -1.0
	if len(s) > 0 {
		top = s[0].Average
	}

	data := make([]barchart.BarData, 0, 7)
	for _, wd := range stats.WeekOrder() {
		var avg float64
		if a, ok := s.Lookup(wd); ok {
			avg = a.Average
		}
		style := barStyle
		if avg == top {
			style = topBarStyle
		}
		data = append(data, barchart.BarData{
			Label: wd.String()[:3],
			Values: []barchart.BarValue{
				{Name: wd.String(), Value: avg, Style: style},
			},
		})
	}
	return data
}

// newBarChart builds and draws a chart sized w x h.
func newBarChart(s stats.DayOfWeekSummary, w, h int) barchart.Model {
	w = max(w, minWidth)
	h = max(h, minHeight)

	bc := barchart.New(w, h,
		barchart.WithDataSet(weekBars(s)),
		barchart.WithBarGap(1),
		barchart.WithStyles(axisStyle, labelStyle),
	)
	bc.Draw()
	return bc
}

// trendLine renders daily step totals as a sparkline, most recent at the right.
func trendLine(trend []float64, w int) string {
	if len(trend) == 0 {
		return dimStyle.Render("no data")
	}
	spark := sparkline.New(max(w, minWidth), sparklineHeight)
	for _, v := range trend {
		spark.Push(v)
	}
	spark.Draw()
	return labelStyle.Render(spark.View())
}
