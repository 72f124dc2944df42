package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/stepwrap/internal/chart"
	"github.com/fyrsmithlabs/stepwrap/internal/stats"
	"github.com/fyrsmithlabs/stepwrap/internal/wrapped"
)

var (
	dowRange  rangeFlags
	dowNoPlot bool
)

func init() {
	rootCmd.AddCommand(dowCmd)
	dowRange.register(dowCmd)
	dowCmd.Flags().BoolVar(&dowNoPlot, "no-plot", false, "print the table only, without the bar chart")
}

// dowCmd reports average steps per weekday
var dowCmd = &cobra.Command{
	Use:   "dow <export-file>",
	Short: "Average steps per day of week",
	Long: `Print average daily steps for each weekday, highest first, followed by a
Monday to Sunday bar chart. On a terminal the chart opens in a window that
closes with q, esc or ctrl+c.

Examples:
  # All days in the export
  stepwrap export.xml dow

  # One quarter, table only
  stepwrap dow export.xml --start 2024-01-01 --end 2024-03-31 --no-plot`,
	Args: cobra.ExactArgs(1),
	RunE: runDow,
}

func runDow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		table, err := a.loadTable(ctx, args[0])
		if err != nil {
			return err
		}

		rng := dowRange.Range()
		period := rng.Apply(table)
		summary := stats.DayOfWeek(period)

		out := cmd.OutOrStdout()
		if len(summary) == 0 {
			_, err := fmt.Fprintln(out, wrapped.NoData)
			return err
		}

		fmt.Fprintln(out, chart.Heading)
		fmt.Fprintln(out, chart.RenderTable(summary))
		if dowNoPlot {
			return nil
		}

		days := period.Days()
		trend := make([]float64, 0, len(days))
		for _, d := range days {
			trend = append(trend, float64(d.Steps))
		}

		return chart.Show(ctx, out, chart.Input{
			Title:   chart.Title(rng),
			Summary: summary,
			Goal:    a.cfg.Analysis.Goal,
			Trend:   trend,
		})
	})
}
