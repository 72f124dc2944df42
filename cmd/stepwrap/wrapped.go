package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/stepwrap/internal/wrapped"
)

var wrappedRange rangeFlags

func init() {
	rootCmd.AddCommand(wrappedCmd)
	wrappedRange.register(wrappedCmd)
}

// wrappedCmd prints the highlight facts
var wrappedCmd = &cobra.Command{
	Use:   "wrapped <export-file>",
	Short: "Print highlight facts for a period",
	Long: `Print seven highlight facts for the selected period: total steps and
distance, daily average, best day, favourite weekday, longest streak, goal hit
rate and peak month. Goal, streak threshold and steps per mile come from the
analysis section of the config.

Examples:
  # Year in review
  stepwrap export.xml wrapped --start 2024-01-01 --end 2024-12-31`,
	Args: cobra.ExactArgs(1),
	RunE: runWrapped,
}

func runWrapped(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		table, err := a.loadTable(ctx, args[0])
		if err != nil {
			return err
		}

		facts, err := wrapped.Generate(table, wrappedRange.Range(), a.settings())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(facts, "\n"))
		return err
	})
}
