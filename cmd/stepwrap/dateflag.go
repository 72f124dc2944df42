package main

import (
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/stepwrap/internal/daily"
	"github.com/fyrsmithlabs/stepwrap/internal/stats"
)

// dateFlag is a pflag.Value holding an optional calendar date.
type dateFlag struct {
	value *time.Time
}

func (d *dateFlag) String() string {
	if d.value == nil {
		return ""
	}
	return d.value.Format(time.DateOnly)
}

func (d *dateFlag) Set(s string) error {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	date := daily.DateOf(t)
	d.value = &date
	return nil
}

func (d *dateFlag) Type() string {
	return "date"
}

// rangeFlags are the --start/--end pair shared by the subcommands.
type rangeFlags struct {
	start dateFlag
	end   dateFlag
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().Var(&r.start, "start", "inclusive start date (YYYY-MM-DD)")
	cmd.Flags().Var(&r.end, "end", "inclusive end date (YYYY-MM-DD)")
}

func (r *rangeFlags) Range() stats.Range {
	return stats.Range{Start: r.start.value, End: r.end.value}
}
