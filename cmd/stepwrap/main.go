// Package main implements the stepwrap CLI, which summarizes step counts from
// an Apple Health export.
package main

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// version information
	version = "dev"

	configPath string
	logLevel   string
	logFormat  string
	noProgress bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd.SetArgs(normalizeArgs(rootCmd, os.Args[1:]))
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stepwrap <export-file> <command>",
	Short: "Analyze step counts from an Apple Health export",
	Long: `stepwrap streams an Apple Health export (export.xml, or the export.zip the
Health app produces), totals step counts per day, and reports on them.

Examples:
  # Average steps per weekday, with a chart
  stepwrap export.xml dow

  # Highlights for one year
  stepwrap export.zip wrapped --start 2024-01-01 --end 2024-12-31`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/stepwrap/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "do not show the parsing progress bar")
}

// normalizeArgs moves the first subcommand name to the front so the export
// file may precede it ("stepwrap export.xml dow"). Values of flags are never
// taken for a subcommand.
func normalizeArgs(root *cobra.Command, args []string) []string {
	if len(args) == 0 || isSubcommand(root, args[0]) {
		return args
	}
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		if takesValue(root, a) {
			i++
			continue
		}
		if isSubcommand(root, a) {
			out := make([]string, 0, len(args))
			out = append(out, a)
			out = append(out, args[:i]...)
			return append(out, args[i+1:]...)
		}
	}
	return args
}

// takesValue reports whether arg is a known flag whose value is the next
// argument ("--config x", not "--config=x" or a boolean flag).
func takesValue(root *cobra.Command, arg string) bool {
	if len(arg) < 2 || arg[0] != '-' || strings.Contains(arg, "=") {
		return false
	}

	sets := []*pflag.FlagSet{root.PersistentFlags(), root.Flags()}
	for _, c := range root.Commands() {
		sets = append(sets, c.Flags())
	}

	for _, fs := range sets {
		var f *pflag.Flag
		switch {
		case strings.HasPrefix(arg, "--"):
			f = fs.Lookup(arg[2:])
		case len(arg) == 2:
			f = fs.ShorthandLookup(arg[1:])
		}
		if f != nil {
			return f.NoOptDefVal == ""
		}
	}
	return false
}

func isSubcommand(root *cobra.Command, name string) bool {
	if name == "help" {
		return true
	}
	return slices.ContainsFunc(root.Commands(), func(c *cobra.Command) bool {
		return c.Name() == name || c.HasAlias(name)
	})
}
