package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Show displays the chart. On a terminal it opens a full-screen window that
// stays up until the user quits; otherwise the chart is written once.
func Show(ctx context.Context, out io.Writer, in Input) error {
	if !IsTerminal(out) {
		_, err := fmt.Fprintln(out, Render(in, 0))
		return err
	}

	p := tea.NewProgram(NewModel(in),
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("chart window: %w", err)
	}
	return nil
}
