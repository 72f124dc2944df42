// Package progress reports record counts on stderr while an export is read.
package progress

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// DefaultEvery is how many records pass between bar updates.
const DefaultEvery = 1000

// Bar is a daily.Observer backed by an indeterminate spinner bar.
type Bar struct {
	bar       *progressbar.ProgressBar
	every     int
	processed int
}

// New creates a bar writing to w. every <= 0 uses DefaultEvery.
func New(w io.Writer, description string, every int) *Bar {
	if every <= 0 {
		every = DefaultEvery
	}
	return &Bar{
		every: every,
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("records"),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// Observe records that n records have been processed so far.
func (b *Bar) Observe(n int) {
	b.processed = n
	if n == 1 || n%b.every == 0 {
		_ = b.bar.Set(n)
	}
}

// Processed returns the last observed count.
func (b *Bar) Processed() int {
	return b.processed
}

// Finish flushes the final count and clears the bar.
func (b *Bar) Finish() error {
	if err := b.bar.Set(b.processed); err != nil {
		return err
	}
	return b.bar.Finish()
}
