// Package progress renders piece-completion progress to the terminal,
// replacing the teacher's hand-rolled strings.Repeat bar with the
// teacher's own (previously unused) progressbar/v3 dependency, sized to
// the real terminal width via golang.org/x/term.
package progress

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// Bar wraps a progressbar/v3 bar scaled to the piece count.
type Bar struct {
	bar *progressbar.ProgressBar
}

const defaultWidth = 50

// New returns a Bar describing total pieces, with a description label.
func New(total int, description string) *Bar {
	width := defaultWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		width = w - 20
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(width),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionOnCompletion(func() { os.Stdout.WriteString("\n") }),
	)

	return &Bar{bar: bar}
}

// Set updates the bar to reflect done out of total pieces complete.
func (b *Bar) Set(done int) {
	_ = b.bar.Set(done)
}

// SetTotal resizes the bar once the piece plan length becomes known
// (the coordinator learns it from the first Bitfield message, §4.4 —
// the bar starts at an indeterminate 0/0 before that).
func (b *Bar) SetTotal(total int) {
	b.bar.ChangeMax(total)
}
