package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const barWidth = 30

// ProgressView renders a loading bar for one transition.
// On a terminal the bar is redrawn in place; otherwise one line is printed per 10% step.
type ProgressView struct {
	out   *termenv.Output
	w     io.Writer
	label string
	tty   bool

	mu       sync.Mutex
	lastStep int
	ready    bool
}

// ViewOption configures the ProgressView.
type ViewOption func(*ProgressView)

// WithTTY forces in-place redraws on or off.
func WithTTY(tty bool) ViewOption {
	return func(v *ProgressView) {
		v.tty = tty
	}
}

// NewProgressView creates a view writing to w, labelled with the target scene.
func NewProgressView(w io.Writer, label string, opts ...ViewOption) *ProgressView {
	v := &ProgressView{
		out:      termenv.NewOutput(w),
		w:        w,
		label:    label,
		tty:      IsTerminal(w),
		lastStep: -1,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Progress draws the bar at p in [0,1].
func (v *ProgressView) Progress(p float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ready {
		return
	}

	step := int(p * 10)
	if !v.tty {
		if step == v.lastStep {
			return
		}
		v.lastStep = step
		fmt.Fprintf(v.w, "%s %3d%%\n", v.label, percent(p))
		return
	}

	fmt.Fprintf(v.w, "\r%s %s %3d%%", v.label, v.bar(p), percent(p))
}

// Ready reveals the continue hint.
func (v *ProgressView) Ready() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ready {
		return
	}
	v.ready = true

	hint := v.out.String("Press Enter to continue").Foreground(v.out.Color("#a78bfa")).Bold()
	if v.tty {
		fmt.Fprintf(v.w, "\r%s %s 100%%\n%s\n", v.label, v.bar(1), hint)
		return
	}
	fmt.Fprintf(v.w, "%s\n", hint)
}

func (v *ProgressView) bar(p float64) string {
	filled := int(p * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	done := v.out.String(strings.Repeat("█", filled)).Foreground(v.out.Color("#818cf8"))
	return fmt.Sprintf("[%s%s]", done, strings.Repeat("░", barWidth-filled))
}

func percent(p float64) int {
	pct := int(p*100 + 0.5)
	if pct > 100 {
		pct = 100
	}
	return pct
}
