package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressView_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	v := NewProgressView(&buf, "Level1")
	assert.False(t, v.tty, "buffers are not terminals")

	for _, p := range []float64{0, 0.02, 0.05, 0.31, 0.33, 0.9, 1} {
		v.Progress(p)
	}
	v.Ready()
	v.Ready()
	v.Progress(0.5)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"Level1   0%",
		"Level1  31%",
		"Level1  90%",
		"Level1 100%",
		"Press Enter to continue",
	}, lines)
}

func TestProgressView_TTYRedrawsInPlace(t *testing.T) {
	var buf bytes.Buffer
	v := NewProgressView(&buf, "Level2", WithTTY(true))

	v.Progress(0.5)
	v.Progress(0.52)
	v.Ready()

	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, "\r"))
	assert.Contains(t, out, " 50%")
	assert.Contains(t, out, " 52%")
	assert.Contains(t, out, "100%\n")
	assert.Contains(t, out, "Press Enter to continue")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
}
