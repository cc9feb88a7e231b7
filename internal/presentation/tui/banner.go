package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the sceneflow ASCII banner to w.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"  ___                 __ _", "#818cf8"},
		{" / __| __ ___ _ _  ___/ _| |_____ __ __", "#a78bfa"},
		{" \\__ \\/ _/ -_) ' \\/ -_)  _| / _ \\ V  V /", "#c084fc"},
		{" |___/\\__\\___|_||_\\___|_| |_\\___/\\_/\\_/", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
