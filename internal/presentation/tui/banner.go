package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the scadwrap banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                    _                            ", "#34d399"},
		{"  ___  ___ __ _  __| |_      ___ __ __ _ _ __    ", "#2dd4bf"},
		{" / __|/ __/ _` |/ _` \\ \\ /\\ / / '__/ _` | '_ \\   ", "#22d3ee"},
		{" \\__ \\ (_| (_| | (_| |\\ V  V /| | | (_| | |_) |  ", "#38bdf8"},
		{" |___/\\___\\__,_|\\__,_| \\_/\\_/ |_|  \\__,_| .__/   ", "#60a5fa"},
		{"                                         |_|     ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
