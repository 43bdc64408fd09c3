package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Varia ASCII art banner followed by the version.
func PrintBanner(w io.Writer, p termenv.Profile, version string) {
	lines := []struct {
		text  string
		color string
	}{
		{" __   __         _       ", "#818cf8"},
		{" \\ \\ / /_ _ _ _(_)__ _  ", "#a78bfa"},
		{"  \\ V / _` | '_| / _` | ", "#c084fc"},
		{"   \\_/\\__,_|_| |_\\__,_| ", "#e879f9"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, p.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
