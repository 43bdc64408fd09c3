package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/varia/pkg/domain"
	"github.com/muesli/termenv"
)

// Row is one line of the variant table.
type Row struct {
	ID        string
	ParentID  string
	Variant   string
	Visual    string
	Animation *domain.AnimationProps
	// Changed marks rows whose logical variant moved away from the registered one.
	Changed bool
}

var headers = []string{"NODE", "PARENT", "VARIANT", "VISUAL", "ANIMATION"}

// RenderTable writes rows as an aligned table. Styling follows p; termenv.Ascii renders plain text.
func RenderTable(w io.Writer, p termenv.Profile, rows []Row) {
	cells := make([][]string, 0, len(rows))
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, r := range rows {
		line := []string{r.ID, dash(r.ParentID), dash(r.Variant), visual(r), animation(r.Animation)}
		for i, c := range line {
			widths[i] = max(widths[i], len([]rune(c)))
		}
		cells = append(cells, line)
	}

	header := make([]string, len(headers))
	for i, h := range headers {
		header[i] = p.String(pad(h, widths[i])).Bold().String()
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(header, "  "), " "))

	for i, line := range cells {
		out := make([]string, len(line))
		for j, c := range line {
			s := p.String(pad(c, widths[j]))
			switch {
			case j == 2 && rows[i].Changed:
				s = s.Foreground(p.Color("#22c55e")).Bold()
			case j == 3 && rows[i].Visual != "":
				s = s.Foreground(p.Color("#e879f9"))
			case c == "-":
				s = s.Faint()
			}
			out[j] = s.String()
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(out, "  "), " "))
	}
}

func visual(r Row) string {
	if r.Visual == "" {
		return "-"
	}
	return r.Visual
}

func animation(a *domain.AnimationProps) string {
	if a == nil {
		return "-"
	}
	var parts []string
	if a.Duration != "" {
		parts = append(parts, a.Duration)
	}
	if a.Delay != "" {
		parts = append(parts, "+"+a.Delay)
	}
	if a.Curve != "" {
		parts = append(parts, a.Curve)
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
