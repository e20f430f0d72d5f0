package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4BC0C0"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true)
)

// TextRenderer draws horizontal bars to a terminal.
type TextRenderer struct {
	Out   io.Writer
	Width int
}

func (r *TextRenderer) Render(ds Dataset) (Chart, error) {
	width := r.Width
	if width <= 0 {
		width = 40
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(DatasetLabel))
	b.WriteByte('\n')
	if ds.Len() == 0 {
		b.WriteString(labelStyle.Render("(no data)"))
		b.WriteByte('\n')
	}

	labelWidth, maxValue := 0, 0
	for i, l := range ds.Labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
		maxValue = max(maxValue, ds.Values[i])
	}
	for i, l := range ds.Labels {
		n := 0
		if v := ds.Values[i]; v > 0 && maxValue > 0 {
			n = max(v*width/maxValue, 1)
		}
		pad := strings.Repeat(" ", labelWidth-lipgloss.Width(l))
		fmt.Fprintf(&b, "%s%s │%s %d\n", l, pad, barStyle.Render(strings.Repeat("█", n)), ds.Values[i])
	}
	if _, err := io.WriteString(r.Out, b.String()); err != nil {
		return nil, fmt.Errorf("writing chart: %w", err)
	}
	return textChart{}, nil
}

// textChart holds nothing; terminal output cannot be taken back.
type textChart struct{}

func (textChart) Destroy() {}
