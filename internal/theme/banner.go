package theme

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	amber = lipgloss.Color("214")
	foam  = lipgloss.Color("230")
	muted = lipgloss.Color("245")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(amber).Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(muted)
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(foam)
	barStyle   = lipgloss.NewStyle().Foreground(amber)
	todayStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(amber)
)

// Banner returns the app header.
func Banner() string {
	mug := lipgloss.NewStyle().Foreground(amber).Render(" .~~~~.\n i====i_\n |cccc|_)\n |cccc|\n `-==-'")
	name := lipgloss.NewStyle().Bold(true).Foreground(foam).Render("SIMPLE BEER TIME")
	tag := labelStyle.Render("one tap per drink, days end at the cutoff")
	return lipgloss.JoinHorizontal(lipgloss.Center, mug, "   ",
		lipgloss.JoinVertical(lipgloss.Left, name, tag)) + "\n"
}

// PrintBanner writes the banner to w.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, Banner())
}

func Title(s string) string { return titleStyle.Render(s) }

// KV renders a "label: value" line with the label padded to width.
func KV(label string, width int, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-*s", width, label+":")) + " " + valueStyle.Render(value)
}

// Bar renders a horizontal bar of value scaled against top over width cells.
func Bar(value, top float64, width int) string {
	if top <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	n := int(value / top * float64(width))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return barStyle.Render(strings.Repeat("█", n))
}

// Highlight marks the current day in grids.
func Highlight(s string) string { return todayStyle.Render(s) }

func Muted(s string) string { return labelStyle.Render(s) }
