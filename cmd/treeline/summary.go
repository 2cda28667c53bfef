// ABOUTME: Styled render summary printed after a successful tree render in verbose mode.
// ABOUTME: Uses lipgloss for label/value styling on stderr.
package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35"))
	summaryLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	summaryValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// summaryStats holds the figures reported after a render.
type summaryStats struct {
	Root    string
	Policy  string
	Persons int
	Nodes   int
	Edges   int
	Format  string
}

// printSummary writes a styled render summary to w.
func printSummary(w io.Writer, stats summaryStats) {
	fmt.Fprintln(w, summaryTitleStyle.Render("render complete"))

	rows := []struct {
		label string
		value string
	}{
		{"root", stats.Root},
		{"policy", stats.Policy},
		{"persons", strconv.Itoa(stats.Persons)},
		{"nodes", strconv.Itoa(stats.Nodes)},
		{"edges", strconv.Itoa(stats.Edges)},
		{"format", stats.Format},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %s %s\n",
			summaryLabelStyle.Render(fmt.Sprintf("%-8s", row.label)),
			summaryValueStyle.Render(row.value),
		)
	}
}
