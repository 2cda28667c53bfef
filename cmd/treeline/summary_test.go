// ABOUTME: Tests for the verbose render summary output.
// ABOUTME: Checks labels and values appear; exact styling is left to lipgloss.
package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintSummaryContainsStats(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, summaryStats{
		Root:    "ada",
		Policy:  "ancestors",
		Persons: 12,
		Nodes:   7,
		Edges:   6,
		Format:  "canvas",
	})
	out := buf.String()

	for _, want := range []string{"render complete", "ada", "ancestors", "12", "7", "6", "canvas"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
