// ABOUTME: Converts generated diagrams to DOT text and renders to SVG/PNG via graphviz.
// ABOUTME: Output is deterministic: nodes in diagram order with quoted, sorted attributes.
package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/treeline-tools/treeline/diagram"
)

// ToDOT serializes a diagram into valid DOT digraph text. Positions are
// carried as pos attributes (y flipped so DOT's upward axis matches the
// diagram's downward one) alongside box dimensions and fill color.
func ToDOT(d *diagram.Diagram) string {
	if d == nil {
		return ""
	}

	var buf strings.Builder

	buf.WriteString("digraph familytree {\n")
	buf.WriteString("  node [shape=box style=filled]\n")

	for _, n := range d.Nodes {
		y := -n.Y
		if y == 0 {
			y = 0 // avoid "-0" from negating zero
		}
		attrs := map[string]string{
			"label":  nodeLabel(n),
			"pos":    fmt.Sprintf("%g,%g!", n.X, y),
			"width":  fmt.Sprintf("%g", n.Width/72),
			"height": fmt.Sprintf("%g", n.Height/72),
		}
		if color := fillColor(n.Color); color != "" {
			attrs["fillcolor"] = color
		}
		fmt.Fprintf(&buf, "  %s [%s]\n", quoteValue(n.ID), formatAttrs(attrs))
	}

	for _, e := range d.Edges {
		fmt.Fprintf(&buf, "  %s -> %s\n", quoteValue(e.FromNode), quoteValue(e.ToNode))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Render produces rendered output from a diagram in the specified
// format. Supported formats: "dot" (returns DOT text), "svg", "png"
// (shell out to the graphviz dot command).
func Render(ctx context.Context, d *diagram.Diagram, format string) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("cannot render nil diagram")
	}

	switch format {
	case "dot":
		return []byte(ToDOT(d)), nil
	case "svg", "png":
		return renderWithGraphviz(ctx, ToDOT(d), format)
	default:
		return nil, fmt.Errorf("unsupported format %q: supported formats are dot, svg, png", format)
	}
}

// GraphvizAvailable checks whether the graphviz dot command is installed and reachable.
func GraphvizAvailable() bool {
	_, err := exec.LookPath("dot")
	return err == nil
}

// renderWithGraphviz pipes DOT text through neato layout (which honors
// pos attributes) and returns the output.
func renderWithGraphviz(ctx context.Context, dotText, format string) ([]byte, error) {
	if !GraphvizAvailable() {
		return nil, fmt.Errorf("graphviz dot command not found: install graphviz to render %s output", format)
	}

	cmd := exec.CommandContext(ctx, "dot", "-Kneato", "-T"+format)
	cmd.Stdin = strings.NewReader(dotText)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("graphviz dot command failed: %w: %s", err, stderr.String())
	}

	return stdout.Bytes(), nil
}

func nodeLabel(n diagram.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.EntityID
}

// fillColor maps palette tags to concrete colors for graphviz output.
func fillColor(tag string) string {
	switch tag {
	case diagram.ColorMale:
		return "#ADD8E6"
	case diagram.ColorFemale:
		return "#DDA0DD"
	}
	return ""
}

// formatAttrs renders attributes sorted by key for deterministic output.
func formatAttrs(attrs map[string]string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, quoteValue(attrs[k])))
	}
	return strings.Join(parts, " ")
}

// quoteValue quotes a DOT value unless it is a safe identifier or number.
func quoteValue(v string) string {
	if v == "" {
		return `""`
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '.' || r == '-':
		default:
			escaped := strings.ReplaceAll(v, `\`, `\\`)
			escaped = strings.ReplaceAll(escaped, `"`, `\"`)
			escaped = strings.ReplaceAll(escaped, "\n", `\n`)
			return `"` + escaped + `"`
		}
	}
	return v
}
