// ABOUTME: JSON Canvas serialization of a diagram for canvas-capable note apps.
// ABOUTME: Emits text nodes with coordinates/color and edges with routing sides, deterministically ordered.
package canvas

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/treeline-tools/treeline/diagram"
	"github.com/treeline-tools/treeline/family"
)

// Node is one JSON Canvas node. Coordinates are integral per the
// canvas format.
type Node struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Color  string `json:"color,omitempty"`
}

// Edge is one JSON Canvas edge.
type Edge struct {
	ID       string `json:"id"`
	FromNode string `json:"fromNode"`
	FromSide string `json:"fromSide"`
	ToNode   string `json:"toNode"`
	ToSide   string `json:"toSide"`
	Color    string `json:"color,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Document is a JSON Canvas 1.0 document. Metadata is carried as an
// extra top-level field; canvas readers ignore unknown keys.
type Document struct {
	Nodes    []Node         `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// FromDiagram converts a generated diagram into a canvas document.
// The graph supplies birth/death details for node text; it may be nil.
// Node order follows the diagram, so identical diagrams serialize
// identically.
func FromDiagram(d *diagram.Diagram, g *family.Graph) *Document {
	doc := &Document{
		Nodes:    make([]Node, 0, len(d.Nodes)),
		Edges:    make([]Edge, 0, len(d.Edges)),
		Metadata: d.Metadata,
	}

	for _, n := range d.Nodes {
		doc.Nodes = append(doc.Nodes, Node{
			ID:     n.ID,
			Type:   "text",
			Text:   nodeText(n, g),
			X:      int(n.X),
			Y:      int(n.Y),
			Width:  int(n.Width),
			Height: int(n.Height),
			Color:  n.Color,
		})
	}

	for _, e := range d.Edges {
		doc.Edges = append(doc.Edges, Edge{
			ID:       e.ID,
			FromNode: e.FromNode,
			FromSide: string(e.FromSide),
			ToNode:   e.ToNode,
			ToSide:   string(e.ToSide),
			Color:    e.Color,
			Label:    e.Label,
		})
	}

	return doc
}

// Marshal renders the document as indented JSON.
func Marshal(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("marshal canvas: %w", err)
	}
	return data, nil
}

func nodeText(n diagram.Node, g *family.Graph) string {
	var b strings.Builder
	if n.Label != "" {
		fmt.Fprintf(&b, "**%s**", n.Label)
	} else {
		b.WriteString(n.EntityID)
	}

	if g == nil {
		return b.String()
	}
	person, ok := g.Get(n.EntityID)
	if !ok {
		return b.String()
	}
	switch {
	case person.BirthDate != "" && person.DeathDate != "":
		fmt.Fprintf(&b, "\n%s - %s", person.BirthDate, person.DeathDate)
	case person.BirthDate != "":
		fmt.Fprintf(&b, "\nb. %s", person.BirthDate)
	case person.DeathDate != "":
		fmt.Fprintf(&b, "\nd. %s", person.DeathDate)
	}
	return b.String()
}
