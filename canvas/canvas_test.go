// ABOUTME: Tests for JSON Canvas serialization: node text composition, side mapping,
// ABOUTME: metadata passthrough, and deterministic output for identical diagrams.
package canvas

import (
	"encoding/json"
	"testing"

	"github.com/treeline-tools/treeline/diagram"
	"github.com/treeline-tools/treeline/family"
)

func sampleDiagram() *diagram.Diagram {
	return &diagram.Diagram{
		Nodes: []diagram.Node{
			{ID: "n1", EntityID: "ada", X: 10, Y: 20, Width: 260, Height: 120, Color: "6", Label: "Ada"},
			{ID: "n2", EntityID: "ben", X: 10, Y: 300, Width: 260, Height: 120, Color: "5", Label: "Ben"},
		},
		Edges: []diagram.Edge{
			{ID: "e1", FromNode: "n1", ToNode: "n2", FromSide: diagram.SideBottom, ToSide: diagram.SideTop},
		},
		Metadata: map[string]any{"policy": "descendants"},
	}
}

func TestFromDiagramMapsNodesAndEdges(t *testing.T) {
	doc := FromDiagram(sampleDiagram(), nil)

	if len(doc.Nodes) != 2 || len(doc.Edges) != 1 {
		t.Fatalf("doc = %d nodes / %d edges, want 2/1", len(doc.Nodes), len(doc.Edges))
	}

	n := doc.Nodes[0]
	if n.ID != "n1" || n.Type != "text" || n.X != 10 || n.Y != 20 || n.Width != 260 || n.Height != 120 {
		t.Errorf("node = %+v, want mapped geometry", n)
	}
	if n.Text != "**Ada**" {
		t.Errorf("node text = %q, want **Ada**", n.Text)
	}

	e := doc.Edges[0]
	if e.FromSide != "bottom" || e.ToSide != "top" {
		t.Errorf("edge sides = %s/%s, want bottom/top", e.FromSide, e.ToSide)
	}
}

func TestFromDiagramIncludesLifeDates(t *testing.T) {
	g := family.Build([]family.PersonRecord{
		{ID: "ada", Name: "Ada", BirthDate: "1815", DeathDate: "1852"},
		{ID: "ben", Name: "Ben", BirthDate: "abt 1820"},
	})

	doc := FromDiagram(sampleDiagram(), g)

	if doc.Nodes[0].Text != "**Ada**\n1815 - 1852" {
		t.Errorf("Ada text = %q", doc.Nodes[0].Text)
	}
	if doc.Nodes[1].Text != "**Ben**\nb. abt 1820" {
		t.Errorf("Ben text = %q", doc.Nodes[1].Text)
	}
}

func TestFromDiagramMetadataPassthrough(t *testing.T) {
	doc := FromDiagram(sampleDiagram(), nil)

	if doc.Metadata["policy"] != "descendants" {
		t.Errorf("Metadata = %v, want passthrough", doc.Metadata)
	}
}

func TestMarshalRoundTripsValidJSON(t *testing.T) {
	data, err := Marshal(FromDiagram(sampleDiagram(), nil))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var parsed Document
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(parsed.Nodes) != 2 || len(parsed.Edges) != 1 {
		t.Errorf("round trip = %d nodes / %d edges, want 2/1", len(parsed.Nodes), len(parsed.Edges))
	}
}

func TestMarshalDeterministicForIdenticalDiagrams(t *testing.T) {
	a, err := Marshal(FromDiagram(sampleDiagram(), nil))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	b, err := Marshal(FromDiagram(sampleDiagram(), nil))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if string(a) != string(b) {
		t.Error("identical diagrams produced different canvas output")
	}
}
