// ABOUTME: Diagram model types: positioned nodes, routed edges, and the generic node/edge document.
// ABOUTME: Element ids are opaque nanoids, unique within one diagram.
package diagram

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Side is an edge attachment side on a node box.
type Side string

const (
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

// Node is one rendered box. EntityID links back to the person record;
// ID is opaque and unique within the diagram.
type Node struct {
	ID       string  `json:"id"`
	EntityID string  `json:"entityId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Color    string  `json:"color,omitempty"`
	Label    string  `json:"label,omitempty"`
}

// Edge is one rendered connection between two diagram nodes.
type Edge struct {
	ID       string `json:"id"`
	FromNode string `json:"fromNode"`
	ToNode   string `json:"toNode"`
	FromSide Side   `json:"fromSide"`
	ToSide   Side   `json:"toSide"`
	Color    string `json:"color,omitempty"`
	Label    string `json:"label,omitempty"`
}

// Diagram is the generic node/edge document handed to an external
// renderer or serializer. Metadata is an opaque blob passed through
// unchanged from the render options.
type Diagram struct {
	Nodes    []Node         `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// newElementID returns an opaque unique identifier for a diagram
// element. Uniqueness within one diagram is the only contract.
func newElementID() string {
	return gonanoid.Must(16)
}
