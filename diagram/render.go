// ABOUTME: Diagram generator: converts positioned nodes plus traversal edges into the visual document.
// ABOUTME: Applies edge suppression, classification coloring, and three-tier synthetic spouse placement.
package diagram

import (
	"github.com/treeline-tools/treeline/family"
	"github.com/treeline-tools/treeline/layout"
	"github.com/treeline-tools/treeline/traverse"
)

// Classifier maps a person record to a color tag. Records without a
// position (synthetic spouses) are classified the same way.
type Classifier func(*family.PersonRecord) string

// Obsidian-style palette tags used by the default classifier.
const (
	ColorMale    = "5"
	ColorFemale  = "6"
	ColorNeutral = ""
)

// ClassifyBySex is the default classifier: it keys on the record's sex
// tag and falls back to a neutral tag when absent or unrecognized.
func ClassifyBySex(p *family.PersonRecord) string {
	switch p.Sex {
	case "M", "m", "male":
		return ColorMale
	case "F", "f", "female":
		return ColorFemale
	}
	return ColorNeutral
}

// Options configures diagram generation. Box dimensions and spacing
// should match the values the layout ran with so synthetic placement
// lines up with the primary grid.
type Options struct {
	NodeWidth   float64
	NodeHeight  float64
	Spacing     float64
	Orientation layout.Orientation
	Classify    Classifier     // nil = ClassifyBySex
	Metadata    map[string]any // passed through unchanged
}

// Render emits the diagram for the positioned traversal. One node per
// position plus synthetic spouse nodes; child-kind and spouse-kind
// edges are suppressed, so only parent edges appear in the output.
func Render(g *family.Graph, positions []layout.Position, edges []traverse.Edge, opts Options) *Diagram {
	if opts.Classify == nil {
		opts.Classify = ClassifyBySex
	}
	def := layout.DefaultOptions()
	if opts.NodeWidth <= 0 {
		opts.NodeWidth = def.NodeWidth
	}
	if opts.NodeHeight <= 0 {
		opts.NodeHeight = def.NodeHeight
	}
	if opts.Spacing <= 0 {
		opts.Spacing = def.Spacing
	}
	if opts.Orientation == "" {
		opts.Orientation = layout.Vertical
	}

	r := &renderer{
		graph:     g,
		opts:      opts,
		positions: map[string]layout.Position{},
	}
	for _, p := range positions {
		r.positions[p.ID] = p
		r.order = append(r.order, p.ID)
	}

	r.placeSyntheticSpouses(edges)
	r.emitNodes()
	r.emitParentEdges(edges)

	return &Diagram{Nodes: r.nodes, Edges: r.edges, Metadata: opts.Metadata}
}

type renderer struct {
	graph     *family.Graph
	opts      Options
	positions map[string]layout.Position
	order     []string // entity ids in emission order
	nodeIDs   map[string]string
	nodes     []Node
	edges     []Edge
}

// placeSyntheticSpouses positions entities that participate in a spouse
// relationship but were not placed by the primary layout. The fallback
// is strictly ordered: adjacent to the positioned partner, then above a
// positioned child of either partner, then dropped.
func (r *renderer) placeSyntheticSpouses(edges []traverse.Edge) {
	for _, e := range edges {
		if e.Kind != traverse.EdgeSpouse {
			continue
		}
		posA, okA := r.positions[e.From]
		posB, okB := r.positions[e.To]

		switch {
		case okA && okB:
			// both placed by the primary layout
		case okA:
			r.addSynthetic(e.To, r.besidePartner(posA))
		case okB:
			r.addSynthetic(e.From, r.besidePartner(posB))
		default:
			child, ok := r.positionedChildOf(e.From, e.To)
			if !ok {
				continue // neither partner nor any child placed: drop the pair
			}
			left, right := r.aboveChild(child)
			r.addSynthetic(e.From, left)
			r.addSynthetic(e.To, right)
		}
	}
}

func (r *renderer) addSynthetic(entityID string, pos layout.Position) {
	pos.ID = entityID
	r.positions[entityID] = pos
	r.order = append(r.order, entityID)
}

// besidePartner offsets one node width plus half a spacing unit along
// the cross axis, keeping the partner on the same generation row.
func (r *renderer) besidePartner(p layout.Position) layout.Position {
	if r.opts.Orientation == layout.Horizontal {
		p.Y += r.opts.NodeHeight + r.opts.Spacing/2
	} else {
		p.X += r.opts.NodeWidth + r.opts.Spacing/2
	}
	return p
}

// positionedChildOf returns the position of the first already-placed
// child of either partner.
func (r *renderer) positionedChildOf(a, b string) (layout.Position, bool) {
	for _, id := range []string{a, b} {
		p, ok := r.graph.Get(id)
		if !ok {
			continue
		}
		for _, childID := range p.ChildrenIDs {
			if pos, ok := r.positions[childID]; ok {
				return pos, true
			}
		}
	}
	return layout.Position{}, false
}

// aboveChild places a couple one generation up from the child, split
// left/right around the child's cross-axis center.
func (r *renderer) aboveChild(child layout.Position) (layout.Position, layout.Position) {
	up := r.opts.NodeHeight + 2*r.opts.Spacing

	left, right := child, child
	left.Generation--
	right.Generation--
	if r.opts.Orientation == layout.Horizontal {
		left.X -= up
		right.X -= up
		left.Y = child.Y - r.opts.NodeHeight/2 - r.opts.Spacing/4
		right.Y = child.Y + r.opts.NodeHeight/2 + r.opts.Spacing/4
	} else {
		left.Y -= up
		right.Y -= up
		left.X = child.X - r.opts.NodeWidth/2 - r.opts.Spacing/4
		right.X = child.X + r.opts.NodeWidth/2 + r.opts.Spacing/4
	}
	return left, right
}

func (r *renderer) emitNodes() {
	r.nodeIDs = make(map[string]string, len(r.order))
	for _, entityID := range r.order {
		pos := r.positions[entityID]
		node := Node{
			ID:       newElementID(),
			EntityID: entityID,
			X:        pos.X,
			Y:        pos.Y,
			Width:    r.opts.NodeWidth,
			Height:   r.opts.NodeHeight,
		}
		if person, ok := r.graph.Get(entityID); ok {
			node.Color = r.opts.Classify(person)
			node.Label = person.Name
		}
		r.nodeIDs[entityID] = node.ID
		r.nodes = append(r.nodes, node)
	}
}

// emitParentEdges renders parent-kind edges only. Child-kind edges are
// redundant with their parent counterpart and spouse relationships are
// communicated by adjacency, so both are suppressed. Edges whose
// endpoints never received a node are dropped.
func (r *renderer) emitParentEdges(edges []traverse.Edge) {
	for _, e := range edges {
		if e.Kind != traverse.EdgeParent {
			continue
		}
		fromNode, okFrom := r.nodeIDs[e.From]
		toNode, okTo := r.nodeIDs[e.To]
		if !okFrom || !okTo {
			continue
		}
		fromSide, toSide := r.edgeSides(e.Kind, r.positions[e.From], r.positions[e.To])
		r.edges = append(r.edges, Edge{
			ID:       newElementID(),
			FromNode: fromNode,
			ToNode:   toNode,
			FromSide: fromSide,
			ToSide:   toSide,
		})
	}
}

// edgeSides selects attachment sides. Parent edges run along the depth
// axis (bottom of parent to top of child in vertical layouts, flipped
// when the layout drew the parent below its child, as ancestor trees
// do). Spousal adjacencies attach left/right by relative cross-axis
// position so they never cross the vertical parent-child lines;
// horizontal layouts swap both assignments.
func (r *renderer) edgeSides(kind traverse.EdgeKind, from, to layout.Position) (Side, Side) {
	horizontal := r.opts.Orientation == layout.Horizontal

	if kind == traverse.EdgeSpouse {
		cross := func(p layout.Position) float64 {
			if horizontal {
				return p.Y
			}
			return p.X
		}
		near, far := SideRight, SideLeft
		if cross(from) > cross(to) {
			near, far = SideLeft, SideRight
		}
		if horizontal {
			if near == SideRight {
				return SideBottom, SideTop
			}
			return SideTop, SideBottom
		}
		return near, far
	}

	depth := func(p layout.Position) float64 {
		if horizontal {
			return p.X
		}
		return p.Y
	}
	forward := depth(from) <= depth(to)
	if horizontal {
		if forward {
			return SideRight, SideLeft
		}
		return SideLeft, SideRight
	}
	if forward {
		return SideBottom, SideTop
	}
	return SideTop, SideBottom
}
