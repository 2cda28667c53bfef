// ABOUTME: Hierarchical tidy-tree layout assigning 2-D coordinates to a traversal result.
// ABOUTME: Re-expresses the sub-graph as a strict tree per policy and separates siblings asymmetrically.
package layout

import (
	"github.com/treeline-tools/treeline/traverse"
)

// Orientation selects which axis carries depth.
type Orientation string

const (
	// Vertical maps generations to the y axis; order within a
	// generation runs along x.
	Vertical Orientation = "vertical"
	// Horizontal swaps the two axes.
	Horizontal Orientation = "horizontal"
)

// Options holds the node box dimensions and spacing units for a layout.
type Options struct {
	NodeWidth   float64
	NodeHeight  float64
	Spacing     float64 // one sibling-separation unit
	Orientation Orientation
}

// DefaultOptions returns the layout defaults used by the CLI and web
// surfaces.
func DefaultOptions() Options {
	return Options{
		NodeWidth:   260,
		NodeHeight:  120,
		Spacing:     40,
		Orientation: Vertical,
	}
}

// Position is one laid-out node. Generation is signed depth from the
// traversal root: 0 at the root, negative for ancestor depth, positive
// for descendant depth.
type Position struct {
	ID         string
	X          float64
	Y          float64
	Generation int
}

// Layout computes positions for the traversal result under the given
// policy. The result's parent edges are re-expressed as a strict tree:
// for ancestors the parents of a node become its layout-children, for
// descendants the children do, and for the full network both directions
// are unioned. Revisited nodes (relationship cycles) become leaf stubs,
// so Layout terminates regardless of the traversal engine's own cycle
// behavior. A degenerate empty result yields a single root position.
func Layout(res *traverse.Result, policy traverse.Policy, opts Options) []Position {
	if opts.NodeWidth <= 0 || opts.NodeHeight <= 0 || opts.Spacing <= 0 {
		def := DefaultOptions()
		if opts.NodeWidth <= 0 {
			opts.NodeWidth = def.NodeWidth
		}
		if opts.NodeHeight <= 0 {
			opts.NodeHeight = def.NodeHeight
		}
		if opts.Spacing <= 0 {
			opts.Spacing = def.Spacing
		}
	}
	if opts.Orientation == "" {
		opts.Orientation = Vertical
	}

	adjacency := layoutAdjacency(res, policy)

	b := &treeBuilder{adjacency: adjacency, visited: map[string]bool{}}
	root := b.build(res.Root.ID, 0)

	l := &layouter{opts: opts, prev: map[int]*treeNode{}}
	l.place(root)

	var positions []Position
	collect(root, policy, opts, map[string]bool{}, &positions)
	return positions
}

// layoutAdjacency derives the layout-children relation from the
// traversal's parent edges according to policy.
func layoutAdjacency(res *traverse.Result, policy traverse.Policy) map[string][]string {
	adj := map[string][]string{}
	add := func(from, to string) {
		for _, existing := range adj[from] {
			if existing == to {
				return
			}
		}
		adj[from] = append(adj[from], to)
	}

	for _, e := range res.Edges {
		if e.Kind != traverse.EdgeParent {
			continue
		}
		switch policy {
		case traverse.PolicyAncestors:
			// Parents hang below their child visually: the edge's
			// From (parent) becomes a layout-child of To (child).
			add(e.To, e.From)
		case traverse.PolicyDescendants:
			add(e.From, e.To)
		default:
			add(e.From, e.To)
			add(e.To, e.From)
		}
	}
	return adj
}

type treeNode struct {
	id       string
	depth    int
	parent   *treeNode
	children []*treeNode
	x        float64
}

type treeBuilder struct {
	adjacency map[string][]string
	visited   map[string]bool
}

// build constructs the strict layout tree depth-first. A node that has
// already been visited is emitted as a leaf stub with no expansion.
func (b *treeBuilder) build(id string, depth int) *treeNode {
	n := &treeNode{id: id, depth: depth}
	if b.visited[id] {
		return n
	}
	b.visited[id] = true

	for _, childID := range b.adjacency[id] {
		child := b.build(childID, depth+1)
		child.parent = n
		n.children = append(n.children, child)
	}
	return n
}

type layouter struct {
	opts Options
	prev map[int]*treeNode // rightmost placed node per depth
}

// place computes order-axis coordinates post-order: children first,
// parents centered over them. A node overlapping the previously placed
// node at its depth shifts its whole subtree right. Siblings sharing an
// immediate parent are separated by one spacing unit; nodes with
// different parents by one and a half, which visually groups
// half-sibling branches.
func (l *layouter) place(n *treeNode) {
	for _, c := range n.children {
		l.place(c)
	}

	if len(n.children) > 0 {
		n.x = (n.children[0].x + n.children[len(n.children)-1].x) / 2
	}

	if prev := l.prev[n.depth]; prev != nil {
		sep := l.opts.Spacing
		if prev.parent != n.parent {
			sep = l.opts.Spacing * 1.5
		}
		min := prev.x + l.opts.NodeWidth + sep
		if n.x < min {
			shift(n, min-n.x)
		}
	}
	l.prev[n.depth] = n
}

func shift(n *treeNode, dx float64) {
	n.x += dx
	for _, c := range n.children {
		shift(c, dx)
	}
}

// collect flattens the placed tree into positions, mapping depth onto
// the orientation's main axis and applying the generation sign. Leaf
// stubs from cycle revisits occupy layout space but emit no second
// position: the first (expanded) occurrence of an id wins.
func collect(n *treeNode, policy traverse.Policy, opts Options, seen map[string]bool, out *[]Position) {
	if !seen[n.id] {
		seen[n.id] = true
		depthCoord := float64(n.depth) * (opts.NodeHeight + 2*opts.Spacing)

		pos := Position{ID: n.id, Generation: generationFor(policy, n.depth)}
		if opts.Orientation == Horizontal {
			pos.X = depthCoord
			pos.Y = n.x
		} else {
			pos.X = n.x
			pos.Y = depthCoord
		}
		*out = append(*out, pos)
	}

	for _, c := range n.children {
		collect(c, policy, opts, seen, out)
	}
}

// generationFor signs the layout depth: ancestor depth counts negative,
// everything else positive.
func generationFor(policy traverse.Policy, depth int) int {
	if policy == traverse.PolicyAncestors {
		return -depth
	}
	return depth
}
