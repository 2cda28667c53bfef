// ABOUTME: Traversal engine producing bounded sub-graphs of an entity graph under a traversal policy.
// ABOUTME: Ancestors/descendants are recursive and generation-bounded; full network is cycle-safe BFS.
package traverse

import (
	"errors"
	"fmt"

	"github.com/treeline-tools/treeline/family"
)

// Policy selects which relationship edges a traversal follows and in
// which direction.
type Policy string

const (
	PolicyAncestors   Policy = "ancestors"
	PolicyDescendants Policy = "descendants"
	PolicyFull        Policy = "full"
)

// ParsePolicy converts a string into a Policy, rejecting unknown values.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAncestors, PolicyDescendants, PolicyFull:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown traversal policy %q: expected ancestors, descendants, or full", s)
}

// EdgeKind identifies the relationship a traversal edge represents.
type EdgeKind string

const (
	EdgeParent EdgeKind = "parent" // runs parent -> child
	EdgeSpouse EdgeKind = "spouse" // undirected, one canonical instance per pair
	EdgeChild  EdgeKind = "child"  // converse of parent, runs child -> parent
)

// Edge is a typed relationship between two visited records.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
}

// Options bounds and shapes a traversal.
type Options struct {
	// MaxGenerations limits traversal depth from the root. Zero means
	// unlimited. For ancestors/descendants on data that may contain
	// relationship cycles, a non-zero limit is the caller's termination
	// mechanism: those modes carry no visited set.
	MaxGenerations int

	// IncludeSpouses attaches resolvable spouses of visited records and
	// synthesizes canonical spouse edges between co-parents.
	IncludeSpouses bool
}

// Result is the sub-graph produced by one traversal.
// Every edge's endpoints are present in Nodes, and the root is always a node.
type Result struct {
	Root  *family.PersonRecord
	Nodes map[string]*family.PersonRecord
	Edges []Edge
}

// ErrRootNotFound is reported when the requested root id does not
// resolve in the graph. No partial result accompanies it.
var ErrRootNotFound = errors.New("root not found")

// Traverse walks graph from rootID under the given policy and returns
// the visited sub-graph. Output ordering is not significant.
func Traverse(g *family.Graph, rootID string, policy Policy, opts Options) (*Result, error) {
	root, ok := g.Get(rootID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRootNotFound, rootID)
	}

	w := &walker{
		graph: g,
		opts:  opts,
		result: &Result{
			Root:  root,
			Nodes: map[string]*family.PersonRecord{root.ID: root},
		},
		spouseSeen: map[string]bool{},
	}

	budget := opts.MaxGenerations
	if budget <= 0 {
		budget = unlimited
	}

	switch policy {
	case PolicyAncestors:
		w.expandAncestors(root, budget)
	case PolicyDescendants:
		w.expandDescendants(root, budget)
	case PolicyFull:
		w.expandNetwork(root, budget)
	default:
		return nil, fmt.Errorf("unknown traversal policy %q", policy)
	}

	return w.result, nil
}

// unlimited is the internal sentinel for an unset generation budget.
const unlimited = -1

type walker struct {
	graph      *family.Graph
	opts       Options
	result     *Result
	spouseSeen map[string]bool
}

func (w *walker) addNode(p *family.PersonRecord) {
	w.result.Nodes[p.ID] = p
}

func (w *walker) addEdge(from, to string, kind EdgeKind) {
	w.result.Edges = append(w.result.Edges, Edge{From: from, To: to, Kind: kind})
}

// addSpouseEdge records one canonical spouse edge per unordered pair.
func (w *walker) addSpouseEdge(a, b string) {
	key := a + "\x00" + b
	if b < a {
		key = b + "\x00" + a
	}
	if w.spouseSeen[key] {
		return
	}
	w.spouseSeen[key] = true
	w.addEdge(a, b, EdgeSpouse)
}

func spend(budget int) int {
	if budget == unlimited {
		return unlimited
	}
	return budget - 1
}

// expandAncestors recurses upward through father/mother references.
// There is deliberately no visited set: on cyclic data the generation
// budget is the only termination mechanism.
func (w *walker) expandAncestors(p *family.PersonRecord, budget int) {
	if budget == 0 {
		return
	}

	father, hasFather := w.graph.Get(p.FatherID)
	mother, hasMother := w.graph.Get(p.MotherID)

	if hasFather {
		w.addNode(father)
		w.addEdge(father.ID, p.ID, EdgeParent)
		w.expandAncestors(father, spend(budget))
	}
	if hasMother {
		w.addNode(mother)
		w.addEdge(mother.ID, p.ID, EdgeParent)
		w.expandAncestors(mother, spend(budget))
	}
	if hasFather && hasMother && w.opts.IncludeSpouses {
		w.addSpouseEdge(father.ID, mother.ID)
	}
}

// expandDescendants recurses downward through children. Spouses of a
// visited record become non-expanded members when requested. Same
// unbounded-cycle caveat as expandAncestors.
func (w *walker) expandDescendants(p *family.PersonRecord, budget int) {
	if w.opts.IncludeSpouses {
		for _, sid := range p.SpouseIDs {
			if spouse, ok := w.graph.Get(sid); ok {
				w.addNode(spouse)
				w.addSpouseEdge(p.ID, spouse.ID)
			}
		}
	}

	if budget == 0 {
		return
	}

	for _, cid := range p.ChildrenIDs {
		child, ok := w.graph.Get(cid)
		if !ok {
			continue
		}
		w.addNode(child)
		w.addEdge(p.ID, child.ID, EdgeParent)
		w.expandDescendants(child, spend(budget))
	}
}

// expandNetwork is a breadth-first walk over the union of parent,
// spouse, and child relations. Each id is dequeued and marked visited
// exactly once, so this mode tolerates arbitrary relationship cycles.
func (w *walker) expandNetwork(root *family.PersonRecord, budget int) {
	type item struct {
		person *family.PersonRecord
		depth  int
	}

	visited := map[string]bool{root.ID: true}
	queue := []item{{person: root, depth: 0}}

	enqueue := func(p *family.PersonRecord, depth int) {
		if visited[p.ID] {
			return
		}
		visited[p.ID] = true
		w.addNode(p)
		queue = append(queue, item{person: p, depth: depth})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		p := cur.person

		if budget != unlimited && cur.depth >= budget {
			continue
		}
		next := cur.depth + 1

		if father, ok := w.graph.Get(p.FatherID); ok {
			enqueue(father, next)
			w.addEdge(father.ID, p.ID, EdgeParent)
		}
		if mother, ok := w.graph.Get(p.MotherID); ok {
			enqueue(mother, next)
			w.addEdge(mother.ID, p.ID, EdgeParent)
		}
		for _, sid := range p.SpouseIDs {
			if spouse, ok := w.graph.Get(sid); ok {
				enqueue(spouse, next)
				w.addSpouseEdge(p.ID, spouse.ID)
			}
		}
		for _, cid := range p.ChildrenIDs {
			if child, ok := w.graph.Get(cid); ok {
				enqueue(child, next)
				w.addEdge(child.ID, p.ID, EdgeChild)
			}
		}
	}
}
