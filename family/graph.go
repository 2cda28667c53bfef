// ABOUTME: Entity graph: an indexed, pruned collection of PersonRecords used as the traversal substrate.
// ABOUTME: Build performs two-pass construction with child back-fill and dangling-reference pruning.
package family

import "sort"

// Graph is an id-indexed collection of person records. It is read-only
// after Build and safe to share across concurrent traversals.
type Graph struct {
	persons map[string]*PersonRecord
}

// Get returns the record for id, or false when id does not resolve.
// A missing record is the only failure signal at this layer; broken
// references are indistinguishable from absent ones.
func (g *Graph) Get(id string) (*PersonRecord, bool) {
	if id == "" {
		return nil, false
	}
	p, ok := g.persons[id]
	return p, ok
}

// Len returns the number of indexed records.
func (g *Graph) Len() int {
	return len(g.persons)
}

// IDs returns all record ids in sorted order.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.persons))
	for id := range g.persons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Build constructs a Graph from a flat record collection.
//
// Pass 1 indexes every record by id (records with an empty id are
// skipped; a duplicate id replaces the earlier record). Pass 2
// back-fills each parent's children set from the father/mother
// references recorded on other records, then prunes every child id
// that does not resolve to an indexed record. Father, mother, and
// spouse references to unknown ids are preserved as-is; lookups treat
// them as absent.
//
// Build is deterministic and idempotent for identical input and has no
// side effects on the input records.
func Build(records []PersonRecord) *Graph {
	g := &Graph{persons: make(map[string]*PersonRecord, len(records))}

	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		g.persons[rec.ID] = rec.clone()
	}

	// Back-fill children from recorded father/mother references.
	for _, id := range g.IDs() {
		p := g.persons[id]
		if father, ok := g.Get(p.FatherID); ok {
			father.AddChild(p.ID)
		}
		if mother, ok := g.Get(p.MotherID); ok {
			mother.AddChild(p.ID)
		}
	}

	// Prune children that do not resolve.
	for _, p := range g.persons {
		kept := p.ChildrenIDs[:0]
		for _, c := range p.ChildrenIDs {
			if _, ok := g.persons[c]; ok {
				kept = append(kept, c)
			}
		}
		p.ChildrenIDs = kept
	}

	return g
}
