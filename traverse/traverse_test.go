// ABOUTME: Tests for the traversal engine covering all three policies, generation budgets,
// ABOUTME: canonical spouse-edge dedup, cycle safety of the full-network BFS, and root-not-found.
package traverse

import (
	"errors"
	"sort"
	"testing"

	"github.com/treeline-tools/treeline/family"
)

// threeGenerations builds root -> parents -> grandparents with spouses linked.
func threeGenerations() *family.Graph {
	return family.Build([]family.PersonRecord{
		{ID: "root", FatherID: "f", MotherID: "m"},
		{ID: "f", FatherID: "ff", MotherID: "fm", SpouseIDs: []string{"m"}},
		{ID: "m", SpouseIDs: []string{"f"}},
		{ID: "ff"},
		{ID: "fm"},
	})
}

func nodeIDs(res *Result) []string {
	ids := make([]string, 0, len(res.Nodes))
	for id := range res.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func edgesOfKind(res *Result, kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range res.Edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestTraverseRootNotFound(t *testing.T) {
	g := family.Build([]family.PersonRecord{{ID: "a"}})

	_, err := Traverse(g, "nope", PolicyAncestors, Options{})
	if !errors.Is(err, ErrRootNotFound) {
		t.Fatalf("err = %v, want ErrRootNotFound", err)
	}
}

func TestTraverseUnknownPolicy(t *testing.T) {
	g := family.Build([]family.PersonRecord{{ID: "a"}})

	if _, err := Traverse(g, "a", Policy("sideways"), Options{}); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"ancestors", PolicyAncestors, false},
		{"descendants", PolicyDescendants, false},
		{"full", PolicyFull, false},
		{"", "", true},
		{"everything", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAncestorsWithNoResolvableParents(t *testing.T) {
	g := family.Build([]family.PersonRecord{{ID: "solo", FatherID: "ghost"}})

	res, err := Traverse(g, "solo", PolicyAncestors, Options{})
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	if got := nodeIDs(res); len(got) != 1 || got[0] != "solo" {
		t.Errorf("nodes = %v, want [solo]", got)
	}
	if len(res.Edges) != 0 {
		t.Errorf("edges = %v, want empty", res.Edges)
	}
}

func TestAncestorsHonorsGenerationLimit(t *testing.T) {
	g := threeGenerations()

	res, err := Traverse(g, "root", PolicyAncestors, Options{MaxGenerations: 1})
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	want := []string{"f", "m", "root"}
	if got := nodeIDs(res); !equalStrings(got, want) {
		t.Errorf("nodes = %v, want %v (grandparents excluded at limit 1)", got, want)
	}
	for _, e := range edgesOfKind(res, EdgeParent) {
		if e.To != "root" {
			t.Errorf("parent edge %v exceeds generation limit", e)
		}
	}
}

func TestAncestorsUnlimitedReachesGrandparents(t *testing.T) {
	g := threeGenerations()

	res, err := Traverse(g, "root", PolicyAncestors, Options{})
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	want := []string{"f", "ff", "fm", "m", "root"}
	if got := nodeIDs(res); !equalStrings(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
}

func TestAncestorsSynthesizesOneSpouseEdgePerCouple(t *testing.T) {
	g := threeGenerations()

	res, err := Traverse(g, "root", PolicyAncestors, Options{IncludeSpouses: true})
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	spouses := edgesOfKind(res, EdgeSpouse)
	// One couple per generation with both partners present: f+m, ff+fm.
	if len(spouses) != 2 {
		t.Fatalf("spouse edges = %v, want 2", spouses)
	}
	assertNoDuplicateSpousePairs(t, res)
}

func TestDescendantsDepthOneWithSpouses(t *testing.T) {
	g := family.Build([]family.PersonRecord{
		{ID: "R", ChildrenIDs: []string{"C1", "C2"}},
		{ID: "C1", SpouseIDs: []string{"S1"}},
		{ID: "C2"},
		{ID: "S1"},
	})

	res, err := Traverse(g, "R", PolicyDescendants, Options{MaxGenerations: 1, IncludeSpouses: true})
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	want := []string{"C1", "C2", "R", "S1"}
	if got := nodeIDs(res); !equalStrings(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}

	parents := edgesOfKind(res, EdgeParent)
	if len(parents) != 2 {
		t.Errorf("parent edges = %v, want R->C1 and R->C2", parents)
	}
	spouses := edgesOfKind(res, EdgeSpouse)
	if len(spouses) != 1 {
		t.Errorf("spouse edges = %v, want exactly one C1-S1 edge", spouses)
	}
}

func TestDescendantsSpouseNotExpanded(t *testing.T) {
	// S1 has her own child from another marriage; spouses are attached
	// as members but never expanded.
	g := family.Build([]family.PersonRecord{
		{ID: "R", ChildrenIDs: []string{"C1"}},
		{ID: "C1", SpouseIDs: []string{"S1"}},
		{ID: "S1", ChildrenIDs: []string{"step"}},
		{ID: "step"},
	})

	res, err := Traverse(g, "R", PolicyDescendants, Options{MaxGenerations: 1, IncludeSpouses: true})
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	if _, ok := res.Nodes["step"]; ok {
		t.Error("spouse's own child visited; spouses must not be expanded")
	}
}

func TestFullNetworkVisitsEachIDOnceOnCyclicData(t *testing.T) {
	// Fabricated cycle: a is parent of b, b is parent of a.
	g := family.Build([]family.PersonRecord{
		{ID: "a", FatherID: "b"},
		{ID: "b", FatherID: "a"},
	})

	res, err := Traverse(g, "a", PolicyFull, Options{})
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	want := []string{"a", "b"}
	if got := nodeIDs(res); !equalStrings(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
}

func TestFullNetworkCrossesSpouseLinks(t *testing.T) {
	// An in-law is reachable only through a spouse relation.
	g := family.Build([]family.PersonRecord{
		{ID: "root", ChildrenIDs: []string{"kid"}},
		{ID: "kid", SpouseIDs: []string{"inlaw"}},
		{ID: "inlaw", FatherID: "inlawdad"},
		{ID: "inlawdad"},
	})

	res, err := Traverse(g, "root", PolicyFull, Options{})
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	want := []string{"inlaw", "inlawdad", "kid", "root"}
	if got := nodeIDs(res); !equalStrings(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
	assertNoDuplicateSpousePairs(t, res)
}

func TestFullNetworkHonorsGenerationLimit(t *testing.T) {
	g := family.Build([]family.PersonRecord{
		{ID: "root", ChildrenIDs: []string{"c"}},
		{ID: "c", ChildrenIDs: []string{"gc"}},
		{ID: "gc"},
	})

	res, err := Traverse(g, "root", PolicyFull, Options{MaxGenerations: 1})
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	if _, ok := res.Nodes["gc"]; ok {
		t.Errorf("nodes = %v, grandchild should be beyond limit 1", nodeIDs(res))
	}
}

func TestFullNetworkEmitsChildKindEdges(t *testing.T) {
	g := family.Build([]family.PersonRecord{
		{ID: "p", ChildrenIDs: []string{"c"}},
		{ID: "c", FatherID: "p"},
	})

	res, err := Traverse(g, "p", PolicyFull, Options{})
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	children := edgesOfKind(res, EdgeChild)
	if len(children) != 1 || children[0].From != "c" || children[0].To != "p" {
		t.Errorf("child edges = %v, want one c->p edge", children)
	}
}

func TestEdgeEndpointsAlwaysVisited(t *testing.T) {
	g := threeGenerations()

	for _, policy := range []Policy{PolicyAncestors, PolicyDescendants, PolicyFull} {
		res, err := Traverse(g, "root", policy, Options{IncludeSpouses: true})
		if err != nil {
			t.Fatalf("Traverse(%s) failed: %v", policy, err)
		}
		for _, e := range res.Edges {
			if _, ok := res.Nodes[e.From]; !ok {
				t.Errorf("%s: edge %v references unvisited From", policy, e)
			}
			if _, ok := res.Nodes[e.To]; !ok {
				t.Errorf("%s: edge %v references unvisited To", policy, e)
			}
		}
	}
}

func assertNoDuplicateSpousePairs(t *testing.T, res *Result) {
	t.Helper()
	seen := map[[2]string]bool{}
	for _, e := range edgesOfKind(res, EdgeSpouse) {
		pair := [2]string{e.From, e.To}
		if e.To < e.From {
			pair = [2]string{e.To, e.From}
		}
		if seen[pair] {
			t.Errorf("duplicate spouse pair %v", pair)
		}
		seen[pair] = true
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
