// ABOUTME: Tests for entity graph construction: indexing, child back-fill, and dangling-reference pruning.
// ABOUTME: Covers idempotence, duplicate-child avoidance, and determinism across repeated builds.
package family

import (
	"reflect"
	"testing"
)

func TestBuildIndexesRecordsByID(t *testing.T) {
	g := Build([]PersonRecord{
		{ID: "a", Name: "Ada"},
		{ID: "b", Name: "Ben"},
	})

	if g.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", g.Len())
	}

	p, ok := g.Get("a")
	if !ok {
		t.Fatal("Get(a) not found")
	}
	if p.Name != "Ada" {
		t.Errorf("Get(a).Name = %q, want Ada", p.Name)
	}

	if _, ok := g.Get("missing"); ok {
		t.Error("Get(missing) = found, want not found")
	}
	if _, ok := g.Get(""); ok {
		t.Error("Get(\"\") = found, want not found")
	}
}

func TestBuildSkipsRecordsWithEmptyID(t *testing.T) {
	g := Build([]PersonRecord{
		{ID: "", Name: "Nobody"},
		{ID: "a", Name: "Ada"},
	})

	if g.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", g.Len())
	}
}

func TestBuildBackfillsChildrenFromParentReferences(t *testing.T) {
	g := Build([]PersonRecord{
		{ID: "father"},
		{ID: "mother"},
		{ID: "kid", FatherID: "father", MotherID: "mother"},
	})

	father, _ := g.Get("father")
	if !father.HasChild("kid") {
		t.Errorf("father.ChildrenIDs = %v, want to contain kid", father.ChildrenIDs)
	}
	mother, _ := g.Get("mother")
	if !mother.HasChild("kid") {
		t.Errorf("mother.ChildrenIDs = %v, want to contain kid", mother.ChildrenIDs)
	}
}

func TestBuildDoesNotDuplicateExplicitChildren(t *testing.T) {
	g := Build([]PersonRecord{
		{ID: "father", ChildrenIDs: []string{"kid"}},
		{ID: "kid", FatherID: "father"},
	})

	father, _ := g.Get("father")
	if got := len(father.ChildrenIDs); got != 1 {
		t.Errorf("len(father.ChildrenIDs) = %d, want 1 (no duplicate insertion)", got)
	}
}

func TestBuildPrunesDanglingChildReferences(t *testing.T) {
	g := Build([]PersonRecord{
		{ID: "a", ChildrenIDs: []string{"ghost", "b"}},
		{ID: "b"},
	})

	a, _ := g.Get("a")
	want := []string{"b"}
	if !reflect.DeepEqual(a.ChildrenIDs, want) {
		t.Errorf("a.ChildrenIDs = %v, want %v", a.ChildrenIDs, want)
	}
}

func TestBuildPreservesUnresolvedParentAndSpouseReferences(t *testing.T) {
	g := Build([]PersonRecord{
		{ID: "a", FatherID: "ghost-father", SpouseIDs: []string{"ghost-spouse"}},
	})

	a, _ := g.Get("a")
	if a.FatherID != "ghost-father" {
		t.Errorf("a.FatherID = %q, want ghost-father preserved", a.FatherID)
	}
	if !a.HasSpouse("ghost-spouse") {
		t.Errorf("a.SpouseIDs = %v, want ghost-spouse preserved", a.SpouseIDs)
	}
	if _, ok := g.Get(a.FatherID); ok {
		t.Error("unresolved father reference resolved unexpectedly")
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	records := []PersonRecord{
		{ID: "father"},
		{ID: "kid", FatherID: "father"},
	}

	Build(records)

	if len(records[0].ChildrenIDs) != 0 {
		t.Errorf("input record mutated: ChildrenIDs = %v", records[0].ChildrenIDs)
	}
}

func TestBuildIsDeterministicAndIdempotent(t *testing.T) {
	records := []PersonRecord{
		{ID: "r", ChildrenIDs: []string{"c2", "c1", "ghost"}},
		{ID: "c1", FatherID: "r"},
		{ID: "c2", MotherID: "r"},
	}

	g1 := Build(records)
	g2 := Build(records)

	if !reflect.DeepEqual(g1.IDs(), g2.IDs()) {
		t.Fatalf("node sets differ: %v vs %v", g1.IDs(), g2.IDs())
	}
	for _, id := range g1.IDs() {
		p1, _ := g1.Get(id)
		p2, _ := g2.Get(id)
		if !reflect.DeepEqual(p1, p2) {
			t.Errorf("record %s differs between builds: %+v vs %+v", id, p1, p2)
		}
	}
}

func TestAddChildAndAddSpouseAreIdempotent(t *testing.T) {
	p := &PersonRecord{ID: "a"}

	p.AddChild("c")
	p.AddChild("c")
	if len(p.ChildrenIDs) != 1 {
		t.Errorf("len(ChildrenIDs) = %d, want 1", len(p.ChildrenIDs))
	}

	p.AddSpouse("s")
	p.AddSpouse("s")
	if len(p.SpouseIDs) != 1 {
		t.Errorf("len(SpouseIDs) = %d, want 1", len(p.SpouseIDs))
	}
}
