package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSynchronizeDropsAndAdds(t *testing.T) {
	before := Layout{item("a", 0, 0, 2, 3)}

	got := SynchronizeLayoutWithChildren(before, Keys("b"), 12, None, false)
	assertPositions(t, got, map[string][4]int{"b": {0, Bottom(before), 1, 1}})

	got = SynchronizeLayoutWithChildren(before, Keys("b"), 12, Vertical, false)
	assertPositions(t, got, map[string][4]int{"b": {0, 0, 1, 1}})
}

func TestSynchronizeKeepsExisting(t *testing.T) {
	before := Layout{item("a", 3, 0, 2, 3), item("b", 0, 0, 3, 1)}
	before[0].MinW = 2

	got := SynchronizeLayoutWithChildren(before, Keys("b", "a"), 12, Vertical, false)
	if ids := IDs(got); !cmp.Equal(ids, []string{"b", "a"}) {
		t.Errorf("order = %v, want declaration order [b a]", ids)
	}
	assertPositions(t, got, map[string][4]int{"a": {3, 0, 2, 3}, "b": {0, 0, 3, 1}})
	if a, _ := GetLayoutItem(got, "a"); a.MinW != 2 {
		t.Errorf("minW = %d, want it kept", a.MinW)
	}
}

func TestSynchronizeAppliesPatch(t *testing.T) {
	before := Layout{item("a", 0, 0, 2, 2)}
	decls := []Declaration{
		{Key: "a", Grid: &ItemPatch{W: Int(4), Static: Bool(true)}},
		{Key: "b", Grid: &ItemPatch{X: Int(6), Y: Int(0), W: Int(2), H: Int(2)}},
	}

	got := SynchronizeLayoutWithChildren(before, decls, 12, Vertical, false)
	assertPositions(t, got, map[string][4]int{"a": {0, 0, 4, 2}, "b": {6, 0, 2, 2}})
	if a, _ := GetLayoutItem(got, "a"); !a.Static {
		t.Error("static override not applied")
	}
	if before[0].W != 2 || before[0].Static {
		t.Error("SynchronizeLayoutWithChildren wrote to its input")
	}
}

func TestSynchronizeExplicitZero(t *testing.T) {
	before := Layout{item("a", 5, 5, 1, 1)}
	decls := []Declaration{{Key: "a", Grid: &ItemPatch{X: Int(0)}}}

	got := SynchronizeLayoutWithChildren(before, decls, 12, None, false)
	assertPositions(t, got, map[string][4]int{"a": {0, 5, 1, 1}})
}

func TestSynchronizeClampsDimensions(t *testing.T) {
	decls := []Declaration{
		{Key: "wide", Grid: &ItemPatch{X: Int(3), W: Int(40), H: Int(0)}},
		{Key: "neg", Grid: &ItemPatch{X: Int(11), W: Int(-2), H: Int(-1)}},
		{Key: "edge", Grid: &ItemPatch{X: Int(10), W: Int(4), H: Int(1)}},
	}

	got := SynchronizeLayoutWithChildren(nil, decls, 12, None, true)
	for _, it := range got {
		if it.W < 1 || it.H < 1 || it.W > 12 || it.Right() > 12 {
			t.Errorf("%q not clamped: %+v", it.I, it)
		}
	}
	if it, _ := GetLayoutItem(got, "wide"); it.W != 12 || it.X != 0 || it.H != 1 {
		t.Errorf("wide = %+v", it)
	}
	if it, _ := GetLayoutItem(got, "edge"); it.X != 8 || it.W != 4 {
		t.Errorf("edge = %+v", it)
	}
}

func TestSynchronizeSkipsDuplicatesAndEmptyKeys(t *testing.T) {
	got := SynchronizeLayoutWithChildren(nil, Keys("a", "", "a", "b"), 12, None, false)
	if ids := IDs(got); !cmp.Equal(ids, []string{"a", "b"}) {
		t.Errorf("ids = %v, want [a b]", ids)
	}
	assertPositions(t, got, map[string][4]int{"a": {0, 0, 1, 1}, "b": {0, 1, 1, 1}})
}

func TestSynchronizeOverlapModeSkipsCompaction(t *testing.T) {
	before := Layout{item("a", 0, 4, 1, 1), item("b", 0, 4, 1, 1)}
	got := SynchronizeLayoutWithChildren(before, Keys("a", "b"), 12, Vertical, true)
	assertPositions(t, got, map[string][4]int{"a": {0, 4, 1, 1}, "b": {0, 4, 1, 1}})
}

func TestSynchronizeClearsMoved(t *testing.T) {
	before := Layout{item("a", 0, 0, 1, 1)}
	before[0].Moved = true
	got := SynchronizeLayoutWithChildren(before, Keys("a"), 12, None, true)
	if got[0].Moved {
		t.Error("moved flag survived synchronization")
	}
}
