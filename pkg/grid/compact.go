package grid

import (
	"cmp"
	"slices"
)

// Compact removes gaps along the axis selected by ct and returns a new
// layout in the same order as l.
//
// Items are visited in compaction order (rows first for Vertical, columns
// first for Horizontal). Each non-static item slides toward the origin until
// it touches an item that has already been placed; static items are placed
// up front and never move. Only the compaction axis changes, except that
// Horizontal drops an item one row when it cannot fit to the right of an
// obstacle.
//
// With allowOverlap the items are only clamped into [0, cols). With ct None
// the layout is returned as is. Every returned item has Moved cleared.
func Compact(l Layout, ct CompactType, cols int, allowOverlap bool) Layout {
	out := CloneLayout(l)
	if allowOverlap {
		for i := range out {
			if !out[i].Static {
				clampToCols(&out[i], cols)
			}
			out[i].Moved = false
		}
		return out
	}
	if ct == None {
		for i := range out {
			out[i].Moved = false
		}
		return out
	}

	placed := GetStatics(out)
	for _, idx := range sortedIndices(out, ct) {
		it := &out[idx]
		if !it.Static {
			compactItem(placed, it, ct, cols)
			placed = append(placed, *it)
		}
		it.Moved = false
	}
	return out
}

// SortLayoutItems returns a copy of l in compaction order. For None the
// original order is kept.
func SortLayoutItems(l Layout, ct CompactType) Layout {
	out := make(Layout, 0, len(l))
	for _, idx := range sortedIndices(l, ct) {
		out = append(out, l[idx])
	}
	return out
}

func sortedIndices(l Layout, ct CompactType) []int {
	idx := make([]int, len(l))
	for i := range idx {
		idx[i] = i
	}
	switch ct {
	case Vertical:
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Or(cmp.Compare(l[a].Y, l[b].Y), cmp.Compare(l[a].X, l[b].X))
		})
	case Horizontal:
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Or(cmp.Compare(l[a].X, l[b].X), cmp.Compare(l[a].Y, l[b].Y))
		})
	}
	return idx
}

// compactItem moves it as close to the origin as the placed obstacles allow.
func compactItem(placed Layout, it *Item, ct CompactType, cols int) {
	it.X = max(it.X, 0)
	it.Y = max(it.Y, 0)

	switch ct {
	case Vertical:
		it.Y = min(it.Y, Bottom(placed))
		slideUp(placed, it)
		for {
			c, ok := GetFirstCollision(placed, *it)
			if !ok {
				break
			}
			it.Y = c.Bottom()
		}
	case Horizontal:
		it.X = max(min(it.X, cols-it.W), 0)
		slideLeft(placed, it)
		for {
			c, ok := GetFirstCollision(placed, *it)
			if !ok {
				break
			}
			it.X = c.Right()
			if it.Right() > cols {
				it.Y++
				it.X = max(cols-it.W, 0)
				slideLeft(placed, it)
			}
		}
	}
}

func slideUp(placed Layout, it *Item) {
	for it.Y > 0 {
		probe := *it
		probe.Y--
		if _, hit := GetFirstCollision(placed, probe); hit {
			return
		}
		it.Y--
	}
}

func slideLeft(placed Layout, it *Item) {
	for it.X > 0 {
		probe := *it
		probe.X--
		if _, hit := GetFirstCollision(placed, probe); hit {
			return
		}
		it.X--
	}
}

// clampToCols keeps it inside the column range without touching its size
// unless it is wider than the grid.
func clampToCols(it *Item, cols int) {
	if cols > 0 && it.Right() > cols {
		it.X = cols - it.W
	}
	if it.X < 0 {
		it.X = 0
	}
	if it.Y < 0 {
		it.Y = 0
	}
}
