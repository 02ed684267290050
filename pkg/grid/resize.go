package grid

// ResizeOptions carries the policy arguments of a resize.
type ResizeOptions struct {
	Handle           ResizeHandle
	PreventCollision bool
	CompactType      CompactType
	Cols             int
	AllowOverlap     bool
}

// ResizeElement changes the size of the item with the given id to (w, h)
// and returns the new layout, the resized item and whether it was applied.
//
// The size is clamped to the item's min/max bounds and to the grid width.
// Handles on the west or north side keep the opposite edge fixed by shifting
// x or y; when that shift would leave the grid the size on that axis is
// left unchanged. With PreventCollision (and overlap mode off) a resized
// rectangle that hits another item is vetoed and l is returned untouched.
// Items under the new edges are displaced: through [MoveItem] when the
// origin moved, through [ResolveCollisions] otherwise. A resize whose
// rectangle would cover a static item is rejected.
func ResizeElement(l Layout, id string, w, h int, o ResizeOptions) (Layout, Item, bool) {
	idx := indexOf(l, id)
	if idx < 0 {
		return l, Item{}, false
	}
	prev := l[idx]
	if prev.Static && (prev.IsResizable == nil || !*prev.IsResizable) {
		return CloneLayout(l), prev.Clone(), false
	}
	w, h = clampSize(prev, w, h, o.Cols)

	x, y := prev.X, prev.Y
	shifted := false
	if o.Handle.movesX() {
		x = prev.X + (prev.W - w)
		if x < 0 {
			w, x = prev.W, prev.X
		}
		shifted = x != prev.X
	}
	if o.Handle.movesY() {
		y = prev.Y + (prev.H - h)
		if y < 0 {
			h, y = prev.H, prev.Y
		}
		shifted = shifted || y != prev.Y
	}
	if !o.Handle.movesX() && o.Cols > 0 && prev.X+w > o.Cols {
		w = o.Cols - prev.X
	}

	if o.PreventCollision && !o.AllowOverlap {
		probe := prev
		probe.X, probe.Y, probe.W, probe.H = x, y, w, h
		if _, hit := GetFirstCollision(l, probe); hit {
			return CloneLayout(l), prev.Clone(), false
		}
	}

	next, it, _ := WithLayoutItem(l, id, func(it *Item) {
		it.W, it.H = w, h
	})
	if !shifted {
		settled, ok := ResolveCollisions(next, id, MoveOptions{
			CompactType:  o.CompactType,
			Cols:         o.Cols,
			AllowOverlap: o.AllowOverlap,
		})
		if !ok {
			return CloneLayout(l), prev.Clone(), false
		}
		it, _ = GetLayoutItem(settled, id)
		return settled, it.Clone(), true
	}
	moved, ok := MoveItem(next, id, x, y, MoveOptions{
		IsUserAction:     true,
		PreventCollision: o.PreventCollision,
		CompactType:      o.CompactType,
		Cols:             o.Cols,
		AllowOverlap:     o.AllowOverlap,
	})
	if !ok {
		return CloneLayout(l), prev.Clone(), false
	}
	it, _ = GetLayoutItem(moved, id)
	return moved, it.Clone(), true
}

// clampSize applies the item's bounds, the grid width and the 1-unit floor.
func clampSize(it Item, w, h, cols int) (int, int) {
	if it.MinW > 0 {
		w = max(w, it.MinW)
	}
	if it.MaxW > 0 {
		w = min(w, it.MaxW)
	}
	if cols > 0 {
		w = min(w, cols)
	}
	if it.MinH > 0 {
		h = max(h, it.MinH)
	}
	if it.MaxH > 0 {
		h = min(h, it.MaxH)
	}
	return max(w, 1), max(h, 1)
}
