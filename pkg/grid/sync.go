package grid

// ItemPatch is a partial item declared next to an element. Nil fields keep
// the value from the previous layout; set fields override it, including
// explicit zeros.
type ItemPatch struct {
	X    *int `json:"x,omitempty" toml:"x"`
	Y    *int `json:"y,omitempty" toml:"y"`
	W    *int `json:"w,omitempty" toml:"w"`
	H    *int `json:"h,omitempty" toml:"h"`
	MinW *int `json:"minW,omitempty" toml:"min_w"`
	MaxW *int `json:"maxW,omitempty" toml:"max_w"`
	MinH *int `json:"minH,omitempty" toml:"min_h"`
	MaxH *int `json:"maxH,omitempty" toml:"max_h"`

	Static      *bool `json:"static,omitempty" toml:"static"`
	IsDraggable *bool `json:"isDraggable,omitempty" toml:"is_draggable"`
	IsResizable *bool `json:"isResizable,omitempty" toml:"is_resizable"`
	IsBounded   *bool `json:"isBounded,omitempty" toml:"is_bounded"`
	AutoHeight  *bool `json:"autoHeight,omitempty" toml:"auto_height"`

	ResizeHandles []ResizeHandle `json:"resizeHandles,omitempty" toml:"resize_handles"`
}

// Apply writes the set fields of p onto it.
func (p *ItemPatch) Apply(it *Item) {
	if p == nil {
		return
	}
	setInt(&it.X, p.X)
	setInt(&it.Y, p.Y)
	setInt(&it.W, p.W)
	setInt(&it.H, p.H)
	setInt(&it.MinW, p.MinW)
	setInt(&it.MaxW, p.MaxW)
	setInt(&it.MinH, p.MinH)
	setInt(&it.MaxH, p.MaxH)
	if p.Static != nil {
		it.Static = *p.Static
	}
	if p.AutoHeight != nil {
		it.AutoHeight = *p.AutoHeight
	}
	if p.IsDraggable != nil {
		it.IsDraggable = cloneBool(p.IsDraggable)
	}
	if p.IsResizable != nil {
		it.IsResizable = cloneBool(p.IsResizable)
	}
	if p.IsBounded != nil {
		it.IsBounded = cloneBool(p.IsBounded)
	}
	if p.ResizeHandles != nil {
		it.ResizeHandles = append([]ResizeHandle(nil), p.ResizeHandles...)
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// Int returns a pointer to v, for building patches.
func Int(v int) *int { return &v }

// Declaration is one element of the declared item set, identified by a
// stable key.
type Declaration struct {
	Key  string     `json:"key" toml:"key"`
	Grid *ItemPatch `json:"grid,omitempty" toml:"grid"`
}

// SynchronizeLayoutWithChildren reconciles the declared elements with the
// previous layout l. The result holds exactly one item per distinct
// non-empty key, in declaration order:
//
//   - a key present in l keeps its item, with the declaration's patch applied
//   - a new key gets a 1x1 item at column 0 on the first free row below the
//     previous content (and below any item added before it)
//   - items of l whose key is not declared are dropped
//
// Sizes are clamped to [1, cols] and positions into the grid before the
// merged set is compacted (skipped in overlap mode).
func SynchronizeLayoutWithChildren(l Layout, declared []Declaration, cols int, ct CompactType, allowOverlap bool) Layout {
	floor := Bottom(l)
	out := make(Layout, 0, len(declared))
	seen := make(map[string]bool, len(declared))

	for _, d := range declared {
		if d.Key == "" || seen[d.Key] {
			continue
		}
		seen[d.Key] = true

		it, ok := GetLayoutItem(l, d.Key)
		if ok {
			it = it.Clone()
		} else {
			it = Item{W: 1, H: 1, Y: max(floor, Bottom(out))}
		}
		d.Grid.Apply(&it)
		it.I = d.Key
		it.Moved = false
		correctBounds(&it, cols)
		out = append(out, it)
	}

	if allowOverlap {
		return out
	}
	return Compact(out, ct, cols, false)
}

// correctBounds fixes malformed sizes and keeps the item inside the columns.
func correctBounds(it *Item, cols int) {
	it.W = max(it.W, 1)
	it.H = max(it.H, 1)
	if cols > 0 {
		it.W = min(it.W, cols)
	}
	clampToCols(it, cols)
}

// Keys returns a declaration list with one bare key per id, which is the
// common case of elements that carry no grid overrides.
func Keys(ids ...string) []Declaration {
	out := make([]Declaration, len(ids))
	for i, id := range ids {
		out[i] = Declaration{Key: id}
	}
	return out
}
