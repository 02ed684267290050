package grid

import (
	"cmp"
	"slices"
)

// MoveOptions carries the policy arguments of a move.
type MoveOptions struct {
	// IsUserAction enables the swap attempt: an item hit directly by the
	// mover first tries to hop to the other side of it before being pushed.
	IsUserAction bool
	// PreventCollision rejects any move whose target overlaps another item.
	PreventCollision bool
	CompactType      CompactType
	Cols             int
	AllowOverlap     bool
}

// MoveElement moves it to (x, y) and displaces the items it lands on. It is
// the positional form of [MoveItem]; a rejected move returns a copy of l.
func MoveElement(l Layout, it Item, x, y int, isUserAction, preventCollision bool, ct CompactType, cols int, allowOverlap bool) Layout {
	out, _ := MoveItem(l, it.I, x, y, MoveOptions{
		IsUserAction:     isUserAction,
		PreventCollision: preventCollision,
		CompactType:      ct,
		Cols:             cols,
		AllowOverlap:     allowOverlap,
	})
	return out
}

// MoveItem moves the item with the given id to (x, y), clamped to
// x in [0, cols-w] and y >= 0, and returns the new layout plus whether the
// move was applied.
//
// A move is rejected as a whole, returning a copy of l and false, when the
// id is unknown, the item is static and not explicitly draggable, the target
// overlaps a static item, PreventCollision is set and the target overlaps
// anything, or the displacement cascade exceeds its step budget.
//
// Otherwise every item the mover lands on is pushed past it along the
// compaction axis (down for Vertical and None, right for Horizontal, falling
// back to down when the row is full), and further collisions caused by those
// pushes are resolved the same way. Displaced items and the mover come back
// with Moved set. The result is not compacted.
func MoveItem(l Layout, id string, x, y int, o MoveOptions) (Layout, bool) {
	idx := indexOf(l, id)
	if idx < 0 {
		return CloneLayout(l), false
	}
	cur := l[idx]
	if cur.Static && (cur.IsDraggable == nil || !*cur.IsDraggable) {
		return CloneLayout(l), false
	}

	x = max(min(x, o.Cols-cur.W), 0)
	y = max(y, 0)
	out := CloneLayout(l)
	if cur.X == x && cur.Y == y {
		return out, true
	}
	out[idx].X, out[idx].Y = x, y
	if o.AllowOverlap {
		return out, true
	}
	if !cascade(out, idx, o) {
		return CloneLayout(l), false
	}
	return out, true
}

// ResolveCollisions displaces the items overlapping the item with the given
// id, which stays where it is. Use it after an item grew in place. The
// result is a copy of l and false when the id is unknown, the item overlaps
// a static item, PreventCollision is set and the item overlaps anything, or
// the cascade exceeds its step budget. Displaced items come back with Moved
// set.
func ResolveCollisions(l Layout, id string, o MoveOptions) (Layout, bool) {
	idx := indexOf(l, id)
	if idx < 0 {
		return CloneLayout(l), false
	}
	out := CloneLayout(l)
	if o.AllowOverlap || len(GetAllCollisions(out, out[idx])) == 0 {
		return out, true
	}
	// A growing item pushes; it never trades places.
	o.IsUserAction = false
	if !cascade(out, idx, o) {
		return CloneLayout(l), false
	}
	return out, true
}

// cascade resolves every collision caused by out[mover] in place and
// records the Moved flags. It reports false when the result must be
// rejected, leaving out in an unspecified state.
func cascade(out Layout, mover int, o MoveOptions) bool {
	r := newResolver(out, mover, o)
	direct := r.collisions(mover)
	for _, c := range direct {
		if o.PreventCollision || out[c].Static {
			return false
		}
	}
	if !r.resolve(direct) {
		return false
	}
	for i := range out {
		out[i].Moved = r.moved[out[i].I]
	}
	return true
}

// resolver runs one displacement cascade over a private working copy.
type resolver struct {
	layout Layout
	mover  int
	ct     CompactType
	cols   int
	user   bool

	moved map[string]bool
	steps int
	limit int
}

func newResolver(l Layout, mover int, o MoveOptions) *resolver {
	n := len(l) + 1
	return &resolver{
		layout: l,
		mover:  mover,
		ct:     o.CompactType,
		cols:   o.Cols,
		user:   o.IsUserAction,
		moved:  map[string]bool{l[mover].I: true},
		limit:  64 + 8*n*n,
	}
}

// collisions returns the indices of items overlapping layout[i], in
// compaction order with ties broken by id.
func (r *resolver) collisions(i int) []int {
	var out []int
	for j := range r.layout {
		if j != i && Collides(r.layout[i], r.layout[j]) {
			out = append(out, j)
		}
	}
	slices.SortFunc(out, func(a, b int) int {
		la, lb := r.layout[a], r.layout[b]
		if r.ct == Horizontal {
			return cmp.Or(cmp.Compare(la.X, lb.X), cmp.Compare(la.Y, lb.Y), cmp.Compare(la.I, lb.I))
		}
		return cmp.Or(cmp.Compare(la.Y, lb.Y), cmp.Compare(la.X, lb.X), cmp.Compare(la.I, lb.I))
	})
	return out
}

// fixed reports whether layout[i] cannot be displaced.
func (r *resolver) fixed(i int) bool {
	return i == r.mover || r.layout[i].Static
}

// resolve pushes the direct colliders away from the mover and then drains
// the cascade breadth-first. It returns false when the step budget runs out.
func (r *resolver) resolve(direct []int) bool {
	var queue []int
	mover := r.layout[r.mover]
	for _, c := range direct {
		if r.user && r.trySwap(c, mover) {
			continue
		}
		r.push(c, mover)
		queue = append(queue, c)
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, c := range r.collisions(p) {
			if r.steps++; r.steps > r.limit {
				return false
			}
			if r.fixed(c) {
				// The displaced item landed on something immovable: move it
				// past the obstacle and look at it again.
				r.push(p, r.layout[c])
				queue = append(queue, p)
				break
			}
			r.push(c, r.layout[p])
			queue = append(queue, c)
		}
	}
	return true
}

// push moves layout[i] past by along the displacement axis.
func (r *resolver) push(i int, by Item) {
	it := &r.layout[i]
	if r.ct == Horizontal && by.Right()+it.W <= r.cols {
		it.X = by.Right()
	} else {
		it.Y = by.Bottom()
	}
	r.moved[it.I] = true
}

// trySwap moves layout[i] to the origin side of the mover when that spot is
// free, which lets a dragged item trade places with its neighbour instead of
// shoving it away.
func (r *resolver) trySwap(i int, mover Item) bool {
	probe := r.layout[i]
	switch r.ct {
	case Vertical:
		probe.Y = max(mover.Y-probe.H, 0)
	case Horizontal:
		probe.X = max(mover.X-probe.W, 0)
	default:
		return false
	}
	for j, other := range r.layout {
		if j != i && Collides(probe, other) {
			return false
		}
	}
	r.layout[i] = probe
	r.moved[probe.I] = true
	return true
}

// WithLayoutItem applies fn to a private clone of the item with the given id
// and returns a new layout with the clone substituted. When the id is
// absent it returns l itself, a zero Item and false.
func WithLayoutItem(l Layout, id string, fn func(*Item)) (Layout, Item, bool) {
	idx := indexOf(l, id)
	if idx < 0 {
		return l, Item{}, false
	}
	out := CloneLayout(l)
	it := out[idx].Clone()
	fn(&it)
	out[idx] = it
	return out, it.Clone(), true
}
