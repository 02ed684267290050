package grid

// Collides reports whether a and b overlap. An item never collides with
// itself (matching ids), and rectangles that only share an edge do not
// collide.
func Collides(a, b Item) bool {
	if a.I == b.I {
		return false
	}
	if a.Right() <= b.X || a.X >= b.Right() {
		return false
	}
	if a.Bottom() <= b.Y || a.Y >= b.Bottom() {
		return false
	}
	return true
}

// GetFirstCollision returns the first item of l that collides with it.
func GetFirstCollision(l Layout, it Item) (Item, bool) {
	for _, other := range l {
		if Collides(other, it) {
			return other, true
		}
	}
	return Item{}, false
}

// GetAllCollisions returns every item of l that collides with it, in layout
// order. The item itself is never included.
func GetAllCollisions(l Layout, it Item) Layout {
	var out Layout
	for _, other := range l {
		if Collides(other, it) {
			out = append(out, other)
		}
	}
	return out
}

// Overlaps returns every colliding pair in l as id pairs, in layout order.
// It is a diagnostic for validating a settled layout.
func Overlaps(l Layout) [][2]string {
	var out [][2]string
	for i := range l {
		for j := i + 1; j < len(l); j++ {
			if Collides(l[i], l[j]) {
				out = append(out, [2]string{l[i].I, l[j].I})
			}
		}
	}
	return out
}
