package grid

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// layoutOpts compares layouts as sets of items keyed by id: the transient
// Moved flag and item order are ignored, and nil and empty slices match.
var layoutOpts = cmp.Options{
	cmpopts.IgnoreFields(Item{}, "Moved"),
	cmpopts.SortSlices(func(a, b Item) bool { return a.I < b.I }),
	cmpopts.EquateEmpty(),
}

// Equal reports whether a and b describe the same grid.
func Equal(a, b Layout) bool {
	if len(a) != len(b) {
		return false
	}
	return cmp.Equal(a, b, layoutOpts)
}

// Diff returns a human-readable report of the differences between a and b,
// or "" when they are Equal.
func Diff(a, b Layout) string {
	return cmp.Diff(a, b, layoutOpts)
}
