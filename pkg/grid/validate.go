package grid

import (
	"github.com/matzehuels/stackgrid/pkg/errors"
)

// ValidateItem checks the rectangle invariants of a single item. Column
// bounds are checked only when cols > 0.
func ValidateItem(it Item, cols int) error {
	if err := errors.ValidateItemID(it.I); err != nil {
		return err
	}
	if it.W < 1 || it.H < 1 {
		return errors.New(errors.ErrCodeInvalidLayout, "item %q: size %dx%d must be at least 1x1", it.I, it.W, it.H)
	}
	if it.X < 0 || it.Y < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "item %q: position (%d,%d) is negative", it.I, it.X, it.Y)
	}
	if it.MinW > 0 && it.MaxW > 0 && it.MinW > it.MaxW {
		return errors.New(errors.ErrCodeInvalidLayout, "item %q: minW %d exceeds maxW %d", it.I, it.MinW, it.MaxW)
	}
	if it.MinH > 0 && it.MaxH > 0 && it.MinH > it.MaxH {
		return errors.New(errors.ErrCodeInvalidLayout, "item %q: minH %d exceeds maxH %d", it.I, it.MinH, it.MaxH)
	}
	for _, h := range it.ResizeHandles {
		if _, ok := ParseResizeHandle(string(h)); !ok {
			return errors.New(errors.ErrCodeInvalidHandle, "item %q: unknown resize handle %q", it.I, h)
		}
	}
	if cols > 0 && it.W > cols {
		return errors.New(errors.ErrCodeInvalidLayout, "item %q: width %d exceeds %d columns", it.I, it.W, cols)
	}
	return nil
}

// Validate checks every item of l and that ids are unique. It does not
// check for overlaps, which are legal before compaction; see [Overlaps].
func Validate(l Layout, cols int) error {
	seen := make(map[string]bool, len(l))
	for _, it := range l {
		if err := ValidateItem(it, cols); err != nil {
			return err
		}
		if seen[it.I] {
			return errors.New(errors.ErrCodeInvalidLayout, "duplicate item id %q", it.I)
		}
		seen[it.I] = true
	}
	return nil
}
