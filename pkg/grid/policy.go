package grid

import "slices"

// Policy holds the container-level interaction defaults that items may
// override individually.
type Policy struct {
	IsDraggable   bool           `json:"isDraggable"`
	IsResizable   bool           `json:"isResizable"`
	IsBounded     bool           `json:"isBounded"`
	ResizeHandles []ResizeHandle `json:"resizeHandles,omitempty"`
}

// ItemPolicy is the effective interaction policy of one item.
type ItemPolicy struct {
	Draggable     bool           `json:"draggable"`
	Resizable     bool           `json:"resizable"`
	Bounded       bool           `json:"bounded"`
	ResizeHandles []ResizeHandle `json:"resizeHandles,omitempty"`
}

// ResolveItemPolicy merges an item's overrides with the container policy.
// Static items are neither draggable nor resizable unless they say so
// explicitly, and only draggable items can be bounded.
func ResolveItemPolicy(it Item, p Policy) ItemPolicy {
	out := ItemPolicy{
		Draggable: !it.Static && p.IsDraggable,
		Resizable: !it.Static && p.IsResizable,
	}
	if it.IsDraggable != nil {
		out.Draggable = *it.IsDraggable
	}
	if it.IsResizable != nil {
		out.Resizable = *it.IsResizable
	}
	out.Bounded = out.Draggable && p.IsBounded && (it.IsBounded == nil || *it.IsBounded)

	handles := it.ResizeHandles
	if len(handles) == 0 {
		handles = p.ResizeHandles
	}
	out.ResizeHandles = slices.Clone(handles)
	return out
}

// HasHandle reports whether h is one of the item's resize handles.
func (p ItemPolicy) HasHandle(h ResizeHandle) bool {
	return slices.Contains(p.ResizeHandles, h)
}
