package grid

import (
	"slices"
	"strings"
)

// CompactType selects the axis along which gaps are removed.
type CompactType string

const (
	// Vertical packs items toward row 0.
	Vertical CompactType = "vertical"
	// Horizontal packs items toward column 0.
	Horizontal CompactType = "horizontal"
	// None disables compaction (free placement).
	None CompactType = ""
)

// ParseCompactType converts a user-supplied string into a CompactType.
// "none" and the empty string both select free placement.
func ParseCompactType(s string) (CompactType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical":
		return Vertical, true
	case "horizontal":
		return Horizontal, true
	case "", "none":
		return None, true
	}
	return None, false
}

// ResolveCompactType applies the legacy verticalCompact switch: when it is
// false, compaction is disabled regardless of ct.
func ResolveCompactType(ct CompactType, verticalCompact bool) CompactType {
	if !verticalCompact {
		return None
	}
	return ct
}

// String returns "none" for free placement.
func (c CompactType) String() string {
	if c == None {
		return "none"
	}
	return string(c)
}

// ResizeHandle names the edge or corner a resize gesture is anchored on.
type ResizeHandle string

const (
	HandleS  ResizeHandle = "s"
	HandleW  ResizeHandle = "w"
	HandleE  ResizeHandle = "e"
	HandleN  ResizeHandle = "n"
	HandleSW ResizeHandle = "sw"
	HandleNW ResizeHandle = "nw"
	HandleSE ResizeHandle = "se"
	HandleNE ResizeHandle = "ne"
)

// ParseResizeHandle validates a handle name.
func ParseResizeHandle(s string) (ResizeHandle, bool) {
	h := ResizeHandle(strings.ToLower(strings.TrimSpace(s)))
	switch h {
	case HandleS, HandleW, HandleE, HandleN, HandleSW, HandleNW, HandleSE, HandleNE:
		return h, true
	}
	return "", false
}

// movesX reports whether resizing from h shifts the item's left edge.
func (h ResizeHandle) movesX() bool {
	return h == HandleSW || h == HandleW || h == HandleNW
}

// movesY reports whether resizing from h shifts the item's top edge.
func (h ResizeHandle) movesY() bool {
	return h == HandleNE || h == HandleN || h == HandleNW
}

// Item is a rectangle on the grid. X and Y are the column and row of the
// top-left cell; W and H are measured in grid units.
//
// The Min/Max bounds use 0 for "unset". The Is* overrides are tri-state:
// nil defers to the container policy.
type Item struct {
	I string `json:"i"`
	X int    `json:"x"`
	Y int    `json:"y"`
	W int    `json:"w"`
	H int    `json:"h"`

	MinW int `json:"minW,omitempty"`
	MaxW int `json:"maxW,omitempty"`
	MinH int `json:"minH,omitempty"`
	MaxH int `json:"maxH,omitempty"`

	Static      bool  `json:"static,omitempty"`
	IsDraggable *bool `json:"isDraggable,omitempty"`
	IsResizable *bool `json:"isResizable,omitempty"`
	IsBounded   *bool `json:"isBounded,omitempty"`

	// Moved is set on items displaced by the last MoveElement cascade and
	// cleared by Compact.
	Moved bool `json:"moved,omitempty"`

	ResizeHandles []ResizeHandle `json:"resizeHandles,omitempty"`
	AutoHeight    bool           `json:"autoHeight,omitempty"`
}

// Layout is an ordered list of items. Order only affects iteration and
// tie-breaks, never geometry.
type Layout []Item

// Right returns the first column after the item.
func (it Item) Right() int { return it.X + it.W }

// Bottom returns the first row below the item.
func (it Item) Bottom() int { return it.Y + it.H }

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := it
	out.IsDraggable = cloneBool(it.IsDraggable)
	out.IsResizable = cloneBool(it.IsResizable)
	out.IsBounded = cloneBool(it.IsBounded)
	if it.ResizeHandles != nil {
		out.ResizeHandles = slices.Clone(it.ResizeHandles)
	}
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// Bool returns a pointer to b, for populating the tri-state overrides.
func Bool(b bool) *bool { return &b }

// CloneLayout deep-copies every item of l.
func CloneLayout(l Layout) Layout {
	if l == nil {
		return nil
	}
	out := make(Layout, len(l))
	for i, it := range l {
		out[i] = it.Clone()
	}
	return out
}

// Bottom returns the lowest occupied row boundary (max of y+h), or 0 for an
// empty layout.
func Bottom(l Layout) int {
	rows := 0
	for _, it := range l {
		if b := it.Bottom(); b > rows {
			rows = b
		}
	}
	return rows
}

// GetLayoutItem looks an item up by id.
func GetLayoutItem(l Layout, id string) (Item, bool) {
	if i := indexOf(l, id); i >= 0 {
		return l[i], true
	}
	return Item{}, false
}

// GetStatics returns the static items of l, in order.
func GetStatics(l Layout) Layout {
	var out Layout
	for _, it := range l {
		if it.Static {
			out = append(out, it)
		}
	}
	return out
}

// IDs returns the item ids in layout order.
func IDs(l Layout) []string {
	ids := make([]string, len(l))
	for i, it := range l {
		ids[i] = it.I
	}
	return ids
}

func indexOf(l Layout, id string) int {
	for i := range l {
		if l[i].I == id {
			return i
		}
	}
	return -1
}
