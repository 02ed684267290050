// Package pipeline executes grid layout operations for the CLI, the HTTP API
// and interactive sessions.
//
// The package centralizes option defaults and validation so every entry
// point places items the same way, and wraps the pure engine in
// [github.com/matzehuels/stackgrid/pkg/grid] with caching, logging and
// observability hooks.
//
// # Architecture
//
// Two types carry the pipeline:
//
//  1. [Options]: grid geometry and interaction policy (columns, row height,
//     margins, compaction axis, overlap and collision modes, resize handles,
//     the dropping item). Zero values mean "use the default".
//  2. [Runner]: executes Compact, Move, Resize and Synchronize against a
//     [cache.Cache], and maps pixels to cells with CalcXY and Position.
//
// # Usage
//
// Create a Runner and run an operation:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Cols: 12, CompactType: "vertical"}
//	res, err := runner.Move(ctx, layout, "a", 0, 3, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if res.Vetoed {
//	    // layout unchanged
//	}
//
// Moves and resizes are followed by a compaction pass unless overlap mode is
// on, so the returned layout is always settled.
package pipeline

import (
	"slices"
	"time"

	"github.com/matzehuels/stackgrid/pkg/cache"
	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Sessions
// =============================================================================

const (
	// DefaultCols is the number of grid columns.
	DefaultCols = 12

	// DefaultRowHeight is the pixel height of one grid row.
	DefaultRowHeight = 150.0

	// DefaultContainerWidth is the pixel width used for coordinate mapping
	// when the caller does not measure its container.
	DefaultContainerWidth = 1200.0

	// DefaultCompactType is the compaction axis.
	DefaultCompactType = "vertical"

	// DroppingItemID is the id of the placeholder shown during an external drop.
	DroppingItemID = "__dropping-elem__"
)

// DefaultMargin is the [x, y] pixel gap between items.
var DefaultMargin = [2]float64{10, 10}

// DefaultResizeHandles are the handles of items that do not declare their own.
var DefaultResizeHandles = []string{string(grid.HandleSE)}

// DefaultDroppingItem is the item placed while something is dragged in from
// outside the grid.
var DefaultDroppingItem = grid.Item{I: DroppingItemID, W: 1, H: 1}

// ValidCompactTypes is the set of accepted compaction names.
var ValidCompactTypes = map[string]bool{
	"vertical":   true,
	"horizontal": true,
	"none":       true,
}

// =============================================================================
// Options - Grid Configuration
// =============================================================================

// Options contains the geometry and policy of one grid.
// This struct supports JSON serialization for API requests and TOML for
// configuration files.
type Options struct {
	// Geometry
	Cols             int         `json:"cols,omitempty" toml:"cols"`
	RowHeight        float64     `json:"row_height,omitempty" toml:"row_height"`
	MaxRows          int         `json:"max_rows,omitempty" toml:"max_rows"`
	Margin           *[2]float64 `json:"margin,omitempty" toml:"margin"`
	ContainerPadding *[2]float64 `json:"container_padding,omitempty" toml:"container_padding"` // Defaults to Margin
	ContainerWidth   float64     `json:"container_width,omitempty" toml:"container_width"`

	// Compaction and collisions
	CompactType      string `json:"compact_type,omitempty" toml:"compact_type"`
	VerticalCompact  *bool  `json:"vertical_compact,omitempty" toml:"vertical_compact"` // Legacy switch; false disables compaction
	AllowOverlap     bool   `json:"allow_overlap,omitempty" toml:"allow_overlap"`
	PreventCollision bool   `json:"prevent_collision,omitempty" toml:"prevent_collision"`

	// Interaction policy
	IsDraggable   *bool    `json:"is_draggable,omitempty" toml:"is_draggable"`
	IsResizable   *bool    `json:"is_resizable,omitempty" toml:"is_resizable"`
	IsBounded     bool     `json:"is_bounded,omitempty" toml:"is_bounded"`
	ResizeHandles []string `json:"resize_handles,omitempty" toml:"resize_handles"`

	// DroppingItem is the placeholder used for external drops.
	DroppingItem *grid.Item `json:"dropping_item,omitempty" toml:"-"`

	// Refresh bypasses cached results.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result is the outcome of one engine operation.
type Result struct {
	// Layout is the settled layout.
	Layout grid.Layout `json:"layout"`

	// Item is the moved or resized item as placed, when the operation has one.
	Item *grid.Item `json:"item,omitempty"`

	// Changed reports whether Layout differs from the input.
	Changed bool `json:"changed"`

	// Vetoed reports a move or resize that was rejected as a whole.
	Vetoed bool `json:"vetoed,omitempty"`

	// CacheHit reports whether the result came from the cache.
	CacheHit bool `json:"cache_hit"`

	// Duration is the wall time of the call.
	Duration time.Duration `json:"-"`
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills every unset field with its default.
func (o *Options) SetDefaults() {
	if o.Cols == 0 {
		o.Cols = DefaultCols
	}
	if o.RowHeight == 0 {
		o.RowHeight = DefaultRowHeight
	}
	if o.Margin == nil {
		m := DefaultMargin
		o.Margin = &m
	}
	if o.ContainerWidth == 0 {
		o.ContainerWidth = DefaultContainerWidth
	}
	if o.CompactType == "" {
		o.CompactType = DefaultCompactType
	}
	if o.VerticalCompact == nil {
		o.VerticalCompact = grid.Bool(true)
	}
	if o.IsDraggable == nil {
		o.IsDraggable = grid.Bool(true)
	}
	if o.IsResizable == nil {
		o.IsResizable = grid.Bool(true)
	}
	if len(o.ResizeHandles) == 0 {
		o.ResizeHandles = slices.Clone(DefaultResizeHandles)
	}
	if o.DroppingItem == nil {
		d := DefaultDroppingItem.Clone()
		o.DroppingItem = &d
	}
	if o.DroppingItem.I == "" {
		o.DroppingItem.I = DroppingItemID
	}
	o.DroppingItem.W = max(o.DroppingItem.W, 1)
	o.DroppingItem.H = max(o.DroppingItem.H, 1)
}

// Validate checks option values. It expects defaults to be set.
func (o *Options) Validate() error {
	if !ValidCompactTypes[o.CompactType] {
		return errors.New(errors.ErrCodeInvalidCompactType,
			"invalid compact_type: %q (must be one of: vertical, horizontal, none)", o.CompactType)
	}
	for _, h := range o.ResizeHandles {
		if _, ok := grid.ParseResizeHandle(h); !ok {
			return errors.New(errors.ErrCodeInvalidHandle,
				"invalid resize handle: %q (must be one of: s, w, e, n, sw, nw, se, ne)", h)
		}
	}
	g := o.Geometry()
	if err := errors.ValidateGeometry(g.Cols, g.RowHeight, g.ContainerWidth, g.Margin, g.Padding(), g.MaxRows); err != nil {
		return err
	}
	if o.DroppingItem != nil {
		if err := grid.ValidateItem(*o.DroppingItem, o.Cols); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "dropping_item")
		}
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// EffectiveCompactType resolves the compaction axis, honouring the legacy
// VerticalCompact switch.
func (o *Options) EffectiveCompactType() grid.CompactType {
	ct, _ := grid.ParseCompactType(o.CompactType)
	if o.CompactType == "" {
		ct = grid.Vertical
	}
	return grid.ResolveCompactType(ct, o.VerticalCompact == nil || *o.VerticalCompact)
}

// Clone returns a deep copy of o that has not been validated, so fields
// changed on the copy are checked again by ValidateAndSetDefaults.
func (o Options) Clone() Options {
	c := o
	c.validated = false
	if o.Margin != nil {
		m := *o.Margin
		c.Margin = &m
	}
	if o.ContainerPadding != nil {
		p := *o.ContainerPadding
		c.ContainerPadding = &p
	}
	if o.VerticalCompact != nil {
		c.VerticalCompact = grid.Bool(*o.VerticalCompact)
	}
	if o.IsDraggable != nil {
		c.IsDraggable = grid.Bool(*o.IsDraggable)
	}
	if o.IsResizable != nil {
		c.IsResizable = grid.Bool(*o.IsResizable)
	}
	c.ResizeHandles = slices.Clone(o.ResizeHandles)
	if o.DroppingItem != nil {
		d := o.DroppingItem.Clone()
		c.DroppingItem = &d
	}
	return c
}

// Geometry returns the coordinate mapping parameters.
func (o *Options) Geometry() grid.Geometry {
	g := grid.Geometry{
		Cols:           o.Cols,
		RowHeight:      o.RowHeight,
		ContainerWidth: o.ContainerWidth,
		MaxRows:        o.MaxRows,
		Margin:         DefaultMargin,
	}
	if o.Margin != nil {
		g.Margin = *o.Margin
	}
	if o.ContainerPadding != nil {
		p := *o.ContainerPadding
		g.ContainerPadding = &p
	}
	return g
}

// Policy returns the container-level interaction policy.
func (o *Options) Policy() grid.Policy {
	p := grid.Policy{
		IsDraggable: o.IsDraggable == nil || *o.IsDraggable,
		IsResizable: o.IsResizable == nil || *o.IsResizable,
		IsBounded:   o.IsBounded,
	}
	for _, h := range o.ResizeHandles {
		if rh, ok := grid.ParseResizeHandle(h); ok {
			p.ResizeHandles = append(p.ResizeHandles, rh)
		}
	}
	return p
}

// MoveOptions returns the engine arguments for a move.
func (o *Options) MoveOptions(isUserAction bool) grid.MoveOptions {
	return grid.MoveOptions{
		IsUserAction:     isUserAction,
		PreventCollision: o.PreventCollision,
		CompactType:      o.EffectiveCompactType(),
		Cols:             o.Cols,
		AllowOverlap:     o.AllowOverlap,
	}
}

// ResizeOptions returns the engine arguments for a resize from handle.
func (o *Options) ResizeOptions(handle grid.ResizeHandle) grid.ResizeOptions {
	return grid.ResizeOptions{
		Handle:           handle,
		PreventCollision: o.PreventCollision,
		CompactType:      o.EffectiveCompactType(),
		Cols:             o.Cols,
		AllowOverlap:     o.AllowOverlap,
	}
}

// KeyOpts returns cache key options for engine operations.
func (o *Options) KeyOpts() cache.OpKeyOpts {
	g := o.Geometry()
	return cache.OpKeyOpts{
		Cols:             o.Cols,
		CompactType:      o.EffectiveCompactType().String(),
		AllowOverlap:     o.AllowOverlap,
		PreventCollision: o.PreventCollision,
		MaxRows:          o.MaxRows,
		RowHeight:        o.RowHeight,
		ContainerWidth:   o.ContainerWidth,
		Margin:           g.Margin,
		Padding:          g.Padding(),
	}
}
