// Package grid implements the layout engine: rectangles on an integer grid
// that are kept free of overlaps and gaps as they move, resize, appear and
// disappear.
//
// # Overview
//
// A [Layout] is an ordered list of [Item] rectangles measured in grid units.
// Every operation is a pure function: it takes a layout, never writes to it,
// and returns a freshly allocated result. Callers commit or discard results
// as they see fit, so operations can be replayed, raced or abandoned freely.
//
// # Core Operations
//
//   - [Collides], [GetAllCollisions], [GetFirstCollision]: overlap queries
//   - [Compact]: remove gaps along the [CompactType] axis
//   - [MoveItem], [MoveElement]: place one item and displace what it lands on
//   - [ResizeElement]: change one item's size from any [ResizeHandle]
//   - [ResolveCollisions]: push away what an item covers after growing in place
//   - [SynchronizeLayoutWithChildren]: reconcile declared elements with a layout
//   - [CalcXY], [CalcWH], [CalcGridItemPosition]: pixel and grid conversions
//   - [Equal], [Diff]: structural comparison that ignores order and Moved
//
// # Static Items
//
// Items with Static set are fixed obstacles. Compaction places them first and
// never moves them, and a move or resize whose target overlaps one is
// rejected.
//
// # Atomic Moves
//
// A move or resize either succeeds completely or returns the prior layout.
// Displacement cascades are bounded; a cascade that exceeds its budget is
// rejected rather than left half applied:
//
//	next, ok := grid.MoveItem(l, "a", 0, 1, grid.MoveOptions{
//	    CompactType: grid.Vertical,
//	    Cols:        12,
//	})
//	if ok {
//	    next = grid.Compact(next, grid.Vertical, 12, false)
//	}
//
// # Snapshots
//
// [Snapshot] wraps a layout with an immutable id index so a stateful caller
// can look items up and derive new versions without copying the index.
package grid
