// Package io provides JSON import and export for grid layouts and element
// declarations.
//
// # Overview
//
// Layouts cross the CLI and HTTP boundaries as JSON. The format is the
// item list a browser grid already persists, so a layout saved by a web
// client can be compacted or replayed here and handed back unchanged.
//
// # Layout Format
//
// A layout is either a bare array of items or an object holding one under
// "layout":
//
//	[
//	  {"i": "a", "x": 0, "y": 0, "w": 2, "h": 2},
//	  {"i": "b", "x": 2, "y": 0, "w": 1, "h": 1, "static": true}
//	]
//
//	{"layout": [{"i": "a", "x": 0, "y": 0, "w": 2, "h": 2}]}
//
// Required item fields:
//   - i: Unique, non-empty id
//   - x, y: Non-negative cell coordinates
//   - w, h: Size in grid units (at least 1)
//
// Optional fields mirror [grid.Item]: minW/maxW/minH/maxH, static,
// isDraggable, isResizable, isBounded, resizeHandles and autoHeight.
//
// # Declaration Format
//
// The declared element set is an array whose entries are either a key
// string or an object with a key and an optional grid patch:
//
//	["a", {"key": "b", "grid": {"w": 2, "static": true}}]
//
// # Paths
//
// [ImportLayout], [ImportDeclarations] and [ExportLayout] take a file
// path. The path "-" means standard input or standard output.
//
//	l, err := io.ImportLayout("layout.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = io.ExportLayout(grid.Compact(l, grid.Vertical, 12, false), "-")
//
// Imported layouts are validated with [grid.Validate]; decoding and
// validation failures carry the INVALID_INPUT or INVALID_LAYOUT code.
package io
