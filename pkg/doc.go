// Package pkg provides the core libraries for Stackgrid dashboard layouts.
//
// # Overview
//
// Stackgrid packs rectangles on a column grid: items slide up (or left) to
// fill gaps, a dragged item pushes the items it lands on out of the way,
// and a layout is kept in step with the set of elements a page declares.
// The pkg directory is organized into four main areas:
//
//  1. [grid] - The pure engine (collisions, compaction, moves, resizes,
//     synchronization, pixel mapping, equality)
//  2. [pipeline] and [session] - Orchestration (options, cached runner,
//     interactive gesture controller)
//  3. [server] and [io] - Outer surfaces (HTTP API, JSON files)
//  4. [cache], [config], [observability], [errors] - Infrastructure
//
// # Architecture
//
// The typical data flow through Stackgrid:
//
//	Layout JSON + declared children
//	         ↓
//	    [pipeline] package (options, defaults, cache lookup)
//	         ↓
//	    [grid] package (move / resize / synchronize, then compact)
//	         ↓
//	    settled Layout (+ container height, pixel positions)
//
// Interactive callers hold a [session.Session] instead, which commits one
// settled layout per gesture step and reports changes through a callback.
//
// # Quick Start
//
// Move an item and read back the settled layout:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/stackgrid/pkg/grid"
//	    "github.com/matzehuels/stackgrid/pkg/pipeline"
//	)
//
//	layout := grid.Layout{
//	    {I: "a", X: 0, Y: 0, W: 2, H: 2},
//	    {I: "b", X: 0, Y: 2, W: 2, H: 2},
//	}
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, _ := runner.Move(context.Background(), layout, "b", 0, 0, pipeline.Options{})
//	// res.Layout: b on top, a pushed below it
//
// # Main Packages
//
// [grid] - Layout items, collision detection, vertical and horizontal
// compaction, the move resolver with its cascade, resizing on any handle,
// synchronization with declared children and conversion between pixels and
// grid cells. Every function is pure over its inputs.
//
// [pipeline] - Options with defaults and validation, and a Runner that
// executes engine operations with caching, logging and metrics.
//
// [session] - A stateful controller for drag, resize, external drop and
// auto-height gestures around the stateless engine.
//
// [server] - A chi-based JSON HTTP API over the Runner.
//
// [cache] - Null, file and Redis result caches with scoped keys.
//
// [config] - The TOML configuration file.
//
// [observability] - Hook interfaces and a Prometheus implementation.
//
// [io] - Reading and writing layouts and declarations as JSON.
//
// [errors] - Structured error codes shared by every package.
//
// [buildinfo] - Version information set at build time.
package pkg
