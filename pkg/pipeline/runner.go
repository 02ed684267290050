package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/stackgrid/pkg/cache"
	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
	"github.com/matzehuels/stackgrid/pkg/observability"
)

// Operation names used in cache keys, hooks and logs.
const (
	OpCompact     = "compact"
	OpMove        = "move"
	OpResize      = "resize"
	OpSynchronize = "synchronize"
)

// Runner encapsulates engine execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store layouts. Multiple goroutines can safely use the same Runner with
// different options; identical concurrent calls are computed once.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	flight singleflight.Group
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Compact removes gaps along the configured axis.
func (r *Runner) Compact(ctx context.Context, l grid.Layout, opts Options) (Result, error) {
	if err := r.prepare(&opts, l); err != nil {
		return Result{}, err
	}
	input := struct {
		Layout grid.Layout `json:"layout"`
	}{l}

	return r.run(ctx, OpCompact, input, &opts, func() (Result, error) {
		start := time.Now()
		ct := opts.EffectiveCompactType()
		out := grid.Compact(l, ct, opts.Cols, opts.AllowOverlap)
		observability.Engine().OnCompact(ctx, ct.String(), len(out), time.Since(start))
		return Result{Layout: out, Changed: !grid.Equal(l, out)}, nil
	})
}

// Move drags the item with the given id to (x, y) as a user action and
// compacts the result.
func (r *Runner) Move(ctx context.Context, l grid.Layout, id string, x, y int, opts Options) (Result, error) {
	if err := r.prepare(&opts, l); err != nil {
		return Result{}, err
	}
	if _, ok := grid.GetLayoutItem(l, id); !ok {
		return Result{}, errors.New(errors.ErrCodeItemNotFound, "item %q not found", id)
	}
	input := struct {
		Layout grid.Layout `json:"layout"`
		ID     string      `json:"id"`
		X      int         `json:"x"`
		Y      int         `json:"y"`
	}{l, id, x, y}

	return r.run(ctx, OpMove, input, &opts, func() (Result, error) {
		start := time.Now()
		ct := opts.EffectiveCompactType()
		moved, ok := grid.MoveItem(l, id, x, y, opts.MoveOptions(true))
		displaced := 0
		for _, it := range moved {
			if it.Moved && it.I != id {
				displaced++
			}
		}
		out := r.settle(moved, &opts)
		observability.Engine().OnMove(ctx, ct.String(), displaced, !ok, time.Since(start))
		if !ok {
			r.Logger.Debug("move vetoed", "id", id, "x", x, "y", y)
		}
		return r.result(l, out, id, !ok), nil
	})
}

// Resize changes the size of the item with the given id, anchored on
// handle ("" selects "se"), and compacts the result.
func (r *Runner) Resize(ctx context.Context, l grid.Layout, id string, w, h int, handle string, opts Options) (Result, error) {
	if err := r.prepare(&opts, l); err != nil {
		return Result{}, err
	}
	rh := grid.HandleSE
	if handle != "" {
		var ok bool
		if rh, ok = grid.ParseResizeHandle(handle); !ok {
			return Result{}, errors.New(errors.ErrCodeInvalidHandle, "invalid resize handle: %q", handle)
		}
	}
	if _, ok := grid.GetLayoutItem(l, id); !ok {
		return Result{}, errors.New(errors.ErrCodeItemNotFound, "item %q not found", id)
	}
	input := struct {
		Layout grid.Layout       `json:"layout"`
		ID     string            `json:"id"`
		W      int               `json:"w"`
		H      int               `json:"h"`
		Handle grid.ResizeHandle `json:"handle"`
	}{l, id, w, h, rh}

	return r.run(ctx, OpResize, input, &opts, func() (Result, error) {
		start := time.Now()
		resized, _, ok := grid.ResizeElement(l, id, w, h, opts.ResizeOptions(rh))
		out := r.settle(resized, &opts)
		observability.Engine().OnResize(ctx, string(rh), !ok, time.Since(start))
		return r.result(l, out, id, !ok), nil
	})
}

// Synchronize reconciles l with the declared elements. Items whose key is
// not declared are dropped and new keys are appended below the content.
func (r *Runner) Synchronize(ctx context.Context, l grid.Layout, declared []grid.Declaration, opts Options) (Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Result{}, err
	}
	for _, d := range declared {
		if err := errors.ValidateItemID(d.Key); err != nil {
			return Result{}, err
		}
	}
	input := struct {
		Layout   grid.Layout        `json:"layout"`
		Declared []grid.Declaration `json:"declared"`
	}{l, declared}

	return r.run(ctx, OpSynchronize, input, &opts, func() (Result, error) {
		start := time.Now()
		out := grid.SynchronizeLayoutWithChildren(l, declared, opts.Cols, opts.EffectiveCompactType(), opts.AllowOverlap)

		added, removed := 0, 0
		for _, it := range out {
			if _, ok := grid.GetLayoutItem(l, it.I); !ok {
				added++
			}
		}
		for _, it := range l {
			if _, ok := grid.GetLayoutItem(out, it.I); !ok {
				removed++
			}
		}
		observability.Engine().OnSync(ctx, added, removed, time.Since(start))
		r.Logger.Debug("synchronized layout", "items", len(out), "added", added, "removed", removed)
		return Result{Layout: out, Changed: !grid.Equal(l, out)}, nil
	})
}

// CalcXY converts a pixel offset into the grid cell an item of size w x h
// would snap to.
func (r *Runner) CalcXY(opts Options, top, left float64, w, h int) (grid.Cell, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return grid.Cell{}, err
	}
	return grid.CalcXY(opts.Geometry(), top, left, w, h), nil
}

// Position converts an item's grid rectangle into pixels.
func (r *Runner) Position(opts Options, it grid.Item) (grid.Position, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return grid.Position{}, err
	}
	return grid.CalcGridItemPosition(opts.Geometry(), it.X, it.Y, it.W, it.H), nil
}

// ContainerHeight returns the pixel height needed to show l.
func (r *Runner) ContainerHeight(opts Options, l grid.Layout) (float64, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return 0, err
	}
	return grid.ContainerHeight(opts.Geometry(), l), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// prepare validates options and the input layout.
func (r *Runner) prepare(opts *Options, l grid.Layout) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	return grid.Validate(l, 0)
}

// settle compacts a moved or resized layout unless overlap mode is on.
func (r *Runner) settle(l grid.Layout, opts *Options) grid.Layout {
	if opts.AllowOverlap {
		return l
	}
	return grid.Compact(l, opts.EffectiveCompactType(), opts.Cols, false)
}

func (r *Runner) result(in, out grid.Layout, id string, vetoed bool) Result {
	res := Result{Layout: out, Changed: !grid.Equal(in, out), Vetoed: vetoed}
	if it, ok := grid.GetLayoutItem(out, id); ok {
		c := it.Clone()
		res.Item = &c
	}
	return res
}

// run looks the operation up in the cache and otherwise computes it once
// per key, storing the JSON result with TTLResult.
func (r *Runner) run(ctx context.Context, op string, input any, opts *Options, compute func() (Result, error)) (Result, error) {
	start := time.Now()
	inputHash, err := cache.HashValue(input)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "encode %s input", op)
	}
	key := r.Keyer.OpKey(op, inputHash, opts.KeyOpts())

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var res Result
			if err := json.Unmarshal(cached, &res); err == nil {
				observability.Cache().OnCacheHit(ctx, op)
				res.CacheHit = true
				res.Duration = time.Since(start)
				r.Logger.Debug("cache hit", "op", op, "items", len(res.Layout))
				return res, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, op)
	}

	v, err, shared := r.flight.Do(key, func() (any, error) {
		res, err := compute()
		if err != nil {
			return Result{}, err
		}
		if data, err := json.Marshal(res); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLResult); err != nil {
				r.Logger.Warn("cache write failed", "op", op, "err", err)
			} else {
				observability.Cache().OnCacheSet(ctx, op, len(data))
			}
		}
		return res, nil
	})
	if err != nil {
		return Result{}, err
	}

	res := v.(Result)
	if shared {
		res.Layout = grid.CloneLayout(res.Layout)
		if res.Item != nil {
			c := res.Item.Clone()
			res.Item = &c
		}
	}
	res.Duration = time.Since(start)
	r.Logger.Debug("ran operation", "op", op, "items", len(res.Layout), "changed", res.Changed, "duration", res.Duration)
	return res, nil
}
