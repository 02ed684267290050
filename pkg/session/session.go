// Package session provides the stateful gesture controller around the
// stateless layout engine.
//
// A [Session] owns one committed layout and turns a stream of interaction
// events into engine calls: drag and resize gestures, external drops, item
// height reports and declaration changes. Every step produces a settled
// (compacted) layout that is committed atomically; a vetoed step leaves the
// committed layout untouched.
//
// # Architecture
//
// The committed layout is held in an immutable [grid.Snapshot], so readers
// can take the current layout at any time while a gesture prepares the next
// one. Each public method:
//   - Locks the session
//   - Runs the engine against the current snapshot
//   - Commits the result and records whether it differs from the last
//     layout reported to the caller
//   - Unlocks and invokes the change callback outside the lock
//
// The change callback fires only when the settled layout is not equal
// (per [grid.Equal]) to the previously reported one.
//
// # Usage
//
//	s, err := session.New(layout, grid.Keys("a", "b", "c"), opts,
//	    session.WithOnLayoutChange(func(l grid.Layout) { save(l) }),
//	)
//	if err != nil {
//	    return err
//	}
//	if _, err := s.DragStart(ctx, "a"); err != nil {
//	    return err // NOT_DRAGGABLE, ITEM_NOT_FOUND
//	}
//	s.Drag(ctx, "a", 2, 1)
//	s.DragStop(ctx, "a", 2, 1)
package session

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
	"github.com/matzehuels/stackgrid/pkg/observability"
	"github.com/matzehuels/stackgrid/pkg/pipeline"
)

// GestureKind names an interactive gesture.
type GestureKind string

const (
	GestureDrag   GestureKind = "drag"
	GestureResize GestureKind = "resize"
	GestureDrop   GestureKind = "drop"
)

// Rect is the placeholder drawn under the item being dragged or resized.
type Rect struct {
	I    string      `json:"i"`
	X    int         `json:"x"`
	Y    int         `json:"y"`
	W    int         `json:"w"`
	H    int         `json:"h"`
	From GestureKind `json:"from"`
}

// gesture is the state of an active drag or resize.
type gesture struct {
	kind GestureKind
	id   string
	old  grid.Item
	rect *Rect
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOnLayoutChange registers the change callback. It receives a private
// copy of the settled layout and may call back into the Session.
func WithOnLayoutChange(fn func(grid.Layout)) Option {
	return func(s *Session) { s.onChange = fn }
}

// Session is an interactive grid. It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	opts     pipeline.Options
	logger   *log.Logger
	onChange func(grid.Layout)

	declared []grid.Declaration
	snap     *grid.Snapshot
	notified grid.Layout
	pending  grid.Layout
	resync   bool

	active     *gesture
	dragEnter  int
	dropping   bool
	dropTop    float64
	dropLeft   float64
	dropSource grid.Item
}

// New creates a session from an initial layout and declared element set.
// A nil declared set keeps every item of layout. The initial layout is
// synchronized and compacted but not reported.
func New(layout grid.Layout, declared []grid.Declaration, opts pipeline.Options, options ...Option) (*Session, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := grid.Validate(layout, 0); err != nil {
		return nil, err
	}
	if declared == nil {
		declared = grid.Keys(grid.IDs(layout)...)
	}
	s := &Session{
		opts:     opts,
		logger:   log.New(io.Discard),
		declared: slices.Clone(declared),
	}
	for _, o := range options {
		o(s)
	}

	settled := s.synchronize(layout)
	s.snap = grid.NewSnapshot(settled)
	s.notified = settled
	return s, nil
}

// Options returns the effective options.
func (s *Session) Options() pipeline.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// Layout returns a copy of the committed layout.
func (s *Session) Layout() grid.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Layout()
}

// Item returns a copy of the committed item with the given id.
func (s *Session) Item(id string) (grid.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Get(id)
}

// ContainerHeight returns the pixel height of the committed layout.
func (s *Session) ContainerHeight() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return grid.ContainerHeight(s.opts.Geometry(), s.snap.Layout())
}

// Position returns the pixel rectangle of the item with the given id.
func (s *Session) Position(id string) (grid.Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.snap.Get(id)
	if !ok {
		return grid.Position{}, false
	}
	return grid.CalcGridItemPosition(s.opts.Geometry(), it.X, it.Y, it.W, it.H), true
}

// ItemPolicy returns the effective interaction policy of an item.
func (s *Session) ItemPolicy(id string) (grid.ItemPolicy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.snap.Get(id)
	if !ok {
		return grid.ItemPolicy{}, false
	}
	return grid.ResolveItemPolicy(it, s.opts.Policy()), true
}

// Placeholder returns the placeholder of the active drag or resize.
func (s *Session) Placeholder() (Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.rect == nil {
		return Rect{}, false
	}
	return *s.active.rect, true
}

// Gesture returns the kind and item of the active gesture.
func (s *Session) Gesture() (GestureKind, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return "", "", false
	}
	return s.active.kind, s.active.id, true
}

// Origin returns the item as it was when the active gesture started.
func (s *Session) Origin() (grid.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return grid.Item{}, false
	}
	return s.active.old.Clone(), true
}

// SetDeclared replaces the declared element set and synchronizes the
// layout with it. While a gesture or drop is in progress the new set is
// stored and applied when the gesture ends.
func (s *Session) SetDeclared(ctx context.Context, declared []grid.Declaration) (grid.Layout, error) {
	for _, d := range declared {
		if err := errors.ValidateItemID(d.Key); err != nil {
			return nil, err
		}
	}
	return s.do(ctx, func() (grid.Layout, error) {
		s.declared = slices.Clone(declared)
		if s.busy() {
			s.resync = true
			return s.snap.Layout(), nil
		}
		s.commit(s.synchronize(s.snap.Layout()))
		return s.snap.Layout(), nil
	})
}

// SetLayout replaces the committed layout with l, synchronized with the
// declared set. It is deferred like SetDeclared while a gesture is active.
func (s *Session) SetLayout(ctx context.Context, l grid.Layout) (grid.Layout, error) {
	if err := grid.Validate(l, 0); err != nil {
		return nil, err
	}
	return s.do(ctx, func() (grid.Layout, error) {
		if s.busy() {
			s.logger.Debug("layout update ignored during gesture", "items", len(l))
			return s.snap.Layout(), nil
		}
		s.commit(s.synchronize(l))
		return s.snap.Layout(), nil
	})
}

// Insert declares it and adds it to the layout. Its position is a request:
// the result is synchronized and compacted like any other declaration.
func (s *Session) Insert(ctx context.Context, it grid.Item) (grid.Layout, error) {
	if err := grid.ValidateItem(it, 0); err != nil {
		return nil, err
	}
	return s.do(ctx, func() (grid.Layout, error) {
		if s.snap.Has(it.I) {
			return nil, errors.New(errors.ErrCodeInvalidLayout, "item %q already exists", it.I)
		}
		if s.busy() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "cannot insert during a gesture")
		}
		s.declared = append(s.declared, grid.Declaration{Key: it.I})
		s.commit(s.synchronize(append(s.snap.Layout(), it.Clone())))
		return s.snap.Layout(), nil
	})
}

// Remove drops the item with the given id from the layout and the
// declared set.
func (s *Session) Remove(ctx context.Context, id string) (grid.Layout, error) {
	return s.do(ctx, func() (grid.Layout, error) {
		if !s.snap.Has(id) {
			return nil, errors.New(errors.ErrCodeItemNotFound, "item %q not found", id)
		}
		if s.busy() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "cannot remove during a gesture")
		}
		s.declared = slices.DeleteFunc(s.declared, func(d grid.Declaration) bool { return d.Key == id })
		s.commit(s.synchronize(s.snap.Layout()))
		return s.snap.Layout(), nil
	})
}

// SetItemHeight records the measured height (in rows) of an auto-height
// item, pushes the items under its new bottom edge and compacts the layout.
// A measured height is never vetoed: when the item now covers a static item
// it is moved below it instead.
func (s *Session) SetItemHeight(ctx context.Context, id string, h int) (grid.Layout, error) {
	return s.do(ctx, func() (grid.Layout, error) {
		next, _, ok := s.snap.Update(id, func(it *grid.Item) { it.H = max(h, 1) })
		if !ok {
			return nil, errors.New(errors.ErrCodeItemNotFound, "item %q not found", id)
		}
		s.commit(s.settle(s.grow(next.Layout(), id)))
		return s.snap.Layout(), nil
	})
}

// grow resolves the collisions of an item that changed size in place.
func (s *Session) grow(l grid.Layout, id string) grid.Layout {
	mo := s.opts.MoveOptions(false)
	mo.PreventCollision = false
	if out, ok := grid.ResolveCollisions(l, id, mo); ok {
		return out
	}

	it, _ := grid.GetLayoutItem(l, id)
	for range len(l) {
		y := it.Y
		for _, c := range grid.GetAllCollisions(l, it) {
			if c.Static {
				y = max(y, c.Bottom())
			}
		}
		if y == it.Y {
			break
		}
		it.Y = y
	}
	if out, ok := grid.MoveItem(l, id, it.X, it.Y, mo); ok {
		return out
	}
	s.logger.Debug("could not make room for grown item", "id", id, "h", it.H)
	return l
}

// do runs fn under the lock and reports a pending change after unlocking.
func (s *Session) do(ctx context.Context, fn func() (grid.Layout, error)) (grid.Layout, error) {
	s.mu.Lock()
	out, err := fn()
	changed := s.pending
	s.pending = nil
	s.mu.Unlock()

	if changed != nil {
		observability.Session().OnLayoutChange(ctx, len(changed))
		if s.onChange != nil {
			s.onChange(changed)
		}
	}
	return out, err
}

// commit makes l the committed layout and queues a change report when it
// differs from the last reported layout.
func (s *Session) commit(l grid.Layout) {
	s.snap = grid.NewSnapshot(l)
	if grid.Equal(l, s.notified) {
		return
	}
	s.notified = grid.CloneLayout(l)
	s.pending = grid.CloneLayout(l)
}

// busy reports whether a gesture or external drop is in progress.
func (s *Session) busy() bool {
	return s.active != nil || s.dropping
}

func (s *Session) synchronize(l grid.Layout) grid.Layout {
	return grid.SynchronizeLayoutWithChildren(l, s.declared, s.opts.Cols, s.opts.EffectiveCompactType(), s.opts.AllowOverlap)
}

// settle compacts l unless overlap mode is on.
func (s *Session) settle(l grid.Layout) grid.Layout {
	if s.opts.AllowOverlap {
		return l
	}
	return grid.Compact(l, s.opts.EffectiveCompactType(), s.opts.Cols, false)
}

// endGesture clears gesture state and applies a deferred synchronization.
func (s *Session) endGesture() {
	s.active = nil
	if s.resync && !s.busy() {
		s.resync = false
		s.commit(s.synchronize(s.snap.Layout()))
	}
}
