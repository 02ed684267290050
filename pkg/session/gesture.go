package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
	"github.com/matzehuels/stackgrid/pkg/observability"
)

// =============================================================================
// Drag
// =============================================================================

// DragStart begins dragging the item with the given id and returns its
// placeholder.
func (s *Session) DragStart(ctx context.Context, id string) (Rect, error) {
	var rect Rect
	_, err := s.do(ctx, func() (grid.Layout, error) {
		it, err := s.begin(GestureDrag, id)
		if err != nil {
			return nil, err
		}
		rect = placeholder(it, GestureDrag)
		s.active.rect = &rect
		return nil, nil
	})
	if err != nil {
		return Rect{}, err
	}
	observability.Session().OnGesture(ctx, string(GestureDrag), "start")
	return rect, nil
}

// Drag moves the dragged item to the cell (x, y), displacing the items it
// lands on, and commits the settled layout. A vetoed step keeps the layout.
func (s *Session) Drag(ctx context.Context, id string, x, y int) (grid.Layout, error) {
	out, err := s.do(ctx, func() (grid.Layout, error) {
		if err := s.expect(GestureDrag, id); err != nil {
			return nil, err
		}
		return s.moveTo(ctx, id, x, y), nil
	})
	if err == nil {
		observability.Session().OnGesture(ctx, string(GestureDrag), "move")
	}
	return out, err
}

// DragPx moves the dragged item to the cell under the pixel offset
// (top, left) relative to the container.
func (s *Session) DragPx(ctx context.Context, id string, top, left float64) (grid.Layout, error) {
	it, ok := s.Item(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeItemNotFound, "item %q not found", id)
	}
	opts := s.Options()
	cell := grid.CalcXY(opts.Geometry(), top, left, it.W, it.H)
	return s.Drag(ctx, id, cell.X, cell.Y)
}

// DragStop applies the final position of the drag and ends the gesture.
func (s *Session) DragStop(ctx context.Context, id string, x, y int) (grid.Layout, error) {
	out, err := s.do(ctx, func() (grid.Layout, error) {
		if err := s.expect(GestureDrag, id); err != nil {
			return nil, err
		}
		out := s.moveTo(ctx, id, x, y)
		s.endGesture()
		return out, nil
	})
	if err == nil {
		observability.Session().OnGesture(ctx, string(GestureDrag), "stop")
	}
	return out, err
}

// moveTo runs one move step for id and commits the settled result.
func (s *Session) moveTo(ctx context.Context, id string, x, y int) grid.Layout {
	start := time.Now()
	it, _ := s.snap.Get(id)
	pol := grid.ResolveItemPolicy(it, s.opts.Policy())
	if pol.Bounded {
		x = max(min(x, s.opts.Cols-it.W), 0)
		if s.opts.MaxRows > 0 {
			y = min(y, s.opts.MaxRows-it.H)
		}
		y = max(y, 0)
	}

	moved, ok := grid.MoveItem(s.snap.Layout(), id, x, y, s.opts.MoveOptions(true))
	displaced := 0
	for _, m := range moved {
		if m.Moved && m.I != id {
			displaced++
		}
	}
	observability.Engine().OnMove(ctx, s.opts.EffectiveCompactType().String(), displaced, !ok, time.Since(start))
	if !ok {
		s.logger.Debug("move vetoed", "id", id, "x", x, "y", y)
		return s.snap.Layout()
	}

	s.commit(s.settle(moved))
	if placed, ok := s.snap.Get(id); ok && s.active != nil && s.active.rect != nil {
		r := placeholder(placed, s.active.kind)
		s.active.rect = &r
	}
	return s.snap.Layout()
}

// =============================================================================
// Resize
// =============================================================================

// ResizeStart begins resizing the item with the given id.
func (s *Session) ResizeStart(ctx context.Context, id string) (Rect, error) {
	var rect Rect
	_, err := s.do(ctx, func() (grid.Layout, error) {
		it, err := s.begin(GestureResize, id)
		if err != nil {
			return nil, err
		}
		rect = placeholder(it, GestureResize)
		s.active.rect = &rect
		return nil, nil
	})
	if err != nil {
		return Rect{}, err
	}
	observability.Session().OnGesture(ctx, string(GestureResize), "start")
	return rect, nil
}

// Resize changes the size of the resized item to w x h, anchored on
// handle. An empty handle selects the item's first handle. Handles the item
// does not offer are rejected with INVALID_HANDLE.
func (s *Session) Resize(ctx context.Context, id string, w, h int, handle string) (grid.Layout, error) {
	out, err := s.do(ctx, func() (grid.Layout, error) {
		if err := s.expect(GestureResize, id); err != nil {
			return nil, err
		}
		it, _ := s.snap.Get(id)
		pol := grid.ResolveItemPolicy(it, s.opts.Policy())

		var rh grid.ResizeHandle
		switch {
		case handle == "" && len(pol.ResizeHandles) > 0:
			rh = pol.ResizeHandles[0]
		case handle == "":
			rh = grid.HandleSE
		default:
			var ok bool
			rh, ok = grid.ParseResizeHandle(handle)
			if !ok || !pol.HasHandle(rh) {
				return nil, errors.New(errors.ErrCodeInvalidHandle, "item %q has no %q resize handle", id, handle)
			}
		}

		start := time.Now()
		resized, placed, ok := grid.ResizeElement(s.snap.Layout(), id, w, h, s.opts.ResizeOptions(rh))
		observability.Engine().OnResize(ctx, string(rh), !ok, time.Since(start))
		if !ok {
			s.logger.Debug("resize vetoed", "id", id, "w", w, "h", h, "handle", rh)
			return s.snap.Layout(), nil
		}
		r := placeholder(placed, GestureResize)
		s.active.rect = &r
		s.commit(s.settle(resized))
		return s.snap.Layout(), nil
	})
	if err == nil {
		observability.Session().OnGesture(ctx, string(GestureResize), "move")
	}
	return out, err
}

// ResizeStop compacts the layout and ends the resize.
func (s *Session) ResizeStop(ctx context.Context, id string) (grid.Layout, error) {
	out, err := s.do(ctx, func() (grid.Layout, error) {
		if err := s.expect(GestureResize, id); err != nil {
			return nil, err
		}
		s.commit(s.settle(s.snap.Layout()))
		s.endGesture()
		return s.snap.Layout(), nil
	})
	if err == nil {
		observability.Session().OnGesture(ctx, string(GestureResize), "stop")
	}
	return out, err
}

// =============================================================================
// External drop
// =============================================================================

// DragEnter counts a pointer entering the container during an external drag.
func (s *Session) DragEnter(ctx context.Context) {
	s.mu.Lock()
	s.dragEnter++
	s.mu.Unlock()
	observability.Session().OnGesture(ctx, string(GestureDrop), "enter")
}

// DragLeave counts a pointer leaving the container. When every enter has
// been matched the dropping placeholder is removed.
func (s *Session) DragLeave(ctx context.Context) (grid.Layout, error) {
	out, err := s.do(ctx, func() (grid.Layout, error) {
		s.dragEnter = max(s.dragEnter-1, 0)
		if s.dragEnter == 0 {
			s.removeDropping()
		}
		return s.snap.Layout(), nil
	})
	observability.Session().OnGesture(ctx, string(GestureDrop), "leave")
	return out, err
}

// DropOver places or moves the dropping placeholder under the pixel offset
// (top, left). The first call inserts the configured dropping item with
// override applied; later calls move it like a drag.
func (s *Session) DropOver(ctx context.Context, top, left float64, override *grid.ItemPatch) (grid.Layout, error) {
	return s.do(ctx, func() (grid.Layout, error) {
		if s.active != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s of %q in progress", s.active.kind, s.active.id)
		}
		id := s.opts.DroppingItem.I
		geo := s.opts.Geometry()

		if !s.dropping {
			it := s.opts.DroppingItem.Clone()
			override.Apply(&it)
			it.I = id
			it.W = max(min(it.W, s.opts.Cols), 1)
			it.H = max(it.H, 1)
			it.Static = false
			it.IsDraggable = grid.Bool(true)
			cell := grid.CalcXY(geo, top, left, it.W, it.H)

			// Park the item below the content so the move resolves
			// collisions at the target.
			it.X, it.Y = cell.X, grid.Bottom(s.snap.Layout())
			s.snap = s.snap.Put(it)
			s.dropping = true
			s.dropSource = it.Clone()
			s.dropTop, s.dropLeft = top, left
			observability.Session().OnGesture(ctx, string(GestureDrop), "start")
			return s.moveDropping(ctx, cell.X, cell.Y), nil
		}

		if top == s.dropTop && left == s.dropLeft {
			return s.snap.Layout(), nil
		}
		s.dropTop, s.dropLeft = top, left
		it, _ := s.snap.Get(id)
		cell := grid.CalcXY(geo, top, left, it.W, it.H)
		observability.Session().OnGesture(ctx, string(GestureDrop), "move")
		return s.moveDropping(ctx, cell.X, cell.Y), nil
	})
}

// DropLeave removes the dropping placeholder, as when the drag source
// refuses the drop target.
func (s *Session) DropLeave(ctx context.Context) (grid.Layout, error) {
	return s.do(ctx, func() (grid.Layout, error) {
		s.dragEnter = 0
		s.removeDropping()
		return s.snap.Layout(), nil
	})
}

// Drop completes an external drop. It removes the placeholder and returns
// the item at the place it was dropped, under a fresh id. The item is not
// added to the layout; pass it to Insert to keep it. ok is false when no
// drop was in progress.
func (s *Session) Drop(ctx context.Context) (it grid.Item, ok bool, err error) {
	_, err = s.do(ctx, func() (grid.Layout, error) {
		if !s.dropping {
			return nil, nil
		}
		placed, found := s.snap.Get(s.opts.DroppingItem.I)
		s.dragEnter = 0
		s.removeDropping()
		if !found {
			return nil, nil
		}
		placed.I = uuid.NewString()
		placed.Moved = false
		it, ok = placed, true
		return nil, nil
	})
	if ok {
		observability.Session().OnGesture(ctx, string(GestureDrop), "drop")
		s.logger.Debug("dropped item", "id", it.I, "x", it.X, "y", it.Y, "w", it.W, "h", it.H)
	}
	return it, ok, err
}

func (s *Session) moveDropping(ctx context.Context, x, y int) grid.Layout {
	id := s.opts.DroppingItem.I
	moved, ok := grid.MoveItem(s.snap.Layout(), id, x, y, s.opts.MoveOptions(true))
	if !ok {
		// Target refused; keep the parked item.
		s.commit(s.settle(s.snap.Layout()))
		return s.snap.Layout()
	}
	s.commit(s.settle(moved))
	return s.snap.Layout()
}

// removeDropping deletes the dropping placeholder and compacts.
func (s *Session) removeDropping() {
	if !s.dropping {
		return
	}
	s.dropping = false
	if next, ok := s.snap.Delete(s.opts.DroppingItem.I); ok {
		s.snap = next
	}
	s.commit(s.settle(s.snap.Layout()))
	s.endGesture()
}

// =============================================================================
// Helpers
// =============================================================================

// begin validates a gesture start and records it.
func (s *Session) begin(kind GestureKind, id string) (grid.Item, error) {
	if s.busy() {
		return grid.Item{}, errors.New(errors.ErrCodeInvalidInput, "another gesture is in progress")
	}
	it, ok := s.snap.Get(id)
	if !ok {
		return grid.Item{}, errors.New(errors.ErrCodeItemNotFound, "item %q not found", id)
	}
	pol := grid.ResolveItemPolicy(it, s.opts.Policy())
	switch {
	case kind == GestureDrag && !pol.Draggable:
		return grid.Item{}, errors.New(errors.ErrCodeNotDraggable, "item %q is not draggable", id)
	case kind == GestureResize && !pol.Resizable:
		return grid.Item{}, errors.New(errors.ErrCodeNotResizable, "item %q is not resizable", id)
	}
	s.active = &gesture{kind: kind, id: id, old: it.Clone()}
	return it, nil
}

// expect checks that a gesture of kind is active on id.
func (s *Session) expect(kind GestureKind, id string) error {
	if s.active == nil || s.active.kind != kind || s.active.id != id {
		return errors.New(errors.ErrCodeNoActiveGesture, "no %s in progress for %q", kind, id)
	}
	if !s.snap.Has(id) {
		s.active = nil
		return errors.New(errors.ErrCodeItemNotFound, "item %q not found", id)
	}
	return nil
}

func placeholder(it grid.Item, from GestureKind) Rect {
	return Rect{I: it.I, X: it.X, Y: it.Y, W: it.W, H: it.H, From: from}
}
