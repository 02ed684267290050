package session

import (
	"context"
	"testing"

	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
	"github.com/matzehuels/stackgrid/pkg/pipeline"
)

func itemAt(id string, x, y, w, h int) grid.Item {
	return grid.Item{I: id, X: x, Y: y, W: w, H: h}
}

func mustNew(t *testing.T, l grid.Layout, opts pipeline.Options, options ...Option) *Session {
	t.Helper()
	s, err := New(l, nil, opts, options...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func pos(t *testing.T, s *Session, id string) [2]int {
	t.Helper()
	it, ok := s.Item(id)
	if !ok {
		t.Fatalf("item %q missing", id)
	}
	return [2]int{it.X, it.Y}
}

func wantCode(t *testing.T, err error, code errors.Code) {
	t.Helper()
	if got := errors.GetCode(err); got != code {
		t.Errorf("error code = %q, want %q (%v)", got, code, err)
	}
}

func TestNewSettlesWithoutReporting(t *testing.T) {
	calls := 0
	s := mustNew(t, grid.Layout{itemAt("a", 0, 2, 1, 1)}, pipeline.Options{},
		WithOnLayoutChange(func(grid.Layout) { calls++ }))

	if p := pos(t, s, "a"); p != [2]int{0, 0} {
		t.Errorf("a = %v, want compacted to (0,0)", p)
	}
	if calls != 0 {
		t.Errorf("construction reported %d changes", calls)
	}
}

func TestNewRejectsInvalidInput(t *testing.T) {
	if _, err := New(grid.Layout{itemAt("", 0, 0, 1, 1)}, nil, pipeline.Options{}); err == nil {
		t.Error("empty id should be rejected")
	}
	if _, err := New(nil, nil, pipeline.Options{CompactType: "sideways"}); err == nil {
		t.Error("invalid options should be rejected")
	}
}

func TestDragGesture(t *testing.T) {
	ctx := context.Background()
	var changes []grid.Layout
	s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 1), itemAt("b", 0, 1, 1, 1)}, pipeline.Options{},
		WithOnLayoutChange(func(l grid.Layout) { changes = append(changes, l) }))

	rect, err := s.DragStart(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if rect != (Rect{I: "a", X: 0, Y: 0, W: 1, H: 1, From: GestureDrag}) {
		t.Errorf("placeholder = %+v", rect)
	}
	if kind, id, ok := s.Gesture(); !ok || kind != GestureDrag || id != "a" {
		t.Errorf("Gesture = %v %q %v", kind, id, ok)
	}

	if _, err := s.Drag(ctx, "a", 0, 1); err != nil {
		t.Fatal(err)
	}
	if a, b := pos(t, s, "a"), pos(t, s, "b"); a != [2]int{0, 1} || b != [2]int{0, 0} {
		t.Errorf("after drag a=%v b=%v, want (0,1) (0,0)", a, b)
	}
	if r, ok := s.Placeholder(); !ok || r.Y != 1 {
		t.Errorf("placeholder should follow the item, got %+v %v", r, ok)
	}
	if old, ok := s.Origin(); !ok || old.Y != 0 {
		t.Errorf("Origin = %+v %v, want a at y=0", old, ok)
	}

	if _, err := s.DragStop(ctx, "a", 0, 1); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := s.Gesture(); ok {
		t.Error("gesture still active after DragStop")
	}
	if _, ok := s.Placeholder(); ok {
		t.Error("placeholder still shown after DragStop")
	}
	if len(changes) != 1 {
		t.Errorf("reported %d changes, want 1", len(changes))
	}
}

func TestDragErrors(t *testing.T) {
	ctx := context.Background()
	st := itemAt("s", 2, 0, 1, 1)
	st.Static = true
	s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 1), st}, pipeline.Options{})

	_, err := s.DragStart(ctx, "s")
	wantCode(t, err, errors.ErrCodeNotDraggable)

	_, err = s.DragStart(ctx, "nope")
	wantCode(t, err, errors.ErrCodeItemNotFound)

	_, err = s.Drag(ctx, "a", 1, 1)
	wantCode(t, err, errors.ErrCodeNoActiveGesture)

	if _, err := s.DragStart(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	_, err = s.ResizeStart(ctx, "a")
	wantCode(t, err, errors.ErrCodeInvalidInput)

	locked := mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 1)}, pipeline.Options{IsDraggable: grid.Bool(false)})
	_, err = locked.DragStart(ctx, "a")
	wantCode(t, err, errors.ErrCodeNotDraggable)
}

func TestDragOntoStaticIsVetoed(t *testing.T) {
	ctx := context.Background()
	st := itemAt("s", 0, 1, 1, 1)
	st.Static = true
	s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 1), st}, pipeline.Options{})

	before := s.Layout()
	if _, err := s.DragStart(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	out, err := s.Drag(ctx, "a", 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !grid.Equal(before, out) {
		t.Errorf("vetoed drag changed the layout:\n%s", grid.Diff(before, out))
	}
}

func TestDragPx(t *testing.T) {
	ctx := context.Background()
	s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 1)}, pipeline.Options{})
	if _, err := s.DragStart(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.DragPx(ctx, "a", 170, 109); err != nil {
		t.Fatal(err)
	}
	// Cell (1,1), then compacted to row 0.
	if p := pos(t, s, "a"); p != [2]int{1, 0} {
		t.Errorf("a = %v, want (1,0)", p)
	}
}

func TestBoundedDrag(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		bounded bool
		want    [2]int
	}{
		{"unbounded", false, [2]int{11, 10}},
		{"bounded", true, [2]int{11, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := pipeline.Options{CompactType: "none", MaxRows: 3, IsBounded: tt.bounded}
			s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 1)}, opts)
			if _, err := s.DragStart(ctx, "a"); err != nil {
				t.Fatal(err)
			}
			if _, err := s.DragStop(ctx, "a", 20, 10); err != nil {
				t.Fatal(err)
			}
			if p := pos(t, s, "a"); p != tt.want {
				t.Errorf("a = %v, want %v", p, tt.want)
			}
		})
	}
}

func TestResizeGesture(t *testing.T) {
	ctx := context.Background()
	s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 1), itemAt("b", 0, 1, 1, 1)}, pipeline.Options{})

	if _, err := s.ResizeStart(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Resize(ctx, "a", 1, 2, ""); err != nil {
		t.Fatal(err)
	}
	a, _ := s.Item("a")
	if a.H != 2 || pos(t, s, "b") != [2]int{0, 2} {
		t.Errorf("a.h=%d b=%v, want 2 (0,2)", a.H, pos(t, s, "b"))
	}
	if r, ok := s.Placeholder(); !ok || r.From != GestureResize || r.H != 2 {
		t.Errorf("placeholder = %+v %v", r, ok)
	}

	_, err := s.Resize(ctx, "a", 1, 3, "n")
	wantCode(t, err, errors.ErrCodeInvalidHandle)

	if _, err := s.ResizeStop(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	_, err = s.Resize(ctx, "a", 1, 1, "")
	wantCode(t, err, errors.ErrCodeNoActiveGesture)
}

func TestResizeWithoutCompactionPushesNeighbour(t *testing.T) {
	ctx := context.Background()
	s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 1), itemAt("b", 2, 0, 1, 1)},
		pipeline.Options{Cols: 12, CompactType: "none"})

	if _, err := s.ResizeStart(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Resize(ctx, "a", 3, 1, "se"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ResizeStop(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if pairs := grid.Overlaps(s.Layout()); len(pairs) != 0 {
		t.Errorf("overlapping pairs: %v", pairs)
	}
	if p := pos(t, s, "b"); p != [2]int{2, 1} {
		t.Errorf("b = %v, want (2,1)", p)
	}
}

func TestResizeNotResizable(t *testing.T) {
	s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 1)}, pipeline.Options{IsResizable: grid.Bool(false)})
	_, err := s.ResizeStart(context.Background(), "a")
	wantCode(t, err, errors.ErrCodeNotResizable)
}

func TestSetDeclaredDeferredDuringGesture(t *testing.T) {
	ctx := context.Background()
	s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 1), itemAt("b", 1, 0, 1, 1)}, pipeline.Options{})

	if _, err := s.DragStart(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	out, err := s.SetDeclared(ctx, grid.Keys("a"))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Errorf("declaration applied during gesture: %v", out)
	}
	if _, err := s.DragStop(ctx, "a", 0, 0); err != nil {
		t.Fatal(err)
	}
	if got := grid.IDs(s.Layout()); len(got) != 1 || got[0] != "a" {
		t.Errorf("after gesture ids = %v, want [a]", got)
	}
}

func TestSetDeclaredAddsBelowContent(t *testing.T) {
	s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 2, 2)}, pipeline.Options{})
	out, err := s.SetDeclared(context.Background(), grid.Keys("a", "b"))
	if err != nil {
		t.Fatal(err)
	}
	b, ok := grid.GetLayoutItem(out, "b")
	if !ok || b.Y != 2 || b.W != 1 || b.H != 1 {
		t.Errorf("b = %+v %v, want 1x1 at row 2", b, ok)
	}
}

func TestExternalDrop(t *testing.T) {
	ctx := context.Background()
	s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 2, 1)}, pipeline.Options{})

	s.DragEnter(ctx)
	out, err := s.DropOver(ctx, 10, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	d, ok := grid.GetLayoutItem(out, pipeline.DroppingItemID)
	if !ok || d.X != 0 || d.Y != 0 {
		t.Fatalf("dropping item = %+v %v, want at (0,0)", d, ok)
	}
	if p := pos(t, s, "a"); p != [2]int{0, 1} {
		t.Errorf("a = %v, want pushed to (0,1)", p)
	}

	// Same pointer position is a no-op.
	if _, err := s.DropOver(ctx, 10, 10, nil); err != nil {
		t.Fatal(err)
	}

	it, ok, err := s.Drop(ctx)
	if err != nil || !ok {
		t.Fatalf("Drop = %v %v", ok, err)
	}
	if len(it.I) != 36 || it.X != 0 || it.Y != 0 || it.W != 1 || it.H != 1 {
		t.Errorf("dropped item = %+v", it)
	}
	l := s.Layout()
	if len(l) != 1 || pos(t, s, "a") != [2]int{0, 0} {
		t.Errorf("after drop layout = %v, want only a at (0,0)", l)
	}

	if _, err := s.Insert(ctx, it); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Item(it.I); !ok {
		t.Error("inserted item missing")
	}
	if _, _, ok := s.Gesture(); ok {
		t.Error("gesture active after drop")
	}
}

func TestDropOverride(t *testing.T) {
	ctx := context.Background()
	s := mustNew(t, nil, pipeline.Options{})
	out, err := s.DropOver(ctx, 10, 10, &grid.ItemPatch{W: grid.Int(3), H: grid.Int(2)})
	if err != nil {
		t.Fatal(err)
	}
	d, ok := grid.GetLayoutItem(out, pipeline.DroppingItemID)
	if !ok || d.W != 3 || d.H != 2 {
		t.Errorf("dropping item = %+v %v, want 3x2", d, ok)
	}
}

func TestDragLeaveCountsEnters(t *testing.T) {
	ctx := context.Background()
	s := mustNew(t, nil, pipeline.Options{})

	s.DragEnter(ctx)
	s.DragEnter(ctx)
	if _, err := s.DropOver(ctx, 10, 10, nil); err != nil {
		t.Fatal(err)
	}
	out, _ := s.DragLeave(ctx)
	if len(out) != 1 {
		t.Errorf("placeholder removed while the pointer is still inside: %v", out)
	}
	out, _ = s.DragLeave(ctx)
	if len(out) != 0 {
		t.Errorf("placeholder kept after the last leave: %v", out)
	}
	if _, ok, _ := s.Drop(ctx); ok {
		t.Error("Drop after leave should report no drop")
	}
}

func TestSetItemHeight(t *testing.T) {
	s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 1), itemAt("b", 0, 1, 1, 1)}, pipeline.Options{})
	if _, err := s.SetItemHeight(context.Background(), "a", 3); err != nil {
		t.Fatal(err)
	}
	if p := pos(t, s, "b"); p != [2]int{0, 3} {
		t.Errorf("b = %v, want (0,3)", p)
	}
	_, err := s.SetItemHeight(context.Background(), "zz", 3)
	wantCode(t, err, errors.ErrCodeItemNotFound)
}

func TestSetItemHeightMakesRoom(t *testing.T) {
	st := itemAt("s", 0, 2, 1, 1)
	st.Static = true

	tests := []struct {
		name string
		l    grid.Layout
		opts pipeline.Options
		want map[string][2]int
	}{
		{
			name: "without compaction",
			l:    grid.Layout{itemAt("a", 0, 0, 1, 1), itemAt("b", 0, 1, 1, 1)},
			opts: pipeline.Options{CompactType: "none"},
			want: map[string][2]int{"a": {0, 0}, "b": {0, 3}},
		},
		{
			name: "static below",
			l:    grid.Layout{itemAt("a", 0, 0, 1, 1), st, itemAt("b", 1, 0, 1, 1)},
			opts: pipeline.Options{},
			want: map[string][2]int{"a": {0, 3}, "s": {0, 2}, "b": {1, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustNew(t, tt.l, tt.opts)
			if _, err := s.SetItemHeight(context.Background(), "a", 3); err != nil {
				t.Fatal(err)
			}
			if a, _ := s.Item("a"); a.H != 3 {
				t.Errorf("a.h = %d, want 3", a.H)
			}
			for id, want := range tt.want {
				if p := pos(t, s, id); p != want {
					t.Errorf("%s = %v, want %v", id, p, want)
				}
			}
			if pairs := grid.Overlaps(s.Layout()); len(pairs) != 0 {
				t.Errorf("overlapping pairs: %v", pairs)
			}
		})
	}
}

func TestInsertAndRemove(t *testing.T) {
	ctx := context.Background()
	s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 1)}, pipeline.Options{})

	if _, err := s.Insert(ctx, itemAt("b", 0, 0, 1, 1)); err != nil {
		t.Fatal(err)
	}
	if len(s.Layout()) != 2 || len(grid.Overlaps(s.Layout())) != 0 {
		t.Errorf("insert left %v", s.Layout())
	}
	_, err := s.Insert(ctx, itemAt("b", 0, 0, 1, 1))
	wantCode(t, err, errors.ErrCodeInvalidLayout)

	if _, err := s.Remove(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Item("a"); ok {
		t.Error("a still present")
	}
	_, err = s.Remove(ctx, "a")
	wantCode(t, err, errors.ErrCodeItemNotFound)
}

func TestChangeCallbackMayReenter(t *testing.T) {
	var s *Session
	heights := 0.0
	s = mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 2)}, pipeline.Options{},
		WithOnLayoutChange(func(grid.Layout) { heights = s.ContainerHeight() }))

	if _, err := s.SetItemHeight(context.Background(), "a", 1); err != nil {
		t.Fatal(err)
	}
	if heights != 170 {
		t.Errorf("ContainerHeight from callback = %v, want 170", heights)
	}
}

func TestContainerHeightAndPolicy(t *testing.T) {
	st := itemAt("s", 1, 0, 1, 1)
	st.Static = true
	s := mustNew(t, grid.Layout{itemAt("a", 0, 0, 1, 2), st}, pipeline.Options{})

	if h := s.ContainerHeight(); h != 330 {
		t.Errorf("ContainerHeight = %v, want 330", h)
	}
	if p, ok := s.ItemPolicy("s"); !ok || p.Draggable || p.Resizable {
		t.Errorf("static policy = %+v %v", p, ok)
	}
	if p, ok := s.Position("a"); !ok || p.Height != 310 {
		t.Errorf("Position = %+v %v, want height 310", p, ok)
	}
}
