package grid

import (
	"math"
	"testing"
)

func defaultGeometry() Geometry {
	return Geometry{
		Cols:           12,
		Margin:         [2]float64{10, 10},
		RowHeight:      150,
		ContainerWidth: 1200,
	}
}

func TestColWidth(t *testing.T) {
	g := defaultGeometry()
	if got, want := g.ColWidth(), (1200.0-110-20)/12; math.Abs(got-want) > 1e-9 {
		t.Errorf("ColWidth() = %v, want %v", got, want)
	}

	g.ContainerPadding = &[2]float64{0, 0}
	if got, want := g.ColWidth(), (1200.0-110)/12; math.Abs(got-want) > 1e-9 {
		t.Errorf("ColWidth() without padding = %v, want %v", got, want)
	}

	if (Geometry{}).ColWidth() != 0 {
		t.Error("ColWidth() with zero cols should be 0")
	}
}

func TestCalcXY(t *testing.T) {
	bounded := defaultGeometry()
	bounded.MaxRows = 4

	tests := []struct {
		name      string
		g         Geometry
		top, left float64
		w, h      int
		want      Cell
	}{
		{"origin", defaultGeometry(), 0, 0, 1, 1, Cell{0, 0}},
		{"second cell", defaultGeometry(), 170, 109, 1, 1, Cell{1, 1}},
		{"rounds to nearest", defaultGeometry(), 250, 160, 1, 1, Cell{2, 2}},
		{"negative offsets", defaultGeometry(), -400, -400, 1, 1, Cell{0, 0}},
		{"right edge keeps width inside", defaultGeometry(), 0, 5000, 3, 1, Cell{9, 0}},
		{"unbounded rows", defaultGeometry(), 16000, 0, 1, 1, Cell{0, 100}},
		{"max rows", bounded, 16000, 0, 1, 2, Cell{0, 2}},
		{"taller than max rows", bounded, 500, 0, 1, 6, Cell{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalcXY(tt.g, tt.top, tt.left, tt.w, tt.h); got != tt.want {
				t.Errorf("CalcXY() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCalcGridItemPosition(t *testing.T) {
	g := defaultGeometry()
	got := CalcGridItemPosition(g, 1, 1, 2, 1)
	want := Position{Top: 170, Left: 109, Width: 188, Height: 150}
	if got != want {
		t.Errorf("CalcGridItemPosition() = %+v, want %+v", got, want)
	}

	// Round trip: the pixel origin of a cell maps back to that cell.
	for _, c := range []Cell{{0, 0}, {3, 2}, {11, 7}} {
		p := CalcGridItemPosition(g, c.X, c.Y, 1, 1)
		if back := CalcXY(g, p.Top, p.Left, 1, 1); back != c {
			t.Errorf("CalcXY(CalcGridItemPosition(%v)) = %v", c, back)
		}
	}
}

func TestCalcWH(t *testing.T) {
	g := defaultGeometry()
	g.MaxRows = 5

	tests := []struct {
		name          string
		width, height float64
		x, y          int
		want          Size
	}{
		{"one cell", 89, 150, 0, 0, Size{1, 1}},
		{"two by two", 188, 310, 0, 0, Size{2, 2}},
		{"clamped to columns", 5000, 150, 10, 0, Size{2, 1}},
		{"clamped to rows", 89, 5000, 0, 3, Size{1, 2}},
		{"zero", 0, 0, 0, 0, Size{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalcWH(g, tt.width, tt.height, tt.x, tt.y); got != tt.want {
				t.Errorf("CalcWH() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestContainerHeight(t *testing.T) {
	g := defaultGeometry()
	if got := ContainerHeight(g, nil); got != 20 {
		t.Errorf("ContainerHeight(empty) = %v, want 20", got)
	}
	l := Layout{item("a", 0, 0, 1, 2)}
	if got := ContainerHeight(g, l); got != 330 {
		t.Errorf("ContainerHeight() = %v, want 330", got)
	}
}
