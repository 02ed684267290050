package grid

import "math"

// Geometry describes how grid units map to pixels.
type Geometry struct {
	Cols           int        `json:"cols"`
	Margin         [2]float64 `json:"margin"`
	RowHeight      float64    `json:"rowHeight"`
	ContainerWidth float64    `json:"containerWidth"`
	// ContainerPadding defaults to Margin when nil.
	ContainerPadding *[2]float64 `json:"containerPadding,omitempty"`
	// MaxRows bounds the grid height; 0 means unbounded.
	MaxRows int `json:"maxRows,omitempty"`
}

// Cell is a grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a size in grid units.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// Position is a pixel rectangle relative to the container.
type Position struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Padding returns the effective container padding.
func (g Geometry) Padding() [2]float64 {
	if g.ContainerPadding != nil {
		return *g.ContainerPadding
	}
	return g.Margin
}

// ColWidth returns the pixel width of one column.
func (g Geometry) ColWidth() float64 {
	if g.Cols <= 0 {
		return 0
	}
	pad := g.Padding()
	return (g.ContainerWidth - g.Margin[0]*float64(g.Cols-1) - 2*pad[0]) / float64(g.Cols)
}

// CalcXY converts a pixel offset (top, left) into the grid cell an item of
// size w x h would snap to. The result is clamped to x in [0, cols-w] and
// y in [0, maxRows-h] (unbounded below when MaxRows is 0).
func CalcXY(g Geometry, top, left float64, w, h int) Cell {
	pad := g.Padding()
	x := round((left - pad[0]) / (g.ColWidth() + g.Margin[0]))
	y := round((top - pad[1]) / (g.RowHeight + g.Margin[1]))

	x = max(min(x, g.Cols-w), 0)
	if g.MaxRows > 0 {
		y = min(y, g.MaxRows-h)
	}
	return Cell{X: x, Y: max(y, 0)}
}

// CalcGridItemWHPx returns the pixel length of units grid cells of the given
// size, including the margins between them.
func CalcGridItemWHPx(units int, cellSize, margin float64) float64 {
	return math.Round(cellSize*float64(units) + float64(max(0, units-1))*margin)
}

// CalcGridItemPosition returns the pixel rectangle of the grid rectangle
// (x, y, w, h).
func CalcGridItemPosition(g Geometry, x, y, w, h int) Position {
	pad := g.Padding()
	colWidth := g.ColWidth()
	return Position{
		Top:    math.Round((g.RowHeight+g.Margin[1])*float64(y) + pad[1]),
		Left:   math.Round((colWidth+g.Margin[0])*float64(x) + pad[0]),
		Width:  CalcGridItemWHPx(w, colWidth, g.Margin[0]),
		Height: CalcGridItemWHPx(h, g.RowHeight, g.Margin[1]),
	}
}

// CalcWH converts a pixel size into grid units for an item at (x, y). The
// result is clamped to [0, cols-x] and, when rows are bounded,
// [0, maxRows-y].
func CalcWH(g Geometry, width, height float64, x, y int) Size {
	w := round((width + g.Margin[0]) / (g.ColWidth() + g.Margin[0]))
	h := round((height + g.Margin[1]) / (g.RowHeight + g.Margin[1]))

	w = max(min(w, g.Cols-x), 0)
	if g.MaxRows > 0 {
		h = min(h, g.MaxRows-y)
	}
	return Size{W: w, H: max(h, 0)}
}

// ContainerHeight returns the pixel height needed to show every row of l.
func ContainerHeight(g Geometry, l Layout) float64 {
	pad := g.Padding()
	rows := Bottom(l)
	if rows == 0 {
		return 2 * pad[1]
	}
	return float64(rows)*g.RowHeight + float64(rows-1)*g.Margin[1] + 2*pad[1]
}

// round rounds half up, so a pointer exactly between two cells snaps to the
// later one.
func round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v + 0.5))
}
