package vision

import "fmt"

// BoundingBox is an inclusive cell rectangle within a RawGrid.
type BoundingBox struct {
	Left   int `json:"left"`
	Right  int `json:"right"`
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// Width returns the number of columns covered by the box.
func (b BoundingBox) Width() int { return b.Right - b.Left + 1 }

// Height returns the number of rows covered by the box.
func (b BoundingBox) Height() int { return b.Bottom - b.Top + 1 }

// Side returns the side length of a square box.
func (b BoundingBox) Side() int { return b.Width() }

// Square reports whether the box is as wide as it is tall.
func (b BoundingBox) Square() bool { return b.Right-b.Left == b.Bottom-b.Top }

// Within reports whether the box lies inside a grid of side n.
func (b BoundingBox) Within(n int) bool {
	return b.Left >= 0 && b.Left <= b.Right && b.Right < n &&
		b.Top >= 0 && b.Top <= b.Bottom && b.Bottom < n
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%d..%d]x[%d..%d]", b.Left, b.Right, b.Top, b.Bottom)
}

// TightBounds returns the smallest box containing every active cell, before
// any squaring.
func TightBounds(g *RawGrid) (BoundingBox, error) {
	left, ok := g.firstColumn(0, 1)
	if !ok {
		return BoundingBox{}, ErrEmptyInput
	}
	right, _ := g.firstColumn(g.n-1, -1)
	top, _ := g.firstRow(0, 1)
	bottom, _ := g.firstRow(g.n-1, -1)
	return BoundingBox{Left: left, Right: right, Top: top, Bottom: bottom}, nil
}

// FindBounds returns the smallest square box that contains every active cell
// and lies fully inside the grid.
//
// The tight box is first grown along its shorter axis; when the difference is
// odd the extra cell goes to the right or bottom. If growing pushed the box
// past an edge it is shifted back inside, keeping its size.
func FindBounds(g *RawGrid) (BoundingBox, error) {
	box, err := TightBounds(g)
	if err != nil {
		return BoundingBox{}, err
	}

	width := box.Width()
	height := box.Height()
	switch {
	case height > width:
		diff := height - width
		box.Left -= diff / 2
		box.Right += diff/2 + diff%2
	case width > height:
		diff := width - height
		box.Top -= diff / 2
		box.Bottom += diff/2 + diff%2
	}

	last := g.n - 1
	if box.Bottom > last {
		box.Top -= box.Bottom - last
		box.Bottom = last
	} else if box.Top < 0 {
		box.Bottom -= box.Top
		box.Top = 0
	}
	if box.Right > last {
		box.Left -= box.Right - last
		box.Right = last
	} else if box.Left < 0 {
		box.Right -= box.Left
		box.Left = 0
	}

	if !box.Square() || !box.Within(g.n) {
		return BoundingBox{}, fmt.Errorf("%w: %s in %dx%d grid", ErrInvalidBoxGeometry, box, g.n, g.n)
	}
	return box, nil
}

// Crop copies the square region described by box into a new grid. The box
// must be square and inside g.
func Crop(g *RawGrid, box BoundingBox) (*RawGrid, error) {
	if !box.Square() || !box.Within(g.n) {
		return nil, fmt.Errorf("%w: %s in %dx%d grid", ErrInvalidBoxGeometry, box, g.n, g.n)
	}
	side := box.Side()
	out := NewRawGrid(side)
	for col := 0; col < side; col++ {
		for row := 0; row < side; row++ {
			out.cells[col*side+row] = g.cells[(box.Left+col)*g.n+box.Top+row]
		}
	}
	return out, nil
}

// firstColumn scans whole columns starting at start and moving by step,
// returning the first column holding an active cell.
func (g *RawGrid) firstColumn(start, step int) (int, bool) {
	for col := start; col >= 0 && col < g.n; col += step {
		for row := 0; row < g.n; row++ {
			if g.cells[col*g.n+row] {
				return col, true
			}
		}
	}
	return 0, false
}

// firstRow is firstColumn for rows.
func (g *RawGrid) firstRow(start, step int) (int, bool) {
	for row := start; row >= 0 && row < g.n; row += step {
		for col := 0; col < g.n; col++ {
			if g.cells[col*g.n+row] {
				return row, true
			}
		}
	}
	return 0, false
}
