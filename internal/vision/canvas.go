package vision

// Canvas is a mutable drawing surface. It is the only place a grid is
// mutated; classification always works on a Snapshot.
type Canvas struct {
	grid *RawGrid
}

// NewCanvas creates a blank canvas of side n.
func NewCanvas(n int) *Canvas {
	return &Canvas{grid: NewRawGrid(n)}
}

// Size returns the side length of the canvas.
func (c *Canvas) Size() int {
	return c.grid.Size()
}

// Plot sets a single cell.
func (c *Canvas) Plot(col, row int, on bool) {
	c.grid.Set(col, row, on)
}

// Paint applies the brush at (col, row): the cell itself plus its four
// orthogonal neighbours. Neighbour coordinates are clamped into the canvas,
// so a brush at an edge repaints the edge cell instead of falling off.
func (c *Canvas) Paint(col, row int, on bool) {
	if !c.grid.inBounds(col, row) {
		return
	}
	c.grid.Set(col, row, on)
	c.grid.Set(c.clamp(col+1), row, on)
	c.grid.Set(c.clamp(col-1), row, on)
	c.grid.Set(col, c.clamp(row+1), on)
	c.grid.Set(col, c.clamp(row-1), on)
}

func (c *Canvas) clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > c.grid.n-1 {
		return c.grid.n - 1
	}
	return v
}

// Clear erases the canvas.
func (c *Canvas) Clear() {
	for i := range c.grid.cells {
		c.grid.cells[i] = false
	}
}

// Empty reports whether nothing is drawn.
func (c *Canvas) Empty() bool {
	return c.grid.Empty()
}

// Snapshot captures the current drawing. It returns NoBoard when the canvas
// is blank, otherwise a Board holding a private copy of the grid.
func (c *Canvas) Snapshot() Snapshot {
	if c.grid.Empty() {
		return NoBoard{}
	}
	return Board{grid: c.grid.Clone()}
}

// Snapshot is either NoBoard or Board.
type Snapshot interface {
	snapshot()
}

// NoBoard means there is nothing to classify.
type NoBoard struct{}

func (NoBoard) snapshot() {}

// Board is a captured, non-empty drawing.
type Board struct {
	grid *RawGrid
}

func (Board) snapshot() {}

// NewBoard captures a copy of g. It fails with ErrEmptyInput when g has no
// active cell.
func NewBoard(g *RawGrid) (Board, error) {
	if g == nil || g.Empty() {
		return Board{}, ErrEmptyInput
	}
	return Board{grid: g.Clone()}, nil
}

// Grid returns a copy of the captured grid.
func (b Board) Grid() *RawGrid {
	if b.grid == nil {
		return NewRawGrid(0)
	}
	return b.grid.Clone()
}

// Size returns the side length of the captured grid.
func (b Board) Size() int {
	if b.grid == nil {
		return 0
	}
	return b.grid.n
}
