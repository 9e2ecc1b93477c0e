package vision

import (
	"fmt"
	"strings"
)

// DefaultResolution is the side length of the drawing surface in cells.
const DefaultResolution = 50

// RawGrid is a square boolean bitmap addressed as (col, row) from the
// top-left corner. Cells are stored column-major.
type RawGrid struct {
	n     int
	cells []bool
}

// NewRawGrid returns an all-inactive grid of side n. A non-positive n yields
// an empty 0x0 grid.
func NewRawGrid(n int) *RawGrid {
	if n < 0 {
		n = 0
	}
	return &RawGrid{n: n, cells: make([]bool, n*n)}
}

// ParseRawGrid builds a grid from text rows, top row first. The characters
// '#', '1', 'X', 'x' and '*' mark active cells; anything else is inactive.
// Every row must have as many characters (not bytes) as there are rows.
func ParseRawGrid(rows []string) (*RawGrid, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("grid has no rows")
	}
	g := NewRawGrid(n)
	for row, line := range rows {
		cells := []rune(line)
		if len(cells) != n {
			return nil, fmt.Errorf("row %d has %d cells, want %d", row, len(cells), n)
		}
		for col, c := range cells {
			switch c {
			case '#', '1', 'X', 'x', '*':
				g.Set(col, row, true)
			}
		}
	}
	return g, nil
}

// Size returns the side length of the grid.
func (g *RawGrid) Size() int {
	return g.n
}

func (g *RawGrid) inBounds(col, row int) bool {
	return col >= 0 && col < g.n && row >= 0 && row < g.n
}

// At reports whether the cell is active. Cells outside the grid are inactive.
func (g *RawGrid) At(col, row int) bool {
	if !g.inBounds(col, row) {
		return false
	}
	return g.cells[col*g.n+row]
}

// Set changes a single cell. Out-of-range coordinates are ignored.
func (g *RawGrid) Set(col, row int, on bool) {
	if !g.inBounds(col, row) {
		return
	}
	g.cells[col*g.n+row] = on
}

// Clone returns an independent copy of the grid.
func (g *RawGrid) Clone() *RawGrid {
	c := &RawGrid{n: g.n, cells: make([]bool, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Active returns the number of active cells.
func (g *RawGrid) Active() int {
	count := 0
	for _, on := range g.cells {
		if on {
			count++
		}
	}
	return count
}

// Empty reports whether no cell is active.
func (g *RawGrid) Empty() bool {
	for _, on := range g.cells {
		if on {
			return false
		}
	}
	return true
}

// Rows renders the grid as text rows using '#' and '.'.
func (g *RawGrid) Rows() []string {
	rows := make([]string, g.n)
	var b strings.Builder
	for row := 0; row < g.n; row++ {
		b.Reset()
		for col := 0; col < g.n; col++ {
			if g.At(col, row) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		rows[row] = b.String()
	}
	return rows
}

func (g *RawGrid) String() string {
	return strings.Join(g.Rows(), "\n")
}
