package vision

import "gonum.org/v1/gonum/floats"

// ProximalSize is the side length of the simplified grid.
const ProximalSize = 5

// ProximalGrid is the 5x5 simplification of a drawing, indexed [col][row].
// Values are usually in [0, 1] but can exceed 1 for dense strokes.
type ProximalGrid [ProximalSize][ProximalSize]float64

// At returns the activation of one cell.
func (p ProximalGrid) At(col, row int) float64 {
	return p[col][row]
}

// Total returns the summed activation of the grid.
func (p ProximalGrid) Total() float64 {
	var total float64
	for col := range p {
		total += floats.Sum(p[col][:])
	}
	return total
}

// Rows returns the grid row by row, top row first. Handy for JSON output.
func (p ProximalGrid) Rows() [][]float64 {
	rows := make([][]float64, ProximalSize)
	for row := 0; row < ProximalSize; row++ {
		rows[row] = make([]float64, ProximalSize)
		for col := 0; col < ProximalSize; col++ {
			rows[row][col] = p[col][row]
		}
	}
	return rows
}

// MarshalJSON encodes the grid as rows, top row first.
func (p ProximalGrid) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Rows())
}

// neighbourScore maps an active cell's active-neighbour count to its
// contribution. Isolated cells count for little, cells inside a thick
// stroke count for more than one.
var neighbourScore = [9]float64{0.05, 0.3, 0.7, 0.8, 0.9, 1.0, 1.1, 1.15, 1.3}

// normalization divides each band sum so that a filled band lands near 1.
const normalization = 1.44

// Band is a contiguous run of source rows or columns feeding one output
// cell.
type Band struct {
	Offset int `json:"offset"`
	Width  int `json:"width"`
}

// Bands splits a side of length s into five bands. The first s%5 bands are
// one cell wider so that every row and column is used exactly once.
func Bands(s int) [ProximalSize]Band {
	var bands [ProximalSize]Band
	step := s / ProximalSize
	rem := s % ProximalSize
	offset := 0
	for i := range bands {
		width := step
		if i < rem {
			width++
		}
		bands[i] = Band{Offset: offset, Width: width}
		offset += width
	}
	return bands
}

// Downsample reduces a square region to a ProximalGrid.
//
// Every active cell in a band contributes neighbourScore[k], where k counts
// its active neighbours inside region (cells outside region are inactive).
// The sum is divided by the band area times 1.44. When the side is not a
// multiple of five the bands differ in width, so off-diagonal cells are w×h
// rectangles rather than squares and use w·h as their area. Regions narrower
// than five cells produce empty bands, which stay at zero.
func Downsample(region *RawGrid) ProximalGrid {
	var p ProximalGrid
	bands := Bands(region.n)
	for i, cb := range bands {
		for j, rb := range bands {
			area := cb.Width * rb.Width
			if area == 0 {
				continue
			}
			var total float64
			for col := cb.Offset; col < cb.Offset+cb.Width; col++ {
				for row := rb.Offset; row < rb.Offset+rb.Width; row++ {
					if region.cells[col*region.n+row] {
						total += neighbourScore[region.activeNeighbours(col, row)]
					}
				}
			}
			p[i][j] = total / (float64(area) * normalization)
		}
	}
	return p
}

// activeNeighbours counts active cells among the eight around (col, row).
func (g *RawGrid) activeNeighbours(col, row int) int {
	count := 0
	for dc := -1; dc <= 1; dc++ {
		for dr := -1; dr <= 1; dr++ {
			if dc == 0 && dr == 0 {
				continue
			}
			if g.At(col+dc, row+dr) {
				count++
			}
		}
	}
	return count
}
