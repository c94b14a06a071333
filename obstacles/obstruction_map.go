// Package obstacles provides the static occupancy map that navigation is built from.
package obstacles

import (
	"errors"
	"fmt"
	"math"

	"quadnav/core"
)

var (
	// ErrEmptyGrid is returned for grids with zero rows or zero columns.
	ErrEmptyGrid = errors.New("obstacles: grid has zero extent")
	// ErrRaggedGrid is returned when rows have different lengths.
	ErrRaggedGrid = errors.New("obstacles: grid is not rectangular")
)

// ObstructionMap wraps a 2D occupancy grid and answers area obstruction
// queries. It is immutable after construction and safe for concurrent use.
type ObstructionMap struct {
	width, height int
	cells         []bool // row-major, true = obstructed

	// prefix is a summed-area table of obstructed cells with one extra
	// row and column of zeros, so any rectangle count is four lookups.
	prefix []int32
}

// New builds an ObstructionMap from rows of cells, true meaning obstructed.
// rows[y][x] addresses the cell at column x, row y.
func New(rows [][]bool) (*ObstructionMap, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}

	width, height := len(rows[0]), len(rows)
	cells := make([]bool, 0, width*height)
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRaggedGrid, y, len(row), width)
		}
		cells = append(cells, row...)
	}

	return newMap(width, height, cells), nil
}

// NewFromCells builds an ObstructionMap from a row-major cell slice.
func NewFromCells(width, height int, cells []bool) (*ObstructionMap, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyGrid
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf("%w: %d cells for a %dx%d grid", ErrRaggedGrid, len(cells), width, height)
	}
	return newMap(width, height, append([]bool(nil), cells...)), nil
}

func newMap(width, height int, cells []bool) *ObstructionMap {
	m := &ObstructionMap{
		width:  width,
		height: height,
		cells:  cells,
		prefix: make([]int32, (width+1)*(height+1)),
	}

	stride := width + 1
	for y := 0; y < height; y++ {
		var rowSum int32
		for x := 0; x < width; x++ {
			if cells[y*width+x] {
				rowSum++
			}
			m.prefix[(y+1)*stride+x+1] = m.prefix[y*stride+x+1] + rowSum
		}
	}
	return m
}

// Width returns the number of columns.
func (m *ObstructionMap) Width() int { return m.width }

// Height returns the number of rows.
func (m *ObstructionMap) Height() int { return m.height }

// Bounds returns the rectangle covered by the grid.
func (m *ObstructionMap) Bounds() core.Rect {
	return core.Rect{X1: 0, Y1: 0, X2: float64(m.width), Y2: float64(m.height)}
}

// Blocked reports whether a single cell is obstructed. Cells outside the
// grid count as obstructed.
func (m *ObstructionMap) Blocked(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return true
	}
	return m.cells[y*m.width+x]
}

// Obstruction classifies the cells covered by rect. The rectangle is clipped
// to whole cells inside the grid; an empty clipped area is Blocked since
// nothing in it can be traversed.
func (m *ObstructionMap) Obstruction(rect core.Rect) core.Obstruction {
	x0, y0, x1, y1 := m.clip(rect)
	if x1 <= x0 || y1 <= y0 {
		return core.Blocked
	}

	total := int32((x1 - x0) * (y1 - y0))
	switch blocked := m.count(x0, y0, x1, y1); blocked {
	case 0:
		return core.Free
	case total:
		return core.Blocked
	default:
		return core.Partial
	}
}

// clip converts rect into half-open cell bounds inside the grid.
func (m *ObstructionMap) clip(rect core.Rect) (x0, y0, x1, y1 int) {
	x0 = clampInt(int(math.Floor(rect.X1)), 0, m.width)
	y0 = clampInt(int(math.Floor(rect.Y1)), 0, m.height)
	x1 = clampInt(int(math.Ceil(rect.X2)), 0, m.width)
	y1 = clampInt(int(math.Ceil(rect.Y2)), 0, m.height)
	return
}

func (m *ObstructionMap) count(x0, y0, x1, y1 int) int32 {
	stride := m.width + 1
	return m.prefix[y1*stride+x1] - m.prefix[y0*stride+x1] -
		m.prefix[y1*stride+x0] + m.prefix[y0*stride+x0]
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
