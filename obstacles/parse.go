package obstacles

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrBadCell is returned by Parse for characters that are not map cells.
var ErrBadCell = errors.New("obstacles: unknown map cell")

// Parse reads an ASCII occupancy map, one row per line. '#', 'X' and '1'
// are obstructed; '.', '0' and ' ' are free. Trailing blank lines are ignored.
func Parse(r io.Reader) (*ObstructionMap, error) {
	var rows [][]bool

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimRight(scanner.Text(), "\r")
		row := make([]bool, 0, len(text))
		for col, ch := range text {
			switch ch {
			case '#', 'X', '1':
				row = append(row, true)
			case '.', '0', ' ':
				row = append(row, false)
			default:
				return nil, fmt.Errorf("%w %q at line %d, column %d", ErrBadCell, ch, line, col+1)
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading map: %w", err)
	}

	for len(rows) > 0 && len(rows[len(rows)-1]) == 0 {
		rows = rows[:len(rows)-1]
	}
	return New(rows)
}

// String renders the map in the format accepted by Parse.
func (m *ObstructionMap) String() string {
	var b strings.Builder
	b.Grow((m.width + 1) * m.height)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.cells[y*m.width+x] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
