package gradebook

import (
	"fmt"
	"strconv"

	"github.com/karac38/gdevapps-portal/pkg/errors"
)

// Grid is a dense maxRows x maxCols view over a ragged range of cell values.
// Positions beyond the original data read as "".
type Grid struct {
	cells   [][]string
	lengths []int
	rows    int
}

// Normalize copies rows into a Grid of exactly maxRows x maxCols cells.
// Input larger than the bounds violates the sheet schema and is rejected
// with ErrSchemaBounds; it is never truncated.
func Normalize(rows [][]interface{}, maxRows, maxCols int) (*Grid, error) {
	if len(rows) > maxRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", errors.ErrSchemaBounds, len(rows), maxRows)
	}

	g := &Grid{
		cells:   make([][]string, maxRows),
		lengths: make([]int, maxRows),
		rows:    len(rows),
	}
	for r := 0; r < maxRows; r++ {
		g.cells[r] = make([]string, maxCols)
	}

	for r, row := range rows {
		if len(row) > maxCols {
			return nil, fmt.Errorf("%w: row %d has %d columns, limit %d", errors.ErrSchemaBounds, r, len(row), maxCols)
		}
		for c, v := range row {
			g.cells[r][c] = Stringify(v)
		}
		g.lengths[r] = len(row)
	}

	return g, nil
}

// Cell returns the text at (r, c), or "" outside the grid.
func (g *Grid) Cell(r, c int) string {
	if r < 0 || r >= len(g.cells) || c < 0 || c >= len(g.cells[r]) {
		return ""
	}
	return g.cells[r][c]
}

// MaxRows and MaxCols report the declared bounds.
func (g *Grid) MaxRows() int { return len(g.cells) }

func (g *Grid) MaxCols() int {
	if len(g.cells) == 0 {
		return 0
	}
	return len(g.cells[0])
}

// DataRows is the number of rows present in the original input.
func (g *Grid) DataRows() int { return g.rows }

// RowLen is the populated length of row r in the original input.
func (g *Grid) RowLen(r int) int {
	if r < 0 || r >= len(g.lengths) {
		return 0
	}
	return g.lengths[r]
}

// Stringify renders a cell value returned by the Sheets API as text.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
