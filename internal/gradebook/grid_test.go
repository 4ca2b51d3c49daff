package gradebook_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karac38/gdevapps-portal/internal/gradebook"
	perrors "github.com/karac38/gdevapps-portal/pkg/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		rows    [][]interface{}
		maxRows int
		maxCols int
	}{
		{name: "empty input", rows: nil, maxRows: 3, maxCols: 4},
		{name: "ragged rows", rows: [][]interface{}{{"a"}, {}, {"b", 2.5, nil}}, maxRows: 5, maxCols: 4},
		{name: "exact fit", rows: [][]interface{}{{1.0, 2.0}, {3.0, 4.0}}, maxRows: 2, maxCols: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := gradebook.Normalize(tt.rows, tt.maxRows, tt.maxCols)
			require.NoError(t, err)

			assert.Equal(t, tt.maxRows, g.MaxRows())
			assert.Equal(t, tt.maxCols, g.MaxCols())
			assert.Equal(t, len(tt.rows), g.DataRows())

			for r := 0; r < tt.maxRows; r++ {
				for c := 0; c < tt.maxCols; c++ {
					want := ""
					if r < len(tt.rows) && c < len(tt.rows[r]) {
						want = gradebook.Stringify(tt.rows[r][c])
					}
					assert.Equal(t, want, g.Cell(r, c), "cell %d,%d", r, c)
				}
			}
		})
	}
}

func TestNormalizeKeepsRowLengths(t *testing.T) {
	g, err := gradebook.Normalize([][]interface{}{{"a", "b", "c"}, {"d"}}, 4, 5)
	require.NoError(t, err)

	assert.Equal(t, 3, g.RowLen(0))
	assert.Equal(t, 1, g.RowLen(1))
	assert.Equal(t, 0, g.RowLen(3))
	assert.Equal(t, "", g.Cell(10, 10))
	assert.Equal(t, "", g.Cell(-1, 0))
}

func TestNormalizeRejectsOversizedInput(t *testing.T) {
	_, err := gradebook.Normalize([][]interface{}{{"a"}, {"b"}, {"c"}}, 2, 5)
	assert.True(t, errors.Is(err, perrors.ErrSchemaBounds))

	_, err = gradebook.Normalize([][]interface{}{{"a", "b", "c"}}, 2, 2)
	assert.True(t, errors.Is(err, perrors.ErrSchemaBounds))
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{8.0, "8"},
		{0.85, "0.85"},
		{-3.5, "-3.5"},
		{12, "12"},
		{int64(7), "7"},
		{true, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gradebook.Stringify(tt.in))
	}
}
