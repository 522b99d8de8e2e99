// Package volume holds the numeric containers shared across the
// preprocessing pipeline: 2D pixel grids as decoded from single DICOM
// slices, and the 3D volumes assembled from them.
package volume

// Grid is a 2D pixel grid in row-major order.
type Grid struct {
	Data []float64
	Rows int
	Cols int
}

// NewGrid allocates a zero-filled rows x cols grid.
func NewGrid(rows, cols int) Grid {
	return Grid{
		Data: make([]float64, rows*cols),
		Rows: rows,
		Cols: cols,
	}
}

// At returns the value at row r, column c.
func (g Grid) At(r, c int) float64 {
	return g.Data[r*g.Cols+c]
}

// Set stores v at row r, column c.
func (g Grid) Set(r, c int, v float64) {
	g.Data[r*g.Cols+c] = v
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := Grid{Data: make([]float64, len(g.Data)), Rows: g.Rows, Cols: g.Cols}
	copy(out.Data, g.Data)
	return out
}
