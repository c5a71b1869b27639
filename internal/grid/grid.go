// Package grid provides the fixed-size pixel grids shared by the voting
// pipeline: intensity input, edge mask, gradient field and vote accumulator.
//
// Grids are indexed (x, y) with x the column and y the row. None of them
// can be resized after creation.
package grid

import (
	"fmt"

	"circle-center/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// DimensionMismatchError reports a grid whose size differs from the grid it
// must be paired with.
type DimensionMismatchError struct {
	What string
	Want geometry.Size
	Got  geometry.Size
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s dimensions %s do not match %s", e.What, e.Got, e.Want)
}

// CheckSameSize returns a *DimensionMismatchError if got differs from want.
func CheckSameSize(what string, want, got geometry.Size) error {
	if want != got {
		return &DimensionMismatchError{What: what, Want: want, Got: got}
	}
	return nil
}

// IntensityGrid holds scalar brightness values. It is owned by the caller
// and never mutated by the voting pipeline.
type IntensityGrid struct {
	Width  int
	Height int
	data   *mat.Dense
}

// NewIntensityGrid creates a zero-filled intensity grid.
func NewIntensityGrid(width, height int) *IntensityGrid {
	return &IntensityGrid{
		Width:  width,
		Height: height,
		data:   mat.NewDense(height, width, nil),
	}
}

// IntensityFromDense wraps an existing matrix (rows = height, cols = width).
func IntensityFromDense(m *mat.Dense) *IntensityGrid {
	rows, cols := m.Dims()
	return &IntensityGrid{Width: cols, Height: rows, data: m}
}

// At returns the intensity at (x, y).
func (g *IntensityGrid) At(x, y int) float64 {
	return g.data.At(y, x)
}

// Set stores the intensity at (x, y).
func (g *IntensityGrid) Set(x, y int, v float64) {
	g.data.Set(y, x, v)
}

// Size returns the grid dimensions.
func (g *IntensityGrid) Size() geometry.Size {
	return geometry.NewSize(g.Width, g.Height)
}

// Dense returns the backing matrix. Callers must treat it as read-only.
func (g *IntensityGrid) Dense() *mat.Dense {
	return g.data
}

// EdgeMask marks candidate boundary pixels.
type EdgeMask struct {
	Width  int
	Height int
	cells  []bool
}

// NewEdgeMask creates an all-false mask.
func NewEdgeMask(width, height int) *EdgeMask {
	return &EdgeMask{
		Width:  width,
		Height: height,
		cells:  make([]bool, geometry.NewSize(width, height).Area()),
	}
}

// At reports whether (x, y) is an edge pixel.
func (m *EdgeMask) At(x, y int) bool {
	return m.cells[y*m.Width+x]
}

// Set marks or clears (x, y).
func (m *EdgeMask) Set(x, y int, edge bool) {
	m.cells[y*m.Width+x] = edge
}

// Count returns the number of edge pixels.
func (m *EdgeMask) Count() int {
	n := 0
	for _, c := range m.cells {
		if c {
			n++
		}
	}
	return n
}

// Size returns the mask dimensions.
func (m *EdgeMask) Size() geometry.Size {
	return geometry.NewSize(m.Width, m.Height)
}

// GradientField holds the per-pixel gradient (gx, gy) as two matrices.
type GradientField struct {
	GX *mat.Dense
	GY *mat.Dense
}

// NewGradientField creates a zero gradient field.
func NewGradientField(width, height int) *GradientField {
	return &GradientField{
		GX: mat.NewDense(height, width, nil),
		GY: mat.NewDense(height, width, nil),
	}
}

// GradientFromDense pairs two component matrices into a field.
func GradientFromDense(gx, gy *mat.Dense) (*GradientField, error) {
	xr, xc := gx.Dims()
	yr, yc := gy.Dims()
	if err := CheckSameSize("gradient y component", geometry.NewSize(xc, xr), geometry.NewSize(yc, yr)); err != nil {
		return nil, err
	}
	return &GradientField{GX: gx, GY: gy}, nil
}

// At returns the gradient vector at (x, y).
func (f *GradientField) At(x, y int) (gx, gy float64) {
	return f.GX.At(y, x), f.GY.At(y, x)
}

// Set stores the gradient vector at (x, y).
func (f *GradientField) Set(x, y int, gx, gy float64) {
	f.GX.Set(y, x, gx)
	f.GY.Set(y, x, gy)
}

// Size returns the field dimensions.
func (f *GradientField) Size() geometry.Size {
	rows, cols := f.GX.Dims()
	return geometry.NewSize(cols, rows)
}
