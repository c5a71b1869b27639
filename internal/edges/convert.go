// Package edges provides OpenCV-backed edge and gradient sources that feed
// the voting pipeline, plus conversions between grids and gocv Mats.
package edges

import (
	"fmt"
	"math"

	"circle-center/internal/grid"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// GridToMat converts an intensity grid to an 8-bit single channel Mat.
// Values are rounded and clamped to [0, 255]. The caller must Close it.
func GridToMat(g *grid.IntensityGrid) gocv.Mat {
	m := gocv.NewMatWithSize(g.Height, g.Width, gocv.MatTypeCV8U)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			m.SetUCharAt(y, x, clampByte(g.At(x, y)))
		}
	}
	return m
}

// MatToGrid converts an 8-bit single channel Mat to an intensity grid.
func MatToGrid(m gocv.Mat) (*grid.IntensityGrid, error) {
	if m.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	if m.Channels() != 1 {
		return nil, fmt.Errorf("expected single channel image, got %d channels", m.Channels())
	}
	g := grid.NewIntensityGrid(m.Cols(), m.Rows())
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			g.Set(x, y, float64(m.GetUCharAt(y, x)))
		}
	}
	return g, nil
}

// matToDense copies a CV_64F single channel Mat into a gonum matrix.
func matToDense(m gocv.Mat) *mat.Dense {
	rows, cols := m.Rows(), m.Cols()
	d := mat.NewDense(rows, cols, nil)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			d.Set(y, x, m.GetDoubleAt(y, x))
		}
	}
	return d
}

// accumulatorToMat copies vote counts into a CV_64F Mat.
func accumulatorToMat(acc *grid.Accumulator) gocv.Mat {
	m := gocv.NewMatWithSize(acc.Height, acc.Width, gocv.MatTypeCV64F)
	for y := 0; y < acc.Height; y++ {
		for x, v := range acc.Row(y) {
			m.SetDoubleAt(y, x, float64(v))
		}
	}
	return m
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
