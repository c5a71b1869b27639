package edges

import (
	"fmt"

	"circle-center/internal/grid"

	"gocv.io/x/gocv"
)

// Canny hysteresis thresholds used unless configured otherwise. They change
// voting density materially, so callers should record what they use.
const (
	DefaultCannyLow  = 50
	DefaultCannyHigh = 150
)

// DefaultSobelKernel is the Sobel aperture used unless configured otherwise.
const DefaultSobelKernel = 5

// Canny produces a binary edge mask with OpenCV's hysteresis edge detector.
type Canny struct {
	Low  float32 // lower hysteresis threshold
	High float32 // upper hysteresis threshold
}

// DefaultCanny returns a Canny source with thresholds 50 / 150.
func DefaultCanny() Canny {
	return Canny{Low: DefaultCannyLow, High: DefaultCannyHigh}
}

// Edges runs Canny on the grid (converted to 8-bit) and marks every
// non-zero output pixel as an edge.
func (c Canny) Edges(g *grid.IntensityGrid) (*grid.EdgeMask, error) {
	if c.Low < 0 || c.High < c.Low {
		return nil, fmt.Errorf("invalid canny thresholds: low=%g high=%g", c.Low, c.High)
	}

	src := GridToMat(g)
	defer src.Close()

	out := gocv.NewMat()
	defer out.Close()
	gocv.Canny(src, &out, c.Low, c.High)

	mask := grid.NewEdgeMask(g.Width, g.Height)
	for y := 0; y < out.Rows(); y++ {
		for x := 0; x < out.Cols(); x++ {
			if out.GetUCharAt(y, x) != 0 {
				mask.Set(x, y, true)
			}
		}
	}
	return mask, nil
}

// Sobel produces a gradient field with OpenCV's Sobel operator.
type Sobel struct {
	KernelSize int // aperture: 1, 3, 5 or 7
}

// DefaultSobel returns a Sobel source with a 5x5 kernel.
func DefaultSobel() Sobel {
	return Sobel{KernelSize: DefaultSobelKernel}
}

// Gradient computes (gx, gy) in double precision.
func (s Sobel) Gradient(g *grid.IntensityGrid) (*grid.GradientField, error) {
	switch s.KernelSize {
	case 1, 3, 5, 7:
	default:
		return nil, fmt.Errorf("invalid sobel kernel size %d (want 1, 3, 5 or 7)", s.KernelSize)
	}

	src := GridToMat(g)
	defer src.Close()

	dx := gocv.NewMat()
	defer dx.Close()
	gocv.Sobel(src, &dx, gocv.MatTypeCV64F, 1, 0, s.KernelSize, 1, 0, gocv.BorderDefault)

	dy := gocv.NewMat()
	defer dy.Close()
	gocv.Sobel(src, &dy, gocv.MatTypeCV64F, 0, 1, s.KernelSize, 1, 0, gocv.BorderDefault)

	field, err := grid.GradientFromDense(matToDense(dx), matToDense(dy))
	if err != nil {
		return nil, fmt.Errorf("sobel output: %w", err)
	}
	return field, nil
}
