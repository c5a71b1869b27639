package vote

import (
	"fmt"
	"math"

	"circle-center/pkg/geometry"
)

// RadiusRange is the inclusive interval of radii swept along each normal.
type RadiusRange struct {
	Min int `json:"min_radius"`
	Max int `json:"max_radius"`
}

// DefaultMaxRadius returns half the smaller grid dimension, rounded.
func DefaultMaxRadius(size geometry.Size) int {
	return int(math.Round(0.5 * float64(size.MinDim())))
}

// RadiusRangeFor resolves a radius range for a grid. A maxRadius of zero or
// less means unspecified and selects DefaultMaxRadius. The result is
// validated.
func RadiusRangeFor(size geometry.Size, minRadius, maxRadius int) (RadiusRange, error) {
	if maxRadius <= 0 {
		maxRadius = DefaultMaxRadius(size)
	}
	rr := RadiusRange{Min: minRadius, Max: maxRadius}
	if err := rr.Validate(); err != nil {
		return RadiusRange{}, err
	}
	return rr, nil
}

// Validate checks 1 <= Min <= Max. A Max larger than the grid is allowed;
// those votes simply land outside and are dropped.
func (r RadiusRange) Validate() error {
	if r.Min < 1 || r.Max < r.Min {
		return &InvalidRadiusRangeError{Min: r.Min, Max: r.Max}
	}
	return nil
}

// Steps returns the number of radii in the sweep.
func (r RadiusRange) Steps() int {
	return r.Max - r.Min + 1
}

func (r RadiusRange) String() string {
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}
