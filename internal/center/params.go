package center

import (
	"math"

	"circle-center/internal/vote"
)

// DefaultMinRadius is the lower bound of the radius sweep when none is given.
const DefaultMinRadius = 10

// Params holds center estimation parameters.
type Params struct {
	// Radius sweep in pixels. MaxRadius <= 0 selects half the smaller grid
	// dimension, rounded.
	MinRadius int
	MaxRadius int

	// Minimum gradient magnitude for an edge pixel to vote.
	GradientEpsilon float64

	// Voting goroutines per estimate (1 = serial, <= 0 = one per CPU).
	// Also bounds concurrent estimates in EstimateBatch.
	Workers int

	// Return the accumulator in Result for diagnostic consumers.
	KeepAccumulator bool
}

// DefaultParams returns min radius 10, automatic max radius and serial voting.
func DefaultParams() Params {
	return Params{
		MinRadius:       DefaultMinRadius,
		MaxRadius:       0,
		GradientEpsilon: vote.DefaultGradientEpsilon,
		Workers:         1,
	}
}

// WithRadius returns a copy of params with a custom radius sweep.
func (p Params) WithRadius(minRadius, maxRadius int) Params {
	p.MinRadius = minRadius
	p.MaxRadius = maxRadius
	return p
}

// WithDiameterInches returns a copy of params whose radius sweep covers
// circles of the given physical diameters at the given DPI. A maxDiam of
// zero keeps the automatic upper bound.
func (p Params) WithDiameterInches(dpi, minDiam, maxDiam float64) Params {
	if dpi <= 0 {
		return p
	}
	p.MinRadius = max(1, int(minDiam*dpi/2))
	p.MaxRadius = 0
	if maxDiam > 0 {
		// Round up so the largest circle is inside the sweep.
		p.MaxRadius = max(p.MinRadius, int(math.Ceil(maxDiam*dpi/2)))
	}
	return p
}

// WithWorkers returns a copy of params using n voting goroutines.
func (p Params) WithWorkers(n int) Params {
	p.Workers = n
	return p
}

// WithEpsilon returns a copy of params with a custom gradient epsilon.
func (p Params) WithEpsilon(eps float64) Params {
	p.GradientEpsilon = eps
	return p
}

// WithAccumulator returns a copy of params that keeps (or drops) the
// accumulator in results.
func (p Params) WithAccumulator(keep bool) Params {
	p.KeepAccumulator = keep
	return p
}

func (p Params) voteParams() vote.Params {
	return vote.Params{
		GradientEpsilon: p.GradientEpsilon,
		Workers:         p.Workers,
	}
}
