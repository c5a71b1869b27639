package vote

import "runtime"

// DefaultGradientEpsilon is the smallest gradient magnitude treated as a
// reliable normal direction.
const DefaultGradientEpsilon = 1e-5

// Params controls a voting pass.
type Params struct {
	// Edge pixels whose gradient magnitude is below this do not vote.
	GradientEpsilon float64

	// Number of voting goroutines. 1 votes serially; 0 or less uses one
	// worker per CPU.
	Workers int
}

// DefaultParams returns serial voting with the default epsilon.
func DefaultParams() Params {
	return Params{
		GradientEpsilon: DefaultGradientEpsilon,
		Workers:         1,
	}
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

// workerCount resolves the effective number of workers for rows of work.
func (p Params) workerCount(rows int) int {
	n := p.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > rows {
		n = rows
	}
	if n < 1 {
		n = 1
	}
	return n
}
