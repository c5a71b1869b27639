package grid

import (
	"circle-center/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// Accumulator is a grid of vote counts. Cells only ever increase while a
// voting pass is running.
type Accumulator struct {
	Width  int
	Height int
	votes  []int32
}

// NewAccumulator creates a zero-filled accumulator.
func NewAccumulator(width, height int) *Accumulator {
	return &Accumulator{
		Width:  width,
		Height: height,
		votes:  make([]int32, geometry.NewSize(width, height).Area()),
	}
}

// At returns the vote count at (x, y).
func (a *Accumulator) At(x, y int) int {
	return int(a.votes[y*a.Width+x])
}

// Add casts a single vote for (x, y).
func (a *Accumulator) Add(x, y int) {
	a.votes[y*a.Width+x]++
}

// Row returns the vote counts of row y. The slice aliases the accumulator.
func (a *Accumulator) Row(y int) []int32 {
	return a.votes[y*a.Width : (y+1)*a.Width]
}

// Merge adds every cell of other into a. Both must have the same size.
func (a *Accumulator) Merge(other *Accumulator) error {
	if err := CheckSameSize("accumulator", a.Size(), other.Size()); err != nil {
		return err
	}
	for i, v := range other.votes {
		a.votes[i] += v
	}
	return nil
}

// Max returns the largest vote count.
func (a *Accumulator) Max() int {
	var best int32
	for _, v := range a.votes {
		if v > best {
			best = v
		}
	}
	return int(best)
}

// Total returns the sum of all votes.
func (a *Accumulator) Total() int {
	total := 0
	for _, v := range a.votes {
		total += int(v)
	}
	return total
}

// Equal reports whether both accumulators have the same size and counts.
func (a *Accumulator) Equal(other *Accumulator) bool {
	if a.Size() != other.Size() {
		return false
	}
	for i, v := range a.votes {
		if other.votes[i] != v {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (a *Accumulator) Clone() *Accumulator {
	c := NewAccumulator(a.Width, a.Height)
	copy(c.votes, a.votes)
	return c
}

// Size returns the accumulator dimensions.
func (a *Accumulator) Size() geometry.Size {
	return geometry.NewSize(a.Width, a.Height)
}

// Dense exports the vote counts as a float matrix for diagnostic consumers.
func (a *Accumulator) Dense() *mat.Dense {
	data := make([]float64, len(a.votes))
	for i, v := range a.votes {
		data[i] = float64(v)
	}
	return mat.NewDense(a.Height, a.Width, data)
}
