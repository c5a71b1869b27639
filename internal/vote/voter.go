// Package vote implements normal-intersection voting for circle centers and
// the accumulator peak search.
//
// Every edge pixel with a usable gradient projects candidate centers along
// its normal, in both directions, for each radius of the sweep. Normals of a
// near-circular boundary converge near the true center, so the accumulator
// cell with the most votes is the center estimate.
package vote

import (
	"fmt"
	"math"

	"circle-center/internal/grid"

	"golang.org/x/sync/errgroup"
)

// Stats summarises one voting pass.
type Stats struct {
	EdgePixels   int `json:"edge_pixels"`   // edge pixels seen in the mask
	VotingPixels int `json:"voting_pixels"` // edge pixels with a usable normal
	WeakGradient int `json:"weak_gradient"` // edge pixels skipped for |g| < epsilon
	VotesCast    int `json:"votes_cast"`    // votes that landed inside the grid
	VotesDropped int `json:"votes_dropped"` // candidate centers outside the grid
}

func (s *Stats) add(o Stats) {
	s.EdgePixels += o.EdgePixels
	s.VotingPixels += o.VotingPixels
	s.WeakGradient += o.WeakGradient
	s.VotesCast += o.VotesCast
	s.VotesDropped += o.VotesDropped
}

// Voter casts votes from an edge mask and gradient field.
type Voter struct {
	Params Params
}

// NewVoter creates a voter with the given parameters.
func NewVoter(params Params) *Voter {
	return &Voter{Params: params}
}

// Vote runs one voting pass and returns the populated accumulator.
func (v *Voter) Vote(mask *grid.EdgeMask, field *grid.GradientField, rr RadiusRange) (*grid.Accumulator, error) {
	acc, _, err := v.VoteWithStats(mask, field, rr)
	return acc, err
}

// VoteWithStats is Vote that also reports how the votes were distributed.
// The radius range and dimensions are checked before any allocation.
func (v *Voter) VoteWithStats(mask *grid.EdgeMask, field *grid.GradientField, rr RadiusRange) (*grid.Accumulator, Stats, error) {
	if err := rr.Validate(); err != nil {
		return nil, Stats{}, err
	}
	if err := grid.CheckSameSize("gradient field", mask.Size(), field.Size()); err != nil {
		return nil, Stats{}, err
	}

	workers := v.Params.workerCount(mask.Height)
	if workers == 1 {
		acc := grid.NewAccumulator(mask.Width, mask.Height)
		stats := v.voteRows(acc, mask, field, rr, 0, mask.Height)
		return acc, stats, nil
	}

	// Each band votes into a private accumulator; the element-wise sum is
	// identical to a serial pass regardless of scheduling.
	rowsPerWorker := (mask.Height + workers - 1) / workers
	partials := make([]*grid.Accumulator, workers)
	partStats := make([]Stats, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		startY := w * rowsPerWorker
		endY := min(startY+rowsPerWorker, mask.Height)
		if startY >= endY {
			break
		}
		g.Go(func() error {
			acc := grid.NewAccumulator(mask.Width, mask.Height)
			partStats[w] = v.voteRows(acc, mask, field, rr, startY, endY)
			partials[w] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	acc := grid.NewAccumulator(mask.Width, mask.Height)
	var stats Stats
	for w, part := range partials {
		if part == nil {
			continue
		}
		if err := acc.Merge(part); err != nil {
			return nil, Stats{}, fmt.Errorf("reduce worker %d: %w", w, err)
		}
		stats.add(partStats[w])
	}
	return acc, stats, nil
}

// voteRows casts the votes of every edge pixel in rows [startY, endY).
func (v *Voter) voteRows(acc *grid.Accumulator, mask *grid.EdgeMask, field *grid.GradientField, rr RadiusRange, startY, endY int) Stats {
	var stats Stats
	eps := v.Params.GradientEpsilon
	size := acc.Size()

	for y := startY; y < endY; y++ {
		for x := 0; x < mask.Width; x++ {
			if !mask.At(x, y) {
				continue
			}
			stats.EdgePixels++

			gx, gy := field.At(x, y)
			mag := math.Sqrt(gx*gx + gy*gy)
			if mag < eps {
				stats.WeakGradient++
				continue
			}
			stats.VotingPixels++
			nx, ny := gx/mag, gy/mag

			for _, dir := range [2]float64{-1, 1} {
				for r := rr.Min; r <= rr.Max; r++ {
					step := dir * float64(r)
					// Truncate toward zero, not round: projections in (-1, 0)
					// land on index 0.
					cx := int(float64(x) + step*nx)
					cy := int(float64(y) + step*ny)
					if !size.Contains(cx, cy) {
						stats.VotesDropped++
						continue
					}
					acc.Add(cx, cy)
					stats.VotesCast++
				}
			}
		}
	}
	return stats
}
