// Package center estimates the center of an approximately circular pattern
// by normal-intersection voting.
//
// An Estimator runs an EdgeSource and a GradientSource once each over an
// intensity grid, lets every edge pixel vote along its normal, and reports
// the accumulator peak.
package center

import (
	"fmt"
	"image"
	"runtime"

	"circle-center/internal/grid"
	cimage "circle-center/internal/image"
	"circle-center/internal/vote"
	"circle-center/pkg/geometry"

	"golang.org/x/sync/errgroup"
)

// EdgeSource produces a binary edge mask with the grid's dimensions.
type EdgeSource interface {
	Edges(g *grid.IntensityGrid) (*grid.EdgeMask, error)
}

// GradientSource produces a gradient field with the grid's dimensions.
type GradientSource interface {
	Gradient(g *grid.IntensityGrid) (*grid.GradientField, error)
}

// Result is a center estimate.
type Result struct {
	Center geometry.PointInt `json:"center"`
	Votes  int               `json:"votes"`
	Radius vote.RadiusRange  `json:"radius"`
	Stats  vote.Stats        `json:"stats"`

	// Populated only when Params.KeepAccumulator is set.
	Accumulator *grid.Accumulator `json:"-"`
}

// Estimator wires the collaborators, the voter and the peak locator.
type Estimator struct {
	edges     EdgeSource
	gradients GradientSource
	params    Params
}

// New creates an estimator.
func New(edges EdgeSource, gradients GradientSource, params Params) *Estimator {
	return &Estimator{edges: edges, gradients: gradients, params: params}
}

// Params returns the estimator's parameters.
func (e *Estimator) Params() Params {
	return e.params
}

// Estimate locates the circle center in g.
//
// The radius range is validated before either collaborator runs. An
// accumulator without votes yields vote.ErrEmptyAccumulator rather than a
// default center.
func (e *Estimator) Estimate(g *grid.IntensityGrid) (*Result, error) {
	if g == nil || g.Width == 0 || g.Height == 0 {
		return nil, fmt.Errorf("empty intensity grid")
	}
	if e.edges == nil || e.gradients == nil {
		return nil, fmt.Errorf("estimator needs both an edge source and a gradient source")
	}

	size := g.Size()
	rr, err := vote.RadiusRangeFor(size, e.params.MinRadius, e.params.MaxRadius)
	if err != nil {
		return nil, fmt.Errorf("radius range for %s grid: %w", size, err)
	}

	mask, err := e.edges.Edges(g)
	if err != nil {
		return nil, fmt.Errorf("edge source: %w", err)
	}
	if mask == nil {
		return nil, fmt.Errorf("edge source returned no mask")
	}
	if err := grid.CheckSameSize("edge mask", size, mask.Size()); err != nil {
		return nil, err
	}

	field, err := e.gradients.Gradient(g)
	if err != nil {
		return nil, fmt.Errorf("gradient source: %w", err)
	}
	if field == nil {
		return nil, fmt.Errorf("gradient source returned no field")
	}
	if err := grid.CheckSameSize("gradient field", size, field.Size()); err != nil {
		return nil, err
	}

	acc, stats, err := vote.NewVoter(e.params.voteParams()).VoteWithStats(mask, field, rr)
	if err != nil {
		return nil, fmt.Errorf("vote: %w", err)
	}

	var peak vote.Peak
	if e.params.Workers == 1 {
		peak, err = vote.LocatePeak(acc)
	} else {
		peak, err = vote.LocatePeakParallel(acc, e.workers())
	}
	if err != nil {
		return nil, fmt.Errorf("locate peak: %w", err)
	}

	result := &Result{
		Center: peak.Center,
		Votes:  peak.Votes,
		Radius: rr,
		Stats:  stats,
	}
	if e.params.KeepAccumulator {
		result.Accumulator = acc
	}
	return result, nil
}

// EstimateImage converts img to luminance and estimates its center.
func (e *Estimator) EstimateImage(img image.Image) (*Result, error) {
	g, err := cimage.ToIntensity(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	return e.Estimate(g)
}

// EstimateBatch estimates several grids concurrently, at most Workers at a
// time. Results are in input order; the first error aborts the batch.
func (e *Estimator) EstimateBatch(grids []*grid.IntensityGrid) ([]*Result, error) {
	results := make([]*Result, len(grids))

	var g errgroup.Group
	g.SetLimit(e.workers())
	for i, ig := range grids {
		g.Go(func() error {
			r, err := e.Estimate(ig)
			if err != nil {
				return fmt.Errorf("grid %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Estimator) workers() int {
	if e.params.Workers <= 0 {
		return runtime.NumCPU()
	}
	return e.params.Workers
}
