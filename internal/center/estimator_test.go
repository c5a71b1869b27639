package center

import (
	"errors"
	"sync/atomic"
	"testing"

	"circle-center/internal/edges"
	"circle-center/internal/grid"
	"circle-center/internal/testutil"
	"circle-center/internal/vote"
	"circle-center/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource returns precomputed outputs and counts invocations.
type fixedSource struct {
	mask  *grid.EdgeMask
	field *grid.GradientField
	err   error
	calls atomic.Int32
}

func (s *fixedSource) Edges(*grid.IntensityGrid) (*grid.EdgeMask, error) {
	s.calls.Add(1)
	return s.mask, s.err
}

func (s *fixedSource) Gradient(*grid.IntensityGrid) (*grid.GradientField, error) {
	s.calls.Add(1)
	return s.field, s.err
}

// analyticSource derives ideal circle fields from the grid it is given.
type analyticSource struct {
	cx, cy, r float64
}

func (s analyticSource) Edges(g *grid.IntensityGrid) (*grid.EdgeMask, error) {
	mask, _ := testutil.CircleFields(g.Width, g.Height, s.cx, s.cy, s.r)
	return mask, nil
}

func (s analyticSource) Gradient(g *grid.IntensityGrid) (*grid.GradientField, error) {
	_, field := testutil.CircleFields(g.Width, g.Height, s.cx, s.cy, s.r)
	return field, nil
}

func circleSources(w, h int, cx, cy, r float64) (*fixedSource, *fixedSource) {
	mask, field := testutil.CircleFields(w, h, cx, cy, r)
	return &fixedSource{mask: mask}, &fixedSource{field: field}
}

func TestEstimateAnalyticCircle(t *testing.T) {
	es, gs := circleSources(120, 90, 70, 40, 22)
	est := New(es, gs, DefaultParams())

	res, err := est.Estimate(grid.NewIntensityGrid(120, 90))
	require.NoError(t, err)

	assert.LessOrEqual(t, res.Center.ToFloat().Distance(geometry.Point2D{X: 70, Y: 40}), 2.0, "center %v", res.Center)
	assert.Positive(t, res.Votes)
	assert.Equal(t, vote.RadiusRange{Min: 10, Max: 45}, res.Radius)
	assert.Equal(t, es.mask.Count(), res.Stats.EdgePixels)
	assert.Nil(t, res.Accumulator)
	assert.Equal(t, int32(1), es.calls.Load(), "edge source runs once")
	assert.Equal(t, int32(1), gs.calls.Load(), "gradient source runs once")
}

func TestEstimateOpenCVPipeline(t *testing.T) {
	tests := []struct {
		name      string
		w, h      int
		cx, cy, r float64
	}{
		{"centered", 128, 96, 64, 48, 20},
		{"offset", 160, 120, 55, 70, 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.CircleIntensity(tt.w, tt.h, tt.cx, tt.cy, tt.r)
			est := New(edges.DefaultCanny(), edges.DefaultSobel(), DefaultParams())

			res, err := est.Estimate(g)
			require.NoError(t, err)
			dist := res.Center.ToFloat().Distance(geometry.Point2D{X: tt.cx, Y: tt.cy})
			assert.LessOrEqual(t, dist, 2.0, "center %v votes=%d", res.Center, res.Votes)
		})
	}
}

func TestEstimateImage(t *testing.T) {
	img := testutil.CircleImage(100, 100, 45, 52, 18, 230, 20)
	est := New(edges.DefaultCanny(), edges.DefaultSobel(), DefaultParams().WithWorkers(4))

	res, err := est.EstimateImage(img)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Center.ToFloat().Distance(geometry.Point2D{X: 45, Y: 52}), 2.0, "center %v", res.Center)

	_, err = est.EstimateImage(nil)
	assert.Error(t, err)
}

func TestEstimateKeepsAccumulator(t *testing.T) {
	es, gs := circleSources(80, 80, 40, 40, 15)
	res, err := New(es, gs, DefaultParams().WithAccumulator(true)).Estimate(grid.NewIntensityGrid(80, 80))
	require.NoError(t, err)

	require.NotNil(t, res.Accumulator)
	assert.Equal(t, res.Votes, res.Accumulator.At(res.Center.X, res.Center.Y))
	assert.Equal(t, res.Votes, res.Accumulator.Max())
	assert.Equal(t, res.Stats.VotesCast, res.Accumulator.Total())
}

func TestEstimateParallelMatchesSerial(t *testing.T) {
	es, gs := circleSources(100, 70, 33, 36, 17)
	g := grid.NewIntensityGrid(100, 70)

	serial, err := New(es, gs, DefaultParams().WithAccumulator(true)).Estimate(g)
	require.NoError(t, err)

	for _, workers := range []int{0, 2, 5, 16} {
		par, err := New(es, gs, DefaultParams().WithAccumulator(true).WithWorkers(workers)).Estimate(g)
		require.NoError(t, err)
		assert.Equal(t, serial.Center, par.Center, "workers=%d", workers)
		assert.Equal(t, serial.Votes, par.Votes)
		assert.True(t, serial.Accumulator.Equal(par.Accumulator))
	}
}

func TestEstimateInvalidRadiusFailsBeforeCollaborators(t *testing.T) {
	es, gs := circleSources(50, 50, 25, 25, 10)

	for _, p := range []Params{
		DefaultParams().WithRadius(0, 20),
		DefaultParams().WithRadius(15, 12),
		DefaultParams().WithRadius(30, 0), // auto max is 25
	} {
		_, err := New(es, gs, p).Estimate(grid.NewIntensityGrid(50, 50))
		var rangeErr *vote.InvalidRadiusRangeError
		require.ErrorAs(t, err, &rangeErr, "params %+v", p)
	}
	assert.Zero(t, es.calls.Load())
	assert.Zero(t, gs.calls.Load())
}

func TestEstimateDimensionMismatch(t *testing.T) {
	g := grid.NewIntensityGrid(40, 30)
	goodMask, goodField := testutil.CircleFields(40, 30, 20, 15, 8)

	tests := []struct {
		name  string
		mask  *grid.EdgeMask
		field *grid.GradientField
		what  string
	}{
		{"mask", grid.NewEdgeMask(30, 40), goodField, "edge mask"},
		{"field", goodMask, grid.NewGradientField(40, 31), "gradient field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := New(&fixedSource{mask: tt.mask}, &fixedSource{field: tt.field}, DefaultParams().WithRadius(2, 0))
			_, err := est.Estimate(g)
			var dimErr *grid.DimensionMismatchError
			require.ErrorAs(t, err, &dimErr)
			assert.Equal(t, tt.what, dimErr.What)
			assert.Equal(t, g.Size(), dimErr.Want)
		})
	}
}

func TestEstimateEmptyAccumulator(t *testing.T) {
	g := grid.NewIntensityGrid(40, 40)
	mask, _ := testutil.CircleFields(40, 40, 20, 20, 10)

	tests := []struct {
		name  string
		mask  *grid.EdgeMask
		field *grid.GradientField
	}{
		{"empty mask", grid.NewEdgeMask(40, 40), grid.NewGradientField(40, 40)},
		{"zero gradients", mask, grid.NewGradientField(40, 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := New(&fixedSource{mask: tt.mask}, &fixedSource{field: tt.field}, DefaultParams())
			res, err := est.Estimate(g)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, vote.ErrEmptyAccumulator), "got %v", err)
		})
	}

	// A flat image through the OpenCV sources has no edges at all.
	_, err := New(edges.DefaultCanny(), edges.DefaultSobel(), DefaultParams()).Estimate(g)
	assert.ErrorIs(t, err, vote.ErrEmptyAccumulator)
}

func TestEstimateCollaboratorErrors(t *testing.T) {
	boom := errors.New("boom")
	mask, field := testutil.CircleFields(30, 30, 15, 15, 6)
	g := grid.NewIntensityGrid(30, 30)
	p := DefaultParams().WithRadius(2, 0)

	_, err := New(&fixedSource{err: boom}, &fixedSource{field: field}, p).Estimate(g)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "edge source")

	_, err = New(&fixedSource{mask: mask}, &fixedSource{err: boom}, p).Estimate(g)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "gradient source")

	_, err = New(nil, &fixedSource{field: field}, p).Estimate(g)
	assert.Error(t, err)

	_, err = New(&fixedSource{mask: mask}, &fixedSource{field: field}, p).Estimate(nil)
	assert.Error(t, err)
}

func TestEstimateBatch(t *testing.T) {
	centers := []geometry.Point2D{{X: 30, Y: 30}, {X: 50, Y: 25}, {X: 22, Y: 41}}
	grids := make([]*grid.IntensityGrid, len(centers))
	for i, c := range centers {
		grids[i] = testutil.CircleIntensity(80, 64, c.X, c.Y, 14)
	}

	est := New(edges.DefaultCanny(), edges.DefaultSobel(), DefaultParams().WithWorkers(2))
	results, err := est.EstimateBatch(grids)
	require.NoError(t, err)
	require.Len(t, results, len(centers))
	for i, r := range results {
		assert.LessOrEqual(t, r.Center.ToFloat().Distance(centers[i]), 2.0, "grid %d center %v", i, r.Center)
	}
}

func TestEstimateBatchStopsOnError(t *testing.T) {
	grids := []*grid.IntensityGrid{grid.NewIntensityGrid(40, 40), nil}
	est := New(analyticSource{cx: 20, cy: 20, r: 10}, analyticSource{cx: 20, cy: 20, r: 10}, DefaultParams())

	results, err := est.EstimateBatch(grids)
	assert.Nil(t, results)
	assert.ErrorContains(t, err, "grid 1")
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 10, p.MinRadius)
	assert.Equal(t, 0, p.MaxRadius)
	assert.Equal(t, 1e-5, p.GradientEpsilon)
	assert.Equal(t, 1, p.Workers)
	assert.False(t, p.KeepAccumulator)

	q := p.WithRadius(3, 9).WithEpsilon(0.5).WithWorkers(4)
	assert.Equal(t, Params{MinRadius: 3, MaxRadius: 9, GradientEpsilon: 0.5, Workers: 4}, q)
	assert.Equal(t, 10, p.MinRadius, "builders return copies")
	assert.Equal(t, q, New(nil, nil, q).Params())
}

func TestWithDiameterInches(t *testing.T) {
	p := DefaultParams().WithDiameterInches(400, 0.25, 0.5)
	assert.Equal(t, 50, p.MinRadius)
	assert.Equal(t, 100, p.MaxRadius)

	p = DefaultParams().WithDiameterInches(400, 0.001, 0)
	assert.Equal(t, 1, p.MinRadius, "radius is at least one pixel")
	assert.Equal(t, 0, p.MaxRadius, "no max diameter keeps the automatic bound")

	assert.Equal(t, DefaultParams(), DefaultParams().WithDiameterInches(0, 0.25, 0.5), "unknown DPI leaves params alone")
}
