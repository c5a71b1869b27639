package vote

import (
	"testing"

	"circle-center/internal/grid"
	"circle-center/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accumulatorWith(w, h int, votes map[geometry.PointInt]int) *grid.Accumulator {
	acc := grid.NewAccumulator(w, h)
	for p, n := range votes {
		for i := 0; i < n; i++ {
			acc.Add(p.X, p.Y)
		}
	}
	return acc
}

func TestLocatePeak(t *testing.T) {
	tests := []struct {
		name  string
		votes map[geometry.PointInt]int
		want  Peak
	}{
		{
			name:  "single maximum",
			votes: map[geometry.PointInt]int{{X: 3, Y: 4}: 5, {X: 1, Y: 1}: 2},
			want:  Peak{Center: geometry.PointInt{X: 3, Y: 4}, Votes: 5},
		},
		{
			name:  "tie on the same row goes left",
			votes: map[geometry.PointInt]int{{X: 7, Y: 2}: 3, {X: 2, Y: 2}: 3},
			want:  Peak{Center: geometry.PointInt{X: 2, Y: 2}, Votes: 3},
		},
		{
			name:  "tie across rows goes up",
			votes: map[geometry.PointInt]int{{X: 0, Y: 9}: 4, {X: 9, Y: 1}: 4},
			want:  Peak{Center: geometry.PointInt{X: 9, Y: 1}, Votes: 4},
		},
		{
			name:  "origin cell",
			votes: map[geometry.PointInt]int{{X: 0, Y: 0}: 1},
			want:  Peak{Center: geometry.PointInt{X: 0, Y: 0}, Votes: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := accumulatorWith(10, 10, tt.votes)
			got, err := LocatePeak(acc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			for _, workers := range []int{2, 3, 4, 10, 50} {
				par, err := LocatePeakParallel(acc, workers)
				require.NoError(t, err)
				assert.Equal(t, tt.want, par, "workers=%d", workers)
			}
		})
	}
}

func TestLocatePeakSinglePixelTieBreak(t *testing.T) {
	// Six cells with one vote each; the leftmost in row 10 wins.
	mask, field := singlePixel(20, 20, 10, 10, 1, 0)
	acc, err := NewVoter(DefaultParams()).Vote(mask, field, RadiusRange{Min: 1, Max: 3})
	require.NoError(t, err)

	peak, err := LocatePeak(acc)
	require.NoError(t, err)
	assert.Equal(t, Peak{Center: geometry.PointInt{X: 7, Y: 10}, Votes: 1}, peak)
}

func TestLocatePeakEmpty(t *testing.T) {
	acc := grid.NewAccumulator(8, 6)

	_, err := LocatePeak(acc)
	assert.ErrorIs(t, err, ErrEmptyAccumulator)

	_, err = LocatePeakParallel(acc, 4)
	assert.ErrorIs(t, err, ErrEmptyAccumulator)
}

func TestLocatePeakDeterministic(t *testing.T) {
	acc := accumulatorWith(32, 32, map[geometry.PointInt]int{
		{X: 31, Y: 0}: 6, {X: 5, Y: 16}: 6, {X: 0, Y: 31}: 6, {X: 12, Y: 12}: 2,
	})

	first, err := LocatePeak(acc)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := LocatePeakParallel(acc, i+2)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, geometry.PointInt{X: 31, Y: 0}, first.Center)
}

func TestRadiusRangeFor(t *testing.T) {
	rr, err := RadiusRangeFor(geometry.NewSize(101, 60), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, RadiusRange{Min: 10, Max: 30}, rr)

	rr, err = RadiusRangeFor(geometry.NewSize(7, 9), 1, -1)
	require.NoError(t, err)
	assert.Equal(t, 4, rr.Max, "half of 7 rounds up")

	rr, err = RadiusRangeFor(geometry.NewSize(50, 50), 3, 400)
	require.NoError(t, err)
	assert.Equal(t, 398, rr.Steps())

	_, err = RadiusRangeFor(geometry.NewSize(10, 10), 10, 0)
	var rangeErr *InvalidRadiusRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, RadiusRange{Min: 10, Max: 5}, RadiusRange{Min: rangeErr.Min, Max: rangeErr.Max})
}
