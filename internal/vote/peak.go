package vote

import (
	"circle-center/internal/grid"
	"circle-center/pkg/geometry"

	"golang.org/x/sync/errgroup"
)

// Peak is the most-voted accumulator cell.
type Peak struct {
	Center geometry.PointInt `json:"center"`
	Votes  int               `json:"votes"`
}

// LocatePeak returns the cell with the most votes. Ties go to the first
// cell in row-major order (top to bottom, left to right).
func LocatePeak(acc *grid.Accumulator) (Peak, error) {
	best := scanRows(acc, 0, acc.Height)
	if best.Votes == 0 {
		return Peak{}, ErrEmptyAccumulator
	}
	return best, nil
}

// LocatePeakParallel scans row bands concurrently. Band winners are reduced
// in band order with a strict comparison, so the result is identical to
// LocatePeak including the tie-break.
func LocatePeakParallel(acc *grid.Accumulator, workers int) (Peak, error) {
	if workers <= 1 || acc.Height < 2 {
		return LocatePeak(acc)
	}
	if workers > acc.Height {
		workers = acc.Height
	}

	rowsPerWorker := (acc.Height + workers - 1) / workers
	bands := make([]Peak, workers)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		startY := w * rowsPerWorker
		endY := min(startY+rowsPerWorker, acc.Height)
		if startY >= endY {
			break
		}
		g.Go(func() error {
			bands[w] = scanRows(acc, startY, endY)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Peak{}, err
	}

	var best Peak
	for _, p := range bands {
		if p.Votes > best.Votes {
			best = p
		}
	}
	if best.Votes == 0 {
		return Peak{}, ErrEmptyAccumulator
	}
	return best, nil
}

// scanRows finds the first maximum in rows [startY, endY).
func scanRows(acc *grid.Accumulator, startY, endY int) Peak {
	var best Peak
	for y := startY; y < endY; y++ {
		for x, v := range acc.Row(y) {
			if int(v) > best.Votes {
				best = Peak{Center: geometry.PointInt{X: x, Y: y}, Votes: int(v)}
			}
		}
	}
	return best
}
