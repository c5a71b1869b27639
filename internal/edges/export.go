package edges

import (
	"fmt"

	"circle-center/internal/grid"

	"gocv.io/x/gocv"
)

// AccumulatorImage min-max normalises the vote counts to an 8-bit Mat. The
// caller must Close it.
func AccumulatorImage(acc *grid.Accumulator) gocv.Mat {
	votes := accumulatorToMat(acc)
	defer votes.Close()

	norm := gocv.NewMat()
	defer norm.Close()
	gocv.Normalize(votes, &norm, 0, 255, gocv.NormMinMax)

	out := gocv.NewMat()
	norm.ConvertTo(&out, gocv.MatTypeCV8U)
	return out
}

// WriteAccumulator writes the normalised accumulator to an image file. The
// format follows the file extension (png, tif, jpg).
func WriteAccumulator(path string, acc *grid.Accumulator) error {
	img := AccumulatorImage(acc)
	defer img.Close()

	if ok := gocv.IMWrite(path, img); !ok {
		return fmt.Errorf("failed to write accumulator image %s", path)
	}
	return nil
}
