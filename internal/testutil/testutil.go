// Package testutil provides shared test fixtures: synthetic circle images
// and the analytic edge masks and gradient fields they would produce.
package testutil

import (
	"image"
	"image/color"
	"math"

	"circle-center/internal/grid"
	"circle-center/pkg/geometry"
)

// CircleImage draws a filled disc of brightness fg on a background of bg.
func CircleImage(width, height int, cx, cy, r float64, fg, bg uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	r2 := r * r
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			v := bg
			if dx*dx+dy*dy <= r2 {
				v = fg
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// CircleIntensity returns the disc of CircleImage as an intensity grid.
func CircleIntensity(width, height int, cx, cy, r float64) *grid.IntensityGrid {
	g := grid.NewIntensityGrid(width, height)
	img := CircleImage(width, height, cx, cy, r, 255, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.Set(x, y, float64(img.GrayAt(x, y).Y))
		}
	}
	return g
}

// CircleFields returns the edge mask and gradient field of an ideal circle
// outline. Each outline pixel carries a gradient pointing radially outward
// from (cx, cy) with magnitude 255.
func CircleFields(width, height int, cx, cy, r float64) (*grid.EdgeMask, *grid.GradientField) {
	mask := grid.NewEdgeMask(width, height)
	field := grid.NewGradientField(width, height)

	n := int(math.Ceil(2*math.Pi*r)) * 4
	size := geometry.NewSize(width, height)
	for _, p := range geometry.GenerateCirclePoints(cx, cy, r, n) {
		x, y := int(math.Round(p.X)), int(math.Round(p.Y))
		if !size.Contains(x, y) || mask.At(x, y) {
			continue
		}
		dx, dy := float64(x)-cx, float64(y)-cy
		d := math.Hypot(dx, dy)
		if d == 0 {
			continue
		}
		mask.Set(x, y, true)
		field.Set(x, y, 255*dx/d, 255*dy/d)
	}
	return mask, field
}

// RotateFields180 rotates a mask and gradient field by 180 degrees. Gradient
// vectors are negated so they keep pointing the same way relative to the
// rotated content.
func RotateFields180(mask *grid.EdgeMask, field *grid.GradientField) (*grid.EdgeMask, *grid.GradientField) {
	w, h := mask.Width, mask.Height
	size := mask.Size()
	rMask := grid.NewEdgeMask(w, h)
	rField := grid.NewGradientField(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := size.Rotate180(geometry.PointInt{X: x, Y: y})
			rMask.Set(p.X, p.Y, mask.At(x, y))
			gx, gy := field.At(x, y)
			rField.Set(p.X, p.Y, -gx, -gy)
		}
	}
	return rMask, rField
}
