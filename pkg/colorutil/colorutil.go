// Package colorutil provides shared color utilities for intensity conversion.
package colorutil

import (
	"image/color"
)

// Luminance returns the BT.601 luma (0-255) of 16-bit RGB components as
// returned by color.Color.RGBA. This matches OpenCV's BGR2GRAY weights.
func Luminance(r, g, b uint32) uint8 {
	return uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 24)
}

// Gray returns the luminance of an arbitrary color.
func Gray(c color.Color) uint8 {
	if g, ok := c.(color.Gray); ok {
		return g.Y
	}
	r, g, b, _ := c.RGBA()
	return Luminance(r, g, b)
}
