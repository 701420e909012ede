package resize

import (
	"image"

	"golang.org/x/image/draw"
)

const DefaultTarget = 1000

// Factor returns the integer divisor that brings the longer edge of a
// width x height image down to about target pixels.
func Factor(width, height, target int) int {
	if target <= 0 {
		return 1
	}
	long := max(width, height)
	if f := long / target; f > 1 {
		return f
	}
	return 1
}

// Preprocess shrinks src by Factor so both edges are divided by the same
// integer. Images whose long edge is below twice the target are returned as is.
func Preprocess(src image.Image, target int) image.Image {
	bounds := src.Bounds()
	factor := Factor(bounds.Dx(), bounds.Dy(), target)
	if factor == 1 {
		return src
	}
	dist := image.NewNRGBA(image.Rect(0, 0, bounds.Dx()/factor, bounds.Dy()/factor))
	draw.CatmullRom.Scale(dist, dist.Bounds(), src, bounds, draw.Src, nil)
	return dist
}
