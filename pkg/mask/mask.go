// Package mask builds the circular alpha stencil that isolates the petri
// dish and pastes the cropped plate through it onto a transparent canvas.
package mask

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

const (
	// Transparent is the stencil value outside the circle
	Transparent = 0
	// Opaque is the stencil value inside the circle
	Opaque = 255
)

// Circle returns a single-channel stencil of the given size with the
// ellipse bounded by (0, 0, diameter, diameter) filled with Opaque and
// everything else Transparent. A pixel belongs to the ellipse when its
// centre lies inside it; there is no antialiasing. Parts of the circle that
// fall outside the canvas are dropped.
func Circle(size image.Point, diameter int) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, size.X, size.Y))
	if diameter <= 0 {
		return m
	}

	r := float64(diameter) / 2
	r2 := r * r
	maxY := min(size.Y, diameter)
	maxX := min(size.X, diameter)
	for y := 0; y < maxY; y++ {
		dy := float64(y) + 0.5 - r
		i := y * m.Stride
		for x := 0; x < maxX; x++ {
			dx := float64(x) + 0.5 - r
			if dx*dx+dy*dy <= r2 {
				m.Pix[i+x] = Opaque
			}
		}
	}
	return m
}

// Apply creates a fully transparent canvas the size of src and pastes src
// onto it at (0, 0) using stencil as per-pixel alpha. Where the stencil is
// zero the canvas stays transparent regardless of the source.
func Apply(src image.Image, stencil *image.Alpha) *image.NRGBA {
	b := src.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), color.NRGBA{0, 0, 0, 0})
	if b.Empty() {
		return canvas
	}

	draw.DrawMask(canvas, canvas.Bounds(), src, b.Min, stencil, image.Point{}, draw.Over)
	return canvas
}
