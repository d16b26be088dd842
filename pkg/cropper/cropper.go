package cropper

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/github-young/cropColonyImage/pkg/types"
)

// CropResult contains the result of a cropping operation
type CropResult struct {
	Image *image.NRGBA
	// Region is the part of the crop box that overlapped the source, in
	// source coordinates
	Region image.Rectangle
	// Clipped is set when the requested box extended past the source bounds
	Clipped bool
}

// Empty reports whether nothing of the source fell inside the crop box
func (r CropResult) Empty() bool {
	return r.Region.Empty()
}

// Crop extracts box from img. Coordinates outside the image are clamped to
// its bounds rather than rejected, so the result may be smaller than the
// requested box.
func Crop(img image.Image, box types.CropBox) CropResult {
	bounds := img.Bounds()
	requested := box.Rect().Add(bounds.Min)
	region := requested.Intersect(bounds)

	if region.Empty() {
		return CropResult{
			Image:   &image.NRGBA{},
			Region:  image.Rectangle{},
			Clipped: true,
		}
	}

	return CropResult{
		Image:   imaging.Crop(img, region),
		Region:  region.Sub(bounds.Min),
		Clipped: region != requested,
	}
}
