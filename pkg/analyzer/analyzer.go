package analyzer

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"os"

	"github.com/github-young/cropColonyImage/pkg/types"
)

// ImageInfo contains basic image metadata read from the file header
type ImageInfo struct {
	Path   string
	Format string
	Width  int
	Height int
	// Size is the file size in bytes
	Size int64
}

// Bounds returns the image rectangle
func (i ImageInfo) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.Width, i.Height)
}

// CropCheck tells how a crop box relates to one image
type CropCheck struct {
	Info ImageInfo
	// Effective is the part of the box that will actually be cropped
	Effective image.Rectangle
	Clipped   bool
	Empty     bool
}

// Inspect reads the dimensions of the image at path without decoding the
// pixel data
func Inspect(path string) (ImageInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to stat image file: %w", err)
	}

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to read image header: %w", err)
	}

	return ImageInfo{
		Path:   path,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   stat.Size(),
	}, nil
}

// CheckCropBox reports whether box fits inside the image described by info.
// It never rejects a box: cropping clips to the image bounds.
func CheckCropBox(info ImageInfo, box types.CropBox) CropCheck {
	effective := box.Rect().Intersect(info.Bounds())
	return CropCheck{
		Info:      info,
		Effective: effective,
		Clipped:   effective != box.Rect(),
		Empty:     effective.Empty(),
	}
}
