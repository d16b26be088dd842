package processing

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/github-young/cropColonyImage/internal/utils"
	"github.com/github-young/cropColonyImage/pkg/cropper"
	"github.com/github-young/cropColonyImage/pkg/logger"
	"github.com/github-young/cropColonyImage/pkg/mask"
	"github.com/github-young/cropColonyImage/pkg/types"
)

// Options fixes the geometry and encoding shared by every image of a batch
type Options struct {
	Box            types.CropBox
	MaskDiameter   int
	Target         types.Size
	Filter         imaging.ResampleFilter
	Format         string
	PNGCompression png.CompressionLevel
}

// DefaultOptions mirrors the geometry of the original plate script
func DefaultOptions() Options {
	return Options{
		Box:            types.CropBox{Left: 0, Upper: 200, Right: 2800, Lower: 3000},
		MaskDiameter:   2800,
		Target:         types.Size{Width: 1000, Height: 1000},
		Filter:         imaging.CatmullRom,
		Format:         "png",
		PNGCompression: png.BestCompression,
	}
}

// Processor handles image processing operations
type Processor struct {
	opts Options
	log  logger.ILogger
}

// NewProcessor creates a new image processor
func NewProcessor(opts Options, log logger.ILogger) *Processor {
	if log == nil {
		log = &logger.NullLogger{}
	}
	return &Processor{opts: opts, log: log}
}

// Options returns the options the processor was built with
func (p *Processor) Options() Options {
	return p.opts
}

// LoadImage decodes the image at path. EXIF orientation is not applied.
func (p *Processor) LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError(path, "open", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, decodeError(path, err)
	}
	return img, nil
}

// Transform crops img, masks it to the circle, and resizes the result to
// the target size
func (p *Processor) Transform(img image.Image) *image.NRGBA {
	start := time.Now()
	crop := cropper.Crop(img, p.opts.Box)
	if crop.Empty() {
		p.log.Debugf("crop box %+v lies outside %v, output will be fully transparent", p.opts.Box, img.Bounds())
		return imaging.New(p.opts.Target.Width, p.opts.Target.Height, color.NRGBA{0, 0, 0, 0})
	}
	if crop.Clipped {
		p.log.Debugf("crop box %+v clipped to %v", p.opts.Box, crop.Region)
	}

	stencil := mask.Circle(crop.Image.Bounds().Size(), p.opts.MaskDiameter)
	circular := mask.Apply(crop.Image, stencil)
	p.log.Debugf("crop+mask %v took %v", crop.Region, time.Since(start))

	start = time.Now()
	out := p.Resize(circular)
	p.log.Debugf("resize to %dx%d took %v", p.opts.Target.Width, p.opts.Target.Height, time.Since(start))
	return out
}

// Resize scales img to exactly the target size, ignoring its aspect ratio
func (p *Processor) Resize(img image.Image) *image.NRGBA {
	return imaging.Resize(img, p.opts.Target.Width, p.opts.Target.Height, p.opts.Filter)
}

// Encode writes img in the configured lossless format
func (p *Processor) Encode(w io.Writer, img image.Image) error {
	switch p.opts.Format {
	case "webp":
		return webp.Encode(w, img, &webp.Options{Lossless: true})
	default:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(p.opts.PNGCompression))
	}
}

// SaveImage encodes img to path through a temporary file, replacing any
// existing file at path
func (p *Processor) SaveImage(img image.Image, path string) error {
	err := utils.WriteFileAtomic(path, func(w io.Writer) error {
		return p.Encode(w, img)
	})
	if err != nil {
		return ioError(path, "write", err)
	}
	return nil
}

// ProcessFile runs the whole transform for one source image
func (p *Processor) ProcessFile(inPath, outPath string) error {
	img, err := p.LoadImage(inPath)
	if err != nil {
		return err
	}
	return p.SaveImage(p.Transform(img), outPath)
}

// OutputPath returns where the output for inPath is written inside outDir
func (p *Processor) OutputPath(inPath, outDir, suffix string) string {
	return utils.GenerateOutputFilename(inPath, outDir, suffix, p.opts.Format)
}

// ParseFilter maps a filter name to a continuous resampling filter
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	switch strings.ToLower(name) {
	case "", "catmullrom":
		return imaging.CatmullRom, nil
	case "lanczos":
		return imaging.Lanczos, nil
	case "linear":
		return imaging.Linear, nil
	case "mitchell":
		return imaging.MitchellNetravali, nil
	default:
		return imaging.ResampleFilter{}, fmt.Errorf("unsupported resampling filter: %s", name)
	}
}

// ParseCompression maps a compression name to a png.CompressionLevel
func ParseCompression(name string) (png.CompressionLevel, error) {
	switch strings.ToLower(name) {
	case "", "best":
		return png.BestCompression, nil
	case "default":
		return png.DefaultCompression, nil
	case "fast":
		return png.BestSpeed, nil
	case "none":
		return png.NoCompression, nil
	default:
		return 0, fmt.Errorf("unsupported png compression: %s", name)
	}
}
