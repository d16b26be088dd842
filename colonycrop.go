// Package colonycrop isolates the petri dish in photographs of microbial
// colony plates.
//
// Every JPEG directly inside an input directory is cropped to a square box,
// masked to the circle inscribed in that box, resized to a fixed resolution
// and written as a transparent PNG named <stem>_circular.png.
//
// Basic usage:
//
//	package main
//
//	import (
//
//	)
//
//	func main() {
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		summary, err := c.Run(context.Background(), func(p types.Progress) {
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//	}
//
// The package consists of these components:
//
// 1. Cropper (pkg/cropper): crops to the configured box, clipping to the image bounds
// 2. Mask (pkg/mask): builds the circular stencil and pastes through it
// 3. Processing (pkg/processing): decode, transform, resize and lossless encode of one file
// 4. Batch (pkg/batch): directory enumeration, workers, progress and cancellation
// 5. Metrics (pkg/metrics): Prometheus counters for a run
//
// The crop box is described by its upper-left corner and a diameter; the
// right and lower edges are always derived, and the same diameter sizes the
// circular mask.
package colonycrop
//			fmt.Printf("%d%%\n", p.Percent)
//		"context"
//		"fmt"
//		colonycrop "github.com/github-young/cropColonyImage"
//		"github.com/github-young/cropColonyImage/pkg/types"
//		"log"
//		c, err := colonycrop.New("plates", "plates/output")
//		fmt.Printf("processed %d, failed %d\n", summary.Succeeded, summary.Failed())

import (
	"context"
	"fmt"
	"strings"

	"github.com/github-young/cropColonyImage/internal/config"
	"github.com/github-young/cropColonyImage/pkg/batch"
	"github.com/github-young/cropColonyImage/pkg/logger"
	"github.com/github-young/cropColonyImage/pkg/metrics"
	"github.com/github-young/cropColonyImage/pkg/processing"
	"github.com/github-young/cropColonyImage/pkg/types"
)

// Version of the colony cropper
const Version = "1.0.0"

// Error kinds, matched with errors.Is
var (
	ErrConfig = config.ErrConfig
	ErrDecode = processing.ErrDecode
	ErrIO     = processing.ErrIO
)

// Config is the cropper configuration; see DefaultConfig
type Config = config.Config

// DefaultConfig returns the plate script's geometry with no directories set
func DefaultConfig() *Config {
	return config.Default()
}

// Logger receives the cropper's log lines. pkg/logger has ready-made
// implementations; a nil Logger discards everything.
type Logger = logger.ILogger

// Cropper provides a high-level interface over the batch transform
type Cropper struct {
	cfg     *config.Config
	proc    *processing.Processor
	runner  *batch.Runner
	metrics *metrics.Recorder
}

// New creates a Cropper with the default plate geometry
func New(inputDir, outputDir string) (*Cropper, error) {
	cfg := config.Default()
	cfg.Input.Dir = inputDir
	cfg.Output.Dir = outputDir
	return NewWithConfig(cfg, nil)
}

// NewWithConfig validates cfg and creates a Cropper. Configuration problems
// are reported here, before any file is touched, and wrap ErrConfig.
func NewWithConfig(cfg *Config, log Logger) (*Cropper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts, err := ProcessingOptions(cfg)
	if err != nil {
		return nil, err
	}

	proc := processing.NewProcessor(opts, log)
	runner := batch.New(proc, batch.Options{
		InputDir:  cfg.Input.Dir,
		OutputDir: cfg.Output.Dir,
		Suffix:    cfg.Output.Suffix,
		Workers:   cfg.Processing.Workers,
	}, log)

	rec := metrics.New()
	runner.SetMetrics(rec, cfg.Metrics.Textfile)

	return &Cropper{
		cfg:     cfg,
		proc:    proc,
		runner:  runner,
		metrics: rec,
	}, nil
}

// ProcessingOptions converts a validated configuration into processor options
func ProcessingOptions(cfg *Config) (processing.Options, error) {
	filter, err := processing.ParseFilter(cfg.Processing.Filter)
	if err != nil {
		return processing.Options{}, fmt.Errorf("%w: %v", config.ErrConfig, err)
	}
	compression, err := processing.ParseCompression(cfg.Output.PNGCompression)
	if err != nil {
		return processing.Options{}, fmt.Errorf("%w: %v", config.ErrConfig, err)
	}

	return processing.Options{
		Box:            cfg.CropBox(),
		MaskDiameter:   cfg.Crop.Diameter,
		Target:         cfg.TargetSize(),
		Filter:         filter,
		Format:         strings.ToLower(cfg.Output.Format),
		PNGCompression: compression,
	}, nil
}

// Config returns the configuration the cropper was built with
func (c *Cropper) Config() *Config {
	return c.cfg
}

// CropBox returns the derived crop rectangle
func (c *Cropper) CropBox() types.CropBox {
	return c.cfg.CropBox()
}

// Metrics returns the recorder that accumulates statistics across runs
func (c *Cropper) Metrics() *metrics.Recorder {
	return c.metrics
}

// Run processes the input directory and blocks until it is done
func (c *Cropper) Run(ctx context.Context, onProgress batch.ProgressFunc) (types.Summary, error) {
	return c.runner.Run(ctx, onProgress)
}

// Start processes the input directory in the background
func (c *Cropper) Start(ctx context.Context) *batch.Job {
	return c.runner.Start(ctx)
}

// ProcessFile applies the transform to a single image, writing it to outPath
func (c *Cropper) ProcessFile(ctx context.Context, inPath, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.proc.ProcessFile(inPath, outPath)
}

// OutputPath returns where the output for inPath is written
func (c *Cropper) OutputPath(inPath string) string {
	return c.proc.OutputPath(inPath, c.cfg.Output.Dir, c.cfg.Output.Suffix)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
