package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	colonycrop "github.com/github-young/cropColonyImage"
	"github.com/github-young/cropColonyImage/internal/config"
	"github.com/github-young/cropColonyImage/internal/utils"
	"github.com/github-young/cropColonyImage/pkg/analyzer"
	"github.com/github-young/cropColonyImage/pkg/logger"
	"github.com/github-young/cropColonyImage/pkg/types"
)

const (
	exitOK          = 0
	exitSetup       = 1
	exitFailedFiles = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ContinueOnError)

	var configPath, writeConfig string
	var verbose, quiet, version, check bool

	defaults := config.Default()
	var (
		in          = fs.String("in", "", "input directory containing .jpg/.jpeg plate photos")
		out         = fs.String("out", "", "output directory (created if missing)")
		left        = fs.Int("left", defaults.Crop.Left, "crop box left edge (px)")
		upper       = fs.Int("upper", defaults.Crop.Upper, "crop box upper edge (px)")
		diameter    = fs.Int("diameter", defaults.Crop.Diameter, "crop box side and mask diameter (px); right=left+diameter, lower=upper+diameter")
		width       = fs.Int("width", defaults.Output.Width, "output width (px)")
		height      = fs.Int("height", defaults.Output.Height, "output height (px)")
		format      = fs.String("format", defaults.Output.Format, "output format: png|webp (lossless)")
		suffix      = fs.String("suffix", defaults.Output.Suffix, "suffix appended to the source stem")
		compression = fs.String("png-compression", defaults.Output.PNGCompression, "png compression: default|none|fast|best")
		workers     = fs.Int("workers", defaults.Processing.Workers, "number of images processed concurrently")
		filter      = fs.String("filter", defaults.Processing.Filter, "resampling filter: catmullrom|lanczos|linear|mitchell")
		metricsFile = fs.String("metrics-file", "", "write Prometheus metrics to this file after the run")
	)
	fs.StringVar(&configPath, "config", "", "JSON config file (flags override its values); defaults to "+config.GetConfigPath()+" when that file exists")
	fs.StringVar(&writeConfig, "write-config", "", "write the effective config to this file and exit")
	fs.BoolVar(&verbose, "v", false, "debug logging")
	fs.BoolVar(&quiet, "q", false, "only log errors")
	fs.BoolVar(&version, "version", false, "print version and exit")
	fs.BoolVar(&check, "check", false, "report image sizes and crop box clipping without writing anything")

	if err := fs.Parse(args); err != nil {
		return exitSetup
	}

	if version {
		fmt.Println(colonycrop.GetVersion())
		return exitOK
	}

	level := logger.LogInfo
	if verbose {
		level = logger.LogDebug
	} else if quiet {
		level = logger.LogError
	}
	log := logger.NewStdErrLogger(level)

	if configPath == "" && utils.FileExists(config.GetConfigPath()) {
		configPath = config.GetConfigPath()
		log.Debugf("using config %s", configPath)
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			log.Errorf("%v", err)
			return exitSetup
		}
		cfg = loaded
	}

	// only flags given on the command line override the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.Input.Dir = *in
		case "out":
			cfg.Output.Dir = *out
		case "left":
			cfg.Crop.Left = *left
		case "upper":
			cfg.Crop.Upper = *upper
		case "diameter":
			cfg.Crop.Diameter = *diameter
		case "width":
			cfg.Output.Width = *width
		case "height":
			cfg.Output.Height = *height
		case "format":
			cfg.Output.Format = *format
		case "suffix":
			cfg.Output.Suffix = *suffix
		case "png-compression":
			cfg.Output.PNGCompression = *compression
		case "workers":
			cfg.Processing.Workers = *workers
		case "filter":
			cfg.Processing.Filter = *filter
		case "metrics-file":
			cfg.Metrics.Textfile = *metricsFile
		}
	})

	if writeConfig != "" {
		if err := cfg.SaveToFile(writeConfig); err != nil {
			log.Errorf("%v", err)
			return exitSetup
		}
		log.Infof("wrote %s", writeConfig)
		return exitOK
	}

	cropper, err := colonycrop.NewWithConfig(cfg, log)
	if err != nil {
		log.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "usage: %s -in <dir> -out <dir> [-left 0] [-upper 200] [-diameter 2800] [-width 1000] [-height 1000]\n", fs.Name())
		return exitSetup
	}

	box := cropper.CropBox()
	log.Infof("crop box (left, upper, right, lower) = (%d, %d, %d, %d), mask diameter %d, output %dx%d %s",
		box.Left, box.Upper, box.Right, box.Lower, cfg.Crop.Diameter, cfg.Output.Width, cfg.Output.Height, cfg.Output.Format)

	if check {
		return checkInputs(cfg, box)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := cropper.Run(ctx, func(p types.Progress) {
		log.Infof("progress %d%% (%d/%d)", p.Percent, p.Processed, p.Total)
	})

	fmt.Printf("processed %d, failed %d (of %d) in %v\n", summary.Succeeded, summary.Failed(), summary.Total, summary.Duration.Round(time.Millisecond))
	for _, f := range summary.Failures {
		fmt.Printf("  failed: %v\n", f.Err)
	}

	switch {
	case errors.Is(err, context.Canceled):
		log.Errorf("interrupted")
		return exitInterrupted
	case err != nil:
		log.Errorf("%v", err)
		return exitSetup
	case summary.Failed() > 0:
		return exitFailedFiles
	}
	return exitOK
}

// checkInputs prints, for each eligible image, its size and whether the
// crop box will be clipped
func checkInputs(cfg *config.Config, box types.CropBox) int {
	if !utils.DirExists(cfg.Input.Dir) {
		fmt.Fprintf(os.Stderr, "input directory %s does not exist\n", cfg.Input.Dir)
		return exitSetup
	}

	files, err := utils.ListJPEGFiles(cfg.Input.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list %s: %v\n", cfg.Input.Dir, err)
		return exitSetup
	}

	code := exitOK
	for _, f := range files {
		info, err := analyzer.Inspect(f)
		if err != nil {
			fmt.Printf("%s: unreadable: %v\n", filepath.Base(f), err)
			code = exitFailedFiles
			continue
		}
		c := analyzer.CheckCropBox(info, box)
		status := "ok"
		switch {
		case c.Empty:
			status = "crop box outside image, output will be fully transparent"
		case c.Clipped:
			status = fmt.Sprintf("crop box clipped to %dx%d", c.Effective.Dx(), c.Effective.Dy())
		}
		fmt.Printf("%s: %dx%d %s, %s\n", filepath.Base(f), info.Width, info.Height, utils.FormatFileSize(info.Size), status)
	}
	fmt.Printf("%d eligible images\n", len(files))
	return code
}
