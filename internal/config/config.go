package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/github-young/cropColonyImage/pkg/types"
)

// ErrConfig marks configuration problems detected before any file is processed
var ErrConfig = errors.New("invalid configuration")

// Config holds the application configuration
type Config struct {
	Input      InputConfig      `json:"input"`
	Crop       CropConfig       `json:"crop"`
	Output     OutputConfig     `json:"output"`
	Processing ProcessingConfig `json:"processing"`
	Metrics    MetricsConfig    `json:"metrics"`
}

// InputConfig holds the source directory
type InputConfig struct {
	Dir string `json:"dir"`
}

// CropConfig holds the crop geometry. Right and lower edges are derived
// from the diameter and never stored.
type CropConfig struct {
	Left     int `json:"left"`
	Upper    int `json:"upper"`
	Diameter int `json:"diameter"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Dir            string `json:"dir"`
	Suffix         string `json:"suffix"`
	Format         string `json:"format"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	PNGCompression string `json:"png_compression"`
}

// ProcessingConfig holds worker and resampling settings
type ProcessingConfig struct {
	Workers int    `json:"workers"`
	Filter  string `json:"filter"`
}

// MetricsConfig holds the optional Prometheus textfile destination
type MetricsConfig struct {
	Textfile string `json:"textfile"`
}

var (
	supportedFormats     = []string{"png", "webp"}
	supportedFilters     = []string{"catmullrom", "lanczos", "linear", "mitchell"}
	supportedCompression = []string{"default", "none", "fast", "best"}
)

// Default returns a configuration with default values. Input and output
// directories are left empty and must be supplied by the caller.
func Default() *Config {
	return &Config{
		Crop: CropConfig{
			Left:     0,
			Upper:    200,
			Diameter: 2800,
		},
		Output: OutputConfig{
			Suffix:         "_circular",
			Format:         "png",
			Width:          1000,
			Height:         1000,
			PNGCompression: "best",
		},
		Processing: ProcessingConfig{
			Workers: 1,
			Filter:  "catmullrom",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing from
// the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CropBox derives the crop rectangle from left, upper and diameter
func (c *Config) CropBox() types.CropBox {
	return types.CropBox{
		Left:  c.Crop.Left,
		Upper: c.Crop.Upper,
		Right: c.Crop.Left + c.Crop.Diameter,
		Lower: c.Crop.Upper + c.Crop.Diameter,
	}
}

// TargetSize returns the output resolution
func (c *Config) TargetSize() types.Size {
	return types.Size{Width: c.Output.Width, Height: c.Output.Height}
}

// MinDiameter is the smallest crop diameter whose circle leaves the stencil
// corners transparent. Below it every pixel is opaque and the PNG encoder
// drops the alpha channel.
const MinDiameter = 4

// Validate checks if the configuration is valid. Every error wraps ErrConfig.
func (c *Config) Validate() error {
	if c.Input.Dir == "" {
		return fmt.Errorf("%w: input.dir is required", ErrConfig)
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("%w: output.dir is required", ErrConfig)
	}

	if c.Crop.Left < 0 || c.Crop.Upper < 0 {
		return fmt.Errorf("%w: crop.left and crop.upper must not be negative", ErrConfig)
	}

	if c.Crop.Diameter < MinDiameter {
		return fmt.Errorf("%w: crop.diameter must be at least %d", ErrConfig, MinDiameter)
	}

	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("%w: output.width and output.height must be positive", ErrConfig)
	}

	if !oneOf(c.Output.Format, supportedFormats) {
		return fmt.Errorf("%w: output.format must be one of %s", ErrConfig, strings.Join(supportedFormats, ", "))
	}

	if !oneOf(c.Output.PNGCompression, supportedCompression) {
		return fmt.Errorf("%w: output.png_compression must be one of %s", ErrConfig, strings.Join(supportedCompression, ", "))
	}

	if c.Processing.Workers < 1 {
		return fmt.Errorf("%w: processing.workers must be at least 1", ErrConfig)
	}

	if !oneOf(c.Processing.Filter, supportedFilters) {
		return fmt.Errorf("%w: processing.filter must be one of %s", ErrConfig, strings.Join(supportedFilters, ", "))
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "colony-crop", "config.json")
}

func oneOf(v string, options []string) bool {
	for _, o := range options {
		if strings.EqualFold(v, o) {
			return true
		}
	}
	return false
}
