package types

import (
	"image"
	"time"
)

// CropBox is a rectangle in source pixel coordinates (left, upper, right, lower)
type CropBox struct {
	Left  int `json:"left"`
	Upper int `json:"upper"`
	Right int `json:"right"`
	Lower int `json:"lower"`
}

// Rect returns the crop box as an image.Rectangle
func (b CropBox) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Upper, b.Right, b.Lower)
}

// Width returns the unclipped width of the box
func (b CropBox) Width() int {
	return b.Right - b.Left
}

// Height returns the unclipped height of the box
func (b CropBox) Height() int {
	return b.Lower - b.Upper
}

// Size is an output resolution in pixels
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Progress is reported after each file completes
type Progress struct {
	Processed int
	Total     int
	Percent   int
}

// NewProgress computes the floored percentage for processed/total.
// Total must be positive.
func NewProgress(processed, total int) Progress {
	return Progress{
		Processed: processed,
		Total:     total,
		Percent:   processed * 100 / total,
	}
}

// FileResult describes the outcome for one source image
type FileResult struct {
	Input    string
	Output   string
	Err      error
	Duration time.Duration
}

// OK reports whether the file was written successfully
func (r FileResult) OK() bool {
	return r.Err == nil
}

// Summary is returned once a batch run ends
type Summary struct {
	Total     int
	Succeeded int
	Failures  []FileResult
	Duration  time.Duration
}

// Failed returns the number of files that could not be processed
func (s Summary) Failed() int {
	return len(s.Failures)
}
