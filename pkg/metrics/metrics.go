// Package metrics records batch run statistics in a private Prometheus
// registry and can dump them in the text exposition format for the node
// exporter textfile collector.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/github-young/cropColonyImage/pkg/processing"
)

// Result label values
const (
	ResultOK          = "ok"
	ResultDecodeError = "decode_error"
	ResultIOError     = "io_error"
	ResultOtherError  = "error"
)

// Recorder collects per-file and per-batch metrics
type Recorder struct {
	registry      *prometheus.Registry
	files         *prometheus.CounterVec
	fileDuration  prometheus.Histogram
	batchFiles    prometheus.Gauge
	batchDuration prometheus.Gauge
}

// New creates a Recorder backed by its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "colony_crop_files_total",
			Help: "Number of source images handled, by result.",
		}, []string{"result"}),
		fileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "colony_crop_file_duration_seconds",
			Help:    "Time taken to crop, mask, resize and write one image.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		batchFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "colony_crop_batch_files",
			Help: "Number of eligible images found in the last batch.",
		}),
		batchDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "colony_crop_batch_duration_seconds",
			Help: "Wall time of the last batch.",
		}),
	}
	r.registry.MustRegister(r.files, r.fileDuration, r.batchFiles, r.batchDuration)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// BatchStarted records how many files the batch will handle
func (r *Recorder) BatchStarted(total int) {
	r.batchFiles.Set(float64(total))
}

// FileDone records the outcome of one file
func (r *Recorder) FileDone(err error, d time.Duration) {
	r.files.WithLabelValues(ResultLabel(err)).Inc()
	r.fileDuration.Observe(d.Seconds())
}

// BatchDone records the total wall time of the batch
func (r *Recorder) BatchDone(d time.Duration) {
	r.batchDuration.Set(d.Seconds())
}

// WriteTextfile writes all metrics to path in the Prometheus text format
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// ResultLabel maps a per-file error to its result label
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, processing.ErrDecode):
		return ResultDecodeError
	case errors.Is(err, processing.ErrIO):
		return ResultIOError
	default:
		return ResultOtherError
	}
}
