// Package batch runs the circular crop transform over every JPEG in a
// directory. Files are independent: a failure is recorded and the batch
// moves on. Progress is reported after each file in non-decreasing order,
// whatever the number of workers.
package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/github-young/cropColonyImage/internal/utils"
	"github.com/github-young/cropColonyImage/pkg/logger"
	"github.com/github-young/cropColonyImage/pkg/metrics"
	"github.com/github-young/cropColonyImage/pkg/processing"
	"github.com/github-young/cropColonyImage/pkg/types"
)

// Options describes where a batch reads and writes
type Options struct {
	InputDir  string
	OutputDir string
	Suffix    string
	Workers   int
}

// ProgressFunc is called after each file completes. Calls are serialized.
type ProgressFunc func(types.Progress)

// Runner processes a directory with a fixed Processor
type Runner struct {
	proc     *processing.Processor
	opts     Options
	log      logger.ILogger
	metrics  *metrics.Recorder
	textfile string
}

// New creates a Runner. A nil logger discards output.
func New(proc *processing.Processor, opts Options, log logger.ILogger) *Runner {
	if log == nil {
		log = &logger.NullLogger{}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{proc: proc, opts: opts, log: log}
}

// SetMetrics attaches a metrics recorder to the runner. When textfile is
// not empty the metrics are written there at the end of every run.
func (r *Runner) SetMetrics(m *metrics.Recorder, textfile string) {
	r.metrics = m
	r.textfile = textfile
}

// Run processes every eligible file and returns a summary. Per-file errors
// end up in Summary.Failures; the returned error is only set when the batch
// could not start or ctx was cancelled, in which case the summary covers the
// files finished so far.
func (r *Runner) Run(ctx context.Context, onProgress ProgressFunc) (types.Summary, error) {
	start := time.Now()

	// list first so a bad input directory leaves nothing behind
	files, err := utils.ListJPEGFiles(r.opts.InputDir)
	if err != nil {
		return types.Summary{}, fmt.Errorf("%w: failed to list input directory %s: %v", processing.ErrIO, r.opts.InputDir, err)
	}

	if err := utils.EnsureDir(r.opts.OutputDir); err != nil {
		return types.Summary{}, fmt.Errorf("%w: failed to create output directory %s: %v", processing.ErrIO, r.opts.OutputDir, err)
	}

	total := len(files)
	summary := types.Summary{Total: total}
	if r.metrics != nil {
		r.metrics.BatchStarted(total)
	}
	r.log.Infof("Found %d images in %s", total, r.opts.InputDir)
	if total == 0 {
		summary.Duration = time.Since(start)
		r.flushMetrics(summary.Duration)
		return summary, nil
	}

	workers := min(r.opts.Workers, total)
	jobs := make(chan string)

	var (
		mu        sync.Mutex
		processed int
	)
	report := func(res types.FileResult) {
		mu.Lock()
		defer mu.Unlock()

		processed++
		if res.OK() {
			summary.Succeeded++
		} else {
			summary.Failures = append(summary.Failures, res)
		}
		if r.metrics != nil {
			r.metrics.FileDone(res.Err, res.Duration)
		}
		if onProgress != nil {
			onProgress(types.NewProgress(processed, total))
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				// cancellation is only honoured between files
				if ctx.Err() != nil {
					continue
				}
				report(r.processOne(path))
			}
		}()
	}

feed:
	for _, f := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- f:
		}
	}
	close(jobs)
	wg.Wait()

	summary.Duration = time.Since(start)
	r.flushMetrics(summary.Duration)

	if err := ctx.Err(); err != nil {
		r.log.Infof("Batch cancelled after %d of %d images", processed, total)
		return summary, err
	}
	return summary, nil
}

func (r *Runner) flushMetrics(d time.Duration) {
	if r.metrics == nil {
		return
	}
	r.metrics.BatchDone(d)
	if r.textfile == "" {
		return
	}
	if err := r.metrics.WriteTextfile(r.textfile); err != nil {
		r.log.Errorf("Failed to write metrics to %s: %v", r.textfile, err)
	}
}

func (r *Runner) processOne(path string) types.FileResult {
	start := time.Now()
	out := r.proc.OutputPath(path, r.opts.OutputDir, r.opts.Suffix)

	err := r.proc.ProcessFile(path, out)
	res := types.FileResult{Input: path, Output: out, Err: err, Duration: time.Since(start)}
	if err != nil {
		r.log.Errorf("Failed to process %s: %v", filepath.Base(path), err)
		res.Output = ""
		return res
	}

	r.log.Infof("Processed %s and saved as %s", filepath.Base(path), out)
	return res
}
