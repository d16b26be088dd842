package batch

import (
	"context"

	"github.com/github-young/cropColonyImage/pkg/types"
)

// Job is a batch running in the background. Progress() only ever holds the
// latest update: a slow reader skips intermediate values but never sees
// them out of order, and the final update is always delivered before the
// channel is closed.
type Job struct {
	progress chan types.Progress
	done     chan struct{}
	summary  types.Summary
	err      error
}

// Start runs the batch on its own goroutine
func (r *Runner) Start(ctx context.Context) *Job {
	j := &Job{
		progress: make(chan types.Progress, 1),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(j.done)
		defer close(j.progress)
		j.summary, j.err = r.Run(ctx, j.publish)
	}()

	return j
}

// publish replaces any unread update with p. Only called from Run's
// serialized progress callback, so the send after draining cannot block.
func (j *Job) publish(p types.Progress) {
	select {
	case j.progress <- p:
		return
	default:
	}
	select {
	case <-j.progress:
	default:
	}
	j.progress <- p
}

// Progress delivers progress updates and is closed when the batch ends
func (j *Job) Progress() <-chan types.Progress {
	return j.progress
}

// Done is closed when the batch ends
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the batch ends and returns its result
func (j *Job) Wait() (types.Summary, error) {
	<-j.done
	return j.summary, j.err
}
