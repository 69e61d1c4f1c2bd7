package crawl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/rfqtrack"
	"github.com/google/uuid"
)

// DefaultTimeout bounds a background crawl.
const DefaultTimeout = 5 * time.Minute

// Runner runs at most one crawl at a time in the background.
type Runner struct {
	Crawler  rfqtrack.CrawlService
	Projects rfqtrack.ProjectService

	// Timeout bounds each crawl. Defaults to DefaultTimeout; negative
	// disables the bound.
	Timeout time.Duration

	// OnFinish, if set, is called after every crawl, before the job is
	// marked done. Callers use it to invalidate cached query results.
	OnFinish func(summary *rfqtrack.CrawlSummary, err error)

	Logger *slog.Logger

	mu      sync.Mutex
	running *Job
	last    *Job
}

// JobState describes where a job is in its lifecycle.
type JobState string

// JobState constants.
const (
	JobRunning  JobState = "running"
	JobFinished JobState = "finished"
	JobFailed   JobState = "failed"
)

// Job is a crawl started by a Runner.
type Job struct {
	ID        string
	DryRun    bool
	StartedAt time.Time

	cancel  context.CancelFunc
	done    chan struct{}
	summary *rfqtrack.CrawlSummary
	err     error
}

// JobStatus is a snapshot of a job.
type JobStatus struct {
	ID        string                 `json:"id"`
	State     JobState               `json:"state"`
	DryRun    bool                   `json:"dryRun"`
	StartedAt time.Time              `json:"startedAt"`
	Summary   *rfqtrack.CrawlSummary `json:"summary,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Done returns a channel that is closed when the crawl has finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Cancel asks the crawl to stop without waiting for it. Projects already
// scanned are still stored.
func (j *Job) Cancel() {
	j.cancel()
}

// Wait blocks until the crawl finishes or ctx is done. Cancelling ctx does
// not stop the crawl.
func (j *Job) Wait(ctx context.Context) (*rfqtrack.CrawlSummary, error) {
	select {
	case <-j.done:
		return j.summary, j.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Status returns a snapshot of the job.
func (j *Job) Status() JobStatus {
	status := JobStatus{
		ID:        j.ID,
		State:     JobRunning,
		DryRun:    j.DryRun,
		StartedAt: j.StartedAt,
	}
	select {
	case <-j.done:
	default:
		return status
	}
	status.Summary = j.summary
	status.State = JobFinished
	if j.err != nil {
		status.State = JobFailed
		status.Error = rfqtrack.ErrorMessage(j.err)
	}
	return status
}

// Start launches a crawl in the background and returns immediately. The
// crawl is detached from ctx's cancellation and bounded by Timeout; use
// Job.Cancel to stop it sooner. Returns ECONFLICT if a crawl is already
// running.
func (r *Runner) Start(ctx context.Context, opts rfqtrack.CrawlOptions) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running != nil {
		return nil, rfqtrack.Errorf(rfqtrack.ECONFLICT, "crawl already running")
	}

	crawlCtx := context.WithoutCancel(ctx)
	stopTimer := context.CancelFunc(func() {})
	if timeout := r.timeout(); timeout > 0 {
		crawlCtx, stopTimer = context.WithTimeout(crawlCtx, timeout)
	}
	crawlCtx, cancel := context.WithCancel(crawlCtx)

	job := &Job{
		ID:        uuid.New().String(),
		DryRun:    opts.DryRun,
		StartedAt: time.Now().UTC(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	r.running = job

	go func() {
		defer stopTimer()
		defer cancel()
		summary, err := r.Crawler.Crawl(crawlCtx, opts)
		r.finish(job, summary, err)
	}()

	return job, nil
}

// Run starts a crawl and waits for it to finish. Cancelling ctx stops the
// crawl, but Run still returns only after the crawl has stopped, with the
// summary of whatever was done.
func (r *Runner) Run(ctx context.Context, opts rfqtrack.CrawlOptions) (*rfqtrack.CrawlSummary, error) {
	job, err := r.Start(ctx, opts)
	if err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, job.Cancel)
	defer stop()
	return job.Wait(context.WithoutCancel(ctx))
}

// Seed runs a crawl and waits for it only when storage holds no projects.
// It returns a nil summary when storage was already populated.
func (r *Runner) Seed(ctx context.Context) (*rfqtrack.CrawlSummary, error) {
	n, err := r.Projects.CountProjects(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}
	r.logger().Info("store is empty, running initial crawl")
	return r.Run(ctx, rfqtrack.CrawlOptions{})
}

// Current returns the running job, or the last finished one. It returns
// nil before the first crawl.
func (r *Runner) Current() *Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running != nil {
		return r.running
	}
	return r.last
}

func (r *Runner) finish(job *Job, summary *rfqtrack.CrawlSummary, err error) {
	job.summary, job.err = summary, err

	if err != nil {
		r.logger().Error("crawl failed", "job", job.ID, "err", err)
	}
	if r.OnFinish != nil {
		r.OnFinish(summary, err)
	}

	r.mu.Lock()
	r.running = nil
	r.last = job
	r.mu.Unlock()

	close(job.done)
}

func (r *Runner) timeout() time.Duration {
	switch {
	case r.Timeout == 0:
		return DefaultTimeout
	case r.Timeout < 0:
		return 0
	}
	return r.Timeout
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}
