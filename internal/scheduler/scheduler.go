package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/Deokive/BE-sub001/internal/infrastructure/metrics"
	usecasecontract "github.com/Deokive/BE-sub001/internal/usecase/contract"
)

// ErrAlreadyRunning is returned by TriggerNow when a run is in flight.
var ErrAlreadyRunning = errors.New("scheduler: job already running")

// Job is a background task executed on a fixed interval. Runs of the same
// job never overlap; different jobs run concurrently.
type Job interface {
	Name() string
	Domain() string
	Run(ctx context.Context) error
}

// Runner drives one Job on a ticker and exposes an operator force-run.
// Run errors are contained and logged, never propagated to request paths.
type Runner struct {
	job      Job
	interval time.Duration
	logger   usecasecontract.IAppLogger
	metrics  *metrics.Metrics

	running atomic.Bool
	stop    chan struct{}
	done    chan struct{}
}

// NewRunner creates a Runner for the job.
func NewRunner(job Job, interval time.Duration, logger usecasecontract.IAppLogger, m *metrics.Metrics) *Runner {
	return &Runner{
		job:      job,
		interval: interval,
		logger:   logger,
		metrics:  m,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticker loop. Stop shuts it down.
func (r *Runner) Start() {
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := r.runOnce(context.Background()); err != nil && !errors.Is(err, ErrAlreadyRunning) {
					r.logger.Errorf("job %s (%s) failed: %v", r.job.Name(), r.job.Domain(), err)
				}
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop terminates the ticker loop and waits for it to exit. An in-flight run
// is allowed to finish.
func (r *Runner) Stop() {
	close(r.stop)
	<-r.done
}

// Key identifies the runner as "<name>:<domain>".
func (r *Runner) Key() string {
	return r.job.Name() + ":" + r.job.Domain()
}

// TriggerNow force-runs the job once, for operational and test use. It
// returns ErrAlreadyRunning instead of queuing a second run.
func (r *Runner) TriggerNow(ctx context.Context) error {
	return r.runOnce(ctx)
}

func (r *Runner) runOnce(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer r.running.Store(false)

	start := time.Now()
	err := r.job.Run(ctx)
	r.metrics.JobDuration.WithLabelValues(r.job.Name(), r.job.Domain()).Observe(time.Since(start).Seconds())
	return err
}
