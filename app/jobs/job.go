// Package jobs defines the scheduled work the resilience daemon runs and
// the uniform contract the scheduler drives it through.
//
// Every job implements Job; the Runner wraps a Job into a schedule.Task and
// applies the cross-cutting policy once — status events, logging, panic
// containment — so individual jobs carry no try/catch boilerplate. A job
// failure is logged and published, never propagated: one bad run must not
// take down the scheduler or its sibling jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/dukaan-pos/dukaan/pkg/event"
	"github.com/dukaan-pos/dukaan/pkg/logger"
	"github.com/dukaan-pos/dukaan/pkg/schedule"
)

// Counts carries per-run tallies (rows synced, sessions closed, artifacts
// pruned) for operators and the status surface.
type Counts map[string]int

// Job is one schedulable unit of background work.
type Job interface {
	Name() string
	Run(ctx context.Context) (Counts, error)
}

// Job status phases published on the event bus.
const (
	TopicJobStatus = "job.status"

	PhaseChecking  = "checking"
	PhaseCompleted = "completed"
	PhaseFailed    = "failed"
)

// Event is the observability payload collaborators (UI shell, log shipper)
// consume. This layer only emits it; rendering is someone else's job.
type Event struct {
	Job    string    `json:"job"`
	Phase  string    `json:"phase"`
	At     time.Time `json:"at"`
	Counts Counts    `json:"counts,omitempty"`
	Err    string    `json:"error,omitempty"`
}

// Runner executes jobs with uniform logging, eventing and failure isolation.
type Runner struct {
	bus *event.Bus
}

func NewRunner(bus *event.Bus) *Runner {
	return &Runner{bus: bus}
}

// Task adapts job for registration with the scheduler.
func (r *Runner) Task(job Job) schedule.Task {
	return func() { _ = r.Dispatch(context.Background(), job) }
}

// Dispatch runs job once, synchronously. The returned error is for direct
// (CLI) callers; scheduled invocations discard it after it has been logged
// and published.
func (r *Runner) Dispatch(ctx context.Context, job Job) (err error) {
	began := time.Now()
	r.publish(Event{Job: job.Name(), Phase: PhaseChecking, At: began})
	logger.Info("job: starting", "job", job.Name())

	var counts Counts
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name(), rec)
		}
		if err != nil {
			logger.Error("job: failed", "job", job.Name(), "duration", time.Since(began), "error", err)
			r.publish(Event{Job: job.Name(), Phase: PhaseFailed, At: time.Now(), Counts: counts, Err: err.Error()})
			return
		}
		logger.Info("job: completed", "job", job.Name(), "duration", time.Since(began), "counts", map[string]int(counts))
		r.publish(Event{Job: job.Name(), Phase: PhaseCompleted, At: time.Now(), Counts: counts})
	}()

	counts, err = job.Run(ctx)
	return err
}

func (r *Runner) publish(e Event) {
	if r.bus != nil {
		r.bus.Fire(TopicJobStatus, e)
	}
}
