// Package schedule provides a timezone-aware cron scheduler.
//
// A Scheduler is constructed with the store's operating timezone and owns a
// set of entries, each parsed and validated at registration time:
//
//	loc, _ := time.LoadLocation("Asia/Kolkata")
//	s := schedule.New(loc)
//	h, err := s.Schedule("0 17 * * *", runBackup, schedule.WithName("backup"))
//	if err != nil { ... }        // malformed expression, caught before Start
//	s.Start(ctx)
//	...
//	h.Stop()                     // cancels future firings only
//
// Expressions are evaluated in the scheduler's timezone, never in process-
// local time, so a till configured for Asia/Kolkata fires at 17:00 store
// time wherever the binary runs. The loop ticks once per second and
// dispatches due entries; an entry whose previous run is still executing is
// skipped, not queued. Firings missed while the process was down are never
// replayed.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dukaan-pos/dukaan/pkg/logger"
)

// Task is the function signature for a scheduled task.
type Task func()

// ErrInvalidExpression is wrapped by Schedule when an expression cannot be
// parsed. Registration fails fast — a malformed schedule must never make it
// into a running scheduler.
var ErrInvalidExpression = errors.New("schedule: invalid cron expression")

// entry represents a single registered schedule.
type entry struct {
	id      int
	name    string
	expr    string
	spec    *cronSpec
	task    Task
	running bool // overlap guard: skip-if-running
	stopped bool
	mu      sync.Mutex
}

// Scheduler fires registered tasks at cron-described times in a fixed zone.
type Scheduler struct {
	loc *time.Location

	mu      sync.Mutex
	entries []*entry
	nextID  int

	cancel context.CancelFunc
}

// New returns a Scheduler whose expressions are evaluated in loc.
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{loc: loc}
}

// Validate parses expr without registering anything, so callers can reject
// a bad configuration before the scheduler exists.
func Validate(expr string) error {
	_, err := parseCron(expr)
	return err
}

// Option configures a schedule entry at registration.
type Option func(*entry)

// WithName gives the entry a human-readable identifier for logging.
func WithName(name string) Option {
	return func(e *entry) { e.name = name }
}

// Schedule validates expr, registers the task and returns a Handle that can
// cancel future firings. The expression may have five fields
// (minute hour dom month dow, fires at second 0) or six with a leading
// seconds field.
func (s *Scheduler) Schedule(expr string, task Task, opts ...Option) (*Handle, error) {
	spec, err := parseCron(expr)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e := &entry{id: s.nextID, expr: expr, spec: spec, task: task}
	for _, opt := range opts {
		opt(e)
	}
	if e.name == "" {
		e.name = fmt.Sprintf("task-%d", e.id)
	}
	s.entries = append(s.entries, e)

	return &Handle{s: s, id: e.id}, nil
}

// Start begins the scheduler loop in the background. Register entries
// before calling Start so none are missed. Stop (or ctx cancellation) ends
// the loop; in-flight tasks are not interrupted.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
	logger.Info("schedule: scheduler started", "timezone", s.loc.String())
}

// Stop ends the dispatch loop. In-flight tasks run to completion.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("schedule: scheduler stopped")
			return
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

// tick dispatches every entry due at now. Split from the loop so tests can
// drive the scheduler with synthetic clocks.
func (s *Scheduler) tick(now time.Time) {
	local := now.In(s.loc)

	s.mu.Lock()
	current := make([]*entry, len(s.entries))
	copy(current, s.entries)
	s.mu.Unlock()

	for _, e := range current {
		if e.spec.matches(local) {
			dispatch(e)
		}
	}
}

func dispatch(e *entry) {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	if e.running {
		e.mu.Unlock()
		logger.Warn("schedule: previous run still executing, skipping", "task", e.name)
		return
	}
	e.running = true
	e.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "task", e.name, "panic", r)
			}
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
		}()

		e.task()
	}()
}

// Entries returns a description of every live entry (for CLI display).
func (s *Scheduler) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		e.mu.Lock()
		stopped := e.stopped
		e.mu.Unlock()
		if stopped {
			continue
		}
		out = append(out, fmt.Sprintf("%s  [%s]", e.name, e.expr))
	}
	return out
}

// Handle cancels future firings of one entry. Stopping never interrupts an
// in-flight run.
type Handle struct {
	s  *Scheduler
	id int
}

// Stop cancels all future firings of the entry. Idempotent.
func (h *Handle) Stop() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	for _, e := range h.s.entries {
		if e.id == h.id {
			e.mu.Lock()
			e.stopped = true
			e.mu.Unlock()
			return
		}
	}
}
