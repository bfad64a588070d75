package jobs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaan-pos/dukaan/app/jobs"
	"github.com/dukaan-pos/dukaan/pkg/event"
)

type fakeJob struct {
	name   string
	counts jobs.Counts
	err    error
	panics bool
	runs   int
}

func (f *fakeJob) Name() string { return f.name }

func (f *fakeJob) Run(ctx context.Context) (jobs.Counts, error) {
	f.runs++
	if f.panics {
		panic("boom")
	}
	return f.counts, f.err
}

func collectEvents(bus *event.Bus) *[]jobs.Event {
	var got []jobs.Event
	bus.Listen(jobs.TopicJobStatus, func(payload interface{}) {
		if e, ok := payload.(jobs.Event); ok {
			got = append(got, e)
		}
	})
	return &got
}

func TestDispatchPublishesCheckingThenCompleted(t *testing.T) {
	bus := event.NewBus()
	got := collectEvents(bus)
	runner := jobs.NewRunner(bus)

	job := &fakeJob{name: "nightly", counts: jobs.Counts{"closed": 2}}
	require.NoError(t, runner.Dispatch(context.Background(), job))

	require.Len(t, *got, 2)
	assert.Equal(t, jobs.PhaseChecking, (*got)[0].Phase)
	assert.Equal(t, jobs.PhaseCompleted, (*got)[1].Phase)
	assert.Equal(t, "nightly", (*got)[1].Job)
	assert.Equal(t, 2, (*got)[1].Counts["closed"])
	assert.Empty(t, (*got)[1].Err)
}

func TestDispatchPublishesFailedOnError(t *testing.T) {
	bus := event.NewBus()
	got := collectEvents(bus)
	runner := jobs.NewRunner(bus)

	wantErr := errors.New("remote store unreachable")
	err := runner.Dispatch(context.Background(), &fakeJob{name: "sync", err: wantErr})
	require.ErrorIs(t, err, wantErr)

	require.Len(t, *got, 2)
	assert.Equal(t, jobs.PhaseFailed, (*got)[1].Phase)
	assert.Contains(t, (*got)[1].Err, "unreachable")
}

func TestDispatchContainsPanics(t *testing.T) {
	bus := event.NewBus()
	got := collectEvents(bus)
	runner := jobs.NewRunner(bus)

	err := runner.Dispatch(context.Background(), &fakeJob{name: "backup", panics: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")

	require.Len(t, *got, 2)
	assert.Equal(t, jobs.PhaseFailed, (*got)[1].Phase)
}

func TestTaskSwallowsFailuresForTheScheduler(t *testing.T) {
	runner := jobs.NewRunner(event.NewBus())
	job := &fakeJob{name: "sync", err: errors.New("down")}

	task := runner.Task(job)
	require.NotPanics(t, func() { task() })
	assert.Equal(t, 1, job.runs)
}
