package schedule

import (
	"sync/atomic"
	"testing"
	"time"
)

// fireAt builds an instant that matches "* * * * * *" ticks in UTC.
func fireAt(sec int) time.Time {
	return time.Date(2026, time.March, 4, 10, 0, sec, 0, time.UTC)
}

func TestScheduleRejectsMalformed(t *testing.T) {
	s := New(time.UTC)
	if _, err := s.Schedule("not a cron", func() {}); err == nil {
		t.Fatal("expected registration to fail for a malformed expression")
	}
}

func TestTickDispatchesDueEntry(t *testing.T) {
	s := New(time.UTC)
	done := make(chan struct{})
	_, err := s.Schedule("0 10 * * *", func() { close(done) })
	if err != nil {
		t.Fatal(err)
	}

	s.tick(fireAt(0))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not dispatched at its fire time")
	}
}

func TestSkipIfRunning(t *testing.T) {
	s := New(time.UTC)

	var started atomic.Int32
	release := make(chan struct{})
	running := make(chan struct{}, 2)

	_, err := s.Schedule("* * * * * *", func() {
		started.Add(1)
		running <- struct{}{}
		<-release
	}, WithName("slow"))
	if err != nil {
		t.Fatal(err)
	}

	s.tick(fireAt(1))
	<-running // first run is now executing

	// Second due tick while the first run is still in flight: must skip.
	s.tick(fireAt(2))
	time.Sleep(50 * time.Millisecond)
	if got := started.Load(); got != 1 {
		t.Fatalf("expected 1 invocation while first run in flight, got %d", got)
	}

	close(release)
	time.Sleep(50 * time.Millisecond) // let the dispatch goroutine clear the flag

	// After completion the next tick runs again.
	s.tick(fireAt(3))
	select {
	case <-running:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run again after previous run finished")
	}
	if got := started.Load(); got != 2 {
		t.Fatalf("expected 2 invocations total, got %d", got)
	}
}

func TestHandleStopCancelsFutureFirings(t *testing.T) {
	s := New(time.UTC)

	var fired atomic.Int32
	h, err := s.Schedule("* * * * * *", func() { fired.Add(1) })
	if err != nil {
		t.Fatal(err)
	}

	h.Stop()
	s.tick(fireAt(1))
	time.Sleep(50 * time.Millisecond)

	if got := fired.Load(); got != 0 {
		t.Fatalf("stopped entry fired %d times", got)
	}
	if entries := s.Entries(); len(entries) != 0 {
		t.Fatalf("stopped entry still listed: %v", entries)
	}
}

func TestTickEvaluatesInSchedulerTimezone(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatal(err)
	}
	s := New(kolkata)

	done := make(chan struct{})
	if _, err := s.Schedule("0 17 * * *", func() { close(done) }); err != nil {
		t.Fatal(err)
	}

	// 11:30 UTC is 17:00 in Asia/Kolkata (+05:30).
	s.tick(time.Date(2026, time.March, 4, 11, 30, 0, 0, time.UTC))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("entry did not fire at 17:00 store time")
	}
}
