package testutil

import (
	"context"
	"sync"
	"time"
)

// FakeRun scripts one execution of a FakeExecutor.
type FakeRun struct {
	// Duration is how far the run advances the clock.
	Duration time.Duration
	Err      error
	// Before is called when the run starts.
	Before func()
}

// FakeExecutor plays back scripted runs on a FakeClock. Once the script is
// exhausted further runs return immediately.
type FakeExecutor struct {
	Clock *FakeClock

	mu     sync.Mutex
	script []FakeRun
	calls  int
}

// NewFakeExecutor scripts runs on clock.
func NewFakeExecutor(clock *FakeClock, runs ...FakeRun) *FakeExecutor {
	return &FakeExecutor{Clock: clock, script: runs}
}

// Run plays the next scripted run.
func (e *FakeExecutor) Run(ctx context.Context) error {
	e.mu.Lock()
	var run FakeRun
	if e.calls < len(e.script) {
		run = e.script[e.calls]
	}
	e.calls++
	e.mu.Unlock()

	if run.Before != nil {
		run.Before()
	}
	e.Clock.Advance(run.Duration)
	if run.Err != nil {
		return run.Err
	}
	return ctx.Err()
}

// Calls returns how many runs were started.
func (e *FakeExecutor) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
