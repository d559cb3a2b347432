// pkg/supervisor/supervisor_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: testutil fake clock and executor
// PURPOSE: Test run measurement and the restart cooldown

package supervisor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/serverwrap/pkg/errors"
	"github.com/arthur-debert/serverwrap/pkg/status"
	"github.com/arthur-debert/serverwrap/pkg/supervisor"
	"github.com/arthur-debert/serverwrap/pkg/testutil"
)

func TestDelay(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    time.Duration
	}{
		{"crash after one second", time.Second, 239 * time.Second},
		{"immediate crash", 0, 240 * time.Second},
		{"exactly the minimum", 240 * time.Second, 0},
		{"long run", 300 * time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, supervisor.Delay(tt.elapsed, supervisor.DefaultMinInterval))
		})
	}
}

func newSupervisor(clock *testutil.FakeClock, rec *testutil.RecordingNotifier) *supervisor.Supervisor {
	return &supervisor.Supervisor{
		Clock:       clock,
		Status:      status.NewWriter(rec),
		MinInterval: supervisor.DefaultMinInterval,
	}
}

func TestSuperviseAndCooldown(t *testing.T) {
	tests := []struct {
		name       string
		run        testutil.FakeRun
		wantSleeps []time.Duration
		wantMsg    string
	}{
		{
			name:       "short run waits out the interval",
			run:        testutil.FakeRun{Duration: time.Second},
			wantSleeps: []time.Duration{239 * time.Second},
			wantMsg:    "Server restarted too quickly! Waiting for 239 seconds...",
		},
		{
			name:    "long run restarts immediately",
			run:     testutil.FakeRun{Duration: 300 * time.Second},
			wantMsg: "Server closed! Restarting...",
		},
		{
			name:       "failed run is treated like an exit",
			run:        testutil.FakeRun{Duration: 10 * time.Second, Err: errors.New(errors.ErrProcess, "exit status 1")},
			wantSleeps: []time.Duration{230 * time.Second},
			wantMsg:    "Server restarted too quickly! Waiting for 230 seconds...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := testutil.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
			rec := &testutil.RecordingNotifier{}
			s := newSupervisor(clock, rec)
			exec := testutil.NewFakeExecutor(clock, tt.run)

			run := s.Supervise(context.Background(), exec)
			assert.Equal(t, tt.run.Duration, run.Elapsed)
			assert.Equal(t, tt.run.Err, run.Err)

			require.NoError(t, s.Cooldown(context.Background(), run))
			s.Status.Close()

			assert.Equal(t, tt.wantSleeps, clock.Sleeps())
			assert.Equal(t, []string{tt.wantMsg}, rec.Messages())
		})
	}
}

func TestCooldownCancelled(t *testing.T) {
	clock := testutil.NewFakeClock(time.Now())
	s := newSupervisor(clock, &testutil.RecordingNotifier{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Cooldown(ctx, supervisor.Run{Elapsed: time.Second})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, clock.Sleeps())
}

func TestRealClockSleep(t *testing.T) {
	clock := supervisor.RealClock()

	start := clock.Now()
	require.NoError(t, clock.Sleep(context.Background(), 10*time.Millisecond))
	assert.GreaterOrEqual(t, clock.Now().Sub(start), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, clock.Sleep(ctx, time.Hour), context.Canceled)
}
