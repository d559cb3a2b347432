package supervisor

import (
	"context"
	"time"

	"github.com/arthur-debert/serverwrap/pkg/logging"
	"github.com/arthur-debert/serverwrap/pkg/status"
)

// DefaultMinInterval is the shortest run that restarts without waiting.
const DefaultMinInterval = 240 * time.Second

// Run describes one supervised execution.
type Run struct {
	Start   time.Time
	Elapsed time.Duration
	Err     error
}

// Supervisor measures runs and applies the restart cooldown.
type Supervisor struct {
	Clock       Clock
	Status      *status.Writer
	MinInterval time.Duration
}

// New creates a supervisor on the real clock.
func New(w *status.Writer, minInterval time.Duration) *Supervisor {
	return &Supervisor{Clock: RealClock(), Status: w, MinInterval: minInterval}
}

// Supervise runs exec to completion and reports how long it took.
func (s *Supervisor) Supervise(ctx context.Context, exec Executor) Run {
	logger := logging.GetLogger("supervisor")

	start := s.Clock.Now()
	logger.Info().Msg("Starting server")
	err := exec.Run(ctx)
	run := Run{Start: start, Elapsed: s.Clock.Now().Sub(start), Err: err}

	if err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Dur("elapsed", run.Elapsed).Msg("Server exited with an error")
	} else {
		logger.Info().Dur("elapsed", run.Elapsed).Msg("Server exited")
	}
	return run
}

// Delay is how long to wait after a run of the given length.
func Delay(elapsed, minInterval time.Duration) time.Duration {
	if elapsed < minInterval {
		return minInterval - elapsed
	}
	return 0
}

// Cooldown announces the restart and waits out the remaining minimum
// interval. It returns early with ctx.Err() when ctx is done.
func (s *Supervisor) Cooldown(ctx context.Context, run Run) error {
	delay := Delay(run.Elapsed, s.MinInterval)
	if delay == 0 {
		s.Status.Write(status.Restarting())
		return ctx.Err()
	}

	logger := logging.GetLogger("supervisor")
	logger.Warn().Dur("delay", delay).Dur("elapsed", run.Elapsed).Msg("Server restarted too quickly, waiting")
	s.Status.Write(status.RestartDelayed(delay))
	return s.Clock.Sleep(ctx, delay)
}
