// Package progress provides observational progress reporting for long
// Monte Carlo runs.
//
// Reporters are strictly passive: the simulation driver notifies them
// between iterations and ignores anything they do. The default reporter is
// built on log/slog so runs emit structured records (run id, replicate
// counts, estimated completion) that fit whatever handler the host program
// configured; Nop silences everything.
package progress

import (
	"log/slog"
	"time"
)

// Reporter receives run lifecycle notifications. Implementations must be
// safe for concurrent Step calls when the driver runs parallel workers.
type Reporter interface {
	// Start announces a run of total replicates.
	Start(runID string, total int)

	// Step announces that done replicates have completed; eta is the
	// estimated remaining duration (extrapolated after the first
	// completed replicate).
	Step(done int, eta time.Duration)

	// Done announces completion with final counts and elapsed time.
	Done(completed, failed int, elapsed time.Duration)
}

// Nop is the silent Reporter.
type Nop struct{}

func (Nop) Start(string, int)            {}
func (Nop) Step(int, time.Duration)      {}
func (Nop) Done(int, int, time.Duration) {}

// Slog reports through a structured logger.
type Slog struct {
	log   *slog.Logger
	runID string
	total int
	start time.Time
}

// NewSlog wraps a logger; nil selects slog.Default().
func NewSlog(l *slog.Logger) *Slog {
	if l == nil {
		l = slog.Default()
	}
	return &Slog{log: l}
}

// Start records the wall-clock start so Step can extrapolate completion.
func (s *Slog) Start(runID string, total int) {
	s.runID = runID
	s.total = total
	s.start = time.Now()
	s.log.Info("simulation started", "run_id", runID, "replicates", total)
}

// Step logs progress; the first call also logs the estimated completion
// time derived from the first replicate's duration.
func (s *Slog) Step(done int, eta time.Duration) {
	if done == 1 {
		s.log.Info("first replicate complete",
			"run_id", s.runID,
			"estimated_completion", time.Now().Add(eta).Round(time.Second))
		return
	}
	s.log.Info("progress",
		"run_id", s.runID,
		"done", done,
		"total", s.total,
		"eta", eta.Round(time.Second))
}

// Done logs the final counts.
func (s *Slog) Done(completed, failed int, elapsed time.Duration) {
	s.log.Info("simulation finished",
		"run_id", s.runID,
		"completed", completed,
		"failed", failed,
		"elapsed", elapsed.Round(time.Millisecond))
}
