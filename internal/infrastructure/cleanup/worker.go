// Package cleanup provides the background reservation sweep worker
package cleanup

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/inventory"
)

// Sweeper is the part of the inventory engine the worker drives.
type Sweeper interface {
	Now() time.Time
	SweepExpired(now time.Time) int
	Pools() []inventory.Pool
	ActiveReservations() int
}

// Worker periodically releases expired reservations. Reads and Reserve also
// sweep lazily, so the worker only bounds how long an abandoned hold can
// linger while nobody is looking.
type Worker struct {
	sweeper Sweeper
	config  *Config
	logger  *slog.Logger
	out     io.Writer
}

// NewWorker creates a new sweep worker. Verbose reports go to stdout.
func NewWorker(sweeper Sweeper, config *Config, logger *slog.Logger) *Worker {
	return &Worker{
		sweeper: sweeper,
		config:  config,
		logger:  logger,
		out:     os.Stdout,
	}
}

// SetOutput redirects verbose reports.
func (w *Worker) SetOutput(out io.Writer) {
	w.out = out
}

// Start runs the sweep loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	interval := w.config.SweepInterval
	if interval <= 0 {
		interval = 45 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("Reservation sweep worker started",
		"interval", interval, "verbose", w.config.VerboseReporting)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Reservation sweep worker stopping")
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

// RunOnce performs a single sweep and returns the number of holds released.
func (w *Worker) RunOnce() int {
	start := time.Now()
	now := w.sweeper.Now()
	released := w.sweeper.SweepExpired(now)
	duration := time.Since(start)

	if w.config.VerboseReporting {
		reporter := NewReporter(w.out)
		reporter.LogStage("PERIODIC RESERVATION SWEEP")
		pools := w.sweeper.Pools()
		io.WriteString(w.out, reporter.GeneratePoolReport(now, pools, w.sweeper.ActiveReservations()))
		if n := soldOutCount(pools); n > 0 {
			reporter.LogWarning("%d of %d packages sold out", n, len(pools))
		}
		if released > 0 {
			reporter.LogSuccess("Sweep finished: %d expired reservations released in %v", released, duration)
		} else {
			reporter.LogInfo("Sweep completed - no expired reservations found (%v)", duration)
		}
	}

	if released > 0 {
		w.logger.Info("Expired reservations released", "count", released, "duration", duration)
	}
	return released
}

func soldOutCount(pools []inventory.Pool) int {
	n := 0
	for _, p := range pools {
		if p.SoldOut() {
			n++
		}
	}
	return n
}
