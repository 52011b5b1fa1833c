package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guardrail-labs/sentinel/internal/core"
	"github.com/guardrail-labs/sentinel/internal/logging"
)

// FanOut runs the expensive analyzers concurrently under a shared
// sub-budget. Analyzers still running at the deadline are cancelled and
// recorded as timed-out findings; partial results are always returned.
// The pipeline never aborts a request because one analyzer failed.
type FanOut struct {
	pool   *WorkerPool
	budget time.Duration
	logger *logging.Logger
}

// NewFanOut creates a fan-out coordinator sharing the given pool.
func NewFanOut(pool *WorkerPool, budget time.Duration, logger *logging.Logger) *FanOut {
	return &FanOut{
		pool:   pool,
		budget: budget,
		logger: logger,
	}
}

// Run starts all analyzers and waits for completion or the sub-budget,
// whichever comes first. Findings are returned in roster order, one per
// analyzer, failures included.
func (f *FanOut) Run(ctx context.Context, view core.RequestView, analyzers []core.Analyzer) []core.Finding {
	fctx, cancel := context.WithTimeout(ctx, f.budget)
	defer cancel()

	log := f.logger.WithRequest(string(view.ID)).WithStage(core.StageFanOut)
	start := time.Now()

	findings := make([]core.Finding, len(analyzers))
	g := new(errgroup.Group)
	for i, a := range analyzers {
		g.Go(func() error {
			// Queue for a pool slot; saturation applies backpressure
			// rather than spawning unbounded work. Hitting the deadline
			// while queued counts as a timeout.
			if err := f.pool.Acquire(fctx); err != nil {
				findings[i] = core.TimedOutFinding(a.Name(), f.budget)
				return nil
			}
			defer f.pool.Release()

			findings[i] = runAnalyzer(fctx, a, view)
			if findings[i].Failed() {
				log.Warn("analyzer failed",
					"analyzer", a.Name(),
					"timed_out", findings[i].TimedOut(),
					"error", findings[i].ErrMessage,
				)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures live in findings

	log.Debug("fan-out complete",
		"analyzers", len(analyzers),
		"duration", time.Since(start).String(),
	)
	return findings
}
