package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guardrail-labs/sentinel/internal/core"
)

// runAnalyzer executes one analyzer under its declared budget and absorbs
// every failure mode into a Finding. The returned finding always
// satisfies the success-xor-failure contract.
//
// A misbehaving analyzer that ignores cancellation is abandoned at the
// budget; its goroutine finishes into a buffered channel.
func runAnalyzer(ctx context.Context, a core.Analyzer, view core.RequestView) core.Finding {
	budget := a.Budget()
	actx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	start := time.Now()
	done := make(chan core.Finding, 1)
	go func() {
		// A panicking analyzer must not take the request down; it
		// becomes a failed finding like any other analyzer error.
		defer func() {
			if r := recover(); r != nil {
				done <- core.FailedFinding(a.Name(),
					core.ErrInternal("analyzer panic").
						WithDetail("analyzer", a.Name()).
						WithDetail("panic", fmt.Sprint(r)))
			}
		}()
		f, err := a.Analyze(actx, view)
		if err != nil {
			done <- failureFinding(a.Name(), budget, err)
			return
		}
		f.Source = a.Name()
		f.Duration = time.Since(start)
		if verr := f.Validate(); verr != nil {
			done <- core.FailedFinding(a.Name(),
				core.ErrAnalyzer(a.Name(), fmt.Sprintf("contract violation: %v", verr)))
			return
		}
		done <- f
	}()

	select {
	case f := <-done:
		return f
	case <-actx.Done():
		f := failureFinding(a.Name(), budget, actx.Err())
		f.Duration = time.Since(start)
		return f
	}
}

func failureFinding(name string, budget time.Duration, err error) core.Finding {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.TimedOutFinding(name, budget)
	}
	if errors.Is(err, context.Canceled) {
		return core.FailedFinding(name, core.ErrAnalyzer(name, "cancelled").WithCause(err))
	}
	var de *core.DomainError
	if errors.As(err, &de) {
		return core.FailedFinding(name, de)
	}
	return core.FailedFinding(name, core.ErrAnalyzer(name, err.Error()).WithCause(err))
}
