package reasoning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/jarvis/internal/domain"
)

// TimeoutEngine bounds each engine call. Expiry surfaces as
// domain.ErrEngineTimeout; caller cancellation passes through unchanged.
type TimeoutEngine struct {
	inner   domain.Engine
	timeout time.Duration
}

// NewTimeoutEngine wraps inner. A non-positive timeout disables the bound.
func NewTimeoutEngine(inner domain.Engine, timeout time.Duration) *TimeoutEngine {
	return &TimeoutEngine{inner: inner, timeout: timeout}
}

// Invoke runs the inner call under its own deadline.
func (e *TimeoutEngine) Invoke(ctx context.Context, req domain.ReasoningRequest) (domain.ReasoningResult, error) {
	if e.timeout <= 0 {
		return e.inner.Invoke(ctx, req)
	}
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.inner.Invoke(callCtx, req)
	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return domain.ReasoningResult{}, fmt.Errorf("%w after %s: %w", domain.ErrEngineTimeout, e.timeout, err)
	}
	return res, err
}
