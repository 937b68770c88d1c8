package reasoning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/jarvis/internal/domain"
	"github.com/kailas-cloud/jarvis/internal/logger"
	"github.com/kailas-cloud/jarvis/internal/metrics"
)

// RateAction selects what happens when the ceiling is reached.
type RateAction string

const (
	// RateWait queues the call until a slot frees up or ctx ends.
	RateWait RateAction = "wait"
	// RateReject fails the call immediately with domain.ErrRateLimited.
	RateReject RateAction = "reject"
)

// RateLimitedEngine admits at most perMinute engine calls in any rolling
// minute across every caller sharing it. Calls are never dropped silently.
type RateLimitedEngine struct {
	inner  domain.Engine
	action RateAction
	window time.Duration
	now    func() time.Time

	mu sync.Mutex
	// admits holds the last len(admits) admission times; next is the oldest.
	admits []time.Time
	next   int

	waitLog rate.Sometimes
}

// NewRateLimitedEngine wraps inner with a sliding-window log of the last
// perMinute admissions.
func NewRateLimitedEngine(inner domain.Engine, perMinute int, action RateAction) *RateLimitedEngine {
	return &RateLimitedEngine{
		inner:   inner,
		action:  action,
		window:  time.Minute,
		now:     time.Now,
		admits:  make([]time.Time, max(perMinute, 1)),
		waitLog: rate.Sometimes{Interval: 10 * time.Second},
	}
}

// Invoke acquires a slot and delegates.
func (e *RateLimitedEngine) Invoke(ctx context.Context, req domain.ReasoningRequest) (domain.ReasoningResult, error) {
	if err := e.acquire(ctx); err != nil {
		return domain.ReasoningResult{}, err
	}
	return e.inner.Invoke(ctx, req)
}

// reserve records an admission and returns 0, or returns how long until the
// oldest admission leaves the window.
func (e *RateLimitedEngine) reserve() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	oldest := e.admits[e.next]
	if !oldest.IsZero() {
		if wait := oldest.Add(e.window).Sub(now); wait > 0 {
			return wait
		}
	}
	e.admits[e.next] = now
	e.next = (e.next + 1) % len(e.admits)
	return 0
}

func (e *RateLimitedEngine) acquire(ctx context.Context) error {
	if e.action == RateReject {
		if e.reserve() > 0 {
			metrics.RateLimitRejectedTotal.Inc()
			return domain.ErrRateLimited
		}
		return nil
	}

	start := time.Now()
	defer func() { metrics.RateLimitWaitSeconds.Observe(time.Since(start).Seconds()) }()

	for {
		wait := e.reserve()
		if wait == 0 {
			return nil
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < wait {
			// the wait would outlive the request deadline
			metrics.RateLimitRejectedTotal.Inc()
			return fmt.Errorf("%w: next slot in %s", domain.ErrRateLimited, wait.Round(time.Millisecond))
		}
		e.waitLog.Do(func() {
			logger.FromContext(ctx).Warn("Reasoning rate ceiling reached, waiting", zap.Duration("wait", wait))
		})

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.Canceled) {
				return fmt.Errorf("rate limit wait: %w", ctx.Err())
			}
			metrics.RateLimitRejectedTotal.Inc()
			return fmt.Errorf("%w: %w", domain.ErrRateLimited, ctx.Err())
		}
	}
}
