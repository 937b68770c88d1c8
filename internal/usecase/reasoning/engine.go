// Package reasoning decorates the reasoning engine transport with the
// policies every pipeline run shares: a rate ceiling, a token budget,
// metrics and a per-call timeout.
package reasoning

import (
	"time"

	"github.com/kailas-cloud/jarvis/internal/domain"
)

// Options configure NewEngine.
type Options struct {
	Model         string
	Timeout       time.Duration
	RatePerMinute int
	RateAction    RateAction
	Budget        BudgetChecker // optional
}

// NewEngine assembles the decorator chain around a transport:
// rate ceiling -> budget and metrics -> timeout -> transport.
// Waiting for a rate slot does not count against the call timeout.
func NewEngine(transport domain.Engine, opts Options) domain.Engine {
	var e domain.Engine = NewTimeoutEngine(transport, opts.Timeout)
	e = NewInstrumentedEngine(e, opts.Model, opts.Budget)
	return NewRateLimitedEngine(e, opts.RatePerMinute, opts.RateAction)
}
