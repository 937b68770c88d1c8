package reasoning

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jarvis/internal/domain"
	"github.com/kailas-cloud/jarvis/internal/logger"
	"github.com/kailas-cloud/jarvis/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedEngine wraps an Engine with budget enforcement, metrics and
// per-request token accounting.
type InstrumentedEngine struct {
	inner  domain.Engine
	model  string
	budget BudgetChecker
}

// NewInstrumentedEngine wraps inner. budget can be nil.
func NewInstrumentedEngine(inner domain.Engine, model string, budget BudgetChecker) *InstrumentedEngine {
	return &InstrumentedEngine{inner: inner, model: model, budget: budget}
}

// Invoke checks the budget, delegates and records usage.
func (e *InstrumentedEngine) Invoke(ctx context.Context, req domain.ReasoningRequest) (domain.ReasoningResult, error) {
	log := logger.FromContext(ctx)

	if e.budget != nil {
		if err := e.budget.Check(ctx); err != nil {
			log.Warn("Reasoning budget exhausted", zap.String("stage", req.Stage), zap.Error(err))
			e.countError(err)
			return domain.ReasoningResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	result, err := e.inner.Invoke(ctx, req)
	duration := time.Since(start)

	metrics.ReasoningRequestDuration.WithLabelValues(e.model, req.Stage).Observe(duration.Seconds())
	if err != nil {
		metrics.ReasoningRequestsTotal.WithLabelValues(e.model, req.Stage, "error").Inc()
		e.countError(err)
		log.Error("Reasoning request failed",
			zap.String("stage", req.Stage),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.ReasoningResult{}, fmt.Errorf("invoke: %w", err)
	}
	metrics.ReasoningRequestsTotal.WithLabelValues(e.model, req.Stage, "ok").Inc()
	metrics.ReasoningTokensTotal.WithLabelValues(e.model, "prompt").Add(float64(result.PromptTokens))
	metrics.ReasoningTokensTotal.WithLabelValues(e.model, "completion").Add(float64(result.CompletionTokens))

	domain.UsageFromContext(ctx).Add(result.TotalTokens)

	if e.budget != nil && result.TotalTokens > 0 {
		e.budget.Record(int64(result.TotalTokens))
		metrics.ReasoningBudgetTokensRemaining.WithLabelValues("daily").Set(float64(e.budget.RemainingDaily()))
		metrics.ReasoningBudgetTokensRemaining.WithLabelValues("monthly").Set(float64(e.budget.RemainingMonthly()))
	}

	log.Debug("Reasoning request completed",
		zap.String("stage", req.Stage),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
	)
	return result, nil
}

func (e *InstrumentedEngine) countError(err error) {
	metrics.ReasoningErrorsTotal.WithLabelValues(e.model, domain.Classify(err).String()).Inc()
}
