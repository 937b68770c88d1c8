package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/jarvis/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (unlimited mode).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// GetReport builds a token usage report for the given period.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now().UTC()
	var (
		start, end time.Time
		b          domusage.Budget
	)

	switch period {
	case domusage.PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
		if s.br != nil {
			b = domusage.Budget{Limit: s.br.MonthlyLimit(), Used: s.br.MonthlyUsed(), Remaining: s.br.RemainingMonthly()}
		}
	default:
		period = domusage.PeriodDay
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.Add(24 * time.Hour)
		if s.br != nil {
			b = domusage.Budget{Limit: s.br.DailyLimit(), Used: s.br.DailyUsed(), Remaining: s.br.RemainingDaily()}
		}
	}

	if b.Unlimited() || b.Remaining < 0 {
		b.Remaining = 0
	}
	b.ResetsAt = end.UnixMilli()

	return domusage.Report{
		Period:      period,
		PeriodStart: start.UnixMilli(),
		PeriodEnd:   end.UnixMilli(),
		Budget:      b,
	}
}
