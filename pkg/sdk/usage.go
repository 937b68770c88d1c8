package jarvis

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/jarvis/internal/domain/usage"
)

// UsagePeriod is the aggregation window for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport describes the token window of one period.
type UsageReport struct {
	Period      UsagePeriod
	PeriodStart time.Time
	PeriodEnd   time.Time
	Budget      BudgetStatus
}

// BudgetStatus tracks token quota state. A zero limit means unlimited.
type BudgetStatus struct {
	TokensLimit     int64
	TokensUsed      int64
	TokensRemaining int64
	IsExhausted     bool
	ResetsAt        time.Time
}

// Usage returns the token report for a period. The SDK has no budget, so
// limits are always zero.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) UsageReport {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, nil) }()

	p, err := domusage.ParsePeriod(string(period))
	if err != nil {
		p = domusage.PeriodDay
	}
	report := c.usageSvc.GetReport(ctx, p)
	b := report.Budget

	return UsageReport{
		Period:      UsagePeriod(report.Period),
		PeriodStart: time.UnixMilli(report.PeriodStart).UTC(),
		PeriodEnd:   time.UnixMilli(report.PeriodEnd).UTC(),
		Budget: BudgetStatus{
			TokensLimit:     b.Limit,
			TokensUsed:      b.Used,
			TokensRemaining: b.Remaining,
			IsExhausted:     b.Exhausted(),
			ResetsAt:        time.UnixMilli(b.ResetsAt).UTC(),
		},
	}
}

// usageUseCase is the internal interface for usage reports.
type usageUseCase interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}
