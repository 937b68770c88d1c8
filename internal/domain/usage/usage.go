// Package usage describes reasoning-engine token consumption for reporting.
package usage

import "fmt"

// Period is the aggregation window.
type Period string

// Aggregation windows.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod accepts "day" and "month"; empty defaults to day.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Budget is a snapshot of one token window.
type Budget struct {
	Limit     int64 // 0 means unlimited
	Used      int64
	Remaining int64
	ResetsAt  int64 // unix millis
}

// Unlimited reports whether no cap is configured.
func (b Budget) Unlimited() bool { return b.Limit <= 0 }

// Exhausted reports whether a capped window has no tokens left.
func (b Budget) Exhausted() bool { return !b.Unlimited() && b.Remaining <= 0 }

// Report is a usage report for one window.
type Report struct {
	Period      Period
	PeriodStart int64 // unix millis
	PeriodEnd   int64 // unix millis
	Budget      Budget
}
