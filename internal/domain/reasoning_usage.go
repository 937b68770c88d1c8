package domain

import (
	"context"
	"sync"
)

type reasoningUsageKey struct{}

// ReasoningUsage collects engine token usage for a single HTTP request.
// The handler installs it, the instrumented engine adds to it, and the handler
// reports it in a response header.
type ReasoningUsage struct {
	mu          sync.Mutex
	calls       int
	totalTokens int
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *ReasoningUsage) {
	u := &ReasoningUsage{}
	return context.WithValue(ctx, reasoningUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector. Returns nil if not set.
func UsageFromContext(ctx context.Context) *ReasoningUsage {
	u, _ := ctx.Value(reasoningUsageKey{}).(*ReasoningUsage)
	return u
}

// Add records one engine call. Safe on a nil receiver.
func (u *ReasoningUsage) Add(tokens int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.calls++
	u.totalTokens += tokens
	u.mu.Unlock()
}

// Calls returns the number of engine calls recorded.
func (u *ReasoningUsage) Calls() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

// TotalTokens returns the tokens recorded across calls.
func (u *ReasoningUsage) TotalTokens() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.totalTokens
}
