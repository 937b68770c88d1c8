package domain

import "context"

// Engine is the shared reasoning contract between layers: one instruction in,
// one completion out.
type Engine interface {
	Invoke(ctx context.Context, req ReasoningRequest) (ReasoningResult, error)
}

// HealthChecker verifies reasoning provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ReasoningRequest is a single engine call.
type ReasoningRequest struct {
	Stage       string // pipeline stage name, used for metrics and logs
	Role        string // system prompt describing the agent persona
	Instruction string
	JSON        bool // ask the provider for a JSON object response
}

// ReasoningResult carries the completion text and token usage through the decorator chain.
type ReasoningResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
