package jarvis

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/jarvis/internal/domain"
)

// Engine answers one stage instruction. Implementations wrap a chat
// completion API; rate limiting, timeouts and metrics are added by the client.
type Engine interface {
	Invoke(ctx context.Context, req ReasoningRequest) (ReasoningResult, error)
}

// ReasoningRequest is a single engine call.
type ReasoningRequest struct {
	Stage       string
	Role        string
	Instruction string
	JSON        bool // the stage expects a JSON object
}

// ReasoningResult carries the completion text and token counts.
type ReasoningResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// engineAdapter wraps public Engine to satisfy internal domain.Engine.
type engineAdapter struct {
	inner Engine
}

func (a *engineAdapter) Invoke(ctx context.Context, req domain.ReasoningRequest) (domain.ReasoningResult, error) {
	r, err := a.inner.Invoke(ctx, ReasoningRequest{
		Stage:       req.Stage,
		Role:        req.Role,
		Instruction: req.Instruction,
		JSON:        req.JSON,
	})
	if err != nil {
		return domain.ReasoningResult{}, fmt.Errorf("invoke %s: %w", req.Stage, err)
	}
	return domain.ReasoningResult{
		Content:          r.Content,
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		TotalTokens:      r.TotalTokens,
	}, nil
}

// noopEngine is used when no engine is configured.
type noopEngine struct{}

func (noopEngine) Invoke(context.Context, domain.ReasoningRequest) (domain.ReasoningResult, error) {
	return domain.ReasoningResult{}, fmt.Errorf("%w: no engine configured", domain.ErrReasoningProviderError)
}
