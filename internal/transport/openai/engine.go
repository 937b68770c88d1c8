// Package openai implements the reasoning engine over an OpenAI-compatible
// chat completion API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jarvis/internal/domain"
)

var (
	_ domain.Engine        = (*Engine)(nil)
	_ domain.HealthChecker = (*Engine)(nil)
)

// Engine sends one chat completion per stage.
type Engine struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	jsonMode    bool
	logger      *zap.Logger
}

// Config holds the chat completion provider settings.
type Config struct {
	APIKey      string
	BaseURL     string // empty means api.openai.com
	Model       string
	Temperature float32
	MaxTokens   int
	JSONMode    bool // send response_format json_object for structured stages
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// NewEngine creates an OpenAI-compatible reasoning engine.
func NewEngine(cfg *Config) *Engine {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		jsonMode:    cfg.JSONMode,
		logger:      log,
	}
}

// Invoke implements domain.Engine.
func (e *Engine) Invoke(ctx context.Context, req domain.ReasoningRequest) (domain.ReasoningResult, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.Role != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.Role})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Instruction})

	creq := openai.ChatCompletionRequest{
		Model:       e.model,
		Messages:    messages,
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	}
	if req.JSON && e.jsonMode {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	resp, err := e.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return domain.ReasoningResult{}, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return domain.ReasoningResult{}, fmt.Errorf("empty completion: %w", domain.ErrReasoningProviderError)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		e.logger.Warn("Completion truncated at max tokens",
			zap.String("stage", req.Stage),
			zap.Int("max_tokens", e.maxTokens),
		)
	}

	return domain.ReasoningResult{
		Content:          choice.Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Engine) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError maps provider errors onto domain sentinels: 429 and quota
// messages become ErrQuotaExceeded, context errors pass through for the
// timeout decorator, everything else is ErrReasoningProviderError.
func parseAPIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("chat completion: %w", err)
	}

	status, detail := 0, ""
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status, detail = apiErr.HTTPStatusCode, apiErr.Message
		if apiErr.Type != "" && !strings.Contains(detail, apiErr.Type) {
			detail = apiErr.Type + ": " + detail
		}
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
		if detail = extractDetail(reqErr.Body); detail == "" {
			detail = strings.TrimSpace(string(reqErr.Body))
		}
	default:
		return fmt.Errorf("chat completion failed: %v: %w", err, domain.ErrReasoningProviderError)
	}

	wrap := domain.ErrReasoningProviderError
	if status == http.StatusTooManyRequests || isQuotaDetail(detail) {
		wrap = domain.ErrQuotaExceeded
	}
	return fmt.Errorf("chat completion API error %d: %s: %w", status, detail, wrap)
}

func isQuotaDetail(detail string) bool {
	lower := strings.ToLower(detail)
	return strings.Contains(lower, "quota") || strings.Contains(lower, "resource_exhausted")
}

// extractDetail pulls a message out of a JSON error body. Providers use
// either {"detail": "..."} or {"error": {"message": "..."}}.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return parsed.Error.Message
}
