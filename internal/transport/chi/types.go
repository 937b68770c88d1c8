package chi

import (
	"time"

	"github.com/kailas-cloud/jarvis/internal/domain/food"
	"github.com/kailas-cloud/jarvis/internal/domain/recommendation"
)

// ErrorCode is the machine-readable error kind in error bodies.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeNotFound         ErrorCode = "not_found"
	ErrorCodeRateLimited      ErrorCode = "rate_limited"
	ErrorCodeQuotaExceeded    ErrorCode = "quota_exceeded"
	ErrorCodeUpstream         ErrorCode = "upstream_unavailable"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ProcessChatRequest is the POST /process-chat body.
type ProcessChatRequest struct {
	Message             string                     `json:"message"`
	UserContext         recommendation.UserContext `json:"user_context"`
	ConversationHistory []recommendation.Turn      `json:"conversation_history,omitempty"`
}

// CartItemRequest is the POST /add-to-cart and /remove-from-cart body.
type CartItemRequest struct {
	ItemID   string `json:"item_id"`
	UserID   string `json:"user_id"`
	Quantity int    `json:"quantity,omitempty"`
}

// RecommendationsRequest is the POST /recommendations body.
type RecommendationsRequest struct {
	Query  string           `json:"query"`
	Filter *FoodFilterInput `json:"filter,omitempty"`
}

// FoodFilterInput narrows a direct food search.
type FoodFilterInput struct {
	FoodType string   `json:"food_type,omitempty"`
	Budget   string   `json:"budget,omitempty"`
	Dietary  []string `json:"dietary,omitempty"`
	MealType string   `json:"meal_type,omitempty"`
}

// FoodListResponse wraps direct food search results.
type FoodListResponse struct {
	Items []food.FoodItem `json:"items"`
	Total int             `json:"total"`
}

// RestaurantListResponse wraps restaurant search results.
type RestaurantListResponse struct {
	Items []food.Restaurant `json:"items"`
	Total int               `json:"total"`
}

// UsageResponse is the GET /usage body.
type UsageResponse struct {
	Period        string       `json:"period"`
	PeriodStartAt time.Time    `json:"period_start_at"`
	PeriodEndAt   time.Time    `json:"period_end_at"`
	Budget        BudgetStatus `json:"budget"`
}

// BudgetStatus describes one token window. A zero limit means unlimited.
type BudgetStatus struct {
	TokensLimit     int64     `json:"tokens_limit"`
	TokensUsed      int64     `json:"tokens_used"`
	TokensRemaining int64     `json:"tokens_remaining"`
	IsExhausted     bool      `json:"is_exhausted"`
	ResetsAt        time.Time `json:"resets_at"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
