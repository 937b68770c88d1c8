package jarvis

import (
	"github.com/kailas-cloud/jarvis/internal/domain/cart"
	"github.com/kailas-cloud/jarvis/internal/domain/food"
	"github.com/kailas-cloud/jarvis/internal/domain/recommendation"
)

// Conversation and catalog types shared with the HTTP API.
type (
	// UserContext identifies the user a chat is for.
	UserContext = recommendation.UserContext
	// Turn is one earlier conversation message.
	Turn = recommendation.Turn
	// Response is the normalized chat answer.
	Response = recommendation.Response
	// Recommendation is one suggested dish.
	Recommendation = recommendation.Recommendation
	// ActionRequired asks the caller to confirm an action such as add_to_cart.
	ActionRequired = recommendation.ActionRequired
	// FoodItem is a catalog dish joined with its restaurant.
	FoodItem = food.FoodItem
	// Restaurant is a catalog restaurant.
	Restaurant = food.Restaurant
	// CartResult reports a cart operation; Simulated marks an unreachable cart service.
	CartResult = cart.Result
)

// ChatRequest is one user message with optional history.
type ChatRequest struct {
	Message string
	User    UserContext
	History []Turn
}

// ChatResult is the chat answer plus the engine usage it cost.
type ChatResult struct {
	Response
	ReasoningCalls  int
	ReasoningTokens int
}

// FoodFilter narrows Recommend. Budget is low, medium or high.
type FoodFilter struct {
	FoodType string
	Budget   string
	Dietary  []string
	MealType string
}
