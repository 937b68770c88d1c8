// Package chat is the entry point for chat, cart and direct search requests.
// Input is validated here; everything past validation either succeeds or
// degrades, so ErrInvalidInput is the only chat error callers see.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jarvis/internal/domain"
	"github.com/kailas-cloud/jarvis/internal/domain/cart"
	"github.com/kailas-cloud/jarvis/internal/domain/food"
	"github.com/kailas-cloud/jarvis/internal/domain/recommendation"
	"github.com/kailas-cloud/jarvis/internal/logger"
	"github.com/kailas-cloud/jarvis/internal/usecase/pipeline"
)

// ChatRequest is one user message. The message is 1 to 1000 characters
// after trimming.
type ChatRequest struct {
	Message string                     `json:"message" validate:"required,min=1,max=1000"`
	User    recommendation.UserContext `json:"user_context"`
	History []recommendation.Turn      `json:"conversation_history"`
}

// CartRequest adds or removes a catalog item.
type CartRequest struct {
	ItemID   string `json:"item_id" validate:"required,max=128"`
	UserID   string `json:"user_id" validate:"required,max=128"`
	Quantity int    `json:"quantity" validate:"min=1,max=99"`
}

// RecommendRequest is a direct catalog query that skips the engine.
type RecommendRequest struct {
	Query    string   `json:"query" validate:"max=200"`
	FoodType string   `json:"food_type" validate:"max=64"`
	Budget   string   `json:"budget" validate:"omitempty,oneof=low medium high"`
	Dietary  []string `json:"dietary" validate:"max=8,dive,max=32"`
	MealType string   `json:"meal_type" validate:"max=32"`
}

// Service validates requests and delegates to the pipeline, cart and search.
type Service struct {
	runner   Runner
	cart     Cart
	search   Searcher
	validate *validator.Validate
	now      func() time.Time
}

// New creates a Service.
func New(runner Runner, c Cart, s Searcher) *Service {
	return &Service{
		runner:   runner,
		cart:     c,
		search:   s,
		validate: newValidator(),
		now:      time.Now,
	}
}

// ProcessChat runs one message through the pipeline. Only invalid input is
// reported as an error; engine trouble shows up as a fallback response.
func (s *Service) ProcessChat(ctx context.Context, req ChatRequest) (recommendation.Response, error) {
	req.Message = strings.TrimSpace(req.Message)
	req.User.ID = strings.TrimSpace(req.User.ID)
	if err := s.validate.Struct(req); err != nil {
		return recommendation.Response{}, validationError(err)
	}

	ctx = logger.With(ctx, zap.String("user_id", req.User.ID))
	resp := s.runner.Run(ctx, pipeline.Request{
		Message: req.Message,
		User:    req.User,
		History: req.History,
	})

	user := req.User
	resp.UserContext = &user
	resp.ProcessedAt = s.now().UTC()
	return resp, nil
}

// AddToCart adds quantity units of an item. Quantity 0 means 1.
func (s *Service) AddToCart(ctx context.Context, req CartRequest) (cart.Result, error) {
	req, err := s.cartRequest(req)
	if err != nil {
		return cart.Result{}, err
	}
	return s.cart.Add(ctx, cart.Item{UserID: req.UserID, ItemID: req.ItemID, Quantity: req.Quantity})
}

// RemoveFromCart removes an item.
func (s *Service) RemoveFromCart(ctx context.Context, req CartRequest) (cart.Result, error) {
	req, err := s.cartRequest(req)
	if err != nil {
		return cart.Result{}, err
	}
	return s.cart.Remove(ctx, cart.Item{UserID: req.UserID, ItemID: req.ItemID, Quantity: req.Quantity})
}

// CartCount returns the number of items in the user's cart.
func (s *Service) CartCount(ctx context.Context, userID string) (cart.Result, error) {
	userID = strings.TrimSpace(userID)
	if err := s.validate.Var(userID, "required,max=128"); err != nil {
		return cart.Result{}, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}
	return s.cart.Count(ctx, userID)
}

func (s *Service) cartRequest(req CartRequest) (CartRequest, error) {
	req.ItemID = strings.TrimSpace(req.ItemID)
	req.UserID = strings.TrimSpace(req.UserID)
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := s.validate.Struct(req); err != nil {
		return req, validationError(err)
	}
	return req, nil
}

// Recommend searches the catalog directly.
func (s *Service) Recommend(ctx context.Context, req RecommendRequest) ([]food.FoodItem, error) {
	req.Budget = strings.ToLower(strings.TrimSpace(req.Budget))
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	budget, _ := food.ParseBudgetTier(req.Budget)
	dietary := make([]string, 0, len(req.Dietary))
	for _, d := range req.Dietary {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			dietary = append(dietary, d)
		}
	}
	f := &food.SearchFilter{
		FreeText: req.Query,
		FoodType: strings.TrimSpace(req.FoodType),
		Budget:   budget,
		Dietary:  dietary,
		MealType: strings.TrimSpace(req.MealType),
	}
	return s.search.SearchFood(ctx, strings.TrimSpace(req.Query), f), nil
}

// Restaurants searches restaurants by name or cuisine.
func (s *Service) Restaurants(ctx context.Context, query, cuisine string) ([]food.Restaurant, error) {
	query, cuisine = strings.TrimSpace(query), strings.TrimSpace(cuisine)
	if len(query) > 200 || len(cuisine) > 64 {
		return nil, fmt.Errorf("%w: query or cuisine too long", domain.ErrInvalidInput)
	}
	return s.search.SearchRestaurants(ctx, query, cuisine), nil
}
