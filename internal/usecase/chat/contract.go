package chat

import (
	"context"

	"github.com/kailas-cloud/jarvis/internal/domain/cart"
	"github.com/kailas-cloud/jarvis/internal/domain/food"
	"github.com/kailas-cloud/jarvis/internal/domain/recommendation"
	"github.com/kailas-cloud/jarvis/internal/usecase/pipeline"
)

// Runner executes the chat pipeline. It never fails.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) recommendation.Response
}

// Cart is the cart collaborator.
type Cart interface {
	Add(ctx context.Context, item cart.Item) (cart.Result, error)
	Remove(ctx context.Context, item cart.Item) (cart.Result, error)
	Count(ctx context.Context, userID string) (cart.Result, error)
}

// Searcher answers direct catalog queries.
type Searcher interface {
	SearchFood(ctx context.Context, query string, f *food.SearchFilter) []food.FoodItem
	SearchRestaurants(ctx context.Context, query, cuisine string) []food.Restaurant
}
