package pipeline

import (
	"context"

	"github.com/kailas-cloud/jarvis/internal/domain/food"
)

// Searcher is the search provider contract the discovery tools call.
type Searcher interface {
	SearchFood(ctx context.Context, query string, f *food.SearchFilter) []food.FoodItem
	SearchRestaurants(ctx context.Context, query, cuisine string) []food.Restaurant
}
