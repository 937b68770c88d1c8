package search

import (
	"context"

	"github.com/kailas-cloud/jarvis/internal/domain/food"
	"github.com/kailas-cloud/jarvis/internal/domain/search/filter"
)

// Catalog defines the storage contract for the search providers. Both
// methods return every matching row, fetched pageSize rows at a time.
type Catalog interface {
	FoodCandidates(ctx context.Context, expr filter.Expression, pageSize int) ([]food.FoodItem, error)
	Restaurants(ctx context.Context, pageSize int) ([]food.Restaurant, error)
}
