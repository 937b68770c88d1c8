package pipeline

import (
	"context"

	"github.com/kailas-cloud/jarvis/internal/domain/food"
)

// Tool names referenced by stage definitions.
const (
	ToolFoodSearch       = "food_search"
	ToolRestaurantSearch = "restaurant_search"
)

// Tool is deterministic work done before a stage's engine call; its JSON
// result is appended to the stage input.
type Tool interface {
	Name() string
	Run(ctx context.Context, rc *RunContext) (any, error)
}

// SearchTools returns the catalog tools backed by s.
func SearchTools(s Searcher) []Tool {
	return []Tool{foodSearchTool{s: s}, restaurantSearchTool{s: s}}
}

type foodSearchTool struct{ s Searcher }

func (foodSearchTool) Name() string { return ToolFoodSearch }

func (t foodSearchTool) Run(ctx context.Context, rc *RunContext) (any, error) {
	items := t.s.SearchFood(ctx, "", rc.Intent().Filter(rc.Request.Message))
	if items == nil {
		items = []food.FoodItem{}
	}
	return items, nil
}

type restaurantSearchTool struct{ s Searcher }

func (restaurantSearchTool) Name() string { return ToolRestaurantSearch }

func (t restaurantSearchTool) Run(ctx context.Context, rc *RunContext) (any, error) {
	rests := t.s.SearchRestaurants(ctx, rc.Intent().FoodType, "")
	if rests == nil {
		rests = []food.Restaurant{}
	}
	return rests, nil
}
