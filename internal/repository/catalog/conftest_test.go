package catalog

import (
	"context"
	"testing"

	"github.com/kailas-cloud/jarvis/internal/db"
	"github.com/kailas-cloud/jarvis/internal/domain/food"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn    func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	delFn          func(ctx context.Context, keys ...string) error
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn    func(ctx context.Context, name string) error
	indexExistsFn  func(ctx context.Context, name string) (bool, error)
	searchFn       func(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
	countFn        func(ctx context.Context, q *db.FilterQuery) (int, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) Search(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Count(ctx context.Context, q *db.FilterQuery) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, q)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "jarvis:"), ms
}

func testRestaurant() food.Restaurant {
	return food.Restaurant{
		RestaurantRef: food.RestaurantRef{
			ID:           "spice-garden",
			Name:         "Spice Garden",
			Rating:       4.7,
			Cuisine:      []string{"Indian", "Vegetarian"},
			DeliveryTime: "30-40 mins",
		},
		Address:       "456 Curry Lane",
		IsOpen:        true,
		DeliveryFee:   3.99,
		MinimumOrder:  15,
		SpecialOffers: []string{"Free naan with any curry, today only"},
	}
}

func testItem() food.FoodItem {
	return food.FoodItem{
		ID:           "paneer-tikka",
		Name:         "Paneer Tikka",
		Price:        13.5,
		Description:  "Grilled cottage cheese",
		Category:     "Indian",
		IsVegetarian: true,
		Tags:         []string{"Spicy", "grill"},
		Rating:       4.4,
		Calories:     320,
		RestaurantID: "spice-garden",
	}
}
