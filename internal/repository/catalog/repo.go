// Package catalog stores food items and restaurants as hashes and queries
// them through the structured filter indexes.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/jarvis/internal/db"
	"github.com/kailas-cloud/jarvis/internal/domain/food"
	"github.com/kailas-cloud/jarvis/internal/domain/search/filter"
)

// store is the consumer interface for the catalog (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
	Count(ctx context.Context, q *db.FilterQuery) (int, error)
}

// Repo implements usecase/search.Catalog.
type Repo struct {
	store  store
	prefix string
}

// New creates a catalog repository. prefix namespaces every key and index.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// EnsureIndexes creates the food and restaurant indexes. Existing indexes are kept.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	for _, def := range r.indexes() {
		if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create index %s: %w", def.Name, err)
		}
	}
	return nil
}

// Reset drops the catalog indexes and deletes every catalog hash. It
// returns the number of keys removed.
func (r *Repo) Reset(ctx context.Context) (int, error) {
	for _, def := range r.indexes() {
		ok, err := r.store.IndexExists(ctx, def.Name)
		if err != nil {
			return 0, fmt.Errorf("index info %s: %w", def.Name, err)
		}
		if !ok {
			continue
		}
		if err := r.store.DropIndex(ctx, def.Name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return 0, fmt.Errorf("drop index %s: %w", def.Name, err)
		}
	}

	removed := 0
	for _, prefix := range []string{r.foodPrefix(), r.restaurantPrefix()} {
		keys, err := r.store.Scan(ctx, prefix+"*")
		if err != nil {
			return removed, fmt.Errorf("scan %s: %w", prefix, err)
		}
		for len(keys) > 0 {
			n := min(len(keys), resetBatch)
			if err := r.store.Del(ctx, keys[:n]...); err != nil {
				return removed, fmt.Errorf("delete %s: %w", prefix, err)
			}
			removed += n
			keys = keys[n:]
		}
	}
	return removed, nil
}

const resetBatch = 500

// Seed upserts restaurants and food items in one pipelined batch each.
func (r *Repo) Seed(ctx context.Context, restaurants []food.Restaurant, items []food.FoodItem) error {
	if len(restaurants) > 0 {
		batch := make([]db.HashSetItem, len(restaurants))
		for i, rest := range restaurants {
			batch[i] = db.HashSetItem{Key: r.restaurantKey(rest.ID), Fields: restaurantToHash(rest)}
		}
		if err := r.store.HSetMulti(ctx, batch); err != nil {
			return fmt.Errorf("seed restaurants: %w", err)
		}
	}
	if len(items) > 0 {
		batch := make([]db.HashSetItem, len(items))
		for i, it := range items {
			batch[i] = db.HashSetItem{Key: r.foodKey(it.ID), Fields: foodToHash(it)}
		}
		if err := r.store.HSetMulti(ctx, batch); err != nil {
			return fmt.Errorf("seed food items: %w", err)
		}
	}
	return nil
}

// FoodCandidates returns every food item satisfying the structured
// constraints, cheapest first, each joined with its restaurant. The store is
// read pageSize rows at a time until exhausted. Items whose restaurant is
// missing are dropped.
func (r *Repo) FoodCandidates(ctx context.Context, expr filter.Expression, pageSize int) ([]food.FoodItem, error) {
	var items []food.FoodItem
	err := r.scan(ctx, &db.FilterQuery{
		IndexName: r.foodIndex(),
		Filters:   expr,
		SortBy:    food.FieldPrice,
	}, pageSize, func(entries []db.SearchEntry) error {
		page := make([]food.FoodItem, 0, len(entries))
		for _, e := range entries {
			page = append(page, foodFromHash(e.Fields))
		}
		refs, err := r.restaurantRefs(ctx, page)
		if err != nil {
			return err
		}
		for _, it := range page {
			ref, ok := refs[it.RestaurantID]
			if !ok {
				continue
			}
			it.Restaurant = ref
			items = append(items, it)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search food: %w", err)
	}
	return items, nil
}

// scan runs q page by page and hands each non-empty page to fn.
func (r *Repo) scan(ctx context.Context, q *db.FilterQuery, pageSize int, fn func([]db.SearchEntry) error) error {
	q.Limit = max(pageSize, 1)
	for q.Offset = 0; ; {
		sr, err := r.store.Search(ctx, q)
		if err != nil {
			return err
		}
		if sr == nil || len(sr.Entries) == 0 {
			return nil
		}
		if err := fn(sr.Entries); err != nil {
			return err
		}
		q.Offset += len(sr.Entries)
		if q.Offset >= sr.Total {
			return nil
		}
	}
}

// restaurantRefs loads the distinct restaurants referenced by items.
func (r *Repo) restaurantRefs(ctx context.Context, items []food.FoodItem) (map[string]food.RestaurantRef, error) {
	seen := make(map[string]struct{}, len(items))
	var ids, keys []string
	for _, it := range items {
		if it.RestaurantID == "" {
			continue
		}
		if _, dup := seen[it.RestaurantID]; dup {
			continue
		}
		seen[it.RestaurantID] = struct{}{}
		ids = append(ids, it.RestaurantID)
		keys = append(keys, r.restaurantKey(it.RestaurantID))
	}
	if len(keys) == 0 {
		return nil, nil
	}

	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load restaurants: %w", err)
	}

	refs := make(map[string]food.RestaurantRef, len(rows))
	for i, m := range rows {
		if len(m) == 0 {
			continue
		}
		rest := restaurantFromHash(m)
		if rest.ID == "" {
			rest.ID = ids[i]
		}
		refs[ids[i]] = rest.RestaurantRef
	}
	return refs, nil
}

// Restaurants returns every restaurant, best rated first, reading the
// store pageSize rows at a time.
func (r *Repo) Restaurants(ctx context.Context, pageSize int) ([]food.Restaurant, error) {
	var out []food.Restaurant
	err := r.scan(ctx, &db.FilterQuery{
		IndexName:  r.restaurantIndex(),
		SortBy:     food.FieldRating,
		Descending: true,
	}, pageSize, func(entries []db.SearchEntry) error {
		for _, e := range entries {
			out = append(out, restaurantFromHash(e.Fields))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}
	return out, nil
}

// Restaurant returns one restaurant by id.
func (r *Repo) Restaurant(ctx context.Context, id string) (food.Restaurant, bool, error) {
	m, err := r.store.HGetAll(ctx, r.restaurantKey(id))
	if err != nil {
		return food.Restaurant{}, false, fmt.Errorf("hgetall restaurant %s: %w", id, err)
	}
	if len(m) == 0 {
		return food.Restaurant{}, false, nil
	}
	return restaurantFromHash(m), true, nil
}

// Stats counts indexed food items and restaurants.
func (r *Repo) Stats(ctx context.Context) (foodItems, restaurants int, err error) {
	foodItems, err = r.store.Count(ctx, &db.FilterQuery{IndexName: r.foodIndex(), Limit: 1})
	if err != nil {
		return 0, 0, fmt.Errorf("count food: %w", err)
	}
	restaurants, err = r.store.Count(ctx, &db.FilterQuery{IndexName: r.restaurantIndex(), Limit: 1})
	if err != nil {
		return 0, 0, fmt.Errorf("count restaurants: %w", err)
	}
	return foodItems, restaurants, nil
}
