package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kailas-cloud/jarvis/internal/db"
	"github.com/kailas-cloud/jarvis/internal/db/memory"
	"github.com/kailas-cloud/jarvis/internal/domain/food"
	"github.com/kailas-cloud/jarvis/internal/domain/search/filter"
)

// --- EnsureIndexes ---

func TestEnsureIndexes_IgnoresExisting(t *testing.T) {
	repo, ms := newTestRepo(t)
	var names []string
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		names = append(names, def.Name)
		return db.ErrIndexExists
	}

	if err := repo.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"jarvis:food:idx", "jarvis:restaurant:idx"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("indexes = %v, want %v", names, want)
	}
}

func TestEnsureIndexes_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return errors.New("boom") }
	if err := repo.EnsureIndexes(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// --- Seed / DTO ---

func TestSeed_Keys(t *testing.T) {
	repo, ms := newTestRepo(t)
	var keys []string
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		for _, it := range items {
			keys = append(keys, it.Key)
		}
		return nil
	}
	err := repo.Seed(context.Background(), []food.Restaurant{testRestaurant()}, []food.FoodItem{testItem()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"jarvis:restaurant:spice-garden", "jarvis:food:paneer-tikka"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

func TestFoodHashRoundTrip(t *testing.T) {
	it := testItem()
	h := foodToHash(it)
	if h[food.FieldTags] != "Spicy,grill" {
		t.Errorf("tags = %q", h[food.FieldTags])
	}
	if h[food.FieldIsVegetarian] != "true" || h[food.FieldPrice] != "13.5" {
		t.Errorf("unexpected hash %v", h)
	}
	if got := foodFromHash(h); !reflect.DeepEqual(got, it) {
		t.Errorf("round trip:\n got %+v\nwant %+v", got, it)
	}
}

func TestRestaurantHashRoundTrip(t *testing.T) {
	r := testRestaurant()
	if got := restaurantFromHash(restaurantToHash(r)); !reflect.DeepEqual(got, r) {
		t.Errorf("round trip:\n got %+v\nwant %+v", got, r)
	}
}

func TestRestaurantFromHash_Defaults(t *testing.T) {
	r := restaurantFromHash(map[string]string{"id": "x", "name": "X"})
	if r.Rating != 4.0 || r.DeliveryTime != "25-35 mins" || !r.IsOpen {
		t.Errorf("defaults not applied: %+v", r)
	}
	if r.DeliveryFee != 3.99 || r.MinimumOrder != 15 {
		t.Errorf("fee defaults: %v %v", r.DeliveryFee, r.MinimumOrder)
	}
}

// --- FoodCandidates ---

func TestFoodCandidates_JoinsAndDropsOrphans(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(_ context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
		if q.IndexName != "jarvis:food:idx" || q.SortBy != food.FieldPrice || q.Limit != 50 {
			t.Errorf("unexpected query %+v", q)
		}
		return &db.SearchResult{Total: 3, Entries: []db.SearchEntry{
			{Key: "jarvis:food:a", Fields: map[string]string{"id": "a", "name": "A", "price": "5", "restaurant_id": "r1"}},
			{Key: "jarvis:food:b", Fields: map[string]string{"id": "b", "name": "B", "price": "6", "restaurant_id": "gone"}},
			{Key: "jarvis:food:c", Fields: map[string]string{"id": "c", "name": "C", "price": "7", "restaurant_id": "r1"}},
		}}, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		want := []string{"jarvis:restaurant:r1", "jarvis:restaurant:gone"}
		if !reflect.DeepEqual(keys, want) {
			t.Errorf("keys = %v, want %v", keys, want)
		}
		return []map[string]string{{"id": "r1", "name": "R1", "rating": "4.9"}, {}}, nil
	}

	items, err := repo.FoodCandidates(context.Background(), filter.Expression{}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "c" {
		t.Fatalf("unexpected items %+v", items)
	}
	if items[0].Restaurant.Name != "R1" || items[0].Restaurant.Rating != 4.9 {
		t.Errorf("restaurant not joined: %+v", items[0].Restaurant)
	}
}

func TestFoodCandidates_PagesUntilExhausted(t *testing.T) {
	repo, ms := newTestRepo(t)
	var offsets []int
	ms.searchFn = func(_ context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
		offsets = append(offsets, q.Offset)
		if q.Limit != 2 {
			t.Errorf("page size = %d, want 2", q.Limit)
		}
		all := []string{"a", "b", "c", "d", "e"}
		end := min(q.Offset+q.Limit, len(all))
		var entries []db.SearchEntry
		for _, id := range all[q.Offset:end] {
			entries = append(entries, db.SearchEntry{Key: "jarvis:food:" + id, Fields: map[string]string{"id": id, "restaurant_id": "r1"}})
		}
		return &db.SearchResult{Total: len(all), Entries: entries}, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		return []map[string]string{{"id": "r1", "name": "R1"}}, nil
	}

	items, err := repo.FoodCandidates(context.Background(), filter.Expression{}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 5 || items[4].ID != "e" {
		t.Fatalf("got %d items, want all 5", len(items))
	}
	if !reflect.DeepEqual(offsets, []int{0, 2, 4}) {
		t.Errorf("offsets = %v, want [0 2 4]", offsets)
	}
}

func TestRestaurants_PagesUntilExhausted(t *testing.T) {
	repo, ms := newTestRepo(t)
	calls := 0
	ms.searchFn = func(_ context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
		calls++
		if q.Offset >= 3 {
			// store reporting a stale total must not loop forever
			return &db.SearchResult{Total: 10}, nil
		}
		return &db.SearchResult{Total: 10, Entries: []db.SearchEntry{
			{Fields: map[string]string{"id": fmt.Sprintf("r%d", q.Offset), "name": "R"}},
		}}, nil
	}

	rests, err := repo.Restaurants(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rests) != 3 || calls != 4 {
		t.Errorf("restaurants=%d calls=%d, want 3 and 4", len(rests), calls)
	}
}

func TestFoodCandidates_SearchError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(context.Context, *db.FilterQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("conn refused")}
	}
	if _, err := repo.FoodCandidates(context.Background(), filter.Expression{}, 10); !db.IsCommandError(err) {
		t.Fatalf("expected wrapped db.Error, got %v", err)
	}
}

// --- against the in-memory store ---

func TestCatalog_MemoryStore(t *testing.T) {
	ctx := context.Background()
	repo := New(memory.New(), "t:")
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("second ensure must be a no-op: %v", err)
	}

	cheap := testItem()
	pricey := testItem()
	pricey.ID, pricey.Name, pricey.Price, pricey.IsVegetarian = "lamb", "Lamb Rogan Josh", 22, false
	if err := repo.Seed(ctx, []food.Restaurant{testRestaurant()}, []food.FoodItem{pricey, cheap}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f := food.SearchFilter{Budget: food.BudgetLow, Dietary: []string{"vegetarian", "spicy"}}
	expr, err := f.Expression()
	if err != nil {
		t.Fatalf("expression: %v", err)
	}
	items, err := repo.FoodCandidates(ctx, expr, 10)
	if err != nil {
		t.Fatalf("candidates: %v", err)
	}
	if len(items) != 1 || items[0].ID != "paneer-tikka" {
		t.Fatalf("unexpected candidates %+v", items)
	}
	if items[0].Restaurant.Name != "Spice Garden" {
		t.Errorf("join missing: %+v", items[0].Restaurant)
	}

	rests, err := repo.Restaurants(ctx, 5)
	if err != nil || len(rests) != 1 {
		t.Fatalf("restaurants = %v, %v", rests, err)
	}

	nf, nr, err := repo.Stats(ctx)
	if err != nil || nf != 2 || nr != 1 {
		t.Errorf("stats = %d %d %v", nf, nr, err)
	}

	if _, ok, _ := repo.Restaurant(ctx, "missing"); ok {
		t.Error("missing restaurant reported as found")
	}
}

// --- Reset ---

func TestReset_MemoryStore(t *testing.T) {
	ctx := context.Background()
	ms := memory.New()
	repo := New(ms, "t:")
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	if err := repo.Seed(ctx, []food.Restaurant{testRestaurant()}, []food.FoodItem{testItem()}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// a budget counter under the same prefix survives
	if err := ms.IncrBy(ctx, "t:reasoning:day:2026-03-01", 5); err != nil {
		t.Fatalf("incr: %v", err)
	}

	removed, err := repo.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if ok, _ := ms.IndexExists(ctx, "t:food:idx"); ok {
		t.Error("food index should be dropped")
	}
	if _, err := ms.Get(ctx, "t:reasoning:day:2026-03-01"); err != nil {
		t.Errorf("budget counter removed: %v", err)
	}

	// reset then reseed restores a searchable catalog
	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	if err := repo.Seed(ctx, []food.Restaurant{testRestaurant()}, []food.FoodItem{testItem()}); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if nf, nr, err := repo.Stats(ctx); err != nil || nf != 1 || nr != 1 {
		t.Errorf("stats after reseed = %d %d %v", nf, nr, err)
	}
}

func TestReset_BatchesDeletes(t *testing.T) {
	repo, ms := newTestRepo(t)
	var dropped []string
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) { return name == "jarvis:food:idx", nil }
	ms.dropIndexFn = func(_ context.Context, name string) error {
		dropped = append(dropped, name)
		return nil
	}
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "jarvis:food:*" {
			return nil, nil
		}
		keys := make([]string, 1200)
		for i := range keys {
			keys[i] = fmt.Sprintf("jarvis:food:%d", i)
		}
		return keys, nil
	}
	var batches []int
	ms.delFn = func(_ context.Context, keys ...string) error {
		batches = append(batches, len(keys))
		return nil
	}

	removed, err := repo.Reset(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 1200 || !reflect.DeepEqual(batches, []int{500, 500, 200}) {
		t.Errorf("removed=%d batches=%v", removed, batches)
	}
	if !reflect.DeepEqual(dropped, []string{"jarvis:food:idx"}) {
		t.Errorf("dropped = %v", dropped)
	}
}

func TestReset_ScanError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(context.Context, string) ([]string, error) {
		return nil, &db.Error{Op: db.OpScan, Err: errors.New("conn refused")}
	}
	if _, err := repo.Reset(context.Background()); !db.IsCommandError(err) {
		t.Fatalf("expected wrapped db.Error, got %v", err)
	}
}

// --- seed file ---

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
restaurants:
  - id: mario
    name: Mario's Pizza Palace
    cuisine: [Italian, Pizza]
    rating: 4.5
    is_open: false
    menu:
      - id: margherita
        name: Margherita Pizza
        price: 12.99
        vegan: true
        tags: [classic]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rests, items := f.Records()
	if len(rests) != 1 || rests[0].IsOpen {
		t.Errorf("restaurants = %+v", rests)
	}
	if len(items) != 1 || items[0].RestaurantID != "mario" || !items[0].IsVegetarian {
		t.Errorf("items = %+v", items)
	}
}

func TestFileValidate(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{"missing id", File{Restaurants: []RestaurantEntry{{Name: "x"}}}},
		{"duplicate restaurant", File{Restaurants: []RestaurantEntry{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}}}},
		{"duplicate item", File{Restaurants: []RestaurantEntry{{ID: "a", Name: "A", Menu: []MenuEntry{{ID: "i", Name: "I"}, {ID: "i", Name: "J"}}}}}},
		{"negative price", File{Restaurants: []RestaurantEntry{{ID: "a", Name: "A", Menu: []MenuEntry{{ID: "i", Name: "I", Price: -1}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.file.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
