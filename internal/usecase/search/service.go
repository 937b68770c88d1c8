// Package search implements the food and restaurant search providers.
// Neither provider returns an error: when the catalog is unreachable they
// answer from a built-in sample catalog.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jarvis/internal/domain"
	"github.com/kailas-cloud/jarvis/internal/domain/food"
	"github.com/kailas-cloud/jarvis/internal/logger"
	"github.com/kailas-cloud/jarvis/internal/metrics"
)

// Limits bound result sizes.
type Limits struct {
	Food        int // default 10
	Restaurants int // default 5
	PageSize    int // rows per store read, default 500
}

func (l Limits) withDefaults() Limits {
	if l.Food <= 0 {
		l.Food = 10
	}
	if l.Restaurants <= 0 {
		l.Restaurants = 5
	}
	if l.PageSize <= 0 {
		l.PageSize = 500
	}
	return l
}

// Service runs catalog searches.
type Service struct {
	catalog Catalog
	limits  Limits
}

// New creates a search service.
func New(catalog Catalog, limits Limits) *Service {
	return &Service{catalog: catalog, limits: limits.withDefaults()}
}

// SearchFood returns dishes matching query and f, ranked by restaurant rating
// then price. f may be nil.
func (s *Service) SearchFood(ctx context.Context, query string, f *food.SearchFilter) []food.FoodItem {
	items, err := s.searchFood(ctx, query, f)
	if err != nil {
		s.degrade(ctx, "food", err)
		return truncate(sampleFood(), s.limits.Food)
	}
	return items
}

func (s *Service) searchFood(ctx context.Context, query string, f *food.SearchFilter) ([]food.FoodItem, error) {
	expr, err := f.Expression()
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}
	candidates, err := s.catalog.FoodCandidates(ctx, expr, s.limits.PageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}

	terms := f.Terms(query)
	matched := matchFood(candidates, terms)
	if len(terms) == 0 {
		// Keywords only narrow; a message naming nothing in the catalog keeps the full ranking.
		if narrowed := matchFood(candidates, f.Keywords()); len(narrowed) > 0 {
			matched = narrowed
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Restaurant.Rating != b.Restaurant.Rating {
			return a.Restaurant.Rating > b.Restaurant.Rating
		}
		return a.Price < b.Price
	})
	return truncate(matched, s.limits.Food), nil
}

// SearchRestaurants returns restaurants whose name or cuisine matches query
// and whose cuisine matches cuisine, best rated first. Both may be empty.
func (s *Service) SearchRestaurants(ctx context.Context, query, cuisine string) []food.Restaurant {
	rests, err := s.catalog.Restaurants(ctx, s.limits.PageSize)
	if err != nil {
		s.degrade(ctx, "restaurant", fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err))
		return truncate(sampleRestaurants(), s.limits.Restaurants)
	}

	var queryTerms, cuisineTerms []string
	if q := strings.TrimSpace(query); q != "" {
		queryTerms = []string{q}
	}
	if c := strings.TrimSpace(cuisine); c != "" {
		cuisineTerms = []string{c}
	}

	matched := make([]food.Restaurant, 0, len(rests))
	for _, r := range rests {
		if !matchesAny(queryTerms, r.Name, "", "", r.Cuisine) {
			continue
		}
		if !matchesAny(cuisineTerms, "", "", "", r.Cuisine) {
			continue
		}
		matched = append(matched, r)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Rating > matched[j].Rating })
	return truncate(matched, s.limits.Restaurants)
}

func (s *Service) degrade(ctx context.Context, provider string, err error) {
	metrics.SearchFallbackTotal.WithLabelValues(provider).Inc()
	logger.FromContext(ctx).Warn("Catalog search failed, serving sample catalog",
		zap.String("provider", provider),
		zap.Stringer("kind", domain.Classify(err)),
		zap.Error(err),
	)
}

func matchFood(items []food.FoodItem, terms []string) []food.FoodItem {
	out := make([]food.FoodItem, 0, len(items))
	for _, it := range items {
		if matchesAny(terms, it.Name, it.Description, it.Category, it.Tags) {
			out = append(out, it)
		}
	}
	return out
}

// matchesAny reports whether any term is a case-insensitive substring of one
// of the fields. No terms means no text constraint.
func matchesAny(terms []string, name, description, category string, tags []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, t := range terms {
		t = strings.ToLower(t)
		if containsFold(name, t) || containsFold(description, t) || containsFold(category, t) {
			return true
		}
		for _, tag := range tags {
			if containsFold(tag, t) {
				return true
			}
		}
	}
	return false
}

func containsFold(s, lowerSub string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lowerSub)
}

func truncate[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
