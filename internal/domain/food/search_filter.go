package food

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kailas-cloud/jarvis/internal/domain/search/filter"
)

// BudgetTier is a coarse price band.
type BudgetTier string

// Budget tiers. Ranges overlap: low <= 15, medium 10..25, high >= 20.
const (
	BudgetLow    BudgetTier = "low"
	BudgetMedium BudgetTier = "medium"
	BudgetHigh   BudgetTier = "high"
)

const (
	lowMax    = 15.0
	mediumMin = 10.0
	mediumMax = 25.0
	highMin   = 20.0
)

// ParseBudgetTier accepts low/medium/high in any case. Anything else is "no constraint".
func ParseBudgetTier(s string) (BudgetTier, bool) {
	switch BudgetTier(strings.ToLower(strings.TrimSpace(s))) {
	case BudgetLow:
		return BudgetLow, true
	case BudgetMedium:
		return BudgetMedium, true
	case BudgetHigh:
		return BudgetHigh, true
	}
	return "", false
}

// PriceRange returns the inclusive price bounds of the tier. ok is false for an empty tier.
func (b BudgetTier) PriceRange() (filter.Range, bool) {
	var (
		r      filter.Range
		err    error
		lo, hi float64
	)
	switch b {
	case BudgetLow:
		hi = lowMax
		r, err = filter.Between(nil, &hi)
	case BudgetMedium:
		lo, hi = mediumMin, mediumMax
		r, err = filter.Between(&lo, &hi)
	case BudgetHigh:
		lo = highMin
		r, err = filter.Between(&lo, nil)
	default:
		return filter.Range{}, false
	}
	return r, err == nil
}

// Dietary preference keywords recognised by the food search.
const (
	DietVegetarian = "vegetarian"
	DietVegan      = "vegan"
	DietSpicy      = "spicy"
	DietHealthy    = "healthy"
)

// preferenceTags maps soft preferences onto the tags that satisfy them.
var preferenceTags = map[string][]string{
	DietSpicy:   {"spicy", "hot", "chili"},
	DietHealthy: {"healthy", "low-calorie", "organic"},
}

// Catalog hash field names shared by the repository and the filter builder.
const (
	FieldPrice        = "price"
	FieldIsVegetarian = "is_vegetarian"
	FieldIsVegan      = "is_vegan"
	FieldTags         = "tags"
	FieldCategory     = "category"
	FieldRestaurantID = "restaurant_id"
	FieldCuisine      = "cuisine"
	FieldRating       = "rating"
)

// SearchFilter is the structured part of a food query, derived from the intent stage.
type SearchFilter struct {
	FreeText string
	FoodType string
	Budget   BudgetTier
	Dietary  []string
	MealType string
}

// HasDiet reports whether the dietary set contains tag (case-insensitive).
func (f *SearchFilter) HasDiet(tag string) bool {
	if f == nil {
		return false
	}
	for _, d := range f.Dietary {
		if strings.EqualFold(d, tag) {
			return true
		}
	}
	return false
}

// Terms returns the free-text clauses OR-ed by the food search: the query and the food type.
func (f *SearchFilter) Terms(query string) []string {
	var terms []string
	if q := strings.TrimSpace(query); q != "" {
		terms = append(terms, q)
	}
	if f != nil {
		if ft := strings.TrimSpace(f.FoodType); ft != "" && !strings.EqualFold(ft, query) {
			terms = append(terms, ft)
		}
	}
	return terms
}

// Keywords returns the distinct lower-cased words of the free text and meal
// type, minus stopwords and words shorter than three letters.
func (f *SearchFilter) Keywords() []string {
	if f == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, src := range []string{f.FreeText, f.MealType} {
		words := strings.FieldsFunc(strings.ToLower(src), func(r rune) bool {
			return !unicode.IsLetter(r) && r != '-'
		})
		for _, w := range words {
			w = strings.Trim(w, "-")
			if len(w) < 3 {
				continue
			}
			if _, stop := stopwords[w]; stop {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

var stopwords = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, w := range strings.Fields(`
		the and for with something some any anything want wants wanted would like
		craving crave feel feeling need get give have had can could please
		show find recommend suggest me you your our are was were this that what
		which who how not but just really very much more less too also today
		tonight now eat eating food foods dish dishes meal meals order hungry
		good great nice tasty delicious cheap budget under over around about
		from into out near best let lets`) {
		m[w] = struct{}{}
	}
	return m
}()

// Expression converts the hard constraints to a store filter. Budget and
// vegetarian/vegan are must clauses; spicy/healthy tags form one should group.
func (f *SearchFilter) Expression() (filter.Expression, error) {
	if f == nil {
		return filter.Expression{}, nil
	}

	var must, should []filter.Condition

	if r, ok := f.Budget.PriceRange(); ok {
		c, err := filter.NewRange(FieldPrice, r)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("budget: %w", err)
		}
		must = append(must, c)
	}

	for _, d := range []struct{ diet, field string }{
		{DietVegetarian, FieldIsVegetarian},
		{DietVegan, FieldIsVegan},
	} {
		if !f.HasDiet(d.diet) {
			continue
		}
		c, err := filter.NewMatch(d.field, "true")
		if err != nil {
			return filter.Expression{}, fmt.Errorf("%s: %w", d.diet, err)
		}
		must = append(must, c)
	}

	for _, pref := range []string{DietSpicy, DietHealthy} {
		if !f.HasDiet(pref) {
			continue
		}
		for _, tag := range preferenceTags[pref] {
			c, err := filter.NewMatch(FieldTags, tag)
			if err != nil {
				return filter.Expression{}, fmt.Errorf("%s: %w", pref, err)
			}
			should = append(should, c)
		}
	}

	return filter.NewExpression(must, should, nil)
}
