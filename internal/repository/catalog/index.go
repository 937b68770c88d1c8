package catalog

import (
	"github.com/kailas-cloud/jarvis/internal/db"
	"github.com/kailas-cloud/jarvis/internal/domain/food"
	"github.com/kailas-cloud/jarvis/internal/domain/search/filter"
)

func (r *Repo) foodPrefix() string       { return r.prefix + "food:" }
func (r *Repo) restaurantPrefix() string { return r.prefix + "restaurant:" }
func (r *Repo) foodIndex() string        { return r.prefix + "food:idx" }
func (r *Repo) restaurantIndex() string  { return r.prefix + "restaurant:idx" }

func (r *Repo) foodKey(id string) string       { return r.foodPrefix() + id }
func (r *Repo) restaurantKey(id string) string { return r.restaurantPrefix() + id }

// indexes returns the FT definitions for both catalog collections. Only the
// structured fields are indexed; text matching happens above the store.
func (r *Repo) indexes() []*db.IndexDefinition {
	return []*db.IndexDefinition{
		db.NewIndex(r.foodIndex()).
			Prefix(r.foodPrefix()).
			SortableNumeric(food.FieldPrice).
			Numeric(food.FieldRating).
			Tag(food.FieldIsVegetarian).
			Tag(food.FieldIsVegan).
			Tags(food.FieldTags, filter.TagSeparator).
			Tag(food.FieldCategory).
			Tag(food.FieldRestaurantID).
			MustBuild(),
		db.NewIndex(r.restaurantIndex()).
			Prefix(r.restaurantPrefix()).
			SortableNumeric(food.FieldRating).
			Tags(food.FieldCuisine, filter.TagSeparator).
			MustBuild(),
	}
}
