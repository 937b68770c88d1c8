package catalog

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/jarvis/internal/domain/food"
	"github.com/kailas-cloud/jarvis/internal/domain/search/filter"
)

// Hash field names not covered by the filter builder.
const (
	fieldID              = "id"
	fieldName            = "name"
	fieldDescription     = "description"
	fieldCalories        = "calories"
	fieldPreparationTime = "preparation_time"
	fieldDeliveryTime    = "delivery_time"
	fieldAddress         = "address"
	fieldIsOpen          = "is_open"
	fieldDeliveryFee     = "delivery_fee"
	fieldMinimumOrder    = "minimum_order"
	fieldSpecialOffers   = "special_offers"
)

// offerSeparator joins special offers; offers are prose and may contain commas.
const offerSeparator = "\n"

// Defaults applied when a stored record omits a field.
const (
	defaultRating       = 4.0
	defaultCategory     = "Food"
	defaultDeliveryTime = "25-35 mins"
	defaultDeliveryFee  = 3.99
	defaultMinimumOrder = 15.0
)

func foodToHash(it food.FoodItem) map[string]string {
	m := map[string]string{
		fieldID:                it.ID,
		fieldName:              it.Name,
		food.FieldPrice:        formatFloat(it.Price),
		fieldDescription:       it.Description,
		food.FieldCategory:     it.Category,
		food.FieldIsVegetarian: strconv.FormatBool(it.IsVegetarian),
		food.FieldIsVegan:      strconv.FormatBool(it.IsVegan),
		food.FieldTags:         joinTags(it.Tags),
		food.FieldRating:       formatFloat(it.Rating),
		food.FieldRestaurantID: it.RestaurantID,
		fieldCalories:          strconv.Itoa(it.Calories),
		fieldPreparationTime:   strconv.Itoa(it.PreparationTime),
	}
	return m
}

// foodFromHash hydrates a FoodItem. The restaurant summary is joined separately.
func foodFromHash(m map[string]string) food.FoodItem {
	category := m[food.FieldCategory]
	if category == "" {
		category = defaultCategory
	}
	return food.FoodItem{
		ID:              m[fieldID],
		Name:            m[fieldName],
		Price:           parseFloat(m[food.FieldPrice], 0),
		Description:     m[fieldDescription],
		Category:        category,
		IsVegetarian:    m[food.FieldIsVegetarian] == "true",
		IsVegan:         m[food.FieldIsVegan] == "true",
		Tags:            splitList(m[food.FieldTags], filter.TagSeparator),
		Rating:          parseFloat(m[food.FieldRating], defaultRating),
		Calories:        parseInt(m[fieldCalories]),
		PreparationTime: parseInt(m[fieldPreparationTime]),
		RestaurantID:    m[food.FieldRestaurantID],
	}
}

func restaurantToHash(r food.Restaurant) map[string]string {
	return map[string]string{
		fieldID:            r.ID,
		fieldName:          r.Name,
		food.FieldRating:   formatFloat(r.Rating),
		food.FieldCuisine:  joinTags(r.Cuisine),
		fieldDeliveryTime:  r.DeliveryTime,
		fieldDescription:   r.Description,
		fieldAddress:       r.Address,
		fieldIsOpen:        strconv.FormatBool(r.IsOpen),
		fieldDeliveryFee:   formatFloat(r.DeliveryFee),
		fieldMinimumOrder:  formatFloat(r.MinimumOrder),
		fieldSpecialOffers: strings.Join(r.SpecialOffers, offerSeparator),
	}
}

func restaurantFromHash(m map[string]string) food.Restaurant {
	deliveryTime := m[fieldDeliveryTime]
	if deliveryTime == "" {
		deliveryTime = defaultDeliveryTime
	}
	return food.Restaurant{
		RestaurantRef: food.RestaurantRef{
			ID:           m[fieldID],
			Name:         m[fieldName],
			Rating:       parseFloat(m[food.FieldRating], defaultRating),
			Cuisine:      splitList(m[food.FieldCuisine], filter.TagSeparator),
			DeliveryTime: deliveryTime,
		},
		Description:   m[fieldDescription],
		Address:       m[fieldAddress],
		IsOpen:        m[fieldIsOpen] != "false",
		DeliveryFee:   parseFloat(m[fieldDeliveryFee], defaultDeliveryFee),
		MinimumOrder:  parseFloat(m[fieldMinimumOrder], defaultMinimumOrder),
		SpecialOffers: splitList(m[fieldSpecialOffers], offerSeparator),
	}
}

// joinTags trims tags and strips embedded separators.
func joinTags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.ReplaceAll(t, filter.TagSeparator, " "))
		if t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, filter.TagSeparator)
}

func splitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func parseFloat(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
