package search

import "github.com/kailas-cloud/jarvis/internal/domain/food"

// sampleFood is served when the catalog store is unreachable, so later stages
// always have candidates to reason over.
func sampleFood() []food.FoodItem {
	return []food.FoodItem{
		{
			ID:           "sample1",
			Name:         "Margherita Pizza",
			Price:        12.99,
			Description:  "Classic pizza with tomato sauce, mozzarella, and basil",
			Category:     "Pizza",
			IsVegetarian: true,
			Tags:         []string{"classic", "cheese"},
			Rating:       4.3,
			Calories:     280,
			RestaurantID: "rest1",
			Restaurant: food.RestaurantRef{
				ID: "rest1", Name: "Mario's Pizza", Rating: 4.5,
				Cuisine: []string{"Italian"}, DeliveryTime: "25-30 mins",
			},
		},
		{
			ID:           "sample2",
			Name:         "Chicken Tikka Masala",
			Price:        15.99,
			Description:  "Tender chicken in a creamy spiced curry sauce",
			Category:     "Indian",
			Tags:         []string{"spicy", "curry", "popular"},
			Rating:       4.6,
			Calories:     350,
			RestaurantID: "rest2",
			Restaurant: food.RestaurantRef{
				ID: "rest2", Name: "Spice Garden", Rating: 4.7,
				Cuisine: []string{"Indian"}, DeliveryTime: "30-40 mins",
			},
		},
	}
}

func sampleRestaurants() []food.Restaurant {
	return []food.Restaurant{
		{
			RestaurantRef: food.RestaurantRef{
				ID: "rest1", Name: "Mario's Pizza Palace", Rating: 4.5,
				Cuisine: []string{"Italian"}, DeliveryTime: "25-30 mins",
			},
			Address:       "123 Main St, Downtown",
			IsOpen:        true,
			DeliveryFee:   2.99,
			MinimumOrder:  12,
			SpecialOffers: []string{"20% off orders over $25"},
		},
		{
			RestaurantRef: food.RestaurantRef{
				ID: "rest2", Name: "Spice Garden Indian", Rating: 4.7,
				Cuisine: []string{"Indian"}, DeliveryTime: "30-40 mins",
			},
			Address:       "456 Curry Lane, Spice District",
			IsOpen:        true,
			DeliveryFee:   3.99,
			MinimumOrder:  15,
			SpecialOffers: []string{"Free naan with any curry"},
		},
	}
}
