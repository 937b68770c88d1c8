// Package food holds the catalog types served by the search providers.
package food

// RestaurantRef is the restaurant summary denormalized into every FoodItem at query time.
type RestaurantRef struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Rating       float64  `json:"rating"`
	Cuisine      []string `json:"cuisine,omitempty"`
	DeliveryTime string   `json:"deliveryTime,omitempty"`
}

// Restaurant is a full restaurant record.
type Restaurant struct {
	RestaurantRef
	Description   string   `json:"description,omitempty"`
	Address       string   `json:"address,omitempty"`
	IsOpen        bool     `json:"isOpen"`
	DeliveryFee   float64  `json:"deliveryFee"`
	MinimumOrder  float64  `json:"minimumOrder"`
	SpecialOffers []string `json:"specialOffers,omitempty"`
}

// FoodItem is a dish joined with its restaurant.
type FoodItem struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Price           float64       `json:"price"`
	Description     string        `json:"description"`
	Category        string        `json:"category"`
	IsVegetarian    bool          `json:"isVegetarian"`
	IsVegan         bool          `json:"isVegan"`
	Tags            []string      `json:"tags"`
	Rating          float64       `json:"rating"`
	Calories        int           `json:"calories,omitempty"`
	PreparationTime int           `json:"preparationTime,omitempty"` // minutes
	RestaurantID    string        `json:"-"`
	Restaurant      RestaurantRef `json:"restaurant"`
}
