package fallback

import "github.com/kailas-cloud/jarvis/internal/domain/recommendation"

var pizzaDishes = []recommendation.Recommendation{
	{
		ID:          "spicy_jalapeno_pizza",
		Name:        "Spicy Jalapeno Pizza",
		Price:       7.09,
		Restaurant:  recommendation.Restaurant{Name: "Pizza Paradise", Rating: 4.7, DeliveryTime: "25-35 mins"},
		Description: "Artisan pizza with fresh toppings on a wood-fired crust and a kick of jalapenos.",
		WhyPerfect:  "Budget-friendly, highly rated and a great balance of spice and flavor.",
		Tags:        []string{"pizza", "spicy", "italian"},
	},
	{
		ID:          "bbq_chicken_pizza",
		Name:        "BBQ Chicken Pizza",
		Price:       8.95,
		Restaurant:  recommendation.Restaurant{Name: "Pizza Paradise", Rating: 4.6, DeliveryTime: "25-35 mins"},
		Description: "Smoky barbecue chicken with red onions and bell peppers on a crispy crust.",
		WhyPerfect:  "A flavorful pick for anyone who likes BBQ.",
		Tags:        []string{"pizza", "bbq", "chicken"},
	},
	{
		ID:          "margherita_pizza",
		Name:        "Margherita Pizza",
		Price:       13.81,
		Restaurant:  recommendation.Restaurant{Name: "Pizza Paradise", Rating: 4.2, DeliveryTime: "25-35 mins"},
		Description: "Fresh mozzarella, tomato sauce and basil on a wood-fired crust.",
		WhyPerfect:  "The classic choice for traditional pizza lovers.",
		Tags:        []string{"pizza", "classic", "vegetarian"},
	},
}

var sushiDishes = []recommendation.Recommendation{
	{
		ID:          "california_roll",
		Name:        "California Roll",
		Price:       8.99,
		Restaurant:  recommendation.Restaurant{Name: "Sushi Zen", Rating: 4.8, DeliveryTime: "15-25 mins"},
		Description: "Crab, avocado and cucumber rolled in rice and nori, topped with sesame seeds.",
		WhyPerfect:  "A perfect introduction to sushi with familiar flavors.",
		Tags:        []string{"sushi", "seafood", "fresh"},
	},
	{
		ID:          "salmon_roll",
		Name:        "Salmon Roll",
		Price:       12.99,
		Restaurant:  recommendation.Restaurant{Name: "Sushi Zen", Rating: 4.9, DeliveryTime: "15-25 mins"},
		Description: "Fresh salmon with cucumber and avocado in seasoned sushi rice.",
		WhyPerfect:  "High-quality salmon that melts in your mouth.",
		Tags:        []string{"sushi", "salmon", "premium"},
	},
}

var indianDishes = []recommendation.Recommendation{
	{
		ID:          "chicken_tikka_masala",
		Name:        "Chicken Tikka Masala",
		Price:       16.99,
		Restaurant:  recommendation.Restaurant{Name: "Spice Garden", Rating: 4.8, DeliveryTime: "30-40 mins"},
		Description: "Chicken marinated in yogurt and spices in a rich, creamy tomato curry.",
		WhyPerfect:  "The balance of spice and creaminess loved worldwide.",
		Tags:        []string{"indian", "curry", "chicken", "creamy"},
	},
	{
		ID:          "paneer_butter_masala",
		Name:        "Paneer Butter Masala",
		Price:       14.99,
		Restaurant:  recommendation.Restaurant{Name: "Spice Garden", Rating: 4.7, DeliveryTime: "30-40 mins"},
		Description: "Soft paneer simmered in a tomato and butter sauce with aromatic spices.",
		WhyPerfect:  "A rich vegetarian favourite.",
		Tags:        []string{"indian", "vegetarian", "paneer", "creamy"},
	},
}

var popularDishes = []recommendation.Recommendation{
	{
		ID:          "chicken_caesar_salad",
		Name:        "Chicken Caesar Salad",
		Price:       13.99,
		Restaurant:  recommendation.Restaurant{Name: "Green Garden Cafe", Rating: 4.6, DeliveryTime: "20-30 mins"},
		Description: "Grilled chicken, crisp romaine, parmesan and croutons with house Caesar dressing.",
		WhyPerfect:  "Light, filling and a customer favourite.",
		Tags:        []string{"salad", "healthy", "chicken"},
	},
	{
		ID:          "bbq_bacon_burger",
		Name:        "BBQ Bacon Burger",
		Price:       15.99,
		Restaurant:  recommendation.Restaurant{Name: "Burger Junction", Rating: 4.5, DeliveryTime: "25-35 mins"},
		Description: "Beef patty with smoked bacon, cheddar, onion rings and BBQ sauce.",
		WhyPerfect:  "Our most ordered comfort food.",
		Tags:        []string{"burger", "bbq", "american"},
	},
	{
		ID:          "pad_thai",
		Name:        "Pad Thai",
		Price:       14.99,
		Restaurant:  recommendation.Restaurant{Name: "Bangkok Street", Rating: 4.7, DeliveryTime: "25-35 mins"},
		Description: "Stir-fried rice noodles with shrimp, peanuts, bean sprouts and lime.",
		WhyPerfect:  "Sweet, sour and savoury in one bowl.",
		Tags:        []string{"thai", "noodles", "shrimp"},
	},
}
