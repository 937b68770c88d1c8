package pipeline

// Stage names of the default chat pipeline.
const (
	StageIntent         = "intent"
	StageDiscovery      = "discovery"
	StageEvaluation     = "evaluation"
	StageRecommendation = "recommendation"
)

// DefaultStages returns the intent, discovery, evaluation and recommendation
// stages in execution order.
func DefaultStages() []StageDefinition {
	return []StageDefinition{
		{
			Name: StageIntent,
			Role: "You are a food intent analyst. You read a customer's message and extract " +
				"what they want to eat, how much they want to spend and how they feel.",
			Template: intentTemplate,
			ExpectedOutput: "A JSON object with mood, budget, foodType, preferences, urgency, " +
				"emotional_context, meal_type, serving_size and health_goals.",
			Structured: true,
		},
		{
			Name:           StageDiscovery,
			Role:           "You are a restaurant scout. You know the catalog and shortlist dishes that fit an intent.",
			Template:       discoveryTemplate,
			DependsOn:      []string{StageIntent},
			Tools:          []string{ToolFoodSearch, ToolRestaurantSearch},
			ExpectedOutput: "A shortlist of 5 to 8 dishes with id, name, price, restaurant and why each fits.",
		},
		{
			Name:           StageEvaluation,
			Role:           "You are a food critic. You rank candidate dishes against what the customer asked for.",
			Template:       evaluationTemplate,
			DependsOn:      []string{StageIntent, StageDiscovery},
			ExpectedOutput: "The top 3 to 5 dishes, ranked, with a short justification for each.",
		},
		{
			Name: StageRecommendation,
			Role: "You are Jarvis, a warm and upbeat food concierge. You present the final picks " +
				"to the customer in a friendly voice.",
			Template:       recommendationTemplate,
			DependsOn:      []string{StageIntent, StageEvaluation},
			ExpectedOutput: "A JSON object with message, recommendations and actionRequired.",
			Structured:     true,
		},
	}
}

const intentTemplate = `
Analyze this message from {{.UserName}}: "{{.Message}}"
{{- if .History}}

Earlier in the conversation:
{{- range .History}}
{{.Role}}: {{.Content}}
{{- end}}
{{- end}}

Return only a JSON object with these fields:
- mood: how the customer feels (happy, stressed, tired, celebrating, neutral)
- budget: "low", "medium", "high" or null
- foodType: the cuisine or dish they mention (pizza, sushi, curry, ...) or null
- preferences: list drawn from vegetarian, vegan, spicy, healthy
- urgency: "low", "normal" or "high"
- emotional_context: one sentence on why they are ordering
- meal_type: breakfast, lunch, dinner, snack or null
- serving_size: number of people, default 1
- health_goals: list, possibly empty
`

const discoveryTemplate = `
Find dishes for {{.UserName}}, who said: "{{.Message}}"

Use the intent analysis and the catalog search results below. Only pick dishes
that appear in the search results and keep their ids, prices and restaurants unchanged.
Prefer dishes that match the budget and the dietary preferences.
`

const evaluationTemplate = `
Evaluate the shortlisted dishes for {{.UserName}}, who said: "{{.Message}}"

Score each dish on how well it matches the food type, budget, preferences and
mood from the intent analysis, then keep the best 3 to 5. Prefer higher rated
restaurants when two dishes are otherwise equal.
`

const recommendationTemplate = `
Write the final recommendation for {{.UserName}}, who said: "{{.Message}}"

Greet {{.UserName}} by name and reference their mood. Use only the dishes from the
evaluation. Return only a JSON object:
{
  "message": "a friendly two or three sentence reply",
  "recommendations": [
    {
      "id": "item id from the catalog",
      "name": "dish name",
      "price": 12.99,
      "restaurant": {"name": "restaurant name", "rating": 4.5, "deliveryTime": "25-35 mins"},
      "description": "short description",
      "why_perfect": "why this fits the request",
      "tags": ["tag"]
    }
  ],
  "actionRequired": {
    "type": "add_to_cart",
    "message": "Would you like to add <dish> to your cart?",
    "item_id": "id of the top recommendation"
  }
}
`
