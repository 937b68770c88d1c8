package pipeline

import (
	"strings"

	"github.com/kailas-cloud/jarvis/internal/domain/food"
	"github.com/kailas-cloud/jarvis/internal/domain/pipeline"
	"github.com/kailas-cloud/jarvis/internal/usecase/normalize"
)

// Intent is the part of the intent stage output the search tools act on.
type Intent struct {
	FoodType    string
	Budget      food.BudgetTier
	Preferences []string
	MealType    string
	Mood        string
}

// ParseIntent reads an intent payload. Missing or mistyped fields are left
// empty; an unreadable payload yields the zero Intent.
func ParseIntent(p pipeline.Payload) Intent {
	obj, ok := p.AsStructured()
	if !ok {
		text, _ := p.AsText()
		if obj, ok = normalize.ExtractObject(text); !ok {
			return Intent{}
		}
	}

	in := Intent{
		FoodType: stringField(obj, "foodType", "food_type"),
		MealType: stringField(obj, "meal_type", "mealType"),
		Mood:     stringField(obj, "mood"),
	}
	in.Budget, _ = food.ParseBudgetTier(stringField(obj, "budget"))
	if list, ok := obj["preferences"].([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				in.Preferences = append(in.Preferences, strings.ToLower(strings.TrimSpace(s)))
			}
		}
	}
	return in
}

// Filter converts the intent into a search filter for message.
func (in Intent) Filter(message string) *food.SearchFilter {
	return &food.SearchFilter{
		FreeText: message,
		FoodType: in.FoodType,
		Budget:   in.Budget,
		Dietary:  in.Preferences,
		MealType: in.MealType,
	}
}

// stringField returns the first non-empty string among keys; "null" counts as empty.
func stringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		s, ok := obj[k].(string)
		s = strings.TrimSpace(s)
		if ok && s != "" && !strings.EqualFold(s, "null") {
			return s
		}
	}
	return ""
}
