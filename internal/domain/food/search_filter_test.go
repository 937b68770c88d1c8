package food

import "testing"

func TestParseBudgetTier(t *testing.T) {
	tests := []struct {
		in   string
		want BudgetTier
		ok   bool
	}{
		{"low", BudgetLow, true},
		{" Medium ", BudgetMedium, true},
		{"HIGH", BudgetHigh, true},
		{"cheap", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseBudgetTier(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseBudgetTier(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBudgetTier_PriceRange(t *testing.T) {
	tests := []struct {
		tier    BudgetTier
		price   float64
		inRange bool
	}{
		{BudgetLow, 15, true},
		{BudgetLow, 15.01, false},
		{BudgetMedium, 10, true},
		{BudgetMedium, 25, true},
		{BudgetMedium, 9.99, false},
		{BudgetHigh, 20, true},
		{BudgetHigh, 19.99, false},
	}
	for _, tt := range tests {
		r, ok := tt.tier.PriceRange()
		if !ok {
			t.Fatalf("%s: expected a range", tt.tier)
		}
		if got := r.Contains(tt.price); got != tt.inRange {
			t.Errorf("%s.Contains(%v) = %v, want %v", tt.tier, tt.price, got, tt.inRange)
		}
	}

	if _, ok := BudgetTier("").PriceRange(); ok {
		t.Error("empty tier should have no range")
	}
}

func TestSearchFilter_Terms(t *testing.T) {
	f := &SearchFilter{FoodType: "curry"}
	terms := f.Terms("spicy dinner")
	if len(terms) != 2 || terms[0] != "spicy dinner" || terms[1] != "curry" {
		t.Errorf("terms = %v", terms)
	}

	if got := (&SearchFilter{FoodType: "Pizza"}).Terms("pizza"); len(got) != 1 {
		t.Errorf("duplicate food type should collapse, got %v", got)
	}

	var nilFilter *SearchFilter
	if got := nilFilter.Terms(""); len(got) != 0 {
		t.Errorf("expected no terms, got %v", got)
	}
}

func TestSearchFilter_Expression(t *testing.T) {
	f := &SearchFilter{
		Budget:  BudgetLow,
		Dietary: []string{"Vegetarian", "spicy"},
	}
	expr, err := f.Expression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(expr.Must()) != 2 {
		t.Fatalf("must = %d, want 2 (price + vegetarian)", len(expr.Must()))
	}
	if expr.Must()[0].Key() != FieldPrice || expr.Must()[1].Key() != FieldIsVegetarian {
		t.Errorf("unexpected must order: %s, %s", expr.Must()[0].Key(), expr.Must()[1].Key())
	}
	if len(expr.Should()) != 3 {
		t.Errorf("should = %d, want 3 spicy tags", len(expr.Should()))
	}

	doc := map[string]string{"price": "12.5", "is_vegetarian": "true", "tags": "chili,paneer"}
	if !expr.Matches(doc) {
		t.Error("expected document to satisfy filter")
	}
	doc["price"] = "18"
	if expr.Matches(doc) {
		t.Error("18 should exceed the low budget")
	}
}

func TestSearchFilter_ExpressionEmpty(t *testing.T) {
	expr, err := (&SearchFilter{FreeText: "anything"}).Expression()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !expr.IsEmpty() {
		t.Error("filter without constraints should produce an empty expression")
	}
}

func TestSearchFilter_Keywords(t *testing.T) {
	f := &SearchFilter{FreeText: "I'd really like some Pad-Thai, or pad thai noodles!", MealType: "Dinner"}
	got := f.Keywords()
	want := []string{"pad-thai", "pad", "thai", "noodles", "dinner"}
	if len(got) != len(want) {
		t.Fatalf("Keywords() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keywords()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if kw := (&SearchFilter{FreeText: "I want something good to eat"}).Keywords(); len(kw) != 0 {
		t.Errorf("stopwords only: got %v", kw)
	}
	var nilFilter *SearchFilter
	if kw := nilFilter.Keywords(); kw != nil {
		t.Errorf("nil filter: got %v", kw)
	}
}
