package fallback

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/jarvis/internal/domain/recommendation"
)

func TestRespond_Routes(t *testing.T) {
	tests := []struct {
		message   string
		wantRoute string
		wantFirst string
	}{
		{"I want PIZZA tonight", "pizza", "spicy_jalapeno_pizza"},
		{"something italian", "pizza", "spicy_jalapeno_pizza"},
		{"sushi please", "sushi", "california_roll"},
		{"a spring roll", "sushi", "california_roll"},
		{"craving curry", "indian", "chicken_tikka_masala"},
		{"something spicy", "indian", "chicken_tikka_masala"},
		{"spicy pizza", "pizza", "spicy_jalapeno_pizza"}, // first route wins
		{"surprise me", RouteGeneric, "chicken_caesar_salad"},
		{"", RouteGeneric, "chicken_caesar_salad"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := Route(tt.message); got != tt.wantRoute {
				t.Errorf("Route = %q, want %q", got, tt.wantRoute)
			}
			resp := Respond(tt.message, "Sam")
			if resp.Recommendations[0].ID != tt.wantFirst {
				t.Errorf("first = %q, want %q", resp.Recommendations[0].ID, tt.wantFirst)
			}
		})
	}
}

func TestRespond_Invariants(t *testing.T) {
	for _, msg := range []string{"pizza", "sushi", "curry", "anything"} {
		resp := Respond(msg, "")
		if !resp.Fallback {
			t.Errorf("%q: fallback must be true", msg)
		}
		if n := len(resp.Recommendations); n < 2 || n > recommendation.MaxRecommendations {
			t.Errorf("%q: %d recommendations", msg, n)
		}
		a := resp.ActionRequired
		if a == nil || a.Type != recommendation.ActionAddToCart || a.ItemID != resp.Recommendations[0].ID {
			t.Errorf("%q: action = %+v", msg, a)
		}
		if resp.OriginalMessage != msg {
			t.Errorf("%q: original message = %q", msg, resp.OriginalMessage)
		}
		if !strings.HasPrefix(resp.Message, "Hey there!") {
			t.Errorf("%q: message = %q", msg, resp.Message)
		}
	}
}

func TestRespond_DoesNotShareState(t *testing.T) {
	a := Respond("pizza", "A")
	a.Recommendations[0].Name = "mutated"
	a.Recommendations[0].Tags[0] = "mutated"

	b := Respond("pizza", "B")
	if b.Recommendations[0].Name == "mutated" || b.Recommendations[0].Tags[0] == "mutated" {
		t.Error("responses must not alias the canned lists")
	}
	if !strings.HasPrefix(b.Message, "Hey B!") {
		t.Errorf("message = %q", b.Message)
	}
}
