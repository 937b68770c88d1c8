// Package recommendation holds the chat request context and the response shape
// returned by the pipeline, the fallback policy and the normalizer.
package recommendation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// MaxRecommendations caps every response.
const MaxRecommendations = 5

// ActionAddToCart is the only action the client knows how to render.
const ActionAddToCart = "add_to_cart"

// DefaultMessage is used when a response would otherwise carry no message.
const DefaultMessage = "Here are some dishes I think you'll enjoy."

// UserContext identifies the caller. Never persisted.
type UserContext struct {
	ID      string         `json:"id" validate:"required,max=128"`
	Name    string         `json:"name,omitempty" validate:"max=128"`
	Address map[string]any `json:"address,omitempty"`
}

// DisplayName returns the name used in greetings.
func (u UserContext) DisplayName() string {
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	return "there"
}

// Turn is one prior exchange in the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Restaurant is the restaurant summary attached to a recommendation.
type Restaurant struct {
	Name         string `json:"name"`
	Rating       Number `json:"rating,omitempty"`
	DeliveryTime string `json:"deliveryTime,omitempty"`
}

// UnmarshalJSON also accepts a bare restaurant name.
func (r *Restaurant) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		*r = Restaurant{Name: name}
		return nil
	}
	type plain Restaurant
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = Restaurant(p)
	return nil
}

// Recommendation is a single suggested dish.
type Recommendation struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Price       Number     `json:"price"`
	Restaurant  Restaurant `json:"restaurant"`
	Description string     `json:"description,omitempty"`
	WhyPerfect  string     `json:"why_perfect,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// ActionRequired prompts the client to offer a follow-up action on one item.
type ActionRequired struct {
	Type   string `json:"type"`
	ItemID string `json:"item_id"`
	Prompt string `json:"message"`
}

// Response is what ProcessChat returns.
type Response struct {
	Message         string           `json:"message"`
	Recommendations []Recommendation `json:"recommendations"`
	ActionRequired  *ActionRequired  `json:"actionRequired,omitempty"`
	Fallback        bool             `json:"fallback"`
	UserContext     *UserContext     `json:"user_context,omitempty"`
	ProcessedAt     time.Time        `json:"processed_at"`
	OriginalMessage string           `json:"original_message,omitempty"`
}

// Finalize enforces response invariants: a non-empty message, at most
// MaxRecommendations entries and a non-nil recommendation slice.
func (r *Response) Finalize() {
	r.Message = strings.TrimSpace(r.Message)
	if r.Message == "" {
		r.Message = DefaultMessage
	}
	if r.Recommendations == nil {
		r.Recommendations = []Recommendation{}
	}
	if len(r.Recommendations) > MaxRecommendations {
		r.Recommendations = r.Recommendations[:MaxRecommendations]
	}
	if r.ActionRequired != nil && r.ActionRequired.Type == "" && r.ActionRequired.ItemID == "" {
		r.ActionRequired = nil
	}
}

// AddToCartAction builds the standard follow-up for the first recommendation.
func AddToCartAction(rec Recommendation) *ActionRequired {
	return &ActionRequired{
		Type:   ActionAddToCart,
		ItemID: rec.ID,
		Prompt: "Would you like to add " + rec.Name + " to your cart?",
	}
}

// Number is a float that also accepts quoted and currency-prefixed values,
// since engines emit "14.99", "$14.99" and 14.99 interchangeably.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "$€£"))
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Unparseable prices are dropped rather than failing the whole response.
			*n = 0
			return nil //nolint:nilerr // tolerant decode
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}
