// Package normalize coerces whatever the final stage produced into a
// recommendation.Response. Normalize never fails.
package normalize

import (
	"encoding/json"
	"strings"

	"github.com/kailas-cloud/jarvis/internal/domain/pipeline"
	"github.com/kailas-cloud/jarvis/internal/domain/recommendation"
)

// Step names the strategy that produced a response.
type Step string

// Strategies, in the order they are tried.
const (
	StepStructured Step = "structured"
	StepTextJSON   Step = "text_json"
	StepTextBlock  Step = "text_block"
	StepUnwrap     Step = "unwrap"
	StepVerbatim   Step = "verbatim"
)

// unwrapKeys are wrapper fields holding the real output.
var unwrapKeys = []string{"raw", "output"}

// Normalize returns the canonical response for p.
func Normalize(p pipeline.Payload) recommendation.Response {
	resp, _ := NormalizeStep(p)
	return resp
}

// NormalizeStep is Normalize that also reports which strategy won.
func NormalizeStep(p pipeline.Payload) (recommendation.Response, Step) {
	resp, step := normalize(p, false)
	resp.Finalize()
	return resp, step
}

func normalize(p pipeline.Payload, unwrapped bool) (recommendation.Response, Step) {
	if m, ok := p.AsStructured(); ok {
		if resp, ok := fromObject(m); ok {
			return resp, StepStructured
		}
		if resp, ok := tryUnwrap(m, unwrapped); ok {
			return resp, StepUnwrap
		}
		return verbatim(p.Render()), StepVerbatim
	}

	text, _ := p.AsText()
	if obj, ok := parseObject(text); ok {
		if resp, ok := fromObject(obj); ok {
			return resp, StepTextJSON
		}
		if resp, ok := tryUnwrap(obj, unwrapped); ok {
			return resp, StepUnwrap
		}
	}
	if block, ok := balancedObject(stripFences(text)); ok {
		if obj, ok := parseObject(block); ok {
			if resp, ok := fromObject(obj); ok {
				return resp, StepTextBlock
			}
			if resp, ok := tryUnwrap(obj, unwrapped); ok {
				return resp, StepUnwrap
			}
		}
	}
	return verbatim(text), StepVerbatim
}

// tryUnwrap recurses into a raw/output field at most once.
func tryUnwrap(m map[string]any, unwrapped bool) (recommendation.Response, bool) {
	if unwrapped {
		return recommendation.Response{}, false
	}
	for _, k := range unwrapKeys {
		var inner pipeline.Payload
		switch v := m[k].(type) {
		case string:
			inner = pipeline.Text(v)
		case map[string]any:
			inner = pipeline.Structured(v)
		default:
			continue
		}
		// Even a verbatim inner text beats the wrapper's JSON as a message.
		resp, _ := normalize(inner, true)
		return resp, true
	}
	return recommendation.Response{}, false
}

func verbatim(text string) recommendation.Response {
	return recommendation.Response{
		Message:         strings.TrimSpace(text),
		Recommendations: []recommendation.Recommendation{},
	}
}

// wireResponse mirrors the JSON the recommendation stage is asked to emit.
// Recommendations decode one by one so a single bad entry is skipped.
type wireResponse struct {
	Message         string            `json:"message"`
	Recommendations []json.RawMessage `json:"recommendations"`
	ActionRequired  json.RawMessage   `json:"actionRequired"`
	ActionSnake     json.RawMessage   `json:"action_required"`
}

type wireAction struct {
	Type      string `json:"type"`
	ItemID    string `json:"item_id"`
	ItemIDAlt string `json:"itemId"`
	Message   string `json:"message"`
	PromptAlt string `json:"prompt"`
}

// fromObject accepts objects carrying a message or a recommendations list.
func fromObject(m map[string]any) (recommendation.Response, bool) {
	_, hasMsg := m["message"].(string)
	_, hasRecs := m["recommendations"].([]any)
	if !hasMsg && !hasRecs {
		return recommendation.Response{}, false
	}

	data, err := json.Marshal(m)
	if err != nil {
		return recommendation.Response{}, false
	}
	var w wireResponse
	if err := json.Unmarshal(data, &w); err != nil {
		return recommendation.Response{}, false
	}

	resp := recommendation.Response{
		Message:         w.Message,
		Recommendations: make([]recommendation.Recommendation, 0, len(w.Recommendations)),
	}
	for _, raw := range w.Recommendations {
		var rec recommendation.Recommendation
		if err := json.Unmarshal(raw, &rec); err != nil || strings.TrimSpace(rec.Name) == "" {
			continue
		}
		resp.Recommendations = append(resp.Recommendations, rec)
	}

	action := w.ActionRequired
	if len(action) == 0 || string(action) == "null" {
		action = w.ActionSnake
	}
	resp.ActionRequired = decodeAction(action)
	return resp, true
}

func decodeAction(raw json.RawMessage) *recommendation.ActionRequired {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var a wireAction
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil
	}
	out := &recommendation.ActionRequired{Type: a.Type, ItemID: a.ItemID, Prompt: a.Message}
	if out.ItemID == "" {
		out.ItemID = a.ItemIDAlt
	}
	if out.Prompt == "" {
		out.Prompt = a.PromptAlt
	}
	return out
}
