// Package pipeline holds the values exchanged between pipeline stages.
package pipeline

import (
	"encoding/json"
	"time"
)

// PayloadKind tags the Payload union.
type PayloadKind int

const (
	// KindText is free-form engine output.
	KindText PayloadKind = iota
	// KindStructured is a decoded JSON object.
	KindStructured
)

func (k PayloadKind) String() string {
	if k == KindStructured {
		return "structured"
	}
	return "text"
}

// Payload is either a structured map or raw text, never both.
type Payload struct {
	kind       PayloadKind
	text       string
	structured map[string]any
}

// Text wraps free-form output.
func Text(s string) Payload { return Payload{kind: KindText, text: s} }

// Structured wraps a decoded object. A nil map becomes empty.
func Structured(m map[string]any) Payload {
	if m == nil {
		m = map[string]any{}
	}
	return Payload{kind: KindStructured, structured: m}
}

// Kind returns the active variant.
func (p Payload) Kind() PayloadKind { return p.kind }

// AsText returns the text variant.
func (p Payload) AsText() (string, bool) {
	if p.kind != KindText {
		return "", false
	}
	return p.text, true
}

// AsStructured returns the structured variant.
func (p Payload) AsStructured() (map[string]any, bool) {
	if p.kind != KindStructured {
		return nil, false
	}
	return p.structured, true
}

// Render formats the payload for inclusion in a downstream instruction.
func (p Payload) Render() string {
	if p.kind == KindText {
		return p.text
	}
	b, err := json.MarshalIndent(p.structured, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

// StageResult is the output of one stage within a single run.
type StageResult struct {
	Stage     string
	Payload   Payload
	Succeeded bool
	Duration  time.Duration
}
