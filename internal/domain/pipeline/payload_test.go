package pipeline

import (
	"strings"
	"testing"
)

func TestPayload_Variants(t *testing.T) {
	tp := Text("hello")
	if tp.Kind() != KindText {
		t.Fatalf("kind = %s, want text", tp.Kind())
	}
	if s, ok := tp.AsText(); !ok || s != "hello" {
		t.Errorf("AsText = (%q, %v)", s, ok)
	}
	if _, ok := tp.AsStructured(); ok {
		t.Error("text payload must not expose a map")
	}

	sp := Structured(map[string]any{"mood": "happy"})
	if sp.Kind() != KindStructured {
		t.Fatalf("kind = %s, want structured", sp.Kind())
	}
	m, ok := sp.AsStructured()
	if !ok || m["mood"] != "happy" {
		t.Errorf("AsStructured = (%v, %v)", m, ok)
	}
	if _, ok := sp.AsText(); ok {
		t.Error("structured payload must not expose text")
	}
}

func TestPayload_NilStructured(t *testing.T) {
	m, ok := Structured(nil).AsStructured()
	if !ok || m == nil {
		t.Fatal("expected empty non-nil map")
	}
}

func TestPayload_Render(t *testing.T) {
	if got := Text("plain").Render(); got != "plain" {
		t.Errorf("text render = %q", got)
	}
	got := Structured(map[string]any{"budget": "low"}).Render()
	if !strings.Contains(got, `"budget": "low"`) {
		t.Errorf("structured render = %q", got)
	}
}

func TestZeroPayloadIsEmptyText(t *testing.T) {
	var p Payload
	if s, ok := p.AsText(); !ok || s != "" {
		t.Errorf("zero payload = (%q, %v), want empty text", s, ok)
	}
}
