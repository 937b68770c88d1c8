package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/kailas-cloud/jarvis/internal/domain/recommendation"
)

// StageDefinition declares one pipeline stage. Stages are data: adding a
// stage means adding a definition, not code.
type StageDefinition struct {
	Name           string
	Role           string   // system message for the engine
	Template       string   // text/template over TemplateData
	DependsOn      []string // earlier stages whose payloads are appended, in this order
	Tools          []string // tools run before the engine call; results are appended
	ExpectedOutput string   // informal, not validated
	Structured     bool     // ask for JSON and keep it as a structured payload
}

// TemplateData is what instruction templates can reference.
type TemplateData struct {
	Message  string
	UserName string
	User     recommendation.UserContext
	History  []recommendation.Turn
}

type compiledStage struct {
	StageDefinition
	tmpl *template.Template
}

// compile validates the stage list: unique names, dependencies on earlier
// stages only, known tools and parseable templates.
func compile(defs []StageDefinition, tools map[string]Tool) ([]compiledStage, error) {
	if len(defs) == 0 {
		return nil, errors.New("pipeline needs at least one stage")
	}
	seen := make(map[string]struct{}, len(defs))
	out := make([]compiledStage, 0, len(defs))
	for i, d := range defs {
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("stage #%d: name is required", i)
		}
		if _, dup := seen[d.Name]; dup {
			return nil, fmt.Errorf("stage %q: duplicate name", d.Name)
		}
		for _, dep := range d.DependsOn {
			if _, ok := seen[dep]; !ok {
				return nil, fmt.Errorf("stage %q: dependency %q must be declared earlier", d.Name, dep)
			}
		}
		for _, t := range d.Tools {
			if _, ok := tools[t]; !ok {
				return nil, fmt.Errorf("stage %q: unknown tool %q", d.Name, t)
			}
		}
		tmpl, err := template.New(d.Name).Option("missingkey=zero").Parse(d.Template)
		if err != nil {
			return nil, fmt.Errorf("stage %q: template: %w", d.Name, err)
		}
		seen[d.Name] = struct{}{}
		out = append(out, compiledStage{StageDefinition: d, tmpl: tmpl})
	}
	return out, nil
}

func (s compiledStage) render(data TemplateData) (string, error) {
	var b strings.Builder
	if err := s.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", s.Name, err)
	}
	return strings.TrimSpace(b.String()), nil
}
