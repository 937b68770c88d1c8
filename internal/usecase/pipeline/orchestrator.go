// Package pipeline runs the staged chat reasoning flow and turns its outcome
// into a recommendation response, falling back to the keyword policy on any
// failure.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jarvis/internal/domain"
	"github.com/kailas-cloud/jarvis/internal/domain/pipeline"
	"github.com/kailas-cloud/jarvis/internal/domain/recommendation"
	"github.com/kailas-cloud/jarvis/internal/logger"
	"github.com/kailas-cloud/jarvis/internal/metrics"
	"github.com/kailas-cloud/jarvis/internal/usecase/fallback"
	"github.com/kailas-cloud/jarvis/internal/usecase/normalize"
)

// MaxHistoryTurns bounds the conversation history passed to the stages.
const MaxHistoryTurns = 10

// Request is one chat turn to run through the pipeline.
type Request struct {
	Message string
	User    recommendation.UserContext
	History []recommendation.Turn
}

// RunContext is the state of one run, visible to tools.
type RunContext struct {
	ID      string
	Request Request
	results map[string]pipeline.StageResult
	intent  *Intent
}

// Result returns the output of an already finished stage.
func (rc *RunContext) Result(stage string) (pipeline.StageResult, bool) {
	r, ok := rc.results[stage]
	return r, ok
}

// Intent returns the parsed intent stage output, or the zero Intent before it ran.
func (rc *RunContext) Intent() Intent {
	if rc.intent != nil {
		return *rc.intent
	}
	r, ok := rc.results[StageIntent]
	if !ok || !r.Succeeded {
		return Intent{}
	}
	in := ParseIntent(r.Payload)
	rc.intent = &in
	return in
}

// Orchestrator executes a fixed, validated stage list.
type Orchestrator struct {
	engine domain.Engine
	stages []compiledStage
	tools  map[string]Tool
}

// NewOrchestrator validates the stage definitions against the tools.
func NewOrchestrator(engine domain.Engine, stages []StageDefinition, tools []Tool) (*Orchestrator, error) {
	if engine == nil {
		return nil, errors.New("pipeline: engine is required")
	}
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
	}
	compiled, err := compile(stages, byName)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return &Orchestrator{engine: engine, stages: compiled, tools: byName}, nil
}

// Stages returns the stage names in execution order.
func (o *Orchestrator) Stages() []string {
	names := make([]string, len(o.stages))
	for i, s := range o.stages {
		names[i] = s.Name
	}
	return names
}

// Run executes every stage and normalizes the final payload. Any failure
// yields the fallback response instead; Run itself never fails.
func (o *Orchestrator) Run(ctx context.Context, req Request) recommendation.Response {
	rc := &RunContext{
		ID:      uuid.NewString(),
		Request: req,
		results: make(map[string]pipeline.StageResult, len(o.stages)),
	}
	if len(rc.Request.History) > MaxHistoryTurns {
		rc.Request.History = rc.Request.History[len(rc.Request.History)-MaxHistoryTurns:]
	}
	ctx = logger.With(ctx,
		zap.String("run_id", rc.ID),
		zap.String("user_id", req.User.ID),
		zap.Int("message_length", len(req.Message)),
	)
	log := logger.FromContext(ctx)
	log.Info("pipeline started", zap.Int("stages", len(o.stages)))

	start := time.Now()
	payload, err := o.execute(ctx, rc)

	kind := domain.Classify(err)
	switch kind {
	case domain.FailureNone:
		resp, step := normalize.NormalizeStep(payload)
		metrics.NormalizerStepTotal.WithLabelValues(string(step)).Inc()
		metrics.PipelineRunsTotal.WithLabelValues("ok", kind.String()).Inc()
		log.Info("pipeline completed",
			zap.String("normalizer_step", string(step)),
			zap.Int("recommendations", len(resp.Recommendations)),
			zap.Duration("duration", time.Since(start)),
		)
		return resp
	case domain.FailureTransientQuota:
		log.Warn("reasoning quota or rate limit hit, serving fallback", zap.Error(err))
	case domain.FailureMalformedOutput, domain.FailureUpstreamUnavailable:
		log.Warn("pipeline degraded, serving fallback", zap.String("kind", kind.String()), zap.Error(err))
	case domain.FailureInvalidInput, domain.FailureUnclassified:
		log.Error("pipeline failed, serving fallback", zap.String("kind", kind.String()), zap.Error(err))
	default:
		log.Error("pipeline failed with unknown kind, serving fallback", zap.Error(err))
	}
	metrics.PipelineRunsTotal.WithLabelValues("fallback", kind.String()).Inc()
	return fallback.Respond(req.Message, req.User.DisplayName())
}

// execute runs the stages in order and returns the last stage's payload.
func (o *Orchestrator) execute(ctx context.Context, rc *RunContext) (pipeline.Payload, error) {
	data := TemplateData{
		Message:  rc.Request.Message,
		UserName: rc.Request.User.DisplayName(),
		User:     rc.Request.User,
		History:  rc.Request.History,
	}

	var last pipeline.Payload
	for _, st := range o.stages {
		if err := ctx.Err(); err != nil {
			return pipeline.Payload{}, domain.NewStageError(st.Name, err)
		}
		for _, dep := range st.DependsOn {
			if r, ok := rc.results[dep]; !ok || !r.Succeeded {
				return pipeline.Payload{}, domain.NewStageError(st.Name, domain.ErrStageSkipped)
			}
		}

		res, err := o.runStage(ctx, rc, st, data)
		rc.results[st.Name] = res
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.PipelineStageDuration.WithLabelValues(st.Name, status).Observe(res.Duration.Seconds())
		if err != nil {
			return pipeline.Payload{}, domain.NewStageError(st.Name, err)
		}
		logger.FromContext(ctx).Debug("stage completed",
			zap.String("stage", st.Name),
			zap.String("payload_kind", res.Payload.Kind().String()),
			zap.Duration("duration", res.Duration),
		)
		last = res.Payload
	}
	return last, nil
}

func (o *Orchestrator) runStage(
	ctx context.Context, rc *RunContext, st compiledStage, data TemplateData,
) (pipeline.StageResult, error) {
	start := time.Now()
	res := pipeline.StageResult{Stage: st.Name}

	input, err := o.buildInput(ctx, rc, st, data)
	if err != nil {
		res.Duration = time.Since(start)
		return res, err
	}

	out, err := o.engine.Invoke(ctx, domain.ReasoningRequest{
		Stage:       st.Name,
		Role:        st.Role,
		Instruction: input,
		JSON:        st.Structured,
	})
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	res.Payload = toPayload(out.Content, st.Structured)
	res.Succeeded = true
	return res, nil
}

// buildInput is the rendered instruction, then each dependency's payload in
// declaration order, then each tool's output.
func (o *Orchestrator) buildInput(
	ctx context.Context, rc *RunContext, st compiledStage, data TemplateData,
) (string, error) {
	instruction, err := st.render(data)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(instruction)
	if st.ExpectedOutput != "" {
		b.WriteString("\n\nExpected output: ")
		b.WriteString(st.ExpectedOutput)
	}
	for _, dep := range st.DependsOn {
		fmt.Fprintf(&b, "\n\n--- Output of %s ---\n%s", dep, rc.results[dep].Payload.Render())
	}
	for _, name := range st.Tools {
		out, err := o.tools[name].Run(ctx, rc)
		if err != nil {
			return "", fmt.Errorf("tool %s: %w", name, err)
		}
		raw, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", fmt.Errorf("tool %s: encode: %w", name, err)
		}
		fmt.Fprintf(&b, "\n\n--- Results of %s ---\n%s", name, raw)
	}
	return b.String(), nil
}

// toPayload keeps structured output as a map when it parses; anything else
// stays text for the normalizer to deal with.
func toPayload(content string, structured bool) pipeline.Payload {
	if structured {
		if obj, ok := normalize.ExtractObject(content); ok {
			return pipeline.Structured(obj)
		}
	}
	return pipeline.Text(content)
}
