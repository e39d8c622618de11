package triage

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/linnemanlabs/go-core/log"
)

var tracer = otel.Tracer("github.com/linnemanlabs/acuity/internal/triage")

// Failure classification labels for logs and metrics, mirroring the
// error taxonomy: transport, malformed reply, or anything else.
const (
	FailureTransport  = "transport"
	FailureMalformed  = "malformed_reply"
	FailureUnexpected = "unexpected"
)

// CompleteEvent describes one finished analysis for hooks.
type CompleteEvent struct {
	Level    Level
	Fallback bool
	Reason   string // failure classification, empty on success
	Duration float64
	Model    string
}

// EngineHooks receive engine lifecycle events. Zero value is a no-op.
type EngineHooks struct {
	OnLLMCall  func(duration float64, err error)
	OnComplete func(e *CompleteEvent)
	OnBatch    func(size int)
}

// Engine runs the single-case pipeline: prompt construction, one call to
// the reasoning provider, normalization of the reply, and the safety
// fallback when any of that fails.
type Engine struct {
	provider Provider
	logger   log.Logger
	hooks    EngineHooks
}

// NewEngine creates a new triage engine with the given dependencies.
func NewEngine(provider Provider, logger log.Logger, hooks EngineHooks) *Engine {
	if logger == nil {
		logger = log.Nop()
	}
	return &Engine{
		provider: provider,
		logger:   logger,
		hooks:    hooks,
	}
}

// Model reports the provider's model identifier.
func (e *Engine) Model() string { return e.provider.Model() }

// Analyze runs the pipeline for one clinical note. It never returns an
// error: every failure is converted into the fixed safety fallback
// result, so callers and downstream systems handle exactly one shape.
func (e *Engine) Analyze(ctx context.Context, note string) *Result {
	start := time.Now()

	ctx, span := tracer.Start(ctx, "triage.Analyze")
	defer span.End()

	result, failure := e.analyze(ctx, note)

	fallback := failure != ""
	if fallback {
		span.SetAttributes(attribute.String("acuity.failure", failure))
	}
	span.SetAttributes(
		attribute.String("acuity.triage_level", string(result.TriageLevel)),
		attribute.Bool("acuity.fallback", fallback),
	)

	if e.hooks.OnComplete != nil {
		e.hooks.OnComplete(&CompleteEvent{
			Level:    result.TriageLevel,
			Fallback: fallback,
			Reason:   failure,
			Duration: time.Since(start).Seconds(),
			Model:    e.provider.Model(),
		})
	}

	return result
}

// analyze returns the result and, on the fallback path, the failure
// classification.
func (e *Engine) analyze(ctx context.Context, note string) (*Result, string) {
	prompt := buildPrompt(note)

	llmStart := time.Now()
	reply, err := e.provider.Generate(ctx, prompt)
	llmDur := time.Since(llmStart).Seconds()

	if e.hooks.OnLLMCall != nil {
		e.hooks.OnLLMCall(llmDur, err)
	}

	if err != nil {
		kind := classify(err)
		e.logger.Error(ctx, err, "reasoning call failed", "failure", kind, "model", e.provider.Model())
		return Fallback(err), kind
	}

	result, err := Normalize(reply)
	if err != nil {
		kind := classify(err)
		e.logger.Error(ctx, err, "reply normalization failed", "failure", kind, "model", e.provider.Model())
		return Fallback(err), kind
	}

	e.logger.Info(ctx, "note analyzed",
		"triage_level", result.TriageLevel,
		"confidence", result.Confidence,
		"red_flags", len(result.RedFlags),
		"llm_seconds", llmDur,
		"model", e.provider.Model(),
	)
	return result, ""
}

// classify maps an error onto the failure taxonomy.
func classify(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return FailureTransport
	}
	var me *MalformedReplyError
	if errors.As(err, &me) {
		return FailureMalformed
	}
	return FailureUnexpected
}
