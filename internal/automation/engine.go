// Package automation is the engine entry point: it turns an automation
// definition into a compiled, reusable condition tree and evaluates it
// against trigger data.
package automation

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/solatis/automata/internal/clock"
	"github.com/solatis/automata/internal/conditions"
	"github.com/solatis/automata/internal/provider"
	"github.com/solatis/automata/internal/types"
	"github.com/solatis/automata/internal/value"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

/*
 * Automation engine.
 *
 * Compile workflow:
 *   1. Size check (types.MaxDefinitionSize unless configured)
 *   2. Envelope validation against the embedded JSON schema
 *   3. Condition decoding via the registry (shape errors fail here)
 *   4. Build with host services (literal and dependency errors fail here)
 *
 * A Compiled automation is immutable and safe for concurrent Evaluate calls;
 * each call snapshots its data context into a fresh provider.Context.
 *
 * Outcomes are logged (debug on success, warn on failure), counted through
 * the optional Recorder, and traced as one span per evaluation.
 */

const tracerName = "github.com/solatis/automata/internal/automation"

// Recorder receives engine outcomes. core/metrics implements it.
type Recorder interface {
	RecordCompile(outcome string)
	RecordEvaluation(outcome string, elapsed time.Duration)
	RecordFailure(kind, title string)
}

// Engine compiles automation definitions.
type Engine struct {
	decoder     *provider.Decoder
	services    *provider.Services
	validator   *schemaValidator
	logger      *slog.Logger
	recorder    Recorder
	tracer      trace.Tracer
	parallel    bool
	maxParallel int
	maxSize     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithClock replaces the clock injected into time-dependent providers.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { provider.Provide(e.services, c) }
}

// WithParallel resolves sibling operands concurrently, at most limit at a
// time per fan-out (limit <= 0 means unbounded).
func WithParallel(limit int) Option {
	return func(e *Engine) {
		e.parallel = true
		e.maxParallel = limit
	}
}

// WithMaxDefinitionSize lowers or raises the accepted definition size in
// bytes (default types.MaxDefinitionSize).
func WithMaxDefinitionSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSize = n
		}
	}
}

// WithRegistry replaces the expression registry, e.g. to add kinds.
func WithRegistry(reg *provider.Registry) Option {
	return func(e *Engine) { e.decoder = provider.NewDecoder(reg) }
}

// NewEngine creates an engine with the navigation providers and the
// condition library registered and the system clock injected.
func NewEngine(opts ...Option) (*Engine, error) {
	validator, err := newSchemaValidator()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		decoder:   provider.NewDecoder(conditions.NewRegistry()),
		services:  provider.Provide[clock.Clock](provider.NewServices(), clock.System{}),
		validator: validator,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
		maxSize:   types.MaxDefinitionSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Definition is the stored form of an automation.
type Definition struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description,omitempty"`
	Condition   json.RawMessage            `json:"condition"`
	Variables   map[string]json.RawMessage `json:"variables,omitempty"`
}

// Compiled is a built automation, ready for evaluation.
type Compiled struct {
	Name        string
	Description string

	condition provider.Provider[bool]
	defaults  map[string]any
	engine    *Engine
}

// Compile validates, decodes and builds a definition document.
func (e *Engine) Compile(definition []byte) (*Compiled, error) {
	if len(definition) > e.maxSize {
		e.recordCompile(types.ErrDefinitionTooLarge)
		return nil, types.ErrDefinitionTooLarge
	}

	def, err := e.parseDefinition(definition)
	if err != nil {
		e.recordCompile(err)
		return nil, err
	}

	defaults := make(map[string]any, len(def.Variables))
	for name, raw := range def.Variables {
		v, err := value.DecodeJSON(raw)
		if err != nil {
			err = types.ConfigError("/variables/"+name, types.TitleInvalidJSON, "invalid variable value: %v", err)
			e.recordCompile(err)
			return nil, err
		}
		defaults[name] = v
	}

	c, err := e.compileCondition(def.Condition)
	if err != nil {
		e.logger.Warn("automation compile failed", "name", def.Name, "error", err)
		return nil, err
	}
	c.Name = def.Name
	c.Description = def.Description
	c.defaults = defaults

	e.logger.Debug("automation compiled", "name", def.Name, "variables", len(defaults))
	return c, nil
}

// CompileCondition decodes and builds a bare condition document, without
// the definition envelope.
func (e *Engine) CompileCondition(raw json.RawMessage) (*Compiled, error) {
	if len(raw) > e.maxSize {
		e.recordCompile(types.ErrDefinitionTooLarge)
		return nil, types.ErrDefinitionTooLarge
	}
	return e.compileCondition(raw)
}

func (e *Engine) parseDefinition(definition []byte) (*Definition, error) {
	doc, err := value.DecodeJSON(definition)
	if err != nil {
		return nil, types.ConfigError("/", types.TitleInvalidJSON, "definition is not valid JSON: %v", err)
	}
	if violations := e.validator.validate(doc); len(violations) > 0 {
		msgs := make([]string, len(violations))
		for i, v := range violations {
			msgs[i] = v.String()
		}
		return nil, types.ConfigError(violations[0].Path, types.TitleInvalidConfiguration,
			"definition does not match schema: %s", strings.Join(msgs, "; "))
	}

	var def Definition
	if err := json.Unmarshal(definition, &def); err != nil {
		return nil, types.ConfigError("/", types.TitleInvalidJSON, "decode definition: %v", err)
	}
	return &def, nil
}

func (e *Engine) compileCondition(raw json.RawMessage) (*Compiled, error) {
	b, err := conditions.DecodeRoot(e.decoder, raw)
	if err != nil {
		e.recordCompile(err)
		return nil, err
	}
	p, err := b.Build(e.services)
	if err != nil {
		e.recordCompile(err)
		return nil, err
	}
	e.recordCompile(nil)
	return &Compiled{condition: p, engine: e}, nil
}

func (e *Engine) recordCompile(err error) {
	if e.recorder == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	e.recorder.RecordCompile(outcome)
}

// Evaluate resolves the automation's condition against data. Declared
// variable defaults apply where data does not set the variable. Failures
// are returned as *types.Error.
func (c *Compiled) Evaluate(ctx context.Context, data provider.DataContext) (bool, error) {
	e := c.engine
	ctx, span := e.tracer.Start(ctx, "automation.Evaluate",
		trace.WithAttributes(attribute.String("automation.name", c.Name)))
	defer span.End()

	if len(c.defaults) > 0 {
		data = withDefaults(data, c.defaults)
	}
	var opts []provider.Option
	if e.parallel {
		opts = append(opts, provider.WithParallel(e.maxParallel))
	}

	start := time.Now()
	result, err := provider.ResolveValue(ctx, c.condition, provider.NewContext(data, opts...))
	elapsed := time.Since(start)

	if err != nil {
		te := types.AsError(err)
		span.RecordError(te)
		span.SetStatus(codes.Error, te.Title)
		span.SetAttributes(attribute.String("automation.error.title", te.Title))
		e.logger.WarnContext(ctx, "automation evaluation failed",
			"name", c.Name, "title", te.Title, "path", te.Path, "kind", te.Kind.String(), "error", te.Message)
		if e.recorder != nil {
			e.recorder.RecordEvaluation("error", elapsed)
			e.recorder.RecordFailure(te.Kind.String(), te.Title)
		}
		return false, te
	}

	span.SetAttributes(attribute.Bool("automation.result", result))
	e.logger.DebugContext(ctx, "automation evaluated", "name", c.Name, "result", result, "elapsed", elapsed)
	if e.recorder != nil {
		e.recorder.RecordEvaluation(strconv.FormatBool(result), elapsed)
	}
	return result, nil
}
