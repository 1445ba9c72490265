package randomprocessor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360/randstream/errors"
	"github.com/c360/randstream/record"
	"github.com/c360/randstream/sampler"
)

// FieldSource is the provenance recorded on every appended field
const FieldSource = "RandomNumber"

// State is the lifecycle position of an Engine
type State int

// Engine states. Transitions only move forward.
const (
	StateUninitialized State = iota
	StateInitialized
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Downstream receives the augmented stream
type Downstream interface {
	// Init adopts the output schema. Called once, before any Push.
	Init(ctx context.Context, schema *record.Schema) error
	Push(ctx context.Context, rec *record.Record) error
	UpdateProgress(ctx context.Context, fraction float64, flag bool)
	// Close ends the stream. Called exactly once per Engine.
	Close(ctx context.Context, flag bool) error
}

// Engine drives one record stream. It is not safe for concurrent use; the
// host delivers events one at a time in stream order.
type Engine struct {
	params     sampler.Params
	outputKind record.Kind
	provider   sampler.SourceProvider
	downstream Downstream
	logger     *slog.Logger

	state   State
	in      *record.Schema
	out     *record.Schema
	copier  *record.Copier
	slot    record.Slot
	sample  sampler.Sampler
	initErr error

	metrics *randomMetrics
	name    string
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithSourceProvider replaces the process-wide source selection
func WithSourceProvider(p sampler.SourceProvider) EngineOption {
	return func(e *Engine) {
		if p != nil {
			e.provider = p
		}
	}
}

// WithEngineLogger sets the engine logger
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func withMetrics(m *randomMetrics, componentName string) EngineOption {
	return func(e *Engine) {
		e.metrics = m
		e.name = componentName
	}
}

// NewEngine returns an Uninitialized engine appending a field of outputKind
// sampled per params.
func NewEngine(params sampler.Params, outputKind record.Kind, downstream Downstream, opts ...EngineOption) *Engine {
	e := &Engine{
		params:     params,
		outputKind: outputKind,
		provider:   sampler.DefaultProvider(),
		downstream: downstream,
		logger:     slog.Default(),
		name:       "random-number-engine",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current lifecycle state
func (e *Engine) State() State {
	return e.state
}

// OutputSchema returns the negotiated schema, or nil before initialization
func (e *Engine) OutputSchema() *record.Schema {
	return e.out
}

// InputSchema returns the upstream schema, or nil until one was received
func (e *Engine) InputSchema() *record.Schema {
	return e.in
}

// FieldDescriptor returns the descriptor of the appended field
func (e *Engine) FieldDescriptor() record.FieldDescriptor {
	return record.FieldDescriptor{
		Name:        e.params.Field,
		Kind:        e.outputKind,
		Source:      FieldSource,
		Description: "Random Number " + e.params.Summary(),
	}
}

// OnSchemaReady negotiates the output schema with the downstream and builds
// the sampler. A failure is terminal for the engine.
func (e *Engine) OnSchemaReady(ctx context.Context, in *record.Schema) error {
	switch e.state {
	case StateUninitialized:
	case StateClosed:
		return errors.WrapFatal(errors.ErrStreamClosed, "Engine", "OnSchemaReady", "state check")
	case StateFailed:
		return errors.WrapFatal(errors.ErrStreamFailed, "Engine", "OnSchemaReady", "state check")
	default:
		return errors.WrapFatal(errors.ErrAlreadyInitialized, "Engine", "OnSchemaReady", "state check")
	}

	if in == nil {
		return e.fail(errors.WrapInvalid(errors.ErrSchemaUnavailable, "Engine", "OnSchemaReady", "input schema check"))
	}
	// kept on failure so later records still decode and are rejected by state
	e.in = in
	if !e.outputKind.IsOutputKind() {
		return e.fail(errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrUnsupportedType, e.outputKind),
			"Engine", "OnSchemaReady", "output kind check"))
	}

	out, err := in.Append(e.FieldDescriptor())
	if err != nil {
		return e.fail(errors.Wrap(err, "Engine", "OnSchemaReady", "append output field"))
	}
	copier, err := record.NewCopier(in, out)
	if err != nil {
		return e.fail(errors.Wrap(err, "Engine", "OnSchemaReady", "build copier"))
	}

	if err := e.downstream.Init(ctx, out); err != nil {
		if classified(err) {
			return e.fail(errors.Wrap(err, "Engine", "OnSchemaReady", "downstream init"))
		}
		return e.fail(errors.WrapFatal(err, "Engine", "OnSchemaReady", "downstream init"))
	}

	slot, err := out.Slot(e.params.Field)
	if err != nil {
		return e.fail(errors.Wrap(err, "Engine", "OnSchemaReady", "resolve output slot"))
	}

	e.out = out
	e.copier = copier
	e.slot = slot
	e.sample = sampler.Build(e.params, e.provider)
	e.state = StateInitialized

	e.logger.Debug("Stream initialized",
		"component", e.name,
		"input_fields", in.Len(),
		"field", e.params.Field,
		"kind", e.outputKind.String(),
		"sampler", e.params.Label())
	return nil
}

func (e *Engine) fail(err error) error {
	e.state = StateFailed
	e.initErr = err
	e.metrics.recordFailed(e.name, "init")
	e.logger.Warn("Stream initialization failed",
		"component", e.name,
		"error", err)
	return err
}

// Err returns the initialization failure, if any
func (e *Engine) Err() error {
	return e.initErr
}

// OnRecord copies rec into a new output record, appends one sample and
// pushes the result downstream.
func (e *Engine) OnRecord(ctx context.Context, rec *record.Record) error {
	switch e.state {
	case StateInitialized:
	case StateUninitialized:
		return errors.WrapInvalid(errors.ErrNotInitialized, "Engine", "OnRecord", "state check")
	case StateClosed:
		return errors.WrapInvalid(errors.ErrStreamClosed, "Engine", "OnRecord", "state check")
	default:
		return errors.WrapFatal(errors.ErrStreamFailed, "Engine", "OnRecord", "state check")
	}
	if rec == nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "Engine", "OnRecord", "nil record")
	}

	start := time.Now()

	out := record.New(e.out)
	if err := e.copier.Copy(out, rec); err != nil {
		e.metrics.recordFailed(e.name, "copy")
		return errors.Wrap(err, "Engine", "OnRecord", "copy input fields")
	}

	v := e.sample()
	stored := e.slot.SetFromDouble(out, v)
	e.metrics.recordSample(e.name, v, e.outputKind.String(), stored)

	if err := e.downstream.Push(ctx, out); err != nil {
		e.metrics.recordFailed(e.name, "push")
		if classified(err) {
			return errors.Wrap(err, "Engine", "OnRecord", "downstream push")
		}
		return errors.WrapTransient(err, "Engine", "OnRecord", "downstream push")
	}

	e.metrics.recordProcessed(e.name, time.Since(start))
	return nil
}

// OnProgress forwards upstream progress with the flag set. Progress after
// close is dropped.
func (e *Engine) OnProgress(ctx context.Context, fraction float64) {
	if e.state == StateClosed {
		return
	}
	e.downstream.UpdateProgress(ctx, fraction, true)
}

// OnClose closes the downstream. Only the first call has any effect.
func (e *Engine) OnClose(ctx context.Context) error {
	if e.state == StateClosed {
		return nil
	}
	from := e.state
	e.state = StateClosed
	e.metrics.recordStreamClosed(e.name, from.String())

	if err := e.downstream.Close(ctx, true); err != nil {
		return errors.Wrap(err, "Engine", "OnClose", "downstream close")
	}
	return nil
}

func classified(err error) bool {
	return errors.IsTransient(err) || errors.IsInvalid(err) || errors.IsFatal(err)
}
