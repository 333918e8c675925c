package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/gcalendar-mcp/internal/instrumentation"
	"github.com/teemow/gcalendar-mcp/internal/logging"
	"github.com/teemow/gcalendar-mcp/internal/toolerr"
)

// DefaultCallTimeout bounds a single tool call when no timeout is configured.
const DefaultCallTimeout = 30 * time.Second

// unknownToolLabel replaces unregistered names in metric labels.
const unknownToolLabel = "unknown"

// Operation performs one tool's work. args is always the tool's own record type.
type Operation func(ctx context.Context, args Arguments) (any, error)

// Bind adapts a function over a concrete argument record to an Operation.
func Bind[A Arguments](fn func(ctx context.Context, args A) (any, error)) Operation {
	return func(ctx context.Context, args Arguments) (any, error) {
		typed, ok := args.(A)
		if !ok {
			return nil, toolerr.Newf(toolerr.Internal, "unexpected argument record %T", args)
		}
		return fn(ctx, typed)
	}
}

// Request is one tool call: a tool name and its raw JSON arguments. A nil
// Arguments map means the caller sent none.
type Request struct {
	Name      string
	Arguments map[string]any
}

// Dispatcher routes tool calls to their operations and turns every outcome
// into an Envelope.
type Dispatcher struct {
	registry *Registry
	ops      map[string]Operation
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *instrumentation.Metrics
	newID    func() string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithCallTimeout sets the per-call deadline. Non-positive values are ignored.
func WithCallTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithLogger sets the dispatch logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics enables tool metrics.
func WithMetrics(m *instrumentation.Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// WithRequestIDFunc replaces the request id generator.
func WithRequestIDFunc(fn func() string) DispatcherOption {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newID = fn
		}
	}
}

// NewDispatcher binds every registered tool to its operation. Each registry
// entry needs exactly one operation and no operation may be unregistered.
func NewDispatcher(registry *Registry, ops map[string]Operation, opts ...DispatcherOption) (*Dispatcher, error) {
	if registry == nil {
		return nil, errors.New("registry is required")
	}
	for _, name := range registry.Names() {
		if ops[name] == nil {
			return nil, fmt.Errorf("no operation bound to tool %s", name)
		}
	}
	for name := range ops {
		if _, ok := registry.Lookup(name); !ok {
			return nil, fmt.Errorf("operation %s is not a registered tool", name)
		}
	}

	bound := make(map[string]Operation, len(ops))
	for name, op := range ops {
		bound[name] = op
	}

	d := &Dispatcher{
		registry: registry,
		ops:      bound,
		timeout:  DefaultCallTimeout,
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Registry returns the registry the dispatcher serves.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs one tool call. It never panics and never returns an error;
// every failure is reported as an error envelope.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Envelope {
	start := time.Now()
	requestID := d.newID()
	ctx = WithRequestID(ctx, requestID)
	logger := logging.WithRequestID(logging.WithTool(d.logger, req.Name), requestID)

	def, ok := d.registry.Lookup(req.Name)
	if !ok {
		logger.Warn("Unknown tool requested", logging.Status(logging.StatusUnknownTool))
		d.metrics.RecordToolInvocation(ctx, unknownToolLabel, instrumentation.StatusUnknownTool, time.Since(start))
		return UnknownTool(req.Name)
	}

	ctx, span := instrumentation.StartToolSpan(ctx, def.Name,
		instrumentation.NewSpanAttributeBuilder().
			WithRequestID(requestID).
			WithReadOnly(def.ReadOnly).
			Build()...)
	defer span.End()
	logger = logging.WithTraceID(logger, instrumentation.GetTraceID(ctx))

	logger.Debug("Dispatching tool call", slog.Int("argument_count", len(req.Arguments)))

	env, err := d.run(ctx, def, req.Arguments, logger)
	duration := time.Since(start)

	if err != nil {
		kind := toolerr.KindOf(err)
		level := slog.LevelError
		if kind == toolerr.MissingArguments || kind == toolerr.InvalidArguments {
			level = slog.LevelWarn
		}
		logger.LogAttrs(ctx, level, "Tool call failed",
			logging.Status(logging.StatusError),
			logging.ErrorKind(kind),
			logging.Duration(duration),
			logging.Err(err))
		instrumentation.SetSpanErrorKind(span, kind.String(), err)
		d.metrics.RecordToolInvocation(ctx, def.Name, instrumentation.StatusError, duration)
		d.metrics.RecordToolError(ctx, def.Name, kind.String())
		return Failure(err)
	}

	logger.Info("Tool call completed",
		logging.Status(logging.StatusSuccess),
		logging.Duration(duration))
	instrumentation.SetSpanSuccess(span)
	d.metrics.RecordToolInvocation(ctx, def.Name, instrumentation.StatusSuccess, duration)
	return env
}

func (d *Dispatcher) run(ctx context.Context, def Definition, raw map[string]any, logger *slog.Logger) (Envelope, error) {
	if raw == nil && len(def.Schema.Required) > 0 {
		return Envelope{}, toolerr.New(toolerr.MissingArguments, "No arguments provided")
	}

	args, err := Decode(def, raw)
	if err != nil {
		return Envelope{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result, err := d.invoke(ctx, d.ops[def.Name], args, logger)
	if err != nil {
		return Envelope{}, err
	}
	return success(result)
}

type outcome struct {
	value any
	err   error
}

// invoke runs op on its own goroutine so a call that ignores its context
// still returns at the deadline.
func (d *Dispatcher) invoke(ctx context.Context, op Operation, args Arguments, logger *slog.Logger) (any, error) {
	done := make(chan outcome, 1)
	go func() {
		var out outcome
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Operation panicked",
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())))
				out = outcome{err: toolerr.Recovered(r)}
			}
			done <- out
		}()
		out.value, out.err = op(ctx, args)
	}()

	select {
	case out := <-done:
		return out.value, out.err
	case <-ctx.Done():
		return nil, interrupted(ctx.Err())
	}
}

func interrupted(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return toolerr.Wrap(toolerr.UpstreamFailure, "tool call did not complete before its deadline", err)
	}
	return toolerr.Wrap(toolerr.Internal, "tool call cancelled", err)
}
