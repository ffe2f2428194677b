// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/noldarim/commandeer/internal/command"
	"github.com/noldarim/commandeer/internal/config"
	"github.com/noldarim/commandeer/internal/logger"
	"github.com/noldarim/commandeer/internal/protocol"
	"github.com/noldarim/commandeer/internal/queue"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName          = "github.com/noldarim/commandeer/internal/dispatch"
	defaultTickInterval = 16 * time.Millisecond
)

var (
	log     *zerolog.Logger
	logOnce sync.Once
)

func getLog() *zerolog.Logger {
	logOnce.Do(func() {
		l := logger.GetDispatchLogger()
		log = &l
	})
	return log
}

// inboxItem is either a submitted line or an exit marker.
type inboxItem struct {
	input protocol.RawInput
	exit  bool
}

// Report summarises a single tick.
type Report struct {
	Tick       uint64
	Lines      int // raw lines drained from the inbox
	Commands   int // lines that produced at least one token
	Dispatched int // parsed commands handed to handlers
	Responses  int
	Delivered  int // responses that reached at least one front end
}

// Engine owns the command registry, the per-type dispatchers and the
// response router, and runs the tick stages in order.
type Engine struct {
	registry *command.Registry
	router   *Router
	inbox    *queue.Unbounded[inboxItem]
	tracer   trace.Tracer
	interval time.Duration

	mu          sync.RWMutex
	dispatchers map[reflect.Type]dispatcher
	byName      map[string]dispatcher
	systems     map[Stage][]namedSystem

	outMu  sync.Mutex
	outbox []protocol.Response

	tickMu  sync.Mutex
	state   atomic.Int32
	exiting atomic.Bool
	ticks   atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry shares an existing registry instead of creating one.
func WithRegistry(r *command.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithTracerProvider traces ticks with tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) { e.tracer = tp.Tracer(tracerName) }
}

// WithRouter replaces the response router.
func WithRouter(r *Router) Option {
	return func(e *Engine) { e.router = r }
}

// New creates an engine with an empty registry.
func New(cfg config.EngineConfig, opts ...Option) *Engine {
	e := &Engine{
		inbox:       queue.New[inboxItem](),
		interval:    cfg.TickInterval,
		dispatchers: make(map[reflect.Type]dispatcher),
		byName:      make(map[string]dispatcher),
		systems:     make(map[Stage][]namedSystem),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = command.NewRegistry()
	}
	if e.router == nil {
		e.router = NewRouter()
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}
	if e.interval <= 0 {
		e.interval = defaultTickInterval
	}
	return e
}

// Registry returns the command registry.
func (e *Engine) Registry() *command.Registry { return e.registry }

// Router returns the response router.
func (e *Engine) Router() *Router { return e.router }

// Commands lists registered commands with their summaries, sorted by name.
func (e *Engine) Commands() []command.Summary { return e.registry.List() }

// Subscribe attaches a front end to the response router.
func (e *Engine) Subscribe(s Subscriber) (unsubscribe func()) {
	return e.router.Subscribe(s)
}

// SetPrompt asks every prompt-capable front end owning sender to show prompt.
func (e *Engine) SetPrompt(sender protocol.Sender, prompt string) int {
	return e.router.SetPrompt(sender, prompt)
}

// AddSystem runs fn once per tick during stage. Systems within a stage run
// in the order they were added.
func (e *Engine) AddSystem(stage Stage, name string, fn System) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.systems[stage] = append(e.systems[stage], namedSystem{name: name, run: fn})
}

// Submit queues a line from sender for the next tick. It never blocks and
// is safe to call from any goroutine. It reports false once the engine has
// stopped accepting input.
func (e *Engine) Submit(sender protocol.Sender, text string) bool {
	text = strings.TrimRight(text, "\r\n")
	if !e.inbox.Push(inboxItem{input: protocol.RawInput{Sender: sender, Text: text}}) {
		getLog().Warn().Str("sender", sender.String()).Msg("Engine no longer accepts input, line dropped")
		return false
	}
	return true
}

// Emit queues a response for the next Response stage. Handlers normally use
// their Context instead; Emit serves systems that answer outside a handler.
func (e *Engine) Emit(resp protocol.Response) {
	e.outMu.Lock()
	e.outbox = append(e.outbox, resp)
	e.outMu.Unlock()
}

// RequestExit queues an exit request behind every line already submitted.
// The engine exits after the tick that drains it.
func (e *Engine) RequestExit() {
	e.inbox.Push(inboxItem{exit: true})
}

// Exiting reports whether an exit request has been drained.
func (e *Engine) Exiting() bool { return e.exiting.Load() }

// State reports where the engine is within the current tick.
func (e *Engine) State() State { return State(e.state.Load()) }

func (e *Engine) setState(s State) { e.state.Store(int32(s)) }

// Run ticks every tick interval until ctx is done or an exit is requested.
func (e *Engine) Run(ctx context.Context) error {
	getLog().Info().
		Dur("tick_interval", e.interval).
		Int("commands", e.registry.Len()).
		Msg("Dispatch engine started")

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		if _, err := e.Tick(ctx); err != nil {
			getLog().Warn().Err(err).Msg("Tick skipped")
		}
		if e.Exiting() {
			getLog().Info().Uint64("ticks", e.ticks.Load()).Msg("Exit requested, dispatch engine stopping")
			e.closeInbox()
			return nil
		}

		select {
		case <-ctx.Done():
			getLog().Info().Err(ctx.Err()).Msg("Dispatch engine shutting down")
			e.closeInbox()
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// closeInbox stops accepting input. Lines that arrived after the final
// tick drained the inbox are reported as dropped and returned.
func (e *Engine) closeInbox() []protocol.RawInput {
	e.inbox.Close()

	var dropped []protocol.RawInput
	for _, item := range e.inbox.Drain() {
		if item.exit {
			continue
		}
		dropped = append(dropped, item.input)
		getLog().Warn().
			Str("sender", item.input.Sender.String()).
			Str("line", item.input.Text).
			Msg("Engine stopped before this line was processed, line dropped")
	}
	return dropped
}

// Tick runs every stage once. Ticks never overlap.
func (e *Engine) Tick(ctx context.Context) (Report, error) {
	if !e.tickMu.TryLock() {
		return Report{}, ErrTickInProgress
	}
	defer e.tickMu.Unlock()

	report := Report{Tick: e.ticks.Add(1)}

	ctx, span := e.tracer.Start(ctx, "dispatch.tick", trace.WithAttributes(
		attribute.Int64("dispatch.tick", int64(report.Tick)),
	))
	defer span.End()
	defer e.setState(StateIdle)

	// Input and Dispatch together form the dispatch phase.
	e.runStage(ctx, StageInput)

	e.setState(StateTokenizing)
	var inputs []protocol.TokenizedInput
	e.withStageSpan(ctx, "tokenize", func(context.Context) {
		inputs, report.Lines = e.tokenizeInbox()
	})
	report.Commands = len(inputs)

	e.setState(StateDispatching)
	var invocations []invocation
	e.withStageSpan(ctx, StageDispatch.String(), func(ctx context.Context) {
		invocations = e.dispatchAll(inputs)
		for _, resp := range synthesizeInvalid(inputs, e.registry) {
			e.Emit(resp)
		}
		e.runSystems(ctx, StageDispatch)
	})
	report.Dispatched = len(invocations)

	e.setState(StateAwaitingProcess)
	e.withStageSpan(ctx, StageProcess.String(), func(ctx context.Context) {
		for _, inv := range invocations {
			e.invoke(ctx, inv)
		}
		e.runSystems(ctx, StageProcess)
	})

	e.setState(StateResponding)
	e.withStageSpan(ctx, StageResponse.String(), func(ctx context.Context) {
		responses := e.takeOutbox()
		report.Responses = len(responses)
		report.Delivered = e.router.Route(responses)
		e.runSystems(ctx, StageResponse)
	})

	e.runStage(ctx, StagePostResponse)

	span.SetAttributes(
		attribute.Int("dispatch.lines", report.Lines),
		attribute.Int("dispatch.commands", report.Commands),
		attribute.Int("dispatch.responses", report.Responses),
	)
	if report.Lines > 0 || report.Responses > 0 {
		getLog().Debug().
			Uint64("tick", report.Tick).
			Int("lines", report.Lines).
			Int("dispatched", report.Dispatched).
			Int("responses", report.Responses).
			Int("delivered", report.Delivered).
			Msg("Tick complete")
	}
	return report, nil
}

func (e *Engine) runStage(ctx context.Context, stage Stage) {
	e.withStageSpan(ctx, stage.String(), func(ctx context.Context) {
		e.runSystems(ctx, stage)
	})
}

func (e *Engine) withStageSpan(ctx context.Context, name string, fn func(context.Context)) {
	ctx, span := e.tracer.Start(ctx, "dispatch.stage."+name)
	defer span.End()
	fn(ctx)
}

func (e *Engine) runSystems(ctx context.Context, stage Stage) {
	e.mu.RLock()
	systems := append([]namedSystem(nil), e.systems[stage]...)
	e.mu.RUnlock()

	for _, sys := range systems {
		e.runSystem(ctx, stage, sys)
	}
}

func (e *Engine) runSystem(ctx context.Context, stage Stage, sys namedSystem) {
	defer func() {
		if r := recover(); r != nil {
			getLog().Error().
				Err(ErrSystemPanic).
				Str("stage", stage.String()).
				Str("system", sys.name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Stage system panicked")
		}
	}()
	sys.run(ctx)
}

// tokenizeInbox drains the inbox in arrival order.
func (e *Engine) tokenizeInbox() ([]protocol.TokenizedInput, int) {
	items := e.inbox.Drain()
	lines := 0
	out := make([]protocol.TokenizedInput, 0, len(items))

	for _, item := range items {
		if item.exit {
			e.exiting.Store(true)
			continue
		}
		lines++

		tokens, err := command.Tokenize(item.input.Text)
		if err != nil {
			getLog().Debug().Err(err).
				Str("sender", item.input.Sender.String()).
				Str("line", item.input.Text).
				Msg("Dropping line that could not be tokenized")
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		out = append(out, protocol.TokenizedInput{
			Sender: item.input.Sender,
			Name:   tokens[0],
			Args:   tokens[1:],
		})
	}
	return out, lines
}

func (e *Engine) dispatchAll(inputs []protocol.TokenizedInput) []invocation {
	var out []invocation
	for _, in := range inputs {
		e.mu.RLock()
		d, ok := e.byName[in.Name]
		e.mu.RUnlock()
		if !ok {
			continue
		}

		inv, err := d.dispatch(in)
		if err != nil {
			getLog().Debug().Err(err).
				Str("command", in.Name).
				Str("sender", in.Sender.String()).
				Msg("Arguments rejected")
			e.Emit(protocol.Err(in.Sender, parseErrorMessage(err)))
			continue
		}
		out = append(out, inv)
	}
	return out
}

func parseErrorMessage(err error) protocol.Message {
	var perr *command.ParseError
	if errors.As(err, &perr) {
		return protocol.Lines(perr.Lines()...)
	}
	return protocol.Text(err.Error())
}

// invoke runs one handler. A panic becomes an Err response to the sender.
func (e *Engine) invoke(ctx context.Context, inv invocation) {
	defer func() {
		if r := recover(); r != nil {
			getLog().Error().
				Err(ErrHandlerPanic).
				Str("command", inv.commandName()).
				Str("sender", inv.sender().String()).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Command handler panicked")
			trace.SpanFromContext(ctx).SetStatus(codes.Error, fmt.Sprintf("%s: %v", inv.commandName(), r))
			e.Emit(protocol.Err(inv.sender(), protocol.Text("internal error while running "+inv.commandName())))
		}
	}()
	inv.invoke(ctx, e)
}

func (e *Engine) takeOutbox() []protocol.Response {
	e.outMu.Lock()
	defer e.outMu.Unlock()
	out := e.outbox
	e.outbox = nil
	return out
}
