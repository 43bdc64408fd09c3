package varia

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/varia/internal/logging"
	"github.com/aretw0/varia/internal/runtime"
	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/dsl"
	"github.com/aretw0/varia/pkg/ports"
	"github.com/aretw0/varia/pkg/scheduler"
)

// Engine is the high-level entry point for the Varia library.
// It wraps the internal runtime and owns the scheduler unless one is injected.
type Engine struct {
	runtime    *runtime.Engine
	scheduler  ports.Scheduler
	owned      *scheduler.Async
	dispatcher ports.ActionDispatcher
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	strict     bool
	Name       string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithScheduler injects the scheduler deferred work runs on.
// The caller keeps ownership: Close will not stop it.
func WithScheduler(s ports.Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithDispatcher sets the receiver of side-effect requests (links, overlays, scrolling, back navigation).
func WithDispatcher(d ports.ActionDispatcher) Option {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithStrict makes rule registration fail on unknown trigger keys and actions
// instead of logging and skipping them.
func WithStrict(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithName labels the engine; the name is attached to every log line.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New initializes a new Varia Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("engine", eng.Name)
	}
	if eng.scheduler == nil {
		eng.owned = scheduler.NewAsync(scheduler.WithLogger(eng.logger))
		eng.scheduler = eng.owned
	}

	eng.runtime = runtime.NewEngine(
		runtime.WithScheduler(eng.scheduler),
		runtime.WithDispatcher(eng.dispatcher),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithStrict(eng.strict),
	)
	return eng
}

// Register mounts a node under parentID ("" for a root) with its initial variant.
func (e *Engine) Register(id, parentID, initialVariant string) error {
	return e.runtime.Register(id, parentID, initialVariant)
}

// Unregister unmounts a node, dropping its rules and pending timers.
func (e *Engine) Unregister(id string) bool {
	return e.runtime.Unregister(id)
}

// RegisterRules attaches DSL entries declared by nodeID.
func (e *Engine) RegisterRules(nodeID string, entries []dsl.Entry) error {
	return e.runtime.RegisterRules(nodeID, entries)
}

// UnregisterRules detaches entries previously attached with RegisterRules.
func (e *Engine) UnregisterRules(nodeID string, entries []dsl.Entry) int {
	return e.runtime.UnregisterRules(nodeID, entries)
}

// RegisterConfig decodes a loosely typed DSL record (as read from JSON or YAML) and attaches it.
func (e *Engine) RegisterConfig(nodeID string, raw map[string]any) error {
	entries, err := dsl.Decode(raw)
	if err != nil {
		return fmt.Errorf("node %q: %w", nodeID, err)
	}
	return e.runtime.RegisterRules(nodeID, entries)
}

// Emit delivers a trigger event raised by sourceID.
func (e *Engine) Emit(ctx context.Context, sourceID string, trigger domain.Trigger, data domain.EventData) []domain.Result {
	return e.runtime.Emit(ctx, sourceID, trigger, data)
}

// PressKey delivers a key press on the global hot-key channel.
func (e *Engine) PressKey(ctx context.Context, key string) []domain.Result {
	return e.runtime.PressKey(ctx, key)
}

// Variant returns the logical variant of id.
func (e *Engine) Variant(id string) string {
	return e.runtime.Variant(id)
}

// VisualVariant returns the variant to paint for id.
func (e *Engine) VisualVariant(id string) string {
	return e.runtime.VisualVariant(id)
}

// AnimationProps returns the timing the renderer should apply to id, if any rule declares one.
func (e *Engine) AnimationProps(id string) (domain.AnimationProps, bool) {
	return e.runtime.AnimationProps(id)
}

// Node returns a copy of a registered node.
func (e *Engine) Node(id string) (domain.Node, bool) {
	return e.runtime.Node(id)
}

// Inspect returns every registered node with its rules, for visualization or introspection tools.
func (e *Engine) Inspect() []domain.NodeSnapshot {
	return e.runtime.Inspect()
}

// Scheduler returns the scheduler deferred work runs on.
func (e *Engine) Scheduler() ports.Scheduler {
	return e.scheduler
}

// Settle blocks until queued listen cascades have run. Armed timers are not awaited.
// It is a no-op for schedulers that are driven by the caller.
func (e *Engine) Settle(ctx context.Context) error {
	if s, ok := e.scheduler.(interface{ Settle(context.Context) error }); ok {
		return s.Settle(ctx)
	}
	return nil
}

// Close stops the scheduler the engine created. Injected schedulers are left running.
func (e *Engine) Close() error {
	if e.owned == nil {
		return nil
	}
	return e.owned.Close()
}
