package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/varia/internal/compiler"
	"github.com/aretw0/varia/internal/logging"
	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/dsl"
	"github.com/aretw0/varia/pkg/ports"
	"github.com/aretw0/varia/pkg/registry"
	"github.com/aretw0/varia/pkg/scheduler"
)

// Engine is the variant transition engine.
//
// Every mutation (registration, rule changes, event dispatch, timer expiry) runs under a
// single mutex, so rule ordering guarantees hold even when callers are concurrent.
// Side-effects, hooks and listen cascades run after the mutex is released.
type Engine struct {
	mu sync.Mutex

	nodes    *registry.Registry
	compiler *compiler.Compiler
	rules    []domain.Rule
	seq      int

	// timers holds afterDelay handles per owning node, keyed by rule Seq.
	timers map[string]map[int]ports.Timer
	// generation changes on every (re)registration so stale timers can detect it.
	generation map[string]uint64
	gen        uint64

	scheduler  ports.Scheduler
	dispatcher ports.ActionDispatcher
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	strict     bool
	now        func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithScheduler sets where listen cascades and afterDelay timers run.
func WithScheduler(s ports.Scheduler) EngineOption {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithDispatcher sets the receiver of side-effect requests.
func WithDispatcher(d ports.ActionDispatcher) EngineOption {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStrict makes rule registration fail on unknown triggers and actions.
func WithStrict(strict bool) EngineOption {
	return func(e *Engine) {
		e.strict = strict
	}
}

// NewEngine creates an engine. Without WithScheduler it starts an Async scheduler,
// which the caller is responsible for closing via Scheduler().
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		nodes:      registry.NewRegistry(),
		timers:     make(map[string]map[int]ports.Timer),
		generation: make(map[string]uint64),
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.scheduler == nil {
		e.scheduler = scheduler.NewAsync(scheduler.WithLogger(e.logger))
	}
	e.compiler = compiler.New(compiler.WithStrict(e.strict), compiler.WithLogger(e.logger))
	return e
}

// Scheduler returns the scheduler the engine posts deferred work to.
func (e *Engine) Scheduler() ports.Scheduler {
	return e.scheduler
}

// Register mounts a node. Re-registering an existing id replaces it (last registration wins):
// its overlay is dropped and its afterDelay timers restart.
func (e *Engine) Register(id, parentID, initialVariant string) error {
	if id == "" {
		return domain.ErrEmptyNodeID
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.nodes.Register(id, parentID, initialVariant) {
		e.logger.Warn("node re-registered, previous entry replaced", "node_id", id, "parent_id", parentID)
		e.cancelTimersLocked(id, nil)
	}
	e.gen++
	e.generation[id] = e.gen
	e.armTimersLocked(id, e.rules)
	e.logger.Debug("node registered", "node_id", id, "parent_id", parentID, "variant", initialVariant)
	return nil
}

// Unregister unmounts a node, dropping its rules and cancelling its pending timers.
// It reports whether the node was registered.
func (e *Engine) Unregister(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cancelTimersLocked(id, nil)
	delete(e.generation, id)

	kept := e.rules[:0]
	for _, r := range e.rules {
		if r.OwnerID != id {
			kept = append(kept, r)
		}
	}
	clear(e.rules[len(kept):])
	e.rules = kept

	existed := e.nodes.Unregister(id)
	e.logger.Debug("node unregistered", "node_id", id, "existed", existed)
	return existed
}

// RegisterRules compiles entries declared by nodeID and adds them to the active rule set.
// Rules may be registered before their node mounts; timers arm once both exist.
func (e *Engine) RegisterRules(nodeID string, entries []dsl.Entry) error {
	compiled, err := e.compiler.Compile(nodeID, entries)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	added := make([]domain.Rule, 0, len(compiled))
	for _, r := range compiled {
		e.seq++
		r.Seq = e.seq
		added = append(added, r)
	}
	e.rules = append(e.rules, added...)

	if e.nodes.Has(nodeID) {
		e.armTimersLocked(nodeID, added)
	}
	e.logger.Debug("rules registered", "node_id", nodeID, "count", len(added))
	return nil
}

// UnregisterRules removes the rules nodeID compiled from entries and cancels their timers.
// It returns the number of rules removed.
func (e *Engine) UnregisterRules(nodeID string, entries []dsl.Entry) int {
	origins := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		origins[entry.Signature()] = struct{}{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	removed := make(map[int]struct{})
	kept := e.rules[:0]
	for _, r := range e.rules {
		if _, ok := origins[r.Origin]; ok && r.OwnerID == nodeID {
			removed[r.Seq] = struct{}{}
			continue
		}
		kept = append(kept, r)
	}
	clear(e.rules[len(kept):])
	e.rules = kept

	e.cancelTimersLocked(nodeID, removed)
	e.logger.Debug("rules unregistered", "node_id", nodeID, "count", len(removed))
	return len(removed)
}

// Rules returns a copy of the rules declared by nodeID, in declaration order.
func (e *Engine) Rules(nodeID string) []domain.Rule {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []domain.Rule
	for _, r := range e.rules {
		if r.OwnerID == nodeID {
			out = append(out, r)
		}
	}
	return out
}

// snapshotRules copies the active rule set so it can be read without the lock.
func (e *Engine) snapshotRules() []domain.Rule {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// flush runs everything a batch produced that must happen outside the lock:
// hooks, side-effects (once each, after the mutation) and deferred listen emissions.
func (e *Engine) flush(ctx context.Context, b *batch) {
	for _, ev := range b.events {
		if ev.Outcome == domain.OutcomeApplied {
			if e.hooks.OnTransition != nil {
				e.hooks.OnTransition(ctx, ev)
			}
		} else if e.hooks.OnRejected != nil {
			e.hooks.OnRejected(ctx, ev)
		}
	}

	for _, req := range b.actions {
		var err error
		if e.dispatcher != nil {
			err = e.dispatcher.Dispatch(ctx, req)
			if err != nil {
				e.logger.Warn("action dispatch failed", "action", req.Type, "target_id", req.TargetID, "err", err)
			}
		} else {
			e.logger.Debug("no dispatcher configured, dropping action", "action", req.Type, "target_id", req.TargetID)
		}
		if e.hooks.OnAction != nil {
			e.hooks.OnAction(ctx, &domain.ActionEvent{Timestamp: e.now(), Request: req, Err: err})
		}
	}

	if len(b.cascades) == 0 {
		return
	}
	detached := context.WithoutCancel(ctx)
	for _, c := range b.cascades {
		e.scheduler.Defer(func() {
			e.Emit(detached, c.nodeID, domain.TriggerListen, domain.EventData{
				ListenID:      c.nodeID,
				ListenVariant: c.variant,
			})
		})
	}
}
