package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/varia"
	"github.com/aretw0/varia/internal/logging"
	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/ports"
	"github.com/aretw0/varia/pkg/scheduler"
)

// Failure is an unmet expectation.
type Failure struct {
	Step    int
	Node    string
	Field   string
	Want    string
	Got     string
	Elapsed time.Duration
}

func (f Failure) String() string {
	return fmt.Sprintf("step %d (t=%s): %s %s = %q, want %q", f.Step, f.Elapsed, f.Node, f.Field, f.Got, f.Want)
}

// Report is the outcome of a replay. The engine is left open for inspection.
type Report struct {
	Name     string
	Engine   *varia.Engine
	Elapsed  time.Duration
	Initial  map[string]string
	Actions  []domain.ActionRequest
	Failures []Failure
	// LastSource is the node that raised the last emitted event.
	LastSource string
}

// Passed reports whether every expectation held.
func (r *Report) Passed() bool {
	return len(r.Failures) == 0
}

// Changed lists the nodes whose logical variant differs from the one they were registered with.
func (r *Report) Changed() []string {
	var ids []string
	for _, snap := range r.Engine.Inspect() {
		if initial, ok := r.Initial[snap.Node.ID]; ok && initial != snap.Node.LogicalVariant {
			ids = append(ids, snap.Node.ID)
		}
	}
	return ids
}

// Runner replays scenarios.
type Runner struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the Runner.
type Option func(*Runner)

// WithLogger sets the logger handed to the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithLifecycleHooks forwards observability hooks to the engine.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runner) {
		r.hooks = hooks
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run replays sc on a fresh engine driven by a manual scheduler, so results do not depend on
// wall-clock time. Deferred cascades are drained after every step.
// The returned error covers structural problems (bad DSL, unknown triggers); unmet expectations
// are reported in Report.Failures.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	clock := scheduler.NewManual()
	report := &Report{Name: sc.Name, Initial: make(map[string]string)}

	var mu sync.Mutex
	record := ports.DispatcherFunc(func(_ context.Context, req domain.ActionRequest) error {
		mu.Lock()
		defer mu.Unlock()
		report.Actions = append(report.Actions, req)
		return nil
	})

	report.Engine = varia.New(
		varia.WithScheduler(clock),
		varia.WithDispatcher(record),
		varia.WithLifecycleHooks(r.hooks),
		varia.WithLogger(r.logger),
		varia.WithStrict(sc.Strict),
		varia.WithName(sc.Name),
	)
	eng := report.Engine

	for _, n := range sc.Nodes {
		if err := r.register(eng, report, n); err != nil {
			return nil, err
		}
	}
	clock.Drain()

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		r.logger.Debug("scenario step", "step", i, "kind", step.Kind(), "t", clock.Now())

		switch step.Kind() {
		case "emit":
			trigger := domain.Trigger(step.Emit.Trigger)
			if !trigger.Valid() {
				return nil, fmt.Errorf("steps[%d]: %w: %q", i, domain.ErrUnknownTrigger, step.Emit.Trigger)
			}
			eng.Emit(ctx, step.Emit.Node, trigger, domain.EventData{Key: step.Emit.Key})
			report.LastSource = step.Emit.Node
		case "key":
			eng.PressKey(ctx, step.Key)
		case "wait":
			d, _ := time.ParseDuration(step.Wait)
			clock.Advance(d)
		case "register":
			if err := r.register(eng, report, *step.Register); err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
		case "unregister":
			eng.Unregister(step.Unregister)
		case "expect":
			report.Failures = append(report.Failures, check(eng, i, clock.Now(), *step.Expect)...)
		}
		clock.Drain()
	}

	report.Elapsed = clock.Now()
	return report, nil
}

func (r *Runner) register(eng *varia.Engine, report *Report, n NodeSpec) error {
	if err := eng.Register(n.ID, n.Parent, n.Variant); err != nil {
		return fmt.Errorf("node %q: %w", n.ID, err)
	}
	report.Initial[n.ID] = n.Variant
	if len(n.Rules) == 0 {
		return nil
	}
	return eng.RegisterConfig(n.ID, n.Rules)
}

func check(eng *varia.Engine, step int, now time.Duration, exp Expect) []Failure {
	fail := func(field, want, got string) Failure {
		return Failure{Step: step, Node: exp.Node, Field: field, Want: want, Got: got, Elapsed: now}
	}

	node, ok := eng.Node(exp.Node)
	if exp.Absent {
		if ok {
			return []Failure{fail("registered", "false", "true")}
		}
		return nil
	}
	if !ok {
		return []Failure{fail("registered", "true", "false")}
	}

	var failures []Failure
	if exp.Variant != "" && node.LogicalVariant != exp.Variant {
		failures = append(failures, fail("variant", exp.Variant, node.LogicalVariant))
	}
	if exp.Visual != "" && node.Effective() != exp.Visual {
		failures = append(failures, fail("visual", exp.Visual, node.Effective()))
	}
	if exp.Duration != "" {
		props, _ := eng.AnimationProps(exp.Node)
		if props.Duration != exp.Duration {
			failures = append(failures, fail("duration", exp.Duration, props.Duration))
		}
	}
	return failures
}
