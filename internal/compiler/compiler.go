package compiler

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/varia/internal/logging"
	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/dsl"
)

// triggerKeys maps DSL keys to the trigger they compile to. onHover is handled separately.
var triggerKeys = map[string]domain.Trigger{
	dsl.KeyClick:      domain.TriggerClick,
	dsl.KeyMouseEnter: domain.TriggerMouseEnter,
	dsl.KeyMouseLeave: domain.TriggerMouseLeave,
	dsl.KeyMouseDown:  domain.TriggerMouseDown,
	dsl.KeyMouseUp:    domain.TriggerMouseUp,
	dsl.KeyFocus:      domain.TriggerFocus,
	dsl.KeyBlur:       domain.TriggerBlur,
	dsl.KeyAfterDelay: domain.TriggerAfterDelay,
	dsl.KeyHotKey:     domain.TriggerHotKey,
	dsl.KeyKey:        domain.TriggerKey,
	dsl.KeyListen:     domain.TriggerListen,
}

// UnknownKeyError is returned in strict mode when an entry names an unknown trigger, field or action.
type UnknownKeyError struct {
	NodeID string
	Key    string
	Err    error
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("node %s: %v: %q", e.NodeID, e.Err, e.Key)
}

func (e *UnknownKeyError) Unwrap() error {
	return e.Err
}

// Compiler turns DSL entries into normalized rules.
type Compiler struct {
	strict bool
	logger *slog.Logger
}

// Option configures the Compiler.
type Option func(*Compiler)

// WithStrict makes unknown trigger keys, fields and actions fail compilation instead of being ignored.
func WithStrict(strict bool) Option {
	return func(c *Compiler) {
		c.strict = strict
	}
}

// WithLogger configures the logger used for ignored entries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// New creates a compiler. By default unknown keys are logged and skipped.
func New(opts ...Option) *Compiler {
	c := &Compiler{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile converts the entries declared by nodeID into rules, in declaration order.
// It has no side effects besides logging.
func (c *Compiler) Compile(nodeID string, entries []dsl.Entry) ([]domain.Rule, error) {
	if nodeID == "" {
		return nil, domain.ErrEmptyNodeID
	}

	var rules []domain.Rule
	for _, entry := range entries {
		compiled, err := c.compileEntry(nodeID, entry)
		if err != nil {
			return nil, err
		}
		rules = append(rules, compiled...)
	}
	return rules, nil
}

func (c *Compiler) compileEntry(nodeID string, entry dsl.Entry) ([]domain.Rule, error) {
	if entry.Trigger == dsl.KeyHover {
		base, err := c.baseRule(nodeID, domain.TriggerMouseEnter, entry)
		if err != nil {
			return nil, err
		}
		rules := []domain.Rule{base}
		if base.FromVariant != "" {
			leave := base
			leave.Trigger = domain.TriggerMouseLeave
			leave.ToVariant, leave.FromVariant = base.FromVariant, base.ToVariant
			rules = append(rules, leave)
		}
		return rules, nil
	}

	trigger, ok := triggerKeys[entry.Trigger]
	if !ok {
		if c.strict {
			return nil, &UnknownKeyError{NodeID: nodeID, Key: entry.Trigger, Err: domain.ErrUnknownTrigger}
		}
		c.logger.Warn("ignoring unknown trigger", "node_id", nodeID, "trigger", entry.Trigger)
		return nil, nil
	}

	rule, err := c.baseRule(nodeID, trigger, entry)
	if err != nil {
		return nil, err
	}
	return []domain.Rule{rule}, nil
}

func (c *Compiler) baseRule(nodeID string, trigger domain.Trigger, entry dsl.Entry) (domain.Rule, error) {
	rule := domain.Rule{
		Trigger:  trigger,
		OwnerID:  nodeID,
		SourceID: nodeID,
		Origin:   entry.Signature(),
	}

	if entry.Kind == dsl.KindShorthand {
		target, variant := dsl.ParsePath(entry.Path)
		if trigger == domain.TriggerListen {
			// "controller.active": react to controller committing active by becoming active.
			rule.ListenID, rule.ListenVariant = target, variant
			rule.ToVariant = variant
		} else {
			rule.TargetSpec, rule.ToVariant = target, variant
		}
		rule.Action = domain.ActionChangeTo
		return rule, nil
	}

	spec := entry.Spec
	for _, field := range spec.Unknown {
		if c.strict {
			return domain.Rule{}, &UnknownKeyError{NodeID: nodeID, Key: field, Err: domain.ErrUnknownField}
		}
		c.logger.Warn("ignoring unknown field", "node_id", nodeID, "trigger", entry.Trigger, "field", field)
	}
	rule.TargetSpec = spec.TargetID
	if spec.ToVariant != "" {
		target, variant := dsl.ParsePath(spec.ToVariant)
		rule.ToVariant = variant
		if rule.TargetSpec == "" {
			rule.TargetSpec = target
		}
	}
	if spec.FromVariant != "" {
		_, rule.FromVariant = dsl.ParsePath(spec.FromVariant)
	}
	for _, path := range spec.ToggleVariant {
		target, variant := dsl.ParsePath(path)
		if rule.TargetSpec == "" {
			rule.TargetSpec = target
		}
		rule.ToggleVariants = append(rule.ToggleVariants, variant)
	}
	rule.Toggle = len(rule.ToggleVariants) > 0

	rule.Duration, rule.Delay, rule.Curve = spec.Duration, spec.Delay, spec.Curve
	rule.URL = spec.URL
	rule.OverlayID = spec.OverlayID
	rule.ScrollTargetID = spec.ScrollTo
	rule.ScrollBehavior = spec.ScrollBehavior
	rule.Key = spec.Key
	rule.ListenID, rule.ListenVariant = spec.ListenID, spec.ListenVariant
	if spec.Global {
		rule.SourceID = ""
	}

	action, err := c.action(nodeID, spec)
	if err != nil {
		return domain.Rule{}, err
	}
	rule.Action = action
	return rule, nil
}

// action returns the explicit action when valid, otherwise infers it from the present fields.
func (c *Compiler) action(nodeID string, spec dsl.ActionSpec) (domain.Action, error) {
	if spec.Action != "" {
		explicit := domain.Action(spec.Action)
		if domain.KnownAction(explicit) {
			return explicit, nil
		}
		if c.strict {
			return "", &UnknownKeyError{NodeID: nodeID, Key: spec.Action, Err: domain.ErrUnknownAction}
		}
		c.logger.Warn("ignoring unknown action", "node_id", nodeID, "action", spec.Action)
	}

	switch {
	case spec.URL != "":
		return domain.ActionOpenLink, nil
	case spec.ScrollTo != "":
		return domain.ActionScrollTo, nil
	case spec.OverlayID != "":
		return domain.ActionOpenOverlay, nil
	}
	return domain.ActionChangeTo, nil
}
