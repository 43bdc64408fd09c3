package domain

import (
	"context"
	"time"
)

// EventData carries the optional payload of a trigger event.
type EventData struct {
	// Key is the pressed key for key and hotKey triggers.
	Key string `json:"key,omitempty"`

	// ListenID and ListenVariant identify the committed change a listen emission reports.
	ListenID      string `json:"listen_id,omitempty"`
	ListenVariant string `json:"listen_variant,omitempty"`
}

// Outcome explains why a rule application did or did not change state.
type Outcome string

const (
	OutcomeApplied    Outcome = "applied"
	OutcomeUnresolved Outcome = "unresolved_target"
	OutcomeGuard      Outcome = "guard_mismatch"
	OutcomeNoVariant  Outcome = "no_variant"
	OutcomeNoChange   Outcome = "no_change"
	OutcomeKeyFilter  Outcome = "key_mismatch"
)

// Result is the outcome of one attempted rule application.
type Result struct {
	RuleSeq  int     `json:"rule_seq"`
	Trigger  Trigger `json:"trigger"`
	SourceID string  `json:"source_id"`
	TargetID string  `json:"target_id,omitempty"`
	Applied  bool    `json:"applied"`

	// Committed is true when the logical variant changed (commit-class only).
	Committed bool    `json:"committed,omitempty"`
	Variant   string  `json:"variant,omitempty"`
	Outcome   Outcome `json:"outcome"`
}

// TransitionEvent describes an attempted rule application for observability hooks.
type TransitionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Trigger   Trigger   `json:"trigger"`
	SourceID  string    `json:"source_id"`
	TargetID  string    `json:"target_id,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Visual    bool      `json:"visual,omitempty"`
	Outcome   Outcome   `json:"outcome"`

	// Duration is the rule's normalized duration in milliseconds, if it declared one.
	Duration    float64 `json:"duration_ms,omitempty"`
	HasDuration bool    `json:"-"`
}

// ActionEvent describes a dispatched side-effect.
type ActionEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Request   ActionRequest `json:"request"`
	Err       error         `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run outside the engine lock and may call back into the engine.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnRejected   func(context.Context, *TransitionEvent)
	OnAction     func(context.Context, *ActionEvent)
}
