package domain

// Trigger identifies the kind of event a rule reacts to.
type Trigger string

const (
	TriggerClick      Trigger = "click"
	TriggerMouseEnter Trigger = "mouseEnter"
	TriggerMouseLeave Trigger = "mouseLeave"
	TriggerMouseDown  Trigger = "mouseDown"
	TriggerMouseUp    Trigger = "mouseUp"
	TriggerFocus      Trigger = "focus"
	TriggerBlur       Trigger = "blur"
	TriggerKey        Trigger = "key"
	TriggerHotKey     Trigger = "hotKey"
	TriggerAfterDelay Trigger = "afterDelay"
	TriggerListen     Trigger = "listen"

	// TriggerGrab is accepted by the dispatcher as an alias of TriggerMouseDown.
	// No rule is ever compiled with it.
	TriggerGrab Trigger = "grab"
)

// Triggers lists the closed set of triggers a rule can carry.
var Triggers = []Trigger{
	TriggerClick, TriggerMouseEnter, TriggerMouseLeave, TriggerMouseDown, TriggerMouseUp,
	TriggerFocus, TriggerBlur, TriggerKey, TriggerHotKey, TriggerAfterDelay, TriggerListen,
}

// Normalize resolves trigger aliases.
func (t Trigger) Normalize() Trigger {
	if t == TriggerGrab {
		return TriggerMouseDown
	}
	return t
}

// IsHover reports whether the trigger only touches the visual overlay.
func (t Trigger) IsHover() bool {
	return t == TriggerMouseEnter || t == TriggerMouseLeave
}

// Valid reports whether t (after alias resolution) belongs to the closed trigger set.
func (t Trigger) Valid() bool {
	n := t.Normalize()
	for _, known := range Triggers {
		if n == known {
			return true
		}
	}
	return false
}

// Action names the side-effect a rule performs once applied.
type Action string

const (
	ActionChangeTo     Action = "changeTo"
	ActionNone         Action = "none"
	ActionGoBack       Action = "goBack"
	ActionScrollTo     Action = "scrollTo"
	ActionOpenLink     Action = "openLink"
	ActionOpenOverlay  Action = "openOverlay"
	ActionCloseOverlay Action = "closeOverlay"
)

// KnownAction reports whether a is one of the supported actions.
func KnownAction(a Action) bool {
	switch a {
	case ActionChangeTo, ActionNone, ActionGoBack, ActionScrollTo,
		ActionOpenLink, ActionOpenOverlay, ActionCloseOverlay:
		return true
	}
	return false
}

// HasSideEffect reports whether the action requires the host to do something beyond a variant change.
func (a Action) HasSideEffect() bool {
	return a != "" && a != ActionChangeTo && a != ActionNone
}

// Rule is a compiled, immutable transition.
type Rule struct {
	// Seq is the declaration order within an engine; assigned when the rule is registered.
	Seq int `json:"seq"`

	Trigger Trigger `json:"trigger"`

	// OwnerID is the node that declared the rule. Rules are dropped with their owner.
	OwnerID string `json:"owner_id"`

	// SourceID constrains which emitting node the rule reacts to. Empty means global.
	SourceID string `json:"source_id,omitempty"`

	// TargetSpec is a dotted address path. Empty means the default target.
	TargetSpec string `json:"target,omitempty"`

	ToVariant   string `json:"to_variant,omitempty"`
	FromVariant string `json:"from_variant,omitempty"`

	Toggle         bool     `json:"toggle,omitempty"`
	ToggleVariants []string `json:"toggle_variants,omitempty"`

	Duration Timing `json:"duration,omitzero"`
	Delay    Timing `json:"delay,omitzero"`
	Curve    Timing `json:"curve,omitzero"`

	Action         Action `json:"action,omitempty"`
	URL            string `json:"url,omitempty"`
	OverlayID      string `json:"overlay_id,omitempty"`
	ScrollTargetID string `json:"scroll_target_id,omitempty"`
	ScrollBehavior string `json:"scroll_behavior,omitempty"`
	Key            string `json:"key,omitempty"`

	// ListenID and ListenVariant select which committed change a listen rule reacts to.
	// An empty ListenVariant matches any variant of ListenID.
	ListenID      string `json:"listen_id,omitempty"`
	ListenVariant string `json:"listen_variant,omitempty"`

	// Origin is the signature of the DSL entry the rule was compiled from.
	Origin string `json:"-"`
}

// IsExplicit reports whether the rule names its destination variant directly.
func (r Rule) IsExplicit() bool {
	return r.ToVariant != "" && !r.Toggle
}

// IsActionOnly reports whether the rule changes no variant and exists only for its side-effect.
func (r Rule) IsActionOnly() bool {
	return r.ToVariant == "" && !r.Toggle && r.Action.HasSideEffect()
}

// HasTiming reports whether the rule carries any renderer timing metadata.
func (r Rule) HasTiming() bool {
	return !r.Duration.IsZero() || !r.Delay.IsZero() || !r.Curve.IsZero()
}

// NextToggle advances through ToggleVariants from current.
// A current value absent from the list restarts the cycle at index 0.
func (r Rule) NextToggle(current string) string {
	if len(r.ToggleVariants) == 0 {
		return ""
	}
	for i, v := range r.ToggleVariants {
		if v == current {
			return r.ToggleVariants[(i+1)%len(r.ToggleVariants)]
		}
	}
	return r.ToggleVariants[0]
}
