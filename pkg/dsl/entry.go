package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/varia/pkg/domain"
)

// Trigger keys accepted by the DSL, in canonical declaration order.
const (
	KeyHover      = "onHover"
	KeyClick      = "onClick"
	KeyMouseEnter = "mouseEnter"
	KeyMouseLeave = "mouseLeave"
	KeyMouseDown  = "mouseDown"
	KeyMouseUp    = "mouseUp"
	KeyFocus      = "onFocus"
	KeyBlur       = "onBlur"
	KeyAfterDelay = "afterDelay"
	KeyHotKey     = "hotKey"
	KeyKey        = "onKey"
	KeyListen     = "listen"
)

// Keys lists the trigger keys in the order entries decoded from a map are declared.
var Keys = []string{
	KeyHover, KeyClick, KeyMouseEnter, KeyMouseLeave, KeyMouseDown, KeyMouseUp,
	KeyFocus, KeyBlur, KeyAfterDelay, KeyHotKey, KeyKey, KeyListen,
}

// Kind discriminates the two forms an Entry can take.
type Kind int

const (
	// KindShorthand is a "target.path.variant" or bare "variant" string.
	KindShorthand Kind = iota
	// KindObject is an explicit ActionSpec.
	KindObject
)

// Entry is one DSL declaration: a trigger key valued by either a shorthand path or an ActionSpec.
// Build entries with Shorthand or Object; the zero value is not a valid entry.
type Entry struct {
	Trigger string
	Kind    Kind
	Path    string
	Spec    ActionSpec
}

// ActionSpec is the explicit object form of a DSL entry.
type ActionSpec struct {
	ToVariant   string
	FromVariant string
	TargetID    string

	Duration domain.Timing
	Delay    domain.Timing
	Curve    domain.Timing

	// ToggleVariant entries are shorthand paths; their variant names form the cycle.
	ToggleVariant []string

	ScrollTo       string
	ScrollBehavior string
	Key            string
	URL            string
	OverlayID      string
	Action         string

	ListenID      string
	ListenVariant string

	// Global drops the source constraint: the rule reacts to the trigger from any node.
	Global bool

	// Unknown lists decoded field names that are not part of the object form.
	Unknown []string
}

// Shorthand builds an entry valued by a path string.
func Shorthand(trigger, path string) Entry {
	return Entry{Trigger: trigger, Kind: KindShorthand, Path: path}
}

// Object builds an entry valued by an explicit spec.
func Object(trigger string, spec ActionSpec) Entry {
	return Entry{Trigger: trigger, Kind: KindObject, Spec: spec}
}

// Signature identifies the entry for later removal. Equal entries have equal signatures.
// Resolver timings are identified by function pointer.
func (e Entry) Signature() string {
	if e.Kind == KindShorthand {
		return e.Trigger + "=" + e.Path
	}
	s := e.Spec
	var sb strings.Builder
	sb.WriteString(e.Trigger)
	sb.WriteString("={")
	fmt.Fprintf(&sb, "to:%s|from:%s|target:%s|", s.ToVariant, s.FromVariant, s.TargetID)
	fmt.Fprintf(&sb, "duration:%s|delay:%s|curve:%s|", timingSignature(s.Duration), timingSignature(s.Delay), timingSignature(s.Curve))
	fmt.Fprintf(&sb, "toggle:%s|", strings.Join(s.ToggleVariant, ","))
	fmt.Fprintf(&sb, "scroll:%s/%s|key:%s|url:%s|overlay:%s|action:%s|", s.ScrollTo, s.ScrollBehavior, s.Key, s.URL, s.OverlayID, s.Action)
	fmt.Fprintf(&sb, "listen:%s/%s|global:%t}", s.ListenID, s.ListenVariant, s.Global)
	return sb.String()
}

func timingSignature(t domain.Timing) string {
	return t.Identity()
}
