package runtime

import (
	"strings"

	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/registry"
)

// Resolve locates the node a dotted address path denotes.
//
// The first segment is looked up globally. Each following segment must be registered
// and must be a direct child of the node matched by the previous one. The emitting
// node does not constrain the walk; it is accepted so callers can pass it along.
func (e *Engine) Resolve(spec, _ string) (string, bool) {
	return resolvePath(e.nodes, spec)
}

func resolvePath(nodes *registry.Registry, spec string) (string, bool) {
	if spec == "" {
		return "", false
	}
	segments := strings.Split(spec, ".")
	prev := segments[0]
	if prev == "" || !nodes.Has(prev) {
		return "", false
	}
	for _, seg := range segments[1:] {
		n, ok := nodes.Get(seg)
		if !ok || n.ParentID != prev {
			return "", false
		}
		prev = seg
	}
	return prev, true
}

// defaultTarget is where a rule without a target path applies.
// Listen rules and rules fired without an emitter (hot keys, timers) apply to their owner.
func defaultTarget(rule domain.Rule, sourceID string) string {
	if rule.Trigger == domain.TriggerListen || sourceID == "" {
		return rule.OwnerID
	}
	return sourceID
}

// targetFor resolves the node a rule applies to when fired by sourceID.
func (e *Engine) targetFor(rule domain.Rule, sourceID string) (string, bool) {
	if rule.TargetSpec == "" {
		return defaultTarget(rule, sourceID), true
	}
	return resolvePath(e.nodes, rule.TargetSpec)
}
