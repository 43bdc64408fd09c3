package runtime

import (
	"github.com/aretw0/varia/pkg/domain"
)

// Variant returns the logical variant of id, or "" if it is not registered.
func (e *Engine) Variant(id string) string {
	return e.nodes.LogicalVariant(id)
}

// VisualVariant returns the variant to paint for id: the overlay if one is set, the logical variant otherwise.
func (e *Engine) VisualVariant(id string) string {
	return e.nodes.VisualVariant(id)
}

// Node returns a copy of the registered node.
func (e *Engine) Node(id string) (domain.Node, bool) {
	return e.nodes.Get(id)
}

// AnimationProps returns the normalized timing of the first rule, in declaration order,
// that concerns id (as source, owner or resolved target) and declares any timing.
// It reports false when no such rule exists. Resolver timings are evaluated here,
// outside the engine lock; values that fail to normalize are logged and omitted.
func (e *Engine) AnimationProps(id string) (domain.AnimationProps, bool) {
	for _, rule := range e.snapshotRules() {
		if !rule.HasTiming() {
			continue
		}
		if rule.SourceID != id && rule.OwnerID != id {
			target, ok := e.targetFor(rule, rule.OwnerID)
			if !ok || target != id {
				continue
			}
		}
		return e.normalizeTiming(rule), true
	}
	return domain.AnimationProps{}, false
}

func (e *Engine) normalizeTiming(rule domain.Rule) domain.AnimationProps {
	var props domain.AnimationProps
	var err error
	if !rule.Duration.IsZero() {
		if props.Duration, err = rule.Duration.CSS(); err != nil {
			e.logger.Warn("omitting invalid duration", "rule_seq", rule.Seq, "owner_id", rule.OwnerID, "err", err)
		}
	}
	if !rule.Delay.IsZero() {
		if props.Delay, err = rule.Delay.CSS(); err != nil {
			e.logger.Warn("omitting invalid delay", "rule_seq", rule.Seq, "owner_id", rule.OwnerID, "err", err)
		}
	}
	if !rule.Curve.IsZero() {
		if props.Curve, err = rule.Curve.Curve(); err != nil {
			e.logger.Warn("omitting invalid curve", "rule_seq", rule.Seq, "owner_id", rule.OwnerID, "err", err)
		}
	}
	return props
}

// Inspect returns every registered node, sorted by id, with the rules it declared
// and the node each rule currently resolves to.
func (e *Engine) Inspect() []domain.NodeSnapshot {
	rules := e.snapshotRules()
	nodes := e.nodes.Nodes()

	out := make([]domain.NodeSnapshot, 0, len(nodes))
	for _, n := range nodes {
		snap := domain.NodeSnapshot{Node: n}
		for _, r := range rules {
			if r.OwnerID != n.ID {
				continue
			}
			bound := domain.BoundRule{Rule: r}
			if target, ok := e.targetFor(r, r.OwnerID); ok {
				bound.Target = target
			}
			snap.Rules = append(snap.Rules, bound)
		}
		out = append(out, snap)
	}
	return out
}
