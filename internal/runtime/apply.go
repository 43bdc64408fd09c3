package runtime

import (
	"github.com/aretw0/varia/pkg/domain"
)

// batch collects what one locked dispatch produced, to be flushed after unlocking.
type batch struct {
	results  []domain.Result
	events   []*domain.TransitionEvent
	actions  []domain.ActionRequest
	cascades []cascade
}

// cascade is a committed change that listen rules must observe.
type cascade struct {
	nodeID  string
	variant string
}

func (b *batch) record(e *Engine, rule domain.Rule, sourceID, targetID, from string, res domain.Result) domain.Result {
	b.results = append(b.results, res)

	ev := &domain.TransitionEvent{
		Timestamp: e.now(),
		Trigger:   rule.Trigger,
		SourceID:  sourceID,
		TargetID:  targetID,
		From:      from,
		To:        res.Variant,
		Visual:    rule.Trigger.IsHover(),
		Outcome:   res.Outcome,
	}
	if !rule.Duration.IsZero() {
		if ms, err := rule.Duration.Milliseconds(); err == nil {
			ev.Duration = ms
			ev.HasDuration = true
		}
	}
	b.events = append(b.events, ev)

	if res.Outcome != domain.OutcomeApplied {
		e.logger.Debug("rule rejected",
			"rule_seq", rule.Seq, "trigger", rule.Trigger, "source_id", sourceID,
			"target_id", targetID, "outcome", res.Outcome)
	}
	return res
}

func newResult(rule domain.Rule, sourceID, targetID string) domain.Result {
	return domain.Result{
		RuleSeq:  rule.Seq,
		Trigger:  rule.Trigger,
		SourceID: sourceID,
		TargetID: targetID,
	}
}

// reject records a rule that did not apply.
func (e *Engine) reject(b *batch, rule domain.Rule, sourceID, targetID, from string, outcome domain.Outcome) domain.Result {
	res := newResult(rule, sourceID, targetID)
	res.Outcome = outcome
	return b.record(e, rule, sourceID, targetID, from, res)
}

// applyHover sets the visual overlay of target. The logical variant is never touched
// and no listen cascade follows. The guard compares against the effective variant.
func (e *Engine) applyHover(b *batch, rule domain.Rule, sourceID, targetID string) domain.Result {
	node, ok := e.nodes.Get(targetID)
	if !ok {
		return e.reject(b, rule, sourceID, targetID, "", domain.OutcomeUnresolved)
	}
	current := node.Effective()
	if rule.FromVariant != "" && rule.FromVariant != current {
		return e.reject(b, rule, sourceID, targetID, current, domain.OutcomeGuard)
	}
	if rule.ToVariant == "" {
		return e.reject(b, rule, sourceID, targetID, current, domain.OutcomeNoVariant)
	}

	e.nodes.SetVisualVariant(targetID, rule.ToVariant)

	res := newResult(rule, sourceID, targetID)
	res.Applied = true
	res.Variant = rule.ToVariant
	res.Outcome = domain.OutcomeApplied
	e.queueAction(b, rule, sourceID, targetID, rule.ToVariant)
	return b.record(e, rule, sourceID, targetID, current, res)
}

// applyCommit changes the logical variant of target, clears its overlay and queues a
// listen cascade. Action-only rules apply without committing. Re-committing the current
// variant is reported as no_change and neither cascades nor fires side-effects.
func (e *Engine) applyCommit(b *batch, rule domain.Rule, sourceID, targetID string) domain.Result {
	node, ok := e.nodes.Get(targetID)
	if !ok {
		return e.reject(b, rule, sourceID, targetID, "", domain.OutcomeUnresolved)
	}
	current := node.LogicalVariant
	if rule.FromVariant != "" && rule.FromVariant != current {
		return e.reject(b, rule, sourceID, targetID, current, domain.OutcomeGuard)
	}

	if rule.IsActionOnly() {
		res := newResult(rule, sourceID, targetID)
		res.Applied = true
		res.Variant = current
		res.Outcome = domain.OutcomeApplied
		e.queueAction(b, rule, sourceID, targetID, current)
		return b.record(e, rule, sourceID, targetID, current, res)
	}

	next := rule.ToVariant
	if next == "" && rule.Toggle {
		next = rule.NextToggle(current)
	}
	if next == "" {
		return e.reject(b, rule, sourceID, targetID, current, domain.OutcomeNoVariant)
	}
	if next == current {
		res := newResult(rule, sourceID, targetID)
		res.Variant = current
		res.Outcome = domain.OutcomeNoChange
		return b.record(e, rule, sourceID, targetID, current, res)
	}

	e.nodes.SetLogicalVariant(targetID, next)
	e.nodes.SetVisualVariant(targetID, "")
	b.cascades = append(b.cascades, cascade{nodeID: targetID, variant: next})

	res := newResult(rule, sourceID, targetID)
	res.Applied = true
	res.Committed = true
	res.Variant = next
	res.Outcome = domain.OutcomeApplied
	e.queueAction(b, rule, sourceID, targetID, next)
	e.logger.Debug("variant committed", "node_id", targetID, "from", current, "to", next, "trigger", rule.Trigger)
	return b.record(e, rule, sourceID, targetID, current, res)
}

func (e *Engine) queueAction(b *batch, rule domain.Rule, sourceID, targetID, variant string) {
	if !rule.Action.HasSideEffect() {
		return
	}
	b.actions = append(b.actions, domain.NewActionRequest(rule, sourceID, targetID, variant))
}
