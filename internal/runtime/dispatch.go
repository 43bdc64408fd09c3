package runtime

import (
	"context"

	"github.com/aretw0/varia/pkg/domain"
)

// Emit delivers a trigger event from sourceID and returns one result per rule attempted.
//
// Matching rules are grouped by resolved target, in first-match order. For hover triggers
// the first rule that applies in a group wins. For commit triggers every explicit rule is
// tried; toggle rules are tried only when no explicit rule applied, and the first toggle
// that applies stops the group. Rules carrying a key only match events with that key.
func (e *Engine) Emit(ctx context.Context, sourceID string, trigger domain.Trigger, data domain.EventData) []domain.Result {
	trig := trigger.Normalize()
	if !trig.Valid() {
		e.logger.Warn("ignoring unknown trigger", "trigger", trigger, "source_id", sourceID)
		return nil
	}

	e.mu.Lock()
	candidates := e.candidatesLocked(sourceID, trig, data)
	b := e.dispatchLocked(sourceID, trig, data, candidates)
	e.mu.Unlock()

	e.flush(ctx, b)
	return b.results
}

// PressKey fires every hotKey rule regardless of which node declared it.
// Rules without a target path apply to their owner.
func (e *Engine) PressKey(ctx context.Context, key string) []domain.Result {
	data := domain.EventData{Key: key}

	e.mu.Lock()
	var candidates []domain.Rule
	for _, r := range e.rules {
		if r.Trigger == domain.TriggerHotKey {
			candidates = append(candidates, r)
		}
	}
	b := e.dispatchLocked("", domain.TriggerHotKey, data, candidates)
	e.mu.Unlock()

	e.flush(ctx, b)
	return b.results
}

// candidatesLocked selects the rules that react to trig emitted by sourceID, in declaration order.
func (e *Engine) candidatesLocked(sourceID string, trig domain.Trigger, data domain.EventData) []domain.Rule {
	var out []domain.Rule
	for _, r := range e.rules {
		if r.Trigger != trig {
			continue
		}
		if trig == domain.TriggerListen {
			if r.ListenID != data.ListenID {
				continue
			}
			if r.ListenVariant != "" && r.ListenVariant != data.ListenVariant {
				continue
			}
		} else if r.SourceID != "" && r.SourceID != sourceID {
			continue
		}
		out = append(out, r)
	}
	return out
}

type targetGroup struct {
	targetID string
	rules    []domain.Rule
}

// dispatchLocked applies candidates. Callers hold e.mu and flush the batch after unlocking.
func (e *Engine) dispatchLocked(sourceID string, trig domain.Trigger, data domain.EventData, candidates []domain.Rule) *batch {
	b := &batch{}
	var groups []*targetGroup
	index := make(map[string]*targetGroup)

	for _, rule := range candidates {
		targetID, ok := e.targetFor(rule, sourceID)
		if !ok {
			e.reject(b, rule, sourceID, "", "", domain.OutcomeUnresolved)
			continue
		}
		g, seen := index[targetID]
		if !seen {
			g = &targetGroup{targetID: targetID}
			index[targetID] = g
			groups = append(groups, g)
		}
		g.rules = append(g.rules, rule)
	}

	for _, g := range groups {
		if trig.IsHover() {
			e.applyHoverGroup(b, sourceID, g)
		} else {
			e.applyCommitGroup(b, sourceID, data, g)
		}
	}
	return b
}

func (e *Engine) applyHoverGroup(b *batch, sourceID string, g *targetGroup) {
	for _, rule := range g.rules {
		if e.applyHover(b, rule, sourceID, g.targetID).Applied {
			return
		}
	}
}

func (e *Engine) applyCommitGroup(b *batch, sourceID string, data domain.EventData, g *targetGroup) {
	var explicit, toggles, rest []domain.Rule
	for _, rule := range g.rules {
		if rule.Key != "" && rule.Key != data.Key {
			e.reject(b, rule, sourceID, g.targetID, "", domain.OutcomeKeyFilter)
			continue
		}
		switch {
		case rule.IsExplicit():
			explicit = append(explicit, rule)
		case rule.Toggle:
			toggles = append(toggles, rule)
		default:
			rest = append(rest, rule)
		}
	}

	explicitApplied := false
	for _, rule := range explicit {
		if e.applyCommit(b, rule, sourceID, g.targetID).Applied {
			explicitApplied = true
		}
	}
	if !explicitApplied {
		for _, rule := range toggles {
			if e.applyCommit(b, rule, sourceID, g.targetID).Applied {
				break
			}
		}
	}
	for _, rule := range rest {
		e.applyCommit(b, rule, sourceID, g.targetID)
	}
}
