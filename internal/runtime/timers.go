package runtime

import (
	"context"

	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/ports"
)

// armTimersLocked starts one timer per afterDelay rule owned by nodeID.
// Timers are owned by the node and die with it.
func (e *Engine) armTimersLocked(nodeID string, rules []domain.Rule) {
	gen := e.generation[nodeID]
	for _, rule := range rules {
		if rule.Trigger != domain.TriggerAfterDelay || rule.OwnerID != nodeID {
			continue
		}
		d, err := rule.Delay.Duration()
		if err != nil {
			e.logger.Warn("invalid afterDelay delay, firing immediately", "node_id", nodeID, "rule_seq", rule.Seq, "err", err)
			d = 0
		}
		if d < 0 {
			d = 0
		}
		seq := rule.Seq
		handle := e.scheduler.AfterFunc(d, func() {
			e.fireTimer(nodeID, seq, gen)
		})
		if e.timers[nodeID] == nil {
			e.timers[nodeID] = make(map[int]ports.Timer)
		}
		e.timers[nodeID][seq] = handle
		e.logger.Debug("afterDelay armed", "node_id", nodeID, "rule_seq", seq, "delay", d)
	}
}

// cancelTimersLocked stops the timers of nodeID whose rule Seq is in seqs, or all of them when seqs is nil.
func (e *Engine) cancelTimersLocked(nodeID string, seqs map[int]struct{}) {
	handles := e.timers[nodeID]
	for seq, t := range handles {
		if seqs != nil {
			if _, ok := seqs[seq]; !ok {
				continue
			}
		}
		t.Stop()
		delete(handles, seq)
	}
	if len(handles) == 0 {
		delete(e.timers, nodeID)
	}
}

// fireTimer applies an expired afterDelay rule. A timer that outlived its node registration
// or its rule does nothing, even if Stop lost the race with expiry.
func (e *Engine) fireTimer(nodeID string, seq int, gen uint64) {
	e.mu.Lock()
	if cur, ok := e.generation[nodeID]; !ok || cur != gen {
		e.mu.Unlock()
		e.logger.Debug("stale afterDelay timer ignored", "node_id", nodeID, "rule_seq", seq)
		return
	}
	if _, ok := e.timers[nodeID][seq]; !ok {
		e.mu.Unlock()
		return
	}
	delete(e.timers[nodeID], seq)
	if len(e.timers[nodeID]) == 0 {
		delete(e.timers, nodeID)
	}

	var rule domain.Rule
	found := false
	for _, r := range e.rules {
		if r.Seq == seq {
			rule, found = r, true
			break
		}
	}
	if !found {
		e.mu.Unlock()
		return
	}
	b := e.dispatchLocked(nodeID, domain.TriggerAfterDelay, domain.EventData{}, []domain.Rule{rule})
	e.mu.Unlock()

	e.flush(context.Background(), b)
}

// PendingTimers reports how many afterDelay timers are armed for nodeID.
func (e *Engine) PendingTimers(nodeID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.timers[nodeID])
}
