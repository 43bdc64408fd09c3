package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/varia/pkg/domain"
)

// Problem is a single consistency issue found in a node forest.
type Problem struct {
	NodeID  string
	RuleSeq int
	Message string
}

func (p Problem) String() string {
	if p.RuleSeq > 0 {
		return fmt.Sprintf("%s (rule #%d): %s", p.NodeID, p.RuleSeq, p.Message)
	}
	return fmt.Sprintf("%s: %s", p.NodeID, p.Message)
}

// ValidationError lists every problem found.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	return fmt.Sprintf("found %d errors:\n- %s", len(e.Problems), strings.Join(lines, "\n- "))
}

// ValidateForest checks an engine snapshot for rules that can never apply: target paths that do
// not resolve, listen rules watching unknown nodes, degenerate toggle cycles, unparseable
// timings and children of unregistered parents.
func ValidateForest(snapshots []domain.NodeSnapshot) error {
	known := make(map[string]bool, len(snapshots))
	for _, snap := range snapshots {
		known[snap.Node.ID] = true
	}

	var problems []Problem
	for _, snap := range snapshots {
		node := snap.Node
		if node.ParentID != "" && !known[node.ParentID] {
			problems = append(problems, Problem{NodeID: node.ID, Message: fmt.Sprintf("parent %q is not registered", node.ParentID)})
		}

		for _, bound := range snap.Rules {
			problems = append(problems, checkRule(node.ID, bound, known)...)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func checkRule(nodeID string, bound domain.BoundRule, known map[string]bool) []Problem {
	rule := bound.Rule
	report := func(format string, args ...any) Problem {
		return Problem{NodeID: nodeID, RuleSeq: rule.Seq, Message: fmt.Sprintf(format, args...)}
	}

	var problems []Problem
	if bound.Target == "" {
		problems = append(problems, report("%s target %q does not resolve", rule.Trigger, rule.TargetSpec))
	}
	if rule.Trigger == domain.TriggerListen {
		switch {
		case rule.ListenID == "":
			problems = append(problems, report("listen rule names no node to watch"))
		case !known[rule.ListenID]:
			problems = append(problems, report("listens to unregistered node %q", rule.ListenID))
		}
	}
	if rule.Toggle && len(rule.ToggleVariants) < 2 {
		problems = append(problems, report("toggle cycles through fewer than two variants"))
	}
	if !rule.IsActionOnly() && !rule.Toggle && rule.ToVariant == "" && rule.Action == domain.ActionChangeTo {
		problems = append(problems, report("%s rule has no variant to apply", rule.Trigger))
	}
	if _, err := rule.Duration.Milliseconds(); err != nil {
		problems = append(problems, report("invalid duration: %v", err))
	}
	if _, err := rule.Delay.Milliseconds(); err != nil {
		problems = append(problems, report("invalid delay: %v", err))
	}
	return problems
}
