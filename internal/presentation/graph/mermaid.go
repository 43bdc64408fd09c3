package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/varia/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	// ChangedNodes are nodes whose logical variant differs from the one they were registered with.
	ChangedNodes []string
	// CurrentNode is the node that emitted the last event.
	CurrentNode string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from engine snapshots.
// It applies semantic styling:
// - Root: ((Circle))
// - Node with a hover overlay: {{Hexagon}}
// - Default: [Rectangle]
// Parent/child links are drawn as plain lines, rules as labelled arrows from the node that
// declared them (or the node a listen rule watches) to the node they resolve to.
// It also applies overlay styles (Changed/Current) if provided.
func GenerateMermaid(snapshots []domain.NodeSnapshot, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, snap := range snapshots {
		node := snap.Node
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.VisualVariant != "":
			opener, closer = "{{", "}}"
		case node.ParentID == "":
			opener, closer = "((", "))"
		}

		label := node.ID
		if v := node.Effective(); v != "" {
			label = fmt.Sprintf("%s <br/> %s", node.ID, escapeLabel(v))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		if node.ParentID != "" {
			fmt.Fprintf(&sb, "    %s --- %s\n", sanitizeMermaidID(node.ParentID), safeID)
		}
	}

	for _, snap := range snapshots {
		for _, bound := range snap.Rules {
			writeRuleEdge(&sb, snap.Node.ID, bound)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef changed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.ChangedNodes {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s changed;\n", safeID)
			}
		}
		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func writeRuleEdge(sb *strings.Builder, ownerID string, bound domain.BoundRule) {
	rule := bound.Rule
	if bound.Target == "" {
		fmt.Fprintf(sb, "    %%%% unresolved: %s %s -> %q\n", ownerID, rule.Trigger, rule.TargetSpec)
		return
	}

	from := ownerID
	if rule.Trigger == domain.TriggerListen && rule.ListenID != "" {
		from = rule.ListenID
	}

	label := ruleLabel(rule)
	arrow := fmt.Sprintf("-- \"%s\" -->", label)
	switch {
	case rule.Trigger.IsHover():
		arrow = fmt.Sprintf("-. \"%s\" .->", label)
	case rule.Trigger == domain.TriggerListen:
		arrow = fmt.Sprintf("== \"%s\" ==>", label)
	}
	fmt.Fprintf(sb, "    %s %s %s\n", sanitizeMermaidID(from), arrow, sanitizeMermaidID(bound.Target))
}

func ruleLabel(rule domain.Rule) string {
	parts := []string{string(rule.Trigger)}
	switch {
	case rule.Trigger == domain.TriggerListen && rule.ListenVariant != "":
		parts[0] = "listen " + rule.ListenVariant
	case rule.Key != "":
		parts[0] = fmt.Sprintf("%s %s", rule.Trigger, rule.Key)
	}
	if !rule.Delay.IsZero() && rule.Trigger == domain.TriggerAfterDelay {
		parts[0] += " ⏱️ " + rule.Delay.String()
	}

	switch {
	case rule.Toggle:
		parts = append(parts, strings.Join(rule.ToggleVariants, " / "))
	case rule.ToVariant != "":
		target := rule.ToVariant
		if rule.FromVariant != "" {
			target = rule.FromVariant + " → " + target
		}
		parts = append(parts, target)
	}
	if rule.Action.HasSideEffect() {
		parts = append(parts, "⚡ "+string(rule.Action))
	}
	return escapeLabel(strings.Join(parts, ": "))
}

// escapeLabel replaces double quotes, which would end a Mermaid label.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
