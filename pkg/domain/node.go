package domain

// Node is a registered, addressable point in the component forest.
type Node struct {
	ID       string `json:"id" yaml:"id"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`

	// LogicalVariant is the persistent state. Empty means unset.
	LogicalVariant string `json:"variant" yaml:"variant"`

	// VisualVariant is an ephemeral overlay (e.g. hover). Empty means no overlay.
	VisualVariant string `json:"visual_variant,omitempty" yaml:"visual_variant,omitempty"`
}

// Effective returns the variant the renderer should paint: the overlay if set, the logical variant otherwise.
func (n Node) Effective() string {
	if n.VisualVariant != "" {
		return n.VisualVariant
	}
	return n.LogicalVariant
}

// BoundRule pairs a rule with the node id its target path resolved to at inspection time.
// Target is empty when the path did not resolve.
type BoundRule struct {
	Rule   Rule   `json:"rule"`
	Target string `json:"target,omitempty"`
}

// NodeSnapshot is a read-only view of a node and the rules it declared.
type NodeSnapshot struct {
	Node  Node        `json:"node"`
	Rules []BoundRule `json:"rules,omitempty"`
}
