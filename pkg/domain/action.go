package domain

// ActionRequest represents a side-effect that the engine requests the host to perform.
// It is emitted exactly once per successful rule application, after the state mutation.
type ActionRequest struct {
	Type Action `json:"type"`

	// SourceID is the node whose event triggered the rule; TargetID is the node it applied to.
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Variant  string `json:"variant,omitempty"`

	URL            string `json:"url,omitempty"`
	OverlayID      string `json:"overlay_id,omitempty"`
	ScrollTargetID string `json:"scroll_target_id,omitempty"`
	ScrollBehavior string `json:"scroll_behavior,omitempty"`
}

// NewActionRequest builds the side-effect descriptor for an applied rule.
func NewActionRequest(rule Rule, sourceID, targetID, variant string) ActionRequest {
	return ActionRequest{
		Type:           rule.Action,
		SourceID:       sourceID,
		TargetID:       targetID,
		Variant:        variant,
		URL:            rule.URL,
		OverlayID:      rule.OverlayID,
		ScrollTargetID: rule.ScrollTargetID,
		ScrollBehavior: rule.ScrollBehavior,
	}
}
