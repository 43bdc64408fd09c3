package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/varia/internal/presentation/graph"
	"github.com/aretw0/varia/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		snaps    []domain.NodeSnapshot
		contains []string
		excludes []string
	}{
		{
			name: "Root And Child Shapes",
			snaps: []domain.NodeSnapshot{
				{Node: domain.Node{ID: "nav", LogicalVariant: "closed"}},
				{Node: domain.Node{ID: "item", ParentID: "nav", LogicalVariant: "idle"}},
			},
			contains: []string{
				`nav(("nav <br/> closed"))`,
				`item["item <br/> idle"]`,
				"nav --- item",
			},
		},
		{
			name: "Hover Overlay Shape",
			snaps: []domain.NodeSnapshot{
				{Node: domain.Node{ID: "card", LogicalVariant: "rest", VisualVariant: "lifted"}},
			},
			contains: []string{`card{{"card <br/> lifted"}}`},
		},
		{
			name: "ID Sanitization",
			snaps: []domain.NodeSnapshot{
				{Node: domain.Node{ID: "menu.item-1"}},
			},
			contains: []string{`menu_item_1(("menu.item-1"))`},
		},
		{
			name: "Toggle Edge",
			snaps: []domain.NodeSnapshot{
				{
					Node: domain.Node{ID: "box1", LogicalVariant: "blue"},
					Rules: []domain.BoundRule{{
						Target: "box1",
						Rule: domain.Rule{
							Trigger: domain.TriggerClick, Toggle: true,
							ToggleVariants: []string{"blue", "red"},
						},
					}},
				},
			},
			contains: []string{`box1 -- "click: blue / red" --> box1`},
		},
		{
			name: "Hover And Guard",
			snaps: []domain.NodeSnapshot{
				{
					Node: domain.Node{ID: "card"},
					Rules: []domain.BoundRule{{
						Target: "card",
						Rule: domain.Rule{
							Trigger: domain.TriggerMouseEnter, FromVariant: "rest", ToVariant: "lifted",
						},
					}},
				},
			},
			contains: []string{`card -. "mouseEnter: rest → lifted" .-> card`},
		},
		{
			name: "Listen Edge Starts At Watched Node",
			snaps: []domain.NodeSnapshot{
				{Node: domain.Node{ID: "controller"}},
				{
					Node: domain.Node{ID: "listener"},
					Rules: []domain.BoundRule{{
						Target: "listener",
						Rule: domain.Rule{
							Trigger: domain.TriggerListen, ListenID: "controller",
							ListenVariant: "active", ToVariant: "active",
						},
					}},
				},
			},
			contains: []string{`controller == "listen active: active" ==> listener`},
		},
		{
			name: "Action And Delay Labels",
			snaps: []domain.NodeSnapshot{
				{
					Node: domain.Node{ID: "splash"},
					Rules: []domain.BoundRule{
						{
							Target: "splash",
							Rule: domain.Rule{
								Trigger: domain.TriggerAfterDelay, Delay: domain.Millis(200), ToVariant: "gone",
							},
						},
						{
							Target: "splash",
							Rule: domain.Rule{
								Trigger: domain.TriggerClick, Action: domain.ActionOpenOverlay, OverlayID: "menu",
							},
						},
					},
				},
			},
			contains: []string{
				`"afterDelay ⏱️ 200ms: gone"`,
				`"click: ⚡ openOverlay"`,
			},
		},
		{
			name: "Unresolved Target Is A Comment",
			snaps: []domain.NodeSnapshot{
				{
					Node: domain.Node{ID: "a"},
					Rules: []domain.BoundRule{{
						Rule: domain.Rule{Trigger: domain.TriggerClick, TargetSpec: "ghost", ToVariant: "x"},
					}},
				},
			},
			contains: []string{`%% unresolved: a click -> "ghost"`},
			excludes: []string{"-->"},
		},
		{
			name: "Label Escaping",
			snaps: []domain.NodeSnapshot{
				{Node: domain.Node{ID: "q", LogicalVariant: `say "hi"`}},
			},
			contains: []string{`q(("q <br/> say 'hi'"))`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.snaps, nil)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	snaps := []domain.NodeSnapshot{
		{Node: domain.Node{ID: "a"}},
		{Node: domain.Node{ID: "b-1"}},
	}
	got := graph.GenerateMermaid(snaps, &graph.GraphOverlay{
		ChangedNodes: []string{"a", "b-1", "a"},
		CurrentNode:  "a",
	})

	for _, want := range []string{
		"classDef changed",
		"class b_1 changed;",
		"class a current;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "class a changed;"); n != 1 {
		t.Errorf("expected changed nodes to be deduplicated, got %d entries", n)
	}
}
