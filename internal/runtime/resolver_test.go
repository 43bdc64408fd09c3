package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/dsl"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	e, _ := newTestEngine(t)
	mustRegister(t, e, "grandparent", "", "x")
	mustRegister(t, e, "parent", "grandparent", "x")
	mustRegister(t, e, "child", "parent", "x")
	mustRegister(t, e, "stray", "", "x")
	mustRegister(t, e, "button", "stray", "x")

	tests := []struct {
		name   string
		spec   string
		want   string
		wantOK bool
	}{
		{"single segment is global", "child", "child", true},
		{"full chain", "grandparent.parent.child", "child", true},
		{"partial chain", "parent.child", "child", true},
		{"broken chain", "grandparent.child", "", false},
		{"wrong order", "child.parent", "", false},
		{"unknown head", "ghost.child", "", false},
		{"unknown tail", "parent.ghost", "", false},
		{"empty", "", "", false},
		{"empty segment", "parent..child", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Resolve(tt.spec, "button")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_EmitterAncestryIgnored(t *testing.T) {
	e, _ := newTestEngine(t)
	mustRegister(t, e, "grandparent", "", "x")
	mustRegister(t, e, "parent", "grandparent", "x")
	mustRegister(t, e, "child", "parent", "idle")
	mustRegister(t, e, "button", "", "x")
	mustRules(t, e, "button", dsl.Shorthand(dsl.KeyClick, "grandparent.parent.child.active"))

	e.Emit(context.Background(), "button", domain.TriggerClick, domain.EventData{})
	assert.Equal(t, "active", e.Variant("child"))

	mustRegister(t, e, "parent", "", "x")
	results := e.Emit(context.Background(), "button", domain.TriggerClick, domain.EventData{})
	assert.Equal(t, domain.OutcomeUnresolved, results[0].Outcome, "re-parenting breaks the chain")
}
