package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/varia/internal/runtime"
	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	var applied, rejected []*domain.TransitionEvent
	var actions []*domain.ActionEvent

	hooks := domain.LifecycleHooks{
		OnTransition: func(_ context.Context, ev *domain.TransitionEvent) { applied = append(applied, ev) },
		OnRejected:   func(_ context.Context, ev *domain.TransitionEvent) { rejected = append(rejected, ev) },
		OnAction:     func(_ context.Context, ev *domain.ActionEvent) { actions = append(actions, ev) },
	}
	boom := errors.New("boom")
	dispatcher := dispatcherFunc(func(context.Context, domain.ActionRequest) error { return boom })
	e, _ := newTestEngine(t, runtime.WithLifecycleHooks(hooks), runtime.WithDispatcher(dispatcher))

	mustRegister(t, e, "link", "", "idle")
	mustRules(t, e, "link",
		dsl.Object(dsl.KeyClick, dsl.ActionSpec{ToVariant: "visited", URL: "https://example.com", Duration: domain.Text("0.25s")}),
		dsl.Object(dsl.KeyClick, dsl.ActionSpec{FromVariant: "nope", ToVariant: "never"}),
	)

	e.Emit(context.Background(), "link", domain.TriggerClick, domain.EventData{})

	require.Len(t, applied, 1)
	assert.Equal(t, "idle", applied[0].From)
	assert.Equal(t, "visited", applied[0].To)
	assert.True(t, applied[0].HasDuration)
	assert.InDelta(t, 250.0, applied[0].Duration, 0.001)

	require.Len(t, rejected, 1)
	assert.Equal(t, domain.OutcomeGuard, rejected[0].Outcome)

	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionOpenLink, actions[0].Request.Type)
	assert.ErrorIs(t, actions[0].Err, boom)
	assert.Equal(t, "visited", e.Variant("link"), "a failing side-effect never gates the mutation")
}

func TestEngine_HooksMayReenter(t *testing.T) {
	var e *runtime.Engine
	var seen string
	hooks := domain.LifecycleHooks{
		OnTransition: func(_ context.Context, ev *domain.TransitionEvent) {
			seen = e.Variant(ev.TargetID)
		},
	}
	e, _ = newTestEngine(t, runtime.WithLifecycleHooks(hooks))

	mustRegister(t, e, "n", "", "a")
	mustRules(t, e, "n", dsl.Shorthand(dsl.KeyClick, "b"))
	e.Emit(context.Background(), "n", domain.TriggerClick, domain.EventData{})

	assert.Equal(t, "b", seen)
}
