package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/varia/internal/runtime"
	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimers_AfterDelayFires(t *testing.T) {
	e, sched := newTestEngine(t)

	mustRegister(t, e, "toast", "", "hidden")
	mustRules(t, e, "toast", dsl.New().After(domain.Text("100ms"), "shown").Build()...)
	assert.Equal(t, 1, e.PendingTimers("toast"))

	sched.Advance(99 * time.Millisecond)
	assert.Equal(t, "hidden", e.Variant("toast"))

	sched.Advance(time.Millisecond)
	assert.Equal(t, "shown", e.Variant("toast"))
	assert.Zero(t, e.PendingTimers("toast"))
}

func TestTimers_UnregisterBeforeExpiry(t *testing.T) {
	var transitions int
	hooks := domain.LifecycleHooks{
		OnTransition: func(context.Context, *domain.TransitionEvent) { transitions++ },
		OnRejected:   func(context.Context, *domain.TransitionEvent) { transitions++ },
	}
	e, sched := newTestEngine(t, runtime.WithLifecycleHooks(hooks))

	mustRegister(t, e, "toast", "", "hidden")
	mustRules(t, e, "toast", dsl.New().After(domain.Text("100ms"), "shown").Build()...)

	sched.Advance(50 * time.Millisecond)
	require.True(t, e.Unregister("toast"))
	_, timers := sched.Pending()
	assert.Zero(t, timers, "unregister must cancel the timer")

	sched.Advance(50 * time.Millisecond)
	_, ok := e.Node("toast")
	assert.False(t, ok, "the timer must not resurrect the node")
	assert.Zero(t, transitions)
}

func TestTimers_StaleTimerAfterRemount(t *testing.T) {
	e, sched := newTestEngine(t)

	mustRegister(t, e, "toast", "", "hidden")
	mustRules(t, e, "toast", dsl.New().After(domain.Millis(100), "shown").Build()...)

	sched.Advance(60 * time.Millisecond)
	mustRegister(t, e, "toast", "", "hidden")

	sched.Advance(60 * time.Millisecond)
	assert.Equal(t, "hidden", e.Variant("toast"), "the remount restarted the delay")

	sched.Advance(40 * time.Millisecond)
	assert.Equal(t, "shown", e.Variant("toast"))
}

func TestTimers_ArmOnceNodeAndRulesExist(t *testing.T) {
	e, sched := newTestEngine(t)

	mustRules(t, e, "late", dsl.New().After(domain.Millis(10), "ready").Build()...)
	assert.Zero(t, e.PendingTimers("late"))

	sched.Advance(time.Second)
	mustRegister(t, e, "late", "", "waiting")
	assert.Equal(t, 1, e.PendingTimers("late"))

	sched.Advance(10 * time.Millisecond)
	assert.Equal(t, "ready", e.Variant("late"))
}

func TestTimers_UnregisterRulesCancels(t *testing.T) {
	e, sched := newTestEngine(t)

	entries := dsl.New().After(domain.Millis(10), "ready").Build()
	mustRegister(t, e, "n", "", "waiting")
	mustRules(t, e, "n", entries...)

	assert.Equal(t, 1, e.UnregisterRules("n", entries))
	sched.Advance(time.Second)
	assert.Equal(t, "waiting", e.Variant("n"))
}

func TestTimers_ResolverDelay(t *testing.T) {
	e, sched := newTestEngine(t)

	delay := domain.Resolver(func() any { return "0.2s" })
	mustRegister(t, e, "n", "", "a")
	mustRules(t, e, "n", dsl.New().After(delay, "b").Build()...)

	sched.Advance(199 * time.Millisecond)
	assert.Equal(t, "a", e.Variant("n"))
	sched.Advance(time.Millisecond)
	assert.Equal(t, "b", e.Variant("n"))
}

func TestTimers_CascadeFromTimer(t *testing.T) {
	e, sched := newTestEngine(t)

	mustRegister(t, e, "splash", "", "visible")
	mustRegister(t, e, "app", "", "loading")
	mustRules(t, e, "splash", dsl.New().After(domain.Millis(30), "gone").Build()...)
	mustRules(t, e, "app", dsl.New().Listen("splash.gone", "ready").Build()...)

	sched.Advance(30 * time.Millisecond)
	assert.Equal(t, "ready", e.Variant("app"), "Advance drains the cascade after the timer")
}

func TestTimers_HugeDelayDoesNotFireEarly(t *testing.T) {
	e, sched := newTestEngine(t)

	mustRegister(t, e, "toast", "", "hidden")
	mustRules(t, e, "toast", dsl.New().After(domain.Text("1e13ms"), "shown").Build()...)

	sched.Advance(time.Millisecond)
	assert.Equal(t, "hidden", e.Variant("toast"))

	sched.Advance(24 * time.Hour)
	assert.Equal(t, "hidden", e.Variant("toast"))
	assert.Equal(t, 1, e.PendingTimers("toast"))
}
