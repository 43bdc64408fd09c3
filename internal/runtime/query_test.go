package runtime_test

import (
	"math"
	"testing"

	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnimationProps(t *testing.T) {
	e, _ := newTestEngine(t)
	mustRegister(t, e, "btn", "", "idle")
	mustRegister(t, e, "panel", "", "closed")
	mustRegister(t, e, "plain", "", "x")

	mustRules(t, e, "btn",
		dsl.Shorthand(dsl.KeyClick, "panel.open"),
		dsl.Object(dsl.KeyClick, dsl.ActionSpec{
			ToVariant: "panel.open",
			Duration:  domain.Millis(300),
			Delay:     domain.Text("0.1s"),
			Curve:     domain.Text("ease-in-out"),
		}),
		dsl.Object(dsl.KeyHover, dsl.ActionSpec{ToVariant: "hot", Duration: domain.Millis(50)}),
	)

	props, ok := e.AnimationProps("panel")
	require.True(t, ok)
	assert.Equal(t, domain.AnimationProps{Duration: "300ms", Delay: "100ms", Curve: "ease-in-out"}, props,
		"a node targeted by another node's rule picks up its timing")

	props, ok = e.AnimationProps("btn")
	require.True(t, ok)
	assert.Equal(t, "300ms", props.Duration, "the first timed rule in declaration order wins")

	props, ok = e.AnimationProps("plain")
	assert.False(t, ok)
	assert.Equal(t, domain.AnimationProps{}, props)
}

func TestAnimationProps_ResolverEvaluatedOnRead(t *testing.T) {
	e, _ := newTestEngine(t)
	mustRegister(t, e, "n", "", "a")

	ms := 100.0
	mustRules(t, e, "n", dsl.Object(dsl.KeyClick, dsl.ActionSpec{
		ToVariant: "b",
		Duration:  domain.Resolver(func() any { return ms }),
	}))

	props, ok := e.AnimationProps("n")
	require.True(t, ok)
	assert.Equal(t, "100ms", props.Duration)
	assert.Empty(t, props.Delay)

	ms = 450
	props, _ = e.AnimationProps("n")
	assert.Equal(t, "450ms", props.Duration)
}

func TestAnimationProps_InvalidTiming(t *testing.T) {
	e, _ := newTestEngine(t)
	mustRegister(t, e, "n", "", "a")
	mustRules(t, e, "n", dsl.Object(dsl.KeyClick, dsl.ActionSpec{
		ToVariant: "b",
		Duration:  domain.Text("slow"),
		Curve:     domain.Text("linear"),
	}))

	props, ok := e.AnimationProps("n")
	require.True(t, ok)
	assert.Empty(t, props.Duration, "unparseable values are omitted")
	assert.Equal(t, "linear", props.Curve)

	mustRegister(t, e, "m", "", "a")
	mustRules(t, e, "m", dsl.Object(dsl.KeyClick, dsl.ActionSpec{
		ToVariant: "b",
		Duration:  domain.Text("NaN"),
		Delay:     domain.Text("-Infs"),
		Curve:     domain.Millis(math.Inf(1)),
	}))

	props, ok = e.AnimationProps("m")
	require.True(t, ok)
	assert.Equal(t, domain.AnimationProps{}, props, "non-finite values are omitted")
}

func TestVisualVariantFallsBackToLogical(t *testing.T) {
	e, _ := newTestEngine(t)
	mustRegister(t, e, "n", "", "a")
	assert.Equal(t, "a", e.VisualVariant("n"))
	assert.Empty(t, e.VisualVariant("ghost"))
}
