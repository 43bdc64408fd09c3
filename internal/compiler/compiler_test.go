package compiler

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aretw0/varia/pkg/domain"
	"github.com/aretw0/varia/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Shorthand(t *testing.T) {
	rules, err := New().Compile("btn", dsl.New().Click("panel.open").Click("pressed").Build())
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, domain.TriggerClick, rules[0].Trigger)
	assert.Equal(t, "btn", rules[0].OwnerID)
	assert.Equal(t, "btn", rules[0].SourceID)
	assert.Equal(t, "panel", rules[0].TargetSpec)
	assert.Equal(t, "open", rules[0].ToVariant)
	assert.Equal(t, domain.ActionChangeTo, rules[0].Action)

	assert.Empty(t, rules[1].TargetSpec, "bare variant addresses the default target")
	assert.Equal(t, "pressed", rules[1].ToVariant)
}

func TestCompile_HoverPair(t *testing.T) {
	rules, err := New().Compile("card", dsl.New().Hover("idle", "hot").Build())
	require.NoError(t, err)
	require.Len(t, rules, 2)

	enter, leave := rules[0], rules[1]
	assert.Equal(t, domain.TriggerMouseEnter, enter.Trigger)
	assert.Equal(t, "hot", enter.ToVariant)
	assert.Equal(t, "idle", enter.FromVariant)

	assert.Equal(t, domain.TriggerMouseLeave, leave.Trigger)
	assert.Equal(t, "idle", leave.ToVariant)
	assert.Equal(t, "hot", leave.FromVariant)
	assert.Equal(t, enter.Origin, leave.Origin, "both halves are removed together")

	rules, err = New().Compile("card", dsl.New().Hover("", "hot").Build())
	require.NoError(t, err)
	assert.Len(t, rules, 1, "no revert without fromVariant")
}

func TestCompile_Listen(t *testing.T) {
	rules, err := New().Compile("backdrop", dsl.New().
		Listen("dialog.open", "").
		Listen("dialog.open", "dimmed").
		Build())
	require.NoError(t, err)
	require.Len(t, rules, 2)

	for _, r := range rules {
		assert.Equal(t, domain.TriggerListen, r.Trigger)
		assert.Equal(t, "dialog", r.ListenID)
		assert.Equal(t, "open", r.ListenVariant)
		assert.Empty(t, r.TargetSpec)
	}
	assert.Equal(t, "open", rules[0].ToVariant)
	assert.Equal(t, "dimmed", rules[1].ToVariant)
}

func TestCompile_Toggle(t *testing.T) {
	rules, err := New().Compile("box1", dsl.New().Toggle(dsl.KeyClick, "box1.blue", "box1.red").Build())
	require.NoError(t, err)
	require.Len(t, rules, 1)

	r := rules[0]
	assert.True(t, r.Toggle)
	assert.Equal(t, []string{"blue", "red"}, r.ToggleVariants)
	assert.Equal(t, "box1", r.TargetSpec)
	assert.False(t, r.IsExplicit())
}

func TestCompile_ActionInference(t *testing.T) {
	tests := []struct {
		name string
		spec dsl.ActionSpec
		want domain.Action
	}{
		{"url", dsl.ActionSpec{URL: "https://example.com"}, domain.ActionOpenLink},
		{"scroll", dsl.ActionSpec{ScrollTo: "footer"}, domain.ActionScrollTo},
		{"overlay", dsl.ActionSpec{OverlayID: "menu"}, domain.ActionOpenOverlay},
		{"variant", dsl.ActionSpec{ToVariant: "on"}, domain.ActionChangeTo},
		{"explicit", dsl.ActionSpec{Action: "goBack"}, domain.ActionGoBack},
		{"explicit wins", dsl.ActionSpec{Action: "closeOverlay", OverlayID: "menu"}, domain.ActionCloseOverlay},
		{"unknown falls back", dsl.ActionSpec{Action: "explode", URL: "https://example.com"}, domain.ActionOpenLink},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := New().Compile("n", []dsl.Entry{dsl.Object(dsl.KeyClick, tt.spec)})
			require.NoError(t, err)
			require.Len(t, rules, 1)
			assert.Equal(t, tt.want, rules[0].Action)
		})
	}
}

func TestCompile_ExplicitFields(t *testing.T) {
	rules, err := New().Compile("n", []dsl.Entry{dsl.Object(dsl.KeyHotKey, dsl.ActionSpec{
		ToVariant: "modal.closed",
		TargetID:  "sheet",
		Key:       "Escape",
		Duration:  domain.Millis(150),
		Global:    true,
	})})
	require.NoError(t, err)
	require.Len(t, rules, 1)

	r := rules[0]
	assert.Equal(t, domain.TriggerHotKey, r.Trigger)
	assert.Equal(t, "sheet", r.TargetSpec, "targetId takes precedence over the path prefix")
	assert.Equal(t, "closed", r.ToVariant)
	assert.Equal(t, "Escape", r.Key)
	assert.Empty(t, r.SourceID, "global rules react to any source")
	assert.True(t, r.HasTiming())
}

func TestCompile_UnknownKeys(t *testing.T) {
	entries := []dsl.Entry{dsl.Shorthand("onWiggle", "x"), dsl.Shorthand(dsl.KeyClick, "y")}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	rules, err := New(WithLogger(logger)).Compile("n", entries)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Contains(t, buf.String(), "ignoring unknown trigger")

	_, err = New(WithStrict(true)).Compile("n", entries)
	var keyErr *UnknownKeyError
	require.ErrorAs(t, err, &keyErr)
	assert.Equal(t, "onWiggle", keyErr.Key)
	assert.ErrorIs(t, err, domain.ErrUnknownTrigger)

	_, err = New(WithStrict(true)).Compile("n", []dsl.Entry{dsl.Object(dsl.KeyClick, dsl.ActionSpec{Action: "explode"})})
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestCompile_UnknownFields(t *testing.T) {
	entries := []dsl.Entry{
		dsl.Object(dsl.KeyClick, dsl.ActionSpec{ToVariant: "on", Unknown: []string{"bogus"}}),
		dsl.Shorthand(dsl.KeyFocus, "lit"),
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	rules, err := New(WithLogger(logger)).Compile("n", entries)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "on", rules[0].ToVariant)
	assert.Contains(t, buf.String(), "ignoring unknown field")
	assert.Contains(t, buf.String(), "field=bogus")

	_, err = New(WithStrict(true)).Compile("n", entries)
	var keyErr *UnknownKeyError
	require.ErrorAs(t, err, &keyErr)
	assert.Equal(t, "bogus", keyErr.Key)
	assert.ErrorIs(t, err, domain.ErrUnknownField)
}

func TestCompile_EmptyNodeID(t *testing.T) {
	_, err := New().Compile("", dsl.New().Click("x").Build())
	assert.ErrorIs(t, err, domain.ErrEmptyNodeID)
}
