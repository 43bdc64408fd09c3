package dsl

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/varia/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Forms(t *testing.T) {
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"listen": "controller.active",
		"onClick": [
			"box1.red",
			{"toggleVariant": ["a", "b"], "duration": 300, "curve": "ease-in"}
		],
		"onHover": {"fromVariant": "idle", "toVariant": "hot", "delay": "0.1s"},
		"onWiggle": "x"
	}`), &raw))

	entries, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	// Canonical key order, then unknown keys.
	assert.Equal(t, []string{KeyHover, KeyClick, KeyClick, KeyListen, "onWiggle"},
		[]string{entries[0].Trigger, entries[1].Trigger, entries[2].Trigger, entries[3].Trigger, entries[4].Trigger})

	assert.Equal(t, "0.1s", entries[0].Spec.Delay.String())
	assert.Equal(t, Shorthand(KeyClick, "box1.red"), entries[1])

	toggle := entries[2].Spec
	assert.Equal(t, []string{"a", "b"}, toggle.ToggleVariant)
	ms, err := toggle.Duration.Milliseconds()
	require.NoError(t, err)
	assert.Equal(t, 300.0, ms)
	curve, _ := toggle.Curve.Curve()
	assert.Equal(t, "ease-in", curve)

	assert.Equal(t, KindShorthand, entries[3].Kind)
}

func TestDecode_YAMLStyleMaps(t *testing.T) {
	entries, err := Decode(map[string]any{
		KeyAfterDelay: map[any]any{"toVariant": "gone", "delay": 250},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	d, err := entries[0].Spec.Delay.Milliseconds()
	require.NoError(t, err)
	assert.Equal(t, 250.0, d)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
	}{
		{"number value", map[string]any{KeyClick: 42}},
		{"bad timing type", map[string]any{KeyClick: map[string]any{"duration": []any{1}}}},
		{"bad list item", map[string]any{KeyClick: []any{"ok", true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			require.Error(t, err)

			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			assert.Equal(t, KeyClick, decodeErr.Key)
		})
	}
}

func TestDecode_UnknownFieldsAreKept(t *testing.T) {
	entries, err := Decode(map[string]any{
		KeyClick: []any{
			map[string]any{"toVarient": "x", "zoom": 2, "toVariant": "y"},
			"box1.red",
		},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2, "siblings survive an unknown field")

	assert.Equal(t, "y", entries[0].Spec.ToVariant)
	assert.Equal(t, []string{"toVarient", "zoom"}, entries[0].Spec.Unknown)
	assert.Equal(t, Shorthand(KeyClick, "box1.red"), entries[1])
}

func TestDecode_TimingErrorsWrapSentinel(t *testing.T) {
	_, err := Decode(map[string]any{KeyClick: map[string]any{"delay": map[string]any{"ms": 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidTiming)
}
