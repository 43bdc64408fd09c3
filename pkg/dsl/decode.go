package dsl

import (
	"fmt"
	"sort"

	"github.com/aretw0/varia/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// rawSpec mirrors the object form as it appears in JSON/YAML documents.
// Timing fields stay untyped until normalized by domain.TimingOf.
type rawSpec struct {
	ToVariant      string   `mapstructure:"toVariant"`
	FromVariant    string   `mapstructure:"fromVariant"`
	TargetID       string   `mapstructure:"targetId"`
	Duration       any      `mapstructure:"duration"`
	Delay          any      `mapstructure:"delay"`
	Curve          any      `mapstructure:"curve"`
	ToggleVariant  []string `mapstructure:"toggleVariant"`
	ScrollTo       string   `mapstructure:"scrollTo"`
	ScrollBehavior string   `mapstructure:"scrollBehavior"`
	Key            string   `mapstructure:"key"`
	URL            string   `mapstructure:"url"`
	OverlayID      string   `mapstructure:"overlayId"`
	Action         string   `mapstructure:"action"`
	ListenID       string   `mapstructure:"listenId"`
	ListenVariant  string   `mapstructure:"listenVariant"`
	Global         bool     `mapstructure:"global"`
}

// DecodeError reports which trigger key could not be decoded.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("dsl: cannot decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode converts a loosely typed record (as produced by JSON or YAML decoders) into entries.
//
// Each value may be a shorthand string, an object, or a list mixing both. Known keys are
// emitted in the canonical order of Keys; unknown keys follow in lexical order so the
// compiler can report them. Unrecognized object fields are kept in ActionSpec.Unknown for
// the same reason; only values of the wrong type fail decoding.
func Decode(raw map[string]any) ([]Entry, error) {
	keys := orderedKeys(raw)
	var entries []Entry
	for _, key := range keys {
		values, ok := raw[key].([]any)
		if !ok {
			values = []any{raw[key]}
		}
		for _, v := range values {
			entry, err := decodeValue(key, v)
			if err != nil {
				return nil, &DecodeError{Key: key, Err: err}
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func decodeValue(key string, v any) (Entry, error) {
	switch val := v.(type) {
	case string:
		return Shorthand(key, val), nil
	case map[string]any, map[any]any:
		spec, err := decodeSpec(val)
		if err != nil {
			return Entry{}, err
		}
		return Object(key, spec), nil
	}
	return Entry{}, fmt.Errorf("unsupported value type %T", v)
}

func decodeSpec(input any) (ActionSpec, error) {
	var raw rawSpec
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return ActionSpec{}, err
	}
	if err := decoder.Decode(input); err != nil {
		return ActionSpec{}, err
	}

	spec := ActionSpec{
		ToVariant:      raw.ToVariant,
		FromVariant:    raw.FromVariant,
		TargetID:       raw.TargetID,
		ToggleVariant:  raw.ToggleVariant,
		ScrollTo:       raw.ScrollTo,
		ScrollBehavior: raw.ScrollBehavior,
		Key:            raw.Key,
		URL:            raw.URL,
		OverlayID:      raw.OverlayID,
		Action:         raw.Action,
		ListenID:       raw.ListenID,
		ListenVariant:  raw.ListenVariant,
		Global:         raw.Global,
	}
	if len(md.Unused) > 0 {
		spec.Unknown = append([]string(nil), md.Unused...)
		sort.Strings(spec.Unknown)
	}
	if spec.Duration, err = domain.TimingOf(raw.Duration); err != nil {
		return ActionSpec{}, fmt.Errorf("duration: %w", err)
	}
	if spec.Delay, err = domain.TimingOf(raw.Delay); err != nil {
		return ActionSpec{}, fmt.Errorf("delay: %w", err)
	}
	if spec.Curve, err = domain.TimingOf(raw.Curve); err != nil {
		return ActionSpec{}, fmt.Errorf("curve: %w", err)
	}
	return spec, nil
}

func orderedKeys(raw map[string]any) []string {
	keys := make([]string, 0, len(raw))
	for _, k := range Keys {
		if _, ok := raw[k]; ok {
			keys = append(keys, k)
		}
	}
	var unknown []string
	for k := range raw {
		if !isKnownKey(k) {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return append(keys, unknown...)
}

func isKnownKey(k string) bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}
