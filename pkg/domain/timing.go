package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Timing is a renderer timing value: a number of milliseconds, a unit string
// ("300ms", "0.3s", "ease-in-out") or a resolver evaluated when the value is read.
// The zero value means "not set".
type Timing struct {
	value any
}

// Millis builds a Timing from a number of milliseconds.
func Millis(ms float64) Timing {
	return Timing{value: ms}
}

// Text builds a Timing from a unit string or curve name.
func Text(s string) Timing {
	if s == "" {
		return Timing{}
	}
	return Timing{value: s}
}

// Resolver builds a Timing whose value is computed on every read.
func Resolver(fn func() any) Timing {
	if fn == nil {
		return Timing{}
	}
	return Timing{value: fn}
}

// TimingOf converts a loosely typed DSL value into a Timing.
func TimingOf(v any) (Timing, error) {
	switch val := v.(type) {
	case nil:
		return Timing{}, nil
	case Timing:
		return val, nil
	case string:
		return Text(val), nil
	case float64:
		return finiteMillis(val)
	case float32:
		return finiteMillis(float64(val))
	case int:
		return Millis(float64(val)), nil
	case int64:
		return Millis(float64(val)), nil
	case uint64:
		return Millis(float64(val)), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Timing{}, fmt.Errorf("%w: %q", ErrInvalidTiming, val)
		}
		return finiteMillis(f)
	case time.Duration:
		return Millis(float64(val) / float64(time.Millisecond)), nil
	case func() any:
		return Resolver(val), nil
	case func() float64:
		return Resolver(func() any { return val() }), nil
	case func() string:
		return Resolver(func() any { return val() }), nil
	}
	return Timing{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidTiming, v)
}

func finiteMillis(ms float64) (Timing, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return Timing{}, fmt.Errorf("%w: %v", ErrInvalidTiming, ms)
	}
	return Millis(ms), nil
}

// IsZero reports whether no value was set.
func (t Timing) IsZero() bool {
	return t.value == nil
}

// resolved evaluates a resolver, if any. Resolvers returning resolvers are rejected.
func (t Timing) resolved() (any, error) {
	fn, ok := t.value.(func() any)
	if !ok {
		return t.value, nil
	}
	inner, err := TimingOf(fn())
	if err != nil {
		return nil, err
	}
	if _, nested := inner.value.(func() any); nested {
		return nil, fmt.Errorf("%w: resolver returned a resolver", ErrInvalidTiming)
	}
	return inner.value, nil
}

// Milliseconds normalizes the value to a number of milliseconds.
func (t Timing) Milliseconds() (float64, error) {
	v, err := t.resolved()
	if err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case nil:
		return 0, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidTiming, val)
		}
		return val, nil
	case string:
		return ParseMillis(val)
	}
	return 0, fmt.Errorf("%w: %v", ErrInvalidTiming, v)
}

// Duration is Milliseconds expressed as a time.Duration, saturated at the representable range.
func (t Timing) Duration() (time.Duration, error) {
	ms, err := t.Milliseconds()
	if err != nil {
		return 0, err
	}
	ns := ms * float64(time.Millisecond)
	switch {
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64), nil
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64), nil
	}
	return time.Duration(ns), nil
}

// CSS renders the value as "<ms>ms".
func (t Timing) CSS() (string, error) {
	ms, err := t.Milliseconds()
	if err != nil {
		return "", err
	}
	return FormatMillis(ms), nil
}

// Curve renders the value as a curve name. Numbers are rendered as plain decimals.
func (t Timing) Curve() (string, error) {
	v, err := t.resolved()
	if err != nil {
		return "", err
	}
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return "", fmt.Errorf("%w: %v", ErrInvalidTiming, val)
		}
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%w: %v", ErrInvalidTiming, v)
}

// String renders the raw value without normalization, for diagnostics.
func (t Timing) String() string {
	switch val := t.value.(type) {
	case nil:
		return ""
	case func() any:
		return "<resolver>"
	case float64:
		return FormatMillis(val)
	default:
		return fmt.Sprint(val)
	}
}

// Identity is a comparable key for the raw value; resolvers are keyed by function pointer.
func (t Timing) Identity() string {
	if fn, ok := t.value.(func() any); ok {
		return fmt.Sprintf("fn@%p", fn)
	}
	return t.String()
}

// MarshalJSON encodes the raw value; resolvers and non-finite numbers are encoded as null.
func (t Timing) MarshalJSON() ([]byte, error) {
	switch val := t.value.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(val)
	case string:
		return json.Marshal(val)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a number or a string.
func (t *Timing) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := TimingOf(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseMillis parses "300ms", "0.3s" or a bare number (milliseconds).
func ParseMillis(s string) (float64, error) {
	clean := strings.TrimSpace(strings.ToLower(s))
	scale := 1.0
	switch {
	case strings.HasSuffix(clean, "ms"):
		clean = strings.TrimSuffix(clean, "ms")
	case strings.HasSuffix(clean, "s"):
		clean = strings.TrimSuffix(clean, "s")
		scale = 1000
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(clean), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTiming, s)
	}
	return f * scale, nil
}

// FormatMillis renders milliseconds in the "<ms>ms" form.
func FormatMillis(ms float64) string {
	return strconv.FormatFloat(ms, 'f', -1, 64) + "ms"
}

// AnimationProps is the normalized timing projection consumed by the renderer.
type AnimationProps struct {
	Duration string `json:"duration,omitempty"`
	Delay    string `json:"delay,omitempty"`
	Curve    string `json:"curve,omitempty"`
}
