package dsl

import "github.com/aretw0/varia/pkg/domain"

// Builder accumulates DSL entries for one node with a fluent API.
type Builder struct {
	entries []Entry
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{}
}

// On adds a shorthand entry ("target.variant" or "variant") for any trigger key.
func (b *Builder) On(trigger, path string) *Builder {
	b.entries = append(b.entries, Shorthand(trigger, path))
	return b
}

// Do adds an explicit entry for any trigger key.
func (b *Builder) Do(trigger string, spec ActionSpec) *Builder {
	b.entries = append(b.entries, Object(trigger, spec))
	return b
}

// Click changes to the variant addressed by path on click.
func (b *Builder) Click(path string) *Builder {
	return b.On(KeyClick, path)
}

// Hover shows the "to" overlay on pointer enter and reverts to "from" on leave.
// An empty from disables the automatic revert.
func (b *Builder) Hover(from, to string) *Builder {
	return b.Do(KeyHover, ActionSpec{FromVariant: from, ToVariant: to})
}

// Toggle cycles through the given paths each time trigger fires.
func (b *Builder) Toggle(trigger string, paths ...string) *Builder {
	return b.Do(trigger, ActionSpec{ToggleVariant: paths})
}

// After changes to path once delay elapses after the node mounts.
func (b *Builder) After(delay domain.Timing, path string) *Builder {
	return b.Do(KeyAfterDelay, ActionSpec{ToVariant: path, Delay: delay})
}

// HotKey changes to path when key is pressed anywhere, regardless of focus.
func (b *Builder) HotKey(key, path string) *Builder {
	return b.Do(KeyHotKey, ActionSpec{Key: key, ToVariant: path})
}

// Listen reacts to another node committing a variant. The listened "id.variant" path
// is mirrored onto this node unless to is given.
func (b *Builder) Listen(path, to string) *Builder {
	if to == "" {
		return b.On(KeyListen, path)
	}
	target, variant := ParsePath(path)
	return b.Do(KeyListen, ActionSpec{ListenID: target, ListenVariant: variant, ToVariant: to})
}

// OpenOverlay publishes an overlay event when trigger fires.
func (b *Builder) OpenOverlay(trigger, overlayID string) *Builder {
	return b.Do(trigger, ActionSpec{OverlayID: overlayID})
}

// Link opens url when trigger fires.
func (b *Builder) Link(trigger, url string) *Builder {
	return b.Do(trigger, ActionSpec{URL: url})
}

// Build returns the accumulated entries.
func (b *Builder) Build() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}
