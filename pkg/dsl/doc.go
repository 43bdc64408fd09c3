/*
Package dsl provides the declarative surface component authors use to describe variant transitions.

A node's configuration is a set of entries keyed by trigger name (onClick, onHover, afterDelay,
listen, ...). Each entry is valued either by a shorthand path ("box1.red", "red") or by an
explicit ActionSpec. Entries can be built with the fluent Builder or decoded from the loose
records produced by JSON/YAML decoders with Decode.

Example usage:

	entries := dsl.New().
		Hover("idle", "hover").
		Toggle(dsl.KeyClick, "box1.blue", "box1.red").
		HotKey("Escape", "closed").
		Build()

	// Equivalent record form:
	entries, err := dsl.Decode(map[string]any{
		"onHover": map[string]any{"fromVariant": "idle", "toVariant": "hover"},
		"onClick": map[string]any{"toggleVariant": []any{"box1.blue", "box1.red"}},
	})
*/
package dsl
