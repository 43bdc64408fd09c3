/*
Package varia is a declarative, event-driven engine that decides which named variant each
node of a component tree should display.

Components register themselves as nodes, attach rules written in a small DSL, and forward raw
trigger events (clicks, pointer enter/leave, focus, key presses). The engine resolves which
node each rule targets, applies guards and toggle cycles, and reports the logical variant
(persistent state) and visual variant (ephemeral hover overlay) per node, plus the timing
metadata a renderer needs to animate the change.

# Concept

Varia never paints anything. The host ("renderer") owns layout and styling; the engine owns
state transitions. This keeps the engine embeddable in a browser bridge, a TUI, an HTTP
service or a test harness.

# Key Features

  - Hover overlays that never touch persistent state.
  - Explicit rules take precedence over toggle cycles on the same target.
  - Cross-node reactions through deferred "listen" cascades.
  - afterDelay timers owned by their node and cancelled when it unmounts.
  - Side-effects (links, overlays, scrolling) handed to a pluggable dispatcher.

# Usage

	eng := varia.New()
	defer eng.Close()

	if err := eng.Register("box1", "", "blue"); err != nil {
		return err
	}
	rules := dsl.New().Toggle(dsl.KeyClick, "box1.blue", "box1.red").Build()
	if err := eng.RegisterRules("box1", rules); err != nil {
		return err
	}

	eng.Emit(ctx, "box1", domain.TriggerClick, domain.EventData{})
	fmt.Println(eng.Variant("box1")) // red

Deferred work runs on an internal scheduler goroutine; call Settle to wait for cascades.
Tests and hosts that own their event loop can inject scheduler.NewManual with WithScheduler.
*/
package varia
