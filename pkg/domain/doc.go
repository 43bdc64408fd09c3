/*
Package domain contains the core domain models of the varia engine.

It defines the entities the engine reasons about: addressable Nodes carrying a logical
and a visual variant, compiled Rules describing how a trigger changes a target's variant,
Timing metadata handed to the renderer, and the ActionRequests emitted as side-effects.
This package is kept pure and free of I/O or scheduling concerns.

# Key Entities

  - Node: A registered point in the component forest (ID, ParentID, variants).
  - Rule: An immutable, compiled transition (trigger, target path, guard, toggle list, timing, action).
  - Timing: A duration/delay/curve value that normalizes to milliseconds or a curve name.
  - ActionRequest: A structural description of a side-effect the host should perform.
*/
package domain
