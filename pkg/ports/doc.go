/*
Package ports defines the driven ports (interfaces) of the varia engine.

These interfaces decouple the transition engine from the host: how deferred work and
timers are scheduled, and where side-effects (links, scrolling, overlays) are delivered.

# Key Interfaces

  - Scheduler: Runs deferred tasks on a later turn and arms cancelable timers.
  - ActionDispatcher: Receives side-effect requests after a rule has been applied.
  - ActionSubscriber: Streams dispatched requests to consumers (pub/sub adapters).
*/
package ports
