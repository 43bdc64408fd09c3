/*
Package scheduler provides the two ports.Scheduler implementations shipped with varia.

Async runs every task on a single mailbox goroutine, so deferred listen cascades and timer
expiries are serialized behind whatever call produced them. Manual never spawns goroutines:
the owner drives it with Tick, Drain and Advance, which makes timer-heavy behavior
reproducible in tests and in hosts that already own an event loop.
*/
package scheduler
