/*
Package observability provides tools for monitoring the Varia engine.

It binds domain.LifecycleHooks to Prometheus collectors and structured logs, and composes
several hook sets into one so a host can audit transitions and side-effects at once.
*/
package observability
