package ports

import "time"

// Timer is a handle to a pending scheduled task.
type Timer interface {
	// Stop cancels the task. It reports false if the task already ran or was stopped.
	Stop() bool
}

// Scheduler runs engine work outside the call that produced it.
// Implementations must run every task on a later turn than the Defer/AfterFunc call,
// and must never run two tasks concurrently.
type Scheduler interface {
	// Defer queues task for the next turn.
	Defer(task func())

	// AfterFunc runs task once d has elapsed, unless the returned Timer is stopped first.
	AfterFunc(d time.Duration, task func()) Timer
}
