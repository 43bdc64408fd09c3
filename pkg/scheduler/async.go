package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/varia/internal/logging"
	"github.com/aretw0/varia/pkg/ports"
)

// Async is a mailbox scheduler: one goroutine runs queued tasks in FIFO order.
// The queue is unbounded so tasks may defer further tasks without blocking.
type Async struct {
	mu      sync.Mutex
	idle    *sync.Cond
	queue   []func()
	running bool
	closed  bool
	wake    chan struct{}
	done    chan struct{}
	logger  *slog.Logger
}

// AsyncOption configures the Async scheduler.
type AsyncOption func(*Async)

// WithLogger configures the logger used for recovered task panics.
func WithLogger(logger *slog.Logger) AsyncOption {
	return func(a *Async) {
		a.logger = logger
	}
}

// NewAsync starts the mailbox goroutine. Call Close to stop it.
func NewAsync(opts ...AsyncOption) *Async {
	a := &Async{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logging.NewNop(),
	}
	a.idle = sync.NewCond(&a.mu)
	for _, opt := range opts {
		opt(a)
	}
	go a.loop()
	return a
}

// Defer queues task. Tasks submitted after Close are dropped.
func (a *Async) Defer(task func()) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.logger.Debug("scheduler closed, dropping task")
		return
	}
	a.queue = append(a.queue, task)
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// AfterFunc arms a wall-clock timer whose task is posted to the mailbox on expiry.
func (a *Async) AfterFunc(d time.Duration, task func()) ports.Timer {
	return time.AfterFunc(d, func() { a.Defer(task) })
}

// Settle blocks until the queue is empty and no task is running, or ctx is done.
// Pending timers are not waited for.
func (a *Async) Settle(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		a.mu.Lock()
		a.idle.Broadcast()
		a.mu.Unlock()
	})
	defer stop()

	a.mu.Lock()
	defer a.mu.Unlock()
	for (len(a.queue) > 0 || a.running) && !a.closed {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.idle.Wait()
	}
	return ctx.Err()
}

// Close stops the mailbox after the queued tasks have run.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
	<-a.done
	return nil
}

func (a *Async) loop() {
	defer close(a.done)
	for {
		a.mu.Lock()
		for len(a.queue) == 0 {
			if a.closed {
				a.idle.Broadcast()
				a.mu.Unlock()
				return
			}
			a.idle.Broadcast()
			a.mu.Unlock()
			<-a.wake
			a.mu.Lock()
		}
		task := a.queue[0]
		a.queue[0] = nil
		a.queue = a.queue[1:]
		a.running = true
		a.mu.Unlock()

		a.run(task)

		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}
}

func (a *Async) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("scheduled task panicked", "panic", r)
		}
	}()
	task()
}
