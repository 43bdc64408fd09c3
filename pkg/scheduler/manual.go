package scheduler

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/varia/pkg/ports"
)

// Manual is a deterministic scheduler driven by its owner.
// Deferred tasks run on Tick/Drain; timers fire on Advance against a virtual clock.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	queue  []func()
	timers []*manualTimer
	seq    int
}

type manualTimer struct {
	m       *Manual
	at      time.Duration
	seq     int
	task    func()
	stopped bool
	fired   bool
}

// Stop cancels the timer if it has not fired yet.
func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManual creates a manual scheduler with its clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

// Defer queues task for the next Tick.
func (m *Manual) Defer(task func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, task)
}

// AfterFunc arms a virtual timer due at Now()+d.
func (m *Manual) AfterFunc(d time.Duration, task func()) ports.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, at: addClamped(m.now, d), seq: m.seq, task: task}
	m.timers = append(m.timers, t)
	return t
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of queued tasks and armed timers.
func (m *Manual) Pending() (tasks, timers int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			timers++
		}
	}
	return len(m.queue), timers
}

// Tick runs the tasks queued before the call. Tasks they defer wait for the next Tick.
// It returns the number of tasks run.
func (m *Manual) Tick() int {
	m.mu.Lock()
	batch := m.queue
	m.queue = nil
	m.mu.Unlock()

	for _, task := range batch {
		task()
	}
	return len(batch)
}

// Drain ticks until the queue is empty and returns the total number of tasks run.
func (m *Manual) Drain() int {
	total := 0
	for {
		n := m.Tick()
		if n == 0 {
			return total
		}
		total += n
	}
}

// Advance moves the clock forward by d, firing due timers in due-time order.
// The queue is drained before advancing and after each timer, like an event loop
// settling its microtasks between macrotasks.
func (m *Manual) Advance(d time.Duration) {
	m.Drain()

	m.mu.Lock()
	target := addClamped(m.now, d)
	m.mu.Unlock()

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		t.task()
		m.Drain()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// nextDue pops the earliest live timer due at or before target and moves the clock to it.
func (m *Manual) nextDue(target time.Duration) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	m.timers = live
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].at != m.timers[j].at {
			return m.timers[i].at < m.timers[j].at
		}
		return m.timers[i].seq < m.timers[j].seq
	})

	if len(m.timers) == 0 || m.timers[0].at > target {
		return nil
	}
	t := m.timers[0]
	t.fired = true
	m.timers = m.timers[1:]
	if t.at > m.now {
		m.now = t.at
	}
	return t
}

// addClamped adds d to now without wrapping past the largest representable instant.
func addClamped(now, d time.Duration) time.Duration {
	if d > 0 && now > math.MaxInt64-d {
		return math.MaxInt64
	}
	return now + d
}
