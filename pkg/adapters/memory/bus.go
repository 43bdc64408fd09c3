// Package memory provides in-process adapters.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/varia/internal/logging"
	"github.com/aretw0/varia/pkg/domain"
)

// Bus implements ports.ActionPubSub in memory.
// Safe for concurrent use. Slow subscribers lose requests instead of blocking the engine.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[chan domain.ActionRequest]struct{}
	buffer      int
	logger      *slog.Logger
}

// BusOption configures the Bus.
type BusOption func(*Bus)

// WithBuffer sets the per-subscriber channel capacity (default 16).
func WithBuffer(n int) BusOption {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// WithLogger sets the logger used to report dropped requests.
func WithLogger(logger *slog.Logger) BusOption {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		subscribers: make(map[chan domain.ActionRequest]struct{}),
		buffer:      16,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a subscriber until ctx is done, then closes its channel.
func (b *Bus) Subscribe(ctx context.Context) (<-chan domain.ActionRequest, error) {
	ch := make(chan domain.ActionRequest, b.buffer)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, ch)
		close(ch)
	}()
	return ch, nil
}

// Dispatch broadcasts req to every subscriber.
func (b *Bus) Dispatch(ctx context.Context, req domain.ActionRequest) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- req:
		default:
			b.logger.Warn("subscriber buffer full, dropping action", "action", req.Type, "target_id", req.TargetID)
		}
	}
	return nil
}

// Subscribers returns the number of active subscribers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
