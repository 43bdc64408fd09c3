// Package redis publishes engine side-effects over Redis Pub/Sub so hosts in other
// processes (a browser bridge, a notification worker) can act on them.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aretw0/varia/internal/logging"
	"github.com/aretw0/varia/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Publisher implements ports.ActionPubSub using Redis PUBLISH/SUBSCRIBE.
type Publisher struct {
	client  *backend.Client
	prefix  string
	channel string
	buffer  int
	logger  *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithPrefix sets the key prefix prepended to the channel name (default "varia:").
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithChannel sets the channel name (default "actions").
// Sessions typically publish to their own channel.
func WithChannel(channel string) Option {
	return func(p *Publisher) {
		p.channel = channel
	}
}

// WithBuffer sets the capacity of subscriber channels (default 16).
func WithBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.buffer = n
		}
	}
}

// WithLogger sets the logger used to report malformed messages.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New connects to addr and returns a Publisher.
func New(addr string, opts ...Option) (*Publisher, error) {
	client := backend.NewClient(&backend.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewFromClient(client, opts...), nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client:  client,
		prefix:  "varia:",
		channel: "actions",
		buffer:  16,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel returns the fully qualified Redis channel.
func (p *Publisher) Channel() string {
	return p.prefix + p.channel
}

// Dispatch publishes req as JSON.
func (p *Publisher) Dispatch(ctx context.Context, req domain.ActionRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}
	if err := p.client.Publish(ctx, p.Channel(), payload).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

// Subscribe returns the requests published on the channel until ctx is done.
// It returns once Redis has confirmed the subscription, so no later Dispatch is missed.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan domain.ActionRequest, error) {
	sub := p.client.Subscribe(ctx, p.Channel())
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("redis subscribe failed: %w", err)
	}

	out := make(chan domain.ActionRequest, p.buffer)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var req domain.ActionRequest
				if err := json.Unmarshal([]byte(msg.Payload), &req); err != nil {
					p.logger.Warn("ignoring malformed action message", "channel", msg.Channel, "err", err)
					continue
				}
				select {
				case out <- req:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the underlying client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
