package ports

import (
	"context"
	"errors"

	"github.com/aretw0/varia/pkg/domain"
)

// ActionDispatcher defines how side-effects are executed.
// The engine emits requests, and the host implements this interface to handle them.
// Errors are reported to the engine's logger and hooks; they never undo a transition.
type ActionDispatcher interface {
	Dispatch(ctx context.Context, req domain.ActionRequest) error
}

// ActionSubscriber streams dispatched requests. The channel is closed when ctx is done.
type ActionSubscriber interface {
	Subscribe(ctx context.Context) (<-chan domain.ActionRequest, error)
}

// ActionPubSub is a dispatcher whose requests can be observed by subscribers.
type ActionPubSub interface {
	ActionDispatcher
	ActionSubscriber
}

// DispatcherFunc adapts a function to ActionDispatcher.
type DispatcherFunc func(ctx context.Context, req domain.ActionRequest) error

// Dispatch calls f.
func (f DispatcherFunc) Dispatch(ctx context.Context, req domain.ActionRequest) error {
	return f(ctx, req)
}

// Dispatchers fans a request out to every dispatcher, joining their errors.
type Dispatchers []ActionDispatcher

// Dispatch delivers req to each dispatcher in order.
func (ds Dispatchers) Dispatch(ctx context.Context, req domain.ActionRequest) error {
	var errs []error
	for _, d := range ds {
		if d == nil {
			continue
		}
		if err := d.Dispatch(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
