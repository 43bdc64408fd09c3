package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/varia/pkg/domain"
)

// LoggingHooks logs applied transitions at INFO, rejections at DEBUG and failed actions at WARN.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, ev *domain.TransitionEvent) {
			logger.InfoContext(ctx, "transition",
				"trigger", ev.Trigger,
				"source_id", ev.SourceID,
				"target_id", ev.TargetID,
				"from", ev.From,
				"to", ev.To,
				"visual", ev.Visual,
			)
		},
		OnRejected: func(ctx context.Context, ev *domain.TransitionEvent) {
			logger.DebugContext(ctx, "transition rejected",
				"trigger", ev.Trigger,
				"source_id", ev.SourceID,
				"target_id", ev.TargetID,
				"outcome", ev.Outcome,
			)
		},
		OnAction: func(ctx context.Context, ev *domain.ActionEvent) {
			if ev.Err != nil {
				logger.WarnContext(ctx, "action failed", "action", ev.Request.Type, "target_id", ev.Request.TargetID, "err", ev.Err)
				return
			}
			logger.InfoContext(ctx, "action", "action", ev.Request.Type, "target_id", ev.Request.TargetID)
		},
	}
}

// Compose merges hook sets; each callback runs the non-nil callbacks of every set in order.
func Compose(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		if fn := h.OnTransition; fn != nil {
			prev := out.OnTransition
			out.OnTransition = func(ctx context.Context, ev *domain.TransitionEvent) {
				if prev != nil {
					prev(ctx, ev)
				}
				fn(ctx, ev)
			}
		}
		if fn := h.OnRejected; fn != nil {
			prev := out.OnRejected
			out.OnRejected = func(ctx context.Context, ev *domain.TransitionEvent) {
				if prev != nil {
					prev(ctx, ev)
				}
				fn(ctx, ev)
			}
		}
		if fn := h.OnAction; fn != nil {
			prev := out.OnAction
			out.OnAction = func(ctx context.Context, ev *domain.ActionEvent) {
				if prev != nil {
					prev(ctx, ev)
				}
				fn(ctx, ev)
			}
		}
	}
	return out
}
