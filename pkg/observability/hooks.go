package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/portscope/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnExtract: func(ctx context.Context, e *domain.ExtractEvent) {
			logger.DebugContext(ctx, "extract",
				"node", e.Node,
				"port", e.Port,
				"plug_type", e.PlugType,
				"outcome", e.Outcome,
				"values", e.Values,
				"duration", e.Duration,
			)
		},
		OnMarker: func(ctx context.Context, e *domain.MarkerEvent) {
			logger.DebugContext(ctx, string(e.Type),
				"plug_type", e.PlugType,
				"marker", e.Marker,
				"value", e.Value,
				"reason", e.Reason,
			)
		},
	}
}

// Combine fans every event out to all hooks, in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		if h.OnExtract != nil {
			prev := out.OnExtract
			out.OnExtract = func(ctx context.Context, e *domain.ExtractEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnExtract(ctx, e)
			}
		}
		if h.OnMarker != nil {
			prev := out.OnMarker
			out.OnMarker = func(ctx context.Context, e *domain.MarkerEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnMarker(ctx, e)
			}
		}
	}
	return out
}
