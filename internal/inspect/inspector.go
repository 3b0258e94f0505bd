package inspect

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/portscope/internal/logging"
	"github.com/aretw0/portscope/pkg/domain"
	"github.com/aretw0/portscope/pkg/ports"
)

// DefaultWorkers bounds ExtractAll concurrency when no limit is configured.
const DefaultWorkers = 4

// Inspector enumerates and extracts the output ports of graph nodes.
// It holds no per-request state; every call reads the host live.
type Inspector struct {
	host    ports.GraphHost
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	workers int
	now     func() time.Time
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		i.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(i *Inspector) {
		i.hooks = hooks
	}
}

// WithWorkers bounds the number of ports ExtractAll reads concurrently.
func WithWorkers(n int) Option {
	return func(i *Inspector) {
		if n > 0 {
			i.workers = n
		}
	}
}

// New creates an Inspector over a host.
func New(host ports.GraphHost, opts ...Option) *Inspector {
	i := &Inspector{
		host:    host,
		logger:  logging.NewNop(),
		workers: DefaultWorkers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Inspector) emitExtract(ctx context.Context, e *domain.ExtractEvent) {
	if i.hooks.OnExtract == nil {
		return
	}
	e.Timestamp = i.now()
	e.Type = domain.EventExtract
	i.hooks.OnExtract(ctx, e)
}

func (i *Inspector) emitMarker(ctx context.Context, e *domain.MarkerEvent) {
	if i.hooks.OnMarker == nil {
		return
	}
	e.Timestamp = i.now()
	i.hooks.OnMarker(ctx, e)
}
