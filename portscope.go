package portscope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/portscope/internal/inspect"
	"github.com/aretw0/portscope/internal/logging"
	"github.com/aretw0/portscope/pkg/adapters/memory"
	"github.com/aretw0/portscope/pkg/domain"
	"github.com/aretw0/portscope/pkg/ports"
)

// Version is the module version reported by the CLI and the HTTP API.
const Version = "0.3.0"

// Inspector is the high-level entry point of the library.
// It binds the inspection core to one host.
type Inspector struct {
	core    *inspect.Inspector
	host    ports.Host
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	workers int
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithHost injects a host, bypassing the scene file.
func WithHost(h ports.Host) Option {
	return func(i *Inspector) {
		i.host = h
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(i *Inspector) {
		i.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		i.logger = logger
	}
}

// WithWorkers bounds ExtractAll concurrency.
func WithWorkers(n int) Option {
	return func(i *Inspector) {
		i.workers = n
	}
}

// New creates an Inspector. Without WithHost, scenePath names a YAML scene that is
// served by an in-memory host.
func New(scenePath string, opts ...Option) (*Inspector, error) {
	i := &Inspector{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(i)
	}

	if i.host == nil {
		if scenePath == "" {
			return nil, errors.New("no host configured: pass WithHost or a scene path")
		}
		h, err := memory.LoadScene(scenePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load scene: %w", err)
		}
		i.host = h
	}

	i.core = inspect.New(i.host,
		inspect.WithLogger(i.logger),
		inspect.WithHooks(i.hooks),
		inspect.WithWorkers(i.workers),
	)
	return i, nil
}

// Host returns the host the Inspector reads from.
func (i *Inspector) Host() ports.Host {
	return i.host
}

// ListPorts returns the inspectable output ports of node, sorted by name.
func (i *Inspector) ListPorts(ctx context.Context, node string) ([]string, error) {
	return i.core.ListPorts(ctx, node)
}

// Extract reads one port. A nil result with a nil error means the port has no data.
func (i *Inspector) Extract(ctx context.Context, node, port string) (*domain.ExtractionResult, error) {
	return i.core.Extract(ctx, node, port)
}

// ExtractAll reads several ports concurrently, omitting ports without data.
func (i *Inspector) ExtractAll(ctx context.Context, node string, ports []string) (map[string]*domain.ExtractionResult, error) {
	return i.core.ExtractAll(ctx, node, ports)
}

// CreateMarkers places one marker per valid value of a marker-capable plug type.
func (i *Inspector) CreateMarkers(ctx context.Context, values []domain.Value, plugType string) ([]string, error) {
	return i.core.CreateMarkers(ctx, i.host, values, plugType)
}

// CreateMarkersFromCells places markers for the given cells of a result.
// Cells outside the table are ignored.
func (i *Inspector) CreateMarkersFromCells(ctx context.Context, result *domain.ExtractionResult, cells []domain.CellRef) ([]string, error) {
	if result == nil {
		return nil, domain.ErrNoSelection
	}
	values := make([]domain.Value, 0, len(cells))
	for _, c := range cells {
		if v, ok := result.Cell(c.Row, c.Column); ok {
			values = append(values, v)
		}
	}
	return i.CreateMarkers(ctx, values, result.PlugType)
}

// SelectedGraphs returns the graph nodes currently selected on the host.
// Hosts without a selection report none.
func (i *Inspector) SelectedGraphs(ctx context.Context) ([]string, error) {
	src, ok := i.host.(ports.SelectionSource)
	if !ok {
		return nil, nil
	}
	return src.SelectedGraphs(ctx)
}

// ResolveNode returns node when set, otherwise the first selected graph node.
func (i *Inspector) ResolveNode(ctx context.Context, node string) (string, error) {
	if node != "" {
		return node, nil
	}
	graphs, err := i.SelectedGraphs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read selection: %w", err)
	}
	if len(graphs) == 0 {
		return "", fmt.Errorf("%w: select a graph or name one", domain.ErrNodeNotFound)
	}
	return graphs[0], nil
}
