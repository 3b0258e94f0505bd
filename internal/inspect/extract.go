package inspect

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/portscope/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// Extract reads every value of a port and summarizes column 0.
//
// It returns a nil result and a nil error when the port does not exist or holds the
// opaque payload type. Evaluation failures of the initial forced read are ignored;
// any other host failure is returned.
func (i *Inspector) Extract(ctx context.Context, node, port string) (*domain.ExtractionResult, error) {
	start := i.now()
	event := &domain.ExtractEvent{Node: node, Port: port}
	defer func() {
		event.Duration = i.now().Sub(start)
		i.emitExtract(ctx, event)
	}()

	result, outcome, err := i.extract(ctx, node, port)
	event.Outcome = outcome
	if err != nil {
		event.Outcome = domain.OutcomeError
		return nil, err
	}
	if result != nil {
		event.PlugType = result.PlugType
		for _, col := range result.Data {
			event.Values += len(col)
		}
	}
	return result, nil
}

func (i *Inspector) extract(ctx context.Context, node, port string) (*domain.ExtractionResult, domain.ExtractOutcome, error) {
	exists, err := i.host.AttributeExists(ctx, node, port)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query %s.%s: %w", node, port, err)
	}
	if !exists {
		i.logger.Debug("port not found", "node", node, "port", port)
		return nil, domain.OutcomeMissing, nil
	}

	// Pull once so lazily computed outputs are populated before they are walked.
	if _, err := i.host.AttributeValue(ctx, node, port); err != nil {
		i.logger.Debug("forced evaluation failed", "node", node, "port", port, "error", err)
	}

	attrType, err := i.host.AttributeType(ctx, node, port)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query type of %s.%s: %w", node, port, err)
	}
	if domain.ParsePlugType(attrType).Opaque() {
		return nil, domain.OutcomeUnsupported, nil
	}

	child, err := i.nestedChild(ctx, node, port)
	if err != nil {
		return nil, "", err
	}

	var (
		data     [][]domain.Value
		plugType string
	)
	switch {
	case child != "":
		data, plugType, err = i.collectNested(ctx, node, port, child)
	default:
		var multi bool
		multi, err = i.host.AttributeIsMulti(ctx, node, port)
		if err != nil {
			return nil, "", fmt.Errorf("failed to query %s.%s: %w", node, port, err)
		}
		if multi {
			data, plugType, err = i.collectFlat(ctx, node, port)
		} else {
			data, plugType, err = i.collectScalar(ctx, node, port, attrType)
		}
	}
	if err != nil {
		return nil, "", err
	}
	if plugType == "" {
		plugType = attrType
	}

	result := &domain.ExtractionResult{
		Data:     data,
		PlugType: plugType,
	}
	if len(data) > 0 {
		result.DataLength = len(data[0])
		result.MinValue, result.MaxValue, err = summarize(data[0])
		if err != nil {
			return nil, "", fmt.Errorf("%s.%s: %w", node, port, err)
		}
	} else {
		result.MinValue, result.MaxValue = zeroValue(), zeroValue()
	}
	return result, domain.OutcomeData, nil
}

// nestedChild returns the first multi-indexed child attribute of port, or "".
func (i *Inspector) nestedChild(ctx context.Context, node, port string) (string, error) {
	children, err := i.host.ListChildAttributes(ctx, node, port)
	if err != nil {
		return "", fmt.Errorf("failed to list children of %s.%s: %w", node, port, err)
	}
	for _, child := range children {
		name := child[strings.LastIndexByte(child, '.')+1:]
		multi, err := i.host.AttributeIsMulti(ctx, node, name)
		if err != nil {
			return "", fmt.Errorf("failed to query %s.%s: %w", node, name, err)
		}
		if multi {
			return name, nil
		}
	}
	return "", nil
}

func (i *Inspector) collectNested(ctx context.Context, node, port, child string) ([][]domain.Value, string, error) {
	outer, err := i.size(ctx, node, port)
	if err != nil {
		return nil, "", err
	}

	var plugType string
	data := make([][]domain.Value, 0, outer)
	for idx := 0; idx < outer; idx++ {
		inner, err := i.size(ctx, node, domain.NewPath(port).Index(idx).Child(child).String())
		if err != nil {
			return nil, "", err
		}
		values := make([]domain.Value, 0, inner)
		for sub := 0; sub < inner; sub++ {
			path := domain.NewPath(port).Index(idx).Child(child).Index(sub).String()
			if plugType == "" {
				if plugType, err = i.leafType(ctx, node, path); err != nil {
					return nil, "", err
				}
			}
			v, err := i.leaf(ctx, node, path, plugType)
			if err != nil {
				return nil, "", err
			}
			values = append(values, v)
		}
		data = append(data, values)
	}
	return data, plugType, nil
}

func (i *Inspector) collectFlat(ctx context.Context, node, port string) ([][]domain.Value, string, error) {
	size, err := i.size(ctx, node, port)
	if err != nil {
		return nil, "", err
	}

	var plugType string
	values := make([]domain.Value, 0, size)
	for idx := 0; idx < size; idx++ {
		path := domain.NewPath(port).Index(idx).String()
		if plugType == "" {
			if plugType, err = i.leafType(ctx, node, path); err != nil {
				return nil, "", err
			}
		}
		v, err := i.leaf(ctx, node, path, plugType)
		if err != nil {
			return nil, "", err
		}
		values = append(values, v)
	}
	return [][]domain.Value{values}, plugType, nil
}

func (i *Inspector) collectScalar(ctx context.Context, node, port, attrType string) ([][]domain.Value, string, error) {
	v, err := i.leaf(ctx, node, port, attrType)
	if err != nil {
		return nil, "", err
	}
	return [][]domain.Value{{v}}, attrType, nil
}

func (i *Inspector) size(ctx context.Context, node, path string) (int, error) {
	n, err := i.host.ArraySize(ctx, node, path)
	if err != nil {
		return 0, fmt.Errorf("failed to size %s.%s: %w", node, path, err)
	}
	return n, nil
}

func (i *Inspector) leafType(ctx context.Context, node, path string) (string, error) {
	typ, err := i.host.AttributeType(ctx, node, path)
	if err != nil {
		return "", fmt.Errorf("failed to query type of %s.%s: %w", node, path, err)
	}
	return typ, nil
}

func (i *Inspector) leaf(ctx context.Context, node, path, plugType string) (domain.Value, error) {
	raw, err := i.host.AttributeValue(ctx, node, path)
	if err != nil {
		return domain.Value{}, fmt.Errorf("failed to read %s.%s: %w", node, path, err)
	}
	return Normalize(raw, plugType), nil
}

// ExtractAll extracts several ports of one node concurrently.
// Absent ports are left out of the map; the first host failure cancels the rest.
func (i *Inspector) ExtractAll(ctx context.Context, node string, ports []string) (map[string]*domain.ExtractionResult, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]*domain.ExtractionResult, len(ports))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for _, port := range ports {
		g.Go(func() error {
			r, err := i.Extract(gctx, node, port)
			if err != nil {
				return err
			}
			if r == nil {
				return nil
			}
			mu.Lock()
			results[port] = r
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
