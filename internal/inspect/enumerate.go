package inspect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/portscope/pkg/domain"
	"github.com/aretw0/portscope/pkg/ports"
)

// excludedPorts are structural attributes every graph shape carries.
var excludedPorts = map[string]struct{}{
	"message":   {},
	"mesh":      {},
	"dirtyFlag": {},
}

// ListPorts returns the output ports of node a user can inspect, sorted by name.
// Only user-defined, read-only attributes with data qualify; structural names,
// child attributes and opaque payload ports are left out.
func (i *Inspector) ListPorts(ctx context.Context, node string) ([]string, error) {
	attrs, err := i.host.ListAttributes(ctx, node, ports.AttributeFilter{
		UserDefined: true,
		ReadOnly:    true,
		HasData:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attributes of %s: %w", node, err)
	}

	sorted := append([]string(nil), attrs...)
	sort.Strings(sorted)

	result := make([]string, 0, len(sorted))
	for _, attr := range sorted {
		if _, skip := excludedPorts[attr]; skip || strings.Contains(attr, ".") {
			continue
		}

		hasParent, err := i.host.AttributeHasParent(ctx, node, attr)
		if err != nil {
			return nil, fmt.Errorf("failed to query parent of %s.%s: %w", node, attr, err)
		}
		if hasParent {
			continue
		}

		typ, err := i.host.AttributeType(ctx, node, attr)
		if err != nil {
			return nil, fmt.Errorf("failed to query type of %s.%s: %w", node, attr, err)
		}
		if domain.ParsePlugType(typ).Opaque() {
			continue
		}

		result = append(result, attr)
	}

	i.logger.Debug("listed ports", "node", node, "candidates", len(attrs), "ports", len(result))
	return result, nil
}
