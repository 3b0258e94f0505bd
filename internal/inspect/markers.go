package inspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/portscope/pkg/domain"
	"github.com/aretw0/portscope/pkg/ports"
)

// CreateMarkers creates one marker per value that parses as a placement for plugType:
// 16 numbers for matrices, 3 numbers for positions. Values that don't parse are
// skipped. When the host can select, the new markers are selected.
func (i *Inspector) CreateMarkers(ctx context.Context, factory ports.MarkerFactory, values []domain.Value, plugType string) ([]string, error) {
	kind := domain.ParsePlugType(plugType).Marker()
	if kind == domain.MarkerNone {
		return nil, fmt.Errorf("%w %q: use one of %s", domain.ErrMarkerUnsupported, plugType,
			strings.Join(domain.MarkerPlugTypes(), ", "))
	}

	var markers []string
	for _, v := range values {
		placement, err := domain.PlacementFor(kind, v)
		if err != nil {
			i.logger.Warn("skipping marker value", "plug_type", plugType, "value", v.String(), "error", err)
			i.emitMarker(ctx, &domain.MarkerEvent{
				EventBase: domain.EventBase{Type: domain.EventMarkerSkipped},
				PlugType:  plugType,
				Value:     v.String(),
				Reason:    err.Error(),
			})
			continue
		}

		name, err := factory.CreateMarker(ctx, placement)
		if err != nil {
			return markers, fmt.Errorf("failed to create marker: %w", err)
		}
		markers = append(markers, name)
		i.emitMarker(ctx, &domain.MarkerEvent{
			EventBase: domain.EventBase{Type: domain.EventMarkerCreated},
			PlugType:  plugType,
			Marker:    name,
			Value:     v.String(),
		})
	}

	if sel, ok := factory.(ports.Selector); ok && len(markers) > 0 {
		if err := sel.Select(ctx, markers); err != nil {
			return markers, fmt.Errorf("failed to select markers: %w", err)
		}
	}
	return markers, nil
}
