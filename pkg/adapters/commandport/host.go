package commandport

import (
	"context"
	"encoding/json"

	"github.com/aretw0/portscope/pkg/domain"
	"github.com/aretw0/portscope/pkg/ports"
)

// Host implements ports.Host against a live Maya session.
type Host struct {
	client *Client
}

var (
	_ ports.Host            = (*Host)(nil)
	_ ports.Selector        = (*Host)(nil)
	_ ports.SelectionSource = (*Host)(nil)
)

// NewHost creates a host backed by client.
func NewHost(client *Client) *Host {
	return &Host{client: client}
}

// Close releases the command port connection.
func (h *Host) Close() error {
	return h.client.Close()
}

// AttributeExists reports whether node has an attribute called name.
func (h *Host) AttributeExists(ctx context.Context, node, name string) (bool, error) {
	var ok bool
	err := h.client.Call(ctx, "exists", map[string]any{"node": node, "name": name}, &ok)
	return ok, err
}

// ListAttributes lists the attributes of node that pass filter.
func (h *Host) ListAttributes(ctx context.Context, node string, filter ports.AttributeFilter) ([]string, error) {
	var names []string
	err := h.client.Call(ctx, "list", map[string]any{
		"node":         node,
		"user_defined": filter.UserDefined,
		"read_only":    filter.ReadOnly,
		"has_data":     filter.HasData,
	}, &names)
	if names == nil {
		names = []string{}
	}
	return names, err
}

// AttributeHasParent reports whether name is a child of a compound attribute.
func (h *Host) AttributeHasParent(ctx context.Context, node, name string) (bool, error) {
	var ok bool
	err := h.client.Call(ctx, "has_parent", map[string]any{"node": node, "name": name}, &ok)
	return ok, err
}

// AttributeIsMulti reports whether name is a multi (indexed) attribute.
func (h *Host) AttributeIsMulti(ctx context.Context, node, name string) (bool, error) {
	var ok bool
	err := h.client.Call(ctx, "is_multi", map[string]any{"node": node, "name": name}, &ok)
	return ok, err
}

// AttributeType returns the declared type of the plug at path.
func (h *Host) AttributeType(ctx context.Context, node, path string) (string, error) {
	var typ string
	err := h.client.Call(ctx, "type", map[string]any{"node": node, "path": path}, &typ)
	return typ, err
}

// AttributeValue returns the value as decoded from JSON: numbers are json.Number,
// sequences []any.
func (h *Host) AttributeValue(ctx context.Context, node, path string) (any, error) {
	var v any
	if err := h.client.Call(ctx, "value", map[string]any{"node": node, "path": path}, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// ArraySize returns the number of logical indices of the plug at path.
func (h *Host) ArraySize(ctx context.Context, node, path string) (int, error) {
	var n json.Number
	if err := h.client.Call(ctx, "size", map[string]any{"node": node, "path": path}, &n); err != nil {
		return 0, err
	}
	size, err := n.Int64()
	if err != nil {
		return 0, err
	}
	return int(size), nil
}

// ListChildAttributes lists the child attributes below the plug at path.
func (h *Host) ListChildAttributes(ctx context.Context, node, path string) ([]string, error) {
	var names []string
	err := h.client.Call(ctx, "children", map[string]any{"node": node, "path": path}, &names)
	return names, err
}

// CreateMarker creates a space locator placed in world space.
func (h *Host) CreateMarker(ctx context.Context, p domain.Placement) (string, error) {
	req := map[string]any{}
	switch p.Kind {
	case domain.MarkerTransform:
		req["matrix"] = p.Matrix[:]
	default:
		req["translation"] = p.Translation[:]
	}
	var name string
	err := h.client.Call(ctx, "create_marker", req, &name)
	return name, err
}

// Select replaces the scene selection with names.
func (h *Host) Select(ctx context.Context, names []string) error {
	return h.client.Call(ctx, "select", map[string]any{"names": names}, nil)
}

// SelectedGraphs returns the graph shapes under the current selection.
func (h *Host) SelectedGraphs(ctx context.Context) ([]string, error) {
	var names []string
	err := h.client.Call(ctx, "selected_graphs", nil, &names)
	return names, err
}
