package ports

import (
	"context"

	"github.com/aretw0/portscope/pkg/domain"
)

// AttributeFilter narrows ListAttributes. A true field requires the property.
type AttributeFilter struct {
	UserDefined bool
	ReadOnly    bool
	HasData     bool
}

// GraphHost is the read side of the host application's attribute graph.
// Node names are opaque; attribute paths follow domain.Path ("out[2].values[0]").
//
// Implementations return domain.ErrNodeNotFound (wrapped) when the node does not exist
// and domain.ErrEvaluation when a plug fails to compute.
type GraphHost interface {
	// AttributeExists reports whether the node has an attribute with the given name.
	AttributeExists(ctx context.Context, node, name string) (bool, error)

	// ListAttributes returns attribute names matching the filter, in host order.
	ListAttributes(ctx context.Context, node string, filter AttributeFilter) ([]string, error)

	// AttributeHasParent reports whether the attribute is the child of a compound attribute.
	AttributeHasParent(ctx context.Context, node, name string) (bool, error)

	// AttributeIsMulti reports whether the attribute is multi-indexed (an array).
	AttributeIsMulti(ctx context.Context, node, name string) (bool, error)

	// AttributeType returns the type tag of the plug at path.
	AttributeType(ctx context.Context, node, path string) (string, error)

	// AttributeValue reads the raw value of the plug at path.
	AttributeValue(ctx context.Context, node, path string) (any, error)

	// ArraySize returns the number of logical elements of the array plug at path.
	ArraySize(ctx context.Context, node, path string) (int, error)

	// ListChildAttributes returns the names of the child attributes of the plug at path,
	// excluding the plug itself.
	ListChildAttributes(ctx context.Context, node, path string) ([]string, error)
}

// MarkerFactory creates spatial markers (locators) in the host scene.
type MarkerFactory interface {
	// CreateMarker creates one marker at the placement and returns its name.
	CreateMarker(ctx context.Context, placement domain.Placement) (string, error)
}

// Host is a graph host that can also author markers.
type Host interface {
	GraphHost
	MarkerFactory
}

// Selector is implemented by hosts that can change the scene selection.
type Selector interface {
	Select(ctx context.Context, names []string) error
}

// SelectionSource is implemented by hosts that can report the graph nodes
// under the current scene selection.
type SelectionSource interface {
	SelectedGraphs(ctx context.Context) ([]string, error)
}
