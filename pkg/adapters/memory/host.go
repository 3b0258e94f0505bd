package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/aretw0/portscope/pkg/domain"
	"github.com/aretw0/portscope/pkg/ports"
)

// Attribute describes one attribute of an in-memory graph node.
type Attribute struct {
	Name     string    `yaml:"name"`
	Type     string    `yaml:"type"`
	Parent   string    `yaml:"parent,omitempty"`
	Multi    bool      `yaml:"multi,omitempty"`
	Children []string  `yaml:"children,omitempty"`
	Value    any       `yaml:"value,omitempty"`
	Elements []Element `yaml:"elements,omitempty"`

	// Flags default to true when omitted in a scene file.
	UserDefined *bool `yaml:"user_defined,omitempty"`
	ReadOnly    *bool `yaml:"read_only,omitempty"`
	HasData     *bool `yaml:"has_data,omitempty"`

	// EvalError makes a plain read of the attribute fail with domain.ErrEvaluation.
	EvalError string `yaml:"eval_error,omitempty"`
}

// Element is one logical index of a multi attribute.
type Element struct {
	Type     string               `yaml:"type,omitempty"`
	Value    any                  `yaml:"value,omitempty"`
	Children map[string][]Element `yaml:"children,omitempty"`
}

type node struct {
	order []string
	attrs map[string]*Attribute
}

// Host implements ports.Host over an in-memory scene.
// Safe for concurrent use.
type Host struct {
	mu        sync.RWMutex
	nodes     map[string]*node
	markers   []domain.Placement
	selected  []string
	selection []string
}

var (
	_ ports.Host            = (*Host)(nil)
	_ ports.Selector        = (*Host)(nil)
	_ ports.SelectionSource = (*Host)(nil)
)

// NewHost creates an empty in-memory host.
func NewHost() *Host {
	return &Host{nodes: make(map[string]*node)}
}

// AddNode registers (or replaces) a graph node with its attributes, in declaration order.
func (h *Host) AddNode(name string, attrs ...Attribute) {
	n := &node{attrs: make(map[string]*Attribute, len(attrs))}
	for _, a := range attrs {
		attr := a
		n.order = append(n.order, a.Name)
		n.attrs[a.Name] = &attr
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nodes[name] = n
}

// RemoveNode deletes a graph node, as if it was deleted from the scene.
func (h *Host) RemoveNode(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.nodes, name)
}

// SetSelection sets the graph nodes reported by SelectedGraphs.
func (h *Host) SetSelection(nodes ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selection = append([]string(nil), nodes...)
}

// Markers returns the placements of every marker created so far.
func (h *Host) Markers() []domain.Placement {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]domain.Placement(nil), h.markers...)
}

// Selected returns the names passed to the last Select call.
func (h *Host) Selected() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]string(nil), h.selected...)
}

func (h *Host) node(name string) (*node, error) {
	n, ok := h.nodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, name)
	}
	return n, nil
}

func (n *node) attr(nodeName, name string) (*Attribute, error) {
	a, ok := n.attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: no attribute %s.%s", domain.ErrHost, nodeName, name)
	}
	return a, nil
}

// AttributeExists reports whether the node has the attribute.
func (h *Host) AttributeExists(ctx context.Context, nodeName, name string) (bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n, err := h.node(nodeName)
	if err != nil {
		return false, err
	}
	_, ok := n.attrs[name]
	return ok, nil
}

// ListAttributes returns the attributes matching filter in declaration order.
func (h *Host) ListAttributes(ctx context.Context, nodeName string, filter ports.AttributeFilter) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n, err := h.node(nodeName)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(n.order))
	for _, name := range n.order {
		a := n.attrs[name]
		if filter.UserDefined && !flag(a.UserDefined) {
			continue
		}
		if filter.ReadOnly && !flag(a.ReadOnly) {
			continue
		}
		if filter.HasData && !flag(a.HasData) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// AttributeHasParent reports whether the attribute belongs to a compound parent.
func (h *Host) AttributeHasParent(ctx context.Context, nodeName, name string) (bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, err := h.lookup(nodeName, name)
	if err != nil {
		return false, err
	}
	return a.Parent != "", nil
}

// AttributeIsMulti reports whether the attribute is an array.
func (h *Host) AttributeIsMulti(ctx context.Context, nodeName, name string) (bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, err := h.lookup(nodeName, name)
	if err != nil {
		return false, err
	}
	return a.Multi, nil
}

// AttributeType returns the element type when set, otherwise the attribute type.
func (h *Host) AttributeType(ctx context.Context, nodeName, path string) (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, err := h.resolve(nodeName, path)
	if err != nil {
		return "", err
	}
	if p.element != nil && p.element.Type != "" {
		return p.element.Type, nil
	}
	return p.attr.Type, nil
}

// AttributeValue returns a deep copy of the plug's value.
// Reading a whole multi attribute returns the list of its element values.
func (h *Host) AttributeValue(ctx context.Context, nodeName, path string) (any, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, err := h.resolve(nodeName, path)
	if err != nil {
		return nil, err
	}
	switch {
	case p.element != nil:
		return deepCopy(p.element.Value), nil
	case p.top && p.attr.EvalError != "":
		return nil, fmt.Errorf("%w: %s", domain.ErrEvaluation, p.attr.EvalError)
	case p.attr.Multi:
		values := make([]any, len(p.elements))
		for i, e := range p.elements {
			values[i] = deepCopy(e.Value)
		}
		return values, nil
	default:
		return deepCopy(p.attr.Value), nil
	}
}

// ArraySize returns the element count of an array plug.
func (h *Host) ArraySize(ctx context.Context, nodeName, path string) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, err := h.resolve(nodeName, path)
	if err != nil {
		return 0, err
	}
	if p.element != nil || !p.attr.Multi {
		return 0, fmt.Errorf("%w: %s.%s is not an array plug", domain.ErrHost, nodeName, path)
	}
	return len(p.elements), nil
}

// ListChildAttributes returns the child attribute names of the plug's attribute.
func (h *Host) ListChildAttributes(ctx context.Context, nodeName, path string) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, err := h.resolve(nodeName, path)
	if err != nil {
		return nil, err
	}
	return append([]string{}, p.attr.Children...), nil
}

// CreateMarker records a marker and names it like the host would ("locator1", ...).
func (h *Host) CreateMarker(ctx context.Context, placement domain.Placement) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.markers = append(h.markers, placement)
	return "locator" + strconv.Itoa(len(h.markers)), nil
}

// Select records the selection.
func (h *Host) Select(ctx context.Context, names []string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selected = append([]string(nil), names...)
	return nil
}

// SelectedGraphs returns the nodes set with SetSelection that still exist.
func (h *Host) SelectedGraphs(ctx context.Context) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []string
	for _, name := range h.selection {
		if _, ok := h.nodes[name]; ok {
			out = append(out, name)
		}
	}
	return out, nil
}

func (h *Host) lookup(nodeName, name string) (*Attribute, error) {
	n, err := h.node(nodeName)
	if err != nil {
		return nil, err
	}
	return n.attr(nodeName, name)
}

// plug is a resolved attribute path.
type plug struct {
	attr     *Attribute
	elements []Element // sibling elements of the array the path points into
	element  *Element  // set when the path ends on an index
	top      bool
}

func (h *Host) resolve(nodeName, path string) (plug, error) {
	n, err := h.node(nodeName)
	if err != nil {
		return plug{}, err
	}
	segments, err := domain.ParsePath(path)
	if err != nil {
		return plug{}, fmt.Errorf("%w: %v", domain.ErrHost, err)
	}

	var cur plug
	for i, seg := range segments {
		a, err := n.attr(nodeName, seg.Name)
		if err != nil {
			return plug{}, err
		}
		if i == 0 {
			if a.Parent != "" {
				return plug{}, fmt.Errorf("%w: %s is a child attribute", domain.ErrHost, seg.Name)
			}
			cur = plug{attr: a, elements: a.Elements, top: len(segments) == 1 && !seg.Indexed}
		} else {
			if cur.element == nil || a.Parent != cur.attr.Name {
				return plug{}, fmt.Errorf("%w: %s is not a child of %s", domain.ErrHost, seg.Name, path)
			}
			cur = plug{attr: a, elements: cur.element.Children[seg.Name]}
		}
		if seg.Indexed {
			if !a.Multi {
				return plug{}, fmt.Errorf("%w: %s is not multi-indexed", domain.ErrHost, seg.Name)
			}
			if seg.Index >= len(cur.elements) {
				return plug{}, fmt.Errorf("%w: index %d out of range for %s", domain.ErrHost, seg.Index, seg.Name)
			}
			cur.element = &cur.elements[seg.Index]
		}
	}
	return cur, nil
}

func flag(b *bool) bool {
	return b == nil || *b
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = deepCopy(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = deepCopy(e)
		}
		return out
	default:
		return x
	}
}
