package registry

import (
	"sort"
	"sync"

	"github.com/aretw0/varia/pkg/domain"
)

// Registry holds the live forest of addressable nodes.
// Every operation is O(1) against a map keyed by node id.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]*domain.Node
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nodes: make(map[string]*domain.Node),
	}
}

// Register adds a node to the registry.
// If a node with the same id exists, it is overwritten and Register reports true.
func (r *Registry) Register(id, parentID, initialVariant string) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, replaced = r.nodes[id]
	r.nodes[id] = &domain.Node{
		ID:             id,
		ParentID:       parentID,
		LogicalVariant: initialVariant,
	}
	return replaced
}

// Unregister removes a node. It reports whether the node existed.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nodes[id]; !ok {
		return false
	}
	delete(r.nodes, id)
	return true
}

// Get returns a copy of the node.
func (r *Registry) Get(id string) (domain.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[id]
	if !ok {
		return domain.Node{}, false
	}
	return *n, true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.nodes[id]
	return ok
}

// LogicalVariant returns the persistent variant, or "" when the node is unknown.
func (r *Registry) LogicalVariant(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.nodes[id]; ok {
		return n.LogicalVariant
	}
	return ""
}

// VisualVariant returns the overlay, falling back to the logical variant.
func (r *Registry) VisualVariant(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n, ok := r.nodes[id]; ok {
		return n.Effective()
	}
	return ""
}

// SetLogicalVariant replaces the persistent variant. Unknown ids are ignored.
func (r *Registry) SetLogicalVariant(id, variant string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[id]
	if ok {
		n.LogicalVariant = variant
	}
	return ok
}

// SetVisualVariant sets the overlay; an empty variant clears it. Unknown ids are ignored.
func (r *Registry) SetVisualVariant(id, variant string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[id]
	if ok {
		n.VisualVariant = variant
	}
	return ok
}

// Nodes returns a snapshot of every node, sorted by id.
func (r *Registry) Nodes() []domain.Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}
