package ir

import (
	"github.com/google/uuid"
)

// Node is the identity capability shared by IR entities.
// A node has a stable UUID and, once attached, a parent node.
type Node interface {
	ID() uuid.UUID
	Parent() Node
}

// nodeBase supplies the Node methods to embedding types.
type nodeBase struct {
	id     uuid.UUID
	parent Node
}

// ID returns the node's UUID.
func (n *nodeBase) ID() uuid.UUID {
	return n.id
}

// Parent returns the owning node, or nil for a root.
func (n *nodeBase) Parent() Node {
	return n.parent
}

// IDGenerator produces node identities.
type IDGenerator interface {
	NewID() uuid.UUID
}

// UUIDv7Generator generates time-sortable UUIDv7 node identities.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// NewID returns a fresh UUIDv7. Panics only if the system entropy source fails.
func (UUIDv7Generator) NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// Registry tracks live nodes by UUID.
//
// It is the bookkeeping side of node identity: containers register
// themselves and their children when created and deregister on Release.
// A Registry is not safe for concurrent use.
type Registry struct {
	nodes map[uuid.UUID]Node
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[uuid.UUID]Node)}
}

// Register records n under its ID, replacing any previous entry.
func (r *Registry) Register(n Node) {
	r.nodes[n.ID()] = n
}

// Deregister removes the node with the given ID. Unknown IDs are ignored.
func (r *Registry) Deregister(id uuid.UUID) {
	delete(r.nodes, id)
}

// Lookup returns the live node with the given ID.
func (r *Registry) Lookup(id uuid.UUID) (Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	return len(r.nodes)
}
