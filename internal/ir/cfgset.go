package ir

import (
	"iter"
	"slices"

	"github.com/google/uuid"
)

// CFGSet owns the CFGs of one module, at most one per anchor address.
//
// Lookups report absence with a nil *CFG and never fail. CreateCFG is
// get-or-insert: asking twice for the same address yields the same CFG.
// CFGs are never handed out for ownership; callers borrow pointers that
// stay valid for the lifetime of the set.
//
// The zero value is an empty set with a nil ID that draws CFG IDs from
// UUIDv7Generator; use NewCFGSet for an identified set.
//
// A CFGSet is not safe for concurrent use. Callers sharing one across
// goroutines must serialize every call.
type CFGSet struct {
	nodeBase
	contents []*CFG
	byAddr   map[EA]*CFG
	ids      IDGenerator
	registry *Registry
}

// Option configures a CFGSet.
type Option func(*CFGSet)

// WithIDGenerator sets the source of node identities. Defaults to UUIDv7.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *CFGSet) { s.ids = g }
}

// WithRegistry registers the set and every CFG it creates with r.
func WithRegistry(r *Registry) Option {
	return func(s *CFGSet) { s.registry = r }
}

// WithParent attaches the set to an owning node.
func WithParent(p Node) Option {
	return func(s *CFGSet) { s.parent = p }
}

// withID fixes the set's identity; used when restoring from a record.
func withID(id uuid.UUID) Option {
	return func(s *CFGSet) { s.id = id }
}

// NewCFGSet returns an empty set.
func NewCFGSet(opts ...Option) *CFGSet {
	s := &CFGSet{
		byAddr: make(map[EA]*CFG),
		ids:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == uuid.Nil {
		s.id = s.ids.NewID()
	}
	if s.registry != nil {
		s.registry.Register(s)
	}
	return s
}

// GetCFG returns the CFG anchored at ea, or nil.
func (s *CFGSet) GetCFG(ea EA) *CFG {
	return s.byAddr[ea]
}

// GetCFGByName returns the first CFG, in set order, whose procedure name
// equals name byte for byte. CFGs that were never named do not match.
// Returns nil if none does.
func (s *CFGSet) GetCFGByName(name string) *CFG {
	for _, c := range s.contents {
		if n, ok := c.ProcedureName(); ok && n == name {
			return c
		}
	}
	return nil
}

// CreateCFG returns the CFG anchored at ea, creating and appending it if
// the set has none. An existing CFG is returned untouched.
func (s *CFGSet) CreateCFG(ea EA) *CFG {
	if c, ok := s.byAddr[ea]; ok {
		return c
	}
	return s.insert(s.newID(), ea)
}

func (s *CFGSet) newID() uuid.UUID {
	if s.ids == nil {
		s.ids = UUIDv7Generator{}
	}
	return s.ids.NewID()
}

// insert appends a new CFG; the caller guarantees ea is not present.
func (s *CFGSet) insert(id uuid.UUID, ea EA) *CFG {
	c := newCFG(s, id, ea)
	s.contents = append(s.contents, c)
	if s.byAddr == nil {
		s.byAddr = make(map[EA]*CFG)
	}
	s.byAddr[ea] = c
	if s.registry != nil {
		s.registry.Register(c)
	}
	return c
}

// Size returns the number of CFGs in the set.
func (s *CFGSet) Size() int {
	return len(s.contents)
}

// Empty reports whether the set holds no CFGs.
func (s *CFGSet) Empty() bool {
	return len(s.contents) == 0
}

// CFGs returns the CFGs in creation order. The slice is a copy; changing
// it does not change the set.
func (s *CFGSet) CFGs() []*CFG {
	return slices.Clone(s.contents)
}

// All iterates over the CFGs in creation order with their positions.
func (s *CFGSet) All() iter.Seq2[int, *CFG] {
	return func(yield func(int, *CFG) bool) {
		for i, c := range s.contents {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Release deregisters the set and all of its CFGs from the registry it was
// created with. The set must not be used afterwards.
func (s *CFGSet) Release() {
	if s.registry == nil {
		return
	}
	for _, c := range s.contents {
		s.registry.Deregister(c.id)
	}
	s.registry.Deregister(s.id)
	s.registry = nil
}
