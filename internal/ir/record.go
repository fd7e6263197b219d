package ir

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// CFGRecord is the serializable state of one CFG.
// ProcedureName is nil when the CFG was never named.
type CFGRecord struct {
	ID            uuid.UUID `json:"id" yaml:"id"`
	Address       EA        `json:"address" yaml:"address"`
	ProcedureName *string   `json:"procedure_name,omitempty" yaml:"procedure_name,omitempty"`
}

// CFGSetRecord is the serializable state of a CFGSet. CFGs appear in set order.
type CFGSetRecord struct {
	ID   uuid.UUID   `json:"id" yaml:"id"`
	CFGs []CFGRecord `json:"cfgs" yaml:"cfgs"`
}

// Record captures the CFG's serializable state.
func (c *CFG) Record() CFGRecord {
	rec := CFGRecord{ID: c.id, Address: c.address}
	if name, ok := c.ProcedureName(); ok {
		rec.ProcedureName = &name
	}
	return rec
}

// Walk calls visit for every CFG in set order, stopping at the first error.
func (s *CFGSet) Walk(visit func(CFGRecord) error) error {
	for i, c := range s.contents {
		if err := visit(c.Record()); err != nil {
			return fmt.Errorf("walk cfg %d at %s: %w", i, c.address, err)
		}
	}
	return nil
}

// Record returns the set's serializable state.
// The CFGs slice is never nil so empty sets encode as [].
func (s *CFGSet) Record() CFGSetRecord {
	rec := CFGSetRecord{ID: s.id, CFGs: make([]CFGRecord, 0, len(s.contents))}
	for _, c := range s.contents {
		rec.CFGs = append(rec.CFGs, c.Record())
	}
	return rec
}

// ValidateUTF8 returns an error wrapping ErrInvalidUTF8 for the first
// procedure name in rec that is not valid UTF-8. Text formats cannot carry
// such names.
func ValidateUTF8(rec CFGSetRecord) error {
	for i, c := range rec.CFGs {
		if c.ProcedureName != nil && !utf8.ValidString(*c.ProcedureName) {
			return fmt.Errorf("cfgs[%d] at %s: procedure_name: %w: %q", i, c.Address, ErrInvalidUTF8, *c.ProcedureName)
		}
	}
	return nil
}

// Restore rebuilds a CFGSet from a record, preserving IDs, addresses,
// names and order. A record with a nil set ID gets a fresh one; CFG
// records with a nil ID get fresh IDs too.
//
// Returns an error if two records share an address, or if two nodes
// (the set included) share a non-nil ID.
func Restore(rec CFGSetRecord, opts ...Option) (*CFGSet, error) {
	addrs := make(map[EA]int, len(rec.CFGs))
	ids := make(map[uuid.UUID]int, len(rec.CFGs))
	for i, c := range rec.CFGs {
		if j, dup := addrs[c.Address]; dup {
			return nil, fmt.Errorf("restore: cfgs[%d] and cfgs[%d] share address %s", j, i, c.Address)
		}
		addrs[c.Address] = i
		if c.ID == uuid.Nil {
			continue
		}
		if c.ID == rec.ID {
			return nil, fmt.Errorf("restore: cfgs[%d] reuses the set id %s", i, c.ID)
		}
		if j, dup := ids[c.ID]; dup {
			return nil, fmt.Errorf("restore: cfgs[%d] and cfgs[%d] share id %s", j, i, c.ID)
		}
		ids[c.ID] = i
	}

	if rec.ID != uuid.Nil {
		opts = append(opts, withID(rec.ID))
	}
	s := NewCFGSet(opts...)
	for _, c := range rec.CFGs {
		id := c.ID
		if id == uuid.Nil {
			id = s.newID()
		}
		cfg := s.insert(id, c.Address)
		if c.ProcedureName != nil {
			cfg.SetProcedureName(*c.ProcedureName)
		}
	}
	return s, nil
}
