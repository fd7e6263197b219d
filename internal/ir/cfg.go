package ir

import "github.com/google/uuid"

// CFG is the control-flow graph of one procedure, anchored at the
// procedure's entry address.
//
// CFGs are created and owned by a CFGSet; the anchor address never changes
// after construction. The graph body (blocks, edges) lives elsewhere.
type CFG struct {
	nodeBase
	address       EA
	procedureName string
	named         bool
}

func newCFG(set *CFGSet, id uuid.UUID, ea EA) *CFG {
	return &CFG{
		nodeBase: nodeBase{id: id, parent: set},
		address:  ea,
	}
}

// Address returns the anchor address.
func (c *CFG) Address() EA {
	return c.address
}

// ProcedureName returns the procedure name and whether one has been set.
func (c *CFG) ProcedureName() (string, bool) {
	return c.procedureName, c.named
}

// SetProcedureName assigns the procedure name. The name is kept byte for
// byte; it need not be valid UTF-8. Uniqueness across a set is the
// caller's responsibility.
func (c *CFG) SetProcedureName(name string) {
	c.procedureName = name
	c.named = true
}

// ClearProcedureName removes the procedure name, making the CFG
// unreachable by name lookup.
func (c *CFG) ClearProcedureName() {
	c.procedureName = ""
	c.named = false
}
