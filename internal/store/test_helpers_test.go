package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/cfgset/internal/ir"
	"github.com/roach88/cfgset/internal/testutil"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSet builds a set with deterministic IDs:
// set 1; 0x401000 "main" 2; 0x400000 unnamed 3; 0x402000 "" 4.
func createTestSet(prefix uint64) *ir.CFGSet {
	s := ir.NewCFGSet(ir.WithIDGenerator(testutil.NewSequentialIDGenerator(prefix)))
	s.CreateCFG(ir.NewEA(0x401000)).SetProcedureName("main")
	s.CreateCFG(ir.NewEA(0x400000))
	s.CreateCFG(ir.NewEA(0x402000)).SetProcedureName("")
	return s
}
