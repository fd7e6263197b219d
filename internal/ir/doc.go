// Package ir provides the address and CFG-ownership core of the binary IR.
//
// This package contains the data model only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - EA is a plain uint64 value type; every bit pattern is a valid address
//   - A CFGSet holds at most one CFG per anchor address
//   - CFGs are created only by their CFGSet (CreateCFG, Restore) and never leave it
//   - Lookups report absence with nil, never with an error or panic
//   - Nothing here is safe for concurrent use; callers serialize access
//   - All JSON and YAML tags use snake_case
package ir
