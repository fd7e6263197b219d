// Package store provides SQLite-backed durable storage for CFG sets.
//
// A set is stored as one cfg_sets row plus one cfgs row per CFG:
//   - cfg_sets: set id, content digest, CFG count, record schema version
//   - cfgs: owning set, position in set order, CFG id, address, name
//
// # Invariants at rest
//
//   - UNIQUE(set_id, address): at most one CFG per address per set
//   - position preserves set order; reads use ORDER BY position ASC
//   - procedure_name is NULL for unnamed CFGs, so "" and NULL stay distinct
//   - address is the lowercase hex form of ir.EA, so all 64-bit values fit
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Digests are computed by ir.Digest over canonical JSON; a save whose
// digest matches the stored one is skipped.
package store
