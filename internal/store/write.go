package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/cfgset/internal/ir"
)

// SaveSet stores rec, replacing any previous contents of the same set.
//
// The write is one transaction: either every CFG row is replaced or
// nothing changes. When the stored digest already equals rec's digest the
// save is skipped and changed is false; the digest covers every ID,
// address and name byte, so equal digests mean equal contents.
//
// A record with two CFGs at the same address violates UNIQUE(set_id,
// address) and is rejected.
func (s *Store) SaveSet(ctx context.Context, rec ir.CFGSetRecord) (changed bool, err error) {
	digest := ir.Digest(rec)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("save set: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var stored string
	err = tx.QueryRowContext(ctx, `SELECT digest FROM cfg_sets WHERE id = ?`, rec.ID.String()).Scan(&stored)
	switch {
	case err == nil && stored == digest:
		slog.Debug("set unchanged, skipping save", "set_id", rec.ID, "digest", digest)
		return false, tx.Commit()
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("save set: read digest: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cfg_sets (id, digest, cfg_count, ir_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			digest = excluded.digest,
			cfg_count = excluded.cfg_count,
			ir_version = excluded.ir_version
	`, rec.ID.String(), digest, len(rec.CFGs), ir.IRVersion)
	if err != nil {
		return false, fmt.Errorf("save set: write set row: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cfgs WHERE set_id = ?`, rec.ID.String()); err != nil {
		return false, fmt.Errorf("save set: clear cfgs: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cfgs (set_id, position, id, address, procedure_name)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return false, fmt.Errorf("save set: prepare: %w", err)
	}
	defer stmt.Close()

	for i, c := range rec.CFGs {
		var name sql.NullString
		if c.ProcedureName != nil {
			name = sql.NullString{String: *c.ProcedureName, Valid: true}
		}
		if _, err = stmt.ExecContext(ctx, rec.ID.String(), i, c.ID.String(), c.Address.String(), name); err != nil {
			return false, fmt.Errorf("save set: cfg %d at %s: %w", i, c.Address, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("save set: commit: %w", err)
	}

	slog.Info("set saved", "set_id", rec.ID, "cfgs", len(rec.CFGs), "digest", digest)
	return true, nil
}
