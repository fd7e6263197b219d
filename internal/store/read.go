package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/cfgset/internal/ir"
)

// SetSummary describes one stored set.
type SetSummary struct {
	ID        uuid.UUID `json:"id"`
	Digest    string    `json:"digest"`
	CFGCount  int       `json:"cfg_count"`
	IRVersion string    `json:"ir_version"`
}

// LoadSet reads a stored set in set order.
// Returns sql.ErrNoRows if the set does not exist.
func (s *Store) LoadSet(ctx context.Context, id uuid.UUID) (ir.CFGSetRecord, error) {
	return loadRecord(ctx, s.db, id)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadRecord(ctx context.Context, q querier, id uuid.UUID) (ir.CFGSetRecord, error) {
	var exists int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM cfg_sets WHERE id = ?`, id.String()).Scan(&exists)
	if err != nil {
		return ir.CFGSetRecord{}, err
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, address, procedure_name
		FROM cfgs
		WHERE set_id = ?
		ORDER BY position ASC
	`, id.String())
	if err != nil {
		return ir.CFGSetRecord{}, fmt.Errorf("query cfgs: %w", err)
	}
	defer rows.Close()

	rec := ir.CFGSetRecord{ID: id, CFGs: []ir.CFGRecord{}}
	for rows.Next() {
		c, err := scanCFG(rows)
		if err != nil {
			return ir.CFGSetRecord{}, err
		}
		rec.CFGs = append(rec.CFGs, c)
	}
	if err := rows.Err(); err != nil {
		return ir.CFGSetRecord{}, fmt.Errorf("iterate cfgs: %w", err)
	}

	return rec, nil
}

// ListSets returns a summary of every stored set, ordered by id.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListSets(ctx context.Context) ([]SetSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, digest, cfg_count, ir_version
		FROM cfg_sets
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sets: %w", err)
	}
	defer rows.Close()

	sets := []SetSummary{}
	for rows.Next() {
		var (
			sum SetSummary
			id  string
		)
		if err := rows.Scan(&id, &sum.Digest, &sum.CFGCount, &sum.IRVersion); err != nil {
			return nil, fmt.Errorf("scan set: %w", err)
		}
		if sum.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("scan set: id %q: %w", id, err)
		}
		sets = append(sets, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sets: %w", err)
	}

	return sets, nil
}

// FindCFGByAddress returns the stored CFG at ea in the given set.
// A missing CFG is reported with ok=false, not an error.
func (s *Store) FindCFGByAddress(ctx context.Context, setID uuid.UUID, ea ir.EA) (rec ir.CFGRecord, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, address, procedure_name
		FROM cfgs
		WHERE set_id = ? AND address = ?
	`, setID.String(), ea.String())
	return scanOptionalCFG(row)
}

// FindCFGByName returns the first CFG in set order whose procedure name
// equals name byte for byte. Unnamed CFGs never match. A missing CFG is reported with ok=false.
func (s *Store) FindCFGByName(ctx context.Context, setID uuid.UUID, name string) (rec ir.CFGRecord, ok bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, address, procedure_name
		FROM cfgs
		WHERE set_id = ? AND procedure_name = ?
		ORDER BY position ASC
		LIMIT 1
	`, setID.String(), name)
	return scanOptionalCFG(row)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCFG(sc scanner) (ir.CFGRecord, error) {
	var (
		id, address string
		name        sql.NullString
	)
	if err := sc.Scan(&id, &address, &name); err != nil {
		return ir.CFGRecord{}, fmt.Errorf("scan cfg: %w", err)
	}

	var (
		rec ir.CFGRecord
		err error
	)
	if rec.ID, err = uuid.Parse(id); err != nil {
		return ir.CFGRecord{}, fmt.Errorf("scan cfg: id %q: %w", id, err)
	}
	if rec.Address, err = ir.ParseEA(address); err != nil {
		return ir.CFGRecord{}, fmt.Errorf("scan cfg: %w", err)
	}
	if name.Valid {
		n := name.String
		rec.ProcedureName = &n
	}
	return rec, nil
}

func scanOptionalCFG(row *sql.Row) (ir.CFGRecord, bool, error) {
	rec, err := scanCFG(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.CFGRecord{}, false, nil
	}
	if err != nil {
		return ir.CFGRecord{}, false, err
	}
	return rec, true, nil
}
