package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/cfgset/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stamped into PRAGMA user_version.
//
//	1  cfg_sets.digest hashed the canonical JSON of the set
//	2  cfg_sets.digest hashes the length-prefixed record (ir.Digest)
const schemaVersion = 2

// Store persists CFG sets in one SQLite file: a cfg_sets row per set and
// a cfgs row per CFG, keyed by position so set order survives.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path (":memory:" works too),
// creates missing tables and brings older databases up to schemaVersion.
// Opening an already current database changes nothing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection: SQLite serializes writers anyway, and ":memory:"
	// databases live only as long as their connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initialize(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database. Closing a zero Store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initialize(ctx context.Context, db *sql.DB) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return migrate(ctx, db)
}

// migrate upgrades the database in one transaction. Version 0 is a file
// schema.sql has just created; it has nothing to convert.
func migrate(ctx context.Context, db *sql.DB) (err error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch {
	case version == schemaVersion:
		return nil
	case version > schemaVersion:
		return fmt.Errorf("schema version %d is newer than supported version %d", version, schemaVersion)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if version == 1 {
		if err = rehashDigests(ctx, tx); err != nil {
			return fmt.Errorf("migrate to v2: %w", err)
		}
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("migrate: stamp version: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit: %w", err)
	}
	if version > 0 {
		slog.Info("database migrated", "from", version, "to", schemaVersion)
	}
	return nil
}

// rehashDigests recomputes every stored digest from the stored rows.
func rehashDigests(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM cfg_sets`)
	if err != nil {
		return fmt.Errorf("list sets: %w", err)
	}
	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			rows.Close()
			return fmt.Errorf("list sets: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			rows.Close()
			return fmt.Errorf("list sets: id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return fmt.Errorf("list sets: %w", err)
	}

	for _, id := range ids {
		rec, err := loadRecord(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("set %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE cfg_sets SET digest = ? WHERE id = ?`, ir.Digest(rec), id.String()); err != nil {
			return fmt.Errorf("set %s: update digest: %w", id, err)
		}
	}
	return nil
}

// pragma reads a PRAGMA value as text.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return value, nil
}
