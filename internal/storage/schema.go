package storage

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is stored in the meta table of every store.
const SchemaVersion = "1"

// CreateSchema creates all tables and indexes of the snapshot store.
// Must be called with SQLite PRAGMA foreign_keys = ON so that deleting a snapshot
// cascades to its symbols and edges.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"meta", createMetaTable},
		{"snapshots", createSnapshotsTable},
		{"symbols", createSymbolsTable},
		{"edges", createEdgesTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	if _, err := tx.Exec(`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', ?)`, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion returns the recorded schema version, or "0" for a database
// that has never been initialized.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='meta'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check meta existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in meta")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

const createMetaTable = `
CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
)
`

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS snapshots (
    id TEXT PRIMARY KEY,                         -- UUID
    file_path TEXT NOT NULL,                     -- unit path as given to the extractor
    language TEXT NOT NULL,
    content_hash TEXT NOT NULL,                  -- xxhash64 of the source, hex
    entity_count INTEGER NOT NULL DEFAULT 0,
    diagnostic_count INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,                    -- RFC 3339
    document TEXT NOT NULL                       -- serialized symbol table (JSON)
)
`

const createSymbolsTable = `
CREATE TABLE IF NOT EXISTS symbols (
    snapshot_id TEXT NOT NULL,
    symbol_id TEXT NOT NULL,                     -- stable identifier
    kind TEXT NOT NULL,
    name TEXT NOT NULL,
    qualified_name TEXT NOT NULL,
    signature TEXT NOT NULL DEFAULT '',
    modifiers TEXT NOT NULL DEFAULT '',          -- comma separated
    depth INTEGER NOT NULL DEFAULT 0,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    start_byte INTEGER NOT NULL,
    end_byte INTEGER NOT NULL,
    PRIMARY KEY (snapshot_id, symbol_id),
    FOREIGN KEY (snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
)
`

const createEdgesTable = `
CREATE TABLE IF NOT EXISTS edges (
    snapshot_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    from_id TEXT NOT NULL,
    to_id TEXT NOT NULL,
    FOREIGN KEY (snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
)
`

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_snapshots_file ON snapshots(file_path, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name)`,
	`CREATE INDEX IF NOT EXISTS idx_symbols_qualified ON symbols(qualified_name)`,
	`CREATE INDEX IF NOT EXISTS idx_symbols_kind ON symbols(kind)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_snapshot ON edges(snapshot_id)`,
}
