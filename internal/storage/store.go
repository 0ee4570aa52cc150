package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/semantic/internal/symtab"
)

// ErrNotFound is returned when no snapshot exists for a file.
var ErrNotFound = errors.New("snapshot not found")

// timeLayout is fixed width so that created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store persists extracted symbol tables as per-file snapshots in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the store at path. ":memory:" opens a private
// in-memory store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}
	// One connection: an in-memory database lives and dies with it, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SnapshotInfo describes one saved extraction without its table.
type SnapshotInfo struct {
	ID              string
	FilePath        string
	Language        string
	ContentHash     string
	EntityCount     int
	DiagnosticCount int
	CreatedAt       time.Time
}

// Snapshot is a saved extraction with its decoded table.
type Snapshot struct {
	SnapshotInfo
	Table *symtab.Table
}

// Save stores table as the newest snapshot of its file and returns the snapshot ID.
func (s *Store) Save(ctx context.Context, table *symtab.Table, contentHash string) (string, error) {
	if table.Path() == "" {
		return "", fmt.Errorf("cannot save a table without a file path")
	}
	doc, err := table.JSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode table for %s: %w", table.Path(), err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	id := uuid.New().String()
	_, err = sq.Insert("snapshots").
		Columns("id", "file_path", "language", "content_hash", "entity_count", "diagnostic_count", "created_at", "document").
		Values(id, table.Path(), table.Language(), contentHash, table.Len(), len(table.Diagnostics()), s.now().UTC().Format(timeLayout), string(doc)).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to insert snapshot for %s: %w", table.Path(), err)
	}

	if err := insertSymbols(ctx, tx, id, table); err != nil {
		return "", err
	}
	if err := insertEdges(ctx, tx, id, table); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return id, nil
}

func insertSymbols(ctx context.Context, tx *sql.Tx, snapshotID string, table *symtab.Table) error {
	entities := table.Entities()
	if len(entities) == 0 {
		return nil
	}

	// Build the statement once, then reuse it for every row.
	sqlStr, _, err := sq.Insert("symbols").
		Columns("snapshot_id", "symbol_id", "kind", "name", "qualified_name", "signature", "modifiers",
			"depth", "start_line", "end_line", "start_byte", "end_byte").
		Values("", "", "", "", "", "", "", 0, 0, 0, 0, 0).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entities {
		mods := make([]string, 0, len(e.Modifiers))
		for _, m := range e.Modifiers {
			mods = append(mods, string(m))
		}
		_, err := stmt.ExecContext(ctx,
			snapshotID, e.ID, string(e.Kind), e.Name, e.QualifiedName(), e.Signature, strings.Join(mods, ","),
			e.Depth, e.Span.StartLine, e.Span.EndLine, e.Span.StartByte, e.Span.EndByte,
		)
		if err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", e.ID, err)
		}
	}
	return nil
}

func insertEdges(ctx context.Context, tx *sql.Tx, snapshotID string, table *symtab.Table) error {
	edges := table.Edges()
	if len(edges) == 0 {
		return nil
	}

	sqlStr, _, err := sq.Insert("edges").
		Columns("snapshot_id", "kind", "from_id", "to_id").
		Values("", "", "", "").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range edges {
		if _, err := stmt.ExecContext(ctx, snapshotID, string(e.Kind), e.From, e.To); err != nil {
			return fmt.Errorf("failed to insert edge %s %s -> %s: %w", e.Kind, e.From, e.To, err)
		}
	}
	return nil
}

var snapshotColumns = []string{"id", "file_path", "language", "content_hash", "entity_count", "diagnostic_count", "created_at"}

func scanInfo(row sq.RowScanner, extra ...interface{}) (SnapshotInfo, error) {
	var info SnapshotInfo
	var created string
	dest := append([]interface{}{
		&info.ID, &info.FilePath, &info.Language, &info.ContentHash,
		&info.EntityCount, &info.DiagnosticCount, &created,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return info, err
	}
	at, err := time.Parse(timeLayout, created)
	if err != nil {
		return info, fmt.Errorf("snapshot %s has a malformed created_at %q: %w", info.ID, created, err)
	}
	info.CreatedAt = at
	return info, nil
}

// Latest returns the newest snapshot of filePath, or ErrNotFound.
func (s *Store) Latest(ctx context.Context, filePath string) (*Snapshot, error) {
	var doc string
	info, err := scanInfo(
		sq.Select(append(snapshotColumns, "document")...).
			From("snapshots").
			Where(sq.Eq{"file_path": filePath}).
			OrderBy("created_at DESC", "rowid DESC").
			Limit(1).
			RunWith(s.db).
			QueryRowContext(ctx),
		&doc,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot for %s: %w", filePath, err)
	}

	table, err := symtab.Decode([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", info.ID, err)
	}
	return &Snapshot{SnapshotInfo: info, Table: table}, nil
}

// History lists the snapshots of filePath, newest first.
func (s *Store) History(ctx context.Context, filePath string) ([]SnapshotInfo, error) {
	rows, err := sq.Select(snapshotColumns...).
		From("snapshots").
		Where(sq.Eq{"file_path": filePath}).
		OrderBy("created_at DESC", "rowid DESC").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", filePath, err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep snapshots of filePath and returns how many
// were removed. keep <= 0 keeps everything.
func (s *Store) Prune(ctx context.Context, filePath string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	newest := sq.Select("id").
		From("snapshots").
		Where(sq.Eq{"file_path": filePath}).
		OrderBy("created_at DESC", "rowid DESC").
		Limit(uint64(keep))
	sub, args, err := newest.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL: %w", err)
	}

	res, err := sq.Delete("snapshots").
		Where(sq.Eq{"file_path": filePath}).
		Where("id NOT IN ("+sub+")", args...).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots for %s: %w", filePath, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned snapshots: %w", err)
	}
	return int(n), nil
}

// Files lists every file with at least one snapshot, sorted.
func (s *Store) Files(ctx context.Context) ([]string, error) {
	rows, err := sq.Select("DISTINCT file_path").
		From("snapshots").
		OrderBy("file_path").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan file path: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
