package storage

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/mvp-joe/semantic/internal/symbols"
)

// SymbolQuery filters FindSymbols. Empty fields match everything. Name matches the
// simple or the qualified name; '*' is a wildcard.
type SymbolQuery struct {
	Name     string
	Kind     symbols.Kind
	FilePath string
	Language string
	// AllSnapshots searches history too; by default only the newest snapshot of
	// each file is searched.
	AllSnapshots bool
	Limit        uint64
}

// SymbolRecord is one stored entity.
type SymbolRecord struct {
	SnapshotID    string
	FilePath      string
	Language      string
	ID            string
	Kind          symbols.Kind
	Name          string
	QualifiedName string
	Signature     string
	Modifiers     symbols.Modifiers
	Depth         int
	StartLine     int
	EndLine       int
}

// latestSnapshots selects the newest snapshot ID per file.
const latestSnapshots = `s.id IN (
    SELECT id FROM snapshots s2
    WHERE s2.file_path = s.file_path
    ORDER BY s2.created_at DESC, s2.rowid DESC
    LIMIT 1
)`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, `%`)

// likePattern turns a '*' wildcard into a LIKE pattern. '%' and '_' match literally.
func likePattern(name string) string {
	return likeEscaper.Replace(name)
}

// FindSymbols searches stored entities, ordered by file then position.
func (s *Store) FindSymbols(ctx context.Context, q SymbolQuery) ([]SymbolRecord, error) {
	query := sq.Select(
		"y.snapshot_id", "s.file_path", "s.language",
		"y.symbol_id", "y.kind", "y.name", "y.qualified_name", "y.signature", "y.modifiers",
		"y.depth", "y.start_line", "y.end_line",
	).
		From("symbols y").
		Join("snapshots s ON s.id = y.snapshot_id").
		OrderBy("s.file_path", "s.created_at DESC", "y.start_byte", "y.end_byte DESC")

	if q.Name != "" {
		if strings.Contains(q.Name, "*") {
			pattern := likePattern(q.Name)
			query = query.Where(sq.Or{
				sq.Expr(`y.name LIKE ? ESCAPE '\'`, pattern),
				sq.Expr(`y.qualified_name LIKE ? ESCAPE '\'`, pattern),
			})
		} else {
			query = query.Where(sq.Or{sq.Eq{"y.name": q.Name}, sq.Eq{"y.qualified_name": q.Name}})
		}
	}
	if q.Kind != "" {
		query = query.Where(sq.Eq{"y.kind": string(q.Kind)})
	}
	if q.FilePath != "" {
		query = query.Where(sq.Eq{"s.file_path": q.FilePath})
	}
	if q.Language != "" {
		query = query.Where(sq.Eq{"s.language": q.Language})
	}
	if !q.AllSnapshots {
		query = query.Where(latestSnapshots)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var out []SymbolRecord
	for rows.Next() {
		var r SymbolRecord
		var kind, mods string
		if err := rows.Scan(
			&r.SnapshotID, &r.FilePath, &r.Language,
			&r.ID, &kind, &r.Name, &r.QualifiedName, &r.Signature, &mods,
			&r.Depth, &r.StartLine, &r.EndLine,
		); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		r.Kind = symbols.Kind(kind)
		if mods != "" {
			for _, m := range strings.Split(mods, ",") {
				r.Modifiers = append(r.Modifiers, symbols.Modifier(m))
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
