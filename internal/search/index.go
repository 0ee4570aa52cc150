package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/symtab"
)

// DefaultLimit applies when Options.Limit is unset.
const DefaultLimit = 20

// Options narrows a search. Zero values match everything.
type Options struct {
	Kind     symbols.Kind
	Language string
	Limit    int
}

// Hit is one matching entity.
type Hit struct {
	FilePath      string       `json:"file"`
	Language      string       `json:"language"`
	ID            string       `json:"id"`
	Kind          symbols.Kind `json:"kind"`
	Name          string       `json:"name"`
	QualifiedName string       `json:"qualifiedName"`
	Signature     string       `json:"signature,omitempty"`
	StartLine     int          `json:"line"`
	Score         float64      `json:"score"`
}

// Index is an in-memory full-text index over the entities of many symbol tables.
// It is safe for concurrent use.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
	docs  map[string][]string // file path -> document IDs
}

var storedFields = []string{"file", "language", "id", "kind", "name", "qualified_name", "signature", "line"}

// New creates an empty index.
func New() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &Index{index: idx, docs: map[string][]string{}}, nil
}

// buildMapping indexes names, qualified names and signatures for text search and
// keeps kind and language as exact-match keywords.
func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	text := func() *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "standard"
		m.Store = true
		m.Index = true
		return m
	}
	keyword := func(index bool) *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "keyword"
		m.Store = true
		m.Index = index
		return m
	}
	line := bleve.NewNumericFieldMapping()
	line.Store = true
	line.Index = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", text())
	doc.AddFieldMappingsAt("qualified_name", text())
	doc.AddFieldMappingsAt("signature", text())
	doc.AddFieldMappingsAt("kind", keyword(true))
	doc.AddFieldMappingsAt("language", keyword(true))
	doc.AddFieldMappingsAt("file", keyword(true))
	doc.AddFieldMappingsAt("id", keyword(false))
	doc.AddFieldMappingsAt("line", line)

	indexMapping.DefaultMapping = doc
	return indexMapping
}

func docID(path, entityID string) string {
	return path + "|" + entityID
}

// Replace indexes every entity of table, dropping whatever was indexed before for
// the same file path.
func (x *Index) Replace(ctx context.Context, table *symtab.Table) error {
	const batchSize = 1000

	x.mu.Lock()
	defer x.mu.Unlock()

	batch := x.index.NewBatch()
	for _, id := range x.docs[table.Path()] {
		batch.Delete(id)
	}

	entities := table.Entities()
	ids := make([]string, 0, len(entities))
	for i, e := range entities {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		id := docID(table.Path(), e.ID)
		doc := map[string]interface{}{
			"file":           table.Path(),
			"language":       table.Language(),
			"id":             e.ID,
			"kind":           string(e.Kind),
			"name":           e.Name,
			"qualified_name": e.QualifiedName(),
			"signature":      e.Signature,
			"line":           float64(e.Span.StartLine),
		}
		if err := batch.Index(id, doc); err != nil {
			return fmt.Errorf("failed to add %s to batch: %w", e.ID, err)
		}
		ids = append(ids, id)

		if batch.Size() >= batchSize {
			if err := x.index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = x.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := x.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}
	x.docs[table.Path()] = ids
	return nil
}

// Remove drops every entity indexed for path.
func (x *Index) Remove(path string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	batch := x.index.NewBatch()
	for _, id := range x.docs[path] {
		batch.Delete(id)
	}
	if err := x.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	delete(x.docs, path)
	return nil
}

// Len returns the number of indexed entities.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n := 0
	for _, ids := range x.docs {
		n += len(ids)
	}
	return n
}

// Search finds entities whose name, qualified name or signature match text. An empty
// text lists everything that passes the filters. Hits are ordered by score.
func (x *Index) Search(ctx context.Context, text string, opts Options) ([]Hit, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var queries []query.Query
	if text = strings.TrimSpace(text); text != "" {
		queries = append(queries, textQuery(text))
	} else {
		queries = append(queries, bleve.NewMatchAllQuery())
	}
	if opts.Kind != "" {
		q := bleve.NewTermQuery(string(opts.Kind))
		q.SetField("kind")
		queries = append(queries, q)
	}
	if opts.Language != "" {
		q := bleve.NewTermQuery(opts.Language)
		q.SetField("language")
		queries = append(queries, q)
	}

	var final query.Query = queries[0]
	if len(queries) > 1 {
		final = bleve.NewConjunctionQuery(queries...)
	}

	req := bleve.NewSearchRequestOptions(final, limit, 0, false)
	req.Fields = storedFields
	// Stable order for equal scores.
	req.SortBy([]string{"-_score", "file", "_id"})

	x.mu.RLock()
	defer x.mu.RUnlock()

	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{Score: h.Score}
		hit.FilePath, _ = h.Fields["file"].(string)
		hit.Language, _ = h.Fields["language"].(string)
		hit.ID, _ = h.Fields["id"].(string)
		kind, _ := h.Fields["kind"].(string)
		hit.Kind = symbols.Kind(kind)
		hit.Name, _ = h.Fields["name"].(string)
		hit.QualifiedName, _ = h.Fields["qualified_name"].(string)
		hit.Signature, _ = h.Fields["signature"].(string)
		if line, ok := h.Fields["line"].(float64); ok {
			hit.StartLine = int(line)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// textQuery weighs name matches above qualified-name and signature matches, and
// lets a partial name match by prefix.
func textQuery(text string) query.Query {
	name := bleve.NewMatchQuery(text)
	name.SetField("name")
	name.SetBoost(3)

	qualified := bleve.NewMatchQuery(text)
	qualified.SetField("qualified_name")

	signature := bleve.NewMatchQuery(text)
	signature.SetField("signature")
	signature.SetBoost(0.5)

	disjuncts := []query.Query{name, qualified, signature}
	if !strings.ContainsAny(text, " \t:") {
		prefix := bleve.NewPrefixQuery(strings.ToLower(text))
		prefix.SetField("name")
		prefix.SetBoost(2)
		disjuncts = append(disjuncts, prefix)
	}
	return bleve.NewDisjunctionQuery(disjuncts...)
}

// Files lists the indexed file paths, sorted.
func (x *Index) Files() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]string, 0, len(x.docs))
	for p := range x.docs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Close releases the index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.index.Close()
}
