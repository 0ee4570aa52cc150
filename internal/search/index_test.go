package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/semantic/internal/engine"
	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/symtab"
	"github.com/mvp-joe/semantic/internal/syntax"
)

// Test Plan for the symbol search index:
// - Name matches rank first and carry stored entity fields
// - Prefixes of a name match
// - Kind and language filters narrow hits; an empty query lists filtered entities
// - Limit caps hits
// - Replace drops the previous entities of a file; Remove drops them all

const geometry = `mod geo {
    pub struct Point { x: i32, y: i32 }
    impl Point {
        pub fn origin() -> Point { Point { x: 0, y: 0 } }
    }
}

fn calculate_sum(a: i32, b: i32) -> i32 { a + b }
`

const models = `class Point:
    def distance(self, other):
        return 0


def calculate_mean(values):
    return 0
`

func table(t *testing.T, path, src string) *symtab.Table {
	t.Helper()
	lang, ok := syntax.LanguageForPath(path)
	require.True(t, ok)
	tbl, err := engine.New().Extract(context.Background(), engine.Unit{Path: path, Language: lang, Source: []byte(src)})
	require.NoError(t, err)
	return tbl
}

func newIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	ctx := context.Background()
	require.NoError(t, idx.Replace(ctx, table(t, "geo.rs", geometry)))
	require.NoError(t, idx.Replace(ctx, table(t, "models.py", models)))
	return idx
}

func names(hits []Hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.QualifiedName)
	}
	return out
}

func TestSearch_NameMatchesFirst(t *testing.T) {
	t.Parallel()

	idx := newIndex(t)
	hits, err := idx.Search(context.Background(), "calculate_sum", Options{})
	require.NoError(t, err)
	require.NotEmpty(t, hits)

	top := hits[0]
	assert.Equal(t, "calculate_sum", top.Name)
	assert.Equal(t, "geo.rs", top.FilePath)
	assert.Equal(t, "rust", top.Language)
	assert.Equal(t, symbols.KindFunction, top.Kind)
	assert.Equal(t, "(i32, i32) -> i32", top.Signature)
	assert.Equal(t, 8, top.StartLine)
	assert.Positive(t, top.Score)
	assert.NotContains(t, names(hits), "calculate_mean")
}

func TestSearch_Prefix(t *testing.T) {
	t.Parallel()

	hits, err := newIndex(t).Search(context.Background(), "calc", Options{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"calculate_sum", "calculate_mean"}, names(hits))
}

func TestSearch_Filters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	idx := newIndex(t)

	hits, err := idx.Search(ctx, "point", Options{Language: "python"})
	require.NoError(t, err)
	for _, h := range hits {
		assert.Equal(t, "models.py", h.FilePath)
	}
	assert.Contains(t, names(hits), "Point")

	hits, err = idx.Search(ctx, "point", Options{Kind: symbols.KindType})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"geo::Point", "Point"}, names(hits))

	hits, err = idx.Search(ctx, "", Options{Kind: symbols.KindField})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"geo::Point::x", "geo::Point::y"}, names(hits))

	hits, err = idx.Search(ctx, "", Options{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestReplaceAndRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	idx := newIndex(t)
	assert.Equal(t, []string{"geo.rs", "models.py"}, idx.Files())
	before := idx.Len()

	require.NoError(t, idx.Replace(ctx, table(t, "models.py", "def calculate_median(values):\n    return 0\n")))
	assert.Equal(t, before-2, idx.Len())

	hits, err := idx.Search(ctx, "calc", Options{Language: "python"})
	require.NoError(t, err)
	assert.Equal(t, []string{"calculate_median"}, names(hits))

	require.NoError(t, idx.Remove("models.py"))
	assert.Equal(t, []string{"geo.rs"}, idx.Files())

	hits, err = idx.Search(ctx, "", Options{Language: "python"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}
