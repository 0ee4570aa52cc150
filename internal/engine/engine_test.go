package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/symtab"
	"github.com/mvp-joe/semantic/internal/syntax"
)

// Test Plan for the extraction engine:
// - Every fixture extracts with the expected number of top-level entities and no diagnostics
// - Contains edges form a forest for every fixture
// - The Point/Shape unit yields 3 top-level entities and 2 Implements edges
// - Siblings under every parent, and at file scope, never overlap
// - Identical input serializes byte-identically; body edits keep every identifier
// - Inserting another impl block of a type keeps the existing blocks' identifiers
// - async only adds a modifier
// - Unresolved implementation targets are markers plus diagnostics, never failures
// - Fatal conditions surface as *UnitError wrapping the sentinel
// - ExtractAll isolates failures and preserves order

const fixtures = "../../testdata/code"

func readFixture(t *testing.T, rel string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(fixtures, rel))
	require.NoError(t, err)
	return data
}

func extractFixture(t *testing.T, rel string) *symtab.Table {
	t.Helper()
	lang, ok := syntax.LanguageForPath(rel)
	require.True(t, ok, rel)
	table, err := New().Extract(context.Background(), Unit{Path: rel, Language: lang, Source: readFixture(t, rel)})
	require.NoError(t, err)
	return table
}

func names(entities []symbols.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Name)
	}
	return out
}

func assertDisjoint(t *testing.T, siblings []symbols.Entity) {
	t.Helper()
	for i := range siblings {
		for j := i + 1; j < len(siblings); j++ {
			assert.False(t, siblings[i].Span.Overlaps(siblings[j].Span),
				"siblings overlap: %s and %s", siblings[i].ID, siblings[j].ID)
		}
	}
}

func TestExtract_Fixtures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file     string
		topLevel []string
	}{
		{"rust/shapes.rs", []string{"Point", "Shape", "impl Point", "impl Shape for Point", "calculate_sum", "utils", "main"}},
		{"go/server.go", []string{"Config", "Handler", "Router", "NewHandler", "ServeHTTP"}},
		{"python/models.py", []string{"User", "Repository", "main"}},
		{"typescript/shapes.ts", []string{"Shape", "Circle", "Unit", "describe"}},
		{"java/Account.java", []string{"Account", "Ledger", "Currency"}},
		{"c/list.c", []string{"node", "status", "alloc_node", "list_length"}},
		{"ruby/billing.rb", []string{"Billing", "Receipt", "format_amount"}},
		{"php/User.php", []string{"App", "Named", "User", "make_user"}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()

			table := extractFixture(t, tt.file)
			assert.Equal(t, tt.topLevel, names(table.TopLevel()))
			assert.Empty(t, table.Diagnostics())
			assert.Equal(t, tt.file, table.Path())

			// Following parents always terminates at file scope.
			for _, e := range table.Entities() {
				steps := 0
				for id := e.ID; ; steps++ {
					require.Less(t, steps, table.Len(), "containment cycle at %s", e.ID)
					p, ok := table.Parent(id)
					if !ok {
						break
					}
					id = p.ID
				}
			}

			assertDisjoint(t, table.TopLevel())
			for _, e := range table.Entities() {
				assertDisjoint(t, table.Children(e.ID))
			}
		})
	}
}

func TestExtract_PointShapeScenario(t *testing.T) {
	t.Parallel()

	src := `struct Point { x: i32, y: i32 }
trait Shape { fn area(&self) -> i32; }
impl Shape for Point { fn area(&self) -> i32 { self.x * self.y } }
`
	table, err := Extract([]byte(src), syntax.Rust)
	require.NoError(t, err)

	top := table.TopLevel()
	require.Len(t, top, 3)
	assert.Equal(t, symbols.KindType, top[0].Kind)
	assert.Equal(t, "Point", top[0].Name)
	assert.Equal(t, symbols.KindTrait, top[1].Kind)
	assert.Equal(t, "Shape", top[1].Name)
	assert.Equal(t, symbols.KindImplementation, top[2].Kind)

	var implements []symbols.Edge
	for _, e := range table.Edges() {
		if e.Kind == symbols.EdgeImplements {
			implements = append(implements, e)
		}
	}
	assert.ElementsMatch(t, []symbols.Edge{
		{Kind: symbols.EdgeImplements, From: top[2].ID, To: top[0].ID},
		{Kind: symbols.EdgeImplements, From: top[2].ID, To: top[1].ID},
	}, implements)
}

func TestExtract_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := extractFixture(t, "rust/shapes.rs").JSON()
	require.NoError(t, err)
	b, err := extractFixture(t, "rust/shapes.rs").JSON()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestExtract_BodyEditKeepsIdentifiers(t *testing.T) {
	t.Parallel()

	src := string(readFixture(t, "rust/shapes.rs"))
	edited := strings.Replace(src, "    a + b\n", "    let total = a + b;\n    total\n", 1)
	require.NotEqual(t, src, edited)

	before, err := Extract([]byte(src), syntax.Rust)
	require.NoError(t, err)
	after, err := Extract([]byte(edited), syntax.Rust)
	require.NoError(t, err)

	ids := func(t *symtab.Table) []string {
		var out []string
		for _, e := range t.Entities() {
			out = append(out, e.ID)
		}
		return out
	}
	assert.Equal(t, ids(before), ids(after))

	d := symtab.Diff(before, after)
	assert.Empty(t, d.Added)
	assert.Empty(t, d.Removed)
	assert.NotEmpty(t, d.Moved, "entities after the edit shift")
}

func TestExtract_SignatureEditChangesOnlyThatIdentifier(t *testing.T) {
	t.Parallel()

	src := string(readFixture(t, "rust/shapes.rs"))
	edited := strings.Replace(src, "fn calculate_sum(a: i32, b: i32) -> i32", "fn calculate_sum(a: i64, b: i64) -> i64", 1)

	before, err := Extract([]byte(src), syntax.Rust)
	require.NoError(t, err)
	after, err := Extract([]byte(edited), syntax.Rust)
	require.NoError(t, err)

	d := symtab.Diff(before, after)
	require.Len(t, d.Added, 1)
	require.Len(t, d.Removed, 1)
	assert.True(t, strings.HasPrefix(d.Added[0], "function:calculate_sum#"))
	assert.Equal(t, before.Len()-1, len(d.Unchanged)+len(d.Moved))
}

func TestExtract_InsertedImplBlockKeepsSiblingIdentifiers(t *testing.T) {
	t.Parallel()

	const point = "struct Point { x: i32 }\n"
	const blocks = `impl Point { fn new() -> Point { Point { x: 0 } } }
impl Point { fn area(&self) -> i32 { self.x } }
`
	before, err := Extract([]byte(point+blocks), syntax.Rust)
	require.NoError(t, err)
	after, err := Extract([]byte(point+"impl Point { fn zero() -> Point { Point { x: 1 } } }\n"+blocks), syntax.Rust)
	require.NoError(t, err)

	implOf := func(table *symtab.Table, method string) string {
		fns := table.Lookup(method)
		require.Len(t, fns, 1, method)
		parent, ok := table.Parent(fns[0].ID)
		require.True(t, ok, method)
		require.Equal(t, symbols.KindImplementation, parent.Kind)
		return parent.ID
	}
	assert.Equal(t, implOf(before, "Point::new"), implOf(after, "Point::new"))
	assert.Equal(t, implOf(before, "Point::area"), implOf(after, "Point::area"))
	assert.NotEqual(t, implOf(after, "Point::new"), implOf(after, "Point::area"))

	d := symtab.Diff(before, after)
	assert.Empty(t, d.Removed)
	assert.ElementsMatch(t, []string{implOf(after, "Point::zero"), after.Lookup("Point::zero")[0].ID}, d.Added)
}

func TestExtract_AsyncOnlyAddsModifier(t *testing.T) {
	t.Parallel()

	sync, err := Extract([]byte("fn fetch(id: u32) -> String { String::new() }\n"), syntax.Rust)
	require.NoError(t, err)
	async, err := Extract([]byte("async fn fetch(id: u32) -> String { String::new() }\n"), syntax.Rust)
	require.NoError(t, err)

	require.Equal(t, 1, sync.Len())
	require.Equal(t, 1, async.Len())
	s, a := sync.Entities()[0], async.Entities()[0]

	assert.True(t, a.Modifiers.Has(symbols.ModAsync))
	assert.False(t, s.Modifiers.Has(symbols.ModAsync))
	assert.Equal(t, s.ID, a.ID)
	assert.Equal(t, s.Signature, a.Signature)
	assert.Equal(t, s.Kind, a.Kind)
	assert.Equal(t, s.Path, a.Path)
}

func TestExtract_UnresolvedImplementation(t *testing.T) {
	t.Parallel()

	table := extractFixture(t, "rust/async.rs")

	impls := table.ByKindInRange(symbols.KindImplementation, symbols.Range{Start: 0, End: 1 << 20})
	require.Len(t, impls, 2)

	remote := impls[1]
	assert.Equal(t, "impl Display for Remote", remote.Name)
	require.NotNil(t, remote.Target)
	assert.True(t, remote.Target.TypeUnresolved)
	assert.True(t, remote.Target.TraitUnresolved, "Display is imported, not declared")
	assert.Empty(t, table.EdgesFrom(remote.ID))

	var unresolved int
	for _, d := range table.Diagnostics() {
		if d.Kind == symbols.DiagUnresolvedRelationship {
			unresolved++
		}
	}
	assert.Equal(t, 2, unresolved)

	client := impls[0]
	assert.False(t, client.Unresolved())
	get := table.Lookup("Client::get")
	require.Len(t, get, 1)
	assert.True(t, get[0].Modifiers.Has(symbols.ModAsync))
	reset := table.Lookup("Client::reset")
	require.Len(t, reset, 1)
	assert.True(t, reset[0].Modifiers.Has(symbols.ModMutableSelf))
}

func TestExtract_SyntaxErrorsBecomeDiagnostics(t *testing.T) {
	t.Parallel()

	table, err := Extract([]byte("struct A { x: u8 }\n\nfn broken( {\n"), syntax.Rust)
	require.NoError(t, err)

	require.NotEmpty(t, table.Lookup("A"))
	var syntaxErrors int
	for _, d := range table.Diagnostics() {
		if d.Kind == symbols.DiagSyntaxError {
			syntaxErrors++
		}
	}
	assert.Positive(t, syntaxErrors)
}

func TestExtract_FatalErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := New().Extract(ctx, Unit{Path: "a.cob", Language: "cobol", Source: []byte("x")})
	var unitErr *UnitError
	require.True(t, errors.As(err, &unitErr))
	assert.Equal(t, "a.cob", unitErr.Path)
	assert.Equal(t, "parse", unitErr.Op)
	assert.ErrorIs(t, err, syntax.ErrUnsupportedLanguage)
	assert.Contains(t, err.Error(), "a.cob")

	_, err = New(WithMaxSourceBytes(8)).Extract(ctx, Unit{Language: syntax.Rust, Source: []byte("fn main() {}")})
	assert.ErrorIs(t, err, ErrSourceTooLarge)
	assert.Contains(t, err.Error(), "<buffer>")

	_, err = New().Extract(ctx, Unit{Language: syntax.Rust, Source: []byte(")))) }}}} ))))")})
	assert.ErrorIs(t, err, syntax.ErrUnparseable)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = New().Extract(cancelled, Unit{Language: syntax.Rust, Source: []byte("fn main() {}")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractAll_IsolatesFailures(t *testing.T) {
	t.Parallel()

	units := []Unit{
		{Path: "shapes.rs", Language: syntax.Rust, Source: readFixture(t, "rust/shapes.rs")},
		{Path: "bad.cob", Language: "cobol", Source: []byte("x")},
		{Path: "server.go", Language: syntax.Go, Source: readFixture(t, "go/server.go")},
		{Path: "models.py", Language: syntax.Python, Source: readFixture(t, "python/models.py")},
	}

	results := New(WithWorkers(2)).ExtractAll(context.Background(), units)
	require.Len(t, results, len(units))

	for i, r := range results {
		assert.Equal(t, units[i].Path, r.Unit.Path)
	}
	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Table)
	assert.ErrorIs(t, results[1].Err, syntax.ErrUnsupportedLanguage)
	assert.Nil(t, results[1].Table)
	assert.NoError(t, results[2].Err)
	assert.NoError(t, results[3].Err)

	assert.Empty(t, New().ExtractAll(context.Background(), nil))
}
