package reducer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/syntax"
)

// Test Plan for the entity reducer:
// - Recognized shapes yield one candidate each, in depth-first source order
// - Containers record depth and the enclosing range of their members
// - Leaf declarations are not descended; unrecognized nodes are walked through
// - Macro and anonymous constructs are skipped without error
// - Erroneous regions are skipped while the rest of the unit is reduced
// - Modifiers are derived per language and never leak into signatures

func reduce(t *testing.T, lang syntax.Language, src string) []Candidate {
	t.Helper()
	tree, err := syntax.Parse([]byte(src), lang)
	require.NoError(t, err)
	t.Cleanup(tree.Close)

	cands, err := Reduce(tree)
	require.NoError(t, err)
	return cands
}

func find(t *testing.T, cands []Candidate, kind symbols.Kind, name string) Candidate {
	t.Helper()
	for _, c := range cands {
		if c.Kind == kind && c.Name == name {
			return c
		}
	}
	require.Failf(t, "candidate not found", "%s %q", kind, name)
	return Candidate{}
}

func findAll(cands []Candidate, kind symbols.Kind, name string) []Candidate {
	var out []Candidate
	for _, c := range cands {
		if c.Kind == kind && c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

type kindName struct {
	Kind symbols.Kind
	Name string
}

func kindNames(cands []Candidate) []kindName {
	out := make([]kindName, 0, len(cands))
	for _, c := range cands {
		out = append(out, kindName{c.Kind, c.Name})
	}
	return out
}

const pointShape = `struct Point { x: i32, y: i32 }

trait Shape {
    fn area(&self) -> i32;
}

impl Shape for Point {
    fn area(&self) -> i32 { self.x * self.y }
}
`

func TestReduce_RustPointShape(t *testing.T) {
	t.Parallel()

	cands := reduce(t, syntax.Rust, pointShape)

	assert.Equal(t, []kindName{
		{symbols.KindType, "Point"},
		{symbols.KindField, "x"},
		{symbols.KindField, "y"},
		{symbols.KindTrait, "Shape"},
		{symbols.KindFunction, "area"},
		{symbols.KindImplementation, "impl Shape for Point"},
		{symbols.KindFunction, "area"},
	}, kindNames(cands))

	for i, c := range cands {
		assert.Equal(t, i, c.Order)
		assert.False(t, c.Span.Empty())
	}

	point := find(t, cands, symbols.KindType, "Point")
	assert.Equal(t, 0, point.Depth)
	assert.Equal(t, symbols.Range{Start: 0, End: len(pointShape)}, point.Enclosing)

	x := find(t, cands, symbols.KindField, "x")
	assert.Equal(t, 1, x.Depth)
	assert.Equal(t, "i32", x.Signature)
	assert.Equal(t, symbols.Range{Start: point.Span.StartByte, End: point.Span.EndByte}, x.Enclosing)

	impl := find(t, cands, symbols.KindImplementation, "impl Shape for Point")
	assert.Equal(t, "Point", impl.TypeRef)
	assert.Equal(t, "Shape", impl.TraitRef)
	assert.Equal(t, "Shape for Point", impl.Signature)

	areas := findAll(cands, symbols.KindFunction, "area")
	require.Len(t, areas, 2)
	for _, a := range areas {
		assert.Equal(t, "(&self) -> i32", a.Signature)
		assert.Equal(t, 1, a.Depth)
		assert.Empty(t, a.Modifiers)
	}
}

func TestReduce_RustModifiers(t *testing.T) {
	t.Parallel()

	src := `pub struct Counter { pub value: u64 }

impl Counter {
    pub fn new() -> Self { Counter { value: 0 } }
    fn bump(&mut self, by: u64) { self.value += by; }
}

pub async fn fetch(url: &str) -> Result<String, Error> { todo!() }

fn fetch_sync(url: &str) -> Result<String, Error> { todo!() }
`
	cands := reduce(t, syntax.Rust, src)

	counter := find(t, cands, symbols.KindType, "Counter")
	assert.True(t, counter.Modifiers.Has(symbols.ModPublic))
	assert.True(t, find(t, cands, symbols.KindField, "value").Modifiers.Has(symbols.ModPublic))

	impl := find(t, cands, symbols.KindImplementation, "impl Counter")
	assert.Equal(t, "Counter", impl.TypeRef)
	assert.Empty(t, impl.TraitRef)

	ctor := find(t, cands, symbols.KindFunction, "new")
	assert.Equal(t, symbols.NewModifiers(symbols.ModPublic, symbols.ModStatic), ctor.Modifiers)
	assert.Equal(t, "() -> Self", ctor.Signature)

	bump := find(t, cands, symbols.KindFunction, "bump")
	assert.Equal(t, symbols.NewModifiers(symbols.ModMutableSelf), bump.Modifiers)
	assert.Equal(t, "(&mut self, u64)", bump.Signature)

	async := find(t, cands, symbols.KindFunction, "fetch")
	sync := find(t, cands, symbols.KindFunction, "fetch_sync")
	assert.Equal(t, symbols.NewModifiers(symbols.ModAsync, symbols.ModPublic), async.Modifiers)
	assert.Empty(t, sync.Modifiers)
	assert.Equal(t, sync.Signature, async.Signature, "async must not change the signature")
	assert.Equal(t, "(&str) -> Result<String, Error>", async.Signature)
}

func TestReduce_RustModulesAndEnums(t *testing.T) {
	t.Parallel()

	src := `mod utils {
    pub enum Direction { North, South = 2, Move(i32, i32), Named { id: u8 } }

    pub fn helper() {}
}
`
	cands := reduce(t, syntax.Rust, src)

	assert.Equal(t, []kindName{
		{symbols.KindModule, "utils"},
		{symbols.KindEnum, "Direction"},
		{symbols.KindEnumVariant, "North"},
		{symbols.KindEnumVariant, "South"},
		{symbols.KindEnumVariant, "Move"},
		{symbols.KindEnumVariant, "Named"},
		{symbols.KindFunction, "helper"},
	}, kindNames(cands))

	assert.Equal(t, "= 2", find(t, cands, symbols.KindEnumVariant, "South").Signature)
	assert.Equal(t, "(i32, i32)", find(t, cands, symbols.KindEnumVariant, "Move").Signature)
	assert.Equal(t, 2, find(t, cands, symbols.KindEnumVariant, "North").Depth)
	assert.Equal(t, 1, find(t, cands, symbols.KindFunction, "helper").Depth)
}

func TestReduce_SkipsMacrosAndFunctionBodies(t *testing.T) {
	t.Parallel()

	src := `macro_rules! square { ($x:expr) => { $x * $x }; }

fn outer() {
    struct Local;
    fn inner() {}
}
`
	cands := reduce(t, syntax.Rust, src)
	assert.Equal(t, []kindName{{symbols.KindFunction, "outer"}}, kindNames(cands))
}

func TestReduce_SkipsErroneousRegions(t *testing.T) {
	t.Parallel()

	src := "struct Good { a: u8 }\n\nfn broken( {\n"
	tree, err := syntax.Parse([]byte(src), syntax.Rust)
	require.NoError(t, err)
	defer tree.Close()
	require.NotEmpty(t, tree.Errors())

	cands, err := Reduce(tree)
	require.NoError(t, err)
	good := find(t, cands, symbols.KindType, "Good")
	assert.Equal(t, 0, good.Depth)
}

func TestReduceWith_UnrecognizedNodesAreTransparent(t *testing.T) {
	t.Parallel()

	tree, err := syntax.Parse([]byte("mod a { mod b { fn deep() {} } }\n"), syntax.Rust)
	require.NoError(t, err)
	defer tree.Close()

	onlyFunctions := RecognizerFunc(func(n syntax.Node, _ Scope) []Match {
		if n.Kind() != "function_item" {
			return nil
		}
		return one(Match{Kind: symbols.KindFunction, Name: n.FieldText("name")})
	})

	cands := ReduceWith(tree, onlyFunctions)
	require.Len(t, cands, 1)
	assert.Equal(t, "deep", cands[0].Name)
	assert.Equal(t, 0, cands[0].Depth)
}

func TestForLanguage_Unknown(t *testing.T) {
	t.Parallel()

	_, err := ForLanguage(syntax.Language("cobol"))
	assert.ErrorIs(t, err, syntax.ErrUnsupportedLanguage)
}

func TestCompact(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "(a: i32, b: i32)", compact("(\n    a: i32,\n    b: i32,\n)"))
	assert.Equal(t, "Vec<u8>", compact("Vec< u8 >"))
	assert.Equal(t, "", compact("  \n\t"))
	assert.Equal(t, "Stack", baseTypeName("*pkg.Stack[T]"))
	assert.Equal(t, "Point", baseTypeName("&Point<T>"))
}
