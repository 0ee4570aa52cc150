package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the syntax adapter:
// - Every built-in language has a registered adapter
// - Tags and aliases resolve case-insensitively; file extensions map to languages
// - Well-formed input parses without errors and exposes fields, spans and text
// - Incomplete input yields a partial tree plus error spans instead of failing
// - A buffer with no recoverable structure is rejected with ErrUnparseable
// - Unknown languages are rejected with ErrUnsupportedLanguage

func TestDefaultRegistry_HasAllLanguages(t *testing.T) {
	t.Parallel()

	langs := DefaultRegistry().Languages()
	assert.ElementsMatch(t, []Language{Rust, Go, Python, TypeScript, TSX, Java, C, Ruby, PHP}, langs)
}

func TestLanguageFromTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag  string
		want Language
		ok   bool
	}{
		{"rust", Rust, true},
		{"RS", Rust, true},
		{"golang", Go, true},
		{" py ", Python, true},
		{"ts", TypeScript, true},
		{"rb", Ruby, true},
		{"cobol", "", false},
	}

	for _, tt := range tests {
		got, ok := LanguageFromTag(tt.tag)
		assert.Equal(t, tt.ok, ok, tt.tag)
		assert.Equal(t, tt.want, got, tt.tag)
	}
}

func TestLanguageForPath(t *testing.T) {
	t.Parallel()

	lang, ok := LanguageForPath("src/geo/Shapes.RS")
	require.True(t, ok)
	assert.Equal(t, Rust, lang)

	lang, ok = LanguageForPath("web/App.tsx")
	require.True(t, ok)
	assert.Equal(t, TSX, lang)

	_, ok = LanguageForPath("README.md")
	assert.False(t, ok)

	assert.Equal(t, []string{".c", ".h"}, ExtensionsFor(C))
}

func TestParse_WellFormedRust(t *testing.T) {
	t.Parallel()

	src := []byte("struct Point {\n    x: i32,\n    y: i32,\n}\n")
	tree, err := Parse(src, Rust)
	require.NoError(t, err)
	defer tree.Close()

	assert.Empty(t, tree.Errors())
	assert.Equal(t, Rust, tree.Language())

	root := tree.Root()
	assert.Equal(t, "source_file", root.Kind())

	item := root.NamedChild(0)
	require.Equal(t, "struct_item", item.Kind())
	assert.Equal(t, "Point", item.FieldText("name"))

	span := item.Span()
	assert.Equal(t, 0, span.StartByte)
	assert.Equal(t, 1, span.StartLine)
	assert.Equal(t, 4, span.EndLine)

	body := item.Field("body")
	require.False(t, body.IsNil())
	assert.Len(t, body.ChildrenOfKind("field_declaration"), 2)
	assert.True(t, body.NamedChild(0).Parent().Kind() == "field_declaration_list")
}

func TestParse_RecoversFromSyntaxErrors(t *testing.T) {
	t.Parallel()

	src := []byte("struct Point { x: i32 }\n\nfn broken( {\n\nstruct Other { y: u8 }\n")
	tree, err := Parse(src, Rust)
	require.NoError(t, err, "recoverable errors must not fail the unit")
	defer tree.Close()

	require.NotEmpty(t, tree.Errors())
	for _, perr := range tree.Errors() {
		assert.NotEmpty(t, perr.Message)
		assert.NotEmpty(t, perr.Error())
	}

	first := tree.Root().NamedChild(0)
	assert.Equal(t, "struct_item", first.Kind())
}

func TestParse_UnparseableBuffer(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(")))) }}}} ))))"), Rust)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestParse_BlankBufferIsNotAnError(t *testing.T) {
	t.Parallel()

	tree, err := Parse([]byte("   \n\n"), Python)
	require.NoError(t, err)
	defer tree.Close()
	assert.Empty(t, tree.Errors())
}

func TestParse_UnsupportedLanguage(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("IDENTIFICATION DIVISION."), Language("cobol"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestNode_ZeroValueIsSafe(t *testing.T) {
	t.Parallel()

	var n Node
	assert.True(t, n.IsNil())
	assert.Equal(t, "", n.Kind())
	assert.Equal(t, "", n.Text())
	assert.Equal(t, 0, n.ChildCount())
	assert.True(t, n.Field("name").IsNil())
	assert.Empty(t, n.Children())
	assert.True(t, n.Span().Empty())
}

func TestWalk_SkipsChildrenWhenVisitorReturnsFalse(t *testing.T) {
	t.Parallel()

	tree, err := Parse([]byte("mod a { fn inner() {} }\nfn outer() {}\n"), Rust)
	require.NoError(t, err)
	defer tree.Close()

	var kinds []string
	Walk(tree.Root(), func(n Node) bool {
		if n.Kind() == "function_item" {
			kinds = append(kinds, n.FieldText("name"))
		}
		return n.Kind() != "mod_item"
	})

	assert.Equal(t, []string{"outer"}, kinds)
}
