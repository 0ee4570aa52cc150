package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/semantic/internal/config"
	"github.com/mvp-joe/semantic/internal/logging"
	"github.com/mvp-joe/semantic/internal/storage"
	"github.com/mvp-joe/semantic/internal/symtab"
	"github.com/mvp-joe/semantic/internal/syntax"
)

// Test Plan for CLI commands:
// - extract prints a JSON table that decodes, keyed by the project-relative path
// - extract --format text prints an indented outline; unknown formats fail
// - extract --save followed by diff <file> reports body edits as moves only
// - diff <old> <new> reports added and removed identifiers
// - diff <file> without a snapshot explains how to create one
// - index prints per-file lines and a summary; --save makes symbols queryable
// - search finds entities by name
// - languages lists every adapter with its extensions
// - language resolution and unit path naming

const lib = `struct Point { x: i32 }

impl Point {
    fn new() -> Self {
        Point { x: 0 }
    }
}
`

func newTestProject(t *testing.T, files map[string]string) *project {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	cfg, err := config.LoadConfigFromDir(root)
	require.NoError(t, err)
	return &project{root: root, cfg: cfg, logger: logging.Discard()}
}

func (p *project) file(rel string) string {
	return filepath.Join(p.root, filepath.FromSlash(rel))
}

func TestExtract_JSON(t *testing.T) {
	t.Parallel()

	p := newTestProject(t, map[string]string{"src/lib.rs": lib})
	var out bytes.Buffer
	require.NoError(t, executeExtract(context.Background(), &out, p, p.file("src/lib.rs"), "", formatJSON, false))

	table, err := symtab.Decode(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "src/lib.rs", table.Path())
	assert.Equal(t, "rust", table.Language())
	assert.Equal(t, 4, table.Len())
}

func TestExtract_TextAndBadFormat(t *testing.T) {
	t.Parallel()

	p := newTestProject(t, map[string]string{"lib.rs": lib})
	var out bytes.Buffer
	require.NoError(t, executeExtract(context.Background(), &out, p, p.file("lib.rs"), "", formatText, false))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "type Point"), lines[0])
	assert.True(t, strings.HasPrefix(lines[3], "  function new () -> Self [static]"), lines[3])

	var yaml bytes.Buffer
	require.NoError(t, executeExtract(context.Background(), &yaml, p, p.file("lib.rs"), "", formatYAML, false))
	assert.Contains(t, yaml.String(), "language: rust")

	err := executeExtract(context.Background(), &out, p, p.file("lib.rs"), "", "xml", false)
	assert.ErrorContains(t, err, "unknown format")
}

func TestExtract_SaveThenDiffAgainstSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := newTestProject(t, map[string]string{"lib.rs": lib})

	var out bytes.Buffer
	err := executeDiff(ctx, &out, p, []string{p.file("lib.rs")}, "")
	assert.ErrorContains(t, err, "no snapshot of lib.rs")

	require.NoError(t, executeExtract(ctx, &out, p, p.file("lib.rs"), "", formatJSON, true))

	edited := strings.Replace(lib, "Point { x: 0 }", "let p = Point { x: 0 };\n        p", 1)
	require.NoError(t, os.WriteFile(p.file("lib.rs"), []byte(edited), 0644))

	out.Reset()
	require.NoError(t, executeDiff(ctx, &out, p, []string{p.file("lib.rs")}, ""))
	assert.Contains(t, out.String(), "0 added, 0 removed")
}

func TestDiff_TwoFiles(t *testing.T) {
	t.Parallel()

	p := newTestProject(t, map[string]string{
		"old/lib.rs": "fn a() {}\nfn b() {}\n",
		"new/lib.rs": "fn a() {}\nfn c(x: u8) {}\n",
	})

	var out bytes.Buffer
	require.NoError(t, executeDiff(context.Background(), &out, p, []string{p.file("old/lib.rs"), p.file("new/lib.rs")}, ""))

	text := out.String()
	assert.Contains(t, text, "+ function:c#")
	assert.Contains(t, text, "- function:b#")
	assert.Contains(t, text, "1 added, 1 removed, 0 moved, 1 unchanged")
}

func TestIndex_SaveAndSymbols(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := newTestProject(t, map[string]string{
		"src/lib.rs":    lib,
		"pkg/server.go": "package pkg\n\ntype Server struct{}\n",
		"bad.rs":        strings.Repeat("x", 200),
	})
	p.cfg.Extraction.MaxSourceBytes = 150

	var out, progress bytes.Buffer
	require.NoError(t, executeIndex(ctx, &out, &progress, p, true, true))
	assert.Contains(t, out.String(), "FAIL bad.rs")
	assert.Contains(t, out.String(), "src/lib.rs: 4 entities (+4 -0 ~0)")
	assert.Contains(t, out.String(), "3 files: 2 extracted, 1 failed")
	assert.Empty(t, progress.String(), "quiet")

	out.Reset()
	require.NoError(t, executeSymbols(ctx, &out, p, storage.SymbolQuery{Name: "Point::*"}))
	assert.Contains(t, out.String(), "src/lib.rs:4\tfunction\tfunction:Point::new#")

	out.Reset()
	require.NoError(t, executeSymbols(ctx, &out, p, storage.SymbolQuery{Name: "Missing"}))
	assert.Equal(t, "no matches\n", out.String())
}

func TestSearch(t *testing.T) {
	t.Parallel()

	p := newTestProject(t, map[string]string{"src/lib.rs": lib})
	opts, err := searchOptions("type", "rs", 5)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, executeSearch(context.Background(), &out, p, "Point", opts))
	assert.Contains(t, out.String(), "src/lib.rs:1\ttype\tPoint")

	_, err = searchOptions("widget", "", 0)
	assert.Error(t, err)
	_, err = searchOptions("", "cobol", 0)
	assert.ErrorIs(t, err, syntax.ErrUnsupportedLanguage)
}

func TestLanguages(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, executeLanguages(&out))
	assert.Contains(t, out.String(), "rust         .rs")
	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), len(syntax.DefaultRegistry().Languages()))
}

func TestResolveLanguageAndUnitPath(t *testing.T) {
	t.Parallel()

	lang, err := resolveLanguage("main.go", "")
	require.NoError(t, err)
	assert.Equal(t, syntax.Go, lang)

	lang, err = resolveLanguage("component.txt", "golang")
	require.NoError(t, err)
	assert.Equal(t, syntax.Go, lang)

	_, err = resolveLanguage("notes.txt", "")
	assert.ErrorIs(t, err, syntax.ErrUnsupportedLanguage)

	p := &project{root: filepath.FromSlash("/work/proj")}
	assert.Equal(t, "src/lib.rs", p.unitPath(filepath.FromSlash("/work/proj/src/lib.rs")))
	assert.Equal(t, "/elsewhere/lib.rs", p.unitPath(filepath.FromSlash("/elsewhere/lib.rs")))
}
