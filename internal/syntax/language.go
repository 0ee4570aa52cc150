package syntax

import (
	"path/filepath"
	"sort"
	"strings"
)

// Language identifies a supported source language.
type Language string

const (
	Rust       Language = "rust"
	Go         Language = "go"
	Python     Language = "python"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	Java       Language = "java"
	C          Language = "c"
	Ruby       Language = "ruby"
	PHP        Language = "php"
)

// aliases maps user-facing tags to languages.
var aliases = map[string]Language{
	"rust":       Rust,
	"rs":         Rust,
	"go":         Go,
	"golang":     Go,
	"python":     Python,
	"python3":    Python,
	"py":         Python,
	"typescript": TypeScript,
	"ts":         TypeScript,
	"tsx":        TSX,
	"java":       Java,
	"c":          C,
	"h":          C,
	"ruby":       Ruby,
	"rb":         Ruby,
	"php":        PHP,
}

// extensions maps file extensions (lowercase, with dot) to languages.
var extensions = map[string]Language{
	".rs":   Rust,
	".go":   Go,
	".py":   Python,
	".pyi":  Python,
	".ts":   TypeScript,
	".mts":  TypeScript,
	".cts":  TypeScript,
	".tsx":  TSX,
	".java": Java,
	".c":    C,
	".h":    C,
	".rb":   Ruby,
	".php":  PHP,
}

// LanguageFromTag resolves a language tag or alias. The lookup is case-insensitive.
func LanguageFromTag(tag string) (Language, bool) {
	lang, ok := aliases[strings.ToLower(strings.TrimSpace(tag))]
	return lang, ok
}

// LanguageForPath detects the language from a file extension.
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// ExtensionsFor returns the file extensions mapped to lang, sorted.
func ExtensionsFor(lang Language) []string {
	var exts []string
	for ext, l := range extensions {
		if l == lang {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

func (l Language) String() string {
	return string(l)
}
