package syntax

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ErrUnsupportedLanguage is returned when no adapter is registered for a language.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Adapter binds a language to its grammar. Grammars are read-only once created and
// safe to share between concurrent parses.
type Adapter struct {
	Language Language
	grammar  *sitter.Language
}

// NewAdapter creates an adapter from a tree-sitter grammar.
func NewAdapter(lang Language, grammar *sitter.Language) *Adapter {
	return &Adapter{Language: lang, grammar: grammar}
}

// Registry maps languages to adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[Language]*Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[Language]*Adapter)}
}

// Register adds or replaces the adapter for its language.
func (r *Registry) Register(a *Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Language] = a
}

// Lookup returns the adapter for lang.
func (r *Registry) Lookup(lang Language) (*Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	return a, nil
}

// Languages returns the registered languages, sorted.
func (r *Registry) Languages() []Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Language, 0, len(r.adapters))
	for lang := range r.adapters {
		out = append(out, lang)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the process-wide registry holding every built-in grammar.
// It is initialized once on first use.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		r.Register(NewAdapter(Rust, sitter.NewLanguage(rust.Language())))
		r.Register(NewAdapter(Go, sitter.NewLanguage(golang.Language())))
		r.Register(NewAdapter(Python, sitter.NewLanguage(python.Language())))
		r.Register(NewAdapter(TypeScript, sitter.NewLanguage(typescript.LanguageTypescript())))
		r.Register(NewAdapter(TSX, sitter.NewLanguage(typescript.LanguageTSX())))
		r.Register(NewAdapter(Java, sitter.NewLanguage(java.Language())))
		r.Register(NewAdapter(C, sitter.NewLanguage(c.Language())))
		r.Register(NewAdapter(Ruby, sitter.NewLanguage(ruby.Language())))
		r.Register(NewAdapter(PHP, sitter.NewLanguage(php.LanguagePHP())))
		defaultRegistry = r
	})
	return defaultRegistry
}
