package syntax

import (
	"errors"
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/semantic/internal/symbols"
)

// ErrUnparseable is returned when a buffer yields no recoverable structure at all.
var ErrUnparseable = errors.New("unparseable source")

// ParseError describes a recoverable syntax error. It never aborts extraction.
type ParseError struct {
	Span    symbols.Span
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Span.StartLine, e.Span.StartColumn+1, e.Message)
}

// Parse parses source with the adapter registered for lang in the default registry.
func Parse(source []byte, lang Language) (*Tree, error) {
	return DefaultRegistry().Parse(source, lang)
}

// Parse parses source with the adapter registered for lang.
func (r *Registry) Parse(source []byte, lang Language) (*Tree, error) {
	a, err := r.Lookup(lang)
	if err != nil {
		return nil, err
	}
	return a.Parse(source)
}

// Parse parses source into a tree annotated with error spans.
func (a *Adapter) Parse(source []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(a.grammar); err != nil {
		return nil, fmt.Errorf("failed to load %s grammar: %w", a.Language, err)
	}

	inner := parser.Parse(source, nil)
	if inner == nil {
		return nil, fmt.Errorf("%w: %s parser produced no tree", ErrUnparseable, a.Language)
	}

	tree := &Tree{
		inner:    inner,
		source:   source,
		language: a.Language,
	}

	root := tree.Root()
	if unparseable(root, source) {
		tree.Close()
		return nil, fmt.Errorf("%w: no recoverable %s structure", ErrUnparseable, a.Language)
	}

	tree.errors = collectErrors(root)
	return tree, nil
}

// unparseable reports whether a non-blank buffer produced nothing but error nodes.
func unparseable(root Node, source []byte) bool {
	if strings.TrimSpace(string(source)) == "" {
		return false
	}
	if root.IsError() {
		return true
	}
	named := root.NamedChildren()
	if len(named) == 0 {
		return false
	}
	for _, c := range named {
		if !c.IsError() {
			return false
		}
	}
	return true
}

// collectErrors gathers ERROR and MISSING nodes. It only descends into subtrees
// that report errors.
func collectErrors(root Node) []ParseError {
	var errs []ParseError
	Walk(root, func(n Node) bool {
		switch {
		case n.IsError():
			errs = append(errs, ParseError{Span: n.Span(), Message: "unexpected " + snippet(n.Text())})
			return false
		case n.IsMissing():
			errs = append(errs, ParseError{Span: n.Span(), Message: fmt.Sprintf("missing %q", n.Kind())})
			return false
		}
		return n.HasError()
	})
	return errs
}

// snippet quotes the first line of text, truncated.
func snippet(text string) string {
	const max = 32
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)
	if len(text) > max {
		text = text[:max] + "..."
	}
	if text == "" {
		return "input"
	}
	return fmt.Sprintf("%q", text)
}
