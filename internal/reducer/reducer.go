package reducer

import (
	"fmt"

	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/syntax"
)

// Candidate is one recognized declaration before linking. Nesting is recorded only as
// depth and the enclosing container's range; the linker derives structure from spans.
type Candidate struct {
	Kind      symbols.Kind
	Name      string
	Signature string
	Span      symbols.Span
	Modifiers symbols.Modifiers

	// Order is the position in reducer output, used to break ties deterministically.
	Order int

	// Depth counts the recognized containers enclosing the candidate.
	Depth int

	// Enclosing is the byte range of the nearest enclosing container, or the whole
	// unit at file scope.
	Enclosing symbols.Range

	// TypeRef and TraitRef hold raw target references: the implemented type and
	// trait of an implementation block, or the receiver type of a bound function.
	TypeRef  string
	TraitRef string
}

// Scope tells a recognizer where the node sits.
type Scope struct {
	// Container is the kind of the nearest enclosing container, or "" at file scope.
	Container symbols.Kind
	Depth     int
}

// Match is a recognizer's classification of one syntax node.
type Match struct {
	Kind      symbols.Kind
	Name      string
	Signature string
	Modifiers symbols.Modifiers
	TypeRef   string
	TraitRef  string

	// SpanNode overrides the node whose extent becomes the candidate span.
	SpanNode syntax.Node

	// Body is the node whose children are reduced inside a container. When absent the
	// matched node's own children are used.
	Body syntax.Node
}

// Recognizer classifies syntax nodes of one language. Returning no matches means
// "unrecognized": the reducer walks through the node transparently.
type Recognizer interface {
	Recognize(n syntax.Node, scope Scope) []Match
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(n syntax.Node, scope Scope) []Match

func (f RecognizerFunc) Recognize(n syntax.Node, scope Scope) []Match {
	return f(n, scope)
}

var recognizers = map[syntax.Language]Recognizer{
	syntax.Rust:       RecognizerFunc(recognizeRust),
	syntax.Go:         RecognizerFunc(recognizeGo),
	syntax.Python:     RecognizerFunc(recognizePython),
	syntax.TypeScript: RecognizerFunc(recognizeTypeScript),
	syntax.TSX:        RecognizerFunc(recognizeTypeScript),
	syntax.Java:       RecognizerFunc(recognizeJava),
	syntax.C:          RecognizerFunc(recognizeC),
	syntax.Ruby:       RecognizerFunc(recognizeRuby),
	syntax.PHP:        RecognizerFunc(recognizePHP),
}

// ForLanguage returns the recognizer for lang.
func ForLanguage(lang syntax.Language) (Recognizer, error) {
	r, ok := recognizers[lang]
	if !ok {
		return nil, fmt.Errorf("%w: no recognizer for %q", syntax.ErrUnsupportedLanguage, lang)
	}
	return r, nil
}

// Reduce walks the tree and returns candidates in depth-first source order.
func Reduce(tree *syntax.Tree) ([]Candidate, error) {
	rec, err := ForLanguage(tree.Language())
	if err != nil {
		return nil, err
	}
	return ReduceWith(tree, rec), nil
}

// ReduceWith reduces a tree using an explicit recognizer.
func ReduceWith(tree *syntax.Tree, rec Recognizer) []Candidate {
	w := &walker{
		rec:  rec,
		file: symbols.Range{Start: 0, End: len(tree.Source())},
	}
	for _, child := range tree.Root().Children() {
		w.node(child)
	}
	return w.out
}

type frame struct {
	kind symbols.Kind
	span symbols.Span
}

type walker struct {
	rec   Recognizer
	file  symbols.Range
	stack []frame
	out   []Candidate
}

func (w *walker) scope() Scope {
	if len(w.stack) == 0 {
		return Scope{Depth: 0}
	}
	return Scope{Container: w.stack[len(w.stack)-1].kind, Depth: len(w.stack)}
}

func (w *walker) enclosing() symbols.Range {
	if len(w.stack) == 0 {
		return w.file
	}
	top := w.stack[len(w.stack)-1].span
	return symbols.Range{Start: top.StartByte, End: top.EndByte}
}

func (w *walker) node(n syntax.Node) {
	// Erroneous spans are skipped; the adapter already reported them.
	if n.IsError() || n.IsMissing() {
		return
	}
	// Keyword tokens such as "module" or "class" share kind names with declarations.
	if !n.IsNamed() {
		return
	}

	matches := w.rec.Recognize(n, w.scope())
	if len(matches) == 0 {
		for _, child := range n.Children() {
			w.node(child)
		}
		return
	}

	for _, m := range matches {
		spanNode := m.SpanNode
		if spanNode.IsNil() {
			spanNode = n
		}
		span := spanNode.Span()
		if span.Empty() {
			continue
		}

		w.out = append(w.out, Candidate{
			Kind:      m.Kind,
			Name:      m.Name,
			Signature: m.Signature,
			Span:      span,
			Modifiers: m.Modifiers,
			Order:     len(w.out),
			Depth:     len(w.stack),
			Enclosing: w.enclosing(),
			TypeRef:   m.TypeRef,
			TraitRef:  m.TraitRef,
		})

		if !m.Kind.IsContainer() {
			continue
		}

		body := m.Body
		if body.IsNil() {
			body = n
		}
		w.stack = append(w.stack, frame{kind: m.Kind, span: span})
		for _, child := range body.Children() {
			w.node(child)
		}
		w.stack = w.stack[:len(w.stack)-1]
	}
}

func one(m Match) []Match {
	return []Match{m}
}
