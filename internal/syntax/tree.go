package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/semantic/internal/symbols"
)

// Tree is a parsed source unit. It owns native parser memory and must be closed.
type Tree struct {
	inner    *sitter.Tree
	source   []byte
	language Language
	errors   []ParseError
}

// Root returns the root node.
func (t *Tree) Root() Node {
	return Node{inner: t.inner.RootNode(), source: t.source}
}

// Source returns the buffer the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// Language returns the language the tree was parsed as.
func (t *Tree) Language() Language {
	return t.language
}

// Errors returns the recoverable syntax errors found while parsing.
func (t *Tree) Errors() []ParseError {
	return t.errors
}

// Close releases the native tree.
func (t *Tree) Close() {
	if t.inner != nil {
		t.inner.Close()
		t.inner = nil
	}
}

// Node is a uniform view of one syntax node. The zero Node is a valid "absent" node.
type Node struct {
	inner  *sitter.Node
	source []byte
}

// IsNil reports whether the node is absent.
func (n Node) IsNil() bool {
	return n.inner == nil
}

// Kind returns the grammar's node type, or "" for an absent node.
func (n Node) Kind() string {
	if n.inner == nil {
		return ""
	}
	return n.inner.Kind()
}

// IsNamed reports whether the node is a named grammar node rather than a token.
func (n Node) IsNamed() bool {
	return n.inner != nil && n.inner.IsNamed()
}

// IsError reports whether the node is an ERROR node.
func (n Node) IsError() bool {
	return n.inner != nil && n.inner.IsError()
}

// IsMissing reports whether the parser inserted the node during recovery.
func (n Node) IsMissing() bool {
	return n.inner != nil && n.inner.IsMissing()
}

// HasError reports whether the node or any descendant is an error.
func (n Node) HasError() bool {
	return n.inner != nil && n.inner.HasError()
}

// Text returns the source text covered by the node.
func (n Node) Text() string {
	if n.inner == nil {
		return ""
	}
	start, end := n.inner.StartByte(), n.inner.EndByte()
	if end > uint(len(n.source)) || start > end {
		return ""
	}
	return string(n.source[start:end])
}

// ChildCount returns the number of children, including anonymous tokens.
func (n Node) ChildCount() int {
	if n.inner == nil {
		return 0
	}
	return int(n.inner.ChildCount())
}

// Child returns the i-th child.
func (n Node) Child(i int) Node {
	if n.inner == nil || i < 0 {
		return Node{}
	}
	return n.wrap(n.inner.Child(uint(i)))
}

// NamedChildCount returns the number of named children.
func (n Node) NamedChildCount() int {
	if n.inner == nil {
		return 0
	}
	return int(n.inner.NamedChildCount())
}

// NamedChild returns the i-th named child.
func (n Node) NamedChild(i int) Node {
	if n.inner == nil || i < 0 {
		return Node{}
	}
	return n.wrap(n.inner.NamedChild(uint(i)))
}

// Children returns all children in source order.
func (n Node) Children() []Node {
	count := n.ChildCount()
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.Child(i); !c.IsNil() {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns the named children in source order.
func (n Node) NamedChildren() []Node {
	count := n.NamedChildCount()
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		if c := n.NamedChild(i); !c.IsNil() {
			out = append(out, c)
		}
	}
	return out
}

// Field returns the child stored under a grammar field name.
func (n Node) Field(name string) Node {
	if n.inner == nil {
		return Node{}
	}
	return n.wrap(n.inner.ChildByFieldName(name))
}

// FieldText returns the text of a field child, or "".
func (n Node) FieldText(name string) string {
	return n.Field(name).Text()
}

// ChildOfKind returns the first child of the given kind.
func (n Node) ChildOfKind(kind string) Node {
	for _, c := range n.Children() {
		if c.Kind() == kind {
			return c
		}
	}
	return Node{}
}

// ChildrenOfKind returns every child of the given kind.
func (n Node) ChildrenOfKind(kind string) []Node {
	var out []Node
	for _, c := range n.Children() {
		if c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// HasToken reports whether any direct child (named or not) has the given kind.
// Keyword tokens such as "async" or "static" appear as anonymous children.
func (n Node) HasToken(kind string) bool {
	return !n.ChildOfKind(kind).IsNil()
}

// Parent returns the parent node.
func (n Node) Parent() Node {
	if n.inner == nil {
		return Node{}
	}
	return n.wrap(n.inner.Parent())
}

// Span returns the node's extent in the source.
func (n Node) Span() symbols.Span {
	if n.inner == nil {
		return symbols.Span{}
	}
	start, end := n.inner.StartPosition(), n.inner.EndPosition()
	return symbols.Span{
		StartByte:   int(n.inner.StartByte()),
		EndByte:     int(n.inner.EndByte()),
		StartLine:   int(start.Row) + 1,
		StartColumn: int(start.Column),
		EndLine:     int(end.Row) + 1,
		EndColumn:   int(end.Column),
	}
}

func (n Node) wrap(inner *sitter.Node) Node {
	if inner == nil {
		return Node{}
	}
	return Node{inner: inner, source: n.source}
}

// Walk visits the subtree depth-first. The visitor returns false to skip a node's children.
func Walk(n Node, visit func(Node) bool) {
	if n.IsNil() {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, visit)
	}
}
