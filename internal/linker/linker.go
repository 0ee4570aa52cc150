package linker

import (
	"fmt"
	"sort"

	"github.com/mvp-joe/semantic/internal/reducer"
	"github.com/mvp-joe/semantic/internal/symbols"
)

// Result holds linked entities, in span order, and edges between them by position.
// Entities carry no identifiers yet.
type Result struct {
	Entities    []symbols.Entity
	Edges       []symbols.EdgeRef
	Diagnostics []symbols.Diagnostic

	// Parents maps an entity position to its Contains parent, or -1 at file scope.
	Parents []int
}

// Link resolves intra-unit relationships.
//
// Candidates are ordered by span start ascending, then span end descending so outer
// scopes precede inner ones, then reducer order. Containment is derived from spans
// with a stack sweep; the reducer's depth is not trusted.
func Link(cands []reducer.Candidate) Result {
	sorted := make([]reducer.Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Span, sorted[j].Span
		if a.StartByte != b.StartByte {
			return a.StartByte < b.StartByte
		}
		if a.EndByte != b.EndByte {
			return a.EndByte > b.EndByte
		}
		return sorted[i].Order < sorted[j].Order
	})

	l := &linker{}
	l.dedupe(sorted)
	l.sweep()
	l.index()
	l.resolveImplementations()
	l.bindReceivers()
	l.declareMethods()

	return Result{
		Entities:    l.entities,
		Edges:       l.edges,
		Diagnostics: l.diags,
		Parents:     l.parents,
	}
}

type linker struct {
	cands    []reducer.Candidate
	entities []symbols.Entity
	parents  []int
	edges    []symbols.EdgeRef
	diags    []symbols.Diagnostic

	// byName indexes entity positions by qualified name.
	byName map[string][]int
}

// dedupe keeps the first candidate of every identical span. After sorting, identical
// spans are adjacent and ordered by reducer output.
func (l *linker) dedupe(sorted []reducer.Candidate) {
	for _, c := range sorted {
		if len(l.cands) > 0 && l.cands[len(l.cands)-1].Span.SameRange(c.Span) {
			kept := l.cands[len(l.cands)-1]
			l.diags = append(l.diags, symbols.Diagnostic{
				Kind:    symbols.DiagDuplicateSpan,
				Span:    c.Span,
				Message: fmt.Sprintf("%s %q duplicates the span of %s %q; dropped", c.Kind, c.Name, kept.Kind, kept.Name),
			})
			continue
		}
		l.cands = append(l.cands, c)
	}
}

func (l *linker) sweep() {
	l.entities = make([]symbols.Entity, len(l.cands))
	l.parents = make([]int, len(l.cands))

	var stack []int
	for i, c := range l.cands {
		for len(stack) > 0 && !l.cands[stack[len(stack)-1]].Span.Contains(c.Span) {
			stack = stack[:len(stack)-1]
		}

		e := symbols.Entity{
			Kind:      c.Kind,
			Name:      c.Name,
			Signature: c.Signature,
			Span:      c.Span,
			Modifiers: c.Modifiers,
			Depth:     len(stack),
		}
		if c.Kind == symbols.KindImplementation || c.TypeRef != "" {
			e.Target = &symbols.Target{Type: c.TypeRef, Trait: c.TraitRef}
		}

		l.parents[i] = -1
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			l.parents[i] = parent
			pe := l.entities[parent]
			e.Path = append(append([]string{}, pe.Path...), segment(pe))
			l.edges = append(l.edges, symbols.EdgeRef{Kind: symbols.EdgeContains, From: parent, To: i})
		}

		l.entities[i] = e
		if c.Kind.IsContainer() {
			stack = append(stack, i)
		}
	}
}

// segment is the path element an entity contributes to its members.
func segment(e symbols.Entity) string {
	if e.Kind == symbols.KindImplementation && e.Target != nil {
		typ := normalizeRef(e.Target.Type)
		name := symbols.JoinPath(typ, "")
		if name == "" {
			name = e.Target.Type
		}
		if e.Target.Trait != "" {
			return "<" + name + " as " + symbols.JoinPath(normalizeRef(e.Target.Trait), "") + ">"
		}
		return name
	}
	if e.Name == "" {
		return "_"
	}
	return e.Name
}

func (l *linker) index() {
	l.byName = make(map[string][]int, len(l.entities))
	for i, e := range l.entities {
		qn := e.QualifiedName()
		l.byName[qn] = append(l.byName[qn], i)
	}
}

func (l *linker) resolveImplementations() {
	for i := range l.entities {
		e := &l.entities[i]
		if e.Kind != symbols.KindImplementation {
			continue
		}
		if e.Target == nil {
			e.Target = &symbols.Target{}
		}

		scope := l.moduleScope(i)
		if to, ok := l.resolve(scope, e.Target.Type, symbols.KindType, symbols.KindEnum); ok {
			l.edges = append(l.edges, symbols.EdgeRef{Kind: symbols.EdgeImplements, From: i, To: to})
		} else {
			e.Target.TypeUnresolved = true
			l.unresolved(*e, "type", e.Target.Type)
		}

		if e.Target.Trait == "" {
			continue
		}
		if to, ok := l.resolve(scope, e.Target.Trait, symbols.KindTrait); ok {
			l.edges = append(l.edges, symbols.EdgeRef{Kind: symbols.EdgeImplements, From: i, To: to})
		} else {
			e.Target.TraitUnresolved = true
			l.unresolved(*e, "trait", e.Target.Trait)
		}
	}
}

// bindReceivers attaches receiver-bound functions to their type. The function stays
// where it is declared in the containment forest, but its path is qualified by the
// receiver.
func (l *linker) bindReceivers() {
	for i := range l.entities {
		e := &l.entities[i]
		if e.Kind != symbols.KindFunction || e.Target == nil || e.Target.Type == "" {
			continue
		}
		to, ok := l.resolve(l.moduleScope(i), e.Target.Type, symbols.KindType)
		if !ok {
			e.Target.TypeUnresolved = true
			l.unresolved(*e, "receiver", e.Target.Type)
			continue
		}
		recv := l.entities[to]
		e.Path = append(append([]string{}, recv.Path...), recv.Name)
		l.edges = append(l.edges, symbols.EdgeRef{Kind: symbols.EdgeDeclaresMethodOf, From: i, To: to})
	}
}

func (l *linker) declareMethods() {
	for i, e := range l.entities {
		if e.Kind != symbols.KindFunction || l.parents[i] < 0 {
			continue
		}
		parent := l.parents[i]
		switch l.entities[parent].Kind {
		case symbols.KindImplementation, symbols.KindType, symbols.KindTrait:
			l.edges = append(l.edges, symbols.EdgeRef{Kind: symbols.EdgeDeclaresMethodOf, From: i, To: parent})
		}
	}
}

func (l *linker) unresolved(e symbols.Entity, what, ref string) {
	l.diags = append(l.diags, symbols.Diagnostic{
		Kind:    symbols.DiagUnresolvedRelationship,
		Span:    e.Span,
		Message: fmt.Sprintf("%s %q: %s %q is not declared in this unit", e.Kind, e.Name, what, ref),
	})
}

// moduleScope returns the path of the nearest enclosing module. Types and
// implementations are not namespaces for name resolution.
func (l *linker) moduleScope(i int) []string {
	for p := l.parents[i]; p >= 0; p = l.parents[p] {
		if m := l.entities[p]; m.Kind == symbols.KindModule {
			return append(append([]string{}, m.Path...), segment(m))
		}
	}
	return nil
}

// resolve finds the entity a reference names, searching from the scope outward to
// file scope. The first match in span order wins.
func (l *linker) resolve(scope []string, ref string, kinds ...symbols.Kind) (int, bool) {
	segs := normalizeRef(ref)
	if len(segs) == 0 {
		return 0, false
	}

	var candidates [][]string
	switch segs[0] {
	case "crate":
		candidates = [][]string{segs[1:]}
	case "self", "super":
		base := append([]string{}, scope...)
		for len(segs) > 0 && (segs[0] == "self" || segs[0] == "super") {
			if segs[0] == "super" {
				if len(base) == 0 {
					return 0, false
				}
				base = base[:len(base)-1]
			}
			segs = segs[1:]
		}
		candidates = [][]string{append(base, segs...)}
	default:
		for depth := len(scope); depth >= 0; depth-- {
			candidates = append(candidates, append(append([]string{}, scope[:depth]...), segs...))
		}
	}

	for _, path := range candidates {
		if len(path) == 0 {
			continue
		}
		for _, idx := range l.byName[symbols.JoinPath(path, "")] {
			for _, k := range kinds {
				if l.entities[idx].Kind == k {
					return idx, true
				}
			}
		}
	}
	return 0, false
}
