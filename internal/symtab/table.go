package symtab

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/semantic/internal/symbols"
)

var (
	// ErrDuplicateID is returned when two entities share an identifier.
	ErrDuplicateID = errors.New("duplicate entity identifier")

	// ErrUnknownEntity is returned when an edge references a missing entity.
	ErrUnknownEntity = errors.New("edge references unknown entity")

	// ErrNotForest is returned when Contains edges form a cycle or give an entity two parents.
	ErrNotForest = errors.New("contains edges do not form a forest")
)

// Meta describes the unit a table was extracted from.
type Meta struct {
	Language string
	Path     string
}

// Table is the immutable result of extracting one source unit. Accessors return
// copies; a re-extraction produces a new Table.
type Table struct {
	meta        Meta
	entities    []symbols.Entity
	edges       []symbols.Edge
	diagnostics []symbols.Diagnostic

	byID   map[string]int
	out    map[string][]int
	in     map[string][]int
	parent map[string]string

	contains graph.Graph[string, string]
}

// Build creates a table from identified entities, in span order, and edges that
// reference them by position.
func Build(meta Meta, entities []symbols.Entity, refs []symbols.EdgeRef, diags []symbols.Diagnostic) (*Table, error) {
	edges := make([]symbols.Edge, 0, len(refs))
	for _, r := range refs {
		if r.From < 0 || r.From >= len(entities) || r.To < 0 || r.To >= len(entities) {
			return nil, fmt.Errorf("%w: %s edge %d -> %d", ErrUnknownEntity, r.Kind, r.From, r.To)
		}
		edges = append(edges, symbols.Edge{Kind: r.Kind, From: entities[r.From].ID, To: entities[r.To].ID})
	}
	return build(meta, entities, edges, diags)
}

func build(meta Meta, entities []symbols.Entity, edges []symbols.Edge, diags []symbols.Diagnostic) (*Table, error) {
	t := &Table{
		meta:        meta,
		entities:    make([]symbols.Entity, len(entities)),
		edges:       append([]symbols.Edge{}, edges...),
		diagnostics: append([]symbols.Diagnostic{}, diags...),
		byID:        make(map[string]int, len(entities)),
		out:         make(map[string][]int),
		in:          make(map[string][]int),
		parent:      make(map[string]string),
		contains:    graph.New(graph.StringHash, graph.Directed()),
	}

	for i, e := range entities {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entity %s %q has no identifier", ErrUnknownEntity, e.Kind, e.Name)
		}
		if _, dup := t.byID[e.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		t.byID[e.ID] = i
		t.entities[i] = e.Clone()
		if err := t.contains.AddVertex(e.ID); err != nil {
			return nil, fmt.Errorf("failed to add entity %s: %w", e.ID, err)
		}
	}

	for i, e := range t.edges {
		if _, ok := t.byID[e.From]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, e.From)
		}
		if _, ok := t.byID[e.To]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, e.To)
		}
		t.out[e.From] = append(t.out[e.From], i)
		t.in[e.To] = append(t.in[e.To], i)

		if e.Kind != symbols.EdgeContains {
			continue
		}
		if p, ok := t.parent[e.To]; ok {
			return nil, fmt.Errorf("%w: %s has parents %s and %s", ErrNotForest, e.To, p, e.From)
		}
		if err := t.contains.AddEdge(e.From, e.To); err != nil {
			return nil, fmt.Errorf("%w: %s -> %s: %v", ErrNotForest, e.From, e.To, err)
		}
		t.parent[e.To] = e.From
	}

	// One pass; graph.PreventCycles would search the graph on every AddEdge.
	if err := t.checkAcyclic(); err != nil {
		return nil, err
	}
	return t, nil
}

// checkAcyclic walks every parent chain once. Each entity has at most one parent, so
// a cycle is a chain that reaches an entity already on it.
func (t *Table) checkAcyclic() error {
	const (
		unseen = iota
		onChain
		done
	)
	state := make(map[string]int, len(t.parent))
	for start := range t.parent {
		var chain []string
		id, ok := start, true
		for ok && state[id] == unseen {
			state[id] = onChain
			chain = append(chain, id)
			id, ok = t.parent[id]
		}
		if ok && state[id] == onChain {
			return fmt.Errorf("%w: cycle through %s", ErrNotForest, id)
		}
		for _, c := range chain {
			state[c] = done
		}
	}
	return nil
}

// Language returns the language tag of the unit.
func (t *Table) Language() string { return t.meta.Language }

// Path returns the unit's path, if the caller supplied one.
func (t *Table) Path() string { return t.meta.Path }

// Len returns the number of entities.
func (t *Table) Len() int { return len(t.entities) }

// Entities returns every entity in span order.
func (t *Table) Entities() []symbols.Entity {
	return t.collect(func(symbols.Entity) bool { return true })
}

// Edges returns every edge.
func (t *Table) Edges() []symbols.Edge {
	return append([]symbols.Edge{}, t.edges...)
}

// Diagnostics returns the recoverable conditions collected during extraction.
func (t *Table) Diagnostics() []symbols.Diagnostic {
	return append([]symbols.Diagnostic{}, t.diagnostics...)
}

// ByID returns the entity with the given identifier.
func (t *Table) ByID(id string) (symbols.Entity, bool) {
	i, ok := t.byID[id]
	if !ok {
		return symbols.Entity{}, false
	}
	return t.entities[i].Clone(), true
}

// ByKindInRange returns entities of a kind whose span lies inside r. An empty kind
// matches every kind.
func (t *Table) ByKindInRange(kind symbols.Kind, r symbols.Range) []symbols.Entity {
	return t.collect(func(e symbols.Entity) bool {
		return (kind == "" || e.Kind == kind) && r.Contains(e.Span)
	})
}

// EdgesFrom returns edges leaving the entity.
func (t *Table) EdgesFrom(id string) []symbols.Edge {
	return t.edgesAt(t.out[id])
}

// EdgesTo returns edges arriving at the entity.
func (t *Table) EdgesTo(id string) []symbols.Edge {
	return t.edgesAt(t.in[id])
}

// TopLevel returns entities declared at file scope.
func (t *Table) TopLevel() []symbols.Entity {
	return t.collect(func(e symbols.Entity) bool {
		_, nested := t.parent[e.ID]
		return !nested
	})
}

// Parent returns the container that directly encloses the entity.
func (t *Table) Parent(id string) (symbols.Entity, bool) {
	p, ok := t.parent[id]
	if !ok {
		return symbols.Entity{}, false
	}
	return t.ByID(p)
}

// Children returns the entities directly contained by id, in span order.
func (t *Table) Children(id string) []symbols.Entity {
	return t.collect(func(e symbols.Entity) bool {
		return t.parent[e.ID] == id && id != ""
	})
}

// Descendants returns every entity transitively contained by id, in span order.
func (t *Table) Descendants(id string) []symbols.Entity {
	if _, ok := t.byID[id]; !ok {
		return nil
	}
	var idx []int
	_ = graph.DFS(t.contains, id, func(v string) bool {
		if v != id {
			idx = append(idx, t.byID[v])
		}
		return false
	})
	sort.Ints(idx)

	out := make([]symbols.Entity, 0, len(idx))
	for _, i := range idx {
		out = append(out, t.entities[i].Clone())
	}
	return out
}

// At returns the innermost entity whose span covers the byte offset.
func (t *Table) At(offset int) (symbols.Entity, bool) {
	best := -1
	for i, e := range t.entities {
		if !e.Span.ContainsOffset(offset) {
			continue
		}
		if best < 0 || e.Span.Len() <= t.entities[best].Span.Len() {
			best = i
		}
	}
	if best < 0 {
		return symbols.Entity{}, false
	}
	return t.entities[best].Clone(), true
}

// Lookup returns entities by qualified name, e.g. "utils::helper".
func (t *Table) Lookup(qualifiedName string) []symbols.Entity {
	return t.collect(func(e symbols.Entity) bool {
		return e.QualifiedName() == qualifiedName
	})
}

func (t *Table) collect(keep func(symbols.Entity) bool) []symbols.Entity {
	var out []symbols.Entity
	for _, e := range t.entities {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

func (t *Table) edgesAt(idx []int) []symbols.Edge {
	out := make([]symbols.Edge, 0, len(idx))
	for _, i := range idx {
		out = append(out, t.edges[i])
	}
	return out
}
