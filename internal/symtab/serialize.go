package symtab

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/semantic/internal/symbols"
)

// document is the serialized layout: a map from identifier to entity record, the
// span order of identifiers, the edge list and diagnostics. Both encoders sort map
// keys, so identical tables serialize byte-identically.
type document struct {
	Language    string                    `json:"language" yaml:"language"`
	Path        string                    `json:"path,omitempty" yaml:"path,omitempty"`
	Symbols     map[string]symbols.Entity `json:"symbols" yaml:"symbols"`
	Order       []string                  `json:"order" yaml:"order"`
	Edges       []symbols.Edge            `json:"edges" yaml:"edges"`
	Diagnostics []symbols.Diagnostic      `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

func (t *Table) document() document {
	doc := document{
		Language:    t.meta.Language,
		Path:        t.meta.Path,
		Symbols:     make(map[string]symbols.Entity, len(t.entities)),
		Order:       make([]string, 0, len(t.entities)),
		Edges:       append([]symbols.Edge{}, t.edges...),
		Diagnostics: t.diagnostics,
	}
	for _, e := range t.entities {
		doc.Symbols[e.ID] = e
		doc.Order = append(doc.Order, e.ID)
	}
	return doc
}

// MarshalJSON implements json.Marshaler.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.document())
}

// MarshalYAML implements yaml.Marshaler.
func (t *Table) MarshalYAML() (interface{}, error) {
	return t.document(), nil
}

// JSON returns the indented JSON form used for snapshots and CLI output.
func (t *Table) JSON() ([]byte, error) {
	return json.MarshalIndent(t.document(), "", "  ")
}

// YAML returns the YAML form.
func (t *Table) YAML() ([]byte, error) {
	return yaml.Marshal(t.document())
}

// Decode rebuilds a table from its JSON form.
func Decode(data []byte) (*Table, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode symbol table: %w", err)
	}
	return fromDocument(doc)
}

// DecodeYAML rebuilds a table from its YAML form.
func DecodeYAML(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode symbol table: %w", err)
	}
	return fromDocument(doc)
}

func fromDocument(doc document) (*Table, error) {
	if len(doc.Order) != len(doc.Symbols) {
		return nil, fmt.Errorf("failed to decode symbol table: %d ordered ids for %d symbols", len(doc.Order), len(doc.Symbols))
	}
	entities := make([]symbols.Entity, 0, len(doc.Order))
	for _, id := range doc.Order {
		e, ok := doc.Symbols[id]
		if !ok {
			return nil, fmt.Errorf("failed to decode symbol table: %w: %s", ErrUnknownEntity, id)
		}
		e.ID = id
		entities = append(entities, e)
	}
	return build(Meta{Language: doc.Language, Path: doc.Path}, entities, doc.Edges, doc.Diagnostics)
}
