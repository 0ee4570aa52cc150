package symbols

import (
	"sort"
	"strings"
)

// Kind classifies a declared entity. The set is closed: reducers, the linker and
// the symbol table match on it exhaustively.
type Kind string

const (
	KindModule         Kind = "module"
	KindType           Kind = "type"
	KindTrait          Kind = "trait"
	KindFunction       Kind = "function"
	KindImplementation Kind = "implementation"
	KindEnum           Kind = "enum"
	KindEnumVariant    Kind = "enum_variant"
	KindField          Kind = "field"
)

// Kinds lists every kind in a fixed order.
var Kinds = []Kind{
	KindModule,
	KindType,
	KindTrait,
	KindFunction,
	KindImplementation,
	KindEnum,
	KindEnumVariant,
	KindField,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsContainer reports whether entities of this kind may enclose other entities.
func (k Kind) IsContainer() bool {
	switch k {
	case KindModule, KindType, KindTrait, KindImplementation, KindEnum:
		return true
	default:
		return false
	}
}

// ParseKind parses a kind name, accepting a few common spellings.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "module", "mod", "namespace":
		return KindModule, true
	case "type", "struct", "class":
		return KindType, true
	case "trait", "interface":
		return KindTrait, true
	case "function", "fn", "func", "method":
		return KindFunction, true
	case "implementation", "impl":
		return KindImplementation, true
	case "enum":
		return KindEnum, true
	case "enum_variant", "variant":
		return KindEnumVariant, true
	case "field":
		return KindField, true
	}
	return "", false
}

// Modifier is a declaration attribute that is not part of the signature.
type Modifier string

const (
	ModPublic      Modifier = "public"
	ModAsync       Modifier = "async"
	ModMutableSelf Modifier = "mutable_self"
	ModStatic      Modifier = "static"
)

// Modifiers is a sorted set of modifiers.
type Modifiers []Modifier

// NewModifiers returns a sorted, de-duplicated set.
func NewModifiers(mods ...Modifier) Modifiers {
	if len(mods) == 0 {
		return nil
	}
	set := make(map[Modifier]struct{}, len(mods))
	out := make(Modifiers, 0, len(mods))
	for _, m := range mods {
		if m == "" {
			continue
		}
		if _, ok := set[m]; ok {
			continue
		}
		set[m] = struct{}{}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	if len(out) == 0 {
		return nil
	}
	return out
}

// Has reports whether m is in the set.
func (ms Modifiers) Has(m Modifier) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}

// With returns a new set that also contains m.
func (ms Modifiers) With(m Modifier) Modifiers {
	return NewModifiers(append(append(Modifiers{}, ms...), m)...)
}

// Span is a contiguous range of source text. Bytes are half-open [StartByte, EndByte).
// Lines are 1-based; columns are 0-based byte offsets within the line.
type Span struct {
	StartByte   int `json:"startByte" yaml:"startByte"`
	EndByte     int `json:"endByte" yaml:"endByte"`
	StartLine   int `json:"startLine" yaml:"startLine"`
	StartColumn int `json:"startColumn" yaml:"startColumn"`
	EndLine     int `json:"endLine" yaml:"endLine"`
	EndColumn   int `json:"endColumn" yaml:"endColumn"`
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool {
	return s.EndByte <= s.StartByte
}

// Len returns the number of bytes covered.
func (s Span) Len() int {
	if s.Empty() {
		return 0
	}
	return s.EndByte - s.StartByte
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return o.StartByte >= s.StartByte && o.EndByte <= s.EndByte
}

// ContainsOffset reports whether the byte offset falls inside s.
func (s Span) ContainsOffset(off int) bool {
	return off >= s.StartByte && off < s.EndByte
}

// Overlaps reports whether the two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.StartByte < o.EndByte && o.StartByte < s.EndByte
}

// SameRange reports whether both spans cover exactly the same bytes.
func (s Span) SameRange(o Span) bool {
	return s.StartByte == o.StartByte && s.EndByte == o.EndByte
}

// Range is a byte range used to query a symbol table.
type Range struct {
	Start int
	End   int
}

// Contains reports whether the span lies inside the range.
func (r Range) Contains(s Span) bool {
	return s.StartByte >= r.Start && s.EndByte <= r.End
}

// Target records what an implementation (or a receiver-bound function) attaches to.
// Type and Trait hold the normalized references as written in source.
type Target struct {
	Type            string `json:"type,omitempty" yaml:"type,omitempty"`
	Trait           string `json:"trait,omitempty" yaml:"trait,omitempty"`
	TypeUnresolved  bool   `json:"typeUnresolved,omitempty" yaml:"typeUnresolved,omitempty"`
	TraitUnresolved bool   `json:"traitUnresolved,omitempty" yaml:"traitUnresolved,omitempty"`
}

// Unresolved reports whether any referenced target was not found in the unit.
func (t *Target) Unresolved() bool {
	return t != nil && (t.TypeUnresolved || t.TraitUnresolved)
}

// Entity is one declared structural element of a source unit.
type Entity struct {
	ID        string    `json:"id" yaml:"id"`
	Kind      Kind      `json:"kind" yaml:"kind"`
	Name      string    `json:"name" yaml:"name"`
	Path      []string  `json:"path,omitempty" yaml:"path,omitempty"`
	Signature string    `json:"signature,omitempty" yaml:"signature,omitempty"`
	Span      Span      `json:"span" yaml:"span"`
	Modifiers Modifiers `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Depth     int       `json:"depth" yaml:"depth"`
	Target    *Target   `json:"target,omitempty" yaml:"target,omitempty"`
}

// QualifiedName joins the path and name with "::".
func (e *Entity) QualifiedName() string {
	return JoinPath(e.Path, e.Name)
}

// Unresolved reports whether the entity carries an unresolved target marker.
func (e *Entity) Unresolved() bool {
	return e.Target.Unresolved()
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	out := e
	if e.Path != nil {
		out.Path = append([]string(nil), e.Path...)
	}
	if e.Modifiers != nil {
		out.Modifiers = append(Modifiers(nil), e.Modifiers...)
	}
	if e.Target != nil {
		t := *e.Target
		out.Target = &t
	}
	return out
}

// JoinPath joins path segments and an optional trailing name with "::".
func JoinPath(path []string, name string) string {
	parts := make([]string, 0, len(path)+1)
	parts = append(parts, path...)
	if name != "" {
		parts = append(parts, name)
	}
	return strings.Join(parts, "::")
}

// EdgeKind classifies a relationship between two entities.
type EdgeKind string

const (
	EdgeImplements       EdgeKind = "implements"
	EdgeContains         EdgeKind = "contains"
	EdgeDeclaresMethodOf EdgeKind = "declares_method_of"
)

// Edge connects two entities by identifier.
type Edge struct {
	Kind EdgeKind `json:"kind" yaml:"kind"`
	From string   `json:"from" yaml:"from"`
	To   string   `json:"to" yaml:"to"`
}

// EdgeRef connects two entities by position in an entity slice. The linker emits
// refs because identifiers are assigned after linking.
type EdgeRef struct {
	Kind EdgeKind
	From int
	To   int
}
