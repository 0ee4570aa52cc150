package symtab

import "github.com/mvp-joe/semantic/internal/symbols"

// Delta compares two extractions of the same unit by identifier.
type Delta struct {
	Added     []string `json:"added,omitempty" yaml:"added,omitempty"`
	Removed   []string `json:"removed,omitempty" yaml:"removed,omitempty"`
	Moved     []string `json:"moved,omitempty" yaml:"moved,omitempty"`
	Unchanged []string `json:"unchanged,omitempty" yaml:"unchanged,omitempty"`
}

// Empty reports whether no identifier was added, removed or moved.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Moved) == 0
}

// Diff reports which identifiers of next are new, which of prev are gone, and which
// survived with a different span (moved) or the same one (unchanged). A nil prev
// treats every entity of next as added.
func Diff(prev, next *Table) Delta {
	var d Delta
	old := map[string]symbols.Span{}
	if prev != nil {
		for _, e := range prev.entities {
			old[e.ID] = e.Span
		}
	}

	seen := make(map[string]bool, len(old))
	if next != nil {
		for _, e := range next.entities {
			span, ok := old[e.ID]
			switch {
			case !ok:
				d.Added = append(d.Added, e.ID)
			case span != e.Span:
				d.Moved = append(d.Moved, e.ID)
			default:
				d.Unchanged = append(d.Unchanged, e.ID)
			}
			seen[e.ID] = true
		}
	}

	if prev != nil {
		for _, e := range prev.entities {
			if !seen[e.ID] {
				d.Removed = append(d.Removed, e.ID)
			}
		}
	}
	return d
}
