package linker

import "strings"

// normalizeRef reduces a written type reference to its path segments, dropping
// references, lifetimes and generic arguments:
//
//	"&'a mut crate::geo::Point<T>" -> ["crate", "geo", "Point"]
//
// It returns nil for shapes that cannot name a declared entity, such as tuples,
// slices and function types.
func normalizeRef(ref string) []string {
	s := strings.NewReplacer("&", " ", "*", " ").Replace(stripGenerics(ref))

	var kept []string
	for _, f := range strings.Fields(s) {
		switch {
		case f == "mut", f == "dyn", f == "impl", f == "const", f == "!":
		case strings.HasPrefix(f, "'"):
		default:
			kept = append(kept, f)
		}
	}
	if len(kept) != 1 {
		return nil
	}

	path := strings.TrimPrefix(strings.TrimPrefix(kept[0], "!"), "::")
	if path == "" || strings.ContainsAny(path, "()[],;") {
		return nil
	}
	segs := strings.Split(path, "::")
	for _, seg := range segs {
		if seg == "" {
			return nil
		}
	}
	return segs
}

func stripGenerics(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
