package reducer

import (
	"strings"
	"unicode"
)

var tighten = strings.NewReplacer(
	"( ", "(",
	" )", ")",
	"[ ", "[",
	" ]", "]",
	"< ", "<",
	" >", ">",
	" ,", ",",
	",)", ")",
	",]", "]",
	",>", ">",
)

// compact collapses whitespace runs into single spaces and drops padding inside brackets.
func compact(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	// Two passes: dropping " )" can expose a trailing ",)".
	return tighten.Replace(tighten.Replace(s))
}

// paramList renders normalized parameter types as "(a, b)".
func paramList(types []string) string {
	return "(" + strings.Join(types, ", ") + ")"
}

// withReturn appends a return type using the arrow form.
func withReturn(sig, ret string) string {
	ret = compact(ret)
	if ret == "" {
		return sig
	}
	return sig + " -> " + ret
}

// joinSig joins non-empty signature parts with a single space.
func joinSig(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = compact(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// baseTypeName reduces a type reference to its bare name: "*pkg.Stack[T]" -> "Stack".
func baseTypeName(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimLeft(ref, "*&")
	if i := strings.IndexAny(ref, "[<("); i >= 0 {
		ref = ref[:i]
	}
	if i := strings.LastIndexAny(ref, ".:"); i >= 0 {
		ref = ref[i+1:]
	}
	return strings.TrimSpace(ref)
}

func isExported(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

func hasWord(text, word string) bool {
	for _, f := range strings.Fields(text) {
		if f == word {
			return true
		}
	}
	return false
}

func trimQuotes(s string) string {
	return strings.Trim(s, "\"'`")
}
