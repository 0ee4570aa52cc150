package identity

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/mvp-joe/semantic/internal/symbols"
)

// ErrMalformedID is returned by Parse for strings that are not entity identifiers.
var ErrMalformedID = errors.New("malformed entity identifier")

// Identifiers have the form
//
//	<kind>:<qualified name>#<signature hash>[+<members hash>][~<ordinal>]
//
// e.g. "function:<Point as Shape>::area#3f1c9a0be27d4410". The signature hash is the
// xxhash64 of the normalized signature, so overloads with the same path differ.
// Spans are not part of the key, so moving a declaration or editing a body keeps the ID.
//
// Containers that share a key (several inherent impl blocks of one type, reopened
// classes) are told apart by a hash of their direct members' keys. The ordinal is
// the last resort for entities whose key and members are both identical.

// SignatureHash returns the hex hash of a normalized signature.
func SignatureHash(signature string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(signature))
}

// Key returns the identifier an entity receives when nothing else shares its key.
func Key(e symbols.Entity) string {
	name := e.Name
	if name == "" {
		name = "_"
	}
	return string(e.Kind) + ":" + symbols.JoinPath(e.Path, name) + "#" + SignatureHash(e.Signature)
}

// MembersHash returns the hex hash of a set of member keys. Order does not matter.
func MembersHash(keys []string) string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.Join(sorted, "\n")))
}

// Assign returns copies of the entities with identifiers set. Entities must be in span
// order; parents maps each position to its Contains parent or -1, and may be nil when
// containment is unknown.
//
// An entity whose key is unique gets the bare key. A contended container gets its
// members hash appended. Entities still tied after that keep the first occurrence
// unsuffixed and number later ones "~2", "~3", ... The input is not modified.
func Assign(entities []symbols.Entity, parents []int) []symbols.Entity {
	keys := make([]string, len(entities))
	count := make(map[string]int, len(entities))
	for i, e := range entities {
		keys[i] = Key(e)
		count[keys[i]]++
	}

	var members map[int][]string
	if len(parents) == len(entities) {
		members = make(map[int][]string)
		for i, p := range parents {
			if p >= 0 && count[keys[p]] > 1 {
				members[p] = append(members[p], keys[i])
			}
		}
	}

	out := make([]symbols.Entity, len(entities))
	seen := make(map[string]int, len(entities))
	for i, e := range entities {
		e = e.Clone()
		id := keys[i]
		if count[id] > 1 && e.Kind.IsContainer() && members != nil {
			id += "+" + MembersHash(members[i])
		}
		seen[id]++
		if n := seen[id]; n > 1 {
			id += "~" + strconv.Itoa(n)
		}
		e.ID = id
		out[i] = e
	}
	return out
}

// Parts is a decoded identifier.
type Parts struct {
	Kind          symbols.Kind
	QualifiedName string
	Hash          string
	Members       string
	Ordinal       int
}

// Parse splits an identifier into its parts. Members is empty and Ordinal is 1 when
// absent.
func Parse(id string) (Parts, error) {
	colon := strings.IndexByte(id, ':')
	hash := strings.LastIndexByte(id, '#')
	if colon <= 0 || hash <= colon {
		return Parts{}, fmt.Errorf("%w: %q", ErrMalformedID, id)
	}

	p := Parts{
		Kind:          symbols.Kind(id[:colon]),
		QualifiedName: id[colon+1 : hash],
		Hash:          id[hash+1:],
		Ordinal:       1,
	}
	if !p.Kind.Valid() {
		return Parts{}, fmt.Errorf("%w: unknown kind %q", ErrMalformedID, p.Kind)
	}
	if i := strings.IndexByte(p.Hash, '~'); i >= 0 {
		n, err := strconv.Atoi(p.Hash[i+1:])
		if err != nil || n < 2 {
			return Parts{}, fmt.Errorf("%w: bad ordinal in %q", ErrMalformedID, id)
		}
		p.Ordinal = n
		p.Hash = p.Hash[:i]
	}
	if i := strings.IndexByte(p.Hash, '+'); i >= 0 {
		p.Members = p.Hash[i+1:]
		p.Hash = p.Hash[:i]
		if len(p.Members) != 16 {
			return Parts{}, fmt.Errorf("%w: bad members hash in %q", ErrMalformedID, id)
		}
	}
	if len(p.Hash) != 16 {
		return Parts{}, fmt.Errorf("%w: bad signature hash in %q", ErrMalformedID, id)
	}
	return p, nil
}
