package reducer

import (
	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/syntax"
)

func recognizeRuby(n syntax.Node, scope Scope) []Match {
	switch n.Kind() {
	case "module":
		return one(Match{
			Kind:      symbols.KindModule,
			Name:      compact(n.FieldText("name")),
			Modifiers: symbols.NewModifiers(symbols.ModPublic),
			Body:      rubyBody(n),
		})

	case "class":
		return one(Match{
			Kind:      symbols.KindType,
			Name:      compact(n.FieldText("name")),
			Signature: compact(n.FieldText("superclass")),
			Modifiers: symbols.NewModifiers(symbols.ModPublic),
			Body:      rubyBody(n),
		})

	case "method":
		mods := rubyVisibility(n)
		if rubyInSingletonClass(n) {
			mods = mods.With(symbols.ModStatic)
		}
		return one(Match{
			Kind:      symbols.KindFunction,
			Name:      n.FieldText("name"),
			Signature: rubyParams(n),
			Modifiers: mods,
		})

	case "singleton_method":
		return one(Match{
			Kind:      symbols.KindFunction,
			Name:      n.FieldText("name"),
			Signature: rubyParams(n),
			Modifiers: rubyVisibility(n).With(symbols.ModStatic),
		})
	}
	return nil
}

// rubyBody returns the statement body. Older grammars keep statements as direct children.
func rubyBody(n syntax.Node) syntax.Node {
	if body := n.Field("body"); !body.IsNil() {
		return body
	}
	return n
}

func rubyParams(n syntax.Node) string {
	params := compact(n.FieldText("parameters"))
	if params == "" {
		return "()"
	}
	if params[0] != '(' {
		params = "(" + params + ")"
	}
	return params
}

// rubyVisibility scans earlier siblings for bare private/protected/public calls.
func rubyVisibility(n syntax.Node) symbols.Modifiers {
	public := true
	start := n.Span().StartByte
	for _, sib := range n.Parent().NamedChildren() {
		if sib.Span().StartByte >= start {
			break
		}
		if sib.Kind() != "identifier" {
			continue
		}
		switch sib.Text() {
		case "private", "protected":
			public = false
		case "public":
			public = true
		}
	}
	if !public {
		return nil
	}
	return symbols.NewModifiers(symbols.ModPublic)
}

func rubyInSingletonClass(n syntax.Node) bool {
	for p, i := n.Parent(), 0; !p.IsNil() && i < 2; p, i = p.Parent(), i+1 {
		if p.Kind() == "singleton_class" {
			return true
		}
	}
	return false
}
