package reducer

import (
	"strings"

	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/syntax"
)

func recognizePython(n syntax.Node, scope Scope) []Match {
	switch n.Kind() {
	case "class_definition":
		name := n.FieldText("name")
		return one(Match{
			Kind:      symbols.KindType,
			Name:      name,
			Signature: joinSig(n.FieldText("type_parameters"), n.FieldText("superclasses")),
			Modifiers: pythonVisibility(name),
			Body:      n.Field("body"),
		})

	case "function_definition":
		name := n.FieldText("name")
		mods := pythonVisibility(name)
		if n.HasToken("async") {
			mods = mods.With(symbols.ModAsync)
		}
		return one(Match{
			Kind:      symbols.KindFunction,
			Name:      name,
			Signature: withReturn(compact(n.FieldText("type_parameters")+n.FieldText("parameters")), n.FieldText("return_type")),
			Modifiers: mods,
		})

	case "decorated_definition":
		def := n.Field("definition")
		matches := recognizePython(def, scope)
		if len(matches) == 0 {
			return nil
		}
		m := matches[0]
		// The declaration starts at its first decorator.
		m.SpanNode = n
		if m.Body.IsNil() && m.Kind.IsContainer() {
			m.Body = def
		}
		for _, d := range n.ChildrenOfKind("decorator") {
			switch strings.TrimSpace(strings.TrimPrefix(d.Text(), "@")) {
			case "staticmethod", "classmethod":
				m.Modifiers = m.Modifiers.With(symbols.ModStatic)
			}
		}
		return one(m)
	}
	return nil
}

// pythonVisibility treats leading-underscore names as private, dunder methods excepted.
func pythonVisibility(name string) symbols.Modifiers {
	if strings.HasPrefix(name, "_") && !(strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")) {
		return nil
	}
	return symbols.NewModifiers(symbols.ModPublic)
}
