package reducer

import (
	"strings"

	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/syntax"
)

func recognizeJava(n syntax.Node, scope Scope) []Match {
	switch n.Kind() {
	case "class_declaration", "record_declaration":
		sig := joinSig(
			n.FieldText("type_parameters"),
			n.FieldText("parameters"),
			n.FieldText("superclass"),
			n.FieldText("interfaces"),
		)
		return one(Match{
			Kind:      symbols.KindType,
			Name:      n.FieldText("name"),
			Signature: sig,
			Modifiers: javaModifiers(n),
			Body:      n.Field("body"),
		})

	case "interface_declaration", "annotation_type_declaration":
		return one(Match{
			Kind:      symbols.KindTrait,
			Name:      n.FieldText("name"),
			Signature: joinSig(n.FieldText("type_parameters"), n.ChildOfKind("extends_interfaces").Text()),
			Modifiers: javaModifiers(n),
			Body:      n.Field("body"),
		})

	case "enum_declaration":
		return one(Match{
			Kind:      symbols.KindEnum,
			Name:      n.FieldText("name"),
			Signature: compact(n.FieldText("interfaces")),
			Modifiers: javaModifiers(n),
			Body:      n.Field("body"),
		})

	case "enum_constant":
		if scope.Container != symbols.KindEnum {
			return nil
		}
		return one(Match{
			Kind:      symbols.KindEnumVariant,
			Name:      n.FieldText("name"),
			Signature: compact(n.FieldText("arguments")),
			Modifiers: symbols.NewModifiers(symbols.ModPublic, symbols.ModStatic),
		})

	case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
		if !scope.Container.IsContainer() {
			return nil
		}
		sig := compact(n.FieldText("type_parameters")) + paramList(javaParamTypes(n.Field("parameters")))
		return one(Match{
			Kind:      symbols.KindFunction,
			Name:      n.FieldText("name"),
			Signature: withReturn(sig, n.FieldText("type")),
			Modifiers: javaMemberModifiers(n, scope),
		})

	case "field_declaration", "constant_declaration":
		if !scope.Container.IsContainer() {
			return nil
		}
		typ := compact(n.FieldText("type"))
		mods := javaMemberModifiers(n, scope)
		declarators := n.ChildrenOfKind("variable_declarator")
		matches := make([]Match, 0, len(declarators))
		for _, d := range declarators {
			m := Match{
				Kind:      symbols.KindField,
				Name:      d.FieldText("name"),
				Signature: typ + compact(d.FieldText("dimensions")),
				Modifiers: mods,
			}
			if len(declarators) > 1 {
				m.SpanNode = d
			}
			matches = append(matches, m)
		}
		return matches
	}
	return nil
}

func javaParamTypes(list syntax.Node) []string {
	var types []string
	for _, p := range list.NamedChildren() {
		switch p.Kind() {
		case "formal_parameter":
			types = append(types, compact(p.FieldText("type")+p.FieldText("dimensions")))
		case "spread_parameter":
			words := strings.Fields(p.Text())
			if len(words) > 1 {
				words = words[:len(words)-1]
			}
			types = append(types, compact(strings.Join(words, " ")))
		}
	}
	return types
}

func javaModifiers(n syntax.Node) symbols.Modifiers {
	text := n.ChildOfKind("modifiers").Text()
	var mods []symbols.Modifier
	if hasWord(text, "public") {
		mods = append(mods, symbols.ModPublic)
	}
	if hasWord(text, "static") {
		mods = append(mods, symbols.ModStatic)
	}
	return symbols.NewModifiers(mods...)
}

// javaMemberModifiers adds the implicit public of interface members.
func javaMemberModifiers(n syntax.Node, scope Scope) symbols.Modifiers {
	mods := javaModifiers(n)
	if scope.Container == symbols.KindTrait && !hasWord(n.ChildOfKind("modifiers").Text(), "private") {
		mods = mods.With(symbols.ModPublic)
	}
	return mods
}
