package reducer

import (
	"strings"

	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/syntax"
)

func recognizePHP(n syntax.Node, scope Scope) []Match {
	switch n.Kind() {
	case "namespace_definition":
		return one(Match{
			Kind: symbols.KindModule,
			Name: compact(n.FieldText("name")),
			Body: n.Field("body"),
		})

	case "class_declaration":
		return one(Match{
			Kind:      symbols.KindType,
			Name:      n.FieldText("name"),
			Signature: joinSig(n.ChildOfKind("base_clause").Text(), n.ChildOfKind("class_interface_clause").Text()),
			Modifiers: symbols.NewModifiers(symbols.ModPublic),
			Body:      n.Field("body"),
		})

	case "interface_declaration", "trait_declaration":
		return one(Match{
			Kind:      symbols.KindTrait,
			Name:      n.FieldText("name"),
			Signature: compact(n.ChildOfKind("base_clause").Text()),
			Modifiers: symbols.NewModifiers(symbols.ModPublic),
			Body:      n.Field("body"),
		})

	case "enum_declaration":
		return one(Match{
			Kind:      symbols.KindEnum,
			Name:      n.FieldText("name"),
			Signature: joinSig(strings.TrimPrefix(strings.TrimSpace(n.ChildOfKind("primitive_type").Text()), ":"), n.ChildOfKind("class_interface_clause").Text()),
			Modifiers: symbols.NewModifiers(symbols.ModPublic),
			Body:      n.Field("body"),
		})

	case "enum_case":
		if scope.Container != symbols.KindEnum {
			return nil
		}
		sig := ""
		if v := n.FieldText("value"); v != "" {
			sig = compact("= " + v)
		}
		return one(Match{Kind: symbols.KindEnumVariant, Name: n.FieldText("name"), Signature: sig})

	case "function_definition":
		return one(Match{
			Kind:      symbols.KindFunction,
			Name:      n.FieldText("name"),
			Signature: phpSignature(n),
			Modifiers: symbols.NewModifiers(symbols.ModPublic),
		})

	case "method_declaration":
		if !scope.Container.IsContainer() {
			return nil
		}
		return one(Match{
			Kind:      symbols.KindFunction,
			Name:      n.FieldText("name"),
			Signature: phpSignature(n),
			Modifiers: phpMemberModifiers(n),
		})

	case "property_declaration":
		if scope.Container != symbols.KindType && scope.Container != symbols.KindTrait {
			return nil
		}
		typ := compact(n.FieldText("type"))
		mods := phpMemberModifiers(n)
		elems := n.ChildrenOfKind("property_element")
		matches := make([]Match, 0, len(elems))
		for _, el := range elems {
			name := el.ChildOfKind("variable_name").Text()
			if name == "" {
				name = el.FieldText("name")
			}
			m := Match{
				Kind:      symbols.KindField,
				Name:      strings.TrimPrefix(name, "$"),
				Signature: typ,
				Modifiers: mods,
			}
			if len(elems) > 1 {
				m.SpanNode = el
			}
			matches = append(matches, m)
		}
		return matches
	}
	return nil
}

func phpSignature(n syntax.Node) string {
	return withReturn(compact(n.FieldText("parameters")), n.FieldText("return_type"))
}

// phpMemberModifiers defaults members without a visibility keyword to public.
func phpMemberModifiers(n syntax.Node) symbols.Modifiers {
	var mods []symbols.Modifier
	vis := n.ChildOfKind("visibility_modifier")
	if vis.IsNil() || strings.EqualFold(vis.Text(), "public") {
		mods = append(mods, symbols.ModPublic)
	}
	if !n.ChildOfKind("static_modifier").IsNil() {
		mods = append(mods, symbols.ModStatic)
	}
	return symbols.NewModifiers(mods...)
}
