package reducer

import (
	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/syntax"
)

// recognizeRust classifies Rust items.
func recognizeRust(n syntax.Node, scope Scope) []Match {
	switch n.Kind() {
	case "mod_item":
		return one(Match{
			Kind:      symbols.KindModule,
			Name:      n.FieldText("name"),
			Modifiers: rustVisibility(n),
			Body:      n.Field("body"),
		})

	case "struct_item", "union_item":
		body := n.Field("body")
		sig := n.FieldText("type_parameters")
		if body.Kind() == "ordered_field_declaration_list" {
			sig += rustTupleFields(body)
		}
		return one(Match{
			Kind:      symbols.KindType,
			Name:      n.FieldText("name"),
			Signature: joinSig(sig, n.ChildOfKind("where_clause").Text()),
			Modifiers: rustVisibility(n),
			Body:      body,
		})

	case "type_item":
		return one(Match{
			Kind:      symbols.KindType,
			Name:      n.FieldText("name"),
			Signature: joinSig(n.FieldText("type_parameters"), "= "+n.FieldText("type")),
			Modifiers: rustVisibility(n),
		})

	case "enum_item":
		return one(Match{
			Kind:      symbols.KindEnum,
			Name:      n.FieldText("name"),
			Signature: joinSig(n.FieldText("type_parameters"), n.ChildOfKind("where_clause").Text()),
			Modifiers: rustVisibility(n),
			Body:      n.Field("body"),
		})

	case "enum_variant":
		sig := ""
		if body := n.Field("body"); body.Kind() == "ordered_field_declaration_list" {
			sig = rustTupleFields(body)
		} else if !body.IsNil() {
			sig = body.Text()
		}
		if v := n.FieldText("value"); v != "" {
			sig = joinSig(sig, "= "+v)
		}
		return one(Match{
			Kind:      symbols.KindEnumVariant,
			Name:      n.FieldText("name"),
			Signature: compact(sig),
			Modifiers: rustVisibility(n),
		})

	case "trait_item":
		return one(Match{
			Kind:      symbols.KindTrait,
			Name:      n.FieldText("name"),
			Signature: joinSig(n.FieldText("type_parameters")+n.FieldText("bounds"), n.ChildOfKind("where_clause").Text()),
			Modifiers: rustVisibility(n),
			Body:      n.Field("body"),
		})

	case "impl_item":
		typ := compact(n.FieldText("type"))
		trait := compact(n.FieldText("trait"))
		name := "impl " + typ
		head := typ
		if trait != "" {
			name = "impl " + trait + " for " + typ
			head = trait + " for " + typ
		}
		return one(Match{
			Kind:      symbols.KindImplementation,
			Name:      name,
			Signature: joinSig(n.FieldText("type_parameters"), head, n.ChildOfKind("where_clause").Text()),
			TypeRef:   typ,
			TraitRef:  trait,
			Body:      n.Field("body"),
		})

	case "function_item", "function_signature_item":
		return one(rustFunction(n, scope))

	case "field_declaration":
		if scope.Container != symbols.KindType {
			return nil
		}
		return one(Match{
			Kind:      symbols.KindField,
			Name:      n.FieldText("name"),
			Signature: compact(n.FieldText("type")),
			Modifiers: rustVisibility(n),
		})
	}
	return nil
}

func rustFunction(n syntax.Node, scope Scope) Match {
	var (
		mods    []symbols.Modifier
		types   []string
		hasSelf bool
	)
	if !n.ChildOfKind("visibility_modifier").IsNil() {
		mods = append(mods, symbols.ModPublic)
	}
	if fm := n.ChildOfKind("function_modifiers"); fm.HasToken("async") {
		mods = append(mods, symbols.ModAsync)
	}

	for _, p := range n.Field("parameters").NamedChildren() {
		switch p.Kind() {
		case "self_parameter":
			hasSelf = true
			if p.HasToken("mutable_specifier") {
				mods = append(mods, symbols.ModMutableSelf)
			}
			types = append(types, compact(p.Text()))
		case "parameter":
			if t := p.FieldText("type"); t != "" {
				types = append(types, compact(t))
			} else {
				types = append(types, compact(p.Text()))
			}
		case "variadic_parameter":
			types = append(types, "...")
		case "attribute_item", "line_comment", "block_comment":
		default:
			types = append(types, compact(p.Text()))
		}
	}

	if !hasSelf && (scope.Container == symbols.KindImplementation || scope.Container == symbols.KindTrait) {
		mods = append(mods, symbols.ModStatic)
	}

	sig := n.FieldText("type_parameters") + paramList(types)
	sig = withReturn(sig, n.FieldText("return_type"))
	sig = joinSig(sig, n.ChildOfKind("where_clause").Text())

	return Match{
		Kind:      symbols.KindFunction,
		Name:      n.FieldText("name"),
		Signature: sig,
		Modifiers: symbols.NewModifiers(mods...),
	}
}

func rustVisibility(n syntax.Node) symbols.Modifiers {
	if n.ChildOfKind("visibility_modifier").IsNil() {
		return nil
	}
	return symbols.NewModifiers(symbols.ModPublic)
}

// rustTupleFields renders "(pub i32, String)" as "(i32, String)".
func rustTupleFields(list syntax.Node) string {
	var types []string
	for _, c := range list.NamedChildren() {
		switch c.Kind() {
		case "visibility_modifier", "attribute_item", "line_comment", "block_comment":
			continue
		}
		types = append(types, compact(c.Text()))
	}
	return paramList(types)
}
