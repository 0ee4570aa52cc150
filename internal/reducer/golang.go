package reducer

import (
	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/syntax"
)

// recognizeGo classifies Go declarations. Methods are top-level functions bound to a
// receiver; the linker attaches them to the receiver type.
func recognizeGo(n syntax.Node, scope Scope) []Match {
	switch n.Kind() {
	case "type_spec":
		name := n.FieldText("name")
		typ := n.Field("type")
		m := Match{
			Kind:      symbols.KindType,
			Name:      name,
			Signature: compact(n.FieldText("type_parameters")),
			Modifiers: goVisibility(name),
		}
		switch typ.Kind() {
		case "struct_type":
			m.Body = typ.ChildOfKind("field_declaration_list")
		case "interface_type":
			m.Kind = symbols.KindTrait
			m.Body = typ
		default:
			// Anonymous structs inside map or func types are not members.
			m.Signature = joinSig(m.Signature, typ.Text())
			m.Body = n.Field("name")
		}
		return one(m)

	case "type_alias":
		name := n.FieldText("name")
		return one(Match{
			Kind:      symbols.KindType,
			Name:      name,
			Signature: joinSig(n.FieldText("type_parameters"), "= "+n.FieldText("type")),
			Modifiers: goVisibility(name),
			Body:      n.Field("name"),
		})

	case "field_declaration":
		if scope.Container != symbols.KindType {
			return nil
		}
		return goFields(n)

	case "method_elem", "method_spec":
		if scope.Container != symbols.KindTrait {
			return nil
		}
		name := n.FieldText("name")
		return one(Match{
			Kind:      symbols.KindFunction,
			Name:      name,
			Signature: goSignature(n),
			Modifiers: goVisibility(name),
		})

	case "function_declaration":
		name := n.FieldText("name")
		return one(Match{
			Kind:      symbols.KindFunction,
			Name:      name,
			Signature: goSignature(n),
			Modifiers: goVisibility(name),
		})

	case "method_declaration":
		name := n.FieldText("name")
		mods := goVisibility(name)
		var recvType string
		for _, p := range n.Field("receiver").NamedChildren() {
			if p.Kind() != "parameter_declaration" {
				continue
			}
			t := p.Field("type")
			if t.Kind() == "pointer_type" {
				mods = mods.With(symbols.ModMutableSelf)
			}
			recvType = baseTypeName(t.Text())
		}
		return one(Match{
			Kind:      symbols.KindFunction,
			Name:      name,
			Signature: goSignature(n),
			Modifiers: mods,
			TypeRef:   recvType,
		})
	}
	return nil
}

// goFields yields one field per name; "X, Y int" declares two. Embedded fields are
// named after their type.
func goFields(n syntax.Node) []Match {
	typ := compact(n.FieldText("type"))
	names := n.ChildrenOfKind("field_identifier")
	if len(names) == 0 {
		name := baseTypeName(typ)
		return one(Match{
			Kind:      symbols.KindField,
			Name:      name,
			Signature: typ,
			Modifiers: goVisibility(name),
		})
	}

	matches := make([]Match, 0, len(names))
	for _, id := range names {
		m := Match{
			Kind:      symbols.KindField,
			Name:      id.Text(),
			Signature: typ,
			Modifiers: goVisibility(id.Text()),
		}
		if len(names) > 1 {
			m.SpanNode = id
		}
		matches = append(matches, m)
	}
	return matches
}

func goSignature(n syntax.Node) string {
	sig := compact(n.FieldText("type_parameters")) + paramList(goParamTypes(n.Field("parameters")))
	result := n.Field("result")
	if result.Kind() == "parameter_list" {
		return withReturn(sig, paramList(goParamTypes(result)))
	}
	return withReturn(sig, result.Text())
}

// goParamTypes expands "a, b int" into one type per name.
func goParamTypes(list syntax.Node) []string {
	var types []string
	for _, p := range list.NamedChildren() {
		switch p.Kind() {
		case "parameter_declaration":
			t := compact(p.FieldText("type"))
			count := len(p.ChildrenOfKind("identifier"))
			if count == 0 {
				count = 1
			}
			for i := 0; i < count; i++ {
				types = append(types, t)
			}
		case "variadic_parameter_declaration":
			types = append(types, "..."+compact(p.FieldText("type")))
		}
	}
	return types
}

func goVisibility(name string) symbols.Modifiers {
	if isExported(name) {
		return symbols.NewModifiers(symbols.ModPublic)
	}
	return nil
}
