package reducer

import (
	"strings"

	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/syntax"
)

// recognizeC classifies C declarations. Only specifiers with a body declare a type;
// "struct point *p" is a reference. Anonymous specifiers take their typedef name.
func recognizeC(n syntax.Node, scope Scope) []Match {
	switch n.Kind() {
	case "struct_specifier", "union_specifier", "enum_specifier":
		body := n.Field("body")
		if body.IsNil() {
			return nil
		}
		name := n.FieldText("name")
		if name == "" {
			parent := n.Parent()
			if parent.Kind() != "type_definition" {
				return nil
			}
			name, _ = cDeclarator(parent.Field("declarator"))
		}
		if name == "" {
			return nil
		}
		kind := symbols.KindType
		if n.Kind() == "enum_specifier" {
			kind = symbols.KindEnum
		}
		return one(Match{
			Kind:      kind,
			Name:      name,
			Signature: strings.TrimSuffix(n.Kind(), "_specifier"),
			Body:      body,
		})

	case "enumerator":
		if scope.Container != symbols.KindEnum {
			return nil
		}
		sig := ""
		if v := n.FieldText("value"); v != "" {
			sig = compact("= " + v)
		}
		return one(Match{Kind: symbols.KindEnumVariant, Name: n.FieldText("name"), Signature: sig})

	case "field_declaration":
		if scope.Container != symbols.KindType {
			return nil
		}
		base := cBaseType(n)
		var declarators []syntax.Node
		for _, c := range n.NamedChildren() {
			switch c.Kind() {
			case "field_identifier", "pointer_declarator", "array_declarator", "function_declarator", "parenthesized_declarator":
				declarators = append(declarators, c)
			}
		}
		matches := make([]Match, 0, len(declarators))
		for _, d := range declarators {
			name, suffix := cDeclarator(d)
			m := Match{Kind: symbols.KindField, Name: name, Signature: compact(base + suffix)}
			if len(declarators) > 1 {
				m.SpanNode = d
			}
			matches = append(matches, m)
		}
		return matches

	case "function_definition":
		decl := n.Field("declarator")
		fn := decl
		stars := ""
		for fn.Kind() == "pointer_declarator" {
			stars += "*"
			fn = fn.Field("declarator")
		}
		if fn.Kind() != "function_declarator" {
			return nil
		}
		name, _ := cDeclarator(fn.Field("declarator"))

		var types []string
		for _, p := range fn.Field("parameters").NamedChildren() {
			switch p.Kind() {
			case "parameter_declaration":
				_, suffix := cDeclarator(p.Field("declarator"))
				types = append(types, compact(cBaseType(p)+suffix))
			case "variadic_parameter":
				types = append(types, "...")
			}
		}
		if len(types) == 1 && types[0] == "void" {
			types = nil
		}

		var mods []symbols.Modifier
		if cHasStorage(n, "static") {
			mods = append(mods, symbols.ModStatic)
		} else {
			mods = append(mods, symbols.ModPublic)
		}
		return one(Match{
			Kind:      symbols.KindFunction,
			Name:      name,
			Signature: withReturn(paramList(types), cBaseType(n)+stars),
			Modifiers: symbols.NewModifiers(mods...),
		})
	}
	return nil
}

// cBaseType renders qualifiers and the type specifier, e.g. "const char".
func cBaseType(n syntax.Node) string {
	var parts []string
	for _, q := range n.ChildrenOfKind("type_qualifier") {
		parts = append(parts, q.Text())
	}
	typ := n.Field("type")
	if typ.Kind() == "struct_specifier" || typ.Kind() == "union_specifier" || typ.Kind() == "enum_specifier" {
		// Inline bodies are not part of the type name.
		keyword := strings.TrimSuffix(typ.Kind(), "_specifier")
		if name := typ.FieldText("name"); name != "" {
			parts = append(parts, keyword+" "+name)
		} else {
			parts = append(parts, keyword)
		}
	} else {
		parts = append(parts, typ.Text())
	}
	return strings.Join(parts, " ")
}

// cDeclarator unwraps pointer, array and function declarators. It returns the
// declared name and the type suffix the declarator contributes ("*", "[]").
func cDeclarator(d syntax.Node) (name, suffix string) {
	switch d.Kind() {
	case "":
		return "", ""
	case "identifier", "field_identifier", "type_identifier", "primitive_type":
		return d.Text(), ""
	case "pointer_declarator":
		name, suffix = cDeclarator(d.Field("declarator"))
		return name, "*" + suffix
	case "array_declarator":
		name, suffix = cDeclarator(d.Field("declarator"))
		return name, suffix + "[]"
	case "function_declarator":
		name, _ = cDeclarator(d.Field("declarator"))
		return name, "()"
	case "parenthesized_declarator", "abstract_pointer_declarator":
		if inner := d.NamedChild(0); !inner.IsNil() {
			name, suffix = cDeclarator(inner)
		}
		if d.Kind() == "abstract_pointer_declarator" {
			suffix = "*" + suffix
		}
		return name, suffix
	case "abstract_array_declarator":
		return "", "[]"
	}
	return "", ""
}

func cHasStorage(n syntax.Node, class string) bool {
	for _, s := range n.ChildrenOfKind("storage_class_specifier") {
		if s.Text() == class {
			return true
		}
	}
	return false
}
