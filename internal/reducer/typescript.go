package reducer

import (
	"strings"

	"github.com/mvp-joe/semantic/internal/symbols"
	"github.com/mvp-joe/semantic/internal/syntax"
)

// recognizeTypeScript classifies TypeScript and TSX declarations.
func recognizeTypeScript(n syntax.Node, scope Scope) []Match {
	switch n.Kind() {
	case "class_declaration", "abstract_class_declaration":
		return one(Match{
			Kind:      symbols.KindType,
			Name:      n.FieldText("name"),
			Signature: joinSig(n.FieldText("type_parameters"), n.ChildOfKind("class_heritage").Text()),
			Modifiers: tsExported(n),
			Body:      n.Field("body"),
		})

	case "interface_declaration":
		return one(Match{
			Kind:      symbols.KindTrait,
			Name:      n.FieldText("name"),
			Signature: joinSig(n.FieldText("type_parameters"), n.ChildOfKind("extends_type_clause").Text()),
			Modifiers: tsExported(n),
			Body:      n.Field("body"),
		})

	case "type_alias_declaration":
		return one(Match{
			Kind:      symbols.KindType,
			Name:      n.FieldText("name"),
			Signature: joinSig(n.FieldText("type_parameters"), "= "+n.FieldText("value")),
			Modifiers: tsExported(n),
			Body:      n.Field("name"),
		})

	case "enum_declaration":
		return one(Match{
			Kind:      symbols.KindEnum,
			Name:      n.FieldText("name"),
			Modifiers: tsExported(n),
			Body:      n.Field("body"),
		})

	case "property_identifier":
		if scope.Container != symbols.KindEnum || n.Parent().Kind() != "enum_body" {
			return nil
		}
		return one(Match{Kind: symbols.KindEnumVariant, Name: n.Text()})

	case "enum_assignment":
		if scope.Container != symbols.KindEnum {
			return nil
		}
		return one(Match{
			Kind:      symbols.KindEnumVariant,
			Name:      trimQuotes(n.FieldText("name")),
			Signature: compact("= " + n.FieldText("value")),
		})

	case "internal_module", "module":
		return one(Match{
			Kind:      symbols.KindModule,
			Name:      trimQuotes(n.FieldText("name")),
			Modifiers: tsExported(n),
			Body:      n.Field("body"),
		})

	case "function_declaration", "generator_function_declaration", "function_signature":
		mods := tsExported(n)
		if n.HasToken("async") {
			mods = mods.With(symbols.ModAsync)
		}
		return one(Match{
			Kind:      symbols.KindFunction,
			Name:      n.FieldText("name"),
			Signature: tsSignature(n),
			Modifiers: mods,
		})

	case "method_definition", "method_signature", "abstract_method_signature":
		if scope.Container != symbols.KindType && scope.Container != symbols.KindTrait {
			return nil
		}
		mods := tsMemberModifiers(n, scope)
		if n.HasToken("async") {
			mods = mods.With(symbols.ModAsync)
		}
		return one(Match{
			Kind:      symbols.KindFunction,
			Name:      n.FieldText("name"),
			Signature: tsSignature(n),
			Modifiers: mods,
		})

	case "public_field_definition", "property_signature":
		if scope.Container != symbols.KindType && scope.Container != symbols.KindTrait {
			return nil
		}
		return one(Match{
			Kind:      symbols.KindField,
			Name:      n.FieldText("name"),
			Signature: tsAnnotation(n.FieldText("type")),
			Modifiers: tsMemberModifiers(n, scope),
		})
	}
	return nil
}

func tsSignature(n syntax.Node) string {
	sig := compact(n.FieldText("type_parameters") + n.FieldText("parameters"))
	return withReturn(sig, tsAnnotation(n.FieldText("return_type")))
}

// tsAnnotation strips the leading colon of a type annotation.
func tsAnnotation(s string) string {
	return compact(strings.TrimPrefix(strings.TrimSpace(s), ":"))
}

// tsExported marks declarations wrapped in an export statement as public.
func tsExported(n syntax.Node) symbols.Modifiers {
	p := n.Parent()
	if p.Kind() == "ambient_declaration" {
		p = p.Parent()
	}
	if p.Kind() == "export_statement" {
		return symbols.NewModifiers(symbols.ModPublic)
	}
	return nil
}

// tsMemberModifiers reads accessibility and static markers of a class or interface member.
// Members are public unless marked private or protected, or named with a "#".
func tsMemberModifiers(n syntax.Node, scope Scope) symbols.Modifiers {
	var mods []symbols.Modifier
	public := n.Field("name").Kind() != "private_property_identifier"
	if acc := n.ChildOfKind("accessibility_modifier"); !acc.IsNil() && acc.Text() != "public" {
		public = false
	}
	if public {
		mods = append(mods, symbols.ModPublic)
	}
	if scope.Container == symbols.KindType && n.HasToken("static") {
		mods = append(mods, symbols.ModStatic)
	}
	return symbols.NewModifiers(mods...)
}
