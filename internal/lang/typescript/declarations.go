package typescript

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/quarry/internal/entity"
)

// function parses a function_declaration. Parameters, type parameters,
// and the return type become members; type parameters are bound in the
// function's own scope so they shadow file-level names of the same name.
func (ex *extractor) function(node *sitter.Node) *entity.Entity {
	e := &entity.Entity{
		Title:       fieldText(node, "name", ex.src),
		Description: ex.docs(node),
		Kind:        entity.KindFunction,
		Language:    Language,
		Source:      ex.source(node),
	}
	if hasKeyword(node, "async") {
		e.Meta = entity.Meta{"async": true}
	}

	ex.table.Push()
	ex.signature(node, e)
	ex.table.Pop()
	return e
}

// signature fills parameters, type parameters, and return type members
// for functions, methods, and function types. Callers own the enclosing
// scope.
func (ex *extractor) signature(node *sitter.Node, e *entity.Entity) {
	if tp := node.ChildByFieldName("type_parameters"); tp != nil {
		ex.typeParameters(tp, e)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		ex.parameters(params, e)
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		if t := ex.typeAnnotation(rt); t != nil {
			t.MemberKind = entity.MemberReturnType
			e.Members = append(e.Members, t)
		}
	}
}

// typeParameters parses "<T, U extends V>" and binds each parameter in
// the current scope.
func (ex *extractor) typeParameters(node *sitter.Node, parent *entity.Entity) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		tp := node.NamedChild(i)
		if tp.Type() != "type_parameter" {
			continue
		}
		e := &entity.Entity{
			Title:    fieldText(tp, "name", ex.src),
			Kind:     "type_variable",
			Language: Language,
			Source:   ex.source(tp),
		}
		if c := tp.ChildByFieldName("constraint"); c != nil {
			for j := 0; j < int(c.NamedChildCount()); j++ {
				if t := ex.typeNode(c.NamedChild(j)); t != nil {
					t.MemberKind = "constraint"
					e.Members = append(e.Members, t)
				}
			}
		}
		parent.Members = append(parent.Members, e)
		ex.table.Bind(e.Title, e, false)
	}
}

// parameters parses formal_parameters into parameter members.
func (ex *extractor) parameters(node *sitter.Node, parent *entity.Entity) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		p := node.NamedChild(i)
		optional := false
		switch p.Type() {
		case "optional_parameter":
			optional = true
		case "required_parameter":
		default:
			continue
		}

		e := &entity.Entity{
			Title:      fieldText(p, "pattern", ex.src),
			Kind:       entity.KindParameter,
			MemberKind: entity.MemberParameter,
			Language:   Language,
			Source:     ex.source(p),
		}
		if optional {
			e.Meta = entity.Meta{"optional": true}
		}
		if t := p.ChildByFieldName("type"); t != nil {
			if typ := ex.typeAnnotation(t); typ != nil {
				e.Members = append(e.Members, typ)
			}
		}
		if v := p.ChildByFieldName("value"); v != nil {
			if e.Meta == nil {
				e.Meta = entity.Meta{}
			}
			e.Meta["default"] = v.Content(ex.src)
		}
		parent.Members = append(parent.Members, e)
		ex.table.Bind(e.Title, e, false)
	}
}

// class parses class_declaration and abstract_class_declaration. Methods
// and fields become members.
func (ex *extractor) class(node *sitter.Node) *entity.Entity {
	e := &entity.Entity{
		Title:       fieldText(node, "name", ex.src),
		Description: ex.docs(node),
		Kind:        entity.KindClass,
		Language:    Language,
		Source:      ex.source(node),
	}
	if node.Type() == "abstract_class_declaration" {
		e.Meta = entity.Meta{"abstract": true}
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return e
	}

	ex.table.Push()
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_definition":
			e.Members = append(e.Members, ex.method(member))
		case "public_field_definition":
			e.Members = append(e.Members, ex.field(member))
		}
	}
	ex.table.Pop()
	return e
}

// method parses a class method_definition.
func (ex *extractor) method(node *sitter.Node) *entity.Entity {
	e := &entity.Entity{
		Title:       fieldText(node, "name", ex.src),
		Description: ex.docs(node),
		Kind:        entity.KindMethod,
		Language:    Language,
		Source:      ex.source(node),
	}
	meta := entity.Meta{}
	if hasKeyword(node, "static") {
		meta["static"] = true
	}
	if hasKeyword(node, "async") {
		meta["async"] = true
	}
	if len(meta) > 0 {
		e.Meta = meta
	}

	ex.table.Push()
	ex.signature(node, e)
	ex.table.Pop()
	return e
}

// field parses a class public_field_definition.
func (ex *extractor) field(node *sitter.Node) *entity.Entity {
	e := &entity.Entity{
		Title:       fieldText(node, "name", ex.src),
		Description: ex.docs(node),
		Kind:        entity.KindField,
		Language:    Language,
		Source:      ex.source(node),
	}
	if hasKeyword(node, "readonly") {
		e.Meta = entity.Meta{"readonly": true}
	}
	if t := node.ChildByFieldName("type"); t != nil {
		if typ := ex.typeAnnotation(t); typ != nil {
			e.Members = append(e.Members, typ)
		}
	}
	return e
}

// interfaceDecl parses an interface_declaration. Properties and method
// signatures become members.
func (ex *extractor) interfaceDecl(node *sitter.Node) *entity.Entity {
	e := &entity.Entity{
		Title:       fieldText(node, "name", ex.src),
		Description: ex.docs(node),
		Kind:        entity.KindInterface,
		Language:    Language,
		Source:      ex.source(node),
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return e
	}

	ex.table.Push()
	ex.objectMembers(body, e)
	ex.table.Pop()
	return e
}

// typeAlias parses a type_alias_declaration. The aliased type is the
// single member.
func (ex *extractor) typeAlias(node *sitter.Node) *entity.Entity {
	e := &entity.Entity{
		Title:       fieldText(node, "name", ex.src),
		Description: ex.docs(node),
		Kind:        entity.KindTypeAlias,
		Language:    Language,
		Source:      ex.source(node),
	}

	ex.table.Push()
	if tp := node.ChildByFieldName("type_parameters"); tp != nil {
		ex.typeParameters(tp, e)
	}
	if v := node.ChildByFieldName("value"); v != nil {
		if t := ex.typeNode(v); t != nil {
			e.Members = append(e.Members, t)
		}
	}
	ex.table.Pop()
	return e
}

// objectMembers parses the members of an object_type or interface body
// into property and method entities on parent.
func (ex *extractor) objectMembers(body *sitter.Node, parent *entity.Entity) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "property_signature":
			parent.Members = append(parent.Members, ex.property(member))
		case "method_signature":
			m := &entity.Entity{
				Title:       fieldText(member, "name", ex.src),
				Description: ex.docs(member),
				Kind:        entity.KindMethod,
				MemberKind:  entity.MemberProperty,
				Language:    Language,
				Source:      ex.source(member),
			}
			ex.table.Push()
			ex.signature(member, m)
			ex.table.Pop()
			parent.Members = append(parent.Members, m)
		}
	}
}

// property parses a property_signature ("name: string", "age?: number").
func (ex *extractor) property(node *sitter.Node) *entity.Entity {
	e := &entity.Entity{
		Title:       fieldText(node, "name", ex.src),
		Description: ex.docs(node),
		Kind:        entity.KindProperty,
		MemberKind:  entity.MemberProperty,
		Language:    Language,
		Source:      ex.source(node),
	}
	if hasKeyword(node, "?") {
		e.Meta = entity.Meta{"optional": true}
	}
	if hasKeyword(node, "readonly") {
		if e.Meta == nil {
			e.Meta = entity.Meta{}
		}
		e.Meta["readonly"] = true
	}
	if t := node.ChildByFieldName("type"); t != nil {
		if typ := ex.typeAnnotation(t); typ != nil {
			e.Members = append(e.Members, typ)
		}
	}
	return e
}

// typeAnnotation unwraps ": T" and parses the type.
func (ex *extractor) typeAnnotation(node *sitter.Node) *entity.Entity {
	if node.NamedChildCount() == 0 {
		return nil
	}
	return ex.typeNode(node.NamedChild(0))
}

// hasKeyword reports whether node has an anonymous child token with the
// given text ("async", "static", "readonly", "?").
func hasKeyword(node *sitter.Node, keyword string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if !c.IsNamed() && c.Type() == keyword {
			return true
		}
	}
	return false
}
