package typescript

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/quarry/internal/entity"
)

// typeNode parses a type expression into an entity. Identifier and
// predefined-type nodes also emit a reference so the resolver can link
// them; everything the resolver cannot link later stays as the raw name.
func (ex *extractor) typeNode(node *sitter.Node) *entity.Entity {
	switch node.Type() {
	case "predefined_type":
		name := node.Content(ex.src)
		e := &entity.Entity{
			Title:    name,
			Kind:     entity.KindPredefinedType,
			Language: Language,
			Source:   ex.source(node),
		}
		ex.reference(name, e, true)
		return e

	case "type_identifier":
		name := node.Content(ex.src)
		e := &entity.Entity{
			Title:    name,
			Kind:     entity.KindIdentifier,
			Language: Language,
			Source:   ex.source(node),
		}
		ex.reference(name, e, true)
		return e

	case "nested_type_identifier":
		// "ns.Foo": recorded with the full path as the name. Member
		// access into namespaces is not resolved.
		name := node.Content(ex.src)
		e := &entity.Entity{
			Title:    name,
			Kind:     entity.KindIdentifier,
			Language: Language,
			Source:   ex.source(node),
		}
		ex.reference(name, e, true)
		return e

	case "object_type":
		// Anonymous: contributes no FQN segment; properties qualify
		// against the nearest named ancestor.
		e := &entity.Entity{
			Kind:     entity.KindObject,
			Language: Language,
			Source:   ex.source(node),
			Meta:     entity.Meta{"raw": node.Content(ex.src)},
		}
		ex.table.Push()
		ex.objectMembers(node, e)
		ex.table.Pop()
		return e

	case "union_type":
		e := &entity.Entity{
			Kind:     entity.KindUnion,
			Language: Language,
			Source:   ex.source(node),
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if t := ex.typeNode(node.NamedChild(i)); t != nil {
				e.Members = append(e.Members, t)
			}
		}
		return e

	case "array_type":
		e := &entity.Entity{
			Kind:     entity.KindArray,
			Language: Language,
			Source:   ex.source(node),
		}
		if node.NamedChildCount() > 0 {
			if t := ex.typeNode(node.NamedChild(0)); t != nil {
				e.Members = append(e.Members, t)
			}
		}
		return e

	case "tuple_type":
		e := &entity.Entity{
			Kind:     "tuple_type",
			Language: Language,
			Source:   ex.source(node),
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if t := ex.typeNode(node.NamedChild(i)); t != nil {
				e.Members = append(e.Members, t)
			}
		}
		return e

	case "generic_type":
		name := fieldText(node, "name", ex.src)
		e := &entity.Entity{
			Title:    name,
			Kind:     entity.KindGenericType,
			Language: Language,
			Source:   ex.source(node),
		}
		ex.reference(name, e, true)
		if args := node.ChildByFieldName("type_arguments"); args != nil {
			for i := 0; i < int(args.NamedChildCount()); i++ {
				if t := ex.typeNode(args.NamedChild(i)); t != nil {
					t.MemberKind = entity.MemberTypeArg
					e.Members = append(e.Members, t)
				}
			}
		}
		return e

	case "function_type":
		e := &entity.Entity{
			Kind:     entity.KindFunctionType,
			Language: Language,
			Source:   ex.source(node),
		}
		ex.table.Push()
		if params := node.ChildByFieldName("parameters"); params != nil {
			ex.parameters(params, e)
		}
		if rt := node.ChildByFieldName("return_type"); rt != nil {
			if t := ex.typeNode(rt); t != nil {
				t.MemberKind = entity.MemberReturnType
				e.Members = append(e.Members, t)
			}
		}
		ex.table.Pop()
		return e

	case "parenthesized_type":
		if node.NamedChildCount() > 0 {
			return ex.typeNode(node.NamedChild(0))
		}
		return nil

	case "type_query":
		// "typeof X".
		return &entity.Entity{
			Title:    node.Content(ex.src),
			Kind:     "typeof",
			Language: Language,
			Source:   ex.source(node),
		}

	case "literal_type":
		return &entity.Entity{
			Title:    node.Content(ex.src),
			Kind:     "literal_type",
			Language: Language,
			Source:   ex.source(node),
		}
	}

	// Unhandled type shapes keep their raw text so nothing is lost.
	return &entity.Entity{
		Kind:     entity.KindType,
		Language: Language,
		Source:   ex.source(node),
		Meta:     entity.Meta{"raw": node.Content(ex.src)},
	}
}
