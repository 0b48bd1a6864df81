// Package python implements the Python language backend on tree-sitter.
// It extracts functions, classes, parameters, type annotations, and
// docstrings, plus import bindings for resolution.
package python

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	py "github.com/smacker/go-tree-sitter/python"

	"github.com/jward/quarry/internal/entity"
	"github.com/jward/quarry/internal/lang"
	"github.com/jward/quarry/internal/scope"
)

// Language is the backend's language tag.
const Language = "py"

// Backend is the Python backend. Stateless; safe for concurrent use.
type Backend struct{}

// New returns the Python backend.
func New() *Backend { return &Backend{} }

// Language implements lang.Backend.
func (*Backend) Language() string { return Language }

// Extract implements lang.Backend.
func (*Backend) Extract(ctx context.Context, module string, src []byte) (*lang.Result, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(py.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", module, err)
	}
	defer tree.Close()

	ex := &extractor{
		module: module,
		src:    src,
		table:  scope.NewTable(module),
	}

	root := tree.RootNode()
	var entities []*entity.Entity
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if e := ex.statement(root.NamedChild(i)); e != nil {
			entities = append(entities, e)
		}
	}

	return &lang.Result{
		Module:     module,
		Language:   Language,
		Entities:   entities,
		References: ex.refs,
		Scopes:     ex.table,
	}, nil
}

type extractor struct {
	module string
	src    []byte
	table  *scope.Table
	refs   []*entity.Reference
}

// statement handles one top-level statement. Python has no export
// syntax: every top-level binding is importable from other modules.
func (ex *extractor) statement(node *sitter.Node) *entity.Entity {
	switch node.Type() {
	case "function_definition":
		e := ex.function(node)
		ex.table.Bind(e.Title, e, true)
		return e
	case "class_definition":
		e := ex.class(node)
		ex.table.Bind(e.Title, e, true)
		return e
	case "decorated_definition":
		if def := node.ChildByFieldName("definition"); def != nil {
			return ex.statement(def)
		}
	case "import_statement":
		ex.importStatement(node)
	case "import_from_statement":
		ex.importFromStatement(node)
	}
	return nil
}

// function parses a function_definition. The docstring is the first
// string expression of the body.
func (ex *extractor) function(node *sitter.Node) *entity.Entity {
	e := &entity.Entity{
		Title:       fieldText(node, "name", ex.src),
		Description: docstring(node, ex.src),
		Kind:        entity.KindFunction,
		Language:    Language,
		Source:      ex.source(node),
	}
	if hasKeyword(node, "async") {
		e.Meta = entity.Meta{"async": true}
	}

	ex.table.Push()
	if params := node.ChildByFieldName("parameters"); params != nil {
		ex.parameters(params, e)
	}
	if rt := node.ChildByFieldName("return_type"); rt != nil {
		if t := ex.typeExpr(rt); t != nil {
			t.MemberKind = entity.MemberReturnType
			e.Members = append(e.Members, t)
		}
	}
	ex.table.Pop()
	return e
}

// class parses a class_definition. Methods become members; nested
// functions inside methods are not extracted.
func (ex *extractor) class(node *sitter.Node) *entity.Entity {
	e := &entity.Entity{
		Title:       fieldText(node, "name", ex.src),
		Description: docstring(node, ex.src),
		Kind:        entity.KindClass,
		Language:    Language,
		Source:      ex.source(node),
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return e
	}

	ex.table.Push()
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() == "decorated_definition" {
			if def := stmt.ChildByFieldName("definition"); def != nil {
				stmt = def
			}
		}
		if stmt.Type() == "function_definition" {
			m := ex.function(stmt)
			m.Kind = entity.KindMethod
			e.Members = append(e.Members, m)
		}
	}
	ex.table.Pop()
	return e
}

// parameters parses a parameters node. "self" and "cls" receivers are
// kept but tagged in meta.
func (ex *extractor) parameters(node *sitter.Node, parent *entity.Entity) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		p := node.NamedChild(i)

		var e *entity.Entity
		switch p.Type() {
		case "identifier":
			e = ex.parameter(p, p.Content(ex.src), nil, nil)
		case "typed_parameter":
			name := ""
			if p.NamedChildCount() > 0 {
				name = p.NamedChild(0).Content(ex.src)
			}
			e = ex.parameter(p, name, p.ChildByFieldName("type"), nil)
		case "default_parameter":
			e = ex.parameter(p, fieldText(p, "name", ex.src), nil, p.ChildByFieldName("value"))
		case "typed_default_parameter":
			e = ex.parameter(p, fieldText(p, "name", ex.src), p.ChildByFieldName("type"), p.ChildByFieldName("value"))
		default:
			continue
		}

		parent.Members = append(parent.Members, e)
		ex.table.Bind(e.Title, e, false)
	}
}

func (ex *extractor) parameter(node *sitter.Node, name string, typeNode, valueNode *sitter.Node) *entity.Entity {
	e := &entity.Entity{
		Title:      name,
		Kind:       entity.KindParameter,
		MemberKind: entity.MemberParameter,
		Language:   Language,
		Source:     ex.source(node),
	}
	if name == "self" || name == "cls" {
		e.Meta = entity.Meta{"receiver": true}
	}
	if typeNode != nil {
		if t := ex.typeExpr(typeNode); t != nil {
			e.Members = append(e.Members, t)
		}
	}
	if valueNode != nil {
		if e.Meta == nil {
			e.Meta = entity.Meta{}
		}
		e.Meta["default"] = valueNode.Content(ex.src)
	}
	return e
}

// typeExpr parses a type annotation expression. Identifiers (including
// quoted forward references) emit references; subscripts like
// "list[int]" become generic types.
func (ex *extractor) typeExpr(node *sitter.Node) *entity.Entity {
	// The grammar wraps annotations in a "type" node.
	if node.Type() == "type" && node.NamedChildCount() > 0 {
		return ex.typeExpr(node.NamedChild(0))
	}

	switch node.Type() {
	case "identifier":
		name := node.Content(ex.src)
		e := &entity.Entity{
			Title:    name,
			Kind:     entity.KindIdentifier,
			Language: Language,
			Source:   ex.source(node),
		}
		ex.reference(name, e)
		return e

	case "string":
		// Quoted forward reference: 'User'.
		name := strings.Trim(node.Content(ex.src), `"'`)
		e := &entity.Entity{
			Title:    name,
			Kind:     entity.KindIdentifier,
			Language: Language,
			Source:   ex.source(node),
			Meta:     entity.Meta{"forward_reference": true},
		}
		ex.reference(name, e)
		return e

	case "attribute":
		// "typing.Optional": kept whole; attribute access into modules
		// is not resolved.
		return &entity.Entity{
			Title:    node.Content(ex.src),
			Kind:     entity.KindIdentifier,
			Language: Language,
			Source:   ex.source(node),
		}

	case "subscript":
		e := &entity.Entity{
			Title:    fieldText(node, "value", ex.src),
			Kind:     entity.KindGenericType,
			Language: Language,
			Source:   ex.source(node),
		}
		ex.reference(e.Title, e)
		for i := 0; i < int(node.NamedChildCount()); i++ {
			c := node.NamedChild(i)
			if v := node.ChildByFieldName("value"); v != nil && c.StartByte() == v.StartByte() {
				continue
			}
			if t := ex.typeExpr(c); t != nil {
				t.MemberKind = entity.MemberTypeArg
				e.Members = append(e.Members, t)
			}
		}
		return e

	case "none":
		e := &entity.Entity{
			Title:    "None",
			Kind:     entity.KindPredefinedType,
			Language: Language,
			Source:   ex.source(node),
		}
		ex.reference("None", e)
		return e

	case "binary_operator":
		// PEP 604 unions: "int | None".
		e := &entity.Entity{
			Kind:     entity.KindUnion,
			Language: Language,
			Source:   ex.source(node),
		}
		for _, field := range []string{"left", "right"} {
			if c := node.ChildByFieldName(field); c != nil {
				if t := ex.typeExpr(c); t != nil {
					e.Members = append(e.Members, t)
				}
			}
		}
		return e
	}

	return &entity.Entity{
		Kind:     entity.KindType,
		Language: Language,
		Source:   ex.source(node),
		Meta:     entity.Meta{"raw": node.Content(ex.src)},
	}
}

// importStatement handles "import foo" and "import foo.bar as b".
func (ex *extractor) importStatement(node *sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c := node.NamedChild(i)
		switch c.Type() {
		case "dotted_name":
			name := c.Content(ex.src)
			ex.table.BindImport(lastSegment(name), modulePath(name), lastSegment(name), false)
		case "aliased_import":
			name := fieldText(c, "name", ex.src)
			alias := fieldText(c, "alias", ex.src)
			ex.table.BindImport(alias, modulePath(name), lastSegment(name), false)
		}
	}
}

// importFromStatement handles "from foo import bar, baz as q" and
// "from foo import *".
func (ex *extractor) importFromStatement(node *sitter.Node) {
	moduleName := fieldText(node, "module_name", ex.src)
	if moduleName == "" {
		return
	}
	origin := modulePath(moduleName)

	wildcard := false
	for i := 0; i < int(node.NamedChildCount()); i++ {
		c := node.NamedChild(i)
		if c.Type() == "wildcard_import" {
			wildcard = true
		}
	}
	if wildcard {
		ex.table.BindWildcard(origin)
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		c := node.NamedChild(i)
		// Skip the module name itself.
		if m := node.ChildByFieldName("module_name"); m != nil && c.StartByte() == m.StartByte() {
			continue
		}
		switch c.Type() {
		case "dotted_name":
			name := c.Content(ex.src)
			ex.table.BindImport(name, origin, name, false)
		case "aliased_import":
			name := fieldText(c, "name", ex.src)
			alias := fieldText(c, "alias", ex.src)
			ex.table.BindImport(alias, origin, name, false)
		}
	}
}

func (ex *extractor) reference(name string, target *entity.Entity) {
	ex.refs = append(ex.refs, &entity.Reference{
		Name:         name,
		ScopeID:      ex.table.Current().ID,
		Target:       target,
		TypePosition: true,
	})
}

func (ex *extractor) source(node *sitter.Node) entity.Source {
	return entity.Source{
		File:             ex.module,
		StartOffsetBytes: int(node.StartByte()),
		EndOffsetBytes:   int(node.EndByte()),
	}
}

// modulePath converts a dotted module name to a module path: "foo.bar"
// → "foo/bar.py". Leading dots mark relative imports: ".sibling" stays
// relative to the importing file's directory.
func modulePath(dotted string) string {
	rel := ""
	for strings.HasPrefix(dotted, ".") {
		dotted = strings.TrimPrefix(dotted, ".")
		if rel == "" {
			rel = "./"
		} else {
			rel = "../" + rel
		}
	}
	return rel + strings.ReplaceAll(dotted, ".", "/") + ".py"
}

func lastSegment(dotted string) string {
	if i := strings.LastIndex(dotted, "."); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}

// docstring returns the cleaned docstring of a definition body, if the
// body's first statement is a string expression.
func docstring(def *sitter.Node, src []byte) string {
	body := def.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	return cleanDocstring(str.Content(src))
}

// cleanDocstring strips triple quotes and dedents the docstring body,
// preserving relative indentation past the first line.
func cleanDocstring(text string) string {
	for _, q := range []string{`"""`, "'''"} {
		if strings.HasPrefix(text, q) {
			text = strings.TrimPrefix(text, q)
			text = strings.TrimSuffix(text, q)
		}
	}
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		return text
	}

	// Minimum indentation across the continuation lines.
	minIndent := -1
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent > 0 {
		for i, line := range lines[1:] {
			if len(line) >= minIndent {
				lines[i+1] = line[minIndent:]
			}
		}
	}
	return strings.Join(lines, "\n")
}

func fieldText(node *sitter.Node, field string, src []byte) string {
	if c := node.ChildByFieldName(field); c != nil {
		return c.Content(src)
	}
	return ""
}

func hasKeyword(node *sitter.Node, keyword string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if !c.IsNamed() && c.Type() == keyword {
			return true
		}
	}
	return false
}
