// Package typescript implements the TypeScript language backend on
// tree-sitter. It walks a file's concrete syntax tree and produces raw
// entities, references, and scope bindings; it performs no resolution
// and never consults other files.
package typescript

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/jward/quarry/internal/entity"
	"github.com/jward/quarry/internal/lang"
	"github.com/jward/quarry/internal/scope"
)

// Language is the backend's language tag.
const Language = "ts"

// Backend is the TypeScript backend. Stateless; safe for concurrent use.
type Backend struct{}

// New returns the TypeScript backend.
func New() *Backend { return &Backend{} }

// Language implements lang.Backend.
func (*Backend) Language() string { return Language }

// Extract implements lang.Backend.
func (*Backend) Extract(ctx context.Context, module string, src []byte) (*lang.Result, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(ts.GetLanguage())

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
		node := root.NamedChild(i)
		ents, err := ex.topLevel(node, false)
		if err != nil {
			return nil, err
		}
		entities = append(entities, ents...)
	}

	return &lang.Result{
		Module:     module,
		Language:   Language,
		Entities:   entities,
		References: ex.refs,
		Scopes:     ex.table,
	}, nil
}

// extractor carries per-file walking state.
type extractor struct {
	module string
	src    []byte
	table  *scope.Table
	refs   []*entity.Reference
}

// topLevel handles one top-level statement. exported is true when the
// node was unwrapped from an export statement.
func (ex *extractor) topLevel(node *sitter.Node, exported bool) ([]*entity.Entity, error) {
	switch node.Type() {
	case "comment":
		return nil, nil

	case "import_statement":
		ex.importStatement(node)
		return nil, nil

	case "export_statement":
		return ex.exportStatement(node)

	case "function_declaration":
		e := ex.function(node)
		ex.table.Bind(e.Title, e, exported)
		return []*entity.Entity{e}, nil

	case "class_declaration", "abstract_class_declaration":
		e := ex.class(node)
		ex.table.Bind(e.Title, e, exported)
		return []*entity.Entity{e}, nil

	case "interface_declaration":
		e := ex.interfaceDecl(node)
		ex.table.Bind(e.Title, e, exported)
		return []*entity.Entity{e}, nil

	case "type_alias_declaration":
		e := ex.typeAlias(node)
		ex.table.Bind(e.Title, e, exported)
		return []*entity.Entity{e}, nil
	}

	// Statements with no declaration shape (expressions, control flow)
	// contribute nothing to the graph.
	return nil, nil
}

// exportStatement unwraps "export <declaration>", records re-exports
// ("export { N } from './b'") and trailing export clauses
// ("export { Foo }"), and handles "export * from './b'" as a wildcard.
func (ex *extractor) exportStatement(node *sitter.Node) ([]*entity.Entity, error) {
	if decl := node.ChildByFieldName("declaration"); decl != nil {
		return ex.topLevel(decl, true)
	}

	source := ""
	if s := node.ChildByFieldName("source"); s != nil {
		source = stringContent(s, ex.src)
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			spec := child.NamedChild(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			name := fieldText(spec, "name", ex.src)
			alias := fieldText(spec, "alias", ex.src)
			if alias == "" {
				alias = name
			}
			if source != "" {
				// Re-export: an import binding that is itself exported.
				ex.table.BindImport(alias, source, name, true)
			} else {
				ex.table.MarkExported(name)
			}
		}
	}

	// "export * from './b'": every exported name of the origin module
	// becomes reachable; recorded as a deferred wildcard search.
	if source != "" && node.NamedChildCount() > 0 {
		for i := 0; i < int(node.ChildCount()); i++ {
			if node.Child(i).Type() == "*" {
				ex.table.BindWildcard(source)
				break
			}
		}
	}

	return nil, nil
}

// importStatement records import bindings in the current scope. Each
// binding defers linkage to resolution: it stores the origin module as
// written plus the original name, never the target entity.
func (ex *extractor) importStatement(node *sitter.Node) {
	source := ""
	if s := node.ChildByFieldName("source"); s != nil {
		source = stringContent(s, ex.src)
	}
	if source == "" {
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		clause := node.NamedChild(i)
		if clause.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			part := clause.NamedChild(j)
			switch part.Type() {
			case "named_imports":
				for k := 0; k < int(part.NamedChildCount()); k++ {
					spec := part.NamedChild(k)
					if spec.Type() != "import_specifier" {
						continue
					}
					name := fieldText(spec, "name", ex.src)
					alias := fieldText(spec, "alias", ex.src)
					if alias == "" {
						alias = name
					}
					ex.table.BindImport(alias, source, name, false)
				}
			case "namespace_import":
				// "import * as ns": the module's exports become
				// reachable; treated as a deferred wildcard search.
				ex.table.BindWildcard(source)
			case "identifier":
				// Default import.
				name := part.Content(ex.src)
				ex.table.BindImport(name, source, "default", false)
			}
		}
	}
}

// reference records an unresolved name occurrence owned by target, seen
// in the current scope.
func (ex *extractor) reference(name string, target *entity.Entity, typePosition bool) {
	ex.refs = append(ex.refs, &entity.Reference{
		Name:         name,
		ScopeID:      ex.table.Current().ID,
		Target:       target,
		TypePosition: typePosition,
	})
}

// source builds an entity source span for a node.
func (ex *extractor) source(node *sitter.Node) entity.Source {
	return entity.Source{
		File:             ex.module,
		StartOffsetBytes: int(node.StartByte()),
		EndOffsetBytes:   int(node.EndByte()),
	}
}

// fieldText returns the text of a named field child, or "".
func fieldText(node *sitter.Node, field string, src []byte) string {
	if c := node.ChildByFieldName(field); c != nil {
		return c.Content(src)
	}
	return ""
}

// stringContent returns a string literal's text without quotes.
func stringContent(node *sitter.Node, src []byte) string {
	text := node.Content(src)
	if len(text) >= 2 {
		switch text[0] {
		case '\'', '"', '`':
			return text[1 : len(text)-1]
		}
	}
	return text
}
