// Package scope implements the per-file lexical scope tree. Backends
// register bindings as they walk a file; the resolver later walks the
// tree innermost-to-outermost to resolve name references.
package scope

import "github.com/jward/quarry/internal/entity"

// BindingKind discriminates what a visible name is bound to.
type BindingKind int

const (
	// BindingLocal binds a name to an entity defined in this file.
	BindingLocal BindingKind = iota
	// BindingImport binds a name to (origin module, original name). The
	// target entity is not copied; linkage is deferred to resolution,
	// when every module's symbol index entries exist.
	BindingImport
	// BindingWildcard records a deferred "search this module's exported
	// top-level names" import. It is consulted only when a named lookup
	// falls through.
	BindingWildcard
)

// Binding is a single visible name in a scope.
type Binding struct {
	Kind BindingKind

	// Name is the name visible in this scope: the declared identifier
	// for locals, the local alias (or original name) for imports, empty
	// for wildcards.
	Name string

	// Entity is the locally defined entity. Only set for BindingLocal.
	Entity *entity.Entity

	// Module is the origin module path as written in the import
	// statement. Only set for imports and wildcards.
	Module string

	// Original is the name in the origin module. Only set for
	// BindingImport; differs from Name when the import is aliased.
	Original string

	// Exported marks root-scope bindings that are visible to other
	// modules. An exported import binding is a re-export.
	Exported bool
}

// Scope is one lexical nesting level.
type Scope struct {
	ID     int
	Parent *Scope

	// bindings holds every binding in registration order. Order matters:
	// the symbol index merge must not depend on map iteration.
	bindings []Binding
	byName   map[string]int
}

func (s *Scope) lookup(name string) (Binding, bool) {
	if i, ok := s.byName[name]; ok {
		return s.bindings[i], true
	}
	return Binding{}, false
}

// Bindings returns the scope's bindings in registration order.
func (s *Scope) Bindings() []Binding {
	return s.bindings
}

// Table is the scope tree for a single file. It is built incrementally:
// the backend pushes a scope when it enters a nesting level, registers
// bindings into the current scope, and pops on exit.
type Table struct {
	// Module is the file's module path relative to the extraction root.
	Module string

	scopes  []*Scope
	current *Scope
}

// NewTable creates a table with a single root (file) scope.
func NewTable(module string) *Table {
	root := &Scope{ID: 0, byName: make(map[string]int)}
	return &Table{
		Module:  module,
		scopes:  []*Scope{root},
		current: root,
	}
}

// Push enters a new scope nested in the current one and returns it.
func (t *Table) Push() *Scope {
	s := &Scope{
		ID:     len(t.scopes),
		Parent: t.current,
		byName: make(map[string]int),
	}
	t.scopes = append(t.scopes, s)
	t.current = s
	return s
}

// Pop leaves the current scope. Popping the root scope is a no-op.
func (t *Table) Pop() {
	if t.current.Parent != nil {
		t.current = t.current.Parent
	}
}

// Current returns the scope bindings are currently registered into.
func (t *Table) Current() *Scope { return t.current }

// Root returns the file scope.
func (t *Table) Root() *Scope { return t.scopes[0] }

// ByID returns the scope with the given ID, or nil.
func (t *Table) ByID(id int) *Scope {
	if id < 0 || id >= len(t.scopes) {
		return nil
	}
	return t.scopes[id]
}

func (t *Table) add(b Binding) {
	s := t.current
	// A rebinding of the same name in the same scope shadows the earlier
	// one for lookups; the earlier binding stays in the ordered list so
	// the index merge can still report the duplicate.
	s.byName[b.Name] = len(s.bindings)
	s.bindings = append(s.bindings, b)
}

// Bind registers a locally defined entity under its declared name in the
// current scope.
func (t *Table) Bind(name string, e *entity.Entity, exported bool) {
	t.add(Binding{Kind: BindingLocal, Name: name, Entity: e, Exported: exported})
}

// BindImport registers an import of original from module, visible in the
// current scope as name (the alias, or the original name if unaliased).
func (t *Table) BindImport(name, module, original string, exported bool) {
	t.add(Binding{Kind: BindingImport, Name: name, Module: module, Original: original, Exported: exported})
}

// BindWildcard registers a wildcard import of module into the current
// scope.
func (t *Table) BindWildcard(module string) {
	s := t.current
	s.bindings = append(s.bindings, Binding{Kind: BindingWildcard, Module: module})
}

// MarkExported flags the named root-scope binding as exported. Used for
// trailing export clauses ("export { Foo }") that appear after the
// declaration they export. Returns false if the name is not bound.
func (t *Table) MarkExported(name string) bool {
	root := t.Root()
	i, ok := root.byName[name]
	if !ok {
		return false
	}
	root.bindings[i].Exported = true
	return true
}

// Lookup resolves name starting at the scope with the given ID and
// walking outward. The first match wins: an inner binding hides an outer
// binding of the same name without removing it.
func (t *Table) Lookup(name string, scopeID int) (Binding, bool) {
	for s := t.ByID(scopeID); s != nil; s = s.Parent {
		if b, ok := s.lookup(name); ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Wildcards returns the wildcard bindings visible from the scope with
// the given ID, innermost first.
func (t *Table) Wildcards(scopeID int) []Binding {
	var out []Binding
	for s := t.ByID(scopeID); s != nil; s = s.Parent {
		for _, b := range s.bindings {
			if b.Kind == BindingWildcard {
				out = append(out, b)
			}
		}
	}
	return out
}
