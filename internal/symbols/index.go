// Package symbols implements the global symbol index: a read-only-after-
// build table mapping (module path, name) to the entity owning that
// name, merged from every file's root scope. The index exists for the
// duration of one run and is discarded afterward.
package symbols

import (
	"sort"

	"github.com/jward/quarry/internal/scope"
)

// EntryKind discriminates index entries.
type EntryKind int

const (
	// Definition entries point at an entity defined in the module.
	Definition EntryKind = iota
	// Forward entries are re-exports: the name is defined elsewhere and
	// must be chased through (OriginModule, OriginalName).
	Forward
)

// Entry is one (module, name) binding in the index.
type Entry struct {
	Module string
	Name   string
	Kind   EntryKind

	// FQN is the owning entity's canonical name. Set for definitions.
	FQN string

	// OriginModule and OriginalName locate the re-export target. Set for
	// forwards.
	OriginModule string
	OriginalName string

	// Exported marks entries visible to other modules. Unexported
	// entries still occupy their key so duplicate definitions are
	// detected, but cross-module lookups skip them.
	Exported bool

	// Ambiguous marks keys claimed by two distinct entities. Ambiguous
	// keys never resolve; references through them are diagnosed instead.
	Ambiguous bool
}

// Collision records a duplicate-definition conflict at one index key.
type Collision struct {
	Module   string
	Name     string
	Existing string // FQN or origin of the first claimant
	Incoming string // FQN or origin of the later claimant
}

type key struct {
	module string
	name   string
}

// Index is the merged, immutable symbol table. Build it once after all
// files have been collected; lookups are safe for concurrent use.
type Index struct {
	entries map[key]*Entry

	// exportOrder holds each module's exported names in root-scope
	// registration order, for wildcard resolution.
	exportOrder map[string][]string
}

// Build merges every file's root-scope bindings into one index. The
// result is independent of the order tables are passed in: tables are
// keyed strictly by module path, and modules are merged in sorted order.
func Build(tables []*scope.Table) (*Index, []Collision) {
	sorted := make([]*scope.Table, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Module < sorted[j].Module })

	idx := &Index{
		entries:     make(map[key]*Entry),
		exportOrder: make(map[string][]string),
	}
	var collisions []Collision

	for _, t := range sorted {
		for _, b := range t.Root().Bindings() {
			switch b.Kind {
			case scope.BindingLocal:
				collisions = idx.add(collisions, &Entry{
					Module:   t.Module,
					Name:     b.Name,
					Kind:     Definition,
					FQN:      b.Entity.FQN,
					Exported: b.Exported,
				})
			case scope.BindingImport:
				// Only re-exports enter the index: a plain import is
				// file-local and resolved through the scope chain.
				if !b.Exported {
					continue
				}
				collisions = idx.add(collisions, &Entry{
					Module:       t.Module,
					Name:         b.Name,
					Kind:         Forward,
					OriginModule: b.Module,
					OriginalName: b.Original,
					Exported:     true,
				})
			case scope.BindingWildcard:
				// Wildcards bind no name of their own.
			}
		}
	}

	return idx, collisions
}

func (idx *Index) add(collisions []Collision, e *Entry) []Collision {
	k := key{e.Module, e.Name}
	if existing, ok := idx.entries[k]; ok {
		existing.Ambiguous = true
		return append(collisions, Collision{
			Module:   e.Module,
			Name:     e.Name,
			Existing: claimant(existing),
			Incoming: claimant(e),
		})
	}
	idx.entries[k] = e
	if e.Exported {
		idx.exportOrder[e.Module] = append(idx.exportOrder[e.Module], e.Name)
	}
	return collisions
}

func claimant(e *Entry) string {
	if e.Kind == Definition {
		return e.FQN
	}
	return e.OriginModule + "::" + e.OriginalName
}

// Lookup returns the entry at (module, name), if any.
func (idx *Index) Lookup(module, name string) (*Entry, bool) {
	e, ok := idx.entries[key{module, name}]
	return e, ok
}

// Exported returns a module's exported names in declaration order, for
// wildcard-import resolution.
func (idx *Index) Exported(module string) []string {
	return idx.exportOrder[module]
}

// HasModule reports whether any entry exists for the module.
func (idx *Index) HasModule(module string) bool {
	if len(idx.exportOrder[module]) > 0 {
		return true
	}
	for k := range idx.entries {
		if k.module == module {
			return true
		}
	}
	return false
}

// Len returns the number of keys in the index.
func (idx *Index) Len() int { return len(idx.entries) }
