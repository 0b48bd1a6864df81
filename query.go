package quarry

import (
	"sort"

	"github.com/jward/quarry/internal/entity"
)

// Graph queries. These walk the in-memory graph; for persisted graphs
// the store package exposes the same lookups over SQL.

// FindByFQN returns the entity with the given FQN, or nil. Members are
// searched as well as top-level entities.
func (g *Graph) FindByFQN(fqn string) *Entity {
	for _, root := range g.Entities {
		if e := root.FindByFQN(fqn); e != nil {
			return e
		}
	}
	return nil
}

// ReferencesTo returns every entity whose refers_to points at the given
// FQN, in graph order.
func (g *Graph) ReferencesTo(fqn string) []*Entity {
	var out []*Entity
	for _, root := range g.Entities {
		root.Walk(func(e *entity.Entity) bool {
			if e.RefersTo == fqn {
				out = append(out, e)
			}
			return true
		})
	}
	return out
}

// EntitiesOfKind returns every entity of the given kind, in graph order.
func (g *Graph) EntitiesOfKind(kind string) []*Entity {
	var out []*Entity
	for _, root := range g.Entities {
		root.Walk(func(e *entity.Entity) bool {
			if e.Kind == kind {
				out = append(out, e)
			}
			return true
		})
	}
	return out
}

// Module returns the top-level entities of one module, in declaration
// order.
func (g *Graph) Module(module string) []*Entity {
	var out []*Entity
	for _, root := range g.Entities {
		if root.Source.File == module {
			out = append(out, root)
		}
	}
	return out
}

// Modules returns the distinct module paths in the graph, sorted.
func (g *Graph) Modules() []string {
	set := make(map[string]bool)
	for _, root := range g.Entities {
		set[root.Source.File] = true
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Linked returns every entity carrying a refers_to link, in graph
// order. Useful for auditing what resolution connected.
func (g *Graph) Linked() []*Entity {
	var out []*Entity
	for _, root := range g.Entities {
		root.Walk(func(e *entity.Entity) bool {
			if e.RefersTo != "" {
				out = append(out, e)
			}
			return true
		})
	}
	return out
}
