// Package resolve implements the second phase of the pipeline: turning
// raw references into resolved FQN links against the symbol index. The
// index is read-only here; the only mutation is filling each reference's
// own entity RefersTo field, so references never contend on writes.
package resolve

import (
	"fmt"
	"path"
	"strings"

	"github.com/jward/quarry/internal/entity"
	"github.com/jward/quarry/internal/scope"
	"github.com/jward/quarry/internal/symbols"
)

// DefaultMaxChainDepth bounds re-export chains. Chains longer than this
// (including cycles) degrade to unresolved with a diagnostic.
const DefaultMaxChainDepth = 16

// Resolver resolves references for one run. Safe for concurrent use
// across files once constructed.
type Resolver struct {
	Index         *symbols.Index
	Builtins      *Builtins
	MaxChainDepth int
}

// NewResolver creates a resolver over a built index.
func NewResolver(idx *symbols.Index, builtins *Builtins) *Resolver {
	return &Resolver{
		Index:         idx,
		Builtins:      builtins,
		MaxChainDepth: DefaultMaxChainDepth,
	}
}

// ResolveFile resolves every reference from one file against the file's
// scope table and the global index. Resolution order per reference:
//
//  1. the local scope chain, innermost to outermost;
//  2. if the nearest match is an import, chase it through the index,
//     following re-exports up to MaxChainDepth;
//  3. wildcard imports visible from the reference's scope;
//  4. the builtin registry for the file's language;
//  5. otherwise the reference stays unresolved, which is not an error.
//
// Returned diagnostics cover ambiguity and chain-depth conditions only.
func (r *Resolver) ResolveFile(table *scope.Table, language string, refs []*entity.Reference) []Diagnostic {
	var diags []Diagnostic
	for _, ref := range refs {
		if d := r.resolveOne(table, language, ref); d != nil {
			diags = append(diags, *d)
		}
	}
	return diags
}

func (r *Resolver) resolveOne(table *scope.Table, language string, ref *entity.Reference) *Diagnostic {
	if b, ok := table.Lookup(ref.Name, ref.ScopeID); ok {
		switch b.Kind {
		case scope.BindingLocal:
			ref.Target.RefersTo = b.Entity.FQN
			return nil
		case scope.BindingImport:
			origin := NormalizeImport(table.Module, b.Module)
			return r.chase(table, ref, origin, b.Original)
		}
	}

	// No named binding: fall through to wildcard imports. When two
	// wildcard-imported modules both export the name, resolution picks
	// neither.
	if d, handled := r.resolveViaWildcards(table, ref); handled {
		return d
	}

	if fqn, ok := r.Builtins.Lookup(language, ref.Name); ok {
		ref.Target.RefersTo = fqn
		return nil
	}

	// Unresolved: a normal terminal state. The entity keeps its raw name
	// with no refers_to link.
	return nil
}

// chase follows an import into the index, walking re-export forwards
// until it reaches a definition, fails, or exceeds the depth bound.
// A failed import target and a missing import both leave the reference
// unresolved; the attempted origin is preserved in the depth diagnostic
// only, since the source behavior does not distinguish the two.
func (r *Resolver) chase(table *scope.Table, ref *entity.Reference, module, name string) *Diagnostic {
	fromExt := path.Ext(table.Module)
	for depth := 0; depth < r.MaxChainDepth; depth++ {
		e, ok := r.lookupEntry(module, name, fromExt)
		if !ok {
			return nil // unknown module or name: unresolved
		}
		if e.Ambiguous {
			return &Diagnostic{
				Severity: SeverityWarning,
				Code:     CodeAmbiguousReference,
				Module:   table.Module,
				Name:     ref.Name,
				Detail:   fmt.Sprintf("key %s::%s has conflicting definitions", e.Module, e.Name),
			}
		}
		if !e.Exported && e.Module != table.Module {
			return nil // target exists but is private to its module
		}
		if e.Kind == symbols.Definition {
			ref.Target.RefersTo = e.FQN
			return nil
		}
		module = NormalizeImport(e.Module, e.OriginModule)
		name = e.OriginalName
	}
	return &Diagnostic{
		Severity: SeverityWarning,
		Code:     CodeReexportDepth,
		Module:   table.Module,
		Name:     ref.Name,
		Detail:   fmt.Sprintf("re-export chain exceeded %d hops ending at %s::%s", r.MaxChainDepth, module, name),
	}
}

// resolveViaWildcards searches wildcard-imported modules for the name.
// handled is true when a wildcard produced an outcome (resolved or
// ambiguous); false means lookup should continue to the builtins.
func (r *Resolver) resolveViaWildcards(table *scope.Table, ref *entity.Reference) (*Diagnostic, bool) {
	fromExt := path.Ext(table.Module)
	wildcards := table.Wildcards(ref.ScopeID)

	var matches []string // origin modules exporting the name
	for _, w := range wildcards {
		module := NormalizeImport(table.Module, w.Module)
		if e, ok := r.lookupEntry(module, ref.Name, fromExt); ok && e.Exported && !e.Ambiguous {
			matches = append(matches, e.Module)
		}
	}

	switch len(matches) {
	case 0:
		return nil, false
	case 1:
		return r.chase(table, ref, matches[0], ref.Name), true
	default:
		return &Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeAmbiguousReference,
			Module:   table.Module,
			Name:     ref.Name,
			Detail:   fmt.Sprintf("name exported by %d wildcard-imported modules (%s)", len(matches), strings.Join(matches, ", ")),
		}, true
	}
}

// lookupEntry looks up (module, name), probing with the referencing
// file's extension when the import source omitted it ("./foo" → foo.ts).
func (r *Resolver) lookupEntry(module, name, fromExt string) (*symbols.Entry, bool) {
	if e, ok := r.Index.Lookup(module, name); ok {
		return e, true
	}
	if fromExt != "" && path.Ext(module) == "" {
		if e, ok := r.Index.Lookup(module+fromExt, name); ok {
			return e, true
		}
	}
	return nil, false
}

// NormalizeImport resolves an import source against the importing
// module's directory. Relative sources ("./foo", "../bar/baz.ts") are
// joined and cleaned the way the filesystem would; anything else is
// treated as already rooted at the extraction root.
func NormalizeImport(fromModule, source string) string {
	if strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../") {
		return path.Clean(path.Join(path.Dir(fromModule), source))
	}
	return path.Clean(source)
}

// CollisionDiagnostics converts index collisions into the diagnostic
// taxonomy. Both entities stay in the output; the key simply never
// resolves deterministically.
func CollisionDiagnostics(collisions []symbols.Collision) []Diagnostic {
	var out []Diagnostic
	for _, c := range collisions {
		out = append(out, Diagnostic{
			Severity: SeverityError,
			Code:     CodeDuplicateDefinition,
			Module:   c.Module,
			Name:     c.Name,
			Detail:   fmt.Sprintf("%s conflicts with %s", c.Incoming, c.Existing),
		})
	}
	return out
}
