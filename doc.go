// Package quarry extracts a language-agnostic entity graph from source
// code built on tree-sitter. Each source file yields a tree of entities
// (classes, functions, type aliases, their parameters and properties)
// with stable fully qualified names, and type references across files
// are linked by name resolution.
//
// # Pipeline
//
// Quarry operates in two phases separated by a barrier:
//
//  1. Collect: For each source file, parse with tree-sitter and run the
//     language backend. Every file independently produces raw entities,
//     unresolved references, and a lexical scope tree. Files never see
//     each other during this phase, so it parallelizes freely.
//
//  2. Resolve: Once all files are collected, the per-file root scopes
//     merge into a global symbol index keyed by (module, name). Each
//     reference then resolves through its scope chain, import bindings
//     (following re-export chains to a bounded depth), wildcard
//     imports, and finally the builtin registry. The index is read-only
//     during this phase.
//
// # Usage
//
// Create an Engine, extract source files, resolve, and take the graph:
//
//	e := quarry.New("path/to/project")
//
//	ctx := context.Background()
//	err := e.ExtractDirectory(ctx, "path/to/project")
//	err = e.Resolve(ctx)
//
//	g, err := e.Graph()
//
// # Identity
//
// Every entity carries an FQN of the form "module::Outer::Inner", where
// the module segment is the file path relative to the extraction root.
// Anonymous entities (object literals, union branches) receive a
// synthetic "(kind)" segment but do not qualify their children. FQNs
// are unique within a run; same input always yields the same FQNs.
//
// # Links
//
// Entities point at each other through refers_to, which holds the
// target's FQN as a string, never a pointer. A graph entity can always
// be serialized on its own. References that cannot be resolved are left
// unlinked; unresolved names are expected, not errors. Genuine
// problems (duplicate definitions, ambiguous wildcard imports, backend
// failures) surface as diagnostics on the finished graph.
//
// # Backends
//
// Language-specific extraction lives in backends implementing the
// lang.Backend interface; TypeScript and Python ship by default. Use
// [WithBackends] to replace the set and [WithLanguages] to restrict
// which languages the Engine processes.
package quarry
