// Package lang defines the capability interface every language backend
// implements, and the registry that picks a backend for a file. The
// engine depends only on this interface, never on a specific language's
// internals.
package lang

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jward/quarry/internal/entity"
	"github.com/jward/quarry/internal/scope"
)

// Result is everything a backend produces for one file: top-level
// entities with members pre-nested, references tagged with the scope
// they were observed in, and the file's scope tree with import/export
// bindings. Backends must not perform resolution and must not consult
// other files.
type Result struct {
	// Module is the file's module path (path relative to the extraction
	// root), echoed back from the Extract call.
	Module string

	// Language is the backend's language tag.
	Language string

	// Entities are the file's top-level entities in declaration order.
	Entities []*entity.Entity

	// References are unresolved name occurrences in emission order.
	References []*entity.Reference

	// Scopes is the file's scope tree.
	Scopes *scope.Table
}

// Backend turns one file's source text into raw entities, references,
// and scope bindings. Implementations are stateless and safe for
// concurrent use across files.
type Backend interface {
	// Language returns the backend's language tag (e.g. "ts", "py").
	Language() string

	// Extract processes a single file. module is the file's module path
	// and is used verbatim in entity sources and the scope table.
	Extract(ctx context.Context, module string, src []byte) (*Result, error)
}

// Registry maps file extensions to backends.
type Registry struct {
	byExt map[string]Backend
}

// NewRegistry builds a registry from the given backends using each
// backend's registered extensions.
func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{byExt: make(map[string]Backend)}
	for _, b := range backends {
		for _, ext := range Extensions(b.Language()) {
			r.byExt[ext] = b
		}
	}
	return r
}

// ForFile returns the backend responsible for the file's extension.
func (r *Registry) ForFile(path string) (Backend, bool) {
	b, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return b, ok
}

// Languages returns the distinct language tags in the registry, sorted.
func (r *Registry) Languages() []string {
	set := make(map[string]bool)
	for _, b := range r.byExt {
		set[b.Language()] = true
	}
	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// langExtensions maps language tags to the file extensions they handle.
var langExtensions = map[string][]string{
	"ts": {".ts", ".tsx"},
	"py": {".py"},
}

// Languages returns every known language tag, sorted.
func Languages() []string {
	out := make([]string, 0, len(langExtensions))
	for l := range langExtensions {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Extensions returns the file extensions a language tag claims.
func Extensions(lang string) []string {
	return langExtensions[lang]
}

// Supported reports whether any known language claims the file.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, exts := range langExtensions {
		for _, e := range exts {
			if e == ext {
				return true
			}
		}
	}
	return false
}
