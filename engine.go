package quarry

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jward/quarry/internal/entity"
	"github.com/jward/quarry/internal/lang"
	"github.com/jward/quarry/internal/lang/python"
	"github.com/jward/quarry/internal/lang/typescript"
	"github.com/jward/quarry/internal/resolve"
	"github.com/jward/quarry/internal/scope"
	"github.com/jward/quarry/internal/symbols"
)

// Phase is the engine's position in the pipeline state machine.
type Phase int

const (
	// PhaseCollecting accepts files; backends run and per-file scope
	// trees accumulate. No cross-file knowledge exists yet.
	PhaseCollecting Phase = iota
	// PhaseIndexBuilt marks the barrier: every collected file's root
	// scope has been merged into the symbol index, now immutable.
	PhaseIndexBuilt
	// PhaseResolving fills refers_to links against the read-only index.
	PhaseResolving
	// PhaseDone means the graph is finished and can be emitted.
	PhaseDone
)

// Engine orchestrates the quarry pipeline: per-file extraction via
// language backends, the index barrier, and cross-file reference
// resolution. All run state lives on the Engine; nothing is
// process-global, so concurrent engines never interfere.
type Engine struct {
	root       string
	registry   *lang.Registry
	builtins   *resolve.Builtins
	languages  map[string]bool // nil means all languages
	repository string

	// useParallel enables the parallel extraction pipeline.
	useParallel   bool
	maxChainDepth int

	phase   Phase
	results []*lang.Result
	diags   []resolve.Diagnostic
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages restricts which languages the Engine will process.
func WithLanguages(languages ...string) Option {
	return func(e *Engine) {
		e.languages = make(map[string]bool, len(languages))
		for _, l := range languages {
			e.languages[l] = true
		}
	}
}

// WithParallel controls parallel extraction. When true (default),
// ExtractFiles runs backends across a worker pool bounded by CPU count
// and merges results in input order afterward. Set to false for serial
// mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithBackends replaces the default backend set (TypeScript, Python).
func WithBackends(backends ...lang.Backend) Option {
	return func(e *Engine) {
		e.registry = lang.NewRegistry(backends...)
	}
}

// WithRepository stamps every extracted entity's source with the given
// repository URL.
func WithRepository(url string) Option {
	return func(e *Engine) {
		e.repository = url
	}
}

// WithMaxChainDepth bounds how many re-export hops resolution follows
// before giving up with a diagnostic.
func WithMaxChainDepth(depth int) Option {
	return func(e *Engine) {
		e.maxChainDepth = depth
	}
}

// New creates an Engine. Module paths in FQNs and source spans are
// computed relative to root.
func New(root string, opts ...Option) *Engine {
	e := &Engine{
		root:          root,
		registry:      lang.NewRegistry(typescript.New(), python.New()),
		builtins:      resolve.DefaultBuiltins(),
		useParallel:   true,
		maxChainDepth: resolve.DefaultMaxChainDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Phase returns the engine's current pipeline phase.
func (e *Engine) Phase() Phase { return e.phase }

// modulePath converts a file path into the module path used in FQNs:
// slash-separated and relative to the extraction root.
func (e *Engine) modulePath(path string) string {
	if e.root != "" {
		if rel, err := filepath.Rel(e.root, path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

// ExtractFiles runs phase 1 for the given file paths. Files are
// independent; each produces an isolated (entities, references, scopes)
// triple. A backend failure excludes that file and is recorded as a
// diagnostic; it never aborts the run.
func (e *Engine) ExtractFiles(ctx context.Context, paths []string) error {
	if e.phase != PhaseCollecting {
		return fmt.Errorf("extract: engine is past collecting (phase %d)", e.phase)
	}
	if e.useParallel {
		return e.extractParallel(ctx, paths)
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, diag, skip := e.extractOne(ctx, path)
		if skip {
			continue
		}
		if diag != nil {
			e.diags = append(e.diags, *diag)
			continue
		}
		e.results = append(e.results, res)
	}
	return nil
}

// extractOne processes a single file: pick the backend, read the
// source, extract, and assign FQNs. skip is true for unsupported or
// filtered files; diag is non-nil when the file failed and is excluded.
func (e *Engine) extractOne(ctx context.Context, path string) (res *lang.Result, diag *resolve.Diagnostic, skip bool) {
	backend, ok := e.registry.ForFile(path)
	if !ok {
		return nil, nil, true
	}
	if e.languages != nil && !e.languages[backend.Language()] {
		return nil, nil, true
	}

	module := e.modulePath(path)

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &resolve.Diagnostic{
			Severity: resolve.SeverityError,
			Code:     resolve.CodeBackendFailure,
			Module:   module,
			Detail:   fmt.Sprintf("read file: %v", err),
		}, false
	}

	result, err := backend.Extract(ctx, module, src)
	if err != nil {
		return nil, &resolve.Diagnostic{
			Severity: resolve.SeverityError,
			Code:     resolve.CodeBackendFailure,
			Module:   module,
			Detail:   err.Error(),
		}, false
	}

	// FQNs are assigned once per file, immediately after extraction, so
	// the index is built from stable names.
	entity.AssignFQNs(module, result.Entities)
	if e.repository != "" {
		for _, root := range result.Entities {
			root.Walk(func(n *entity.Entity) bool {
				n.Source.Repository = e.repository
				return true
			})
		}
	}
	return result, nil, false
}

// skipDirs are directory names excluded from directory walks.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// ExtractDirectory walks dir and extracts every file with a supported
// extension, skipping hidden directories and well-known dependency
// directories.
func (e *Engine) ExtractDirectory(ctx context.Context, dir string) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if lang.Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}
	return e.ExtractFiles(ctx, paths)
}

// Resolve runs the barrier and phase 2: build the symbol index from
// every file's root scope, then resolve each file's references against
// it. Conflicts and ambiguities become diagnostics on the finished
// graph, never errors.
func (e *Engine) Resolve(ctx context.Context) error {
	if e.phase != PhaseCollecting {
		return fmt.Errorf("resolve: engine is past collecting (phase %d)", e.phase)
	}

	// Deterministic regardless of extraction completion order.
	sort.Slice(e.results, func(i, j int) bool { return e.results[i].Module < e.results[j].Module })

	tables := make([]*scope.Table, 0, len(e.results))
	for _, res := range e.results {
		tables = append(tables, res.Scopes)
	}
	idx, collisions := symbols.Build(tables)
	e.phase = PhaseIndexBuilt
	e.diags = append(e.diags, resolve.CollisionDiagnostics(collisions)...)

	e.phase = PhaseResolving
	resolver := resolve.NewResolver(idx, e.builtins)
	resolver.MaxChainDepth = e.maxChainDepth
	for _, res := range e.results {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.diags = append(e.diags, resolver.ResolveFile(res.Scopes, res.Language, res.References)...)
	}

	e.phase = PhaseDone
	return nil
}

// Graph is the finished entity graph: every file's top-level entities
// in module order, plus any diagnostics accumulated during the run.
type Graph struct {
	Entities    []*entity.Entity     `json:"entities"`
	Diagnostics []resolve.Diagnostic `json:"diagnostics,omitempty"`
}

// Graph returns the finished graph. Only available after Resolve.
func (e *Engine) Graph() (*Graph, error) {
	if e.phase != PhaseDone {
		return nil, fmt.Errorf("graph: resolution has not completed (phase %d)", e.phase)
	}
	g := &Graph{Diagnostics: e.diags}
	for _, res := range e.results {
		g.Entities = append(g.Entities, res.Entities...)
	}
	return g, nil
}

// EntityCount reports the number of entities in the graph, members
// included.
func (g *Graph) EntityCount() int {
	n := 0
	for _, e := range g.Entities {
		n += e.Count()
	}
	return n
}
