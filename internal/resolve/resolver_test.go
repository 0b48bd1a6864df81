package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/quarry/internal/entity"
	"github.com/jward/quarry/internal/scope"
	"github.com/jward/quarry/internal/symbols"
)

// def binds an exported definition in the table's root scope.
func def(t *scope.Table, name string) *entity.Entity {
	e := &entity.Entity{Title: name, FQN: t.Module + "::" + name}
	t.Bind(name, e, true)
	return e
}

// ref builds an unresolved reference observed in the given scope.
func ref(name string, scopeID int) *entity.Reference {
	return &entity.Reference{
		Name:    name,
		ScopeID: scopeID,
		Target:  &entity.Entity{Title: name, Kind: entity.KindIdentifier},
	}
}

func newResolver(tables ...*scope.Table) *Resolver {
	idx, _ := symbols.Build(tables)
	return NewResolver(idx, DefaultBuiltins())
}

func TestResolve_LocalDefinition(t *testing.T) {
	table := scope.NewTable("index.ts")
	def(table, "User")
	r := ref("User", 0)

	diags := newResolver(table).ResolveFile(table, "ts", []*entity.Reference{r})
	assert.Empty(t, diags)
	assert.Equal(t, "index.ts::User", r.Target.RefersTo)
}

func TestResolve_InnerScopeShadowsFile(t *testing.T) {
	table := scope.NewTable("index.ts")
	def(table, "T")

	inner := table.Push()
	shadow := &entity.Entity{Title: "T", FQN: "index.ts::f::T"}
	table.Bind("T", shadow, false)
	table.Pop()

	r := ref("T", inner.ID)
	newResolver(table).ResolveFile(table, "ts", []*entity.Reference{r})
	assert.Equal(t, "index.ts::f::T", r.Target.RefersTo)

	// From the file scope the outer binding still wins.
	r2 := ref("T", 0)
	newResolver(table).ResolveFile(table, "ts", []*entity.Reference{r2})
	assert.Equal(t, "index.ts::T", r2.Target.RefersTo)
}

func TestResolve_ImportChase(t *testing.T) {
	b := scope.NewTable("b.ts")
	def(b, "Thing")

	a := scope.NewTable("a.ts")
	a.BindImport("Thing", "./b", "Thing", false)

	r := ref("Thing", 0)
	diags := newResolver(a, b).ResolveFile(a, "ts", []*entity.Reference{r})
	assert.Empty(t, diags)
	assert.Equal(t, "b.ts::Thing", r.Target.RefersTo)
}

func TestResolve_AliasedImport(t *testing.T) {
	b := scope.NewTable("b.ts")
	def(b, "Original")

	a := scope.NewTable("a.ts")
	a.BindImport("Renamed", "./b", "Original", false)

	r := ref("Renamed", 0)
	newResolver(a, b).ResolveFile(a, "ts", []*entity.Reference{r})
	assert.Equal(t, "b.ts::Original", r.Target.RefersTo)
}

func TestResolve_ReexportChain(t *testing.T) {
	// a imports N from b; b re-exports N from c; c defines N.
	c := scope.NewTable("c.ts")
	def(c, "N")

	b := scope.NewTable("b.ts")
	b.BindImport("N", "./c", "N", true)

	a := scope.NewTable("a.ts")
	a.BindImport("N", "./b", "N", false)

	r := ref("N", 0)
	diags := newResolver(a, b, c).ResolveFile(a, "ts", []*entity.Reference{r})
	assert.Empty(t, diags)
	assert.Equal(t, "c.ts::N", r.Target.RefersTo)
}

func TestResolve_ReexportCycleHitsDepthBound(t *testing.T) {
	// a and b re-export X from each other: the chain never terminates.
	a := scope.NewTable("a.ts")
	a.BindImport("X", "./b", "X", true)

	b := scope.NewTable("b.ts")
	b.BindImport("X", "./a", "X", true)

	user := scope.NewTable("user.ts")
	user.BindImport("X", "./a", "X", false)

	r := ref("X", 0)
	diags := newResolver(a, b, user).ResolveFile(user, "ts", []*entity.Reference{r})

	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, CodeReexportDepth, diags[0].Code)
	assert.Equal(t, "user.ts", diags[0].Module)
	assert.Empty(t, r.Target.RefersTo)
}

func TestResolve_ImportOfMissingModuleStaysUnresolved(t *testing.T) {
	a := scope.NewTable("a.ts")
	a.BindImport("Gone", "./missing", "Gone", false)

	r := ref("Gone", 0)
	diags := newResolver(a).ResolveFile(a, "ts", []*entity.Reference{r})
	assert.Empty(t, diags, "a dangling import is not an error")
	assert.Empty(t, r.Target.RefersTo)
}

func TestResolve_UnexportedTargetStaysUnresolved(t *testing.T) {
	b := scope.NewTable("b.ts")
	hidden := &entity.Entity{Title: "hidden", FQN: "b.ts::hidden"}
	b.Bind("hidden", hidden, false)

	a := scope.NewTable("a.ts")
	a.BindImport("hidden", "./b", "hidden", false)

	r := ref("hidden", 0)
	diags := newResolver(a, b).ResolveFile(a, "ts", []*entity.Reference{r})
	assert.Empty(t, diags)
	assert.Empty(t, r.Target.RefersTo, "private names do not resolve across modules")
}

func TestResolve_ExtensionProbe(t *testing.T) {
	// "./b" written without extension resolves against "b.ts" because the
	// referencing file is a .ts file.
	b := scope.NewTable("src/b.ts")
	def(b, "Helper")

	a := scope.NewTable("src/a.ts")
	a.BindImport("Helper", "./b", "Helper", false)

	r := ref("Helper", 0)
	newResolver(a, b).ResolveFile(a, "ts", []*entity.Reference{r})
	assert.Equal(t, "src/b.ts::Helper", r.Target.RefersTo)
}

func TestResolve_WildcardSingleMatch(t *testing.T) {
	b := scope.NewTable("b.ts")
	def(b, "Util")

	a := scope.NewTable("a.ts")
	a.BindWildcard("./b")

	r := ref("Util", 0)
	diags := newResolver(a, b).ResolveFile(a, "ts", []*entity.Reference{r})
	assert.Empty(t, diags)
	assert.Equal(t, "b.ts::Util", r.Target.RefersTo)
}

func TestResolve_WildcardAmbiguity(t *testing.T) {
	b := scope.NewTable("b.ts")
	def(b, "Util")
	c := scope.NewTable("c.ts")
	def(c, "Util")

	a := scope.NewTable("a.ts")
	a.BindWildcard("./b")
	a.BindWildcard("./c")

	r := ref("Util", 0)
	diags := newResolver(a, b, c).ResolveFile(a, "ts", []*entity.Reference{r})

	require.Len(t, diags, 1)
	assert.Equal(t, CodeAmbiguousReference, diags[0].Code)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Empty(t, r.Target.RefersTo, "ambiguous names resolve to neither candidate")
}

func TestResolve_NamedImportBeatsWildcard(t *testing.T) {
	b := scope.NewTable("b.ts")
	def(b, "Util")
	c := scope.NewTable("c.ts")
	def(c, "Util")

	a := scope.NewTable("a.ts")
	a.BindImport("Util", "./b", "Util", false)
	a.BindWildcard("./c")

	r := ref("Util", 0)
	diags := newResolver(a, b, c).ResolveFile(a, "ts", []*entity.Reference{r})
	assert.Empty(t, diags)
	assert.Equal(t, "b.ts::Util", r.Target.RefersTo)
}

func TestResolve_BuiltinFallback(t *testing.T) {
	table := scope.NewTable("index.ts")

	r := ref("number", 0)
	newResolver(table).ResolveFile(table, "ts", []*entity.Reference{r})
	assert.Equal(t, "builtin::number", r.Target.RefersTo)

	py := scope.NewTable("mod.py")
	r2 := ref("str", 0)
	newResolver(py).ResolveFile(py, "py", []*entity.Reference{r2})
	assert.Equal(t, "builtin::str", r2.Target.RefersTo)
}

func TestResolve_LocalShadowsBuiltin(t *testing.T) {
	table := scope.NewTable("index.ts")
	def(table, "Error")

	r := ref("Error", 0)
	newResolver(table).ResolveFile(table, "ts", []*entity.Reference{r})
	assert.Equal(t, "index.ts::Error", r.Target.RefersTo)
}

func TestResolve_UnknownNameStaysUnresolved(t *testing.T) {
	table := scope.NewTable("index.ts")

	r := ref("Mystery", 0)
	diags := newResolver(table).ResolveFile(table, "ts", []*entity.Reference{r})
	assert.Empty(t, diags)
	assert.Empty(t, r.Target.RefersTo)
}

func TestNormalizeImport(t *testing.T) {
	tests := []struct {
		from, source, want string
	}{
		{"a.ts", "./b", "b"},
		{"src/a.ts", "./b", "src/b"},
		{"src/a.ts", "../b", "b"},
		{"src/nested/a.ts", "../sibling/b.ts", "src/sibling/b.ts"},
		{"a.ts", "lib/util", "lib/util"},
		{"pkg/mod.py", "./sub/helper.py", "pkg/sub/helper.py"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeImport(tc.from, tc.source), "%s + %s", tc.from, tc.source)
	}
}

func TestCollisionDiagnostics(t *testing.T) {
	diags := CollisionDiagnostics([]symbols.Collision{
		{Module: "a.ts", Name: "Foo", Existing: "a.ts::Foo", Incoming: "b.ts::Foo"},
	})
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, CodeDuplicateDefinition, diags[0].Code)
	assert.Equal(t, "a.ts", diags[0].Module)
	assert.Equal(t, "Foo", diags[0].Name)
	assert.Contains(t, diags[0].Detail, "a.ts::Foo")
}

func TestBuiltins_Register(t *testing.T) {
	b := NewBuiltins()
	b.Register("rb", "Integer", "String")

	fqn, ok := b.Lookup("rb", "Integer")
	require.True(t, ok)
	assert.Equal(t, "builtin::Integer", fqn)

	_, ok = b.Lookup("rb", "Missing")
	assert.False(t, ok)
	_, ok = b.Lookup("ts", "Integer")
	assert.False(t, ok)
}
