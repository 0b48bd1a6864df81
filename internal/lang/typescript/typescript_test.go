package typescript

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/quarry/internal/entity"
	"github.com/jward/quarry/internal/lang"
	"github.com/jward/quarry/internal/scope"
)

func extract(t *testing.T, src string) *lang.Result {
	t.Helper()
	res, err := New().Extract(context.Background(), "index.ts", []byte(src))
	require.NoError(t, err)
	return res
}

func TestExtract_TypeAliasWithObject(t *testing.T) {
	res := extract(t, `type User = {
  name: string
  age: number
}`)

	require.Len(t, res.Entities, 1)
	user := res.Entities[0]
	assert.Equal(t, "User", user.Title)
	assert.Equal(t, entity.KindTypeAlias, user.Kind)
	assert.Equal(t, "ts", user.Language)
	assert.Equal(t, "index.ts", user.Source.File)

	require.Len(t, user.Members, 1)
	obj := user.Members[0]
	assert.Equal(t, entity.KindObject, obj.Kind)
	assert.True(t, obj.Anonymous())

	require.Len(t, obj.Members, 2)
	assert.Equal(t, "name", obj.Members[0].Title)
	assert.Equal(t, "age", obj.Members[1].Title)
	assert.Equal(t, entity.MemberProperty, obj.Members[0].MemberKind)

	// Each property carries its type node, which emitted a reference.
	age := obj.Members[1]
	require.Len(t, age.Members, 1)
	assert.Equal(t, entity.KindPredefinedType, age.Members[0].Kind)
	assert.Equal(t, "number", age.Members[0].Title)

	var names []string
	for _, r := range res.References {
		names = append(names, r.Name)
	}
	assert.Contains(t, names, "string")
	assert.Contains(t, names, "number")
}

func TestExtract_FunctionSignature(t *testing.T) {
	res := extract(t, `function getUser(id: number, verbose?: boolean): User {
  return db.find(id)
}`)

	require.Len(t, res.Entities, 1)
	fn := res.Entities[0]
	assert.Equal(t, "getUser", fn.Title)
	assert.Equal(t, entity.KindFunction, fn.Kind)

	require.Len(t, fn.Members, 3)
	id := fn.Members[0]
	assert.Equal(t, "id", id.Title)
	assert.Equal(t, entity.MemberParameter, id.MemberKind)
	require.Len(t, id.Members, 1)
	assert.Equal(t, "number", id.Members[0].Title)

	verbose := fn.Members[1]
	assert.Equal(t, "verbose", verbose.Title)
	assert.Equal(t, true, verbose.Meta["optional"])

	ret := fn.Members[2]
	assert.Equal(t, entity.MemberReturnType, ret.MemberKind)
	assert.Equal(t, "User", ret.Title)
	assert.Equal(t, entity.KindIdentifier, ret.Kind)

	// The return type emitted a reference observed in the function scope.
	var userRef *entity.Reference
	for _, r := range res.References {
		if r.Name == "User" {
			userRef = r
		}
	}
	require.NotNil(t, userRef)
	assert.Same(t, ret, userRef.Target)
	assert.True(t, userRef.TypePosition)
	assert.NotEqual(t, 0, userRef.ScopeID, "signature types live in the function scope")
}

func TestExtract_TypeParameterShadowsFileScope(t *testing.T) {
	res := extract(t, `type T = string
function wrap<T>(value: T): T[] {
  return [value]
}`)

	// The file scope binds the alias T; the function scope binds the type
	// variable T. The parameter's type reference must see the inner one.
	var paramRef *entity.Reference
	for _, r := range res.References {
		if r.Name == "T" && r.ScopeID != 0 {
			paramRef = r
			break
		}
	}
	require.NotNil(t, paramRef)

	b, ok := res.Scopes.Lookup("T", paramRef.ScopeID)
	require.True(t, ok)
	require.NotNil(t, b.Entity)
	assert.Equal(t, "type_variable", b.Entity.Kind)

	rootB, ok := res.Scopes.Lookup("T", 0)
	require.True(t, ok)
	assert.Equal(t, entity.KindTypeAlias, rootB.Entity.Kind)
}

func TestExtract_ClassMembers(t *testing.T) {
	res := extract(t, `/** A user session. */
export class Session {
  readonly token: string

  static async open(id: number): Promise<Session> {
    return new Session()
  }
}`)

	require.Len(t, res.Entities, 1)
	cls := res.Entities[0]
	assert.Equal(t, "Session", cls.Title)
	assert.Equal(t, entity.KindClass, cls.Kind)
	assert.Equal(t, "A user session.", cls.Description)

	require.Len(t, cls.Members, 2)
	field := cls.Members[0]
	assert.Equal(t, "token", field.Title)
	assert.Equal(t, entity.KindField, field.Kind)
	assert.Equal(t, true, field.Meta["readonly"])

	method := cls.Members[1]
	assert.Equal(t, "open", method.Title)
	assert.Equal(t, entity.KindMethod, method.Kind)
	assert.Equal(t, true, method.Meta["static"])
	assert.Equal(t, true, method.Meta["async"])

	// export class binds Session as exported in the root scope.
	b, ok := res.Scopes.Lookup("Session", 0)
	require.True(t, ok)
	assert.True(t, b.Exported)
}

func TestExtract_Interface(t *testing.T) {
	res := extract(t, `interface Repo {
  find(id: number): User
  url?: string
}`)

	require.Len(t, res.Entities, 1)
	iface := res.Entities[0]
	assert.Equal(t, entity.KindInterface, iface.Kind)

	require.Len(t, iface.Members, 2)
	assert.Equal(t, "find", iface.Members[0].Title)
	assert.Equal(t, entity.KindMethod, iface.Members[0].Kind)
	assert.Equal(t, "url", iface.Members[1].Title)
	assert.Equal(t, true, iface.Members[1].Meta["optional"])
}

func TestExtract_UnionAndGenericTypes(t *testing.T) {
	res := extract(t, `type Result = Promise<User | null>`)

	require.Len(t, res.Entities, 1)
	alias := res.Entities[0]
	require.Len(t, alias.Members, 1)

	generic := alias.Members[0]
	assert.Equal(t, entity.KindGenericType, generic.Kind)
	assert.Equal(t, "Promise", generic.Title)

	require.Len(t, generic.Members, 1)
	union := generic.Members[0]
	assert.Equal(t, entity.KindUnion, union.Kind)
	assert.Equal(t, entity.MemberTypeArg, union.MemberKind)
	require.Len(t, union.Members, 2)
}

func TestExtract_Imports(t *testing.T) {
	res := extract(t, `import { User, Role as R } from './models'
import * as helpers from './helpers'
import Default from './main'
`)

	assert.Empty(t, res.Entities)

	b, ok := res.Scopes.Lookup("User", 0)
	require.True(t, ok)
	assert.Equal(t, scope.BindingImport, b.Kind)
	assert.Equal(t, "./models", b.Module)
	assert.Equal(t, "User", b.Original)
	assert.False(t, b.Exported)

	b, ok = res.Scopes.Lookup("R", 0)
	require.True(t, ok)
	assert.Equal(t, "Role", b.Original)

	_, ok = res.Scopes.Lookup("Role", 0)
	assert.False(t, ok, "only the alias is visible")

	ws := res.Scopes.Wildcards(0)
	require.Len(t, ws, 1)
	assert.Equal(t, "./helpers", ws[0].Module)

	b, ok = res.Scopes.Lookup("Default", 0)
	require.True(t, ok)
	assert.Equal(t, "default", b.Original)
}

func TestExtract_Exports(t *testing.T) {
	res := extract(t, `function helper() {}
export { helper }
export { Thing as PublicThing } from './things'
export * from './base'
`)

	b, ok := res.Scopes.Lookup("helper", 0)
	require.True(t, ok)
	assert.Equal(t, scope.BindingLocal, b.Kind)
	assert.True(t, b.Exported, "trailing export clause marks the earlier binding")

	b, ok = res.Scopes.Lookup("PublicThing", 0)
	require.True(t, ok)
	assert.Equal(t, scope.BindingImport, b.Kind)
	assert.Equal(t, "./things", b.Module)
	assert.Equal(t, "Thing", b.Original)
	assert.True(t, b.Exported, "a re-export is an exported import binding")

	ws := res.Scopes.Wildcards(0)
	require.Len(t, ws, 1)
	assert.Equal(t, "./base", ws[0].Module)
}

func TestExtract_JSDocOnExportedDeclaration(t *testing.T) {
	res := extract(t, `/**
 * Finds a user by id.
 */
export function getUser(id: number) {}
`)

	require.Len(t, res.Entities, 1)
	assert.Equal(t, "Finds a user by id.", res.Entities[0].Description)
}

func TestExtract_SourceOffsets(t *testing.T) {
	src := `type A = string`
	res := extract(t, src)

	require.Len(t, res.Entities, 1)
	assert.Equal(t, 0, res.Entities[0].Source.StartOffsetBytes)
	assert.Equal(t, len(src), res.Entities[0].Source.EndOffsetBytes)
}

func TestExtract_EmptyFile(t *testing.T) {
	res := extract(t, "")
	assert.Empty(t, res.Entities)
	assert.Empty(t, res.References)
}
