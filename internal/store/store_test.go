package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/quarry/internal/entity"
	"github.com/jward/quarry/internal/resolve"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate())
	return s
}

func testGraph() []*entity.Entity {
	age := &entity.Entity{
		Title: "age", Kind: entity.KindProperty, MemberKind: entity.MemberProperty,
		FQN: "index.ts::User::age", Language: "ts",
		Source: entity.Source{File: "index.ts", StartOffsetBytes: 20, EndOffsetBytes: 31},
		Members: []*entity.Entity{{
			Title: "number", Kind: entity.KindPredefinedType,
			FQN: "index.ts::User::number", Language: "ts",
			Source:   entity.Source{File: "index.ts"},
			RefersTo: "builtin::number",
		}},
	}
	user := &entity.Entity{
		Title: "User", Kind: entity.KindTypeAlias,
		FQN: "index.ts::User", Language: "ts",
		Source:  entity.Source{File: "index.ts", StartOffsetBytes: 0, EndOffsetBytes: 33},
		Members: []*entity.Entity{age},
		Meta:    entity.Meta{"exported": true},
	}
	ret := &entity.Entity{
		Title: "User", Kind: entity.KindIdentifier, MemberKind: entity.MemberReturnType,
		FQN: "api.ts::getUser::User", Language: "ts",
		Source:   entity.Source{File: "api.ts"},
		RefersTo: "index.ts::User",
	}
	getUser := &entity.Entity{
		Title: "getUser", Kind: entity.KindFunction,
		FQN: "api.ts::getUser", Language: "ts",
		Source:  entity.Source{File: "api.ts"},
		Members: []*entity.Entity{ret},
	}
	return []*entity.Entity{user, getUser}
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestWriteGraph_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	diags := []resolve.Diagnostic{{
		Severity: resolve.SeverityWarning,
		Code:     resolve.CodeAmbiguousReference,
		Module:   "api.ts",
		Name:     "Util",
		Detail:   "name exported by 2 wildcard-imported modules",
	}}
	require.NoError(t, s.WriteGraph(testGraph(), diags))

	n, err := s.EntityCount()
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	user, err := s.EntityByFQN("index.ts::User")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "User", user.Title)
	assert.Equal(t, entity.KindTypeAlias, user.Kind)
	assert.Equal(t, "index.ts", user.Module)
	assert.Nil(t, user.ParentID, "top-level entities have no parent")
	assert.Contains(t, user.Meta, `"exported":true`)

	missing, err := s.EntityByFQN("index.ts::Nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWriteGraph_MemberTreeAndOrder(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WriteGraph(testGraph(), nil))

	user, err := s.EntityByFQN("index.ts::User")
	require.NoError(t, err)

	members, err := s.Members(user.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "age", members[0].Title)
	assert.Equal(t, entity.MemberProperty, members[0].MemberKind)
	require.NotNil(t, members[0].ParentID)
	assert.Equal(t, user.ID, *members[0].ParentID)
}

func TestEntitiesReferring(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WriteGraph(testGraph(), nil))

	refs, err := s.EntitiesReferring("index.ts::User")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "api.ts::getUser::User", refs[0].FQN)
}

func TestEntitiesInModule(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WriteGraph(testGraph(), nil))

	ents, err := s.EntitiesInModule("index.ts")
	require.NoError(t, err)
	require.Len(t, ents, 3)
	assert.Equal(t, "index.ts::User", ents[0].FQN, "depth-first graph order")
	assert.Equal(t, "index.ts::User::age", ents[1].FQN)
}

func TestDiagnostics_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	diags := []resolve.Diagnostic{
		{Severity: resolve.SeverityError, Code: resolve.CodeDuplicateDefinition, Module: "a.ts", Name: "Foo"},
		{Severity: resolve.SeverityWarning, Code: resolve.CodeReexportDepth, Module: "b.ts", Name: "X", Detail: "chain"},
	}
	require.NoError(t, s.WriteGraph(nil, diags))

	got, err := s.Diagnostics()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "error", got[0].Severity)
	assert.Equal(t, resolve.CodeDuplicateDefinition, got[0].Code)
	assert.Equal(t, "warning", got[1].Severity)
	assert.Equal(t, "chain", got[1].Detail)
}

func TestWriteGraph_ReplacesPriorRun(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WriteGraph(testGraph(), nil))
	require.NoError(t, s.WriteGraph(testGraph()[:1], nil))

	n, err := s.EntityCount()
	require.NoError(t, err)
	assert.Equal(t, 3, n, "a rewrite replaces the previous graph instead of appending")

	gone, err := s.EntityByFQN("api.ts::getUser")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestNewStore_InvalidPath(t *testing.T) {
	_, err := NewStore("/nonexistent/dir/graph.db")
	require.Error(t, err)
}
