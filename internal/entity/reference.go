package entity

// Reference is an unresolved mention of a name inside some scope. A
// backend emits a reference instead of a direct link whenever it sees an
// identifier it cannot define locally; the resolver later fills in the
// owning entity's RefersTo field.
//
// Each reference maps to exactly one entity, so resolving references in
// parallel never contends on writes.
type Reference struct {
	// Name is the literal identifier text as it appeared in source.
	Name string

	// ScopeID identifies the scope the reference was observed in, within
	// its file's scope tree.
	ScopeID int

	// Target is the entity whose RefersTo is populated on success.
	// Typically an identifier- or predefined-type-kind node.
	Target *Entity

	// TypePosition is true when the name appeared in a type position
	// (annotation, alias right-hand side) rather than a value position.
	TypePosition bool

	// FromImport is true when the name was introduced by an import
	// statement rather than appearing in executable or type syntax.
	FromImport bool
}
