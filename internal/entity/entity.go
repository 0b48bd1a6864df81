// Package entity defines the language-agnostic entity model: the uniform
// in-memory representation of any extracted declaration, the reference
// model produced by language backends, and canonical FQN assignment.
package entity

import "fmt"

// Well-known entity kinds. The set is open: backends may emit kinds that
// are not listed here and consumers must tolerate unknown values.
const (
	KindFunction       = "function"
	KindClass          = "class"
	KindInterface      = "interface"
	KindTypeAlias      = "type_alias"
	KindType           = "type"
	KindObject         = "object"
	KindUnion          = "union"
	KindArray          = "array_type"
	KindGenericType    = "generic_type"
	KindFunctionType   = "function_type"
	KindProperty       = "property"
	KindParameter      = "parameter"
	KindField          = "field"
	KindMethod         = "method"
	KindModule         = "module"
	KindNamespace      = "namespace"
	KindIdentifier     = "identifier"
	KindPredefinedType = "predefined_type"
)

// Member-kind tags describing the role an entity plays as a child of its
// parent, orthogonal to Kind.
const (
	MemberParameter  = "parameter"
	MemberReturnType = "returnType"
	MemberProperty   = "property"
	MemberTypeArg    = "typeArgument"
)

// Source records where an entity came from in the original source text.
type Source struct {
	File             string `json:"file"`
	StartOffsetBytes int    `json:"start_offset_bytes"`
	EndOffsetBytes   int    `json:"end_offset_bytes"`
	Repository       string `json:"repository,omitempty"`
}

// Meta is an open key/value mapping for backend-specific flags that do
// not warrant first-class fields (e.g. "readonly", "optional",
// "return_type" as raw text).
type Meta map[string]any

// Entity is a declaration or declaration-shaped fragment extracted from
// source code. Entities form a tree via Members; ownership is exclusive.
// All other relationships (RefersTo) are expressed as FQN strings, never
// as live pointers, so cyclic type graphs cannot become ownership cycles.
//
// Backends create entities during extraction and never mutate them after
// emission. The resolver fills RefersTo during resolution; nothing else
// is mutated after FQN assignment.
type Entity struct {
	// Title is the display name. Empty for anonymous structural nodes
	// such as object literals and inline types.
	Title       string `json:"title"`
	Description string `json:"description"`
	Kind        string `json:"kind"`

	// MemberKind describes the role this entity plays as a child of its
	// parent (e.g. "parameter", "returnType"). Empty for top-level
	// entities and members with no special role.
	MemberKind string `json:"memberKind,omitempty"`

	// Members are child entities in emission order. The order is
	// meaningful: parameter order, declaration order.
	Members []*Entity `json:"members,omitempty"`

	// FQN is the canonical fully-qualified name. Assigned exactly once
	// by AssignFQNs and immutable thereafter.
	FQN string `json:"fqn"`

	Language string `json:"language"`
	Source   Source `json:"source"`
	Meta     Meta   `json:"meta,omitempty"`

	// RefersTo is the FQN of the entity this node resolves to. Only
	// populated for identifier- and predefined-type-kind nodes, and only
	// when resolution succeeds.
	RefersTo string `json:"refers_to,omitempty"`
}

// Anonymous reports whether the entity contributes no FQN segment.
func (e *Entity) Anonymous() bool {
	return e.Title == ""
}

// AddMember appends a child, rejecting the same entity value being added
// twice (members ownership is exclusive).
func (e *Entity) AddMember(child *Entity) error {
	for _, m := range e.Members {
		if m == child {
			return fmt.Errorf("entity %q: duplicate member %q", e.Title, child.Title)
		}
	}
	e.Members = append(e.Members, child)
	return nil
}

// Walk visits the entity and all descendants depth-first in member order.
// Returning false from fn stops the walk.
func (e *Entity) Walk(fn func(*Entity) bool) bool {
	if !fn(e) {
		return false
	}
	for _, m := range e.Members {
		if !m.Walk(fn) {
			return false
		}
	}
	return true
}

// FindByFQN returns the entity with the given FQN within this subtree,
// or nil if no match exists.
func (e *Entity) FindByFQN(fqn string) *Entity {
	var found *Entity
	e.Walk(func(n *Entity) bool {
		if n.FQN == fqn {
			found = n
			return false
		}
		return true
	})
	return found
}

// Count returns the number of entities in the subtree, including e.
func (e *Entity) Count() int {
	n := 0
	e.Walk(func(*Entity) bool { n++; return true })
	return n
}
