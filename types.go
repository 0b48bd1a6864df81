package quarry

import (
	"github.com/jward/quarry/internal/entity"
	"github.com/jward/quarry/internal/lang"
	"github.com/jward/quarry/internal/resolve"
	"github.com/jward/quarry/internal/scope"
	"github.com/jward/quarry/internal/symbols"
)

// Public type aliases for internal types that appear in the Engine API.
// These are Go type aliases (=) — identical to the internal types at
// compile time. External consumers use these names; no conversion is
// needed.

type Entity = entity.Entity
type Source = entity.Source
type Meta = entity.Meta
type Reference = entity.Reference
type Backend = lang.Backend
type Result = lang.Result
type ScopeTable = scope.Table
type Index = symbols.Index
type Diagnostic = resolve.Diagnostic
type Severity = resolve.Severity

const (
	SeverityWarning = resolve.SeverityWarning
	SeverityError   = resolve.SeverityError
)
