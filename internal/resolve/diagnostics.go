package resolve

import (
	"encoding/json"
	"fmt"
)

// Severity ranks diagnostics. Nothing the resolver reports is fatal to
// the run.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// MarshalJSON emits the severity as its name, not its ordinal.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Diagnostic codes.
const (
	CodeBackendFailure      = "backend-failure"
	CodeDuplicateDefinition = "duplicate-definition"
	CodeAmbiguousReference  = "ambiguous-reference"
	CodeReexportDepth       = "reexport-depth"
)

// Diagnostic is a non-fatal condition reported during collection or
// resolution.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`

	// Module is the module path the condition was observed in.
	Module string `json:"module"`

	// Name is the identifier involved, when there is one.
	Name string `json:"name,omitempty"`

	Detail string `json:"detail,omitempty"`
}

func (d Diagnostic) String() string {
	out := fmt.Sprintf("%s: %s: %s", d.Severity, d.Code, d.Module)
	if d.Name != "" {
		out += ": " + d.Name
	}
	if d.Detail != "" {
		out += " (" + d.Detail + ")"
	}
	return out
}
