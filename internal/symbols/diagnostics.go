package symbols

import "fmt"

// DiagnosticKind classifies a recoverable, stage-local condition.
type DiagnosticKind string

const (
	// DiagSyntaxError marks a span the parser could not make sense of.
	DiagSyntaxError DiagnosticKind = "syntax_error"

	// DiagUnresolvedRelationship marks an implementation or receiver whose target
	// is not declared in the unit.
	DiagUnresolvedRelationship DiagnosticKind = "unresolved_relationship"

	// DiagDuplicateSpan marks a candidate dropped because an earlier one claimed
	// the same span.
	DiagDuplicateSpan DiagnosticKind = "duplicate_span"
)

// Diagnostic is collected alongside a symbol table instead of failing extraction.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind" yaml:"kind"`
	Span    Span           `json:"span" yaml:"span"`
	Message string         `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Span.StartLine, d.Span.StartColumn+1, d.Kind, d.Message)
}
