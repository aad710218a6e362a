// Package diagnostics defines stepviz diagnostic types for lex, parse,
// validation and fatal runtime conditions.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RivorSuite/Rivor-Insights-sub001/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex          = "E_LEX"
	EParse        = "E_PARSE"
	EDepth        = "E_DEPTH"
	ETimeout      = "E_TIMEOUT"
	EInternal     = "E_INTERNAL"
	EIO           = "E_IO"
	EConfig       = "E_CONFIG"
	WOrphanBranch = "W_ORPHAN_BRANCH"
	WEmptyBody    = "W_EMPTY_BODY"
	WUnparsed     = "W_UNPARSED"
	WIndent       = "W_INDENT"
	WLoopControl  = "W_LOOP_CONTROL"
	WUnknownFn    = "W_UNKNOWN_FN"
)

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic represents a parse, validation, or runtime diagnostic.
type Diagnostic struct {
	Code     string    `json:"code"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Span     *ast.Span `json:"span,omitempty"`
	Hint     string    `json:"hint,omitempty"`
}

// MakeDiag creates a new error Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: SeverityError,
		Message:  message,
		Span:     span,
		Hint:     hint,
	}
}

// MakeWarning creates a new warning Diagnostic.
func MakeWarning(code, message string, span *ast.Span, hint string) Diagnostic {
	d := MakeDiag(code, message, span, hint)
	d.Severity = SeverityWarning
	return d
}

// IsError reports whether the diagnostic blocks execution.
func (d Diagnostic) IsError() bool {
	return d.Severity != SeverityWarning
}

// HasErrors reports whether any diagnostic in diags is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.IsError() {
			return true
		}
	}
	return false
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("line %d:%d", d.Span.Line+1, d.Span.StartCol)
	}
	out := fmt.Sprintf("%s[%s]: %s\n  --> %s", d.Severity, d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		if diags == nil {
			diags = []Diagnostic{}
		}
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
