package diagnostics

import (
	"fmt"

	"github.com/awfeequdng/basecode/internal/source"
)

// Severity represents the severity level of a diagnostic
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Diagnostic is a coded compiler message with an optional source span.
type Diagnostic struct {
	Severity Severity
	Code     string // Error code like "P004"
	Message  string
	Location *source.Location
	Detail   string
}

// NewError creates a new error diagnostic
func NewError(code, message string) *Diagnostic {
	return &Diagnostic{
		Severity: Error,
		Code:     code,
		Message:  message,
	}
}

// NewWarning creates a new warning diagnostic
func NewWarning(code, message string) *Diagnostic {
	return &Diagnostic{
		Severity: Warning,
		Code:     code,
		Message:  message,
	}
}

// WithLocation attaches the source span the diagnostic points at
func (d *Diagnostic) WithLocation(loc *source.Location) *Diagnostic {
	d.Location = loc
	return d
}

// WithDetail attaches supplementary information shown after the message
func (d *Diagnostic) WithDetail(detail string) *Diagnostic {
	d.Detail = detail
	return d
}

func (d *Diagnostic) Format() string {
	out := fmt.Sprintf("%s[%s]: %s", d.Severity, d.Code, d.Message)
	if d.Location != nil && d.Location.Start != nil {
		out += fmt.Sprintf(" at %s", d.Location.String())
	}
	if d.Detail != "" {
		out += "\n  " + d.Detail
	}
	return out
}
