package diagnostics

import (
	"strings"

	"github.com/awfeequdng/basecode/internal/source"
)

// Bag collects diagnostics during compilation. Messages are kept in the
// order they were added so a composite failure lists them in emission order.
type Bag struct {
	diagnostics []*Diagnostic
	errorCount  int
	warnCount   int
}

// NewBag creates an empty diagnostic bag
func NewBag() *Bag {
	return &Bag{
		diagnostics: make([]*Diagnostic, 0),
	}
}

// Add adds a diagnostic to the bag
func (b *Bag) Add(diag *Diagnostic) {
	b.diagnostics = append(b.diagnostics, diag)
	switch diag.Severity {
	case Error:
		b.errorCount++
	case Warning:
		b.warnCount++
	}
}

// Error records a coded error with a source span
func (b *Bag) Error(code, message string, loc *source.Location) {
	b.Add(NewError(code, message).WithLocation(loc))
}

// HasErrors returns true if there are any errors
func (b *Bag) HasErrors() bool {
	return b.errorCount > 0
}

// ErrorCount returns the number of errors
func (b *Bag) ErrorCount() int {
	return b.errorCount
}

// WarningCount returns the number of warnings
func (b *Bag) WarningCount() int {
	return b.warnCount
}

// Diagnostics returns the accumulated diagnostics in emission order
func (b *Bag) Diagnostics() []*Diagnostic {
	result := make([]*Diagnostic, len(b.diagnostics))
	copy(result, b.diagnostics)
	return result
}

// Format renders every accumulated diagnostic, one per line
func (b *Bag) Format() string {
	var sb strings.Builder
	for i, diag := range b.diagnostics {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(diag.Format())
	}
	return sb.String()
}

// Clear removes all diagnostics
func (b *Bag) Clear() {
	b.diagnostics = b.diagnostics[:0]
	b.errorCount = 0
	b.warnCount = 0
}
