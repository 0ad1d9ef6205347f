package types

import (
	"fmt"
	"strings"
)

// ValidationResult aggregates every problem found in one validation pass.
//
// Validators never stop at the first violation: errors describe structurally
// illegal headers, warnings describe legal-but-risky ones, and info entries
// carry observations that are neither. Each list preserves the order in
// which entries were appended.
//
// A result is an in-memory report. Whether error entries abort an operation
// is the caller's policy, not the validator's.
type ValidationResult struct {
	Errors   []string
	Warnings []string
	Info     []string
}

// IsValid reports whether the pass found no errors. Warnings and info
// entries do not affect validity.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// AddError appends a formatted error entry.
func (r *ValidationResult) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// AddWarning appends a formatted warning entry.
func (r *ValidationResult) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// AddInfo appends a formatted info entry.
func (r *ValidationResult) AddInfo(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// Merge appends other's entries after r's own, preserving relative order
// within each source. Merging nil is a no-op.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Info = append(r.Info, other.Info...)
}

// String renders the report one entry per line, errors first.
func (r *ValidationResult) String() string {
	var b strings.Builder
	for _, e := range r.Errors {
		b.WriteString("error: ")
		b.WriteString(e)
		b.WriteByte('\n')
	}
	for _, w := range r.Warnings {
		b.WriteString("warning: ")
		b.WriteString(w)
		b.WriteByte('\n')
	}
	for _, i := range r.Info {
		b.WriteString("info: ")
		b.WriteString(i)
		b.WriteByte('\n')
	}
	return b.String()
}
