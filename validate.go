package imagemeta

import (
	"github.com/simonhull/imagemeta/internal/registry"
	"github.com/simonhull/imagemeta/internal/types"
)

// ValidationResult is an alias to types.ValidationResult.
// Re-exporting from internal/types to keep one public API surface.
type ValidationResult = types.ValidationResult

// Validate checks a populated record against the structural invariants of
// the given format and reports every violation in one pass.
//
// Validation is pure: it performs no I/O, never mutates the record, and
// never fails; a result is produced for any input. Errors mark
// structurally illegal headers; warnings mark legal-but-risky ones. What
// to do about them is the caller's policy.
//
// Example:
//
//	report := imagemeta.Validate(imagemeta.FormatBMP, rec)
//	if !report.IsValid() {
//		for _, e := range report.Errors {
//			log.Println(e)
//		}
//	}
func Validate(format Format, rec *Record) *ValidationResult {
	v := registry.GetValidator(format)
	if v == nil {
		res := &types.ValidationResult{}
		res.AddError("no validator is registered for format %s", format)
		return res
	}
	return v.Validate(rec)
}
