// Package registry manages format-specific decoders and validators for
// image container formats.
package registry

import (
	"io"

	"github.com/simonhull/imagemeta/internal/types"
)

// HeaderDecoder is the interface all format decoders implement.
//
// A decoder reads only the header region of a file and populates a Record;
// pixel data is never touched. Decoders tolerate structurally illegal
// values (those are the validator's business) and fail only on headers
// too damaged to populate a Record at all.
type HeaderDecoder interface {
	// Decode populates a fresh Record from the file's header.
	Decode(r io.ReaderAt, size int64, path string) (*types.Record, error)
}

// Validator is the interface all format validators implement.
//
// Validate is pure: it never mutates the record, never performs I/O, and
// never fails; every violation is reported through the result.
type Validator interface {
	// Validate checks a populated record against the format's structural
	// invariants and reports all violations in one pass.
	Validate(rec *types.Record) *types.ValidationResult
}

// decoders maps formats to their header decoders.
var decoders = make(map[types.Format]HeaderDecoder)

// validators maps formats to their validators.
var validators = make(map[types.Format]Validator)

// Register registers a decoder for a format.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, dec HeaderDecoder) {
	decoders[format] = dec
}

// Get returns the decoder for a given format.
// Returns nil if no decoder is registered for the format.
func Get(format types.Format) HeaderDecoder {
	return decoders[format]
}

// RegisterValidator registers a validator for a format.
// This is called by format packages during initialization (init functions).
func RegisterValidator(format types.Format, v Validator) {
	validators[format] = v
}

// GetValidator returns the validator for a given format.
// Returns nil if no validator is registered for the format.
func GetValidator(format types.Format) Validator {
	return validators[format]
}
