package types

import "fmt"

// OutOfBoundsError is returned when attempting to read beyond file bounds.
type OutOfBoundsError struct {
	Path   string
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (file size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// UnsupportedFormatError is returned when the file is not a recognized
// raster container format.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

// CorruptedFileError is returned when a header is damaged enough that
// decoding cannot continue (truncated, unreadable).
//
// Most structural problems are NOT errors: the validator reports them as
// ValidationResult entries so a full diagnostic pass always completes.
type CorruptedFileError struct {
	Path   string
	Reason string
	Offset int64
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// InvalidArgumentError is returned by Record setters when the supplied
// value is malformed (for example a palette byte count that is not a
// multiple of the format's entry size). Raised fail-fast at the mutation
// site, never deferred to validation.
type InvalidArgumentError struct {
	Value  any
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// DisposedError is returned when a Record is used after Dispose or
// DisposeAsync has completed.
type DisposedError struct {
	Type string
	Op   string
}

func (e *DisposedError) Error() string {
	return fmt.Sprintf("%s: %s called after Dispose", e.Type, e.Op)
}
