package imagemeta

import (
	"github.com/simonhull/imagemeta/internal/types"
)

// OutOfBoundsError is an alias to types.OutOfBoundsError.
// Re-exporting from internal/types to keep one public API surface.
type OutOfBoundsError = types.OutOfBoundsError

// UnsupportedFormatError is an alias to types.UnsupportedFormatError.
// Re-exporting from internal/types to keep one public API surface.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError is an alias to types.CorruptedFileError.
// Re-exporting from internal/types to keep one public API surface.
type CorruptedFileError = types.CorruptedFileError

// InvalidArgumentError is an alias to types.InvalidArgumentError.
// Re-exporting from internal/types to keep one public API surface.
type InvalidArgumentError = types.InvalidArgumentError

// DisposedError is an alias to types.DisposedError.
// Re-exporting from internal/types to keep one public API surface.
type DisposedError = types.DisposedError
