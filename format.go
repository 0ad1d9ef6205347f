package imagemeta

import (
	"io"

	"github.com/simonhull/imagemeta/internal/types"
)

// Format is an alias to types.Format.
// Re-exporting from internal/types to keep one public API surface.
type Format = types.Format

// Format values.
const (
	FormatUnknown = types.FormatUnknown
	FormatBMP     = types.FormatBMP
	FormatPNG     = types.FormatPNG
	FormatTIFF    = types.FormatTIFF
	FormatWebP    = types.FormatWebP
)

// DetectFormat determines the image container format by examining magic
// bytes. Detection does not validate the rest of the header.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	return types.DetectFormat(r, size, path)
}
