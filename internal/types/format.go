package types

import (
	"io"

	"github.com/simonhull/imagemeta/internal/binary"
)

// Format represents the detected image container format
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota
	// FormatBMP represents Windows bitmap files.
	FormatBMP
	// FormatPNG represents PNG files.
	FormatPNG
	// FormatTIFF represents TIFF files (either byte order).
	FormatTIFF
	// FormatWebP represents WebP files.
	FormatWebP
)

func (f Format) String() string {
	switch f {
	case FormatBMP:
		return "BMP"
	case FormatPNG:
		return "PNG"
	case FormatTIFF:
		return "TIFF"
	case FormatWebP:
		return "WebP"
	default:
		return "Unknown"
	}
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatBMP:
		return []string{".bmp", ".dib"}
	case FormatPNG:
		return []string{".png"}
	case FormatTIFF:
		return []string{".tiff", ".tif"}
	case FormatWebP:
		return []string{".webp"}
	case FormatUnknown:
		return nil
	default:
		return nil
	}
}

// pngSignature is the fixed 8-byte PNG file signature.
var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// TIFF headers: byte-order mark followed by the magic number 42.
const (
	tiffLittleEndianHeader = "II\x2A\x00"
	tiffBigEndianHeader    = "MM\x00\x2A"
)

// DetectFormat determines the image container format by examining magic bytes.
//
// Supported formats: BMP, PNG, TIFF (both byte orders), WebP.
//
// Detection is based on file signatures at the beginning of the file; it
// does not validate the rest of the header. Structural validation is a
// separate pass.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	// 12 bytes covers the longest signature (RIFF size + "WEBP").
	if size < 4 {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "file too small",
		}
	}

	sr := binary.NewSafeReader(r, size, path)

	magic := make([]byte, 4)
	if err := sr.ReadAt(magic, 0, "file magic bytes"); err != nil {
		return FormatUnknown, &UnsupportedFormatError{
			Path:   path,
			Reason: "failed to read file header",
		}
	}

	// BMP: "BM"
	if magic[0] == 'B' && magic[1] == 'M' {
		return FormatBMP, nil
	}

	// PNG: 8-byte signature
	if size >= 8 && magic[0] == pngSignature[0] {
		sig := make([]byte, 8)
		if err := sr.ReadAt(sig, 0, "PNG signature"); err == nil && string(sig) == string(pngSignature) {
			return FormatPNG, nil
		}
	}

	// TIFF: "II*\0" (little-endian) or "MM\0*" (big-endian)
	if string(magic) == tiffLittleEndianHeader || string(magic) == tiffBigEndianHeader {
		return FormatTIFF, nil
	}

	// WebP: RIFF container with "WEBP" form type at offset 8
	if string(magic) == "RIFF" && size >= 12 {
		form := make([]byte, 4)
		if err := sr.ReadAt(form, 8, "RIFF form type"); err == nil && string(form) == "WEBP" {
			return FormatWebP, nil
		}
	}

	return FormatUnknown, &UnsupportedFormatError{
		Path:   path,
		Reason: "unrecognized file signature",
	}
}
