package bmp

import (
	"github.com/simonhull/imagemeta/internal/types"
)

// Accounting constants mirroring the Record's footprint rules.
const (
	headerOverhead = 96 // fixed header fields
	bufferOverhead = 24 // per allocated palette buffer
)

// Header is the BMP-specific Record extension: the file-header and
// DIB-header fields the validator needs, the channel masks used by
// BI_BITFIELDS images, and the color palette bytes.
//
// Width and Height carry the raw signed header values; a negative Height
// marks a top-down bitmap. The Record mirrors both as non-negative pixel
// dimensions, and the validator checks the two copies against each other.
type Header struct {
	palette []byte

	FileSize   uint32
	DataOffset uint32
	HeaderSize uint32

	Width  int32
	Height int32

	Planes       uint16
	BitsPerPixel uint16
	Compression  uint32
	ImageSize    uint32

	XPelsPerMeter int32
	YPelsPerMeter int32

	ColorsUsed      uint32
	ColorsImportant uint32

	RedMask   uint32
	GreenMask uint32
	BlueMask  uint32
	AlphaMask uint32
	HasMasks  bool

	Signature [2]byte
	TopDown   bool
}

// Palette returns the raw palette bytes, or nil when absent. The returned
// slice is the header's own buffer; treat it as read-only.
func (h *Header) Palette() []byte {
	return h.palette
}

// SetPalette stores a copy of the palette bytes. The byte count must be a
// multiple of the palette entry size; anything else is rejected fail-fast
// with an InvalidArgumentError. A nil or empty palette clears the field.
func (h *Header) SetPalette(p []byte) error {
	if len(p)%table.paletteEntrySize != 0 {
		return &types.InvalidArgumentError{
			Field:  "palette",
			Value:  len(p),
			Reason: "byte count must be a multiple of the 4-byte entry size",
		}
	}
	if len(p) == 0 {
		h.palette = nil
		return nil
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	h.palette = buf
	return nil
}

// EstimatedSize returns the header's heap contribution in bytes.
func (h *Header) EstimatedSize() int {
	size := headerOverhead
	if h.palette != nil {
		size += len(h.palette) + bufferOverhead
	}
	return size
}

// Clear releases the palette and zeroes every field. Idempotent.
func (h *Header) Clear() {
	*h = Header{}
}

// CloneExtension returns a deep copy including the palette buffer.
func (h *Header) CloneExtension() types.Extension {
	out := *h
	if h.palette != nil {
		out.palette = make([]byte, len(h.palette))
		copy(out.palette, h.palette)
	}
	return &out
}

// ClearStages splits clearing into the palette buffer (the only field that
// can be large) followed by the fixed fields.
func (h *Header) ClearStages() []func() {
	return []func(){
		func() { h.palette = nil },
		func() { h.Clear() },
	}
}
