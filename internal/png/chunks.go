package png

import (
	"github.com/simonhull/imagemeta/internal/types"
)

const (
	chunksOverhead = 64 // fixed header fields
	bufferOverhead = 24 // per allocated palette buffer
)

// Chunks is the PNG-specific Record extension: the raw IHDR fields, the
// PLTE palette bytes, and the structural facts the validator needs. The
// Record mirrors width, height, and bit depth; the validator checks the two
// copies against each other.
type Chunks struct {
	palette []byte

	Width  uint32
	Height uint32

	BitDepth          uint8
	ColorType         uint8
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   uint8

	IHDRLength   uint32
	PLTELength   uint32 // raw chunk length, kept even when not a whole number of entries
	SawIHDR      bool
	SignatureOK  bool
	IHDRFirst    bool
	TruncatedEnd bool // no IEND chunk seen
}

// Palette returns the raw PLTE bytes, or nil when absent. Treat the
// returned slice as read-only.
func (c *Chunks) Palette() []byte {
	return c.palette
}

// SetPalette stores a copy of the palette bytes. The byte count must be a
// multiple of the 3-byte RGB entry size.
func (c *Chunks) SetPalette(p []byte) error {
	if len(p)%table.paletteEntrySize != 0 {
		return &types.InvalidArgumentError{
			Field:  "palette",
			Value:  len(p),
			Reason: "byte count must be a multiple of the 3-byte entry size",
		}
	}
	if len(p) == 0 {
		c.palette = nil
		return nil
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	c.palette = buf
	return nil
}

// EstimatedSize returns the extension's heap contribution in bytes.
func (c *Chunks) EstimatedSize() int {
	size := chunksOverhead
	if c.palette != nil {
		size += len(c.palette) + bufferOverhead
	}
	return size
}

// Clear releases the palette and zeroes every field. Idempotent.
func (c *Chunks) Clear() {
	*c = Chunks{}
}

// CloneExtension returns a deep copy including the palette buffer.
func (c *Chunks) CloneExtension() types.Extension {
	out := *c
	if c.palette != nil {
		out.palette = make([]byte, len(c.palette))
		copy(out.palette, c.palette)
	}
	return &out
}

// ClearStages splits clearing into the palette buffer followed by the
// fixed fields.
func (c *Chunks) ClearStages() []func() {
	return []func(){
		func() { c.palette = nil },
		func() { c.Clear() },
	}
}
