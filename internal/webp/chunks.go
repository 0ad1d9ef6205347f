package webp

import (
	"github.com/simonhull/imagemeta/internal/types"
)

const (
	chunksOverhead = 72 // fixed fields
	entryOverhead  = 24 // per retained chunk table entry
)

// Chunks is the WebP-specific Record extension: the RIFF container facts,
// the VP8X feature flags, and a table of every chunk's declared size. The
// Record mirrors the canvas dimensions; the validator checks the copies
// against each other.
type Chunks struct {
	// Sizes maps each chunk FourCC to its declared payload size. Repeated
	// chunks (animation frames) accumulate.
	Sizes map[string]uint32

	RiffSize uint32
	FileSize int64

	Width  uint32
	Height uint32

	FirstChunk string
	FormOK     bool

	// VP8X feature flags.
	HasVP8X    bool
	FlagICC    bool
	FlagAlpha  bool
	FlagEXIF   bool
	FlagXMP    bool
	FlagAnim   bool
	FlagUnused bool // any reserved flag bit set
}

// EstimatedSize returns the extension's heap contribution in bytes.
func (c *Chunks) EstimatedSize() int {
	size := chunksOverhead
	for fourcc := range c.Sizes {
		size += entryOverhead + len(fourcc)
	}
	return size
}

// Clear releases the chunk table and zeroes every field. Idempotent.
func (c *Chunks) Clear() {
	*c = Chunks{}
}

// CloneExtension returns a deep copy including the chunk table.
func (c *Chunks) CloneExtension() types.Extension {
	out := *c
	if c.Sizes != nil {
		out.Sizes = make(map[string]uint32, len(c.Sizes))
		for k, v := range c.Sizes {
			out.Sizes[k] = v
		}
	}
	return &out
}

// ClearStages splits clearing into the chunk table (the only collection
// that grows with the file) followed by the fixed fields.
func (c *Chunks) ClearStages() []func() {
	return []func(){
		func() { c.Sizes = nil },
		func() { c.Clear() },
	}
}
