package tiff

import (
	"github.com/simonhull/imagemeta/internal/types"
)

const (
	directoryOverhead = 80 // fixed fields
	entrySize         = 16 // per retained IFD entry
)

// Directory is the TIFF-specific Record extension: the fields of the first
// image file directory (IFD) plus a map of every entry's tag, type, and
// count for diagnostics. The Record mirrors width, height, and the summed
// bit depth; the validator checks the copies against each other.
type Directory struct {
	// Entries maps each retained IFD tag to its declared type and count.
	Entries map[uint16]Entry

	BitsPerSample []uint16

	Width  uint32
	Height uint32

	SamplesPerPixel uint16
	Compression     uint16
	Photometric     uint16

	EntryCount uint16
	FirstIFD   uint32
	Magic      uint16

	BigEndian bool
}

// Entry records the declared shape of one IFD entry.
type Entry struct {
	Type  uint16
	Count uint32
}

// EstimatedSize returns the extension's heap contribution in bytes.
func (d *Directory) EstimatedSize() int {
	size := directoryOverhead
	size += len(d.Entries) * entrySize
	size += len(d.BitsPerSample) * 2
	return size
}

// Clear releases the entry map and sample buffer and zeroes every field.
// Idempotent.
func (d *Directory) Clear() {
	*d = Directory{}
}

// CloneExtension returns a deep copy including the entry map and the
// bits-per-sample buffer.
func (d *Directory) CloneExtension() types.Extension {
	out := *d
	if d.Entries != nil {
		out.Entries = make(map[uint16]Entry, len(d.Entries))
		for k, v := range d.Entries {
			out.Entries[k] = v
		}
	}
	if d.BitsPerSample != nil {
		out.BitsPerSample = make([]uint16, len(d.BitsPerSample))
		copy(out.BitsPerSample, d.BitsPerSample)
	}
	return &out
}

// ClearStages splits clearing into the entry map (the only collection that
// grows with the file) followed by the fixed fields.
func (d *Directory) ClearStages() []func() {
	return []func(){
		func() { d.Entries = nil },
		func() { d.Clear() },
	}
}
