// Package types provides core data structures for image header metadata.
//
// This package defines the Record, SmallVec, ValidationResult, and Format
// types that represent decoded header information across all supported
// container formats.
package types

import (
	"iter"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

// DefaultLargeMetadataThreshold is the byte-size cutoff above which disposal
// takes the staged path. The value comes from batch-processing measurements,
// not from any structural requirement; tune it per record with
// SetLargeMetadataThreshold when your workload differs.
const DefaultLargeMetadataThreshold = 1_000_000

// Footprint accounting constants. These approximate heap cost on a 64-bit
// runtime; estimation is a policy input, not an allocator audit.
const (
	recordBaseOverhead = 256 // fixed fields, headers, bookkeeping
	stringOverhead     = 24  // per populated string
	sliceOverhead      = 24  // per allocated buffer
	mapEntryOverhead   = 48  // per ancillary map entry
	timestampSize      = 24  // per populated timestamp
	textBytesPerChar   = 2   // text counted as 2 bytes per character
)

// Record holds the descriptive (non-pixel) metadata decoded from one image
// header: dimensions and depth, large binary blobs (EXIF, ICC), text fields,
// timestamps, per-channel bit depths, ancillary key/value pairs, and a
// format-specific Extension.
//
// A Record is exclusively owned by the Image that created it and is never
// aliased between two images; sharing requires Clone. Setters validate
// fail-fast and all fallible operations return *DisposedError once Dispose
// or DisposeAsync has completed. Estimation and validation are read-only;
// concurrent mutation must be synchronized by the caller.
type Record struct {
	exifBlob       []byte
	iccProfileBlob []byte
	xmpText        string

	software    string
	description string
	copyright   string
	author      string

	creationTime     *time.Time
	modificationTime *time.Time

	custom map[string]string

	bitsPerChannel SmallVec[uint8]

	ext Extension

	width    int
	height   int
	bitDepth int

	threshold int

	disposeOnce sync.Once
	disposed    atomic.Bool
}

// NewRecord returns a record with default (empty) fields and the default
// large-metadata threshold.
func NewRecord() *Record {
	return &Record{threshold: DefaultLargeMetadataThreshold}
}

// guard is the single disposed check behind every fallible entry point.
func (r *Record) guard(op string) error {
	if r.disposed.Load() {
		return &DisposedError{Type: "Record", Op: op}
	}
	return nil
}

// Disposed reports whether the record has been retired by Dispose or
// DisposeAsync.
func (r *Record) Disposed() bool {
	return r.disposed.Load()
}

// Width returns the image width in pixels.
func (r *Record) Width() int { return r.width }

// Height returns the image height in pixels.
func (r *Record) Height() int { return r.height }

// BitDepth returns the declared bits per pixel.
func (r *Record) BitDepth() int { return r.bitDepth }

// SetWidth sets the image width. Negative widths are rejected; a zero or
// out-of-range width is structurally suspect but representable, and is the
// validator's business, not the setter's.
func (r *Record) SetWidth(w int) error {
	if err := r.guard("SetWidth"); err != nil {
		return err
	}
	if w < 0 {
		return &InvalidArgumentError{Field: "width", Value: w, Reason: "must be non-negative"}
	}
	r.width = w
	return nil
}

// SetHeight sets the image height. Negative heights are rejected.
func (r *Record) SetHeight(h int) error {
	if err := r.guard("SetHeight"); err != nil {
		return err
	}
	if h < 0 {
		return &InvalidArgumentError{Field: "height", Value: h, Reason: "must be non-negative"}
	}
	r.height = h
	return nil
}

// SetBitDepth sets the declared bits per pixel.
func (r *Record) SetBitDepth(d int) error {
	if err := r.guard("SetBitDepth"); err != nil {
		return err
	}
	if d < 0 {
		return &InvalidArgumentError{Field: "bit depth", Value: d, Reason: "must be non-negative"}
	}
	r.bitDepth = d
	return nil
}

// ExifBlob returns the raw EXIF payload, or nil when absent. The returned
// slice is the record's own buffer; treat it as read-only.
func (r *Record) ExifBlob() []byte { return r.exifBlob }

// SetExifBlob stores a copy of blob. A nil or empty blob clears the field.
func (r *Record) SetExifBlob(blob []byte) error {
	if err := r.guard("SetExifBlob"); err != nil {
		return err
	}
	r.exifBlob = copyBytes(blob)
	return nil
}

// IccProfileBlob returns the raw ICC profile payload, or nil when absent.
func (r *Record) IccProfileBlob() []byte { return r.iccProfileBlob }

// SetIccProfileBlob stores a copy of blob. A nil or empty blob clears the field.
func (r *Record) SetIccProfileBlob(blob []byte) error {
	if err := r.guard("SetIccProfileBlob"); err != nil {
		return err
	}
	r.iccProfileBlob = copyBytes(blob)
	return nil
}

// XmpText returns the XMP packet text, or "" when absent.
func (r *Record) XmpText() string { return r.xmpText }

// SetXmpText stores the XMP packet text.
func (r *Record) SetXmpText(s string) error {
	if err := r.guard("SetXmpText"); err != nil {
		return err
	}
	r.xmpText = s
	return nil
}

// Software returns the creating-software field, or "" when absent.
func (r *Record) Software() string { return r.software }

// SetSoftware stores the creating-software field.
func (r *Record) SetSoftware(s string) error {
	if err := r.guard("SetSoftware"); err != nil {
		return err
	}
	r.software = s
	return nil
}

// Description returns the free-text description, or "" when absent.
func (r *Record) Description() string { return r.description }

// SetDescription stores the free-text description.
func (r *Record) SetDescription(s string) error {
	if err := r.guard("SetDescription"); err != nil {
		return err
	}
	r.description = s
	return nil
}

// Copyright returns the copyright notice, or "" when absent.
func (r *Record) Copyright() string { return r.copyright }

// SetCopyright stores the copyright notice.
func (r *Record) SetCopyright(s string) error {
	if err := r.guard("SetCopyright"); err != nil {
		return err
	}
	r.copyright = s
	return nil
}

// Author returns the author field, or "" when absent.
func (r *Record) Author() string { return r.author }

// SetAuthor stores the author field.
func (r *Record) SetAuthor(s string) error {
	if err := r.guard("SetAuthor"); err != nil {
		return err
	}
	r.author = s
	return nil
}

// CreationTime returns the creation timestamp and whether one is set.
func (r *Record) CreationTime() (time.Time, bool) {
	if r.creationTime == nil {
		return time.Time{}, false
	}
	return *r.creationTime, true
}

// SetCreationTime stores the creation timestamp.
func (r *Record) SetCreationTime(t time.Time) error {
	if err := r.guard("SetCreationTime"); err != nil {
		return err
	}
	r.creationTime = &t
	return nil
}

// ModificationTime returns the modification timestamp and whether one is set.
func (r *Record) ModificationTime() (time.Time, bool) {
	if r.modificationTime == nil {
		return time.Time{}, false
	}
	return *r.modificationTime, true
}

// SetModificationTime stores the modification timestamp.
func (r *Record) SetModificationTime(t time.Time) error {
	if err := r.guard("SetModificationTime"); err != nil {
		return err
	}
	r.modificationTime = &t
	return nil
}

// BitsPerChannel returns the per-channel bit depths as a contiguous
// read-only view. Do not modify the returned slice.
func (r *Record) BitsPerChannel() []uint8 {
	return r.bitsPerChannel.View()
}

// SetBitsPerChannel replaces the per-channel bit depths. Up to four channels
// are stored inline with no allocation; longer layouts fall back to an
// exact-length buffer. The input is copied, never aliased.
func (r *Record) SetBitsPerChannel(depths []uint8) error {
	if err := r.guard("SetBitsPerChannel"); err != nil {
		return err
	}
	r.bitsPerChannel.Set(depths)
	return nil
}

// Custom returns the ancillary value for key and whether it exists.
func (r *Record) Custom(key string) (string, bool) {
	v, ok := r.custom[key]
	return v, ok
}

// SetCustom stores an ancillary key/value pair. An empty value removes the
// key. The ancillary map is not thread-safe; synchronize concurrent writers.
func (r *Record) SetCustom(key, value string) error {
	if err := r.guard("SetCustom"); err != nil {
		return err
	}
	if key == "" {
		return &InvalidArgumentError{Field: "custom key", Value: key, Reason: "must not be empty"}
	}
	if value == "" {
		delete(r.custom, key)
		return nil
	}
	if r.custom == nil {
		r.custom = make(map[string]string)
	}
	r.custom[key] = value
	return nil
}

// CustomLen returns the number of ancillary entries.
func (r *Record) CustomLen() int { return len(r.custom) }

// AllCustom returns an iterator over the ancillary key/value pairs.
//
// The iteration order is unspecified. The iterator is read-only.
func (r *Record) AllCustom() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for k, v := range r.custom {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Extension returns the format-specific extension, or nil when none is set.
func (r *Record) Extension() Extension { return r.ext }

// SetExtension attaches the format-specific extension.
func (r *Record) SetExtension(ext Extension) error {
	if err := r.guard("SetExtension"); err != nil {
		return err
	}
	r.ext = ext
	return nil
}

// LargeMetadataThreshold returns the byte-size cutoff for HasLargeMetadata.
func (r *Record) LargeMetadataThreshold() int { return r.threshold }

// SetLargeMetadataThreshold tunes the large-metadata cutoff for this record.
func (r *Record) SetLargeMetadataThreshold(bytes int) error {
	if err := r.guard("SetLargeMetadataThreshold"); err != nil {
		return err
	}
	if bytes <= 0 {
		return &InvalidArgumentError{Field: "threshold", Value: bytes, Reason: "must be positive"}
	}
	r.threshold = bytes
	return nil
}

// EstimatedMemoryUsage approximates the record's heap footprint in bytes:
// a base constant, plus each populated blob's length, plus populated text
// at 2 bytes per character with a per-string overhead, plus ancillary map
// entries, plus the extension's own estimate.
//
// The walk is proportional to populated fields and collection entries,
// never touches unpopulated fields, and never fails, including on a
// disposed record, which reports its cleared state.
func (r *Record) EstimatedMemoryUsage() int {
	size := recordBaseOverhead

	size += blobSize(r.exifBlob)
	size += blobSize(r.iccProfileBlob)

	size += textSize(r.xmpText)
	size += textSize(r.software)
	size += textSize(r.description)
	size += textSize(r.copyright)
	size += textSize(r.author)

	if r.creationTime != nil {
		size += timestampSize
	}
	if r.modificationTime != nil {
		size += timestampSize
	}

	if len(r.custom) > 0 {
		size += len(r.custom) * mapEntryOverhead
		for k, v := range r.custom {
			size += utf8.RuneCountInString(k) * textBytesPerChar
			size += utf8.RuneCountInString(v) * textBytesPerChar
		}
	}

	size += r.bitsPerChannel.estimatedSize(1)

	if r.ext != nil {
		size += r.ext.EstimatedSize()
	}

	return size
}

// HasLargeMetadata reports whether the estimated footprint strictly exceeds
// the configured threshold. A record exactly at the threshold is not large.
func (r *Record) HasLargeMetadata() bool {
	return r.EstimatedMemoryUsage() > r.threshold
}

// Clear resets every field to its default. Unlike Dispose, the record stays
// usable afterward; the threshold configuration survives.
func (r *Record) Clear() error {
	if err := r.guard("Clear"); err != nil {
		return err
	}
	r.clearFields()
	return nil
}

func (r *Record) clearFields() {
	r.exifBlob = nil
	r.iccProfileBlob = nil
	r.xmpText = ""
	r.software = ""
	r.description = ""
	r.copyright = ""
	r.author = ""
	r.creationTime = nil
	r.modificationTime = nil
	r.custom = nil
	r.bitsPerChannel.Reset()
	if r.ext != nil {
		r.ext.Clear()
		r.ext = nil
	}
	r.width = 0
	r.height = 0
	r.bitDepth = 0
}

// Dispose retires the record synchronously, clearing every blob, string,
// and collection. Exactly one caller performs the clearing; concurrent and
// repeated calls are no-ops that observe the cleared state.
func (r *Record) Dispose() {
	r.disposeOnce.Do(func() {
		r.clearFields()
		r.disposed.Store(true)
	})
}

// DisposeAsync retires the record cooperatively. Below the large-metadata
// threshold it behaves exactly like Dispose, with no yielding. Above it,
// clearing proceeds in discrete stages (binary blobs, then text, then each
// large collection, then the extension's own stages), yielding the
// processor between stages so that many concurrent large disposals do not
// monopolize one execution context.
//
// Disposal is not cancellable once started; the end state always equals
// Dispose's. Safe to call concurrently with itself or with Dispose: only
// the first caller performs work.
func (r *Record) DisposeAsync() {
	r.disposeOnce.Do(func() {
		// The threshold check runs inside the once so it never races with
		// a concurrent Dispose clearing the fields it walks.
		if !r.HasLargeMetadata() {
			r.clearFields()
			r.disposed.Store(true)
			return
		}

		stages := []func(){
			func() {
				r.exifBlob = nil
				r.iccProfileBlob = nil
			},
			func() {
				r.xmpText = ""
				r.software = ""
				r.description = ""
				r.copyright = ""
				r.author = ""
			},
			func() {
				r.custom = nil
			},
		}
		if r.ext != nil {
			stages = append(stages, r.ext.ClearStages()...)
		}
		stages = append(stages, func() {
			r.ext = nil
			r.creationTime = nil
			r.modificationTime = nil
			r.bitsPerChannel.Reset()
			r.width = 0
			r.height = 0
			r.bitDepth = 0
		})

		for i, stage := range stages {
			if i > 0 {
				runtime.Gosched()
			}
			stage()
		}
		r.disposed.Store(true)
	})
}

// Clone returns a deep copy: every mutable buffer and collection is copied,
// including the extension, so mutating either record afterward is invisible
// to the other. The clone starts undisposed with the same threshold.
func (r *Record) Clone() (*Record, error) {
	if err := r.guard("Clone"); err != nil {
		return nil, err
	}

	out := &Record{
		exifBlob:       copyBytes(r.exifBlob),
		iccProfileBlob: copyBytes(r.iccProfileBlob),
		xmpText:        r.xmpText,
		software:       r.software,
		description:    r.description,
		copyright:      r.copyright,
		author:         r.author,
		bitsPerChannel: r.bitsPerChannel.Clone(),
		width:          r.width,
		height:         r.height,
		bitDepth:       r.bitDepth,
		threshold:      r.threshold,
	}
	if r.creationTime != nil {
		t := *r.creationTime
		out.creationTime = &t
	}
	if r.modificationTime != nil {
		t := *r.modificationTime
		out.modificationTime = &t
	}
	if r.custom != nil {
		out.custom = make(map[string]string, len(r.custom))
		for k, v := range r.custom {
			out.custom[k] = v
		}
	}
	if r.ext != nil {
		out.ext = r.ext.CloneExtension()
	}
	return out, nil
}

func copyBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func blobSize(b []byte) int {
	if b == nil {
		return 0
	}
	return len(b) + sliceOverhead
}

func textSize(s string) int {
	if s == "" {
		return 0
	}
	return utf8.RuneCountInString(s)*textBytesPerChar + stringOverhead
}
