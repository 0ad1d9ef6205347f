// Package tiff decodes and validates TIFF headers.
//
// A TIFF file's metadata lives in image file directories (IFDs) of 12-byte
// entries; the decoder walks the first IFD only, which describes the first
// image. Both byte orders are supported. Strip offsets and pixel data are
// never read.
package tiff

import (
	"io"
	"strings"
	"time"

	"github.com/simonhull/imagemeta/internal/binary"
	"github.com/simonhull/imagemeta/internal/registry"
	"github.com/simonhull/imagemeta/internal/types"
)

const (
	ifdEntryLen = 12

	// maxValueRead caps pointed-to value payloads (XMP packets, ICC
	// profiles, long strings).
	maxValueRead = 16 * 1024 * 1024

	// dateTimeLayout is the TIFF DateTime format (field 306).
	dateTimeLayout = "2006:01:02 15:04:05"
)

// decoder implements registry.HeaderDecoder for TIFF files.
type decoder struct{}

func init() {
	registry.Register(types.FormatTIFF, decoder{})
	registry.RegisterValidator(types.FormatTIFF, validator{})
}

// Decode populates a Record from the first IFD of a TIFF file.
func (decoder) Decode(r io.ReaderAt, size int64, path string) (*types.Record, error) {
	sr := binary.NewSafeReader(r, size, path)

	head := make([]byte, 8)
	if err := sr.ReadAt(head, 0, "TIFF header"); err != nil {
		return nil, &types.CorruptedFileError{Path: path, Offset: 0, Reason: "truncated header"}
	}

	ext := &Directory{BigEndian: head[0] == 'M'}
	order := binary.LittleEndian
	if ext.BigEndian {
		order = binary.BigEndian
	}

	rd := binary.NewReader(sr, 2, order)
	ext.Magic, _ = binary.ReadValue[uint16](rd, "TIFF magic number")
	ext.FirstIFD, _ = binary.ReadValue[uint32](rd, "first IFD offset")

	rec := types.NewRecord()
	if err := rec.SetExtension(ext); err != nil {
		return nil, err
	}

	if int64(ext.FirstIFD)+2 > size {
		// Unreachable IFD: return the header-only record and let the
		// validator report the offset.
		return rec, nil
	}

	ird := binary.NewReader(sr, int64(ext.FirstIFD), order)
	count, err := binary.ReadValue[uint16](ird, "IFD entry count")
	if err != nil {
		return rec, nil
	}
	ext.EntryCount = count
	ext.Entries = make(map[uint16]Entry, count)

	for i := 0; i < int(count); i++ {
		entryOff := int64(ext.FirstIFD) + 2 + int64(i)*ifdEntryLen
		er := binary.NewReader(sr, entryOff, order)
		tag, err := binary.ReadValue[uint16](er, "IFD entry tag")
		if err != nil {
			break
		}
		dtype, _ := binary.ReadValue[uint16](er, "IFD entry type")
		vcount, _ := binary.ReadValue[uint32](er, "IFD entry count")
		ext.Entries[tag] = Entry{Type: dtype, Count: vcount}

		if err := applyEntry(sr, order, er, rec, ext, tag, dtype, vcount); err != nil {
			return nil, err
		}
	}

	return buildRecord(rec, ext)
}

// applyEntry routes one IFD entry's value into the record or extension.
// er is positioned at the entry's 4-byte value/offset field.
func applyEntry(sr *binary.SafeReader, order binary.ByteOrder, er *binary.Reader,
	rec *types.Record, ext *Directory, tag, dtype uint16, count uint32) error {

	switch tag {
	case tagImageWidth:
		ext.Width = readScalar(sr, order, er, dtype)
	case tagImageLength:
		ext.Height = readScalar(sr, order, er, dtype)
	case tagCompression:
		ext.Compression = uint16(readScalar(sr, order, er, dtype))
	case tagPhotometric:
		ext.Photometric = uint16(readScalar(sr, order, er, dtype))
	case tagSamplesPerPixel:
		ext.SamplesPerPixel = uint16(readScalar(sr, order, er, dtype))
	case tagBitsPerSample:
		ext.BitsPerSample = readShorts(sr, order, er, count)
	case tagSoftware:
		return rec.SetSoftware(readASCII(sr, order, er, dtype, count))
	case tagImageDescription:
		return rec.SetDescription(readASCII(sr, order, er, dtype, count))
	case tagArtist:
		return rec.SetAuthor(readASCII(sr, order, er, dtype, count))
	case tagCopyright:
		return rec.SetCopyright(readASCII(sr, order, er, dtype, count))
	case tagDateTime:
		if s := readASCII(sr, order, er, dtype, count); s != "" {
			if t, err := time.Parse(dateTimeLayout, s); err == nil {
				return rec.SetModificationTime(t)
			}
		}
	case tagXMP:
		if data := readBytes(sr, order, er, dtype, count); data != nil {
			return rec.SetXmpText(string(data))
		}
	case tagICCProfile:
		if data := readBytes(sr, order, er, dtype, count); data != nil {
			return rec.SetIccProfileBlob(data)
		}
	}
	return nil
}

// readScalar reads a single SHORT or LONG value from the entry's inline
// value field.
func readScalar(sr *binary.SafeReader, order binary.ByteOrder, er *binary.Reader, dtype uint16) uint32 {
	if dtype == dtShort {
		v, _ := binary.Read[uint16](sr, er.Offset(), order, "entry value")
		return uint32(v)
	}
	v, _ := binary.Read[uint32](sr, er.Offset(), order, "entry value")
	return v
}

// readShorts reads count SHORT values, inline when they fit the 4-byte
// value field, via the value offset otherwise.
func readShorts(sr *binary.SafeReader, order binary.ByteOrder, er *binary.Reader, count uint32) []uint16 {
	if count == 0 || count > 1024 {
		return nil
	}
	base := er.Offset()
	if count > 2 {
		off, err := binary.Read[uint32](sr, base, order, "entry value offset")
		if err != nil {
			return nil
		}
		base = int64(off)
	}
	out := make([]uint16, count)
	for i := range out {
		v, err := binary.Read[uint16](sr, base+int64(i)*2, order, "bits per sample value")
		if err != nil {
			return nil
		}
		out[i] = v
	}
	return out
}

// readBytes reads a BYTE/UNDEFINED/ASCII payload, inline or pointed-to.
func readBytes(sr *binary.SafeReader, order binary.ByteOrder, er *binary.Reader, dtype uint16, count uint32) []byte {
	unit, ok := typeSizes[dtype]
	if !ok || count == 0 {
		return nil
	}
	length := int64(unit) * int64(count)
	if length > maxValueRead {
		return nil
	}
	base := er.Offset()
	if length > 4 {
		off, err := binary.Read[uint32](sr, base, order, "entry value offset")
		if err != nil {
			return nil
		}
		base = int64(off)
	}
	data := make([]byte, length)
	if err := sr.ReadAt(data, base, "entry payload"); err != nil {
		return nil
	}
	return data
}

// readASCII reads a NUL-terminated ASCII value.
func readASCII(sr *binary.SafeReader, order binary.ByteOrder, er *binary.Reader, dtype uint16, count uint32) string {
	data := readBytes(sr, order, er, dtype, count)
	return strings.TrimRight(string(data), "\x00")
}

// buildRecord mirrors the directory fields into the record. The record's
// bit depth is the total bits per pixel: the sum over samples.
func buildRecord(rec *types.Record, ext *Directory) (*types.Record, error) {
	if err := rec.SetWidth(int(ext.Width)); err != nil {
		return nil, err
	}
	if err := rec.SetHeight(int(ext.Height)); err != nil {
		return nil, err
	}

	total := 0
	depths := make([]uint8, 0, len(ext.BitsPerSample))
	for _, b := range ext.BitsPerSample {
		total += int(b)
		depths = append(depths, uint8(b))
	}
	if total == 0 && ext.Width != 0 {
		// BitsPerSample defaults to 1 when absent (bilevel images).
		total = 1
		depths = []uint8{1}
	}
	if err := rec.SetBitDepth(total); err != nil {
		return nil, err
	}
	if err := rec.SetBitsPerChannel(depths); err != nil {
		return nil, err
	}
	return rec, nil
}
