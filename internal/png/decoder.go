// Package png decodes and validates PNG headers and ancillary chunks.
//
// The decoder walks the chunk stream reading IHDR, PLTE, and the metadata
// chunks (tEXt, iTXt, eXIf, iCCP, tIME); IDAT payloads are skipped, never
// read. Structurally illegal values are preserved in the Record so the
// validator can report them.
package png

import (
	"bytes"
	"io"
	"time"

	"github.com/simonhull/imagemeta/internal/binary"
	"github.com/simonhull/imagemeta/internal/registry"
	"github.com/simonhull/imagemeta/internal/types"
)

const (
	signatureSize = 8

	// maxChunkRead caps how much of any single metadata chunk is loaded.
	// Pixel chunks are skipped by offset arithmetic and never read.
	maxChunkRead = 16 * 1024 * 1024
)

// xmpKeyword is the iTXt keyword Adobe defined for embedded XMP packets.
const xmpKeyword = "XML:com.adobe.xmp"

// decoder implements registry.HeaderDecoder for PNG files.
type decoder struct{}

func init() {
	registry.Register(types.FormatPNG, decoder{})
	registry.RegisterValidator(types.FormatPNG, validator{})
}

// Decode populates a Record from a PNG chunk stream.
func (decoder) Decode(r io.ReaderAt, size int64, path string) (*types.Record, error) {
	sr := binary.NewSafeReader(r, size, path)

	sig := make([]byte, signatureSize)
	if err := sr.ReadAt(sig, 0, "PNG signature"); err != nil {
		return nil, &types.CorruptedFileError{Path: path, Offset: 0, Reason: "truncated signature"}
	}

	ext := &Chunks{
		SignatureOK:  bytes.Equal(sig, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}),
		TruncatedEnd: true,
	}
	rec := types.NewRecord()
	if err := rec.SetExtension(ext); err != nil {
		return nil, err
	}

	offset := int64(signatureSize)
	first := true
	for offset+8 <= size {
		length, err := binary.Read[uint32](sr, offset, binary.BigEndian, "chunk length")
		if err != nil {
			break
		}
		ctype := make([]byte, 4)
		if err := sr.ReadAt(ctype, offset+4, "chunk type"); err != nil {
			break
		}
		name := string(ctype)
		dataOffset := offset + 8

		if first {
			ext.IHDRFirst = name == "IHDR"
			first = false
		}

		switch name {
		case "IHDR":
			ext.SawIHDR = true
			ext.IHDRLength = length
			if err := decodeIHDR(sr, dataOffset, length, rec, ext); err != nil {
				return nil, err
			}
		case "PLTE":
			// The raw length is kept for the validator; the stored palette
			// is rounded down to whole entries.
			ext.PLTELength = length
			if data := readChunk(sr, dataOffset, length, "PLTE chunk"); data != nil {
				trimmed := data[:len(data)-len(data)%table.paletteEntrySize]
				if err := ext.SetPalette(trimmed); err != nil {
					return nil, err
				}
			}
		case "tEXt":
			if data := readChunk(sr, dataOffset, length, "tEXt chunk"); data != nil {
				applyText(rec, data)
			}
		case "iTXt":
			if data := readChunk(sr, dataOffset, length, "iTXt chunk"); data != nil {
				applyInternationalText(rec, data)
			}
		case "eXIf":
			if data := readChunk(sr, dataOffset, length, "eXIf chunk"); data != nil {
				if err := rec.SetExifBlob(data); err != nil {
					return nil, err
				}
			}
		case "iCCP":
			if data := readChunk(sr, dataOffset, length, "iCCP chunk"); data != nil {
				if err := rec.SetIccProfileBlob(data); err != nil {
					return nil, err
				}
			}
		case "tIME":
			if data := readChunk(sr, dataOffset, length, "tIME chunk"); len(data) >= 7 {
				t := time.Date(
					int(uint16(data[0])<<8|uint16(data[1])),
					time.Month(data[2]), int(data[3]),
					int(data[4]), int(data[5]), int(data[6]),
					0, time.UTC,
				)
				if err := rec.SetModificationTime(t); err != nil {
					return nil, err
				}
			}
		case "IEND":
			ext.TruncatedEnd = false
			return rec, nil
		}

		// length + type + data + CRC
		offset = dataOffset + int64(length) + 4
	}

	if !ext.SawIHDR {
		return nil, &types.CorruptedFileError{Path: path, Offset: signatureSize, Reason: "no IHDR chunk"}
	}
	return rec, nil
}

// decodeIHDR mirrors the image header into the record and extension.
func decodeIHDR(sr *binary.SafeReader, off int64, length uint32, rec *types.Record, ext *Chunks) error {
	if length < 13 {
		return nil // validator flags the length
	}
	data := make([]byte, 13)
	if err := sr.ReadAt(data, off, "IHDR fields"); err != nil {
		return &types.CorruptedFileError{Path: sr.Path(), Offset: off, Reason: "truncated IHDR"}
	}

	ext.Width = uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3])
	ext.Height = uint32(data[4])<<24 | uint32(data[5])<<16 | uint32(data[6])<<8 | uint32(data[7])
	ext.BitDepth = data[8]
	ext.ColorType = data[9]
	ext.CompressionMethod = data[10]
	ext.FilterMethod = data[11]
	ext.InterlaceMethod = data[12]

	if err := rec.SetWidth(int(ext.Width)); err != nil {
		return err
	}
	if err := rec.SetHeight(int(ext.Height)); err != nil {
		return err
	}
	if err := rec.SetBitDepth(int(ext.BitDepth)); err != nil {
		return err
	}

	if channels := channelCounts[ext.ColorType]; channels > 0 {
		depths := make([]uint8, channels)
		for i := range depths {
			depths[i] = ext.BitDepth
		}
		if err := rec.SetBitsPerChannel(depths); err != nil {
			return err
		}
	}
	return nil
}

// readChunk loads one metadata chunk's payload, or nil when it is absent,
// oversized, or unreadable.
func readChunk(sr *binary.SafeReader, off int64, length uint32, what string) []byte {
	if length == 0 || length > maxChunkRead {
		return nil
	}
	data := make([]byte, length)
	if err := sr.ReadAt(data, off, what); err != nil {
		return nil
	}
	return data
}

// textKeywordSetters maps the registered tEXt keywords onto record fields.
var textKeywordSetters = map[string]func(*types.Record, string) error{
	"Software":    (*types.Record).SetSoftware,
	"Description": (*types.Record).SetDescription,
	"Copyright":   (*types.Record).SetCopyright,
	"Author":      (*types.Record).SetAuthor,
}

// applyText handles a tEXt chunk: keyword, NUL, Latin-1 text. Registered
// keywords land in the record's standard fields, everything else in the
// ancillary map.
func applyText(rec *types.Record, data []byte) {
	nul := bytes.IndexByte(data, 0)
	if nul <= 0 {
		return
	}
	keyword := string(data[:nul])
	text := string(data[nul+1:])

	if set, ok := textKeywordSetters[keyword]; ok {
		_ = set(rec, text)
		return
	}
	_ = rec.SetCustom(keyword, text)
}

// applyInternationalText handles an iTXt chunk. Only uncompressed payloads
// are used; the XMP keyword routes to the record's XMP field.
func applyInternationalText(rec *types.Record, data []byte) {
	nul := bytes.IndexByte(data, 0)
	if nul <= 0 || nul+2 >= len(data) {
		return
	}
	keyword := string(data[:nul])
	compressed := data[nul+1] != 0

	// Skip compression method, language tag, and translated keyword.
	rest := data[nul+3:]
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		rest = rest[i+1:]
	}
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		rest = rest[i+1:]
	}
	if compressed {
		return
	}

	if keyword == xmpKeyword {
		_ = rec.SetXmpText(string(rest))
		return
	}
	if set, ok := textKeywordSetters[keyword]; ok {
		_ = set(rec, string(rest))
		return
	}
	_ = rec.SetCustom(keyword, string(rest))
}
