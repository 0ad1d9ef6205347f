// Package webp decodes and validates WebP (RIFF) headers.
//
// The decoder walks the RIFF chunk list reading the image header chunk
// (VP8, VP8L, or VP8X) and the metadata chunks (EXIF, XMP, ICCP);
// compressed image payloads are skipped. Structurally illegal values are
// preserved in the Record so the validator can report them.
package webp

import (
	"io"

	"github.com/simonhull/imagemeta/internal/binary"
	"github.com/simonhull/imagemeta/internal/registry"
	"github.com/simonhull/imagemeta/internal/types"
)

const (
	riffHeaderSize = 12

	// maxChunkRead caps metadata chunk payload reads.
	maxChunkRead = 16 * 1024 * 1024

	// vp8lSignature is the fixed first byte of a VP8L payload.
	vp8lSignature = 0x2F
)

// VP8X feature flag bits (byte 0 of the VP8X payload).
const (
	flagICC   = 1 << 5
	flagAlpha = 1 << 4
	flagEXIF  = 1 << 3
	flagXMP   = 1 << 2
	flagAnim  = 1 << 1
)

// decoder implements registry.HeaderDecoder for WebP files.
type decoder struct{}

func init() {
	registry.Register(types.FormatWebP, decoder{})
	registry.RegisterValidator(types.FormatWebP, validator{})
}

// Decode populates a Record from a WebP RIFF container.
func (decoder) Decode(r io.ReaderAt, size int64, path string) (*types.Record, error) {
	sr := binary.NewSafeReader(r, size, path)

	head := make([]byte, riffHeaderSize)
	if err := sr.ReadAt(head, 0, "RIFF header"); err != nil {
		return nil, &types.CorruptedFileError{Path: path, Offset: 0, Reason: "truncated RIFF header"}
	}

	ext := &Chunks{
		FileSize: size,
		FormOK:   string(head[0:4]) == "RIFF" && string(head[8:12]) == "WEBP",
		Sizes:    make(map[string]uint32),
	}
	riffSize, _ := binary.Read[uint32](sr, 4, binary.LittleEndian, "RIFF size")
	ext.RiffSize = riffSize

	rec := types.NewRecord()
	if err := rec.SetExtension(ext); err != nil {
		return nil, err
	}

	offset := int64(riffHeaderSize)
	for offset+8 <= size {
		fourcc := make([]byte, 4)
		if err := sr.ReadAt(fourcc, offset, "chunk FourCC"); err != nil {
			break
		}
		length, err := binary.Read[uint32](sr, offset+4, binary.LittleEndian, "chunk size")
		if err != nil {
			break
		}
		name := string(fourcc)
		dataOffset := offset + 8

		if ext.FirstChunk == "" {
			ext.FirstChunk = name
		}
		ext.Sizes[name] += length

		switch name {
		case "VP8 ":
			decodeVP8(sr, dataOffset, ext)
		case "VP8L":
			decodeVP8L(sr, dataOffset, ext)
		case "VP8X":
			decodeVP8X(sr, dataOffset, ext)
		case "EXIF":
			if data := readChunk(sr, dataOffset, length, "EXIF chunk"); data != nil {
				if err := rec.SetExifBlob(data); err != nil {
					return nil, err
				}
			}
		case "XMP ":
			if data := readChunk(sr, dataOffset, length, "XMP chunk"); data != nil {
				if err := rec.SetXmpText(string(data)); err != nil {
					return nil, err
				}
			}
		case "ICCP":
			if data := readChunk(sr, dataOffset, length, "ICCP chunk"); data != nil {
				if err := rec.SetIccProfileBlob(data); err != nil {
					return nil, err
				}
			}
		}

		// Chunks are padded to even sizes.
		offset = dataOffset + int64(length) + int64(length&1)
	}

	return buildRecord(rec, ext)
}

// decodeVP8 reads the dimensions from a lossy frame header: a 3-byte frame
// tag, the 0x9D 0x01 0x2A start code, then 14-bit width and height.
func decodeVP8(sr *binary.SafeReader, off int64, ext *Chunks) {
	if ext.Width != 0 {
		return // VP8X already set the canvas size
	}
	hdr := make([]byte, 10)
	if err := sr.ReadAt(hdr, off, "VP8 frame header"); err != nil {
		return
	}
	if hdr[3] != 0x9D || hdr[4] != 0x01 || hdr[5] != 0x2A {
		return
	}
	ext.Width = uint32(hdr[6]) | uint32(hdr[7]&0x3F)<<8
	ext.Height = uint32(hdr[8]) | uint32(hdr[9]&0x3F)<<8
}

// decodeVP8L reads the dimensions from a lossless header: the signature
// byte, then 14-bit width-1 and height-1 packed little-endian.
func decodeVP8L(sr *binary.SafeReader, off int64, ext *Chunks) {
	hdr := make([]byte, 5)
	if err := sr.ReadAt(hdr, off, "VP8L header"); err != nil {
		return
	}
	if hdr[0] != vp8lSignature {
		return
	}
	bits := uint32(hdr[1]) | uint32(hdr[2])<<8 | uint32(hdr[3])<<16 | uint32(hdr[4])<<24
	if ext.Width == 0 {
		ext.Width = (bits & 0x3FFF) + 1
		ext.Height = ((bits >> 14) & 0x3FFF) + 1
	}
	ext.FlagAlpha = ext.FlagAlpha || (bits>>28)&1 == 1
}

// decodeVP8X reads the extended header: a flag byte, three reserved bytes,
// then 24-bit canvas width-1 and height-1.
func decodeVP8X(sr *binary.SafeReader, off int64, ext *Chunks) {
	hdr := make([]byte, 10)
	if err := sr.ReadAt(hdr, off, "VP8X header"); err != nil {
		return
	}
	ext.HasVP8X = true
	flags := hdr[0]
	ext.FlagICC = flags&flagICC != 0
	ext.FlagAlpha = flags&flagAlpha != 0
	ext.FlagEXIF = flags&flagEXIF != 0
	ext.FlagXMP = flags&flagXMP != 0
	ext.FlagAnim = flags&flagAnim != 0
	ext.FlagUnused = flags&^uint8(flagICC|flagAlpha|flagEXIF|flagXMP|flagAnim) != 0

	ext.Width = (uint32(hdr[4]) | uint32(hdr[5])<<8 | uint32(hdr[6])<<16) + 1
	ext.Height = (uint32(hdr[7]) | uint32(hdr[8])<<8 | uint32(hdr[9])<<16) + 1
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

// buildRecord mirrors the canvas facts into the record. WebP pixels are
// 8 bits per channel; alpha adds a fourth channel.
func buildRecord(rec *types.Record, ext *Chunks) (*types.Record, error) {
	if err := rec.SetWidth(int(ext.Width)); err != nil {
		return nil, err
	}
	if err := rec.SetHeight(int(ext.Height)); err != nil {
		return nil, err
	}

	depths := []uint8{8, 8, 8}
	if ext.FlagAlpha || ext.Sizes["ALPH"] > 0 {
		depths = append(depths, 8)
	}
	total := 0
	for _, d := range depths {
		total += int(d)
	}
	if err := rec.SetBitDepth(total); err != nil {
		return nil, err
	}
	if err := rec.SetBitsPerChannel(depths); err != nil {
		return nil, err
	}
	return rec, nil
}
