// Package bmp decodes and validates Windows bitmap headers.
//
// Only the file header, DIB header, channel masks, and palette region are
// read; pixel data is never touched. Structurally illegal values are
// preserved in the Record so the validator can report them; the decoder
// fails only on files too damaged to populate a Record at all.
package bmp

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/simonhull/imagemeta/internal/binary"
	"github.com/simonhull/imagemeta/internal/registry"
	"github.com/simonhull/imagemeta/internal/types"
)

// Header layout offsets.
const (
	fileHeaderSize = 14
	coreHeaderSize = 12
	infoHeaderSize = 40

	// maxPaletteRead caps the palette region read. Legal palettes are at
	// most 1024 bytes; the slack lets the validator see (and flag) an
	// oversized one instead of the decoder truncating it to legality.
	maxPaletteRead = 64 * 1024
)

// decoder implements registry.HeaderDecoder for BMP files.
type decoder struct{}

func init() {
	registry.Register(types.FormatBMP, decoder{})
	registry.RegisterValidator(types.FormatBMP, validator{})
}

// Decode populates a Record from a BMP header.
func (decoder) Decode(r io.ReaderAt, size int64, path string) (*types.Record, error) {
	sr := binary.NewSafeReader(r, size, path)

	fileHeader := make([]byte, fileHeaderSize)
	if err := sr.ReadAt(fileHeader, 0, "BMP file header"); err != nil {
		return nil, &types.CorruptedFileError{Path: path, Offset: 0, Reason: "truncated file header"}
	}

	hdr := &Header{}
	hdr.Signature[0] = fileHeader[0]
	hdr.Signature[1] = fileHeader[1]

	rd := binary.NewReader(sr, 2, binary.LittleEndian)
	hdr.FileSize, _ = binary.ReadValue[uint32](rd, "file size")
	rd.Skip(4) // two reserved words
	hdr.DataOffset, _ = binary.ReadValue[uint32](rd, "pixel data offset")

	dibSize, err := binary.Read[uint32](sr, fileHeaderSize, binary.LittleEndian, "DIB header size")
	if err != nil {
		return nil, &types.CorruptedFileError{Path: path, Offset: fileHeaderSize, Reason: "truncated DIB header"}
	}
	hdr.HeaderSize = dibSize

	switch {
	case dibSize == coreHeaderSize:
		if err := decodeCoreHeader(sr, hdr); err != nil {
			return nil, err
		}
	case dibSize >= infoHeaderSize:
		if err := decodeInfoHeader(sr, hdr, size); err != nil {
			return nil, err
		}
	default:
		// Unknown DIB size: the field layout is unknowable, so only the
		// file-header fields are populated. The validator flags the size.
	}

	return buildRecord(hdr)
}

// decodeCoreHeader reads the legacy 12-byte BITMAPCOREHEADER. Core headers
// carry 3-byte palette entries, which this package does not model; the
// palette region is left unread. Core dimensions are unsigned 16-bit
// values, so no top-down encoding exists here.
func decodeCoreHeader(sr *binary.SafeReader, hdr *Header) error {
	rd := binary.NewReader(sr, fileHeaderSize+4, binary.LittleEndian)

	w, err := binary.ReadValue[uint16](rd, "core header width")
	if err != nil {
		return &types.CorruptedFileError{Path: sr.Path(), Offset: fileHeaderSize, Reason: "truncated core header"}
	}
	h, _ := binary.ReadValue[uint16](rd, "core header height")
	hdr.Width = int32(w)
	hdr.Height = int32(h)
	hdr.Planes, _ = binary.ReadValue[uint16](rd, "plane count")
	hdr.BitsPerPixel, _ = binary.ReadValue[uint16](rd, "bits per pixel")
	return nil
}

// decodeInfoHeader reads BITMAPINFOHEADER and its mask/palette extensions.
func decodeInfoHeader(sr *binary.SafeReader, hdr *Header, size int64) error {
	rd := binary.NewReader(sr, fileHeaderSize+4, binary.LittleEndian)

	w, err := binary.ReadValue[uint32](rd, "header width")
	if err != nil {
		return &types.CorruptedFileError{Path: sr.Path(), Offset: fileHeaderSize, Reason: "truncated DIB header"}
	}
	h, _ := binary.ReadValue[uint32](rd, "header height")
	hdr.Width = int32(w)
	hdr.Height = int32(h)
	if hdr.Height < 0 {
		hdr.TopDown = true
	}
	hdr.Planes, _ = binary.ReadValue[uint16](rd, "plane count")
	hdr.BitsPerPixel, _ = binary.ReadValue[uint16](rd, "bits per pixel")
	hdr.Compression, _ = binary.ReadValue[uint32](rd, "compression mode")
	hdr.ImageSize, _ = binary.ReadValue[uint32](rd, "image size")
	xres, _ := binary.ReadValue[uint32](rd, "horizontal resolution")
	yres, _ := binary.ReadValue[uint32](rd, "vertical resolution")
	hdr.XPelsPerMeter = int32(xres)
	hdr.YPelsPerMeter = int32(yres)
	hdr.ColorsUsed, _ = binary.ReadValue[uint32](rd, "colors used")
	hdr.ColorsImportant, _ = binary.ReadValue[uint32](rd, "important colors")

	headerEnd := int64(fileHeaderSize) + int64(hdr.HeaderSize)

	// Channel masks live inside V2+ headers, or immediately after a
	// 40-byte header when the compression is BI_BITFIELDS.
	maskOffset := int64(-1)
	switch {
	case hdr.HeaderSize >= 52:
		maskOffset = fileHeaderSize + 40
	case hdr.Compression == CompressionBitfields:
		maskOffset = headerEnd
		headerEnd += 12
	}
	if maskOffset >= 0 {
		mr := binary.NewReader(sr, maskOffset, binary.LittleEndian)
		red, err := binary.ReadValue[uint32](mr, "red channel mask")
		if err == nil {
			hdr.RedMask = red
			hdr.GreenMask, _ = binary.ReadValue[uint32](mr, "green channel mask")
			hdr.BlueMask, _ = binary.ReadValue[uint32](mr, "blue channel mask")
			if hdr.HeaderSize >= 56 {
				hdr.AlphaMask, _ = binary.Read[uint32](sr, fileHeaderSize+52, binary.LittleEndian, "alpha channel mask")
			}
			// V4/V5 headers carry the mask fields even for uncompressed
			// images, where they are all zero and unused.
			hdr.HasMasks = hdr.Compression == CompressionBitfields ||
				hdr.RedMask|hdr.GreenMask|hdr.BlueMask|hdr.AlphaMask != 0
		}
	}

	// The palette region sits between the header end and the pixel data
	// offset. Read it raw, rounded down to whole entries; the validator
	// judges whether its size is legal for the declared depth.
	if paletteLen := int64(hdr.DataOffset) - headerEnd; paletteLen > 0 && headerEnd+paletteLen <= size {
		if paletteLen > maxPaletteRead {
			paletteLen = maxPaletteRead
		}
		paletteLen -= paletteLen % int64(table.paletteEntrySize)
		if paletteLen > 0 {
			buf := make([]byte, paletteLen)
			if err := sr.ReadAt(buf, headerEnd, "color palette"); err == nil {
				if err := hdr.SetPalette(buf); err != nil {
					return fmt.Errorf("store palette: %w", err)
				}
			}
		}
	}
	return nil
}

// buildRecord mirrors the header fields into a fresh Record.
func buildRecord(hdr *Header) (*types.Record, error) {
	rec := types.NewRecord()

	width := int(hdr.Width)
	if width < 0 {
		// Negative widths are illegal; the record holds zero and the
		// mirror check surfaces the drift.
		width = 0
	}
	height := int(hdr.Height)
	if height < 0 {
		height = -height // top-down bitmap
	}

	if err := rec.SetWidth(width); err != nil {
		return nil, err
	}
	if err := rec.SetHeight(height); err != nil {
		return nil, err
	}
	if err := rec.SetBitDepth(int(hdr.BitsPerPixel)); err != nil {
		return nil, err
	}
	if err := rec.SetBitsPerChannel(channelDepths(hdr)); err != nil {
		return nil, err
	}
	if err := rec.SetExtension(hdr); err != nil {
		return nil, err
	}
	return rec, nil
}

// channelDepths derives per-channel bit depths from the declared depth and,
// for masked images, from the mask widths themselves.
func channelDepths(hdr *Header) []uint8 {
	if hdr.HasMasks {
		depths := []uint8{
			uint8(bits.OnesCount32(hdr.RedMask)),
			uint8(bits.OnesCount32(hdr.GreenMask)),
			uint8(bits.OnesCount32(hdr.BlueMask)),
		}
		if hdr.AlphaMask != 0 {
			depths = append(depths, uint8(bits.OnesCount32(hdr.AlphaMask)))
		}
		return depths
	}

	switch hdr.BitsPerPixel {
	case 1, 4, 8:
		return []uint8{uint8(hdr.BitsPerPixel)}
	case 16:
		return []uint8{5, 5, 5}
	case 24:
		return []uint8{8, 8, 8}
	case 32:
		return []uint8{8, 8, 8, 8}
	default:
		return nil
	}
}
