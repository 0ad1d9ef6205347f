package png

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/simonhull/imagemeta/internal/types"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// chunk appends one chunk with a zeroed CRC; the decoder never checks CRCs.
func chunk(buf *bytes.Buffer, name string, data []byte) {
	binary.Write(buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(name)
	buf.Write(data)
	buf.Write([]byte{0, 0, 0, 0})
}

// ihdr builds a 13-byte IHDR payload.
func ihdr(width, height uint32, depth, colorType uint8) []byte {
	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data[0:], width)
	binary.BigEndian.PutUint32(data[4:], height)
	data[8] = depth
	data[9] = colorType
	return data
}

// buildPNG assembles a signature, an IHDR, the given extra chunks, and IEND.
func buildPNG(hdr []byte, extra ...func(*bytes.Buffer)) []byte {
	var buf bytes.Buffer
	buf.Write(pngSignature)
	chunk(&buf, "IHDR", hdr)
	for _, add := range extra {
		add(&buf)
	}
	chunk(&buf, "IEND", nil)
	return buf.Bytes()
}

func decode(t *testing.T, data []byte) *types.Record {
	t.Helper()
	rec, err := decoder{}.Decode(bytes.NewReader(data), int64(len(data)), "test.png")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return rec
}

func TestDecodeIHDR(t *testing.T) {
	rec := decode(t, buildPNG(ihdr(800, 600, 8, ColorTruecolor)))

	if rec.Width() != 800 || rec.Height() != 600 {
		t.Errorf("dimensions = %dx%d, want 800x600", rec.Width(), rec.Height())
	}
	if rec.BitDepth() != 8 {
		t.Errorf("BitDepth() = %d, want 8", rec.BitDepth())
	}
	if diff := cmp.Diff([]uint8{8, 8, 8}, rec.BitsPerChannel()); diff != "" {
		t.Errorf("channel depths mismatch:\n%s", diff)
	}

	ext, ok := rec.Extension().(*Chunks)
	if !ok {
		t.Fatal("record should carry a *Chunks extension")
	}
	if !ext.SignatureOK || !ext.SawIHDR || !ext.IHDRFirst {
		t.Errorf("structural flags: sig=%v ihdr=%v first=%v", ext.SignatureOK, ext.SawIHDR, ext.IHDRFirst)
	}
	if ext.TruncatedEnd {
		t.Error("a file ending in IEND should not be marked truncated")
	}
}

func TestDecodeChannelLayouts(t *testing.T) {
	tests := []struct {
		name      string
		colorType uint8
		depth     uint8
		want      []uint8
	}{
		{"grayscale", ColorGrayscale, 16, []uint8{16}},
		{"indexed", ColorIndexed, 4, []uint8{4}},
		{"grayscale alpha", ColorGrayscaleAlpha, 8, []uint8{8, 8}},
		{"truecolor alpha", ColorTruecolorAlpha, 16, []uint8{16, 16, 16, 16}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := decode(t, buildPNG(ihdr(1, 1, tc.depth, tc.colorType)))
			if diff := cmp.Diff(tc.want, rec.BitsPerChannel()); diff != "" {
				t.Errorf("channel depths mismatch:\n%s", diff)
			}
		})
	}
}

func TestDecodePalette(t *testing.T) {
	palette := make([]byte, 16*3)
	for i := range palette {
		palette[i] = byte(i)
	}
	data := buildPNG(ihdr(4, 4, 4, ColorIndexed), func(b *bytes.Buffer) {
		chunk(b, "PLTE", palette)
	})

	rec := decode(t, data)
	ext := rec.Extension().(*Chunks)
	if diff := cmp.Diff(palette, ext.Palette()); diff != "" {
		t.Errorf("palette mismatch:\n%s", diff)
	}
	if ext.PLTELength != uint32(len(palette)) {
		t.Errorf("PLTELength = %d, want %d", ext.PLTELength, len(palette))
	}
}

func TestDecodeRaggedPalette(t *testing.T) {
	// A PLTE that is not a whole number of entries is stored rounded down,
	// but the raw length survives so the validator can flag it.
	data := buildPNG(ihdr(4, 4, 4, ColorIndexed), func(b *bytes.Buffer) {
		chunk(b, "PLTE", make([]byte, 7))
	})

	rec := decode(t, data)
	ext := rec.Extension().(*Chunks)
	if len(ext.Palette()) != 6 {
		t.Errorf("stored palette is %d bytes, want 6", len(ext.Palette()))
	}
	if ext.PLTELength != 7 {
		t.Errorf("PLTELength = %d, want the raw 7", ext.PLTELength)
	}

	res := validator{}.Validate(rec)
	if got := countMentioning(res.Errors, "not a multiple"); got != 1 {
		t.Errorf("expected one ragged-length error, got:\n%s", res)
	}
}

func TestDecodeTextChunks(t *testing.T) {
	data := buildPNG(ihdr(1, 1, 8, ColorGrayscale),
		func(b *bytes.Buffer) { chunk(b, "tEXt", []byte("Software\x00imagemeta")) },
		func(b *bytes.Buffer) { chunk(b, "tEXt", []byte("Author\x00simon")) },
		func(b *bytes.Buffer) { chunk(b, "tEXt", []byte("Comment\x00hello world")) },
	)

	rec := decode(t, data)
	if got := rec.Software(); got != "imagemeta" {
		t.Errorf("Software() = %q", got)
	}
	if got := rec.Author(); got != "simon" {
		t.Errorf("Author() = %q", got)
	}
	// Unregistered keywords land in the ancillary map.
	if got, ok := rec.Custom("Comment"); !ok || got != "hello world" {
		t.Errorf("Custom(Comment) = %q, %v", got, ok)
	}
}

func TestDecodeXMP(t *testing.T) {
	packet := "<x:xmpmeta xmlns:x=\"adobe:ns:meta/\"/>"
	// iTXt: keyword NUL compression-flag compression-method language NUL
	// translated-keyword NUL text
	payload := []byte("XML:com.adobe.xmp\x00\x00\x00\x00\x00" + packet)
	data := buildPNG(ihdr(1, 1, 8, ColorGrayscale), func(b *bytes.Buffer) {
		chunk(b, "iTXt", payload)
	})

	rec := decode(t, data)
	if got := rec.XmpText(); got != packet {
		t.Errorf("XmpText() = %q, want %q", got, packet)
	}
}

func TestDecodeCompressedITXtIgnored(t *testing.T) {
	payload := []byte("XML:com.adobe.xmp\x00\x01\x00\x00\x00compressed bytes")
	data := buildPNG(ihdr(1, 1, 8, ColorGrayscale), func(b *bytes.Buffer) {
		chunk(b, "iTXt", payload)
	})

	rec := decode(t, data)
	if got := rec.XmpText(); got != "" {
		t.Errorf("compressed iTXt should be skipped, got %q", got)
	}
}

func TestDecodeBinaryChunks(t *testing.T) {
	exif := []byte{0x4D, 0x4D, 0x00, 0x2A, 1, 2, 3}
	icc := []byte{9, 8, 7, 6}
	data := buildPNG(ihdr(1, 1, 8, ColorGrayscale),
		func(b *bytes.Buffer) { chunk(b, "eXIf", exif) },
		func(b *bytes.Buffer) { chunk(b, "iCCP", icc) },
	)

	rec := decode(t, data)
	if diff := cmp.Diff(exif, rec.ExifBlob()); diff != "" {
		t.Errorf("EXIF mismatch:\n%s", diff)
	}
	if diff := cmp.Diff(icc, rec.IccProfileBlob()); diff != "" {
		t.Errorf("ICC mismatch:\n%s", diff)
	}
}

func TestDecodeModificationTime(t *testing.T) {
	payload := []byte{0x07, 0xEA, 8, 24, 12, 30, 45} // 2026-08-24 12:30:45
	data := buildPNG(ihdr(1, 1, 8, ColorGrayscale), func(b *bytes.Buffer) {
		chunk(b, "tIME", payload)
	})

	rec := decode(t, data)
	got, ok := rec.ModificationTime()
	if !ok {
		t.Fatal("tIME chunk should set the modification time")
	}
	want := time.Date(2026, time.August, 24, 12, 30, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ModificationTime() = %v, want %v", got, want)
	}
}

func TestDecodeMissingIEND(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(pngSignature)
	chunk(&buf, "IHDR", ihdr(1, 1, 8, ColorGrayscale))

	rec := decode(t, buf.Bytes())
	ext := rec.Extension().(*Chunks)
	if !ext.TruncatedEnd {
		t.Error("a file with no IEND should be marked truncated")
	}
}

func TestDecodeNoIHDR(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(pngSignature)
	chunk(&buf, "tEXt", []byte("Software\x00x"))

	_, err := decoder{}.Decode(bytes.NewReader(buf.Bytes()), int64(buf.Len()), "bad.png")
	var cfe *types.CorruptedFileError
	if !errors.As(err, &cfe) {
		t.Errorf("got %v, want *CorruptedFileError", err)
	}
}

func TestDecodeTruncatedSignature(t *testing.T) {
	_, err := decoder{}.Decode(bytes.NewReader(pngSignature[:4]), 4, "short.png")
	var cfe *types.CorruptedFileError
	if !errors.As(err, &cfe) {
		t.Errorf("got %v, want *CorruptedFileError", err)
	}
}
