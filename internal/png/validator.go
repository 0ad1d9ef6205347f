package png

import (
	"fmt"
	"strings"

	"github.com/simonhull/imagemeta/internal/types"
)

// validator implements registry.Validator for PNG headers. Same shape as
// the BMP validator: one pure pass, every violation appended, no
// short-circuiting.
type validator struct{}

// Validate checks the record against the PNG invariants and reports all
// violations in one pass.
func (validator) Validate(rec *types.Record) *types.ValidationResult {
	res := &types.ValidationResult{}

	ext, ok := rec.Extension().(*Chunks)
	if !ok || ext == nil {
		res.AddError("record carries no PNG chunk extension; nothing to validate")
		return res
	}

	checkDimensions(rec, res)
	checkColorTypeDepth(ext, res)
	checkDeclaredDepth(rec, ext, res)
	checkPalette(ext, res)
	checkFixedStructure(ext, res)
	checkMirrors(rec, ext, res)

	return res
}

func checkDimensions(rec *types.Record, res *types.ValidationResult) {
	for _, d := range []struct {
		name  string
		value int
	}{
		{"width", rec.Width()},
		{"height", rec.Height()},
	} {
		switch {
		case d.value < table.minDimension:
			res.AddError("image %s is %d; must be at least %d", d.name, d.value, table.minDimension)
		case d.value > table.hardMaxDimension:
			res.AddError("image %s %d exceeds the 31-bit maximum of %d", d.name, d.value, table.hardMaxDimension)
		case d.value > table.softMaxDimension:
			res.AddWarning("image %s %d exceeds %d; decoding may require excessive memory", d.name, d.value, table.softMaxDimension)
		}
	}
}

// checkColorTypeDepth enforces the per-color-type legal bit-depth sets.
func checkColorTypeDepth(ext *Chunks, res *types.ValidationResult) {
	depths, known := table.allowedDepths[ext.ColorType]
	if !known {
		res.AddError("unknown color type %d", ext.ColorType)
		return
	}

	depth := int(ext.BitDepth)
	for _, d := range depths {
		if d == depth {
			return
		}
	}
	parts := make([]string, len(depths))
	for i, d := range depths {
		parts[i] = fmt.Sprintf("%d", d)
	}
	res.AddError("color type %s allows bit depths %s, got %d",
		ColorTypeName(ext.ColorType), strings.Join(parts, "/"), depth)
}

func checkDeclaredDepth(rec *types.Record, ext *Chunks, res *types.ValidationResult) {
	if rec.BitDepth() != int(ext.BitDepth) {
		res.AddError("declared bit depth %d does not match the IHDR depth %d",
			rec.BitDepth(), ext.BitDepth)
	}
}

// checkPalette requires the PLTE length to be a whole number of 3-byte
// entries and indexed-color images to carry a PLTE of at most 3 * 2^depth
// bytes. A palette elsewhere is legal as a suggested quantization and only
// warrants a warning.
func checkPalette(ext *Chunks, res *types.ValidationResult) {
	palette := ext.Palette()

	if ext.PLTELength%uint32(table.paletteEntrySize) != 0 {
		res.AddError("PLTE length %d is not a multiple of the %d-byte entry size",
			ext.PLTELength, table.paletteEntrySize)
	}

	if ext.ColorType == ColorIndexed {
		maxEntries := 1 << ext.BitDepth
		if maxEntries > table.maxPaletteEntry {
			maxEntries = table.maxPaletteEntry
		}
		maxSize := table.paletteEntrySize * maxEntries
		switch {
		case len(palette) == 0:
			res.AddError("indexed-color images require a PLTE chunk; none is present")
		case len(palette) > maxSize:
			res.AddError("palette is %d bytes; a %d-bit indexed image allows at most %d",
				len(palette), ext.BitDepth, maxSize)
		}
		return
	}

	if len(palette) > 0 && ext.ColorType != ColorTruecolor && ext.ColorType != ColorTruecolorAlpha {
		res.AddWarning("color type %s does not index a palette; the %d-byte PLTE will be ignored",
			ColorTypeName(ext.ColorType), len(palette))
	}
}

// checkFixedStructure verifies the constants the format mandates: the
// 8-byte signature, the 13-byte IHDR, IHDR-first chunk ordering, the single
// defined compression and filter methods, and a known interlace method.
func checkFixedStructure(ext *Chunks, res *types.ValidationResult) {
	if !ext.SignatureOK {
		res.AddError("file does not begin with the 8-byte PNG signature")
	}
	if !ext.SawIHDR {
		res.AddError("no IHDR chunk is present")
		return
	}
	if !table.validIHDRLengths[ext.IHDRLength] {
		res.AddError("IHDR length is %d; the specification mandates 13", ext.IHDRLength)
	}
	if !ext.IHDRFirst {
		res.AddError("IHDR is not the first chunk")
	}
	if ext.CompressionMethod != 0 {
		res.AddError("compression method %d is undefined; only 0 (deflate) exists", ext.CompressionMethod)
	}
	if ext.FilterMethod != 0 {
		res.AddError("filter method %d is undefined; only 0 exists", ext.FilterMethod)
	}
	if ext.InterlaceMethod > 1 {
		res.AddError("interlace method %d is undefined; only 0 (none) and 1 (Adam7) exist", ext.InterlaceMethod)
	}
	if ext.TruncatedEnd {
		res.AddWarning("no IEND chunk; the file is truncated or still being written")
	}
}

func checkMirrors(rec *types.Record, ext *Chunks, res *types.ValidationResult) {
	if rec.Width() != int(ext.Width) {
		res.AddError("record width %d does not match IHDR width %d", rec.Width(), ext.Width)
	}
	if rec.Height() != int(ext.Height) {
		res.AddError("record height %d does not match IHDR height %d", rec.Height(), ext.Height)
	}
}
