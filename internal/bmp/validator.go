package bmp

import (
	"fmt"
	"strings"

	"github.com/simonhull/imagemeta/internal/types"
)

// validator implements registry.Validator for BMP headers.
//
// Validate is a pure pass over a populated Record: it reads the record and
// the invariant table, appends every violation to one shared result, and
// never stops at the first problem. Errors mark structurally illegal
// headers; warnings mark legal-but-risky ones.
type validator struct{}

// Validate checks the record against the BMP invariants and reports all
// violations in one pass.
func (validator) Validate(rec *types.Record) *types.ValidationResult {
	res := &types.ValidationResult{}

	hdr, ok := rec.Extension().(*Header)
	if !ok || hdr == nil {
		res.AddError("record carries no BMP header extension; nothing to validate")
		return res
	}

	checkDimensions(rec, res)
	checkCompressionDepth(hdr, res)
	checkDeclaredDepth(rec, hdr, res)
	checkPalette(hdr, res)
	checkChannelMasks(hdr, res)
	checkFixedStructure(hdr, res)
	checkMirrors(rec, hdr, res)

	return res
}

// checkDimensions enforces the dimension bounds: non-positive is illegal,
// beyond the soft ceiling is risky, beyond the hard ceiling is illegal.
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
			res.AddError("image %s %d exceeds the maximum of %d", d.name, d.value, table.hardMaxDimension)
		case d.value > table.softMaxDimension:
			res.AddWarning("image %s %d exceeds %d; decoding may require excessive memory", d.name, d.value, table.softMaxDimension)
		}
	}
}

// checkCompressionDepth enforces the per-mode legal bit-depth sets.
// Passthrough modes (embedded JPEG/PNG streams) are spec-legal but rarely
// supported, so they warn instead of erroring.
func checkCompressionDepth(hdr *Header, res *types.ValidationResult) {
	if table.passthrough[hdr.Compression] {
		res.AddWarning("compression %s embeds an external codec stream; few readers support it",
			CompressionName(hdr.Compression))
		return
	}

	depths, known := table.allowedDepths[hdr.Compression]
	if !known {
		res.AddError("unknown compression mode %d", hdr.Compression)
		return
	}

	depth := int(hdr.BitsPerPixel)
	legal := false
	for _, d := range depths {
		if d == depth {
			legal = true
			break
		}
	}
	if !legal {
		res.AddError("compression %s requires %s depth, got %d-bit",
			CompressionName(hdr.Compression), depthSet(depths), depth)
	}

	// Run-length data is encoded bottom-up; a top-down bitmap cannot
	// legally declare either RLE mode.
	if hdr.TopDown && (hdr.Compression == CompressionRLE4 || hdr.Compression == CompressionRLE8) {
		res.AddError("compression %s is illegal for top-down bitmaps", CompressionName(hdr.Compression))
	}
}

// depthSet renders an allowed-depth list: "4-bit", "16- or 32-bit".
func depthSet(depths []int) string {
	parts := make([]string, len(depths))
	for i, d := range depths {
		parts[i] = fmt.Sprintf("%d", d)
	}
	switch len(parts) {
	case 1:
		return parts[0] + "-bit"
	case 2:
		return parts[0] + "- or " + parts[1] + "-bit"
	default:
		return strings.Join(parts[:len(parts)-1], "-, ") + "- or " + parts[len(parts)-1] + "-bit"
	}
}

// checkDeclaredDepth requires the record's depth and the header's raw
// bits-per-pixel field to agree exactly. A mismatch mis-strides every
// downstream pixel read.
func checkDeclaredDepth(rec *types.Record, hdr *Header, res *types.ValidationResult) {
	if rec.BitDepth() != int(hdr.BitsPerPixel) {
		res.AddError("declared bit depth %d does not match the header's %d bits per pixel",
			rec.BitDepth(), hdr.BitsPerPixel)
	}
}

// checkPalette requires palette-indexed depths to carry a palette of at
// most entrySize * 2^depth bytes. A palette on a depth that does not index
// into one is tolerated with a warning.
func checkPalette(hdr *Header, res *types.ValidationResult) {
	depth := int(hdr.BitsPerPixel)
	palette := hdr.Palette()

	if depth >= 1 && depth <= table.paletteMaxDepth {
		maxSize := table.paletteEntrySize * (1 << depth)
		switch {
		case len(palette) == 0:
			res.AddError("%d-bit images require a color palette; none is present", depth)
		case len(palette) > maxSize:
			res.AddError("palette is %d bytes; a %d-bit image allows at most %d",
				len(palette), depth, maxSize)
		}
		return
	}

	if len(palette) > 0 {
		res.AddWarning("%d-bit images do not index a palette; the %d-byte palette will be ignored",
			depth, len(palette))
	}
}

// checkChannelMasks applies only to masked-color images: every required
// mask must be non-zero, and no two masks may share bits. Overlap checks
// skip masks already flagged all-zero, so one broken mask does not cascade
// into meaningless overlap errors.
func checkChannelMasks(hdr *Header, res *types.ValidationResult) {
	if hdr.Compression != CompressionBitfields {
		return
	}

	channels := []struct {
		name     string
		mask     uint32
		required bool
	}{
		{"red", hdr.RedMask, true},
		{"green", hdr.GreenMask, true},
		{"blue", hdr.BlueMask, true},
		{"alpha", hdr.AlphaMask, false},
	}

	zero := make([]bool, len(channels))
	for i, c := range channels {
		if c.mask == 0 {
			zero[i] = true
			if c.required {
				res.AddError("%s channel mask is zero; masked-color images require a non-zero %s mask",
					c.name, c.name)
			}
		}
	}

	for i := 0; i < len(channels); i++ {
		if zero[i] {
			continue
		}
		for j := i + 1; j < len(channels); j++ {
			if zero[j] {
				continue
			}
			if overlap := channels[i].mask & channels[j].mask; overlap != 0 {
				res.AddError("%s and %s channel masks overlap on bits %#08x",
					channels[i].name, channels[j].name, overlap)
			}
		}
	}
}

// checkFixedStructure verifies the constants the format mandates: the
// signature bytes, a known header size, the plane count, and non-negative
// resolution fields.
func checkFixedStructure(hdr *Header, res *types.ValidationResult) {
	if hdr.Signature != table.signature {
		res.AddError("signature is %q; a BMP header must begin with %q",
			string(hdr.Signature[:]), string(table.signature[:]))
	}

	if !table.validHeaderSizes[hdr.HeaderSize] {
		res.AddError("declared header size %d is not a known DIB header size", hdr.HeaderSize)
	}

	if int(hdr.Planes) != table.requiredPlanes {
		res.AddError("plane count is %d; the format mandates exactly %d", hdr.Planes, table.requiredPlanes)
	}

	if hdr.XPelsPerMeter < 0 {
		res.AddError("horizontal resolution %d is negative", hdr.XPelsPerMeter)
	}
	if hdr.YPelsPerMeter < 0 {
		res.AddError("vertical resolution %d is negative", hdr.YPelsPerMeter)
	}
}

// checkMirrors requires values duplicated between the record and the
// embedded header to match exactly. Drift means one of the two copies is
// lying, and downstream code cannot know which.
func checkMirrors(rec *types.Record, hdr *Header, res *types.ValidationResult) {
	if rec.Width() != int(hdr.Width) {
		res.AddError("record width %d does not match header width %d", rec.Width(), hdr.Width)
	}

	headerHeight := int(hdr.Height)
	if headerHeight < 0 {
		headerHeight = -headerHeight
	}
	if rec.Height() != headerHeight {
		res.AddError("record height %d does not match header height %d", rec.Height(), headerHeight)
	}
}
