package tiff

import (
	"fmt"
	"strings"

	"github.com/simonhull/imagemeta/internal/types"
)

// validator implements registry.Validator for TIFF headers: one pure pass,
// every violation appended, no short-circuiting.
type validator struct{}

// Validate checks the record against the TIFF invariants and reports all
// violations in one pass.
func (validator) Validate(rec *types.Record) *types.ValidationResult {
	res := &types.ValidationResult{}

	ext, ok := rec.Extension().(*Directory)
	if !ok || ext == nil {
		res.AddError("record carries no TIFF directory extension; nothing to validate")
		return res
	}

	checkDimensions(rec, res)
	checkCompressionDepth(ext, res)
	checkSampleConsistency(rec, ext, res)
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
			res.AddError("image %s %d exceeds the maximum of %d", d.name, d.value, table.hardMaxDimension)
		case d.value > table.softMaxDimension:
			res.AddWarning("image %s %d exceeds %d; decoding may require excessive memory", d.name, d.value, table.softMaxDimension)
		}
	}
}

// checkCompressionDepth enforces the per-compression legal sample-depth
// sets. Old-style JPEG is spec-legal but deprecated since TIFF 6.0, so it
// warns instead of erroring.
func checkCompressionDepth(ext *Directory, res *types.ValidationResult) {
	if ext.Compression == 0 {
		return // absent; defaults to uncompressed
	}
	if table.passthrough[ext.Compression] {
		res.AddWarning("compression %s embeds an external codec stream; few readers support it",
			CompressionName(ext.Compression))
		return
	}

	depths, known := table.allowedDepths[ext.Compression]
	if !known {
		res.AddError("unknown compression code %d", ext.Compression)
		return
	}

	for _, sample := range ext.BitsPerSample {
		legal := false
		for _, d := range depths {
			if d == int(sample) {
				legal = true
				break
			}
		}
		if !legal {
			parts := make([]string, len(depths))
			for i, d := range depths {
				parts[i] = fmt.Sprintf("%d", d)
			}
			res.AddError("compression %s allows sample depths %s, got %d",
				CompressionName(ext.Compression), strings.Join(parts, "/"), sample)
		}
	}
}

// checkSampleConsistency requires SamplesPerPixel to agree with the
// BitsPerSample cardinality, and the record's total depth to equal the sum
// of the samples.
func checkSampleConsistency(rec *types.Record, ext *Directory, res *types.ValidationResult) {
	if ext.SamplesPerPixel != 0 && len(ext.BitsPerSample) != 0 &&
		int(ext.SamplesPerPixel) != len(ext.BitsPerSample) {
		res.AddError("SamplesPerPixel is %d but BitsPerSample has %d values",
			ext.SamplesPerPixel, len(ext.BitsPerSample))
	}

	total := 0
	for _, b := range ext.BitsPerSample {
		total += int(b)
	}
	if total != 0 && rec.BitDepth() != total {
		res.AddError("declared bit depth %d does not match the %d-bit sample sum",
			rec.BitDepth(), total)
	}
}

// checkFixedStructure verifies the magic number, a plausible first-IFD
// offset, and a non-empty directory.
func checkFixedStructure(ext *Directory, res *types.ValidationResult) {
	if ext.Magic != table.magic {
		res.AddError("magic number is %d; a TIFF header must carry %d", ext.Magic, table.magic)
	}
	if ext.FirstIFD < table.minFirstIFD {
		res.AddError("first IFD offset %d overlaps the 8-byte file header", ext.FirstIFD)
	}
	if ext.EntryCount == 0 {
		res.AddError("the first IFD declares no entries")
	}
}

func checkMirrors(rec *types.Record, ext *Directory, res *types.ValidationResult) {
	if rec.Width() != int(ext.Width) {
		res.AddError("record width %d does not match directory width %d", rec.Width(), ext.Width)
	}
	if rec.Height() != int(ext.Height) {
		res.AddError("record height %d does not match directory height %d", rec.Height(), ext.Height)
	}
}
