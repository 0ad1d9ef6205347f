package webp

import (
	"github.com/simonhull/imagemeta/internal/types"
)

// WebP canvas dimensions are 14-bit in VP8/VP8L headers and 24-bit in
// VP8X; the container maximum is the VP8X one.
const (
	minDimension     = 1
	softMaxDimension = 16_383 // single-frame VP8/VP8L limit
	hardMaxDimension = 1 << 24
)

// featureChunks pairs each VP8X feature flag with the chunk it promises.
var featureChunks = []struct {
	name  string
	chunk string
}{
	{"ICC profile", "ICCP"},
	{"EXIF metadata", "EXIF"},
	{"XMP metadata", "XMP "},
	{"animation", "ANIM"},
}

// validator implements registry.Validator for WebP containers: one pure
// pass, every violation appended, no short-circuiting.
type validator struct{}

// Validate checks the record against the WebP invariants and reports all
// violations in one pass.
func (validator) Validate(rec *types.Record) *types.ValidationResult {
	res := &types.ValidationResult{}

	ext, ok := rec.Extension().(*Chunks)
	if !ok || ext == nil {
		res.AddError("record carries no WebP chunk extension; nothing to validate")
		return res
	}

	checkDimensions(rec, ext, res)
	checkContainer(ext, res)
	checkFeatureFlags(ext, res)
	checkMirrors(rec, ext, res)

	return res
}

func checkDimensions(rec *types.Record, ext *Chunks, res *types.ValidationResult) {
	for _, d := range []struct {
		name  string
		value int
	}{
		{"width", rec.Width()},
		{"height", rec.Height()},
	} {
		switch {
		case d.value < minDimension:
			res.AddError("canvas %s is %d; must be at least %d", d.name, d.value, minDimension)
		case d.value > hardMaxDimension:
			res.AddError("canvas %s %d exceeds the 24-bit maximum of %d", d.name, d.value, hardMaxDimension)
		case d.value > softMaxDimension && !ext.HasVP8X:
			res.AddError("canvas %s %d exceeds the single-frame limit of %d and no VP8X header is present",
				d.name, d.value, softMaxDimension)
		}
	}
}

// checkContainer verifies the RIFF framing: form type, declared size
// against the real file size, and an image chunk leading the stream.
func checkContainer(ext *Chunks, res *types.ValidationResult) {
	if !ext.FormOK {
		res.AddError(`container is not a RIFF file with form type "WEBP"`)
	}

	// The RIFF size covers everything after the first 8 bytes.
	if declared := int64(ext.RiffSize) + 8; declared > ext.FileSize {
		res.AddError("declared RIFF size %d exceeds the %d-byte file", declared, ext.FileSize)
	} else if declared < ext.FileSize {
		res.AddWarning("%d trailing bytes after the declared RIFF payload", ext.FileSize-declared)
	}

	switch ext.FirstChunk {
	case "VP8 ", "VP8L", "VP8X":
	case "":
		res.AddError("container holds no chunks")
	default:
		res.AddError("first chunk is %q; a WebP stream must begin with VP8, VP8L, or VP8X", ext.FirstChunk)
	}
}

// checkFeatureFlags requires each VP8X feature flag to be backed by its
// chunk. A chunk without its flag is tolerated (readers that ignore VP8X
// still find it) and only warrants a warning.
func checkFeatureFlags(ext *Chunks, res *types.ValidationResult) {
	if !ext.HasVP8X {
		return
	}

	if ext.FlagUnused {
		res.AddError("VP8X reserved flag bits are set")
	}

	flags := []bool{ext.FlagICC, ext.FlagEXIF, ext.FlagXMP, ext.FlagAnim}
	for i, f := range featureChunks {
		_, present := ext.Sizes[f.chunk]
		if flags[i] && !present {
			res.AddError("VP8X declares %s but no %q chunk is present", f.name, f.chunk)
		}
		if !flags[i] && present {
			res.AddWarning("%q chunk is present but the VP8X %s flag is clear", f.chunk, f.name)
		}
	}
}

func checkMirrors(rec *types.Record, ext *Chunks, res *types.ValidationResult) {
	if rec.Width() != int(ext.Width) {
		res.AddError("record width %d does not match canvas width %d", rec.Width(), ext.Width)
	}
	if rec.Height() != int(ext.Height) {
		res.AddError("record height %d does not match canvas height %d", rec.Height(), ext.Height)
	}
}
