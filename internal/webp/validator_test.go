package webp

import (
	"strings"
	"testing"

	"github.com/simonhull/imagemeta/internal/types"
)

// validPair builds a record/extension pair that passes every check: a
// simple lossy 100x100 file with an accurate RIFF size.
func validPair(t *testing.T) (*types.Record, *Chunks) {
	t.Helper()

	ext := &Chunks{
		Sizes:      map[string]uint32{"VP8 ": 100},
		RiffSize:   112,
		FileSize:   120,
		Width:      100,
		Height:     100,
		FirstChunk: "VP8 ",
		FormOK:     true,
	}

	rec := types.NewRecord()
	for _, err := range []error{
		rec.SetWidth(100),
		rec.SetHeight(100),
		rec.SetBitDepth(24),
		rec.SetExtension(ext),
	} {
		if err != nil {
			t.Fatalf("building fixture: %v", err)
		}
	}
	return rec, ext
}

func countMentioning(entries []string, substr string) int {
	n := 0
	for _, e := range entries {
		if strings.Contains(e, substr) {
			n++
		}
	}
	return n
}

func TestValidateCleanContainer(t *testing.T) {
	rec, _ := validPair(t)

	res := validator{}.Validate(rec)
	if !res.IsValid() || len(res.Warnings) != 0 {
		t.Errorf("clean container reported findings:\n%s", res)
	}
}

func TestValidateMissingExtension(t *testing.T) {
	res := validator{}.Validate(types.NewRecord())
	if res.IsValid() {
		t.Fatal("a record with no WebP extension should not validate")
	}
}

func TestValidateDimensions(t *testing.T) {
	t.Run("zero width", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.Width = 0
		if err := rec.SetWidth(0); err != nil {
			t.Fatal(err)
		}

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "width is 0"); got != 1 {
			t.Errorf("expected one zero-width error, got:\n%s", res)
		}
	})

	t.Run("over frame limit without vp8x", func(t *testing.T) {
		// 20000 exceeds the 14-bit frame fields; only a VP8X canvas can
		// declare it.
		rec, ext := validPair(t)
		ext.Width = 20_000
		if err := rec.SetWidth(20_000); err != nil {
			t.Fatal(err)
		}

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "single-frame limit"); got != 1 {
			t.Errorf("expected one frame-limit error, got:\n%s", res)
		}
	})

	t.Run("over frame limit with vp8x", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.Width = 20_000
		ext.HasVP8X = true
		ext.FirstChunk = "VP8X"
		if err := rec.SetWidth(20_000); err != nil {
			t.Fatal(err)
		}

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "single-frame limit"); got != 0 {
			t.Errorf("VP8X lifts the frame limit:\n%s", res)
		}
	})

	t.Run("over 24-bit maximum", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.Height = 1 << 25
		if err := rec.SetHeight(1 << 25); err != nil {
			t.Fatal(err)
		}

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "24-bit maximum"); got != 1 {
			t.Errorf("expected one hard-ceiling error, got:\n%s", res)
		}
	})
}

func TestValidateContainer(t *testing.T) {
	t.Run("bad form type", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.FormOK = false

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "WEBP"); got != 1 {
			t.Errorf("expected one form-type error, got:\n%s", res)
		}
	})

	t.Run("declared size exceeds file", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.RiffSize = 500

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "exceeds the 120-byte file"); got != 1 {
			t.Errorf("expected one oversize error, got:\n%s", res)
		}
	})

	t.Run("trailing bytes warn", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.FileSize = 200

		res := validator{}.Validate(rec)
		if !res.IsValid() {
			t.Errorf("trailing bytes are legal:\n%s", res)
		}
		if got := countMentioning(res.Warnings, "trailing bytes"); got != 1 {
			t.Errorf("expected one trailing-bytes warning, got:\n%s", res)
		}
	})

	t.Run("wrong first chunk", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.FirstChunk = "EXIF"

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "first chunk"); got != 1 {
			t.Errorf("expected one chunk-order error, got:\n%s", res)
		}
	})

	t.Run("no chunks", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.FirstChunk = ""

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "no chunks"); got != 1 {
			t.Errorf("expected one empty-container error, got:\n%s", res)
		}
	})
}

func TestValidateFeatureFlags(t *testing.T) {
	setupVP8X := func(t *testing.T) (*types.Record, *Chunks) {
		rec, ext := validPair(t)
		ext.HasVP8X = true
		ext.FirstChunk = "VP8X"
		ext.Sizes["VP8X"] = 10
		return rec, ext
	}

	t.Run("flag without chunk", func(t *testing.T) {
		rec, ext := setupVP8X(t)
		ext.FlagEXIF = true

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "EXIF"); got != 1 {
			t.Errorf("expected one missing-chunk error, got:\n%s", res)
		}
	})

	t.Run("chunk without flag warns", func(t *testing.T) {
		rec, ext := setupVP8X(t)
		ext.Sizes["ICCP"] = 128

		res := validator{}.Validate(rec)
		if !res.IsValid() {
			t.Errorf("an unflagged chunk is legal:\n%s", res)
		}
		if got := countMentioning(res.Warnings, "ICCP"); got != 1 {
			t.Errorf("expected one unflagged-chunk warning, got:\n%s", res)
		}
	})

	t.Run("flag backed by chunk", func(t *testing.T) {
		rec, ext := setupVP8X(t)
		ext.FlagXMP = true
		ext.Sizes["XMP "] = 64

		res := validator{}.Validate(rec)
		if !res.IsValid() || len(res.Warnings) != 0 {
			t.Errorf("matched flag and chunk should pass silently:\n%s", res)
		}
	})

	t.Run("reserved bits", func(t *testing.T) {
		rec, ext := setupVP8X(t)
		ext.FlagUnused = true

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "reserved flag bits"); got != 1 {
			t.Errorf("expected one reserved-bits error, got:\n%s", res)
		}
	})

	t.Run("no vp8x skips flag checks", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.Sizes["EXIF"] = 32

		res := validator{}.Validate(rec)
		if !res.IsValid() || len(res.Warnings) != 0 {
			t.Errorf("flag checks should not run without VP8X:\n%s", res)
		}
	})
}

func TestValidateMirrors(t *testing.T) {
	rec, ext := validPair(t)
	ext.Width = 101

	res := validator{}.Validate(rec)
	if got := countMentioning(res.Errors, "does not match canvas width"); got != 1 {
		t.Errorf("expected one width mirror error, got:\n%s", res)
	}
}

func TestValidateReportsAllViolationsInOnePass(t *testing.T) {
	rec, ext := validPair(t)
	ext.FormOK = false
	ext.FirstChunk = "EXIF"
	ext.HasVP8X = true
	ext.FlagAnim = true // no ANIM chunk

	res := validator{}.Validate(rec)
	for _, mention := range []string{"WEBP", "first chunk", "animation"} {
		if got := countMentioning(res.Errors, mention); got == 0 {
			t.Errorf("single pass missed the %q violation:\n%s", mention, res)
		}
	}
}
