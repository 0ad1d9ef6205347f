package png

import (
	"strings"
	"testing"

	"github.com/simonhull/imagemeta/internal/types"
)

// validPair builds a record/extension pair that passes every check: an
// 8-bit truecolor 100x100 image with clean structure flags.
func validPair(t *testing.T) (*types.Record, *Chunks) {
	t.Helper()

	ext := &Chunks{
		Width:       100,
		Height:      100,
		BitDepth:    8,
		ColorType:   ColorTruecolor,
		IHDRLength:  13,
		SawIHDR:     true,
		SignatureOK: true,
		IHDRFirst:   true,
	}

	rec := types.NewRecord()
	for _, err := range []error{
		rec.SetWidth(100),
		rec.SetHeight(100),
		rec.SetBitDepth(8),
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

func TestValidateCleanHeader(t *testing.T) {
	rec, _ := validPair(t)

	res := validator{}.Validate(rec)
	if !res.IsValid() || len(res.Warnings) != 0 {
		t.Errorf("clean header reported findings:\n%s", res)
	}
}

func TestValidateMissingExtension(t *testing.T) {
	res := validator{}.Validate(types.NewRecord())
	if res.IsValid() {
		t.Fatal("a record with no PNG extension should not validate")
	}
}

func TestValidateColorTypeDepth(t *testing.T) {
	tests := []struct {
		name      string
		colorType uint8
		depth     uint8
		valid     bool
	}{
		{"grayscale 1-bit", ColorGrayscale, 1, true},
		{"grayscale 16-bit", ColorGrayscale, 16, true},
		{"truecolor 8-bit", ColorTruecolor, 8, true},
		{"truecolor 4-bit", ColorTruecolor, 4, false},
		{"indexed 8-bit", ColorIndexed, 8, true},
		{"indexed 16-bit", ColorIndexed, 16, false},
		{"alpha 2-bit", ColorTruecolorAlpha, 2, false},
		{"unknown color type", 5, 8, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, ext := validPair(t)
			ext.ColorType = tc.colorType
			ext.BitDepth = tc.depth
			if err := rec.SetBitDepth(int(tc.depth)); err != nil {
				t.Fatal(err)
			}
			if tc.colorType == ColorIndexed {
				if err := ext.SetPalette(make([]byte, 4*3)); err != nil {
					t.Fatal(err)
				}
			}

			res := validator{}.Validate(rec)
			if tc.valid != res.IsValid() {
				t.Errorf("IsValid() = %v, want %v:\n%s", res.IsValid(), tc.valid, res)
			}
		})
	}
}

func TestValidatePalette(t *testing.T) {
	t.Run("indexed without palette", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.ColorType = ColorIndexed

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "PLTE"); got != 1 {
			t.Errorf("expected one missing-palette error, got:\n%s", res)
		}
	})

	t.Run("indexed oversized palette", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.ColorType = ColorIndexed
		ext.BitDepth = 4
		if err := rec.SetBitDepth(4); err != nil {
			t.Fatal(err)
		}
		// A 4-bit image indexes at most 16 entries; 32 is twice that.
		if err := ext.SetPalette(make([]byte, 32*3)); err != nil {
			t.Fatal(err)
		}

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "palette is 96 bytes"); got != 1 {
			t.Errorf("expected one oversized-palette error, got:\n%s", res)
		}
	})

	t.Run("grayscale with palette warns", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.ColorType = ColorGrayscale
		if err := ext.SetPalette(make([]byte, 4*3)); err != nil {
			t.Fatal(err)
		}

		res := validator{}.Validate(rec)
		if !res.IsValid() {
			t.Errorf("palette on grayscale is legal:\n%s", res)
		}
		if got := countMentioning(res.Warnings, "PLTE"); got != 1 {
			t.Errorf("expected one ignored-palette warning, got:\n%s", res)
		}
	})

	t.Run("ragged PLTE length", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.PLTELength = 7

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "PLTE length 7 is not a multiple"); got != 1 {
			t.Errorf("expected one ragged-length error, got:\n%s", res)
		}
	})

	t.Run("truecolor with palette is a quantization hint", func(t *testing.T) {
		rec, ext := validPair(t)
		if err := ext.SetPalette(make([]byte, 4*3)); err != nil {
			t.Fatal(err)
		}

		res := validator{}.Validate(rec)
		if !res.IsValid() || len(res.Warnings) != 0 {
			t.Errorf("PLTE on truecolor should pass silently:\n%s", res)
		}
	})
}

func TestValidateFixedStructure(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Chunks)
		mention string
		isError bool
	}{
		{"bad signature", func(c *Chunks) { c.SignatureOK = false }, "signature", true},
		{"bad ihdr length", func(c *Chunks) { c.IHDRLength = 14 }, "IHDR length", true},
		{"ihdr not first", func(c *Chunks) { c.IHDRFirst = false }, "first chunk", true},
		{"bad compression method", func(c *Chunks) { c.CompressionMethod = 1 }, "compression method", true},
		{"bad filter method", func(c *Chunks) { c.FilterMethod = 2 }, "filter method", true},
		{"bad interlace method", func(c *Chunks) { c.InterlaceMethod = 2 }, "interlace method", true},
		{"truncated end", func(c *Chunks) { c.TruncatedEnd = true }, "IEND", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, ext := validPair(t)
			tc.mutate(ext)

			res := validator{}.Validate(rec)
			entries := res.Errors
			if !tc.isError {
				entries = res.Warnings
			}
			if got := countMentioning(entries, tc.mention); got != 1 {
				t.Errorf("expected one entry mentioning %q, got:\n%s", tc.mention, res)
			}
		})
	}
}

func TestValidateDimensionCeilings(t *testing.T) {
	rec, ext := validPair(t)
	ext.Width = 40_000
	if err := rec.SetWidth(40_000); err != nil {
		t.Fatal(err)
	}

	res := validator{}.Validate(rec)
	if !res.IsValid() {
		t.Errorf("40000 is legal, only risky:\n%s", res)
	}
	if got := countMentioning(res.Warnings, "width"); got != 1 {
		t.Errorf("expected one width warning, got:\n%s", res)
	}
}

func TestValidateMirrors(t *testing.T) {
	rec, ext := validPair(t)
	ext.Width = 101
	ext.Height = 99

	res := validator{}.Validate(rec)
	if got := countMentioning(res.Errors, "does not match IHDR"); got != 2 {
		t.Errorf("expected width and height mirror errors, got:\n%s", res)
	}
}

func TestValidateReportsAllViolationsInOnePass(t *testing.T) {
	rec, ext := validPair(t)
	ext.SignatureOK = false
	ext.IHDRFirst = false
	ext.ColorType = ColorIndexed // no palette present
	ext.BitDepth = 16            // illegal for indexed
	if err := rec.SetBitDepth(16); err != nil {
		t.Fatal(err)
	}

	res := validator{}.Validate(rec)
	for _, mention := range []string{"signature", "first chunk", "PLTE", "indexed-color"} {
		if got := countMentioning(res.Errors, mention); got == 0 {
			t.Errorf("single pass missed the %q violation:\n%s", mention, res)
		}
	}
}
