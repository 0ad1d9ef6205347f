package tiff

import (
	"strings"
	"testing"

	"github.com/simonhull/imagemeta/internal/types"
)

// validPair builds a record/directory pair that passes every check: an
// uncompressed 8-bit RGB 100x100 image.
func validPair(t *testing.T) (*types.Record, *Directory) {
	t.Helper()

	ext := &Directory{
		Width:           100,
		Height:          100,
		BitsPerSample:   []uint16{8, 8, 8},
		SamplesPerPixel: 3,
		Compression:     CompressionNone,
		EntryCount:      5,
		FirstIFD:        8,
		Magic:           42,
	}

	rec := types.NewRecord()
	for _, err := range []error{
		rec.SetWidth(100),
		rec.SetHeight(100),
		rec.SetBitDepth(24),
		rec.SetBitsPerChannel([]uint8{8, 8, 8}),
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

func TestValidateCleanDirectory(t *testing.T) {
	rec, _ := validPair(t)

	res := validator{}.Validate(rec)
	if !res.IsValid() || len(res.Warnings) != 0 {
		t.Errorf("clean directory reported findings:\n%s", res)
	}
}

func TestValidateMissingExtension(t *testing.T) {
	res := validator{}.Validate(types.NewRecord())
	if res.IsValid() {
		t.Fatal("a record with no TIFF extension should not validate")
	}
}

func TestValidateCompressionDepth(t *testing.T) {
	t.Run("ccitt requires bilevel", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.Compression = CompressionCCITT

		res := validator{}.Validate(rec)
		// Three 8-bit samples, each illegal under CCITT.
		if got := countMentioning(res.Errors, "CCITT"); got != 3 {
			t.Errorf("got %d CCITT errors, want 3:\n%s", got, res)
		}
	})

	t.Run("absent compression defaults silently", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.Compression = 0

		res := validator{}.Validate(rec)
		if !res.IsValid() {
			t.Errorf("absent compression should not error:\n%s", res)
		}
	})

	t.Run("old-style jpeg warns", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.Compression = CompressionOldJPEG

		res := validator{}.Validate(rec)
		if !res.IsValid() {
			t.Errorf("old-style JPEG should not error:\n%s", res)
		}
		if got := countMentioning(res.Warnings, "old-style JPEG"); got != 1 {
			t.Errorf("expected one passthrough warning, got:\n%s", res)
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.Compression = 9999

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "unknown compression"); got != 1 {
			t.Errorf("expected one unknown-compression error, got:\n%s", res)
		}
	})
}

func TestValidateSampleConsistency(t *testing.T) {
	t.Run("count mismatch", func(t *testing.T) {
		rec, ext := validPair(t)
		ext.SamplesPerPixel = 4

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "SamplesPerPixel"); got != 1 {
			t.Errorf("expected one cardinality error, got:\n%s", res)
		}
	})

	t.Run("sum mismatch", func(t *testing.T) {
		rec, _ := validPair(t)
		if err := rec.SetBitDepth(32); err != nil {
			t.Fatal(err)
		}

		res := validator{}.Validate(rec)
		if got := countMentioning(res.Errors, "sample sum"); got != 1 {
			t.Errorf("expected one depth-sum error, got:\n%s", res)
		}
	})
}

func TestValidateFixedStructure(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Directory)
		mention string
	}{
		{"wrong magic", func(d *Directory) { d.Magic = 43 }, "magic number"},
		{"ifd overlaps header", func(d *Directory) { d.FirstIFD = 4 }, "overlaps"},
		{"empty directory", func(d *Directory) { d.EntryCount = 0 }, "no entries"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, ext := validPair(t)
			tc.mutate(ext)

			res := validator{}.Validate(rec)
			if got := countMentioning(res.Errors, tc.mention); got != 1 {
				t.Errorf("expected one error mentioning %q, got:\n%s", tc.mention, res)
			}
		})
	}
}

func TestValidateDimensionsAndMirrors(t *testing.T) {
	rec, ext := validPair(t)
	ext.Width = 0
	ext.Height = 2_000_000
	for _, err := range []error{rec.SetWidth(0), rec.SetHeight(2_000_000)} {
		if err != nil {
			t.Fatal(err)
		}
	}

	res := validator{}.Validate(rec)
	if got := countMentioning(res.Errors, "width is 0"); got != 1 {
		t.Errorf("expected one zero-width error, got:\n%s", res)
	}
	if got := countMentioning(res.Errors, "height 2000000 exceeds"); got != 1 {
		t.Errorf("expected one over-ceiling height error, got:\n%s", res)
	}
	// Mirrors agree, so no mirror errors on top.
	if got := countMentioning(res.Errors, "does not match directory"); got != 0 {
		t.Errorf("unexpected mirror errors:\n%s", res)
	}
}

func TestValidateReportsAllViolationsInOnePass(t *testing.T) {
	rec, ext := validPair(t)
	ext.Magic = 0
	ext.EntryCount = 0
	ext.Compression = CompressionCCITT

	res := validator{}.Validate(rec)
	for _, mention := range []string{"magic number", "no entries", "CCITT"} {
		if got := countMentioning(res.Errors, mention); got == 0 {
			t.Errorf("single pass missed the %q violation:\n%s", mention, res)
		}
	}
}
