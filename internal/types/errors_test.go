package types

import (
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "out of bounds offset",
			err:      &OutOfBoundsError{Path: "a.bmp", What: "DIB header", Offset: 100, Length: 4, Size: 50},
			contains: []string{"a.bmp", "offset 100", "file size: 50", "DIB header"},
		},
		{
			name:     "out of bounds length",
			err:      &OutOfBoundsError{Path: "a.bmp", What: "palette", Offset: 10, Length: 64, Size: 50},
			contains: []string{"a.bmp", "64 bytes", "offset 10", "palette"},
		},
		{
			name:     "unsupported format",
			err:      &UnsupportedFormatError{Path: "a.xyz", Reason: "unrecognized file signature"},
			contains: []string{"a.xyz", "unsupported format", "unrecognized file signature"},
		},
		{
			name:     "corrupted file",
			err:      &CorruptedFileError{Path: "a.png", Reason: "chunk overruns file", Offset: 33},
			contains: []string{"a.png", "offset 33", "chunk overruns file"},
		},
		{
			name:     "invalid argument",
			err:      &InvalidArgumentError{Field: "palette", Value: 7, Reason: "must be a multiple of 4 bytes"},
			contains: []string{"invalid palette", "7", "multiple of 4"},
		},
		{
			name:     "disposed",
			err:      &DisposedError{Type: "Record", Op: "SetWidth"},
			contains: []string{"Record", "SetWidth", "Dispose"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := tc.err.Error()
			for _, want := range tc.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("message %q does not mention %q", msg, want)
				}
			}
		})
	}
}
