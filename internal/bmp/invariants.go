package bmp

// Compression modes from the BITMAPINFOHEADER specification.
const (
	CompressionRGB       = 0 // BI_RGB: uncompressed
	CompressionRLE8      = 1 // BI_RLE8: 8-bit run-length encoding
	CompressionRLE4      = 2 // BI_RLE4: 4-bit run-length encoding
	CompressionBitfields = 3 // BI_BITFIELDS: explicit channel masks
	CompressionJPEG      = 4 // BI_JPEG: embedded JPEG passthrough
	CompressionPNG       = 5 // BI_PNG: embedded PNG passthrough
)

// compressionNames maps compression modes to their specification names.
var compressionNames = map[uint32]string{
	CompressionRGB:       "BI_RGB",
	CompressionRLE8:      "BI_RLE8",
	CompressionRLE4:      "BI_RLE4",
	CompressionBitfields: "BI_BITFIELDS",
	CompressionJPEG:      "BI_JPEG",
	CompressionPNG:       "BI_PNG",
}

// invariantTable is the immutable structural rulebook for one container
// format: which bit depths each compression mode permits, when a palette is
// mandatory, which header sizes exist, and the fixed constants the format
// mandates. The validator consults it and never anything else.
type invariantTable struct {
	allowedDepths    map[uint32][]int
	passthrough      map[uint32]bool
	validHeaderSizes map[uint32]bool
	signature        [2]byte
	requiredPlanes   int
	paletteEntrySize int
	paletteMaxDepth  int
	minDimension     int
	softMaxDimension int
	hardMaxDimension int
}

// table holds the BMP invariants.
//
// Header sizes cover BITMAPCOREHEADER (12), BITMAPINFOHEADER (40), the
// adobe mask variants (52, 56), BITMAPV4HEADER (108) and BITMAPV5HEADER
// (124). The dimension ceilings are calibration values: headers beyond the
// soft ceiling are legal but almost always hostile or corrupt.
var table = invariantTable{
	signature: [2]byte{'B', 'M'},
	allowedDepths: map[uint32][]int{
		CompressionRGB:       {1, 4, 8, 16, 24, 32},
		CompressionRLE8:      {8},
		CompressionRLE4:      {4},
		CompressionBitfields: {16, 32},
	},
	passthrough: map[uint32]bool{
		CompressionJPEG: true,
		CompressionPNG:  true,
	},
	validHeaderSizes: map[uint32]bool{
		12: true, 40: true, 52: true, 56: true, 108: true, 124: true,
	},
	requiredPlanes:   1,
	paletteEntrySize: 4,
	paletteMaxDepth:  8,
	minDimension:     1,
	softMaxDimension: 30_000,
	hardMaxDimension: 1_000_000,
}

// PaletteEntrySize returns the byte size of one palette entry (BGRA quad).
func PaletteEntrySize() int {
	return table.paletteEntrySize
}

// CompressionName returns the specification name for a compression mode,
// or a decimal rendering for unknown modes.
func CompressionName(c uint32) string {
	if name, ok := compressionNames[c]; ok {
		return name
	}
	return "unknown"
}
