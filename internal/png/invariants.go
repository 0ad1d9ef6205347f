package png

// Color types from the PNG specification.
const (
	ColorGrayscale      = 0
	ColorTruecolor      = 2
	ColorIndexed        = 3
	ColorGrayscaleAlpha = 4
	ColorTruecolorAlpha = 6
)

// colorTypeNames maps color types to their specification names.
var colorTypeNames = map[uint8]string{
	ColorGrayscale:      "grayscale",
	ColorTruecolor:      "truecolor",
	ColorIndexed:        "indexed-color",
	ColorGrayscaleAlpha: "grayscale with alpha",
	ColorTruecolorAlpha: "truecolor with alpha",
}

// channelCounts maps color types to their channel counts.
var channelCounts = map[uint8]int{
	ColorGrayscale:      1,
	ColorTruecolor:      3,
	ColorIndexed:        1,
	ColorGrayscaleAlpha: 2,
	ColorTruecolorAlpha: 4,
}

// invariantTable is the PNG structural rulebook. The color type plays the
// role the compression mode plays in BMP: each has a fixed legal bit-depth
// subset.
type invariantTable struct {
	allowedDepths    map[uint8][]int
	validIHDRLengths map[uint32]bool
	paletteEntrySize int
	maxPaletteEntry  int
	minDimension     int
	softMaxDimension int
	hardMaxDimension int
}

var table = invariantTable{
	allowedDepths: map[uint8][]int{
		ColorGrayscale:      {1, 2, 4, 8, 16},
		ColorTruecolor:      {8, 16},
		ColorIndexed:        {1, 2, 4, 8},
		ColorGrayscaleAlpha: {8, 16},
		ColorTruecolorAlpha: {8, 16},
	},
	validIHDRLengths: map[uint32]bool{13: true},
	paletteEntrySize: 3,
	maxPaletteEntry:  256,
	minDimension:     1,
	softMaxDimension: 30_000,
	hardMaxDimension: 0x7FFF_FFFF, // PNG dimensions are 31-bit
}

// ColorTypeName returns the specification name for a color type.
func ColorTypeName(ct uint8) string {
	if name, ok := colorTypeNames[ct]; ok {
		return name
	}
	return "unknown"
}
