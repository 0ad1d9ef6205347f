package tiff

// Tags (TIFF 6.0, p. 28-41).
const (
	tagImageWidth       = 256
	tagImageLength      = 257
	tagBitsPerSample    = 258
	tagCompression      = 259
	tagPhotometric      = 262
	tagImageDescription = 270
	tagSoftware         = 305
	tagDateTime         = 306
	tagArtist           = 315
	tagSamplesPerPixel  = 277
	tagXMP              = 700
	tagCopyright        = 33432
	tagICCProfile       = 34675
)

// Data types (p. 14-16 of the spec).
const (
	dtByte      = 1
	dtASCII     = 2
	dtShort     = 3
	dtLong      = 4
	dtRational  = 5
	dtUndefined = 7
)

// typeSizes gives the byte length of one instance of each data type.
var typeSizes = map[uint16]uint32{
	dtByte: 1, dtASCII: 1, dtShort: 2, dtLong: 4, dtRational: 8, dtUndefined: 1,
}

// Compression codes.
const (
	CompressionNone     = 1
	CompressionCCITT    = 2
	CompressionLZW      = 5
	CompressionOldJPEG  = 6
	CompressionJPEG     = 7
	CompressionDeflate  = 8
	CompressionPackBits = 32773
)

var compressionNames = map[uint16]string{
	CompressionNone:     "uncompressed",
	CompressionCCITT:    "CCITT Group 3",
	CompressionLZW:      "LZW",
	CompressionOldJPEG:  "old-style JPEG",
	CompressionJPEG:     "JPEG",
	CompressionDeflate:  "deflate",
	CompressionPackBits: "PackBits",
}

// invariantTable is the TIFF structural rulebook. The compression code's
// legal sample-depth sets mirror the role BMP compression modes play;
// old-style JPEG is the spec-legal-but-deprecated passthrough case.
type invariantTable struct {
	allowedDepths    map[uint16][]int
	passthrough      map[uint16]bool
	magic            uint16
	minFirstIFD      uint32
	minDimension     int
	softMaxDimension int
	hardMaxDimension int
}

var table = invariantTable{
	allowedDepths: map[uint16][]int{
		CompressionNone:     {1, 2, 4, 8, 16, 32},
		CompressionCCITT:    {1},
		CompressionLZW:      {4, 8, 16},
		CompressionJPEG:     {8},
		CompressionDeflate:  {1, 2, 4, 8, 16, 32},
		CompressionPackBits: {1, 2, 4, 8, 16},
	},
	passthrough: map[uint16]bool{
		CompressionOldJPEG: true,
	},
	magic:            42,
	minFirstIFD:      8, // the IFD cannot overlap the 8-byte header
	minDimension:     1,
	softMaxDimension: 30_000,
	hardMaxDimension: 1_000_000,
}

// CompressionName returns the specification name for a compression code.
func CompressionName(c uint16) string {
	if name, ok := compressionNames[c]; ok {
		return name
	}
	return "unknown"
}
