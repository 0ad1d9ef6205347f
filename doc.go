// Package imagemeta provides format-agnostic image header metadata
// extraction and structural validation.
//
// imagemeta reads only the header region of raster container files, never
// pixel data, and answers three questions: what the file claims to be,
// whether that claim is structurally coherent, and how much memory the
// claim's metadata costs to keep around.
//
// # Quick Start
//
// Reading metadata from an image file:
//
//	img, err := imagemeta.Open("photo.bmp")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer img.Close()
//
//	fmt.Printf("%s %dx%d %d-bit\n", img.Format, img.Meta.Width(), img.Meta.Height(), img.Meta.BitDepth())
//	if !img.Report.IsValid() {
//		fmt.Print(img.Report)
//	}
//
// # Supported Formats
//
//   - BMP: BITMAPCOREHEADER through BITMAPV5HEADER, channel masks, palettes
//   - PNG: IHDR, PLTE, tEXt/iTXt, eXIf, iCCP, tIME chunks
//   - TIFF: first-IFD metadata in either byte order
//   - WebP: VP8/VP8L/VP8X headers, EXIF/XMP/ICCP chunks
//
// # Philosophy
//
// imagemeta embodies three core principles:
//
// 1. Diagnose, don't throw: a structurally broken header is data, not an
// error. Validation is a pure pass that reports every independent problem
// at once; only files too damaged to populate a record at all fail Open.
//
// 2. Exclusive ownership: each Image owns exactly one metadata Record.
// Sharing requires Clone; disposal retires the record exactly once no
// matter how many goroutines race to do it.
//
// 3. Footprint awareness: every record can estimate its own heap cost.
// Records above the large-metadata threshold are disposed in cooperative
// stages so that clearing thousands of them does not monopolize a
// processor.
//
// # Architecture
//
// The library uses a layered architecture:
//
//	[Image]            - Entry point with Open()
//	  ├─ [Record]      - Format-agnostic metadata + lifecycle
//	  │    └─ [Extension] - Per-format header mirror (palette, masks, chunks)
//	  └─ [ValidationResult] - Structural diagnosis
//
// Format-specific decoders and validators implement common interfaces and
// register themselves, making it easy to add new formats without changing
// the public API.
//
// # Validation
//
// Open runs the format's validator automatically. Errors mark structurally
// illegal headers (a 4-bit run-length mode declared on an 8-bit image,
// overlapping channel masks, palette missing for an indexed depth);
// warnings mark legal-but-risky ones (oversized dimensions, passthrough
// codec modes). Whether errors abort your pipeline is your policy:
//
//	img, err := imagemeta.Open("upload.bmp", imagemeta.WithStrictValidation())
//	// err != nil if the header breaks any structural invariant
//
// # Lifecycle
//
// Records hold potentially large blobs (EXIF, ICC profiles, palettes,
// ancillary maps). Close disposes the record synchronously; CloseAsync
// takes the staged path for large records, yielding between stages:
//
//	defer img.Close()
//
// Batch work uses the concurrent helpers:
//
//	images, err := imagemeta.OpenMany(ctx, paths...)
//	...
//	imagemeta.CloseMany(ctx, images...)
package imagemeta
