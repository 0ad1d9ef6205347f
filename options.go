package imagemeta

// Option configures behavior when opening image files.
//
// Options use the functional options pattern for clean, extensible APIs.
//
// Example:
//
//	img, err := imagemeta.Open("photo.png",
//	    imagemeta.WithStrictValidation(),
//	    imagemeta.WithLargeMetadataThreshold(4*1024*1024),
//	)
type Option func(*openOptions)

// openOptions holds configuration for opening files.
type openOptions struct {
	strictValidation bool // Fail Open on any validation error
	skipValidation   bool // Do not run the validator during Open
	skipAncillary    bool // Discard ancillary key/value pairs
	threshold        int  // Large-metadata threshold override (0 = default)
	maxAncillary     int  // Per-value ancillary size cap (0 = unlimited)
}

// defaultOptions returns the default configuration.
func defaultOptions() *openOptions {
	return &openOptions{
		strictValidation: false,
		skipValidation:   false,
		threshold:        0, // Use DefaultLargeMetadataThreshold
	}
}

// WithStrictValidation makes Open fail when the header breaks any
// structural invariant.
//
// By default, Open decodes whatever it can and attaches the full
// diagnostic report to Image.Report; deciding whether error entries abort
// the operation is the caller's policy. With strict validation enabled,
// any error entry fails Open with a *StrictValidationError carrying the
// report.
//
// Example:
//
//	img, err := imagemeta.Open("upload.bmp", imagemeta.WithStrictValidation())
//	// err != nil if the header is structurally illegal
func WithStrictValidation() Option {
	return func(o *openOptions) {
		o.strictValidation = true
	}
}

// WithoutValidation skips the validation pass during Open.
//
// Image.Report will be nil. Use this when you only need the decoded
// metadata and will validate later (or never):
//
//	img, err := imagemeta.Open("photo.png", imagemeta.WithoutValidation())
//	report := img.Validate() // run it on demand
func WithoutValidation() Option {
	return func(o *openOptions) {
		o.skipValidation = true
	}
}

// WithLargeMetadataThreshold overrides the byte-size cutoff above which
// the record's disposal takes the staged path.
//
// The default (DefaultLargeMetadataThreshold, 1 MB) comes from
// batch-processing measurements; tune it when your workload holds many
// records with large EXIF or ICC payloads.
//
// Example:
//
//	img, err := imagemeta.Open("scan.tiff",
//	    imagemeta.WithLargeMetadataThreshold(4*1024*1024),
//	)
func WithLargeMetadataThreshold(bytes int) Option {
	return func(o *openOptions) {
		o.threshold = bytes
	}
}

// WithoutAncillary discards ancillary key/value pairs after decoding.
//
// Standard fields (dimensions, blobs, the registered text fields) are kept;
// only the free-form ancillary map is dropped. Useful in batch pipelines
// that never read it and want the smaller footprint:
//
//	img, err := imagemeta.Open("photo.png", imagemeta.WithoutAncillary())
func WithoutAncillary() Option {
	return func(o *openOptions) {
		o.skipAncillary = true
	}
}

// WithMaxAncillarySize drops any single ancillary value longer than the
// given byte count. Hostile files can pack megabytes of text into ancillary
// chunks; this caps what a record retains from them.
//
//	img, err := imagemeta.Open("upload.png", imagemeta.WithMaxAncillarySize(4096))
func WithMaxAncillarySize(bytes int) Option {
	return func(o *openOptions) {
		o.maxAncillary = bytes
	}
}
