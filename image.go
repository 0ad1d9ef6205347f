package imagemeta

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/imagemeta/internal/registry"

	// Format packages register their decoders and validators in init.
	_ "github.com/simonhull/imagemeta/internal/bmp"
	_ "github.com/simonhull/imagemeta/internal/png"
	_ "github.com/simonhull/imagemeta/internal/tiff"
	_ "github.com/simonhull/imagemeta/internal/webp"
)

// Image represents an opened image file with decoded header metadata.
//
// Image provides the detected format, the owned metadata Record, and the
// structural validation report. Only the header region of the file is
// read; pixel data never is.
//
// Each Image exclusively owns its Record: the record is never aliased
// between two images, and Close retires it. Share metadata across owners
// with Record.Clone, never by copying the pointer.
//
// Always call Close (or CloseAsync) when done:
//
//	img, err := imagemeta.Open("photo.bmp")
//	if err != nil {
//		return err
//	}
//	defer img.Close()
type Image struct {
	// Path to the image file
	Path string

	// Detected format (BMP, PNG, TIFF, WebP)
	Format Format

	// File size in bytes
	Size int64

	// Meta is the decoded metadata record, exclusively owned by this Image.
	Meta *Record

	// Report is the structural validation report, or nil when Open ran
	// with WithoutValidation.
	Report *ValidationResult

	// Internal state (unexported)
	reader io.ReaderAt
}

// StrictValidationError is returned by Open under WithStrictValidation
// when the header breaks a structural invariant. It carries the full
// report so callers still see every violation at once.
type StrictValidationError struct {
	Path   string
	Report *ValidationResult
}

func (e *StrictValidationError) Error() string {
	return fmt.Sprintf("%s: header breaks %d structural invariant(s): %s",
		e.Path, len(e.Report.Errors), e.Report.Errors[0])
}

// Open opens an image file, decodes its header metadata, and validates it.
//
// Supported formats: BMP, PNG, TIFF, WebP.
//
// Open reads only the header region: dimensions, depth, palettes, masks,
// EXIF/XMP/ICC payloads, ancillary text. A structurally illegal header is
// not an error: the record is populated as declared and every violation
// lands in Image.Report. Open fails only when the file cannot be read, the
// format is unrecognized, or the header is too damaged to decode at all.
//
// Options customize the behavior:
//
//	img, err := imagemeta.Open("photo.bmp",
//	    imagemeta.WithStrictValidation(),
//	)
//
// Example:
//
//	img, err := imagemeta.Open("photo.bmp")
//	if err != nil {
//		return err
//	}
//	defer img.Close()
//	fmt.Printf("%s %dx%d\n", img.Format, img.Meta.Width(), img.Meta.Height())
func Open(path string, opts ...Option) (*Image, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	img, err := openReader(f, stat.Size(), path, options)
	if err != nil {
		f.Close()
		return nil, err
	}
	return img, nil
}

// openReader opens from an io.ReaderAt (internal, for testing)
func openReader(r io.ReaderAt, size int64, path string, options *openOptions) (*Image, error) {
	format, err := DetectFormat(r, size, path)
	if err != nil {
		return nil, err
	}

	dec := registry.Get(format)
	if dec == nil {
		return nil, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("no decoder available for format %s", format),
		}
	}

	rec, err := dec.Decode(r, size, path)
	if err != nil {
		return nil, fmt.Errorf("decode %s header: %w", format, err)
	}

	if options.threshold > 0 {
		if err := rec.SetLargeMetadataThreshold(options.threshold); err != nil {
			return nil, err
		}
	}

	if err := trimAncillary(rec, options); err != nil {
		return nil, err
	}

	img := &Image{
		Path:   path,
		Format: format,
		Size:   size,
		Meta:   rec,
		reader: r,
	}

	if !options.skipValidation {
		img.Report = Validate(format, rec)
		if options.strictValidation && !img.Report.IsValid() {
			rec.Dispose()
			return nil, &StrictValidationError{Path: path, Report: img.Report}
		}
	}

	return img, nil
}

// trimAncillary applies the ancillary-map options: drop the whole map, or
// drop individual values over the configured size cap.
func trimAncillary(rec *Record, options *openOptions) error {
	if !options.skipAncillary && options.maxAncillary <= 0 {
		return nil
	}

	var drop []string
	for k, v := range rec.AllCustom() {
		if options.skipAncillary || len(v) > options.maxAncillary {
			drop = append(drop, k)
		}
	}
	for _, k := range drop {
		if err := rec.SetCustom(k, ""); err != nil {
			return err
		}
	}
	return nil
}

// Validate re-runs the structural validator against the current record
// state and replaces Image.Report.
//
// Useful after mutating the record, or after Open with WithoutValidation.
func (img *Image) Validate() *ValidationResult {
	img.Report = Validate(img.Format, img.Meta)
	return img.Report
}

// Close releases the file handle and disposes the metadata record
// synchronously.
//
// Close is idempotent. After Close, the record's fallible operations
// return *DisposedError.
func (img *Image) Close() error {
	if img.Meta != nil {
		img.Meta.Dispose()
	}
	return img.closeReader()
}

// CloseAsync releases the file handle and disposes the metadata record
// cooperatively: records above the large-metadata threshold are cleared in
// stages, yielding between them, so closing many large images concurrently
// does not monopolize one processor.
//
// Equivalent to Close for small records. Safe to call concurrently with
// Close; the record is cleared exactly once.
func (img *Image) CloseAsync() error {
	if img.Meta != nil {
		img.Meta.DisposeAsync()
	}
	return img.closeReader()
}

func (img *Image) closeReader() error {
	if closer, ok := img.reader.(io.Closer); ok {
		img.reader = nil
		return closer.Close()
	}
	return nil
}

// OpenContext opens a file with context support for cancellation.
//
// This is a thin wrapper around Open() that checks context before starting.
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//
//	img, err := imagemeta.OpenContext(ctx, "photo.bmp")
func OpenContext(ctx context.Context, path string, opts ...Option) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Open(path, opts...)
}

// OpenMany opens multiple image files concurrently.
//
// Files are decoded in parallel using up to runtime.NumCPU() goroutines.
// Results are returned in the same order as the input paths.
//
// If any file fails to open, all successfully opened files are closed and
// an error is returned.
//
// Example:
//
//	images, err := imagemeta.OpenMany(ctx, paths...)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer imagemeta.CloseMany(context.Background(), images...)
func OpenMany(ctx context.Context, paths ...string) ([]*Image, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	results := make([]*Image, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			img, err := Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			results[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, img := range results {
			if img != nil {
				img.Close()
			}
		}
		return nil, err
	}

	return results, nil
}

// CloseMany disposes multiple images concurrently.
//
// Each image's record is still cleared as a unit (disposal of one record
// is never split across workers), but independent records dispose in
// parallel, and large records yield between clearing stages so the batch
// shares the processors fairly. The first close error, if any, is
// returned after every image has been closed.
func CloseMany(ctx context.Context, images ...*Image) error {
	if len(images) == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, img := range images {
		if img == nil {
			continue
		}
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return img.CloseAsync()
		})
	}

	return g.Wait()
}
