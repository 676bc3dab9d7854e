// Package dirfile provides typed, read-only access to dirfile time-series data.
//
// A dirfile is a directory holding a "format" metadata file and one raw file
// per field. Each field is a sequence of fixed-width samples grouped in frames;
// a field stores a fixed number of samples per frame (spf). This package opens
// a dirfile through a format engine, reports its geometry and reads whole
// fields as []float64 whatever their on-disk element type.
//
// # Basic Usage
//
//	df, err := dirfile.Open("/data/run42")
//	if err != nil {
//	    return err
//	}
//	defer df.Close()
//
//	fmt.Println(df.NFields(), df.NFrames())
//
//	values, err := df.Fetch("time")
//	if errors.Is(err, errs.ErrFieldNotFound) {
//	    // ...
//	}
//
// # Conversion
//
// Samples are converted to float64 according to their element type:
//
//   - 8, 16 and 32-bit integers and FLOAT32 convert exactly
//   - FLOAT64 passes through bit for bit
//   - UINT64 and INT64 convert exactly up to 2^53 in magnitude and round to
//     the nearest representable value (ties to even) above that
//   - STRING cells are parsed as decimal floating-point literals; a cell that
//     does not parse becomes 0
//
// COMPLEX64, COMPLEX128 and fields without a storable type (derived fields,
// constants declared as NULL) are not supported: Fetch reports
// errs.ErrUnsupportedType and GetData returns an empty vector.
//
// # Concurrency
//
// A Dirfile is not safe for concurrent use. FetchMany reads several fields in
// parallel by opening one handle per field.
package dirfile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arloliu/dirfile/engine"
	"github.com/arloliu/dirfile/errs"
	"github.com/arloliu/dirfile/format"
)

// Dirfile is an open, read-only dirfile.
//
// A Dirfile is obtained only from a successful Open and owns its engine
// handle until Close.
type Dirfile struct {
	path   string
	handle engine.Handle
	logger zerolog.Logger
	closed bool
}

// Open opens the dirfile at path read-only.
//
// Parameters:
//   - path: Directory of the dirfile
//   - opts: Optional configuration (WithEngine, WithLogger)
//
// Returns:
//   - *Dirfile: The open dirfile
//   - error: errs.ErrInvalidPath for an empty path or one containing a NUL
//     byte; engine failures wrapped with errs.ErrEngine
func Open(path string, opts ...Option) (*Dirfile, error) {
	if path == "" || containsNUL(path) {
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidPath, path)
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return open(path, cfg)
}

func open(path string, cfg *Config) (*Dirfile, error) {
	h, err := cfg.engine.Open(path, engine.ReadOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", errs.ErrEngine, path, err)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: open %s: engine returned no handle", errs.ErrEngine, path)
	}

	return &Dirfile{
		path:   path,
		handle: h,
		logger: cfg.logger.With().Str("path", path).Logger(),
	}, nil
}

func containsNUL(path string) bool {
	return strings.IndexByte(path, 0) >= 0
}

// Path returns the path the dirfile was opened with.
func (d *Dirfile) Path() string {
	return d.path
}

// NFields returns the number of fields declared in the format metadata.
// It returns 0 after Close.
func (d *Dirfile) NFields() uint {
	if d.closed {
		return 0
	}

	return d.handle.NFields()
}

// NFrames returns the number of frames as reported by the engine.
//
// A negative value is an engine-level error and is returned unchanged.
// It returns 0 after Close.
func (d *Dirfile) NFrames() int64 {
	if d.closed {
		return 0
	}

	return d.handle.NFrames()
}

// SPF returns the samples-per-frame of field, or 0 when the field is unknown
// or has no sampled data.
func (d *Dirfile) SPF(field string) uint {
	if d.closed {
		return 0
	}

	spf, err := d.handle.SPF(field)
	if err != nil {
		d.logger.Debug().Err(err).Str("field", field).Msg("samples per frame unavailable")
		return 0
	}

	return spf
}

// FieldType returns the element type of field, or format.TypeNull when the
// field is unknown.
func (d *Dirfile) FieldType(field string) format.ElementType {
	if d.closed {
		return format.TypeNull
	}

	typ, err := d.handle.NativeType(field)
	if err != nil {
		d.logger.Debug().Err(err).Str("field", field).Msg("element type unavailable")
		return format.TypeNull
	}

	return typ
}

// Fields returns the declared field names in format file order.
func (d *Dirfile) Fields() []string {
	if d.closed {
		return nil
	}

	return d.handle.FieldList()
}

// Close releases the engine handle. Calling Close more than once is a no-op.
func (d *Dirfile) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	if err := d.handle.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", errs.ErrEngine, d.path, err)
	}

	return nil
}

// fieldError tags an engine error raised while resolving field metadata.
func fieldError(field string, err error) error {
	switch {
	case errors.Is(err, errs.ErrFieldNotFound), errors.Is(err, errs.ErrClosed):
		return err
	case errors.Is(err, errs.ErrInvalidFieldName):
		return fmt.Errorf("%w: %w", errs.ErrFieldNotFound, err)
	default:
		return fmt.Errorf("%w: field %q: %w", errs.ErrEngine, field, err)
	}
}
