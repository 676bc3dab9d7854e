package dirfile

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/dirfile/decode"
	"github.com/arloliu/dirfile/engine"
	"github.com/arloliu/dirfile/errs"
)

// Fetch reads every sample of field as float64.
//
// The result holds exactly NFrames()*SPF(field) values in sample order. When
// the engine returns fewer samples than that, the missing tail is zero.
// A field with no samples yields an empty, non-nil slice and a nil error.
//
// Errors:
//   - errs.ErrFieldNotFound: field is not declared
//   - errs.ErrUnsupportedType: field has no convertible element type
//   - errs.ErrGeometryOverflow: the sample count does not fit in an int
//   - errs.ErrEngine: the engine failed, including a negative frame count
//   - errs.ErrClosed: the dirfile was closed
func (d *Dirfile) Fetch(field string) ([]float64, error) {
	if d.closed {
		return nil, errs.ErrClosed
	}

	typ, err := d.handle.NativeType(field)
	if err != nil {
		return nil, fieldError(field, err)
	}

	strategy, err := decode.Select(typ)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", field, err)
	}

	spf, err := d.handle.SPF(field)
	if err != nil {
		return nil, fieldError(field, err)
	}

	nframes := d.handle.NFrames()
	if nframes < 0 {
		return nil, fmt.Errorf("%w: frame count %d", errs.ErrEngine, nframes)
	}

	total, err := sampleCount(nframes, spf)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", field, err)
	}
	if total == 0 {
		return []float64{}, nil
	}

	buf := strategy.NewBuffer(total)
	n, err := d.handle.GetData(field, engine.Request{NumFrames: uint64(nframes)}, buf.Backing())
	if err != nil {
		return nil, fmt.Errorf("%w: read field %q: %w", errs.ErrEngine, field, err)
	}

	if n < total {
		d.logger.Debug().
			Str("field", field).
			Int("read", n).
			Int("expected", total).
			Msg("short read, zero filling tail")
	}

	out, defaulted := buf.AppendFloat64s(make([]float64, 0, total))
	if defaulted > 0 {
		d.logger.Debug().
			Str("field", field).
			Int("cells", defaulted).
			Msg("unparseable text cells read as 0")
	}

	return out, nil
}

// GetData reads every sample of field as float64.
//
// It behaves like Fetch but never fails: unknown fields, unsupported element
// types and engine errors are logged and yield an empty, non-nil slice.
func (d *Dirfile) GetData(field string) []float64 {
	out, err := d.Fetch(field)
	if err == nil {
		return out
	}

	event := d.logger.Error()
	if isSoft(err) {
		event = d.logger.Warn()
	}
	event.Err(err).Str("field", field).Msg("fetch failed")

	return []float64{}
}

// isSoft reports whether err only concerns the requested field.
func isSoft(err error) bool {
	return errors.Is(err, errs.ErrFieldNotFound) || errors.Is(err, errs.ErrUnsupportedType)
}

// sampleCount returns nframes*spf, rejecting products that overflow int.
func sampleCount(nframes int64, spf uint) (int, error) {
	if nframes == 0 || spf == 0 {
		return 0, nil
	}
	if uint64(nframes) > uint64(math.MaxInt)/uint64(spf) {
		return 0, fmt.Errorf("%w: %d frames of %d samples", errs.ErrGeometryOverflow, nframes, spf)
	}

	return int(nframes) * int(spf), nil
}

// FetchMany opens the dirfile at path once per field and fetches the fields
// concurrently, at most WithConcurrency of them at a time.
//
// Unknown fields and fields of an unsupported type are logged and map to an
// empty slice, like GetData. Any other error cancels the remaining fetches
// and is returned together with a nil map. Duplicate names in fields are
// fetched once.
//
// Parameters:
//   - ctx: Context for cancellation
//   - path: Directory of the dirfile
//   - fields: Names of the fields to read
//   - opts: Optional configuration (WithEngine, WithLogger, WithConcurrency)
//
// Returns:
//   - map[string][]float64: Values per field name
//   - error: The first Open or engine error, or the context error
func FetchMany(ctx context.Context, path string, fields []string, opts ...Option) (map[string][]float64, error) {
	if path == "" || containsNUL(path) {
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidPath, path)
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	unique := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		unique = append(unique, f)
	}

	results := make([][]float64, len(unique))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)

	for i, field := range unique {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			df, err := open(path, cfg)
			if err != nil {
				return err
			}
			defer df.Close()

			values, err := df.Fetch(field)
			if isSoft(err) {
				cfg.logger.Warn().Err(err).Str("path", path).Str("field", field).Msg("fetch failed")
				values, err = []float64{}, nil
			}
			if err != nil {
				return err
			}
			results[i] = values

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]float64, len(unique))
	for i, field := range unique {
		out[field] = results[i]
	}

	return out, nil
}
