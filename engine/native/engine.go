// Package native implements a pure-Go format engine for dirfiles.
//
// The engine understands the subset of the dirfile format needed to locate
// and read sampled data:
//
//   - RAW fields with any numeric element type, in full ("FLOAT64") or
//     legacy single-letter ("d") form
//   - RAW STRING fields of fixed-length, NUL padded text cells, declared as
//     "name RAW STRING <spf> <width>"
//   - CONST and STRING scalar fields, which are typed but have no samples
//   - /ENDIAN, /ENCODING, /REFERENCE and /INCLUDE directives
//
// Every other field type (LINCOM, LINTERP, BIT, PHASE, ...) is declared and
// counted with native type format.TypeNull; derived values are not computed.
//
// Raw files may be stored uncompressed or compressed with zstd, S2 or LZ4,
// recognised by their ".zst", ".s2" and ".lz4" suffixes.
package native

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arloliu/dirfile/endian"
	"github.com/arloliu/dirfile/engine"
	"github.com/arloliu/dirfile/errs"
	"github.com/arloliu/dirfile/format"
	"github.com/arloliu/dirfile/internal/options"
)

// DefaultMaxIncludeDepth bounds /INCLUDE nesting.
const DefaultMaxIncludeDepth = 8

// Engine opens dirfiles stored on the local file system.
type Engine struct {
	logger          zerolog.Logger
	maxIncludeDepth int
}

var _ engine.Engine = (*Engine)(nil)

// Option configures an Engine.
type Option = options.Option[*Engine]

// WithLogger sets the logger used for parser diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(e *Engine) {
		e.logger = logger
	})
}

// WithMaxIncludeDepth sets the maximum /INCLUDE nesting depth.
func WithMaxIncludeDepth(depth int) Option {
	return options.New(func(e *Engine) error {
		if depth < 0 {
			return fmt.Errorf("invalid include depth %d", depth)
		}
		e.maxIncludeDepth = depth

		return nil
	})
}

// New creates a native engine.
//
// Parameters:
//   - opts: Optional configuration functions
//
// Returns:
//   - *Engine: The configured engine
//   - error: An error if an option is invalid
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:          zerolog.Nop(),
		maxIncludeDepth: DefaultMaxIncludeDepth,
	}

	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

// Open parses the format file of the dirfile at path.
//
// Returns errs.ErrReadOnly for any flag other than engine.ReadOnly,
// errs.ErrNoFormatFile when path has no format file, and errs.ErrFormatSyntax
// or errs.ErrDuplicateField for malformed metadata.
func (e *Engine) Open(path string, flags engine.OpenFlag) (engine.Handle, error) {
	if flags != engine.ReadOnly {
		return nil, errs.ErrReadOnly
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open dirfile: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open dirfile: %s is not a directory", path)
	}

	formatPath := filepath.Join(path, FormatFileName)
	if _, err := os.Stat(formatPath); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrNoFormatFile, path, err)
	}

	p := newParser(e.logger, e.maxIncludeDepth)
	root := fragmentState{
		dir:         path,
		engine:      endian.GetLittleEndianEngine(),
		compression: format.CompressionNone,
	}
	if err := p.parseFile(formatPath, root); err != nil {
		return nil, err
	}

	ref, err := p.referenceEntry()
	if err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("path", path).
		Int("fields", p.tracker.Count()).
		Bool("hash_collision", p.tracker.HasCollision()).
		Msg("parsed format file")

	return &handle{
		path:      path,
		logger:    e.logger,
		entries:   p.entries,
		index:     p.index,
		names:     p.tracker.Names(),
		reference: ref,
		cache:     make(payloadCache),
	}, nil
}
