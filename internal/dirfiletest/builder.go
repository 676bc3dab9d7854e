// Package dirfiletest builds dirfiles on disk for tests.
package dirfiletest

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dirfile/compress"
	"github.com/arloliu/dirfile/encoding"
	"github.com/arloliu/dirfile/endian"
	"github.com/arloliu/dirfile/format"
)

// Builder assembles a dirfile in a temporary directory.
//
// Format lines are buffered and written by Build; raw files are written
// immediately using the byte order and compression currently selected.
type Builder struct {
	tb          testing.TB
	dir         string
	lines       []string
	engine      endian.EndianEngine
	compression format.CompressionType
}

// New creates a builder rooted at a fresh temporary directory.
func New(tb testing.TB) *Builder {
	tb.Helper()

	return &Builder{
		tb:          tb,
		dir:         tb.TempDir(),
		engine:      endian.GetLittleEndianEngine(),
		compression: format.CompressionNone,
	}
}

// Dir returns the dirfile directory.
func (b *Builder) Dir() string {
	return b.dir
}

// Line appends a verbatim line to the format file.
func (b *Builder) Line(line string) *Builder {
	b.lines = append(b.lines, line)
	return b
}

// Endian sets the byte order of subsequently written raw files and emits the
// matching /ENDIAN directive.
func (b *Builder) Endian(engine endian.EndianEngine) *Builder {
	b.engine = engine
	return b.Line("/ENDIAN " + endian.Name(engine))
}

// Compression sets the codec of subsequently written raw files. No directive
// is emitted; engines find compressed files by suffix.
func (b *Builder) Compression(c format.CompressionType) *Builder {
	b.compression = c
	return b
}

// WriteFile writes data as the raw file of field, compressing it with the
// current codec.
func (b *Builder) WriteFile(field string, data []byte) *Builder {
	b.tb.Helper()

	codec, err := compress.GetCodec(b.compression)
	require.NoError(b.tb, err)

	payload, err := codec.Compress(data)
	require.NoError(b.tb, err)

	path := filepath.Join(b.dir, field+b.compression.Suffix())
	require.NoError(b.tb, os.WriteFile(path, payload, 0o644))

	return b
}

// Text declares a RAW STRING field and writes its cells.
func (b *Builder) Text(field string, spf uint, width int, cells []string) *Builder {
	b.tb.Helper()

	b.Line(field + " RAW STRING " + uitoa(spf) + " " + uitoa(uint(width)))

	return b.WriteFile(field, encoding.AppendText(nil, cells, width))
}

// Fragment writes an auxiliary format file that can be pulled in with
// /INCLUDE.
func (b *Builder) Fragment(name string, lines ...string) *Builder {
	b.tb.Helper()

	path := filepath.Join(b.dir, name)
	require.NoError(b.tb, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(b.tb, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	return b
}

// Build writes the format file and returns the dirfile directory.
func (b *Builder) Build() string {
	b.tb.Helper()

	content := strings.Join(b.lines, "\n") + "\n"
	require.NoError(b.tb, os.WriteFile(filepath.Join(b.dir, "format"), []byte(content), 0o644))

	return b.dir
}

// Raw declares a RAW field of type typ and writes samples as its raw file.
func Raw[T encoding.Numeric](b *Builder, field string, typ format.ElementType, spf uint, samples []T) *Builder {
	b.tb.Helper()

	require.Equal(b.tb, typ.Size(), encoding.SampleSize[T](), "sample width of %s", typ)

	b.Line(field + " RAW " + typ.String() + " " + uitoa(spf))

	return b.WriteFile(field, encoding.AppendSamples(b.engine, nil, samples))
}

func uitoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
