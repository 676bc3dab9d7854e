package native

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dirfile/compress"
	"github.com/arloliu/dirfile/encoding"
	"github.com/arloliu/dirfile/endian"
	"github.com/arloliu/dirfile/format"
)

func rawEntry(dir string, c format.CompressionType) *entry {
	return &entry{
		name:        "x",
		kind:        kindRaw,
		typ:         format.TypeUint16,
		spf:         1,
		width:       2,
		dir:         dir,
		engine:      endian.GetLittleEndianEngine(),
		compression: c,
	}
}

func writeCompressed(t *testing.T, path string, c format.CompressionType, data []byte) {
	t.Helper()

	codec, err := compress.GetCodec(c)
	require.NoError(t, err)
	payload, err := codec.Compress(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0o644))
}

func TestLocateRaw(t *testing.T) {
	dir := t.TempDir()
	data := encoding.AppendSamples(endian.GetLittleEndianEngine(), nil, []uint16{1, 2, 3})

	_, err := locateRaw(rawEntry(dir, format.CompressionNone))
	require.ErrorIs(t, err, os.ErrNotExist)

	writeCompressed(t, filepath.Join(dir, "x.lz4"), format.CompressionLZ4, data)
	rf, err := locateRaw(rawEntry(dir, format.CompressionNone))
	require.NoError(t, err)
	require.Equal(t, format.CompressionLZ4, rf.compression)

	// an uncompressed file wins when no encoding is declared
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x"), data, 0o644))
	rf, err = locateRaw(rawEntry(dir, format.CompressionNone))
	require.NoError(t, err)
	require.Equal(t, format.CompressionNone, rf.compression)

	// the declared encoding is tried first
	rf, err = locateRaw(rawEntry(dir, format.CompressionLZ4))
	require.NoError(t, err)
	require.Equal(t, format.CompressionLZ4, rf.compression)
	require.Equal(t, filepath.Join(dir, "x.lz4"), rf.path)
}

func TestPayloadCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.zst")
	le := endian.GetLittleEndianEngine()

	writeCompressed(t, path, format.CompressionZstd, encoding.AppendSamples(le, nil, []uint16{1, 2, 3}))

	e := rawEntry(dir, format.CompressionZstd)
	cache := make(payloadCache)

	rf, err := locateRaw(e)
	require.NoError(t, err)

	n, err := cache.sampleCount(rf, e.width)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
	require.Len(t, cache, 1)

	out := make([]uint16, 3)
	read, err := cache.readSamples(e, rf, 1, 3, out)
	require.NoError(t, err)
	require.Equal(t, 2, read)
	require.Equal(t, []uint16{2, 3, 0}, out)

	// rewriting the file invalidates the cached payload
	writeCompressed(t, path, format.CompressionZstd, encoding.AppendSamples(le, nil, []uint16{9, 8, 7, 6, 5}))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	rf, err = locateRaw(e)
	require.NoError(t, err)
	n, err = cache.sampleCount(rf, e.width)
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
}

func TestReadSamples_Uncompressed(t *testing.T) {
	dir := t.TempDir()
	data := encoding.AppendSamples(endian.GetLittleEndianEngine(), nil, []uint16{10, 20, 30, 40})
	// a trailing partial sample is ignored
	data = append(data, 0xff)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x"), data, 0o644))

	e := rawEntry(dir, format.CompressionNone)
	rf, err := locateRaw(e)
	require.NoError(t, err)

	cache := make(payloadCache)
	n, err := cache.sampleCount(rf, e.width)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)

	out := make([]uint16, 3)
	read, err := cache.readSamples(e, rf, 2, 3, out)
	require.NoError(t, err)
	require.Equal(t, 2, read)
	require.Equal(t, []uint16{30, 40, 0}, out)
	require.Empty(t, cache)

	read, err = cache.readSamples(e, rf, 4, 1, out)
	require.NoError(t, err)
	require.Equal(t, 0, read)
}

func TestDecodeSamples_Mismatch(t *testing.T) {
	dec := encoding.NewRawDecoder(endian.GetLittleEndianEngine())

	_, err := decodeSamples(dec, []complex64{0}, 1, []byte{0, 0, 0, 0, 0, 0, 0, 0}, 8)
	require.Error(t, err)
}
