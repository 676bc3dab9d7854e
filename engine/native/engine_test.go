package native_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/dirfile/endian"
	"github.com/arloliu/dirfile/engine"
	"github.com/arloliu/dirfile/engine/native"
	"github.com/arloliu/dirfile/errs"
	"github.com/arloliu/dirfile/format"
	"github.com/arloliu/dirfile/internal/dirfiletest"
)

func openDirfile(t *testing.T, dir string) engine.Handle {
	t.Helper()

	eng, err := native.New()
	require.NoError(t, err)

	h, err := eng.Open(dir, engine.ReadOnly)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	return h
}

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}

	return out
}

func TestNew_InvalidIncludeDepth(t *testing.T) {
	_, err := native.New(native.WithMaxIncludeDepth(-1))
	require.Error(t, err)
}

func TestOpen_Errors(t *testing.T) {
	eng, err := native.New()
	require.NoError(t, err)

	t.Run("read write", func(t *testing.T) {
		_, err := eng.Open(t.TempDir(), engine.ReadWrite)
		require.ErrorIs(t, err, errs.ErrReadOnly)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := eng.Open(filepath.Join(t.TempDir(), "nope"), engine.ReadOnly)
		require.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("regular file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		_, err := eng.Open(path, engine.ReadOnly)
		require.Error(t, err)
	})

	t.Run("no format file", func(t *testing.T) {
		_, err := eng.Open(t.TempDir(), engine.ReadOnly)
		require.ErrorIs(t, err, errs.ErrNoFormatFile)
	})

	t.Run("field outside directory", func(t *testing.T) {
		dir := dirfiletest.New(t).Line("../../etc/x RAW UINT8 1").Build()

		_, err := eng.Open(dir, engine.ReadOnly)
		require.ErrorIs(t, err, errs.ErrInvalidFieldName)
	})

	t.Run("syntax error", func(t *testing.T) {
		dir := dirfiletest.New(t).Line("x RAW QUAD 1").Build()

		_, err := eng.Open(dir, engine.ReadOnly)
		require.ErrorIs(t, err, errs.ErrFormatSyntax)
	})
}

func TestHandle_Geometry(t *testing.T) {
	b := dirfiletest.New(t)
	dirfiletest.Raw(b, "time", format.TypeFloat64, 2, seq(20))
	dirfiletest.Raw(b, "flag", format.TypeUint8, 1, []uint8{0, 1, 0, 1, 0, 1, 0, 1, 0, 1})
	b.Line("gain CONST FLOAT64 2.5")
	b.Line("scaled LINCOM time 2 0")
	h := openDirfile(t, b.Build())

	require.Equal(t, uint(4), h.NFields())
	require.Equal(t, int64(10), h.NFrames())
	require.Equal(t, []string{"time", "flag", "gain", "scaled"}, h.FieldList())

	spf, err := h.SPF("time")
	require.NoError(t, err)
	require.Equal(t, uint(2), spf)

	spf, err = h.SPF("gain")
	require.NoError(t, err)
	require.Equal(t, uint(0), spf)

	typ, err := h.NativeType("flag")
	require.NoError(t, err)
	require.Equal(t, format.TypeUint8, typ)

	typ, err = h.NativeType("scaled")
	require.NoError(t, err)
	require.Equal(t, format.TypeNull, typ)

	_, err = h.SPF("nonexistent_field")
	require.ErrorIs(t, err, errs.ErrFieldNotFound)

	_, err = h.NativeType("")
	require.ErrorIs(t, err, errs.ErrInvalidFieldName)
}

func TestHandle_NFrames(t *testing.T) {
	t.Run("partial frame", func(t *testing.T) {
		b := dirfiletest.New(t)
		dirfiletest.Raw(b, "x", format.TypeInt16, 3, []int16{1, 2, 3, 4, 5, 6, 7})

		require.Equal(t, int64(2), openDirfile(t, b.Build()).NFrames())
	})

	t.Run("reference directive", func(t *testing.T) {
		b := dirfiletest.New(t)
		dirfiletest.Raw(b, "long", format.TypeUint8, 1, make([]uint8, 100))
		dirfiletest.Raw(b, "short", format.TypeUint8, 1, make([]uint8, 7))
		b.Line("/REFERENCE short")

		require.Equal(t, int64(7), openDirfile(t, b.Build()).NFrames())
	})

	t.Run("missing raw file", func(t *testing.T) {
		dir := dirfiletest.New(t).Line("x RAW FLOAT64 1").Build()

		require.Equal(t, int64(-1), openDirfile(t, dir).NFrames())
	})

	t.Run("no raw fields", func(t *testing.T) {
		dir := dirfiletest.New(t).Line("c CONST UINT8 1").Build()

		require.Equal(t, int64(0), openDirfile(t, dir).NFrames())
	})

	t.Run("compressed reference", func(t *testing.T) {
		b := dirfiletest.New(t).Compression(format.CompressionZstd)
		dirfiletest.Raw(b, "x", format.TypeFloat32, 4, make([]float32, 40))

		require.Equal(t, int64(10), openDirfile(t, b.Build()).NFrames())
	})
}

func TestHandle_GetData(t *testing.T) {
	b := dirfiletest.New(t)
	dirfiletest.Raw(b, "time", format.TypeFloat64, 2, seq(20))
	dirfiletest.Raw(b, "count", format.TypeInt32, 1, []int32{-5, -4, -3, -2, -1, 0, 1, 2, 3, 4})
	h := openDirfile(t, b.Build())

	t.Run("whole field", func(t *testing.T) {
		out := make([]float64, 20)
		n, err := h.GetData("time", engine.Request{NumFrames: 10}, out)
		require.NoError(t, err)
		require.Equal(t, 20, n)
		require.Equal(t, seq(20), out)
	})

	t.Run("frame and sample offsets", func(t *testing.T) {
		out := make([]float64, 3)
		n, err := h.GetData("time", engine.Request{FirstFrame: 2, FirstSample: 1, NumSamples: 3}, out)
		require.NoError(t, err)
		require.Equal(t, 3, n)
		require.Equal(t, []float64{5, 6, 7}, out)
	})

	t.Run("past end is short", func(t *testing.T) {
		out := make([]int32, 6)
		n, err := h.GetData("count", engine.Request{FirstFrame: 7, NumFrames: 6}, out)
		require.NoError(t, err)
		require.Equal(t, 3, n)
		require.Equal(t, []int32{2, 3, 4, 0, 0, 0}, out)
	})

	t.Run("beyond data", func(t *testing.T) {
		out := make([]int32, 2)
		n, err := h.GetData("count", engine.Request{FirstFrame: 50, NumFrames: 2}, out)
		require.NoError(t, err)
		require.Equal(t, 0, n)
	})

	t.Run("empty request", func(t *testing.T) {
		n, err := h.GetData("count", engine.Request{}, []int32{})
		require.NoError(t, err)
		require.Equal(t, 0, n)
	})

	t.Run("buffer mismatch", func(t *testing.T) {
		_, err := h.GetData("count", engine.Request{NumFrames: 1}, make([]float64, 1))
		require.ErrorIs(t, err, errs.ErrBufferMismatch)
	})

	t.Run("short buffer", func(t *testing.T) {
		_, err := h.GetData("time", engine.Request{NumFrames: 2}, make([]float64, 3))
		require.ErrorIs(t, err, errs.ErrShortBuffer)
	})

	t.Run("negative start", func(t *testing.T) {
		_, err := h.GetData("count", engine.Request{FirstFrame: -1, NumFrames: 1}, make([]int32, 1))
		require.Error(t, err)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := h.GetData("nonexistent_field", engine.Request{NumFrames: 1}, make([]int32, 1))
		require.ErrorIs(t, err, errs.ErrFieldNotFound)
	})
}

func TestHandle_GetData_NotSampled(t *testing.T) {
	dir := dirfiletest.New(t).
		Line("gain CONST FLOAT64 2.5").
		Line("scaled LINCOM gain 2 0").
		Build()
	h := openDirfile(t, dir)

	_, err := h.GetData("gain", engine.Request{NumSamples: 1}, make([]float64, 1))
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = h.GetData("scaled", engine.Request{NumSamples: 1}, make([]float64, 1))
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestHandle_GetData_BigEndian(t *testing.T) {
	b := dirfiletest.New(t).Endian(endian.GetBigEndianEngine())
	dirfiletest.Raw(b, "u16", format.TypeUint16, 1, []uint16{0x0102, 0xfffe})
	dirfiletest.Raw(b, "i64", format.TypeInt64, 1, []int64{-1, 1 << 40})
	dirfiletest.Raw(b, "f32", format.TypeFloat32, 1, []float32{1.5, -0.25})
	h := openDirfile(t, b.Build())

	u16 := make([]uint16, 2)
	_, err := h.GetData("u16", engine.Request{NumFrames: 2}, u16)
	require.NoError(t, err)
	require.Equal(t, []uint16{0x0102, 0xfffe}, u16)

	i64 := make([]int64, 2)
	_, err = h.GetData("i64", engine.Request{NumFrames: 2}, i64)
	require.NoError(t, err)
	require.Equal(t, []int64{-1, 1 << 40}, i64)

	f32 := make([]float32, 2)
	_, err = h.GetData("f32", engine.Request{NumFrames: 2}, f32)
	require.NoError(t, err)
	require.Equal(t, []float32{1.5, -0.25}, f32)
}

func TestHandle_GetData_Compressed(t *testing.T) {
	for _, c := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			b := dirfiletest.New(t).Compression(c)
			dirfiletest.Raw(b, "time", format.TypeFloat64, 2, seq(200))
			h := openDirfile(t, b.Build())

			require.Equal(t, int64(100), h.NFrames())

			out := make([]float64, 4)
			n, err := h.GetData("time", engine.Request{FirstFrame: 99, NumFrames: 2}, out)
			require.NoError(t, err)
			require.Equal(t, 2, n)
			require.Equal(t, []float64{198, 199, 0, 0}, out)

			// served from the payload cache
			n, err = h.GetData("time", engine.Request{NumFrames: 1}, out)
			require.NoError(t, err)
			require.Equal(t, 2, n)
			require.Equal(t, []float64{0, 1}, out[:2])
		})
	}
}

func TestHandle_GetData_Text(t *testing.T) {
	b := dirfiletest.New(t)
	b.Text("label", 1, 8, []string{"1.5", "abc", "", "12345678"})
	h := openDirfile(t, b.Build())

	typ, err := h.NativeType("label")
	require.NoError(t, err)
	require.Equal(t, format.TypeString, typ)
	require.Equal(t, int64(4), h.NFrames())

	out := make([]string, 4)
	n, err := h.GetData("label", engine.Request{NumFrames: 4}, out)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []string{"1.5", "abc", "", "12345678"}, out)
}

func TestHandle_Include(t *testing.T) {
	b := dirfiletest.New(t)
	b.Fragment("sub/format", "/ENDIAN big", "inner RAW UINT32 1")
	b.Line("/INCLUDE sub/format")
	dirfiletest.Raw(b, "outer", format.TypeUint8, 1, []uint8{9, 8})
	dir := b.Build()

	data := encodeBigUint32(7, 11)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "inner"), data, 0o644))

	h := openDirfile(t, dir)
	require.Equal(t, []string{"inner", "outer"}, h.FieldList())

	out := make([]uint32, 2)
	n, err := h.GetData("inner", engine.Request{NumFrames: 2}, out)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []uint32{7, 11}, out)
}

func TestHandle_Close(t *testing.T) {
	b := dirfiletest.New(t)
	dirfiletest.Raw(b, "x", format.TypeUint8, 1, []uint8{1})
	eng, err := native.New()
	require.NoError(t, err)

	h, err := eng.Open(b.Build(), engine.ReadOnly)
	require.NoError(t, err)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	require.Equal(t, uint(0), h.NFields())
	require.Equal(t, int64(-1), h.NFrames())
	require.Nil(t, h.FieldList())

	_, err = h.SPF("x")
	require.ErrorIs(t, err, errs.ErrClosed)

	_, err = h.GetData("x", engine.Request{NumFrames: 1}, make([]uint8, 1))
	require.ErrorIs(t, err, errs.ErrClosed)
}

func encodeBigUint32(values ...uint32) []byte {
	out := make([]byte, 0, len(values)*4)
	for _, v := range values {
		out = endian.GetBigEndianEngine().AppendUint32(out, v)
	}

	return out
}
