package dirfile

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/dirfile/errs"
	"github.com/arloliu/dirfile/format"
	"github.com/arloliu/dirfile/internal/enginetest"
)

// fakeEngine serves "run": 3 frames of every numeric type at 2 samples per
// frame plus a few fields with unusual geometry.
func fakeEngine() *enginetest.Engine {
	return enginetest.New().Add("run", &enginetest.Dirfile{
		NFrames: 3,
		Fields: []enginetest.Field{
			{Name: "u8", Type: format.TypeUint8, SPF: 2, Samples: []uint8{0, 1, 2, 127, 128, 255}},
			{Name: "i8", Type: format.TypeInt8, SPF: 2, Samples: []int8{-128, -1, 0, 1, 64, 127}},
			{Name: "u16", Type: format.TypeUint16, SPF: 2, Samples: []uint16{0, 1, 256, 32768, 65534, 65535}},
			{Name: "i16", Type: format.TypeInt16, SPF: 2, Samples: []int16{-32768, -1, 0, 1, 300, 32767}},
			{Name: "u32", Type: format.TypeUint32, SPF: 2, Samples: []uint32{0, 1, 1 << 16, 1 << 31, math.MaxUint32 - 1, math.MaxUint32}},
			{Name: "i32", Type: format.TypeInt32, SPF: 2, Samples: []int32{math.MinInt32, -1, 0, 1, 1 << 20, math.MaxInt32}},
			{Name: "u64", Type: format.TypeUint64, SPF: 2, Samples: []uint64{0, 1, 1 << 53, 1<<53 + 1, 1<<53 + 3, math.MaxUint64}},
			{Name: "i64", Type: format.TypeInt64, SPF: 2, Samples: []int64{math.MinInt64, -(1<<53 + 1), -1, 0, 1<<53 + 1, math.MaxInt64}},
			{Name: "f32", Type: format.TypeFloat32, SPF: 2, Samples: []float32{0, -0.5, 0.1, math.MaxFloat32, float32(math.Inf(-1)), math.SmallestNonzeroFloat32}},
			{Name: "f64", Type: format.TypeFloat64, SPF: 2, Samples: []float64{0, math.Copysign(0, -1), 0.1, math.MaxFloat64, math.Inf(1), math.Float64frombits(0x7ff8000000000123)}},
			{Name: "short", Type: format.TypeInt16, SPF: 2, Samples: []int16{5, 6, 7}},
			{Name: "c64", Type: format.TypeComplex64, SPF: 1},
			{Name: "c128", Type: format.TypeComplex128, SPF: 1},
			{Name: "odd", Type: format.ElementType(0x333), SPF: 1},
			{Name: "broken", Type: format.TypeFloat64, SPF: 1, Err: errors.New("disk on fire")},
		},
	})
}

func openFake(t *testing.T, eng *enginetest.Engine, opts ...Option) *Dirfile {
	t.Helper()

	df, err := Open("run", append([]Option{WithEngine(eng)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = df.Close() })

	return df
}

func TestFetch_Length(t *testing.T) {
	df := openFake(t, fakeEngine())

	for _, field := range []string{"u8", "i8", "u16", "i16", "u32", "i32", "u64", "i64", "f32", "f64", "short"} {
		values, err := df.Fetch(field)
		require.NoError(t, err, field)
		require.Len(t, values, int(df.NFrames())*int(df.SPF(field)), field)
	}
}

func TestFetch_ExactIntegers(t *testing.T) {
	df := openFake(t, fakeEngine())

	tests := map[string][]float64{
		"u8":  {0, 1, 2, 127, 128, 255},
		"i8":  {-128, -1, 0, 1, 64, 127},
		"u16": {0, 1, 256, 32768, 65534, 65535},
		"i16": {-32768, -1, 0, 1, 300, 32767},
		"u32": {0, 1, 1 << 16, 1 << 31, math.MaxUint32 - 1, math.MaxUint32},
		"i32": {math.MinInt32, -1, 0, 1, 1 << 20, math.MaxInt32},
	}

	for field, want := range tests {
		t.Run(field, func(t *testing.T) {
			values, err := df.Fetch(field)
			require.NoError(t, err)
			require.Equal(t, want, values)
		})
	}
}

func TestFetch_Wide64(t *testing.T) {
	df := openFake(t, fakeEngine())

	u64, err := df.Fetch("u64")
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1, 1 << 53, 1 << 53, 1<<53 + 4, 1 << 64}, u64)

	i64, err := df.Fetch("i64")
	require.NoError(t, err)
	require.Equal(t, []float64{-(1 << 63), -(1 << 53), -1, 0, 1 << 53, 1 << 63}, i64)
}

func TestFetch_Floats(t *testing.T) {
	df := openFake(t, fakeEngine())

	f32, err := df.Fetch("f32")
	require.NoError(t, err)
	require.Equal(t, float64(float32(0.1)), f32[2])
	require.Equal(t, float64(math.MaxFloat32), f32[3])
	require.True(t, math.IsInf(f32[4], -1))
	require.Equal(t, float64(float32(math.SmallestNonzeroFloat32)), f32[5])

	f64, err := df.Fetch("f64")
	require.NoError(t, err)
	want := []uint64{0, 1 << 63, math.Float64bits(0.1), math.Float64bits(math.MaxFloat64), math.Float64bits(math.Inf(1)), 0x7ff8000000000123}
	for i, v := range f64 {
		require.Equal(t, want[i], math.Float64bits(v), "sample %d", i)
	}
}

func TestFetch_ShortReadZeroTail(t *testing.T) {
	var logBuf bytes.Buffer
	df := openFake(t, fakeEngine(), WithLogger(zerolog.New(&logBuf).Level(zerolog.DebugLevel)))

	values, err := df.Fetch("short")
	require.NoError(t, err)
	require.Equal(t, []float64{5, 6, 7, 0, 0, 0}, values)
	require.Contains(t, logBuf.String(), "short read")
}

func TestFetch_Unsupported(t *testing.T) {
	df := openFake(t, fakeEngine())

	for _, field := range []string{"c64", "c128", "odd"} {
		values, err := df.Fetch(field)
		require.ErrorIs(t, err, errs.ErrUnsupportedType, field)
		require.Nil(t, values)

		soft := df.GetData(field)
		require.NotNil(t, soft)
		require.Empty(t, soft)
	}
}

func TestFetch_EngineError(t *testing.T) {
	var logBuf bytes.Buffer
	df := openFake(t, fakeEngine(), WithLogger(zerolog.New(&logBuf)))

	_, err := df.Fetch("broken")
	require.ErrorIs(t, err, errs.ErrEngine)
	require.Contains(t, err.Error(), "disk on fire")

	require.Empty(t, df.GetData("broken"))
	require.Contains(t, logBuf.String(), `"level":"error"`)
}

func TestFetch_NegativeFrames(t *testing.T) {
	eng := enginetest.New().Add("run", &enginetest.Dirfile{
		NFrames: -1,
		Fields:  []enginetest.Field{{Name: "x", Type: format.TypeFloat64, SPF: 1}},
	})
	df := openFake(t, eng)

	require.Equal(t, int64(-1), df.NFrames())

	_, err := df.Fetch("x")
	require.ErrorIs(t, err, errs.ErrEngine)
	require.Empty(t, df.GetData("x"))
}

func TestFetch_ZeroFrames(t *testing.T) {
	eng := enginetest.New().Add("run", &enginetest.Dirfile{
		Fields: []enginetest.Field{{Name: "x", Type: format.TypeFloat64, SPF: 4}},
	})
	df := openFake(t, eng)

	values, err := df.Fetch("x")
	require.NoError(t, err)
	require.NotNil(t, values)
	require.Empty(t, values)
}

func TestFetch_GeometryOverflow(t *testing.T) {
	eng := enginetest.New().Add("run", &enginetest.Dirfile{
		NFrames: math.MaxInt64,
		Fields:  []enginetest.Field{{Name: "x", Type: format.TypeUint8, SPF: 2}},
	})
	df := openFake(t, eng)

	_, err := df.Fetch("x")
	require.ErrorIs(t, err, errs.ErrGeometryOverflow)
}

func TestSampleCount(t *testing.T) {
	n, err := sampleCount(10, 2)
	require.NoError(t, err)
	require.Equal(t, 20, n)

	n, err = sampleCount(0, 7)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	n, err = sampleCount(7, 0)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	n, err = sampleCount(math.MaxInt64, 1)
	require.NoError(t, err)
	require.Equal(t, math.MaxInt, n)

	_, err = sampleCount(math.MaxInt64/2+1, 2)
	require.ErrorIs(t, err, errs.ErrGeometryOverflow)
}
