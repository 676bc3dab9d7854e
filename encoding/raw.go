package encoding

import (
	"fmt"
	"unsafe"

	"github.com/arloliu/dirfile/endian"
)

// Numeric is the set of fixed-width sample types found in raw files.
type Numeric interface {
	~uint8 | ~int8 | ~uint16 | ~int16 | ~uint32 | ~int32 | ~uint64 | ~int64 | ~float32 | ~float64
}

// RawDecoder decodes fixed-width samples written in a given byte order.
//
// The decoder is immutable and stateless; it is returned by value.
type RawDecoder struct {
	engine endian.EndianEngine
	native bool
}

// NewRawDecoder creates a decoder for raw data written with engine's byte order.
//
// Parameters:
//   - engine: Byte order of the raw data
//
// Returns:
//   - RawDecoder: A new decoder instance (stateless, can be reused)
func NewRawDecoder(engine endian.EndianEngine) RawDecoder {
	return RawDecoder{
		engine: engine,
		native: endian.CompareNativeEndian(engine),
	}
}

// SampleSize returns the width in bytes of one sample of type T.
func SampleSize[T Numeric]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// DecodeInto decodes as many whole samples as fit in both dst and data.
//
// Trailing bytes that do not form a whole sample are ignored. The remainder
// of dst beyond the decoded count is left untouched.
//
// Parameters:
//   - d: Decoder carrying the raw byte order
//   - dst: Destination slice
//   - data: Raw bytes
//
// Returns:
//   - int: Number of samples written to dst
//   - error: Always nil for supported widths; non-nil only for an unexpected sample size
func DecodeInto[T Numeric](d RawDecoder, dst []T, data []byte) (int, error) {
	size := SampleSize[T]()
	n := min(len(dst), len(data)/size)
	if n == 0 {
		return 0, nil
	}

	src := data[:n*size]
	if d.native || size == 1 {
		copy(bytesOf(dst[:n]), src)
		return n, nil
	}

	switch size {
	case 2:
		for i := range n {
			*(*uint16)(unsafe.Pointer(&dst[i])) = d.engine.Uint16(src[i*2:])
		}
	case 4:
		for i := range n {
			*(*uint32)(unsafe.Pointer(&dst[i])) = d.engine.Uint32(src[i*4:])
		}
	case 8:
		for i := range n {
			*(*uint64)(unsafe.Pointer(&dst[i])) = d.engine.Uint64(src[i*8:])
		}
	default:
		return 0, fmt.Errorf("unsupported sample size %d", size)
	}

	return n, nil
}

// AppendSamples appends src to dst in engine's byte order.
func AppendSamples[T Numeric](engine endian.EndianEngine, dst []byte, src []T) []byte {
	size := SampleSize[T]()
	if size == 1 {
		return append(dst, bytesOf(src)...)
	}

	for i := range src {
		p := unsafe.Pointer(&src[i])
		switch size {
		case 2:
			dst = engine.AppendUint16(dst, *(*uint16)(p))
		case 4:
			dst = engine.AppendUint32(dst, *(*uint32)(p))
		case 8:
			dst = engine.AppendUint64(dst, *(*uint64)(p))
		}
	}

	return dst
}

// bytesOf returns the backing memory of s as a byte slice.
func bytesOf[T Numeric](s []T) []byte {
	if len(s) == 0 {
		return nil
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*SampleSize[T]())
}
