// Package engine defines the boundary between the decoding layer and a
// dirfile format engine.
//
// A format engine parses the dirfile metadata, locates raw data and fills
// caller-allocated sample buffers. The decoding layer never touches files
// directly; it asks a Handle for geometry and element types, allocates a
// buffer of the matching Go type and lets the Handle fill it.
//
// # Buffers
//
// GetData receives the destination as a typed slice in an interface value.
// The slice element type must match the requested element type:
//
//	UINT8 []uint8    INT8 []int8    UINT16 []uint16    INT16 []int16
//	UINT32 []uint32  INT32 []int32  UINT64 []uint64    INT64 []int64
//	FLOAT32 []float32               FLOAT64 []float64  STRING []string
//
// CheckBuffer validates this contract; engines should call it before writing.
package engine

import (
	"fmt"

	"github.com/arloliu/dirfile/errs"
	"github.com/arloliu/dirfile/format"
)

// OpenFlag selects the access mode of a dirfile.
type OpenFlag uint32

const (
	// ReadOnly opens the dirfile for reading. It is the only supported mode.
	ReadOnly OpenFlag = 0x0
	// ReadWrite is accepted by the type but rejected by read-only engines.
	ReadWrite OpenFlag = 0x1
)

// Engine opens dirfiles.
type Engine interface {
	// Open opens the dirfile at path.
	//
	// An engine must either return a usable Handle or a non-nil error; a
	// half-initialised handle is never returned.
	Open(path string, flags OpenFlag) (Handle, error)
}

// Handle is an open dirfile.
//
// Handles are not safe for concurrent use.
type Handle interface {
	// NFields returns the number of declared fields.
	NFields() uint

	// NFrames returns the number of frames in the dirfile.
	// A negative value signals an engine-level error.
	NFrames() int64

	// FieldList returns the declared field names in declaration order.
	FieldList() []string

	// SPF returns the samples-per-frame of field.
	// Fields without sampled data (constants, derived fields) report 0.
	SPF(field string) (uint, error)

	// NativeType returns the storage type of field.
	NativeType(field string) (format.ElementType, error)

	// GetData fills out with samples of field as described by req.
	//
	// out must satisfy CheckBuffer for the field's native type and the number
	// of requested samples. Returns the number of samples written, which is
	// smaller than requested when the raw data ends early.
	GetData(field string, req Request, out any) (int, error)

	// Close releases the handle's resources.
	Close() error
}

// Request selects a run of samples.
//
// The run starts at sample FirstFrame*spf + FirstSample and covers
// NumFrames*spf + NumSamples samples.
type Request struct {
	FirstFrame  int64
	FirstSample int64
	NumFrames   uint64
	NumSamples  uint64
}

// Start returns the index of the first requested sample.
func (r Request) Start(spf uint) int64 {
	return r.FirstFrame*int64(spf) + r.FirstSample
}

// Count returns the number of requested samples.
func (r Request) Count(spf uint) uint64 {
	return r.NumFrames*uint64(spf) + r.NumSamples
}

// CheckBuffer validates that out is the slice type matching typ and holds at
// least count elements.
//
// Returns:
//   - int: The length of out
//   - error: errs.ErrBufferMismatch, errs.ErrShortBuffer or errs.ErrUnsupportedType
func CheckBuffer(typ format.ElementType, out any, count uint64) (int, error) {
	var (
		n  int
		ok bool
	)

	switch typ {
	case format.TypeUint8:
		n, ok = sliceLen[uint8](out)
	case format.TypeInt8:
		n, ok = sliceLen[int8](out)
	case format.TypeUint16:
		n, ok = sliceLen[uint16](out)
	case format.TypeInt16:
		n, ok = sliceLen[int16](out)
	case format.TypeUint32:
		n, ok = sliceLen[uint32](out)
	case format.TypeInt32:
		n, ok = sliceLen[int32](out)
	case format.TypeUint64:
		n, ok = sliceLen[uint64](out)
	case format.TypeInt64:
		n, ok = sliceLen[int64](out)
	case format.TypeFloat32:
		n, ok = sliceLen[float32](out)
	case format.TypeFloat64:
		n, ok = sliceLen[float64](out)
	case format.TypeString:
		n, ok = sliceLen[string](out)
	default:
		return 0, fmt.Errorf("%w: %s", errs.ErrUnsupportedType, typ)
	}

	if !ok {
		return 0, fmt.Errorf("%w: %s buffer is %T", errs.ErrBufferMismatch, typ, out)
	}
	if uint64(n) < count {
		return n, fmt.Errorf("%w: need %d samples, buffer holds %d", errs.ErrShortBuffer, count, n)
	}

	return n, nil
}

func sliceLen[T any](out any) (int, bool) {
	s, ok := out.([]T)
	return len(s), ok
}
