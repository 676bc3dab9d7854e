package decode

import (
	"fmt"

	"github.com/arloliu/dirfile/encoding"
	"github.com/arloliu/dirfile/errs"
	"github.com/arloliu/dirfile/format"
)

// Strategy describes how samples of one element type are buffered and converted.
type Strategy struct {
	// Type is the element type this strategy decodes.
	Type format.ElementType
	// Width is the storage width of one sample in bytes, 0 for text cells.
	Width int
	// Signed reports whether the samples are signed integers.
	Signed bool
	// Float reports whether the samples are IEEE-754 values.
	Float bool

	newBuffer func(n int) Buffer
}

// NewBuffer allocates a zero-initialised raw buffer of n samples.
func (s Strategy) NewBuffer(n int) Buffer {
	return s.newBuffer(n)
}

// Select returns the decode strategy for t.
//
// Returns:
//   - Strategy: The selected strategy
//   - error: errs.ErrUnsupportedType for TypeNull, complex and unknown tags
func Select(t format.ElementType) (Strategy, error) {
	switch t {
	case format.TypeUint8:
		return numeric[uint8](t), nil
	case format.TypeInt8:
		return numeric[int8](t), nil
	case format.TypeUint16:
		return numeric[uint16](t), nil
	case format.TypeInt16:
		return numeric[int16](t), nil
	case format.TypeUint32:
		return numeric[uint32](t), nil
	case format.TypeInt32:
		return numeric[int32](t), nil
	case format.TypeUint64:
		return numeric[uint64](t), nil
	case format.TypeInt64:
		return numeric[int64](t), nil
	case format.TypeFloat32:
		return numeric[float32](t), nil
	case format.TypeFloat64:
		return numeric[float64](t), nil
	case format.TypeString:
		return Strategy{
			Type:      t,
			newBuffer: func(n int) Buffer { return &textBuffer{cells: make([]string, n)} },
		}, nil
	default:
		if t.Complex() {
			return Strategy{}, fmt.Errorf("%w: %s, complex samples have no real representation", errs.ErrUnsupportedType, t)
		}

		return Strategy{}, fmt.Errorf("%w: %s (0x%03x)", errs.ErrUnsupportedType, t, uint32(t))
	}
}

func numeric[T encoding.Numeric](t format.ElementType) Strategy {
	return Strategy{
		Type:   t,
		Width:  encoding.SampleSize[T](),
		Signed: t.Signed(),
		Float:  t.Float(),
		newBuffer: func(n int) Buffer {
			return &numericBuffer[T]{typ: t, samples: make([]T, n)}
		},
	}
}
