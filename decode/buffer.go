package decode

import (
	"errors"
	"strconv"
	"strings"

	"github.com/arloliu/dirfile/encoding"
	"github.com/arloliu/dirfile/format"
)

// Buffer is a raw sample buffer owned by a single fetch.
type Buffer interface {
	// Type returns the element type of the buffered samples.
	Type() format.ElementType

	// Len returns the number of samples the buffer holds.
	Len() int

	// Backing returns the typed slice a format engine writes into.
	Backing() any

	// AppendFloat64s appends every sample, converted to float64, to dst.
	// The second result counts samples replaced by 0 because they could not
	// be converted; it is always 0 for numeric buffers.
	AppendFloat64s(dst []float64) ([]float64, int)
}

type numericBuffer[T encoding.Numeric] struct {
	typ     format.ElementType
	samples []T
}

func (b *numericBuffer[T]) Type() format.ElementType { return b.typ }
func (b *numericBuffer[T]) Len() int                 { return len(b.samples) }
func (b *numericBuffer[T]) Backing() any             { return b.samples }

func (b *numericBuffer[T]) AppendFloat64s(dst []float64) ([]float64, int) {
	if f, ok := any(b.samples).([]float64); ok {
		return append(dst, f...), 0
	}

	for _, v := range b.samples {
		dst = append(dst, float64(v))
	}

	return dst, 0
}

type textBuffer struct {
	cells []string
}

func (b *textBuffer) Type() format.ElementType { return format.TypeString }
func (b *textBuffer) Len() int                 { return len(b.cells) }
func (b *textBuffer) Backing() any             { return b.cells }

func (b *textBuffer) AppendFloat64s(dst []float64) ([]float64, int) {
	defaulted := 0
	for _, cell := range b.cells {
		v, ok := ParseCell(cell)
		if !ok {
			defaulted++
		}
		dst = append(dst, v)
	}

	return dst, defaulted
}

// ParseCell parses a text cell as a decimal floating-point literal.
//
// Surrounding whitespace is ignored. Out-of-range literals saturate to ±Inf
// (or 0 on underflow) and still count as parsed. Any other failure yields
// (0, false).
func ParseCell(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}

	return v, true
}
