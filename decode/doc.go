// Package decode maps element type tags to decode strategies.
//
// A Strategy describes how samples of one element type are stored (width,
// signedness) and creates the raw Buffer a format engine fills. Every Buffer
// converts its samples to float64, the single representation exposed to
// callers:
//
//   - 8, 16 and 32-bit integers and FLOAT32 widen exactly.
//   - FLOAT64 passes through bit for bit.
//   - UINT64 and INT64 use Go's conversion, which rounds to the nearest
//     representable float64 (ties to even). Magnitudes above 2^53 may
//     therefore differ from the stored integer by up to half a ULP.
//   - STRING cells are parsed as decimal floating-point literals after
//     trimming surrounding whitespace; a cell that does not parse becomes 0.
//
// Select is the only dispatch point. Tags outside this set, including
// TypeNull and the complex types, yield errs.ErrUnsupportedType.
package decode
