// Package encoding converts between raw file bytes and typed sample slices.
//
// Raw dirfile data is a flat sequence of fixed-width samples in the byte
// order declared by the format file. DecodeInto copies such bytes into a
// typed slice in host order; AppendSamples performs the inverse and is used
// to produce fixtures.
//
// # Decoding Paths
//
// When the declared byte order equals the host order, DecodeInto copies the
// bytes straight into the destination's backing memory. Otherwise each sample
// is read through the EndianEngine and stored with its bit pattern intact, so
// integer and IEEE-754 types share one code path per width.
//
//	dec := encoding.NewRawDecoder(endian.GetBigEndianEngine())
//	samples := make([]int16, n)
//	written, err := encoding.DecodeInto(dec, samples, raw)
//
// # Text Cells
//
// Fixed-length text cells are NUL padded. DecodeText splits the raw bytes
// into cells of the given width and trims each at its first NUL byte.
package encoding
