// Package compress provides the codecs used for compressed dirfile raw files.
//
// A raw file may be stored compressed, in which case its name carries the
// suffix of the codec (see format.CompressionType.Suffix). Engines read the
// whole file, decompress it and then decode samples from the result.
package compress

import (
	"fmt"

	"github.com/arloliu/dirfile/format"
)

// Compressor compresses a complete raw file payload.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a raw file payload.
//
// Example:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	raw, err := codec.Decompress(fileBytes)
//	if err != nil {
//	    return fmt.Errorf("decompression failed: %w", err)
//	}
//
// Thread Safety: the built-in implementations are safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or invalid
	//   - Returns error if data was compressed with an incompatible algorithm
	//
	// Empty input decompresses to an empty (nil) result.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec returns a new Codec for compressionType.
//
// Parameters:
//   - compressionType: Compression of the raw file (None, Zstd, S2 or LZ4)
//   - target: What the codec is for, used in error messages
//
// Returns:
//   - Codec: A codec owned by the caller
//   - error: An error for an unknown compression type
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionS2:
		return NewS2Compressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

// builtinCodecs holds one shared codec per supported compression type.
var builtinCodecs = func() map[format.CompressionType]Codec {
	codecs := make(map[format.CompressionType]Codec)
	for _, c := range format.Compressions() {
		codec, err := CreateCodec(c, "raw file")
		if err != nil {
			panic(err)
		}
		codecs[c] = codec
	}

	return codecs
}()

// GetCodec returns the shared codec for compressionType. Shared codecs are
// safe for concurrent use.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported raw file compression: %s", compressionType)
}
