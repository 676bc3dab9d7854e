// Package format defines the element type tags and raw file compression types
// shared by the decoding layer and the format engines.
package format

import "strings"

type (
	ElementType     uint32
	CompressionType uint8
)

// Element type tags. The values match the gd_type_t codes of the GetData
// library so tags reported by any engine compare equal to these constants.
//
// The low five bits hold the sample width in bytes; the remaining bits are
// class flags.
const (
	TypeNull       ElementType = 0x000 // TypeNull marks a field with no storable type.
	TypeUint8      ElementType = 0x001 // TypeUint8 is an unsigned 8-bit integer.
	TypeInt8       ElementType = 0x041 // TypeInt8 is a signed 8-bit integer.
	TypeUint16     ElementType = 0x002 // TypeUint16 is an unsigned 16-bit integer.
	TypeInt16      ElementType = 0x042 // TypeInt16 is a signed 16-bit integer.
	TypeUint32     ElementType = 0x004 // TypeUint32 is an unsigned 32-bit integer.
	TypeInt32      ElementType = 0x044 // TypeInt32 is a signed 32-bit integer.
	TypeUint64     ElementType = 0x008 // TypeUint64 is an unsigned 64-bit integer.
	TypeInt64      ElementType = 0x048 // TypeInt64 is a signed 64-bit integer.
	TypeFloat32    ElementType = 0x084 // TypeFloat32 is an IEEE-754 binary32 value.
	TypeFloat64    ElementType = 0x088 // TypeFloat64 is an IEEE-754 binary64 value.
	TypeComplex64  ElementType = 0x108 // TypeComplex64 is a pair of binary32 values.
	TypeComplex128 ElementType = 0x110 // TypeComplex128 is a pair of binary64 values.
	TypeString     ElementType = 0x200 // TypeString is a fixed-length text cell.

	CompressionNone CompressionType = 0x1 // CompressionNone represents an uncompressed raw file.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents a Zstandard compressed raw file.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents an S2 compressed raw file.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents an LZ4 frame compressed raw file.
)

const (
	sizeMask    = 0x01f
	signedFlag  = 0x040
	ieee754Flag = 0x080
	complexFlag = 0x100
)

func (t ElementType) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeUint8:
		return "UINT8"
	case TypeInt8:
		return "INT8"
	case TypeUint16:
		return "UINT16"
	case TypeInt16:
		return "INT16"
	case TypeUint32:
		return "UINT32"
	case TypeInt32:
		return "INT32"
	case TypeUint64:
		return "UINT64"
	case TypeInt64:
		return "INT64"
	case TypeFloat32:
		return "FLOAT32"
	case TypeFloat64:
		return "FLOAT64"
	case TypeComplex64:
		return "COMPLEX64"
	case TypeComplex128:
		return "COMPLEX128"
	case TypeString:
		return "STRING"
	default:
		return "Unknown"
	}
}

// Size returns the storage width of one sample in bytes.
//
// Text cells have no intrinsic width and report 0; so do TypeNull and
// unknown tags.
func (t ElementType) Size() int {
	if t == TypeString || !t.Valid() {
		return 0
	}

	return int(t & sizeMask)
}

// Signed reports whether t is a signed integer type.
func (t ElementType) Signed() bool {
	return t.Valid() && t&(signedFlag|ieee754Flag|complexFlag) == signedFlag
}

// Float reports whether t is a real IEEE-754 type.
func (t ElementType) Float() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// Complex reports whether t is a complex type.
func (t ElementType) Complex() bool {
	return t == TypeComplex64 || t == TypeComplex128
}

// Valid reports whether t is one of the declared tags other than TypeNull.
func (t ElementType) Valid() bool {
	return t != TypeNull && t.String() != "Unknown"
}

// legacyTypeCodes maps the single-letter type codes of early dirfile
// standards to their element types.
var legacyTypeCodes = map[string]ElementType{
	"c": TypeUint8,
	"u": TypeUint16,
	"s": TypeInt16,
	"U": TypeUint32,
	"S": TypeInt32,
	"i": TypeInt32,
	"f": TypeFloat32,
	"d": TypeFloat64,
}

var typeNames = map[string]ElementType{
	"UINT8":      TypeUint8,
	"INT8":       TypeInt8,
	"UINT16":     TypeUint16,
	"INT16":      TypeInt16,
	"UINT32":     TypeUint32,
	"INT32":      TypeInt32,
	"UINT64":     TypeUint64,
	"INT64":      TypeInt64,
	"FLOAT32":    TypeFloat32,
	"FLOAT":      TypeFloat32,
	"FLOAT64":    TypeFloat64,
	"DOUBLE":     TypeFloat64,
	"COMPLEX64":  TypeComplex64,
	"COMPLEX128": TypeComplex128,
	"STRING":     TypeString,
}

// ParseElementType parses a format file type token.
//
// Full type names are matched case-insensitively; legacy single-letter codes
// are case-sensitive since "s" and "S" denote different types.
//
// Parameters:
//   - token: The type token as written in the format file
//
// Returns:
//   - ElementType: The parsed tag (TypeNull when not recognized)
//   - bool: true if the token names a known type
func ParseElementType(token string) (ElementType, bool) {
	if t, ok := legacyTypeCodes[token]; ok {
		return t, true
	}

	t, ok := typeNames[strings.ToUpper(token)]

	return t, ok
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Suffix returns the file name suffix used by raw files with this compression.
func (c CompressionType) Suffix() string {
	switch c {
	case CompressionZstd:
		return ".zst"
	case CompressionS2:
		return ".s2"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// ParseCompression parses the argument of an /ENCODING directive.
func ParseCompression(name string) (CompressionType, bool) {
	switch strings.ToLower(name) {
	case "none":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}

// Compressions lists the supported compression types in suffix lookup order.
func Compressions() []CompressionType {
	return []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4}
}
