package native

import (
	"github.com/arloliu/dirfile/endian"
	"github.com/arloliu/dirfile/format"
)

type entryKind uint8

const (
	kindRaw entryKind = iota + 1
	kindConst
	kindString
	kindDerived
)

func (k entryKind) String() string {
	switch k {
	case kindRaw:
		return "RAW"
	case kindConst:
		return "CONST"
	case kindString:
		return "STRING"
	case kindDerived:
		return "DERIVED"
	default:
		return "Unknown"
	}
}

// entry is one field definition from a format file.
type entry struct {
	name    string
	kind    entryKind
	keyword string // field type keyword as written, e.g. "LINCOM"
	typ     format.ElementType
	spf     uint
	width   int // sample width in bytes; text cell width for STRING RAW fields

	// Raw file location and layout, set for kindRaw only.
	dir         string
	engine      endian.EndianEngine
	compression format.CompressionType

	// Declared value of CONST and STRING fields.
	value string
}

// sampled reports whether the field has per-frame samples on disk.
func (e *entry) sampled() bool {
	return e.kind == kindRaw
}
