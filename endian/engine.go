// Package endian provides byte order utilities for decoding raw dirfile data.
//
// Raw files are written in the byte order declared by the format file's
// /ENDIAN directive. Format engines decode them through an EndianEngine and
// hand native-order values to the decoding layer.
//
// # Basic Usage
//
//	engine, ok := endian.Parse("big")
//	if !ok {
//	    return fmt.Errorf("unknown byte order")
//	}
//	v := engine.Uint32(raw[i*4:])
//
// When the declared order equals the host order, decoders may reinterpret the
// raw bytes in place instead of swapping:
//
//	if endian.CompareNativeEndian(engine) {
//	    // zero-copy path
//	}
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"strings"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

// CompareNativeEndian reports whether engine matches the host byte order.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetNativeEngine returns the engine matching the host byte order.
func GetNativeEngine() EndianEngine {
	if IsNativeBigEndian() {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// Parse maps the argument of an /ENDIAN directive to an engine.
//
// Accepted names are "little", "big" and their "-endian" suffixed forms,
// case-insensitively. The optional "arm" qualifier of the directive is handled
// by the caller.
func Parse(name string) (EndianEngine, bool) {
	switch strings.TrimSuffix(strings.ToLower(name), "-endian") {
	case "little":
		return binary.LittleEndian, true
	case "big":
		return binary.BigEndian, true
	default:
		return nil, false
	}
}

// Name returns "little" or "big" for the given engine.
func Name(engine EndianEngine) string {
	if engine == binary.BigEndian {
		return "big"
	}

	return "little"
}
