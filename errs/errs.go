// Package errs defines the sentinel errors returned by dirfile packages.
//
// Callers should compare with errors.Is, since most errors are wrapped with
// additional context (field name, path, line number) before being returned.
package errs

import "errors"

// Handle and path errors.
var (
	// ErrInvalidPath is returned when a path is empty or cannot be represented
	// as a NUL-terminated string.
	ErrInvalidPath = errors.New("invalid dirfile path")

	// ErrReadOnly is returned when an engine is asked to open a dirfile with
	// any access mode other than read-only.
	ErrReadOnly = errors.New("dirfile can only be opened read-only")

	// ErrClosed is returned by operations on a handle that has been closed.
	ErrClosed = errors.New("dirfile handle is closed")

	// ErrEngine wraps failures reported by the format engine.
	ErrEngine = errors.New("format engine error")
)

// Field errors.
var (
	ErrFieldNotFound    = errors.New("field not found")
	ErrInvalidFieldName = errors.New("invalid field name")
	ErrDuplicateField   = errors.New("duplicate field definition")
	ErrUnsupportedType  = errors.New("unsupported element type")
	ErrGeometryOverflow = errors.New("sample count overflows address space")
)

// Buffer errors.
var (
	ErrBufferMismatch = errors.New("buffer element type does not match requested type")
	ErrShortBuffer    = errors.New("buffer too short for requested samples")
)

// Format file errors.
var (
	ErrFormatSyntax = errors.New("format file syntax error")
	ErrIncludeDepth = errors.New("format file include depth exceeded")
	ErrNoFormatFile = errors.New("format file not found")
)
