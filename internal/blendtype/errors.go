package blendtype

import (
	"errors"
	"fmt"
)

// Sentinel errors for blend decoding.
var (
	// ErrFormat is returned when the file structure is malformed: a bad
	// header, a bad catalog tag, or a block stream that ends early.
	ErrFormat = errors.New("blend: malformed file")

	// ErrCompressed is returned when the input is a compressed container
	// rather than a raw blend file.
	ErrCompressed = fmt.Errorf("%w: compressed container", ErrFormat)

	// ErrUnsupportedLayout is returned for field layouts the decoder does
	// not handle (pointer depth > 2, more than two array extents, 2-D
	// arrays of structures, unknown primitive widths).
	ErrUnsupportedLayout = errors.New("blend: unsupported layout")

	// ErrSizeMismatch is returned when a structure's fields do not exactly
	// consume its byte slice.
	ErrSizeMismatch = errors.New("blend: structure size mismatch")

	// ErrDanglingPointer is returned when a non-null address has no block.
	ErrDanglingPointer = errors.New("blend: dangling pointer")

	// ErrIO is returned when reading the underlying stream fails.
	ErrIO = errors.New("blend: read failed")

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = errors.New("blend: size overflow")

	// ErrNotPointer is returned when dereferencing a field that does not
	// hold a pointer of the requested shape.
	ErrNotPointer = errors.New("blend: field is not a pointer")

	// ErrNotStructured is returned when a pointer target cannot be viewed
	// as structure instances.
	ErrNotStructured = errors.New("blend: target is not structured")
)

// FormatError describes a fatal framing failure at a byte offset.
type FormatError struct {
	// Op names the stage that failed, e.g. "header" or "catalog".
	Op string

	// Offset is the absolute byte offset where the problem was detected.
	Offset int64

	// Expected and Found describe the mismatch, when there is one.
	Expected string
	Found    string

	// Err is the underlying cause. It defaults to ErrFormat.
	Err error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("blend: %s at offset %d", e.Op, e.Offset)
	if e.Expected != "" || e.Found != "" {
		msg += fmt.Sprintf(": expected %s, found %s", e.Expected, e.Found)
	}
	if e.Err != nil && e.Err != ErrFormat {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFormat. Every FormatError is a format
// failure even when Err carries a more specific cause.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// SizeMismatchError reports a structure decode that did not land exactly on
// the end of its byte slice.
type SizeMismatchError struct {
	Struct   string
	Expected int
	Actual   int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("blend: structure %s: fields consume %d bytes, slice has %d", e.Struct, e.Expected, e.Actual)
}

// Is reports whether target is ErrSizeMismatch.
func (e *SizeMismatchError) Is(target error) bool {
	return target == ErrSizeMismatch
}
