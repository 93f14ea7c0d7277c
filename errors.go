package blend

import (
	"github.com/meigma/blend/internal/blendtype"
	"github.com/meigma/blend/internal/toc"
)

// Sentinel errors re-exported from internal/blendtype.
var (
	// ErrFormat is returned when the file structure is malformed. Every
	// *FormatError matches it.
	ErrFormat = blendtype.ErrFormat

	// ErrCompressed is returned when the input is a gzip or zstd container
	// rather than a raw blend file. It matches ErrFormat.
	ErrCompressed = blendtype.ErrCompressed

	// ErrUnsupportedLayout is returned for field layouts the decoder does
	// not handle.
	ErrUnsupportedLayout = blendtype.ErrUnsupportedLayout

	// ErrSizeMismatch is returned when a structure's fields do not exactly
	// consume its bytes.
	ErrSizeMismatch = blendtype.ErrSizeMismatch

	// ErrDanglingPointer is returned when a non-null address has no block.
	ErrDanglingPointer = blendtype.ErrDanglingPointer

	// ErrIO is returned when reading the underlying stream fails.
	ErrIO = blendtype.ErrIO

	// ErrSizeOverflow is returned when byte counts exceed supported limits.
	ErrSizeOverflow = blendtype.ErrSizeOverflow

	// ErrNotPointer is returned when dereferencing a field of the wrong shape.
	ErrNotPointer = blendtype.ErrNotPointer

	// ErrNotStructured is returned when a pointer target cannot be viewed as
	// structure instances.
	ErrNotStructured = blendtype.ErrNotStructured
)

// ErrDigestMismatch is returned when content does not match the digest
// recorded in a table of contents.
var ErrDigestMismatch = toc.ErrDigestMismatch

// Error types re-exported from internal/blendtype.
type (
	// FormatError describes a fatal framing failure at a byte offset.
	FormatError = blendtype.FormatError

	// SizeMismatchError reports a structure decode that did not land on the
	// end of its byte slice.
	SizeMismatchError = blendtype.SizeMismatchError
)
