// Package header parses the fixed 12-byte preamble of a blend file.
package header

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/meigma/blend/internal/blendtype"
)

const (
	// Size is the encoded size of the header.
	Size = 12

	// Magic is the tag every uncompressed blend file starts with.
	Magic = "BLENDER"
)

// Pointer-size and byte-order markers.
const (
	markerPtr4   = '_'
	markerPtr8   = '-'
	markerLittle = 'v'
	markerBig    = 'V'
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Read reads and parses the header from the front of r.
func Read(r io.Reader) (blendtype.Header, error) {
	var buf [Size]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			if hdrErr := sniff(buf[:n]); hdrErr != nil {
				return blendtype.Header{}, hdrErr
			}
			return blendtype.Header{}, &blendtype.FormatError{
				Op:       "header",
				Offset:   int64(n),
				Expected: fmt.Sprintf("%d bytes", Size),
				Found:    fmt.Sprintf("%d bytes", n),
				Err:      io.ErrUnexpectedEOF,
			}
		}
		return blendtype.Header{}, fmt.Errorf("header: %w: %w", blendtype.ErrIO, err)
	}
	return Parse(buf[:])
}

// Parse decodes a header from b, which must hold at least Size bytes.
func Parse(b []byte) (blendtype.Header, error) {
	if len(b) < Size {
		return blendtype.Header{}, &blendtype.FormatError{
			Op:       "header",
			Offset:   int64(len(b)),
			Expected: fmt.Sprintf("%d bytes", Size),
			Found:    fmt.Sprintf("%d bytes", len(b)),
			Err:      blendtype.ErrFormat,
		}
	}
	if err := sniff(b); err != nil {
		return blendtype.Header{}, err
	}

	h := blendtype.Header{Version: string(b[9:12])}

	switch b[7] {
	case markerPtr4:
		h.PointerSize = 4
	case markerPtr8:
		h.PointerSize = 8
	default:
		return blendtype.Header{}, &blendtype.FormatError{
			Op:       "header pointer size",
			Offset:   7,
			Expected: fmt.Sprintf("%q or %q", markerPtr4, markerPtr8),
			Found:    fmt.Sprintf("%q", b[7]),
			Err:      blendtype.ErrFormat,
		}
	}

	switch b[8] {
	case markerLittle:
		h.Endian = blendtype.LittleEndian
	case markerBig:
		h.Endian = blendtype.BigEndian
	default:
		return blendtype.Header{}, &blendtype.FormatError{
			Op:       "header byte order",
			Offset:   8,
			Expected: fmt.Sprintf("%q or %q", markerLittle, markerBig),
			Found:    fmt.Sprintf("%q", b[8]),
			Err:      blendtype.ErrFormat,
		}
	}

	return h, nil
}

// sniff validates the magic tag, reporting compressed containers with
// ErrCompressed. b may be shorter than the tag when the stream was truncated.
func sniff(b []byte) error {
	if bytes.HasPrefix(b, gzipMagic) || bytes.HasPrefix(b, zstdMagic) {
		return &blendtype.FormatError{
			Op:       "header magic",
			Offset:   0,
			Expected: fmt.Sprintf("%q", Magic),
			Found:    fmt.Sprintf("% x", b[:min(len(b), len(Magic))]),
			Err:      blendtype.ErrCompressed,
		}
	}
	n := min(len(b), len(Magic))
	if string(b[:n]) != Magic[:n] {
		return &blendtype.FormatError{
			Op:       "header magic",
			Offset:   0,
			Expected: fmt.Sprintf("%q", Magic),
			Found:    fmt.Sprintf("%q", b[:n]),
			Err:      blendtype.ErrFormat,
		}
	}
	return nil
}
