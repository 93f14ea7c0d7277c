package blendtype

import "encoding/binary"

// Endian identifies the byte order a file was written in.
type Endian uint8

const (
	LittleEndian Endian = iota
	BigEndian
)

// ByteOrder returns the binary.ByteOrder for e.
func (e Endian) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// String returns the human-readable name of the byte order.
func (e Endian) String() string {
	switch e {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return "unknown"
	}
}

// Header is the fixed preamble of a blend file.
type Header struct {
	// PointerSize is the width in bytes of every pointer in the file (4 or 8).
	PointerSize int

	// Endian is the byte order of every multi-byte value in the file.
	Endian Endian

	// Version is the three-character version code, e.g. "279" or "402".
	Version string
}

// Order returns the binary.ByteOrder for the file.
func (h Header) Order() binary.ByteOrder {
	return h.Endian.ByteOrder()
}
