package blendtype

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// Primitive identifies how a primitive field's bytes are decoded.
type Primitive uint8

const (
	PrimInvalid Primitive = iota
	PrimChar
	PrimUChar
	PrimInt8
	PrimUint8
	PrimInt16
	PrimUint16
	PrimInt32
	PrimUint32
	PrimInt64
	PrimUint64
	PrimFloat32
	PrimFloat64
	PrimBool
)

var primitiveNames = map[string]Primitive{
	"char":     PrimChar,
	"uchar":    PrimUChar,
	"int8_t":   PrimInt8,
	"uint8_t":  PrimUint8,
	"short":    PrimInt16,
	"ushort":   PrimUint16,
	"int16_t":  PrimInt16,
	"uint16_t": PrimUint16,
	"int":      PrimInt32,
	"uint":     PrimUint32,
	"int32_t":  PrimInt32,
	"uint32_t": PrimUint32,
	"int64_t":  PrimInt64,
	"uint64_t": PrimUint64,
	"float":    PrimFloat32,
	"double":   PrimFloat64,
	"bool":     PrimBool,
}

// LookupPrimitive resolves the decoding for a primitive type name.
//
// typeSize is the size recorded in the catalog and ptrSize is the file's
// pointer width. long and ulong follow the writing platform: they decode as
// 32-bit values when the file uses 4-byte pointers or the catalog records
// them as 4 bytes. Unknown names with a 1, 2, 4, or 8 byte size decode as
// unsigned integers of that width.
func LookupPrimitive(typeName string, typeSize, ptrSize int) (Primitive, error) {
	var p Primitive
	switch typeName {
	case "long":
		p = PrimInt64
		if ptrSize == 4 || typeSize == 4 {
			p = PrimInt32
		}
	case "ulong":
		p = PrimUint64
		if ptrSize == 4 || typeSize == 4 {
			p = PrimUint32
		}
	default:
		known, ok := primitiveNames[typeName]
		if !ok {
			return unsignedOfSize(typeName, typeSize)
		}
		p = known
	}
	if p.Size() != typeSize {
		return PrimInvalid, fmt.Errorf("%w: primitive %s is %d bytes, catalog records %d",
			ErrUnsupportedLayout, typeName, p.Size(), typeSize)
	}
	return p, nil
}

func unsignedOfSize(typeName string, size int) (Primitive, error) {
	switch size {
	case 1:
		return PrimUint8, nil
	case 2:
		return PrimUint16, nil
	case 4:
		return PrimUint32, nil
	case 8:
		return PrimUint64, nil
	default:
		return PrimInvalid, fmt.Errorf("%w: primitive %s has unsupported size %d",
			ErrUnsupportedLayout, typeName, size)
	}
}

// Size returns the encoded width of p in bytes.
func (p Primitive) Size() int {
	switch p {
	case PrimChar, PrimUChar, PrimInt8, PrimUint8, PrimBool:
		return 1
	case PrimInt16, PrimUint16:
		return 2
	case PrimInt32, PrimUint32, PrimFloat32:
		return 4
	case PrimInt64, PrimUint64, PrimFloat64:
		return 8
	default:
		return 0
	}
}

// Signed reports whether p is a signed integer type.
func (p Primitive) Signed() bool {
	switch p {
	case PrimChar, PrimInt8, PrimInt16, PrimInt32, PrimInt64:
		return true
	default:
		return false
	}
}

// Float reports whether p is a floating point type.
func (p Primitive) Float() bool {
	return p == PrimFloat32 || p == PrimFloat64
}

// String returns the Go-style name of the primitive.
func (p Primitive) String() string {
	switch p {
	case PrimChar:
		return "char"
	case PrimUChar:
		return "uchar"
	case PrimInt8:
		return "int8"
	case PrimUint8:
		return "uint8"
	case PrimInt16:
		return "int16"
	case PrimUint16:
		return "uint16"
	case PrimInt32:
		return "int32"
	case PrimUint32:
		return "uint32"
	case PrimInt64:
		return "int64"
	case PrimUint64:
		return "uint64"
	case PrimFloat32:
		return "float32"
	case PrimFloat64:
		return "float64"
	case PrimBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Scalar is one decoded primitive value.
//
// The value is stored as raw bits; signed integers are sign-extended and
// floats keep their IEEE representation at the original width.
type Scalar struct {
	Type Primitive
	bits uint64
}

// DecodeScalar decodes one value of type p from the front of b.
// b must hold at least p.Size() bytes.
func DecodeScalar(p Primitive, order binary.ByteOrder, b []byte) Scalar {
	var bits uint64
	switch p.Size() {
	case 1:
		bits = uint64(b[0])
		if p.Signed() {
			bits = uint64(int64(int8(b[0]))) //nolint:gosec // sign extension
		}
	case 2:
		v := order.Uint16(b)
		bits = uint64(v)
		if p.Signed() {
			bits = uint64(int64(int16(v))) //nolint:gosec // sign extension
		}
	case 4:
		v := order.Uint32(b)
		bits = uint64(v)
		if p.Signed() {
			bits = uint64(int64(int32(v))) //nolint:gosec // sign extension
		}
	case 8:
		bits = order.Uint64(b)
	}
	return Scalar{Type: p, bits: bits}
}

// NewScalar builds a Scalar from raw bits, mainly for tests.
func NewScalar(p Primitive, bits uint64) Scalar {
	return Scalar{Type: p, bits: bits}
}

// Bits returns the stored bit pattern.
func (s Scalar) Bits() uint64 {
	return s.bits
}

// Int returns the value as int64. Floats are truncated.
func (s Scalar) Int() int64 {
	switch {
	case s.Type == PrimFloat32:
		return int64(math.Float32frombits(uint32(s.bits))) //nolint:gosec // float32 bits
	case s.Type == PrimFloat64:
		return int64(math.Float64frombits(s.bits))
	default:
		return int64(s.bits) //nolint:gosec // two's complement view
	}
}

// Uint returns the value as uint64. Floats are truncated.
func (s Scalar) Uint() uint64 {
	if s.Type.Float() {
		return uint64(s.Float())
	}
	return s.bits
}

// Float returns the value as float64.
func (s Scalar) Float() float64 {
	switch {
	case s.Type == PrimFloat32:
		return float64(math.Float32frombits(uint32(s.bits))) //nolint:gosec // float32 bits
	case s.Type == PrimFloat64:
		return math.Float64frombits(s.bits)
	case s.Type.Signed():
		return float64(int64(s.bits)) //nolint:gosec // two's complement view
	default:
		return float64(s.bits)
	}
}

// Bool reports whether the value is non-zero.
func (s Scalar) Bool() bool {
	return s.bits != 0
}

// Value returns the scalar as its natural Go type (int8, uint16, float32, ...).
func (s Scalar) Value() any {
	switch s.Type {
	case PrimChar, PrimInt8:
		return int8(s.bits) //nolint:gosec // width checked by type
	case PrimUChar, PrimUint8:
		return uint8(s.bits) //nolint:gosec // width checked by type
	case PrimInt16:
		return int16(s.bits) //nolint:gosec // width checked by type
	case PrimUint16:
		return uint16(s.bits) //nolint:gosec // width checked by type
	case PrimInt32:
		return int32(s.bits) //nolint:gosec // width checked by type
	case PrimUint32:
		return uint32(s.bits) //nolint:gosec // width checked by type
	case PrimInt64:
		return int64(s.bits) //nolint:gosec // width checked by type
	case PrimUint64:
		return s.bits
	case PrimFloat32:
		return math.Float32frombits(uint32(s.bits)) //nolint:gosec // width checked by type
	case PrimFloat64:
		return math.Float64frombits(s.bits)
	case PrimBool:
		return s.bits != 0
	default:
		return nil
	}
}

func (s Scalar) String() string {
	switch {
	case s.Type == PrimFloat32:
		return strconv.FormatFloat(s.Float(), 'g', -1, 32)
	case s.Type == PrimFloat64:
		return strconv.FormatFloat(s.Float(), 'g', -1, 64)
	case s.Type == PrimBool:
		return strconv.FormatBool(s.Bool())
	case s.Type.Signed():
		return strconv.FormatInt(s.Int(), 10)
	default:
		return strconv.FormatUint(s.bits, 10)
	}
}

// Array is a decoded primitive array with one or two extents.
//
// Elements are stored flat in row-major order.
type Array struct {
	Type  Primitive
	Dims  []int
	Elems []Scalar
}

// Len returns the total number of elements.
func (a Array) Len() int {
	return len(a.Elems)
}

// Rows returns the outer extent.
func (a Array) Rows() int {
	if len(a.Dims) == 0 {
		return 0
	}
	return a.Dims[0]
}

// Row returns row i of a 2-D array, or the whole array for 1-D arrays.
func (a Array) Row(i int) []Scalar {
	if len(a.Dims) < 2 {
		return a.Elems
	}
	cols := a.Dims[1]
	return a.Elems[i*cols : (i+1)*cols]
}

// Bytes returns the low byte of each element. It is meant for char and
// uchar arrays.
func (a Array) Bytes() []byte {
	out := make([]byte, len(a.Elems))
	for i, e := range a.Elems {
		out[i] = byte(e.bits)
	}
	return out
}

// String returns the array as a NUL-terminated C string.
func (a Array) String() string {
	b := a.Bytes()
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
