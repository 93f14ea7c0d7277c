// Package testutil builds synthetic blend files for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/meigma/blend/internal/blendtype"
	"github.com/meigma/blend/internal/fieldname"
)

// Field declares one structure field as (type name, field name).
type Field struct {
	Type string
	Name string
}

// F is shorthand for Field{Type: typ, Name: name}.
func F(typ, name string) Field {
	return Field{Type: typ, Name: name}
}

type typeEntry struct {
	name string
	size int
}

type structEntry struct {
	typeIdx int
	fields  []Field
}

type rawBlock struct {
	code  string
	addr  uint64
	sdna  int
	count int
	body  []byte
}

// Builder assembles a blend file in memory.
//
// The zero value is not usable; use NewBuilder. Primitive types are
// registered on first use with their usual sizes.
type Builder struct {
	PointerSize int
	Endian      blendtype.Endian
	Version     string

	// OmitCatalog leaves out the DNA1 block.
	OmitCatalog bool

	// OmitEnd leaves out the terminal block.
	OmitEnd bool

	names   []string
	nameIdx map[string]int
	types   []typeEntry
	typeIdx map[string]int
	structs []structEntry
	blocks  []rawBlock
}

// primitiveSizes holds default sizes for primitive type names.
var primitiveSizes = map[string]int{
	"char": 1, "uchar": 1, "int8_t": 1, "uint8_t": 1, "bool": 1,
	"short": 2, "ushort": 2, "int16_t": 2, "uint16_t": 2,
	"int": 4, "uint": 4, "int32_t": 4, "uint32_t": 4, "float": 4,
	"int64_t": 8, "uint64_t": 8, "double": 8,
	"void": 0,
}

// NewBuilder returns a Builder for the given pointer width and byte order.
func NewBuilder(ptrSize int, endian blendtype.Endian) *Builder {
	return &Builder{
		PointerSize: ptrSize,
		Endian:      endian,
		Version:     "402",
		nameIdx:     make(map[string]int),
		typeIdx:     make(map[string]int),
	}
}

func (b *Builder) order() binary.AppendByteOrder {
	if b.Endian == blendtype.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Type registers a type with an explicit size and returns its index. If the
// type already exists its size is updated.
func (b *Builder) Type(name string, size int) int {
	if i, ok := b.typeIdx[name]; ok {
		b.types[i].size = size
		return i
	}
	b.types = append(b.types, typeEntry{name: name, size: size})
	b.typeIdx[name] = len(b.types) - 1
	return len(b.types) - 1
}

// typeRef returns the index of name, registering primitives with their
// default size and unknown names with size 0.
func (b *Builder) typeRef(name string) int {
	if i, ok := b.typeIdx[name]; ok {
		return i
	}
	size := primitiveSizes[name]
	if name == "long" || name == "ulong" {
		size = b.PointerSize
	}
	return b.Type(name, size)
}

func (b *Builder) nameRef(name string) int {
	if i, ok := b.nameIdx[name]; ok {
		return i
	}
	b.names = append(b.names, name)
	b.nameIdx[name] = len(b.names) - 1
	return len(b.names) - 1
}

// Struct declares a structure whose size is computed from its fields and
// returns its structure index. Embedded structure types must be declared
// first.
func (b *Builder) Struct(name string, fields ...Field) int {
	b.typeRef(name)
	size := 0
	for _, f := range fields {
		size += b.fieldSize(f)
	}
	return b.StructSized(name, size, fields...)
}

// StructSized declares a structure with an explicit catalog size.
func (b *Builder) StructSized(name string, size int, fields ...Field) int {
	ti := b.Type(name, size)
	for _, f := range fields {
		b.typeRef(f.Type)
		b.nameRef(f.Name)
	}
	b.structs = append(b.structs, structEntry{typeIdx: ti, fields: fields})
	return len(b.structs) - 1
}

func (b *Builder) fieldSize(f Field) int {
	layout, err := fieldname.Parse(f.Name)
	if err != nil {
		panic(fmt.Sprintf("testutil: field %q: %v", f.Name, err))
	}
	n := 1
	for _, d := range layout.Dims {
		n *= d
	}
	if layout.Depth > 0 {
		return n * b.PointerSize
	}
	return n * b.types[b.typeRef(f.Type)].size
}

// SizeOf returns the catalog size of a declared type.
func (b *Builder) SizeOf(typeName string) int {
	return b.types[b.typeRef(typeName)].size
}

// Block appends a data block.
func (b *Builder) Block(code string, addr uint64, sdna, count int, body []byte) {
	b.blocks = append(b.blocks, rawBlock{code: code, addr: addr, sdna: sdna, count: count, body: body})
}

// Enc returns an Encoder using the builder's byte order and pointer width.
func (b *Builder) Enc() *Encoder {
	return &Encoder{Order: b.order(), PointerSize: b.PointerSize}
}

// HeaderBytes returns the encoded 12-byte file header.
func (b *Builder) HeaderBytes() []byte {
	out := []byte("BLENDER")
	if b.PointerSize == 4 {
		out = append(out, '_')
	} else {
		out = append(out, '-')
	}
	if b.Endian == blendtype.BigEndian {
		out = append(out, 'V')
	} else {
		out = append(out, 'v')
	}
	return append(out, b.Version...)
}

// CatalogBytes returns the encoded body of the DNA1 block.
func (b *Builder) CatalogBytes() []byte {
	e := b.Enc()
	e.Raw([]byte("SDNA"))

	e.Raw([]byte("NAME"))
	e.Int32(int32(len(b.names))) //nolint:gosec // test sizes
	for _, n := range b.names {
		e.CString(n)
	}
	e.Align(4)

	e.Raw([]byte("TYPE"))
	e.Int32(int32(len(b.types))) //nolint:gosec // test sizes
	for _, t := range b.types {
		e.CString(t.name)
	}
	e.Align(4)

	e.Raw([]byte("TLEN"))
	for _, t := range b.types {
		e.Int16(int16(t.size)) //nolint:gosec // test sizes
	}
	e.Align(4)

	e.Raw([]byte("STRC"))
	e.Int32(int32(len(b.structs))) //nolint:gosec // test sizes
	for _, s := range b.structs {
		e.Int16(int16(s.typeIdx))     //nolint:gosec // test sizes
		e.Int16(int16(len(s.fields))) //nolint:gosec // test sizes
		for _, f := range s.fields {
			e.Int16(int16(b.typeIdx[f.Type])) //nolint:gosec // test sizes
			e.Int16(int16(b.nameIdx[f.Name])) //nolint:gosec // test sizes
		}
	}
	return e.Bytes()
}

// BlockBytes encodes a single block, including alignment padding.
func (b *Builder) BlockBytes(code string, addr uint64, sdna, count int, body []byte) []byte {
	e := b.Enc()
	var c [4]byte
	copy(c[:], code)
	e.Raw(c[:])
	e.Int32(int32(len(body))) //nolint:gosec // test sizes
	e.Ptr(addr)
	e.Int32(int32(sdna))  //nolint:gosec // test sizes
	e.Int32(int32(count)) //nolint:gosec // test sizes
	e.Raw(body)
	e.Align(4)
	return e.Bytes()
}

// Bytes returns the complete file: header, data blocks, DNA1, ENDB.
func (b *Builder) Bytes() []byte {
	var buf bytes.Buffer
	buf.Write(b.HeaderBytes())
	for _, blk := range b.blocks {
		buf.Write(b.BlockBytes(blk.code, blk.addr, blk.sdna, blk.count, blk.body))
	}
	if !b.OmitCatalog {
		buf.Write(b.BlockBytes("DNA1", 0, 0, 1, b.CatalogBytes()))
	}
	if !b.OmitEnd {
		buf.Write(b.BlockBytes("ENDB", 0, 0, 0, nil))
	}
	return buf.Bytes()
}

// Encoder writes typed values in a fixed byte order.
type Encoder struct {
	Order       binary.AppendByteOrder
	PointerSize int
	buf         []byte
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Raw appends b verbatim.
func (e *Encoder) Raw(b []byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

// Zero appends n zero bytes.
func (e *Encoder) Zero(n int) *Encoder {
	e.buf = append(e.buf, make([]byte, n)...)
	return e
}

// Align pads with zeros to a multiple of n.
func (e *Encoder) Align(n int) *Encoder {
	for len(e.buf)%n != 0 {
		e.buf = append(e.buf, 0)
	}
	return e
}

// CString appends s followed by a NUL byte.
func (e *Encoder) CString(s string) *Encoder {
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
	return e
}

// Chars appends s padded with NUL bytes to exactly n bytes.
func (e *Encoder) Chars(s string, n int) *Encoder {
	b := make([]byte, n)
	copy(b, s)
	e.buf = append(e.buf, b...)
	return e
}

// Int8 appends v.
func (e *Encoder) Int8(v int8) *Encoder {
	e.buf = append(e.buf, byte(v))
	return e
}

// Int16 appends v.
func (e *Encoder) Int16(v int16) *Encoder {
	e.buf = e.Order.AppendUint16(e.buf, uint16(v)) //nolint:gosec // two's complement
	return e
}

// Uint16 appends v.
func (e *Encoder) Uint16(v uint16) *Encoder {
	e.buf = e.Order.AppendUint16(e.buf, v)
	return e
}

// Int32 appends v.
func (e *Encoder) Int32(v int32) *Encoder {
	e.buf = e.Order.AppendUint32(e.buf, uint32(v)) //nolint:gosec // two's complement
	return e
}

// Uint32 appends v.
func (e *Encoder) Uint32(v uint32) *Encoder {
	e.buf = e.Order.AppendUint32(e.buf, v)
	return e
}

// Int64 appends v.
func (e *Encoder) Int64(v int64) *Encoder {
	e.buf = e.Order.AppendUint64(e.buf, uint64(v)) //nolint:gosec // two's complement
	return e
}

// Uint64 appends v.
func (e *Encoder) Uint64(v uint64) *Encoder {
	e.buf = e.Order.AppendUint64(e.buf, v)
	return e
}

// Float32 appends v.
func (e *Encoder) Float32(v float32) *Encoder {
	return e.Uint32(math.Float32bits(v))
}

// Float64 appends v.
func (e *Encoder) Float64(v float64) *Encoder {
	return e.Uint64(math.Float64bits(v))
}

// Ptr appends an address at the encoder's pointer width.
func (e *Encoder) Ptr(v uint64) *Encoder {
	if e.PointerSize == 4 {
		return e.Uint32(uint32(v)) //nolint:gosec // test addresses fit
	}
	return e.Uint64(v)
}
