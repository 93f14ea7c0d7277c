// Package sdna decodes the structure-DNA catalog embedded in every blend
// file: the name, type, type-length, and structure tables that describe
// the layout of all other blocks.
package sdna

import (
	"fmt"
	"log/slog"

	"github.com/meigma/blend/internal/blendtype"
	"github.com/meigma/blend/internal/block"
	"github.com/meigma/blend/internal/fieldname"
	"github.com/meigma/blend/internal/sizing"
)

// Type is one entry of the type table.
type Type struct {
	Index int
	Name  string
	Size  int

	// Struct is the structure declaring this type, nil for primitives.
	Struct *Struct
}

// IsPrimitive reports whether no structure declares the type.
func (t *Type) IsPrimitive() bool {
	return t.Struct == nil
}

// FieldDef is one resolved structure field.
type FieldDef struct {
	Name   string
	Type   *Type
	Layout fieldname.Layout

	// Size is the number of bytes the field occupies in its structure.
	Size int

	// Primitive is the scalar decoding for non-pointer primitive fields.
	Primitive blendtype.Primitive

	// Struct is the structure of a composite field type, nil otherwise.
	Struct *Struct

	err error
}

// Err returns the layout error recorded for the field, if any. Fields with
// an error cannot be decoded.
func (f *FieldDef) Err() error {
	return f.err
}

// IsPointer reports whether the field stores addresses.
func (f *FieldDef) IsPointer() bool {
	return f.Layout.Depth > 0
}

type resolveState uint8

const (
	unresolved resolveState = iota
	resolving
	resolved
)

type rawField struct {
	typ  int
	name int
}

// Struct is one entry of the structure table.
type Struct struct {
	Index int
	Type  *Type

	// Fields are in declaration order, which is the byte layout order.
	Fields []*FieldDef

	raw   []rawField
	state resolveState
}

// Name returns the structure's type name.
func (s *Struct) Name() string {
	return s.Type.Name
}

// Size returns the structure's declared byte size.
func (s *Struct) Size() int {
	return s.Type.Size
}

// Field returns the field with the given base name.
func (s *Struct) Field(name string) (*FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Layout.Base == name {
			return f, true
		}
	}
	return nil, false
}

// Catalog is a decoded structure-DNA block. It is immutable after Parse
// returns and safe for concurrent use.
type Catalog struct {
	hdr     blendtype.Header
	names   []string
	types   []*Type
	structs []*Struct
	byName  map[string]*Struct

	// resolutions counts structure field-list builds.
	resolutions int

	logger *slog.Logger
}

func (c *Catalog) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// Option configures catalog parsing.
type Option func(*Catalog)

// WithLogger sets the logger for catalog parsing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// Header returns the file header the catalog was parsed with.
func (c *Catalog) Header() blendtype.Header {
	return c.hdr
}

// PointerSize returns the file's pointer width.
func (c *Catalog) PointerSize() int {
	return c.hdr.PointerSize
}

// Names returns the name table.
func (c *Catalog) Names() []string {
	return c.names
}

// Types returns the type table.
func (c *Catalog) Types() []*Type {
	return c.types
}

// Structs returns the structure table.
func (c *Catalog) Structs() []*Struct {
	return c.structs
}

// Struct returns the structure at index i.
func (c *Catalog) Struct(i int) (*Struct, bool) {
	if i < 0 || i >= len(c.structs) {
		return nil, false
	}
	return c.structs[i], true
}

// StructByName returns the structure declaring the named type.
func (c *Catalog) StructByName(name string) (*Struct, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// Load locates the single catalog block in blocks and parses it.
func Load(blocks []blendtype.Block, hdr blendtype.Header, opts ...Option) (*Catalog, error) {
	var found *blendtype.Block
	for i := range blocks {
		if !blocks[i].IsCatalog() {
			continue
		}
		if found != nil {
			return nil, &blendtype.FormatError{
				Op:       "catalog",
				Offset:   blocks[i].Offset,
				Expected: "one " + blendtype.CodeCatalog + " block",
				Found:    "a second one",
				Err:      blendtype.ErrFormat,
			}
		}
		found = &blocks[i]
	}
	if found == nil {
		return nil, &blendtype.FormatError{
			Op:       "catalog",
			Expected: "one " + blendtype.CodeCatalog + " block",
			Found:    "none",
			Err:      blendtype.ErrFormat,
		}
	}
	bodyOffset := found.Offset + int64(block.HeaderSize(hdr.PointerSize))
	return Parse(found.Body, hdr, bodyOffset, opts...)
}

// Parse decodes a catalog block body. base is the absolute file offset of
// the body and is used only for error reporting.
func Parse(body []byte, hdr blendtype.Header, base int64, opts ...Option) (*Catalog, error) {
	c := &Catalog{hdr: hdr}
	for _, opt := range opts {
		opt(c)
	}

	r := &reader{b: body, base: base, order: hdr.Order()}
	if err := r.tag("SDNA"); err != nil {
		return nil, err
	}

	var err error
	if c.names, err = r.stringTable("NAME"); err != nil {
		return nil, err
	}
	typeNames, err := r.stringTable("TYPE")
	if err != nil {
		return nil, err
	}
	if err := c.readTypes(r, typeNames); err != nil {
		return nil, err
	}
	if err := c.readStructs(r); err != nil {
		return nil, err
	}

	for _, s := range c.structs {
		c.resolve(s)
	}

	c.log().Debug("parsed catalog",
		"names", len(c.names),
		"types", len(c.types),
		"structs", len(c.structs))
	return c, nil
}

func (c *Catalog) readTypes(r *reader, names []string) error {
	if err := r.tag("TLEN"); err != nil {
		return err
	}
	c.types = make([]*Type, len(names))
	for i, name := range names {
		size, err := r.uint16("type length")
		if err != nil {
			return err
		}
		c.types[i] = &Type{Index: i, Name: name, Size: int(size)}
	}
	r.align()
	return nil
}

func (c *Catalog) readStructs(r *reader) error {
	if err := r.tag("STRC"); err != nil {
		return err
	}
	n, err := r.count("structure count", 4)
	if err != nil {
		return err
	}

	c.structs = make([]*Struct, 0, n)
	c.byName = make(map[string]*Struct, n)
	for i := range n {
		at := r.offset()
		ti, err := r.index("structure type", len(c.types))
		if err != nil {
			return err
		}
		typ := c.types[ti]
		if typ.Struct != nil {
			return &blendtype.FormatError{
				Op:       "catalog structure",
				Offset:   at,
				Expected: "one structure per type",
				Found:    fmt.Sprintf("type %q declared twice", typ.Name),
				Err:      blendtype.ErrFormat,
			}
		}
		nf, err := r.count16("field count", 4)
		if err != nil {
			return err
		}
		s := &Struct{Index: i, Type: typ, raw: make([]rawField, nf)}
		for j := range nf {
			if s.raw[j].typ, err = r.index("field type", len(c.types)); err != nil {
				return err
			}
			if s.raw[j].name, err = r.index("field name", len(c.names)); err != nil {
				return err
			}
		}
		typ.Struct = s
		c.structs = append(c.structs, s)
		c.byName[typ.Name] = s
	}
	return nil
}

// resolve builds the field list of s. It is a no-op for structures that are
// already resolved or currently being resolved, which breaks cycles through
// pointer fields.
func (c *Catalog) resolve(s *Struct) {
	if s.state != unresolved {
		return
	}
	s.state = resolving
	c.resolutions++

	s.Fields = make([]*FieldDef, len(s.raw))
	for i, rf := range s.raw {
		s.Fields[i] = c.fieldDef(c.names[rf.name], c.types[rf.typ])
	}
	s.state = resolved
}

func (c *Catalog) fieldDef(name string, typ *Type) *FieldDef {
	f := &FieldDef{Name: name, Type: typ, Struct: typ.Struct}
	layout, err := fieldname.Parse(name)
	if err != nil {
		f.err = err
		return f
	}
	f.Layout = layout

	count, ok := sizing.Product(layout.Dims...)
	if !ok {
		f.err = fmt.Errorf("%w: field %q: extent overflow", blendtype.ErrUnsupportedLayout, name)
		return f
	}

	elem := 0
	switch {
	case layout.Depth > 0:
		elem = c.hdr.PointerSize
	case typ.IsPrimitive():
		prim, err := blendtype.LookupPrimitive(typ.Name, typ.Size, c.hdr.PointerSize)
		if err != nil {
			f.err = fmt.Errorf("field %q: %w", name, err)
			return f
		}
		f.Primitive = prim
		elem = prim.Size()
	default:
		if len(layout.Dims) > 1 {
			f.err = fmt.Errorf("%w: field %q: two-dimensional array of %s", blendtype.ErrUnsupportedLayout, name, typ.Name)
			return f
		}
		if typ.Struct.state == resolving {
			f.err = fmt.Errorf("%w: field %q: %s embeds itself", blendtype.ErrUnsupportedLayout, name, typ.Name)
			return f
		}
		// Embedded structures need their own layout before decode; pointer
		// fields only name the target.
		c.resolve(typ.Struct)
		elem = typ.Size
	}
	if f.Size, ok = sizing.MulInt(count, elem); !ok {
		f.err = fmt.Errorf("%w: field %q: size overflow", blendtype.ErrUnsupportedLayout, name)
	}
	return f
}
