// Package decode turns raw block bytes into typed field trees using a
// structure-DNA catalog.
package decode

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/meigma/blend/internal/blendtype"
	"github.com/meigma/blend/internal/sdna"
	"github.com/meigma/blend/internal/sizing"
)

// Decoder decodes structure instances. It holds no mutable state and is
// safe for concurrent use.
type Decoder struct {
	cat     *sdna.Catalog
	order   binary.ByteOrder
	ptrSize int
}

// New returns a Decoder for the file described by cat.
func New(cat *sdna.Catalog) *Decoder {
	hdr := cat.Header()
	return &Decoder{cat: cat, order: hdr.Order(), ptrSize: hdr.PointerSize}
}

// Catalog returns the catalog the decoder was built with.
func (d *Decoder) Catalog() *sdna.Catalog {
	return d.cat
}

// Decode decodes one instance of st from data. The fields must consume data
// exactly; otherwise a *blendtype.SizeMismatchError is returned.
func (d *Decoder) Decode(st *sdna.Struct, data []byte) (*blendtype.Instance, error) {
	return d.decodeStruct(st, data, st.Name(), "", nil)
}

// DecodeAll decodes count contiguous instances of st from data, which must
// be exactly count times the structure size.
func (d *Decoder) DecodeAll(st *sdna.Struct, data []byte, count int) ([]*blendtype.Instance, error) {
	want, ok := sizing.MulInt(count, st.Size())
	if !ok {
		return nil, fmt.Errorf("structure %s x %d: %w", st.Name(), count, blendtype.ErrSizeOverflow)
	}
	if want != len(data) {
		return nil, &blendtype.SizeMismatchError{Struct: st.Name(), Expected: want, Actual: len(data)}
	}
	out := make([]*blendtype.Instance, count)
	size := st.Size()
	for i := range out {
		in, err := d.Decode(st, data[i*size:(i+1)*size])
		if err != nil {
			return nil, err
		}
		out[i] = in
	}
	return out, nil
}

func (d *Decoder) decodeStruct(st *sdna.Struct, data []byte, name, path string, parent *blendtype.Field) (*blendtype.Instance, error) {
	total := 0
	for _, f := range st.Fields {
		if err := f.Err(); err != nil {
			return nil, fmt.Errorf("structure %s: %w", st.Name(), err)
		}
		total += f.Size
	}
	if total != len(data) {
		return nil, &blendtype.SizeMismatchError{Struct: st.Name(), Expected: total, Actual: len(data)}
	}

	in := &blendtype.Instance{
		Name:        name,
		TypeName:    st.Name(),
		StructIndex: st.Index,
		Size:        st.Size(),
		Fields:      make([]*blendtype.Field, 0, len(st.Fields)),
		Parent:      parent,
	}
	in.SetPath(path)

	cur := 0
	for _, def := range st.Fields {
		field, err := d.decodeField(def, data[cur:cur+def.Size], path, in)
		if err != nil {
			return nil, err
		}
		in.Fields = append(in.Fields, field)
		cur += def.Size
	}
	return in, nil
}

func (d *Decoder) decodeField(def *sdna.FieldDef, b []byte, parentPath string, parent *blendtype.Instance) (*blendtype.Field, error) {
	l := def.Layout
	f := &blendtype.Field{
		Name:     def.Name,
		BaseName: l.Base,
		TypeName: def.Type.Name,
		Size:     def.Size,
		Path:     joinPath(parentPath, l.Base),
		Depth:    l.Depth,
		Function: l.Function,
		Dims:     l.Dims,
		Parent:   parent,
	}

	switch {
	case l.Depth > 0 && !l.IsArray():
		f.Kind = blendtype.KindPointer
		if l.Depth == 2 {
			f.Kind = blendtype.KindPointerToPointer
		}
		f.Pointer = d.pointer(b)

	case l.Depth > 0:
		f.Kind = blendtype.KindPointerArray
		f.Pointers = make([]uint64, l.Count())
		for i := range f.Pointers {
			f.Pointers[i] = d.pointer(b[i*d.ptrSize:])
		}

	case def.Type.IsPrimitive():
		d.decodePrimitive(f, def, b)

	case !l.IsArray():
		f.Kind = blendtype.KindStruct
		in, err := d.decodeStruct(def.Struct, b, l.Base, f.Path, f)
		if err != nil {
			return nil, err
		}
		f.Struct = in

	case len(l.Dims) == 1:
		f.Kind = blendtype.KindStructArray
		size := def.Struct.Size()
		f.Structs = make([]*blendtype.Instance, l.Dims[0])
		for i := range f.Structs {
			elem := l.Base + "[" + strconv.Itoa(i) + "]"
			in, err := d.decodeStruct(def.Struct, b[i*size:(i+1)*size], elem, joinPath(parentPath, elem), f)
			if err != nil {
				return nil, err
			}
			f.Structs[i] = in
		}

	default:
		return nil, fmt.Errorf("%w: field %q: two-dimensional array of %s",
			blendtype.ErrUnsupportedLayout, def.Name, def.Type.Name)
	}
	return f, nil
}

func (d *Decoder) decodePrimitive(f *blendtype.Field, def *sdna.FieldDef, b []byte) {
	p := def.Primitive
	if !def.Layout.IsArray() {
		f.Kind = blendtype.KindScalar
		f.Scalar = blendtype.DecodeScalar(p, d.order, b)
		return
	}

	f.Kind = blendtype.KindArray
	if len(def.Layout.Dims) == 2 {
		f.Kind = blendtype.KindArray2D
	}
	elems := make([]blendtype.Scalar, def.Layout.Count())
	w := p.Size()
	for i := range elems {
		elems[i] = blendtype.DecodeScalar(p, d.order, b[i*w:])
	}
	f.Array = blendtype.Array{Type: p, Dims: def.Layout.Dims, Elems: elems}
}

func (d *Decoder) pointer(b []byte) uint64 {
	return ReadPointer(b, d.ptrSize, d.order)
}

// ReadPointer reads one address of the given width from the front of b.
func ReadPointer(b []byte, ptrSize int, order binary.ByteOrder) uint64 {
	if ptrSize == 4 {
		return uint64(order.Uint32(b))
	}
	return order.Uint64(b)
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
