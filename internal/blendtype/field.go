package blendtype

import (
	"iter"
	"strconv"
	"strings"
)

// Kind tags the shape of a decoded field.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindScalar is a single primitive value in Field.Scalar.
	KindScalar
	// KindArray is a 1-D primitive array in Field.Array.
	KindArray
	// KindArray2D is a 2-D primitive array in Field.Array.
	KindArray2D
	// KindPointer is one raw address in Field.Pointer.
	KindPointer
	// KindPointerArray is a 1-D or 2-D array of raw addresses in Field.Pointers.
	KindPointerArray
	// KindPointerToPointer is one raw address in Field.Pointer whose target
	// block holds an array of addresses.
	KindPointerToPointer
	// KindStruct is an embedded structure instance in Field.Struct.
	KindStruct
	// KindStructArray is an array of embedded instances in Field.Structs.
	KindStructArray
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindArray2D:
		return "array2d"
	case KindPointer:
		return "pointer"
	case KindPointerArray:
		return "pointer_array"
	case KindPointerToPointer:
		return "pointer_to_pointer"
	case KindStruct:
		return "struct"
	case KindStructArray:
		return "struct_array"
	default:
		return "invalid"
	}
}

// Field is one decoded field of a structure instance.
//
// Kind selects which payload member is populated; the others are zero.
type Field struct {
	// Name is the declared field name including pointer markers and
	// extents, e.g. "*next" or "co[3]".
	Name string

	// BaseName is the bare identifier, e.g. "next" or "co".
	BaseName string

	// TypeName is the declared catalog type name.
	TypeName string

	// Size is the number of bytes the field occupies.
	Size int

	// Path is the dot-qualified path from the root instance, e.g. "id.name".
	Path string

	// Kind tags the payload.
	Kind Kind

	// Depth is the pointer depth (0, 1, or 2).
	Depth int

	// Function is set for function-pointer fields.
	Function bool

	// Dims holds the array extents, if any.
	Dims []int

	Scalar   Scalar
	Array    Array
	Pointer  uint64
	Pointers []uint64
	Struct   *Instance
	Structs  []*Instance

	// Parent is the instance that embeds this field.
	Parent *Instance
}

// IsPointer reports whether the field holds raw addresses.
func (f *Field) IsPointer() bool {
	return f.Depth > 0
}

// PointerRow returns row i of a 2-D pointer array, or all pointers for a
// 1-D pointer array.
func (f *Field) PointerRow(i int) []uint64 {
	if len(f.Dims) < 2 {
		return f.Pointers
	}
	cols := f.Dims[1]
	return f.Pointers[i*cols : (i+1)*cols]
}

// Instance is a decoded structure: a named tree of fields.
type Instance struct {
	// Name is the structure type name for block roots, the field name for
	// embedded instances, or "name[i]" for array elements.
	Name string

	// TypeName is the structure type name.
	TypeName string

	// StructIndex is the catalog structure index.
	StructIndex int

	// Size is the structure size in bytes.
	Size int

	// Address is the old address of the originating block.
	Address uint64

	// BlockIndex is the ordinal of the originating block.
	BlockIndex int

	// Fields are in declaration order.
	Fields []*Field

	// Parent is the embedding field, nil for block roots.
	Parent *Field

	path string
}

// SetPath records the instance's dot-qualified path. Decoders call it once
// while building the tree.
func (in *Instance) SetPath(p string) {
	in.path = p
}

// Path returns the dot-qualified path of the instance; block roots have an
// empty path.
func (in *Instance) Path() string {
	return in.path
}

// Field returns the direct field with the given base name.
func (in *Instance) Field(name string) (*Field, bool) {
	for _, f := range in.Fields {
		if f.BaseName == name {
			return f, true
		}
	}
	return nil, false
}

// Lookup returns the field at a dot-qualified path such as "id.name" or
// "mat[1].r". Array elements of embedded structures are addressed with
// an index suffix.
func (in *Instance) Lookup(path string) (*Field, bool) {
	cur := in
	parts := strings.Split(path, ".")
	for i, part := range parts {
		name, idx, hasIdx := splitIndex(part)
		f, ok := cur.Field(name)
		if !ok {
			return nil, false
		}
		last := i == len(parts)-1
		if last && !hasIdx {
			return f, true
		}
		switch {
		case f.Kind == KindStruct && !hasIdx:
			cur = f.Struct
		case f.Kind == KindStructArray && hasIdx:
			if idx < 0 || idx >= len(f.Structs) {
				return nil, false
			}
			cur = f.Structs[idx]
			if last {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return nil, false
}

// Element returns element i of the embedded structure array at path.
func (in *Instance) Element(path string, i int) (*Instance, bool) {
	f, ok := in.Lookup(path)
	if !ok || f.Kind != KindStructArray || i < 0 || i >= len(f.Structs) {
		return nil, false
	}
	return f.Structs[i], true
}

func splitIndex(part string) (string, int, bool) {
	open := strings.IndexByte(part, '[')
	if open < 0 || !strings.HasSuffix(part, "]") {
		return part, 0, false
	}
	n, err := strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil {
		return part, 0, false
	}
	return part[:open], n, true
}

// Leaves returns an iterator over all non-structure fields, descending into
// embedded instances in declaration order.
func (in *Instance) Leaves() iter.Seq[*Field] {
	return func(yield func(*Field) bool) {
		in.walk(yield)
	}
}

func (in *Instance) walk(yield func(*Field) bool) bool {
	for _, f := range in.Fields {
		switch f.Kind {
		case KindStruct:
			if !f.Struct.walk(yield) {
				return false
			}
		case KindStructArray:
			for _, s := range f.Structs {
				if !s.walk(yield) {
					return false
				}
			}
		default:
			if !yield(f) {
				return false
			}
		}
	}
	return true
}

// NumFields returns the number of leaf fields in the instance and all
// embedded instances.
func (in *Instance) NumFields() int {
	n := 0
	for range in.Leaves() {
		n++
	}
	return n
}
