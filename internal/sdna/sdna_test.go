package sdna

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/blend/internal/blendtype"
	"github.com/meigma/blend/internal/testutil"
)

func header(b *testutil.Builder) blendtype.Header {
	return blendtype.Header{PointerSize: b.PointerSize, Endian: b.Endian, Version: b.Version}
}

func parseBuilder(t *testing.T, b *testutil.Builder) *Catalog {
	t.Helper()
	c, err := Parse(b.CatalogBytes(), header(b), 0)
	require.NoError(t, err)
	return c
}

func TestParseTables(t *testing.T) {
	t.Parallel()

	for _, end := range []blendtype.Endian{blendtype.LittleEndian, blendtype.BigEndian} {
		t.Run(end.String(), func(t *testing.T) {
			t.Parallel()

			b := testutil.NewBuilder(8, end)
			b.Struct("Vec", testutil.F("float", "x"), testutil.F("float", "y"))
			b.Struct("Node",
				testutil.F("int", "id"),
				testutil.F("Vec", "co"),
				testutil.F("Node", "*next"),
				testutil.F("Node", "**kids"),
				testutil.F("char", "name[8]"),
			)
			c := parseBuilder(t, b)

			require.Len(t, c.Structs(), 2)
			node, ok := c.StructByName("Node")
			require.True(t, ok)
			assert.Equal(t, "Node", node.Name())
			assert.Equal(t, 4+8+8+8+8, node.Size())
			require.Len(t, node.Fields, 5)

			want := []struct {
				name string
				size int
			}{
				{"id", 4}, {"co", 8}, {"next", 8}, {"kids", 8}, {"name", 8},
			}
			for i, w := range want {
				f := node.Fields[i]
				assert.Equal(t, w.name, f.Layout.Base)
				assert.Equal(t, w.size, f.Size, w.name)
				assert.NoError(t, f.Err())
			}

			co, _ := node.Field("co")
			vec, _ := c.StructByName("Vec")
			assert.Same(t, vec, co.Struct)
			assert.False(t, co.Type.IsPrimitive())

			id, _ := node.Field("id")
			assert.True(t, id.Type.IsPrimitive())
			assert.Equal(t, blendtype.PrimInt32, id.Primitive)

			next, _ := node.Field("next")
			assert.True(t, next.IsPointer())
			assert.Same(t, node, next.Struct)

			name, _ := node.Field("name")
			assert.Equal(t, []int{8}, name.Layout.Dims)
		})
	}
}

func TestResolveSelfReferenceOnce(t *testing.T) {
	t.Parallel()

	b := testutil.NewBuilder(8, blendtype.LittleEndian)
	b.Struct("Link",
		testutil.F("Link", "*next"),
		testutil.F("Link", "*prev"),
		testutil.F("int", "value"),
	)
	c := parseBuilder(t, b)

	link, ok := c.StructByName("Link")
	require.True(t, ok)
	require.Len(t, link.Fields, 3)
	assert.Equal(t, 1, c.resolutions)

	// Further resolution requests are no-ops.
	c.resolve(link)
	c.resolve(link)
	assert.Equal(t, 1, c.resolutions)
	assert.Same(t, link, link.Fields[0].Struct)
}

func TestResolveMutualRecursion(t *testing.T) {
	t.Parallel()

	b := testutil.NewBuilder(4, blendtype.LittleEndian)
	b.Struct("A", testutil.F("B", "*b"), testutil.F("int", "x"))
	b.Struct("B", testutil.F("A", "*a"), testutil.F("A", "embedded"))
	c := parseBuilder(t, b)

	assert.Equal(t, 2, c.resolutions)
	a, _ := c.StructByName("A")
	bs, _ := c.StructByName("B")
	assert.Same(t, bs, a.Fields[0].Struct)
	assert.Same(t, a, bs.Fields[0].Struct)
	assert.Equal(t, 4+8, bs.Size())
	assert.Equal(t, 8, bs.Fields[1].Size)
}

func TestParseBadTag(t *testing.T) {
	t.Parallel()

	b := testutil.NewBuilder(8, blendtype.LittleEndian)
	b.Struct("Vec", testutil.F("float", "x"))
	good := b.CatalogBytes()

	for _, tag := range []string{"SDNA", "NAME", "TYPE", "TLEN", "STRC"} {
		t.Run(tag, func(t *testing.T) {
			t.Parallel()
			at := bytes.Index(good, []byte(tag))
			require.GreaterOrEqual(t, at, 0)
			body := bytes.Clone(good)
			body[at+1] = 'X'

			_, err := Parse(body, header(b), 1000)
			var fe *blendtype.FormatError
			require.ErrorAs(t, err, &fe)
			assert.ErrorIs(t, err, blendtype.ErrFormat)
			assert.Equal(t, int64(1000+at), fe.Offset)
			assert.Contains(t, fe.Expected, tag)
		})
	}
}

func TestParseTruncated(t *testing.T) {
	t.Parallel()

	b := testutil.NewBuilder(8, blendtype.LittleEndian)
	b.Struct("Vec", testutil.F("float", "x"), testutil.F("float", "y"))
	body := b.CatalogBytes()

	for _, cut := range []int{2, 6, len(body) / 2, len(body) - 2} {
		_, err := Parse(body[:cut], header(b), 0)
		require.ErrorIs(t, err, blendtype.ErrFormat, "cut at %d", cut)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "cut at %d", cut)
	}
}

func TestParseIndexOutOfRange(t *testing.T) {
	t.Parallel()

	b := testutil.NewBuilder(8, blendtype.LittleEndian)
	e := b.Enc()
	e.Raw([]byte("SDNA"))
	e.Raw([]byte("NAME")).Int32(1).CString("x").Align(4)
	e.Raw([]byte("TYPE")).Int32(2).CString("int").CString("S").Align(4)
	e.Raw([]byte("TLEN")).Int16(4).Int16(4).Align(4)
	// field type index 9 does not exist
	e.Raw([]byte("STRC")).Int32(1).Int16(1).Int16(1).Int16(9).Int16(0)

	_, err := Parse(e.Bytes(), header(b), 0)
	var fe *blendtype.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "catalog field type", fe.Op)
	assert.Equal(t, "9", fe.Found)
}

func TestParseNegativeCount(t *testing.T) {
	t.Parallel()

	b := testutil.NewBuilder(8, blendtype.LittleEndian)
	e := b.Enc()
	e.Raw([]byte("SDNA")).Raw([]byte("NAME")).Int32(-1)

	_, err := Parse(e.Bytes(), header(b), 0)
	assert.ErrorIs(t, err, blendtype.ErrFormat)
}

func TestFieldLayoutErrors(t *testing.T) {
	t.Parallel()

	b := testutil.NewBuilder(8, blendtype.LittleEndian)
	b.Struct("Vec", testutil.F("float", "x"))
	b.StructSized("Odd", 64,
		testutil.F("int", "***deep"),
		testutil.F("Vec", "grid[2][2]"),
		testutil.F("void", "raw"),
		testutil.F("Odd", "self"),
	)
	c := parseBuilder(t, b)

	odd, ok := c.StructByName("Odd")
	require.True(t, ok)
	require.Len(t, odd.Fields, 4)
	for _, f := range odd.Fields {
		assert.ErrorIs(t, f.Err(), blendtype.ErrUnsupportedLayout, f.Name)
	}
}

func TestLongNarrowing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ptr  int
		want blendtype.Primitive
	}{
		{ptr: 4, want: blendtype.PrimInt32},
		{ptr: 8, want: blendtype.PrimInt64},
	}
	for _, tt := range tests {
		b := testutil.NewBuilder(tt.ptr, blendtype.LittleEndian)
		b.Struct("S", testutil.F("long", "l"))
		c := parseBuilder(t, b)
		s, _ := c.StructByName("S")
		assert.Equal(t, tt.want, s.Fields[0].Primitive)
		assert.Equal(t, tt.ptr, s.Fields[0].Size)
	}
}

func TestFunctionPointerField(t *testing.T) {
	t.Parallel()

	b := testutil.NewBuilder(4, blendtype.BigEndian)
	b.Struct("Op", testutil.F("void", "(*exec)()"), testutil.F("int", "flag"))
	c := parseBuilder(t, b)

	op, _ := c.StructByName("Op")
	f := op.Fields[0]
	require.NoError(t, f.Err())
	assert.True(t, f.Layout.Function)
	assert.True(t, f.IsPointer())
	assert.Equal(t, 4, f.Size)
	assert.Equal(t, 8, op.Size())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	b := testutil.NewBuilder(8, blendtype.LittleEndian)
	b.Struct("Vec", testutil.F("float", "x"))
	b.Block("DATA", 0x10, 0, 1, []byte{0, 0, 0, 0})
	blocks := []blendtype.Block{
		{Code: "DATA", Body: []byte{0, 0, 0, 0}},
		{Code: blendtype.CodeCatalog, Offset: 36, Body: b.CatalogBytes()},
		{Code: blendtype.CodeEnd},
	}

	c, err := Load(blocks, header(b))
	require.NoError(t, err)
	_, ok := c.StructByName("Vec")
	assert.True(t, ok)

	_, err = Load(blocks[:1], header(b))
	assert.ErrorIs(t, err, blendtype.ErrFormat)

	dup := append(blocks[:2:2], blocks[1])
	_, err = Load(dup, header(b))
	assert.ErrorIs(t, err, blendtype.ErrFormat)
}

func TestStructIndexLookup(t *testing.T) {
	t.Parallel()

	b := testutil.NewBuilder(8, blendtype.LittleEndian)
	idx := b.Struct("Vec", testutil.F("float", "x"))
	c := parseBuilder(t, b)

	s, ok := c.Struct(idx)
	require.True(t, ok)
	assert.Equal(t, "Vec", s.Name())

	_, ok = c.Struct(-1)
	assert.False(t, ok)
	_, ok = c.Struct(len(c.Structs()))
	assert.False(t, ok)
}
