package toc

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/blend/internal/blendtype"
	"github.com/meigma/blend/internal/block"
	"github.com/meigma/blend/internal/testutil"
)

type framed struct {
	raw    []byte
	hdr    blendtype.Header
	blocks []blendtype.Block
}

func frameFile(t *testing.T, ptr int, end blendtype.Endian) framed {
	t.Helper()
	b := testutil.NewBuilder(ptr, end)
	v := b.Struct("V", testutil.F("int", "v"))
	e := b.Enc
	b.Block("DATA", 0x300, v, 1, e().Int32(3).Bytes())
	b.Block("OB\x00\x00", 0x100, v, 1, e().Int32(1).Bytes())
	b.Block("DATA", 0x200, v, 2, e().Int32(2).Int32(22).Bytes())
	b.Block("DATA", 0x100, v, 1, e().Int32(9).Bytes())
	b.Block("DATA", 0x400, v, 0, []byte{7, 7, 7})

	raw := b.Bytes()
	hdr := blendtype.Header{PointerSize: ptr, Endian: end, Version: b.Version}
	blocks, err := block.Frame(bytes.NewReader(raw[12:]), hdr, 12)
	require.NoError(t, err)
	return framed{raw: raw, hdr: hdr, blocks: blocks}
}

func TestBuildLoad(t *testing.T) {
	t.Parallel()

	for _, ptr := range []int{4, 8} {
		for _, end := range []blendtype.Endian{blendtype.LittleEndian, blendtype.BigEndian} {
			f := frameFile(t, ptr, end)
			dgst := digest.FromBytes(f.raw)

			toc, err := Load(Build(f.hdr, dgst, f.blocks))
			require.NoError(t, err)

			assert.Equal(t, f.hdr, toc.Header())
			assert.Equal(t, dgst, toc.Digest())
			assert.Equal(t, len(f.blocks), toc.Len())

			var addrs []uint64
			for e := range toc.Entries() {
				addrs = append(addrs, e.Address)
			}
			// catalog and terminal blocks sit at address 0
			assert.Equal(t, []uint64{0, 0, 0x100, 0x100, 0x200, 0x300, 0x400}, addrs)
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()
	f := frameFile(t, 8, blendtype.LittleEndian)
	toc, err := Load(Build(f.hdr, "", f.blocks))
	require.NoError(t, err)
	assert.Empty(t, toc.Digest())

	tests := []struct {
		name  string
		addr  uint64
		index int
		ok    bool
	}{
		{name: "first of duplicates", addr: 0x100, index: 1, ok: true},
		{name: "unique", addr: 0x200, index: 2, ok: true},
		{name: "last entry", addr: 0x400, index: 4, ok: true},
		{name: "null", addr: 0, ok: false},
		{name: "between", addr: 0x250, ok: false},
		{name: "past end", addr: 0x500, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, ok := toc.Lookup(tt.addr)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.index, e.Index)
				assert.Equal(t, f.blocks[tt.index].Offset, e.Offset)
			}
		})
	}
}

func TestReadBlockAt(t *testing.T) {
	t.Parallel()
	f := frameFile(t, 4, blendtype.BigEndian)
	toc, err := Load(Build(f.hdr, "", f.blocks))
	require.NoError(t, err)
	src := bytes.NewReader(f.raw)

	for e := range toc.Entries() {
		got, err := ReadBlockAt(src, toc, e)
		require.NoError(t, err)
		assert.Equal(t, f.blocks[e.Index], got)
	}

	e, ok := toc.Lookup(0x200)
	require.True(t, ok)
	assert.Equal(t, "DATA", e.TrimmedCode())

	t.Run("header mismatch", func(t *testing.T) {
		t.Parallel()
		bad := e
		bad.Count = 5
		_, err := ReadBlockAt(src, toc, bad)
		var fe *blendtype.FormatError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "toc block header", fe.Op)
		assert.Equal(t, e.Offset, fe.Offset)
		assert.Contains(t, fe.Expected, "count 5")
		assert.Contains(t, fe.Found, "count 2")
	})

	t.Run("truncated body", func(t *testing.T) {
		t.Parallel()
		short := bytes.NewReader(f.raw[:e.Offset+int64(block.HeaderSize(4))+3])
		_, err := ReadBlockAt(short, toc, e)
		assert.ErrorIs(t, err, blendtype.ErrFormat)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("read failure", func(t *testing.T) {
		t.Parallel()
		failing := testutil.NewFailingSource(f.raw[:e.Offset+int64(block.HeaderSize(4))+3])
		_, err := ReadBlockAt(failing, toc, e)
		assert.ErrorIs(t, err, blendtype.ErrIO)
		assert.ErrorIs(t, err, testutil.ErrSourceFailed)
		assert.NotErrorIs(t, err, blendtype.ErrFormat)
	})

	t.Run("negative offset", func(t *testing.T) {
		t.Parallel()
		bad := e
		bad.Offset = -1
		_, err := ReadBlockAt(src, toc, bad)
		assert.ErrorIs(t, err, blendtype.ErrFormat)
	})
}

func TestVerify(t *testing.T) {
	t.Parallel()
	f := frameFile(t, 8, blendtype.LittleEndian)
	toc, err := Load(Build(f.hdr, digest.FromBytes(f.raw), f.blocks))
	require.NoError(t, err)

	require.NoError(t, toc.Verify(bytes.NewReader(f.raw)))

	tampered := bytes.Clone(f.raw)
	tampered[len(tampered)-30] ^= 0xff
	assert.ErrorIs(t, toc.Verify(bytes.NewReader(tampered)), ErrDigestMismatch)

	unsigned, err := Load(Build(f.hdr, "", f.blocks))
	require.NoError(t, err)
	assert.ErrorIs(t, unsigned.Verify(bytes.NewReader(f.raw)), ErrDigestMismatch)
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()
	f := frameFile(t, 8, blendtype.LittleEndian)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short", data: []byte{1, 2, 3}},
		{name: "garbage", data: []byte(strings.Repeat("\xff", 64))},
		{name: "bad pointer size", data: Build(blendtype.Header{PointerSize: 2}, "", f.blocks)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(tt.data)
			assert.ErrorIs(t, err, blendtype.ErrFormat)
		})
	}
}
