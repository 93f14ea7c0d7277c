package blend

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/meigma/blend/internal/testutil"
)

var (
	benchSinkFile      *File
	benchSinkInstances []*Instance
	benchSinkTOC       []byte
)

// benchFile builds a little-endian 8-byte file with blocks mesh-like
// blocks, each holding verts MVert records and pointing at the next block.
func benchFile(blocks, verts int) []byte {
	b := testutil.NewBuilder(8, LittleEndian)
	mvert := b.Struct("MVert", testutil.F("float", "co[3]"), testutil.F("short", "flag"))
	chunk := b.Struct("Chunk", testutil.F("Chunk", "*next"), testutil.F("MVert", "*verts"), testutil.F("int", "n"))

	for i := range blocks {
		addr := uint64(0x10000 + i*0x100)
		next := uint64(0)
		if i+1 < blocks {
			next = addr + 0x100
		}
		b.Block("CH\x00\x00", addr, chunk, 1, b.Enc().Ptr(next).Ptr(addr+0x80).Int32(int32(verts)).Bytes()) //nolint:gosec // bench sizes

		e := b.Enc()
		for v := range verts {
			e.Float32(float32(v)).Float32(float32(i)).Float32(0).Int16(0)
		}
		b.Block("DATA", addr+0x80, mvert, verts, e.Bytes())
	}
	return b.Bytes()
}

func BenchmarkParse(b *testing.B) {
	cases := []struct {
		blocks  int
		verts   int
		workers int
	}{
		{blocks: 64, verts: 256, workers: -1},
		{blocks: 64, verts: 256, workers: 0},
		{blocks: 1024, verts: 16, workers: -1},
		{blocks: 1024, verts: 16, workers: 0},
	}
	for _, bc := range cases {
		raw := benchFile(bc.blocks, bc.verts)
		b.Run(fmt.Sprintf("blocks=%d/verts=%d/workers=%d", bc.blocks, bc.verts, bc.workers), func(b *testing.B) {
			b.SetBytes(int64(len(raw)))
			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				f, err := Parse(bytes.NewReader(raw), WithWorkers(bc.workers))
				if err != nil {
					b.Fatal(err)
				}
				benchSinkFile = f
			}
		})
	}
}

func BenchmarkDerefChain(b *testing.B) {
	f, err := Parse(bytes.NewReader(benchFile(256, 8)))
	if err != nil {
		b.Fatal(err)
	}
	head, ok := f.Lookup(0x10000)
	if !ok {
		b.Fatal("missing head block")
	}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		in := head.Instances[0]
		for in != nil {
			verts, _ := in.Lookup("verts")
			benchSinkInstances, err = f.DerefStructs(verts)
			if err != nil {
				b.Fatal(err)
			}
			next, _ := in.Lookup("next")
			chain, err := f.DerefStructs(next)
			if err != nil {
				b.Fatal(err)
			}
			in = nil
			if len(chain) > 0 {
				in = chain[0]
			}
		}
	}
}

func BenchmarkMarshalTOC(b *testing.B) {
	f, err := Parse(bytes.NewReader(benchFile(1024, 4)))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		benchSinkTOC = f.MarshalTOC()
	}
}
