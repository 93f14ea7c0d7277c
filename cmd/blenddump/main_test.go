package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/meigma/blend"
	"github.com/meigma/blend/internal/blendtype"
	"github.com/meigma/blend/internal/testutil"
)

func writeScene(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.blend")
	require.NoError(t, os.WriteFile(path, testutil.Scene(8, blendtype.LittleEndian).Bytes(), 0o600))
	return path
}

// run executes the CLI and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp(&out, &errOut)
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"blenddump"}, args...))
	return out.String(), errOut.String(), err
}

func TestHeaderCommand(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "header", writeScene(t))
	require.NoError(t, err)
	assert.Contains(t, out, "pointer size: 8\n")
	assert.Contains(t, out, "byte order:   little\n")
	assert.Contains(t, out, "version:      402\n")
	assert.Contains(t, out, "digest:       sha256:")
	assert.Contains(t, out, "blocks:       8\n")
	assert.Contains(t, out, "structs:      5\n")
}

func TestBlocksCommand(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "blocks", writeScene(t))
	require.NoError(t, err)
	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	// header row plus six data blocks, the catalog, and the terminal block
	require.Len(t, lines, 9)
	assert.Contains(t, string(lines[0]), "STATE")
	assert.Contains(t, string(lines[1]), "0000000000001000")
	assert.Contains(t, string(lines[1]), "Object")
	assert.Contains(t, string(lines[1]), "decoded")
	assert.Contains(t, string(lines[6]), "PREV")
	assert.Contains(t, string(lines[6]), "opaque")
	assert.Contains(t, string(lines[8]), "ENDB")
}

func TestStructsCommand(t *testing.T) {
	t.Parallel()

	path := writeScene(t)
	out, _, err := run(t, "structs", "--name", "Mesh", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Mesh (")
	assert.Contains(t, out, "*mvert")
	assert.NotContains(t, out, "Object")

	_, _, err = run(t, "structs", "--name", "Camera", path)
	assert.ErrorContains(t, err, `no structure named "Camera"`)
}

func TestInspectCommand(t *testing.T) {
	t.Parallel()

	path := writeScene(t)

	out, _, err := run(t, "inspect", "--addr", "0x1000", "--deref", path)
	require.NoError(t, err)
	assert.Contains(t, out, "block 0 OB at 0x1000")
	assert.Contains(t, out, `"OBCube"`)
	assert.Contains(t, out, `-> Mesh x1 "MECube"`)

	out, _, err = run(t, "inspect", "--addr", "0x6000", path)
	require.NoError(t, err)
	assert.Contains(t, out, "opaque, 7 bytes")

	_, _, err = run(t, "inspect", "--addr", "0xbeef", path)
	assert.ErrorContains(t, err, "no block at 0xbeef")

	_, _, err = run(t, "inspect", "--addr", "nope", path)
	assert.ErrorContains(t, err, "invalid address")
}

func TestDumpCommand(t *testing.T) {
	t.Parallel()

	path := writeScene(t)
	dst := filepath.Join(t.TempDir(), "scene.json.zst")
	_, _, err := run(t, "dump", "--zstd", "--out", dst, path)
	require.NoError(t, err)

	raw, err := os.ReadFile(dst)
	require.NoError(t, err)
	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()
	plain, err := dec.DecodeAll(raw, nil)
	require.NoError(t, err)

	var doc dumpFile
	require.NoError(t, json.Unmarshal(plain, &doc))
	assert.Equal(t, 8, doc.PointerSize)
	assert.Equal(t, "little", doc.Endian)
	require.Len(t, doc.Blocks, 6)

	ob := doc.Blocks[0]
	assert.Equal(t, "OB", ob.Code)
	assert.Equal(t, "0x0000000000001000", ob.Address)
	assert.False(t, ob.Opaque)
	require.Len(t, ob.Instances, 1)
	id := ob.Instances[0].Fields[0]
	require.NotNil(t, id.Struct)
	assert.Equal(t, "OBCube", id.Struct.Fields[0].Value)

	assert.True(t, doc.Blocks[5].Opaque)
	assert.Empty(t, doc.Blocks[5].Instances)
}

func TestDumpCommandStdout(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "dump", writeScene(t))
	require.NoError(t, err)
	var doc dumpFile
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Blocks, 6)
}

func TestDumpCommandNonFinite(t *testing.T) {
	t.Parallel()

	b := testutil.NewBuilder(8, blendtype.LittleEndian)
	st := b.Struct("Sample", testutil.F("float", "x"), testutil.F("double", "v[2]"))
	b.Block("DATA", 0x10, st, 1, b.Enc().
		Float32(float32(math.NaN())).
		Float64(math.Inf(-1)).Float64(1.5).Bytes())
	path := filepath.Join(t.TempDir(), "nan.blend")
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o600))

	out, _, err := run(t, "dump", path)
	require.NoError(t, err)

	var doc dumpFile
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Blocks, 1)
	fields := doc.Blocks[0].Instances[0].Fields
	assert.Equal(t, "NaN", fields[0].Value)
	assert.Equal(t, []any{"-Inf", 1.5}, fields[1].Value)
}

func TestScalarValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   blend.Scalar
		want any
	}{
		{name: "finite float", in: blendtype.NewScalar(blendtype.PrimFloat32, uint64(math.Float32bits(2.5))), want: float32(2.5)},
		{name: "nan float", in: blendtype.NewScalar(blendtype.PrimFloat32, uint64(math.Float32bits(float32(math.NaN())))), want: "NaN"},
		{name: "positive inf double", in: blendtype.NewScalar(blendtype.PrimFloat64, math.Float64bits(math.Inf(1))), want: "+Inf"},
		{name: "int", in: blendtype.NewScalar(blendtype.PrimInt32, 7), want: int32(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scalarValue(tt.in))
		})
	}
}

func TestTOCCommand(t *testing.T) {
	t.Parallel()

	path := writeScene(t)
	dst := filepath.Join(t.TempDir(), "scene.toc")
	out, _, err := run(t, "toc", "--out", dst, path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 8 entries")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	toc, err := blend.LoadTOC(data)
	require.NoError(t, err)
	assert.Equal(t, 8, toc.Len())

	src, err := os.Open(path)
	require.NoError(t, err)
	defer src.Close()
	assert.NoError(t, toc.Verify(src))
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	path := writeScene(t)

	_, _, err := run(t, "--log-level", "loud", "header", path)
	assert.ErrorContains(t, err, "invalid log level")

	_, errOut, err := run(t, "--log-level", "debug", "--workers", "-1", "header", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "opened file")
	assert.Contains(t, errOut, "opaque block")

	_, _, err = run(t, "header")
	assert.ErrorContains(t, err, "missing FILE argument")

	_, _, err = run(t, "header", filepath.Join(t.TempDir(), "missing.blend"))
	assert.ErrorIs(t, err, blend.ErrIO)
}
