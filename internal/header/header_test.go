package header

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/blend/internal/blendtype"
	"github.com/meigma/blend/internal/testutil"
)

func TestParseMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ptr     byte
		order   byte
		wantPtr int
		wantEnd blendtype.Endian
	}{
		{name: "32-bit little", ptr: '_', order: 'v', wantPtr: 4, wantEnd: blendtype.LittleEndian},
		{name: "32-bit big", ptr: '_', order: 'V', wantPtr: 4, wantEnd: blendtype.BigEndian},
		{name: "64-bit little", ptr: '-', order: 'v', wantPtr: 8, wantEnd: blendtype.LittleEndian},
		{name: "64-bit big", ptr: '-', order: 'V', wantPtr: 8, wantEnd: blendtype.BigEndian},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := append([]byte(Magic), tt.ptr, tt.order, '2', '7', '9')
			h, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPtr, h.PointerSize)
			assert.Equal(t, tt.wantEnd, h.Endian)
			assert.Equal(t, "279", h.Version)
		})
	}
}

func TestParseRejectsBadMarkers(t *testing.T) {
	t.Parallel()

	for _, b := range []byte{0, 'x', 'v', 'V', '_' + 1} {
		raw := append([]byte(Magic), b, 'v', '2', '7', '9')
		_, err := Parse(raw)
		assert.ErrorIs(t, err, blendtype.ErrFormat, "pointer marker %q", b)
	}
	for _, b := range []byte{0, '_', '-', 'w', 'W'} {
		raw := append([]byte(Magic), '-', b, '2', '7', '9')
		_, err := Parse(raw)
		assert.ErrorIs(t, err, blendtype.ErrFormat, "order marker %q", b)
	}
}

func TestParseFormatErrorContext(t *testing.T) {
	t.Parallel()

	raw := append([]byte(Magic), '-', 'x', '4', '0', '2')
	_, err := Parse(raw)

	var fe *blendtype.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, int64(8), fe.Offset)
	assert.Equal(t, "'x'", fe.Found)
}

func TestParseBadMagic(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("BLUNDER_v279"))
	require.ErrorIs(t, err, blendtype.ErrFormat)
	assert.NotErrorIs(t, err, blendtype.ErrCompressed)
}

func TestReadCompressedContainer(t *testing.T) {
	t.Parallel()

	tests := map[string][]byte{
		"gzip": {0x1f, 0x8b, 0x08, 0x00, 0, 0, 0, 0, 0, 0, 0, 0},
		"zstd": {0x28, 0xb5, 0x2f, 0xfd, 0, 0, 0, 0, 0, 0, 0, 0},
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Read(bytes.NewReader(raw))
			require.ErrorIs(t, err, blendtype.ErrCompressed)
			assert.ErrorIs(t, err, blendtype.ErrFormat)
		})
	}
}

func TestReadTruncated(t *testing.T) {
	t.Parallel()

	_, err := Read(bytes.NewReader([]byte("BLEND")))
	require.ErrorIs(t, err, blendtype.ErrFormat)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadIOError(t *testing.T) {
	t.Parallel()

	_, err := Read(testutil.NewFailingSource([]byte("BLENDER-v4")))
	require.ErrorIs(t, err, blendtype.ErrIO)
	assert.NotErrorIs(t, err, blendtype.ErrFormat)
}
