package blend

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/blend/internal/testutil"
)

func TestMarshalTOC(t *testing.T) {
	t.Parallel()

	raw := testutil.Scene(4, BigEndian).Bytes()
	f := mustParse(t, raw)

	toc, err := LoadTOC(f.MarshalTOC())
	require.NoError(t, err)
	assert.Equal(t, f.Header(), toc.Header())
	assert.Equal(t, f.Digest(), toc.Digest())
	assert.Equal(t, len(f.Blocks()), toc.Len())
	require.NoError(t, toc.Verify(bytes.NewReader(raw)))

	e, ok := toc.Lookup(testutil.SceneMesh)
	require.True(t, ok)
	assert.Equal(t, 1, e.Index)
	assert.Equal(t, "ME", e.TrimmedCode())

	blk, err := ReadBlockAt(bytes.NewReader(raw), toc, e)
	require.NoError(t, err)
	assert.Equal(t, f.Blocks()[1], blk)

	bad := e
	bad.Address = testutil.SceneObject
	_, err = ReadBlockAt(bytes.NewReader(raw), toc, bad)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, e.Offset, fe.Offset)
}

func TestVerifyTOCMismatch(t *testing.T) {
	t.Parallel()

	raw := testutil.Scene(8, LittleEndian).Bytes()
	toc, err := LoadTOC(mustParse(t, raw).MarshalTOC())
	require.NoError(t, err)

	other := testutil.Scene(4, LittleEndian).Bytes()
	assert.ErrorIs(t, toc.Verify(bytes.NewReader(other)), ErrDigestMismatch)
}
