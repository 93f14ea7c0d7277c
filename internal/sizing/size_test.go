package sizing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOverflow = errors.New("overflow")

func TestToInt64(t *testing.T) {
	t.Parallel()

	n, err := ToInt64(1<<40, errOverflow)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40), n)

	_, err = ToInt64(math.MaxUint64, errOverflow)
	assert.ErrorIs(t, err, errOverflow)
}

func TestAddUint64(t *testing.T) {
	t.Parallel()

	n, ok := AddUint64(1, 2)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), n)

	_, ok = AddUint64(math.MaxUint64, 1)
	assert.False(t, ok)
}

func TestMulInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b int
		want int
		ok   bool
	}{
		{name: "simple", a: 6, b: 7, want: 42, ok: true},
		{name: "zero", a: 0, b: math.MaxInt, want: 0, ok: true},
		{name: "negative", a: -1, b: 2, ok: false},
		{name: "overflow", a: math.MaxInt/2 + 1, b: 2, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := MulInt(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestProduct(t *testing.T) {
	t.Parallel()

	n, ok := Product()
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	n, ok = Product(2, 3, 4)
	assert.True(t, ok)
	assert.Equal(t, 24, n)

	_, ok = Product(math.MaxInt, 2)
	assert.False(t, ok)
}

func TestAlignUp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), AlignUp(0, 4))
	assert.Equal(t, int64(4), AlignUp(1, 4))
	assert.Equal(t, int64(4), AlignUp(4, 4))
	assert.Equal(t, int64(8), AlignUp(5, 4))
}
