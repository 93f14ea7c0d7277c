// Package sizing provides safe size arithmetic and conversions to prevent overflow.
package sizing

import "math"

// ToInt64 converts a uint64 to int64, returning overflowErr if it doesn't fit.
func ToInt64(size uint64, overflowErr error) (int64, error) {
	if size > uint64(math.MaxInt64) {
		return 0, overflowErr
	}
	return int64(size), nil
}

// AddUint64 adds two uint64 values, returning (result, false) on overflow.
func AddUint64(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// MulInt multiplies two non-negative ints, returning (result, false) on
// overflow or negative input.
func MulInt(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// Product multiplies all values, returning (result, false) on overflow.
// The product of no values is 1.
func Product(values ...int) (int, bool) {
	out := 1
	for _, v := range values {
		var ok bool
		out, ok = MulInt(out, v)
		if !ok {
			return 0, false
		}
	}
	return out, true
}

// AlignUp rounds n up to the next multiple of align, which must be a power of two.
func AlignUp(n, align int64) int64 {
	return (n + align - 1) &^ (align - 1)
}
