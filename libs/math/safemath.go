package math

import (
	"errors"
	"math"
)

var ErrOverflowUint32 = errors.New("uint32 overflow")
var ErrOverflowUint64 = errors.New("uint64 overflow")

// SafeAddUint32 adds two uint32 integers.
// If there is an overflow it returns an error.
func SafeAddUint32(a, b uint32) (uint32, error) {
	if a > math.MaxUint32-b {
		return 0, ErrOverflowUint32
	}
	return a + b, nil
}

// SafeAddUint64 adds two uint64 integers.
// If there is an overflow it returns an error.
func SafeAddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflowUint64
	}
	return a + b, nil
}

// ClampInt restricts v to the closed interval [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
