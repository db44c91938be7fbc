package util

import (
	"cmp"

	"golang.org/x/exp/constraints"
)

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Integer](v T, lo T, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RoundPowerOfTwo divides v by 2^n rounding half up (arithmetic shift for signed values).
func RoundPowerOfTwo[T constraints.Integer](v T, n int) T {
	if n <= 0 {
		return v
	}
	return (v + T(1)<<(n-1)) >> n
}

// MaxSample is the largest sample value representable at the given bit depth.
func MaxSample(bitDepth int) int32 {
	return int32(1)<<bitDepth - 1
}

// Max returns the largest argument, or the zero value when there are none.
func Max[T cmp.Ordered](args ...T) T {
	if len(args) == 0 {
		return *new(T)
	}

	max := args[0]
	for _, arg := range args[1:] {
		if arg > max {
			max = arg
		}
	}
	return max
}
