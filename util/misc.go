package util

func IfThenElse[T any](condition bool, a T, b T) T {
	if condition {
		return a
	}
	return b
}

// FloorDivMod splits v into q and r with v == q*d + r and 0 <= r < d, for d > 0.
func FloorDivMod(v int, d int) (int, int) {
	q := v / d
	r := v % d
	if r < 0 {
		r += d
		q--
	}
	return q, r
}
