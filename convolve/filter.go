package convolve

import (
	"github.com/kpfaulkner/subpel-go/kernel"
	"github.com/kpfaulkner/subpel-go/util"
)

// Filter8 applies an 8-tap kernel to window[0:8] and rounds the result
// half-up by RoundingBits. The outer products are summed first, then the
// smaller and the larger of the two inner pairs.
func Filter8(window []int32, k kernel.Kernel) int32 {
	w := window[:kernel.Taps]
	outer := (int32(k[0])*w[0] + int32(k[1])*w[1]) + (int32(k[6])*w[6] + int32(k[7])*w[7])
	p23 := int32(k[2])*w[2] + int32(k[3])*w[3]
	p45 := int32(k[4])*w[4] + int32(k[5])*w[5]
	sum := outer + min(p23, p45)
	sum += max(p23, p45)
	return util.RoundPowerOfTwo(sum, kernel.RoundingBits)
}

// Filter2 applies the two centre taps of k to a and its neighbour b.
func Filter2(a, b int32, k kernel.Kernel) int32 {
	return util.RoundPowerOfTwo(int32(k[3])*a+int32(k[4])*b, kernel.RoundingBits)
}

// engine is one implementation of the row filters and sample stores.
// Every engine produces identical results. Kernels and row sets are passed
// by value so nothing a block touches escapes through the indirect calls.
type engine struct {
	name string

	// dst[x] = filter(wide[x : x+taps])
	row8 func(dst, wide []int32, k kernel.Kernel)
	row2 func(dst, wide []int32, k kernel.Kernel)

	// dst[x] = filter(rows[0][x], ..., rows[taps-1][x])
	col8 func(dst []int32, rows [kernel.Taps][]int32, k kernel.Kernel)
	col2 func(dst, top, bottom []int32, k kernel.Kernel)

	// clamp vals to [0, max] in place
	clamp func(vals []int32, max int32)
	// vals[x] = (vals[x] + prev[x] + 1) >> 1
	avg func(vals, prev []int32)
}

func (e *engine) filterRow(dst, wide []int32, k kernel.Kernel, taps int) {
	if taps == 2 {
		e.row2(dst, wide, k)
		return
	}
	e.row8(dst, wide, k)
}

func (e *engine) filterCol(dst []int32, rows [][]int32, k kernel.Kernel, taps int) {
	if taps == 2 {
		e.col2(dst, rows[0], rows[1], k)
		return
	}
	var win [kernel.Taps][]int32
	for t := range win {
		win[t] = rows[t]
	}
	e.col8(dst, win, k)
}

var scalarEngine = &engine{
	name:  "scalar",
	row8:  filterRow8,
	row2:  filterRow2,
	col8:  filterCol8,
	col2:  filterCol2,
	clamp: clampRow,
	avg:   avgRow,
}

func filterRow8(dst, wide []int32, k kernel.Kernel) {
	for x := range dst {
		dst[x] = Filter8(wide[x:x+kernel.Taps], k)
	}
}

func filterRow2(dst, wide []int32, k kernel.Kernel) {
	for x := range dst {
		dst[x] = Filter2(wide[x], wide[x+1], k)
	}
}

func filterCol8(dst []int32, rows [kernel.Taps][]int32, k kernel.Kernel) {
	var w [kernel.Taps]int32
	for x := range dst {
		for t := range w {
			w[t] = rows[t][x]
		}
		dst[x] = Filter8(w[:], k)
	}
}

func filterCol2(dst, top, bottom []int32, k kernel.Kernel) {
	a, b := top[:len(dst)], bottom[:len(dst)]
	for x := range dst {
		dst[x] = Filter2(a[x], b[x], k)
	}
}

func clampRow(vals []int32, hi int32) {
	for i, v := range vals {
		vals[i] = util.Clamp(v, 0, hi)
	}
}

func avgRow(vals, prev []int32) {
	prev = prev[:len(vals)]
	for i, v := range vals {
		vals[i] = (v + prev[i] + 1) >> 1
	}
}
