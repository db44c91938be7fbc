package convolve

import (
	"github.com/ajroetker/go-highway/hwy"
	"github.com/kpfaulkner/subpel-go/kernel"
)

// roundBias makes the RoundingBits shift round half up.
const roundBias = 1 << (kernel.RoundingBits - 1)

// vectorEngine runs the bulk of each row on hwy lanes and finishes the
// remainder with the scalar filters. The portable hwy ops allocate a
// vector per call, so this engine is opt-in until the filters are built
// from hwygen-generated kernels.
var vectorEngine = &engine{
	name:  "hwy",
	row8:  vecFilterRow8,
	row2:  vecFilterRow2,
	col8:  vecFilterCol8,
	col2:  vecFilterCol2,
	clamp: vecClampRow,
	avg:   vecAvgRow,
}

type tapVecs [kernel.Taps]hwy.Vec[int32]

func broadcastTaps(k kernel.Kernel) tapVecs {
	var kv tapVecs
	for t := range kv {
		kv[t] = hwy.Set(int32(k[t]))
	}
	return kv
}

// sum8 mirrors Filter8's addition order lane by lane.
func sum8(w *tapVecs, kv *tapVecs, bias hwy.Vec[int32]) hwy.Vec[int32] {
	outer := hwy.Add(
		hwy.Add(hwy.Mul(kv[0], w[0]), hwy.Mul(kv[1], w[1])),
		hwy.Add(hwy.Mul(kv[6], w[6]), hwy.Mul(kv[7], w[7])),
	)
	p23 := hwy.Add(hwy.Mul(kv[2], w[2]), hwy.Mul(kv[3], w[3]))
	p45 := hwy.Add(hwy.Mul(kv[4], w[4]), hwy.Mul(kv[5], w[5]))
	sum := hwy.Add(outer, hwy.Min(p23, p45))
	sum = hwy.Add(sum, hwy.Max(p23, p45))
	return hwy.ShiftRight(hwy.Add(sum, bias), kernel.RoundingBits)
}

func vecFilterRow8(dst, wide []int32, k kernel.Kernel) {
	lanes := hwy.MaxLanes[int32]()
	kv := broadcastTaps(k)
	bias := hwy.Set(int32(roundBias))

	x := 0
	var w tapVecs
	for ; x+lanes <= len(dst); x += lanes {
		for t := range w {
			w[t] = hwy.Load(wide[x+t:])
		}
		hwy.Store(sum8(&w, &kv, bias), dst[x:])
	}

	// Scalar remainder
	for ; x < len(dst); x++ {
		dst[x] = Filter8(wide[x:x+kernel.Taps], k)
	}
}

func vecFilterRow2(dst, wide []int32, k kernel.Kernel) {
	lanes := hwy.MaxLanes[int32]()
	k3, k4 := hwy.Set(int32(k[3])), hwy.Set(int32(k[4]))
	bias := hwy.Set(int32(roundBias))

	x := 0
	for ; x+lanes <= len(dst); x += lanes {
		a := hwy.Load(wide[x:])
		b := hwy.Load(wide[x+1:])
		sum := hwy.Add(hwy.Add(hwy.Mul(k3, a), hwy.Mul(k4, b)), bias)
		hwy.Store(hwy.ShiftRight(sum, kernel.RoundingBits), dst[x:])
	}

	for ; x < len(dst); x++ {
		dst[x] = Filter2(wide[x], wide[x+1], k)
	}
}

func vecFilterCol8(dst []int32, rows [kernel.Taps][]int32, k kernel.Kernel) {
	lanes := hwy.MaxLanes[int32]()
	kv := broadcastTaps(k)
	bias := hwy.Set(int32(roundBias))

	x := 0
	var w tapVecs
	for ; x+lanes <= len(dst); x += lanes {
		for t := range w {
			w[t] = hwy.Load(rows[t][x:])
		}
		hwy.Store(sum8(&w, &kv, bias), dst[x:])
	}

	if x < len(dst) {
		for t := range rows {
			rows[t] = rows[t][x:]
		}
		filterCol8(dst[x:], rows, k)
	}
}

func vecFilterCol2(dst, top, bottom []int32, k kernel.Kernel) {
	lanes := hwy.MaxLanes[int32]()
	k3, k4 := hwy.Set(int32(k[3])), hwy.Set(int32(k[4]))
	bias := hwy.Set(int32(roundBias))

	x := 0
	for ; x+lanes <= len(dst); x += lanes {
		a := hwy.Load(top[x:])
		b := hwy.Load(bottom[x:])
		sum := hwy.Add(hwy.Add(hwy.Mul(k3, a), hwy.Mul(k4, b)), bias)
		hwy.Store(hwy.ShiftRight(sum, kernel.RoundingBits), dst[x:])
	}

	for ; x < len(dst); x++ {
		dst[x] = Filter2(top[x], bottom[x], k)
	}
}

func vecClampRow(vals []int32, hi int32) {
	lanes := hwy.MaxLanes[int32]()
	lo, hiv := hwy.Zero[int32](), hwy.Set(hi)

	i := 0
	for ; i+lanes <= len(vals); i += lanes {
		hwy.Store(hwy.Clamp(hwy.Load(vals[i:]), lo, hiv), vals[i:])
	}
	clampRow(vals[i:], hi)
}

// vecAvgRow relies on both operands being clamped, so hwy.Avg's
// (a+b+1)/2 equals the half-up shift.
func vecAvgRow(vals, prev []int32) {
	lanes := hwy.MaxLanes[int32]()

	i := 0
	for ; i+lanes <= len(vals); i += lanes {
		hwy.Store(hwy.Avg(hwy.Load(vals[i:]), hwy.Load(prev[i:])), vals[i:])
	}
	avgRow(vals[i:], prev[i:])
}
