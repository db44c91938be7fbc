package convolve

import (
	"github.com/kpfaulkner/subpel-go/kernel"
	"github.com/kpfaulkner/subpel-go/util"
)

// window is the sliding set of rows the vertical pass reads. Logical row i
// holds source row i-contextBefore(taps) after fill has run on it. Rows are
// stored in buf at slot i % buf.Height, so a buffer tall enough for the
// whole block never wraps and a shorter one acts as a ring.
type window struct {
	buf    *util.Matrix[int32]
	taps   int
	loaded int
	fill   func(dst []int32, y int)
	view   [kernel.Taps + 1][]int32
}

// newWindow wraps buf. At most two output rows are made available per step.
func newWindow(buf *util.Matrix[int32], taps int, fill func(dst []int32, y int)) window {
	return window{
		buf:  buf,
		taps: taps,
		fill: fill,
	}
}

func (wd *window) push() {
	i := wd.loaded
	wd.fill(wd.buf.GetRow(i%wd.buf.Height), i-contextBefore(wd.taps))
	wd.loaded++
}

// init loads the taps-1 rows of context that precede the first output row.
func (wd *window) init() {
	for wd.loaded < wd.taps-1 {
		wd.push()
	}
}

// step makes output rows r..r+n-1 available and returns the taps+n-1 rows
// they read, oldest first. Output row r+j uses rows[j : j+taps].
func (wd *window) step(r, n int) [][]int32 {
	last := r + n + wd.taps - 1
	for wd.loaded < last {
		wd.push()
	}
	rows := wd.view[:n+wd.taps-1]
	for j := range rows {
		rows[j] = wd.buf.GetRow((r + j) % wd.buf.Height)
	}
	return rows
}
