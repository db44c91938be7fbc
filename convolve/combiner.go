package convolve

import (
	"github.com/kpfaulkner/subpel-go/util"
)

// combiner clamps filtered rows to the sample range and either stores them
// or averages them with what the destination already holds. Row grouping
// belongs to the caller; emit takes whatever group it is handed.
type combiner struct {
	eng     *engine
	max     int32
	average bool
	// destination row widened for averaging
	prev []int32
}

// newCombiner builds a combiner for bitDepth samples. prev must be at least
// as wide as the rows emitted when average is set.
func newCombiner(eng *engine, average bool, bitDepth int, prev []int32) combiner {
	return combiner{
		eng:     eng,
		max:     util.MaxSample(bitDepth),
		average: average,
		prev:    prev,
	}
}

// emit writes vals[j] to output row y+j.
func (c *combiner) emit(dst Plane, y int, vals [][]int32) {
	for j, v := range vals {
		row := dst.Pix[dst.Row(y+j) : dst.Row(y+j)+len(v)]
		c.eng.clamp(v, c.max)
		if c.average {
			prev := c.prev[:len(v)]
			for i, s := range row {
				prev[i] = int32(s)
			}
			c.eng.avg(v, prev)
		}
		narrow(row, v)
	}
}

func narrow(dst []uint16, v []int32) {
	dst = dst[:len(v)]
	for i, s := range v {
		dst[i] = uint16(s)
	}
}
