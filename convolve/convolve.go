package convolve

import (
	"errors"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/kpfaulkner/subpel-go/kernel"
	"github.com/kpfaulkner/subpel-go/options"
	"github.com/kpfaulkner/subpel-go/util"
)

type Option func(c *Convolver) error

// WithRowsPerStep sets how many output rows each vertical step produces (1 or 2).
func WithRowsPerStep(n int) Option {
	return func(c *Convolver) error {
		if n != 1 && n != 2 {
			return errors.New("rows per step must be 1 or 2")
		}
		c.rowsPerStep = n
		return nil
	}
}

func WithScalarEngine() Option {
	return func(c *Convolver) error {
		c.eng = scalarEngine
		return nil
	}
}

// WithVectorEngine selects the hwy engine unless HWY_NO_SIMD is set.
func WithVectorEngine() Option {
	return func(c *Convolver) error {
		c.eng = vectorOrScalar()
		return nil
	}
}

func WithOptions(opts *options.ConvolveOptions) Option {
	return func(c *Convolver) error {
		o := options.NewConvolveOptions(opts)
		c.rowsPerStep = o.RowsPerStep
		c.eng = util.IfThenElse(o.Vector, vectorOrScalar(), scalarEngine)
		return nil
	}
}

// Convolver runs the sub-pixel interpolation filters. It holds no per-call
// state and is safe for concurrent use on disjoint destinations.
type Convolver struct {
	rowsPerStep int
	eng         *engine
}

func New(opts ...Option) *Convolver {
	c := &Convolver{
		rowsPerStep: options.DefaultRowsPerStep,
		eng:         scalarEngine,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			panic("Error applying option to Convolver: " + err.Error())
		}
	}
	return c
}

func vectorOrScalar() *engine {
	if hwy.NoSimdEnv() {
		return scalarEngine
	}
	return vectorEngine
}

// Engine names the filter implementation in use.
func (c *Convolver) Engine() string {
	return c.eng.name
}

func (c *Convolver) RowsPerStep() int {
	return c.rowsPerStep
}

// Convolve filters the w x h block of src horizontally with fx and then
// vertically with fy, and stores the result clamped to bit depth bd.
// src must carry 3 samples of context before and 4 after the block on both
// axes for 8-tap kernels, and 1 after for 2-tap kernels.
func (c *Convolver) Convolve(dst, src Plane, fx, fy kernel.Kernel, w, h, bd int) {
	c.convolve2D(dst, src, fx, fy, w, h, bd, false)
}

// ConvolveAvg is Convolve, averaging the result into dst.
func (c *Convolver) ConvolveAvg(dst, src Plane, fx, fy kernel.Kernel, w, h, bd int) {
	c.convolve2D(dst, src, fx, fy, w, h, bd, true)
}

func (c *Convolver) ConvolveHoriz(dst, src Plane, fx kernel.Kernel, w, h, bd int) {
	c.horiz(dst, src, fx, w, h, bd, false)
}

func (c *Convolver) ConvolveHorizAvg(dst, src Plane, fx kernel.Kernel, w, h, bd int) {
	c.horiz(dst, src, fx, w, h, bd, true)
}

func (c *Convolver) ConvolveVert(dst, src Plane, fy kernel.Kernel, w, h, bd int) {
	c.vert(dst, src, fy, w, h, bd, false)
}

func (c *Convolver) ConvolveVertAvg(dst, src Plane, fy kernel.Kernel, w, h, bd int) {
	c.vert(dst, src, fy, w, h, bd, true)
}

// Predict produces the w x h prediction for the kernel pair, routing an
// identity axis to the one-dimensional filter or, when both are identity,
// to a plain copy.
func (c *Convolver) Predict(dst, src Plane, fx, fy kernel.Kernel, w, h, bd int) {
	c.predict(dst, src, fx, fy, w, h, bd, false)
}

// PredictAvg is Predict averaging into dst, for the second half of a
// compound prediction.
func (c *Convolver) PredictAvg(dst, src Plane, fx, fy kernel.Kernel, w, h, bd int) {
	c.predict(dst, src, fx, fy, w, h, bd, true)
}

func (c *Convolver) predict(dst, src Plane, fx, fy kernel.Kernel, w, h, bd int, average bool) {
	switch {
	case fx.IsIdentity() && fy.IsIdentity():
		if average {
			CopyAvg(dst, src, w, h)
		} else {
			Copy(dst, src, w, h)
		}
	case fx.IsIdentity():
		c.vert(dst, src, fy, w, h, bd, average)
	case fy.IsIdentity():
		c.horiz(dst, src, fx, w, h, bd, average)
	default:
		c.convolve2D(dst, src, fx, fy, w, h, bd, average)
	}
}

func (c *Convolver) horiz(dst, src Plane, fx kernel.Kernel, w, h, bd int, average bool) {
	if w <= 0 || h <= 0 {
		return
	}
	taps := fx.Length()

	// Output rows, then the widened source row, then the averaging row.
	scratch := util.MakeMatrixPooled[int32](c.rowsPerStep+2, w+taps-1)
	defer util.ReturnMatrixToPool(scratch)
	wide := scratch.GetRow(c.rowsPerStep)
	comb := newCombiner(c.eng, average, bd, scratch.GetRow(c.rowsPerStep+1))
	var out [2][]int32

	for r := 0; r < h; r += c.rowsPerStep {
		n := min(c.rowsPerStep, h-r)
		for j := 0; j < n; j++ {
			out[j] = scratch.GetRow(j)[:w]
			loadRow(wide, src, src.Row(r+j), w, taps)
			c.eng.filterRow(out[j], wide, fx, taps)
		}
		comb.emit(dst, r, out[:n])
	}
}

func (c *Convolver) vert(dst, src Plane, fy kernel.Kernel, w, h, bd int, average bool) {
	if w <= 0 || h <= 0 {
		return
	}
	taps := fy.Length()

	// Ring of widened source rows.
	ring := util.MakeMatrixPooled[int32](taps+c.rowsPerStep-1, w)
	defer util.ReturnMatrixToPool(ring)

	wd := newWindow(ring, taps, func(dst []int32, y int) {
		loadBlockRow(dst, src, y, w)
	})
	c.verticalPass(dst, &wd, fy, w, h, bd, average)
}

func (c *Convolver) convolve2D(dst, src Plane, fx, fy kernel.Kernel, w, h, bd int, average bool) {
	if w <= 0 || h <= 0 {
		return
	}
	tx, ty := fx.Length(), fy.Length()

	// Horizontally filtered rows, unclamped, with ty-1 rows of vertical context.
	im := util.MakeMatrixPooled[int32](h+ty-1, w)
	defer util.ReturnMatrixToPool(im)
	wideBuf := util.MakeMatrixPooled[int32](1, w+tx-1)
	defer util.ReturnMatrixToPool(wideBuf)
	wide := wideBuf.GetRow(0)

	wd := newWindow(im, ty, func(dst []int32, y int) {
		loadRow(wide, src, src.Row(y), w, tx)
		c.eng.filterRow(dst, wide, fx, tx)
	})
	c.verticalPass(dst, &wd, fy, w, h, bd, average)
}

func (c *Convolver) verticalPass(dst Plane, wd *window, fy kernel.Kernel, w, h, bd int, average bool) {
	// Output rows, then the averaging row.
	outBuf := util.MakeMatrixPooled[int32](c.rowsPerStep+1, w)
	defer util.ReturnMatrixToPool(outBuf)
	comb := newCombiner(c.eng, average, bd, outBuf.GetRow(c.rowsPerStep))
	var out [2][]int32

	wd.init()
	for r := 0; r < h; r += c.rowsPerStep {
		n := min(c.rowsPerStep, h-r)
		rows := wd.step(r, n)
		for j := 0; j < n; j++ {
			out[j] = outBuf.GetRow(j)
			c.eng.filterCol(out[j], rows[j:j+wd.taps], fy, wd.taps)
		}
		comb.emit(dst, r, out[:n])
	}
}
