package predict

import (
	"github.com/kpfaulkner/subpel-go/kernel"
	"github.com/kpfaulkner/subpel-go/picture"
	"github.com/kpfaulkner/subpel-go/util"
)

// MotionVector is a displacement in 1/8 luma samples.
type MotionVector struct {
	Row int16
	Col int16
}

// Request describes one prediction block. X and Y locate the block in both
// the destination and, before displacement, the reference. SubX and SubY
// are the plane's chroma subsampling shifts (0 or 1).
type Request struct {
	X, Y          int
	Width, Height int
	MV            MotionVector
	FilterX       kernel.InterpFilter
	FilterY       kernel.InterpFilter
	SubX, SubY    int
}

// toQ4 converts a 1/8 luma component to 1/16 samples of a plane with
// subsampling shift ss.
func toQ4(v int16, ss int) int {
	return int(v) * (1 << (1 - ss))
}

// Position splits a motion vector component into a whole-sample offset and
// a 1/16 phase, rounding towards negative infinity.
func Position(v int16, ss int) (int, int) {
	return util.FloorDivMod(toQ4(v, ss), kernel.SubpelShifts)
}

// ClampMV clips the vector of req so that the referenced window, including
// the kernel context on every side, lies inside ref and its border.
func ClampMV(req Request, ref *picture.Buffer) MotionVector {
	clampAxis := func(v int16, pos, size, limit, ss int) int16 {
		lo := (-ref.Border + picture.InterpExtend - pos) * kernel.SubpelShifts
		hi := (limit + ref.Border - picture.InterpExtend - size - pos) * kernel.SubpelShifts
		q4 := util.Clamp(toQ4(v, ss), lo, util.Max(lo, hi))
		return int16(q4 >> (1 - ss))
	}

	return MotionVector{
		Row: clampAxis(req.MV.Row, req.Y, req.Height, ref.Height, req.SubY),
		Col: clampAxis(req.MV.Col, req.X, req.Width, ref.Width, req.SubX),
	}
}
