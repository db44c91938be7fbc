package convolve

import (
	"github.com/kpfaulkner/subpel-go/kernel"
)

// std is used by the package-level functions.
var std = New()

func Convolve(dst, src Plane, fx, fy kernel.Kernel, w, h, bd int) {
	std.Convolve(dst, src, fx, fy, w, h, bd)
}

func ConvolveAvg(dst, src Plane, fx, fy kernel.Kernel, w, h, bd int) {
	std.ConvolveAvg(dst, src, fx, fy, w, h, bd)
}

func ConvolveHoriz(dst, src Plane, fx kernel.Kernel, w, h, bd int) {
	std.ConvolveHoriz(dst, src, fx, w, h, bd)
}

func ConvolveHorizAvg(dst, src Plane, fx kernel.Kernel, w, h, bd int) {
	std.ConvolveHorizAvg(dst, src, fx, w, h, bd)
}

func ConvolveVert(dst, src Plane, fy kernel.Kernel, w, h, bd int) {
	std.ConvolveVert(dst, src, fy, w, h, bd)
}

func ConvolveVertAvg(dst, src Plane, fy kernel.Kernel, w, h, bd int) {
	std.ConvolveVertAvg(dst, src, fy, w, h, bd)
}

// Predict is the per-block entry point; see Convolver.Predict.
func Predict(dst, src Plane, fx, fy kernel.Kernel, w, h, bd int) {
	std.Predict(dst, src, fx, fy, w, h, bd)
}

func PredictAvg(dst, src Plane, fx, fy kernel.Kernel, w, h, bd int) {
	std.PredictAvg(dst, src, fx, fy, w, h, bd)
}

func (c *Convolver) Copy(dst, src Plane, w, h int) {
	Copy(dst, src, w, h)
}

func (c *Convolver) CopyAvg(dst, src Plane, w, h int) {
	CopyAvg(dst, src, w, h)
}
