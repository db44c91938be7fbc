package testcommon

import (
	"math/rand"
	"testing"

	"github.com/kpfaulkner/subpel-go/kernel"
)

// Margin is enough context for any kernel on either axis.
const Margin = 8

// Field is a random sample buffer holding a block at Offset with Margin
// samples of context on every side.
type Field struct {
	Pix    []uint16
	Offset int
	Stride int
}

func (f Field) At(x, y int) uint16 {
	return f.Pix[f.Offset+y*f.Stride+x]
}

// NewRand returns a deterministic source for test data.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func RandomSamples(rng *rand.Rand, n, bitDepth int) []uint16 {
	pix := make([]uint16, n)
	for i := range pix {
		pix[i] = uint16(rng.Intn(1 << bitDepth))
	}
	return pix
}

// RandomField builds a w x h block of random bitDepth samples, with extra
// stride padding so stride never equals the width.
func RandomField(rng *rand.Rand, w, h, bitDepth int) Field {
	stride := w + 2*Margin + rng.Intn(5)
	rows := h + 2*Margin
	return Field{
		Pix:    RandomSamples(rng, stride*rows, bitDepth),
		Offset: Margin*stride + Margin,
		Stride: stride,
	}
}

// ConstantField is a Field with every sample set to v.
func ConstantField(w, h int, v uint16) Field {
	stride := w + 2*Margin
	pix := make([]uint16, stride*(h+2*Margin))
	for i := range pix {
		pix[i] = v
	}
	return Field{Pix: pix, Offset: Margin*stride + Margin, Stride: stride}
}

func round(sum int64) int64 {
	return (sum + 1<<(kernel.RoundingBits-1)) >> kernel.RoundingBits
}

func clamp(v int64, bitDepth int) uint16 {
	hi := int64(1)<<bitDepth - 1
	if v < 0 {
		return 0
	}
	if v > hi {
		return uint16(hi)
	}
	return uint16(v)
}

// taps evaluates k directly over the 8 samples at positions -3..4 around
// the output position.
func taps(k kernel.Kernel, sample func(t int) int64) int64 {
	var sum int64
	for t := 0; t < kernel.Taps; t++ {
		sum += int64(k[t]) * sample(t-3)
	}
	return round(sum)
}

// ReferenceConvolve is a direct two-pass evaluation with an unclamped
// intermediate, used to check the convolve package. The result is w*h
// samples, row-major.
func ReferenceConvolve(f Field, fx, fy kernel.Kernel, w, h, bitDepth int) []uint16 {
	im := make([][]int64, h+7)
	for y := range im {
		im[y] = make([]int64, w)
		for x := 0; x < w; x++ {
			im[y][x] = taps(fx, func(t int) int64 { return int64(f.At(x+t, y-3)) })
		}
	}

	out := make([]uint16, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := taps(fy, func(t int) int64 { return im[y+3+t][x] })
			out[y*w+x] = clamp(v, bitDepth)
		}
	}
	return out
}

func ReferenceHoriz(f Field, fx kernel.Kernel, w, h, bitDepth int) []uint16 {
	out := make([]uint16, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = clamp(taps(fx, func(t int) int64 { return int64(f.At(x+t, y)) }), bitDepth)
		}
	}
	return out
}

func ReferenceVert(f Field, fy kernel.Kernel, w, h, bitDepth int) []uint16 {
	out := make([]uint16, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = clamp(taps(fy, func(t int) int64 { return int64(f.At(x, y+t)) }), bitDepth)
		}
	}
	return out
}

// Average is the compound combination of two predictions.
func Average(a, b []uint16) []uint16 {
	out := make([]uint16, len(a))
	for i := range a {
		out[i] = uint16((uint32(a[i]) + uint32(b[i]) + 1) >> 1)
	}
	return out
}

// Extract copies the w x h block at offset out of a strided buffer.
func Extract(pix []uint16, offset, stride, w, h int) []uint16 {
	out := make([]uint16, 0, w*h)
	for y := 0; y < h; y++ {
		out = append(out, pix[offset+y*stride:offset+y*stride+w]...)
	}
	return out
}

// RequireSamples fails t at the first differing sample.
func RequireSamples(t *testing.T, expected, actual []uint16, w int, msgAndArgs ...any) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("length mismatch: expected %d, got %d %v", len(expected), len(actual), msgAndArgs)
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Fatalf("sample (%d,%d): expected %d, got %d %v", i%w, i/w, expected[i], actual[i], msgAndArgs)
		}
	}
}
