package convolve

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/kpfaulkner/subpel-go/kernel"
	"github.com/kpfaulkner/subpel-go/options"
	"github.com/kpfaulkner/subpel-go/testcommon"
	"github.com/stretchr/testify/assert"
)

func planeOf(f testcommon.Field) Plane {
	return Plane{Pix: f.Pix, Offset: f.Offset, Stride: f.Stride}
}

func block(f testcommon.Field, w, h int) []uint16 {
	return testcommon.Extract(f.Pix, f.Offset, f.Stride, w, h)
}

// convolvers covers every engine and row grouping.
func convolvers() map[string]*Convolver {
	res := make(map[string]*Convolver)
	for _, rows := range []int{1, 2} {
		res[fmt.Sprintf("scalar/%d", rows)] = New(WithScalarEngine(), WithRowsPerStep(rows))
		vec := New(WithRowsPerStep(rows))
		vec.eng = vectorEngine
		res[fmt.Sprintf("hwy/%d", rows)] = vec
	}
	return res
}

func randomKernel(rng *rand.Rand) kernel.Kernel {
	return kernel.Lookup(kernel.InterpFilter(rng.Intn(int(kernel.NumFilters))), rng.Intn(kernel.SubpelShifts))
}

var bitDepths = []int{8, 10, 12}

func TestConvolveMatchesReference(t *testing.T) {
	for name, c := range convolvers() {
		rng := testcommon.NewRand(42)
		for iter := 0; iter < 150; iter++ {
			w := 1 + rng.Intn(24)
			h := 1 + rng.Intn(20)
			bd := bitDepths[rng.Intn(len(bitDepths))]
			fx, fy := randomKernel(rng), randomKernel(rng)

			src := testcommon.RandomField(rng, w, h, bd)
			dst := testcommon.RandomField(rng, w, h, bd)
			c.Convolve(planeOf(dst), planeOf(src), fx, fy, w, h, bd)

			expected := testcommon.ReferenceConvolve(src, fx, fy, w, h, bd)
			testcommon.RequireSamples(t, expected, block(dst, w, h), w, name, iter, fx, fy)
		}
	}
}

func TestConvolve1DMatchesReference(t *testing.T) {
	for name, c := range convolvers() {
		rng := testcommon.NewRand(43)
		for iter := 0; iter < 100; iter++ {
			w := 1 + rng.Intn(24)
			h := 1 + rng.Intn(20)
			bd := bitDepths[rng.Intn(len(bitDepths))]
			k := randomKernel(rng)
			src := testcommon.RandomField(rng, w, h, bd)

			dst := testcommon.RandomField(rng, w, h, bd)
			c.ConvolveHoriz(planeOf(dst), planeOf(src), k, w, h, bd)
			testcommon.RequireSamples(t, testcommon.ReferenceHoriz(src, k, w, h, bd), block(dst, w, h), w, name, "horiz", iter)

			c.ConvolveVert(planeOf(dst), planeOf(src), k, w, h, bd)
			testcommon.RequireSamples(t, testcommon.ReferenceVert(src, k, w, h, bd), block(dst, w, h), w, name, "vert", iter)
		}
	}
}

func TestAverageVariants(t *testing.T) {
	for name, c := range convolvers() {
		rng := testcommon.NewRand(44)
		for iter := 0; iter < 60; iter++ {
			w := 1 + rng.Intn(20)
			h := 1 + rng.Intn(12)
			bd := bitDepths[rng.Intn(len(bitDepths))]
			fx, fy := randomKernel(rng), randomKernel(rng)
			src := testcommon.RandomField(rng, w, h, bd)

			tests := []struct {
				op       string
				run      func(dst Plane)
				filtered []uint16
			}{
				{"2d", func(dst Plane) { c.ConvolveAvg(dst, planeOf(src), fx, fy, w, h, bd) }, testcommon.ReferenceConvolve(src, fx, fy, w, h, bd)},
				{"horiz", func(dst Plane) { c.ConvolveHorizAvg(dst, planeOf(src), fx, w, h, bd) }, testcommon.ReferenceHoriz(src, fx, w, h, bd)},
				{"vert", func(dst Plane) { c.ConvolveVertAvg(dst, planeOf(src), fy, w, h, bd) }, testcommon.ReferenceVert(src, fy, w, h, bd)},
			}

			for _, tt := range tests {
				dst := testcommon.RandomField(rng, w, h, bd)
				before := block(dst, w, h)
				tt.run(planeOf(dst))
				testcommon.RequireSamples(t, testcommon.Average(tt.filtered, before), block(dst, w, h), w, name, tt.op, iter)
			}
		}
	}
}

func TestRowGroupingIsInvisible(t *testing.T) {
	rng := testcommon.NewRand(45)
	one := New(WithRowsPerStep(1))
	two := New(WithRowsPerStep(2))

	for iter := 0; iter < 50; iter++ {
		w, h := 4<<rng.Intn(3), 1+rng.Intn(17)
		fx, fy := randomKernel(rng), randomKernel(rng)
		src := testcommon.RandomField(rng, w, h, 10)

		a := testcommon.ConstantField(w, h, 0)
		b := testcommon.ConstantField(w, h, 0)
		one.Predict(planeOf(a), planeOf(src), fx, fy, w, h, 10)
		two.Predict(planeOf(b), planeOf(src), fx, fy, w, h, 10)
		assert.Equal(t, block(a, w, h), block(b, w, h), "iter %d", iter)
	}
}

func TestIdentityKernelIgnoresContext(t *testing.T) {
	const w, h = 8, 8
	rng := testcommon.NewRand(46)

	for _, contextValue := range []uint16{0, 255} {
		src := testcommon.ConstantField(w, h, contextValue)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				src.Pix[src.Offset+y*src.Stride+x] = uint16(rng.Intn(256))
			}
		}

		for name, c := range convolvers() {
			dst := testcommon.ConstantField(w, h, 0)
			c.Convolve(planeOf(dst), planeOf(src), kernel.Identity, kernel.Identity, w, h, 8)
			assert.Equal(t, block(src, w, h), block(dst, w, h), name)
		}
	}
}

func TestIdentityAxisRouting(t *testing.T) {
	rng := testcommon.NewRand(47)
	const w, h, bd = 16, 8, 12
	src := testcommon.RandomField(rng, w, h, bd)
	k := kernel.Lookup(kernel.Sharp, 5)

	tests := []struct {
		name     string
		fx, fy   kernel.Kernel
		expected []uint16
	}{
		{"copy", kernel.Identity, kernel.Identity, block(src, w, h)},
		{"horizontal only", k, kernel.Identity, testcommon.ReferenceHoriz(src, k, w, h, bd)},
		{"vertical only", kernel.Identity, k, testcommon.ReferenceVert(src, k, w, h, bd)},
		{"both", k, k, testcommon.ReferenceConvolve(src, k, k, w, h, bd)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := testcommon.RandomField(rng, w, h, bd)
			Predict(planeOf(dst), planeOf(src), tt.fx, tt.fy, w, h, bd)
			testcommon.RequireSamples(t, tt.expected, block(dst, w, h), w)

			prev := block(dst, w, h)
			PredictAvg(planeOf(dst), planeOf(src), tt.fx, tt.fy, w, h, bd)
			testcommon.RequireSamples(t, testcommon.Average(tt.expected, prev), block(dst, w, h), w)
		})
	}
}

func TestColumnsAreIndependent(t *testing.T) {
	rng := testcommon.NewRand(48)
	fx, fy := kernel.Lookup(kernel.Regular, 3), kernel.Lookup(kernel.Smooth, 11)

	for _, w := range []int{4, 8, 16} {
		const h = 8
		src := testcommon.RandomField(rng, w, h, 8)
		dst := testcommon.ConstantField(w, h, 0)
		Convolve(planeOf(dst), planeOf(src), fx, fy, w, h, 8)

		for x := 0; x < w; x++ {
			col := testcommon.ConstantField(1, h, 0)
			Convolve(planeOf(col), planeOf(src).Sub(x, 0), fx, fy, 1, h, 8)
			for y := 0; y < h; y++ {
				assert.Equal(t, col.At(0, y), dst.At(x, y), "width %d column %d row %d", w, x, y)
			}
		}
	}
}

func TestClampToBitDepth(t *testing.T) {
	overshoot := kernel.Kernel{-16, 0, 0, 160, 0, 0, 0, -16}
	twoTapOvershoot := kernel.Kernel{0, 0, 0, 192, -64, 0, 0, 0}

	for _, bd := range bitDepths {
		hi := uint16(1<<bd - 1)
		for _, k := range []kernel.Kernel{overshoot, twoTapOvershoot} {
			for name, c := range convolvers() {
				// A bright block on a dark surround rings above max inside
				// and below zero outside.
				const w, h = 8, 4
				src := testcommon.ConstantField(w+8, h, 0)
				for y := 0; y < h; y++ {
					for x := 0; x < 4; x++ {
						src.Pix[src.Offset+y*src.Stride+x] = hi
					}
				}

				dst := testcommon.ConstantField(w, h, 7)
				c.ConvolveHoriz(planeOf(dst), planeOf(src), k, w, h, bd)
				for y := 0; y < h; y++ {
					assert.Equal(t, hi, dst.At(0, y), "%s bd %d", name, bd)
					for x := 0; x < w; x++ {
						assert.LessOrEqual(t, dst.At(x, y), hi)
					}
				}
				assert.Equal(t, uint16(0), dst.At(4, 0), "%s bd %d %v", name, bd, k)
			}
		}
	}
}

func TestCopy(t *testing.T) {
	rng := testcommon.NewRand(49)
	for _, size := range [][2]int{{4, 4}, {8, 3}, {16, 16}, {5, 1}, {33, 7}} {
		w, h := size[0], size[1]
		src := testcommon.RandomField(rng, w, h, 12)
		dst := testcommon.RandomField(rng, w+3, h, 12)
		assert.NotEqual(t, src.Stride, dst.Stride)

		Copy(planeOf(dst), planeOf(src), w, h)
		assert.Equal(t, block(src, w, h), block(dst, w, h))
	}
}

func TestCopyAvg(t *testing.T) {
	tests := []struct {
		name     string
		src, dst uint16
		expected uint16
	}{
		{"zero and max", 0, 255, 128},
		{"max and max", 255, 255, 255},
		{"zero and zero", 0, 0, 0},
		{"rounds up", 3, 4, 4},
		{"12 bit max", 4095, 4095, 4095},
		{"12 bit halves", 0, 4095, 2048},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := testcommon.ConstantField(4, 4, tt.src)
			dst := testcommon.ConstantField(6, 4, tt.dst)
			CopyAvg(planeOf(dst), planeOf(src), 4, 4)
			for _, v := range block(dst, 4, 4) {
				assert.Equal(t, tt.expected, v)
			}
			// outside the block is untouched
			assert.Equal(t, tt.dst, dst.At(4, 0))
			assert.Equal(t, tt.dst, dst.At(0, 4))
		})
	}
}

func TestWritesOnlyTheBlock(t *testing.T) {
	rng := testcommon.NewRand(50)
	const w, h = 8, 6
	src := testcommon.RandomField(rng, w, h, 10)
	dst := testcommon.RandomField(rng, w, h, 10)
	before := append([]uint16(nil), dst.Pix...)

	Convolve(planeOf(dst), planeOf(src), kernel.Lookup(kernel.Regular, 7), kernel.Lookup(kernel.Bilinear, 2), w, h, 10)
	for i := range dst.Pix {
		x, y := (i-dst.Offset)%dst.Stride, (i-dst.Offset)/dst.Stride
		if i >= dst.Offset && x >= 0 && x < w && y < h {
			continue
		}
		assert.Equal(t, before[i], dst.Pix[i], "sample %d", i)
	}
}

func TestMarginViolationPanics(t *testing.T) {
	pix := make([]uint16, 8*8)
	src := Plane{Pix: pix, Offset: 0, Stride: 8}
	dst := Plane{Pix: make([]uint16, 8*8), Offset: 0, Stride: 8}
	assert.Panics(t, func() {
		Convolve(dst, src, kernel.Lookup(kernel.Regular, 4), kernel.Lookup(kernel.Regular, 4), 4, 4, 8)
	})
}

func TestOptions(t *testing.T) {
	c := New(WithRowsPerStep(1), WithScalarEngine())
	assert.Equal(t, 1, c.RowsPerStep())
	assert.Equal(t, "scalar", c.Engine())

	assert.Equal(t, "scalar", New().Engine())
	assert.Equal(t, "scalar", New(WithOptions(nil)).Engine())

	expected := "hwy"
	if hwy.NoSimdEnv() {
		expected = "scalar"
	}
	assert.Equal(t, expected, New(WithVectorEngine()).Engine())
	assert.Equal(t, expected, New(WithOptions(&options.ConvolveOptions{Vector: true})).Engine())

	assert.Panics(t, func() { New(WithRowsPerStep(3)) })
}

// blockAllocBudget is the most heap allocations one prediction may make on
// the default engine. Scratch comes from the matrix pools, so the count
// must not grow with the block size.
const blockAllocBudget = 2

func TestDefaultEngineAllocations(t *testing.T) {
	if raceEnabled {
		t.Skip("sync.Pool drops entries under the race detector")
	}
	sharp, regular := kernel.Lookup(kernel.Sharp, 9), kernel.Lookup(kernel.Regular, 5)
	bilinear, id := kernel.Lookup(kernel.Bilinear, 3), kernel.Identity

	tests := []struct {
		name   string
		fx, fy kernel.Kernel
	}{
		{"2d", regular, sharp},
		{"2d bilinear", bilinear, bilinear},
		{"horiz", regular, id},
		{"vert", id, sharp},
		{"copy", id, id},
	}

	rng := testcommon.NewRand(5)
	for _, rows := range []int{1, 2} {
		c := New(WithRowsPerStep(rows))
		for _, tt := range tests {
			for _, w := range []int{4, 16, 64} {
				src := testcommon.RandomField(rng, w, w, 10)
				dst := testcommon.ConstantField(w, w, 0)
				t.Run(fmt.Sprintf("%s/%d/%dx%d", tt.name, rows, w, w), func(t *testing.T) {
					allocs := testing.AllocsPerRun(100, func() {
						c.Predict(planeOf(dst), planeOf(src), tt.fx, tt.fy, w, w, 10)
						c.PredictAvg(planeOf(dst), planeOf(src), tt.fx, tt.fy, w, w, 10)
					})
					assert.LessOrEqual(t, allocs, float64(2*blockAllocBudget))
				})
			}
		}
	}
}

func BenchmarkConvolve(b *testing.B) {
	rng := testcommon.NewRand(1)
	fx, fy := kernel.Lookup(kernel.Regular, 5), kernel.Lookup(kernel.Sharp, 9)

	for _, w := range []int{4, 8, 16} {
		src := testcommon.RandomField(rng, w, w, 10)
		dst := testcommon.ConstantField(w, w, 0)
		for name, c := range convolvers() {
			b.Run(fmt.Sprintf("%dx%d/%s", w, w, name), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					c.Convolve(planeOf(dst), planeOf(src), fx, fy, w, w, 10)
				}
			})
		}
	}
}
