package convolve

// Plane addresses a block inside a strided sample buffer. Sample (x, y) of
// the block lives at Pix[Offset+y*Stride+x]; x and y may be negative inside
// the caller's extension margin.
type Plane struct {
	Pix    []uint16
	Offset int
	Stride int
}

// Row returns the offset of row y of the block.
func (p Plane) Row(y int) int {
	return p.Offset + y*p.Stride
}

// At returns sample (x, y) relative to the block origin.
func (p Plane) At(x, y int) uint16 {
	return p.Pix[p.Offset+y*p.Stride+x]
}

// Sub returns the plane whose origin is (x, y) of p.
func (p Plane) Sub(x, y int) Plane {
	return Plane{Pix: p.Pix, Offset: p.Offset + y*p.Stride + x, Stride: p.Stride}
}
