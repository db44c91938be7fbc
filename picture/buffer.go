package picture

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/kpfaulkner/subpel-go/convolve"
	"github.com/kpfaulkner/subpel-go/util"
)

const (
	// InterpExtend is how far past a block the 8-tap kernels read.
	InterpExtend = 4

	// DefaultBorder is the extension margin used by the tools.
	DefaultBorder = 32
)

var (
	ErrInvalidDimensions = errors.New("invalid picture dimensions")
	ErrInvalidBitDepth   = errors.New("invalid bit depth")
)

// Buffer is a single plane of samples surrounded by Border samples of
// margin on every side. Pix holds (Height+2*Border) rows of Stride samples.
type Buffer struct {
	Width    int
	Height   int
	Border   int
	Stride   int
	BitDepth int

	Pix []uint16
}

func ValidBitDepth(bitDepth int) bool {
	return bitDepth == 8 || bitDepth == 10 || bitDepth == 12
}

func New(width int, height int, border int, bitDepth int) (*Buffer, error) {
	if width <= 0 || height <= 0 || border < 0 {
		return nil, fmt.Errorf("%w: %dx%d border %d", ErrInvalidDimensions, width, height, border)
	}
	if !ValidBitDepth(bitDepth) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBitDepth, bitDepth)
	}

	stride := width + 2*border
	return &Buffer{
		Width:    width,
		Height:   height,
		Border:   border,
		Stride:   stride,
		BitDepth: bitDepth,
		Pix:      make([]uint16, stride*(height+2*border)),
	}, nil
}

// Offset is the index in Pix of sample (x, y). Coordinates may reach
// Border samples outside the picture.
func (b *Buffer) Offset(x int, y int) int {
	return (y+b.Border)*b.Stride + x + b.Border
}

func (b *Buffer) At(x int, y int) uint16 {
	return b.Pix[b.Offset(x, y)]
}

func (b *Buffer) Set(x int, y int, v uint16) {
	b.Pix[b.Offset(x, y)] = v
}

// Row returns the Width samples of picture row y.
func (b *Buffer) Row(y int) []uint16 {
	off := b.Offset(0, y)
	return b.Pix[off : off+b.Width]
}

// Plane returns the view of the buffer whose block origin is (x, y).
func (b *Buffer) Plane(x int, y int) convolve.Plane {
	return convolve.Plane{Pix: b.Pix, Offset: b.Offset(x, y), Stride: b.Stride}
}

func (b *Buffer) Max() uint16 {
	return uint16(util.MaxSample(b.BitDepth))
}

// Contains reports whether the w x h block at (x, y), widened by extra
// samples on each side, lies inside the picture plus its border.
func (b *Buffer) Contains(x, y, w, h, extra int) bool {
	return x-extra >= -b.Border && y-extra >= -b.Border &&
		x+w+extra <= b.Width+b.Border && y+h+extra <= b.Height+b.Border
}

// ExtendBorders replicates the edge samples of the picture into the margin.
func (b *Buffer) ExtendBorders() {
	for y := 0; y < b.Height; y++ {
		row := b.Pix[b.Offset(-b.Border, y) : b.Offset(b.Width+b.Border, y)]
		left, right := row[b.Border], row[b.Border+b.Width-1]
		for x := 0; x < b.Border; x++ {
			row[x] = left
			row[b.Border+b.Width+x] = right
		}
	}

	top := b.Pix[b.Offset(-b.Border, 0) : b.Offset(-b.Border, 0)+b.Stride]
	bottom := b.Pix[b.Offset(-b.Border, b.Height-1) : b.Offset(-b.Border, b.Height-1)+b.Stride]
	for y := 1; y <= b.Border; y++ {
		copy(b.Pix[b.Offset(-b.Border, -y):], top)
		copy(b.Pix[b.Offset(-b.Border, b.Height-1+y):], bottom)
	}
}

func (b *Buffer) Clone() *Buffer {
	c := *b
	c.Pix = append([]uint16(nil), b.Pix...)
	return &c
}

// Equals compares the picture area of two buffers, ignoring the margin.
func (b *Buffer) Equals(other *Buffer) bool {
	if b.Width != other.Width || b.Height != other.Height || b.BitDepth != other.BitDepth {
		return false
	}
	for y := 0; y < b.Height; y++ {
		r1, r2 := b.Row(y), other.Row(y)
		for x := range r1 {
			if r1[x] != r2[x] {
				return false
			}
		}
	}
	return true
}

// FromImage converts img to luma at the given bit depth.
func FromImage(img image.Image, border int, bitDepth int) (*Buffer, error) {
	bounds := img.Bounds()
	buf, err := New(bounds.Dx(), bounds.Dy(), border, bitDepth)
	if err != nil {
		return nil, err
	}

	shift := 16 - bitDepth
	for y := 0; y < buf.Height; y++ {
		row := buf.Row(y)
		for x := range row {
			g := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			row[x] = g.Y >> shift
		}
	}
	buf.ExtendBorders()
	return buf, nil
}

func (b *Buffer) ToGray16() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, b.Width, b.Height))
	max := uint32(b.Max())
	for y := 0; y < b.Height; y++ {
		for x, v := range b.Row(y) {
			img.SetGray16(x, y, color.Gray16{Y: uint16(uint32(v) * 0xffff / max)})
		}
	}
	return img
}

func (b *Buffer) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x, v := range b.Row(y) {
			img.SetGray(x, y, color.Gray{Y: uint8(v >> (b.BitDepth - 8))})
		}
	}
	return img
}
