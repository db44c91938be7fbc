package util

import (
	"golang.org/x/exp/constraints"
)

// Matrix makes a 1D slice appear as a 2D row-major slice.
// Note height is the first dimension, width the second.
type Matrix[T constraints.Ordered] struct {
	Width  int
	Height int
	Data   []T
}

func New2DMatrix[T constraints.Ordered](height int, width int) *Matrix[T] {
	return &Matrix[T]{Width: width, Height: height, Data: make([]T, width*height)}
}

// Note y is first param.
func (s *Matrix[T]) Get(y int, x int) T {
	return s.Data[y*s.Width+x]
}

func (s *Matrix[T]) Set(y int, x int, value T) {
	s.Data[y*s.Width+x] = value
}

func (s *Matrix[T]) GetRow(y int) []T {
	return s.Data[y*s.Width : (y+1)*s.Width : (y+1)*s.Width]
}

func (s *Matrix[T]) SetRow(y int, data []T) {
	copy(s.Data[y*s.Width:(y+1)*s.Width], data)
}

func (s *Matrix[T]) Clear() {
	clear(s.Data)
}
