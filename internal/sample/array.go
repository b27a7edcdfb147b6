package sample

import (
	"errors"
	"fmt"
)

// ErrShape is returned when an array's shape and data disagree.
var ErrShape = errors.New("sample: invalid shape")

// Array is a dense, labeled, row-major float64 array.
type Array struct {
	Dims  []string  `msgpack:"dims"`
	Shape []int     `msgpack:"shape"`
	Data  []float64 `msgpack:"data"`
}

// NewArray builds and validates an array.
func NewArray(dims []string, shape []int, data []float64) (*Array, error) {
	a := &Array{Dims: dims, Shape: shape, Data: data}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks that dims, shape and data agree.
func (a *Array) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil array", ErrShape)
	}
	if len(a.Dims) != 0 && len(a.Dims) != len(a.Shape) {
		return fmt.Errorf("%w: %d dims for rank %d", ErrShape, len(a.Dims), len(a.Shape))
	}
	if n := product(a.Shape); n != len(a.Data) {
		return fmt.Errorf("%w: shape %v needs %d values, got %d", ErrShape, a.Shape, n, len(a.Data))
	}
	return nil
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.Shape) }

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	if a == nil {
		return nil
	}
	return &Array{
		Dims:  append([]string(nil), a.Dims...),
		Shape: append([]int(nil), a.Shape...),
		Data:  append([]float64(nil), a.Data...),
	}
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		if s < 0 {
			return -1
		}
		n *= s
	}
	return n
}
