package sample

import (
	"fmt"
	"maps"
)

// Flatten returns a copy of s whose Flat view holds the cube reshaped to
// (space × band). The cube must be band-first with at least one spatial
// dimension.
func Flatten(s *Sample) (*Sample, error) {
	if s == nil || s.Cube == nil {
		return nil, fmt.Errorf("%w: sample has no cube to flatten", ErrShape)
	}
	if err := s.Cube.Validate(); err != nil {
		return nil, err
	}
	if s.Cube.Rank() < 2 {
		return nil, fmt.Errorf("%w: cube rank %d, want band plus at least one spatial dim", ErrShape, s.Cube.Rank())
	}
	nBands := s.Cube.Shape[0]
	if len(s.Bands) != 0 && len(s.Bands) != nBands {
		return nil, fmt.Errorf("%w: %d band labels for %d bands", ErrShape, len(s.Bands), nBands)
	}

	spatial := s.Cube.Shape[1:]
	nSpace := product(spatial)
	values := make([]float64, nSpace*nBands)
	for b := 0; b < nBands; b++ {
		for i := 0; i < nSpace; i++ {
			values[i*nBands+b] = s.Cube.Data[b*nSpace+i]
		}
	}

	var gridDims []string
	if len(s.Cube.Dims) == s.Cube.Rank() {
		gridDims = append(gridDims, s.Cube.Dims[1:]...)
	}
	out := s.Clone()
	out.Flat = &Flat{
		Values: &Array{Dims: []string{DimSpace, DimBand}, Shape: []int{nSpace, nBands}, Data: values},
		Bands:  append([]string(nil), s.Bands...),
		Grid:   Grid{Dims: gridDims, Shape: append([]int(nil), spatial...)},
		Attrs:  maps.Clone(s.Attrs),
	}
	return out, nil
}

// InverseFlatten expands a flat (space × band) view back to its band-first
// spatial layout.
func InverseFlatten(f *Flat) (*Array, error) {
	if f == nil || f.Values == nil {
		return nil, fmt.Errorf("%w: nothing to expand", ErrShape)
	}
	if err := f.Values.Validate(); err != nil {
		return nil, err
	}
	if f.Values.Rank() != 2 {
		return nil, fmt.Errorf("%w: flat rank %d, want 2", ErrShape, f.Values.Rank())
	}
	nSpace, nBands := f.Values.Shape[0], f.Values.Shape[1]
	if product(f.Grid.Shape) != nSpace || len(f.Grid.Shape) == 0 {
		return nil, fmt.Errorf("%w: grid %v does not hold %d points", ErrShape, f.Grid.Shape, nSpace)
	}

	data := make([]float64, nSpace*nBands)
	for i := 0; i < nSpace; i++ {
		for b := 0; b < nBands; b++ {
			data[b*nSpace+i] = f.Values.Data[i*nBands+b]
		}
	}

	shape := append([]int{nBands}, f.Grid.Shape...)
	var dims []string
	if len(f.Grid.Dims) == len(f.Grid.Shape) {
		dims = append([]string{DimBand}, f.Grid.Dims...)
	}
	return &Array{Dims: dims, Shape: shape, Data: data}, nil
}
