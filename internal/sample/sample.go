package sample

import (
	"context"
	"maps"
)

const (
	// DimBand labels the band axis.
	DimBand = "band"
	// DimSpace labels the flattened spatial axis.
	DimSpace = "space"
)

// Grid records the spatial layout a flat view was produced from.
type Grid struct {
	Dims  []string `msgpack:"dims"`
	Shape []int    `msgpack:"shape"`
}

// Flat is a (space × band) view of a sample.
type Flat struct {
	Values *Array         `msgpack:"values"`
	Bands  []string       `msgpack:"bands"`
	Grid   Grid           `msgpack:"grid"`
	Attrs  map[string]any `msgpack:"attrs,omitempty"`
}

// Sample is one unit of model input.
type Sample struct {
	Cube  *Array         `msgpack:"cube,omitempty"`
	Bands []string       `msgpack:"bands,omitempty"`
	Flat  *Flat          `msgpack:"flat,omitempty"`
	Attrs map[string]any `msgpack:"attrs,omitempty"`
}

// Clone returns a copy that shares no slices or maps with s. Attribute
// values themselves are copied shallowly.
func (s *Sample) Clone() *Sample {
	if s == nil {
		return nil
	}
	out := &Sample{
		Cube:  s.Cube.Clone(),
		Bands: append([]string(nil), s.Bands...),
		Attrs: maps.Clone(s.Attrs),
	}
	if s.Flat != nil {
		out.Flat = &Flat{
			Values: s.Flat.Values.Clone(),
			Bands:  append([]string(nil), s.Flat.Bands...),
			Grid: Grid{
				Dims:  append([]string(nil), s.Flat.Grid.Dims...),
				Shape: append([]int(nil), s.Flat.Grid.Shape...),
			},
			Attrs: maps.Clone(s.Flat.Attrs),
		}
	}
	return out
}

// SamplerFunc turns one per-task argument, usually a filename, into a
// sample.
type SamplerFunc func(ctx context.Context, filename string, kwargs map[string]any) (*Sample, error)

// StageFunc is one step of a sample pipeline.
type StageFunc func(ctx context.Context, s *Sample) (*Sample, error)

// Transformer is a fitted transform applied to every sample before
// prediction.
type Transformer interface {
	Transform(ctx context.Context, s *Sample) (*Sample, error)
}

// TransformFunc adapts a function to Transformer.
type TransformFunc func(ctx context.Context, s *Sample) (*Sample, error)

// Transform calls f.
func (f TransformFunc) Transform(ctx context.Context, s *Sample) (*Sample, error) {
	return f(ctx, s)
}
