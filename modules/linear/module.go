// Package linear provides a per-pixel linear regression model that can be
// stored in and loaded from the model store.
package linear

import (
	"context"
	"fmt"

	"github.com/vk/predictgrid/internal/modelstore"
	"github.com/vk/predictgrid/internal/registry"
	"github.com/vk/predictgrid/internal/sample"
)

// Kind identifies Model in the model store.
const Kind = "linear"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the model factory under "model:linear".
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunc("model:"+Kind, modelstore.ModelFactory(func() any { return &Model{} }))
}

// Model predicts Bias + Σ Weights[b]·x[b] for every spatial point.
type Model struct {
	Weights []float64 `msgpack:"weights"`
	Bias    float64   `msgpack:"bias"`
}

// Kind implements modelstore.Kinded.
func (m *Model) Kind() string { return Kind }

// Predict returns one value per row of x, shaped [space].
func (m *Model) Predict(ctx context.Context, x *sample.Array) (*sample.Array, error) {
	if err := x.Validate(); err != nil {
		return nil, err
	}
	if x.Rank() != 2 {
		return nil, fmt.Errorf("%w: linear model needs (space × band) input, got rank %d", sample.ErrShape, x.Rank())
	}
	n, b := x.Shape[0], x.Shape[1]
	if b != len(m.Weights) {
		return nil, fmt.Errorf("%w: linear model has %d weights for %d bands", sample.ErrShape, len(m.Weights), b)
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		y := m.Bias
		for j, w := range m.Weights {
			y += w * x.Data[i*b+j]
		}
		out[i] = y
	}
	return &sample.Array{Dims: []string{sample.DimSpace}, Shape: []int{n}, Data: out}, nil
}
