package predict

import (
	"context"
	"fmt"

	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/sample"
)

// Model predicts from a (space × band) array.
type Model interface {
	Predict(ctx context.Context, x *sample.Array) (*sample.Array, error)
}

// Entry is one named member of an ensemble.
type Entry struct {
	Name  string
	Model Model
}

// Ensemble is an ordered, read-only list of models.
type Ensemble []Entry

// NewEnsemble names loaded models "<tag>_<i>" and checks that each one can
// predict.
func NewEnsemble(objs []any, tag string) (Ensemble, error) {
	out := make(Ensemble, 0, len(objs))
	for i, obj := range objs {
		name := fmt.Sprintf("%s_%d", tag, i)
		m, ok := obj.(Model)
		if !ok {
			return nil, config.Errorf("model store", "expected %s to be a model but got %T", name, obj)
		}
		out = append(out, Entry{Name: name, Model: m})
	}
	return out, nil
}
