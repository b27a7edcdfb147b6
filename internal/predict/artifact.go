package predict

import (
	"context"
	"maps"
	"time"

	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/sample"
)

const (
	// BandPredict labels the single band of a raw prediction.
	BandPredict = "predict"
	// AttrPredictDate is the attribute holding the generation time.
	AttrPredictDate = "predict_date"
	// AttrModel names the ensemble member that produced an artifact.
	AttrModel = "model"
)

// now is overridden in tests to provide deterministic timestamps.
var now = time.Now

// Artifact is one model's prediction for one sample. Flat holds the
// (space × band) result; after a cube conversion Cube holds it instead.
type Artifact struct {
	Flat  *sample.Flat   `msgpack:"flat,omitempty"`
	Cube  *sample.Array  `msgpack:"cube,omitempty"`
	Bands []string       `msgpack:"bands"`
	Attrs map[string]any `msgpack:"attrs"`
}

// Serializer post-processes (typically persists) an artifact and returns
// the artifact to hand back to the caller.
type Serializer func(ctx context.Context, a *Artifact, s *sample.Sample, tag string) (*Artifact, error)

// ConfigSerializer is a serializer that also needs the run configuration.
type ConfigSerializer func(ctx context.Context, cfg *config.Model, a *Artifact, s *sample.Sample, tag string) (*Artifact, error)

// Bind fixes cfg, producing a Serializer.
func (f ConfigSerializer) Bind(cfg *config.Model) Serializer {
	return func(ctx context.Context, a *Artifact, s *sample.Sample, tag string) (*Artifact, error) {
		return f(ctx, cfg, a, s, tag)
	}
}

// newArtifact normalizes a raw model output against the sample it was
// predicted from.
func newArtifact(pred *sample.Array, s *sample.Sample) (*Artifact, error) {
	if pred == nil {
		return nil, ErrPredictionShape
	}
	if err := pred.Validate(); err != nil {
		return nil, err
	}

	var rows int
	switch pred.Rank() {
	case 1:
		rows = pred.Shape[0]
	case 2:
		if pred.Shape[1] != 1 {
			return nil, &shapeError{msg: "expected a single output column", got: pred.Shape}
		}
		rows = pred.Shape[0]
	default:
		return nil, &RankError{Rank: pred.Rank()}
	}
	if want := s.Flat.Values.Shape[0]; rows != want {
		return nil, &shapeError{msg: "expected one prediction per spatial point", got: pred.Shape, want: want}
	}

	attrs := maps.Clone(s.Attrs)
	if attrs == nil {
		attrs = map[string]any{}
	}
	maps.Copy(attrs, s.Flat.Attrs)
	attrs[AttrPredictDate] = now().UTC().Format(time.RFC3339Nano)

	flat := &sample.Flat{
		Values: &sample.Array{
			Dims:  []string{sample.DimSpace, sample.DimBand},
			Shape: []int{rows, 1},
			Data:  append([]float64(nil), pred.Data...),
		},
		Bands: []string{BandPredict},
		Grid: sample.Grid{
			Dims:  append([]string(nil), s.Flat.Grid.Dims...),
			Shape: append([]int(nil), s.Flat.Grid.Shape...),
		},
		Attrs: maps.Clone(attrs),
	}
	return &Artifact{Flat: flat, Bands: []string{BandPredict}, Attrs: attrs}, nil
}

// toCube expands a flat artifact back to the sample's spatial layout.
func (a *Artifact) toCube() (*Artifact, error) {
	cube, err := sample.InverseFlatten(a.Flat)
	if err != nil {
		return nil, err
	}
	return &Artifact{Cube: cube, Bands: a.Bands, Attrs: a.Attrs}, nil
}
