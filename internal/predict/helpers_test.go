package predict

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/modelstore"
	"github.com/vk/predictgrid/internal/registry"
	"github.com/vk/predictgrid/internal/sample"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func freezeTime(t *testing.T) {
	t.Helper()
	prev := now
	now = func() time.Time { return fixedTime }
	t.Cleanup(func() { now = prev })
}

// scaleModel predicts the first band times Factor. Rank selects the output
// layout: 1 → [n], 2 → [n 1], 3 → [n 1 1], -2 → [n 2].
type scaleModel struct {
	Factor float64 `msgpack:"factor"`
	Rank   int     `msgpack:"rank"`
}

func (m *scaleModel) Kind() string { return "scale" }

func (m *scaleModel) Predict(_ context.Context, x *sample.Array) (*sample.Array, error) {
	n, b := x.Shape[0], x.Shape[1]
	out := make([]float64, n)
	for i := range out {
		out[i] = x.Data[i*b] * m.Factor
	}
	switch m.Rank {
	case 2:
		return &sample.Array{Shape: []int{n, 1}, Data: out}, nil
	case 3:
		return &sample.Array{Shape: []int{n, 1, 1}, Data: out}, nil
	case -2:
		return &sample.Array{Shape: []int{n, 2}, Data: append(out, out...)}, nil
	default:
		return &sample.Array{Dims: []string{sample.DimSpace}, Shape: []int{n}, Data: out}, nil
	}
}

type failingModel struct{}

func (failingModel) Predict(context.Context, *sample.Array) (*sample.Array, error) {
	return nil, errors.New("model exploded")
}

func ensemble(models ...Model) Ensemble {
	out := make(Ensemble, len(models))
	for i, m := range models {
		out[i] = Entry{Name: "m_" + string(rune('0'+i)), Model: m}
	}
	return out
}

// testModule registers a sampler producing a 2×2 single-band grid whose
// values start at the number of samples built so far.
type testModule struct {
	samples *atomic.Int32
	saved   *[]string
}

func (m testModule) Register(r *registry.Registry) {
	r.RegisterFunc("test:grid", sample.SamplerFunc(func(_ context.Context, filename string, kwargs map[string]any) (*sample.Sample, error) {
		base := float64(m.samples.Add(1))
		cube := &sample.Array{
			Dims:  []string{sample.DimBand, "y", "x"},
			Shape: []int{1, 2, 2},
			Data:  []float64{base, base + 1, base + 2, base + 3},
		}
		return &sample.Sample{Cube: cube, Bands: []string{"b1"}, Attrs: map[string]any{"file": filename}}, nil
	}))
	r.RegisterFunc("sample:flatten", sample.StageFunc(func(_ context.Context, s *sample.Sample) (*sample.Sample, error) {
		out, err := sample.Flatten(s)
		if err != nil {
			return nil, err
		}
		out.Flat.Attrs["flattened"] = true
		return out, nil
	}))
	r.RegisterFunc("test:emptyflat", sample.StageFunc(func(_ context.Context, s *sample.Sample) (*sample.Sample, error) {
		out := s.Clone()
		out.Flat = &sample.Flat{Values: &sample.Array{}}
		return out, nil
	}))
	r.RegisterFunc("test:double", sample.TransformFunc(func(_ context.Context, s *sample.Sample) (*sample.Sample, error) {
		out := s.Clone()
		for i := range out.Flat.Values.Data {
			out.Flat.Values.Data[i] *= 2
		}
		return out, nil
	}))
	r.RegisterFunc("serialize:msgpack", ConfigSerializer(func(_ context.Context, cfg *config.Model, a *Artifact, _ *sample.Sample, tag string) (*Artifact, error) {
		*m.saved = append(*m.saved, cfg.OutputDir+"/"+tag)
		a.Attrs["saved_to"] = cfg.OutputDir
		return a, nil
	}))
	r.RegisterFunc("model:scale", modelstore.ModelFactory(func() any { return &scaleModel{} }))
}

type fixture struct {
	registry *registry.Registry
	samples  *atomic.Int32
	saved    *[]string
}

func newFixture() *fixture {
	f := &fixture{samples: &atomic.Int32{}, saved: &[]string{}}
	f.registry = registry.New(testModule{samples: f.samples, saved: f.saved})
	return f
}

func gridPipeline(args ...string) *sample.Pipeline {
	return &sample.Pipeline{
		Sampler:       "test:grid",
		GeneratedArgs: args,
		Stages:        []string{"sample:flatten"},
	}
}

type fakeLoader struct {
	objs  []any
	roots []string
}

func (l *fakeLoader) Load(_ context.Context, root, tag string) ([]any, modelstore.Metadata, error) {
	l.roots = append(l.roots, root+"|"+tag)
	return l.objs, modelstore.Metadata{}, nil
}
