// Package samplers registers the sample readers and pipeline stages that
// ship with predictgrid.
package samplers

import (
	"context"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vk/predictgrid/internal/ctxlog"
	"github.com/vk/predictgrid/internal/registry"
	"github.com/vk/predictgrid/internal/sample"
)

// AttrSource is the sample attribute holding the file a sample was read from.
const AttrSource = "source"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the samplers, stages and transforms with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFunc("sample:msgpack", sample.SamplerFunc(ReadMsgpack))
	r.RegisterFunc("sample:flatten", sample.StageFunc(Flatten))
	r.RegisterFunc("transform:standardize", sample.TransformFunc(Standardize))
}

// ReadMsgpack reads a msgpack-encoded sample from filename. The optional
// "bands" kwarg selects and reorders bands by label.
func ReadMsgpack(ctx context.Context, filename string, kwargs map[string]any) (*sample.Sample, error) {
	logger := ctxlog.FromContext(ctx).With("file", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample file '%s': %w", filename, err)
	}
	s := &sample.Sample{}
	if err := msgpack.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to decode sample file '%s': %w", filename, err)
	}
	if s.Cube == nil {
		return nil, fmt.Errorf("%w: sample file '%s' has no cube", sample.ErrShape, filename)
	}
	if err := s.Cube.Validate(); err != nil {
		return nil, fmt.Errorf("sample file '%s': %w", filename, err)
	}

	if raw, ok := kwargs["bands"]; ok {
		want, err := stringList(raw)
		if err != nil {
			return nil, fmt.Errorf("sample:msgpack kwarg 'bands': %w", err)
		}
		if s, err = selectBands(s, want); err != nil {
			return nil, fmt.Errorf("sample file '%s': %w", filename, err)
		}
	}

	if s.Attrs == nil {
		s.Attrs = map[string]any{}
	}
	s.Attrs[AttrSource] = filename
	logger.Debug("Read sample.", "bands", len(s.Bands), "shape", s.Cube.Shape)
	return s, nil
}

// WriteMsgpack writes s to filename in the format ReadMsgpack reads.
func WriteMsgpack(filename string, s *sample.Sample) error {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode sample: %w", err)
	}
	return os.WriteFile(filename, data, 0o644)
}

// Flatten is the pipeline stage producing the (space × band) view that
// prediction requires.
func Flatten(_ context.Context, s *sample.Sample) (*sample.Sample, error) {
	return sample.Flatten(s)
}

// Standardize rescales every band of the flat view to zero mean and unit
// variance. Constant bands are only centred.
func Standardize(_ context.Context, s *sample.Sample) (*sample.Sample, error) {
	if s == nil || s.Flat == nil {
		return nil, fmt.Errorf("%w: standardize needs a flat view", sample.ErrShape)
	}
	out := s.Clone()
	v := out.Flat.Values
	n, b := v.Shape[0], v.Shape[1]
	if n == 0 {
		return out, nil
	}
	for band := 0; band < b; band++ {
		var sum, sq float64
		for i := 0; i < n; i++ {
			sum += v.Data[i*b+band]
		}
		mean := sum / float64(n)
		for i := 0; i < n; i++ {
			d := v.Data[i*b+band] - mean
			sq += d * d
		}
		std := math.Sqrt(sq / float64(n))
		for i := 0; i < n; i++ {
			d := v.Data[i*b+band] - mean
			if std > 0 {
				d /= std
			}
			v.Data[i*b+band] = d
		}
	}
	return out, nil
}

func selectBands(s *sample.Sample, want []string) (*sample.Sample, error) {
	nBands := s.Cube.Shape[0]
	if len(s.Bands) != nBands {
		return nil, fmt.Errorf("%w: band selection needs %d band labels, got %d", sample.ErrShape, nBands, len(s.Bands))
	}
	per := len(s.Cube.Data) / max(nBands, 1)

	out := s.Clone()
	out.Bands = make([]string, 0, len(want))
	out.Cube.Shape[0] = len(want)
	out.Cube.Data = make([]float64, 0, per*len(want))
	for _, name := range want {
		i := slices.Index(s.Bands, name)
		if i < 0 {
			return nil, fmt.Errorf("%w: unknown band %q, have %v", sample.ErrShape, name, s.Bands)
		}
		out.Bands = append(out.Bands, name)
		out.Cube.Data = append(out.Cube.Data, s.Cube.Data[i*per:(i+1)*per]...)
	}
	return out, nil
}

func stringList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for i, x := range v {
			s, ok := x.(string)
			if !ok {
				return nil, fmt.Errorf("expected a list of strings, element %d is %T", i, x)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", raw)
	}
}
