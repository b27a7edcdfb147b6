package predict

import (
	"context"
	"fmt"

	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/ctxlog"
	"github.com/vk/predictgrid/internal/modelstore"
	"github.com/vk/predictgrid/internal/registry"
	"github.com/vk/predictgrid/internal/sample"
)

// FlattenStage is the stage that gives a sample its flat view.
const FlattenStage = "sample:flatten"

// Predictor evaluates prediction tasks.
type Predictor struct {
	Registry *registry.Registry
	// Loader, Config and Env are only used by RunPayload, which has to load
	// the ensemble itself.
	Loader modelstore.Loader
	Config *config.Model
	Env    map[string]string
}

// Run predicts one sample with every model of d's ensemble. The sample is
// built once, from a copy of the pipeline bound to d.Argument, and shared
// by all models.
func (p *Predictor) Run(ctx context.Context, d *Descriptor) ([]*Artifact, error) {
	logger := ctxlog.FromContext(ctx).With("task", d.Name)
	logger.Info("🔮 Predict.", "argument", d.Argument)

	runner := &sample.Runner{Registry: p.Registry}
	var s *sample.Sample
	out := make([]*Artifact, 0, len(d.Models))
	for i, entry := range d.Models {
		if i == 0 {
			var err error
			s, err = runner.Run(ctx, d.Pipeline.WithFilename(d.Argument), d.Sample, d.Transform)
			if err != nil {
				return nil, err
			}
			if s.Flat == nil || s.Flat.Values.Validate() != nil || s.Flat.Values.Rank() != 2 {
				return nil, config.Errorf(d.Name, "expected the sample to have a (space, band) flat view; add the %s stage to the sample pipeline", FlattenStage)
			}
		}

		pred, err := entry.Model.Predict(ctx, s.Flat.Values)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", entry.Name, err)
		}
		a, err := newArtifact(pred, s)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", entry.Name, err)
		}
		a.Attrs[AttrModel] = entry.Name
		if d.ToCube {
			if a, err = a.toCube(); err != nil {
				return nil, fmt.Errorf("model %s: %w", entry.Name, err)
			}
		}
		if d.Serializer != nil {
			if a, err = d.Serializer(ctx, a, s, d.Tag); err != nil {
				return nil, fmt.Errorf("serializing %s: %w", entry.Name, err)
			}
		}
		logger.Debug("Predicted.", "model", entry.Name)
		out = append(out, a)
	}
	return out, nil
}
