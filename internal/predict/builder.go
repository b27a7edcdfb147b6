package predict

import (
	"context"
	"sync"

	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/ctxlog"
	"github.com/vk/predictgrid/internal/graph"
	"github.com/vk/predictgrid/internal/modelstore"
	"github.com/vk/predictgrid/internal/registry"
	"github.com/vk/predictgrid/internal/sample"
)

// BuildInput describes one prediction run.
type BuildInput struct {
	// Pipeline supplies the sampler, stages and generated arguments.
	Pipeline *sample.Pipeline
	Step     *config.Step
	// Tag overrides Step.Predict.
	Tag string
	// Models skips loading from the model store when non-nil.
	Models Ensemble
	// Serializer is a Serializer, a ConfigSerializer or a registry reference.
	Serializer any
	// Transform is a sample.Transformer or a registry reference.
	Transform any
	ToCube    bool
	// Sample, when set, replaces sampling for every task.
	Sample *sample.Sample
}

// Builder turns a BuildInput into a task graph.
type Builder struct {
	Registry *registry.Registry
	Loader   modelstore.Loader
	// Names defaults to a Sequence owned by this builder.
	Names  NameSource
	Config *config.Model
	Env    map[string]string

	namesOnce sync.Once
}

func (b *Builder) names() NameSource {
	b.namesOnce.Do(func() {
		if b.Names == nil {
			b.Names = NewSequence(DefaultNamePrefix)
		}
	})
	return b.Names
}

func (b *Builder) predictor() *Predictor {
	return &Predictor{Registry: b.Registry, Loader: b.Loader, Config: b.Config, Env: b.Env}
}

// Build resolves shared inputs once and adds one task per generated
// argument. No task runs; graph.Names() lists the tasks in argument order.
func (b *Builder) Build(ctx context.Context, in BuildInput) (*graph.Graph[[]*Artifact], error) {
	logger := ctxlog.FromContext(ctx)
	if in.Pipeline == nil {
		return nil, config.Errorf("predict", "expected a sample pipeline")
	}

	tag := in.Tag
	if tag == "" && in.Step != nil {
		tag = in.Step.Predict
	}
	if tag == "" {
		return nil, config.Errorf("predict", "expected a tag or a step naming the tag to predict")
	}

	serializerRef := in.Serializer
	if isEmptyRef(serializerRef) && b.Config != nil {
		serializerRef = b.Config.SerializerRef()
		if in.Step != nil && in.Step.Serializer != "" {
			serializerRef = in.Step.Serializer
		}
	}
	serializer, err := resolveSerializer(b.Registry, serializerRef, b.Config)
	if err != nil {
		return nil, err
	}
	transform, err := resolveTransform(b.Registry, in.Transform)
	if err != nil {
		return nil, err
	}

	models := in.Models
	if models == nil {
		if models, err = loadEnsemble(ctx, b.Loader, b.Config, b.Env, tag); err != nil {
			return nil, err
		}
		logger.Info("Loaded models.", "tag", tag, "count", len(models))
	}

	// Descriptors share one pipeline without the argument list; each task
	// binds its own argument.
	shared := in.Pipeline.Clone()
	shared.GeneratedArgs = nil

	p := b.predictor()
	g := graph.New[[]*Artifact]()
	names := b.names()
	for _, arg := range in.Pipeline.GeneratedArgs {
		d := &Descriptor{
			Name:          names.Next(),
			Pipeline:      shared,
			TransformRef:  refString(in.Transform),
			SerializerRef: refString(serializerRef),
			ToCube:        in.ToCube,
			Tag:           tag,
			Argument:      arg,
			Sample:        in.Sample,
			Models:        models,
			ModelsGiven:   in.Models != nil,
			Transform:     transform,
			Serializer:    serializer,
		}
		err := g.Add(d.Name, func(ctx context.Context) ([]*Artifact, error) {
			return p.Run(ctx, d)
		}, d)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Built prediction graph.", "tag", tag, "tasks", g.Len())
	return g, nil
}

func isEmptyRef(ref any) bool {
	if ref == nil {
		return true
	}
	s, ok := ref.(string)
	return ok && s == ""
}
