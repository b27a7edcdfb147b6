package predict

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/fsutil"
	"github.com/vk/predictgrid/internal/modelstore"
	"github.com/vk/predictgrid/internal/registry"
	"github.com/vk/predictgrid/internal/sample"
)

// resolveSerializer accepts a Serializer, a ConfigSerializer or a registry
// reference to either. ConfigSerializers are bound to cfg.
func resolveSerializer(r *registry.Registry, ref any, cfg *config.Model) (Serializer, error) {
	const where = "serializer"
	switch fn := ref.(type) {
	case nil:
		return nil, nil
	case Serializer:
		return fn, nil
	case ConfigSerializer:
		return fn.Bind(cfg), nil
	case string:
		if fn == "" {
			return nil, nil
		}
		v, err := r.Lookup(fn, where)
		if err != nil {
			return nil, err
		}
		switch s := v.(type) {
		case Serializer:
			return s, nil
		case ConfigSerializer:
			return s.Bind(cfg), nil
		default:
			return nil, config.Errorf(where, "expected %s to be a serializer but it is registered as %T", fn, v)
		}
	default:
		return nil, config.Errorf(where, "expected %#v to be a module:callable if given, e.g. %s", ref, registry.ExampleCallable)
	}
}

// refString returns ref when it is a reference, so it can be shipped.
func refString(ref any) string {
	s, _ := ref.(string)
	return s
}

func resolveTransform(r *registry.Registry, ref any) (sample.Transformer, error) {
	return registry.Resolve[sample.Transformer](r, ref, false, "transform")
}

// TrainRoot picks the model store root: the configuration's train path
// when a configuration is present, otherwise the ELM_TRAIN_PATH
// environment variable, which must name an existing local directory or an
// s3:// URL.
func TrainRoot(cfg *config.Model, env map[string]string) (string, error) {
	if cfg != nil {
		if cfg.TrainPath == "" {
			return "", config.Errorf("train_path", "expected train_path to be set in the configuration")
		}
		return cfg.TrainPath, nil
	}

	root := env[config.TrainPathEnv]
	if root == "" {
		return "", config.Errorf(config.TrainPathEnv, "expected %s in environment variables", config.TrainPathEnv)
	}
	if _, _, isS3 := modelstore.ParseS3URL(root); !isS3 && !fsutil.Exists(root) {
		return "", fmt.Errorf("%w: %s=%s: %w", ErrTrainPathMissing, config.TrainPathEnv, root, fs.ErrNotExist)
	}
	return root, nil
}

// loadEnsemble loads the models saved under tag.
func loadEnsemble(ctx context.Context, loader modelstore.Loader, cfg *config.Model, env map[string]string, tag string) (Ensemble, error) {
	root, err := TrainRoot(cfg, env)
	if err != nil {
		return nil, err
	}
	if loader == nil {
		return nil, config.Errorf("model store", "no model loader configured")
	}
	objs, _, err := loader.Load(ctx, root, tag)
	if err != nil {
		return nil, fmt.Errorf("loading models %s from %s: %w", tag, root, err)
	}
	return NewEnsemble(objs, tag)
}
