package predict

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vk/predictgrid/internal/config"
)

// RunPayload is the worker-side counterpart of a remote submission. It
// decodes a Descriptor, resolves its references, loads its ensemble by
// tag, runs it and returns the msgpack-encoded artifacts.
func (p *Predictor) RunPayload(ctx context.Context, payload []byte) ([]byte, error) {
	d := &Descriptor{}
	if err := msgpack.Unmarshal(payload, d); err != nil {
		return nil, fmt.Errorf("decoding task: %w", err)
	}
	if d.Tag == "" {
		return nil, config.Errorf(d.Name, "expected the task to carry a model tag")
	}

	var err error
	if d.Transform, err = resolveTransform(p.Registry, d.TransformRef); err != nil {
		return nil, err
	}
	if d.Serializer, err = resolveSerializer(p.Registry, d.SerializerRef, p.Config); err != nil {
		return nil, err
	}
	if d.Models, err = loadEnsemble(ctx, p.Loader, p.Config, p.Env, d.Tag); err != nil {
		return nil, err
	}

	artifacts, err := p.Run(ctx, d)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(artifacts)
}

// DecodeArtifacts decodes a RunPayload result.
func DecodeArtifacts(data []byte) (any, error) {
	var out []*Artifact
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding artifacts: %w", err)
	}
	return out, nil
}
