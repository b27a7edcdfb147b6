package sample

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/ctxlog"
	"github.com/vk/predictgrid/internal/registry"
)

// Runner materializes samples by resolving pipeline references through a
// registry.
type Runner struct {
	Registry *registry.Registry
}

// Run builds one sample. When pre is given the sampler is skipped and the
// stages are applied to pre. The transformer, if any, runs last.
func (r *Runner) Run(ctx context.Context, p *Pipeline, pre *Sample, t Transformer) (*Sample, error) {
	logger := ctxlog.FromContext(ctx)
	if p == nil && pre == nil {
		return nil, config.Errorf("sample pipeline", "expected a pipeline or a sample")
	}

	s := pre
	if s == nil {
		sampler, err := registry.Resolve[SamplerFunc](r.Registry, p.Sampler, true, "sample pipeline sampler")
		if err != nil {
			return nil, err
		}
		logger.Debug("Sampling.", "sampler", p.Sampler, "filename", p.Filename)
		s, err = sampler(ctx, p.Filename, p.Kwargs)
		if err != nil {
			return nil, fmt.Errorf("sampling %s: %w", p.Filename, err)
		}
	}

	if p != nil {
		for i, ref := range p.Stages {
			stage, err := registry.Resolve[StageFunc](r.Registry, ref, true, fmt.Sprintf("sample pipeline stage %d", i))
			if err != nil {
				return nil, err
			}
			if s, err = stage(ctx, s); err != nil {
				return nil, fmt.Errorf("stage %s: %w", ref, err)
			}
		}
	}

	if t != nil {
		var err error
		if s, err = t.Transform(ctx, s); err != nil {
			return nil, fmt.Errorf("transform: %w", err)
		}
	}
	if s == nil {
		return nil, errors.New("sample pipeline produced no sample")
	}
	return s, nil
}
