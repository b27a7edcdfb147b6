package app

import (
	"context"
	"fmt"

	"github.com/vk/predictgrid/internal/config"
	"github.com/vk/predictgrid/internal/ctxlog"
	"github.com/vk/predictgrid/internal/predict"
	"github.com/vk/predictgrid/internal/sample"
)

// StepResult holds the artifacts produced by one configured step.
type StepResult struct {
	Step      string
	Tag       string
	Artifacts []*predict.Artifact
}

// Run executes every configured step.
func (a *App) Run(ctx context.Context) error {
	_, err := a.RunSteps(ctx)
	return err
}

// RunSteps executes every configured step in declaration order and returns
// their artifacts. The first failing step stops the run.
func (a *App) RunSteps(ctx context.Context) ([]StepResult, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.RunSteps method started.")

	if a.appConfig.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.appConfig.HealthcheckPort)
		defer a.closeHealthcheckServer()
	}

	if len(a.config.Steps) == 0 {
		a.logger.Warn("No steps found in configuration, execution not required.")
		return nil, nil
	}

	exec, stop, err := a.newExecutor(ctx)
	if err != nil {
		return nil, err
	}
	defer stop()

	builder := &predict.Builder{
		Registry: a.registry,
		Loader:   a.models,
		Config:   a.config,
		Env:      a.env,
	}

	a.logger.Info("🚀 Starting prediction run...", "steps", len(a.config.Steps), "executor", a.appConfig.Executor)
	results := make([]StepResult, 0, len(a.config.Steps))
	for _, step := range a.config.Steps {
		res, err := a.runStep(ctx, builder, exec, step)
		if err != nil {
			return results, fmt.Errorf("step '%s' failed: %w", step.Name, err)
		}
		results = append(results, res)
	}
	a.logger.Info("🏁 Prediction run finished.", "steps", len(results))
	return results, nil
}

func (a *App) runStep(ctx context.Context, b *predict.Builder, exec predictExecutor, step *config.Step) (StepResult, error) {
	logger := a.logger.With("step", step.Name, "tag", step.Predict)

	ds, ok := a.config.DataSource(step.DataSource)
	if !ok {
		return StepResult{}, config.Errorf("step "+step.Name, "data source '%s' is not defined", step.DataSource)
	}
	pipeline, err := sample.FromDataSource(ds, step.Stages)
	if err != nil {
		return StepResult{}, err
	}
	logger.Debug("Sample pipeline ready.", "arguments", len(pipeline.GeneratedArgs))

	artifacts, err := predict.Many(ctx, b, exec, predict.BuildInput{
		Pipeline:  pipeline,
		Step:      step,
		Transform: step.Transform,
		ToCube:    step.ToCube,
	})
	if err != nil {
		return StepResult{}, err
	}

	logger.Info("✅ Step finished.", "artifacts", len(artifacts))
	return StepResult{Step: step.Name, Tag: step.Predict, Artifacts: artifacts}, nil
}
