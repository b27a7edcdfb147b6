package app

import (
	"context"
	"fmt"

	"github.com/vk/predictgrid/internal/executor"
	"github.com/vk/predictgrid/internal/predict"
	"github.com/vk/predictgrid/internal/remote"
)

type predictExecutor = executor.Executor[[]*predict.Artifact]

// newExecutor builds the executor selected by the app config. The returned
// stop function releases workers or connections and must always be called.
func (a *App) newExecutor(ctx context.Context) (predictExecutor, func(), error) {
	switch a.appConfig.Executor {
	case ExecutorLocal:
		a.logger.Debug("Using local executor.")
		return executor.NewLocal[[]*predict.Artifact](), func() {}, nil

	case ExecutorSocketIO:
		a.logger.Debug("Connecting to remote workers.", "url", a.appConfig.RemoteURL)
		client, err := remote.Dial(ctx, remote.Config{URL: a.appConfig.RemoteURL}, predict.DecodeArtifacts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to remote workers: %w", err)
		}
		stop := func() {
			if err := client.Close(); err != nil {
				a.logger.Warn("Closing remote client failed.", "error", err)
			}
		}
		return executor.NewDistributed[[]*predict.Artifact](client), stop, nil

	default:
		pool := executor.NewPool(a.appConfig.WorkerCount)
		a.logger.Debug("Using worker pool executor.", "workers", a.appConfig.WorkerCount)
		return executor.NewDistributed[[]*predict.Artifact](pool), pool.Stop, nil
	}
}
