package executor

import (
	"context"

	"github.com/vk/predictgrid/internal/ctxlog"
	"github.com/vk/predictgrid/internal/graph"
)

// Local evaluates tasks synchronously in the calling goroutine.
type Local[T any] struct{}

// NewLocal creates a local executor.
func NewLocal[T any]() *Local[T] { return &Local[T]{} }

// Execute runs each task in order and stops at the first failure.
func (e *Local[T]) Execute(ctx context.Context, g *graph.Graph[T], names []string) ([]T, error) {
	logger := ctxlog.FromContext(ctx)
	tasks, err := g.Tasks(names)
	if err != nil {
		return nil, err
	}

	results := make([]T, 0, len(tasks))
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return nil, &TaskError{Task: t.Name, Err: err}
		}
		logger.Debug("Running task.", "task", t.Name)
		out, err := safeRun(ctx, t.Name, t.Run)
		if err != nil {
			logger.Error("Task failed.", "task", t.Name, "error", err)
			return nil, &TaskError{Task: t.Name, Err: err}
		}
		results = append(results, out)
	}
	return results, nil
}
