package executor

import (
	"context"
	"fmt"

	"github.com/vk/predictgrid/internal/ctxlog"
	"github.com/vk/predictgrid/internal/graph"
)

// Job is a single task handed to a Client. Run is the in-process
// computation; Payload is its serializable description for clients that
// execute elsewhere.
type Job struct {
	Name    string
	Run     func(ctx context.Context) (any, error)
	Payload any
}

// Future is the pending result of a submitted Job.
type Future interface {
	Result(ctx context.Context) (any, error)
}

// Client accepts jobs for asynchronous execution.
type Client interface {
	Submit(ctx context.Context, job Job) Future
}

// Distributed submits every task to a Client and gathers the results.
type Distributed[T any] struct {
	Client Client
}

// NewDistributed creates an executor backed by client.
func NewDistributed[T any](client Client) *Distributed[T] {
	return &Distributed[T]{Client: client}
}

// Execute submits all tasks up front, then blocks on their futures in name
// order. The first failure cancels the remaining work.
func (e *Distributed[T]) Execute(ctx context.Context, g *graph.Graph[T], names []string) ([]T, error) {
	logger := ctxlog.FromContext(ctx)
	tasks, err := g.Tasks(names)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	futures := make([]Future, len(tasks))
	for i, t := range tasks {
		run := t.Run
		futures[i] = e.Client.Submit(ctx, Job{
			Name:    t.Name,
			Payload: t.Payload,
			Run: func(ctx context.Context) (any, error) {
				return run(ctx)
			},
		})
	}
	logger.Debug("Submitted tasks.", "count", len(tasks))

	results := make([]T, 0, len(tasks))
	for i, f := range futures {
		name := tasks[i].Name
		v, err := f.Result(ctx)
		if err != nil {
			logger.Error("Task failed.", "task", name, "error", err)
			return nil, &TaskError{Task: name, Err: err}
		}
		out, ok := v.(T)
		if !ok && v != nil {
			return nil, &TaskError{Task: name, Err: fmt.Errorf("%w: %T", ErrResultType, v)}
		}
		results = append(results, out)
	}
	return results, nil
}
