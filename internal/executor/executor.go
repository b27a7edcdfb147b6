// Package executor evaluates prediction task graphs.
//
// Two variants are provided and the caller picks one explicitly: Local runs
// every task inline, in order; Distributed submits every task to a Client
// (an in-process Pool or a remote worker connection) and waits for the
// results. Both return results in the order of the requested names, and both
// stop at the first failure.
package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/vk/predictgrid/internal/graph"
)

// ErrResultType is returned when a task result does not have the graph's
// result type.
var ErrResultType = errors.New("executor: unexpected result type")

// Executor is responsible for evaluating the named tasks of a graph. A nil
// names slice selects every task.
type Executor[T any] interface {
	Execute(ctx context.Context, g *graph.Graph[T], names []string) ([]T, error)
}

// TaskError attributes a failure to the task that produced it.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// TaskPanicError wraps a panic recovered from a task.
type TaskPanicError struct {
	Task  string
	Value any
	Stack []byte
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("executor: panic in task %s: %v", e.Task, e.Value)
}

// safeRun runs fn, turning a panic into a *TaskPanicError.
func safeRun[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) (out T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &TaskPanicError{Task: name, Value: rec, Stack: debug.Stack()}
		}
	}()
	return fn(ctx)
}
