package graph

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTaskExists is returned when a task name is added twice.
	ErrTaskExists = errors.New("graph: task already exists")
	// ErrEmptyTaskName is returned when a task has no name.
	ErrEmptyTaskName = errors.New("graph: empty task name")
	// ErrNilRun is returned when a task has no computation.
	ErrNilRun = errors.New("graph: task has no run function")
	// ErrUnknownTask is returned when a requested name is not in the graph.
	ErrUnknownTask = errors.New("graph: unknown task")
)

// RunFunc is a deferred computation producing a single result.
type RunFunc[T any] func(ctx context.Context) (T, error)

// Task is one deferred unit of work.
type Task[T any] struct {
	Name    string
	Run     RunFunc[T]
	Payload any
}

// Graph is an ordered, name-unique collection of deferred tasks.
type Graph[T any] struct {
	names []string
	tasks map[string]*Task[T]
}

// New creates an empty graph.
func New[T any]() *Graph[T] {
	return &Graph[T]{tasks: make(map[string]*Task[T])}
}

// Add appends a task. It never runs the task.
func (g *Graph[T]) Add(name string, run RunFunc[T], payload any) error {
	if name == "" {
		return ErrEmptyTaskName
	}
	if run == nil {
		return fmt.Errorf("%w: %s", ErrNilRun, name)
	}
	if _, exists := g.tasks[name]; exists {
		return fmt.Errorf("%w: %s", ErrTaskExists, name)
	}
	g.names = append(g.names, name)
	g.tasks[name] = &Task[T]{Name: name, Run: run, Payload: payload}
	return nil
}

// Names returns task names in insertion order. The slice is a copy.
func (g *Graph[T]) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Task looks up a task by name.
func (g *Graph[T]) Task(name string) (*Task[T], bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// Tasks resolves names to tasks, in the order given. A nil slice selects
// every task in insertion order.
func (g *Graph[T]) Tasks(names []string) ([]*Task[T], error) {
	if names == nil {
		names = g.names
	}
	out := make([]*Task[T], 0, len(names))
	for _, name := range names {
		t, ok := g.tasks[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTask, name)
		}
		out = append(out, t)
	}
	return out, nil
}

// Len returns the number of tasks.
func (g *Graph[T]) Len() int { return len(g.names) }
