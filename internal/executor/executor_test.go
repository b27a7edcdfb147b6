package executor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/predictgrid/internal/graph"
)

func buildGraph(t *testing.T, runs map[string]graph.RunFunc[int], order ...string) *graph.Graph[int] {
	t.Helper()
	g := graph.New[int]()
	for _, name := range order {
		require.NoError(t, g.Add(name, runs[name], nil))
	}
	return g
}

func value(v int, delay time.Duration) graph.RunFunc[int] {
	return func(ctx context.Context) (int, error) {
		select {
		case <-time.After(delay):
			return v, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}

func executors(t *testing.T) map[string]Executor[int] {
	pool := NewPool(4)
	t.Cleanup(pool.Stop)
	return map[string]Executor[int]{
		"local":       NewLocal[int](),
		"distributed": NewDistributed[int](pool),
	}
}

func TestExecute_PreservesNameOrder(t *testing.T) {
	for name, exec := range executors(t) {
		t.Run(name, func(t *testing.T) {
			g := buildGraph(t, map[string]graph.RunFunc[int]{
				"a": value(1, 30*time.Millisecond),
				"b": value(2, 10*time.Millisecond),
				"c": value(3, 0),
			}, "a", "b", "c")

			got, err := exec.Execute(context.Background(), g, nil)
			require.NoError(t, err)
			assert.Equal(t, []int{1, 2, 3}, got)

			got, err = exec.Execute(context.Background(), g, []string{"c", "a"})
			require.NoError(t, err)
			assert.Equal(t, []int{3, 1}, got)
		})
	}
}

func TestExecute_FirstFailureIsFatal(t *testing.T) {
	boom := errors.New("boom")
	for name, exec := range executors(t) {
		t.Run(name, func(t *testing.T) {
			g := buildGraph(t, map[string]graph.RunFunc[int]{
				"a": value(1, 0),
				"b": func(context.Context) (int, error) { return 0, boom },
				"c": value(3, 0),
			}, "a", "b", "c")

			got, err := exec.Execute(context.Background(), g, nil)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, boom)

			var taskErr *TaskError
			require.ErrorAs(t, err, &taskErr)
			assert.Equal(t, "b", taskErr.Task)
		})
	}
}

func TestExecute_PanicBecomesError(t *testing.T) {
	for name, exec := range executors(t) {
		t.Run(name, func(t *testing.T) {
			g := buildGraph(t, map[string]graph.RunFunc[int]{
				"a": func(context.Context) (int, error) { panic("bad sample") },
			}, "a")

			_, err := exec.Execute(context.Background(), g, nil)
			var panicErr *TaskPanicError
			require.ErrorAs(t, err, &panicErr)
			assert.Equal(t, "a", panicErr.Task)
			assert.Equal(t, "bad sample", panicErr.Value)
		})
	}
}

func TestExecute_UnknownName(t *testing.T) {
	for name, exec := range executors(t) {
		t.Run(name, func(t *testing.T) {
			g := buildGraph(t, map[string]graph.RunFunc[int]{"a": value(1, 0)}, "a")
			_, err := exec.Execute(context.Background(), g, []string{"zzz"})
			assert.ErrorIs(t, err, graph.ErrUnknownTask)
		})
	}
}

func TestLocal_StopsAfterFailure(t *testing.T) {
	var ran atomic.Int32
	counting := func(context.Context) (int, error) {
		ran.Add(1)
		return 0, nil
	}
	g := buildGraph(t, map[string]graph.RunFunc[int]{
		"a": func(context.Context) (int, error) { return 0, errors.New("fail") },
		"b": counting,
	}, "a", "b")

	_, err := NewLocal[int]().Execute(context.Background(), g, nil)
	require.Error(t, err)
	assert.Equal(t, int32(0), ran.Load())
}

func TestDistributed_FailureCancelsOutstandingWork(t *testing.T) {
	pool := NewPool(2)
	t.Cleanup(pool.Stop)

	started := make(chan struct{})
	cancelled := make(chan struct{})
	g := buildGraph(t, map[string]graph.RunFunc[int]{
		"a": func(context.Context) (int, error) {
			<-started
			return 0, errors.New("fail")
		},
		"b": func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return 0, ctx.Err()
		},
	}, "a", "b")

	_, err := NewDistributed[int](pool).Execute(context.Background(), g, nil)
	require.Error(t, err)

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("outstanding task was not cancelled")
	}
}

type staticClient struct{ val any }

func (c staticClient) Submit(context.Context, Job) Future {
	p := NewPromise()
	p.Resolve(c.val, nil)
	return p
}

func TestDistributed_ResultTypeMismatch(t *testing.T) {
	g := buildGraph(t, map[string]graph.RunFunc[int]{"a": value(1, 0)}, "a")

	_, err := NewDistributed[int](staticClient{val: "text"}).Execute(context.Background(), g, nil)
	assert.ErrorIs(t, err, ErrResultType)
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool := NewPool(1)
	pool.Stop()
	pool.Stop()

	f := pool.Submit(context.Background(), Job{Name: "late", Run: func(context.Context) (any, error) { return 1, nil }})
	_, err := f.Result(context.Background())
	assert.ErrorIs(t, err, ErrPoolStopped)
}

func TestPromise_ResolvesOnce(t *testing.T) {
	p := NewPromise()
	p.Resolve(1, nil)
	p.Resolve(2, errors.New("ignored"))

	v, err := p.Result(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewPromise().Result(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
