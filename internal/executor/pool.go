package executor

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrPoolStopped is returned for jobs submitted after Stop.
var ErrPoolStopped = errors.New("executor: pool stopped")

// Promise is a Future that is completed exactly once by its producer.
type Promise struct {
	once sync.Once
	done chan struct{}
	val  any
	err  error
}

// NewPromise creates an incomplete Promise.
func NewPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Resolve completes the promise. Later calls are ignored.
func (p *Promise) Resolve(val any, err error) {
	p.once.Do(func() {
		p.val, p.err = val, err
		close(p.done)
	})
}

// Result waits for the promise or for ctx to end.
func (p *Promise) Result(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Pool is a Client that executes jobs on a fixed-size set of goroutines.
type Pool struct {
	mu     sync.RWMutex
	closed bool
	jobs   chan func()
	wg     sync.WaitGroup
}

// NewPool starts size workers. If size is zero or negative, GOMAXPROCS
// workers are used.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
		if size <= 0 {
			size = 1
		}
	}

	p := &Pool{jobs: make(chan func(), size*2)}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for fn := range p.jobs {
		fn()
	}
}

// Submit queues job. Jobs whose context is cancelled before they start are
// resolved with the context error and never run.
func (p *Pool) Submit(ctx context.Context, job Job) Future {
	promise := NewPromise()
	task := func() {
		if err := ctx.Err(); err != nil {
			promise.Resolve(nil, err)
			return
		}
		promise.Resolve(safeRun(ctx, job.Name, job.Run))
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		promise.Resolve(nil, ErrPoolStopped)
		return promise
	}
	select {
	case p.jobs <- task:
	case <-ctx.Done():
		promise.Resolve(nil, ctx.Err())
	}
	return promise
}

// Stop drains queued jobs and waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
