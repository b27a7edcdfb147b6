package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/vk/predictgrid/internal/ctxlog"
	"github.com/vk/predictgrid/internal/executor"
)

var (
	// ErrNoPayload is returned for jobs that cannot be shipped.
	ErrNoPayload = errors.New("remote: job has no payload")
	// ErrDuplicateTask is returned when a task name is already in flight.
	ErrDuplicateTask = errors.New("remote: task already in flight")
	// ErrClosed is returned for tasks still in flight when the client closes.
	ErrClosed = errors.New("remote: client closed")
)

// Shippable is implemented by payloads that can tell whether they survive
// encoding intact.
type Shippable interface {
	Shippable() error
}

// DecodeFunc turns a worker's encoded result back into a value.
type DecodeFunc func(data []byte) (any, error)

// Client is an executor.Client that ships jobs to remote workers.
type Client struct {
	conn   Conn
	decode DecodeFunc

	mu      sync.Mutex
	closed  bool
	pending map[string]*executor.Promise
}

// NewClient wraps an established connection.
func NewClient(conn Conn, decode DecodeFunc) *Client {
	c := &Client{
		conn:    conn,
		decode:  decode,
		pending: make(map[string]*executor.Promise),
	}
	conn.OnResult(c.handleResult)
	return c
}

// Dial connects to cfg.URL and returns a ready client.
func Dial(ctx context.Context, cfg Config, decode DecodeFunc) (*Client, error) {
	conn, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewClient(conn, decode), nil
}

// Submit encodes job.Payload with msgpack and emits it. Job.Run is never
// called; the work happens on the worker.
func (c *Client) Submit(ctx context.Context, job executor.Job) executor.Future {
	logger := ctxlog.FromContext(ctx).With("task", job.Name)
	promise := executor.NewPromise()
	if job.Payload == nil {
		promise.Resolve(nil, fmt.Errorf("%w: %s", ErrNoPayload, job.Name))
		return promise
	}
	if s, ok := job.Payload.(Shippable); ok {
		if err := s.Shippable(); err != nil {
			promise.Resolve(nil, fmt.Errorf("%w: %s: %w", ErrNoPayload, job.Name, err))
			return promise
		}
	}
	payload, err := msgpack.Marshal(job.Payload)
	if err != nil {
		promise.Resolve(nil, fmt.Errorf("encoding payload: %w", err))
		return promise
	}

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		promise.Resolve(nil, ErrClosed)
		return promise
	case c.pending[job.Name] != nil:
		c.mu.Unlock()
		promise.Resolve(nil, fmt.Errorf("%w: %s", ErrDuplicateTask, job.Name))
		return promise
	}
	c.pending[job.Name] = promise
	c.mu.Unlock()

	context.AfterFunc(ctx, func() { c.fail(job.Name, promise, ctx.Err()) })

	logger.Debug("Submitting task.", "bytes", len(payload))
	if err := c.conn.Emit(EventSubmit, submitMessage(job.Name, payload)); err != nil {
		c.fail(job.Name, promise, fmt.Errorf("emitting %s: %w", EventSubmit, err))
	}
	return promise
}

// Close disconnects and fails every task still in flight.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	pending := c.pending
	c.pending = make(map[string]*executor.Promise)
	c.mu.Unlock()

	for _, p := range pending {
		p.Resolve(nil, ErrClosed)
	}
	c.conn.Close()
	return nil
}

// fail resolves promise with err if it is still the one in flight for task.
func (c *Client) fail(task string, promise *executor.Promise, err error) {
	c.mu.Lock()
	if c.pending[task] == promise {
		delete(c.pending, task)
	}
	c.mu.Unlock()
	promise.Resolve(nil, err)
}

func (c *Client) handleResult(args ...any) {
	msg, err := parseResult(args...)
	if err != nil {
		ctxlog.FromContext(context.Background()).Warn("Dropping result event.", "error", err)
		return
	}

	c.mu.Lock()
	promise := c.pending[msg.task]
	delete(c.pending, msg.task)
	c.mu.Unlock()
	if promise == nil {
		return
	}

	if msg.err != nil {
		promise.Resolve(nil, msg.err)
		return
	}
	if c.decode == nil {
		promise.Resolve(msg.result, nil)
		return
	}
	promise.Resolve(c.decode(msg.result))
}
