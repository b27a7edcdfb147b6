package remote

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/predictgrid/internal/ctxlog"
)

// DefaultConnectTimeout bounds Dial when Config.ConnectTimeout is zero.
const DefaultConnectTimeout = 15 * time.Second

// ErrNotConnected is returned when emitting on a closed connection.
var ErrNotConnected = errors.New("remote: not connected")

// Conn is the event transport a Client talks through.
type Conn interface {
	Emit(event string, data map[string]any) error
	OnResult(fn func(args ...any))
	Close()
}

// Config describes how to reach the workers.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

type socketConn struct {
	io *socket.Socket
}

func (c *socketConn) Emit(event string, data map[string]any) error {
	if !c.io.Connected() {
		return ErrNotConnected
	}
	c.io.Emit(event, data)
	return nil
}

func (c *socketConn) OnResult(fn func(args ...any)) {
	c.io.On(types.EventName(EventResult), func(args ...any) {
		fn(args...)
	})
}

func (c *socketConn) Close() {
	c.io.Disconnect()
}

// Connect opens a websocket-only socket.io connection and waits for the
// server to accept it.
func Connect(ctx context.Context, cfg Config) (Conn, error) {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL)
	logger.Info("Connecting to remote workers...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	io.Connect()

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &socketConn{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}
