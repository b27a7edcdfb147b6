package remote

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	// EventSubmit carries a task to a worker.
	EventSubmit = "submit"
	// EventResult carries a task's outcome back to the client.
	EventResult = "result"

	fieldTask    = "task"
	fieldPayload = "payload"
	fieldResult  = "result"
	fieldError   = "error"
)

// ErrMalformed is returned for messages missing required fields.
var ErrMalformed = errors.New("remote: malformed message")

// RemoteError is a failure reported by a worker.
type RemoteError struct {
	Task string
	Msg  string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote task %s failed: %s", e.Task, e.Msg)
}

// HandlerFunc executes one encoded task and returns the encoded result.
type HandlerFunc func(ctx context.Context, payload []byte) ([]byte, error)

func submitMessage(task string, payload []byte) map[string]any {
	return map[string]any{
		fieldTask:    task,
		fieldPayload: base64.StdEncoding.EncodeToString(payload),
	}
}

// Respond runs handler for a "submit" message and builds the matching
// "result" message. Handler failures are reported in the message, not
// returned.
func Respond(ctx context.Context, msg any, handler HandlerFunc) (map[string]any, error) {
	fields, ok := msg.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrMalformed, msg)
	}
	task, _ := fields[fieldTask].(string)
	encoded, _ := fields[fieldPayload].(string)
	if task == "" {
		return nil, fmt.Errorf("%w: missing task", ErrMalformed)
	}

	reply := map[string]any{fieldTask: task}
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		reply[fieldError] = fmt.Sprintf("decoding payload: %v", err)
		return reply, nil
	}
	result, err := handler(ctx, payload)
	if err != nil {
		reply[fieldError] = err.Error()
		return reply, nil
	}
	reply[fieldResult] = base64.StdEncoding.EncodeToString(result)
	return reply, nil
}

type resultMessage struct {
	task   string
	result []byte
	err    error
}

func parseResult(args ...any) (resultMessage, error) {
	if len(args) == 0 {
		return resultMessage{}, fmt.Errorf("%w: empty result event", ErrMalformed)
	}
	fields, ok := args[0].(map[string]any)
	if !ok {
		return resultMessage{}, fmt.Errorf("%w: got %T", ErrMalformed, args[0])
	}
	task, _ := fields[fieldTask].(string)
	if task == "" {
		return resultMessage{}, fmt.Errorf("%w: missing task", ErrMalformed)
	}

	msg := resultMessage{task: task}
	if remoteErr, _ := fields[fieldError].(string); remoteErr != "" {
		msg.err = &RemoteError{Task: task, Msg: remoteErr}
		return msg, nil
	}
	encoded, _ := fields[fieldResult].(string)
	result, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		msg.err = fmt.Errorf("%w: decoding result: %v", ErrMalformed, err)
		return msg, nil
	}
	msg.result = result
	return msg, nil
}
