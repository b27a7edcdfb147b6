// Package remote submits prediction tasks to workers over socket.io.
//
// The protocol is two events on one namespace. The client emits "submit"
// with {task, payload}; a worker answers with "result" carrying {task,
// result} or {task, error}. Payloads and results are msgpack bytes in
// base64 so they survive the transport's JSON framing. Results are matched
// back to submissions by task name, so names must be unique among the
// tasks in flight on one Client.
package remote
