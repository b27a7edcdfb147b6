// Package graph provides the deferred task graph that prediction runs are
// expressed as.
//
// # Why Graph Package Exists
//
// Building work and running work are separate steps. The builder turns a
// sample source into one task per sample and hands back a Graph; an
// executor decides later whether those tasks run inline, on a worker pool,
// or on remote workers. The Graph is the contract between the two.
//
// # Structure
//
// A Graph is an ordered set of named tasks:
//   - **Names** are unique within a graph and are the keys results are
//     collected by.
//   - **Run** is the deferred computation. Nothing runs at Add time.
//   - **Payload** is an optional, serializable description of the same
//     computation, used by executors that ship work to another process.
//
// Tasks in a prediction graph are independent of each other, so the graph
// carries no edges; insertion order is the default result order.
//
// # Thread-Safety
//
// A Graph is populated by one goroutine and then shared read-only with
// executors. Add must not be called concurrently with Execute.
package graph
