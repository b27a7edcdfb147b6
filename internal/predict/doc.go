// Package predict turns a sample source and a trained ensemble into a
// deferred task graph, and evaluates single tasks into prediction
// artifacts.
//
// # Flow
//
//  1. Builder.Build resolves the serializer, transform and ensemble once,
//     then adds one task per generated argument to a graph. Nothing runs.
//  2. An executor evaluates the graph. Each task calls Predictor.Run.
//  3. Predictor.Run materializes the task's sample once, then predicts with
//     every model in the ensemble, producing one Artifact per model.
//  4. Many ties the three together and flattens the per-task results.
//
// Tasks are described by a Descriptor. Its serializable half lets a remote
// worker rebuild the task with Predictor.RunPayload.
package predict
