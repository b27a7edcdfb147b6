// Package sample defines the in-memory sample model and the pipeline that
// produces samples from per-task arguments.
//
// A Sample carries a band-first Cube (dims ["band", <spatial dims>...]) and,
// once flattened, a Flat view with dims ["space", "band"] suitable for
// feeding a model. Flatten and InverseFlatten convert between the two
// layouts in C (row-major) order.
//
// A Pipeline names a registered sampler plus an ordered list of registered
// stages. Runner resolves those names through the registry and applies them.
package sample
