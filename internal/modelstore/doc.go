// Package modelstore persists and restores tag-addressed model sets.
//
// A model set is an ordered list of models plus one metadata mapping, saved
// under a root as:
//
//	<root>/<tag>_0.msgpack, <root>/<tag>_1.msgpack, ...
//	<root>/<tag>_meta.msgpack
//	<root>/<tag>_manifest.msgpack
//
// The manifest lists the model files in order. Sets written without one
// are discovered by listing the root and sorting numbered files by index.
//
// # Layers
//
//   - **Store** implements Save and Load on top of a Backend.
//   - **Backend** dumps and loads single values by path. BlobBackend is the
//     provided implementation: a Codec on top of a BlobStore.
//   - **BlobStore** moves bytes. LocalBlobStore, S3BlobStore and
//     MemoryBlobStore are provided.
//   - **Cache** memoizes Load per (root, tag).
//
// Save is not crash-atomic. A failure part way through leaves the files
// written so far in place; callers that need durability should check the
// returned paths.
package modelstore
