// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for file discovery, parsing, expression
// evaluation and translation into the format-agnostic config.Model.
//
// Expressions are evaluated with a small context: the process environment
// is available as the object `env`, together with the functions upper,
// lower, format, join, coalesce and lookup. A typical use is
//
//	train_path = lookup(env, "ELM_TRAIN_PATH", "models")
package hcl
