// Package config defines the format-agnostic configuration model for a
// prediction run, along with the Loader interface for reading it from
// various sources and the Error type shared by every component that
// rejects bad configuration.
//
// The `config.Model` is the single source of truth for the `predict` and
// `app` packages. Concrete loaders, such as for HCL, are provided in
// separate packages.
package config
