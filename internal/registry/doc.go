// Package registry provides the central "glue" for the module system.
//
// The Registry stores mappings between the "module:function" strings used in
// configuration (e.g., "sample:flatten") and the compiled Go values that
// implement them. Modules populate it at process start through the Module
// interface; afterwards, Resolve turns a reference into a typed value with
// the same required/optional contract and error shape everywhere.
//
// Resolution is a lookup, never a code load. A module may attach an
// initializer that runs once, the first time any of its functions is
// resolved; a failing or panicking initializer is reported as a
// configuration error that carries the underlying failure.
package registry
