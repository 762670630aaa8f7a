// Package hostfuncs exposes the wasm-expressible part of the context table as
// imports with a flat calling convention: handles, integers and status codes
// travel as i64, floats as f64, and strings and handle arrays as a packed
// i64 holding a guest pointer in the upper 32 bits and a length in the lower.
//
// The package has no WASM runtime dependency. A runtime adapter (see
// infrastructure/wazero) copies parameters into Call.Stack, supplies guest
// memory through the Guest interface, and reads results back from the stack.
package hostfuncs
