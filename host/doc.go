// Package host implements the context table: handle storage, the slot
// bodies, builders, trackers, fields, the pending-error model and the
// trampoline/dealloc bridge between extension functions and host objects.
//
// NewContext builds an immutable *abi.Context; every slot reads its
// per-context state through Context.Private. Extensions receive the context
// at init and call slots directly. Failures are reported through return
// values plus a pending exception; contract violations (stale or foreign
// handles, misuse of builders and trackers) panic with
// *errors.ContractViolation.
//
// Executor wraps one context with a wazero runtime and loads extensions,
// either Go init functions from host/registry or WASM modules described by
// an extension.yaml manifest (see Loader).
package host
