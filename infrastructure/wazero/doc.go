// Package wazero binds the context's wasm imports to the wazero runtime.
//
// RegisterWithRuntime instantiates a host module (default "abi_ctx") whose
// functions are the hostfuncs registry bound to one *abi.Context. Guests
// import slots by field name, pass handles and integers as i64, floats as
// f64, and strings as packed ptr/len pairs in their own memory. Byte results
// are written through the guest's "allocate" export.
//
// # Basic Usage
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithBundle(hostfuncs.AllBundles()),
//	)
//	if err != nil {
//	    return err
//	}
//
//	runtime := wazero.NewRuntime(ctx)
//	err = abiwazero.RegisterWithRuntime(ctx, runtime, abiCtx, registry,
//	    abiwazero.WithCustomHandler(abiwazero.LogMessageHandler(logger, 0)),
//	)
//
// GuestMethod turns a guest export into an abi.VarArgsFunc so it can be
// placed in a ModuleDef like any Go method.
package wazero
