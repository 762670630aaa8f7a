package wazero

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/reglet-dev/reglet-abi/abi"
	abierrors "github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/hostfuncs"
	"github.com/reglet-dev/reglet-abi/internal/guestmem"
	"github.com/tetratelabs/wazero/api"
)

var (
	sigNoArgs  = []api.ValueType{}
	sigVarArgs = []api.ValueType{api.ValueTypeI64, api.ValueTypeI64}
)

// GuestMethod wraps a guest export as a method implementation. Two export
// shapes are accepted, both returning an i64 handle:
//
//	() -> i64                 no arguments; calls with arguments raise TypeError
//	(self i64, args i64) -> i64  args is a packed ptr/count handle array
//
// The guest borrows self and the arguments and returns a new handle, or 0
// with an error pending. A trap raises SystemError; a contract violation
// inside the guest is re-raised as a panic.
//
// The argument array is allocated through the guest allocator and owned by
// the host: it is handed back through DeallocateExport once the export
// returns, including when it traps or violates the contract. Guests must
// not retain the args pointer past the call.
func GuestMethod(ctx context.Context, mod api.Module, export string) (abi.VarArgsFunc, error) {
	fn := mod.ExportedFunction(export)
	if fn == nil {
		return nil, fmt.Errorf("guest module %s has no export %q", mod.Name(), export)
	}
	def := fn.Definition()
	params := def.ParamTypes()
	if !slices.Equal(def.ResultTypes(), []api.ValueType{api.ValueTypeI64}) ||
		(!slices.Equal(params, sigNoArgs) && !slices.Equal(params, sigVarArgs)) {
		return nil, fmt.Errorf("export %q has signature %v -> %v, want () -> i64 or (i64, i64) -> i64",
			export, params, def.ResultTypes())
	}
	noArgs := len(params) == 0
	g := guest{mod: mod}

	return func(c *abi.Context, self abi.Handle, args []abi.Handle) abi.Handle {
		var stack []uint64
		if noArgs {
			if len(args) != 0 {
				c.ErrSetString(c, c.TypeError, fmt.Sprintf("%s() takes no arguments (%d given)", export, len(args)))
				return 0
			}
		} else {
			packed, size, err := writeArgs(ctx, g, args)
			if err != nil {
				c.ErrSetString(c, c.SystemError, fmt.Sprintf("%s: %v", export, err))
				return 0
			}
			if size > 0 {
				defer g.Deallocate(ctx, uint32(packed>>32), size) //nolint:errcheck // release is best effort
			}
			stack = []uint64{uint64(self), packed}
		}

		results, err := fn.Call(ctx, stack...)
		if err != nil {
			var cv *abierrors.ContractViolation
			if errors.As(err, &cv) {
				panic(cv)
			}
			var fe *abierrors.FatalError
			if errors.As(err, &fe) {
				panic(fe)
			}
			if c.ErrOccurred(c) == 0 {
				c.ErrSetString(c, c.SystemError, fmt.Sprintf("wasm export %s trapped: %v", export, err))
			}
			return 0
		}

		h := abi.Handle(results[0])
		if h.IsNull() && c.ErrOccurred(c) == 0 {
			c.ErrSetString(c, c.SystemError, fmt.Sprintf("%s returned NULL without setting an error", export))
		}
		return h
	}, nil
}

// writeArgs copies args into guest memory and returns them packed together
// with the byte size of the buffer. The caller releases the buffer.
func writeArgs(ctx context.Context, g guest, args []abi.Handle) (uint64, uint32, error) {
	if len(args) == 0 {
		return 0, 0, nil
	}
	raw := make([]uint64, len(args))
	for i, h := range args {
		raw[i] = uint64(h)
	}
	buf := guestmem.EncodeHandles(raw)
	ptr, err := g.Allocate(ctx, uint32(len(buf))) //nolint:gosec // G115: bounded by argument count
	if err != nil {
		return 0, 0, err
	}
	size := uint32(len(buf)) //nolint:gosec // G115: bounded by argument count
	if !g.Write(ptr, buf) {
		_ = g.Deallocate(ctx, ptr, size)
		return 0, 0, fmt.Errorf("guest memory [%#x, +%d) out of range", ptr, len(buf))
	}
	return hostfuncs.PackPtrLen(ptr, uint32(len(args))), size, nil //nolint:gosec // G115: bounded by argument count
}
