package wazero

import (
	"context"
	"fmt"

	"github.com/reglet-dev/reglet-abi/hostfuncs"
	"github.com/tetratelabs/wazero/api"
)

// AllocateExport is the guest export the host places results through.
const AllocateExport = "allocate"

// DeallocateExport releases a buffer obtained from AllocateExport. It is
// optional; guests without it keep argument buffers until they exit.
const DeallocateExport = "deallocate"

// guest adapts a wazero module to hostfuncs.Guest.
type guest struct {
	mod api.Module
}

// NewGuest returns the memory of mod as a hostfuncs.Guest. Modules without
// memory fail every access.
func NewGuest(mod api.Module) hostfuncs.Guest {
	return guest{mod: mod}
}

func (g guest) Read(ptr, length uint32) ([]byte, bool) {
	mem := g.mod.Memory()
	if mem == nil {
		return nil, false
	}
	return mem.Read(ptr, length)
}

func (g guest) Write(ptr uint32, data []byte) bool {
	mem := g.mod.Memory()
	if mem == nil {
		return false
	}
	return mem.Write(ptr, data)
}

func (g guest) Allocate(ctx context.Context, size uint32) (uint32, error) {
	fn := g.mod.ExportedFunction(AllocateExport)
	if fn == nil {
		return 0, fmt.Errorf("guest module %s missing %q export", g.mod.Name(), AllocateExport)
	}
	results, err := fn.Call(ctx, uint64(size))
	if err != nil {
		return 0, fmt.Errorf("failed to call guest allocate: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("guest allocate returned no results")
	}
	return uint32(results[0]), nil //nolint:gosec // G115: wasm32 pointers are 32-bit
}

// Deallocate returns ptr to the guest allocator. A missing export is not an
// error.
func (g guest) Deallocate(ctx context.Context, ptr, size uint32) error {
	fn := g.mod.ExportedFunction(DeallocateExport)
	if fn == nil {
		return nil
	}
	if _, err := fn.Call(ctx, uint64(ptr), uint64(size)); err != nil {
		return fmt.Errorf("failed to call guest deallocate: %w", err)
	}
	return nil
}
