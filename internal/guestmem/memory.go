//go:build wasip1

package guestmem

import (
	"fmt"
	"sync"
	"unsafe"
)

// DefaultMaxTotalAllocations caps the bytes held for the host at once.
const DefaultMaxTotalAllocations = 100 * 1024 * 1024

// memoryManager pins allocations handed to the host so the Go GC keeps them
// alive until deallocate.
var memoryManager = struct {
	ptrs  map[uint32][]byte
	total int
	limit int
	sync.Mutex
}{
	ptrs:  make(map[uint32][]byte),
	limit: DefaultMaxTotalAllocations,
}

// Option configures the memory manager.
type Option func(*config)

type config struct {
	maxTotal int
}

// WithMaxTotalAllocations sets the allocation cap. Non-positive values are
// ignored.
func WithMaxTotalAllocations(n int) Option {
	return func(c *config) {
		c.maxTotal = n
	}
}

// Configure applies opts to the memory manager.
func Configure(opts ...Option) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	memoryManager.Lock()
	defer memoryManager.Unlock()
	if cfg.maxTotal > 0 {
		memoryManager.limit = cfg.maxTotal
	}
}

// allocate reserves size bytes and returns their address. The host calls it
// to place byte results and handle arrays in guest memory.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	memoryManager.Lock()
	defer memoryManager.Unlock()

	if memoryManager.total+int(size) > memoryManager.limit {
		panic(fmt.Sprintf("guestmem: allocation limit exceeded (requested: %d bytes, current: %d bytes, limit: %d bytes)",
			size, memoryManager.total, memoryManager.limit))
	}

	buf := make([]byte, size)
	ptr := uint32(uintptr(unsafe.Pointer(&buf[0]))) //nolint:gosec // G103: wasm32 linear memory address
	memoryManager.ptrs[ptr] = buf
	memoryManager.total += int(size)
	return ptr
}

// deallocate releases ptr. Untracked pointers are ignored; accounting uses
// the stored length rather than size.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, _ uint32) {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	buf, ok := memoryManager.ptrs[ptr]
	if !ok {
		return
	}
	delete(memoryManager.ptrs, ptr)
	memoryManager.total = max(memoryManager.total-len(buf), 0)
}

// FreeAllTracked drops every pinned allocation.
func FreeAllTracked() {
	memoryManager.Lock()
	defer memoryManager.Unlock()
	clear(memoryManager.ptrs)
	memoryManager.total = 0
}

// Stats returns the number of pinned allocations and their total size.
func Stats() (count, bytes int) {
	memoryManager.Lock()
	defer memoryManager.Unlock()
	return len(memoryManager.ptrs), memoryManager.total
}

// PtrFromBytes copies data into a fresh allocation and returns it packed.
func PtrFromBytes(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	size := uint32(len(data)) //nolint:gosec // G115: bounded by the allocation limit
	ptr := allocate(size)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), size), data) //nolint:gosec // G103: linear memory
	return PackPtrLen(ptr, size)
}

// BytesFromPtr returns a copy of the bytes a packed value points at.
func BytesFromPtr(packed uint64) []byte {
	ptr, length := UnpackPtrLen(packed)
	if ptr == 0 || length == 0 {
		return nil
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), length) //nolint:gosec // G103: linear memory
	return append([]byte(nil), src...)
}

// DeallocatePacked releases the allocation behind a packed value.
func DeallocatePacked(packed uint64) {
	ptr, length := UnpackPtrLen(packed)
	if ptr != 0 && length > 0 {
		deallocate(ptr, length)
	}
}

// PtrFromHandles writes a handle array and returns it packed as ptr/count,
// the shape TupleFromArray and Call expect.
func PtrFromHandles(handles []uint64) uint64 {
	if len(handles) == 0 {
		return 0
	}
	ptr, _ := UnpackPtrLen(PtrFromBytes(EncodeHandles(handles)))
	return PackPtrLen(ptr, uint32(len(handles))) //nolint:gosec // G115: bounded by the allocation limit
}

// HandlesFromPtr reads a packed ptr/count handle array, such as the argument
// array the host passes to a guest method.
func HandlesFromPtr(packed uint64) []uint64 {
	ptr, count := UnpackPtrLen(packed)
	if ptr == 0 || count == 0 {
		return nil
	}
	return DecodeHandles(BytesFromPtr(PackPtrLen(ptr, count*HandleSize)))
}
