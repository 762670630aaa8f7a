package hostfuncs

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/reglet-dev/reglet-abi/abi"
)

// ValueType is the wasm type of a parameter or result. The values match the
// wasm binary encoding.
type ValueType byte

// Value types used by the import table.
const (
	I64 ValueType = 0x7e
	F64 ValueType = 0x7c
)

// String returns the wasm text name of the type.
func (v ValueType) String() string {
	switch v {
	case I64:
		return "i64"
	case F64:
		return "f64"
	default:
		return fmt.Sprintf("0x%02x", byte(v))
	}
}

// DefaultMaxStringSize limits a single string or buffer read from guest
// memory (1MB).
const DefaultMaxStringSize = 1 * 1024 * 1024

// Guest is the linear memory of the calling module plus its allocator.
// Results that do not fit in a stack slot are written into memory the guest
// allocated.
type Guest interface {
	// Read returns a view of guest memory, false when out of range.
	Read(ptr, length uint32) ([]byte, bool)

	// Write copies data into guest memory, false when out of range.
	Write(ptr uint32, data []byte) bool

	// Allocate reserves size bytes in the guest and returns their address.
	Allocate(ctx context.Context, size uint32) (uint32, error)
}

// Call is one invocation of an import.
type Call struct {
	// ABI is the context the import forwards to.
	ABI *abi.Context

	// Guest is the calling module's memory.
	Guest Guest

	// Stack holds the parameters on entry and the results on return, the
	// same layout as wazero's api.GoModuleFunc.
	Stack []uint64

	// Function is the import name.
	Function string

	// MaxStringSize caps strings read from the guest. Zero means
	// DefaultMaxStringSize.
	MaxStringSize uint32
}

// SlotHandler runs one import. Errors report guest misuse (bad pointers,
// oversized buffers) and become traps; host exceptions stay pending on the
// context like they do for native callers.
type SlotHandler func(ctx context.Context, call *Call) error

// HostFunc describes one import of the host module.
type HostFunc struct {
	Handler SlotHandler
	Name    string
	Params  []ValueType
	Results []ValueType
	// Since is the first context version that provides the import.
	Since int
}

// PackPtrLen packs a guest pointer and length into one i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func PackPtrLen(ptr, length uint32) uint64 {
	return uint64(ptr)<<32 | uint64(length)
}

// UnpackPtrLen splits a packed pointer and length.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	return uint32(packed >> 32), uint32(packed) //nolint:gosec // G115: packed format stores 32-bit values
}

func (c *Call) limit() uint32 {
	if c.MaxStringSize == 0 {
		return DefaultMaxStringSize
	}
	return c.MaxStringSize
}

// Handle decodes parameter i as a handle.
func (c *Call) Handle(i int) abi.Handle {
	return abi.Handle(c.Stack[i])
}

// Int decodes parameter i as a signed integer.
func (c *Call) Int(i int) int64 {
	return int64(c.Stack[i]) //nolint:gosec // G115: i64 parameters are two's complement
}

// Float decodes parameter i as a float.
func (c *Call) Float(i int) float64 {
	return math.Float64frombits(c.Stack[i])
}

// Bytes reads the packed pointer/length in parameter i. The returned slice
// is a copy.
func (c *Call) Bytes(i int) ([]byte, error) {
	ptr, length := UnpackPtrLen(c.Stack[i])
	if length > c.limit() {
		return nil, &GuestMemoryError{Function: c.Function, Ptr: ptr, Length: length, Reason: fmt.Sprintf("exceeds maximum %d bytes", c.limit())}
	}
	if length == 0 {
		return []byte{}, nil
	}
	view, ok := c.Guest.Read(ptr, length)
	if !ok {
		return nil, &GuestMemoryError{Function: c.Function, Ptr: ptr, Length: length, Reason: "out of range"}
	}
	out := make([]byte, length)
	copy(out, view)
	return out, nil
}

// Text reads the packed pointer/length in parameter i as a string.
func (c *Call) Text(i int) (string, error) {
	b, err := c.Bytes(i)
	return string(b), err
}

// Handles reads the packed pointer/count in parameter i as an array of
// little-endian i64 handles.
func (c *Call) Handles(i int) ([]abi.Handle, error) {
	ptr, count := UnpackPtrLen(c.Stack[i])
	if uint64(count)*8 > uint64(c.limit()) {
		return nil, &GuestMemoryError{Function: c.Function, Ptr: ptr, Length: count, Reason: "handle array too long"}
	}
	if count == 0 {
		return nil, nil
	}
	view, ok := c.Guest.Read(ptr, count*8)
	if !ok {
		return nil, &GuestMemoryError{Function: c.Function, Ptr: ptr, Length: count * 8, Reason: "out of range"}
	}
	out := make([]abi.Handle, count)
	for j := range out {
		out[j] = abi.Handle(binary.LittleEndian.Uint64(view[j*8:]))
	}
	return out, nil
}

// ReturnHandle stores a handle result.
func (c *Call) ReturnHandle(h abi.Handle) {
	c.Stack[0] = uint64(h)
}

// ReturnInt stores an integer result.
func (c *Call) ReturnInt(v int64) {
	c.Stack[0] = uint64(v) //nolint:gosec // G115: i64 results are two's complement
}

// ReturnFloat stores a float result.
func (c *Call) ReturnFloat(v float64) {
	c.Stack[0] = math.Float64bits(v)
}

// ReturnBytes copies data into freshly allocated guest memory and stores the
// packed pointer/length. A nil slice returns 0, which guests read as failure;
// an empty result still carries a non-zero pointer.
func (c *Call) ReturnBytes(ctx context.Context, data []byte) error {
	if data == nil {
		c.Stack[0] = 0
		return nil
	}
	size := max(len(data), 1)
	ptr, err := c.Guest.Allocate(ctx, uint32(size)) //nolint:gosec // G115: bounded by host object sizes
	if err != nil {
		return fmt.Errorf("%s: allocate %d bytes in guest: %w", c.Function, len(data), err)
	}
	if !c.Guest.Write(ptr, data) {
		return &GuestMemoryError{Function: c.Function, Ptr: ptr, Length: uint32(len(data)), Reason: "allocated block out of range"} //nolint:gosec // G115
	}
	c.Stack[0] = PackPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115
	return nil
}
