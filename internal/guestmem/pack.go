// Package guestmem is the guest half of the wasm calling convention: it
// owns the allocate/deallocate exports the host writes results through and
// packs pointers, lengths and handle arrays into i64 values.
package guestmem

import (
	"encoding/binary"
	"fmt"
)

// HandleSize is the width of one handle in a packed handle array.
const HandleSize = 8

// PackPtrLen packs a pointer and length into a single uint64.
// Pointer is stored in the high 32 bits, length in the low 32 bits.
// Panics if ptr is 0 and length > 0.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("guestmem: invalid pack - null pointer with non-zero length (%d)", length))
	}
	return (uint64(ptr) << 32) | uint64(length)
}

// UnpackPtrLen unpacks a uint64 into its pointer and length.
// Panics if ptr is 0 and length > 0.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32) //nolint:gosec // G115: packed format stores 32-bit values
	length = uint32(packed)    //nolint:gosec // G115: packed format stores 32-bit values
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("guestmem: invalid unpack - null pointer with non-zero length (%d)", length))
	}
	return ptr, length
}

// EncodeHandles lays handles out as little-endian 8-byte values.
func EncodeHandles(handles []uint64) []byte {
	buf := make([]byte, len(handles)*HandleSize)
	for i, h := range handles {
		binary.LittleEndian.PutUint64(buf[i*HandleSize:], h)
	}
	return buf
}

// DecodeHandles reverses EncodeHandles. A trailing partial value is ignored.
func DecodeHandles(buf []byte) []uint64 {
	out := make([]uint64, len(buf)/HandleSize)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(buf[i*HandleSize:])
	}
	return out
}
