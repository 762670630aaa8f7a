package testutil

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/reglet-dev/reglet-abi/abi"
)

// GuestMemory is a linear memory with a bump allocator. Address 0 is never
// handed out.
type GuestMemory struct {
	buf  []byte
	next uint32
}

// NewGuestMemory creates a memory of size bytes.
func NewGuestMemory(size int) *GuestMemory {
	return &GuestMemory{buf: make([]byte, size), next: 8}
}

// Read returns a view of [ptr, ptr+length).
func (m *GuestMemory) Read(ptr, length uint32) ([]byte, bool) {
	end := uint64(ptr) + uint64(length)
	if end > uint64(len(m.buf)) {
		return nil, false
	}
	return m.buf[ptr:end], true
}

// Write copies data to ptr.
func (m *GuestMemory) Write(ptr uint32, data []byte) bool {
	end := uint64(ptr) + uint64(len(data))
	if end > uint64(len(m.buf)) {
		return false
	}
	copy(m.buf[ptr:], data)
	return true
}

// Allocate reserves size bytes aligned to 8.
func (m *GuestMemory) Allocate(_ context.Context, size uint32) (uint32, error) {
	ptr := m.next
	end := uint64(ptr) + uint64(size)
	if end > uint64(len(m.buf)) {
		return 0, fmt.Errorf("guest out of memory: %d bytes requested, %d free", size, uint64(len(m.buf))-uint64(ptr))
	}
	m.next = uint32((end + 7) &^ 7) //nolint:gosec // G115: bounded by len(buf)
	return ptr, nil
}

// Put stores data and returns it as a packed pointer/length.
func (m *GuestMemory) Put(data []byte) uint64 {
	ptr, err := m.Allocate(context.Background(), uint32(len(data))) //nolint:gosec // G115: test data
	if err != nil {
		panic(err)
	}
	m.Write(ptr, data)
	return uint64(ptr)<<32 | uint64(len(data))
}

// PutString stores s like Put.
func (m *GuestMemory) PutString(s string) uint64 {
	return m.Put([]byte(s))
}

// PutHandles stores hs as little-endian i64 values and returns the packed
// pointer/count.
func (m *GuestMemory) PutHandles(hs ...abi.Handle) uint64 {
	raw := make([]byte, 8*len(hs))
	for i, h := range hs {
		binary.LittleEndian.PutUint64(raw[i*8:], uint64(h))
	}
	packed := m.Put(raw)
	return packed&^0xFFFFFFFF | uint64(len(hs))
}

// Get reads a packed pointer/length. A zero value yields nil.
func (m *GuestMemory) Get(packed uint64) []byte {
	if packed == 0 {
		return nil
	}
	out, ok := m.Read(uint32(packed>>32), uint32(packed)) //nolint:gosec // G115: packed format
	if !ok {
		panic(fmt.Sprintf("packed value %#x is out of range", packed))
	}
	return out
}
