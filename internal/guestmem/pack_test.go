package guestmem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackPtrLen(t *testing.T) {
	tests := []struct {
		name   string
		ptr    uint32
		length uint32
	}{
		{name: "zero", ptr: 0, length: 0},
		{name: "typical", ptr: 0x12345678, length: 0xABCDEF00},
		{name: "max", ptr: 0xFFFFFFFF, length: 0xFFFFFFFF},
		{name: "pointer only", ptr: 64, length: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed := PackPtrLen(tt.ptr, tt.length)
			assert.Equal(t, uint64(tt.ptr)<<32|uint64(tt.length), packed)
			ptr, length := UnpackPtrLen(packed)
			assert.Equal(t, tt.ptr, ptr)
			assert.Equal(t, tt.length, length)
		})
	}
}

func TestPackPtrLen_PanicsOnNullPointerWithLength(t *testing.T) {
	assert.Panics(t, func() { PackPtrLen(0, 4) })
	assert.Panics(t, func() { UnpackPtrLen(4) })
}

func TestHandles(t *testing.T) {
	in := []uint64{1, 0xFFFF_0000_0000_0002, 0}
	buf := EncodeHandles(in)
	assert.Len(t, buf, 3*HandleSize)
	assert.Equal(t, byte(2), buf[8])
	assert.Equal(t, in, DecodeHandles(buf))
	assert.Empty(t, DecodeHandles(buf[:7]))
}
