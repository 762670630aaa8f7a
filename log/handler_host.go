//go:build !wasip1

package log

import "os"

// emitToHost writes the encoded record to stderr outside a WASM guest.
func emitToHost(payload []byte) {
	_, _ = os.Stderr.Write(append(payload, '\n'))
}
