//go:build wasip1

package log

import (
	"log/slog"

	"github.com/reglet-dev/reglet-abi/internal/guestmem"
)

//go:wasmimport abi_ctx log_message
//nolint:revive // intentional snake_case to match WASM import convention
func host_log_message(messagePacked uint64)

func emitToHost(payload []byte) {
	packed := guestmem.PtrFromBytes(payload)
	host_log_message(packed)
	guestmem.DeallocatePacked(packed)
}

// init routes the guest's default logger to the host.
func init() {
	slog.SetDefault(slog.New(NewHandler()))
}
