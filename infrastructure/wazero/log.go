package wazero

import (
	"context"
	"log/slog"

	"github.com/reglet-dev/reglet-abi/hostfuncs"
	abilog "github.com/reglet-dev/reglet-abi/log"
	"github.com/tetratelabs/wazero/api"
)

// LogMessageImport is the name guests import the logger under.
const LogMessageImport = "log_message"

// LogMessageHandler returns the log_message import. It takes a packed
// ptr/len pointing at a log.LogMessageWire JSON payload, returns nothing,
// and replays the record into logger. Malformed payloads are reported, not
// trapped.
func LogMessageHandler(logger *slog.Logger, maxSize uint32) CustomHandler {
	if maxSize == 0 {
		maxSize = hostfuncs.DefaultMaxStringSize
	}
	return CustomHandler{
		Name: LogMessageImport,
		Handler: api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
			ptr, length := hostfuncs.UnpackPtrLen(stack[0])
			if length > maxSize {
				logger.WarnContext(ctx, "wazero: log message too large", "size", length, "max", maxSize)
				return
			}
			payload, ok := NewGuest(mod).Read(ptr, length)
			if !ok {
				logger.WarnContext(ctx, "wazero: failed to read log message from guest memory")
				return
			}
			replayLog(ctx, logger, GetExtensionName(ctx, mod), payload)
		}),
		ParamTypes:  []api.ValueType{api.ValueTypeI64},
		ResultTypes: []api.ValueType{},
	}
}

func replayLog(ctx context.Context, logger *slog.Logger, module string, payload []byte) {
	if err := abilog.Replay(ctx, logger, payload, slog.String("module", module)); err != nil {
		logger.WarnContext(ctx, "wazero: dropped malformed log message",
			"module", module, "error", err, "payload", string(payload))
	}
}
