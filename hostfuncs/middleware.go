package hostfuncs

import (
	"context"
	"log/slog"
	"runtime/debug"

	abierrors "github.com/reglet-dev/reglet-abi/domain/errors"
)

// Middleware wraps a SlotHandler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
type Middleware func(next SlotHandler) SlotHandler

// RegistryOption is a functional option for configuring a HandlerRegistry.
type RegistryOption func(*registryBuilder)

// PanicRecoveryMiddleware converts panics into a *PanicError so a failing
// import traps the guest instead of crashing the host. Contract violations
// and fatal errors are not recovered.
func PanicRecoveryMiddleware() Middleware {
	return func(next SlotHandler) SlotHandler {
		return func(ctx context.Context, call *Call) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				switch r.(type) {
				case *abierrors.ContractViolation, *abierrors.FatalError:
					panic(r)
				}
				err = &PanicError{Function: call.Function, Value: r, Stack: debug.Stack()}
			}()
			return next(ctx, call)
		}
	}
}

// LoggingMiddleware logs every import call at debug level, and failures at
// error level.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next SlotHandler) SlotHandler {
		return func(ctx context.Context, call *Call) error {
			logger.DebugContext(ctx, "host function call", "function", call.Function)
			err := next(ctx, call)
			if err != nil {
				logger.ErrorContext(ctx, "host function failed", "function", call.Function, "error", err)
			}
			return err
		}
	}
}
