package hostfuncs_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	abierrors "github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/hostfuncs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func panicking(value any) hostfuncs.HostFunc {
	return hostfuncs.HostFunc{
		Name: "boom",
		Handler: func(context.Context, *hostfuncs.Call) error {
			panic(value)
		},
	}
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	cause := errors.New("disk on fire")

	tests := []struct {
		name    string
		value   any
		wantMsg string
		unwraps bool
	}{
		{name: "string", value: "test panic", wantMsg: "boom: panic: test panic"},
		{name: "error", value: cause, wantMsg: "boom: panic: disk on fire", unwraps: true},
		{name: "other", value: 42, wantMsg: "boom: panic: 42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := hostfuncs.NewRegistry(
				hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
				hostfuncs.WithFunc(panicking(tt.value)),
			)
			require.NoError(t, err)

			err = reg.Invoke(context.Background(), "boom", &hostfuncs.Call{})
			var pe *hostfuncs.PanicError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.wantMsg, pe.Error())
			assert.Equal(t, tt.unwraps, errors.Is(err, cause))
			detail := pe.ToErrorDetail()
			assert.Equal(t, "panic", detail.Type)
			assert.Contains(t, string(detail.Stack), "goroutine")
		})
	}
}

func TestPanicRecoveryMiddleware_KeepsViolations(t *testing.T) {
	for _, v := range []any{
		abierrors.Violation("Close", 7, "handle is closed"),
		&abierrors.FatalError{Message: "bye"},
	} {
		reg, err := hostfuncs.NewRegistry(
			hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
			hostfuncs.WithFunc(panicking(v)),
		)
		require.NoError(t, err)
		assert.PanicsWithValue(t, v, func() {
			_ = reg.Invoke(context.Background(), "boom", &hostfuncs.Call{})
		})
	}
}

func TestMiddlewareOrder_FIFO(t *testing.T) {
	var callOrder []string

	trace := func(name string) hostfuncs.Middleware {
		return func(next hostfuncs.SlotHandler) hostfuncs.SlotHandler {
			return func(ctx context.Context, c *hostfuncs.Call) error {
				callOrder = append(callOrder, name+"-before")
				err := next(ctx, c)
				callOrder = append(callOrder, name+"-after")
				return err
			}
		}
	}

	reg, err := hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(trace("mw1"), trace("mw2")),
		hostfuncs.WithFunc(hostfuncs.HostFunc{
			Name: "f",
			Handler: func(context.Context, *hostfuncs.Call) error {
				callOrder = append(callOrder, "handler")
				return nil
			},
		}),
	)
	require.NoError(t, err)
	require.NoError(t, reg.Invoke(context.Background(), "f", &hostfuncs.Call{}))

	assert.Equal(t, []string{"mw1-before", "mw2-before", "handler", "mw2-after", "mw1-after"}, callOrder)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg, err := hostfuncs.NewRegistry(
		hostfuncs.WithMiddleware(hostfuncs.LoggingMiddleware(logger)),
		hostfuncs.WithFunc(hostfuncs.HostFunc{
			Name:    "fails",
			Handler: func(context.Context, *hostfuncs.Call) error { return errors.New("nope") },
		}),
	)
	require.NoError(t, err)

	err = reg.Invoke(context.Background(), "fails", &hostfuncs.Call{})
	require.EqualError(t, err, "nope")

	out := buf.String()
	assert.Contains(t, out, "host function call")
	assert.Contains(t, out, "function=fails")
	assert.Contains(t, out, "host function failed")
	assert.Contains(t, out, "error=nope")
}
