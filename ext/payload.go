package ext

import (
	"github.com/reglet-dev/reglet-abi/abi"
)

// Payload returns the payload of the extension instance h as T. When the
// payload is not a T it returns false with TypeError pending. Like Cast, it
// panics when h is not an extension instance.
func Payload[T any](ctx *abi.Context, h abi.Handle) (T, bool) {
	var zero T
	data := ctx.Cast(ctx, h)
	v, ok := data.(T)
	if !ok {
		return zero, fail(ctx, ctx.TypeError, "payload is %T, not %T", data, zero)
	}
	return v, true
}
