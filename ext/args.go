package ext

import (
	"fmt"
	"strings"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/errors"
)

// ParseArgs converts positional arguments into Go values. Each format
// character consumes one argument and one target:
//
//	i  *int        integer
//	l  *int64      integer
//	d  *float64    number
//	p  *bool       truth value of any object
//	s  *string     str
//	O  *abi.Handle borrowed handle, not closed by the caller
//
// A '|' marks the remaining arguments optional; their targets keep their
// values when absent. ":name" at the end names the function in error
// messages. On failure ParseArgs returns false with TypeError (or the
// conversion's own error) pending.
func ParseArgs(ctx *abi.Context, args []abi.Handle, format string, targets ...any) bool {
	codes, name := splitFormat(format)
	required := strings.IndexByte(codes, '|')
	if required >= 0 {
		codes = codes[:required] + codes[required+1:]
	} else {
		required = len(codes)
	}
	if len(targets) != len(codes) {
		panic(errors.Violation("ParseArgs", 0, "format %q wants %d targets, got %d", format, len(codes), len(targets)))
	}

	switch {
	case len(args) > len(codes):
		return fail(ctx, ctx.TypeError, "%s() takes at most %d arguments (%d given)", name, len(codes), len(args))
	case len(args) < required:
		return fail(ctx, ctx.TypeError, "%s() takes at least %d arguments (%d given)", name, required, len(args))
	}

	for i, h := range args {
		if !convert(ctx, codes[i], h, targets[i], name, i+1) {
			return false
		}
	}
	return true
}

func splitFormat(format string) (codes, name string) {
	name = "function"
	if i := strings.IndexByte(format, ':'); i >= 0 {
		codes, name = format[:i], format[i+1:]
		return codes, name
	}
	return format, name
}

func convert(ctx *abi.Context, code byte, h abi.Handle, target any, name string, pos int) bool {
	bad := func() {
		panic(errors.Violation("ParseArgs", 0, "code %q cannot store into %T", code, target))
	}
	switch code {
	case 'i':
		p, ok := target.(*int)
		if !ok {
			bad()
		}
		v := ctx.LongAsLong(ctx, h)
		if v == -1 && ctx.ErrOccurred(ctx) != 0 {
			return false
		}
		*p = int(v)
	case 'l':
		p, ok := target.(*int64)
		if !ok {
			bad()
		}
		v := ctx.LongAsLong(ctx, h)
		if v == -1 && ctx.ErrOccurred(ctx) != 0 {
			return false
		}
		*p = v
	case 'd':
		p, ok := target.(*float64)
		if !ok {
			bad()
		}
		v := ctx.FloatAsDouble(ctx, h)
		if v == -1.0 && ctx.ErrOccurred(ctx) != 0 {
			return false
		}
		*p = v
	case 'p':
		p, ok := target.(*bool)
		if !ok {
			bad()
		}
		v := ctx.IsTrue(ctx, h)
		if v < 0 {
			return false
		}
		*p = v == 1
	case 's':
		p, ok := target.(*string)
		if !ok {
			bad()
		}
		if ctx.UnicodeCheck(ctx, h) == 0 {
			return fail(ctx, ctx.TypeError, "%s() argument %d must be str", name, pos)
		}
		s, ok := String(ctx, h)
		if !ok {
			return false
		}
		*p = s
	case 'O':
		p, ok := target.(*abi.Handle)
		if !ok {
			bad()
		}
		*p = h
	default:
		panic(errors.Violation("ParseArgs", 0, "unknown format code %q", code))
	}
	return true
}

// String returns the UTF-8 contents of a str handle. It returns false with
// an error pending when h is not a str.
func String(ctx *abi.Context, h abi.Handle) (string, bool) {
	b := ctx.UnicodeAsUTF8String(ctx, h)
	if b.IsNull() {
		return "", false
	}
	defer ctx.Close(ctx, b)
	return string(ctx.BytesAsString(ctx, b)), true
}

func fail(ctx *abi.Context, typ abi.Handle, format string, args ...any) bool {
	ctx.ErrSetString(ctx, typ, fmt.Sprintf(format, args...))
	return false
}
