package hostfuncs

import (
	"context"

	"github.com/reglet-dev/reglet-abi/abi"
	abierrors "github.com/reglet-dev/reglet-abi/domain/errors"
)

// Slot shapes. Ssize and HashT are int64, so one shape covers every slot
// returning a signed integer.
type (
	unaryFn     = func(*abi.Context, abi.Handle) abi.Handle
	binaryFn    = func(*abi.Context, abi.Handle, abi.Handle) abi.Handle
	ternaryFn   = func(*abi.Context, abi.Handle, abi.Handle, abi.Handle) abi.Handle
	queryFn     = func(*abi.Context, abi.Handle) int
	query2Fn    = func(*abi.Context, abi.Handle, abi.Handle) int
	toIntFn     = func(*abi.Context, abi.Handle) int64
	toUintFn    = func(*abi.Context, abi.Handle) uint64
	fromIntFn   = func(*abi.Context, int64) abi.Handle
	fromUintFn  = func(*abi.Context, uint64) abi.Handle
	fromTextFn  = func(*abi.Context, string) abi.Handle
	attrGetFn   = func(*abi.Context, abi.Handle, string) abi.Handle
	attrHasFn   = func(*abi.Context, abi.Handle, string) int
	attrSetFn   = func(*abi.Context, abi.Handle, string, abi.Handle) int
	setFn       = func(*abi.Context, abi.Handle, abi.Handle, abi.Handle) int
	releaseFn   = func(*abi.Context, abi.Handle)
	bufferFn    = func(*abi.Context, abi.Handle) []byte
	arrayCallFn = func(*abi.Context, abi.Handle, []abi.Handle, abi.Handle) abi.Handle
)

var (
	sigNone   = []ValueType{}
	sigI64    = []ValueType{I64}
	sigI64x2  = []ValueType{I64, I64}
	sigI64x3  = []ValueType{I64, I64, I64}
	sigF64    = []ValueType{F64}
	sigResI64 = []ValueType{I64}
)

// slot builds a HostFunc for the context field name. The handler refuses to
// run against a context older than the field.
func slot(name string, params, results []ValueType, h SlotHandler) HostFunc {
	info, ok := abi.Lookup(name)
	if !ok {
		return HostFunc{Name: name, Params: params, Results: results, Handler: h}
	}
	guarded := func(ctx context.Context, call *Call) error {
		if call.ABI.Version < info.Since {
			return &abierrors.VersionError{Extension: call.Function, Slot: name, Required: info.Since, Available: call.ABI.Version}
		}
		return h(ctx, call)
	}
	return HostFunc{Name: name, Params: params, Results: results, Handler: guarded, Since: info.Since}
}

func constant(name string, pick func(*abi.Context) abi.Handle) HostFunc {
	return slot(name, sigNone, sigResI64, func(_ context.Context, c *Call) error {
		c.ReturnHandle(pick(c.ABI))
		return nil
	})
}

func unary(name string, pick func(*abi.Context) unaryFn) HostFunc {
	return slot(name, sigI64, sigResI64, func(_ context.Context, c *Call) error {
		c.ReturnHandle(pick(c.ABI)(c.ABI, c.Handle(0)))
		return nil
	})
}

func binarySlot(name string, pick func(*abi.Context) binaryFn) HostFunc {
	return slot(name, sigI64x2, sigResI64, func(_ context.Context, c *Call) error {
		c.ReturnHandle(pick(c.ABI)(c.ABI, c.Handle(0), c.Handle(1)))
		return nil
	})
}

func ternary(name string, pick func(*abi.Context) ternaryFn) HostFunc {
	return slot(name, sigI64x3, sigResI64, func(_ context.Context, c *Call) error {
		c.ReturnHandle(pick(c.ABI)(c.ABI, c.Handle(0), c.Handle(1), c.Handle(2)))
		return nil
	})
}

func query(name string, pick func(*abi.Context) queryFn) HostFunc {
	return slot(name, sigI64, sigResI64, func(_ context.Context, c *Call) error {
		c.ReturnInt(int64(pick(c.ABI)(c.ABI, c.Handle(0))))
		return nil
	})
}

func query2(name string, pick func(*abi.Context) query2Fn) HostFunc {
	return slot(name, sigI64x2, sigResI64, func(_ context.Context, c *Call) error {
		c.ReturnInt(int64(pick(c.ABI)(c.ABI, c.Handle(0), c.Handle(1))))
		return nil
	})
}

func toInt(name string, pick func(*abi.Context) toIntFn) HostFunc {
	return slot(name, sigI64, sigResI64, func(_ context.Context, c *Call) error {
		c.ReturnInt(pick(c.ABI)(c.ABI, c.Handle(0)))
		return nil
	})
}

func toUint(name string, pick func(*abi.Context) toUintFn) HostFunc {
	return slot(name, sigI64, sigResI64, func(_ context.Context, c *Call) error {
		c.Stack[0] = pick(c.ABI)(c.ABI, c.Handle(0))
		return nil
	})
}

func fromInt(name string, pick func(*abi.Context) fromIntFn) HostFunc {
	return slot(name, sigI64, sigResI64, func(_ context.Context, c *Call) error {
		c.ReturnHandle(pick(c.ABI)(c.ABI, c.Int(0)))
		return nil
	})
}

func fromUint(name string, pick func(*abi.Context) fromUintFn) HostFunc {
	return slot(name, sigI64, sigResI64, func(_ context.Context, c *Call) error {
		c.ReturnHandle(pick(c.ABI)(c.ABI, c.Stack[0]))
		return nil
	})
}

func fromText(name string, pick func(*abi.Context) fromTextFn) HostFunc {
	return slot(name, sigI64, sigResI64, func(_ context.Context, c *Call) error {
		s, err := c.Text(0)
		if err != nil {
			return err
		}
		c.ReturnHandle(pick(c.ABI)(c.ABI, s))
		return nil
	})
}

func attrGet(name string, pick func(*abi.Context) attrGetFn) HostFunc {
	return slot(name, sigI64x2, sigResI64, func(_ context.Context, c *Call) error {
		key, err := c.Text(1)
		if err != nil {
			return err
		}
		c.ReturnHandle(pick(c.ABI)(c.ABI, c.Handle(0), key))
		return nil
	})
}

func attrHas(name string, pick func(*abi.Context) attrHasFn) HostFunc {
	return slot(name, sigI64x2, sigResI64, func(_ context.Context, c *Call) error {
		key, err := c.Text(1)
		if err != nil {
			return err
		}
		c.ReturnInt(int64(pick(c.ABI)(c.ABI, c.Handle(0), key)))
		return nil
	})
}

func attrSet(name string, pick func(*abi.Context) attrSetFn) HostFunc {
	return slot(name, sigI64x3, sigResI64, func(_ context.Context, c *Call) error {
		key, err := c.Text(1)
		if err != nil {
			return err
		}
		c.ReturnInt(int64(pick(c.ABI)(c.ABI, c.Handle(0), key, c.Handle(2))))
		return nil
	})
}

func set(name string, pick func(*abi.Context) setFn) HostFunc {
	return slot(name, sigI64x3, sigResI64, func(_ context.Context, c *Call) error {
		c.ReturnInt(int64(pick(c.ABI)(c.ABI, c.Handle(0), c.Handle(1), c.Handle(2))))
		return nil
	})
}

func release(name string, pick func(*abi.Context) releaseFn) HostFunc {
	return slot(name, sigI64, sigNone, func(_ context.Context, c *Call) error {
		pick(c.ABI)(c.ABI, c.Handle(0))
		return nil
	})
}

func buffer(name string, pick func(*abi.Context) bufferFn) HostFunc {
	return slot(name, sigI64, sigResI64, func(ctx context.Context, c *Call) error {
		return c.ReturnBytes(ctx, pick(c.ABI)(c.ABI, c.Handle(0)))
	})
}

// arrayCall covers slots taking a callable, a handle array and a keyword
// dict: the array travels as a packed pointer/count.
func arrayCall(name string, pick func(*abi.Context) arrayCallFn) HostFunc {
	return slot(name, sigI64x3, sigResI64, func(_ context.Context, c *Call) error {
		args, err := c.Handles(1)
		if err != nil {
			return err
		}
		c.ReturnHandle(pick(c.ABI)(c.ABI, c.Handle(0), args, c.Handle(2)))
		return nil
	})
}
