package host

import (
	"math"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/object"
)

func longFromLong(ctx *abi.Context, v int64) abi.Handle {
	return stateOf(ctx, "LongFromLong").wrap(object.NewInt(v), "LongFromLong")
}

func longFromUnsignedLong(ctx *abi.Context, v uint64) abi.Handle {
	return stateOf(ctx, "LongFromUnsignedLong").wrap(object.NewIntFromUint(v), "LongFromUnsignedLong")
}

func longFromSsizeT(ctx *abi.Context, v abi.Ssize) abi.Handle {
	return stateOf(ctx, "LongFromSsizeT").wrap(object.NewInt(v), "LongFromSsizeT")
}

// longAsLong returns -1 with an error pending on failure.
func longAsLong(ctx *abi.Context, h abi.Handle) int64 {
	s := stateOf(ctx, "LongAsLong")
	v, err := object.AsInt64(s.get(h, "LongAsLong"))
	if err != nil {
		s.raise(err)
		return -1
	}
	return v
}

// longAsUnsignedLong returns ^uint64(0) with an error pending on failure.
func longAsUnsignedLong(ctx *abi.Context, h abi.Handle) uint64 {
	s := stateOf(ctx, "LongAsUnsignedLong")
	v, err := object.AsUint64(s.get(h, "LongAsUnsignedLong"))
	if err != nil {
		s.raise(err)
		return math.MaxUint64
	}
	return v
}

func longAsSsizeT(ctx *abi.Context, h abi.Handle) abi.Ssize {
	return longAsLong(ctx, h)
}

func floatFromDouble(ctx *abi.Context, v float64) abi.Handle {
	return stateOf(ctx, "FloatFromDouble").wrap(object.NewFloat(v), "FloatFromDouble")
}

// floatAsDouble returns -1.0 with an error pending on failure.
func floatAsDouble(ctx *abi.Context, h abi.Handle) float64 {
	s := stateOf(ctx, "FloatAsDouble")
	v, err := object.AsFloat64(s.get(h, "FloatAsDouble"))
	if err != nil {
		s.raise(err)
		return -1.0
	}
	return v
}

func numberCheck(ctx *abi.Context, h abi.Handle) int {
	s := stateOf(ctx, "NumberCheck")
	return boolInt(object.IsNumber(s.get(h, "NumberCheck")))
}

// binarySlot builds a two-operand slot over object.Binary.
func binarySlot(name, op string) func(ctx *abi.Context, a, b abi.Handle) abi.Handle {
	return func(ctx *abi.Context, a, b abi.Handle) abi.Handle {
		s := stateOf(ctx, name)
		r, err := object.Binary(op, s.get(a, name), s.get(b, name))
		return s.result(r, err, name)
	}
}

// inPlaceSlot builds an augmented assignment slot over object.InPlace.
func inPlaceSlot(name, op string) func(ctx *abi.Context, a, b abi.Handle) abi.Handle {
	return func(ctx *abi.Context, a, b abi.Handle) abi.Handle {
		s := stateOf(ctx, name)
		r, err := object.InPlace(op, s.get(a, name), s.get(b, name))
		return s.result(r, err, name)
	}
}

// unarySlot builds a one-operand slot.
func unarySlot(name string, fn func(object.Object) (object.Object, error)) func(ctx *abi.Context, h abi.Handle) abi.Handle {
	return func(ctx *abi.Context, h abi.Handle) abi.Handle {
		s := stateOf(ctx, name)
		r, err := fn(s.get(h, name))
		return s.result(r, err, name)
	}
}

// modulus resolves the third argument of Power: Null and None both select the
// two-argument form.
func (s *state) modulus(mod abi.Handle, op string) object.Object {
	if mod == abi.Null {
		return object.None
	}
	return s.get(mod, op)
}

func power(ctx *abi.Context, a, b, mod abi.Handle) abi.Handle {
	s := stateOf(ctx, "Power")
	r, err := object.Power(s.get(a, "Power"), s.get(b, "Power"), s.modulus(mod, "Power"))
	return s.result(r, err, "Power")
}

func inPlacePower(ctx *abi.Context, a, b, mod abi.Handle) abi.Handle {
	s := stateOf(ctx, "InPlacePower")
	m := s.modulus(mod, "InPlacePower")
	if m != object.None {
		r, err := object.Power(s.get(a, "InPlacePower"), s.get(b, "InPlacePower"), m)
		return s.result(r, err, "InPlacePower")
	}
	r, err := object.InPlace(object.OpPow, s.get(a, "InPlacePower"), s.get(b, "InPlacePower"))
	return s.result(r, err, "InPlacePower")
}
