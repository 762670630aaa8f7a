package object

import (
	"math"
	"math/big"
)

// Binary operator names accepted by Binary and InPlace.
const (
	OpAdd      = "+"
	OpSub      = "-"
	OpMul      = "*"
	OpMatMul   = "@"
	OpFloorDiv = "//"
	OpTrueDiv  = "/"
	OpMod      = "%"
	OpDivmod   = "divmod"
	OpPow      = "**"
	OpLshift   = "<<"
	OpRshift   = ">>"
	OpAnd      = "&"
	OpXor      = "^"
	OpOr       = "|"
)

func opLabel(op string) string {
	switch op {
	case OpDivmod:
		return "divmod()"
	case OpPow:
		return "** or pow()"
	}
	return op
}

func extensionSlot(op string) func(*Slots) BinarySlot {
	switch op {
	case OpAdd:
		return func(s *Slots) BinarySlot { return s.Add }
	case OpSub:
		return func(s *Slots) BinarySlot { return s.Subtract }
	case OpMul:
		return func(s *Slots) BinarySlot { return s.Multiply }
	}
	return nil
}

// Binary applies a binary operator.
func Binary(op string, a, b Object) (Object, error) {
	r, err := binary(op, a, b)
	if err != nil {
		return nil, err
	}
	if r == NotImplemented {
		return nil, typeError("unsupported operand type(s) for %s: '%s' and '%s'", opLabel(op), a.Type().Name, b.Type().Name)
	}
	return r, nil
}

func binary(op string, a, b Object) (Object, error) {
	if pick := extensionSlot(op); pick != nil {
		for i, t := range []*Type{a.Type(), b.Type()} {
			if t.builtin || (i == 1 && t == a.Type()) {
				continue
			}
			if slot := t.binarySlot(pick); slot != nil {
				r, err := slot(a, b)
				if err != nil || r != NotImplemented {
					return r, err
				}
			}
		}
	}

	if op == OpPow {
		return power(a, b, None)
	}

	ai, aInt := asBig(a)
	bi, bInt := asBig(b)
	if aInt && bInt {
		if _, ok := a.(*Bool); ok {
			if bb, ok := b.(*Bool); ok {
				switch op {
				case OpAnd:
					return NewBool(a.(*Bool).V && bb.V), nil
				case OpOr:
					return NewBool(a.(*Bool).V || bb.V), nil
				case OpXor:
					return NewBool(a.(*Bool).V != bb.V), nil
				}
			}
		}
		return intBinary(op, ai, bi)
	}

	af, aNum, err := asFloat(a)
	if err != nil {
		return nil, err
	}
	bf, bNum, err := asFloat(b)
	if err != nil {
		return nil, err
	}
	if aNum && bNum {
		return floatBinary(op, af, bf)
	}

	switch op {
	case OpAdd:
		return concat(a, b), nil
	case OpMul:
		if bInt {
			return repeat(a, bi)
		}
		if aInt {
			return repeat(b, ai)
		}
	}
	return NotImplemented, nil
}

func concat(a, b Object) Object {
	switch av := a.(type) {
	case *Str:
		if bv, ok := b.(*Str); ok {
			return NewStr(av.V + bv.V)
		}
	case *Bytes:
		if bv, ok := b.(*Bytes); ok {
			return NewBytes(append(append([]byte{}, av.V...), bv.V...))
		}
	case *List:
		if bv, ok := b.(*List); ok {
			return NewList(append(append([]Object{}, av.Items...), bv.Items...)...)
		}
	case *Tuple:
		if bv, ok := b.(*Tuple); ok {
			return NewTuple(append(append([]Object{}, av.Items...), bv.Items...)...)
		}
	}
	return NotImplemented
}

const maxRepeat = 1 << 28

func repeat(seq Object, count *big.Int) (Object, error) {
	n := 0
	if count.Sign() > 0 {
		if !count.IsInt64() || count.Int64() > maxRepeat {
			return nil, Errorf(MemoryErrorType, "")
		}
		n = int(count.Int64())
	}
	var length int
	switch v := seq.(type) {
	case *Str:
		length = len(v.V)
	case *Bytes:
		length = len(v.V)
	case *List:
		length = len(v.Items)
	case *Tuple:
		length = len(v.Items)
	default:
		return NotImplemented, nil
	}
	if length*n > maxRepeat {
		return nil, Errorf(MemoryErrorType, "")
	}

	switch v := seq.(type) {
	case *Str:
		out := make([]byte, 0, len(v.V)*n)
		for i := 0; i < n; i++ {
			out = append(out, v.V...)
		}
		return NewStr(string(out)), nil
	case *Bytes:
		out := make([]byte, 0, len(v.V)*n)
		for i := 0; i < n; i++ {
			out = append(out, v.V...)
		}
		return &Bytes{fresh(), out}, nil
	case *List:
		return NewList(repeatItems(v.Items, n)...), nil
	default:
		return NewTuple(repeatItems(seq.(*Tuple).Items, n)...), nil
	}
}

func repeatItems(items []Object, n int) []Object {
	out := make([]Object, 0, len(items)*n)
	for i := 0; i < n; i++ {
		out = append(out, items...)
	}
	return out
}

// Power implements pow(a, b, mod). mod is None for the two-argument form.
func Power(a, b, mod Object) (Object, error) {
	r, err := power(a, b, mod)
	if err != nil {
		return nil, err
	}
	if r == NotImplemented {
		return nil, typeError("unsupported operand type(s) for ** or pow(): '%s' and '%s'", a.Type().Name, b.Type().Name)
	}
	return r, nil
}

func power(a, b, mod Object) (Object, error) {
	ai, aInt := asBig(a)
	bi, bInt := asBig(b)
	if mod != None && mod != nil {
		mi, mInt := asBig(mod)
		if !aInt || !bInt || !mInt {
			return nil, typeError("pow() 3rd argument not allowed unless all arguments are integers")
		}
		return intPow(ai, bi, mi)
	}
	if aInt && bInt {
		return intPow(ai, bi, nil)
	}
	af, aNum, err := asFloat(a)
	if err != nil {
		return nil, err
	}
	bf, bNum, err := asFloat(b)
	if err != nil {
		return nil, err
	}
	if aNum && bNum {
		return floatPow(af, bf)
	}
	return NotImplemented, nil
}

// InPlace applies an augmented assignment. Lists are extended or repeated in
// place and returned as the same object; everything else falls back to
// Binary.
func InPlace(op string, a, b Object) (Object, error) {
	if l, ok := a.(*List); ok {
		switch op {
		case OpAdd:
			items, err := Iterate(b)
			if err != nil {
				return nil, err
			}
			l.Items = append(l.Items, items...)
			return Incref(l), nil
		case OpMul:
			if n, ok := asBig(b); ok {
				if n.Sign() <= 0 {
					old := l.Items
					l.Items = nil
					decrefAll(old)
					return Incref(l), nil
				}
				if !n.IsInt64() || int64(len(l.Items))*n.Int64() > maxRepeat {
					return nil, Errorf(MemoryErrorType, "")
				}
				orig := l.Items
				for i := int64(1); i < n.Int64(); i++ {
					for _, it := range orig {
						l.Items = append(l.Items, Incref(it))
					}
				}
				return Incref(l), nil
			}
		}
	}
	r, err := binary(op, a, b)
	if err != nil {
		return nil, err
	}
	if r == NotImplemented {
		return nil, typeError("unsupported operand type(s) for %s=: '%s' and '%s'", opLabel(op), a.Type().Name, b.Type().Name)
	}
	return r, nil
}

// Negative returns -o.
func Negative(o Object) (Object, error) {
	if slot := o.Type().unarySlot(func(s *Slots) UnarySlot { return s.Negative }); slot != nil && !o.Type().builtin {
		return slot(o)
	}
	if v, ok := asBig(o); ok {
		return newIntOwned(new(big.Int).Neg(v)), nil
	}
	if f, ok := o.(*Float); ok {
		return NewFloat(-f.V), nil
	}
	return nil, typeError("bad operand type for unary -: '%s'", o.Type().Name)
}

// Positive returns +o.
func Positive(o Object) (Object, error) {
	switch v := o.(type) {
	case *Int, *Float:
		return Incref(v), nil
	case *Bool:
		b, _ := asBig(v)
		return NewIntFromBig(b), nil
	}
	return nil, typeError("bad operand type for unary +: '%s'", o.Type().Name)
}

// Absolute returns abs(o).
func Absolute(o Object) (Object, error) {
	if v, ok := asBig(o); ok {
		return newIntOwned(new(big.Int).Abs(v)), nil
	}
	if f, ok := o.(*Float); ok {
		return NewFloat(math.Abs(f.V)), nil
	}
	return nil, typeError("bad operand type for abs(): '%s'", o.Type().Name)
}

// Invert returns ~o.
func Invert(o Object) (Object, error) {
	if v, ok := asBig(o); ok {
		return newIntOwned(new(big.Int).Not(v)), nil
	}
	return nil, typeError("bad operand type for unary ~: '%s'", o.Type().Name)
}

// Index returns o as an exact int.
func Index(o Object) (Object, error) {
	switch v := o.(type) {
	case *Int:
		return Incref(v), nil
	case *Bool:
		b, _ := asBig(v)
		return NewIntFromBig(b), nil
	}
	return nil, typeError("'%s' object cannot be interpreted as an integer", o.Type().Name)
}

// Long implements int(o).
func Long(o Object) (Object, error) {
	switch v := o.(type) {
	case *Int, *Bool:
		return Index(v)
	case *Float:
		switch {
		case math.IsInf(v.V, 0):
			return nil, overflowError("cannot convert float infinity to integer")
		case math.IsNaN(v.V):
			return nil, valueError("cannot convert float NaN to integer")
		}
		b, _ := big.NewFloat(math.Trunc(v.V)).Int(nil)
		return newIntOwned(b), nil
	case *Str:
		b, err := parseInt(v.V)
		if err != nil {
			return nil, err
		}
		return newIntOwned(b), nil
	case *Bytes:
		b, err := parseInt(string(v.V))
		if err != nil {
			return nil, err
		}
		return newIntOwned(b), nil
	}
	return nil, typeError("int() argument must be a string, a bytes-like object or a real number, not '%s'", o.Type().Name)
}

// Float implements float(o).
func ToFloat(o Object) (Object, error) {
	switch v := o.(type) {
	case *Float:
		return Incref(v), nil
	case *Int, *Bool:
		f, err := AsFloat64(v)
		if err != nil {
			return nil, err
		}
		return NewFloat(f), nil
	case *Str:
		f, err := parseFloat(v.V)
		if err != nil {
			return nil, err
		}
		return NewFloat(f), nil
	case *Bytes:
		f, err := parseFloat(string(v.V))
		if err != nil {
			return nil, err
		}
		return NewFloat(f), nil
	}
	return nil, typeError("float() argument must be a string or a real number, not '%s'", o.Type().Name)
}

// IsNumber reports whether o supports the numeric protocol.
func IsNumber(o Object) bool {
	switch o.(type) {
	case *Int, *Bool, *Float:
		return true
	}
	t := o.Type()
	return !t.builtin && (t.binarySlot(func(s *Slots) BinarySlot { return s.Add }) != nil ||
		t.unarySlot(func(s *Slots) UnarySlot { return s.Negative }) != nil)
}
