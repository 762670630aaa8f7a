package object

import (
	"math"
	"math/big"
	"strings"
)

// Int is an arbitrary-precision integer.
type Int struct {
	Header
	V *big.Int
}

// Type implements Object.
func (*Int) Type() *Type { return IntType }

// NewInt returns a new int object.
func NewInt(v int64) *Int {
	return &Int{fresh(), big.NewInt(v)}
}

// NewIntFromUint returns a new int object for an unsigned value.
func NewIntFromUint(v uint64) *Int {
	return &Int{fresh(), new(big.Int).SetUint64(v)}
}

// NewIntFromBig returns a new int object. v is copied.
func NewIntFromBig(v *big.Int) *Int {
	return &Int{fresh(), new(big.Int).Set(v)}
}

func newIntOwned(v *big.Int) *Int {
	return &Int{fresh(), v}
}

var bigOne = big.NewInt(1)

// asBig extracts the integer value of int and bool objects.
func asBig(o Object) (*big.Int, bool) {
	switch v := o.(type) {
	case *Int:
		return v.V, true
	case *Bool:
		if v.V {
			return bigOne, true
		}
		return new(big.Int), true
	}
	return nil, false
}

// IsInt reports whether o is an int or a bool.
func IsInt(o Object) bool {
	_, ok := asBig(o)
	return ok
}

// AsInt64 converts an int to int64.
func AsInt64(o Object) (int64, error) {
	v, ok := asBig(o)
	if !ok {
		return -1, typeError("an integer is required (got type %s)", o.Type().Name)
	}
	if !v.IsInt64() {
		return -1, overflowError("int too large to convert to C long")
	}
	return v.Int64(), nil
}

// AsUint64 converts a non-negative int to uint64.
func AsUint64(o Object) (uint64, error) {
	v, ok := asBig(o)
	if !ok {
		return math.MaxUint64, typeError("an integer is required (got type %s)", o.Type().Name)
	}
	if v.Sign() < 0 {
		return math.MaxUint64, overflowError("can't convert negative int to unsigned")
	}
	if !v.IsUint64() {
		return math.MaxUint64, overflowError("int too large to convert to C unsigned long")
	}
	return v.Uint64(), nil
}

// bigToFloat converts exactly-then-rounded, failing on overflow.
func bigToFloat(v *big.Int) (float64, error) {
	f, _ := new(big.Float).SetInt(v).Float64()
	if math.IsInf(f, 0) {
		return -1, overflowError("int too large to convert to float")
	}
	return f, nil
}

// floorDivMod computes Python floor division and modulo.
func floorDivMod(a, b *big.Int) (*big.Int, *big.Int) {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, bigOne)
		r.Add(r, b)
	}
	return q, r
}

const maxShift = 1 << 26

func intBinary(op string, a, b *big.Int) (Object, error) {
	switch op {
	case "+":
		return newIntOwned(new(big.Int).Add(a, b)), nil
	case "-":
		return newIntOwned(new(big.Int).Sub(a, b)), nil
	case "*":
		return newIntOwned(new(big.Int).Mul(a, b)), nil
	case "//", "%", "divmod":
		if b.Sign() == 0 {
			return nil, zeroDivision("integer division or modulo by zero")
		}
		q, r := floorDivMod(a, b)
		switch op {
		case "//":
			return newIntOwned(q), nil
		case "%":
			return newIntOwned(r), nil
		}
		return TupleFromOwned([]Object{newIntOwned(q), newIntOwned(r)}), nil
	case "/":
		if b.Sign() == 0 {
			return nil, zeroDivision("division by zero")
		}
		f, _ := new(big.Rat).SetFrac(a, b).Float64()
		if math.IsInf(f, 0) {
			return nil, overflowError("integer division result too large for a float")
		}
		return NewFloat(f), nil
	case "<<", ">>":
		if b.Sign() < 0 {
			return nil, valueError("negative shift count")
		}
		if op == ">>" {
			if !b.IsInt64() || b.Int64() > int64(a.BitLen()) {
				if a.Sign() < 0 {
					return NewInt(-1), nil
				}
				return NewInt(0), nil
			}
			// Rsh on big.Int rounds toward negative infinity like Python.
			return newIntOwned(new(big.Int).Rsh(a, uint(b.Int64()))), nil
		}
		if a.Sign() == 0 {
			return NewInt(0), nil
		}
		if !b.IsInt64() || b.Int64() > maxShift {
			return nil, overflowError("too many digits in integer")
		}
		return newIntOwned(new(big.Int).Lsh(a, uint(b.Int64()))), nil
	case "&":
		return newIntOwned(new(big.Int).And(a, b)), nil
	case "|":
		return newIntOwned(new(big.Int).Or(a, b)), nil
	case "^":
		return newIntOwned(new(big.Int).Xor(a, b)), nil
	}
	return NotImplemented, nil
}

func intPow(a, b *big.Int, mod *big.Int) (Object, error) {
	if mod != nil {
		if mod.Sign() == 0 {
			return nil, valueError("pow() 3rd argument cannot be 0")
		}
		m := new(big.Int).Abs(mod)
		base := new(big.Int).Mod(a, m)
		exp := b
		if b.Sign() < 0 {
			inv := new(big.Int).ModInverse(base, m)
			if inv == nil {
				return nil, valueError("base is not invertible for the given modulus")
			}
			base = inv
			exp = new(big.Int).Neg(b)
		}
		r := new(big.Int).Exp(base, exp, m)
		if mod.Sign() < 0 && r.Sign() != 0 {
			r.Add(r, mod)
		}
		return newIntOwned(r), nil
	}
	if b.Sign() < 0 {
		fa, err := bigToFloat(a)
		if err != nil {
			return nil, err
		}
		fb, err := bigToFloat(b)
		if err != nil {
			return nil, err
		}
		return floatPow(fa, fb)
	}
	if a.CmpAbs(bigOne) > 0 && (!b.IsInt64() || int64(a.BitLen())*b.Int64() > maxShift*8) {
		return nil, Errorf(MemoryErrorType, "")
	}
	return newIntOwned(new(big.Int).Exp(a, b, nil)), nil
}

// parseInt implements int(str) for base 10.
func parseInt(s string) (*big.Int, error) {
	t := strings.TrimSpace(s)
	body := t
	if body != "" && (body[0] == '+' || body[0] == '-') {
		body = body[1:]
	}
	ok := body != "" && body[0] != '_' && body[len(body)-1] != '_' && !strings.Contains(body, "__")
	if ok {
		for _, r := range body {
			if (r < '0' || r > '9') && r != '_' {
				ok = false
				break
			}
		}
	}
	if ok {
		if v, set := new(big.Int).SetString(strings.ReplaceAll(t, "_", ""), 10); set {
			return v, nil
		}
	}
	return nil, valueError("invalid literal for int() with base 10: %s", quoteStr(s, false))
}
