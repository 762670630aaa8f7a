package object

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// asFloat widens int, bool and float objects to float64.
func asFloat(o Object) (float64, bool, error) {
	switch v := o.(type) {
	case *Float:
		return v.V, true, nil
	case *Int, *Bool:
		b, _ := asBig(o)
		f, err := bigToFloat(b)
		return f, true, err
	}
	return 0, false, nil
}

// AsFloat64 converts a number to float64.
func AsFloat64(o Object) (float64, error) {
	f, ok, err := asFloat(o)
	if err != nil {
		return -1, err
	}
	if !ok {
		return -1, typeError("must be real number, not %s", o.Type().Name)
	}
	return f, nil
}

// floatRepr formats f the way repr(float) does: shortest round-trip digits,
// scientific notation outside [1e-4, 1e16).
func floatRepr(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	sign := ""
	if math.Signbit(f) {
		sign = "-"
		f = -f
	}
	es := strconv.FormatFloat(f, 'e', -1, 64)
	mant, expPart, _ := strings.Cut(es, "e")
	exp, _ := strconv.Atoi(expPart)
	digits := strings.Replace(mant, ".", "", 1)

	if exp < -4 || exp >= 16 {
		m := digits[:1]
		if len(digits) > 1 {
			m += "." + digits[1:]
		}
		return sign + m + fmt.Sprintf("e%+03d", exp)
	}
	if exp < 0 {
		return sign + "0." + strings.Repeat("0", -exp-1) + digits
	}
	if len(digits) <= exp+1 {
		return sign + digits + strings.Repeat("0", exp+1-len(digits)) + ".0"
	}
	return sign + digits[:exp+1] + "." + digits[exp+1:]
}

// parseFloat implements float(str).
func parseFloat(s string) (float64, error) {
	t := strings.TrimSpace(s)
	lower := strings.ToLower(strings.TrimLeft(t, "+-"))
	switch lower {
	case "inf", "infinity", "nan":
		neg := strings.HasPrefix(t, "-")
		if lower == "nan" {
			return math.NaN(), nil
		}
		if neg {
			return math.Inf(-1), nil
		}
		return math.Inf(1), nil
	}
	valid := t != "" && !strings.Contains(t, "__") && !strings.HasPrefix(t, "_") && !strings.HasSuffix(t, "_")
	if valid {
		clean := strings.ReplaceAll(t, "_", "")
		if f, err := strconv.ParseFloat(clean, 64); err == nil || isRangeErr(err) {
			if !strings.ContainsAny(clean, "xXpP") {
				return f, nil
			}
		}
	}
	return -1, valueError("could not convert string to float: %s", quoteStr(s, false))
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// floatDivmod follows the runtime's float divmod algorithm so that the
// remainder takes the divisor's sign.
func floatDivmod(vx, wx float64) (float64, float64) {
	mod := math.Mod(vx, wx)
	div := (vx - mod) / wx
	if mod != 0 {
		if (wx < 0) != (mod < 0) {
			mod += wx
			div -= 1.0
		}
	} else {
		mod = math.Copysign(0, wx)
	}
	var floordiv float64
	if div != 0 {
		floordiv = math.Floor(div)
		if div-floordiv > 0.5 {
			floordiv += 1.0
		}
	} else {
		floordiv = math.Copysign(0, vx/wx)
	}
	return floordiv, mod
}

func floatPow(a, b float64) (Object, error) {
	if a == 0 && b < 0 {
		return nil, zeroDivision("0.0 cannot be raised to a negative power")
	}
	if a < 0 && b != math.Trunc(b) && !math.IsInf(b, 0) {
		return nil, valueError("negative number cannot be raised to a fractional power")
	}
	r := math.Pow(a, b)
	if math.IsInf(r, 0) && !math.IsInf(a, 0) && !math.IsInf(b, 0) {
		return nil, overflowError("(34, 'Numerical result out of range')")
	}
	return NewFloat(r), nil
}

func floatBinary(op string, a, b float64) (Object, error) {
	switch op {
	case "+":
		return NewFloat(a + b), nil
	case "-":
		return NewFloat(a - b), nil
	case "*":
		return NewFloat(a * b), nil
	case "/":
		if b == 0 {
			return nil, zeroDivision("float division by zero")
		}
		return NewFloat(a / b), nil
	case "//":
		if b == 0 {
			return nil, zeroDivision("float floor division by zero")
		}
		q, _ := floatDivmod(a, b)
		return NewFloat(q), nil
	case "%":
		if b == 0 {
			return nil, zeroDivision("float modulo by zero")
		}
		_, r := floatDivmod(a, b)
		return NewFloat(r), nil
	case "divmod":
		if b == 0 {
			return nil, zeroDivision("float divmod()")
		}
		q, r := floatDivmod(a, b)
		return TupleFromOwned([]Object{NewFloat(q), NewFloat(r)}), nil
	}
	return NotImplemented, nil
}

// compareIntFloat orders an int against a float exactly. NaN is unordered.
func compareIntFloat(i *big.Int, f float64) (int, bool) {
	if math.IsNaN(f) {
		return 0, false
	}
	if math.IsInf(f, 1) {
		return -1, true
	}
	if math.IsInf(f, -1) {
		return 1, true
	}
	bf := new(big.Float).SetInt(i)
	return bf.Cmp(big.NewFloat(f)), true
}

const (
	hashBits    = 61
	hashModulus = (1 << hashBits) - 1
	hashInf     = 314159
)

func hashBig(v *big.Int) int64 {
	m := new(big.Int).Mod(new(big.Int).Abs(v), big.NewInt(hashModulus)).Int64()
	if v.Sign() < 0 {
		m = -m
	}
	if m == -1 {
		m = -2
	}
	return m
}

func hashFloat(v float64) int64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return hashInf
	case math.IsInf(v, -1):
		return -hashInf
	}

	m, e := math.Frexp(v)
	sign := int64(1)
	if m < 0 {
		sign = -1
		m = -m
	}

	var x uint64
	for m != 0 {
		x = ((x << 28) & hashModulus) | x>>(hashBits-28)
		m *= 268435456.0
		e -= 28
		y := uint64(m)
		m -= float64(y)
		x += y
		if x >= hashModulus {
			x -= hashModulus
		}
	}

	if e >= 0 {
		e %= hashBits
	} else {
		e = hashBits - 1 - ((-1 - e) % hashBits)
	}
	x = ((x << uint(e)) & hashModulus) | x>>uint(hashBits-e)

	h := int64(x) * sign
	if h == -1 {
		h = -2
	}
	return h
}
