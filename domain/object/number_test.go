package object

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRepr(t *testing.T, o Object) string {
	t.Helper()
	r, err := Repr(o)
	require.NoError(t, err)
	defer Decref(r)
	return r.V
}

func requireExc(t *testing.T, err error, typ *Type, msg string) {
	t.Helper()
	require.Error(t, err)
	exc, ok := err.(*Exception)
	require.True(t, ok, "error %T is not an *Exception", err)
	assert.True(t, exc.Matches(typ), "got %s, want %s", exc.Type().Name, typ.Name)
	if msg != "" {
		assert.Equal(t, msg, exc.Message())
	}
}

func TestBinary_IntSemantics(t *testing.T) {
	tests := []struct {
		name string
		op   string
		a, b int64
		want string
	}{
		{"floordiv positive", OpFloorDiv, 7, 2, "3"},
		{"floordiv rounds toward negative infinity", OpFloorDiv, -7, 2, "-4"},
		{"floordiv negative divisor", OpFloorDiv, 7, -2, "-4"},
		{"mod takes divisor sign", OpMod, -7, 2, "1"},
		{"mod negative divisor", OpMod, 7, -2, "-1"},
		{"divmod", OpDivmod, -7, 2, "(-4, 1)"},
		{"truediv is exact then rounded", OpTrueDiv, 1, 3, "0.3333333333333333"},
		{"truediv integral", OpTrueDiv, 6, 3, "2.0"},
		{"lshift", OpLshift, 1, 70, "1180591620717411303424"},
		{"rshift negative", OpRshift, -9, 1, "-5"},
		{"and", OpAnd, 12, 10, "8"},
		{"or", OpOr, 12, 10, "14"},
		{"xor", OpXor, 12, 10, "6"},
		{"pow", OpPow, 2, 100, "1267650600228229401496703205376"},
		{"pow negative exponent", OpPow, 2, -1, "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := NewInt(tt.a), NewInt(tt.b)
			r, err := Binary(tt.op, a, b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mustRepr(t, r))
		})
	}
}

func TestBinary_DivisionByZero(t *testing.T) {
	tests := []struct {
		op   string
		a, b Object
		msg  string
	}{
		{OpFloorDiv, NewInt(1), NewInt(0), "integer division or modulo by zero"},
		{OpMod, NewInt(1), NewInt(0), "integer division or modulo by zero"},
		{OpTrueDiv, NewInt(1), NewInt(0), "division by zero"},
		{OpFloorDiv, NewFloat(1), NewFloat(0), "float floor division by zero"},
		{OpTrueDiv, NewFloat(1), NewInt(0), "float division by zero"},
		{OpMod, NewFloat(1), NewFloat(0), "float modulo by zero"},
	}

	for _, tt := range tests {
		t.Run(tt.op+" "+tt.msg, func(t *testing.T) {
			_, err := Binary(tt.op, tt.a, tt.b)
			requireExc(t, err, ZeroDivisionErrorType, tt.msg)
			assert.True(t, err.(*Exception).Matches(ArithmeticErrorType))
			assert.True(t, err.(*Exception).Matches(ExceptionType))
		})
	}
}

func TestBinary_FloatSemantics(t *testing.T) {
	tests := []struct {
		op   string
		a, b float64
		want string
	}{
		{OpFloorDiv, -7.5, 2, "-4.0"},
		{OpMod, -7.5, 2, "0.5"},
		{OpMod, 7.5, -2, "-0.5"},
		{OpMod, 6, -2, "-0.0"},
		{OpDivmod, 7, 2, "(3.0, 1.0)"},
		{OpAdd, 0.1, 0.2, "0.30000000000000004"},
	}
	for _, tt := range tests {
		r, err := Binary(tt.op, NewFloat(tt.a), NewFloat(tt.b))
		require.NoError(t, err)
		assert.Equal(t, tt.want, mustRepr(t, r), "%v %s %v", tt.a, tt.op, tt.b)
	}
}

func TestBinary_Mixed(t *testing.T) {
	r, err := Binary(OpAdd, NewInt(1), NewFloat(0.5))
	require.NoError(t, err)
	assert.Equal(t, "1.5", mustRepr(t, r))

	r, err = Binary(OpAdd, True, True)
	require.NoError(t, err)
	assert.Equal(t, "2", mustRepr(t, r))

	r, err = Binary(OpAnd, True, False)
	require.NoError(t, err)
	assert.Same(t, Object(False), r)
}

func TestBinary_Sequences(t *testing.T) {
	r, err := Binary(OpAdd, NewStr("ab"), NewStr("cd"))
	require.NoError(t, err)
	assert.Equal(t, "'abcd'", mustRepr(t, r))

	r, err = Binary(OpMul, NewList(NewInt(1)), NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, "[1, 1, 1]", mustRepr(t, r))

	r, err = Binary(OpMul, NewInt(2), NewTuple(NewStr("x")))
	require.NoError(t, err)
	assert.Equal(t, "('x', 'x')", mustRepr(t, r))

	r, err = Binary(OpMul, NewBytes([]byte("ab")), NewInt(-1))
	require.NoError(t, err)
	assert.Equal(t, "b''", mustRepr(t, r))
}

func TestBinary_Unsupported(t *testing.T) {
	_, err := Binary(OpAdd, NewInt(1), NewStr("x"))
	requireExc(t, err, TypeErrorType, "unsupported operand type(s) for +: 'int' and 'str'")

	_, err = Binary(OpMatMul, NewInt(1), NewInt(2))
	requireExc(t, err, TypeErrorType, "unsupported operand type(s) for @: 'int' and 'int'")

	_, err = Binary(OpLshift, NewInt(1), NewInt(-1))
	requireExc(t, err, ValueErrorType, "negative shift count")
}

func TestPower(t *testing.T) {
	r, err := Power(NewInt(3), NewInt(4), NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, "1", mustRepr(t, r))

	r, err = Power(NewInt(3), NewInt(1), NewInt(-5))
	require.NoError(t, err)
	assert.Equal(t, "-2", mustRepr(t, r))

	r, err = Power(NewInt(3), NewInt(-1), NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, "5", mustRepr(t, r))

	_, err = Power(NewInt(3), NewInt(2), NewInt(0))
	requireExc(t, err, ValueErrorType, "pow() 3rd argument cannot be 0")

	_, err = Power(NewFloat(3), NewInt(2), NewInt(5))
	requireExc(t, err, TypeErrorType, "pow() 3rd argument not allowed unless all arguments are integers")

	_, err = Power(NewFloat(0), NewFloat(-1), None)
	requireExc(t, err, ZeroDivisionErrorType, "0.0 cannot be raised to a negative power")
}

func TestInPlace_ListMutates(t *testing.T) {
	l := NewList(NewInt(1))
	r, err := InPlace(OpAdd, l, NewTuple(NewInt(2), NewInt(3)))
	require.NoError(t, err)
	assert.Same(t, Object(l), r)
	assert.Equal(t, "[1, 2, 3]", mustRepr(t, l))
	assert.Equal(t, int64(2), Refcount(l))

	r, err = InPlace(OpMul, l, NewInt(2))
	require.NoError(t, err)
	assert.Same(t, Object(l), r)
	assert.Equal(t, "[1, 2, 3, 1, 2, 3]", mustRepr(t, l))
}

func TestInPlace_IntReturnsNewObject(t *testing.T) {
	a := NewInt(1)
	r, err := InPlace(OpAdd, a, NewInt(1))
	require.NoError(t, err)
	assert.NotSame(t, Object(a), r)
	assert.Equal(t, "2", mustRepr(t, r))

	_, err = InPlace(OpSub, NewStr("a"), NewInt(1))
	requireExc(t, err, TypeErrorType, "unsupported operand type(s) for -=: 'str' and 'int'")
}

func TestUnary(t *testing.T) {
	r, err := Negative(NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, "-5", mustRepr(t, r))

	r, err = Invert(NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, "-6", mustRepr(t, r))

	r, err = Absolute(NewFloat(-2.5))
	require.NoError(t, err)
	assert.Equal(t, "2.5", mustRepr(t, r))

	r, err = Positive(True)
	require.NoError(t, err)
	assert.Equal(t, "1", mustRepr(t, r))

	_, err = Invert(NewFloat(1))
	requireExc(t, err, TypeErrorType, "bad operand type for unary ~: 'float'")
}

func TestConversions(t *testing.T) {
	r, err := Long(NewFloat(-3.9))
	require.NoError(t, err)
	assert.Equal(t, "-3", mustRepr(t, r))

	r, err = Long(NewStr("  1_000 "))
	require.NoError(t, err)
	assert.Equal(t, "1000", mustRepr(t, r))

	_, err = Long(NewStr("12a"))
	requireExc(t, err, ValueErrorType, "invalid literal for int() with base 10: '12a'")

	_, err = Long(NewFloat(math.Inf(1)))
	requireExc(t, err, OverflowErrorType, "cannot convert float infinity to integer")

	r, err = ToFloat(NewStr(" -1.5e3 "))
	require.NoError(t, err)
	assert.Equal(t, "-1500.0", mustRepr(t, r))

	r, err = ToFloat(NewStr("-inf"))
	require.NoError(t, err)
	assert.Equal(t, "-inf", mustRepr(t, r))

	_, err = ToFloat(NewStr("abc"))
	requireExc(t, err, ValueErrorType, "could not convert string to float: 'abc'")

	_, err = Index(NewFloat(1))
	requireExc(t, err, TypeErrorType, "'float' object cannot be interpreted as an integer")
}

func TestAsInt64AndUint64(t *testing.T) {
	v, err := AsInt64(NewInt(-42))
	require.NoError(t, err)
	assert.Equal(t, int64(-42), v)

	huge := NewIntFromBig(new(big.Int).Lsh(big.NewInt(1), 80))
	v, err = AsInt64(huge)
	assert.Equal(t, int64(-1), v)
	requireExc(t, err, OverflowErrorType, "")

	u, err := AsUint64(NewInt(-1))
	assert.Equal(t, uint64(math.MaxUint64), u)
	requireExc(t, err, OverflowErrorType, "can't convert negative int to unsigned")

	u, err = AsUint64(NewIntFromUint(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), u)

	_, err = AsInt64(NewStr("1"))
	requireExc(t, err, TypeErrorType, "")

	f, err := AsFloat64(NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, 3.0, f)
}

func TestFloatRepr(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{1, "1.0"},
		{-2.5, "-2.5"},
		{1e16, "1e+16"},
		{1.5e-5, "1.5e-05"},
		{0.0001, "0.0001"},
		{123456789.0, "123456789.0"},
		{1e22, "1e+22"},
		{math.NaN(), "nan"},
		{math.Inf(-1), "-inf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, floatRepr(tt.in), "floatRepr(%v)", tt.in)
	}
}
