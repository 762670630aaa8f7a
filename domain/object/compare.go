package object

import (
	"bytes"
	"math"
	"strings"
)

// CompareOp selects a rich comparison.
type CompareOp int

// Comparison operators.
const (
	LT CompareOp = iota
	LE
	EQ
	NE
	GT
	GE
)

var opSymbols = [...]string{"<", "<=", "==", "!=", ">", ">="}

func (op CompareOp) String() string {
	if op < LT || op > GE {
		return "?"
	}
	return opSymbols[op]
}

func (op CompareOp) fromCmp(c int) bool {
	switch op {
	case LT:
		return c < 0
	case LE:
		return c <= 0
	case EQ:
		return c == 0
	case NE:
		return c != 0
	case GT:
		return c > 0
	default:
		return c >= 0
	}
}

// Compare returns the result of a rich comparison as a bool object.
func Compare(a, b Object, op CompareOp) (Object, error) {
	r, err := compare(a, b, op)
	if err != nil {
		return nil, err
	}
	return NewBool(r), nil
}

// CompareBool is Compare with identity implying equality, as containers use.
func CompareBool(a, b Object, op CompareOp) (bool, error) {
	if a == b {
		switch op {
		case EQ:
			return true, nil
		case NE:
			return false, nil
		}
	}
	return compare(a, b, op)
}

func compare(a, b Object, op CompareOp) (bool, error) {
	if op < LT || op > GE {
		return false, Errorf(SystemErrorType, "bad comparison operator %d", int(op))
	}

	ai, aInt := asBig(a)
	bi, bInt := asBig(b)
	switch {
	case aInt && bInt:
		return op.fromCmp(ai.Cmp(bi)), nil
	case aInt:
		if bf, ok := b.(*Float); ok {
			c, ordered := compareIntFloat(ai, bf.V)
			return ordered && op.fromCmp(c) || !ordered && op == NE, nil
		}
	case bInt:
		if af, ok := a.(*Float); ok {
			c, ordered := compareIntFloat(bi, af.V)
			return ordered && op.fromCmp(-c) || !ordered && op == NE, nil
		}
	}

	switch av := a.(type) {
	case *Float:
		if bv, ok := b.(*Float); ok {
			return compareFloats(av.V, bv.V, op), nil
		}
	case *Str:
		if bv, ok := b.(*Str); ok {
			return op.fromCmp(strings.Compare(av.V, bv.V)), nil
		}
	case *Bytes:
		if bv, ok := b.(*Bytes); ok {
			return op.fromCmp(bytes.Compare(av.V, bv.V)), nil
		}
	case *List:
		if bv, ok := b.(*List); ok {
			return compareSequences(av.Items, bv.Items, op)
		}
	case *Tuple:
		if bv, ok := b.(*Tuple); ok {
			return compareSequences(av.Items, bv.Items, op)
		}
	case *Dict:
		if bv, ok := b.(*Dict); ok && (op == EQ || op == NE) {
			eq, err := dictEqual(av, bv)
			return eq == (op == EQ), err
		}
	}

	switch op {
	case EQ:
		return a == b, nil
	case NE:
		return a != b, nil
	}
	return false, typeError("'%s' not supported between instances of '%s' and '%s'", op, a.Type().Name, b.Type().Name)
}

func compareFloats(a, b float64, op CompareOp) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return op == NE
	}
	switch {
	case a < b:
		return op.fromCmp(-1)
	case a > b:
		return op.fromCmp(1)
	}
	return op.fromCmp(0)
}

func compareSequences(a, b []Object, op CompareOp) (bool, error) {
	if len(a) != len(b) && (op == EQ || op == NE) {
		return op == NE, nil
	}
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		eq, err := CompareBool(a[i], b[i], EQ)
		if err != nil {
			return false, err
		}
		if !eq {
			switch op {
			case EQ:
				return false, nil
			case NE:
				return true, nil
			}
			return compare(a[i], b[i], op)
		}
	}
	return op.fromCmp(len(a) - len(b)), nil
}

func dictEqual(a, b *Dict) (bool, error) {
	if a.Len() != b.Len() {
		return false, nil
	}
	for _, it := range a.Items() {
		v, ok, err := b.Get(it.Key)
		if err != nil || !ok {
			return false, err
		}
		eq, err := CompareBool(it.Value, v, EQ)
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}
