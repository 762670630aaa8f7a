package object

import (
	"fmt"
	"reflect"
	"strings"
)

type reprState struct {
	seen map[Object]bool
}

func (s *reprState) repr(o Object) (string, error) {
	switch v := o.(type) {
	case *noneObject:
		return "None", nil
	case *notImplementedObject:
		return "NotImplemented", nil
	case *Bool:
		if v.V {
			return "True", nil
		}
		return "False", nil
	case *Int:
		return v.V.String(), nil
	case *Float:
		return floatRepr(v.V), nil
	case *Str:
		return quoteStr(v.V, false), nil
	case *Bytes:
		return quoteBytes(v.V), nil
	case *List:
		return s.sequence(o, "[", "]", v.Items, false)
	case *Tuple:
		return s.sequence(o, "(", ")", v.Items, len(v.Items) == 1)
	case *Dict:
		return s.dict(v)
	case *Type:
		return "<class '" + v.QualName() + "'>", nil
	case *Module:
		return "<module '" + v.Name + "'>", nil
	case *Function:
		if v.Self != nil && v.Self != None {
			if _, isMod := v.Self.(*Module); !isMod {
				return fmt.Sprintf("<built-in method %s of %s object at %#x>", v.Name, v.Self.Type().Name, address(v.Self)), nil
			}
		}
		return "<built-in function " + v.Name + ">", nil
	case *Exception:
		return exceptionRepr(v), nil
	}

	if slot := o.Type().unarySlot(func(sl *Slots) UnarySlot { return sl.Repr }); slot != nil {
		return callStrSlot(slot, o, "__repr__")
	}
	return fmt.Sprintf("<%s object at %#x>", o.Type().QualName(), address(o)), nil
}

func (s *reprState) sequence(o Object, open, closing string, items []Object, trailingComma bool) (string, error) {
	if s.seen[o] {
		return open + "..." + closing, nil
	}
	s.seen[o] = true
	defer delete(s.seen, o)

	parts := make([]string, len(items))
	for i, it := range items {
		r, err := s.repr(it)
		if err != nil {
			return "", err
		}
		parts[i] = r
	}
	out := open + strings.Join(parts, ", ")
	if trailingComma {
		out += ","
	}
	return out + closing, nil
}

func (s *reprState) dict(d *Dict) (string, error) {
	if s.seen[d] {
		return "{...}", nil
	}
	s.seen[d] = true
	defer delete(s.seen, d)

	items := d.Items()
	parts := make([]string, len(items))
	for i, it := range items {
		k, err := s.repr(it.Key)
		if err != nil {
			return "", err
		}
		v, err := s.repr(it.Value)
		if err != nil {
			return "", err
		}
		parts[i] = k + ": " + v
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}

func callStrSlot(slot UnarySlot, o Object, name string) (string, error) {
	r, err := slot(o)
	if err != nil {
		return "", err
	}
	defer Decref(r)
	str, ok := r.(*Str)
	if !ok {
		return "", typeError("%s returned non-string (type %s)", name, r.Type().Name)
	}
	return str.V, nil
}

func address(o Object) uintptr {
	return reflect.ValueOf(o).Pointer()
}

// Repr returns repr(o).
func Repr(o Object) (*Str, error) {
	s, err := (&reprState{seen: map[Object]bool{}}).repr(o)
	if err != nil {
		return nil, err
	}
	return NewStr(s), nil
}

// ToStr returns str(o).
func ToStr(o Object) (*Str, error) {
	switch v := o.(type) {
	case *Str:
		return Incref(v).(*Str), nil
	case *Exception:
		return NewStr(v.Message()), nil
	}
	if slot := o.Type().unarySlot(func(sl *Slots) UnarySlot { return sl.Str }); slot != nil {
		s, err := callStrSlot(slot, o, "__str__")
		if err != nil {
			return nil, err
		}
		return NewStr(s), nil
	}
	return Repr(o)
}

// ASCII returns ascii(o): repr with every non-ASCII code point escaped.
func ASCII(o Object) (*Str, error) {
	r, err := Repr(o)
	if err != nil {
		return nil, err
	}
	defer Decref(r)
	return NewStr(asciiEscape(r.V)), nil
}

func reprString(o Object) string {
	s, err := (&reprState{seen: map[Object]bool{}}).repr(o)
	if err != nil {
		return fmt.Sprintf("<%s object>", o.Type().Name)
	}
	return s
}

func strString(o Object) string {
	s, err := ToStr(o)
	if err != nil {
		return reprString(o)
	}
	defer Decref(s)
	return s.V
}

const (
	xxPrime1 uint64 = 11400714785074694791
	xxPrime2 uint64 = 14029467366897019727
	xxPrime5 uint64 = 2870177450012600261
)

const noneHash = 0xfca86420

// Hash returns hash(o). Mutable containers are unhashable.
func Hash(o Object) (int64, error) {
	switch v := o.(type) {
	case *noneObject:
		return noneHash, nil
	case *Bool:
		if v.V {
			return 1, nil
		}
		return 0, nil
	case *Int:
		return hashBig(v.V), nil
	case *Float:
		return hashFloat(v.V), nil
	case *Str:
		return hashBytes([]byte(v.V)), nil
	case *Bytes:
		return hashBytes(v.V), nil
	case *Tuple:
		acc := xxPrime5
		for _, it := range v.Items {
			lane, err := Hash(it)
			if err != nil {
				return -1, err
			}
			acc += uint64(lane) * xxPrime2
			acc = acc<<31 | acc>>33
			acc *= xxPrime1
		}
		acc += uint64(len(v.Items)) ^ (xxPrime5 ^ 3527539)
		if int64(acc) == -1 {
			return 1546275796, nil
		}
		return int64(acc), nil
	case *List, *Dict:
		return -1, typeError("unhashable type: '%s'", o.Type().Name)
	}
	h := int64(address(o) >> 4)
	if h == -1 {
		h = -2
	}
	return h, nil
}
