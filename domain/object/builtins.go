package object

import (
	"strings"
)

func builtinMethod(t *Type, name, doc string, impl func(self Object, args []Object, kw *Dict) (Object, error)) {
	if t.Dict == nil {
		t.Dict = NewDict()
		t.Dict.immortal = true
	}
	f := NewFunction(name, doc, impl)
	f.immortal = true
	t.Dict.SetStr(name, f)
}

func arity(name string, args []Object, kw *Dict, lo, hi int) error {
	if kw != nil && kw.Len() > 0 {
		return typeError("%s() takes no keyword arguments", name)
	}
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return typeError("%s() takes exactly %d argument(s) (%d given)", name, lo, len(args))
		}
		return typeError("%s() expected %d to %d arguments, got %d", name, lo, hi, len(args))
	}
	return nil
}

func installBuiltinMethods() {
	builtinMethod(ListType, "append", "Append object to the end of the list.",
		func(self Object, args []Object, kw *Dict) (Object, error) {
			if err := arity("append", args, kw, 1, 1); err != nil {
				return nil, err
			}
			self.(*List).Append(args[0])
			return None, nil
		})
	builtinMethod(ListType, "pop", "Remove and return the last item.",
		func(self Object, args []Object, kw *Dict) (Object, error) {
			if err := arity("pop", args, kw, 0, 0); err != nil {
				return nil, err
			}
			l := self.(*List)
			if len(l.Items) == 0 {
				return nil, Errorf(IndexErrorType, "pop from empty list")
			}
			last := l.Items[len(l.Items)-1]
			l.Items = l.Items[:len(l.Items)-1]
			return last, nil
		})
	builtinMethod(DictType, "get", "Return the value for key if key is in the dictionary, else default.",
		func(self Object, args []Object, kw *Dict) (Object, error) {
			if err := arity("get", args, kw, 1, 2); err != nil {
				return nil, err
			}
			v, ok, err := self.(*Dict).Get(args[0])
			if err != nil {
				return nil, err
			}
			if ok {
				return Incref(v), nil
			}
			if len(args) == 2 {
				return Incref(args[1]), nil
			}
			return None, nil
		})
	builtinMethod(DictType, "keys", "Return a list of the dictionary's keys.",
		func(self Object, args []Object, kw *Dict) (Object, error) {
			if err := arity("keys", args, kw, 0, 0); err != nil {
				return nil, err
			}
			keys, _ := Iterate(self)
			return ListFromOwned(keys), nil
		})
	builtinMethod(StrType, "upper", "Return a copy of the string converted to uppercase.",
		func(self Object, args []Object, kw *Dict) (Object, error) {
			if err := arity("upper", args, kw, 0, 0); err != nil {
				return nil, err
			}
			return NewStr(strings.ToUpper(self.(*Str).V)), nil
		})
	builtinMethod(StrType, "join", "Concatenate any number of strings.",
		func(self Object, args []Object, kw *Dict) (Object, error) {
			if err := arity("join", args, kw, 1, 1); err != nil {
				return nil, err
			}
			items, err := Iterate(args[0])
			if err != nil {
				return nil, err
			}
			defer decrefAll(items)
			parts := make([]string, len(items))
			for i, it := range items {
				s, ok := it.(*Str)
				if !ok {
					return nil, typeError("sequence item %d: expected str instance, %s found", i, it.Type().Name)
				}
				parts[i] = s.V
			}
			return NewStr(strings.Join(parts, self.(*Str).V)), nil
		})
	builtinMethod(IntType, "bit_length", "Number of bits necessary to represent self in binary.",
		func(self Object, args []Object, kw *Dict) (Object, error) {
			if err := arity("bit_length", args, kw, 0, 0); err != nil {
				return nil, err
			}
			v, _ := asBig(self)
			return NewInt(int64(v.BitLen())), nil
		})
}

// FromGo converts a native Go value into a new object reference. Objects are
// passed through with an added reference.
func FromGo(v any) (Object, error) {
	switch x := v.(type) {
	case nil:
		return None, nil
	case Object:
		return Incref(x), nil
	case bool:
		return NewBool(x), nil
	case int:
		return NewInt(int64(x)), nil
	case int8:
		return NewInt(int64(x)), nil
	case int16:
		return NewInt(int64(x)), nil
	case int32:
		return NewInt(int64(x)), nil
	case int64:
		return NewInt(x), nil
	case uint:
		return NewIntFromUint(uint64(x)), nil
	case uint8:
		return NewIntFromUint(uint64(x)), nil
	case uint16:
		return NewIntFromUint(uint64(x)), nil
	case uint32:
		return NewIntFromUint(uint64(x)), nil
	case uint64:
		return NewIntFromUint(x), nil
	case float32:
		return NewFloat(float64(x)), nil
	case float64:
		return NewFloat(x), nil
	case string:
		return NewStr(x), nil
	case []byte:
		return NewBytes(x), nil
	case []any:
		items := make([]Object, 0, len(x))
		for _, e := range x {
			o, err := FromGo(e)
			if err != nil {
				decrefAll(items)
				return nil, err
			}
			items = append(items, o)
		}
		return ListFromOwned(items), nil
	case map[string]any:
		d := NewDict()
		for k, e := range x {
			o, err := FromGo(e)
			if err != nil {
				Decref(d)
				return nil, err
			}
			d.SetStr(k, o)
			Decref(o)
		}
		return d, nil
	}
	return nil, typeError("cannot convert Go value of type %T", v)
}

// ToGo converts an object into a plain Go value where one exists.
func ToGo(o Object) (any, error) {
	switch v := o.(type) {
	case *noneObject:
		return nil, nil
	case *Bool:
		return v.V, nil
	case *Int:
		if v.V.IsInt64() {
			return v.V.Int64(), nil
		}
		return nil, overflowError("int too large to convert to int64")
	case *Float:
		return v.V, nil
	case *Str:
		return v.V, nil
	case *Bytes:
		return append([]byte{}, v.V...), nil
	case *List:
		return itemsToGo(v.Items)
	case *Tuple:
		return itemsToGo(v.Items)
	case *Dict:
		out := make(map[string]any, v.Len())
		for _, it := range v.Items() {
			k, ok := it.Key.(*Str)
			if !ok {
				return nil, typeError("dict key must be str, not %s", it.Key.Type().Name)
			}
			val, err := ToGo(it.Value)
			if err != nil {
				return nil, err
			}
			out[k.V] = val
		}
		return out, nil
	}
	return nil, typeError("cannot convert '%s' object to a Go value", o.Type().Name)
}

func itemsToGo(items []Object) ([]any, error) {
	out := make([]any, len(items))
	for i, it := range items {
		v, err := ToGo(it)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
