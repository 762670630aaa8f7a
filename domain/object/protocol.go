package object

import (
	"math/big"
	"unicode/utf8"
)

// Len returns len(o).
func Len(o Object) (int, error) {
	switch v := o.(type) {
	case *Str:
		return strLen(v.V), nil
	case *Bytes:
		return len(v.V), nil
	case *List:
		return len(v.Items), nil
	case *Tuple:
		return len(v.Items), nil
	case *Dict:
		return v.Len(), nil
	}
	return -1, typeError("object of type '%s' has no len()", o.Type().Name)
}

// Truth returns bool(o).
func Truth(o Object) (bool, error) {
	switch v := o.(type) {
	case *noneObject:
		return false, nil
	case *Bool:
		return v.V, nil
	case *Int:
		return v.V.Sign() != 0, nil
	case *Float:
		return v.V != 0, nil
	case *Str, *Bytes, *List, *Tuple, *Dict:
		n, err := Len(o)
		return n > 0, err
	}
	return true, nil
}

// GetAttr returns o.name.
func GetAttr(o Object, name string) (Object, error) {
	if name == "__class__" {
		return Incref(o.Type()), nil
	}

	switch v := o.(type) {
	case *Instance:
		if v.attrs != nil {
			if a := v.attrs.GetStr(name); a != nil {
				return Incref(a), nil
			}
		}
	case *Module:
		switch name {
		case "__name__":
			return NewStr(v.Name), nil
		case "__doc__":
			return docObject(v.Doc), nil
		}
		if a := v.Dict.GetStr(name); a != nil {
			return Incref(a), nil
		}
		return nil, Errorf(AttributeErrorType, "module '%s' has no attribute '%s'", v.Name, name)
	case *Type:
		switch name {
		case "__name__":
			return NewStr(v.Name), nil
		case "__doc__":
			return docObject(v.Doc), nil
		case "__module__":
			if v.Module == "" {
				return NewStr("builtins"), nil
			}
			return NewStr(v.Module), nil
		}
		if a := v.Lookup(name); a != nil {
			return Incref(a), nil
		}
		return nil, Errorf(AttributeErrorType, "type object '%s' has no attribute '%s'", v.QualName(), name)
	case *Exception:
		if name == "args" {
			return NewTuple(v.Args...), nil
		}
	}

	if a := o.Type().Lookup(name); a != nil {
		if f, ok := a.(*Function); ok {
			return f.Bind(o), nil
		}
		return Incref(a), nil
	}
	return nil, Errorf(AttributeErrorType, "'%s' object has no attribute '%s'", o.Type().Name, name)
}

func docObject(doc string) Object {
	if doc == "" {
		return None
	}
	return NewStr(doc)
}

// HasAttr reports whether GetAttr would succeed. It never fails.
func HasAttr(o Object, name string) bool {
	r, err := GetAttr(o, name)
	if err != nil {
		Decref(AsException(err))
		return false
	}
	Decref(r)
	return true
}

// SetAttr sets o.name = value.
func SetAttr(o Object, name string, value Object) error {
	switch v := o.(type) {
	case *Instance:
		if v.attrs == nil {
			v.attrs = NewDict()
		}
		v.attrs.SetStr(name, value)
		return nil
	case *Module:
		v.Dict.SetStr(name, value)
		return nil
	case *Type:
		if v.builtin {
			return typeError("cannot set '%s' attribute of immutable type '%s'", name, v.Name)
		}
		v.Dict.SetStr(name, value)
		return nil
	}
	return Errorf(AttributeErrorType, "'%s' object has no attribute '%s'", o.Type().Name, name)
}

func normalizeIndex(key Object, length int, what string) (int, error) {
	b, ok := asBig(key)
	if !ok {
		return 0, typeError("%s indices must be integers or slices, not %s", what, key.Type().Name)
	}
	if !b.IsInt64() {
		return 0, Errorf(IndexErrorType, "cannot fit 'int' into an index-sized integer")
	}
	i := b.Int64()
	if i < 0 {
		i += int64(length)
	}
	if i < 0 || i >= int64(length) {
		return 0, Errorf(IndexErrorType, "%s index out of range", what)
	}
	return int(i), nil
}

// GetItem returns o[key].
func GetItem(o, key Object) (Object, error) {
	switch v := o.(type) {
	case *List:
		i, err := normalizeIndex(key, len(v.Items), "list")
		if err != nil {
			return nil, err
		}
		return Incref(v.Items[i]), nil
	case *Tuple:
		i, err := normalizeIndex(key, len(v.Items), "tuple")
		if err != nil {
			return nil, err
		}
		return Incref(v.Items[i]), nil
	case *Str:
		rs := []rune(v.V)
		i, err := normalizeIndex(key, len(rs), "string")
		if err != nil {
			return nil, err
		}
		return NewStr(string(rs[i])), nil
	case *Bytes:
		i, err := normalizeIndex(key, len(v.V), "index")
		if err != nil {
			return nil, err
		}
		return NewInt(int64(v.V[i])), nil
	case *Dict:
		val, ok, err := v.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, keyError(key)
		}
		return Incref(val), nil
	}
	return nil, typeError("'%s' object is not subscriptable", o.Type().Name)
}

// SetItem performs o[key] = value.
func SetItem(o, key, value Object) error {
	switch v := o.(type) {
	case *List:
		i, err := normalizeIndex(key, len(v.Items), "list assignment")
		if err != nil {
			return err
		}
		old := v.Items[i]
		v.Items[i] = Incref(value)
		Decref(old)
		return nil
	case *Dict:
		return v.Set(key, value)
	}
	return typeError("'%s' object does not support item assignment", o.Type().Name)
}

// Iterate returns new references to the elements of an iterable.
func Iterate(o Object) ([]Object, error) {
	switch v := o.(type) {
	case *List:
		return increfItems(v.Items), nil
	case *Tuple:
		return increfItems(v.Items), nil
	case *Str:
		out := make([]Object, 0, utf8.RuneCountInString(v.V))
		for _, r := range v.V {
			out = append(out, NewStr(string(r)))
		}
		return out, nil
	case *Bytes:
		out := make([]Object, len(v.V))
		for i, c := range v.V {
			out[i] = NewInt(int64(c))
		}
		return out, nil
	case *Dict:
		items := v.Items()
		out := make([]Object, len(items))
		for i, it := range items {
			out[i] = Incref(it.Key)
		}
		return out, nil
	}
	return nil, typeError("'%s' object is not iterable", o.Type().Name)
}

func increfItems(items []Object) []Object {
	out := make([]Object, len(items))
	for i, it := range items {
		out[i] = Incref(it)
	}
	return out
}

// BytesOf implements bytes(o).
func BytesOf(o Object) (Object, error) {
	switch v := o.(type) {
	case *Bytes:
		return Incref(v), nil
	case *Str:
		return nil, typeError("string argument without an encoding")
	case *Int, *Bool:
		n, _ := asBig(v)
		if n.Sign() < 0 {
			return nil, valueError("negative count")
		}
		if !n.IsInt64() || n.Int64() > maxRepeat {
			return nil, Errorf(MemoryErrorType, "")
		}
		return &Bytes{fresh(), make([]byte, n.Int64())}, nil
	case *List, *Tuple:
		items, _ := Iterate(v)
		defer decrefAll(items)
		out := make([]byte, len(items))
		for i, it := range items {
			b, ok := asBig(it)
			if !ok {
				return nil, typeError("'%s' object cannot be interpreted as an integer", it.Type().Name)
			}
			if b.Sign() < 0 || b.Cmp(big.NewInt(255)) > 0 {
				return nil, valueError("bytes must be in range(0, 256)")
			}
			out[i] = byte(b.Int64())
		}
		return &Bytes{fresh(), out}, nil
	}
	return nil, typeError("cannot convert '%s' object to bytes", o.Type().Name)
}

// Call invokes callable(*args, **kw). kw may be nil.
func Call(callable Object, args []Object, kw *Dict) (Object, error) {
	switch v := callable.(type) {
	case *Function:
		return v.Impl(v.Self, args, kw)
	case *Type:
		return construct(v, args, kw)
	}
	return nil, typeError("'%s' object is not callable", callable.Type().Name)
}

func construct(t *Type, args []Object, kw *Dict) (Object, error) {
	for c := t; c != nil; c = c.Base {
		if c.Slots.New != nil {
			return c.Slots.New(t, args, kw)
		}
	}
	if IsExceptionType(t) {
		if kw != nil && kw.Len() > 0 {
			return nil, typeError("%s() takes no keyword arguments", t.Name)
		}
		return NewExceptionArgs(t, args), nil
	}
	if !t.builtin {
		return nil, typeError("cannot create '%s' instances", t.QualName())
	}
	if kw != nil && kw.Len() > 0 && t != DictType {
		return nil, typeError("%s() takes no keyword arguments", t.Name)
	}
	if len(args) > 1 {
		return nil, typeError("%s expected at most 1 argument, got %d", t.Name, len(args))
	}

	var arg Object
	if len(args) == 1 {
		arg = args[0]
	}
	switch t {
	case ObjectType:
		if arg != nil {
			return nil, typeError("object() takes no arguments")
		}
		return NewInstance(ObjectType), nil
	case TypeType:
		if arg == nil {
			return nil, typeError("type() takes 1 argument")
		}
		return Incref(arg.Type()), nil
	case IntType:
		if arg == nil {
			return NewInt(0), nil
		}
		return Long(arg)
	case FloatType:
		if arg == nil {
			return NewFloat(0), nil
		}
		return ToFloat(arg)
	case BoolType:
		if arg == nil {
			return False, nil
		}
		b, err := Truth(arg)
		if err != nil {
			return nil, err
		}
		return NewBool(b), nil
	case StrType:
		if arg == nil {
			return NewStr(""), nil
		}
		return ToStr(arg)
	case BytesType:
		if arg == nil {
			return NewBytes(nil), nil
		}
		return BytesOf(arg)
	case ListType, TupleType:
		var items []Object
		if arg != nil {
			var err error
			if items, err = Iterate(arg); err != nil {
				return nil, err
			}
		}
		if t == ListType {
			return ListFromOwned(items), nil
		}
		return TupleFromOwned(items), nil
	case DictType:
		d := NewDict()
		if src, ok := arg.(*Dict); ok {
			for _, it := range src.Items() {
				_ = d.Set(it.Key, it.Value)
			}
		} else if arg != nil {
			Decref(d)
			return nil, typeError("dict() argument must be a mapping")
		}
		if kw != nil {
			for _, it := range kw.Items() {
				_ = d.Set(it.Key, it.Value)
			}
		}
		return d, nil
	}
	return nil, typeError("cannot create '%s' instances", t.Name)
}
