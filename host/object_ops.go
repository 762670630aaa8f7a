package host

import (
	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/object"
)

// length returns len(h), or -1 with an error pending.
func length(ctx *abi.Context, h abi.Handle) abi.Ssize {
	s := stateOf(ctx, "Length")
	n, err := object.Len(s.get(h, "Length"))
	if err != nil {
		s.raise(err)
		return -1
	}
	return abi.Ssize(n)
}

func isTrue(ctx *abi.Context, h abi.Handle) int {
	s := stateOf(ctx, "IsTrue")
	b, err := object.Truth(s.get(h, "IsTrue"))
	if err != nil {
		s.raise(err)
		return -1
	}
	return boolInt(b)
}

// attrName resolves a name handle, which must be a str.
func (s *state) attrName(name abi.Handle, op string) (string, error) {
	o := s.get(name, op)
	str, ok := o.(*object.Str)
	if !ok {
		return "", object.Errorf(object.TypeErrorType, "attribute name must be string, not '%s'", o.Type().Name)
	}
	return str.V, nil
}

func getAttr(ctx *abi.Context, obj, name abi.Handle) abi.Handle {
	s := stateOf(ctx, "GetAttr")
	n, err := s.attrName(name, "GetAttr")
	if err != nil {
		s.raise(err)
		return abi.Null
	}
	r, err := object.GetAttr(s.get(obj, "GetAttr"), n)
	return s.result(r, err, "GetAttr")
}

func getAttrS(ctx *abi.Context, obj abi.Handle, name string) abi.Handle {
	s := stateOf(ctx, "GetAttrS")
	r, err := object.GetAttr(s.get(obj, "GetAttrS"), name)
	return s.result(r, err, "GetAttrS")
}

// hasAttr never leaves an error pending; a non-str name is simply absent.
func hasAttr(ctx *abi.Context, obj, name abi.Handle) int {
	s := stateOf(ctx, "HasAttr")
	str, ok := s.get(name, "HasAttr").(*object.Str)
	if !ok {
		return 0
	}
	return boolInt(object.HasAttr(s.get(obj, "HasAttr"), str.V))
}

func hasAttrS(ctx *abi.Context, obj abi.Handle, name string) int {
	s := stateOf(ctx, "HasAttrS")
	return boolInt(object.HasAttr(s.get(obj, "HasAttrS"), name))
}

func setAttr(ctx *abi.Context, obj, name, value abi.Handle) int {
	s := stateOf(ctx, "SetAttr")
	n, err := s.attrName(name, "SetAttr")
	if err != nil {
		return s.status(err)
	}
	return s.status(object.SetAttr(s.get(obj, "SetAttr"), n, s.get(value, "SetAttr")))
}

func setAttrS(ctx *abi.Context, obj abi.Handle, name string, value abi.Handle) int {
	s := stateOf(ctx, "SetAttrS")
	return s.status(object.SetAttr(s.get(obj, "SetAttrS"), name, s.get(value, "SetAttrS")))
}

func getItem(ctx *abi.Context, obj, key abi.Handle) abi.Handle {
	s := stateOf(ctx, "GetItem")
	r, err := object.GetItem(s.get(obj, "GetItem"), s.get(key, "GetItem"))
	return s.result(r, err, "GetItem")
}

func getItemI(ctx *abi.Context, obj abi.Handle, idx abi.Ssize) abi.Handle {
	s := stateOf(ctx, "GetItemI")
	key := object.NewInt(idx)
	defer object.Decref(key)
	r, err := object.GetItem(s.get(obj, "GetItemI"), key)
	return s.result(r, err, "GetItemI")
}

func getItemS(ctx *abi.Context, obj abi.Handle, key string) abi.Handle {
	s := stateOf(ctx, "GetItemS")
	k := object.NewStr(key)
	defer object.Decref(k)
	r, err := object.GetItem(s.get(obj, "GetItemS"), k)
	return s.result(r, err, "GetItemS")
}

func setItem(ctx *abi.Context, obj, key, value abi.Handle) int {
	s := stateOf(ctx, "SetItem")
	return s.status(object.SetItem(s.get(obj, "SetItem"), s.get(key, "SetItem"), s.get(value, "SetItem")))
}

func setItemI(ctx *abi.Context, obj abi.Handle, idx abi.Ssize, value abi.Handle) int {
	s := stateOf(ctx, "SetItemI")
	key := object.NewInt(idx)
	defer object.Decref(key)
	return s.status(object.SetItem(s.get(obj, "SetItemI"), key, s.get(value, "SetItemI")))
}

func setItemS(ctx *abi.Context, obj abi.Handle, key string, value abi.Handle) int {
	s := stateOf(ctx, "SetItemS")
	k := object.NewStr(key)
	defer object.Decref(k)
	return s.status(object.SetItem(s.get(obj, "SetItemS"), k, s.get(value, "SetItemS")))
}

func repr(ctx *abi.Context, h abi.Handle) abi.Handle {
	s := stateOf(ctx, "Repr")
	r, err := object.Repr(s.get(h, "Repr"))
	if err != nil {
		s.raise(err)
		return abi.Null
	}
	return s.wrap(r, "Repr")
}

func str(ctx *abi.Context, h abi.Handle) abi.Handle {
	s := stateOf(ctx, "Str")
	r, err := object.ToStr(s.get(h, "Str"))
	if err != nil {
		s.raise(err)
		return abi.Null
	}
	return s.wrap(r, "Str")
}

func ascii(ctx *abi.Context, h abi.Handle) abi.Handle {
	s := stateOf(ctx, "ASCII")
	r, err := object.ASCII(s.get(h, "ASCII"))
	if err != nil {
		s.raise(err)
		return abi.Null
	}
	return s.wrap(r, "ASCII")
}

func bytesOf(ctx *abi.Context, h abi.Handle) abi.Handle {
	s := stateOf(ctx, "Bytes")
	r, err := object.BytesOf(s.get(h, "Bytes"))
	return s.result(r, err, "Bytes")
}

func richCompare(ctx *abi.Context, a, b abi.Handle, op abi.CompareOp) abi.Handle {
	s := stateOf(ctx, "RichCompare")
	r, err := object.Compare(s.get(a, "RichCompare"), s.get(b, "RichCompare"), object.CompareOp(op))
	return s.result(r, err, "RichCompare")
}

// richCompareBool returns 1, 0, or -1 with an error pending.
func richCompareBool(ctx *abi.Context, a, b abi.Handle, op abi.CompareOp) int {
	s := stateOf(ctx, "RichCompareBool")
	r, err := object.CompareBool(s.get(a, "RichCompareBool"), s.get(b, "RichCompareBool"), object.CompareOp(op))
	if err != nil {
		s.raise(err)
		return -1
	}
	return boolInt(r)
}

func hash(ctx *abi.Context, h abi.Handle) abi.HashT {
	s := stateOf(ctx, "Hash")
	v, err := object.Hash(s.get(h, "Hash"))
	if err != nil {
		s.raise(err)
		return -1
	}
	return v
}

func typeOf(ctx *abi.Context, h abi.Handle) abi.Handle {
	s := stateOf(ctx, "Type")
	return s.wrap(object.Incref(s.get(h, "Type").Type()), "Type")
}

// typeCheck reports whether h is an instance of typ or of a subtype.
func typeCheck(ctx *abi.Context, h, typ abi.Handle) int {
	s := stateOf(ctx, "TypeCheck")
	t, ok := s.get(typ, "TypeCheck").(*object.Type)
	if !ok {
		return 0
	}
	return boolInt(s.get(h, "TypeCheck").Type().IsSubtype(t))
}

func is(ctx *abi.Context, a, b abi.Handle) int {
	s := stateOf(ctx, "Is")
	return boolInt(s.get(a, "Is") == s.get(b, "Is"))
}

func call(ctx *abi.Context, callable abi.Handle, args []abi.Handle, kw abi.Handle) abi.Handle {
	s := stateOf(ctx, "Call")
	fn := s.get(callable, "Call")
	argv := s.handlesOf(args, "Call")
	kwargs, err := s.kwargs(kw, "Call")
	if err != nil {
		s.raise(err)
		return abi.Null
	}
	r, err := object.Call(fn, argv, kwargs)
	return s.result(r, err, "Call")
}

// fromHostObject converts a host object or a plain Go value to a handle.
func fromHostObject(ctx *abi.Context, v any) abi.Handle {
	s := stateOf(ctx, "FromHostObject")
	o, err := object.FromGo(v)
	return s.result(o, err, "FromHostObject")
}

// asHostObject returns a new reference to the object behind h.
func asHostObject(ctx *abi.Context, h abi.Handle) any {
	s := stateOf(ctx, "AsHostObject")
	return object.Incref(s.get(h, "AsHostObject"))
}
