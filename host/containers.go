package host

import (
	"unicode/utf8"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/domain/object"
)

func bytesCheck(ctx *abi.Context, h abi.Handle) int {
	s := stateOf(ctx, "BytesCheck")
	_, ok := s.get(h, "BytesCheck").(*object.Bytes)
	return boolInt(ok)
}

// mustBytes is used by the unchecked accessors: a non-bytes argument is a
// contract violation.
func (s *state) mustBytes(h abi.Handle, op string) *object.Bytes {
	b, ok := s.get(h, op).(*object.Bytes)
	if !ok {
		panic(errors.Violation(op, uint64(h), "expected bytes, got %s", s.get(h, op).Type().Name))
	}
	return b
}

func (s *state) checkedBytes(h abi.Handle, op string) (*object.Bytes, bool) {
	o := s.get(h, op)
	b, ok := o.(*object.Bytes)
	if !ok {
		s.setPending(object.NewException(object.TypeErrorType, "expected bytes, "+o.Type().Name+" found"))
	}
	return b, ok
}

// bytesSize returns -1 with TypeError pending when h is not bytes.
func bytesSize(ctx *abi.Context, h abi.Handle) abi.Ssize {
	s := stateOf(ctx, "BytesSize")
	b, ok := s.checkedBytes(h, "BytesSize")
	if !ok {
		return -1
	}
	return abi.Ssize(len(b.V))
}

// bytesGetSize is the unchecked variant of bytesSize.
func bytesGetSize(ctx *abi.Context, h abi.Handle) abi.Ssize {
	s := stateOf(ctx, "BytesGetSize")
	return abi.Ssize(len(s.mustBytes(h, "BytesGetSize").V))
}

func bytesAsString(ctx *abi.Context, h abi.Handle) []byte {
	s := stateOf(ctx, "BytesAsString")
	b, ok := s.checkedBytes(h, "BytesAsString")
	if !ok {
		return nil
	}
	return b.V
}

func bytesAsStringUnchecked(ctx *abi.Context, h abi.Handle) []byte {
	s := stateOf(ctx, "BytesAsStringUnchecked")
	return s.mustBytes(h, "BytesAsStringUnchecked").V
}

func bytesFromString(ctx *abi.Context, v string) abi.Handle {
	return stateOf(ctx, "BytesFromString").wrap(object.NewBytes([]byte(v)), "BytesFromString")
}

// bytesFromStringAndSize copies the first size bytes of b. A nil b yields
// size zero bytes.
func bytesFromStringAndSize(ctx *abi.Context, b []byte, size abi.Ssize) abi.Handle {
	s := stateOf(ctx, "BytesFromStringAndSize")
	switch {
	case size < 0:
		s.setPending(object.NewException(object.SystemErrorType, "Negative size passed to BytesFromStringAndSize"))
		return abi.Null
	case b == nil:
		return s.wrap(object.NewBytes(make([]byte, size)), "BytesFromStringAndSize")
	case size > abi.Ssize(len(b)):
		s.raise(object.Errorf(object.SystemErrorType, "size %d exceeds buffer length %d", size, len(b)))
		return abi.Null
	}
	return s.wrap(object.NewBytes(b[:size]), "BytesFromStringAndSize")
}

// unicodeFromString decodes UTF-8, failing with ValueError on invalid input.
func unicodeFromString(ctx *abi.Context, v string) abi.Handle {
	s := stateOf(ctx, "UnicodeFromString")
	if !utf8.ValidString(v) {
		s.setPending(object.NewException(object.ValueErrorType, "invalid utf-8 in UnicodeFromString"))
		return abi.Null
	}
	return s.wrap(object.NewStr(v), "UnicodeFromString")
}

func unicodeCheck(ctx *abi.Context, h abi.Handle) int {
	s := stateOf(ctx, "UnicodeCheck")
	_, ok := s.get(h, "UnicodeCheck").(*object.Str)
	return boolInt(ok)
}

func unicodeAsUTF8String(ctx *abi.Context, h abi.Handle) abi.Handle {
	s := stateOf(ctx, "UnicodeAsUTF8String")
	str, ok := s.get(h, "UnicodeAsUTF8String").(*object.Str)
	if !ok {
		s.setPending(object.NewException(object.TypeErrorType, "bad argument type for built-in operation"))
		return abi.Null
	}
	return s.wrap(object.NewBytes([]byte(str.V)), "UnicodeAsUTF8String")
}

// unicodeFromWideChar builds a str from code points. size -1 means all of w.
func unicodeFromWideChar(ctx *abi.Context, w []rune, size abi.Ssize) abi.Handle {
	s := stateOf(ctx, "UnicodeFromWideChar")
	if size == -1 {
		size = abi.Ssize(len(w))
	}
	if size < 0 || size > abi.Ssize(len(w)) {
		s.raise(object.Errorf(object.SystemErrorType, "invalid size %d for %d code points", size, len(w)))
		return abi.Null
	}
	r, err := object.StrFromRunes(w[:size])
	if err != nil {
		s.raise(err)
		return abi.Null
	}
	return s.wrap(r, "UnicodeFromWideChar")
}

func listCheck(ctx *abi.Context, h abi.Handle) int {
	s := stateOf(ctx, "ListCheck")
	return boolInt(s.get(h, "ListCheck").Type().IsSubtype(object.ListType))
}

// listNew returns a list of size None items.
func listNew(ctx *abi.Context, size abi.Ssize) abi.Handle {
	s := stateOf(ctx, "ListNew")
	if size < 0 {
		s.setPending(object.NewException(object.SystemErrorType, "negative list size"))
		return abi.Null
	}
	if size > abi.Ssize(s.table.Limit()) {
		s.setNoMemory()
		return abi.Null
	}
	items := make([]object.Object, size)
	for i := range items {
		items[i] = object.None
	}
	return s.wrap(object.ListFromOwned(items), "ListNew")
}

func listAppend(ctx *abi.Context, list, item abi.Handle) int {
	s := stateOf(ctx, "ListAppend")
	l, ok := s.get(list, "ListAppend").(*object.List)
	if !ok {
		s.setPending(object.NewException(object.SystemErrorType, "bad internal call: ListAppend on non-list"))
		return -1
	}
	l.Append(s.get(item, "ListAppend"))
	return 0
}

func dictCheck(ctx *abi.Context, h abi.Handle) int {
	s := stateOf(ctx, "DictCheck")
	return boolInt(s.get(h, "DictCheck").Type().IsSubtype(object.DictType))
}

func dictNew(ctx *abi.Context) abi.Handle {
	return stateOf(ctx, "DictNew").wrap(object.NewDict(), "DictNew")
}

// tupleFromArray builds a tuple holding new references; items stay owned by
// the caller.
func tupleFromArray(ctx *abi.Context, items []abi.Handle) abi.Handle {
	s := stateOf(ctx, "TupleFromArray")
	return s.wrap(object.NewTuple(s.handlesOf(items, "TupleFromArray")...), "TupleFromArray")
}
