// Package object is the reference host runtime: a small, reference-counted
// dynamic object model with Python-like operator semantics.
//
// Ownership rules for every function in this package: arguments are
// borrowed, returned objects are new references owned by the caller.
// Failures are reported as a non-nil error which is always an *Exception.
package object

import (
	"fmt"
	"math"
)

// Object is any value of the host runtime.
type Object interface {
	Type() *Type
	header() *Header
}

// Header carries the reference count. Every object type embeds it.
type Header struct {
	refs     int64
	immortal bool
}

func (h *Header) header() *Header { return h }

// Incref adds a reference to o and returns it.
func Incref(o Object) Object {
	if o == nil {
		return nil
	}
	h := o.header()
	if !h.immortal {
		h.refs++
	}
	return o
}

// Decref drops a reference. The last one deallocates o, which cascades to
// everything o holds.
func Decref(o Object) {
	if o == nil {
		return
	}
	h := o.header()
	if h.immortal {
		return
	}
	if h.refs <= 0 {
		panic(fmt.Sprintf("object: refcount underflow on %s", o.Type().Name))
	}
	h.refs--
	if h.refs == 0 {
		dealloc(o)
	}
}

// Refcount returns the number of references to o. Immortal objects report
// math.MaxInt64.
func Refcount(o Object) int64 {
	h := o.header()
	if h.immortal {
		return math.MaxInt64
	}
	return h.refs
}

// IsImmortal reports whether o is never deallocated.
func IsImmortal(o Object) bool {
	return o.header().immortal
}

func immortal() Header { return Header{refs: 1, immortal: true} }
func fresh() Header    { return Header{refs: 1} }

func decrefAll(items []Object) {
	for _, it := range items {
		Decref(it)
	}
}

func dealloc(o Object) {
	switch v := o.(type) {
	case *List:
		items := v.Items
		v.Items = nil
		decrefAll(items)
	case *Tuple:
		items := v.Items
		v.Items = nil
		decrefAll(items)
	case *Dict:
		v.Clear()
	case *Instance:
		if fin := v.typ.finalizer(); fin != nil {
			fin(v)
		}
		attrs := v.attrs
		v.attrs = nil
		if attrs != nil {
			Decref(attrs)
		}
		v.Payload = nil
		Decref(v.typ)
	case *Function:
		if v.Self != nil {
			Decref(v.Self)
			v.Self = nil
		}
	case *Module:
		if v.Dict != nil {
			Decref(v.Dict)
			v.Dict = nil
		}
	case *Exception:
		args := v.Args
		v.Args = nil
		decrefAll(args)
		Decref(v.typ)
	case *Type:
		if v.Dict != nil {
			Decref(v.Dict)
			v.Dict = nil
		}
		if v.Base != nil {
			Decref(v.Base)
		}
	}
}

// None is the missing value singleton.
type noneObject struct{ Header }

func (*noneObject) Type() *Type { return NoneType }

// NotImplemented is returned by binary slots that do not handle the operands.
type notImplementedObject struct{ Header }

func (*notImplementedObject) Type() *Type { return NotImplementedType }

// Singletons.
var (
	None           Object = &noneObject{immortal()}
	NotImplemented Object = &notImplementedObject{immortal()}
)

// Bool is one of the two boolean singletons.
type Bool struct {
	Header
	V bool
}

// Type implements Object.
func (*Bool) Type() *Type { return BoolType }

// Boolean singletons.
var (
	True  = &Bool{immortal(), true}
	False = &Bool{immortal(), false}
)

// NewBool returns the singleton for b.
func NewBool(b bool) *Bool {
	if b {
		return True
	}
	return False
}

// Float is a double-precision number.
type Float struct {
	Header
	V float64
}

// Type implements Object.
func (*Float) Type() *Type { return FloatType }

// NewFloat returns a new float object.
func NewFloat(v float64) *Float {
	return &Float{fresh(), v}
}

// Str is an immutable unicode string.
type Str struct {
	Header
	V string
}

// Type implements Object.
func (*Str) Type() *Type { return StrType }

// NewStr returns a new string object.
func NewStr(s string) *Str {
	return &Str{fresh(), s}
}

// Bytes is an immutable byte string.
type Bytes struct {
	Header
	V []byte
}

// Type implements Object.
func (*Bytes) Type() *Type { return BytesType }

// NewBytes returns a bytes object holding a copy of b.
func NewBytes(b []byte) *Bytes {
	c := make([]byte, len(b))
	copy(c, b)
	return &Bytes{fresh(), c}
}

// Function is a callable implemented in Go. Self is bound as the first
// argument when set.
type Function struct {
	Header
	Impl func(self Object, args []Object, kw *Dict) (Object, error)
	Self Object
	Name string
	Doc  string
}

// Type implements Object.
func (*Function) Type() *Type { return FunctionType }

// NewFunction returns an unbound function.
func NewFunction(name, doc string, impl func(self Object, args []Object, kw *Dict) (Object, error)) *Function {
	return &Function{Header: fresh(), Name: name, Doc: doc, Impl: impl}
}

// Bind returns a copy of f bound to self.
func (f *Function) Bind(self Object) *Function {
	return &Function{Header: fresh(), Name: f.Name, Doc: f.Doc, Impl: f.Impl, Self: Incref(self)}
}

// Module is a namespace created by an extension.
type Module struct {
	Header
	Dict *Dict
	Name string
	Doc  string
}

// Type implements Object.
func (*Module) Type() *Type { return ModuleType }

// NewModule returns an empty module.
func NewModule(name, doc string) *Module {
	return &Module{Header: fresh(), Name: name, Doc: doc, Dict: NewDict()}
}

// Instance is an object of an extension-defined type. Payload is the
// extension's per-instance data.
type Instance struct {
	Header
	Payload any
	typ     *Type
	attrs   *Dict
}

// Type implements Object.
func (i *Instance) Type() *Type { return i.typ }

// NewInstance allocates an instance of t with a fresh payload.
func NewInstance(t *Type) *Instance {
	inst := &Instance{Header: fresh(), typ: t}
	Incref(t)
	if t.NewPayload != nil {
		inst.Payload = t.NewPayload()
	}
	return inst
}
