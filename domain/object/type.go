package object

// BinarySlot implements a binary operator for an extension type. Returning
// NotImplemented lets the other operand try.
type BinarySlot func(a, b Object) (Object, error)

// UnarySlot implements a unary operator or conversion.
type UnarySlot func(o Object) (Object, error)

// Slots holds the operator hooks of an extension type.
type Slots struct {
	New      func(t *Type, args []Object, kw *Dict) (Object, error)
	Repr     UnarySlot
	Str      UnarySlot
	Add      BinarySlot
	Subtract BinarySlot
	Multiply BinarySlot
	Negative UnarySlot
	// Finalize runs when an instance's last reference is dropped, before its
	// attributes and payload are released.
	Finalize func(inst *Instance)
}

// Type is a class object.
type Type struct {
	Header
	// NewPayload allocates the payload of each new instance.
	NewPayload func() any
	Base       *Type
	Dict       *Dict
	// Extra is owned by whoever created the type.
	Extra  any
	Slots  Slots
	Name   string
	Module string
	Doc    string
	// Subclassable allows the type to be used as a base.
	Subclassable bool
	builtin      bool
}

// Type implements Object.
func (*Type) Type() *Type { return TypeType }

// NewType creates a heap type deriving from base (ObjectType when nil).
func NewType(module, name, doc string, base *Type) *Type {
	if base == nil {
		base = ObjectType
	}
	Incref(base)
	return &Type{
		Header: fresh(),
		Name:   name,
		Module: module,
		Doc:    doc,
		Base:   base,
		Dict:   NewDict(),
	}
}

// QualName is the dotted name used in reprs.
func (t *Type) QualName() string {
	if t.Module == "" || t.builtin {
		return t.Name
	}
	return t.Module + "." + t.Name
}

// IsBuiltin reports whether t is one of the runtime's own types.
func (t *Type) IsBuiltin() bool {
	return t.builtin
}

// IsSubtype reports whether t is other or derives from it.
func (t *Type) IsSubtype(other *Type) bool {
	for c := t; c != nil; c = c.Base {
		if c == other {
			return true
		}
	}
	return false
}

// Lookup finds an attribute along the base chain. The result is borrowed.
func (t *Type) Lookup(name string) Object {
	for c := t; c != nil; c = c.Base {
		if c.Dict == nil {
			continue
		}
		if v := c.Dict.GetStr(name); v != nil {
			return v
		}
	}
	return nil
}

func (t *Type) finalizer() func(*Instance) {
	for c := t; c != nil; c = c.Base {
		if c.Slots.Finalize != nil {
			return c.Slots.Finalize
		}
	}
	return nil
}

func (t *Type) slots() []*Slots {
	var out []*Slots
	for c := t; c != nil; c = c.Base {
		out = append(out, &c.Slots)
	}
	return out
}

func (t *Type) binarySlot(pick func(*Slots) BinarySlot) BinarySlot {
	for _, s := range t.slots() {
		if f := pick(s); f != nil {
			return f
		}
	}
	return nil
}

func (t *Type) unarySlot(pick func(*Slots) UnarySlot) UnarySlot {
	for _, s := range t.slots() {
		if f := pick(s); f != nil {
			return f
		}
	}
	return nil
}

func builtinType(name string, base *Type) *Type {
	return &Type{Header: immortal(), Name: name, Base: base, builtin: true, Subclassable: true}
}

// Builtin types.
var (
	ObjectType         = builtinType("object", nil)
	TypeType           = builtinType("type", ObjectType)
	NoneType           = builtinType("NoneType", ObjectType)
	NotImplementedType = builtinType("NotImplementedType", ObjectType)
	IntType            = builtinType("int", ObjectType)
	BoolType           = builtinType("bool", IntType)
	FloatType          = builtinType("float", ObjectType)
	StrType            = builtinType("str", ObjectType)
	BytesType          = builtinType("bytes", ObjectType)
	ListType           = builtinType("list", ObjectType)
	TupleType          = builtinType("tuple", ObjectType)
	DictType           = builtinType("dict", ObjectType)
	ModuleType         = builtinType("module", ObjectType)
	FunctionType       = builtinType("builtin_function_or_method", ObjectType)

	ExceptionType         = builtinType("Exception", ObjectType)
	ArithmeticErrorType   = builtinType("ArithmeticError", ExceptionType)
	ZeroDivisionErrorType = builtinType("ZeroDivisionError", ArithmeticErrorType)
	OverflowErrorType     = builtinType("OverflowError", ArithmeticErrorType)
	LookupErrorType       = builtinType("LookupError", ExceptionType)
	IndexErrorType        = builtinType("IndexError", LookupErrorType)
	KeyErrorType          = builtinType("KeyError", LookupErrorType)
	SystemErrorType       = builtinType("SystemError", ExceptionType)
	TypeErrorType         = builtinType("TypeError", ExceptionType)
	ValueErrorType        = builtinType("ValueError", ExceptionType)
	AttributeErrorType    = builtinType("AttributeError", ExceptionType)
	MemoryErrorType       = builtinType("MemoryError", ExceptionType)
)

func init() {
	BoolType.Subclassable = false
	NoneType.Subclassable = false
	FunctionType.Subclassable = false
	installBuiltinMethods()
}
