package abi

// Signature tells the trampoline how to call an extension function.
type Signature int

// Calling conventions understood by CallRealFunctionFromTrampoline.
const (
	SigVarArgs  Signature = iota + 1 // VarArgsFunc
	SigKeywords                      // KeywordsFunc
	SigNoArgs                        // NoArgsFunc
	SigO                             // OFunc
	SigNew                           // KeywordsFunc called with the class as self
	SigUnary                         // UnaryFunc
	SigBinary                        // BinaryFunc
	SigDestroy                       // DestroyFunc
	SigTraverse                      // TraverseFunc
)

// String returns the signature name.
func (s Signature) String() string {
	switch s {
	case SigVarArgs:
		return "varargs"
	case SigKeywords:
		return "keywords"
	case SigNoArgs:
		return "noargs"
	case SigO:
		return "o"
	case SigNew:
		return "new"
	case SigUnary:
		return "unary"
	case SigBinary:
		return "binary"
	case SigDestroy:
		return "destroy"
	case SigTraverse:
		return "traverse"
	default:
		return "unknown"
	}
}

// Accepts reports whether impl has the Go function type of s. Both the
// named types below and the equivalent unnamed func types are accepted.
func (s Signature) Accepts(impl any) bool {
	switch s {
	case SigNoArgs:
		_, ok := AsNoArgs(impl)
		return ok
	case SigO:
		_, ok := AsO(impl)
		return ok
	case SigVarArgs:
		_, ok := AsVarArgs(impl)
		return ok
	case SigKeywords, SigNew:
		_, ok := AsKeywords(impl)
		return ok
	case SigUnary:
		_, ok := AsUnary(impl)
		return ok
	case SigBinary:
		_, ok := AsBinary(impl)
		return ok
	case SigDestroy:
		_, ok := AsDestroy(impl)
		return ok
	case SigTraverse:
		_, ok := AsTraverse(impl)
		return ok
	}
	return false
}

// NoArgsFunc implements a method taking no arguments.
type NoArgsFunc func(ctx *Context, self Handle) Handle

// OFunc implements a method taking exactly one argument.
type OFunc func(ctx *Context, self, arg Handle) Handle

// VarArgsFunc implements a method taking positional arguments.
type VarArgsFunc func(ctx *Context, self Handle, args []Handle) Handle

// KeywordsFunc implements a method taking positional and keyword arguments.
// kw is Null when no keywords were passed, otherwise a dict handle.
type KeywordsFunc func(ctx *Context, self Handle, args []Handle, kw Handle) Handle

// UnaryFunc implements a one-operand slot such as repr or negative.
type UnaryFunc func(ctx *Context, h Handle) Handle

// BinaryFunc implements a two-operand slot such as add. Returning a Dup of
// ctx.NotImplemented lets the host try the other operand.
type BinaryFunc func(ctx *Context, a, b Handle) Handle

// DestroyFunc releases extension resources attached to an instance payload.
// It runs right before the host reclaims the instance and may call back into
// ctx.
type DestroyFunc func(ctx *Context, data any)

// VisitFunc is called by a TraverseFunc for every Field of an instance.
// A non-zero return stops the traversal and is propagated.
type VisitFunc func(f *Field) int

// TraverseFunc reports every Field held by an instance payload.
type TraverseFunc func(data any, visit VisitFunc) int

// InitFunc is the entry point of a Go extension module. It returns a module
// handle created with ctx.ModuleCreate, or Null with an error pending.
type InitFunc func(ctx *Context) Handle

// AsNoArgs converts impl to a NoArgsFunc.
func AsNoArgs(impl any) (NoArgsFunc, bool) {
	switch f := impl.(type) {
	case NoArgsFunc:
		return f, f != nil
	case func(*Context, Handle) Handle:
		return f, f != nil
	}
	return nil, false
}

// AsO converts impl to an OFunc.
func AsO(impl any) (OFunc, bool) {
	switch f := impl.(type) {
	case OFunc:
		return f, f != nil
	case func(*Context, Handle, Handle) Handle:
		return f, f != nil
	}
	return nil, false
}

// AsVarArgs converts impl to a VarArgsFunc.
func AsVarArgs(impl any) (VarArgsFunc, bool) {
	switch f := impl.(type) {
	case VarArgsFunc:
		return f, f != nil
	case func(*Context, Handle, []Handle) Handle:
		return f, f != nil
	}
	return nil, false
}

// AsKeywords converts impl to a KeywordsFunc.
func AsKeywords(impl any) (KeywordsFunc, bool) {
	switch f := impl.(type) {
	case KeywordsFunc:
		return f, f != nil
	case func(*Context, Handle, []Handle, Handle) Handle:
		return f, f != nil
	}
	return nil, false
}

// AsUnary converts impl to a UnaryFunc.
func AsUnary(impl any) (UnaryFunc, bool) {
	switch f := impl.(type) {
	case UnaryFunc:
		return f, f != nil
	case NoArgsFunc:
		return UnaryFunc(f), f != nil
	case func(*Context, Handle) Handle:
		return f, f != nil
	}
	return nil, false
}

// AsBinary converts impl to a BinaryFunc.
func AsBinary(impl any) (BinaryFunc, bool) {
	switch f := impl.(type) {
	case BinaryFunc:
		return f, f != nil
	case OFunc:
		return BinaryFunc(f), f != nil
	case func(*Context, Handle, Handle) Handle:
		return f, f != nil
	}
	return nil, false
}

// AsDestroy converts impl to a DestroyFunc.
func AsDestroy(impl any) (DestroyFunc, bool) {
	switch f := impl.(type) {
	case DestroyFunc:
		return f, f != nil
	case func(*Context, any):
		return f, f != nil
	}
	return nil, false
}

// AsTraverse converts impl to a TraverseFunc.
func AsTraverse(impl any) (TraverseFunc, bool) {
	switch f := impl.(type) {
	case TraverseFunc:
		return f, f != nil
	case func(any, VisitFunc) int:
		return f, f != nil
	}
	return nil, false
}

// CallArgs carries host-native values across the trampoline. The host fills
// Self, Args and Kwargs (or Data and Visit for destroy/traverse); the bridge
// fills Result and Status.
type CallArgs struct {
	Self   any
	Args   []any
	Kwargs any
	Data   any
	Visit  VisitFunc

	// Result is a new host-native reference, nil on failure.
	Result any
	// Status is 0 on success and -1 when an error is pending.
	Status int
}

// SlotKind names a type slot an extension can fill.
type SlotKind int

// Supported type slots.
const (
	SlotNew SlotKind = iota + 1
	SlotDestroy
	SlotTraverse
	SlotRepr
	SlotStr
	SlotAdd
	SlotSubtract
	SlotMultiply
	SlotNegative
)

// String returns the slot name.
func (k SlotKind) String() string {
	switch k {
	case SlotNew:
		return "tp_new"
	case SlotDestroy:
		return "tp_destroy"
	case SlotTraverse:
		return "tp_traverse"
	case SlotRepr:
		return "tp_repr"
	case SlotStr:
		return "tp_str"
	case SlotAdd:
		return "nb_add"
	case SlotSubtract:
		return "nb_subtract"
	case SlotMultiply:
		return "nb_multiply"
	case SlotNegative:
		return "nb_negative"
	default:
		return "unknown"
	}
}

// Signature returns the calling convention of the slot.
func (k SlotKind) Signature() Signature {
	switch k {
	case SlotNew:
		return SigNew
	case SlotDestroy:
		return SigDestroy
	case SlotTraverse:
		return SigTraverse
	case SlotRepr, SlotStr, SlotNegative:
		return SigUnary
	case SlotAdd, SlotSubtract, SlotMultiply:
		return SigBinary
	default:
		return 0
	}
}

// MethodDef describes a method of a module or type.
type MethodDef struct {
	Impl      any       `validate:"required"`
	Name      string    `validate:"required"`
	Doc       string
	Signature Signature `validate:"min=1,max=4"`
}

// SlotDef fills one type slot. Impl must match Slot.Signature().
type SlotDef struct {
	Impl any      `validate:"required"`
	Slot SlotKind `validate:"min=1,max=9"`
}

// TypeFlags modify type creation.
type TypeFlags uint32

// Type flags.
const (
	FlagDefault  TypeFlags = 0
	FlagBaseType TypeFlags = 1 << iota // may be subclassed
	FlagHaveGC                         // instances hold Fields; requires SlotTraverse
)

// TypeSpec describes an extension type for TypeFromSpec.
type TypeSpec struct {
	// NewData allocates a zeroed payload for each instance. Nil means
	// instances carry no payload.
	NewData func() any
	// Name is the dotted name, e.g. "mymod.Pair".
	Name    string      `validate:"required,contains=."`
	Doc     string
	Methods []MethodDef `validate:"dive"`
	Slots   []SlotDef   `validate:"dive"`
	Flags   TypeFlags
}

// ModuleDef describes an extension module for ModuleCreate.
type ModuleDef struct {
	Name    string      `validate:"required"`
	Doc     string
	Methods []MethodDef `validate:"dive"`
}
