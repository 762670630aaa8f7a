package host

import (
	stderrors "errors"
	"strings"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/application/validation"
	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/domain/object"
)

// typeInfo is stored in object.Type.Extra for types built by TypeFromSpec.
type typeInfo struct {
	destroy  abi.DestroyFunc
	traverse abi.TraverseFunc
	haveGC   bool
}

func moduleCreate(ctx *abi.Context, def *abi.ModuleDef) abi.Handle {
	s := stateOf(ctx, "ModuleCreate")
	if err := validation.ValidateModuleDef(def); err != nil {
		s.setPending(object.NewException(object.SystemErrorType, err.Error()))
		return abi.Null
	}
	m := object.NewModule(def.Name, def.Doc)
	for _, md := range def.Methods {
		fn := s.moduleMethod(md, m)
		m.Dict.SetStr(md.Name, fn)
		object.Decref(fn)
	}
	s.logger.Debug("module created", "module", def.Name, "methods", len(def.Methods))
	return s.wrap(m, "ModuleCreate")
}

// moduleMethod binds md to m. The module is not referenced by the function
// to keep module dicts acyclic.
func (s *state) moduleMethod(md abi.MethodDef, m *object.Module) *object.Function {
	return object.NewFunction(md.Name, md.Doc, func(_ object.Object, args []object.Object, kw *object.Dict) (object.Object, error) {
		return s.invoke(md, m, args, kw)
	})
}

// typeMethod is looked up through the type and bound to the instance by
// GetAttr. Called unbound, the first argument is self.
func (s *state) typeMethod(md abi.MethodDef) *object.Function {
	return object.NewFunction(md.Name, md.Doc, func(self object.Object, args []object.Object, kw *object.Dict) (object.Object, error) {
		if self == nil {
			if len(args) == 0 {
				return nil, object.Errorf(object.TypeErrorType, "descriptor '%s' needs an argument", md.Name)
			}
			self, args = args[0], args[1:]
		}
		return s.invoke(md, self, args, kw)
	})
}

// invoke checks arity for md's calling convention and calls it through the
// trampoline.
func (s *state) invoke(md abi.MethodDef, self object.Object, args []object.Object, kw *object.Dict) (object.Object, error) {
	switch md.Signature {
	case abi.SigNoArgs:
		if len(args) != 0 {
			return nil, object.Errorf(object.TypeErrorType, "%s() takes no arguments (%d given)", md.Name, len(args))
		}
	case abi.SigO:
		if len(args) != 1 {
			return nil, object.Errorf(object.TypeErrorType, "%s() takes exactly one argument (%d given)", md.Name, len(args))
		}
	}
	ca := &abi.CallArgs{Self: self, Args: toAny(args)}
	if kw != nil && kw.Len() > 0 {
		if md.Signature != abi.SigKeywords {
			return nil, object.Errorf(object.TypeErrorType, "%s() takes no keyword arguments", md.Name)
		}
		ca.Kwargs = kw
	}
	s.ctx.CallRealFunctionFromTrampoline(s.ctx, md.Signature, md.Impl, ca)
	return s.collect(ca)
}

// collect turns a finished CallArgs into a Go result.
func (s *state) collect(ca *abi.CallArgs) (object.Object, error) {
	if ca.Status != 0 {
		return nil, s.takePending()
	}
	return ca.Result.(object.Object), nil
}

func toAny(objs []object.Object) []any {
	out := make([]any, len(objs))
	for i, o := range objs {
		out[i] = o
	}
	return out
}

// unarySlotFor adapts an extension unary slot to the object model.
func (s *state) unarySlotFor(impl any) object.UnarySlot {
	return func(o object.Object) (object.Object, error) {
		ca := &abi.CallArgs{Args: []any{o}}
		s.ctx.CallRealFunctionFromTrampoline(s.ctx, abi.SigUnary, impl, ca)
		return s.collect(ca)
	}
}

func (s *state) binarySlotFor(impl any) object.BinarySlot {
	return func(a, b object.Object) (object.Object, error) {
		ca := &abi.CallArgs{Args: []any{a, b}}
		s.ctx.CallRealFunctionFromTrampoline(s.ctx, abi.SigBinary, impl, ca)
		return s.collect(ca)
	}
}

func (s *state) newSlotFor(impl any) func(t *object.Type, args []object.Object, kw *object.Dict) (object.Object, error) {
	return func(t *object.Type, args []object.Object, kw *object.Dict) (object.Object, error) {
		ca := &abi.CallArgs{Self: t, Args: toAny(args)}
		if kw != nil && kw.Len() > 0 {
			ca.Kwargs = kw
		}
		s.ctx.CallRealFunctionFromTrampoline(s.ctx, abi.SigNew, impl, ca)
		return s.collect(ca)
	}
}

// typeFromSpec creates a heap type. Invalid specs raise TypeError, except a
// FlagHaveGC type without traverse, which raises ValueError.
func typeFromSpec(ctx *abi.Context, spec *abi.TypeSpec) abi.Handle {
	s := stateOf(ctx, "TypeFromSpec")
	if err := validation.ValidateTypeSpec(spec); err != nil {
		typ := object.TypeErrorType
		if stderrors.Is(err, validation.ErrMissingTraverse) {
			typ = object.ValueErrorType
		}
		s.setPending(object.NewException(typ, err.Error()))
		return abi.Null
	}

	dot := strings.LastIndexByte(spec.Name, '.')
	t := object.NewType(spec.Name[:dot], spec.Name[dot+1:], spec.Doc, nil)
	t.NewPayload = spec.NewData
	t.Subclassable = spec.Flags&abi.FlagBaseType != 0

	info := &typeInfo{haveGC: spec.Flags&abi.FlagHaveGC != 0}
	for _, sd := range spec.Slots {
		switch sd.Slot {
		case abi.SlotNew:
			t.Slots.New = s.newSlotFor(sd.Impl)
		case abi.SlotDestroy:
			info.destroy, _ = abi.AsDestroy(sd.Impl)
		case abi.SlotTraverse:
			info.traverse, _ = abi.AsTraverse(sd.Impl)
		case abi.SlotRepr:
			t.Slots.Repr = s.unarySlotFor(sd.Impl)
		case abi.SlotStr:
			t.Slots.Str = s.unarySlotFor(sd.Impl)
		case abi.SlotNegative:
			t.Slots.Negative = s.unarySlotFor(sd.Impl)
		case abi.SlotAdd:
			t.Slots.Add = s.binarySlotFor(sd.Impl)
		case abi.SlotSubtract:
			t.Slots.Subtract = s.binarySlotFor(sd.Impl)
		case abi.SlotMultiply:
			t.Slots.Multiply = s.binarySlotFor(sd.Impl)
		}
	}
	t.Extra = info
	t.Slots.Finalize = s.finalizer(info)

	for _, md := range spec.Methods {
		fn := s.typeMethod(md)
		t.Dict.SetStr(md.Name, fn)
		object.Decref(fn)
	}
	s.logger.Debug("type created", "type", spec.Name, "slots", len(spec.Slots), "methods", len(spec.Methods))
	return s.wrap(t, "TypeFromSpec")
}

// finalizer routes instance deallocation through the dealloc bridge. Once the
// context is closed only the payload is dropped.
func (s *state) finalizer(info *typeInfo) func(*object.Instance) {
	return func(inst *object.Instance) {
		if s.closed {
			inst.Payload = nil
			return
		}
		s.ctx.CallDestroyAndThenDealloc(s.ctx, info.destroy, inst)
	}
}

// extensionType resolves cls to a type created by TypeFromSpec.
func (s *state) extensionType(cls abi.Handle, op string) (*object.Type, bool) {
	o := s.get(cls, op)
	t, ok := o.(*object.Type)
	if !ok {
		s.raise(object.Errorf(object.TypeErrorType, "%s: expected a type, got '%s'", op, o.Type().Name))
		return nil, false
	}
	if t.IsBuiltin() {
		s.raise(object.Errorf(object.TypeErrorType, "cannot create '%s' instances", t.Name))
		return nil, false
	}
	return t, true
}

// typeGenericNew allocates an instance of cls, ignoring args and kw.
func typeGenericNew(ctx *abi.Context, cls abi.Handle, _ []abi.Handle, _ abi.Handle) abi.Handle {
	s := stateOf(ctx, "TypeGenericNew")
	t, ok := s.extensionType(cls, "TypeGenericNew")
	if !ok {
		return abi.Null
	}
	return s.wrap(object.NewInstance(t), "TypeGenericNew")
}

func newInstance(ctx *abi.Context, cls abi.Handle) (abi.Handle, any) {
	s := stateOf(ctx, "New")
	t, ok := s.extensionType(cls, "New")
	if !ok {
		return abi.Null, nil
	}
	inst := object.NewInstance(t)
	payload := inst.Payload
	h := s.wrap(inst, "New")
	if h == abi.Null {
		return abi.Null, nil
	}
	return h, payload
}

// cast returns the payload of an extension instance.
func cast(ctx *abi.Context, h abi.Handle) any {
	s := stateOf(ctx, "Cast")
	inst, ok := s.get(h, "Cast").(*object.Instance)
	if !ok {
		panic(errors.Violation("Cast", uint64(h), "not an extension instance"))
	}
	return inst.Payload
}
