package host

import (
	"fmt"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/domain/object"
	"github.com/reglet-dev/reglet-abi/internal/handles"
)

// argHandles lends host-native values to extension code as fresh handles.
// The returned release func closes them again.
func (s *state) argHandles(vals ...any) ([]abi.Handle, func(), bool) {
	hs := make([]abi.Handle, len(vals))
	release := func() {
		for _, h := range hs {
			if h != abi.Null && s.table.Valid(uint64(h)) {
				closeHandle(s.ctx, h)
			}
		}
	}
	for i, v := range vals {
		if v == nil {
			continue
		}
		o, ok := v.(object.Object)
		if !ok {
			release()
			s.raise(object.Errorf(object.SystemErrorType, "trampoline argument %d is %T, not a host object", i, v))
			return nil, func() {}, false
		}
		h := s.wrap(object.Incref(o), "Trampoline")
		if h == abi.Null {
			release()
			return nil, func() {}, false
		}
		hs[i] = h
	}
	return hs, release, true
}

// callRealFunctionFromTrampoline calls fn with args converted to handles and
// stores the outcome in args.Result and args.Status.
func callRealFunctionFromTrampoline(ctx *abi.Context, sig abi.Signature, fn any, args *abi.CallArgs) {
	s := stateOf(ctx, "CallRealFunctionFromTrampoline")
	args.Result = nil
	args.Status = -1

	switch sig {
	case abi.SigDestroy:
		f, ok := abi.AsDestroy(fn)
		if !ok {
			s.badSignature(sig, fn)
			return
		}
		f(ctx, args.Data)
		args.Status = 0
		return
	case abi.SigTraverse:
		f, ok := abi.AsTraverse(fn)
		if !ok {
			s.badSignature(sig, fn)
			return
		}
		args.Status = f(args.Data, args.Visit)
		return
	}

	vals := make([]any, 0, len(args.Args)+2)
	vals = append(vals, args.Self, args.Kwargs)
	vals = append(vals, args.Args...)
	hs, release, ok := s.argHandles(vals...)
	if !ok {
		return
	}
	defer release()
	self, kw, argv := hs[0], hs[1], hs[2:]

	var r abi.Handle
	switch sig {
	case abi.SigNoArgs:
		f, ok := abi.AsNoArgs(fn)
		if !ok {
			s.badSignature(sig, fn)
			return
		}
		r = f(ctx, self)
	case abi.SigO:
		f, ok := abi.AsO(fn)
		if !ok || len(argv) != 1 {
			s.badSignature(sig, fn)
			return
		}
		r = f(ctx, self, argv[0])
	case abi.SigVarArgs:
		f, ok := abi.AsVarArgs(fn)
		if !ok {
			s.badSignature(sig, fn)
			return
		}
		r = f(ctx, self, argv)
	case abi.SigKeywords, abi.SigNew:
		f, ok := abi.AsKeywords(fn)
		if !ok {
			s.badSignature(sig, fn)
			return
		}
		r = f(ctx, self, argv, kw)
	case abi.SigUnary:
		f, ok := abi.AsUnary(fn)
		if !ok || len(argv) != 1 {
			s.badSignature(sig, fn)
			return
		}
		r = f(ctx, argv[0])
	case abi.SigBinary:
		f, ok := abi.AsBinary(fn)
		if !ok || len(argv) != 2 {
			s.badSignature(sig, fn)
			return
		}
		r = f(ctx, argv[0], argv[1])
	default:
		s.badSignature(sig, fn)
		return
	}

	if r == abi.Null {
		if s.pending == nil {
			s.setPending(object.NewException(object.SystemErrorType,
				fmt.Sprintf("%s function returned NULL without setting an error", sig)))
		}
		return
	}
	v, immortal := s.table.Release(uint64(r), handles.KindObject, "CallRealFunctionFromTrampoline")
	o := v.(object.Object)
	if immortal {
		object.Incref(o)
	}
	if s.pending != nil {
		object.Decref(o)
		s.setPending(object.NewException(object.SystemErrorType,
			fmt.Sprintf("%s function returned a result with an error set", sig)))
		return
	}
	args.Result = o
	args.Status = 0
}

func (s *state) badSignature(sig abi.Signature, fn any) {
	s.raise(object.Errorf(object.SystemErrorType, "function %T does not match calling convention %s", fn, sig))
}

// callDestroyAndThenDealloc runs destroy on an instance payload, releases the
// instance's fields and clears the payload. A pending error is preserved
// across the call; anything the destructor raises is reported and dropped.
func callDestroyAndThenDealloc(ctx *abi.Context, destroy abi.DestroyFunc, obj any) {
	s := stateOf(ctx, "CallDestroyAndThenDealloc")
	saved := s.pending
	s.pending = nil

	inst, _ := obj.(*object.Instance)
	data := obj
	var info *typeInfo
	if inst != nil {
		data = inst.Payload
		info, _ = inst.Type().Extra.(*typeInfo)
	}

	if destroy != nil {
		s.runDestroy(destroy, data)
	}
	if inst != nil {
		var traverse abi.TraverseFunc
		if info != nil {
			traverse = info.traverse
		}
		s.releaseFields(inst, traverse, data)
		inst.Payload = nil
	}

	s.setPending(saved)
}

func (s *state) runDestroy(destroy abi.DestroyFunc, data any) {
	defer func() {
		if r := recover(); r != nil {
			switch r.(type) {
			case *errors.ContractViolation, *errors.FatalError:
				panic(r)
			}
			s.logger.Error("exception ignored in destructor", "panic", fmt.Sprint(r))
		}
		if s.pending != nil {
			s.logger.Error("exception ignored in destructor", "error", s.pending.Error())
			s.clearPending()
		}
	}()
	ca := &abi.CallArgs{Data: data}
	s.ctx.CallRealFunctionFromTrampoline(s.ctx, abi.SigDestroy, destroy, ca)
}
