package host

import (
	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/domain/object"
)

// exceptionType resolves typ or raises SystemError when it is not an
// exception class.
func (s *state) exceptionType(typ abi.Handle, op string) (*object.Type, bool) {
	o := s.get(typ, op)
	t, ok := o.(*object.Type)
	if !ok || !object.IsExceptionType(t) {
		name := o.Type().Name
		if ok {
			name = t.Name
		}
		s.setPending(object.NewException(object.SystemErrorType,
			"exception "+name+" not a BaseException subclass"))
		return nil, false
	}
	return t, true
}

func errSetString(ctx *abi.Context, typ abi.Handle, msg string) {
	s := stateOf(ctx, "ErrSetString")
	t, ok := s.exceptionType(typ, "ErrSetString")
	if !ok {
		return
	}
	s.setPending(object.NewException(t, msg))
}

// errSetObject raises typ with value. An instance of typ is raised as is, a
// tuple becomes the argument list and anything else the single argument.
func errSetObject(ctx *abi.Context, typ, value abi.Handle) {
	s := stateOf(ctx, "ErrSetObject")
	t, ok := s.exceptionType(typ, "ErrSetObject")
	if !ok {
		return
	}
	v := s.get(value, "ErrSetObject")
	switch ev := v.(type) {
	case *object.Exception:
		if ev.Matches(t) {
			s.setPending(object.Incref(ev).(*object.Exception))
			return
		}
	case *object.Tuple:
		s.setPending(object.NewExceptionArgs(t, ev.Items))
		return
	}
	if v == object.None {
		s.setPending(object.NewExceptionArgs(t, nil))
		return
	}
	s.setPending(object.NewExceptionArgs(t, []object.Object{v}))
}

func errOccurred(ctx *abi.Context) int {
	return boolInt(stateOf(ctx, "ErrOccurred").pending != nil)
}

// errNoMemory raises the preallocated MemoryError.
func errNoMemory(ctx *abi.Context) abi.Handle {
	stateOf(ctx, "ErrNoMemory").setNoMemory()
	return abi.Null
}

func errClear(ctx *abi.Context) {
	stateOf(ctx, "ErrClear").clearPending()
}

func errExceptionMatches(ctx *abi.Context, typ abi.Handle) int {
	s := stateOf(ctx, "ErrExceptionMatches")
	if s.pending == nil {
		return 0
	}
	t, ok := s.get(typ, "ErrExceptionMatches").(*object.Type)
	if !ok {
		return 0
	}
	return boolInt(s.pending.Matches(t))
}

// fatalError logs msg, runs the fatal hook and never returns.
func fatalError(ctx *abi.Context, msg string) {
	s := stateOf(ctx, "FatalError")
	s.logger.Error("fatal error", "message", msg)
	s.fatal(msg)
	panic(&errors.FatalError{Message: msg, ContextID: ctx.ID})
}
