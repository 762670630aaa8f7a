package object

import (
	"fmt"
	"strings"
)

// Exception is an instance of an exception type. It doubles as the Go error
// returned by every failing operation of this package.
type Exception struct {
	Header
	typ  *Type
	Args []Object
}

// Type implements Object.
func (e *Exception) Type() *Type { return e.typ }

// Error implements error.
func (e *Exception) Error() string {
	msg := e.Message()
	if msg == "" {
		return e.typ.Name
	}
	return e.typ.Name + ": " + msg
}

// Message renders the arguments the way str(exc) does.
func (e *Exception) Message() string {
	switch len(e.Args) {
	case 0:
		return ""
	case 1:
		if e.typ.IsSubtype(KeyErrorType) {
			return reprString(e.Args[0])
		}
		return strString(e.Args[0])
	default:
		return reprString(&Tuple{Items: e.Args})
	}
}

// Matches reports whether e is an instance of t or of one of its subtypes.
func (e *Exception) Matches(t *Type) bool {
	return e.typ.IsSubtype(t)
}

// NewException builds an exception of type t with a single message argument.
func NewException(t *Type, msg string) *Exception {
	Incref(t)
	return &Exception{Header: fresh(), typ: t, Args: []Object{NewStr(msg)}}
}

// NewExceptionArgs builds an exception of type t with the given arguments.
func NewExceptionArgs(t *Type, args []Object) *Exception {
	Incref(t)
	return &Exception{Header: fresh(), typ: t, Args: increfItems(args)}
}

// IsExceptionType reports whether t derives from Exception.
func IsExceptionType(t *Type) bool {
	return t.IsSubtype(ExceptionType)
}

// Errorf returns an exception of type t with a formatted message.
func Errorf(t *Type, format string, args ...any) error {
	return NewException(t, fmt.Sprintf(format, args...))
}

// AsException converts an arbitrary error into an exception. Errors that are
// not already exceptions become SystemError.
func AsException(err error) *Exception {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Exception); ok {
		return e
	}
	return NewException(SystemErrorType, err.Error())
}

func typeError(format string, args ...any) error {
	return Errorf(TypeErrorType, format, args...)
}

func valueError(format string, args ...any) error {
	return Errorf(ValueErrorType, format, args...)
}

func overflowError(format string, args ...any) error {
	return Errorf(OverflowErrorType, format, args...)
}

func zeroDivision(msg string) error {
	return NewException(ZeroDivisionErrorType, msg)
}

func keyError(key Object) error {
	return NewExceptionArgs(KeyErrorType, []Object{key})
}

func exceptionRepr(e *Exception) string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = reprString(a)
	}
	return e.typ.Name + "(" + strings.Join(parts, ", ") + ")"
}
