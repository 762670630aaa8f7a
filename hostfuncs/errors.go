package hostfuncs

import (
	"fmt"

	"github.com/reglet-dev/reglet-abi/domain/entities"
)

// NotFoundError is returned by Invoke for an unknown import name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "unknown host function: " + e.Name
}

// ToErrorDetail implements errors.DetailedError.
func (e *NotFoundError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorValidation, Code: "not_found"}
}

// GuestMemoryError reports a pointer or length the guest passed that does
// not describe readable memory.
type GuestMemoryError struct {
	Function string
	Reason   string
	Ptr      uint32
	Length   uint32
}

func (e *GuestMemoryError) Error() string {
	return fmt.Sprintf("%s: guest memory [%#x, +%d) %s", e.Function, e.Ptr, e.Length, e.Reason)
}

// ToErrorDetail implements errors.DetailedError.
func (e *GuestMemoryError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    entities.ErrorValidation,
		Code:    "guest_memory",
		Details: map[string]any{"ptr": e.Ptr, "length": e.Length},
	}
}

// PanicError wraps a panic recovered by PanicRecoveryMiddleware.
type PanicError struct {
	Value    any
	Function string
	Stack    []byte
}

func (e *PanicError) Error() string {
	var msg string
	switch v := e.Value.(type) {
	case error:
		msg = v.Error()
	case string:
		msg = v
	default:
		msg = fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("%s: panic: %s", e.Function, msg)
}

// Unwrap exposes a panicked error value.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// ToErrorDetail implements errors.DetailedError.
func (e *PanicError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorPanic, Code: "host_panic", Stack: e.Stack}
}
