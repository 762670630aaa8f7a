// Package errors provides the typed Go errors of the ABI layer.
// All error types support error unwrapping via errors.As() and errors.Is().
//
// These are Go-level errors: configuration, loading, protocol misuse. Host
// exceptions raised by slots are not Go errors; they are pending on the
// context until cleared.
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/reglet-abi/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is implemented by error types that can convert themselves to
// a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    entities.ErrorInternal,
	}
}

// ContractViolation reports misuse of the handle protocol: a closed or
// foreign handle, a finalized builder or tracker, an out-of-range index.
// Slots panic with it; it is never returned as a recoverable error.
type ContractViolation struct {
	Op     string
	Reason string
	Handle uint64
}

func (e *ContractViolation) Error() string {
	if e.Handle != 0 {
		return fmt.Sprintf("abi contract violation in %s: %s (handle %#x)", e.Op, e.Reason, e.Handle)
	}
	return fmt.Sprintf("abi contract violation in %s: %s", e.Op, e.Reason)
}

// ToErrorDetail implements DetailedError.
func (e *ContractViolation) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorContract, Code: e.Op, Handle: e.Handle}
}

// Violation builds a ContractViolation.
func Violation(op string, h uint64, format string, args ...any) *ContractViolation {
	return &ContractViolation{Op: op, Handle: h, Reason: fmt.Sprintf(format, args...)}
}

// FatalError is raised by the FatalError slot after the fatal hook ran.
type FatalError struct {
	Message   string
	ContextID string
}

func (e *FatalError) Error() string {
	if e.ContextID != "" {
		return fmt.Sprintf("fatal error in context %s: %s", e.ContextID, e.Message)
	}
	return fmt.Sprintf("fatal error: %s", e.Message)
}

// ToErrorDetail implements DetailedError.
func (e *FatalError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorFatal, Code: "fatal"}
}

// MemoryError reports exhaustion of the handle table.
type MemoryError struct {
	Resource  string // "handles", "fields" or "contexts"
	Requested int
	Current   int
	Limit     int
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("%s allocation failed: requested %d, current %d, limit %d",
		e.Resource, e.Requested, e.Current, e.Limit)
}

// ToErrorDetail implements DetailedError.
func (e *MemoryError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorInternal, Code: "memory_limit"}
}

// VersionError reports an extension that needs more of the table than the
// context provides.
type VersionError struct {
	Extension string
	Slot      string
	Required  int
	Available int
}

func (e *VersionError) Error() string {
	if e.Slot != "" {
		return fmt.Sprintf("extension %s links against %s (ctx_version %d), context provides version %d",
			e.Extension, e.Slot, e.Required, e.Available)
	}
	return fmt.Sprintf("extension %s requires ctx_version %d, context provides version %d",
		e.Extension, e.Required, e.Available)
}

// ToErrorDetail implements DetailedError.
func (e *VersionError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    entities.ErrorVersion,
		Code:    "ctx_version",
		Details: map[string]any{"required": e.Required, "available": e.Available},
	}
}

// SpecError reports an invalid TypeSpec, ModuleDef or manifest.
type SpecError struct {
	Err  error
	Kind string // "type", "module", "manifest"
	Name string
}

func (e *SpecError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("invalid %s spec %q: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("invalid %s spec: %v", e.Kind, e.Err)
}

func (e *SpecError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SpecError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorValidation, Code: e.Kind}
}

// LeakError is returned by CloseContext in debug mode when handles were
// still open.
type LeakError struct {
	Handles []uint64
}

func (e *LeakError) Error() string {
	return fmt.Sprintf("%d handle(s) leaked at context close", len(e.Handles))
}

// ToErrorDetail implements DetailedError.
func (e *LeakError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Type:    entities.ErrorInternal,
		Code:    "handle_leak",
		Details: map[string]any{"count": len(e.Handles)},
	}
}

// LoadError reports a failure to load an extension.
type LoadError struct {
	Err       error
	Extension string
	Stage     string // "manifest", "lookup", "instantiate", "init"
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading extension %s failed at %s: %v", e.Extension, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *LoadError) ToErrorDetail() *entities.ErrorDetail {
	detail := &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorLoad, Code: e.Stage}
	var ve *VersionError
	if stdErrors.As(e.Err, &ve) {
		detail.Wrapped = ve.ToErrorDetail()
	}
	return detail
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorConfig, Code: e.Field}
}

// SchemaError represents a schema generation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorValidation, Code: "schema"}
}

// WireFormatError represents a wire format encoding/decoding error.
type WireFormatError struct {
	Err       error
	Operation string
	Type      string
}

func (e *WireFormatError) Error() string {
	return fmt.Sprintf("wire format %s failed for %s: %v", e.Operation, e.Type, e.Err)
}

func (e *WireFormatError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *WireFormatError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: entities.ErrorInternal, Code: "wire_format"}
}
