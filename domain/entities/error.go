package entities

import "fmt"

// Error types carried by ErrorDetail.Type.
const (
	ErrorContract   = "contract"   // handle protocol misuse; Code is the slot
	ErrorFatal      = "fatal"      // FatalError raised by an extension
	ErrorVersion    = "version"    // context version below an extension's minimum
	ErrorValidation = "validation" // rejected spec, manifest, schema or guest pointer
	ErrorLoad       = "load"       // extension load failure; Code is the stage
	ErrorConfig     = "config"     // host configuration; Code is the field
	ErrorPanic      = "panic"      // host function panic recovered at the wasm boundary
	ErrorInternal   = "internal"
)

// ErrorDetail is the structured form of a host error, as printed by
// abi-inspect -json.
type ErrorDetail struct {
	// Wrapped is the detail of the underlying cause, if it has one.
	Wrapped *ErrorDetail `json:"wrapped,omitempty"`

	Details map[string]any `json:"details,omitempty"`

	Message string `json:"message"`

	// Type is one of the Error* constants.
	Type string `json:"type"`

	Code string `json:"code"`

	// Stack is the goroutine stack of a recovered host panic.
	Stack []byte `json:"stack,omitempty"`

	// Handle is the offending handle of a contract violation.
	Handle uint64 `json:"handle,omitempty"`
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != ErrorInternal {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped.Error())
	}
	return msg
}
