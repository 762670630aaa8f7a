// Package ext holds helpers for extension authors working against an
// *abi.Context: positional argument parsing, typed access to instance
// payloads and the tracker and builder idioms for building results.
//
// Every helper follows the slot conventions. A failure leaves an exception
// pending and is reported through the return value; misuse of a helper
// itself, such as a malformed format string, panics with
// *errors.ContractViolation.
package ext
