// Package testutil provides test helpers shared by the packages that drive a
// host context: leak-checked contexts, contract violation assertions and an
// in-memory guest.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/reglet-dev/reglet-abi/abi"
	abierrors "github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewContext returns a debug context. Cleanup fails the test if any handle
// is still open.
func NewContext(t *testing.T, opts ...host.ContextOption) *abi.Context {
	t.Helper()
	opts = append([]host.ContextOption{host.WithDebug(true)}, opts...)
	ctx, err := host.NewContext(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, host.CloseContext(ctx), "context leaked handles")
	})
	return ctx
}

// RequireViolation runs fn and requires it to panic with a contract
// violation.
func RequireViolation(t *testing.T, fn func()) *abierrors.ContractViolation {
	t.Helper()
	var got any
	func() {
		defer func() { got = recover() }()
		fn()
	}()
	cv, ok := got.(*abierrors.ContractViolation)
	require.Truef(t, ok, "expected *ContractViolation, got %v", got)
	return cv
}

// RequirePending requires an exception matching typ to be pending, clears
// it and returns its message.
func RequirePending(t *testing.T, ctx *abi.Context, typ abi.Handle) string {
	t.Helper()
	require.Equal(t, 1, ctx.ErrOccurred(ctx), "no error pending")
	require.Equal(t, 1, ctx.ErrExceptionMatches(ctx, typ), "pending error has the wrong type")
	return host.TakeError(ctx).Error()
}

// AssertNoPending asserts that no exception is pending. A pending one is
// reported and cleared.
func AssertNoPending(t *testing.T, ctx *abi.Context) bool {
	t.Helper()
	if ctx.ErrOccurred(ctx) == 0 {
		return true
	}
	return assert.Fail(t, "unexpected pending error", host.TakeError(ctx).Error())
}

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}
