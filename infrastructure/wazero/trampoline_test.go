package wazero_test

import (
	"context"
	"testing"

	"github.com/reglet-dev/reglet-abi/abi"
	abiwazero "github.com/reglet-dev/reglet-abi/infrastructure/wazero"
	"github.com/reglet-dev/reglet-abi/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestMethod_NoArgs(t *testing.T) {
	bg := context.Background()
	ctx := testutil.NewContext(t)
	mod := instantiate(t, newRuntime(t, ctx), "answer", testutil.CallModule("LongFromLong", 42))

	answer, err := abiwazero.GuestMethod(bg, mod, "answer")
	require.NoError(t, err)

	h := answer(ctx, ctx.None, nil)
	require.False(t, h.IsNull())
	assert.Equal(t, int64(42), ctx.LongAsLong(ctx, h))
	ctx.Close(ctx, h)

	arg := ctx.LongFromLong(ctx, 1)
	defer ctx.Close(ctx, arg)
	assert.True(t, answer(ctx, ctx.None, []abi.Handle{arg}).IsNull())
	msg := testutil.RequirePending(t, ctx, ctx.TypeError)
	assert.Contains(t, msg, "answer() takes no arguments (1 given)")
}

func TestGuestMethod_VarArgs(t *testing.T) {
	bg := context.Background()
	ctx := testutil.NewContext(t)
	mod := instantiate(t, newRuntime(t, ctx), "first", testutil.FirstModule())

	first, err := abiwazero.GuestMethod(bg, mod, "first")
	require.NoError(t, err)

	arg := ctx.LongFromLong(ctx, 7)
	defer ctx.Close(ctx, arg)

	got := first(ctx, ctx.None, []abi.Handle{arg})
	require.False(t, got.IsNull())
	assert.Equal(t, 1, ctx.Is(ctx, got, arg))
	ctx.Close(ctx, got)
}

func TestGuestMethod_BindErrors(t *testing.T) {
	bg := context.Background()
	ctx := testutil.NewContext(t)
	mod := instantiate(t, newRuntime(t, ctx), "first", testutil.FirstModule())

	tests := []struct {
		export  string
		wantErr string
	}{
		{export: "missing", wantErr: `has no export "missing"`},
		{export: "allocate", wantErr: "want () -> i64 or (i64, i64) -> i64"},
	}

	for _, tt := range tests {
		t.Run(tt.export, func(t *testing.T) {
			_, err := abiwazero.GuestMethod(bg, mod, tt.export)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestGuestMethod_TrapRaisesSystemError(t *testing.T) {
	bg := context.Background()
	ctx := testutil.NewContext(t)
	// The module has no memory, so the string argument cannot be read.
	mod := instantiate(t, newRuntime(t, ctx), "bad", testutil.CallModule("UnicodeFromString", 5))

	bad, err := abiwazero.GuestMethod(bg, mod, "answer")
	require.NoError(t, err)

	assert.True(t, bad(ctx, ctx.None, nil).IsNull())
	msg := testutil.RequirePending(t, ctx, ctx.SystemError)
	assert.Contains(t, msg, "wasm export answer trapped")
	assert.Contains(t, msg, "guest memory")
}

func TestGuestMethod_ViolationPropagates(t *testing.T) {
	bg := context.Background()
	ctx := testutil.NewContext(t)
	mod := instantiate(t, newRuntime(t, ctx), "dup-null", testutil.CallModule("Dup", 0))

	dupNull, err := abiwazero.GuestMethod(bg, mod, "answer")
	require.NoError(t, err)

	cv := testutil.RequireViolation(t, func() { dupNull(ctx, ctx.None, nil) })
	assert.Equal(t, "Dup", cv.Op)
}

func TestGuestMethod_ReleasesArgBuffer(t *testing.T) {
	bg := context.Background()
	ctx := testutil.NewContext(t)
	mod := instantiate(t, newRuntime(t, ctx), "first", testutil.FirstModule())
	outstanding := mod.ExportedGlobal("outstanding")
	require.NotNil(t, outstanding)

	first, err := abiwazero.GuestMethod(bg, mod, "first")
	require.NoError(t, err)

	arg := ctx.LongFromLong(ctx, 7)
	defer ctx.Close(ctx, arg)

	for i := 0; i < 100; i++ {
		got := first(ctx, ctx.None, []abi.Handle{arg})
		require.False(t, got.IsNull())
		ctx.Close(ctx, got)
	}
	assert.Equal(t, uint64(0), outstanding.Get())

	// Dup(Null) aborts the call; the buffer is still handed back.
	testutil.RequireViolation(t, func() { first(ctx, ctx.None, []abi.Handle{abi.Null}) })
	assert.Equal(t, uint64(0), outstanding.Get())
}
