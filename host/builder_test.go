package host_test

import (
	"testing"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/object"
	"github.com/reglet-dev/reglet-abi/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ints(t *testing.T, ctx *abi.Context, vals ...int64) []abi.Handle {
	t.Helper()
	out := make([]abi.Handle, len(vals))
	for i, v := range vals {
		out[i] = ctx.LongFromLong(ctx, v)
		require.NotEqual(t, abi.Null, out[i])
	}
	return out
}

func closeAll(ctx *abi.Context, hs []abi.Handle) {
	for _, h := range hs {
		ctx.Close(ctx, h)
	}
}

func refcount(ctx *abi.Context, h abi.Handle) int64 {
	return object.Refcount(host.ObjectOf(ctx, h))
}

func TestListBuilder_Build(t *testing.T) {
	ctx := newContext(t)
	hs := ints(t, ctx, 10, 20, 30)
	defer closeAll(ctx, hs)

	b := ctx.ListBuilderNew(ctx, 3)
	require.NotZero(t, b)
	for i, h := range hs {
		ctx.ListBuilderSet(ctx, b, abi.Ssize(i), h)
	}
	r := ctx.ListBuilderBuild(ctx, b)
	require.NotEqual(t, abi.Null, r)
	defer ctx.Close(ctx, r)

	assert.Equal(t, 1, ctx.ListCheck(ctx, r))
	assert.Equal(t, abi.Ssize(3), ctx.Length(ctx, r))
	for i, h := range hs {
		item := ctx.GetItemI(ctx, r, abi.Ssize(i))
		assert.Equal(t, 1, ctx.Is(ctx, item, h), "item %d", i)
		ctx.Close(ctx, item)
	}

	requireViolation(t, func() { ctx.ListBuilderSet(ctx, b, 0, hs[0]) })
	requireViolation(t, func() { ctx.ListBuilderBuild(ctx, b) })
}

func TestTupleBuilder_Build(t *testing.T) {
	ctx := newContext(t)
	hs := ints(t, ctx, 1, 2)
	defer closeAll(ctx, hs)

	b := ctx.TupleBuilderNew(ctx, 2)
	ctx.TupleBuilderSet(ctx, b, 1, hs[1])
	ctx.TupleBuilderSet(ctx, b, 0, hs[0])
	r := ctx.TupleBuilderBuild(ctx, b)
	require.NotEqual(t, abi.Null, r)
	assert.Equal(t, "(1, 2)", reprOf(t, ctx, r))
	ctx.Close(ctx, r)

	empty := ctx.TupleBuilderBuild(ctx, ctx.TupleBuilderNew(ctx, 0))
	require.NotEqual(t, abi.Null, empty)
	assert.Equal(t, "()", reprOf(t, ctx, empty))
	ctx.Close(ctx, empty)
}

func TestBuilder_AllOrNothing(t *testing.T) {
	ctx := newContext(t)
	hs := ints(t, ctx, 1, 2)
	defer closeAll(ctx, hs)

	t.Run("list build with unset slot", func(t *testing.T) {
		b := ctx.ListBuilderNew(ctx, 3)
		ctx.ListBuilderSet(ctx, b, 0, hs[0])
		ctx.ListBuilderSet(ctx, b, 2, hs[1])
		assert.Equal(t, int64(2), refcount(ctx, hs[0]))

		r := ctx.ListBuilderBuild(ctx, b)
		assert.Equal(t, abi.Null, r)
		assert.Equal(t, 1, ctx.ErrExceptionMatches(ctx, ctx.SystemError))
		assert.Contains(t, host.TakeError(ctx).Error(), "builder item 1 was never set")

		assert.Equal(t, int64(1), refcount(ctx, hs[0]))
		assert.Equal(t, int64(1), refcount(ctx, hs[1]))
		requireViolation(t, func() { ctx.ListBuilderCancel(ctx, b) })
	})

	t.Run("tuple cancel releases every item once", func(t *testing.T) {
		b := ctx.TupleBuilderNew(ctx, 2)
		ctx.TupleBuilderSet(ctx, b, 0, hs[0])
		ctx.TupleBuilderSet(ctx, b, 1, hs[0])
		assert.Equal(t, int64(3), refcount(ctx, hs[0]))

		ctx.TupleBuilderCancel(ctx, b)
		assert.Equal(t, int64(1), refcount(ctx, hs[0]))
		assert.Equal(t, 0, ctx.ErrOccurred(ctx))
	})

	t.Run("last write wins", func(t *testing.T) {
		b := ctx.ListBuilderNew(ctx, 1)
		ctx.ListBuilderSet(ctx, b, 0, hs[0])
		ctx.ListBuilderSet(ctx, b, 0, hs[1])
		assert.Equal(t, int64(1), refcount(ctx, hs[0]))
		assert.Equal(t, int64(2), refcount(ctx, hs[1]))

		r := ctx.ListBuilderBuild(ctx, b)
		assert.Equal(t, "[2]", reprOf(t, ctx, r))
		ctx.Close(ctx, r)
		assert.Equal(t, int64(1), refcount(ctx, hs[1]))
	})
}

func TestBuilder_InvalidUse(t *testing.T) {
	ctx := newContext(t)

	assert.Zero(t, ctx.ListBuilderNew(ctx, -1))
	assert.Equal(t, 1, ctx.ErrExceptionMatches(ctx, ctx.SystemError))
	ctx.ErrClear(ctx)

	assert.Zero(t, ctx.TupleBuilderNew(ctx, -5))
	assert.Equal(t, 1, ctx.ErrOccurred(ctx))
	ctx.ErrClear(ctx)

	b := ctx.ListBuilderNew(ctx, 1)
	requireViolation(t, func() { ctx.ListBuilderSet(ctx, b, 1, ctx.None) })
	requireViolation(t, func() { ctx.ListBuilderSet(ctx, b, -1, ctx.None) })
	requireViolation(t, func() { ctx.TupleBuilderSet(ctx, abi.TupleBuilder(b), 0, ctx.None) })
	ctx.ListBuilderCancel(ctx, b)
}
