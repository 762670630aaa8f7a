package ext

import "github.com/reglet-dev/reglet-abi/abi"

// Track runs fn with a fresh tracker and closes every handle fn added to
// it once fn returns, whether or not fn succeeded. Handles that must
// outlive the call are not added, or are Dup'ed into the result.
func Track(ctx *abi.Context, hint abi.Ssize, fn func(t abi.Tracker) abi.Handle) abi.Handle {
	t := ctx.TrackerNew(ctx, hint)
	if t == 0 {
		return abi.Null
	}
	defer ctx.TrackerClose(ctx, t)
	return fn(t)
}

// BuildList builds a list of n items produced by item. The list appears
// only if every item succeeds; item returning Null cancels the builder and
// BuildList returns Null with the item's error pending.
func BuildList(ctx *abi.Context, n int, item func(i int) abi.Handle) abi.Handle {
	b := ctx.ListBuilderNew(ctx, abi.Ssize(n))
	if b == 0 {
		return abi.Null
	}
	for i := 0; i < n; i++ {
		h := item(i)
		if h.IsNull() {
			ctx.ListBuilderCancel(ctx, b)
			return abi.Null
		}
		ctx.ListBuilderSet(ctx, b, abi.Ssize(i), h)
		ctx.Close(ctx, h)
	}
	return ctx.ListBuilderBuild(ctx, b)
}

// BuildTuple is BuildList for tuples.
func BuildTuple(ctx *abi.Context, n int, item func(i int) abi.Handle) abi.Handle {
	b := ctx.TupleBuilderNew(ctx, abi.Ssize(n))
	if b == 0 {
		return abi.Null
	}
	for i := 0; i < n; i++ {
		h := item(i)
		if h.IsNull() {
			ctx.TupleBuilderCancel(ctx, b)
			return abi.Null
		}
		ctx.TupleBuilderSet(ctx, b, abi.Ssize(i), h)
		ctx.Close(ctx, h)
	}
	return ctx.TupleBuilderBuild(ctx, b)
}
