// Package abi defines the binary-stable surface shared by the host runtime and
// natively compiled extensions.
//
// Extensions never see host objects. They hold opaque Handle values and act on
// them through the function-valued slots of a Context, which the host builds
// once per execution context and hands over at load time. The Context is a
// flat, append-only struct: Version is always the first field, and a field
// present at version N keeps its offset and meaning at every later version.
//
// # Ownership
//
// Every Handle returned by a slot is owned by the caller and must be released
// exactly once with Close, handed to a Tracker, or consumed by the protocol
// that documents it. Constant handles (ctx.None, ctx.True, ctx.TypeError, ...)
// are owned by the context and are never closed.
//
//	h := ctx.LongFromLong(ctx, 42)
//	defer ctx.Close(ctx, h)
//	r := ctx.Add(ctx, h, h)
//	if r == abi.Null {
//	    return abi.Null // error is pending on ctx
//	}
//
// # Builders and trackers
//
// ListBuilder and TupleBuilder stage an aggregate without exposing it before
// it is complete. Tracker owns a growable group of handles and releases all of
// them together, which keeps error paths free of per-branch cleanup.
//
// # Errors
//
// Host exceptions never unwind through extension code. A failing slot records
// a pending exception on the context and returns a sentinel (Null, -1, -1.0).
// Misusing the protocol (closed handles, finalized builders) is a programming
// error and panics.
package abi
