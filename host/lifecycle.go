package host

import (
	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/object"
	"github.com/reglet-dev/reglet-abi/internal/handles"
)

// dup returns an independent handle to the object behind h. Duplicating a
// constant yields an ordinary handle that must be closed.
func dup(ctx *abi.Context, h abi.Handle) abi.Handle {
	s := stateOf(ctx, "Dup")
	return s.wrap(object.Incref(s.get(h, "Dup")), "Dup")
}

// closeHandle releases h. Dropping the last reference to an extension
// instance runs its destructor, which may re-enter ctx.
func closeHandle(ctx *abi.Context, h abi.Handle) {
	s := stateOf(ctx, "Close")
	v, immortal := s.table.Release(uint64(h), handles.KindObject, "Close")
	if immortal {
		return
	}
	object.Decref(v.(object.Object))
}
