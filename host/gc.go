package host

import (
	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/domain/object"
	"github.com/reglet-dev/reglet-abi/internal/handles"
)

// trackedType returns the type info of h when h is an instance of a type
// created with FlagHaveGC.
func (s *state) trackedType(h abi.Handle, op string) (*object.Instance, *typeInfo) {
	inst, ok := s.get(h, op).(*object.Instance)
	if !ok {
		return nil, nil
	}
	info, _ := inst.Type().Extra.(*typeInfo)
	if info == nil || !info.haveGC {
		return nil, nil
	}
	return inst, info
}

// IsTracked reports whether h is an instance of an extension type declared
// with FlagHaveGC. Builtin objects and plain extension instances are not
// tracked.
func IsTracked(ctx *abi.Context, h abi.Handle) bool {
	inst, _ := stateOf(ctx, "IsTracked").trackedType(h, "IsTracked")
	return inst != nil
}

// Referents returns new handles to the objects held in the Fields of a
// tracked instance, in the order its traverse slot visits them. Empty fields
// are skipped. Untracked objects have no referents. The caller closes every
// returned handle. On handle exhaustion nothing is returned and MemoryError
// is pending.
func Referents(ctx *abi.Context, h abi.Handle) []abi.Handle {
	s := stateOf(ctx, "Referents")
	inst, info := s.trackedType(h, "Referents")
	if inst == nil {
		return nil
	}

	var out []abi.Handle
	failed := false
	visit := func(f *abi.Field) int {
		if f == nil || f.IsEmpty() {
			return 0
		}
		fe := s.fields.Get(uint64(*f), handles.KindField, "Referents").(fieldEntry)
		if fe.owner != inst {
			panic(errors.Violation("Referents", uint64(*f), "field belongs to another instance"))
		}
		r := s.wrap(object.Incref(fe.obj), "Referents")
		if r == abi.Null {
			failed = true
			return -1
		}
		out = append(out, r)
		return 0
	}
	ctx.CallRealFunctionFromTrampoline(ctx, abi.SigTraverse, info.traverse,
		&abi.CallArgs{Data: inst.Payload, Visit: visit})

	if failed {
		for _, r := range out {
			closeHandle(ctx, r)
		}
		return nil
	}
	return out
}
