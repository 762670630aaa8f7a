package host

import (
	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/domain/object"
	"github.com/reglet-dev/reglet-abi/internal/handles"
)

// builder collects the items of a list or tuple under construction. Each set
// slot holds its own reference.
type builder struct {
	items []object.Object
}

func (b *builder) release() {
	items := b.items
	b.items = nil
	for _, it := range items {
		if it != nil {
			object.Decref(it)
		}
	}
}

func (s *state) builderNew(kind handles.Kind, size abi.Ssize, op string) uint64 {
	if size < 0 {
		s.setPending(object.NewException(object.SystemErrorType, "negative builder size"))
		return 0
	}
	if size > abi.Ssize(s.table.Limit()) {
		s.setNoMemory()
		return 0
	}
	h, err := s.table.Alloc(kind, &builder{items: make([]object.Object, size)}, op)
	if err != nil {
		s.setNoMemory()
		return 0
	}
	return h
}

// builderSet stores a new reference to the object behind h at idx. The
// caller keeps its own handle.
func (s *state) builderSet(kind handles.Kind, b uint64, idx abi.Ssize, h abi.Handle, op string) {
	bl := s.table.Get(b, kind, op).(*builder)
	if idx < 0 || idx >= abi.Ssize(len(bl.items)) {
		panic(errors.Violation(op, b, "index %d out of range for size %d", idx, len(bl.items)))
	}
	o := object.Incref(s.get(h, op))
	if old := bl.items[idx]; old != nil {
		object.Decref(old)
	}
	bl.items[idx] = o
}

// builderBuild consumes the builder. Every slot must have been set; otherwise
// nothing is produced and SystemError is raised.
func (s *state) builderBuild(kind handles.Kind, b uint64, op string) ([]object.Object, bool) {
	v, _ := s.table.Release(b, kind, op)
	bl := v.(*builder)
	for i, it := range bl.items {
		if it == nil {
			bl.release()
			s.raise(object.Errorf(object.SystemErrorType, "builder item %d was never set", i))
			return nil, false
		}
	}
	items := bl.items
	bl.items = nil
	return items, true
}

func (s *state) builderCancel(kind handles.Kind, b uint64, op string) {
	v, _ := s.table.Release(b, kind, op)
	v.(*builder).release()
}

func listBuilderNew(ctx *abi.Context, size abi.Ssize) abi.ListBuilder {
	return abi.ListBuilder(stateOf(ctx, "ListBuilderNew").builderNew(handles.KindListBuilder, size, "ListBuilderNew"))
}

func listBuilderSet(ctx *abi.Context, b abi.ListBuilder, idx abi.Ssize, h abi.Handle) {
	stateOf(ctx, "ListBuilderSet").builderSet(handles.KindListBuilder, uint64(b), idx, h, "ListBuilderSet")
}

func listBuilderBuild(ctx *abi.Context, b abi.ListBuilder) abi.Handle {
	s := stateOf(ctx, "ListBuilderBuild")
	items, ok := s.builderBuild(handles.KindListBuilder, uint64(b), "ListBuilderBuild")
	if !ok {
		return abi.Null
	}
	return s.wrap(object.ListFromOwned(items), "ListBuilderBuild")
}

func listBuilderCancel(ctx *abi.Context, b abi.ListBuilder) {
	stateOf(ctx, "ListBuilderCancel").builderCancel(handles.KindListBuilder, uint64(b), "ListBuilderCancel")
}

func tupleBuilderNew(ctx *abi.Context, size abi.Ssize) abi.TupleBuilder {
	return abi.TupleBuilder(stateOf(ctx, "TupleBuilderNew").builderNew(handles.KindTupleBuilder, size, "TupleBuilderNew"))
}

func tupleBuilderSet(ctx *abi.Context, b abi.TupleBuilder, idx abi.Ssize, h abi.Handle) {
	stateOf(ctx, "TupleBuilderSet").builderSet(handles.KindTupleBuilder, uint64(b), idx, h, "TupleBuilderSet")
}

func tupleBuilderBuild(ctx *abi.Context, b abi.TupleBuilder) abi.Handle {
	s := stateOf(ctx, "TupleBuilderBuild")
	items, ok := s.builderBuild(handles.KindTupleBuilder, uint64(b), "TupleBuilderBuild")
	if !ok {
		return abi.Null
	}
	return s.wrap(object.TupleFromOwned(items), "TupleBuilderBuild")
}

func tupleBuilderCancel(ctx *abi.Context, b abi.TupleBuilder) {
	stateOf(ctx, "TupleBuilderCancel").builderCancel(handles.KindTupleBuilder, uint64(b), "TupleBuilderCancel")
}
