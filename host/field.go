package host

import (
	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/domain/object"
	"github.com/reglet-dev/reglet-abi/internal/handles"
)

// fieldEntry is the value stored in the field table. It holds one reference
// to obj on behalf of owner.
type fieldEntry struct {
	owner *object.Instance
	obj   object.Object
}

func (s *state) fieldOwner(owner abi.Handle, op string) *object.Instance {
	inst, ok := s.get(owner, op).(*object.Instance)
	if !ok {
		panic(errors.Violation(op, uint64(owner), "field owner must be an extension instance"))
	}
	return inst
}

// dropField frees one field token and the reference it held.
func (s *state) dropField(token uint64, op string) {
	v, _ := s.fields.Release(token, handles.KindField, op)
	fe := v.(fieldEntry)
	if set := s.owners[fe.owner]; set != nil {
		delete(set, token)
		if len(set) == 0 {
			delete(s.owners, fe.owner)
		}
	}
	object.Decref(fe.obj)
}

// fieldStore makes *f refer to the object behind h, releasing whatever it
// held before. Storing Null empties the field.
func fieldStore(ctx *abi.Context, owner abi.Handle, f *abi.Field, h abi.Handle) {
	s := stateOf(ctx, "FieldStore")
	if f == nil {
		panic(errors.Violation("FieldStore", uint64(owner), "nil field"))
	}
	inst := s.fieldOwner(owner, "FieldStore")

	var obj object.Object
	if h != abi.Null {
		obj = object.Incref(s.get(h, "FieldStore"))
	}
	old := *f
	*f = 0
	if !old.IsEmpty() {
		s.dropField(uint64(old), "FieldStore")
	}
	if obj == nil {
		return
	}

	token, err := s.fields.Alloc(handles.KindField, fieldEntry{owner: inst, obj: obj}, "FieldStore")
	if err != nil {
		object.Decref(obj)
		s.setNoMemory()
		return
	}
	set := s.owners[inst]
	if set == nil {
		set = make(map[uint64]struct{})
		s.owners[inst] = set
	}
	set[token] = struct{}{}
	*f = abi.Field(token)
}

// fieldLoad returns a new handle to the object held by f. An empty field
// yields Null without raising.
func fieldLoad(ctx *abi.Context, owner abi.Handle, f abi.Field) abi.Handle {
	s := stateOf(ctx, "FieldLoad")
	inst := s.fieldOwner(owner, "FieldLoad")
	if f.IsEmpty() {
		return abi.Null
	}
	fe := s.fields.Get(uint64(f), handles.KindField, "FieldLoad").(fieldEntry)
	if fe.owner != inst {
		panic(errors.Violation("FieldLoad", uint64(f), "field belongs to another instance"))
	}
	return s.wrap(object.Incref(fe.obj), "FieldLoad")
}

// releaseFields frees every field owned by inst: first those reported by
// traverse, then any the payload no longer points at.
func (s *state) releaseFields(inst *object.Instance, traverse abi.TraverseFunc, data any) {
	if traverse != nil {
		traverse(data, func(f *abi.Field) int {
			if f == nil || f.IsEmpty() {
				return 0
			}
			token := uint64(*f)
			*f = 0
			if s.fields.Valid(token) {
				s.dropField(token, "Dealloc")
			}
			return 0
		})
	}
	for token := range s.owners[inst] {
		if s.fields.Valid(token) {
			s.dropField(token, "Dealloc")
		}
	}
	delete(s.owners, inst)
}
