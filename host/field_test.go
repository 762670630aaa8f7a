package host_test

import (
	"testing"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldStoreLoad(t *testing.T) {
	ctx := newContext(t)
	var destroyed []int64

	typ := ctx.TypeFromSpec(ctx, pointSpec(&destroyed))
	require.NotEqual(t, abi.Null, typ)
	defer ctx.Close(ctx, typ)

	owner, data := ctx.New(ctx, typ)
	require.NotEqual(t, abi.Null, owner)
	p := data.(*point)

	first := ctx.UnicodeFromString(ctx, "first")
	second := ctx.UnicodeFromString(ctx, "second")

	assert.Equal(t, abi.Null, ctx.FieldLoad(ctx, owner, p.label))
	assert.Equal(t, 0, ctx.ErrOccurred(ctx))

	ctx.FieldStore(ctx, owner, &p.label, first)
	require.False(t, p.label.IsEmpty())
	assert.Equal(t, int64(2), refcount(ctx, first))

	loaded := ctx.FieldLoad(ctx, owner, p.label)
	require.NotEqual(t, abi.Null, loaded)
	assert.Equal(t, 1, ctx.Is(ctx, loaded, first))
	assert.NotEqual(t, first, loaded)
	ctx.Close(ctx, loaded)

	ctx.FieldStore(ctx, owner, &p.label, second)
	assert.Equal(t, int64(1), refcount(ctx, first))
	assert.Equal(t, int64(2), refcount(ctx, second))

	ctx.FieldStore(ctx, owner, &p.label, abi.Null)
	assert.True(t, p.label.IsEmpty())
	assert.Equal(t, int64(1), refcount(ctx, second))

	ctx.FieldStore(ctx, owner, &p.label, second)
	ctx.Close(ctx, owner)
	assert.Equal(t, int64(1), refcount(ctx, second))
	assert.Equal(t, []int64{0}, destroyed)

	ctx.Close(ctx, first)
	ctx.Close(ctx, second)
}

func TestField_ReleasedWithoutTraverse(t *testing.T) {
	ctx := newContext(t)

	type box struct{ item abi.Field }
	typ := ctx.TypeFromSpec(ctx, &abi.TypeSpec{
		Name:    "test.Box",
		NewData: func() any { return &box{} },
	})
	require.NotEqual(t, abi.Null, typ)
	defer ctx.Close(ctx, typ)

	owner, data := ctx.New(ctx, typ)
	item := ctx.UnicodeFromString(ctx, "payload")
	ctx.FieldStore(ctx, owner, &data.(*box).item, item)
	assert.Equal(t, int64(2), refcount(ctx, item))

	ctx.Close(ctx, owner)
	assert.Equal(t, int64(1), refcount(ctx, item))
	ctx.Close(ctx, item)
}

func TestField_InvalidUse(t *testing.T) {
	ctx := newContext(t)
	var destroyed []int64

	typ := ctx.TypeFromSpec(ctx, pointSpec(&destroyed))
	require.NotEqual(t, abi.Null, typ)
	defer ctx.Close(ctx, typ)

	a, da := ctx.New(ctx, typ)
	b, _ := ctx.New(ctx, typ)
	defer ctx.Close(ctx, a)
	defer ctx.Close(ctx, b)

	var f abi.Field
	requireViolation(t, func() { ctx.FieldStore(ctx, ctx.None, &f, ctx.None) })
	requireViolation(t, func() { ctx.FieldStore(ctx, a, nil, ctx.None) })

	ctx.FieldStore(ctx, a, &da.(*point).label, ctx.True)
	requireViolation(t, func() { ctx.FieldLoad(ctx, b, da.(*point).label) })
}

func TestField_CloseContextReleasesFields(t *testing.T) {
	ctx, err := host.NewContext()
	require.NoError(t, err)

	type box struct{ item abi.Field }
	typ := ctx.TypeFromSpec(ctx, &abi.TypeSpec{Name: "test.Box", NewData: func() any { return &box{} }})
	owner, data := ctx.New(ctx, typ)
	ctx.FieldStore(ctx, owner, &data.(*box).item, ctx.None)

	require.NoError(t, host.CloseContext(ctx))
}

func TestDestructor_ReentryPreservesPendingError(t *testing.T) {
	ctx := newContext(t)

	var seen []int64
	typ := ctx.TypeFromSpec(ctx, &abi.TypeSpec{
		Name:    "test.Noisy",
		NewData: func() any { return new(int64) },
		Slots: []abi.SlotDef{{
			Slot: abi.SlotDestroy,
			Impl: abi.DestroyFunc(func(ctx *abi.Context, data any) {
				seen = append(seen, int64(ctx.ErrOccurred(ctx)))
				h := ctx.LongFromLong(ctx, *data.(*int64))
				seen = append(seen, ctx.LongAsLong(ctx, h))
				ctx.Close(ctx, h)
				ctx.ErrSetString(ctx, ctx.TypeError, "raised in destructor")
			}),
		}},
	})
	require.NotEqual(t, abi.Null, typ)
	defer ctx.Close(ctx, typ)

	obj, data := ctx.New(ctx, typ)
	*data.(*int64) = 99

	ctx.ErrSetString(ctx, ctx.ValueError, "outer")
	ctx.Close(ctx, obj)

	assert.Equal(t, []int64{0, 99}, seen)
	assert.Equal(t, 1, ctx.ErrExceptionMatches(ctx, ctx.ValueError))
	assert.Equal(t, 0, ctx.ErrExceptionMatches(ctx, ctx.TypeError))
	assert.Equal(t, "ValueError: outer", host.TakeError(ctx).Error())
}

func TestDestructor_PanicIsContained(t *testing.T) {
	ctx := newContext(t)

	typ := ctx.TypeFromSpec(ctx, &abi.TypeSpec{
		Name: "test.Panicky",
		Slots: []abi.SlotDef{{
			Slot: abi.SlotDestroy,
			Impl: abi.DestroyFunc(func(*abi.Context, any) { panic("destructor failed") }),
		}},
	})
	require.NotEqual(t, abi.Null, typ)
	defer ctx.Close(ctx, typ)

	obj, _ := ctx.New(ctx, typ)
	assert.NotPanics(t, func() { ctx.Close(ctx, obj) })
	assert.Equal(t, 0, ctx.ErrOccurred(ctx))
}
