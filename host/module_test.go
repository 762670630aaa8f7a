package host_test

import (
	"fmt"
	"testing"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/object"
	"github.com/reglet-dev/reglet-abi/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	x, y  int64
	label abi.Field
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// pointSpec describes geom.Point. Destroyed payloads append their x to log.
func pointSpec(log *[]int64) *abi.TypeSpec {
	return &abi.TypeSpec{
		Name:    "geom.Point",
		Doc:     "A 2D integer point.",
		NewData: func() any { return &point{} },
		Flags:   abi.FlagHaveGC,
		Methods: []abi.MethodDef{
			{
				Name:      "norm1",
				Signature: abi.SigNoArgs,
				Impl: abi.NoArgsFunc(func(ctx *abi.Context, self abi.Handle) abi.Handle {
					p := ctx.Cast(ctx, self).(*point)
					return ctx.LongFromLong(ctx, abs(p.x)+abs(p.y))
				}),
			},
			{
				Name:      "scale",
				Signature: abi.SigO,
				Impl: abi.OFunc(func(ctx *abi.Context, self, k abi.Handle) abi.Handle {
					n := ctx.LongAsLong(ctx, k)
					if n == -1 && ctx.ErrOccurred(ctx) != 0 {
						return abi.Null
					}
					p := ctx.Cast(ctx, self).(*point)
					p.x *= n
					p.y *= n
					return ctx.Dup(ctx, ctx.None)
				}),
			},
		},
		Slots: []abi.SlotDef{
			{Slot: abi.SlotNew, Impl: abi.KeywordsFunc(func(ctx *abi.Context, cls abi.Handle, args []abi.Handle, _ abi.Handle) abi.Handle {
				if len(args) != 2 {
					ctx.ErrSetString(ctx, ctx.TypeError, "Point() takes 2 arguments")
					return abi.Null
				}
				h, data := ctx.New(ctx, cls)
				if h == abi.Null {
					return abi.Null
				}
				p := data.(*point)
				p.x = ctx.LongAsLong(ctx, args[0])
				p.y = ctx.LongAsLong(ctx, args[1])
				if ctx.ErrOccurred(ctx) != 0 {
					ctx.Close(ctx, h)
					return abi.Null
				}
				return h
			})},
			{Slot: abi.SlotRepr, Impl: abi.UnaryFunc(func(ctx *abi.Context, h abi.Handle) abi.Handle {
				p := ctx.Cast(ctx, h).(*point)
				return ctx.UnicodeFromString(ctx, fmt.Sprintf("Point(%d, %d)", p.x, p.y))
			})},
			{Slot: abi.SlotAdd, Impl: abi.BinaryFunc(func(ctx *abi.Context, a, b abi.Handle) abi.Handle {
				typ := ctx.Type(ctx, a)
				defer ctx.Close(ctx, typ)
				if ctx.TypeCheck(ctx, b, typ) == 0 {
					return ctx.Dup(ctx, ctx.NotImplemented)
				}
				pa, pb := ctx.Cast(ctx, a).(*point), ctx.Cast(ctx, b).(*point)
				h, data := ctx.New(ctx, typ)
				if h == abi.Null {
					return abi.Null
				}
				q := data.(*point)
				q.x, q.y = pa.x+pb.x, pa.y+pb.y
				return h
			})},
			{Slot: abi.SlotTraverse, Impl: abi.TraverseFunc(func(data any, visit abi.VisitFunc) int {
				return visit(&data.(*point).label)
			})},
			{Slot: abi.SlotDestroy, Impl: abi.DestroyFunc(func(_ *abi.Context, data any) {
				*log = append(*log, data.(*point).x)
			})},
		},
	}
}

// newPoint calls the type like Point(x, y).
func newPoint(t *testing.T, ctx *abi.Context, typ abi.Handle, x, y int64) abi.Handle {
	t.Helper()
	args := ints(t, ctx, x, y)
	defer closeAll(ctx, args)
	h := ctx.Call(ctx, typ, args, abi.Null)
	require.NotEqual(t, abi.Null, h, "Point(%d, %d): %v", x, y, host.TakeError(ctx))
	return h
}

func TestTypeFromSpec(t *testing.T) {
	ctx := newContext(t)
	var destroyed []int64

	typ := ctx.TypeFromSpec(ctx, pointSpec(&destroyed))
	require.NotEqual(t, abi.Null, typ, "%v", host.TakeError(ctx))
	defer ctx.Close(ctx, typ)

	assert.Equal(t, "<class 'geom.Point'>", reprOf(t, ctx, typ))

	p := newPoint(t, ctx, typ, 3, -4)
	assert.Equal(t, "Point(3, -4)", reprOf(t, ctx, p))
	assert.Equal(t, 1, ctx.TypeCheck(ctx, p, typ))
	assert.Equal(t, 1, ctx.TypeCheck(ctx, p, ctx.BaseObjectType))

	norm := ctx.GetAttrS(ctx, p, "norm1")
	require.NotEqual(t, abi.Null, norm)
	r := ctx.Call(ctx, norm, nil, abi.Null)
	require.NotEqual(t, abi.Null, r, "%v", host.TakeError(ctx))
	assert.Equal(t, int64(7), ctx.LongAsLong(ctx, r))
	ctx.Close(ctx, r)
	ctx.Close(ctx, norm)

	two := ctx.LongFromLong(ctx, 2)
	scale := ctx.GetAttrS(ctx, typ, "scale")
	r = ctx.Call(ctx, scale, []abi.Handle{p, two}, abi.Null)
	require.NotEqual(t, abi.Null, r, "%v", host.TakeError(ctx))
	assert.Equal(t, 1, ctx.Is(ctx, r, ctx.None))
	assert.Equal(t, "Point(6, -8)", reprOf(t, ctx, p))
	ctx.Close(ctx, r)
	ctx.Close(ctx, scale)

	q := newPoint(t, ctx, typ, 1, 1)
	sum := ctx.Add(ctx, p, q)
	require.NotEqual(t, abi.Null, sum, "%v", host.TakeError(ctx))
	assert.Equal(t, "Point(7, -7)", reprOf(t, ctx, sum))

	assert.Equal(t, abi.Null, ctx.Add(ctx, p, two))
	assert.Equal(t, 1, ctx.ErrExceptionMatches(ctx, ctx.TypeError))
	ctx.ErrClear(ctx)

	for _, h := range []abi.Handle{sum, q, p, two} {
		ctx.Close(ctx, h)
	}
	assert.Equal(t, []int64{7, 1, 6}, destroyed)
}

func TestTypeFromSpec_Rejected(t *testing.T) {
	ctx := newContext(t)

	tests := []struct {
		name    string
		spec    *abi.TypeSpec
		wantErr abi.Handle
	}{
		{
			name:    "gc without traverse",
			spec:    &abi.TypeSpec{Name: "m.Node", Flags: abi.FlagHaveGC},
			wantErr: ctx.ValueError,
		},
		{
			name:    "undotted name",
			spec:    &abi.TypeSpec{Name: "Node"},
			wantErr: ctx.TypeError,
		},
		{
			name: "slot impl mismatch",
			spec: &abi.TypeSpec{Name: "m.Node", Slots: []abi.SlotDef{
				{Slot: abi.SlotRepr, Impl: abi.DestroyFunc(func(*abi.Context, any) {})},
			}},
			wantErr: ctx.TypeError,
		},
		{
			name: "duplicate method",
			spec: &abi.TypeSpec{Name: "m.Node", Methods: []abi.MethodDef{
				{Name: "f", Signature: abi.SigNoArgs, Impl: abi.NoArgsFunc(func(*abi.Context, abi.Handle) abi.Handle { return abi.Null })},
				{Name: "f", Signature: abi.SigNoArgs, Impl: abi.NoArgsFunc(func(*abi.Context, abi.Handle) abi.Handle { return abi.Null })},
			}},
			wantErr: ctx.TypeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, abi.Null, ctx.TypeFromSpec(ctx, tt.spec))
			assert.Equal(t, 1, ctx.ErrExceptionMatches(ctx, tt.wantErr))
			ctx.ErrClear(ctx)
		})
	}
}

func TestNewAndCast(t *testing.T) {
	ctx := newContext(t)
	var destroyed []int64

	typ := ctx.TypeFromSpec(ctx, pointSpec(&destroyed))
	require.NotEqual(t, abi.Null, typ)
	defer ctx.Close(ctx, typ)

	h, data := ctx.New(ctx, typ)
	require.NotEqual(t, abi.Null, h)
	p, ok := data.(*point)
	require.True(t, ok)
	assert.Same(t, p, ctx.Cast(ctx, h))
	ctx.Close(ctx, h)

	g := ctx.TypeGenericNew(ctx, typ, nil, abi.Null)
	require.NotEqual(t, abi.Null, g)
	assert.NotNil(t, ctx.Cast(ctx, g))
	ctx.Close(ctx, g)

	assert.Equal(t, abi.Null, ctx.TypeGenericNew(ctx, ctx.LongType, nil, abi.Null))
	assert.Equal(t, 1, ctx.ErrExceptionMatches(ctx, ctx.TypeError))
	ctx.ErrClear(ctx)

	h, data = ctx.New(ctx, ctx.ListType)
	assert.Equal(t, abi.Null, h)
	assert.Nil(t, data)
	ctx.ErrClear(ctx)

	requireViolation(t, func() { ctx.Cast(ctx, ctx.None) })
	assert.Equal(t, []int64{0, 0}, destroyed)
}

func TestModuleCreate(t *testing.T) {
	ctx := newContext(t)

	def := &abi.ModuleDef{
		Name: "calc",
		Doc:  "Arithmetic helpers.",
		Methods: []abi.MethodDef{
			{
				Name:      "sum",
				Signature: abi.SigVarArgs,
				Impl: abi.VarArgsFunc(func(ctx *abi.Context, _ abi.Handle, args []abi.Handle) abi.Handle {
					acc := ctx.LongFromLong(ctx, 0)
					for _, a := range args {
						next := ctx.Add(ctx, acc, a)
						ctx.Close(ctx, acc)
						if next == abi.Null {
							return abi.Null
						}
						acc = next
					}
					return acc
				}),
			},
			{
				Name:      "count_kw",
				Signature: abi.SigKeywords,
				Impl: abi.KeywordsFunc(func(ctx *abi.Context, _ abi.Handle, args []abi.Handle, kw abi.Handle) abi.Handle {
					n := abi.Ssize(len(args))
					if kw != abi.Null {
						n += ctx.Length(ctx, kw)
					}
					return ctx.LongFromSsizeT(ctx, n)
				}),
			},
			{
				Name:      "name",
				Signature: abi.SigNoArgs,
				Impl: func(ctx *abi.Context, self abi.Handle) abi.Handle {
					return ctx.GetAttrS(ctx, self, "__name__")
				},
			},
			{
				Name:      "broken",
				Signature: abi.SigNoArgs,
				Impl:      abi.NoArgsFunc(func(*abi.Context, abi.Handle) abi.Handle { return abi.Null }),
			},
		},
	}

	m := ctx.ModuleCreate(ctx, def)
	require.NotEqual(t, abi.Null, m, "%v", host.TakeError(ctx))
	defer ctx.Close(ctx, m)

	call := func(name string, args []abi.Handle, kw abi.Handle) abi.Handle {
		fn := ctx.GetAttrS(ctx, m, name)
		require.NotEqual(t, abi.Null, fn)
		defer ctx.Close(ctx, fn)
		return ctx.Call(ctx, fn, args, kw)
	}

	t.Run("varargs", func(t *testing.T) {
		args := ints(t, ctx, 1, 2, 3)
		defer closeAll(ctx, args)
		r := call("sum", args, abi.Null)
		require.NotEqual(t, abi.Null, r)
		assert.Equal(t, int64(6), ctx.LongAsLong(ctx, r))
		ctx.Close(ctx, r)
	})

	t.Run("keywords", func(t *testing.T) {
		kw := ctx.DictNew(ctx)
		defer ctx.Close(ctx, kw)
		require.Equal(t, 0, ctx.SetItemS(ctx, kw, "a", ctx.None))
		r := call("count_kw", []abi.Handle{ctx.True}, kw)
		require.NotEqual(t, abi.Null, r, "%v", host.TakeError(ctx))
		assert.Equal(t, int64(2), ctx.LongAsLong(ctx, r))
		ctx.Close(ctx, r)
	})

	t.Run("self is the module", func(t *testing.T) {
		r := call("name", nil, abi.Null)
		require.NotEqual(t, abi.Null, r)
		assert.Equal(t, "calc", text(t, ctx, r))
		ctx.Close(ctx, r)
	})

	t.Run("arity", func(t *testing.T) {
		assert.Equal(t, abi.Null, call("name", []abi.Handle{ctx.None}, abi.Null))
		assert.Contains(t, host.TakeError(ctx).Error(), "name() takes no arguments (1 given)")
	})

	t.Run("keywords rejected", func(t *testing.T) {
		kw := ctx.DictNew(ctx)
		defer ctx.Close(ctx, kw)
		require.Equal(t, 0, ctx.SetItemS(ctx, kw, "x", ctx.None))
		assert.Equal(t, abi.Null, call("sum", nil, kw))
		assert.Contains(t, host.TakeError(ctx).Error(), "takes no keyword arguments")
	})

	t.Run("null without error", func(t *testing.T) {
		assert.Equal(t, abi.Null, call("broken", nil, abi.Null))
		err := host.TakeError(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SystemError")
		assert.Contains(t, err.Error(), "returned NULL without setting an error")
	})

	t.Run("doc", func(t *testing.T) {
		d := ctx.GetAttrS(ctx, m, "__doc__")
		assert.Equal(t, "Arithmetic helpers.", text(t, ctx, d))
		ctx.Close(ctx, d)
	})
}

func TestModuleCreate_Invalid(t *testing.T) {
	ctx := newContext(t)

	tests := []struct {
		name string
		def  *abi.ModuleDef
	}{
		{name: "nil", def: nil},
		{name: "no name", def: &abi.ModuleDef{}},
		{name: "wrong impl", def: &abi.ModuleDef{Name: "m", Methods: []abi.MethodDef{
			{Name: "f", Signature: abi.SigO, Impl: abi.NoArgsFunc(func(*abi.Context, abi.Handle) abi.Handle { return abi.Null })},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, abi.Null, ctx.ModuleCreate(ctx, tt.def))
			assert.Equal(t, 1, ctx.ErrExceptionMatches(ctx, ctx.SystemError))
			ctx.ErrClear(ctx)
		})
	}
}

func TestTrampoline(t *testing.T) {
	ctx := newContext(t)

	neg := abi.UnaryFunc(func(ctx *abi.Context, h abi.Handle) abi.Handle {
		return ctx.Negative(ctx, h)
	})

	arg := object.NewInt(2)
	ca := &abi.CallArgs{Args: []any{arg}}
	ctx.CallRealFunctionFromTrampoline(ctx, abi.SigUnary, neg, ca)
	require.Equal(t, 0, ca.Status)
	res := ca.Result.(object.Object)
	v, err := object.AsInt64(res)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), v)
	assert.Equal(t, int64(1), object.Refcount(arg))
	assert.Equal(t, int64(1), object.Refcount(res))
	object.Decref(res)
	object.Decref(arg)

	ca = &abi.CallArgs{Args: []any{object.None, object.None}}
	ctx.CallRealFunctionFromTrampoline(ctx, abi.SigBinary, neg, ca)
	assert.Equal(t, -1, ca.Status)
	assert.Nil(t, ca.Result)
	assert.Equal(t, 1, ctx.ErrExceptionMatches(ctx, ctx.SystemError))
	ctx.ErrClear(ctx)

	visited := 0
	ca = &abi.CallArgs{Data: &point{label: 1}, Visit: func(f *abi.Field) int { visited++; return 5 }}
	ctx.CallRealFunctionFromTrampoline(ctx, abi.SigTraverse, abi.TraverseFunc(func(data any, visit abi.VisitFunc) int {
		return visit(&data.(*point).label)
	}), ca)
	assert.Equal(t, 5, ca.Status)
	assert.Equal(t, 1, visited)

	assert.Equal(t, 0, host.LiveHandles(ctx))
}
