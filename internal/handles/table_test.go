package handles

import (
	"testing"

	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func violation(t *testing.T, fn func()) *errors.ContractViolation {
	t.Helper()
	var got *errors.ContractViolation
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a contract violation")
			cv, ok := r.(*errors.ContractViolation)
			require.True(t, ok, "panic value %T", r)
			got = cv
		}()
		fn()
	}()
	return got
}

func TestTable_AllocGetRelease(t *testing.T) {
	tbl := New(WithTag(3))

	h, err := tbl.Alloc(KindObject, "value", "test")
	require.NoError(t, err)
	assert.NotZero(t, h)

	idx, gen, tag := Decode(h)
	assert.Equal(t, uint32(1), idx)
	assert.Equal(t, uint32(1), gen)
	assert.Equal(t, uint8(3), tag)

	assert.Equal(t, "value", tbl.Get(h, KindObject, "Get"))
	assert.Equal(t, 1, tbl.Live())

	v, immortal := tbl.Release(h, KindObject, "Close")
	assert.Equal(t, "value", v)
	assert.False(t, immortal)
	assert.Equal(t, 0, tbl.Live())
	assert.False(t, tbl.Valid(h))
}

func TestTable_ReuseBumpsGeneration(t *testing.T) {
	tbl := New()

	h1, err := tbl.Alloc(KindObject, 1, "")
	require.NoError(t, err)
	tbl.Release(h1, KindObject, "Close")

	h2, err := tbl.Alloc(KindObject, 2, "")
	require.NoError(t, err)

	i1, g1, _ := Decode(h1)
	i2, g2, _ := Decode(h2)
	assert.Equal(t, i1, i2)
	assert.Equal(t, g1+1, g2)
	assert.NotEqual(t, h1, h2)
}

func TestTable_ReleaseClosedPanics(t *testing.T) {
	tbl := New()
	h, err := tbl.Alloc(KindObject, 1, "")
	require.NoError(t, err)
	tbl.Release(h, KindObject, "Close")

	cv := violation(t, func() { tbl.Release(h, KindObject, "Close") })
	assert.Contains(t, cv.Reason, "already closed")
	assert.Equal(t, "Close", cv.Op)
}

func TestTable_NullPanics(t *testing.T) {
	tbl := New()
	cv := violation(t, func() { tbl.Get(0, KindObject, "Dup") })
	assert.Contains(t, cv.Reason, "null")
}

func TestTable_KindMismatchPanics(t *testing.T) {
	tbl := New()
	h, err := tbl.Alloc(KindTracker, nil, "")
	require.NoError(t, err)

	cv := violation(t, func() { tbl.Get(h, KindListBuilder, "ListBuilderSet") })
	assert.Contains(t, cv.Reason, "expected list builder, got tracker")
}

func TestTable_DebugDetectsStaleGeneration(t *testing.T) {
	tbl := New(WithDebug(true))
	h1, err := tbl.Alloc(KindObject, 1, "LongFromLong")
	require.NoError(t, err)
	tbl.Release(h1, KindObject, "Close")
	_, err = tbl.Alloc(KindObject, 2, "LongFromLong")
	require.NoError(t, err)

	cv := violation(t, func() { tbl.Get(h1, KindObject, "Repr") })
	assert.Contains(t, cv.Reason, "stale")
}

func TestTable_ReleaseModeAllowsReusedSlot(t *testing.T) {
	// Without debug checks a stale handle is only caught while the slot is free.
	tbl := New()
	h1, err := tbl.Alloc(KindObject, 1, "")
	require.NoError(t, err)
	tbl.Release(h1, KindObject, "Close")
	_, err = tbl.Alloc(KindObject, 2, "")
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.Get(h1, KindObject, "Repr"))
	assert.False(t, tbl.Valid(h1))
}

func TestTable_DebugDetectsForeignContext(t *testing.T) {
	a := New(WithTag(1), WithDebug(true))
	b := New(WithTag(2), WithDebug(true))

	h, err := b.Alloc(KindObject, "b", "")
	require.NoError(t, err)
	_, err = a.Alloc(KindObject, "a", "")
	require.NoError(t, err)

	cv := violation(t, func() { a.Get(h, KindObject, "Add") })
	assert.Contains(t, cv.Reason, "another context")
}

func TestTable_Limit(t *testing.T) {
	tbl := New(WithLimit(2), WithResource("handles"))

	_, err := tbl.Alloc(KindObject, 1, "")
	require.NoError(t, err)
	_, err = tbl.Alloc(KindObject, 2, "")
	require.NoError(t, err)

	_, err = tbl.Alloc(KindObject, 3, "")
	var memErr *errors.MemoryError
	require.ErrorAs(t, err, &memErr)
	assert.Equal(t, 2, memErr.Limit)
	assert.Equal(t, 2, memErr.Current)
	assert.Equal(t, "handles", memErr.Resource)
}

func TestTable_ReservedAreImmortal(t *testing.T) {
	tbl := New()
	none := tbl.Reserve(KindObject, "None")
	assert.True(t, tbl.IsImmortal(none))

	v, immortal := tbl.Release(none, KindObject, "Close")
	assert.True(t, immortal)
	assert.Equal(t, "None", v)
	assert.True(t, tbl.Valid(none))
	assert.Equal(t, 0, tbl.Live())

	h, err := tbl.Alloc(KindObject, 1, "")
	require.NoError(t, err)
	assert.False(t, tbl.IsImmortal(h))
}

func TestTable_DebugRejectsClosingConstants(t *testing.T) {
	tbl := New(WithDebug(true))
	none := tbl.Reserve(KindObject, "None")

	cv := violation(t, func() { tbl.Release(none, KindObject, "Close") })
	assert.Contains(t, cv.Reason, "constant")
}

func TestTable_ReserveAfterAllocPanics(t *testing.T) {
	tbl := New()
	_, err := tbl.Alloc(KindObject, 1, "")
	require.NoError(t, err)
	assert.Panics(t, func() { tbl.Reserve(KindObject, "late") })
}

func TestTable_OpenAndCloseAll(t *testing.T) {
	tbl := New(WithDebug(true))
	tbl.Reserve(KindObject, "None")

	var hs []uint64
	for i := 0; i < 3; i++ {
		h, err := tbl.Alloc(KindObject, i, "LongFromLong")
		require.NoError(t, err)
		hs = append(hs, h)
	}
	tbl.Release(hs[1], KindObject, "Close")

	open := tbl.Open()
	require.Len(t, open, 2)
	assert.Equal(t, hs[0], open[0].Handle)
	assert.Equal(t, hs[2], open[1].Handle)
	assert.Equal(t, "LongFromLong", open[0].Origin)

	var released []any
	n := tbl.CloseAll(func(l Leak) { released = append(released, l.Value) })
	assert.Equal(t, 2, n)
	assert.Equal(t, []any{0, 2}, released)
	assert.Equal(t, 0, tbl.Live())
}

func TestTable_CloseAllHandlesNewEntries(t *testing.T) {
	tbl := New()
	_, err := tbl.Alloc(KindObject, "first", "")
	require.NoError(t, err)

	spawned := false
	n := tbl.CloseAll(func(l Leak) {
		if !spawned {
			spawned = true
			_, err := tbl.Alloc(KindObject, "spawned", "")
			require.NoError(t, err)
		}
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, tbl.Live())
}
