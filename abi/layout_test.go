package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_VersionIsFirstField(t *testing.T) {
	v1, err := Layout(Version1)
	require.NoError(t, err)
	require.NotEmpty(t, v1)

	assert.Equal(t, "Version", v1[0].Name)
	assert.Equal(t, uintptr(0), v1[0].Offset)
	assert.Equal(t, KindHeader, v1[0].Kind)
}

func TestLayout_Monotonic(t *testing.T) {
	for older := Version1; older <= CurrentVersion; older++ {
		for newer := older; newer <= CurrentVersion; newer++ {
			a, err := Layout(older)
			require.NoError(t, err)
			b, err := Layout(newer)
			require.NoError(t, err)

			require.GreaterOrEqual(t, len(b), len(a))
			for i := range a {
				assert.Equal(t, a[i].Name, b[i].Name, "v%d field %d", older, i)
				assert.Equal(t, a[i].Offset, b[i].Offset, "v%d field %s", older, a[i].Name)
			}
		}
	}
}

func TestLayout_AppendOnly(t *testing.T) {
	// Every field introduced by a later version sits after all earlier ones.
	entries, err := Layout(CurrentVersion)
	require.NoError(t, err)

	prevSince := 0
	var prevOffset uintptr
	for i, e := range entries {
		assert.GreaterOrEqual(t, e.Since, prevSince, "field %s", e.Name)
		if i > 0 {
			assert.Greater(t, e.Offset, prevOffset, "field %s", e.Name)
		}
		prevSince = e.Since
		prevOffset = e.Offset
	}
}

func TestLayout_Catalogue(t *testing.T) {
	tests := []struct {
		name  string
		kind  FieldKind
		since int
	}{
		{"None", KindConst, Version1},
		{"ListType", KindConst, Version1},
		{"ModuleCreate", KindSlot, Version1},
		{"FloorDivide", KindSlot, Version1},
		{"TrackerClose", KindSlot, Version1},
		{"NotImplemented", KindConst, Version2},
		{"ZeroDivisionError", KindConst, Version2},
		{"FieldLoad", KindSlot, Version2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := Lookup(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.kind, info.Kind)
			assert.Equal(t, tt.since, info.Since)
		})
	}

	_, ok := Lookup("NoSuchSlot")
	assert.False(t, ok)
}

func TestLayout_UnknownVersion(t *testing.T) {
	_, err := Layout(0)
	assert.Error(t, err)
	_, err = Layout(CurrentVersion + 1)
	assert.Error(t, err)
}

func TestContext_Has(t *testing.T) {
	c := &Context{Version: Version1}
	assert.True(t, c.Has("TrackerAdd"))
	assert.False(t, c.Has("FieldStore"))

	c.Version = Version2
	assert.True(t, c.Has("FieldStore"))
	assert.False(t, c.Has("Bogus"))
}

func TestOffsets(t *testing.T) {
	offsets := Offsets()
	entries, err := Layout(CurrentVersion)
	require.NoError(t, err)
	assert.Len(t, offsets, len(entries))
	for _, e := range entries {
		assert.Equal(t, e.Offset, offsets[e.Name])
	}
}

func TestCompareOp_String(t *testing.T) {
	assert.Equal(t, "<", LT.String())
	assert.Equal(t, ">=", GE.String())
}
