package validation_test

import (
	"testing"

	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/application/validation"
	"github.com/reglet-dev/reglet-abi/domain/entities"
	abierrors "github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noArgs = abi.NoArgsFunc(func(*abi.Context, abi.Handle) abi.Handle { return abi.Null })

func TestValidateStruct(t *testing.T) {
	res := validation.ValidateStruct(&abi.ModuleDef{})
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "ModuleDef.Name", res.Errors[0].Field)
	assert.Equal(t, "is required", res.Errors[0].Message)

	res = validation.ValidateStruct(&abi.ModuleDef{Name: "m"})
	assert.True(t, res.Valid)
}

func TestValidateModuleDef(t *testing.T) {
	tests := []struct {
		name    string
		def     *abi.ModuleDef
		wantErr string
	}{
		{name: "valid", def: &abi.ModuleDef{Name: "m", Methods: []abi.MethodDef{{Name: "f", Signature: abi.SigNoArgs, Impl: noArgs}}}},
		{name: "nil", def: nil, wantErr: "nil definition"},
		{name: "no name", def: &abi.ModuleDef{}, wantErr: "ModuleDef.Name: is required"},
		{
			name: "signature mismatch",
			def: &abi.ModuleDef{Name: "m", Methods: []abi.MethodDef{
				{Name: "f", Signature: abi.SigVarArgs, Impl: noArgs},
			}},
			wantErr: "does not match signature",
		},
		{
			name: "duplicate",
			def: &abi.ModuleDef{Name: "m", Methods: []abi.MethodDef{
				{Name: "f", Signature: abi.SigNoArgs, Impl: noArgs},
				{Name: "f", Signature: abi.SigNoArgs, Impl: noArgs},
			}},
			wantErr: `method "f" defined twice`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.ValidateModuleDef(tt.def)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var specErr *abierrors.SpecError
			require.ErrorAs(t, err, &specErr)
			assert.Equal(t, "module", specErr.Kind)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateTypeSpec(t *testing.T) {
	traverse := abi.SlotDef{Slot: abi.SlotTraverse, Impl: abi.TraverseFunc(func(any, abi.VisitFunc) int { return 0 })}

	assert.NoError(t, validation.ValidateTypeSpec(&abi.TypeSpec{Name: "m.T", Flags: abi.FlagHaveGC, Slots: []abi.SlotDef{traverse}}))

	err := validation.ValidateTypeSpec(&abi.TypeSpec{Name: "m.T", Flags: abi.FlagHaveGC})
	assert.ErrorIs(t, err, validation.ErrMissingTraverse)

	err = validation.ValidateTypeSpec(&abi.TypeSpec{Name: "m."})
	assert.ErrorContains(t, err, "must be module.Type")

	err = validation.ValidateTypeSpec(&abi.TypeSpec{Name: "m.T", Slots: []abi.SlotDef{traverse, traverse}})
	assert.ErrorContains(t, err, "defined twice")

	err = validation.ValidateTypeSpec(nil)
	var specErr *abierrors.SpecError
	require.ErrorAs(t, err, &specErr)
	assert.Equal(t, "type", specErr.Kind)
}

func TestManifestValidator(t *testing.T) {
	valid := func() *entities.ExtensionManifest {
		return &entities.ExtensionManifest{
			Name:          "pairs",
			Kind:          entities.KindWasm,
			Module:        "pairs.wasm",
			MinCtxVersion: 1,
			Slots:         []string{"Dup", "ListBuilderNew"},
			Methods:       []entities.ManifestMethod{{Name: "first", Export: "first"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(m *entities.ExtensionManifest)
		opts    []validation.ManifestValidatorOption
		wantMsg string
	}{
		{name: "valid", mutate: func(*entities.ExtensionManifest) {}},
		{name: "bad kind", mutate: func(m *entities.ExtensionManifest) { m.Kind = "jar" }, wantMsg: "must be one of [go wasm]"},
		{name: "unknown slot", mutate: func(m *entities.ExtensionManifest) { m.Slots = []string{"Frobnicate"} }, wantMsg: `unknown context field "Frobnicate"`},
		{name: "header field", mutate: func(m *entities.ExtensionManifest) { m.Slots = []string{"Version"} }, wantMsg: "is a header field"},
		{name: "slot newer than min", mutate: func(m *entities.ExtensionManifest) { m.Slots = []string{"FieldLoad"} }, wantMsg: "needs context version 2"},
		{
			name:    "too new for host",
			mutate:  func(m *entities.ExtensionManifest) { m.MinCtxVersion = 2 },
			opts:    []validation.ManifestValidatorOption{validation.WithMaxVersion(1)},
			wantMsg: "newer than the supported 1",
		},
		{
			name: "duplicate method",
			mutate: func(m *entities.ExtensionManifest) {
				m.Methods = append(m.Methods, entities.ManifestMethod{Name: "first", Export: "first2"})
			},
			wantMsg: `method "first" defined twice`,
		},
		{
			name: "methods on go extension",
			mutate: func(m *entities.ExtensionManifest) {
				m.Kind = entities.KindGo
				m.Module = "pairs"
			},
			wantMsg: "define their methods in code",
		},
		{name: "short fingerprint", mutate: func(m *entities.ExtensionManifest) { m.LayoutFingerprint = "abcd" }, wantMsg: "must have length 64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(m)
			res, err := validation.NewManifestValidator(tt.opts...).Validate(m)
			require.NoError(t, err)
			if tt.wantMsg == "" {
				assert.True(t, res.Valid, res.Summary())
				return
			}
			assert.False(t, res.Valid)
			assert.Contains(t, res.Summary(), tt.wantMsg)
		})
	}

	_, err := validation.NewManifestValidator().Validate(nil)
	assert.Error(t, err)
}
