// Package validation checks extension definitions, manifests and host
// configuration with go-playground/validator struct tags plus the rules the
// tags cannot express.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/entities"
	abierrors "github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/domain/ports"
)

// validate is a package-level singleton; building a validator caches struct
// metadata and is expensive.
var validate = validator.New()

// ErrMissingTraverse is wrapped by ValidateTypeSpec when a type declares
// FlagHaveGC without a traverse slot.
var ErrMissingTraverse = errors.New("FlagHaveGC requires a tp_traverse slot")

// ValidateStruct runs tag validation on v and flattens the failures into a
// ValidationResult.
func ValidateStruct(v any) *entities.ValidationResult {
	result := &entities.ValidationResult{Valid: true}
	err := validate.Struct(v)
	if err == nil {
		return result
	}

	result.Valid = false
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		result.Errors = append(result.Errors, entities.ValidationError{Field: "", Message: err.Error()})
		return result
	}
	for _, fe := range verrs {
		result.Errors = append(result.Errors, entities.ValidationError{
			Field:   fe.Namespace(),
			Message: describe(fe),
		})
	}
	return result
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must have length %s", fe.Param())
	case "contains":
		return fmt.Sprintf("must contain %q", fe.Param())
	}
	if fe.Param() != "" {
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
	return "failed " + fe.Tag()
}

func resultError(res *entities.ValidationResult) error {
	if res.Valid {
		return nil
	}
	return errors.New(res.Summary())
}

func checkMethods(methods []abi.MethodDef) error {
	seen := make(map[string]bool, len(methods))
	for i, m := range methods {
		if seen[m.Name] {
			return fmt.Errorf("method %q defined twice", m.Name)
		}
		seen[m.Name] = true
		if !m.Signature.Accepts(m.Impl) {
			return fmt.Errorf("method %d (%s): impl %T does not match signature %s", i, m.Name, m.Impl, m.Signature)
		}
	}
	return nil
}

// ValidateModuleDef checks a module definition. Failures are *errors.SpecError.
func ValidateModuleDef(def *abi.ModuleDef) error {
	if def == nil {
		return &abierrors.SpecError{Kind: "module", Err: errors.New("nil definition")}
	}
	if err := resultError(ValidateStruct(def)); err != nil {
		return &abierrors.SpecError{Kind: "module", Name: def.Name, Err: err}
	}
	if err := checkMethods(def.Methods); err != nil {
		return &abierrors.SpecError{Kind: "module", Name: def.Name, Err: err}
	}
	return nil
}

// ValidateTypeSpec checks a type spec. Failures are *errors.SpecError; a
// missing traverse slot on a FlagHaveGC type wraps ErrMissingTraverse.
func ValidateTypeSpec(spec *abi.TypeSpec) error {
	if spec == nil {
		return &abierrors.SpecError{Kind: "type", Err: errors.New("nil spec")}
	}
	fail := func(err error) error {
		return &abierrors.SpecError{Kind: "type", Name: spec.Name, Err: err}
	}

	if err := resultError(ValidateStruct(spec)); err != nil {
		return fail(err)
	}
	if strings.HasPrefix(spec.Name, ".") || strings.HasSuffix(spec.Name, ".") {
		return fail(fmt.Errorf("name %q must be module.Type", spec.Name))
	}
	if err := checkMethods(spec.Methods); err != nil {
		return fail(err)
	}

	seen := make(map[abi.SlotKind]bool, len(spec.Slots))
	for _, s := range spec.Slots {
		if seen[s.Slot] {
			return fail(fmt.Errorf("slot %s defined twice", s.Slot))
		}
		seen[s.Slot] = true
		if !s.Slot.Signature().Accepts(s.Impl) {
			return fail(fmt.Errorf("slot %s: impl %T does not match signature %s", s.Slot, s.Impl, s.Slot.Signature()))
		}
	}
	if spec.Flags&abi.FlagHaveGC != 0 && !seen[abi.SlotTraverse] {
		return fail(ErrMissingTraverse)
	}
	return nil
}

// ManifestValidator implements ports.ManifestValidator.
type ManifestValidator struct {
	maxVersion int
}

// ManifestValidatorOption configures a ManifestValidator.
type ManifestValidatorOption func(*ManifestValidator)

// WithMaxVersion rejects manifests requiring a context newer than v.
func WithMaxVersion(v int) ManifestValidatorOption {
	return func(m *ManifestValidator) {
		m.maxVersion = v
	}
}

// NewManifestValidator creates a validator for extension manifests.
func NewManifestValidator(opts ...ManifestValidatorOption) ports.ManifestValidator {
	m := &ManifestValidator{maxVersion: abi.CurrentVersion}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Validate checks tags, slot names and method bindings.
func (m *ManifestValidator) Validate(manifest *entities.ExtensionManifest) (*entities.ValidationResult, error) {
	if manifest == nil {
		return nil, fmt.Errorf("manifest is nil")
	}
	result := ValidateStruct(manifest)

	addErr := func(field, format string, args ...any) {
		result.Valid = false
		result.Errors = append(result.Errors, entities.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if manifest.MinCtxVersion > m.maxVersion {
		addErr("ExtensionManifest.MinCtxVersion", "context version %d is newer than the supported %d", manifest.MinCtxVersion, m.maxVersion)
	}

	for i, name := range manifest.Slots {
		info, ok := abi.Lookup(name)
		field := fmt.Sprintf("ExtensionManifest.Slots[%d]", i)
		switch {
		case name == "":
			// already reported by the tag check
		case !ok:
			addErr(field, "unknown context field %q", name)
		case info.Kind == abi.KindHeader:
			addErr(field, "%q is a header field, not a slot", name)
		case manifest.MinCtxVersion >= abi.Version1 && info.Since > manifest.MinCtxVersion:
			addErr(field, "%q needs context version %d but min_ctx_version is %d", name, info.Since, manifest.MinCtxVersion)
		}
	}

	seen := make(map[string]bool, len(manifest.Methods))
	for i, meth := range manifest.Methods {
		if meth.Name != "" && seen[meth.Name] {
			addErr(fmt.Sprintf("ExtensionManifest.Methods[%d].Name", i), "method %q defined twice", meth.Name)
		}
		seen[meth.Name] = true
	}
	if manifest.Kind == entities.KindGo && len(manifest.Methods) > 0 {
		addErr("ExtensionManifest.Methods", "go extensions define their methods in code")
	}

	return result, nil
}
